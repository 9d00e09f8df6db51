// Package cleaning implements the pre-processing steps that run before
// residence analysis: covariate quality filtering, per-fix speed
// computation, speed-spike removal, and median smoothing of positions.
// All functions treat the input track as immutable and return new slices.
package cleaning

import (
	"math"

	"github.com/marmgroup/atlas-best-practices/internal/residence"
	"github.com/marmgroup/atlas-best-practices/internal/spatial"
	"github.com/marmgroup/atlas-best-practices/internal/stats"
)

// Thresholds defines configurable limits for track cleaning.
type Thresholds struct {
	MaxVarXY     float64 // maximum acceptable position error SD (m)
	MinNBS       float64 // minimum base stations contributing to a fix
	MaxSpeedMPS  float64 // maximum plausible movement speed (m/s)
	SmoothWindow int     // rolling median window (odd)
}

// DefaultThresholds provides limits tuned on shorebird deployments.
var DefaultThresholds = Thresholds{
	MaxVarXY:     50.0, // 50 m position error SD
	MinNBS:       3,    // trilateration needs three stations
	MaxSpeedMPS:  20.0, // far above sustained shorebird flight
	SmoothWindow: 5,
}

// FilterCovariates drops fixes whose quality covariates fall outside the
// thresholds. Fixes without a given covariate pass that check.
func FilterCovariates(track []residence.Fix, th Thresholds) []residence.Fix {
	kept := make([]residence.Fix, 0, len(track))
	for _, f := range track {
		if v, ok := f.Covariate(residence.CovVarXY); ok && v > th.MaxVarXY {
			continue
		}
		if v, ok := f.Covariate(residence.CovNBS); ok && v < th.MinNBS {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

// TrackSpeeds returns the n-1 consecutive speeds (m/s) along the track.
// A non-positive time step with positional displacement yields +Inf so the
// segment cannot pass any finite speed threshold.
func TrackSpeeds(track []residence.Fix) ([]float64, error) {
	if len(track) < 2 {
		return nil, residence.ErrInsufficientFixes
	}

	speeds := make([]float64, len(track)-1)
	for i := 1; i < len(track); i++ {
		dist := spatial.Distance(track[i-1].X, track[i-1].Y, track[i].X, track[i].Y)
		dt := track[i].Time.Sub(track[i-1].Time).Seconds()
		switch {
		case dt > 0:
			speeds[i-1] = dist / dt
		case dist == 0:
			speeds[i-1] = 0
		default:
			speeds[i-1] = math.Inf(1)
		}
	}
	return speeds, nil
}

// WithSpeeds returns a copy of the track with the speed covariate set to
// the mean of the incoming and outgoing segment speeds (or the single
// defined side at the track ends).
func WithSpeeds(track []residence.Fix) ([]residence.Fix, error) {
	speeds, err := TrackSpeeds(track)
	if err != nil {
		return nil, err
	}

	out := copyTrack(track)
	for i := range out {
		var in, outSpeed float64
		hasIn, hasOut := i > 0, i < len(speeds)
		if hasIn {
			in = speeds[i-1]
		}
		if hasOut {
			outSpeed = speeds[i]
		}

		switch {
		case hasIn && hasOut:
			out[i].Covariates[residence.CovSpeed] = (in + outSpeed) / 2
		case hasIn:
			out[i].Covariates[residence.CovSpeed] = in
		default:
			out[i].Covariates[residence.CovSpeed] = outSpeed
		}
	}
	return out, nil
}

// FilterSpeed removes point spikes: fixes whose incoming and outgoing
// speeds both exceed the ceiling. Track endpoints have only one defined
// side and are never removed.
func FilterSpeed(track []residence.Fix, maxSpeed float64) ([]residence.Fix, error) {
	speeds, err := TrackSpeeds(track)
	if err != nil {
		return nil, err
	}

	kept := make([]residence.Fix, 0, len(track))
	for i, f := range track {
		spike := i > 0 && i < len(speeds) &&
			speeds[i-1] > maxSpeed && speeds[i] > maxSpeed
		if !spike {
			kept = append(kept, f)
		}
	}
	return kept, nil
}

// SmoothMedian applies a rolling median of the given window to X and Y
// independently, returning a new track. The window must be odd and >= 1;
// at the track ends the window is truncated to the in-range indices, so
// an endpoint is smoothed over itself and its inner half-window only.
func SmoothMedian(track []residence.Fix, window int) ([]residence.Fix, error) {
	if window < 1 || window%2 == 0 {
		return nil, residence.ErrInvalidWindow
	}
	if len(track) == 0 {
		return nil, residence.ErrEmptyTrack
	}
	if len(track) < window {
		return nil, residence.ErrInsufficientFixes
	}

	half := window / 2
	out := copyTrack(track)
	for i := range track {
		lo, hi := i-half, i+half
		if lo < 0 {
			lo = 0
		}
		if hi > len(track)-1 {
			hi = len(track) - 1
		}

		xs := make([]float64, 0, hi-lo+1)
		ys := make([]float64, 0, hi-lo+1)
		for j := lo; j <= hi; j++ {
			xs = append(xs, track[j].X)
			ys = append(ys, track[j].Y)
		}
		out[i].X = stats.Median(xs)
		out[i].Y = stats.Median(ys)
	}
	return out, nil
}

// Clean runs the full pre-processing chain: covariate filter, speed
// annotation, spike removal, median smoothing. Tracks reduced below two
// fixes by filtering surface ErrInsufficientFixes from the speed steps.
func Clean(track []residence.Fix, th Thresholds) ([]residence.Fix, error) {
	if len(track) == 0 {
		return nil, residence.ErrEmptyTrack
	}

	cleaned := FilterCovariates(track, th)
	if len(cleaned) == 0 {
		return nil, residence.ErrInsufficientFixes
	}

	cleaned, err := WithSpeeds(cleaned)
	if err != nil {
		return nil, err
	}
	cleaned, err = FilterSpeed(cleaned, th.MaxSpeedMPS)
	if err != nil {
		return nil, err
	}
	return SmoothMedian(cleaned, th.SmoothWindow)
}

// copyTrack deep-copies fixes including their covariate maps so callers
// never alias cleaning output with engine input.
func copyTrack(track []residence.Fix) []residence.Fix {
	out := make([]residence.Fix, len(track))
	for i, f := range track {
		out[i] = f
		cov := make(map[string]float64, len(f.Covariates)+1)
		for k, v := range f.Covariates {
			cov[k] = v
		}
		out[i].Covariates = cov
	}
	return out
}
