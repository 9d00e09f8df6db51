// Command patches runs the residence pipeline over a CSV of telemetry
// fixes and writes one patch summary row per detected patch, with the
// dissolved extents as WKT for GIS import.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/marmgroup/atlas-best-practices/internal/pipeline"
	"github.com/marmgroup/atlas-best-practices/internal/residence"
	"github.com/marmgroup/atlas-best-practices/internal/spatial"
)

func main() {
	var (
		input   = flag.String("input", "", "input fixes CSV (tag,time,x,y[,varxy,nbs])")
		latlon  = flag.Bool("latlon", false, "position columns are lat,lon; project to local meters around the first fix")
		output  = flag.String("output", "patches.csv", "output patch summary CSV")
		wktOut  = flag.String("wkt", "", "optional output CSV of patch extents as WKT")
		workers = flag.Int("workers", 4, "worker pool size")

		radius       = flag.Float64("radius", 50, "revisit radius in meters")
		maxGap       = flag.Duration("max-gap", 15*time.Minute, "max sampling gap inside a visit")
		absence      = flag.Duration("absence", time.Hour, "absence threshold for residence time")
		countTies    = flag.Bool("count-ties", false, "treat gaps equal to the absence threshold as absences")
		spatialIndep = flag.Float64("spatial-indep", 100, "spatial independence limit in meters")
		tempIndep    = flag.Duration("temporal-indep", 30*time.Minute, "temporal independence limit")
		buffer       = flag.Float64("buffer", 25, "patch buffer radius in meters")
		minFixes     = flag.Int("min-fixes", 3, "minimum fixes per patch")
		minResidence = flag.Duration("min-residence", 5*time.Minute, "minimum residence time per fix")
	)
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	tracks, err := readTracks(*input, *latlon)
	if err != nil {
		log.Fatalf("Failed to read fixes: %v", err)
	}
	if len(tracks) == 0 {
		log.Fatal("No fixes found in input")
	}

	cfg := pipeline.DefaultConfig()
	cfg.Workers = *workers
	cfg.Params.Radius = *radius
	cfg.Params.MaxGap = *maxGap
	cfg.Params.Absence = residence.AbsenceRule{Threshold: *absence, CountTies: *countTies}
	cfg.Params.Segment.SpatialIndepLimit = *spatialIndep
	cfg.Params.Segment.TemporalIndepLimit = *tempIndep
	cfg.Params.Segment.BufferRadius = *buffer
	cfg.Params.Segment.MinFixes = *minFixes
	cfg.Params.Segment.MinResidence = *minResidence

	results := pipeline.Run(tracks, cfg)

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			log.Printf("Tag %s failed: %v", res.Tag, res.Err)
			failed++
		}
	}

	if err := writeSummaries(*output, results); err != nil {
		log.Fatalf("Failed to write summaries: %v", err)
	}
	if *wktOut != "" {
		if err := writeExtents(*wktOut, results); err != nil {
			log.Fatalf("Failed to write extents: %v", err)
		}
	}

	log.Printf("Processed %d tags (%d failed)", len(results), failed)
	if failed == len(results) {
		os.Exit(1)
	}
}

// readTracks parses the fixes CSV into per-tag tracks. A header row is
// detected by a non-numeric time column and skipped. With latlon set the
// position columns are latitude,longitude and get projected into local
// planar meters around the first data row.
func readTracks(path string, latlon bool) (map[string][]residence.Fix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	tracks := make(map[string][]residence.Fix)
	var (
		proj    spatial.Projection
		hasProj bool
	)
	line := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		if len(record) < 4 {
			return nil, fmt.Errorf("line %d: expected at least 4 columns, got %d", line, len(record))
		}

		ts, err := strconv.ParseInt(record[1], 10, 64)
		if err != nil {
			if line == 1 {
				continue // header
			}
			return nil, fmt.Errorf("line %d: invalid time %q: %w", line, record[1], err)
		}

		x, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid x %q: %w", line, record[2], err)
		}
		y, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid y %q: %w", line, record[3], err)
		}

		if latlon {
			lat, lon := x, y
			if !hasProj {
				proj = spatial.NewProjection(lat, lon)
				hasProj = true
			}
			if !proj.InRange(lat, lon) {
				return nil, fmt.Errorf("line %d: fix (%f, %f) too far from projection origin (%f, %f)",
					line, lat, lon, proj.OriginLat, proj.OriginLon)
			}
			x, y = proj.ToPlanar(lat, lon)
		}

		fix := residence.Fix{
			Tag:  record[0],
			Time: time.Unix(ts, 0).UTC(),
			X:    x,
			Y:    y,
		}

		covs := make(map[string]float64)
		if len(record) > 4 && record[4] != "" {
			if v, err := strconv.ParseFloat(record[4], 64); err == nil {
				covs[residence.CovVarXY] = v
			}
		}
		if len(record) > 5 && record[5] != "" {
			if v, err := strconv.ParseFloat(record[5], 64); err == nil {
				covs[residence.CovNBS] = v
			}
		}
		if len(covs) > 0 {
			fix.Covariates = covs
		}

		tracks[fix.Tag] = append(tracks[fix.Tag], fix)
	}

	return tracks, nil
}

func writeSummaries(path string, results []pipeline.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"tag", "patch", "time_start", "time_end", "duration_s", "n_fixes", "x", "y", "area_sqm"}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, res := range results {
		if res.Err != nil {
			continue
		}
		for _, s := range res.Summaries {
			row := []string{
				s.Tag,
				strconv.Itoa(s.Patch),
				strconv.FormatInt(s.TimeStart.Unix(), 10),
				strconv.FormatInt(s.TimeEnd.Unix(), 10),
				strconv.FormatFloat(s.DurationS, 'f', -1, 64),
				strconv.Itoa(s.NFixes),
				strconv.FormatFloat(s.X, 'f', -1, 64),
				strconv.FormatFloat(s.Y, 'f', -1, 64),
				strconv.FormatFloat(s.Area, 'f', -1, 64),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	return w.Error()
}

func writeExtents(path string, results []pipeline.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"tag", "patch", "geometry"}); err != nil {
		return err
	}

	for _, res := range results {
		if res.Err != nil {
			continue
		}
		for _, ref := range residence.PatchSpatials(res.Patches) {
			row := []string{ref.Tag, strconv.Itoa(ref.Patch), ref.Geometry.WKT()}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	return w.Error()
}
