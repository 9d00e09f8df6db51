package residence

import (
	"time"
)

var testEpoch = time.Date(2023, 4, 1, 6, 0, 0, 0, time.UTC)

// fixAt builds a fix m minutes after the test epoch at (x, y).
func fixAt(m float64, x, y float64) Fix {
	return Fix{
		Tag:  "test-tag",
		Time: testEpoch.Add(time.Duration(m * float64(time.Minute))),
		X:    x,
		Y:    y,
	}
}

// stationaryTrack builds n fixes at (x, y) starting at startMin, one
// stepMin apart.
func stationaryTrack(n int, startMin, stepMin, x, y float64) []Fix {
	track := make([]Fix, n)
	for i := range track {
		track[i] = fixAt(startMin+float64(i)*stepMin, x, y)
	}
	return track
}

// zeroRecords returns pass-through residence records so segmentation tests
// can exercise clustering without the residence filter.
func zeroRecords(track []Fix) []ResidenceRecord {
	records := make([]ResidenceRecord, len(track))
	for i := range records {
		records[i] = ResidenceRecord{FixIndex: i}
	}
	return records
}
