package residence

// AggregateResidence collapses one fix's revisit history into a single
// record. Revisits are scanned in time order and the scan stops at the
// first gap that qualifies as a long absence under the rule; only the
// unbroken prefix of attendance counts towards residence time. This keeps
// infrequent long-interval returns to the same location (repeated foraging
// visits across nights, say) from being miscounted as one continuous bout.
func AggregateResidence(revisits []Revisit, rule AbsenceRule) ResidenceRecord {
	var rec ResidenceRecord
	for idx, rv := range revisits {
		if rule.triggers(rv.Gap) {
			break
		}
		rec.ResidenceTime += rv.Duration
		rec.RevisitCount++
		if idx == 0 {
			rec.FirstPassage = rv.Duration
		}
	}
	return rec
}

// ResidenceRecords runs revisit computation and aggregation for every fix
// in the track, returning one record per fix in track order.
func ResidenceRecords(track []Fix, p Params) ([]ResidenceRecord, error) {
	revisits, err := ComputeRevisits(track, p.Radius, p.MaxGap)
	if err != nil {
		return nil, err
	}

	records := make([]ResidenceRecord, len(track))
	for i, rv := range revisits {
		records[i] = AggregateResidence(rv, p.Absence)
		records[i].FixIndex = i
	}
	return records, nil
}
