package rating

// Aggregate is the running mean of all review ratings, maintained
// incrementally as reviews are inserted. It always equals the arithmetic mean
// over the review collection.
type Aggregate struct {
	Count uint64 `json:"count"`
	Sum   uint64 `json:"sum"`
}

// Add folds one rating into the aggregate.
func (a *Aggregate) Add(r uint8) {
	a.Count++
	a.Sum += uint64(r)
}

// AverageHundredths returns the mean rating scaled by 100 (450 means 4.50).
// Zero reviews yield 0.
func (a Aggregate) AverageHundredths() uint64 {
	if a.Count == 0 {
		return 0
	}
	return a.Sum * 100 / a.Count
}
