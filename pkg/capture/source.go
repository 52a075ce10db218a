package capture

// SliceSource replays an in-memory sample slice.
type SliceSource struct {
	samples []Sample
	pos     int
}

// NewSliceSource returns a source positioned before the first sample.
func NewSliceSource(samples []Sample) *SliceSource {
	return &SliceSource{samples: samples}
}

// Wait implements Source.
func (s *SliceSource) Wait(conds ...Condition) (Sample, error) {
	for s.pos < len(s.samples) {
		cur := s.samples[s.pos]
		var prev Levels
		hasPrev := s.pos > 0
		if hasPrev {
			prev = s.samples[s.pos-1].Levels
		}
		s.pos++
		if len(conds) == 0 {
			return cur, nil
		}
		for _, c := range conds {
			if c.Match(prev, cur.Levels, hasPrev) {
				return cur, nil
			}
		}
	}
	return Sample{}, ErrEndOfCapture
}

// Samples returns the underlying sample slice.
func (s *SliceSource) Samples() []Sample {
	return s.samples
}
