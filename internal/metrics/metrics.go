package metrics

// Metric mirrors the engine's metric contract.
type Metric interface {
	Name() string
	Observe(b []byte)
	Value() float64
	Reset()
}

// Standard returns the default health metrics in display order.
func Standard() []Metric {
	return []Metric{
		NewMonobit(),
		NewEntropy(),
		NewChiSquare(),
		NewRuns(),
	}
}
