package metrics

// Runs counts maximal runs of identical bits and reports them per bit
// observed. Independent fair bits give 0.5.
type Runs struct {
	name  string
	runs  uint64
	total uint64
	last  byte
}

func NewRuns() *Runs {
	return &Runs{name: "runs"}
}

func (r *Runs) Name() string { return r.name }

func (r *Runs) Observe(b []byte) {
	for _, v := range b {
		for i := 7; i >= 0; i-- {
			bit := (v >> uint(i)) & 1
			if r.total == 0 || bit != r.last {
				r.runs++
			}
			r.last = bit
			r.total++
		}
	}
}

func (r *Runs) Value() float64 {
	if r.total == 0 {
		return 0
	}
	return float64(r.runs) / float64(r.total)
}

func (r *Runs) Reset() {
	r.runs = 0
	r.total = 0
	r.last = 0
}
