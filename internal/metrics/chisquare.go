package metrics

// ChiSquare is the chi-square statistic of the byte histogram against a
// uniform distribution. With 255 degrees of freedom, values far from 255
// indicate a skewed pool.
type ChiSquare struct {
	name   string
	counts [256]uint64
	total  uint64
}

func NewChiSquare() *ChiSquare {
	return &ChiSquare{
		name: "chi_square",
	}
}

func (c *ChiSquare) Name() string {
	return c.name
}

func (c *ChiSquare) Observe(b []byte) {
	for _, v := range b {
		c.counts[v]++
	}
	c.total += uint64(len(b))
}

func (c *ChiSquare) Value() float64 {
	if c.total == 0 {
		return 0
	}
	expected := float64(c.total) / 256
	sum := 0.0
	for _, n := range c.counts {
		d := float64(n) - expected
		sum += d * d / expected
	}
	return sum
}

func (c *ChiSquare) Reset() {
	c.counts = [256]uint64{}
	c.total = 0
}
