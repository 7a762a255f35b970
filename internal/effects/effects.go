package effects

// Effect processes interleaved audio in place. The channel count is fixed
// when the effect is built and must match the buffer layout.
type Effect interface {
	Process(buf []float32)
	Reset()
}

// Chain applies a sequence of effects in order.
type Chain struct {
	effects []Effect
}

func NewChain(effects ...Effect) *Chain {
	return &Chain{effects: effects}
}

func (c *Chain) Process(buf []float32) {
	for _, e := range c.effects {
		e.Process(buf)
	}
}

func (c *Chain) Reset() {
	for _, e := range c.effects {
		e.Reset()
	}
}

func (c *Chain) Add(e Effect) {
	c.effects = append(c.effects, e)
}

func (c *Chain) Len() int {
	return len(c.effects)
}
