package domain

// Clock supplies the current ledger height.
type Clock interface {
	Height() uint64
}

// ManualClock is a Clock advanced explicitly, one block at a time or in bulk.
type ManualClock struct {
	height uint64
}

func NewManualClock(height uint64) *ManualClock {
	return &ManualClock{height: height}
}

func (c *ManualClock) Height() uint64 {
	return c.height
}

// Mine advances the height by n blocks.
func (c *ManualClock) Mine(n uint64) {
	c.height += n
}

func (c *ManualClock) Set(height uint64) {
	c.height = height
}
