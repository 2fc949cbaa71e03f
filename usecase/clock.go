package usecase

import "time"

// WallClock derives the ledger height from wall time: one block per
// interval since genesis.
type WallClock struct {
	genesis  time.Time
	interval time.Duration
	now      func() time.Time
}

func NewWallClock(genesis time.Time, interval time.Duration) *WallClock {
	return &WallClock{genesis: genesis, interval: interval, now: time.Now}
}

func (c *WallClock) Height() uint64 {
	elapsed := c.now().Sub(c.genesis)
	if elapsed <= 0 || c.interval <= 0 {
		return 0
	}
	return uint64(elapsed / c.interval)
}
