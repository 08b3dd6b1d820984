package types

// BarSnapshot is the column-oriented view of bars handed to a strategy's
// on_bars callback. Each slice has the same length; index i across all
// slices describes bar i.
type BarSnapshot struct {
	Time      []int64
	Open      []float64
	High      []float64
	Low       []float64
	Close     []float64
	Volume    []uint64
	BidVolume []uint64
	AskVolume []uint64
}

// NumBars reports the snapshot's row count.
func (s BarSnapshot) NumBars() int {
	return len(s.Time)
}

// NewBarSnapshot builds a BarSnapshot from a contiguous slice of bars.
func NewBarSnapshot(bars []Bar) BarSnapshot {
	s := BarSnapshot{
		Time:      make([]int64, len(bars)),
		Open:      make([]float64, len(bars)),
		High:      make([]float64, len(bars)),
		Low:       make([]float64, len(bars)),
		Close:     make([]float64, len(bars)),
		Volume:    make([]uint64, len(bars)),
		BidVolume: make([]uint64, len(bars)),
		AskVolume: make([]uint64, len(bars)),
	}
	for i, b := range bars {
		s.Time[i] = b.BucketStart
		s.Open[i] = b.Open
		s.High[i] = b.High
		s.Low[i] = b.Low
		s.Close[i] = b.Close
		s.Volume[i] = b.Volume
		s.BidVolume[i] = b.BidVolume
		s.AskVolume[i] = b.AskVolume
	}
	return s
}

// TickSnapshot is the column-oriented view of ticks handed to a strategy's
// on_ticks callback. Timestamp holds raw UNIX microseconds as built by
// NewTickSnapshot; callers at the strategy boundary (internal/engine) must
// convert it to seconds with boundary.TickSnapshotSeconds before handing
// the snapshot to a strategy, per §4.6.
type TickSnapshot struct {
	Timestamp []float64
	Price     []float64
	Bid       []float64
	Ask       []float64
	Volume    []uint32
	BidVolume []uint32
	AskVolume []uint32
}

// NumTicks reports the snapshot's row count.
func (s TickSnapshot) NumTicks() int {
	return len(s.Timestamp)
}

// NewTickSnapshot builds a TickSnapshot from a contiguous slice of ticks.
func NewTickSnapshot(ticks []Tick) TickSnapshot {
	s := TickSnapshot{
		Timestamp: make([]float64, len(ticks)),
		Price:     make([]float64, len(ticks)),
		Bid:       make([]float64, len(ticks)),
		Ask:       make([]float64, len(ticks)),
		Volume:    make([]uint32, len(ticks)),
		BidVolume: make([]uint32, len(ticks)),
		AskVolume: make([]uint32, len(ticks)),
	}
	for i, t := range ticks {
		s.Timestamp[i] = float64(t.TimestampUs)
		s.Price[i] = t.Price
		s.Bid[i] = t.Bid
		s.Ask[i] = t.Ask
		s.Volume[i] = t.Volume
		s.BidVolume[i] = t.BidVolume
		s.AskVolume[i] = t.AskVolume
	}
	return s
}
