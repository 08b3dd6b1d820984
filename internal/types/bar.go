package types

// Bar is an OHLCV aggregation of consecutive ticks whose timestamps fall
// into a half-open bucket [BucketStart, BucketStart+interval).
type Bar struct {
	// BucketStart is the bucket's start time, UNIX seconds, aligned to the
	// aggregation interval.
	BucketStart int64
	Open        float64
	High        float64
	Low         float64
	Close       float64
	Volume      uint64
	BidVolume   uint64
	AskVolume   uint64
	// TickCount is the number of ticks folded into this bar.
	TickCount uint64
}

// TimestampUs returns the bar's bucket-start timestamp in UNIX
// microseconds, the reference timestamp fed to the position machine in
// bar mode. The data model carries no separate close timestamp (§3).
func (b Bar) TimestampUs() int64 {
	return b.BucketStart * 1_000_000
}
