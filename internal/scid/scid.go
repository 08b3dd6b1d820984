// Package scid implements a zero-copy reader for the Sierra Chart SCID
// tick-data binary format: a 56-byte header followed by fixed-width
// 40-byte little-endian trade records.
package scid

import (
	"encoding/binary"
	"math"
	"os"

	"golang.org/x/exp/mmap"

	"github.com/tickframe/backtest/internal/boundary"
	"github.com/tickframe/backtest/internal/types"
	apperrors "github.com/tickframe/backtest/pkg/errors"
)

const (
	headerSize = 56
	recordSize = 40
	magic      = "SCID"

	// epochOffsetDays is the day count from the SCID epoch (1899-12-30
	// 00:00 UTC) to the UNIX epoch (1970-01-01 00:00 UTC).
	epochOffsetDays = 25569.0
	usPerDay        = 86_400_000_000.0
)

// ScaleMode controls how raw price fields are interpreted.
type ScaleMode int

const (
	// ScaleNative treats price fields as already-scaled native floats.
	ScaleNative ScaleMode = iota
	// ScaleInt100 divides every price field by 100, for feeds that store
	// prices as scaled integers.
	ScaleInt100
)

// File is a read-only, memory-mapped handle onto a SCID file. It owns the
// backing bytes for its lifetime; At, All and Iterate return copies of
// decoded records, never references into the map.
type File struct {
	path       string
	reader     *mmap.ReaderAt
	numRecords int
	scale      ScaleMode
}

// Open memory-maps path read-only and validates its header. scale controls
// whether price fields are divided by 100 (see §4.1's scaled-int note).
func Open(path string, scale ScaleMode) (*File, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrCodeIoError, err, "scid: stat %s", path)
	}
	if stat.Size() < headerSize {
		return nil, apperrors.Newf(apperrors.ErrCodeInvalidFormat, "scid: %s smaller than header (%d bytes)", path, stat.Size())
	}

	reader, err := mmap.Open(path)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrCodeIoError, err, "scid: mmap %s", path)
	}

	header := make([]byte, headerSize)
	if _, err := reader.ReadAt(header, 0); err != nil {
		_ = reader.Close()
		return nil, apperrors.Wrapf(apperrors.ErrCodeIoError, err, "scid: read header of %s", path)
	}

	if string(header[0:4]) != magic {
		_ = reader.Close()
		return nil, apperrors.Newf(apperrors.ErrCodeInvalidFormat, "scid: %s has bad magic %q, want %q", path, header[0:4], magic)
	}

	dataLen := reader.Len() - headerSize
	if dataLen < 0 || dataLen%recordSize != 0 {
		_ = reader.Close()
		return nil, apperrors.Newf(apperrors.ErrCodeTruncatedFile, "scid: %s data length %d is not a multiple of record size %d", path, dataLen, recordSize)
	}

	return &File{
		path:       path,
		reader:     reader,
		numRecords: dataLen / recordSize,
		scale:      scale,
	}, nil
}

// Close releases the memory map.
func (f *File) Close() error {
	return f.reader.Close()
}

// NumRecords returns the total tick record count.
func (f *File) NumRecords() int {
	return f.numRecords
}

// At decodes and returns the tick at the given record index.
func (f *File) At(index int) (types.Tick, error) {
	if index < 0 || index >= f.numRecords {
		return types.Tick{}, apperrors.Newf(apperrors.ErrCodeInvalidParameter, "scid: index %d out of range [0,%d)", index, f.numRecords)
	}

	buf := make([]byte, recordSize)
	offset := int64(headerSize + index*recordSize)
	if _, err := f.reader.ReadAt(buf, offset); err != nil {
		return types.Tick{}, apperrors.Wrapf(apperrors.ErrCodeIoError, err, "scid: %s read record %d", f.path, index)
	}

	return f.decode(buf), nil
}

func (f *File) decode(buf []byte) types.Tick {
	scDatetime := math.Float64frombits(binary.LittleEndian.Uint64(buf[0:8]))
	// offset 8:12 (open) is not read: the trade price is the close field
	// per Sierra's tick-record convention (§4.1).
	high := math.Float32frombits(binary.LittleEndian.Uint32(buf[12:16]))
	low := math.Float32frombits(binary.LittleEndian.Uint32(buf[16:20]))
	closeVal := math.Float32frombits(binary.LittleEndian.Uint32(buf[20:24]))
	totalVolume := binary.LittleEndian.Uint32(buf[28:32])
	bidVolume := binary.LittleEndian.Uint32(buf[32:36])
	askVolume := binary.LittleEndian.Uint32(buf[36:40])

	us := timestampUs(scDatetime)

	price := float64(closeVal)
	bid := float64(low)
	ask := float64(high)
	if f.scale == ScaleInt100 {
		price /= 100.0
		bid /= 100.0
		ask /= 100.0
	}

	return types.Tick{
		TimestampUs: us,
		Price:       price,
		Bid:         bid,
		Ask:         ask,
		Volume:      totalVolume,
		BidVolume:   bidVolume,
		AskVolume:   askVolume,
	}
}

// timestampUs converts a SCID sc_datetime (days since 1899-12-30 00:00 UTC,
// with a fractional part) to UNIX microseconds.
func timestampUs(scDatetime float64) int64 {
	return int64(math.Round((scDatetime - epochOffsetDays) * usPerDay))
}

// All decodes and returns every tick in the file, in record order.
func (f *File) All() ([]types.Tick, error) {
	ticks := make([]types.Tick, f.numRecords)
	for i := 0; i < f.numRecords; i++ {
		t, err := f.At(i)
		if err != nil {
			return nil, err
		}
		ticks[i] = t
	}
	return ticks, nil
}

// Iterate lazily streams ticks in order, calling fn for each. Iteration
// stops and the error is returned as soon as fn returns a non-nil error.
func (f *File) Iterate(fn func(int, types.Tick) error) error {
	for i := 0; i < f.numRecords; i++ {
		t, err := f.At(i)
		if err != nil {
			return err
		}
		if err := fn(i, t); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot returns the column-oriented view of every tick in the file, the
// shape load_scid (§6) hands back to callers.
func (f *File) Snapshot() (types.TickSnapshot, error) {
	ticks, err := f.All()
	if err != nil {
		return types.TickSnapshot{}, err
	}
	snapshot := types.NewTickSnapshot(ticks)
	snapshot.Timestamp = boundary.TickSnapshotSeconds(snapshot)
	return snapshot, nil
}
