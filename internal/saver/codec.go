package saver

import (
	"strings"
	"time"

	"IndexSentinel/internal/model"
)

// Bar is the archived form of one daily bar (CSV/Parquet/JSON).
type Bar struct {
	Timestamp int64   `json:"t" parquet:"t"` // Unix timestamp in seconds
	Open      float64 `json:"o" parquet:"o"`
	High      float64 `json:"h" parquet:"h"`
	Low       float64 `json:"l" parquet:"l"`
	Close     float64 `json:"c" parquet:"c"`
	Volume    float64 `json:"v" parquet:"v"`
}

// Codec stores and reads back a symbol's bars in one file.
type Codec interface {
	Save(bars []Bar, path string) error
	Load(path string) ([]Bar, error)
	Extension() string
}

// NewCodec returns the codec for format (csv, parquet, json), or nil if unsupported.
func NewCodec(format string) Codec {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVCodec{}
	case "parquet":
		return ParquetCodec{}
	case "json":
		return JSONCodec{}
	default:
		return nil
	}
}

// FromOHLCV converts model bars for archiving.
func FromOHLCV(bars []model.OHLCV) []Bar {
	out := make([]Bar, len(bars))
	for i, b := range bars {
		out[i] = Bar{
			Timestamp: b.Time.Unix(),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		}
	}
	return out
}

// ToOHLCV converts archived bars back to model bars.
func ToOHLCV(bars []Bar) []model.OHLCV {
	out := make([]model.OHLCV, len(bars))
	for i, b := range bars {
		out[i] = model.OHLCV{
			Time:   time.Unix(b.Timestamp, 0).UTC(),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		}
	}
	return out
}
