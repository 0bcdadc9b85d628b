package snapshot

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"IndexSentinel/internal/model"
)

// Column names of the live quote table.
const (
	FieldSymbol        = "symbol"
	FieldPercentChange = "pChange"
)

var (
	errMissing   = errors.New("field missing")
	errNotFinite = errors.New("value is not finite")
)

// MalformedQuoteError rejects a whole snapshot because one row is unusable.
type MalformedQuoteError struct {
	Row   int
	Field string
	Value any
	Err   error
}

func (e *MalformedQuoteError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("malformed quote at row %d: %s: %v", e.Row, e.Field, e.Err)
	}
	return fmt.Sprintf("malformed quote at row %d: %s=%v: %v", e.Row, e.Field, e.Value, e.Err)
}

func (e *MalformedQuoteError) Unwrap() error { return e.Err }

// Normalize converts raw table rows into quotes, preserving row order.
// A single bad row rejects the entire table.
func Normalize(rows []map[string]any) ([]model.Quote, error) {
	quotes := make([]model.Quote, 0, len(rows))
	for i, row := range rows {
		sym, err := parseSymbol(row[FieldSymbol])
		if err != nil {
			return nil, &MalformedQuoteError{Row: i, Field: FieldSymbol, Value: row[FieldSymbol], Err: err}
		}
		pct, err := ParsePercent(row[FieldPercentChange])
		if err != nil {
			return nil, &MalformedQuoteError{Row: i, Field: FieldPercentChange, Value: row[FieldPercentChange], Err: err}
		}
		quotes = append(quotes, model.Quote{Symbol: sym, PercentChange: pct})
	}
	return quotes, nil
}

func parseSymbol(v any) (string, error) {
	if v == nil {
		return "", errMissing
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", v)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("empty symbol")
	}
	return s, nil
}

// ParsePercent accepts a JSON number or a string such as "1.25%" or " -0.4 ".
func ParsePercent(v any) (float64, error) {
	var f float64
	switch n := v.(type) {
	case nil:
		return 0, errMissing
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case string:
		s := strings.TrimSpace(n)
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, err
		}
		f = parsed
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotFinite
	}
	return f, nil
}
