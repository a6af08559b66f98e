package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"costedge/backend/internal/model"
)

// Coerced a converted cell value. Defaulted is set when the cell could not
// be read as the target type and a fallback was used; Reason says why.
type Coerced[T any] struct {
	Value     T
	Defaulted bool
	Reason    string
}

func ok[T any](v T) Coerced[T] { return Coerced[T]{Value: v} }

func fallback[T any](v T, reason string) Coerced[T] {
	return Coerced[T]{Value: v, Defaulted: true, Reason: reason}
}

// isoDate is the only text date layout accepted.
const isoDate = "2006-01-02"

// Coercer converts cells into typed values. Conversions never fail.
type Coercer struct {
	now func() time.Time
}

// NewCoercer uses now as the source of "today" for date fallbacks.
func NewCoercer(now func() time.Time) *Coercer {
	if now == nil {
		now = time.Now
	}
	return &Coercer{now: now}
}

// Today current calendar date at UTC midnight.
func (c *Coercer) Today() time.Time {
	return dateOf(c.now())
}

// Text blank -> "", number -> integer-truncated digits clamped to the int64
// range, bool -> true/false, formula -> formula text, text -> trimmed.
func (c *Coercer) Text(cell Cell) Coerced[string] {
	switch cell.Kind {
	case CellText:
		return ok(strings.TrimSpace(cell.Text))
	case CellNumber:
		if math.IsNaN(cell.Number) || math.IsInf(cell.Number, 0) {
			return fallback("", "number is not finite")
		}
		return ok(strconv.FormatInt(truncateInt64(cell.Number), 10))
	case CellBool:
		return ok(strconv.FormatBool(cell.Bool))
	case CellFormula:
		return ok(cell.Text)
	default:
		return ok("")
	}
}

// Decimal blank -> 0, number -> its value, text -> digits, '.' and '-'
// kept and parsed. Anything unreadable -> 0.
func (c *Coercer) Decimal(cell Cell) Coerced[decimal.Decimal] {
	switch cell.Kind {
	case CellBlank:
		return fallback(decimal.Zero, "blank cell")
	case CellNumber:
		if math.IsNaN(cell.Number) || math.IsInf(cell.Number, 0) {
			return fallback(decimal.Zero, "number is not finite")
		}
		return ok(decimal.NewFromFloat(cell.Number))
	case CellText:
		cleaned := strings.Map(func(r rune) rune {
			if (r >= '0' && r <= '9') || r == '.' || r == '-' {
				return r
			}
			return -1
		}, cell.Text)
		if cleaned == "" {
			return fallback(decimal.Zero, "no numeric content in "+strconv.Quote(cell.Text))
		}
		v, err := decimal.NewFromString(cleaned)
		if err != nil {
			return fallback(decimal.Zero, "cannot parse "+strconv.Quote(cell.Text)+" as a number")
		}
		return ok(v)
	default:
		return fallback(decimal.Zero, cell.Kind.String()+" cell is not a number")
	}
}

// Date date-formatted number -> its calendar date, text -> YYYY-MM-DD.
// Everything else, including unparseable text, -> today.
func (c *Coercer) Date(cell Cell) Coerced[time.Time] {
	switch cell.Kind {
	case CellNumber:
		if !cell.DateFormatted {
			return fallback(c.Today(), "number is not date formatted")
		}
		t, err := excelize.ExcelDateToTime(cell.Number, false)
		if err != nil {
			return fallback(c.Today(), "invalid serial date")
		}
		return ok(dateOf(t))
	case CellText:
		// no trimming: padded text is not an ISO date
		t, err := time.Parse(isoDate, cell.Text)
		if err != nil {
			return fallback(c.Today(), "cannot parse "+strconv.Quote(cell.Text)+" as YYYY-MM-DD")
		}
		return ok(t)
	case CellBlank:
		return fallback(c.Today(), "blank cell")
	default:
		return fallback(c.Today(), cell.Kind.String()+" cell is not a date")
	}
}

// ChangeType unknown or blank -> NEW_PART.
func (c *Coercer) ChangeType(cell Cell) Coerced[model.ChangeType] {
	return coerceEnum(c, cell, model.ParseChangeType, model.ChangeTypeNewPart)
}

// Status unknown or blank -> PENDING.
func (c *Coercer) Status(cell Cell) Coerced[model.BomStatus] {
	return coerceEnum(c, cell, model.ParseBomStatus, model.BomStatusPending)
}

func coerceEnum[T ~string](c *Coercer, cell Cell, parse func(string) (T, bool), def T) Coerced[T] {
	if cell.IsBlank() {
		return fallback(def, "blank cell")
	}
	text := c.Text(cell).Value
	v, found := parse(strings.ToUpper(text))
	if !found {
		return fallback(def, "unknown value "+strconv.Quote(text))
	}
	return ok(v)
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// truncateInt64 truncates toward zero, clamping values outside the int64 range.
func truncateInt64(v float64) int64 {
	switch {
	case v >= math.MaxInt64:
		return math.MaxInt64
	case v <= math.MinInt64:
		return math.MinInt64
	default:
		return int64(v)
	}
}
