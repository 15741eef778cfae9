// internal/erp/client.go
package erp

import (
	"context"
	"strconv"
	"time"
)

// Entity names and fields queried by the analytics engines.
const (
	EntitySaleLine = "sale.order.line"
	EntityProduct  = "product.product"

	FieldProductID  = "product_id"
	FieldQty        = "product_uom_qty"
	FieldPriceTotal = "price_total"
	FieldCreateDate = "create_date"
	FieldID         = "id"
	FieldName       = "name"
	FieldQtyOnHand  = "qty_available"
)

// Condition is one filter clause of a query, e.g. {"create_date", ">=", "2026-01-01"}.
type Condition struct {
	Field string
	Op    string
	Value interface{}
}

// Record is one row returned by the data source: a mapping from field name to
// scalar, string, or an [id, displayName] pair for reference fields.
type Record map[string]interface{}

// Client is the query interface onto the external business system. Retry and
// re-authentication live behind this interface; callers only assume it may
// fail and degrade gracefully.
type Client interface {
	Query(ctx context.Context, entity string, filter []Condition, fields []string, limit int) ([]Record, error)
}

// ExtractID pulls a bare identifier out of a record value, handling the
// [id, displayName] reference-tuple convention.
func ExtractID(raw interface{}) (int, bool) {
	if raw == nil {
		return 0, false
	}
	if pair, ok := raw.([]interface{}); ok {
		if len(pair) == 0 {
			return 0, false
		}
		raw = pair[0]
	}
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		id, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}
		return id, true
	default:
		return 0, false
	}
}

// Int returns the named field as an int, following reference tuples.
func (r Record) Int(field string) (int, bool) {
	return ExtractID(r[field])
}

// Float returns the named field as a float64, defaulting to 0.
func (r Record) Float(field string) float64 {
	switch v := r[field].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// String returns the named field as a string, defaulting to "".
func (r Record) String(field string) string {
	if v, ok := r[field].(string); ok {
		return v
	}
	return ""
}

var recordTimeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Time parses the named field as a timestamp. The bool reports whether the
// value parsed; callers decide how to bucket unparsable records.
func (r Record) Time(field string) (time.Time, bool) {
	raw, ok := r[field].(string)
	if !ok || raw == "" {
		return time.Time{}, false
	}
	for _, layout := range recordTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SinceDate builds the standard "records newer than N days" filter clause.
func SinceDate(now time.Time, days int) Condition {
	from := now.AddDate(0, 0, -days).Format("2006-01-02")
	return Condition{Field: FieldCreateDate, Op: ">=", Value: from}
}
