package liqpay

import (
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Params holds the request fields of one LiqPay operation, keyed by the
// LiqPay parameter name (amount, currency, description, order_id, ...).
//
// Values may be strings, integers, floats, booleans, [decimal.Decimal],
// [json.Number], nil, or nested Params, map[string]any and []any values.
type Params map[string]any

// Clone returns a deep copy of p. Nested maps and slices are copied so
// the result can be modified without touching the caller's data.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case Params:
		return map[string]any(val.Clone())
	case map[string]any:
		return map[string]any(Params(val).Clone())
	case map[string]string:
		return maps.Clone(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	default:
		return v
	}
}

// String returns the value stored under key formatted as text, or "" when
// the key is absent or nil.
func (p Params) String(key string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	return formatValue(v)
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case decimal.Decimal:
		return val.String()
	case float64:
		return decimal.NewFromFloat(val).String()
	case float32:
		return decimal.NewFromFloat32(val).String()
	case bool:
		if val {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(val)
	}
}

// toDecimal interprets v as a number. Strings are parsed, booleans are not
// numbers.
func toDecimal(v any) (decimal.Decimal, bool) {
	switch val := v.(type) {
	case decimal.Decimal:
		return val, true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(val))
		return d, err == nil
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(val), true
	case float32:
		return decimal.NewFromFloat32(val), true
	case int:
		return decimal.NewFromInt(int64(val)), true
	case int8:
		return decimal.NewFromInt(int64(val)), true
	case int16:
		return decimal.NewFromInt(int64(val)), true
	case int32:
		return decimal.NewFromInt(int64(val)), true
	case int64:
		return decimal.NewFromInt(val), true
	case uint:
		return decimal.NewFromUint64(uint64(val)), true
	case uint8:
		return decimal.NewFromUint64(uint64(val)), true
	case uint16:
		return decimal.NewFromUint64(uint64(val)), true
	case uint32:
		return decimal.NewFromUint64(uint64(val)), true
	case uint64:
		return decimal.NewFromUint64(val), true
	default:
		return decimal.Decimal{}, false
	}
}

// flag coerces a truthy value to 1 and anything else to 0.
func flag(v any) int {
	switch val := v.(type) {
	case nil:
		return 0
	case bool:
		if val {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0
		}
		if b, err := strconv.ParseBool(s); err == nil {
			if b {
				return 1
			}
			return 0
		}
		return 1
	default:
		if d, ok := toDecimal(v); ok {
			if d.IsZero() {
				return 0
			}
			return 1
		}
		return 1
	}
}

// coerceBools rewrites boolean values as 0/1 integers in place.
func coerceBools(p Params) {
	for k, v := range p {
		if b, ok := v.(bool); ok {
			p[k] = flag(b)
		}
	}
}
