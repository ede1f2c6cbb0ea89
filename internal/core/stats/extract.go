package stats

import "github.com/shopspring/decimal"

// ExtractFloat pulls a numeric value from a dynamic payload map by field
// name. Upstream exports are sloppy about numeric typing: JSON numbers
// arrive as float64, but CSV-derived payloads carry numbers as strings,
// so strings go through decimal for exact parsing before conversion.
// Returns nil when the field is missing, null, or not numeric, so callers
// can distinguish "absent" from zero.
func ExtractFloat(data map[string]interface{}, field string) *float64 {
	if field == "" {
		return nil
	}
	v, ok := data[field]
	if !ok {
		return nil
	}
	switch val := v.(type) {
	case float64:
		return &val
	case float32:
		f := float64(val)
		return &f
	case int:
		f := float64(val)
		return &f
	case int64:
		f := float64(val)
		return &f
	case int32:
		f := float64(val)
		return &f
	case string:
		d, err := decimal.NewFromString(val)
		if err == nil {
			f, _ := d.Float64()
			return &f
		}
	}
	return nil
}

// ExtractString pulls a string value from a dynamic payload map.
// Returns "" when the field is missing or not a string.
func ExtractString(data map[string]interface{}, field string) string {
	if v, ok := data[field].(string); ok {
		return v
	}
	return ""
}
