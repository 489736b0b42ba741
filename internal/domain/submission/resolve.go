package submission

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var listSeparator = regexp.MustCompile(`[\s,]+`)

// FirstPresent returns the first value that is present. Strings must be
// non-blank after trimming (the trimmed form is returned), slices must be
// non-empty, anything else counts when non-nil.
func FirstPresent(values ...any) (any, bool) {
	for _, value := range values {
		switch v := value.(type) {
		case nil:
			continue
		case string:
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed, true
			}
		case []any:
			if len(v) > 0 {
				return v, true
			}
		case []string:
			if len(v) > 0 {
				return v, true
			}
		default:
			return v, true
		}
	}
	return nil, false
}

// SplitList turns a delimited string or a list of strings into trimmed, non-blank items.
func SplitList(value any) []string {
	out := []string{}
	switch v := value.(type) {
	case string:
		out = appendSplit(out, v)
	case []string:
		for _, item := range v {
			out = appendSplit(out, item)
		}
	case []any:
		for _, item := range v {
			switch s := item.(type) {
			case nil:
			case string:
				out = appendSplit(out, s)
			default:
				if text := Stringify(s); text != "" {
					out = append(out, text)
				}
			}
		}
	}
	return out
}

func appendSplit(out []string, s string) []string {
	for _, part := range listSeparator.Split(s, -1) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Stringify renders a scalar JSON value as text. Lists are joined with a space.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	case []string:
		return strings.Join(v, " ")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s := Stringify(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}

// ParseLocation reads a "lat lng" string. When the first number is outside
// ±90 and the second is inside it, the pair is treated as reversed.
func ParseLocation(location string) (lat, lng float64, ok bool) {
	parts := strings.Fields(location)
	if len(parts) < 2 {
		return 0, 0, false
	}
	a, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, false
	}
	b, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, false
	}
	if abs(a) > 90 && abs(b) <= 90 {
		a, b = b, a
	}
	return a, b, true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
