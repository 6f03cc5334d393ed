package features

import (
	"math"
	"strconv"
	"strings"
)

// Missing marks an unresolved value (missing volume, indicator warm-up).
var Missing = math.NaN()

// IsMissing reports whether v is the missing sentinel.
func IsMissing(v float64) bool { return math.IsNaN(v) }

var volumeSuffixes = map[byte]float64{
	'K': 1e3,
	'M': 1e6,
	'B': 1e9,
}

// ParseVolume converts a volume token such as "1.2K", "3M" or "1,234" into a number.
// Tokens that cannot be resolved ("-", "abc", "xK") yield Missing.
func ParseVolume(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return Missing
	}
	if mult, ok := volumeSuffixes[s[len(s)-1]]; ok {
		v, err := strconv.ParseFloat(s[:len(s)-1], 64)
		if err != nil {
			return Missing
		}
		return v * mult
	}
	if s == "-" {
		return Missing
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Missing
	}
	return v
}

// NormalizeVolume accepts either an already numeric volume or a string token.
// Numeric inputs pass through unchanged; anything else yields Missing.
func NormalizeVolume(v any) float64 {
	switch x := v.(type) {
	case string:
		return ParseVolume(x)
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint64:
		return float64(x)
	default:
		return Missing
	}
}
