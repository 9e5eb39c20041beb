// Package sanitize prepares free-form capture values for templated display.
package sanitize

import (
	"fmt"
	"strconv"
	"strings"
)

// unsafe characters for the downstream popup templates
var stripper = strings.NewReplacer(
	"{", "", "}", "", "|", "", "[", "", "]", "",
	`"`, "", "'", "", `\`, "", "<", "", ">", "", "%", "",
)

// String converts a raw attribute value to display-safe text. Nil and
// empty values become "Unknown"; numbers stringify as decimal text.
// Whitespace and casing are left untouched.
func String(v any) string {
	if v == nil {
		return "Unknown"
	}

	var s string
	switch val := v.(type) {
	case string:
		s = val
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		s = strconv.Itoa(val)
	case int64:
		s = strconv.FormatInt(val, 10)
	case bool:
		s = strconv.FormatBool(val)
	default:
		s = fmt.Sprint(val)
	}

	if s == "" {
		return "Unknown"
	}
	return stripper.Replace(s)
}
