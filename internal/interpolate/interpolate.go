// Package interpolate substitutes {{name}} tokens in template text.
//
// Values are inserted as plain strings. Nothing is escaped and substituted
// text is never scanned again, so callers rendering markup must escape the
// result themselves.
package interpolate

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var tokenRe = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Interpolate replaces every {{identifier}} with data[identifier] when the
// value is present and non-nil. Unknown tokens are left as they are.
func Interpolate(text string, data map[string]any) string {
	if text == "" || len(data) == 0 {
		return text
	}
	return tokenRe.ReplaceAllStringFunc(text, func(token string) string {
		name := tokenRe.FindStringSubmatch(token)[1]
		v, ok := data[name]
		if !ok || v == nil {
			return token
		}
		return toString(v)
	})
}

// ExtractVariables lists the token names in text, first occurrence first.
func ExtractVariables(text string) []string {
	matches := tokenRe.FindAllStringSubmatch(text, -1)
	seen := make(map[string]struct{}, len(matches))
	vars := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		vars = append(vars, m[1])
	}
	return vars
}

// Props interpolates every string inside a component props tree. Maps and
// slices are copied, other values are returned untouched.
func Props(props map[string]any, data map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = value(v, data)
	}
	return out
}

// PropsVariables collects the variables used anywhere inside a props tree in
// a stable order (map keys sorted at each level).
func PropsVariables(props map[string]any) []string {
	var vars []string
	seen := map[string]struct{}{}
	collect(props, func(s string) {
		for _, name := range ExtractVariables(s) {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			vars = append(vars, name)
		}
	})
	if vars == nil {
		vars = []string{}
	}
	return vars
}

func value(v any, data map[string]any) any {
	switch val := v.(type) {
	case string:
		return Interpolate(val, data)
	case map[string]any:
		return Props(val, data)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = value(item, data)
		}
		return out
	}
	return v
}

func toString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return formatFloat(val)
	case float32:
		return formatFloat(float64(val))
	case []string:
		return strings.Join(val, ",")
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			if item != nil {
				parts[i] = toString(item)
			}
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(v)
}

// formatFloat prints numbers the way browsers do: plain decimals below 1e21,
// exponent form above.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.Abs(f) < 1e21:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
