package render

import (
	"fmt"
	"strings"
	"time"

	"eventsite/internal/interpolate"
)

// values reads section values with synonym fallback. Every string goes
// through interpolation with the page data before it reaches a template.
type values struct {
	m    map[string]any
	syn  Synonyms
	data map[string]any
}

func (v values) raw(key string) (any, bool) {
	for _, k := range v.syn.keys(key) {
		if val, ok := v.m[k]; ok && val != nil {
			if s, isStr := val.(string); isStr && strings.TrimSpace(s) == "" {
				continue
			}
			return val, true
		}
	}
	return nil, false
}

func (v values) str(key, def string) string {
	val, ok := v.raw(key)
	if !ok {
		return interpolate.Interpolate(def, v.data)
	}
	return interpolate.Interpolate(scalar(val), v.data)
}

func (v values) boolean(key string, def bool) bool {
	val, ok := v.raw(key)
	if !ok {
		return def
	}
	b, isBool := val.(bool)
	if !isBool {
		return def
	}
	return b
}

func (v values) time(key string) (time.Time, bool) {
	s := v.str(key, "")
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// strings reads a list of strings; list items may also be objects with a
// "url" or "src" key, as gallery fields store them.
func (v values) strings(key string) []string {
	val, ok := v.raw(key)
	if !ok {
		return nil
	}
	list, isList := val.([]any)
	if !isList {
		if s, isStr := val.(string); isStr {
			return []string{interpolate.Interpolate(s, v.data)}
		}
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		switch it := item.(type) {
		case string:
			out = append(out, interpolate.Interpolate(it, v.data))
		case map[string]any:
			for _, k := range []string{"url", "src", "image"} {
				if s, ok := it[k].(string); ok && s != "" {
					out = append(out, s)
					break
				}
			}
		}
	}
	return out
}

// items reads a repeater value as a list of string maps.
func (v values) items(key string) []map[string]string {
	val, ok := v.raw(key)
	if !ok {
		return nil
	}
	list, isList := val.([]any)
	if !isList {
		return nil
	}
	out := make([]map[string]string, 0, len(list))
	for _, item := range list {
		obj, isObj := item.(map[string]any)
		if !isObj {
			continue
		}
		row := make(map[string]string, len(obj))
		for k, fv := range obj {
			row[k] = interpolate.Interpolate(scalar(fv), v.data)
		}
		out = append(out, row)
	}
	return out
}

func scalar(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
	case []any, map[string]any:
		return ""
	}
	return fmt.Sprint(v)
}
