package interpolate

import "sort"

func collect(v any, fn func(string)) {
	switch val := v.(type) {
	case string:
		fn(val)
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			collect(val[k], fn)
		}
	case []any:
		for _, item := range val {
			collect(item, fn)
		}
	}
}
