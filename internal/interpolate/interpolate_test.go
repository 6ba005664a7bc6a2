package interpolate

import (
	"reflect"
	"testing"
)

func TestInterpolate(t *testing.T) {
	tests := []struct {
		name string
		text string
		data map[string]any
		want string
	}{
		{"simple", "Hi {{name}}", map[string]any{"name": "Ann"}, "Hi Ann"},
		{"missing token kept", "Hi {{missing}}", map[string]any{}, "Hi {{missing}}"},
		{"nil value kept", "Hi {{name}}", map[string]any{"name": nil}, "Hi {{name}}"},
		{"repeated", "{{a}}-{{a}}", map[string]any{"a": "x"}, "x-x"},
		{"number", "{{n}} guests", map[string]any{"n": float64(12)}, "12 guests"},
		{"fraction", "{{n}}", map[string]any{"n": 1.5}, "1.5"},
		{"bool", "{{ok}}", map[string]any{"ok": true}, "true"},
		{"large number and list", "{{n}} {{l}}", map[string]any{"n": 1e20, "l": []any{"a", "b"}}, "100000000000000000000 a,b"},
		{"exponent above 1e21", "{{n}}", map[string]any{"n": 1e21}, "1e+21"},
		{"small fraction", "{{n}}", map[string]any{"n": 0.000001}, "0.000001"},
		{"negative", "{{n}}", map[string]any{"n": -2.5}, "-2.5"},
		{"mixed list", "{{l}}", map[string]any{"l": []any{float64(1), nil, true}}, "1,,true"},
		{"string list", "{{l}}", map[string]any{"l": []string{"x", "y"}}, "x,y"},
		{"non word token ignored", "{{first-name}}", map[string]any{"first-name": "x"}, "{{first-name}}"},
		{"spaces not a token", "{{ name }}", map[string]any{"name": "x"}, "{{ name }}"},
		{"no recursion", "{{a}}", map[string]any{"a": "{{b}}", "b": "deep"}, "{{b}}"},
		{"no escaping", "{{html}}", map[string]any{"html": "<b>"}, "<b>"},
		{"empty text", "", map[string]any{"a": "x"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Interpolate(tt.text, tt.data); got != tt.want {
				t.Errorf("Interpolate(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractVariables(t *testing.T) {
	got := ExtractVariables("{{a}} and {{b}} and {{a}}")
	want := []string{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractVariables() = %v, want %v", got, want)
	}

	if got := ExtractVariables("no tokens"); len(got) != 0 {
		t.Errorf("ExtractVariables() = %v, want empty", got)
	}
}

func TestProps(t *testing.T) {
	props := map[string]any{
		"text":  "Dear {{guest}}",
		"size":  float64(14),
		"style": map[string]any{"title": "{{title}}"},
		"items": []any{"{{guest}}", float64(1)},
	}
	data := map[string]any{"guest": "Bo", "title": "Party"}

	got := Props(props, data)

	if got["text"] != "Dear Bo" {
		t.Errorf("text = %v", got["text"])
	}
	if got["size"] != float64(14) {
		t.Errorf("size = %v", got["size"])
	}
	if got["style"].(map[string]any)["title"] != "Party" {
		t.Errorf("style.title = %v", got["style"])
	}
	if got["items"].([]any)[0] != "Bo" {
		t.Errorf("items[0] = %v", got["items"])
	}
	if props["text"] != "Dear {{guest}}" {
		t.Error("Props modified its input")
	}
}

func TestPropsVariables(t *testing.T) {
	props := map[string]any{
		"b": "{{second}} {{first}}",
		"a": map[string]any{"x": "{{first}}"},
	}
	got := PropsVariables(props)
	want := []string{"first", "second"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PropsVariables() = %v, want %v", got, want)
	}
}
