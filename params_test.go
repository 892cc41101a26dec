package omsbridge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type labelled struct {
	Name string `json:"name"`
}

func (l labelled) String() string { return "label:" + l.Name }

func TestSerializeParams(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
		want   string
	}{
		{"nil map", nil, ""},
		{"sorted keys", map[string]any{"b": 1, "a": 2}, "a=2&b=1"},
		{"space is %20", map[string]any{"q": "a b"}, "q=a%20b"},
		{"bool", map[string]any{"noConditionFind": true}, "noConditionFind=true"},
		{"nil value", map[string]any{"k": nil}, "k="},
		{"array repeats key", map[string]any{"tags": []string{"a", "b"}}, "tags=a&tags=b"},
		{"empty array drops key", map[string]any{"x": []string{}, "y": "1"}, "y=1"},
		{"object is JSON", map[string]any{"filter": map[string]any{"x": 1}}, "filter=%7B%22x%22%3A1%7D"},
		{"object with strings", map[string]any{"inputFields": map[string]any{"a": "b"}}, "inputFields=%7B%22a%22%3A%22b%22%7D"},
		{"no HTML escaping", map[string]any{"o": map[string]any{"x": "<a&b>"}}, "o=%7B%22x%22%3A%22%3Ca%26b%3E%22%7D"},
		{"stringer struct is JSON", map[string]any{"s": labelled{Name: "x"}}, "s=%7B%22name%22%3A%22x%22%7D"},
		{"time is JSON", map[string]any{"t": time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)}, "t=%222024-03-05T10%3A00%3A00Z%22"},
		{"scalar stringer", map[string]any{"kind": ModernBackend}, "kind=" + ModernBackend.String()},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SerializeParams(tc.params))
		})
	}
}

func TestSerializeParams_Deterministic(t *testing.T) {
	p := map[string]any{"z": "1", "m": []int{3, 4}, "a": map[string]any{"k": "v"}}
	first := SerializeParams(p)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, SerializeParams(p))
	}
}
