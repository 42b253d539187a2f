package classnames

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name string
		in   []any
		want string
	}{
		{"no input", nil, ""},
		{"empty and nil dropped", []any{"", nil, false}, ""},
		{"simple join", []any{"foo", "bar"}, "foo bar"},
		{"nested slice", []any{[]string{"foo", "bar"}, "baz"}, "foo bar baz"},
		{"deeply nested", []any{[]any{"a", []any{"b", nil}}, "c"}, "a b c"},
		{"conflict last wins", []any{"px-2", "px-4"}, "px-4"},
		{"conflict keeps position", []any{"px-2", "mt-1", "px-4"}, "px-4 mt-1"},
		{"different families kept", []any{"px-2", "py-2"}, "px-2 py-2"},
		{"space separated input", []any{"px-2 py-1", "px-4"}, "px-4 py-1"},
		{"map conditionals", []any{map[string]bool{"hidden": false}, "block"}, "block"},
		{"duplicate plain token collapses", []any{"foo", "foo"}, "foo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Merge(tt.in...))
		})
	}
}
