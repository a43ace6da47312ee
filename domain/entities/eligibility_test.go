package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQualifies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		held     []int64
		required []int64
		want     bool
	}{
		{
			name:     "empty requirements admit member with no roles",
			held:     nil,
			required: nil,
			want:     true,
		},
		{
			name:     "empty requirements admit member with roles",
			held:     []int64{1, 2, 3},
			required: []int64{},
			want:     true,
		},
		{
			name:     "no roles against non-empty requirements",
			held:     nil,
			required: []int64{10},
			want:     false,
		},
		{
			name:     "disjoint sets",
			held:     []int64{1, 2},
			required: []int64{10, 20},
			want:     false,
		},
		{
			name:     "single overlapping role is enough",
			held:     []int64{1, 20},
			required: []int64{10, 20, 30},
			want:     true,
		},
		{
			name:     "holding every required role",
			held:     []int64{10, 20},
			required: []int64{10, 20},
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Qualifies(tt.held, tt.required))
		})
	}
}
