package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimitArg(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  any
	}{
		{"zero means unbounded", 0, nil},
		{"negative means unbounded", -5, nil},
		{"positive passes through", 25, 25},
		{"one passes through", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, limitArg(tt.limit))
		})
	}
}
