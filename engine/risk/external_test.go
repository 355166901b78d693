package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExternalScore(t *testing.T) {
	tests := []struct {
		name     string
		temp     *float64
		humidity *float64
		want     float64
	}{
		{"no data", nil, nil, 0},
		{"mild", ptr(25), ptr(50), 0},
		{"warm", ptr(30), nil, 2},
		{"hot", ptr(35), nil, 5},
		{"hot and humid", ptr(36), ptr(85), 7},
		{"humid only", nil, ptr(80), 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExternalScore(tc.temp, tc.humidity))
		})
	}
}
