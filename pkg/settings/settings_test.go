package settings_test

import (
	"testing"

	"github.com/germanamz/promptly/pkg/settings"
	"github.com/stretchr/testify/assert"
)

func TestParseInt(t *testing.T) {
	tests := []struct {
		raw  string
		want *int
	}{
		{"", nil},
		{"   ", nil},
		{"256", ptr(256)},
		{" 12 ", ptr(12)},
		{"-3", ptr(-3)},
		{"1.5", nil},
		{"12abc", nil},
		{"abc", nil},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, settings.ParseInt(tt.raw))
		})
	}
}

func TestParseFloat(t *testing.T) {
	tests := []struct {
		raw  string
		want *float64
	}{
		{"", nil},
		{"0.7", ptr(0.7)},
		{"0", ptr(0.0)},
		{"-1.25", ptr(-1.25)},
		{"1e-2", ptr(0.01)},
		{"1.5abc", nil},
		{"NaN", nil},
		{"Inf", nil},
		{"hot", nil},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, settings.ParseFloat(tt.raw))
		})
	}
}

func ptr[T any](v T) *T { return &v }
