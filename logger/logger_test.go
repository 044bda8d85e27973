package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedact(t *testing.T) {
	tests := []struct {
		name string
		in   []interface{}
		want []interface{}
	}{
		{
			name: "empty",
			in:   nil,
			want: nil,
		},
		{
			name: "plain values pass through",
			in:   []interface{}{"case_id", "abc", "phase", "done"},
			want: []interface{}{"case_id", "abc", "phase", "done"},
		},
		{
			name: "credential keys are masked",
			in:   []interface{}{"openai_api_key", "sk-123", "Authorization", "Bearer x"},
			want: []interface{}{"openai_api_key", "[REDACTED]", "Authorization", "[REDACTED]"},
		},
		{
			name: "dangling key kept",
			in:   []interface{}{"phase", "done", "orphan"},
			want: []interface{}{"phase", "done", "orphan"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, redact(tt.in))
		})
	}
}

func TestNopLogger(t *testing.T) {
	l := Nop().With("service", "test")
	assert.NotPanics(t, func() {
		l.Info("hello", "k", "v")
		l.Warn("warn")
	})
}
