package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsExpired(t *testing.T) {
	now := time.Now()
	duration := 120 * time.Minute
	grace := 5 * time.Minute

	tests := []struct {
		name string
		age  time.Duration
		want bool
	}{
		{"fresh session", 10 * time.Minute, false},
		{"past duration but inside grace", duration + grace - time.Minute, false},
		{"exactly at the deadline", duration + grace, false},
		{"past the deadline", duration + grace + time.Second, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := TestResult{CreatedAt: now.Add(-tt.age)}
			assert.Equal(t, tt.want, result.IsExpired(now, duration, grace))
		})
	}
}
