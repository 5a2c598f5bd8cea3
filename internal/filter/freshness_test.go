package filter

import (
	"testing"
	"time"

	"jobfeed/internal/clockutil"
	"jobfeed/internal/model"
)

func TestFreshnessKeep(t *testing.T) {
	now := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	f := NewFreshness(clockutil.Fixed(now), model.RetentionWindow)

	cases := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"just posted", now, true},
		{"one hour old", now.Add(-time.Hour), true},
		{"exactly at cutoff", now.Add(-model.RetentionWindow), true},
		{"one second past cutoff", now.Add(-model.RetentionWindow - time.Second), false},
		{"two days old", now.Add(-48 * time.Hour), false},
		{"future timestamp", now.Add(time.Hour), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := f.Keep(tc.t); got != tc.want {
				t.Errorf("Keep(%v) = %v, want %v", tc.t, got, tc.want)
			}
		})
	}
}
