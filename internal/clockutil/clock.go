// Package clockutil provides model.Clock implementations.
package clockutil

import (
	"time"

	"jobfeed/internal/model"
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// System returns a Clock backed by the wall clock, in UTC.
func System() model.Clock { return systemClock{} }

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// Fixed returns a Clock pinned to t, for tests.
func Fixed(t time.Time) model.Clock { return fixedClock{t: t} }
