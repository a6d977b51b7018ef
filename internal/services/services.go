// Package services implements the use cases behind the HTTP API. Every
// operation is scoped to an owner id; the empty owner is the anonymous user.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"spendwise/internal/core"
	"spendwise/internal/store"
)

// Publisher delivers created notifications out of process.
type Publisher interface {
	PublishNotification(ctx context.Context, n core.Notification) error
}

// clock is swapped in tests.
type clock func() time.Time

func (c clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

func newID() string {
	return uuid.NewString()
}

// lookupErr turns a store miss into a NotFound error carrying msg and wraps
// anything else with op.
func lookupErr(err error, op, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return &core.Error{Kind: core.KindNotFound, Message: msg, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// dayRange widens from and to to the start and end of their days in loc.
func dayRange(from, to *time.Time, loc *time.Location) (*time.Time, *time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	var start, end *time.Time
	if from != nil {
		f := from.In(loc)
		s := time.Date(f.Year(), f.Month(), f.Day(), 0, 0, 0, 0, loc)
		start = &s
	}
	if to != nil {
		t := to.In(loc)
		e := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
		end = &e
	}
	return start, end
}
