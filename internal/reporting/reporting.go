// Package reporting forwards unexpected errors to Sentry.
package reporting

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

type Reporter interface {
	Capture(err error, tags map[string]string)
	Flush(timeout time.Duration) bool
}

type Options struct {
	DSN         string
	Environment string
	Release     string
}

// New returns a Sentry backed reporter, or Nop when no DSN is configured.
func New(opts Options) (Reporter, error) {
	if opts.DSN == "" {
		return Nop{}, nil
	}
	return NewSentry(sentry.ClientOptions{
		Dsn:         opts.DSN,
		Environment: opts.Environment,
		Release:     opts.Release,
	})
}

type Sentry struct {
	hub *sentry.Hub
}

func NewSentry(opts sentry.ClientOptions) (*Sentry, error) {
	client, err := sentry.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("sentry client: %w", err)
	}
	return &Sentry{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

func (s *Sentry) Capture(err error, tags map[string]string) {
	if err == nil {
		return
	}
	s.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelError)
		scope.SetTags(tags)
		s.hub.CaptureException(err)
	})
}

func (s *Sentry) Flush(timeout time.Duration) bool {
	return s.hub.Flush(timeout)
}

type Nop struct{}

func (Nop) Capture(error, map[string]string) {}

func (Nop) Flush(time.Duration) bool { return true }
