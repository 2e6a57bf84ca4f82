package minecraft

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vnxcius/grumbot/internal/servers"
)

// MaxStatusAttempts bounds the status pings made for a single request.
const MaxStatusAttempts = 5

var (
	ErrUnavailable = errors.New("server unavailable")
	ErrQueryFailed = errors.New("query failed")
)

// Fetcher retrieves server status and, when the entry allows it, the exact
// player list.
type Fetcher struct {
	log      *slog.Logger
	pinger   StatusPinger
	querier  PlayerQuerier
	attempts int
}

func NewFetcher(log *slog.Logger, pinger StatusPinger, querier PlayerQuerier) *Fetcher {
	return &Fetcher{
		log:      log,
		pinger:   pinger,
		querier:  querier,
		attempts: MaxStatusAttempts,
	}
}

// FetchStatus pings the entry up to MaxStatusAttempts times with no delay
// between attempts.
func (f *Fetcher) FetchStatus(ctx context.Context, entry servers.Entry) (*Status, error) {
	var lastErr error
	attempts := 0
	for attempt := 0; attempt < f.attempts; attempt++ {
		attempts++
		st, err := f.pinger.Ping(ctx, entry.Address)
		if err == nil {
			return st, nil
		}
		lastErr = err

		if IsTimeout(err) {
			f.log.Warn("Status request timed out",
				"server", entry.Name,
				"attempt", attempt+1,
				"error", err,
			)
		} else {
			f.log.Warn("Status request failed",
				"server", entry.Name,
				"attempt", attempt+1,
				"error", err,
			)
		}

		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrUnavailable, attempts, lastErr)
}

// FetchPlayerNames returns nil without touching the network when the entry
// does not support query, or when the query timed out.
func (f *Fetcher) FetchPlayerNames(ctx context.Context, entry servers.Entry) ([]string, error) {
	if !entry.SupportsQuery || f.querier == nil {
		return nil, nil
	}

	names, err := f.querier.Players(ctx, entry.QueryTarget())
	if err == nil {
		return names, nil
	}
	if IsTimeout(err) {
		f.log.Error("Query timed out, using sampled list",
			"server", entry.Name,
			"error", err,
		)
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
}
