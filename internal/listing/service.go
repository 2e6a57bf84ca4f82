package listing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vnxcius/grumbot/internal/minecraft"
	"github.com/vnxcius/grumbot/internal/servers"
)

type Outcome int

const (
	Listed Outcome = iota
	// NoServer means no server was selected and the channel is not bound.
	NoServer
	// UnknownServer means an explicitly selected server does not exist.
	UnknownServer
	// Unavailable means every status attempt failed.
	Unavailable
	// Failed means the query failed with something other than a timeout.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Listed:
		return "listed"
	case NoServer:
		return "no_server"
	case UnknownServer:
		return "unknown_server"
	case Unavailable:
		return "unavailable"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

const (
	ReplyNoServer   = "**You must either select a server or be in a recognised channel**"
	ReplyUnexpected = "**An unexpected error occurred**"
)

func unknownServerReply(name string) string {
	return fmt.Sprintf("**Unknown server '%s'**", name)
}

// Result is the terminal state of one listing. Reply is always set.
type Result struct {
	Outcome Outcome
	Entry   servers.Entry
	Status  *minecraft.Status
	// Players holds the names shown in Reply, before any placeholder or
	// ellipsis was added.
	Players []string
	Reply   string
	Err     error
}

// Reporter receives errors nobody expected to happen.
type Reporter interface {
	Capture(err error, tags map[string]string)
}

type Service struct {
	log      *slog.Logger
	registry *servers.Registry
	fetcher  *minecraft.Fetcher
	composer Composer
	reporter Reporter
}

func NewService(log *slog.Logger, registry *servers.Registry, fetcher *minecraft.Fetcher, composer Composer, reporter Reporter) *Service {
	return &Service{
		log:      log,
		registry: registry,
		fetcher:  fetcher,
		composer: composer,
		reporter: reporter,
	}
}

func (s *Service) Registry() *servers.Registry {
	return s.registry
}

// List resolves selection (a server name, servers.Default or "") against
// channelID and lists the players of the resulting server.
func (s *Service) List(ctx context.Context, selection, channelID string) Result {
	entry, err := s.registry.Resolve(selection, channelID)
	if err != nil {
		// Resolve only fails with *servers.NotFoundError.
		if selection == "" || selection == servers.Default {
			return Result{Outcome: NoServer, Reply: ReplyNoServer, Err: err}
		}
		return Result{Outcome: UnknownServer, Reply: unknownServerReply(selection), Err: err}
	}
	return s.ListEntry(ctx, entry)
}

// ListEntry lists the players of an already resolved entry.
func (s *Service) ListEntry(ctx context.Context, entry servers.Entry) Result {
	st, err := s.fetcher.FetchStatus(ctx, entry)
	if err != nil {
		s.log.Error("Server unavailable", "server", entry.Name, "error", err)
		return Result{Outcome: Unavailable, Entry: entry, Reply: ReplyUnexpected, Err: err}
	}

	if st.Players.Online == 0 {
		return Result{
			Outcome: Listed,
			Entry:   entry,
			Status:  st,
			Reply:   s.composer.Compose(entry, st, nil),
		}
	}

	names, err := s.fetcher.FetchPlayerNames(ctx, entry)
	if err != nil {
		r := s.fail(err, entry)
		r.Status = st
		return r
	}
	if len(names) == 0 {
		names = st.SampleNames(AnonymousPlayer)
	}

	return Result{
		Outcome: Listed,
		Entry:   entry,
		Status:  st,
		Players: names,
		Reply:   s.composer.Compose(entry, st, names),
	}
}

func (s *Service) fail(err error, entry servers.Entry) Result {
	s.log.Error("Listing failed", "server", entry.Name, "error", err)
	if s.reporter != nil {
		s.reporter.Capture(err, map[string]string{"server": entry.Name})
	}
	return Result{Outcome: Failed, Entry: entry, Reply: ReplyUnexpected, Err: err}
}
