package listing

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/vnxcius/grumbot/internal/minecraft"
	"github.com/vnxcius/grumbot/internal/servers"
)

type fakePinger struct {
	calls  int
	status *minecraft.Status
	err    error
}

func (p *fakePinger) Ping(context.Context, string) (*minecraft.Status, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.status, nil
}

type fakeQuerier struct {
	calls int
	names []string
	err   error
}

func (q *fakeQuerier) Players(context.Context, string) ([]string, error) {
	q.calls++
	return q.names, q.err
}

type fakeReporter struct {
	errs []error
	tags []map[string]string
}

func (r *fakeReporter) Capture(err error, tags map[string]string) {
	r.errs = append(r.errs, err)
	r.tags = append(r.tags, tags)
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

type fixture struct {
	pinger   *fakePinger
	querier  *fakeQuerier
	reporter *fakeReporter
	service  *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg, err := servers.New([]servers.Entry{
		{Name: "Survival", Address: "173.233.142.94:25565", Channels: []string{"930585547842404372"}},
		{Name: "Lobby", Address: "lobby.example.com:25565", SupportsQuery: true},
	})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{
		pinger:   &fakePinger{},
		querier:  &fakeQuerier{},
		reporter: &fakeReporter{},
	}
	fetcher := minecraft.NewFetcher(log, f.pinger, f.querier)
	f.service = NewService(log, reg, fetcher, Composer{}, f.reporter)
	return f
}

func withSample(online, maxPlayers int, names ...string) *minecraft.Status {
	st := status(online, maxPlayers)
	for _, n := range names {
		st.Players.Sample = append(st.Players.Sample, minecraft.Sample{Name: n})
	}
	return st
}

func TestListDefaultResolvesChannel(t *testing.T) {
	f := newFixture(t)
	f.pinger.status = withSample(1, 20, "Alice")

	res := f.service.List(context.Background(), servers.Default, "930585547842404372")
	if res.Outcome != Listed {
		t.Fatalf("expected listed, got %v (%v)", res.Outcome, res.Err)
	}
	if res.Entry.Name != "Survival" {
		t.Fatalf("expected Survival, got %q", res.Entry.Name)
	}
}

func TestListSampledPlayers(t *testing.T) {
	f := newFixture(t)
	f.pinger.status = withSample(3, 20, "Alice", "Bob")

	res := f.service.List(context.Background(), "Survival", "")
	if res.Outcome != Listed {
		t.Fatalf("expected listed, got %v (%v)", res.Outcome, res.Err)
	}
	if !strings.Contains(res.Reply, "(3/20)") || !strings.Contains(res.Reply, "```Alice, Bob, ...```") {
		t.Fatalf("unexpected reply %q", res.Reply)
	}
	if f.querier.calls != 0 {
		t.Fatalf("query should not run for Survival, got %d calls", f.querier.calls)
	}
}

func TestListNobodyOnlineSkipsQuery(t *testing.T) {
	f := newFixture(t)
	f.pinger.status = withSample(0, 20)
	f.querier.names = []string{"Alice"}

	res := f.service.List(context.Background(), "Lobby", "")
	if res.Reply != "**Spooncraft Lobby Server**\n**No online players**" {
		t.Fatalf("unexpected reply %q", res.Reply)
	}
	if f.querier.calls != 0 {
		t.Fatalf("query should be skipped, got %d calls", f.querier.calls)
	}
}

func TestListQueryNames(t *testing.T) {
	f := newFixture(t)
	f.pinger.status = withSample(3, 20, "Alice")
	f.querier.names = []string{"Alice", "Bob", "Carol"}

	res := f.service.List(context.Background(), "Lobby", "")
	if !strings.HasSuffix(res.Reply, "```Alice, Bob, Carol```") {
		t.Fatalf("unexpected reply %q", res.Reply)
	}
	if !slices.Equal(res.Players, []string{"Alice", "Bob", "Carol"}) {
		t.Fatalf("unexpected players %v", res.Players)
	}
}

func TestListQueryTimeoutFallsBackToSample(t *testing.T) {
	f := newFixture(t)
	f.pinger.status = withSample(3, 20, "Alice", AnonymousPlayer, "Bob")
	f.querier.err = timeoutError{}

	res := f.service.List(context.Background(), "Lobby", "")
	if res.Outcome != Listed {
		t.Fatalf("expected listed, got %v (%v)", res.Outcome, res.Err)
	}
	if !strings.HasSuffix(res.Reply, "```Alice, Bob, ...```") {
		t.Fatalf("unexpected reply %q", res.Reply)
	}
	if len(f.reporter.errs) != 0 {
		t.Fatalf("timeouts should not be reported, got %v", f.reporter.errs)
	}
}

func TestListQueryFailureIsSurfaced(t *testing.T) {
	f := newFixture(t)
	f.pinger.status = withSample(3, 20, "Alice")
	f.querier.err = errors.New("malformed reply")

	res := f.service.List(context.Background(), "Lobby", "")
	if res.Outcome != Failed || res.Reply != ReplyUnexpected {
		t.Fatalf("expected failed, got %v %q", res.Outcome, res.Reply)
	}
	if !errors.Is(res.Err, minecraft.ErrQueryFailed) {
		t.Fatalf("expected ErrQueryFailed, got %v", res.Err)
	}
	if len(f.reporter.errs) != 1 || f.reporter.tags[0]["server"] != "Lobby" {
		t.Fatalf("expected one report tagged Lobby, got %v", f.reporter.tags)
	}
}

func TestListUnavailable(t *testing.T) {
	f := newFixture(t)
	f.pinger.err = timeoutError{}

	res := f.service.List(context.Background(), "Lobby", "")
	if res.Outcome != Unavailable || res.Reply != ReplyUnexpected {
		t.Fatalf("expected unavailable, got %v %q", res.Outcome, res.Reply)
	}
	if f.pinger.calls != minecraft.MaxStatusAttempts {
		t.Fatalf("expected %d pings, got %d", minecraft.MaxStatusAttempts, f.pinger.calls)
	}
	if f.querier.calls != 0 {
		t.Fatalf("no query expected after exhaustion, got %d", f.querier.calls)
	}
}

func TestListResolutionFailures(t *testing.T) {
	tests := []struct {
		name      string
		selection string
		channel   string
		outcome   Outcome
		reply     string
	}{
		{"default unbound", servers.Default, "1", NoServer, ReplyNoServer},
		{"empty unbound", "", "", NoServer, ReplyNoServer},
		{"unknown name", "Skyblock", "930585547842404372", UnknownServer, "**Unknown server 'Skyblock'**"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			res := f.service.List(context.Background(), tt.selection, tt.channel)
			if res.Outcome != tt.outcome || res.Reply != tt.reply {
				t.Fatalf("expected %v %q, got %v %q", tt.outcome, tt.reply, res.Outcome, res.Reply)
			}
			var nf *servers.NotFoundError
			if !errors.As(res.Err, &nf) {
				t.Fatalf("expected NotFoundError, got %v", res.Err)
			}
			if f.pinger.calls != 0 {
				t.Fatalf("no ping expected, got %d", f.pinger.calls)
			}
		})
	}
}
