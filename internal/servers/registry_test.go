package servers

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func testEntries() []Entry {
	return []Entry{
		{Name: "Survival", Address: "173.233.142.94:25565", Channels: []string{"930585547842404372", "930322945040072734"}},
		{Name: "Creative", Address: "173.233.142.2:25565", Channels: []string{"930324293840171028"}},
		{Name: "Testing", Address: "173.233.142.3:25565", Channels: []string{"646113723550924849"}, Secret: true},
		{Name: "Events Building", Address: "140.238.96.87:25565", Secret: true},
	}
}

func mustRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := New(testEntries())
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	return reg
}

func TestResolveDefaultUsesChannelBinding(t *testing.T) {
	reg := mustRegistry(t)

	e, err := reg.Resolve(Default, "930585547842404372")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if e.Name != "Survival" {
		t.Fatalf("expected Survival, got %q", e.Name)
	}
}

func TestResolveEmptySelectionActsAsDefault(t *testing.T) {
	reg := mustRegistry(t)

	e, err := reg.Resolve("", "646113723550924849")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if e.Name != "Testing" {
		t.Fatalf("expected Testing, got %q", e.Name)
	}
}

func TestByChannel(t *testing.T) {
	reg := mustRegistry(t)

	tests := []struct {
		channel string
		want    string
	}{
		{"930585547842404372", "Survival"},
		{"930322945040072734", "Survival"},
		{"930324293840171028", "Creative"},
		{"646113723550924849", "Testing"},
		{"1", ""},
		{"", ""},
	}
	for _, tt := range tests {
		e, err := reg.ByChannel(tt.channel)
		if tt.want == "" {
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("channel %q: expected ErrNotFound, got %v", tt.channel, err)
			}
			var nf *NotFoundError
			if !errors.As(err, &nf) || nf.ChannelID != tt.channel {
				t.Fatalf("channel %q: expected NotFoundError with channel, got %#v", tt.channel, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("channel %q: %v", tt.channel, err)
		}
		if e.Name != tt.want {
			t.Fatalf("channel %q: expected %q, got %q", tt.channel, tt.want, e.Name)
		}
	}
}

func TestByNameIsExact(t *testing.T) {
	reg := mustRegistry(t)

	if _, err := reg.ByName("Creative"); err != nil {
		t.Fatalf("by name: %v", err)
	}
	// secret entries stay reachable by exact name
	if _, err := reg.ByName("Events Building"); err != nil {
		t.Fatalf("by name secret: %v", err)
	}

	_, err := reg.ByName("creative")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for wrong case, got %v", err)
	}
	if !strings.Contains(err.Error(), `"creative"`) {
		t.Fatalf("expected name in error, got %q", err.Error())
	}
}

func TestResolveExplicitNameIgnoresChannel(t *testing.T) {
	reg := mustRegistry(t)

	e, err := reg.Resolve("Creative", "930585547842404372")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if e.Name != "Creative" {
		t.Fatalf("expected Creative, got %q", e.Name)
	}
}

func TestSelectableNames(t *testing.T) {
	reg := mustRegistry(t)

	got := reg.SelectableNames()
	want := []string{Default, "Survival", "Creative"}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestAllReturnsCopy(t *testing.T) {
	reg := mustRegistry(t)

	all := reg.All()
	if len(all) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(all))
	}
	all[0].Name = "Changed"
	if reg.All()[0].Name != "Survival" {
		t.Fatal("registry was mutated through All")
	}
}

func TestNewRejectsConfigurationDefects(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		want    string
	}{
		{"empty", nil, "no servers"},
		{"no name", []Entry{{Address: "a:1"}}, "no name"},
		{"no address", []Entry{{Name: "A"}}, "no address"},
		{"reserved", []Entry{{Name: "default", Address: "a:1"}}, "reserved"},
		{"duplicate name", []Entry{{Name: "A", Address: "a:1"}, {Name: "A", Address: "b:1"}}, "collides"},
		{"case collision", []Entry{{Name: "Hub", Address: "a:1"}, {Name: "HUB", Address: "b:1"}}, "collides"},
		{
			"shared channel",
			[]Entry{
				{Name: "A", Address: "a:1", Channels: []string{"42"}},
				{Name: "B", Address: "b:1", Channels: []string{"42"}},
			},
			"channel 42",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.entries)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in error, got %v", tt.want, err)
			}
		})
	}
}

func TestQueryTarget(t *testing.T) {
	e := Entry{Address: "mc.example.com:25565"}
	if e.QueryTarget() != "mc.example.com:25565" {
		t.Fatalf("expected game address, got %q", e.QueryTarget())
	}
	e.QueryAddress = "mc.example.com:25575"
	if e.QueryTarget() != "mc.example.com:25575" {
		t.Fatalf("expected query address, got %q", e.QueryTarget())
	}
}
