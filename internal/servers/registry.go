// Package servers holds the static catalog of Minecraft servers the bot knows
// about and resolves command selections against it.
package servers

import (
	"errors"
	"fmt"
	"slices"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
)

// Default is the selection that means "use the server bound to this channel".
const Default = "Default"

// Registry is read-only after New and safe for concurrent use.
type Registry struct {
	entries []Entry
}

// New validates the entries and builds a registry that keeps their order.
func New(entries []Entry) (*Registry, error) {
	if len(entries) == 0 {
		return nil, errors.New("servers: no servers configured")
	}

	folder := cases.Fold()
	names := make(map[string]string, len(entries))
	channels := make(map[string]string)
	for i, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("servers: entry %d has no name", i)
		}
		if e.Address == "" {
			return nil, fmt.Errorf("servers: %q has no address", e.Name)
		}

		folded := folder.String(e.Name)
		if folded == folder.String(Default) {
			return nil, fmt.Errorf("servers: %q is reserved", e.Name)
		}
		if prev, ok := names[folded]; ok {
			return nil, fmt.Errorf("servers: %q collides with %q", e.Name, prev)
		}
		names[folded] = e.Name

		for _, ch := range e.Channels {
			if prev, ok := channels[ch]; ok {
				return nil, fmt.Errorf("servers: channel %s bound to both %q and %q", ch, prev, e.Name)
			}
			channels[ch] = e.Name
		}
	}

	return &Registry{entries: slices.Clone(entries)}, nil
}

// All returns every entry, secret ones included, in configuration order.
func (r *Registry) All() []Entry {
	return slices.Clone(r.entries)
}

// Selectable returns the entries users may pick explicitly.
func (r *Registry) Selectable() []Entry {
	return lo.Filter(r.entries, func(e Entry, _ int) bool {
		return !e.Secret
	})
}

// SelectableNames is Default followed by the names of non-secret entries.
func (r *Registry) SelectableNames() []string {
	names := lo.Map(r.Selectable(), func(e Entry, _ int) string {
		return e.Name
	})
	return append([]string{Default}, names...)
}
