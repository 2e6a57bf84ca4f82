package servers

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
)

var ErrNotFound = errors.New("server not found")

// NotFoundError is returned when neither a name nor a channel binding
// matches. Exactly one of Name and ChannelID is set.
type NotFoundError struct {
	Name      string
	ChannelID string
}

func (e *NotFoundError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("server %q not found", e.Name)
	}
	return fmt.Sprintf("no server bound to channel %s", e.ChannelID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ByChannel returns the first entry, in registry order, bound to channelID.
func (r *Registry) ByChannel(channelID string) (Entry, error) {
	e, ok := lo.Find(r.entries, func(e Entry) bool {
		return e.BoundTo(channelID)
	})
	if !ok {
		return Entry{}, &NotFoundError{ChannelID: channelID}
	}
	return e, nil
}

// ByName matches the name exactly, case included.
func (r *Registry) ByName(name string) (Entry, error) {
	e, ok := lo.Find(r.entries, func(e Entry) bool {
		return e.Name == name
	})
	if !ok {
		return Entry{}, &NotFoundError{Name: name}
	}
	return e, nil
}

// Resolve maps a command selection to an entry. An empty selection is treated
// as Default.
func (r *Registry) Resolve(selection, channelID string) (Entry, error) {
	if selection == "" || selection == Default {
		return r.ByChannel(channelID)
	}
	return r.ByName(selection)
}
