// Package listing turns a server selection into the "who is online" reply.
package listing

import (
	"fmt"
	"strings"

	"github.com/vnxcius/grumbot/internal/minecraft"
	"github.com/vnxcius/grumbot/internal/servers"
)

const (
	// AnonymousPlayer is how servers report a hidden player in the sample.
	AnonymousPlayer = "Anonymous Player"
	truncated       = "..."

	DefaultNetwork = "Spooncraft"
)

type Composer struct {
	Network string
}

func (c Composer) network() string {
	if c.Network == "" {
		return DefaultNetwork
	}
	return c.Network
}

// Compose renders the reply for entry. names is not modified.
func (c Composer) Compose(entry servers.Entry, status *minecraft.Status, names []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s %s Server**\n", c.network(), entry.Name)

	online := status.Players.Online
	if online == 0 {
		b.WriteString("**No online players**")
		return b.String()
	}

	list := make([]string, 0, len(names)+1)
	list = append(list, names...)
	switch {
	case len(list) == 0:
		list = append(list, AnonymousPlayer)
	case len(list) < online:
		list = append(list, truncated)
	}

	fmt.Fprintf(&b, "**Online players (%d/%d):**\n", online, status.Players.Max)
	b.WriteString("```")
	b.WriteString(strings.Join(list, ", "))
	b.WriteString("```")
	return b.String()
}
