package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/vnxcius/grumbot/internal/listing"
	"github.com/vnxcius/grumbot/internal/servers"
)

// Lister is the part of listing.Service the API needs.
type Lister interface {
	Registry() *servers.Registry
	ListEntry(ctx context.Context, entry servers.Entry) listing.Result
}

type Handlers struct {
	lister Lister
}

func New(lister Lister) *Handlers {
	return &Handlers{lister: lister}
}

func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// Servers lists the configured servers. Secret ones are only included for
// signed requests.
func (h *Handlers) Servers(includeSecret bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries := h.lister.Registry().Selectable()
		if includeSecret {
			entries = h.lister.Registry().All()
		}
		c.JSON(http.StatusOK, ServerList{Servers: lo.Map(entries, func(e servers.Entry, _ int) Server {
			return newServer(e)
		})})
	}
}

// Players runs the /list pipeline for the server named in the path.
func (h *Handlers) Players(includeSecret bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		entry, err := h.lister.Registry().ByName(name)
		if err != nil || (entry.Secret && !includeSecret) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Unknown server '" + name + "'"})
			return
		}

		res := h.lister.ListEntry(c.Request.Context(), entry)
		if res.Err != nil {
			_ = c.Error(res.Err)
		}
		c.JSON(statusFor(res.Outcome), newPlayerList(res))
	}
}

func statusFor(o listing.Outcome) int {
	switch o {
	case listing.Listed:
		return http.StatusOK
	case listing.NoServer, listing.UnknownServer:
		return http.StatusNotFound
	case listing.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func newPlayerList(res listing.Result) PlayerList {
	out := PlayerList{
		Server:  res.Entry.Name,
		Outcome: res.Outcome.String(),
		Players: []string{},
		Reply:   res.Reply,
	}
	if res.Players != nil {
		out.Players = res.Players
	}
	if st := res.Status; st != nil {
		out.Online = st.Players.Online
		out.Max = st.Players.Max
		out.Version = st.Version.Name
		out.Latency = st.Latency.String()
	}
	return out
}
