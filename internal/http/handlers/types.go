package handlers

import "github.com/vnxcius/grumbot/internal/servers"

type Server struct {
	Name          string `json:"name"`
	Address       string `json:"address"`
	SupportsQuery bool   `json:"supports_query"`
	Secret        bool   `json:"secret,omitempty"`
}

func newServer(e servers.Entry) Server {
	return Server{
		Name:          e.Name,
		Address:       e.Address,
		SupportsQuery: e.SupportsQuery,
		Secret:        e.Secret,
	}
}

type ServerList struct {
	Servers []Server `json:"servers"`
}

type PlayerList struct {
	Server  string   `json:"server"`
	Outcome string   `json:"outcome"`
	Online  int      `json:"online"`
	Max     int      `json:"max"`
	Version string   `json:"version,omitempty"`
	Latency string   `json:"latency,omitempty"`
	Players []string `json:"players"`
	Reply   string   `json:"reply"`
}
