package servers

import "slices"

// Entry is one configured Minecraft server.
type Entry struct {
	Name    string `mapstructure:"name" json:"name"`
	Address string `mapstructure:"address" json:"address"`
	// QueryAddress is only needed when the server's query.port differs from
	// its game port.
	QueryAddress  string   `mapstructure:"query_address" json:"-"`
	Channels      []string `mapstructure:"channels" json:"-"`
	Secret        bool     `mapstructure:"secret" json:"-"`
	SupportsQuery bool     `mapstructure:"supports_query" json:"supports_query"`
}

// BoundTo reports whether the channel defaults to this server.
func (e Entry) BoundTo(channelID string) bool {
	return slices.Contains(e.Channels, channelID)
}

// QueryTarget returns the host:port the query protocol should be sent to.
func (e Entry) QueryTarget() string {
	if e.QueryAddress != "" {
		return e.QueryAddress
	}
	return e.Address
}
