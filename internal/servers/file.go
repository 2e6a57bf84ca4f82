package servers

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/viper"
)

//go:embed servers.toml
var defaultServers []byte

// Load reads the [[servers]] tables of a TOML file and builds a registry.
// When the file does not exist the embedded defaults are used.
func Load(log *slog.Logger, path string) (*Registry, error) {
	v := viper.New()
	v.SetConfigType("toml")

	_, err := os.Stat(path)
	switch {
	case path == "" || errors.Is(err, fs.ErrNotExist):
		log.Warn("Servers file not found, using built-in server list", "path", path)
		if err := v.ReadConfig(bytes.NewReader(defaultServers)); err != nil {
			return nil, fmt.Errorf("read default servers: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("stat servers file: %w", err)
	default:
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read servers file %s: %w", path, err)
		}
	}

	var entries []Entry
	if err := v.UnmarshalKey("servers", &entries); err != nil {
		return nil, fmt.Errorf("decode servers: %w", err)
	}

	reg, err := New(entries)
	if err != nil {
		return nil, err
	}

	for _, e := range reg.All() {
		log.Info("Loaded server",
			"name", e.Name,
			"address", e.Address,
			"channels", len(e.Channels),
			"secret", e.Secret,
			"query", e.SupportsQuery,
		)
	}
	return reg, nil
}
