package minecraft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/Tnze/go-mc/bot"
	"github.com/Tnze/go-mc/data/packetid"
	mcnet "github.com/Tnze/go-mc/net"
	pk "github.com/Tnze/go-mc/net/packet"
	"github.com/samber/lo"
)

// handshakeStatus is the next state requested by a Server List Ping handshake.
const handshakeStatus = 1

var errPongMismatch = errors.New("pong does not match ping")

// Status is the Server List Ping response of a Java edition server.
type Status struct {
	Version     Version         `json:"version"`
	Players     Players         `json:"players"`
	Description json.RawMessage `json:"description"`
	Favicon     string          `json:"favicon,omitempty"`

	Latency time.Duration `json:"-"`
}

type Version struct {
	Name     string `json:"name"`
	Protocol int    `json:"protocol"`
}

// Players carries the authoritative counts. Sample is whatever the server
// chose to expose and is usually capped well below Online.
type Players struct {
	Max    int      `json:"max"`
	Online int      `json:"online"`
	Sample []Sample `json:"sample"`
}

type Sample struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// SampleNames returns the sampled player names, dropping any equal to skip.
func (s *Status) SampleNames(skip string) []string {
	return lo.FilterMap(s.Players.Sample, func(p Sample, _ int) (string, bool) {
		return p.Name, p.Name != skip
	})
}

// StatusPinger performs a single status request.
type StatusPinger interface {
	Ping(ctx context.Context, address string) (*Status, error)
}

// JavaPinger pings with go-mc. Addresses without a port get the default
// port and SRV lookup.
type JavaPinger struct {
	Timeout time.Duration
}

func (p JavaPinger) Ping(ctx context.Context, address string) (*Status, error) {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	conn, err := mcnet.DefaultDialer.DialMCContext(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("ping %s: %w", address, contextErr(ctx, err))
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.Socket.SetDeadline(deadline); err != nil {
			return nil, fmt.Errorf("ping %s: %w", address, err)
		}
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.Socket.SetDeadline(time.Now())
	})
	defer stop()

	data, delay, err := pingAndList(conn, address)
	if err != nil {
		return nil, fmt.Errorf("ping %s: %w", address, contextErr(ctx, err))
	}

	st, err := decodeStatus(data)
	if err != nil {
		return nil, fmt.Errorf("ping %s: %w", address, err)
	}
	st.Latency = delay
	return st, nil
}

// pingAndList runs the status exchange on an open connection: handshake,
// status request, then a ping whose round trip is reported as the delay.
func pingAndList(conn *mcnet.Conn, address string) ([]byte, time.Duration, error) {
	host, port := splitHostPort(address)

	err := conn.WritePacket(pk.Marshal(
		0x00, // handshake
		pk.VarInt(bot.ProtocolVersion),
		pk.String(host),
		pk.UnsignedShort(port),
		pk.Byte(handshakeStatus),
	))
	if err != nil {
		return nil, 0, fmt.Errorf("send handshake: %w", err)
	}
	if err := conn.WritePacket(pk.Marshal(packetid.ServerboundStatusRequest)); err != nil {
		return nil, 0, fmt.Errorf("send status request: %w", err)
	}

	var (
		p    pk.Packet
		list pk.String
	)
	if err := conn.ReadPacket(&p); err != nil {
		return nil, 0, fmt.Errorf("read status: %w", err)
	}
	if err := p.Scan(&list); err != nil {
		return nil, 0, fmt.Errorf("scan status: %w", err)
	}

	start := time.Now()
	sent := pk.Long(start.UnixMilli())
	if err := conn.WritePacket(pk.Marshal(packetid.ServerboundStatusPingRequest, sent)); err != nil {
		return nil, 0, fmt.Errorf("send ping: %w", err)
	}

	var pong pk.Long
	if err := conn.ReadPacket(&p); err != nil {
		return nil, 0, fmt.Errorf("read pong: %w", err)
	}
	if err := p.Scan(&pong); err != nil {
		return nil, 0, fmt.Errorf("scan pong: %w", err)
	}
	if pong != sent {
		return nil, 0, fmt.Errorf("%w: sent %d, got %d", errPongMismatch, sent, pong)
	}
	return []byte(list), time.Since(start), nil
}

// splitHostPort returns what the handshake announces. Addresses without a
// usable port announce the default one.
func splitHostPort(address string) (string, uint16) {
	host, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return address, bot.DefaultPort
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return host, bot.DefaultPort
	}
	return host, uint16(port)
}

func decodeStatus(data []byte) (*Status, error) {
	var st Status
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	return &st, nil
}
