package minecraft

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"strconv"
	"time"
)

const (
	queryTypeStat      byte = 0x00
	queryTypeHandshake byte = 0x09

	// splitnum\x00\x80\x00 precedes the key/value section and
	// \x01player_\x00\x00 precedes the player section.
	statKeysPadding    = 11
	statPlayersPadding = 10

	// DefaultPort is used when an address carries no port.
	DefaultPort = "25565"
)

var queryMagic = []byte{0xFE, 0xFD}

// FullStat is the decoded reply of a GameSpy4 full stat request.
type FullStat struct {
	Values  map[string]string
	Players []string
}

// PlayerQuerier returns the exact list of connected player names.
type PlayerQuerier interface {
	Players(ctx context.Context, address string) ([]string, error)
}

// QueryClient talks to a server's UDP query listener (enable-query=true).
type QueryClient struct {
	Timeout time.Duration
}

func (c QueryClient) Players(ctx context.Context, address string) ([]string, error) {
	st, err := c.FullStat(ctx, address)
	if err != nil {
		return nil, err
	}
	return st.Players, nil
}

// FullStat performs the handshake and full stat exchange with one socket.
func (c QueryClient) FullStat(ctx context.Context, address string) (*FullStat, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", withDefaultPort(address))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", address, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return nil, fmt.Errorf("query %s: %w", address, err)
		}
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	session := rand.Int31() & 0x0F0F0F0F

	token, err := queryHandshake(conn, session)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", address, contextErr(ctx, err))
	}

	st, err := queryFullStat(conn, session, token)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", address, contextErr(ctx, err))
	}
	return st, nil
}

func queryHandshake(conn net.Conn, session int32) (int32, error) {
	req := queryPacket(queryTypeHandshake, session, nil)
	if _, err := conn.Write(req); err != nil {
		return 0, fmt.Errorf("send handshake: %w", err)
	}

	buf := make([]byte, 64)
	n, err := conn.Read(buf)
	if err != nil {
		return 0, fmt.Errorf("read handshake: %w", err)
	}
	resp := buf[:n]
	if err := checkHeader(resp, queryTypeHandshake, session); err != nil {
		return 0, err
	}

	raw := string(bytes.TrimRight(resp[5:], "\x00"))
	token, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse challenge token %q: %w", raw, err)
	}
	return int32(token), nil
}

func queryFullStat(conn net.Conn, session, token int32) (*FullStat, error) {
	payload := make([]byte, 8)
	binary.BigEndian.PutUint32(payload, uint32(token))
	// the trailing four zero bytes ask for the full stat instead of the basic one
	req := queryPacket(queryTypeStat, session, payload)
	if _, err := conn.Write(req); err != nil {
		return nil, fmt.Errorf("send full stat: %w", err)
	}

	buf := make([]byte, 64*1024)
	n, err := conn.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("read full stat: %w", err)
	}
	return parseFullStat(buf[:n], session)
}

func queryPacket(typ byte, session int32, payload []byte) []byte {
	pkt := make([]byte, 0, 7+len(payload))
	pkt = append(pkt, queryMagic...)
	pkt = append(pkt, typ)
	pkt = binary.BigEndian.AppendUint32(pkt, uint32(session))
	return append(pkt, payload...)
}

func checkHeader(resp []byte, typ byte, session int32) error {
	if len(resp) < 5 {
		return fmt.Errorf("short reply (%d bytes)", len(resp))
	}
	if resp[0] != typ {
		return fmt.Errorf("unexpected reply type 0x%02x", resp[0])
	}
	if got := int32(binary.BigEndian.Uint32(resp[1:5])); got != session {
		return fmt.Errorf("session mismatch: sent %d, got %d", session, got)
	}
	return nil
}

func parseFullStat(resp []byte, session int32) (*FullStat, error) {
	if err := checkHeader(resp, queryTypeStat, session); err != nil {
		return nil, err
	}
	if len(resp) < 5+statKeysPadding {
		return nil, fmt.Errorf("short full stat (%d bytes)", len(resp))
	}

	r := bufio.NewReader(bytes.NewReader(resp[5+statKeysPadding:]))
	st := &FullStat{Values: make(map[string]string)}
	for {
		key, err := readCString(r)
		if err != nil {
			return nil, fmt.Errorf("read stat key: %w", err)
		}
		if key == "" {
			break
		}
		value, err := readCString(r)
		if err != nil {
			return nil, fmt.Errorf("read stat %q: %w", key, err)
		}
		st.Values[key] = value
	}

	if _, err := r.Discard(statPlayersPadding); err != nil {
		return nil, fmt.Errorf("read player section: %w", err)
	}
	for {
		name, err := readCString(r)
		if errors.Is(err, io.EOF) {
			if name != "" {
				st.Players = append(st.Players, name)
			}
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read player: %w", err)
		}
		if name == "" {
			break
		}
		st.Players = append(st.Players, name)
	}
	return st, nil
}

func readCString(r *bufio.Reader) (string, error) {
	s, err := r.ReadString(0)
	if err != nil {
		return s, err
	}
	return s[:len(s)-1], nil
}

func withDefaultPort(address string) string {
	if _, _, err := net.SplitHostPort(address); err == nil {
		return address
	}
	return net.JoinHostPort(address, DefaultPort)
}

// contextErr prefers the context's own error when a read was cut short by
// cancellation.
func contextErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ctxErr, err)
	}
	return err
}
