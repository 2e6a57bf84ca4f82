package minecraft

import (
	"context"
	"errors"
	"net"
	"os"
)

// IsTimeout reports whether err comes from a deadline rather than a refused
// connection or a malformed reply.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
