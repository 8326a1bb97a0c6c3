package antivirus

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"strings"
	"time"
)

// chunkSize stays well under clamd's default StreamMaxLength
const chunkSize = 1 << 20

// ClamAV talks to a clamd daemon over TCP (host:port) or a unix socket
// (an absolute path)
type ClamAV struct {
	address string
	timeout time.Duration
	dialer  net.Dialer
}

var _ Scanner = (*ClamAV)(nil)

func NewClamAV(address string, timeout time.Duration) *ClamAV {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ClamAV{address: address, timeout: timeout}
}

func (c *ClamAV) Name() string { return "clamav" }

// Ping sends PING and expects PONG
func (c *ClamAV) Ping(ctx context.Context) error {
	reply, err := c.roundTrip(ctx, func(conn net.Conn) error {
		_, err := conn.Write([]byte("zPING\x00"))
		return err
	})
	if err != nil {
		return err
	}
	if reply != "PONG" {
		return fmt.Errorf("antivirus: unexpected ping reply %q", reply)
	}
	return nil
}

// Scan streams data with zINSTREAM. Replies look like "stream: OK",
// "stream: Eicar-Signature FOUND" or "<message> ERROR".
func (c *ClamAV) Scan(ctx context.Context, name string, data []byte) (Verdict, error) {
	v := Verdict{Scanner: c.Name()}

	reply, err := c.roundTrip(ctx, func(conn net.Conn) error {
		if _, err := conn.Write([]byte("zINSTREAM\x00")); err != nil {
			return err
		}
		size := make([]byte, 4)
		for off := 0; off < len(data); off += chunkSize {
			end := min(off+chunkSize, len(data))
			binary.BigEndian.PutUint32(size, uint32(end-off))
			if _, err := conn.Write(size); err != nil {
				return err
			}
			if _, err := conn.Write(data[off:end]); err != nil {
				return err
			}
		}
		_, err := conn.Write([]byte{0, 0, 0, 0})
		return err
	})
	if err != nil {
		return v, fmt.Errorf("scan %s: %w", name, err)
	}

	switch {
	case strings.HasSuffix(reply, "FOUND"):
		v.Infected = true
		threat := strings.TrimSuffix(reply, "FOUND")
		if i := strings.Index(threat, ":"); i >= 0 {
			threat = threat[i+1:]
		}
		v.ThreatName = strings.TrimSpace(threat)
	case strings.HasSuffix(reply, "ERROR"):
		return v, fmt.Errorf("scan %s: %s", name, reply)
	case !strings.HasSuffix(reply, "OK"):
		return v, fmt.Errorf("scan %s: unexpected reply %q", name, reply)
	}
	return v, nil
}

func (c *ClamAV) roundTrip(ctx context.Context, send func(net.Conn) error) (string, error) {
	network := "tcp"
	if strings.HasPrefix(c.address, "/") {
		network = "unix"
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, err := c.dialer.DialContext(ctx, network, c.address)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	if err := send(conn); err != nil {
		return "", fmt.Errorf("antivirus: send: %w", err)
	}

	// z-prefixed commands answer with a NUL-terminated line
	reply, err := bufio.NewReader(conn).ReadString(0)
	if err != nil && reply == "" {
		return "", fmt.Errorf("antivirus: read reply: %w", err)
	}
	return strings.TrimSpace(strings.TrimRight(reply, "\x00")), nil
}
