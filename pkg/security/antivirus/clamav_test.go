package antivirus

import (
	"bufio"
	"context"
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClamd answers one connection per call with reply(received payload)
func fakeClamd(t *testing.T, reply func(cmd string, payload []byte) string) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				r := bufio.NewReader(conn)
				cmd, err := r.ReadString(0)
				if err != nil {
					return
				}
				var payload []byte
				if cmd == "zINSTREAM\x00" {
					size := make([]byte, 4)
					for {
						if _, err := io.ReadFull(r, size); err != nil {
							return
						}
						n := binary.BigEndian.Uint32(size)
						if n == 0 {
							break
						}
						chunk := make([]byte, n)
						if _, err := io.ReadFull(r, chunk); err != nil {
							return
						}
						payload = append(payload, chunk...)
					}
				}
				_, _ = conn.Write([]byte(reply(cmd, payload) + "\x00"))
			}(conn)
		}
	}()
	return ln.Addr().String()
}

func TestClamAV_Clean(t *testing.T) {
	got := make(chan []byte, 1)
	addr := fakeClamd(t, func(cmd string, payload []byte) string {
		got <- payload
		return "stream: OK"
	})

	v, err := NewClamAV(addr, time.Second).Scan(context.Background(), "cv.pdf", []byte("%PDF-1.4 hello"))
	require.NoError(t, err)
	assert.False(t, v.Infected)
	assert.Equal(t, "clamav", v.Scanner)
	assert.Equal(t, "%PDF-1.4 hello", string(<-got))
}

func TestClamAV_Infected(t *testing.T) {
	addr := fakeClamd(t, func(string, []byte) string { return "stream: Eicar-Signature FOUND" })

	v, err := NewClamAV(addr, time.Second).Scan(context.Background(), "cv.pdf", []byte("X5O!P%@AP"))
	require.NoError(t, err)
	assert.True(t, v.Infected)
	assert.Equal(t, "Eicar-Signature", v.ThreatName)
}

func TestClamAV_ErrorReply(t *testing.T) {
	addr := fakeClamd(t, func(string, []byte) string { return "INSTREAM size limit exceeded. ERROR" })

	_, err := NewClamAV(addr, time.Second).Scan(context.Background(), "cv.pdf", []byte("x"))
	assert.ErrorContains(t, err, "size limit exceeded")
}

func TestClamAV_Ping(t *testing.T) {
	addr := fakeClamd(t, func(cmd string, _ []byte) string {
		if cmd == "zPING\x00" {
			return "PONG"
		}
		return "UNKNOWN COMMAND"
	})
	assert.NoError(t, NewClamAV(addr, time.Second).Ping(context.Background()))
}

func TestClamAV_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	_, err = NewClamAV(addr, time.Second).Scan(context.Background(), "cv.pdf", []byte("x"))
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNop(t *testing.T) {
	v, err := Nop{}.Scan(context.Background(), "cv.pdf", nil)
	require.NoError(t, err)
	assert.False(t, v.Infected)
	assert.NoError(t, Nop{}.Ping(context.Background()))
}
