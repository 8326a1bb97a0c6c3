// Package antivirus scans uploaded resumes before they are stored.
package antivirus

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when no scanner could be reached
var ErrUnavailable = errors.New("antivirus: scanner unavailable")

// Verdict is the outcome of one scan
type Verdict struct {
	Infected   bool
	ThreatName string
	Scanner    string
}

// Scanner checks file content for malware. An error means the file was
// not scanned; callers decide whether to fail closed.
type Scanner interface {
	Scan(ctx context.Context, name string, data []byte) (Verdict, error)
	Name() string
	Ping(ctx context.Context) error
}

// Nop reports every file as clean. It is used when no daemon is configured.
type Nop struct{}

var _ Scanner = Nop{}

func (Nop) Scan(context.Context, string, []byte) (Verdict, error) {
	return Verdict{Scanner: "noop"}, nil
}

func (Nop) Name() string { return "noop" }

func (Nop) Ping(context.Context) error { return nil }
