// Package player talks to a running mpv instance over its JSON IPC socket.
package player

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"
)

// DefaultTimeout bounds one IPC command round-trip when the context carries
// no deadline of its own.
const DefaultTimeout = 10 * time.Second

// MPV is a client for mpv's JSON IPC protocol over a unix socket. Commands
// are serialized; mpv processes them in order and replies with matching
// request_id fields. Event lines interleaved with replies are skipped.
type MPV struct {
	socketPath string
	timeout    time.Duration
	logger     *slog.Logger

	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
	nextID int64
}

// Option configures an MPV client.
type Option func(*MPV)

// WithTimeout sets the per-command timeout used when the context has no
// deadline.
func WithTimeout(d time.Duration) Option {
	return func(m *MPV) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *MPV) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMPV creates a client for the given socket path. The connection is
// established lazily on first use and re-established after errors.
func NewMPV(socketPath string, opts ...Option) *MPV {
	m := &MPV{
		socketPath: socketPath,
		timeout:    DefaultTimeout,
		logger:     slog.Default(),
		nextID:     1,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// command is the wire format of an IPC request.
type command struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

// response is the wire format of an IPC reply or event.
type response struct {
	Error     string `json:"error,omitempty"`
	Event     string `json:"event,omitempty"`
	RequestID int64  `json:"request_id,omitempty"`
}

// LoadVideo instructs mpv to replace the current playlist with the URL and
// begin playback.
func (m *MPV) LoadVideo(ctx context.Context, url string) error {
	if err := m.exec(ctx, "loadfile", url, "replace"); err != nil {
		return fmt.Errorf("loading %q: %w", url, err)
	}
	return nil
}

// SetProperty sets an mpv property such as user-agent or referrer.
func (m *MPV) SetProperty(ctx context.Context, name, value string) error {
	if err := m.exec(ctx, "set_property", name, value); err != nil {
		return fmt.Errorf("setting property %q: %w", name, err)
	}
	return nil
}

// Stop stops playback and clears the playlist.
func (m *MPV) Stop(ctx context.Context) error {
	return m.exec(ctx, "stop")
}

// Close closes the IPC connection if one is open.
func (m *MPV) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeLocked()
}

func (m *MPV) closeLocked() error {
	if m.conn == nil {
		return nil
	}
	err := m.conn.Close()
	m.conn = nil
	m.reader = nil
	return err
}

// exec sends one command and waits for its reply.
func (m *MPV) exec(ctx context.Context, args ...any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(m.timeout)
	}

	if err := m.connectLocked(deadline); err != nil {
		return err
	}

	id := m.nextID
	m.nextID++

	payload, err := json.Marshal(command{Command: args, RequestID: id})
	if err != nil {
		return fmt.Errorf("encoding command: %w", err)
	}
	payload = append(payload, '\n')

	if err := m.conn.SetDeadline(deadline); err != nil {
		return fmt.Errorf("setting socket deadline: %w", err)
	}

	if _, err := m.conn.Write(payload); err != nil {
		m.closeLocked()
		return fmt.Errorf("writing command: %w", err)
	}

	for {
		line, err := m.reader.ReadBytes('\n')
		if err != nil {
			m.closeLocked()
			return fmt.Errorf("reading reply: %w", err)
		}

		var resp response
		if err := json.Unmarshal(line, &resp); err != nil {
			m.logger.Debug("skipping unparseable ipc line", slog.String("error", err.Error()))
			continue
		}
		if resp.Event != "" {
			// Asynchronous playback events interleave with replies.
			continue
		}
		if resp.RequestID != id {
			continue
		}
		if resp.Error != "" && resp.Error != "success" {
			return fmt.Errorf("mpv: %s", resp.Error)
		}
		return nil
	}
}

// connectLocked dials the socket if no live connection exists.
func (m *MPV) connectLocked(deadline time.Time) error {
	if m.conn != nil {
		return nil
	}

	dialer := net.Dialer{Deadline: deadline}
	conn, err := dialer.Dial("unix", m.socketPath)
	if err != nil {
		return fmt.Errorf("connecting to mpv socket %s: %w", m.socketPath, err)
	}

	m.conn = conn
	m.reader = bufio.NewReader(conn)
	m.logger.Debug("connected to mpv", slog.String("socket", m.socketPath))
	return nil
}
