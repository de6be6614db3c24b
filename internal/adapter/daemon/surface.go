package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/heartmarshall/lexilens/internal/domain"
	"github.com/heartmarshall/lexilens/internal/protocol"
)

const (
	pathSurfaceWS = "/v1/surface/ws"

	writeWait    = 10 * time.Second
	pushedBuffer = 16
	// repliesBuffer leaves room for stale replies next to the awaited one.
	repliesBuffer = 4
)

// ErrClosed is returned by a SurfaceConn whose socket has gone away.
var ErrClosed = errors.New("surface connection closed")

// SurfaceConn is a display surface attached to the daemon over WebSocket.
// Connecting marks the surface open; Close marks it closed.
type SurfaceConn struct {
	conn *websocket.Conn
	log  *slog.Logger

	writeMu sync.Mutex
	queryMu sync.Mutex
	// owed counts replies still due to queries that gave up waiting. The
	// daemon answers in order, so that many replies are stale. Guarded by queryMu.
	owed int

	replies chan protocol.Message
	pushed  chan protocol.SelectionAccepted

	once sync.Once
	done chan struct{}
	err  error
}

// DialSurface opens the surface socket of the daemon at baseURL.
func DialSurface(ctx context.Context, baseURL string, logger *slog.Logger) (*SurfaceConn, error) {
	wsURL, err := websocketURL(baseURL, pathSurfaceWS)
	if err != nil {
		return nil, err
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			return nil, &StatusError{StatusCode: resp.StatusCode, Message: "websocket handshake failed"}
		}
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	s := &SurfaceConn{
		conn:    conn,
		log:     logger.With("adapter", "daemon", "role", "surface"),
		replies: make(chan protocol.Message, repliesBuffer),
		pushed:  make(chan protocol.SelectionAccepted, pushedBuffer),
		done:    make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

// LastSelection asks the coordinator for the selection to show on open.
func (s *SurfaceConn) LastSelection(ctx context.Context, tab domain.TabID) (*domain.SelectionEvent, error) {
	reply, err := s.ask(ctx, protocol.SurfaceQueryLastSelection{TabID: tab})
	if err != nil {
		return nil, err
	}
	last, ok := reply.(protocol.LastSelection)
	if !ok {
		return nil, fmt.Errorf("unexpected reply %s", reply.Kind())
	}
	return last.Selection, nil
}

// Next blocks until the coordinator pushes an accepted selection.
func (s *SurfaceConn) Next(ctx context.Context) (protocol.SelectionAccepted, error) {
	select {
	case msg := <-s.pushed:
		return msg, nil
	case <-s.done:
		return protocol.SelectionAccepted{}, s.closeErr()
	case <-ctx.Done():
		return protocol.SelectionAccepted{}, ctx.Err()
	}
}

// Close sends a close frame and releases the socket.
func (s *SurfaceConn) Close() error {
	s.writeMu.Lock()
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	s.writeMu.Unlock()
	s.shutdown(ErrClosed)
	return nil
}

func (s *SurfaceConn) ask(ctx context.Context, msg protocol.Message) (protocol.Message, error) {
	s.queryMu.Lock()
	defer s.queryMu.Unlock()

	s.discardStale()
	if err := s.write(msg); err != nil {
		return nil, err
	}

	for {
		select {
		case reply := <-s.replies:
			if s.owed > 0 {
				s.owed--
				s.log.Debug("stale reply discarded", slog.String("kind", string(reply.Kind())))
				continue
			}
			if e, ok := reply.(protocol.Error); ok {
				return nil, fmt.Errorf("daemon rejected %s: %s", msg.Kind(), e.Message)
			}
			return reply, nil
		case <-s.done:
			return nil, s.closeErr()
		case <-ctx.Done():
			s.owed++
			return nil, ctx.Err()
		}
	}
}

// discardStale drops replies owed to abandoned queries that have already arrived.
func (s *SurfaceConn) discardStale() {
	for s.owed > 0 {
		select {
		case <-s.replies:
			s.owed--
		default:
			return
		}
	}
}

func (s *SurfaceConn) write(msg protocol.Message) error {
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.shutdown(err)
		return fmt.Errorf("write %s: %w", msg.Kind(), err)
	}
	return nil
}

func (s *SurfaceConn) readLoop() {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			s.shutdown(err)
			return
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			s.log.Warn("undecodable frame", slog.String("error", err.Error()))
			continue
		}

		switch m := msg.(type) {
		case protocol.SelectionAccepted:
			select {
			case s.pushed <- m:
			default:
				s.log.Warn("selection dropped, surface is busy", slog.String("word", m.Selection.Word))
			}
		case protocol.LastSelection, protocol.SurfaceOpenStatus, protocol.Error:
			select {
			case s.replies <- m:
			default:
				s.log.Warn("unsolicited reply dropped", slog.String("kind", string(m.Kind())))
			}
		default:
			s.log.Debug("frame ignored", slog.String("kind", string(m.Kind())))
		}
	}
}

func (s *SurfaceConn) shutdown(err error) {
	s.once.Do(func() {
		s.err = err
		close(s.done)
		s.conn.Close()
	})
}

func (s *SurfaceConn) closeErr() error {
	if errors.Is(s.err, ErrClosed) {
		return ErrClosed
	}
	return fmt.Errorf("%w: %w", ErrClosed, s.err)
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + path)
	if err != nil {
		return "", fmt.Errorf("parse daemon url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported daemon url scheme %q", u.Scheme)
	}
	return u.String(), nil
}
