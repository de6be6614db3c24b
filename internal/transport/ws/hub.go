// Package ws is the WebSocket port of the daemon. Display surfaces connect to
// receive accepted selections; hosts (the browser-side background script)
// connect to receive open-surface requests and may forward page messages.
package ws

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/heartmarshall/lexilens/internal/domain"
	"github.com/heartmarshall/lexilens/internal/protocol"
)

// ErrNoHost is returned by OpenSurface when no host is connected.
var ErrNoHost = errors.New("no host connected")

// coordinatorPort is the coordinator as seen by socket clients.
type coordinatorPort interface {
	Send(ctx context.Context, msg protocol.Message) error
	Ask(ctx context.Context, msg protocol.Message) (protocol.Message, error)
}

type role string

const (
	roleSurface role = "surface"
	roleHost    role = "host"
)

// Options configures a Hub.
type Options struct {
	// AllowedOrigins lists accepted Origin headers. Empty or "*" accepts any.
	AllowedOrigins []string
	// SendBuffer is the per-client outbound queue length.
	SendBuffer int
}

// Hub tracks connected surfaces and hosts. It implements coordinator.Surface
// and coordinator.Opener.
type Hub struct {
	log      *slog.Logger
	upgrader websocket.Upgrader
	opts     Options

	mu       sync.Mutex
	surfaces map[*client]struct{}
	hosts    map[*client]struct{}
	wg       sync.WaitGroup
}

// NewHub creates a Hub.
func NewHub(log *slog.Logger, opts Options) *Hub {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 16
	}
	h := &Hub{
		log:      log.With("handler", "ws"),
		opts:     opts,
		surfaces: make(map[*client]struct{}),
		hosts:    make(map[*client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// Deliver pushes an accepted selection to every connected surface.
func (h *Hub) Deliver(_ context.Context, msg protocol.SelectionAccepted) error {
	return h.broadcast(roleSurface, msg, domain.ErrSurfaceClosed)
}

// OpenSurface asks every connected host to open the display surface.
func (h *Hub) OpenSurface(_ context.Context, tab domain.TabID) error {
	return h.broadcast(roleHost, protocol.OpenSurface{TabID: tab}, ErrNoHost)
}

// SurfaceCount returns the number of connected surfaces.
func (h *Hub) SurfaceCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.surfaces)
}

// Close disconnects every client and waits for their goroutines.
func (h *Hub) Close() {
	h.mu.Lock()
	all := make([]*client, 0, len(h.surfaces)+len(h.hosts))
	for c := range h.surfaces {
		all = append(all, c)
	}
	for c := range h.hosts {
		all = append(all, c)
	}
	h.mu.Unlock()

	for _, c := range all {
		c.close()
	}
	h.wg.Wait()
}

func (h *Hub) broadcast(r role, msg protocol.Message, none error) error {
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}

	targets := h.clients(r)
	if len(targets) == 0 {
		return fmt.Errorf("%s: %w", msg.Kind(), none)
	}
	for _, c := range targets {
		if !c.enqueue(data) {
			h.log.Warn("client send queue full, disconnecting", slog.String("role", string(r)))
			c.close()
		}
	}
	return nil
}

func (h *Hub) clients(r role) []*client {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.surfaces
	if r == roleHost {
		set = h.hosts
	}
	out := make([]*client, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

// register adds c and reports whether it is the first client of its role.
func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.set(c.role)
	set[c] = struct{}{}
	return len(set) == 1
}

// unregister removes c and reports whether it was the last client of its role.
func (h *Hub) unregister(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.set(c.role)
	if _, ok := set[c]; !ok {
		return false
	}
	delete(set, c)
	return len(set) == 0
}

func (h *Hub) set(r role) map[*client]struct{} {
	if r == roleHost {
		return h.hosts
	}
	return h.surfaces
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.opts.AllowedOrigins) == 0 {
		return true
	}
	return slices.ContainsFunc(h.opts.AllowedOrigins, func(allowed string) bool {
		if prefix, ok := strings.CutSuffix(allowed, "*"); ok {
			return strings.HasPrefix(origin, prefix)
		}
		return allowed == origin
	})
}
