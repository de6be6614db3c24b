package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/heartmarshall/lexilens/internal/protocol"
)

const messageTimeout = 5 * time.Second

// ServeSurface handles GET /v1/surface/ws. The first connected surface marks
// the surface open, the last one to leave marks it closed. A surface may ask
// surface-query-last-selection and surface-is-open over the socket.
func (h *Hub) ServeSurface(coord coordinatorPort) http.HandlerFunc {
	return h.serve(roleSurface, coord, func(msg protocol.Message) bool {
		switch msg.(type) {
		case protocol.SurfaceQueryLastSelection, protocol.SurfaceIsOpen:
			return true
		}
		return false
	})
}

// ServeHost handles GET /v1/host/ws. Hosts receive open-surface requests and
// may forward page messages instead of using the REST routes.
func (h *Hub) ServeHost(coord coordinatorPort) http.HandlerFunc {
	return h.serve(roleHost, coord, func(msg protocol.Message) bool {
		switch msg.(type) {
		case protocol.SelectionReported, protocol.TabFocusChanged, protocol.ContextCommandTriggered,
			protocol.SurfaceIsOpen:
			return true
		}
		return false
	})
}

func (h *Hub) serve(r role, coord coordinatorPort, allowed func(protocol.Message) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		conn, err := h.upgrader.Upgrade(w, req, nil)
		if err != nil {
			h.log.WarnContext(req.Context(), "websocket upgrade failed", slog.String("error", err.Error()))
			return
		}

		// Detached so the disconnect notice still reaches the coordinator during shutdown.
		ctx := context.WithoutCancel(req.Context())
		log := h.log.With(slog.String("role", string(r)))

		c := newClient(conn, r, h.opts.SendBuffer)
		h.wg.Add(1)
		defer h.wg.Done()
		go c.writePump()

		if h.register(c) && r == roleSurface {
			h.notify(ctx, coord, protocol.SurfaceConnected{})
		}
		log.InfoContext(ctx, "client connected")

		err = c.readPump(func(data []byte) {
			h.handleFrame(ctx, log, c, coord, data, allowed)
		})

		c.close()
		if h.unregister(c) && r == roleSurface {
			h.notify(ctx, coord, protocol.SurfaceDisconnected{})
		}
		if err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) &&
			!errors.Is(err, websocket.ErrCloseSent) {
			log.DebugContext(ctx, "client read ended", slog.String("error", err.Error()))
		}
		log.InfoContext(ctx, "client disconnected")
	}
}

func (h *Hub) handleFrame(ctx context.Context, log *slog.Logger, c *client, coord coordinatorPort, data []byte, allowed func(protocol.Message) bool) {
	msg, err := protocol.Decode(data)
	if err != nil {
		h.reply(c, protocol.Error{Message: err.Error()})
		return
	}
	if !allowed(msg) {
		h.reply(c, protocol.Error{Message: "message " + string(msg.Kind()) + " is not accepted from a " + string(c.role)})
		return
	}

	ctx, cancel := context.WithTimeout(ctx, messageTimeout)
	defer cancel()

	switch msg.(type) {
	case protocol.SurfaceQueryLastSelection, protocol.SurfaceIsOpen:
		reply, err := coord.Ask(ctx, msg)
		if err != nil {
			log.WarnContext(ctx, "query failed", slog.String("kind", string(msg.Kind())), slog.String("error", err.Error()))
			h.reply(c, protocol.Error{Message: "query failed"})
			return
		}
		if reply != nil {
			h.reply(c, reply)
		}
	default:
		if err := coord.Send(ctx, msg); err != nil {
			log.WarnContext(ctx, "forward failed", slog.String("kind", string(msg.Kind())), slog.String("error", err.Error()))
		}
	}
}

func (h *Hub) reply(c *client, msg protocol.Message) {
	data, err := protocol.Encode(msg)
	if err != nil {
		h.log.Error("encode reply", slog.String("error", err.Error()))
		return
	}
	if !c.enqueue(data) {
		c.close()
	}
}

func (h *Hub) notify(ctx context.Context, coord coordinatorPort, msg protocol.Message) {
	ctx, cancel := context.WithTimeout(ctx, messageTimeout)
	defer cancel()
	if err := coord.Send(ctx, msg); err != nil {
		h.log.WarnContext(ctx, "surface state not reported",
			slog.String("kind", string(msg.Kind())),
			slog.String("error", err.Error()),
		)
	}
}
