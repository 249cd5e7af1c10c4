package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sprucegoose-dev/antinomy-be/internal/auth"
	"github.com/sprucegoose-dev/antinomy-be/internal/game"
)

const writeTimeout = 5 * time.Second

// hub tracks WebSocket subscribers per game and user, and serves as the
// broadcast backend the games publish through.
type hub struct {
	mu    sync.Mutex
	conns map[uuid.UUID]map[uuid.UUID]map[*websocket.Conn]struct{}
	log   *logrus.Logger
}

func newHub(log *logrus.Logger) *hub {
	return &hub{
		conns: make(map[uuid.UUID]map[uuid.UUID]map[*websocket.Conn]struct{}),
		log:   log,
	}
}

// attach wires a game's broadcast callbacks to this hub.
func (h *hub) attach(g *game.ContinuumGame) {
	gameID := g.ID
	g.BroadcastFn = func(ev game.GameEvent) {
		h.broadcast(gameID, uuid.Nil, ev)
	}
	g.BroadcastToPlayerFn = func(userID uuid.UUID, ev game.GameEvent) {
		h.broadcast(gameID, userID, ev)
	}
}

// broadcast sends an event to every subscriber of the game, or to one
// user's connections when userID is set.
func (h *hub) broadcast(gameID, userID uuid.UUID, ev game.GameEvent) {
	h.mu.Lock()
	var targets []*websocket.Conn
	for uid, conns := range h.conns[gameID] {
		if userID != uuid.Nil && uid != userID {
			continue
		}
		for c := range conns {
			targets = append(targets, c)
		}
	}
	h.mu.Unlock()

	for _, c := range targets {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := wsjson.Write(ctx, c, ev); err != nil {
			h.log.WithError(err).Debug("websocket write failed")
		}
		cancel()
	}
}

// register adds a connection for a user on a game.
func (h *hub) register(gameID, userID uuid.UUID, c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[gameID] == nil {
		h.conns[gameID] = make(map[uuid.UUID]map[*websocket.Conn]struct{})
	}
	if h.conns[gameID][userID] == nil {
		h.conns[gameID][userID] = make(map[*websocket.Conn]struct{})
	}
	h.conns[gameID][userID][c] = struct{}{}
}

// unregister drops a connection, reporting whether the user has any left.
func (h *hub) unregister(gameID, userID uuid.UUID, c *websocket.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if users, ok := h.conns[gameID]; ok {
		if conns, ok := users[userID]; ok {
			delete(conns, c)
			if len(conns) == 0 {
				delete(users, userID)
			}
		}
		if len(users) == 0 {
			delete(h.conns, gameID)
		}
		if conns, ok := users[userID]; ok {
			return len(conns) > 0
		}
	}
	return false
}

// handleSubscribe upgrades the request to a WebSocket and streams game
// events until the client disconnects.
func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	g, err := s.store.GetGame(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	userID := auth.UserIDFromContext(r.Context())

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: !s.cfg.IsProduction(),
	})
	if err != nil {
		s.log.WithError(err).Warn("websocket accept failed")
		return
	}

	s.hub.register(id, userID, conn)
	g.MarkConnected(userID, conn)

	// Initial state sync for the new subscriber.
	snap := g.SnapshotFor(userID)
	ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
	err = wsjson.Write(ctx, conn, game.GameEvent{
		Type:   game.EventUpdateGameState,
		GameID: id,
		UserID: userID,
		State:  &snap,
	})
	cancel()
	if err != nil {
		s.hub.unregister(id, userID, conn)
		conn.Close(websocket.StatusInternalError, "initial sync failed")
		return
	}

	// Block draining control frames until the peer goes away. Clients
	// send actions over HTTP, not the socket.
	readCtx := r.Context()
	for {
		if _, _, err := conn.Read(readCtx); err != nil {
			break
		}
	}

	stillConnected := s.hub.unregister(id, userID, conn)
	if !stillConnected {
		g.MarkDisconnected(userID)
	}
	conn.Close(websocket.StatusNormalClosure, "")
}
