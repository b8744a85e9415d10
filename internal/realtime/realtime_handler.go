// Package realtime carries session events over WebSocket.
//
// Messages in both directions are JSON envelopes {"event": ..., "data": ...}.
// Clients send join-session or join-as-sender with the session id as data.
package realtime

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"senda/relay/internal/entities"
	"senda/relay/internal/notify"
	"senda/relay/pkg/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	errMalformed    = "malformed message"
	errUnknownEvent = "unknown event"
)

// SessionLookup is the part of session.Store used to check joins
type SessionLookup interface {
	LookupByID(id string) (*entities.Session, error)
}

type Config struct {
	SendBuffer int
	PingEvery  time.Duration
}

type inbound struct {
	Event string          `json:"event" validate:"required"`
	Data  json.RawMessage `json:"data" validate:"required"`
}

type Handler struct {
	logger   *zap.SugaredLogger
	hub      *notify.Hub
	sessions SessionLookup
	upgrader websocket.Upgrader
	validate *validator.Validate
	cfg      Config
}

func NewHandler(logger *zap.SugaredLogger, hub *notify.Hub, sessions SessionLookup, cfg Config) *Handler {
	return &Handler{
		logger:   logger,
		hub:      hub,
		sessions: sessions,
		validate: validator.New(),
		cfg:      cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Pages may be served from another origin, CORS is open as well
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) InitRoutes(router *mux.Router) {
	router.HandleFunc("/ws", h.Serve).Methods(http.MethodGet)
}

func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrader has already answered
		h.logger.Debugf("could not upgrade: %s", err.Error())
		return
	}

	c := newConn(uuid.NewString(), ws, h.logger, h.cfg.SendBuffer)

	metrics.WsConnections.Inc()
	h.logger.Debugf("realtime client connected: %s", c.id)

	go c.writing(h.cfg.PingEvery)
	h.reading(c)

	c.close()
	ws.Close()
	metrics.WsConnections.Dec()
	h.logger.Debugf("realtime client disconnected: %s", c.id)
}

func (h *Handler) reading(c *conn) {
	pongWait := h.cfg.PingEvery * 2

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debugf("read from %s failed: %s", c.id, err.Error())
			}
			return
		}
		c.ws.SetReadDeadline(time.Now().Add(pongWait))

		h.handle(c, msg)

		select {
		case <-c.done:
			return
		default:
		}
	}
}

func (h *Handler) handle(c *conn, msg []byte) {
	var in inbound
	if err := json.Unmarshal(msg, &in); err != nil {
		h.reply(c, sessionError(errMalformed))
		return
	}
	if err := h.validate.Struct(in); err != nil {
		h.reply(c, sessionError(errMalformed))
		return
	}

	sessionID, ok := parseSessionID(in.Data)
	if !ok {
		h.reply(c, sessionError(errMalformed))
		return
	}

	switch in.Event {
	case notify.EventJoinSession:
		h.join(c, sessionID, false)
	case notify.EventJoinAsSender:
		h.join(c, sessionID, true)
	default:
		h.reply(c, sessionError(errUnknownEvent))
	}
}

func (h *Handler) join(c *conn, sessionID string, asSender bool) {
	if _, err := h.sessions.LookupByID(sessionID); err != nil {
		h.reply(c, sessionError(err.Error()))
		return
	}

	var leave func()
	if asSender {
		leave = h.hub.JoinAsSender(sessionID, c)
	} else {
		leave = h.hub.Subscribe(sessionID, c)
	}

	// Session may be destroyed between lookup and registration. Its
	// drop has then already run and would never reach this topic.
	if _, err := h.sessions.LookupByID(sessionID); err != nil {
		leave()
		h.reply(c, sessionError(err.Error()))
		return
	}
	c.track(leave)

	if asSender {
		h.reply(c, notify.Event{
			Name: notify.EventJoinedAsSender,
			Data: notify.SessionPayload{SessionID: sessionID},
		})
		h.logger.Debugf("%s joined session %s as sender", c.id, sessionID)
		return
	}

	h.reply(c, notify.Event{
		Name: notify.EventSessionJoined,
		Data: notify.SessionPayload{SessionID: sessionID},
	})
	h.logger.Debugf("%s joined session %s as receiver", c.id, sessionID)
}

func (h *Handler) reply(c *conn, evt notify.Event) {
	if err := c.Deliver(evt); err != nil {
		h.logger.Debugf("could not reply %s to %s: %s", evt.Name, c.id, err.Error())
	}
}

func sessionError(msg string) notify.Event {
	return notify.Event{
		Name: notify.EventSessionError,
		Data: notify.ErrorPayload{Error: msg},
	}
}

// parseSessionID accepts "id" or {"sessionId": "id"}
func parseSessionID(data json.RawMessage) (string, bool) {
	var id string
	if err := json.Unmarshal(data, &id); err != nil {
		var payload notify.SessionPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return "", false
		}
		id = payload.SessionID
	}

	id = strings.TrimSpace(id)
	return id, id != ""
}
