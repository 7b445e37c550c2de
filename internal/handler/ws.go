package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/parikshasarathi/sarathi/internal/exam"
	appI18n "github.com/parikshasarathi/sarathi/internal/i18n"
)

const (
	wsWriteWait = 10 * time.Second
	// wsReadWait bounds the silence from a client, pongs included.
	wsReadWait = 60 * time.Second
	// wsPingPeriod must be shorter than wsReadWait.
	wsPingPeriod = wsReadWait * 9 / 10
)

// WSAction is a client to server command on the session stream.
type WSAction string

const (
	ActionAnswer WSAction = "answer"
	ActionMove   WSAction = "move"
	ActionFinish WSAction = "finish"
	ActionPing   WSAction = "ping"
)

// WSEvent is a server to client message type.
type WSEvent string

const (
	EventSnapshot WSEvent = "snapshot"
	EventResult   WSEvent = "result"
	EventError    WSEvent = "error"
	EventPong     WSEvent = "pong"
)

// WSRequest is sent by the client.
type WSRequest struct {
	Action WSAction `json:"action"`
	Option *int     `json:"option,omitempty"`
	Index  *int     `json:"index,omitempty"`
}

// WSMessage is sent by the server.
type WSMessage struct {
	Event WSEvent    `json:"event"`
	Data  any        `json:"data,omitempty"`
	Error *ErrorBody `json:"error,omitempty"`
}

// buildUpgrader creates a websocket upgrader with origin validation.
// An empty allowedOrigins permits all origins.
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// wsWriter serializes writes; gorilla connections allow one writer at a time.
type wsWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsWriter) write(msg WSMessage) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return w.conn.WriteJSON(msg)
}

func (w *wsWriter) fail(ctx context.Context, code ErrCode, message string) error {
	if message == "" {
		message = appI18n.T(ctx, messageIDs[code])
	}
	return w.write(WSMessage{Event: EventError, Error: &ErrorBody{Code: code, Message: message}})
}

func (w *wsWriter) ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait))
}

func (w *wsWriter) close(reason string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	_ = w.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteWait))
}

// handleStream pushes a snapshot on every countdown tick and change, and
// accepts answer, move and finish actions. The final message of a graded
// session is its result.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	runner, ok := h.runner(w, r)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	log := slog.With("session", runner.ID())
	log.Debug("stream connected")

	out := &wsWriter{conn: conn}
	snaps, unsubscribe := runner.Subscribe()
	defer unsubscribe()

	_ = conn.SetReadDeadline(time.Now().Add(h.wsReadWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.wsReadWait))
	})

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		h.readActions(r.Context(), conn, out, runner, log)
	}()

	ping := time.NewTicker(h.wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-ping.C:
			if err := out.ping(); err != nil {
				log.Debug("stream ping failed", "error", err)
				return
			}
		case snap, ok := <-snaps:
			if !ok {
				if result, done := runner.Result(); done {
					_ = out.write(WSMessage{Event: EventResult, Data: h.resultResponse(r, runner.Test(), result)})
				}
				out.close("session ended")
				return
			}
			if err := out.write(WSMessage{Event: EventSnapshot, Data: snap}); err != nil {
				log.Debug("stream write failed", "error", err)
				return
			}
		case <-readDone:
			return
		}
	}
}

func (h *Handler) readActions(ctx context.Context, conn *websocket.Conn, out *wsWriter, runner *exam.Runner, log *slog.Logger) {
	for {
		var req WSRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("unexpected close", "error", err)
			} else {
				log.Debug("stream closed")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(h.wsReadWait))

		var err error
		switch req.Action {
		case ActionAnswer:
			if req.Option == nil {
				_ = out.fail(ctx, ErrInvalidPayload, "")
				continue
			}
			err = runner.SelectAnswer(*req.Option)
		case ActionMove:
			if req.Index == nil {
				_ = out.fail(ctx, ErrInvalidPayload, "")
				continue
			}
			err = runner.MoveTo(*req.Index)
		case ActionFinish:
			_, err = runner.Finish()
		case ActionPing:
			_ = out.write(WSMessage{Event: EventPong})
		default:
			log.Warn("unknown action", "action", req.Action)
			_ = out.fail(ctx, ErrUnknownAction, appI18n.Td(ctx, "ErrUnknownAction", map[string]any{"Action": req.Action}))
			continue
		}
		if err != nil {
			_ = out.fail(ctx, codeFor(err), "")
		}
	}
}

// codeFor maps session errors to codes for the stream.
func codeFor(err error) ErrCode {
	switch {
	case errors.Is(err, exam.ErrNotRunning):
		return ErrSessionNotRunning
	case errors.Is(err, exam.ErrIndexRange):
		return ErrIndexRange
	case errors.Is(err, exam.ErrOptionRange):
		return ErrOptionRange
	default:
		return ErrInternal
	}
}
