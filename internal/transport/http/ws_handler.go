package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"social-style-service/internal/app"
	"social-style-service/internal/domain"
)

const writeWait = 10 * time.Second

// Message types of the live view protocol.
const (
	msgView  = "view"
	msgError = "error"
	msgPing  = "ping"
	msgPong  = "pong"
	msgFlags = "flags"
)

type WSHandler struct {
	service  *app.StyleService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.StyleService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: msgError, Payload: errorPayload{Message: msg}}
}

// Handle serves GET /ws/:code.
func (h *WSHandler) Handle(c *gin.Context) {
	h.ServeWS(c.Writer, c.Request, c.Param("code"))
}

// ServeWS upgrades the request and streams live session views for code until the client leaves.
// Clients may toggle visibility flags over the same connection.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request, code string) {
	code = app.CanonicalCode(code)
	if code == "" {
		http.Error(w, "missing session code", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	updates, cancel, err := h.service.Watch(ctx, code)
	if err != nil {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteJSON(errorMessage(err.Error()))
		return
	}
	defer cancel()
	slog.Info("live view opened", "session", code, "remote", r.RemoteAddr)
	defer slog.Info("live view closed", "session", code, "remote", r.RemoteAddr)

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// The writer is the only goroutine writing to conn.
	go func() {
		defer close(writerDone)
		for msg := range send {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				slog.Warn("ws write failed", "session", code, "error", err)
				return
			}
		}
	}()

	push := func(msg outboundMessage[any]) bool {
		select {
		case send <- msg:
			return true
		case <-writerDone:
			return false
		}
	}

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				msg := outboundMessage[any]{Type: msgView, Payload: update.View}
				if update.Err != nil {
					msg = errorMessage(update.Err.Error())
				}
				select {
				case send <- msg:
				case <-writerDone:
					return
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		var reply outboundMessage[any]
		switch inbound.Type {
		case msgPing:
			reply = outboundMessage[any]{Type: msgPong, Payload: struct{}{}}
		case msgFlags:
			var patch domain.FlagPatch
			if err := json.Unmarshal(inbound.Payload, &patch); err != nil || patch.IsEmpty() {
				reply = errorMessage("invalid flags payload")
				break
			}
			if err := h.service.UpdateFlags(ctx, code, patch); err != nil {
				reply = errorMessage(err.Error())
				break
			}
			// The new flags reach this client through the view stream.
			continue
		default:
			reply = errorMessage("unsupported message type")
		}
		if !push(reply) {
			break
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
