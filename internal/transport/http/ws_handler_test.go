package http

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"social-style-service/internal/app"
	"social-style-service/internal/domain"
)

type wsMessage struct {
	Type    string             `json:"type"`
	Payload domain.SessionView `json:"payload"`
}

func dial(t *testing.T, server *httptest.Server, code string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws/" + code
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads messages until one of type typ satisfies match.
func readUntil(t *testing.T, conn *websocket.Conn, typ string, match func(wsMessage) bool) wsMessage {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		var msg wsMessage
		_ = conn.SetReadDeadline(deadline)
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read json waiting for %s: %v", typ, err)
		}
		if msg.Type == typ && (match == nil || match(msg)) {
			return msg
		}
	}
}

func TestWebSocketLiveView(t *testing.T) {
	ctx := context.Background()
	service := newTestService()
	server := httptest.NewServer(NewRouter(service, ""))
	defer server.Close()

	session, err := service.CreateSession(ctx)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	conn := dial(t, server, session.Code)

	first := readUntil(t, conn, "view", nil)
	if first.Payload.SessionCode != session.Code || first.Payload.ShowResults {
		t.Fatalf("unexpected first view %+v", first.Payload)
	}

	if _, _, err := service.Submit(ctx, app.SubmitInput{SessionCode: session.Code, Name: "Alice", Answers: answers("a", "d")}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	withSub := readUntil(t, conn, "view", func(m wsMessage) bool { return len(m.Payload.Submissions) == 1 })
	if withSub.Payload.Results[0].SocialStyle != domain.StyleDriver {
		t.Fatalf("expected Driver result, got %+v", withSub.Payload.Results)
	}

	if err := conn.WriteJSON(map[string]any{"type": "flags", "payload": map[string]any{"showResults": true}}); err != nil {
		t.Fatalf("write flags: %v", err)
	}
	shown := readUntil(t, conn, "view", func(m wsMessage) bool { return m.Payload.ShowResults })
	if len(shown.Payload.Submissions) != 1 {
		t.Fatalf("flag update dropped submissions: %+v", shown.Payload)
	}

	if err := conn.WriteJSON(map[string]any{"type": "ping"}); err != nil {
		t.Fatalf("write ping: %v", err)
	}
	readUntil(t, conn, "pong", nil)

	if err := conn.WriteJSON(map[string]any{"type": "answer"}); err != nil {
		t.Fatalf("write unsupported: %v", err)
	}
	readUntil(t, conn, "error", nil)
}

func TestWebSocketUnknownSession(t *testing.T) {
	server := httptest.NewServer(NewRouter(newTestService(), ""))
	defer server.Close()

	conn := dial(t, server, "NOPE00")
	var msg struct {
		Type    string       `json:"type"`
		Payload errorPayload `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if msg.Type != "error" || msg.Payload.Message != domain.ErrSessionNotFound.Error() {
		t.Fatalf("expected session not found error, got %+v", msg)
	}
}
