package http

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"brainquiz/internal/domain"
	"github.com/gorilla/websocket"
)

func TestLeaderboardFeed(t *testing.T) {
	a := newTestApp(t)

	u := "ws" + a.server.URL[len("http"):] + "/ws/leaderboard"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Expect the current (empty) board first.
	typ, entries := readNext(conn, t)
	if typ != "leaderboard" || len(entries) != 0 {
		t.Fatalf("expected empty leaderboard, got %s %+v", typ, entries)
	}

	if _, err := a.board.Record(context.Background(), "alice", 80); err != nil {
		t.Fatalf("record: %v", err)
	}
	typ, entries = readNext(conn, t)
	if typ != "leaderboard" || len(entries) != 1 || entries[0].Name != "alice" || entries[0].Score != 80 {
		t.Fatalf("expected alice on the board, got %s %+v", typ, entries)
	}

	if err := conn.WriteJSON(map[string]string{"type": "refresh"}); err != nil {
		t.Fatalf("write refresh: %v", err)
	}
	typ, entries = readNext(conn, t)
	if typ != "leaderboard" || len(entries) != 1 {
		t.Fatalf("expected refreshed leaderboard, got %s %+v", typ, entries)
	}

	if err := conn.WriteJSON(map[string]string{"type": "bogus"}); err != nil {
		t.Fatalf("write bogus: %v", err)
	}
	if typ, _ = readNext(conn, t); typ != "error" {
		t.Fatalf("expected error for unsupported type, got %s", typ)
	}

	if err := a.board.Reset(context.Background()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	typ, entries = readNext(conn, t)
	if typ != "leaderboard" || len(entries) != 0 {
		t.Fatalf("expected empty board after reset, got %s %+v", typ, entries)
	}
}

func readNext(conn *websocket.Conn, t *testing.T) (string, []domain.HighScoreEntry) {
	t.Helper()
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	var entries []domain.HighScoreEntry
	if msg.Type == "leaderboard" {
		if err := json.Unmarshal(msg.Payload, &entries); err != nil {
			t.Fatalf("decode leaderboard: %v", err)
		}
	}
	return msg.Type, entries
}
