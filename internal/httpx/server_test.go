package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/hailam/chessreferee/internal/board"
	"github.com/hailam/chessreferee/internal/storage"
)

func newTestServer(t *testing.T, withStore bool) *Server {
	t.Helper()
	var store *storage.Storage
	if withStore {
		var err error
		store, err = storage.Open(t.TempDir())
		if err != nil {
			t.Fatalf("storage: %v", err)
		}
		t.Cleanup(func() { store.Close() })
	}
	srv := NewServer(store)
	srv.SetAccessLog(nil)
	return srv
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode body %q: %v", rr.Body.String(), err)
	}
}

func TestValidate(t *testing.T) {
	h := newTestServer(t, false).Handler()

	tests := []struct {
		name   string
		body   string
		status int
		valid  bool
	}{
		{"pawn double step", `{"fen":"` + board.StartFEN + `","from":"e2","to":"e4"}`, http.StatusOK, true},
		{"pawn triple step", `{"fen":"` + board.StartFEN + `","from":"e2","to":"e5"}`, http.StatusOK, false},
		{"explicit kind", `{"fen":"` + board.StartFEN + `","from":"d4","to":"f5","kind":"knight","team":"home"}`, http.StatusOK, true},
		{"pieces roster", `{"pieces":[{"square":"c3","kind":"bishop","team":"home"},{"square":"e5","kind":"pawn","team":"away"}],"from":"c3","to":"f6"}`, http.StatusOK, false},
		{"en passant flag", `{"pieces":[{"square":"d4","kind":"pawn","team":"away","enPassant":true},{"square":"e4","kind":"pawn","team":"home"}],"from":"e4","to":"d5"}`, http.StatusOK, true},
		{"empty origin", `{"fen":"` + board.StartFEN + `","from":"e4","to":"e5"}`, http.StatusBadRequest, false},
		{"no board", `{"from":"e2","to":"e4"}`, http.StatusBadRequest, false},
		{"bad square", `{"fen":"` + board.StartFEN + `","from":"z9","to":"e4"}`, http.StatusBadRequest, false},
		{"missing to", `{"fen":"` + board.StartFEN + `","from":"e2"}`, http.StatusBadRequest, false},
		{"bad fen", `{"fen":"nonsense","from":"e2","to":"e4"}`, http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, "/api/validate", tt.body)
			if rr.Code != tt.status {
				t.Fatalf("status %d, want %d: %s", rr.Code, tt.status, rr.Body.String())
			}
			if tt.status != http.StatusOK {
				var e errorResponse
				decode(t, rr, &e)
				if e.Error == "" {
					t.Error("expected error message")
				}
				return
			}
			var resp ValidateResponse
			decode(t, rr, &resp)
			if resp.Valid != tt.valid {
				t.Errorf("valid = %v, want %v", resp.Valid, tt.valid)
			}
		})
	}
}

func TestDestinations(t *testing.T) {
	h := newTestServer(t, false).Handler()

	rr := do(t, h, http.MethodPost, "/api/destinations", `{"fen":"`+board.StartFEN+`","from":"b1"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		From         string   `json:"from"`
		Destinations []string `json:"destinations"`
	}
	decode(t, rr, &resp)
	want := "d2 a3 c3"
	if resp.From != "b1" || strings.Join(resp.Destinations, " ") != want {
		t.Errorf("got %s: %v, want b1: %s", resp.From, resp.Destinations, want)
	}
}

func TestPositionsAndStats(t *testing.T) {
	srv := newTestServer(t, true)
	h := srv.Handler()

	rr := do(t, h, http.MethodPost, "/api/positions", `{"name":"start","fen":"`+board.StartFEN+`"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status %d: %s", rr.Code, rr.Body.String())
	}
	var saved storage.SavedPosition
	decode(t, rr, &saved)
	if saved.Name != "start" || saved.FEN != board.StartFEN {
		t.Errorf("saved = %+v", saved)
	}

	if rr := do(t, h, http.MethodPost, "/api/positions", `{"name":"bad","fen":"x"}`); rr.Code != http.StatusBadRequest {
		t.Errorf("bad FEN status %d", rr.Code)
	}

	rr = do(t, h, http.MethodGet, "/api/positions/"+saved.ID.String(), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get status %d: %s", rr.Code, rr.Body.String())
	}

	rr = do(t, h, http.MethodGet, "/api/positions", "")
	var list struct {
		Positions []storage.SavedPosition `json:"positions"`
	}
	decode(t, rr, &list)
	if len(list.Positions) != 1 {
		t.Errorf("expected 1 position, got %d", len(list.Positions))
	}

	if rr := do(t, h, http.MethodGet, "/api/positions/not-a-uuid", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("invalid id status %d", rr.Code)
	}
	if rr := do(t, h, http.MethodDelete, "/api/positions/"+saved.ID.String(), ""); rr.Code != http.StatusNoContent {
		t.Errorf("delete status %d", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, "/api/positions/"+saved.ID.String(), ""); rr.Code != http.StatusNotFound {
		t.Errorf("get after delete status %d", rr.Code)
	}

	do(t, h, http.MethodPost, "/api/validate", `{"fen":"`+board.StartFEN+`","from":"g1","to":"f3"}`)
	do(t, h, http.MethodPost, "/api/validate", `{"fen":"`+board.StartFEN+`","from":"g1","to":"g3"}`)

	rr = do(t, h, http.MethodGet, "/api/stats", "")
	var stats StatsResponse
	decode(t, rr, &stats)
	if stats.Total != 2 || stats.Accepted["knight"] != 1 || stats.Rejected["knight"] != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestWithoutStorage(t *testing.T) {
	h := newTestServer(t, false).Handler()
	for _, path := range []string{"/api/positions", "/api/stats"} {
		if rr := do(t, h, http.MethodGet, path, ""); rr.Code != http.StatusServiceUnavailable {
			t.Errorf("%s status %d, want 503", path, rr.Code)
		}
	}
	if rr := do(t, h, http.MethodGet, "/healthz", ""); rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Errorf("healthz = %d %q", rr.Code, rr.Body.String())
	}
}

func TestStream(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t, false).Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	frames := []struct {
		msg     string
		valid   bool
		wantErr bool
	}{
		{`{"fen":"` + board.StartFEN + `","from":"e2","to":"e4"}`, true, false},
		{`not json`, false, true},
		{`{"fen":"` + board.StartFEN + `","from":"a1","to":"a5"}`, false, false},
		{`{"fen":"` + board.StartFEN + `","from":"e5","to":"e6"}`, false, true},
	}

	for _, f := range frames {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(f.msg)); err != nil {
			t.Fatalf("write: %v", err)
		}
		var reply struct {
			Valid bool   `json:"valid"`
			Error string `json:"error"`
		}
		if err := conn.ReadJSON(&reply); err != nil {
			t.Fatalf("read: %v", err)
		}
		if f.wantErr != (reply.Error != "") {
			t.Errorf("frame %s: error %q", f.msg, reply.Error)
		}
		if reply.Valid != f.valid {
			t.Errorf("frame %s: valid = %v, want %v", f.msg, reply.Valid, f.valid)
		}
	}
}
