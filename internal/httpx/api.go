package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	uuid "github.com/satori/go.uuid"

	"github.com/hailam/chessreferee/internal/board"
	"github.com/hailam/chessreferee/internal/referee"
	"github.com/hailam/chessreferee/internal/storage"
)

var errNoStorage = errors.New("storage unavailable")

// ValidateRequest asks whether a move is allowed. The board comes from either
// FEN or Pieces. Kind and Team default to the piece standing on From.
type ValidateRequest struct {
	FEN    string           `json:"fen,omitempty"`
	Pieces *board.Snapshot  `json:"pieces,omitempty"`
	From   *board.Square    `json:"from"`
	To     *board.Square    `json:"to"`
	Kind   *board.PieceKind `json:"kind,omitempty"`
	Team   *board.Team      `json:"team,omitempty"`
}

// ValidateResponse is the referee's verdict.
type ValidateResponse struct {
	Valid bool            `json:"valid"`
	Kind  board.PieceKind `json:"kind"`
	Team  board.Team      `json:"team"`
}

// DestinationsRequest asks for every square the piece on From may reach.
type DestinationsRequest struct {
	FEN    string          `json:"fen,omitempty"`
	Pieces *board.Snapshot `json:"pieces,omitempty"`
	From   *board.Square   `json:"from"`
}

// DestinationsResponse lists the reachable squares.
type DestinationsResponse struct {
	From         board.Square   `json:"from"`
	Destinations []board.Square `json:"destinations"`
}

// SavePositionRequest stores a named FEN.
type SavePositionRequest struct {
	Name string `json:"name"`
	FEN  string `json:"fen"`
}

// StatsResponse reports recorded verdicts.
type StatsResponse struct {
	Total      int            `json:"total"`
	AcceptRate float64        `json:"acceptRate"`
	Accepted   map[string]int `json:"accepted"`
	Rejected   map[string]int `json:"rejected"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// requestError is a client mistake, reported with 400.
type requestError struct {
	msg string
}

func (e requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return requestError{msg: fmt.Sprintf(format, args...)}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Warning: failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var reqErr requestError
	switch {
	case errors.As(err, &reqErr):
		status = http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errNoStorage):
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid request body: %v", err)
	}
	return nil
}

// resolveSnapshot picks the board from a FEN string or an explicit roster.
func resolveSnapshot(fen string, pieces *board.Snapshot) (board.Snapshot, error) {
	switch {
	case fen != "":
		pos, err := board.ParseFEN(fen)
		if err != nil {
			return board.Snapshot{}, badRequest("%v", err)
		}
		return pos.Snapshot, nil
	case pieces != nil:
		if err := pieces.Validate(); err != nil {
			return board.Snapshot{}, badRequest("%v", err)
		}
		return *pieces, nil
	}
	return board.Snapshot{}, badRequest("fen or pieces required")
}

// evaluate answers a validate request. It is shared by the JSON endpoint and
// the WebSocket stream.
func (s *Server) evaluate(req ValidateRequest) (ValidateResponse, error) {
	if req.From == nil || req.To == nil {
		return ValidateResponse{}, badRequest("from and to required")
	}
	snap, err := resolveSnapshot(req.FEN, req.Pieces)
	if err != nil {
		return ValidateResponse{}, err
	}

	var resp ValidateResponse
	if req.Kind == nil || req.Team == nil {
		p, ok := snap.At(*req.From)
		if !ok {
			return ValidateResponse{}, badRequest("no piece on %s", req.From)
		}
		resp.Kind, resp.Team = p.Kind, p.Team
	}
	if req.Kind != nil {
		resp.Kind = *req.Kind
	}
	if req.Team != nil {
		resp.Team = *req.Team
	}

	resp.Valid = referee.IsValidMove(*req.From, *req.To, resp.Kind, resp.Team, snap)

	if s.store != nil {
		if err := s.store.RecordVerdict(resp.Kind, resp.Valid); err != nil {
			log.Printf("Warning: failed to record verdict: %v", err)
		}
	}
	return resp, nil
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	resp, err := s.evaluate(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDestinations(w http.ResponseWriter, r *http.Request) {
	var req DestinationsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.From == nil {
		writeError(w, badRequest("from required"))
		return
	}
	snap, err := resolveSnapshot(req.FEN, req.Pieces)
	if err != nil {
		writeError(w, err)
		return
	}
	p, ok := snap.At(*req.From)
	if !ok {
		writeError(w, badRequest("no piece on %s", req.From))
		return
	}

	dests := referee.Destinations(*req.From, p.Kind, p.Team, snap)
	if dests == nil {
		dests = []board.Square{}
	}
	writeJSON(w, http.StatusOK, DestinationsResponse{From: *req.From, Destinations: dests})
}

func (s *Server) handleSavePosition(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, errNoStorage)
		return
	}
	var req SavePositionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Name == "" {
		writeError(w, badRequest("name required"))
		return
	}
	if _, err := board.ParseFEN(req.FEN); err != nil {
		writeError(w, badRequest("%v", err))
		return
	}
	saved, err := s.store.SavePosition(req.Name, req.FEN)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleListPositions(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, errNoStorage)
		return
	}
	list, err := s.store.ListPositions()
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []storage.SavedPosition{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"positions": list})
}

// positionID parses the {id} route variable.
func positionID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.FromString(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, badRequest("invalid position id")
	}
	return id, nil
}

func (s *Server) handleGetPosition(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, errNoStorage)
		return
	}
	id, err := positionID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	saved, err := s.store.GetPosition(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeletePosition(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, errNoStorage)
		return
	}
	id, err := positionID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.DeletePosition(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, errNoStorage)
		return
	}
	stats, err := s.store.LoadStats()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse{
		Total:      stats.Total(),
		AcceptRate: stats.AcceptRate(),
		Accepted:   stats.Accepted,
		Rejected:   stats.Rejected,
	})
}
