// Package httpx exposes the referee over HTTP and WebSocket.
package httpx

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/hailam/chessreferee/internal/storage"
)

const maxJSONBodyBytes int64 = 1 << 20

// Server wires the HTTP layer to the referee and, optionally, storage.
type Server struct {
	store     *storage.Storage
	accessLog io.Writer
	upgrader  websocket.Upgrader

	srvMu sync.Mutex
	srv   *http.Server
}

// NewServer builds a Server. store may be nil; the positions and stats
// endpoints then answer 503.
func NewServer(store *storage.Storage) *Server {
	return &Server{
		store:     store,
		accessLog: os.Stderr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// SetAccessLog redirects the access log. A nil writer disables it.
func (s *Server) SetAccessLog(w io.Writer) {
	s.accessLog = w
}

// Handler returns the full handler chain: CORS, access log, router.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.routes()
	if s.accessLog != nil {
		h = handlers.LoggingHandler(s.accessLog, h)
	}
	return handlers.CORS(
		handlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type", "Authorization"}),
		handlers.AllowedMethods([]string{"GET", "POST", "DELETE", "OPTIONS"}),
		handlers.AllowedOrigins([]string{"*"}),
	)(h)
}

// Listen starts the HTTP server and blocks until it stops.
func (s *Server) Listen(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	s.srvMu.Lock()
	s.srv = srv
	s.srvMu.Unlock()
	defer func() {
		s.srvMu.Lock()
		s.srv = nil
		s.srvMu.Unlock()
	}()

	log.Printf("HTTP listening on %s", addr)
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close attempts a graceful shutdown of the HTTP server.
func (s *Server) Close(ctx context.Context) error {
	s.srvMu.Lock()
	srv := s.srv
	s.srvMu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/validate", s.handleValidate).Methods(http.MethodPost)
	api.HandleFunc("/destinations", s.handleDestinations).Methods(http.MethodPost)
	api.HandleFunc("/positions", s.handleListPositions).Methods(http.MethodGet)
	api.HandleFunc("/positions", s.handleSavePosition).Methods(http.MethodPost)
	api.HandleFunc("/positions/{id}", s.handleGetPosition).Methods(http.MethodGet)
	api.HandleFunc("/positions/{id}", s.handleDeletePosition).Methods(http.MethodDelete)
	api.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	api.HandleFunc("/stream", s.handleStream).Methods(http.MethodGet)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}
