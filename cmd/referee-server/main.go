// Command referee-server exposes the referee over HTTP and WebSocket.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hailam/chessreferee/internal/httpx"
	"github.com/hailam/chessreferee/internal/storage"
)

func main() {
	// Flags (env fallbacks).
	addr := flag.String("addr", getenv("REFEREE_ADDR", ":8080"), "listen address")
	dbDir := flag.String("db", "", "database directory (default: $REFEREE_DB or the per-user data dir)")
	noDB := flag.Bool("nodb", getenb("REFEREE_NODB", false), "run without storage; positions and stats answer 503")
	quiet := flag.Bool("quiet", getenb("REFEREE_QUIET", false), "disable the access log")
	flag.Parse()

	var store *storage.Storage
	if !*noDB {
		var err error
		if *dbDir != "" {
			store, err = storage.Open(*dbDir)
		} else {
			store, err = storage.NewStorage()
		}
		fatalIf(err, "storage")
		defer store.Close()
	} else {
		log.Printf("Storage disabled.")
	}

	srv := httpx.NewServer(store)
	if *quiet {
		srv.SetAccessLog(nil)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- srv.Listen(*addr) }()

	select {
	case err := <-errc:
		fatalIf(err, "http")
	case <-ctx.Done():
		log.Printf("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Close(shutdownCtx); err != nil {
			log.Printf("Warning: shutdown: %v", err)
		}
		<-errc
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenb(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}

func fatalIf(err error, label string) {
	if err != nil {
		log.Fatalf("%s: %v", label, err)
	}
}
