// Command referee runs the line-oriented referee console on stdin/stdout.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/fatih/color"

	"github.com/hailam/chessreferee/internal/console"
	"github.com/hailam/chessreferee/internal/storage"
)

func main() {
	dbDir := flag.String("db", "", "database directory (default: $REFEREE_DB or the per-user data dir)")
	noDB := flag.Bool("nodb", false, "run without storage; save/load/stats are unavailable")
	noColor := flag.Bool("nocolor", false, "disable colored diagrams")
	flag.Parse()

	if *noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	var store *storage.Storage
	if !*noDB {
		var err error
		if *dbDir != "" {
			store, err = storage.Open(*dbDir)
		} else {
			store, err = storage.NewStorage()
		}
		if err != nil {
			log.Printf("Warning: storage not available: %v (continuing without it)", err)
			store = nil
		}
	}
	if store != nil {
		defer func() {
			if err := store.Close(); err != nil {
				log.Printf("Warning: failed to close storage: %v", err)
			}
		}()
	}

	if err := console.New(store, os.Stdout).Run(os.Stdin); err != nil {
		log.Printf("input error: %v", err)
	}
}
