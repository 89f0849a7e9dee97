// Package console implements a line protocol for querying the referee from a
// terminal or a pipe.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hailam/chessreferee/internal/board"
	"github.com/hailam/chessreferee/internal/game"
	"github.com/hailam/chessreferee/internal/referee"
	"github.com/hailam/chessreferee/internal/storage"
)

var errNoStorage = errors.New("storage unavailable")

// Console holds one session: a game and an optional database.
type Console struct {
	game  *game.Game
	store *storage.Storage
	out   io.Writer
}

// New creates a console writing responses to out. store may be nil, in which
// case the save/load/list/delete/stats commands report an error.
func New(store *storage.Storage, out io.Writer) *Console {
	return &Console{
		game:  game.New(),
		store: store,
		out:   out,
	}
}

// Run reads commands from in until EOF or "quit".
func (c *Console) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		if !c.Execute(scanner.Text()) {
			return nil
		}
	}
	return scanner.Err()
}

// Execute runs a single command line. It returns false after "quit".
func (c *Console) Execute(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}

	cmd := parts[0]
	args := parts[1:]

	switch cmd {
	case "quit":
		return false
	case "isready":
		c.println("readyok")
	case "help":
		c.handleHelp()
	case "new":
		c.game.Reset()
		c.println("ok")
	case "position":
		c.handlePosition(args)
	case "fen":
		c.println(c.game.Position().FEN())
	case "d":
		c.writeDiagram()
	case "valid":
		c.handleValid(args)
	case "check":
		c.handleCheck(args)
	case "moves":
		c.handleMoves(args)
	case "move":
		c.handleMove(args)
	case "save":
		c.handleSave(args)
	case "load":
		c.handleLoad(args)
	case "list":
		c.handleList()
	case "delete":
		c.handleDelete(args)
	case "stats":
		c.handleStats()
	default:
		c.fail(fmt.Errorf("unknown command %s", cmd))
	}
	return true
}

func (c *Console) println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

func (c *Console) fail(err error) {
	fmt.Fprintf(c.out, "error %v\n", err)
}

func (c *Console) handleHelp() {
	c.println("commands:")
	c.println("  position startpos | position fen <fen> | new | fen | d")
	c.println("  valid <from><to> | check <kind> <team> <from> <to> | moves <square> | move <from><to>")
	c.println("  save <name> | load <name> | list | delete <name> | stats")
	c.println("  isready | quit")
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position fen <fen>
func (c *Console) handlePosition(args []string) {
	if len(args) == 0 {
		c.fail(errors.New("position needs startpos or fen"))
		return
	}

	switch args[0] {
	case "startpos":
		c.game.Reset()
	case "fen":
		g, err := game.FromFEN(strings.Join(args[1:], " "))
		if err != nil {
			c.fail(err)
			return
		}
		c.game = g
	default:
		c.fail(fmt.Errorf("unknown position type %s", args[0]))
		return
	}
	c.println("ok")
}

// parseMove splits "e2e4" into two squares.
func parseMove(s string) (board.Square, board.Square, error) {
	if len(s) != 4 {
		return board.Square{}, board.Square{}, fmt.Errorf("invalid move %s", s)
	}
	from, err := board.ParseSquare(s[:2])
	if err != nil {
		return board.Square{}, board.Square{}, err
	}
	to, err := board.ParseSquare(s[2:])
	if err != nil {
		return board.Square{}, board.Square{}, err
	}
	return from, to, nil
}

func (c *Console) handleValid(args []string) {
	if len(args) != 1 {
		c.fail(errors.New("usage: valid <from><to>"))
		return
	}
	from, to, err := parseMove(args[0])
	if err != nil {
		c.fail(err)
		return
	}
	pos := c.game.Position()
	p, ok := pos.At(from)
	if !ok {
		c.fail(fmt.Errorf("no piece on %s", from))
		return
	}
	c.verdict(p.Kind, referee.IsValidMove(from, to, p.Kind, p.Team, pos.Snapshot))
}

func (c *Console) handleCheck(args []string) {
	if len(args) != 4 {
		c.fail(errors.New("usage: check <kind> <team> <from> <to>"))
		return
	}
	kind, err := board.ParseKind(args[0])
	if err != nil {
		c.fail(err)
		return
	}
	team, err := board.ParseTeam(args[1])
	if err != nil {
		c.fail(err)
		return
	}
	from, err := board.ParseSquare(args[2])
	if err != nil {
		c.fail(err)
		return
	}
	to, err := board.ParseSquare(args[3])
	if err != nil {
		c.fail(err)
		return
	}
	c.verdict(kind, referee.IsValidMove(from, to, kind, team, c.game.Position().Snapshot))
}

// verdict prints the answer and counts it when a database is attached.
func (c *Console) verdict(kind board.PieceKind, valid bool) {
	if c.store != nil {
		if err := c.store.RecordVerdict(kind, valid); err != nil {
			c.fail(err)
			return
		}
	}
	if valid {
		c.println("valid")
	} else {
		c.println("invalid")
	}
}

func (c *Console) handleMoves(args []string) {
	if len(args) != 1 {
		c.fail(errors.New("usage: moves <square>"))
		return
	}
	from, err := board.ParseSquare(args[0])
	if err != nil {
		c.fail(err)
		return
	}
	pos := c.game.Position()
	p, ok := pos.At(from)
	if !ok {
		c.fail(fmt.Errorf("no piece on %s", from))
		return
	}

	dests := referee.Destinations(from, p.Kind, p.Team, pos.Snapshot)
	names := make([]string, len(dests))
	for i, d := range dests {
		names[i] = d.String()
	}
	if len(names) == 0 {
		names = []string{"-"}
	}
	fmt.Fprintf(c.out, "moves %s: %s\n", from, strings.Join(names, " "))
}

func (c *Console) handleMove(args []string) {
	if len(args) != 1 {
		c.fail(errors.New("usage: move <from><to>"))
		return
	}
	from, to, err := parseMove(args[0])
	if err != nil {
		c.fail(err)
		return
	}
	res, err := c.game.Move(from, to)
	if err != nil {
		c.fail(err)
		return
	}
	switch {
	case res.EnPassant:
		fmt.Fprintf(c.out, "ok captures %s en passant\n", res.Captured.Position)
	case res.Captured != nil:
		fmt.Fprintf(c.out, "ok captures %s\n", res.Captured.Kind)
	default:
		c.println("ok")
	}
}

func (c *Console) handleSave(args []string) {
	if c.store == nil {
		c.fail(errNoStorage)
		return
	}
	if len(args) != 1 {
		c.fail(errors.New("usage: save <name>"))
		return
	}
	saved, err := c.store.SavePosition(args[0], c.game.Position().FEN())
	if err != nil {
		c.fail(err)
		return
	}
	fmt.Fprintf(c.out, "saved %s %s\n", saved.Name, saved.ID)
}

func (c *Console) handleLoad(args []string) {
	if c.store == nil {
		c.fail(errNoStorage)
		return
	}
	if len(args) != 1 {
		c.fail(errors.New("usage: load <name>"))
		return
	}
	saved, err := c.store.FindPosition(args[0])
	if err != nil {
		c.fail(fmt.Errorf("load %s: %w", args[0], err))
		return
	}
	g, err := game.FromFEN(saved.FEN)
	if err != nil {
		c.fail(err)
		return
	}
	c.game = g
	fmt.Fprintf(c.out, "loaded %s\n", saved.Name)
}

func (c *Console) handleList() {
	if c.store == nil {
		c.fail(errNoStorage)
		return
	}
	list, err := c.store.ListPositions()
	if err != nil {
		c.fail(err)
		return
	}
	for _, p := range list {
		fmt.Fprintf(c.out, "%s %s\n", p.Name, p.FEN)
	}
	fmt.Fprintf(c.out, "%d saved\n", len(list))
}

func (c *Console) handleDelete(args []string) {
	if c.store == nil {
		c.fail(errNoStorage)
		return
	}
	if len(args) != 1 {
		c.fail(errors.New("usage: delete <name>"))
		return
	}
	saved, err := c.store.FindPosition(args[0])
	if err == nil {
		err = c.store.DeletePosition(saved.ID)
	}
	if err != nil {
		c.fail(fmt.Errorf("delete %s: %w", args[0], err))
		return
	}
	fmt.Fprintf(c.out, "deleted %s\n", saved.Name)
}

func (c *Console) handleStats() {
	if c.store == nil {
		c.fail(errNoStorage)
		return
	}
	stats, err := c.store.LoadStats()
	if err != nil {
		c.fail(err)
		return
	}
	fmt.Fprintf(c.out, "verdicts %d accepted %.1f%%\n", stats.Total(), stats.AcceptRate())
	for k := board.Pawn; k <= board.King; k++ {
		name := k.String()
		if stats.Accepted[name]+stats.Rejected[name] == 0 {
			continue
		}
		fmt.Fprintf(c.out, "  %s %d/%d\n", name, stats.Accepted[name], stats.Rejected[name])
	}
}
