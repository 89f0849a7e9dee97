package storage

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	uuid "github.com/satori/go.uuid"

	"github.com/hailam/chessreferee/internal/board"
)

// Storage keys
const (
	keyPreferences    = "preferences"
	keyStats          = "stats"
	keyPositionPrefix = "position/"
)

// maxConflictRetries bounds read-modify-write retries on concurrent updates.
const maxConflictRetries = 8

// ErrNotFound is returned when a saved position does not exist.
var ErrNotFound = errors.New("not found")

// Preferences stores GUI settings
type Preferences struct {
	FlipBoard      bool      `json:"flip_board"`
	ShowHighlights bool      `json:"show_highlights"`
	LastFEN        string    `json:"last_fen"`
	LastPlayed     time.Time `json:"last_played"`
}

// DefaultPreferences returns default preferences
func DefaultPreferences() *Preferences {
	return &Preferences{
		ShowHighlights: true,
		LastFEN:        board.StartFEN,
		LastPlayed:     time.Now(),
	}
}

// VerdictStats counts referee verdicts by piece kind
type VerdictStats struct {
	Accepted map[string]int `json:"accepted"`
	Rejected map[string]int `json:"rejected"`
}

// NewVerdictStats returns empty statistics
func NewVerdictStats() *VerdictStats {
	return &VerdictStats{
		Accepted: make(map[string]int),
		Rejected: make(map[string]int),
	}
}

// Total returns the number of recorded verdicts.
func (s *VerdictStats) Total() int {
	n := 0
	for _, v := range s.Accepted {
		n += v
	}
	for _, v := range s.Rejected {
		n += v
	}
	return n
}

// AcceptRate returns the share of accepted verdicts as a percentage (0-100)
func (s *VerdictStats) AcceptRate() float64 {
	total := s.Total()
	if total == 0 {
		return 0
	}
	accepted := 0
	for _, v := range s.Accepted {
		accepted += v
	}
	return float64(accepted) / float64(total) * 100
}

// SavedPosition is a named FEN kept in the database
type SavedPosition struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	FEN     string    `json:"fen"`
	Created time.Time `json:"created"`
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// NewStorage opens the database in the platform data directory
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir)
}

// Open opens (or creates) a database in dir
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SavePreferences saves preferences
func (s *Storage) SavePreferences(prefs *Preferences) error {
	prefs.LastPlayed = time.Now()
	return s.put(keyPreferences, prefs)
}

// LoadPreferences loads preferences, returns defaults if not found
func (s *Storage) LoadPreferences() (*Preferences, error) {
	prefs := DefaultPreferences()
	err := s.get(keyPreferences, prefs)
	if errors.Is(err, ErrNotFound) {
		return prefs, nil // Use defaults
	}
	return prefs, err
}

// LoadStats loads verdict statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*VerdictStats, error) {
	stats := NewVerdictStats()
	err := s.get(keyStats, stats)
	if errors.Is(err, ErrNotFound) {
		return stats, nil
	}
	return stats, err
}

// RecordVerdict adds one verdict for kind to the statistics
func (s *Storage) RecordVerdict(kind board.PieceKind, valid bool) error {
	var err error
	for i := 0; i < maxConflictRetries; i++ {
		err = s.db.Update(func(txn *badger.Txn) error {
			stats := NewVerdictStats()
			if err := getTxn(txn, keyStats, stats); err != nil && !errors.Is(err, ErrNotFound) {
				return err
			}
			if valid {
				stats.Accepted[kind.String()]++
			} else {
				stats.Rejected[kind.String()]++
			}
			return putTxn(txn, keyStats, stats)
		})
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

// SavePosition stores fen under name. Saving an existing name replaces its FEN
// and keeps its ID.
func (s *Storage) SavePosition(name, fen string) (SavedPosition, error) {
	if _, err := board.ParseFEN(fen); err != nil {
		return SavedPosition{}, err
	}

	var saved SavedPosition
	err := s.db.Update(func(txn *badger.Txn) error {
		existing, err := findByName(txn, name)
		switch {
		case err == nil:
			saved = existing
		case errors.Is(err, ErrNotFound):
			saved = SavedPosition{ID: uuid.NewV4(), Name: name, Created: time.Now()}
		default:
			return err
		}
		saved.FEN = fen
		return putTxn(txn, keyPositionPrefix+saved.ID.String(), saved)
	})
	return saved, err
}

// GetPosition loads a saved position by ID
func (s *Storage) GetPosition(id uuid.UUID) (SavedPosition, error) {
	var saved SavedPosition
	err := s.get(keyPositionPrefix+id.String(), &saved)
	return saved, err
}

// FindPosition loads a saved position by name
func (s *Storage) FindPosition(name string) (SavedPosition, error) {
	var saved SavedPosition
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		saved, err = findByName(txn, name)
		return err
	})
	return saved, err
}

// ListPositions returns all saved positions ordered by name
func (s *Storage) ListPositions() ([]SavedPosition, error) {
	var out []SavedPosition
	err := s.db.View(func(txn *badger.Txn) error {
		return eachPosition(txn, func(p SavedPosition) bool {
			out = append(out, p)
			return true
		})
	})
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, err
}

// DeletePosition removes a saved position
func (s *Storage) DeletePosition(id uuid.UUID) error {
	key := []byte(keyPositionPrefix + id.String())
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if err == badger.ErrKeyNotFound {
				return ErrNotFound
			}
			return err
		}
		return txn.Delete(key)
	})
}

func (s *Storage) put(key string, v any) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return putTxn(txn, key, v)
	})
}

func (s *Storage) get(key string, v any) error {
	return s.db.View(func(txn *badger.Txn) error {
		return getTxn(txn, key, v)
	})
}

func putTxn(txn *badger.Txn, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set([]byte(key), data)
}

func getTxn(txn *badger.Txn, key string, v any) error {
	item, err := txn.Get([]byte(key))
	if err == badger.ErrKeyNotFound {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func findByName(txn *badger.Txn, name string) (SavedPosition, error) {
	var found SavedPosition
	ok := false
	err := eachPosition(txn, func(p SavedPosition) bool {
		if p.Name == name {
			found, ok = p, true
			return false
		}
		return true
	})
	if err != nil {
		return SavedPosition{}, err
	}
	if !ok {
		return SavedPosition{}, ErrNotFound
	}
	return found, nil
}

// eachPosition calls fn for every saved position until fn returns false.
func eachPosition(txn *badger.Txn, fn func(SavedPosition) bool) error {
	prefix := []byte(keyPositionPrefix)
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var p SavedPosition
		err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		})
		if err != nil {
			return err
		}
		if !fn(p) {
			return nil
		}
	}
	return nil
}
