package storage

import (
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/calev/chessmind/internal/engine"
)

// Storage keys
const (
	keyPreferences = "preferences"
	runKeyPrefix   = "run/"
)

// Preferences stores the operator's engine settings.
type Preferences struct {
	Depth     int             `json:"depth"`
	Mode      engine.EvalMode `json:"eval_mode"`
	CachePath string          `json:"cache_path"`
	ModelPath string          `json:"model_path"`
}

// DefaultPreferences returns the default engine settings. Paths are left
// empty; callers fall back to the platform defaults in paths.go.
func DefaultPreferences() *Preferences {
	return &Preferences{
		Depth: 3,
		Mode:  engine.EvalHeuristic,
	}
}

// TrainingRun records one execution of the offline training pipeline.
type TrainingRun struct {
	ID         string        `json:"id"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Games      int           `json:"games"`
	Positions  int           `json:"positions"`
	Partitions int           `json:"partitions"`
	ModelPath  string        `json:"model_path"`
}

// Storage wraps BadgerDB for persistent storage.
type Storage struct {
	db *badger.DB
}

// Open opens (or creates) the database in the given directory.
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Storage{db: db}, nil
}

// OpenDefault opens the database in the platform data directory.
func OpenDefault() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir)
}

// Close closes the database.
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SavePreferences saves the engine settings.
func (s *Storage) SavePreferences(prefs *Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPreferences), data)
	})
}

// LoadPreferences loads the engine settings, returning defaults if none
// were ever saved.
func (s *Storage) LoadPreferences() (*Preferences, error) {
	prefs := DefaultPreferences()

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPreferences))
		if err == badger.ErrKeyNotFound {
			return nil // Use defaults
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, prefs)
		})
	})

	return prefs, err
}

// SaveRun records a completed training run.
func (s *Storage) SaveRun(run *TrainingRun) error {
	data, err := json.Marshal(run)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(runKeyPrefix+run.ID), data)
	})
}

// Runs returns all recorded training runs.
func (s *Storage) Runs() ([]TrainingRun, error) {
	var runs []TrainingRun

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(runKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var run TrainingRun
				if err := json.Unmarshal(val, &run); err != nil {
					return err
				}
				runs = append(runs, run)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	return runs, err
}
