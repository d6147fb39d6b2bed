package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	prefsBucket     = []byte("prefs")
	calendarsBucket = []byte("calendars")
	exportsBucket   = []byte("exports")

	prefsKey = []byte("dashboard")
)

// ErrNotFound is returned for a missing calendar.
var ErrNotFound = errors.New("not found")

type Store struct {
	db *bolt.DB
}

func NewStore(dbPath string, timeout time.Duration) (*Store, error) {
	if timeout <= 0 {
		timeout = 1 * time.Second
	}
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{prefsBucket, calendarsBucket, exportsBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// LoadPrefs returns the saved prefs, or zero Prefs when none were saved.
func (s *Store) LoadPrefs() (Prefs, error) {
	var p Prefs
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(prefsBucket).Get(prefsKey)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &p)
	})
	return p, err
}

func (s *Store) SavePrefs(p Prefs) error {
	p.UpdatedAt = time.Now()
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(p)
		if err != nil {
			return err
		}
		return tx.Bucket(prefsBucket).Put(prefsKey, data)
	})
}

// TouchCalendar records id as used now, creating it if needed. An empty
// label keeps the existing one.
func (s *Store) TouchCalendar(id, label string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("calendar id cannot be empty")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(calendarsBucket)
		cal := Calendar{ID: id}
		if data := b.Get([]byte(id)); data != nil {
			if err := json.Unmarshal(data, &cal); err != nil {
				return err
			}
		}
		if label != "" {
			cal.Label = label
		}
		cal.LastUsed = time.Now()

		data, err := json.Marshal(cal)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), data)
	})
}

func (s *Store) GetCalendar(id string) (*Calendar, error) {
	var cal Calendar
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(calendarsBucket).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("calendar %q: %w", id, ErrNotFound)
		}
		return json.Unmarshal(data, &cal)
	})
	if err != nil {
		return nil, err
	}
	return &cal, nil
}

// Calendars lists known calendars, most recently used first.
func (s *Store) Calendars() ([]*Calendar, error) {
	var cals []*Calendar
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(calendarsBucket).ForEach(func(_ []byte, v []byte) error {
			var cal Calendar
			if err := json.Unmarshal(v, &cal); err != nil {
				return nil
			}
			cals = append(cals, &cal)
			return nil
		})
	})
	sort.Slice(cals, func(i, j int) bool {
		if cals[i].LastUsed.Equal(cals[j].LastUsed) {
			return cals[i].ID < cals[j].ID
		}
		return cals[i].LastUsed.After(cals[j].LastUsed)
	})
	return cals, err
}

func (s *Store) ForgetCalendar(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(calendarsBucket).Delete([]byte(id))
	})
}

// RecordExport appends rec to the export history.
func (s *Store) RecordExport(rec ExportRecord) error {
	if rec.FinishedAt.IsZero() {
		rec.FinishedAt = time.Now()
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(exportsBucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put(fmt.Appendf(nil, "%020d", seq), data)
	})
}

// Exports returns the export history, newest first, capped at limit when
// limit > 0.
func (s *Store) Exports(limit int) ([]ExportRecord, error) {
	var out []ExportRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(exportsBucket).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var rec ExportRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				continue
			}
			out = append(out, rec)
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return nil
	})
	return out, err
}
