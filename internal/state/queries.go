package state

import (
	"database/sql"
	"time"

	"github.com/hpungsan/wordscraper/internal/errors"
	"github.com/hpungsan/wordscraper/internal/tally"
)

// Store persists and reloads engine session state. Implements tally.Store.
type Store struct {
	db *sql.DB
}

// NewStore wraps a database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Save writes the session state wholesale inside one transaction: the
// single session row and the full tally. An interrupted save leaves the
// previous consistent snapshot in place.
func (s *Store) Save(st tally.SessionState) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	initialized := 0
	if st.Initialized {
		initialized = 1
	}
	_, err = tx.Exec(`
		INSERT INTO session (slot, session_id, day, doc_identity, baseline, initialized, updated_at)
		VALUES (0, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			session_id = excluded.session_id,
			day = excluded.day,
			doc_identity = excluded.doc_identity,
			baseline = excluded.baseline,
			initialized = excluded.initialized,
			updated_at = excluded.updated_at
	`, st.SessionID, st.Day, st.DocIdentity, st.Baseline, initialized, time.Now().Unix())
	if err != nil {
		return errors.NewInternal(err)
	}

	if _, err := tx.Exec("DELETE FROM tally"); err != nil {
		return errors.NewInternal(err)
	}

	if len(st.Frequencies) > 0 {
		stmt, err := tx.Prepare("INSERT INTO tally (word, count) VALUES (?, ?)")
		if err != nil {
			return errors.NewInternal(err)
		}
		defer stmt.Close()
		for word, count := range st.Frequencies {
			if count <= 0 {
				continue
			}
			if _, err := stmt.Exec(word, count); err != nil {
				return errors.NewInternal(err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// Load reads the persisted session state. Returns nil with no error when
// nothing has been saved yet (fresh install).
func (s *Store) Load() (*tally.SessionState, error) {
	row := s.db.QueryRow(`
		SELECT session_id, day, doc_identity, baseline, initialized
		FROM session WHERE slot = 0
	`)

	var st tally.SessionState
	var initialized int
	err := row.Scan(&st.SessionID, &st.Day, &st.DocIdentity, &st.Baseline, &initialized)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	st.Initialized = initialized != 0

	rows, err := s.db.Query("SELECT word, count FROM tally")
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	st.Frequencies = make(tally.FrequencyMap)
	for rows.Next() {
		var word string
		var count int
		if err := rows.Scan(&word, &count); err != nil {
			return nil, errors.NewInternal(err)
		}
		if count > 0 {
			st.Frequencies[word] = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return &st, nil
}
