// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package session implements persistence for authentication state.
//
// One record lives at <dir>/auth_session.json. It is either fully logged out
// ({"loggedIn": false}) or fully logged in (loggedIn, non-empty cookie, data).
// Reads are self-healing: a missing or invalid file is replaced with a fresh
// logged-out record. Every write replaces the whole file.
package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	apperr "tiauth/cli/internal/errors"
	"tiauth/cli/internal/fsutil"
)

// FileName is the session record file inside the configuration directory.
const FileName = "auth_session.json"

// Record represents persisted authentication state for the current user.
type Record struct {
	LoggedIn bool           `json:"loggedIn"`
	Cookie   string         `json:"cookie,omitempty"`
	Data     map[string]any `json:"data,omitempty"`

	// Err is set only when an invalid on-disk record was found and repaired.
	// It always carries apperr.CorruptSessionFile and is never returned as a failure.
	Err error `json:"-"`
}

// Store reads and writes session records and memoizes the status snapshot per directory.
// It is safe for concurrent use within a process; writes drop the snapshot for their
// directory. Other processes writing the same file are not coordinated with.
type Store struct {
	mu        sync.Mutex
	snapshots map[string]Snapshot
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{snapshots: make(map[string]Snapshot)}
}

// Path returns the session file path for dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Exists reports whether a session file has been written in dir.
func (s *Store) Exists(dir string) bool {
	return fsutil.Exists(Path(dir))
}

// Read loads the record in dir. Missing or invalid files are replaced by a logged-out record
// which is returned; for invalid files the result carries an advisory Err.
func (s *Store) Read(dir string) Record {
	p := Path(dir)
	data, err := os.ReadFile(p)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Debug("session: unreadable record", "path", p, "err", err)
		}
		return s.heal(dir, nil)
	}

	rec, prior, err := decode(data)
	if err != nil {
		slog.Debug("session: invalid record", "path", p, "err", err)
		return s.heal(dir, &corruption{prior: prior, cause: err})
	}
	return rec
}

// WriteLoggedIn replaces the record in dir with a logged-in record.
// The caller is responsible for making sure dir exists and is writable.
func (s *Store) WriteLoggedIn(dir, cookie string, data map[string]any) (Record, error) {
	if cookie == "" {
		return Record{}, fmt.Errorf("session: refusing to persist a logged-in record without a cookie")
	}
	if data == nil {
		data = map[string]any{}
	}
	rec := Record{LoggedIn: true, Cookie: cookie, Data: data}
	if err := s.replace(dir, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// WriteLoggedOut replaces the record in dir with a logged-out record and returns it.
func (s *Store) WriteLoggedOut(dir string) (Record, error) {
	rec := Record{LoggedIn: false}
	if err := s.replace(dir, rec); err != nil {
		return rec, err
	}
	return rec, nil
}

func (s *Store) replace(dir string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, cacheKey(dir))
	return write(dir, rec)
}

// InvalidateCache drops the memoized status snapshot for dir.
func (s *Store) InvalidateCache(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, cacheKey(dir))
}

type corruption struct {
	prior *bool
	cause error
}

// heal persists a fresh logged-out record. Failing to persist it is not fatal to the read.
func (s *Store) heal(dir string, c *corruption) Record {
	rec := Record{LoggedIn: false}
	if err := fsutil.EnsureDir(dir); err != nil {
		slog.Debug("session: cannot create directory for repaired record", "dir", dir, "err", err)
	} else if err := write(dir, rec); err != nil {
		slog.Debug("session: cannot persist repaired record", "dir", dir, "err", err)
	}
	if c != nil {
		msg := "session file was invalid and has been reset to logged out"
		if c.prior != nil {
			msg = fmt.Sprintf("session file was invalid (loggedIn=%t) and has been reset to logged out", *c.prior)
		}
		rec.Err = apperr.Wrap(apperr.CorruptSessionFile, msg, c.cause)
	}
	return rec
}

// decode parses and validates raw record bytes. When the content is an object with a boolean
// loggedIn field, that value is returned as prior even if validation fails.
func decode(data []byte) (Record, *bool, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Record{}, nil, fmt.Errorf("parse: %w", err)
	}
	if raw == nil {
		return Record{}, nil, fmt.Errorf("record is null")
	}

	var prior *bool
	var loggedIn bool
	if v, ok := raw["loggedIn"]; ok {
		if err := json.Unmarshal(v, &loggedIn); err != nil {
			return Record{}, nil, fmt.Errorf("loggedIn is not a boolean")
		}
		prior = &loggedIn
	} else {
		return Record{}, nil, fmt.Errorf("missing loggedIn")
	}

	if !loggedIn {
		if _, ok := raw["cookie"]; ok {
			return Record{}, prior, fmt.Errorf("logged-out record carries a cookie")
		}
		if _, ok := raw["data"]; ok {
			return Record{}, prior, fmt.Errorf("logged-out record carries data")
		}
		return Record{LoggedIn: false}, prior, nil
	}

	var rec Record
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&rec); err != nil {
		return Record{}, prior, fmt.Errorf("decode: %w", err)
	}
	if rec.Cookie == "" {
		return Record{}, prior, fmt.Errorf("logged-in record has no cookie")
	}
	if rec.Data == nil {
		return Record{}, prior, fmt.Errorf("logged-in record has no data")
	}
	return rec, prior, nil
}

func write(dir string, rec Record) error {
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("session: encode record: %w", err)
	}
	b = append(b, '\n')
	if err := fsutil.WriteFileAtomic(Path(dir), b); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	return nil
}

func cacheKey(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return filepath.Clean(dir)
}
