// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import "fmt"

// Snapshot is the status view of a session record.
type Snapshot struct {
	LoggedIn bool   `json:"loggedIn"`
	UID      string `json:"uid,omitempty"`
	GUID     string `json:"guid,omitempty"`
	Email    string `json:"email,omitempty"`
	Cookie   string `json:"cookie,omitempty"`
}

// Snapshot returns the memoized snapshot for dir, reading the record on first use.
// The read runs under the store lock so a concurrent write cannot be cached over.
func (s *Store) Snapshot(dir string) Snapshot {
	key := cacheKey(dir)

	s.mu.Lock()
	defer s.mu.Unlock()
	if snap, ok := s.snapshots[key]; ok {
		return snap
	}
	snap := Project(s.Read(dir))
	s.snapshots[key] = snap
	return snap
}

// Project derives a Snapshot from a record.
func Project(rec Record) Snapshot {
	snap := Snapshot{LoggedIn: rec.LoggedIn}
	if !rec.LoggedIn {
		return snap
	}
	snap.Cookie = rec.Cookie
	snap.UID = field(rec.Data, "uid")
	snap.GUID = field(rec.Data, "guid")
	snap.Email = field(rec.Data, "email")
	return snap
}

func field(data map[string]any, key string) string {
	v, ok := data[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
