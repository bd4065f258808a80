// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package mid derives and caches the machine identifier (MID) that tags login
// requests to one installation.
//
// The MID is the hex MD5 digest of a seed: the MAC address of a wired adapter
// when one exists, any MAC address otherwise, and a random UUID as a last
// resort. Once derived it is kept in memory for the life of the Resolver and
// persisted to <dir>/mid.json so later runs reuse it.
package mid

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"tiauth/cli/internal/fsutil"
)

// FileName is the MID file inside the configuration directory.
const FileName = "mid.json"

// wiredName matches common wired/Ethernet adapter names: eth0, en0, enp3s0, eno1, em1.
var wiredName = regexp.MustCompile(`(?i)^(eth|en|em)[0-9a-z]*$`)

// InterfaceLister enumerates network interfaces as a map of interface name to MAC address.
// Interfaces without a hardware address map to "".
type InterfaceLister interface {
	Interfaces() (map[string]string, error)
}

type file struct {
	MID string `json:"mid"`
}

// Resolver resolves the MID and caches it in memory. It is safe for concurrent use.
type Resolver struct {
	mu      sync.Mutex
	cached  string
	lister  InterfaceLister
	newSeed func() string
}

// NewResolver returns a Resolver that seeds new identifiers from lister.
// A nil lister uses the platform default.
func NewResolver(lister InterfaceLister) *Resolver {
	if lister == nil {
		lister = SystemInterfaces{}
	}
	return &Resolver{lister: lister, newSeed: uuid.NewString}
}

// Path returns the MID file path for dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Resolve returns the MID for dir. A non-empty supplied value wins and is cached without
// touching disk. Otherwise the in-memory value, then mid.json, then a freshly derived value
// is used. A freshly derived value is persisted; failing to persist it is logged, not returned.
func (r *Resolver) Resolve(dir, supplied string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if supplied != "" {
		r.cached = supplied
		return supplied
	}
	if r.cached != "" {
		return r.cached
	}
	if id := load(dir); id != "" {
		r.cached = id
		return id
	}

	seed := r.seed()
	id := Derive(seed)
	if err := save(dir, id); err != nil {
		slog.Warn("mid: could not persist machine id", "path", Path(dir), "err", err)
	} else {
		slog.Debug("mid: generated machine id", "path", Path(dir))
	}
	r.cached = id
	return id
}

// Reset forgets the in-memory MID. The file on disk is left alone.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cached = ""
}

// Derive computes the MID for seed.
func Derive(seed string) string {
	sum := md5.Sum([]byte(seed))
	return hex.EncodeToString(sum[:])
}

// SelectMAC picks the seed MAC address from ifaces. Names are visited in ascending order; the
// first wired adapter with a MAC wins, falling back to the first MAC of any interface.
// It returns "" when no interface exposes a usable MAC address.
func SelectMAC(ifaces map[string]string) string {
	names := make([]string, 0, len(ifaces))
	for name := range ifaces {
		names = append(names, name)
	}
	sort.Strings(names)

	first := ""
	for _, name := range names {
		mac := ifaces[name]
		if !usableMAC(mac) {
			continue
		}
		if wiredName.MatchString(name) {
			return mac
		}
		if first == "" {
			first = mac
		}
	}
	return first
}

func (r *Resolver) seed() string {
	ifaces, err := r.lister.Interfaces()
	if err != nil {
		slog.Debug("mid: interface enumeration failed", "err", err)
	}
	if mac := SelectMAC(ifaces); mac != "" {
		return mac
	}
	return r.newSeed()
}

func usableMAC(mac string) bool {
	if mac == "" {
		return false
	}
	return strings.Trim(mac, "0:-") != ""
}

// load returns the persisted MID, or "" when the file is missing or unusable.
func load(dir string) string {
	b, err := os.ReadFile(Path(dir))
	if err != nil {
		return ""
	}
	var f file
	if err := json.Unmarshal(b, &f); err != nil {
		slog.Debug("mid: ignoring invalid mid file", "path", Path(dir), "err", err)
		return ""
	}
	return strings.TrimSpace(f.MID)
}

func save(dir, id string) error {
	if err := fsutil.EnsureDir(dir); err != nil {
		return err
	}
	b, err := json.MarshalIndent(file{MID: id}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode mid: %w", err)
	}
	return fsutil.WriteFileAtomic(Path(dir), append(b, '\n'))
}
