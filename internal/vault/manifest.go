package vault

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"
)

// ManifestEntry records the last generated state of one note.
type ManifestEntry struct {
	Hash      string    `json:"hash"`
	Kind      string    `json:"kind"`
	EntityID  int       `json:"entity_id"`
	RunID     string    `json:"run_id"`
	WrittenAt time.Time `json:"written_at"`
	Stale     bool      `json:"stale,omitempty"`
}

// Manifest maps vault-relative note paths to what the tool last wrote there.
// Notes from earlier runs that the current run did not produce are marked
// stale; their files are never deleted.
type Manifest struct {
	mu      sync.RWMutex
	path    string
	Entries map[string]ManifestEntry `json:"entries"`
	touched map[string]bool
	Dirty   bool `json:"-"`
}

// LoadManifest reads the manifest at path. A missing or corrupt file yields
// an empty manifest.
func LoadManifest(path string) *Manifest {
	m := &Manifest{
		path:    path,
		Entries: make(map[string]ManifestEntry),
		touched: make(map[string]bool),
	}
	m.load()
	return m
}

func (m *Manifest) load() {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.path)
	if err != nil {
		return
	}
	if err := json.Unmarshal(data, &m.Entries); err != nil {
		m.Entries = make(map[string]ManifestEntry)
	}
}

// Get returns the entry for rel.
func (m *Manifest) Get(rel string) (ManifestEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.Entries[rel]
	return e, ok
}

// Record stores the entry for a note written in this run.
func (m *Manifest) Record(rel string, entry ManifestEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries[rel] = entry
	m.touched[rel] = true
	m.Dirty = true
}

// Seal marks every entry not recorded since load as stale and returns those
// paths sorted. Stale entries whose files are gone (per exists) are dropped.
func (m *Manifest) Seal(exists func(rel string) bool) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var stale []string
	for rel, e := range m.Entries {
		if m.touched[rel] {
			continue
		}
		if !exists(rel) {
			delete(m.Entries, rel)
			m.Dirty = true
			continue
		}
		if !e.Stale {
			e.Stale = true
			m.Entries[rel] = e
			m.Dirty = true
		}
		stale = append(stale, rel)
	}
	sort.Strings(stale)
	return stale
}

// Len returns the number of entries.
func (m *Manifest) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Entries)
}

// Save writes the manifest if it changed.
func (m *Manifest) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.Dirty {
		return nil
	}
	data, err := json.MarshalIndent(m.Entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := WriteAtomic(m.path, data, 0644); err != nil {
		return err
	}
	m.Dirty = false
	return nil
}
