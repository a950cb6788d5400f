package store

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

const IndexFile = "recordings.log"

// IndexEntry is one finished recording.
type IndexEntry struct {
	GameID string
	Path   string
	Rows   int
}

// Index is an append-only log of finished recordings kept next to them,
// one tab separated "game_id path rows" line each. Partial or malformed
// lines left by a crash are skipped on open.
type Index struct {
	mu      sync.RWMutex
	file    *os.File
	entries []IndexEntry
	byID    map[string]int
}

func OpenIndex(dir string) (*Index, error) {
	if dir == "" {
		return nil, fmt.Errorf("index dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	path := filepath.Join(dir, IndexFile)

	idx := &Index{byID: make(map[string]int)}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read index file: %w", err)
	}
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		if e, ok := parseIndexLine(string(line)); ok {
			idx.add(e)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open index file: %w", err)
	}
	// Terminate a partial last line so the next append starts clean.
	if len(data) > 0 && data[len(data)-1] != '\n' {
		if _, err := file.WriteString("\n"); err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("repair index file: %w", err)
		}
	}
	idx.file = file
	return idx, nil
}

func parseIndexLine(line string) (IndexEntry, bool) {
	fields := strings.Split(strings.TrimSpace(line), "\t")
	if len(fields) != 3 || fields[0] == "" {
		return IndexEntry{}, false
	}
	rows, err := strconv.Atoi(fields[2])
	if err != nil {
		return IndexEntry{}, false
	}
	return IndexEntry{GameID: fields[0], Path: fields[1], Rows: rows}, true
}

func (x *Index) add(e IndexEntry) {
	if i, ok := x.byID[e.GameID]; ok {
		x.entries[i] = e
		return
	}
	x.byID[e.GameID] = len(x.entries)
	x.entries = append(x.entries, e)
}

// Append records a finished recording and syncs the log.
func (x *Index) Append(e IndexEntry) error {
	if strings.ContainsAny(e.GameID+e.Path, "\t\n") {
		return fmt.Errorf("index entry %q contains tabs or newlines", e.GameID)
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.file == nil {
		return fmt.Errorf("index is closed")
	}
	if _, err := fmt.Fprintf(x.file, "%s\t%s\t%d\n", e.GameID, e.Path, e.Rows); err != nil {
		return fmt.Errorf("append index: %w", err)
	}
	if err := x.file.Sync(); err != nil {
		return fmt.Errorf("sync index: %w", err)
	}
	x.add(e)
	return nil
}

func (x *Index) Has(gameID string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	_, ok := x.byID[gameID]
	return ok
}

// Entries returns the recordings in the order they were first appended.
func (x *Index) Entries() []IndexEntry {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return append([]IndexEntry(nil), x.entries...)
}

func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.file == nil {
		return nil
	}
	err := x.file.Close()
	x.file = nil
	return err
}
