package registry

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ormasoftchile/gait/pkg/feature"
)

// LedgerFileName is the usage ledger file under the ledger directory.
const LedgerFileName = "usage.jsonl"

// UsageRecord is one JSONL ledger line.
type UsageRecord struct {
	Keyword string `json:"keyword"`
	Pattern string `json:"pattern"`
}

// Ledger is the append-only persisted usage ledger. Marks from concurrent
// scenarios serialize through a mutex; each append is flushed and synced at
// the record boundary so usage survives an aborted run. Readers union and
// deduplicate, and repeated entries are expected.
type Ledger struct {
	path string

	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	enc    *json.Encoder
}

// OpenLedger opens (creating as needed) the usage ledger under dir.
func OpenLedger(dir string) (*Ledger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}
	path := filepath.Join(dir, LedgerFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open usage ledger: %w", err)
	}
	w := bufio.NewWriter(f)
	return &Ledger{
		path:   path,
		file:   f,
		writer: w,
		enc:    json.NewEncoder(w),
	}, nil
}

// Path returns the ledger file path.
func (l *Ledger) Path() string {
	return l.path
}

// Append records one usage mark and flushes to disk.
func (l *Ledger) Append(kw feature.Keyword, pattern string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec := UsageRecord{Keyword: string(kw), Pattern: pattern}
	if err := l.enc.Encode(rec); err != nil {
		return fmt.Errorf("encode usage record: %w", err)
	}
	if err := l.writer.Flush(); err != nil {
		return fmt.Errorf("flush usage ledger: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("sync usage ledger: %w", err)
	}
	return nil
}

// Used reads the ledger back as a deduplicated set. A missing file is an
// empty set; malformed lines are skipped so a torn append cannot poison the
// whole ledger.
func (l *Ledger) Used() (map[stepKey]bool, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[stepKey]bool{}, nil
		}
		return nil, fmt.Errorf("open usage ledger: %w", err)
	}
	defer f.Close()

	used := make(map[stepKey]bool)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec UsageRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		used[stepKey{feature.Keyword(rec.Keyword), rec.Pattern}] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read usage ledger: %w", err)
	}
	return used, nil
}

// Close flushes and closes the ledger file.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.writer.Flush(); err != nil {
		return err
	}
	return l.file.Close()
}
