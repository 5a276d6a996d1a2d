package transfer

import (
	"fmt"
	"os"
	"sync"
)

// Ledger is the append-only correspondence table mapping each transferred
// source item ID to the target item ID created for it. Workers complete
// transfers concurrently, so appends are serialized with a mutex; the file
// is opened O_APPEND and never read back within a run.
type Ledger struct {
	mu   sync.Mutex
	file *os.File
}

// OpenLedger opens (or creates) the ledger file for appending
func OpenLedger(path string) (*Ledger, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger %s: %w", path, err)
	}
	return &Ledger{file: file}, nil
}

// Record appends one sourceID,targetID line
func (l *Ledger) Record(sourceID, targetID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := fmt.Fprintf(l.file, "%s,%s\n", sourceID, targetID); err != nil {
		return fmt.Errorf("failed to append ledger record: %w", err)
	}
	return nil
}

// Close closes the ledger file
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
