// Package ledger records which historical events have already been painted.
//
// The ledger is a single line of bracketed descriptors joined by ", ":
//
//	[1995: The Soup Nazi, New York], [1969: Moon landing, Sea of Tranquility]
//
// It is read in full before each run and handed to the model as an exclusion
// list, then extended with the new descriptor after the run. Entries are never
// removed or deduplicated. There is no locking: one writer at a time.
package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/fpang/daily-panda/internal/storage"
	"github.com/rs/zerolog/log"
)

// DefaultKey is where the ledger lives inside the artifact store.
const DefaultKey = "events/past_events.txt"

// Ledger is the append-only record of past event descriptors.
type Ledger struct {
	store storage.Store
	key   string
}

// New returns a ledger stored under DefaultKey.
func New(store storage.Store) *Ledger {
	return NewWithKey(store, DefaultKey)
}

// NewWithKey returns a ledger stored under key.
func NewWithKey(store storage.Store, key string) *Ledger {
	return &Ledger{store: store, key: key}
}

// ReadAll returns the raw ledger content, or "" if nothing was recorded yet.
func (l *Ledger) ReadAll(ctx context.Context) (string, error) {
	content, _, err := storage.ReadString(ctx, l.store, l.key)
	if err != nil {
		return "", fmt.Errorf("failed to read ledger: %w", err)
	}
	return content, nil
}

// Append records the first line of descriptor and returns the bracketed entry
// that was written.
func (l *Ledger) Append(ctx context.Context, descriptor string) (string, error) {
	entry := Entry(descriptor)

	existing, found, err := storage.ReadString(ctx, l.store, l.key)
	if err != nil {
		return "", fmt.Errorf("failed to read ledger: %w", err)
	}

	content := entry
	if found {
		content = join(existing, entry)
	}

	if err := l.store.Write(ctx, l.key, []byte(content+"\n")); err != nil {
		return "", fmt.Errorf("failed to write ledger: %w", err)
	}

	log.Info().
		Str("entry", entry).
		Str("key", l.key).
		Msg("Event appended to ledger")
	return entry, nil
}

// Entry extracts the descriptor line from text and wraps it in brackets unless
// it already is.
func Entry(text string) string {
	line := strings.TrimSpace(text)
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") && len(line) >= 2 {
		return line
	}
	return "[" + line + "]"
}

// join appends entry to existing ledger content, dropping any trailing
// separator already present.
func join(existing, entry string) string {
	existing = strings.TrimRight(strings.TrimSpace(existing), ", ")
	if existing == "" {
		return entry
	}
	return existing + ", " + entry
}
