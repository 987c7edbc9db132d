// Package readme keeps the project README showing the latest prompt under the
// current panda image.
package readme

import (
	"context"
	"fmt"
	"strings"

	"github.com/fpang/daily-panda/internal/storage"
	"github.com/rs/zerolog/log"
)

// DefaultKey is the README location inside the artifact store.
const DefaultKey = "README.md"

// DefaultMarker is the line the annotation is placed under.
const DefaultMarker = "![screenshot](images/panda_current.png)"

const annotationPrefix = "**Prompt:**"

// Updater annotates a README stored in a storage.Store.
type Updater struct {
	store  storage.Store
	key    string
	marker string
}

// NewUpdater returns an Updater for DefaultKey and DefaultMarker.
func NewUpdater(store storage.Store) *Updater {
	return &Updater{store: store, key: DefaultKey, marker: DefaultMarker}
}

// Annotate writes prompt under the marker line. A missing README is logged and
// skipped. A README without the marker is left untouched.
func (u *Updater) Annotate(ctx context.Context, prompt string) error {
	content, found, err := storage.ReadString(ctx, u.store, u.key)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", u.key, err)
	}
	if !found {
		log.Warn().Str("key", u.key).Msg("README not found, skipping README update")
		return nil
	}

	updated, ok := InsertAnnotation(content, u.marker, prompt)
	if !ok {
		log.Warn().Str("key", u.key).Str("marker", u.marker).Msg("README marker not found, skipping README update")
		return nil
	}

	if err := u.store.Write(ctx, u.key, []byte(updated)); err != nil {
		return fmt.Errorf("failed to write %s: %w", u.key, err)
	}
	log.Info().Str("key", u.key).Msg("README updated")
	return nil
}

// InsertAnnotation places a blank line and "**Prompt:** <prompt>" directly
// after the first line equal to marker (ignoring surrounding whitespace). An
// annotation already sitting under the marker is replaced. ok is false when
// the marker does not occur.
func InsertAnnotation(content, marker, prompt string) (string, bool) {
	lines := strings.SplitAfter(content, "\n")

	idx := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == marker {
			idx = i
			break
		}
	}
	if idx < 0 {
		return content, false
	}

	head := lines[:idx+1]
	rest := lines[idx+1:]

	// Drop a previous annotation and the blank lines leading to it.
	skip := 0
	for skip < len(rest) && strings.TrimSpace(rest[skip]) == "" {
		skip++
	}
	if skip < len(rest) && strings.HasPrefix(strings.TrimSpace(rest[skip]), annotationPrefix) {
		rest = rest[skip+1:]
	}

	var b strings.Builder
	for _, line := range head {
		b.WriteString(line)
	}
	if !strings.HasSuffix(head[len(head)-1], "\n") {
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(annotationPrefix + " " + singleLine(prompt) + "\n")
	for _, line := range rest {
		b.WriteString(line)
	}
	return b.String(), true
}

// singleLine joins the non-empty lines of s with spaces.
func singleLine(s string) string {
	var parts []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}
