// Package storage provides the key/value persistence used for generated
// artifacts and the event ledger.
//
// Keys are slash-separated relative paths such as "images/panda_current.png".
// The local implementation maps them under a root directory; the S3
// implementation maps them under an object key prefix.
package storage

import (
	"context"
	"errors"
)

// ErrNotExist is returned by Read when the key has never been written.
var ErrNotExist = errors.New("storage: object does not exist")

// Store reads and overwrites whole objects. Write creates any missing parent
// "directories". Implementations are not safe for concurrent writers to the
// same key.
type Store interface {
	// Read returns the full contents of key, or an error wrapping ErrNotExist.
	Read(ctx context.Context, key string) ([]byte, error)

	// Write replaces the contents of key.
	Write(ctx context.Context, key string, data []byte) error
}

// ReadString reads key as text. A missing key yields "" and ok=false.
func ReadString(ctx context.Context, s Store, key string) (text string, ok bool, err error) {
	data, err := s.Read(ctx, key)
	if errors.Is(err, ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}
