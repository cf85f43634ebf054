package ledger

import (
	"context"
	"errors"
)

// DefaultChunkSize bounds how many keys go into one OR-of-equality selector,
// keeping the backend's query length within limits.
const DefaultChunkSize = 15

// FindKeys looks up which of the given keys already exist in the store, as an
// OR-of-exact-match over keyField, issued in chunks. A failing chunk
// contributes nothing but does not stop the remaining chunks; the joined error
// is returned alongside the partial result so callers can log it and proceed.
func FindKeys(ctx context.Context, store Store, keyField string, keys []string, chunkSize int) (map[string]struct{}, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	found := make(map[string]struct{})
	var errs []error

	for start := 0; start < len(keys); start += chunkSize {
		end := start + chunkSize
		if end > len(keys) {
			end = len(keys)
		}
		chunk := keys[start:end]

		sels := make([]Selector, len(chunk))
		for i, key := range chunk {
			sels[i] = Eq(keyField, key)
		}

		rows, err := store.Find(ctx, Or(sels...), []string{keyField})
		if err != nil {
			errs = append(errs, err)
			continue
		}

		for _, row := range rows {
			if key := row.String(keyField); key != "" {
				found[key] = struct{}{}
			}
		}
	}

	return found, errors.Join(errs...)
}
