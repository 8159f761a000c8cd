package store

import (
	"context"

	"github.com/vowsuite/vowsuite/internal/domain"
)

// DefaultCopyBatchSize is the number of documents buffered before a batch
// write during a store migration.
const DefaultCopyBatchSize = 500

// Copier bulk-copies documents between tenant stores during a rename.
//
// Not idempotent: re-running against a non-empty destination duplicates
// documents, so the destination must be freshly created and empty. If a
// batch write fails partway, the destination holds an unrecorded prefix of
// the source; the caller surfaces the error without cleanup.
type Copier struct {
	batchSize int
}

func NewCopier(batchSize int) *Copier {
	if batchSize <= 0 {
		batchSize = DefaultCopyBatchSize
	}
	return &Copier{batchSize: batchSize}
}

// Copy streams every document from src to dst in store iteration order,
// stripping store-local ids. A batch is flushed when it fills or when the
// source is exhausted. Returns the number of documents copied.
func (c *Copier) Copy(ctx context.Context, src, dst domain.OrgStore) (int, error) {
	copied := 0
	batch := make([]map[string]any, 0, c.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := dst.InsertBatch(ctx, batch); err != nil {
			return err
		}
		copied += len(batch)
		batch = batch[:0]
		return nil
	}

	err := src.Scan(ctx, func(doc domain.Document) error {
		batch = append(batch, doc.Data)
		if len(batch) >= c.batchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return copied, err
	}
	if err := flush(); err != nil {
		return copied, err
	}
	return copied, nil
}
