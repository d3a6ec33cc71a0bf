package bucketlist

import (
	"context"
	"log/slog"

	models "bucketlist/internal/domain/models/bucketlist"
	"bucketlist/internal/domain/repositories"
	svc "bucketlist/internal/domain/services/bucketlist"
)

// loader implements the Loader interface
type loader struct {
	store  repositories.DocumentStore
	logger *slog.Logger
}

// NewLoader creates a new collection loader
func NewLoader(store repositories.DocumentStore, logger *slog.Logger) svc.Loader {
	return &loader{
		store:  store,
		logger: logger,
	}
}

// LoadAll reads every item in store order. A document that cannot be
// decoded is skipped and logged so one bad record never hides the list.
func (l *loader) LoadAll(ctx context.Context) ([]models.Item, error) {
	docs, err := l.store.ListAll(ctx, Collection)
	if err != nil {
		return nil, classify("load items", err)
	}

	items := make([]models.Item, 0, len(docs))
	for _, doc := range docs {
		res, err := decodeItem(doc)
		if err != nil {
			l.logger.Warn("skipping undecodable item", "id", doc.ID, "error", err)
			continue
		}
		if res.partialPhotos > 0 {
			l.logger.Warn("dropped incomplete photo references",
				"id", doc.ID,
				"count", res.partialPhotos,
			)
		}
		items = append(items, res.item)
	}

	return items, nil
}
