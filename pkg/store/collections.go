package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/ericvolp12/epicentre/pkg/quake"
	"gorm.io/gorm"
)

// Collections is the repository for report snapshots. Saves and deletes
// cascade to the owned feature rows inside one transaction, so readers
// observe either the prior complete snapshot or the new one, never a mix.
type Collections struct {
	store *Store
}

// List returns all stored collections, newest generation time first.
// Features are not loaded.
func (c *Collections) List(ctx context.Context) ([]quake.FeatureCollection, error) {
	ctx, span := tracer.Start(ctx, "Collections.List")
	defer span.End()

	if err := c.store.WaitReady(ctx); err != nil {
		return nil, err
	}

	var rows []Collection
	if err := c.store.db.WithContext(ctx).Order("generated desc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}

	collections := make([]quake.FeatureCollection, 0, len(rows))
	for _, row := range rows {
		collections = append(collections, rowToCollection(row))
	}
	return collections, nil
}

// Load returns the collection with all owned features attached, ordered by
// occurrence time descending. An absent id yields nil, not an error.
func (c *Collections) Load(ctx context.Context, id int64) (*quake.FeatureCollection, error) {
	ctx, span := tracer.Start(ctx, "Collections.Load")
	defer span.End()

	if err := c.store.WaitReady(ctx); err != nil {
		return nil, err
	}

	var row Collection
	err := c.store.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load collection %d: %w", id, err)
	}

	collection := rowToCollection(row)

	features, err := c.store.Features().List(ctx, id)
	if err != nil {
		return nil, err
	}
	collection.Features = features

	return &collection, nil
}

// Save inserts the collection and every owned feature in one transaction,
// assigning the new identifier to collection.ID and using it as the
// features' foreign key. Any child failure rolls the whole snapshot back.
func (c *Collections) Save(ctx context.Context, collection *quake.FeatureCollection) (int64, error) {
	ctx, span := tracer.Start(ctx, "Collections.Save")
	defer span.End()

	if err := c.store.WaitReady(ctx); err != nil {
		return 0, err
	}

	var id int64
	err := c.store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := collectionToRow(collection)
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to insert collection: %w", err)
		}
		id = row.ID

		for _, feature := range collection.Features {
			if err := saveFeature(tx, feature, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to save collection: %w", err)
	}

	collection.ID = id
	return id, nil
}

// Delete removes one collection and exactly its own features and details,
// leaving other snapshots untouched.
func (c *Collections) Delete(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "Collections.Delete")
	defer span.End()

	if err := c.store.WaitReady(ctx); err != nil {
		return err
	}

	err := c.store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Details first: they are found through the feature rows.
		if err := tx.Where("code IN (?)",
			tx.Model(&Feature{}).Select("code").Where("collection_id = ?", id),
		).Delete(&FeatureDetail{}).Error; err != nil {
			return fmt.Errorf("failed to delete feature details: %w", err)
		}
		if err := tx.Where("collection_id = ?", id).Delete(&Feature{}).Error; err != nil {
			return fmt.Errorf("failed to delete features: %w", err)
		}
		if err := tx.Delete(&Collection{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete collection: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete collection %d: %w", id, err)
	}
	return nil
}

// DeleteAll removes every collection and, via the cascade, every feature
// and detail row. It is the first step of a refresh.
func (c *Collections) DeleteAll(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Collections.DeleteAll")
	defer span.End()

	if err := c.store.WaitReady(ctx); err != nil {
		return err
	}

	err := c.store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteAllFeatures(tx); err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&Collection{}).Error; err != nil {
			return fmt.Errorf("failed to delete collections: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete all collections: %w", err)
	}
	return nil
}
