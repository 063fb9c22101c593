package store

import (
	"context"
	"fmt"

	"github.com/ericvolp12/epicentre/pkg/quake"
	"gorm.io/gorm"
)

// Features is the repository for individual seismic events.
type Features struct {
	store *Store
}

// List returns the features owned by a collection, occurrence time
// descending, with their technical details attached.
func (f *Features) List(ctx context.Context, collectionID int64) ([]quake.Feature, error) {
	ctx, span := tracer.Start(ctx, "Features.List")
	defer span.End()

	if err := f.store.WaitReady(ctx); err != nil {
		return nil, err
	}

	var rows []Feature
	err := f.store.db.WithContext(ctx).
		Where("collection_id = ?", collectionID).
		Order("time desc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list features: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	codes := make([]string, 0, len(rows))
	for _, row := range rows {
		codes = append(codes, row.Code)
	}

	var details []FeatureDetail
	if err := f.store.db.WithContext(ctx).Where("code IN ?", codes).Find(&details).Error; err != nil {
		return nil, fmt.Errorf("failed to list feature details: %w", err)
	}

	byCode := make(map[string]*FeatureDetail, len(details))
	for i := range details {
		byCode[details[i].Code] = &details[i]
	}

	features := make([]quake.Feature, 0, len(rows))
	for _, row := range rows {
		features = append(features, rowsToFeature(row, byCode[row.Code]))
	}
	return features, nil
}

// Count returns the number of persisted features across all collections,
// used for refresh-completion reporting.
func (f *Features) Count(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "Features.Count")
	defer span.End()

	if err := f.store.WaitReady(ctx); err != nil {
		return 0, err
	}

	var count int64
	if err := f.store.db.WithContext(ctx).Model(&Feature{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count features: %w", err)
	}
	return count, nil
}

// DeleteAll removes every feature and detail row.
func (f *Features) DeleteAll(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Features.DeleteAll")
	defer span.End()

	if err := f.store.WaitReady(ctx); err != nil {
		return err
	}

	err := f.store.db.WithContext(ctx).Transaction(deleteAllFeatures)
	if err != nil {
		return fmt.Errorf("failed to delete all features: %w", err)
	}
	return nil
}

// saveFeature writes a feature and its detail row inside the caller's
// transaction, keyed to the owning collection.
func saveFeature(tx *gorm.DB, feature quake.Feature, collectionID int64) error {
	row, detail := featureToRows(feature, collectionID)

	if err := tx.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert feature %s: %w", feature.Code, err)
	}
	if err := tx.Create(&detail).Error; err != nil {
		return fmt.Errorf("failed to insert feature detail %s: %w", feature.Code, err)
	}
	return nil
}

func deleteAllFeatures(tx *gorm.DB) error {
	if err := tx.Where("1 = 1").Delete(&FeatureDetail{}).Error; err != nil {
		return fmt.Errorf("failed to delete feature details: %w", err)
	}
	if err := tx.Where("1 = 1").Delete(&Feature{}).Error; err != nil {
		return fmt.Errorf("failed to delete features: %w", err)
	}
	return nil
}
