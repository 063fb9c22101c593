package store

import (
	"errors"
	"fmt"
	"sort"

	"gorm.io/gorm"
)

// A migration is one monotonically ordered schema upgrade step. Applied
// steps are recorded in the upgrade audit table and skipped on the next
// open, so re-running the set is safe.
type migration struct {
	ID          string
	Description string
	Sequence    int
	Apply       func(db *gorm.DB) error
}

var migrations = []migration{
	{
		ID:          "0001-initial-schema",
		Description: "create collection, feature and feature detail tables",
		Sequence:    1,
		Apply: func(db *gorm.DB) error {
			return db.AutoMigrate(&Collection{}, &Feature{}, &FeatureDetail{})
		},
	},
}

func migrate(db *gorm.DB) error {
	// The audit table has to exist before any step can be recorded.
	if err := db.AutoMigrate(&UpgradeAudit{}); err != nil {
		return fmt.Errorf("failed to create upgrade audit table: %w", err)
	}

	ordered := make([]migration, len(migrations))
	copy(ordered, migrations)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Sequence < ordered[j].Sequence })

	for _, m := range ordered {
		var audit UpgradeAudit
		err := db.First(&audit, "upgrade_id = ?", m.ID).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check upgrade audit for %s: %w", m.ID, err)
		}

		if err := m.Apply(db); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.ID, err)
		}

		record := UpgradeAudit{
			UpgradeID:   m.ID,
			Description: m.Description,
			Sequence:    m.Sequence,
		}
		if err := db.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to record migration %s: %w", m.ID, err)
		}
	}

	return nil
}
