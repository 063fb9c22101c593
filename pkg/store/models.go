package store

// Row models for the normalized schema. Times are persisted as epoch
// milliseconds; nullable domain fields map to pointer columns so absence
// round-trips as NULL.

// Collection is one stored report snapshot.
type Collection struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	Generated int64 `gorm:"index:idx_collections_generated,sort:desc"`
	URL       string
	Title     string
	SubTitle  string

	// CacheMaxAgeHours is the feed's cache validity, already divided down
	// to hours by the parser.
	CacheMaxAgeHours int64
}

// Feature is the primary row for one seismic event. Event codes recur
// across snapshots, so the primary key is compound on (code, collection).
type Feature struct {
	Code         string `gorm:"primaryKey"`
	CollectionID int64  `gorm:"primaryKey;index"`

	GeoJSONType       string
	Time              int64 `gorm:"index:idx_features_time,sort:desc"`
	Location          string
	Latitude          float64
	Longitude         float64
	Magnitude         float64
	MagnitudeType     string
	AlertLevel        string
	GeneratingTsunami *bool
}

// FeatureDetail carries the technical attributes of an event, keyed by the
// event code. Detail rows are written and destroyed together with their
// Feature row.
type FeatureDetail struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Code string `gorm:"index"`

	UpdatedTime              int64
	Depth                    float64
	EventPageURL             string
	FeltReports              int
	MaxReportedIntensity     *float64
	MaxInstrumentedIntensity *float64
	ReviewStatus             string
	Significance             int
	Net                      string
	Sources                  string
	StationCount             int
	MinStationDistance       float64
}

// UpgradeAudit records an applied migration step so upgrades are
// idempotently skippable.
type UpgradeAudit struct {
	UpgradeID   string `gorm:"primaryKey"`
	Description string
	Sequence    int
}
