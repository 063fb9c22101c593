// Package quake holds the domain model for USGS earthquake report
// snapshots: a FeatureCollection (one fetched report) owning an ordered
// set of Features (individual seismic events).
package quake

import "time"

// FeatureCollection is one fetched-and-parsed report snapshot. ID is
// assigned by the store on save and is zero before then. A collection and
// its features are created together by the parser, persisted together by
// one save, and destroyed together by the replace-all delete that precedes
// the next refresh; nothing is mutated in place after save.
type FeatureCollection struct {
	ID          int64
	Generated   time.Time
	URL         string
	Title       string
	SubTitle    string
	CacheMaxAge time.Duration

	Features []Feature
}

// Feature is a single seismic event within a snapshot. Code is unique per
// snapshot, not globally: the same event code recurs across successive
// report refreshes, so (Code, collection ID) is the compound identity in
// the store.
type Feature struct {
	Type      GeoJSONType
	Latitude  float64
	Longitude float64
	Depth     float64

	Magnitude     float64
	MagnitudeType string
	Location      string
	Time          time.Time
	UpdatedTime   time.Time

	// EventPageURL links to the USGS event page. Empty when the feed
	// carried a malformed URL.
	EventPageURL string

	// FeltReports is the number of "Did you feel it?" eyewitness reports.
	FeltReports int

	// MaxReportedIntensity (cdi) and MaxInstrumentedIntensity (mmi) are nil
	// when not computed upstream, which is distinct from zero.
	MaxReportedIntensity     *float64
	MaxInstrumentedIntensity *float64

	AlertLevel   AlertLevel
	ReviewStatus ReviewStatus

	// GeneratingTsunami is nil when upstream has expressed no belief either
	// way.
	GeneratingTsunami *bool

	Significance int
	Net          string
	Code         string
	Sources      []string

	// StationCount (nst) and MinStationDistance (dmin, in degrees) describe
	// the reporting seismic network.
	StationCount       int
	MinStationDistance float64
}
