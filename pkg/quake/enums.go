package quake

import "strings"

// AlertLevel is the impact level assigned to an event by the USGS PAGER
// system (https://earthquake.usgs.gov/research/pager/).
type AlertLevel string

const (
	AlertGreen  AlertLevel = "green"
	AlertYellow AlertLevel = "yellow"
	AlertOrange AlertLevel = "orange"
	AlertRed    AlertLevel = "red"

	// AlertUnrecognised is the fallback for missing or unknown alert strings.
	AlertUnrecognised AlertLevel = ""
)

var alertLevels = []AlertLevel{AlertGreen, AlertYellow, AlertOrange, AlertRed}

// ParseAlertLevel matches an alert string case-insensitively against the
// known levels, falling back to AlertUnrecognised. It never fails, so new
// levels introduced upstream degrade gracefully.
func ParseAlertLevel(s string) AlertLevel {
	for _, level := range alertLevels {
		if strings.EqualFold(s, string(level)) {
			return level
		}
	}
	return AlertUnrecognised
}

// ReviewStatus indicates whether an event report has been reviewed by a human.
type ReviewStatus string

const (
	StatusAutomatic ReviewStatus = "AUTOMATIC"
	StatusPublished ReviewStatus = "PUBLISHED"
	StatusReviewed  ReviewStatus = "REVIEWED"

	StatusUnrecognised ReviewStatus = ""
)

var reviewStatuses = []ReviewStatus{StatusAutomatic, StatusPublished, StatusReviewed}

// ParseReviewStatus matches a status string case-insensitively against the
// known statuses, falling back to StatusUnrecognised.
func ParseReviewStatus(s string) ReviewStatus {
	for _, status := range reviewStatuses {
		if strings.EqualFold(s, string(status)) {
			return status
		}
	}
	return StatusUnrecognised
}

// GeoJSONType tags the GeoJSON object kinds used by the feed
// (https://geojson.org/).
type GeoJSONType string

const (
	TypeFeatureCollection GeoJSONType = "FeatureCollection"
	TypeFeature           GeoJSONType = "Feature"
	TypePoint             GeoJSONType = "Point"

	TypeUnrecognised GeoJSONType = ""
)

var geoJSONTypes = []GeoJSONType{TypeFeatureCollection, TypeFeature, TypePoint}

// ParseGeoJSONType matches a type string case-insensitively against the
// known GeoJSON types, falling back to TypeUnrecognised.
func ParseGeoJSONType(s string) GeoJSONType {
	for _, t := range geoJSONTypes {
		if strings.EqualFold(s, string(t)) {
			return t
		}
	}
	return TypeUnrecognised
}
