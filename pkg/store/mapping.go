package store

import (
	"strings"
	"time"

	"github.com/ericvolp12/epicentre/pkg/quake"
)

func collectionToRow(c *quake.FeatureCollection) Collection {
	return Collection{
		ID:               c.ID,
		Generated:        c.Generated.UnixMilli(),
		URL:              c.URL,
		Title:            c.Title,
		SubTitle:         c.SubTitle,
		CacheMaxAgeHours: int64(c.CacheMaxAge / time.Hour),
	}
}

func rowToCollection(row Collection) quake.FeatureCollection {
	return quake.FeatureCollection{
		ID:          row.ID,
		Generated:   time.UnixMilli(row.Generated).UTC(),
		URL:         row.URL,
		Title:       row.Title,
		SubTitle:    row.SubTitle,
		CacheMaxAge: time.Duration(row.CacheMaxAgeHours) * time.Hour,
	}
}

func featureToRows(f quake.Feature, collectionID int64) (Feature, FeatureDetail) {
	row := Feature{
		Code:              f.Code,
		CollectionID:      collectionID,
		GeoJSONType:       string(f.Type),
		Time:              f.Time.UnixMilli(),
		Location:          f.Location,
		Latitude:          f.Latitude,
		Longitude:         f.Longitude,
		Magnitude:         f.Magnitude,
		MagnitudeType:     f.MagnitudeType,
		AlertLevel:        string(f.AlertLevel),
		GeneratingTsunami: f.GeneratingTsunami,
	}

	detail := FeatureDetail{
		Code:                     f.Code,
		UpdatedTime:              f.UpdatedTime.UnixMilli(),
		Depth:                    f.Depth,
		EventPageURL:             f.EventPageURL,
		FeltReports:              f.FeltReports,
		MaxReportedIntensity:     f.MaxReportedIntensity,
		MaxInstrumentedIntensity: f.MaxInstrumentedIntensity,
		ReviewStatus:             string(f.ReviewStatus),
		Significance:             f.Significance,
		Net:                      f.Net,
		Sources:                  strings.Join(f.Sources, ","),
		StationCount:             f.StationCount,
		MinStationDistance:       f.MinStationDistance,
	}

	return row, detail
}

func rowsToFeature(row Feature, detail *FeatureDetail) quake.Feature {
	f := quake.Feature{
		Code:              row.Code,
		Type:              quake.ParseGeoJSONType(row.GeoJSONType),
		Time:              time.UnixMilli(row.Time).UTC(),
		Location:          row.Location,
		Latitude:          row.Latitude,
		Longitude:         row.Longitude,
		Magnitude:         row.Magnitude,
		MagnitudeType:     row.MagnitudeType,
		AlertLevel:        quake.ParseAlertLevel(row.AlertLevel),
		GeneratingTsunami: row.GeneratingTsunami,
	}

	if detail != nil {
		f.UpdatedTime = time.UnixMilli(detail.UpdatedTime).UTC()
		f.Depth = detail.Depth
		f.EventPageURL = detail.EventPageURL
		f.FeltReports = detail.FeltReports
		f.MaxReportedIntensity = detail.MaxReportedIntensity
		f.MaxInstrumentedIntensity = detail.MaxInstrumentedIntensity
		f.ReviewStatus = quake.ParseReviewStatus(detail.ReviewStatus)
		f.Significance = detail.Significance
		f.Net = detail.Net
		f.Sources = splitSources(detail.Sources)
		f.StationCount = detail.StationCount
		f.MinStationDistance = detail.MinStationDistance
	}

	return f
}

func splitSources(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	sources := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			sources = append(sources, part)
		}
	}
	if len(sources) == 0 {
		return nil
	}
	return sources
}
