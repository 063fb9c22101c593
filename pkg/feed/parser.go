// Package feed parses the USGS GeoJSON earthquake summary feed into the
// domain model. Parsing is defensive: unknown enum strings and malformed
// URLs degrade to sentinels, but a document that cannot be framed or is
// missing geometry aborts as a whole — partial collections are never
// returned.
package feed

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/ericvolp12/epicentre/pkg/quake"
)

// Parser decodes feed documents into quake.FeatureCollections.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a Parser logging field-level decode problems to logger.
func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: logger.With("component", "parser")}
}

// Parse reads one feed document from r and returns the populated
// collection. The collection's ID is zero until it is saved.
func (p *Parser) Parse(r io.Reader) (*quake.FeatureCollection, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode feed document: %w", err)
	}

	if doc.Metadata == nil {
		return nil, fmt.Errorf("feed document is missing metadata")
	}

	collection := &quake.FeatureCollection{
		Generated: time.UnixMilli(doc.Metadata.Generated).UTC(),
		URL:       p.parseURL(doc.Metadata.URL),
		Title:     doc.Metadata.Title,
		SubTitle:  doc.Metadata.SubTitle,

		// Feed convention: cacheMaxAge divided by 100 is a count of hours.
		CacheMaxAge: time.Duration(doc.Metadata.CacheMaxAge/100) * time.Hour,

		Features: make([]quake.Feature, 0, len(doc.Features)),
	}

	for i, f := range doc.Features {
		feat, err := p.parseFeature(f)
		if err != nil {
			return nil, fmt.Errorf("failed to parse feature %d: %w", i, err)
		}
		collection.Features = append(collection.Features, feat)
	}

	return collection, nil
}

func (p *Parser) parseFeature(f feature) (quake.Feature, error) {
	if f.Properties == nil {
		return quake.Feature{}, fmt.Errorf("missing properties")
	}
	if f.Geometry == nil {
		return quake.Feature{}, fmt.Errorf("missing geometry")
	}
	if len(f.Geometry.Coordinates) < 3 {
		return quake.Feature{}, fmt.Errorf("geometry has %d coordinates, want 3", len(f.Geometry.Coordinates))
	}

	props := f.Properties

	// Coordinates are ordered longitude, latitude, depth.
	lon := f.Geometry.Coordinates[0]
	lat := f.Geometry.Coordinates[1]
	depth := f.Geometry.Coordinates[2]

	zone := time.FixedZone("", props.TZ*60)

	return quake.Feature{
		Type:      quake.ParseGeoJSONType(f.Geometry.Type),
		Latitude:  lat,
		Longitude: lon,
		Depth:     depth,

		Magnitude:     props.Mag,
		MagnitudeType: props.MagnitudeType,
		Location:      props.Place,
		Time:          time.UnixMilli(props.Time).In(zone),
		UpdatedTime:   time.UnixMilli(props.Updated).In(zone),

		EventPageURL: p.parseURL(props.URL),
		FeltReports:  props.Felt,

		MaxReportedIntensity:     props.CDI,
		MaxInstrumentedIntensity: props.MMI,

		AlertLevel:   quake.ParseAlertLevel(props.Alert),
		ReviewStatus: quake.ParseReviewStatus(props.Status),

		GeneratingTsunami: props.Tsunami.Bool(),

		Significance: props.Sig,
		Net:          props.Net,
		Code:         props.Code,
		Sources:      splitSources(props.Sources),

		StationCount:       props.NST,
		MinStationDistance: props.DMin,
	}, nil
}

// parseURL validates a URL field, returning empty on malformed input. A
// bad URL is a field-level problem, not grounds to abort the parse.
func (p *Parser) parseURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		p.logger.Warn("malformed URL in feed, dropping", "url", raw)
		return ""
	}
	return u.String()
}

// splitSources decodes the comma-separated contributor network list into
// trimmed, non-empty tokens.
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
