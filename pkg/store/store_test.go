package store

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ericvolp12/epicentre/pkg/quake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	s := Open(filepath.Join(t.TempDir(), "epicentre.db"), logger)
	require.NoError(t, s.WaitReady(context.Background()))
	return s
}

func floatPtr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool        { return &b }

func testCollection(generated time.Time, features ...quake.Feature) *quake.FeatureCollection {
	return &quake.FeatureCollection{
		Generated:   generated,
		URL:         "http://earthquake.usgs.gov/earthquakes/feed/v0.1/summary/2.5_month.geojson",
		Title:       "USGS Magnitude 2.5+ Earthquakes, Past Month",
		SubTitle:    "Real-time, worldwide earthquake list for the past month",
		CacheMaxAge: 9 * time.Hour,
		Features:    features,
	}
}

func fijiFeature() quake.Feature {
	return quake.Feature{
		Type:                 quake.TypePoint,
		Latitude:             -18.6467,
		Longitude:            -177.8835,
		Depth:                568.06,
		Magnitude:            5,
		MagnitudeType:        "mb",
		Location:             "237km NNE of Ndoi Island, Fiji",
		Time:                 time.UnixMilli(1367660685870).UTC(),
		UpdatedTime:          time.UnixMilli(1367662171267).UTC(),
		EventPageURL:         "http://AU/earthquakes/eventpage/usc000gney",
		MaxReportedIntensity: floatPtr(1),
		AlertLevel:           quake.AlertUnrecognised,
		ReviewStatus:         quake.StatusReviewed,
		Significance:         385,
		Net:                  "us",
		Code:                 "c000gney",
		Sources:              []string{"us"},
		StationCount:         337,
		MinStationDistance:   10.45,
	}
}

func japanFeature() quake.Feature {
	return quake.Feature{
		Type:                     quake.TypePoint,
		Latitude:                 27.42,
		Longitude:                142.78,
		Depth:                    22.9,
		Magnitude:                6.1,
		MagnitudeType:            "mww",
		Location:                 "27km SSE of Chichi-shima, Japan",
		Time:                     time.UnixMilli(1367661000000).UTC(),
		UpdatedTime:              time.UnixMilli(1367661500000).UTC(),
		FeltReports:              12,
		MaxInstrumentedIntensity: floatPtr(4.3),
		AlertLevel:               quake.AlertRed,
		ReviewStatus:             quake.StatusAutomatic,
		GeneratingTsunami:        boolPtr(true),
		Significance:             600,
		Net:                      "us",
		Code:                     "b000xyz1",
		Sources:                  []string{"us", "ak"},
		StationCount:             120,
		MinStationDistance:       3.2,
	}
}

func TestStoreInitialization(t *testing.T) {
	s := openTestStore(t)

	var audits []UpgradeAudit
	require.NoError(t, s.db.Find(&audits).Error)
	require.Len(t, audits, 1)
	assert.Equal(t, "0001-initial-schema", audits[0].UpgradeID)
	assert.Equal(t, 1, audits[0].Sequence)

	// Re-running the migration set skips already-applied steps
	require.NoError(t, migrate(s.db))
	require.NoError(t, s.db.Find(&audits).Error)
	assert.Len(t, audits, 1)
}

func TestSaveAssignsIdentifier(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := testCollection(time.UnixMilli(1367662175000).UTC(), fijiFeature())
	id1, err := s.Collections().Save(ctx, first)
	require.NoError(t, err)
	assert.NotZero(t, id1)
	assert.Equal(t, id1, first.ID)

	second := testCollection(time.UnixMilli(1367665000000).UTC(), fijiFeature())
	id2, err := s.Collections().Save(ctx, second)
	require.NoError(t, err)
	assert.Greater(t, id2, id1)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	collection := testCollection(time.UnixMilli(1367662175000).UTC(), fijiFeature(), japanFeature())
	id, err := s.Collections().Save(ctx, collection)
	require.NoError(t, err)

	loaded, err := s.Collections().Load(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, id, loaded.ID)
	assert.Equal(t, collection.Title, loaded.Title)
	assert.Equal(t, collection.SubTitle, loaded.SubTitle)
	assert.Equal(t, collection.URL, loaded.URL)
	assert.Equal(t, collection.Generated, loaded.Generated)
	assert.Equal(t, 9*time.Hour, loaded.CacheMaxAge)

	// Features come back occurrence time descending
	require.Len(t, loaded.Features, 2)
	japan := loaded.Features[0]
	fiji := loaded.Features[1]
	assert.Equal(t, "b000xyz1", japan.Code)
	assert.Equal(t, "c000gney", fiji.Code)

	assert.Equal(t, -18.6467, fiji.Latitude)
	assert.Equal(t, -177.8835, fiji.Longitude)
	assert.Equal(t, 568.06, fiji.Depth)
	assert.Equal(t, 5.0, fiji.Magnitude)
	assert.Equal(t, quake.StatusReviewed, fiji.ReviewStatus)
	assert.Equal(t, []string{"us"}, fiji.Sources)
	assert.Equal(t, 337, fiji.StationCount)
	assert.Equal(t, "http://AU/earthquakes/eventpage/usc000gney", fiji.EventPageURL)

	// Absent nullable fields stay absent
	assert.Nil(t, fiji.GeneratingTsunami)
	assert.Nil(t, fiji.MaxInstrumentedIntensity)
	require.NotNil(t, fiji.MaxReportedIntensity)
	assert.Equal(t, 1.0, *fiji.MaxReportedIntensity)

	require.NotNil(t, japan.GeneratingTsunami)
	assert.True(t, *japan.GeneratingTsunami)
	assert.Nil(t, japan.MaxReportedIntensity)
	require.NotNil(t, japan.MaxInstrumentedIntensity)
	assert.Equal(t, 4.3, *japan.MaxInstrumentedIntensity)
	assert.Equal(t, 12, japan.FeltReports)
}

func TestLoadAbsentCollection(t *testing.T) {
	s := openTestStore(t)

	loaded, err := s.Collections().Load(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestListOrdering(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	older := testCollection(time.UnixMilli(1367000000000).UTC(), fijiFeature())
	newer := testCollection(time.UnixMilli(1367662175000).UTC(), japanFeature())

	_, err := s.Collections().Save(ctx, older)
	require.NoError(t, err)
	_, err = s.Collections().Save(ctx, newer)
	require.NoError(t, err)

	collections, err := s.Collections().List(ctx)
	require.NoError(t, err)
	require.Len(t, collections, 2)

	// Newest generation time first, features not eagerly loaded
	assert.Equal(t, newer.ID, collections[0].ID)
	assert.Equal(t, older.ID, collections[1].ID)
	assert.Empty(t, collections[0].Features)
}

func TestSaveRollsBackOnFeatureFailure(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Duplicate codes within one snapshot violate the compound key and
	// must roll back the entire save.
	collection := testCollection(time.UnixMilli(1367662175000).UTC(), fijiFeature(), fijiFeature())
	_, err := s.Collections().Save(ctx, collection)
	require.Error(t, err)

	collections, err := s.Collections().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, collections)

	count, err := s.Features().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	var details int64
	require.NoError(t, s.db.Model(&FeatureDetail{}).Count(&details).Error)
	assert.Zero(t, details)
}

func TestDeleteIsScopedToCollection(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := testCollection(time.UnixMilli(1367000000000).UTC(), fijiFeature())
	second := testCollection(time.UnixMilli(1367662175000).UTC(), japanFeature())

	_, err := s.Collections().Save(ctx, first)
	require.NoError(t, err)
	_, err = s.Collections().Save(ctx, second)
	require.NoError(t, err)

	require.NoError(t, s.Collections().Delete(ctx, first.ID))

	gone, err := s.Collections().Load(ctx, first.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	features, err := s.Features().List(ctx, first.ID)
	require.NoError(t, err)
	assert.Empty(t, features)

	kept, err := s.Features().List(ctx, second.ID)
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Equal(t, "b000xyz1", kept[0].Code)
}

func TestDeleteAllCascades(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	collection := testCollection(time.UnixMilli(1367662175000).UTC(), fijiFeature(), japanFeature())
	_, err := s.Collections().Save(ctx, collection)
	require.NoError(t, err)

	count, err := s.Features().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, s.Collections().DeleteAll(ctx))

	collections, err := s.Collections().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, collections)

	count, err = s.Features().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	var details int64
	require.NoError(t, s.db.Model(&FeatureDetail{}).Count(&details).Error)
	assert.Zero(t, details)
}

// The same event code may recur in the next snapshot; only (code,
// collection) is unique.
func TestSameCodeAcrossSnapshots(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := testCollection(time.UnixMilli(1367000000000).UTC(), fijiFeature())
	second := testCollection(time.UnixMilli(1367662175000).UTC(), fijiFeature())

	_, err := s.Collections().Save(ctx, first)
	require.NoError(t, err)
	_, err = s.Collections().Save(ctx, second)
	require.NoError(t, err)

	count, err := s.Features().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
