// Package handlers exposes the repository API over HTTP for any
// presentation layer: list collections, load a collection with its
// features, count features, and trigger a refresh.
package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ericvolp12/epicentre/pkg/quake"
	"github.com/ericvolp12/epicentre/pkg/store"
	"github.com/ericvolp12/epicentre/pkg/syncer"
	"github.com/labstack/echo/v4"
)

type API struct {
	logger      *slog.Logger
	collections *store.Collections
	features    *store.Features
	syncer      *syncer.Syncer
}

func NewAPI(logger *slog.Logger, s *store.Store, sy *syncer.Syncer) *API {
	return &API{
		logger:      logger.With("component", "api"),
		collections: s.Collections(),
		features:    s.Features(),
		syncer:      sy,
	}
}

// Routes registers the API endpoints on e.
func (a *API) Routes(e *echo.Echo) {
	e.GET("/collections", a.HandleListCollections)
	e.GET("/collections/:id", a.HandleGetCollection)
	e.GET("/collections/:id/features", a.HandleListFeatures)
	e.GET("/features/count", a.HandleFeatureCount)
	e.POST("/refresh", a.HandleRefresh)
}

type JSONCollection struct {
	ID               int64         `json:"id"`
	Generated        time.Time     `json:"generated"`
	URL              string        `json:"url"`
	Title            string        `json:"title"`
	SubTitle         string        `json:"subTitle"`
	CacheMaxAgeHours int64         `json:"cacheMaxAgeHours"`
	Features         []JSONFeature `json:"features,omitempty"`
}

type JSONFeature struct {
	Code              string    `json:"code"`
	Type              string    `json:"type"`
	Latitude          float64   `json:"latitude"`
	Longitude         float64   `json:"longitude"`
	Depth             float64   `json:"depth"`
	Magnitude         float64   `json:"magnitude"`
	MagnitudeType     string    `json:"magnitudeType"`
	Location          string    `json:"location"`
	Time              time.Time `json:"time"`
	UpdatedTime       time.Time `json:"updatedTime"`
	EventPageURL      string    `json:"eventPageUrl,omitempty"`
	FeltReports       int       `json:"feltReports"`
	MaxReportedInt    *float64  `json:"maxReportedIntensity"`
	MaxInstrumentedIn *float64  `json:"maxInstrumentedIntensity"`
	AlertLevel        string    `json:"alertLevel"`
	ReviewStatus      string    `json:"reviewStatus"`
	GeneratingTsunami *bool     `json:"generatingTsunami"`
	Significance      int       `json:"significance"`
	Net               string    `json:"net"`
	Sources           []string  `json:"sources,omitempty"`
	StationCount      int       `json:"stationCount"`
	MinStationDist    float64   `json:"minStationDistance"`
}

func collectionToJSON(c quake.FeatureCollection) JSONCollection {
	out := JSONCollection{
		ID:               c.ID,
		Generated:        c.Generated,
		URL:              c.URL,
		Title:            c.Title,
		SubTitle:         c.SubTitle,
		CacheMaxAgeHours: int64(c.CacheMaxAge / time.Hour),
	}
	for _, f := range c.Features {
		out.Features = append(out.Features, featureToJSON(f))
	}
	return out
}

func featureToJSON(f quake.Feature) JSONFeature {
	return JSONFeature{
		Code:              f.Code,
		Type:              string(f.Type),
		Latitude:          f.Latitude,
		Longitude:         f.Longitude,
		Depth:             f.Depth,
		Magnitude:         f.Magnitude,
		MagnitudeType:     f.MagnitudeType,
		Location:          f.Location,
		Time:              f.Time,
		UpdatedTime:       f.UpdatedTime,
		EventPageURL:      f.EventPageURL,
		FeltReports:       f.FeltReports,
		MaxReportedInt:    f.MaxReportedIntensity,
		MaxInstrumentedIn: f.MaxInstrumentedIntensity,
		AlertLevel:        string(f.AlertLevel),
		ReviewStatus:      string(f.ReviewStatus),
		GeneratingTsunami: f.GeneratingTsunami,
		Significance:      f.Significance,
		Net:               f.Net,
		Sources:           f.Sources,
		StationCount:      f.StationCount,
		MinStationDist:    f.MinStationDistance,
	}
}

// HandleListCollections handles the GET /collections endpoint
func (a *API) HandleListCollections(c echo.Context) error {
	collections, err := a.collections.List(c.Request().Context())
	if err != nil {
		return c.String(http.StatusInternalServerError, fmt.Sprintf("failed to list collections: %s", err))
	}

	out := make([]JSONCollection, 0, len(collections))
	for _, collection := range collections {
		out = append(out, collectionToJSON(collection))
	}
	return c.JSON(http.StatusOK, out)
}

// HandleGetCollection handles the GET /collections/:id endpoint
func (a *API) HandleGetCollection(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.String(http.StatusBadRequest, fmt.Sprintf("invalid collection id: %s", err))
	}

	collection, err := a.collections.Load(c.Request().Context(), id)
	if err != nil {
		return c.String(http.StatusInternalServerError, fmt.Sprintf("failed to load collection: %s", err))
	}
	if collection == nil {
		return c.String(http.StatusNotFound, fmt.Sprintf("collection not found: %d", id))
	}

	return c.JSON(http.StatusOK, collectionToJSON(*collection))
}

// HandleListFeatures handles the GET /collections/:id/features endpoint
func (a *API) HandleListFeatures(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.String(http.StatusBadRequest, fmt.Sprintf("invalid collection id: %s", err))
	}

	features, err := a.features.List(c.Request().Context(), id)
	if err != nil {
		return c.String(http.StatusInternalServerError, fmt.Sprintf("failed to list features: %s", err))
	}

	out := make([]JSONFeature, 0, len(features))
	for _, feature := range features {
		out = append(out, featureToJSON(feature))
	}
	return c.JSON(http.StatusOK, out)
}

// HandleFeatureCount handles the GET /features/count endpoint
func (a *API) HandleFeatureCount(c echo.Context) error {
	count, err := a.features.Count(c.Request().Context())
	if err != nil {
		return c.String(http.StatusInternalServerError, fmt.Sprintf("failed to count features: %s", err))
	}

	return c.JSON(http.StatusOK, map[string]int64{"count": count})
}

// HandleRefresh handles the POST /refresh endpoint. The refresh runs in
// the background; completion is logged rather than returned.
func (a *API) HandleRefresh(c echo.Context) error {
	// The refresh outlives the request, so it does not inherit the request
	// context.
	results := a.syncer.Refresh(context.Background())

	go func() {
		res := <-results
		if res.Err != nil {
			a.logger.Error("requested refresh failed", "error", res.Err)
			return
		}
		a.logger.Info("requested refresh complete", "collection_id", res.CollectionID, "features", res.FeatureCount)
	}()

	return c.JSON(http.StatusAccepted, map[string]string{"status": "refresh started"})
}
