package feed

import "encoding/json"

// Wire format for the USGS GeoJSON summary feed
// (https://earthquake.usgs.gov/earthquakes/feed/v1.0/geojson.php).

type document struct {
	Type     string    `json:"type"`
	Metadata *metadata `json:"metadata"`
	Features []feature `json:"features"`
}

type metadata struct {
	Generated int64  `json:"generated"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	SubTitle  string `json:"subTitle"`

	// CacheMaxAge is the feed's cache header; divided by 100 it is a count
	// of hours.
	CacheMaxAge int `json:"cacheMaxAge"`
}

type feature struct {
	Type       string      `json:"type"`
	Properties *properties `json:"properties"`
	Geometry   *geometry   `json:"geometry"`
}

type properties struct {
	Mag     float64 `json:"mag"`
	Place   string  `json:"place"`
	Time    int64   `json:"time"`
	Updated int64   `json:"updated"`

	// TZ is the UTC offset in minutes at the epicenter.
	TZ int `json:"tz"`

	URL           string      `json:"url"`
	Felt          int         `json:"felt"`
	CDI           *float64    `json:"cdi"`
	MMI           *float64    `json:"mmi"`
	Alert         string      `json:"alert"`
	Status        string      `json:"status"`
	Tsunami       tsunamiFlag `json:"tsunami"`
	Sig           int         `json:"sig"`
	Net           string      `json:"net"`
	Code          string      `json:"code"`
	Sources       string      `json:"sources"`
	NST           int         `json:"nst"`
	DMin          float64     `json:"dmin"`
	MagnitudeType string      `json:"magnitudeType"`
}

type geometry struct {
	Type string `json:"type"`

	// Coordinates are ordered longitude, latitude, depth.
	Coordinates []float64 `json:"coordinates"`
}

// tsunamiFlag decodes the feed's tri-state tsunami belief. The field has
// appeared as a boolean, a 0/1 integer, and null across feed revisions;
// null means "no belief expressed", not false.
type tsunamiFlag struct {
	value *bool
}

func (t *tsunamiFlag) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		t.value = nil
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		t.value = &b
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		b := n != 0
		t.value = &b
		return nil
	}

	// Unrecognised encoding reads as "unknown" rather than failing the parse.
	t.value = nil
	return nil
}

// Bool returns the decoded flag, nil when unknown.
func (t tsunamiFlag) Bool() *bool {
	return t.value
}
