package models

// Bay owns zero or more parked cars; the relation is held by Car.ParkedAt
// and resolved by query.
type Bay struct {
	ID          int64   `json:"id" yaml:"-"`
	Name        string  `json:"name" yaml:"name"`
	Address     string  `json:"address" yaml:"address"`
	Description string  `json:"description" yaml:"description"`
	GPSLat      float64 `json:"gps_lat" yaml:"gps_lat"`
	GPSLong     float64 `json:"gps_long" yaml:"gps_long"`
	WalkScore   int     `json:"walkscore" yaml:"walkscore"`
	MapURL      string  `json:"map_url" yaml:"map_url"`
}

// BaySummary is a bay listing row with its parked-car count.
type BaySummary struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	NumCars int    `json:"num_cars"`
}
