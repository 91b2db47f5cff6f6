package models

type Car struct {
	Rego         string `json:"rego" yaml:"rego"`
	Name         string `json:"name" yaml:"name"`
	Make         string `json:"make" yaml:"make"`
	Model        string `json:"model" yaml:"model"`
	Year         int    `json:"year" yaml:"year"`
	Transmission string `json:"transmission" yaml:"transmission"`
	Category     string `json:"category" yaml:"category"`
	Capacity     int    `json:"capacity" yaml:"capacity"`
	ParkedAt     string `json:"parked_at" yaml:"parked_at"` // bay name
}

// CarDetails joins the car with its bay for the detail view.
type CarDetails struct {
	Car
	BayName   string `json:"bay_name"`
	WalkScore int    `json:"walkscore"`
	MapURL    string `json:"map_url"`
}

// CarSummary is the short form used in bay listings.
type CarSummary struct {
	Rego string `json:"rego"`
	Name string `json:"name"`
}
