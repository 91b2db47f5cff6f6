package models

// CatalogSeed is the reference data loaded at startup: plans, bays,
// cars and members. Bookings are never seeded.
type CatalogSeed struct {
	Plans   []PlanSeed   `yaml:"plans"`
	Bays    []Bay        `yaml:"bays"`
	Cars    []Car        `yaml:"cars"`
	Members []MemberSeed `yaml:"members"`
}

type PlanSeed struct {
	Title      string `yaml:"title"`
	DailyRate  int64  `yaml:"daily_rate"`
	HourlyRate int64  `yaml:"hourly_rate"`
}

type MemberSeed struct {
	Email      string `yaml:"email"`
	Nickname   string `yaml:"nickname"`
	NameTitle  string `yaml:"name_title"`
	NameGiven  string `yaml:"name_given"`
	NameFamily string `yaml:"name_family"`
	Address    string `yaml:"address"`
	HomeBay    string `yaml:"home_bay"`
	Plan       string `yaml:"plan"`
}
