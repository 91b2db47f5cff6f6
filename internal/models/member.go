package models

import "time"

// Member identity is the email for callers and member_no inside the ledger.
type Member struct {
	MemberNo     int64     `json:"member_no"`
	Email        string    `json:"email"`
	Nickname     string    `json:"nickname"`
	NameTitle    string    `json:"name_title"`
	NameGiven    string    `json:"name_given"`
	NameFamily   string    `json:"name_family"`
	Address      string    `json:"address"`
	HomeBay      string    `json:"home_bay"`
	Plan         string    `json:"plan"`
	Since        time.Time `json:"since"`
	StatBookings int64     `json:"stat_bookings"`
}

// MembershipPlan rates are stored in cents.
type MembershipPlan struct {
	Title      string `json:"title"`
	DailyRate  int64  `json:"daily_rate"`
	HourlyRate int64  `json:"hourly_rate"`
}
