package domain

import (
	"encoding/json"
	"time"
)

type Profile struct {
	Email         string   `json:"email"`
	FirstName     string   `json:"first_name"`
	LastName      string   `json:"last_name"`
	FullName      string   `json:"full_name"`
	Phone         string   `json:"phone"`
	MonthlyIncome *float64 `json:"monthly_income"`
}

// TimelineEntry is one persisted evaluation in a buyer's timeline.
type TimelineEntry struct {
	ID           string          `json:"id"`
	Email        string          `json:"email"`
	ScenarioID   string          `json:"scenario_id"`
	Status       VerdictStatus   `json:"status"`
	Grade        string          `json:"grade"`
	AllInMonthly *float64        `json:"all_in_monthly"`
	Payload      json.RawMessage `json:"payload,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}
