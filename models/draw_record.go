package models

import "time"

// DrawRecord is a stored draw definition. Version increases on every write
// and guards concurrent updates.
type DrawRecord struct {
	DrawID     string          `json:"drawId"`
	EventID    string          `json:"eventId"`
	DrawName   string          `json:"drawName,omitempty"`
	DrawType   DrawType        `json:"drawType"`
	Version    int             `json:"version"`
	Definition *DrawDefinition `json:"drawDefinition,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// DrawSummary is a listing row without the definition document.
type DrawSummary struct {
	DrawID    string    `json:"drawId"`
	EventID   string    `json:"eventId"`
	DrawName  string    `json:"drawName,omitempty"`
	DrawType  DrawType  `json:"drawType"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}
