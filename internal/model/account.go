package model

import "time"

// Account represents a brokerage or savings account from the database.
// Transactions reference accounts by ID; an account row is optional metadata.
type Account struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Owner         string    `json:"owner"`
	Institution   string    `json:"institution"`
	InstitutionID string    `json:"institutionId,omitempty"`
	Description   string    `json:"description,omitempty"`
	Tags          []string  `json:"tags"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
