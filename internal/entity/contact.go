package entity

import (
	"context"
	"time"
)

// EnrichedContact is the lead row kept for every successful lookup.
type EnrichedContact struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	CompanyName string    `json:"company_name"`
	JobTitle    string    `json:"job_title"`
	Provider    string    `json:"provider"`
	LookupCount int       `json:"lookup_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewEnrichedContact(email, provider string, p *EnrichmentProfile) *EnrichedContact {
	return &EnrichedContact{
		Email:       email,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		CompanyName: p.CompanyName,
		JobTitle:    p.JobTitle,
		Provider:    provider,
	}
}

type EnrichedContactRepositoryInterface interface {
	Upsert(ctx context.Context, contact *EnrichedContact) error
}
