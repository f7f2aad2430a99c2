package usecase

import "github.com/agencyos/enrich-api/internal/entity"

type EnrichContactInput struct {
	Email string `json:"email"`
}

type EnrichContactOutput struct {
	Profile  *entity.EnrichmentProfile
	Provider string

	// CacheChecked is false when no cache is configured or the read failed.
	CacheChecked bool
	Cached       bool
}
