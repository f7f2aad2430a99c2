package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agencyos/enrich-api/internal/entity"
	"github.com/agencyos/enrich-api/internal/infra/queue"
)

const defaultProviderTimeout = 5 * time.Second

type EnrichOptions struct {
	ProviderTimeout time.Duration
	StrictEmail     bool
}

// NewEnrichContactUseCase wires the lookup pipeline. cache, contacts and producer are
// optional and may be nil.
func NewEnrichContactUseCase(
	provider entity.Provider,
	cache ProfileCache,
	contacts entity.EnrichedContactRepositoryInterface,
	producer QueueProducerInterface,
	opts EnrichOptions,
	logger *zap.Logger,
) *EnrichContactUseCase {
	if opts.ProviderTimeout <= 0 {
		opts.ProviderTimeout = defaultProviderTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrichContactUseCase{
		Provider: provider,
		Cache:    cache,
		Contacts: contacts,
		Queue:    producer,
		Options:  opts,
		Logger:   logger,
	}
}

func (uc *EnrichContactUseCase) Execute(ctx context.Context, input EnrichContactInput) (*EnrichContactOutput, error) {
	if validationErrors := ValidateEnrichContactInput(input, uc.Options.StrictEmail); len(validationErrors) > 0 {
		return nil, NewValidationDomainError(validationErrors[0].Message)
	}
	email := strings.TrimSpace(input.Email)
	providerName := uc.Provider.Name()

	cacheChecked := false
	if uc.Cache != nil {
		profile, found, err := uc.Cache.Get(ctx, email)
		if err != nil {
			uc.Logger.Warn("Profile cache read failed", zap.String("email", email), zap.Error(err))
		} else if found {
			return &EnrichContactOutput{Profile: profile, Provider: providerName, CacheChecked: true, Cached: true}, nil
		} else {
			cacheChecked = true
		}
	}

	profile, err := uc.lookup(ctx, email)
	if err != nil {
		return nil, err
	}

	if uc.Cache != nil {
		if err := uc.Cache.Set(ctx, email, profile); err != nil {
			uc.Logger.Warn("Profile cache write failed", zap.String("email", email), zap.Error(err))
		}
	}

	uc.recordContact(ctx, email, providerName, profile)
	uc.publish(ctx, email, providerName, profile)

	return &EnrichContactOutput{Profile: profile, Provider: providerName, CacheChecked: cacheChecked}, nil
}

func (uc *EnrichContactUseCase) lookup(ctx context.Context, email string) (*entity.EnrichmentProfile, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, uc.Options.ProviderTimeout)
	defer cancel()

	profile, err := uc.Provider.Lookup(lookupCtx, email)
	if err == nil && profile == nil {
		err = entity.NewProviderError(uc.Provider.Name(), entity.FailureNoMatch, nil)
	}
	if err == nil {
		return profile, nil
	}

	if _, ok := entity.AsProviderError(err); ok {
		return nil, err
	}
	// The caller's own cancellation is not a provider failure.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, entity.NewProviderError(uc.Provider.Name(), entity.FailureTimeout, err)
	}
	return nil, entity.NewProviderError(uc.Provider.Name(), entity.FailureUpstream, err)
}

func (uc *EnrichContactUseCase) recordContact(ctx context.Context, email, provider string, profile *entity.EnrichmentProfile) {
	if uc.Contacts == nil {
		return
	}
	contact := entity.NewEnrichedContact(strings.ToLower(email), provider, profile)
	if err := uc.Contacts.Upsert(ctx, contact); err != nil {
		uc.Logger.Error("Failed to record enriched contact", zap.String("email", email), zap.Error(err))
	}
}

func (uc *EnrichContactUseCase) publish(ctx context.Context, email, provider string, profile *entity.EnrichmentProfile) {
	if uc.Queue == nil {
		return
	}
	event := queue.ContactEnrichedEvent{
		EventID:    uuid.New().String(),
		Email:      email,
		Provider:   provider,
		Profile:    *profile,
		EnrichedAt: time.Now().UTC(),
	}
	if err := uc.Queue.PublishContactEnriched(ctx, event); err != nil {
		uc.Logger.Error("Failed to publish contact enriched event",
			zap.String("event_id", event.EventID),
			zap.Error(err),
		)
	}
}
