package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/agencyos/enrich-api/internal/entity"
	"github.com/agencyos/enrich-api/internal/infra/queue"
)

type ProfileCache interface {
	Get(ctx context.Context, email string) (*entity.EnrichmentProfile, bool, error)
	Set(ctx context.Context, email string, profile *entity.EnrichmentProfile) error
}

type QueueProducerInterface interface {
	PublishContactEnriched(ctx context.Context, event queue.ContactEnrichedEvent) error
}

type EnrichContactUseCase struct {
	Provider entity.Provider
	Cache    ProfileCache
	Contacts entity.EnrichedContactRepositoryInterface
	Queue    QueueProducerInterface
	Options  EnrichOptions
	Logger   *zap.Logger
}
