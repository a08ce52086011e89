package usecase

import (
	"context"

	"github.com/xavierca1/agency-funnel/internal/entity"
)

// EventPublisher delivers funnel events to downstream consumers.
type EventPublisher interface {
	PublishFunnelEvent(ctx context.Context, event entity.FunnelEvent) error
}
