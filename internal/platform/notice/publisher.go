package notice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dental/clinic/internal/platform/metrics"
)

// Publisher creates notices with a fixed TTL.
type Publisher struct {
	store   Store
	ttl     time.Duration
	logger  zerolog.Logger
	now     func() time.Time
	newID   func() string
	metrics *metrics.Collectors
}

func NewPublisher(store Store, ttl time.Duration, logger zerolog.Logger) *Publisher {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Publisher{
		store:  store,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// WithClock overrides the publisher's time source.
func (p *Publisher) WithClock(now func() time.Time) *Publisher {
	p.now = now
	return p
}

func (p *Publisher) WithMetrics(m *metrics.Collectors) *Publisher {
	p.metrics = m
	return p
}

func (p *Publisher) Publish(ctx context.Context, actor string, level Level, message string) (Notice, error) {
	if actor == "" {
		return Notice{}, fmt.Errorf("actor is required")
	}
	if message == "" {
		return Notice{}, fmt.Errorf("message is required")
	}
	if level != LevelError && level != LevelSuccess {
		return Notice{}, fmt.Errorf("invalid level: %s", level)
	}

	now := p.now()
	n := Notice{
		ID:        p.newID(),
		Actor:     actor,
		Level:     level,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(p.ttl),
	}
	if err := p.store.Put(ctx, n); err != nil {
		return Notice{}, err
	}
	if p.metrics != nil {
		p.metrics.NoticesPublished.WithLabelValues(string(level)).Inc()
	}
	return n, nil
}

func (p *Publisher) Error(ctx context.Context, actor, message string) {
	p.publishQuietly(ctx, actor, LevelError, message)
}

func (p *Publisher) Success(ctx context.Context, actor, message string) {
	p.publishQuietly(ctx, actor, LevelSuccess, message)
}

// publishQuietly logs store failures instead of returning them; a lost
// banner must never fail the request that produced it.
func (p *Publisher) publishQuietly(ctx context.Context, actor string, level Level, message string) {
	if _, err := p.Publish(ctx, actor, level, message); err != nil {
		p.logger.Warn().Err(err).Str("actor", actor).Str("level", string(level)).Msg("notice not published")
	}
}

func (p *Publisher) Active(ctx context.Context, actor string) ([]Notice, error) {
	return p.store.List(ctx, actor, p.now())
}

func (p *Publisher) Dismiss(ctx context.Context, actor, id string) error {
	return p.store.Delete(ctx, actor, id)
}
