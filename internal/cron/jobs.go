package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/logger"
)

const (
	defaultSelectionRetention = 30 * 24 * time.Hour
	defaultOutboxRetention    = 14 * 24 * time.Hour
	defaultDLQRetention       = 90 * 24 * time.Hour
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ratingRefresher interface {
	RefreshAllRatings(ctx context.Context) (int64, error)
}

// RatingRefreshJob recomputes average_rating and review_count for every
// product from the active reviews.
type RatingRefreshJob struct {
	logg *logger.Logger
	repo ratingRefresher
}

func NewRatingRefreshJob(logg *logger.Logger, repo ratingRefresher) (*RatingRefreshJob, error) {
	if logg == nil || repo == nil {
		return nil, fmt.Errorf("logger and review repository required")
	}
	return &RatingRefreshJob{logg: logg, repo: repo}, nil
}

func (j *RatingRefreshJob) Name() string { return "product-rating-refresh" }

func (j *RatingRefreshJob) Run(ctx context.Context) error {
	updated, err := j.repo.RefreshAllRatings(ctx)
	if err != nil {
		return fmt.Errorf("refresh ratings: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "products_updated", updated), "product ratings refreshed")
	return nil
}

type selectionPruner interface {
	PruneStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// SelectionPruneJob deletes checkout drafts that have not been touched for the
// retention window and whose owner has an empty cart.
type SelectionPruneJob struct {
	logg      *logger.Logger
	repo      selectionPruner
	retention time.Duration
	now       func() time.Time
}

func NewSelectionPruneJob(logg *logger.Logger, repo selectionPruner, retention time.Duration) (*SelectionPruneJob, error) {
	if logg == nil || repo == nil {
		return nil, fmt.Errorf("logger and checkout repository required")
	}
	if retention <= 0 {
		retention = defaultSelectionRetention
	}
	return &SelectionPruneJob{logg: logg, repo: repo, retention: retention, now: time.Now}, nil
}

func (j *SelectionPruneJob) Name() string { return "checkout-selection-prune" }

func (j *SelectionPruneJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	deleted, err := j.repo.PruneStale(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("prune checkout selections: %w", err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_deleted": deleted,
	}), "stale checkout selections pruned")
	return nil
}

type publishedDeleter interface {
	DeletePublishedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type deadLetterDeleter interface {
	DeleteFailedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type OutboxRetentionJobParams struct {
	Logger          *logger.Logger
	DB              txRunner
	Outbox          publishedDeleter
	DLQ             deadLetterDeleter
	OutboxRetention time.Duration
	DLQRetention    time.Duration
}

// OutboxRetentionJob trims delivered outbox rows and old dead letters. The two
// deletes run in separate transactions so one failing does not block the other.
type OutboxRetentionJob struct {
	logg            *logger.Logger
	db              txRunner
	outbox          publishedDeleter
	dlq             deadLetterDeleter
	outboxRetention time.Duration
	dlqRetention    time.Duration
	now             func() time.Time
}

func NewOutboxRetentionJob(params OutboxRetentionJobParams) (*OutboxRetentionJob, error) {
	switch {
	case params.Logger == nil:
		return nil, fmt.Errorf("logger required")
	case params.DB == nil:
		return nil, fmt.Errorf("db runner required")
	case params.Outbox == nil:
		return nil, fmt.Errorf("outbox repository required")
	case params.DLQ == nil:
		return nil, fmt.Errorf("dlq repository required")
	}
	outboxRetention := params.OutboxRetention
	if outboxRetention <= 0 {
		outboxRetention = defaultOutboxRetention
	}
	dlqRetention := params.DLQRetention
	if dlqRetention <= 0 {
		dlqRetention = defaultDLQRetention
	}
	return &OutboxRetentionJob{
		logg:            params.Logger,
		db:              params.DB,
		outbox:          params.Outbox,
		dlq:             params.DLQ,
		outboxRetention: outboxRetention,
		dlqRetention:    dlqRetention,
		now:             time.Now,
	}, nil
}

func (j *OutboxRetentionJob) Name() string { return "outbox-retention" }

func (j *OutboxRetentionJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	var published, deadLetters int64
	var errs error

	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		n, err := j.outbox.DeletePublishedBefore(ctx, tx, now.Add(-j.outboxRetention))
		published = n
		return err
	})
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("delete published events: %w", err))
	}

	err = j.db.WithTx(ctx, func(tx *gorm.DB) error {
		n, err := j.dlq.DeleteFailedBefore(ctx, tx, now.Add(-j.dlqRetention))
		deadLetters = n
		return err
	})
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("delete dead letters: %w", err))
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"published_deleted":   published,
		"dead_letter_deleted": deadLetters,
	}), "outbox retention complete")
	return errs
}
