package service

import (
	"context"
	"fmt"
	"time"

	"datadog_lighthouse/internal/apperrors"
	"datadog_lighthouse/internal/logger"
	"datadog_lighthouse/internal/metrics"
	"datadog_lighthouse/internal/models"
	"datadog_lighthouse/internal/repository"
)

// DefaultBootThreshold is the number of unconfirmed boots that wipes the credentials.
const DefaultBootThreshold = 3

// BootActionKind tells the caller how to proceed after a boot was counted.
type BootActionKind int

const (
	ActionContinue BootActionKind = iota
	ActionFactoryReset
)

func (k BootActionKind) String() string {
	if k == ActionFactoryReset {
		return "factory_reset"
	}
	return "continue"
}

// BootAction is the result of OnBoot. Count is the persisted counter after this boot.
type BootAction struct {
	Kind  BootActionKind
	Count int
}

type BootGuardService struct {
	counter   repository.BootCounterRepo
	eventRepo repository.EventRepo
	threshold int
	log       *logger.Logger
	now       func() time.Time
}

func NewBootGuardService(counter repository.BootCounterRepo, eventRepo repository.EventRepo, threshold int, log *logger.Logger) *BootGuardService {
	if threshold <= 0 {
		threshold = DefaultBootThreshold
	}
	return &BootGuardService{
		counter:   counter,
		eventRepo: eventRepo,
		threshold: threshold,
		log:       log.Component("bootguard"),
		now:       time.Now,
	}
}

// OnBoot counts this boot. It must run before any connection attempt.
// A counter that cannot be read is treated as a first boot. Reaching the
// threshold deletes the credentials and zeroes the counter in one store
// operation and reports ActionFactoryReset.
// The returned error is informational; the action is always usable.
func (g *BootGuardService) OnBoot(ctx context.Context) (BootAction, error) {
	count, err := g.counter.Load(ctx)
	if err != nil {
		g.log.Warnw("boot_counter_unreadable", "error", err)
		count = 0
	}
	count++

	if count >= g.threshold {
		if err := g.counter.FactoryReset(ctx); err != nil {
			g.log.Errorw("factory_reset_failed", "count", count, "error", err)
			return BootAction{Kind: ActionFactoryReset}, apperrors.Store("factory reset", err)
		}
		metrics.SetBootCount(0)
		g.log.Warnw("factory_reset", "count", count, "threshold", g.threshold)
		appendEvent(ctx, g.eventRepo, g.log, g.now(), models.EventFactoryReset,
			fmt.Sprintf("Boot %d reached threshold %d; credentials cleared", count, g.threshold),
			map[string]any{"count": count, "threshold": g.threshold})
		return BootAction{Kind: ActionFactoryReset}, nil
	}

	metrics.SetBootCount(count)
	appendEvent(ctx, g.eventRepo, g.log, g.now(), models.EventBoot,
		fmt.Sprintf("Boot %d of %d before factory reset", count, g.threshold),
		map[string]any{"count": count})

	if err := g.counter.Save(ctx, count); err != nil {
		g.log.Errorw("boot_counter_save_failed", "count", count, "error", err)
		return BootAction{Kind: ActionContinue, Count: count}, apperrors.Store("save boot counter", err)
	}
	g.log.Infow("boot", "count", count)
	return BootAction{Kind: ActionContinue, Count: count}, nil
}

// Reset zeroes the counter after a verified connection.
func (g *BootGuardService) Reset(ctx context.Context) error {
	if err := g.counter.Save(ctx, 0); err != nil {
		return apperrors.Store("reset boot counter", err)
	}
	metrics.SetBootCount(0)
	return nil
}
