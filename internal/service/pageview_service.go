package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/wikimasters/wikimasters/internal/worker"
)

// milestones are the exact counter values that trigger a one-time
// celebration. A counter only ever passes through each value once, so no
// deduplication is needed beyond the equality check.
var milestones = []int64{10, 50, 100, 1000}

// Counter is the atomic increment primitive the view counter relies on,
// plus a plain read used when the increment cannot be served.
type Counter interface {
	Increment(ctx context.Context, articleID string) (int64, error)
	Get(ctx context.Context, articleID string) (int64, error)
}

// CelebrationSender delivers the milestone notification. It never
// reports failure to the caller.
type CelebrationSender interface {
	SendCelebration(ctx context.Context, articleID string, views int64)
}

// Dispatcher runs detached background jobs
type Dispatcher interface {
	Dispatch(job worker.Job) bool
}

// MilestonePublisher emits milestone events to an external bus
type MilestonePublisher interface {
	PublishMilestone(ctx context.Context, articleID string, views int64) error
}

// PageviewService counts article views and triggers milestone side
// effects. The increment itself is the store's atomic INCR; the milestone
// check runs on the returned value, so concurrent viewers each observe a
// distinct value and each milestone fires exactly once.
type PageviewService struct {
	counter    Counter
	notifier   CelebrationSender
	dispatcher Dispatcher
	publisher  MilestonePublisher // optional
	logger     *zap.Logger
}

// NewPageviewService creates a new pageview service. publisher may be nil
// when no event bus is configured.
func NewPageviewService(
	counter Counter,
	notifier CelebrationSender,
	dispatcher Dispatcher,
	publisher MilestonePublisher,
	logger *zap.Logger,
) *PageviewService {
	return &PageviewService{
		counter:    counter,
		notifier:   notifier,
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     logger,
	}
}

// Increment bumps the article's view counter by one and returns the new
// value. Article existence is not checked. When the new value lands
// exactly on a milestone, the celebration is dispatched fire-and-forget;
// Increment never waits on it. A store failure is returned to the caller,
// who treats the count as best-effort.
func (s *PageviewService) Increment(ctx context.Context, articleID string) (int64, error) {
	if articleID == "" {
		return 0, errors.New("article id is required")
	}

	newVal, err := s.counter.Increment(ctx, articleID)
	if err != nil {
		return 0, err
	}

	if isMilestone(newVal) {
		s.dispatcher.Dispatch(worker.Job{
			Name: "celebration-email",
			Run: func(jobCtx context.Context) {
				s.notifier.SendCelebration(jobCtx, articleID, newVal)
			},
		})

		if s.publisher != nil {
			s.dispatcher.Dispatch(worker.Job{
				Name: "milestone-event",
				Run: func(jobCtx context.Context) {
					if err := s.publisher.PublishMilestone(jobCtx, articleID, newVal); err != nil {
						s.logger.Warn("Milestone event publish failed",
							zap.String("article_id", articleID),
							zap.Int64("views", newVal),
							zap.Error(err))
					}
				},
			})
		}
	}

	return newVal, nil
}

// Count returns the article's current view count without incrementing
// it. Used to serve the last known count when an increment fails mid-read.
func (s *PageviewService) Count(ctx context.Context, articleID string) (int64, error) {
	if articleID == "" {
		return 0, errors.New("article id is required")
	}

	return s.counter.Get(ctx, articleID)
}

func isMilestone(v int64) bool {
	for _, m := range milestones {
		if v == m {
			return true
		}
	}
	return false
}
