package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wikimasters/wikimasters/internal/worker"
)

type fakeCounter struct {
	counts map[string]int64
	err    error
}

func (f *fakeCounter) Increment(_ context.Context, articleID string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.counts == nil {
		f.counts = make(map[string]int64)
	}
	f.counts[articleID]++
	return f.counts[articleID], nil
}

func (f *fakeCounter) Get(_ context.Context, articleID string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.counts[articleID], nil
}

type fakeNotifier struct {
	calls []int64
}

func (f *fakeNotifier) SendCelebration(_ context.Context, _ string, views int64) {
	f.calls = append(f.calls, views)
}

// syncDispatcher runs jobs inline so tests observe their effects
type syncDispatcher struct{}

func (syncDispatcher) Dispatch(job worker.Job) bool {
	job.Run(context.Background())
	return true
}

type fakePublisher struct {
	events []int64
	err    error
}

func (f *fakePublisher) PublishMilestone(_ context.Context, _ string, views int64) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, views)
	return nil
}

func newPageviewFixture(counter *fakeCounter, publisher MilestonePublisher) (*PageviewService, *fakeNotifier) {
	notifier := &fakeNotifier{}
	svc := NewPageviewService(counter, notifier, syncDispatcher{}, publisher, zap.NewNop())
	return svc, notifier
}

func TestIncrementSequence(t *testing.T) {
	svc, notifier := newPageviewFixture(&fakeCounter{}, nil)

	for want := int64(1); want <= 9; want++ {
		got, err := svc.Increment(context.Background(), "article-1")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	assert.Empty(t, notifier.calls, "no milestone below 10")
}

func TestIncrementMilestones(t *testing.T) {
	svc, notifier := newPageviewFixture(&fakeCounter{}, nil)

	for i := 0; i < 1200; i++ {
		_, err := svc.Increment(context.Background(), "article-1")
		require.NoError(t, err)
	}

	assert.Equal(t, []int64{10, 50, 100, 1000}, notifier.calls)
}

func TestIncrementPerArticleCounters(t *testing.T) {
	svc, notifier := newPageviewFixture(&fakeCounter{}, nil)

	for i := 0; i < 10; i++ {
		_, err := svc.Increment(context.Background(), "article-a")
		require.NoError(t, err)
	}
	val, err := svc.Increment(context.Background(), "article-b")
	require.NoError(t, err)

	assert.Equal(t, int64(1), val, "counters never collide across articles")
	assert.Equal(t, []int64{10}, notifier.calls)
}

func TestIncrementEmptyID(t *testing.T) {
	svc, _ := newPageviewFixture(&fakeCounter{}, nil)

	_, err := svc.Increment(context.Background(), "")
	assert.Error(t, err)
}

func TestIncrementStoreFailure(t *testing.T) {
	svc, notifier := newPageviewFixture(&fakeCounter{err: errors.New("connection refused")}, nil)

	_, err := svc.Increment(context.Background(), "article-1")
	assert.Error(t, err)
	assert.Empty(t, notifier.calls, "failed increment never triggers a notification")
}

func TestCountReadsWithoutIncrementing(t *testing.T) {
	counter := &fakeCounter{}
	svc, _ := newPageviewFixture(counter, nil)

	for i := 0; i < 3; i++ {
		_, err := svc.Increment(context.Background(), "article-1")
		require.NoError(t, err)
	}

	val, err := svc.Count(context.Background(), "article-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), val)

	val, err = svc.Count(context.Background(), "article-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), val, "reads must not bump the counter")

	_, err = svc.Count(context.Background(), "")
	assert.Error(t, err)
}

func TestIncrementPublishesMilestoneEvents(t *testing.T) {
	publisher := &fakePublisher{}
	svc, notifier := newPageviewFixture(&fakeCounter{}, publisher)

	for i := 0; i < 50; i++ {
		_, err := svc.Increment(context.Background(), "article-1")
		require.NoError(t, err)
	}

	assert.Equal(t, []int64{10, 50}, publisher.events)
	assert.Equal(t, []int64{10, 50}, notifier.calls)
}

func TestIncrementSurvivesPublisherFailure(t *testing.T) {
	publisher := &fakePublisher{err: errors.New("broker unreachable")}
	svc, notifier := newPageviewFixture(&fakeCounter{}, publisher)

	var last int64
	for i := 0; i < 10; i++ {
		val, err := svc.Increment(context.Background(), "article-1")
		require.NoError(t, err, "publish failures never surface to the caller")
		last = val
	}

	assert.Equal(t, int64(10), last)
	assert.Equal(t, []int64{10}, notifier.calls, "the celebration still goes out")
}
