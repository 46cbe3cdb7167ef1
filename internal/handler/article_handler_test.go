package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/wikimasters/wikimasters/internal/model"
	"github.com/wikimasters/wikimasters/internal/repository"
	"github.com/wikimasters/wikimasters/internal/service"
	"github.com/wikimasters/wikimasters/internal/worker"
)

type stubStore struct {
	row *repository.ArticleJoinRow
}

func (s *stubStore) GetAllRows(context.Context) ([]repository.ArticleJoinRow, error) {
	if s.row == nil {
		return nil, nil
	}
	return []repository.ArticleJoinRow{*s.row}, nil
}

func (s *stubStore) GetRowByID(_ context.Context, id string) (*repository.ArticleJoinRow, error) {
	if s.row != nil && s.row.ID == id {
		return s.row, nil
	}
	return nil, nil
}

func (s *stubStore) Create(_ context.Context, a *model.Article) (*model.Article, error) {
	return a, nil
}

func (s *stubStore) Update(context.Context, string, string, *model.ArticleUpdate) (*model.Article, error) {
	return nil, nil
}

func (s *stubStore) Delete(context.Context, string, string) (*model.Article, error) {
	return nil, nil
}

type stubCache struct{}

func (stubCache) Get(context.Context) ([]model.ShapedArticle, bool) { return nil, false }
func (stubCache) Set(context.Context, []model.ShapedArticle)        {}

type stubTags struct{}

func (stubTags) Ensure(context.Context, string) (string, error)    { return "", nil }
func (stubTags) LinkArticle(context.Context, string, string) error { return nil }

type stubCounter struct {
	val    int64
	err    error
	getErr error
}

func (s *stubCounter) Increment(context.Context, string) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.val++
	return s.val, nil
}

func (s *stubCounter) Get(context.Context, string) (int64, error) {
	if s.getErr != nil {
		return 0, s.getErr
	}
	return s.val, nil
}

type noopNotifier struct{}

func (noopNotifier) SendCelebration(context.Context, string, int64) {}

type noopDispatcher struct{}

func (noopDispatcher) Dispatch(worker.Job) bool { return true }

func articleRouter(store *stubStore, counter *stubCounter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	articleService := service.NewArticleService(store, stubCache{}, stubTags{}, logger)
	pageviewService := service.NewPageviewService(counter, noopNotifier{}, noopDispatcher{}, nil, logger)
	h := NewArticleHandler(articleService, pageviewService, logger)

	router := gin.New()
	router.GET("/api/v1/articles/:id", h.Get)
	return router
}

func knownRow() *repository.ArticleJoinRow {
	return &repository.ArticleJoinRow{
		ID:         "article-00001",
		Title:      "Hello World",
		Content:    "This is long enough",
		AuthorID:   "user-1",
		CreatedAt:  time.Now(),
		AuthorName: sql.NullString{String: "Ada", Valid: true},
	}
}

func TestGetArticleCountsView(t *testing.T) {
	counter := &stubCounter{}
	router := articleRouter(&stubStore{row: knownRow()}, counter)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/articles/article-00001", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pageviews":1`)
	assert.Equal(t, int64(1), counter.val)
}

func TestGetArticleServesDespiteCounterFailure(t *testing.T) {
	counter := &stubCounter{err: errors.New("store unreachable")}
	router := articleRouter(&stubStore{row: knownRow()}, counter)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/articles/article-00001", nil))

	assert.Equal(t, http.StatusOK, w.Code, "increment failure never blocks the page")
	assert.Contains(t, w.Body.String(), "Hello World")
}

func TestGetArticleFallsBackToLastKnownCount(t *testing.T) {
	counter := &stubCounter{val: 41, err: errors.New("increment rejected")}
	router := articleRouter(&stubStore{row: knownRow()}, counter)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/articles/article-00001", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pageviews":41`, "a failed increment reports the last known count")
}

func TestGetArticleReportsZeroWhenCounterUnreadable(t *testing.T) {
	counter := &stubCounter{err: errors.New("store down"), getErr: errors.New("store down")}
	router := articleRouter(&stubStore{row: knownRow()}, counter)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/articles/article-00001", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pageviews":0`)
}

func TestGetArticleNotFound(t *testing.T) {
	router := articleRouter(&stubStore{}, &stubCounter{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/articles/missing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
