package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/wikimasters/wikimasters/internal/model"
	"github.com/wikimasters/wikimasters/internal/service"
)

type fakeTagStore struct {
	tags []model.Tag
	err  error
}

func (f *fakeTagStore) GetAll(context.Context) ([]model.Tag, error) {
	return f.tags, f.err
}

func (f *fakeTagStore) Create(_ context.Context, name string) (*model.Tag, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.Tag{ID: "tag-1", Name: name}, nil
}

func tagRouter(store *fakeTagStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	h := NewTagHandler(service.NewTagService(store, logger), logger)

	router := gin.New()
	router.GET("/api/v1/tags", h.List)
	router.POST("/api/v1/tags", h.Create)
	return router
}

func postTag(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tags", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateTagHandlerSuccess(t *testing.T) {
	w := postTag(tagRouter(&fakeTagStore{}), `{"name": "Golang"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Golang")
}

func TestCreateTagHandlerDuplicateIsBadRequest(t *testing.T) {
	store := &fakeTagStore{err: errors.New(`pq: duplicate key value violates unique constraint "tags_name_key"`)}

	w := postTag(tagRouter(store), `{"name": "Golang"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already exists")
}

func TestCreateTagHandlerInvalidNameIsBadRequest(t *testing.T) {
	w := postTag(tagRouter(&fakeTagStore{}), `{"name": "   "}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid tag name")
}

func TestCreateTagHandlerStoreFailureIsInternal(t *testing.T) {
	store := &fakeTagStore{err: errors.New("connection reset")}

	w := postTag(tagRouter(store), `{"name": "Golang"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset", "raw store errors never reach the client")
}
