package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wikimasters/wikimasters/internal/model"
	"github.com/wikimasters/wikimasters/internal/repository"
)

// unknownAuthor is substituted when the author row or its name is missing
const unknownAuthor = "Unknown"

// errNotFound is the deliberate conflation of "missing" and "not owner":
// mutations filter on (id AND author_id) in a single statement, so both
// cases come back identically.
const errNotFound = "Article not found"

// ArticleStore is the relational access the article service needs
type ArticleStore interface {
	GetAllRows(ctx context.Context) ([]repository.ArticleJoinRow, error)
	GetRowByID(ctx context.Context, id string) (*repository.ArticleJoinRow, error)
	Create(ctx context.Context, article *model.Article) (*model.Article, error)
	Update(ctx context.Context, id, authorID string, upd *model.ArticleUpdate) (*model.Article, error)
	Delete(ctx context.Context, id, authorID string) (*model.Article, error)
}

// ListingCache is the read-through cache in front of the article listing
type ListingCache interface {
	Get(ctx context.Context) ([]model.ShapedArticle, bool)
	Set(ctx context.Context, articles []model.ShapedArticle)
}

// TagLinker upserts tags and links them to articles
type TagLinker interface {
	Ensure(ctx context.Context, name string) (string, error)
	LinkArticle(ctx context.Context, articleID, tagID string) error
}

// payloadValidator reuses the binding tags, so service-level validation
// matches what gin enforces at the HTTP boundary.
var payloadValidator = func() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	return v
}()

// ArticleService implements the article read and mutation operations
type ArticleService struct {
	store   ArticleStore
	cache   ListingCache
	tags    TagLinker
	shaped  *validator.Validate
	nowUnix func() int64
	logger  *zap.Logger
}

// NewArticleService creates a new article service
func NewArticleService(store ArticleStore, cache ListingCache, tags TagLinker, logger *zap.Logger) *ArticleService {
	return &ArticleService{
		store:   store,
		cache:   cache,
		tags:    tags,
		shaped:  validator.New(),
		nowUnix: func() int64 { return time.Now().UnixMilli() },
		logger:  logger,
	}
}

// GetArticles returns the shaped listing, read-through cached. A warm
// cache is served as-is with no per-item revalidation; a miss recomputes
// from the store, validates each shaped item (failures logged, items
// still returned), repopulates the cache with the fixed TTL, and returns
// the fresh collection.
func (s *ArticleService) GetArticles(ctx context.Context) ([]model.ShapedArticle, error) {
	if cached, ok := s.cache.Get(ctx); ok {
		return cached, nil
	}

	rows, err := s.store.GetAllRows(ctx)
	if err != nil {
		return nil, err
	}

	shaped := make([]model.ShapedArticle, 0, len(rows))
	for _, row := range rows {
		article := shapeRow(&row)
		if err := s.shaped.Struct(article); err != nil {
			s.logger.Warn("Shaped article failed schema validation",
				zap.String("article_id", article.ID),
				zap.Error(err))
		}
		shaped = append(shaped, article)
	}

	s.cache.Set(ctx, shaped)

	return shaped, nil
}

// GetArticleByID always bypasses the listing cache. It returns nil on a
// missing id and on any store error; errors are logged, never propagated.
func (s *ArticleService) GetArticleByID(ctx context.Context, id string) *model.ShapedArticle {
	row, err := s.store.GetRowByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to load article", zap.String("id", id), zap.Error(err))
		return nil
	}
	if row == nil {
		return nil
	}

	article := shapeRow(row)
	return &article
}

// shapeRow denormalizes a join row into the display projection. A missing
// author name becomes "Unknown"; NULL tag names from the outer join are
// filtered, leaving an empty (never nil) list.
func shapeRow(row *repository.ArticleJoinRow) model.ShapedArticle {
	author := unknownAuthor
	if row.AuthorName.Valid && row.AuthorName.String != "" {
		author = row.AuthorName.String
	}

	tags := make([]string, 0, len(row.TagNames))
	for _, t := range row.TagNames {
		if t.Valid && t.String != "" {
			tags = append(tags, t.String)
		}
	}

	return model.ShapedArticle{
		ID:        row.ID,
		Title:     row.Title,
		CreatedAt: row.CreatedAt,
		Content:   row.Content,
		Author:    author,
		ImageURL:  row.ImageURL,
		AuthorID:  row.AuthorID,
		Tags:      tags,
	}
}

// Create validates the payload before any store write, then inserts an
// article owned by the acting user. The slug is the request-time unix
// millisecond timestamp; client-supplied author or slug values never
// reach the store. Supplied tag names are upserted and linked after the
// insert, best-effort.
func (s *ArticleService) Create(ctx context.Context, userID string, req *model.ArticleCreate) *model.MutationResult {
	if err := payloadValidator.Struct(req); err != nil {
		return &model.MutationResult{Error: validationMessage(err)}
	}

	article := &model.Article{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Slug:      strconv.FormatInt(s.nowUnix(), 10),
		Content:   req.Content,
		ImageURL:  req.ImageURL,
		Published: true,
		AuthorID:  userID,
	}

	created, err := s.store.Create(ctx, article)
	if err != nil {
		s.logger.Error("Article create failed", zap.Error(err))
		return &model.MutationResult{Error: "Something went wrong while creating the article"}
	}

	s.linkTags(ctx, created.ID, req.Tags)

	return &model.MutationResult{
		Success: true,
		Message: "Article created",
		Article: created,
	}
}

// Update validates the payload, then updates in a single statement
// filtered on (id AND author_id). Zero affected rows means missing or
// not-owner, reported identically.
func (s *ArticleService) Update(ctx context.Context, userID, id string, req *model.ArticleUpdate) *model.MutationResult {
	if err := payloadValidator.Struct(req); err != nil {
		return &model.MutationResult{Error: validationMessage(err)}
	}

	updated, err := s.store.Update(ctx, id, userID, req)
	if err != nil {
		s.logger.Error("Article update failed", zap.String("id", id), zap.Error(err))
		return &model.MutationResult{Error: "Something went wrong while updating the article"}
	}
	if updated == nil {
		return &model.MutationResult{Error: errNotFound}
	}

	s.linkTags(ctx, updated.ID, req.Tags)

	return &model.MutationResult{
		Success: true,
		Message: "Article " + id + " updated",
		Article: updated,
	}
}

// Delete removes an article with the same combined ownership condition
func (s *ArticleService) Delete(ctx context.Context, userID, id string) *model.MutationResult {
	deleted, err := s.store.Delete(ctx, id, userID)
	if err != nil {
		s.logger.Error("Article delete failed", zap.String("id", id), zap.Error(err))
		return &model.MutationResult{Error: "Something went wrong while deleting the article"}
	}
	if deleted == nil {
		return &model.MutationResult{Error: errNotFound}
	}

	return &model.MutationResult{
		Success: true,
		Message: "Article " + id + " deleted",
		Article: deleted,
	}
}

// linkTags associates tag names with an article. Link failures are
// logged and swallowed; the mutation already succeeded.
func (s *ArticleService) linkTags(ctx context.Context, articleID string, names []string) {
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		tagID, err := s.tags.Ensure(ctx, name)
		if err != nil {
			s.logger.Warn("Failed to upsert tag", zap.String("name", name), zap.Error(err))
			continue
		}

		if err := s.tags.LinkArticle(ctx, articleID, tagID); err != nil {
			s.logger.Warn("Failed to link tag",
				zap.String("article_id", articleID),
				zap.String("name", name),
				zap.Error(err))
		}
	}
}

// validationMessage flattens validator output into a short per-field message
func validationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return "Invalid payload"
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, strings.ToLower(fe.Field())+" is required")
		case "min":
			parts = append(parts, strings.ToLower(fe.Field())+" must be at least "+fe.Param()+" characters")
		default:
			parts = append(parts, strings.ToLower(fe.Field())+" is invalid")
		}
	}

	return "Invalid payload: " + strings.Join(parts, ", ")
}
