package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/wikimasters/wikimasters/internal/model"
)

// TagRepository handles database operations for article tags
type TagRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *sqlx.DB, logger *zap.Logger) *TagRepository {
	return &TagRepository{
		db:     db,
		logger: logger,
	}
}

// GetAll retrieves all tags ordered by name
func (r *TagRepository) GetAll(ctx context.Context) ([]model.Tag, error) {
	query := `
		SELECT id, name, created_at
		FROM tags
		ORDER BY name
	`

	var tags []model.Tag
	err := r.db.SelectContext(ctx, &tags, query)
	if err != nil {
		r.logger.Error("Failed to get tags", zap.Error(err))
		return nil, err
	}

	return tags, nil
}

// Create inserts a new tag and returns it. A duplicate name surfaces the
// driver's unique-violation error to the service.
func (r *TagRepository) Create(ctx context.Context, name string) (*model.Tag, error) {
	query := `
		INSERT INTO tags (id, name)
		VALUES ($1, $2)
		RETURNING id, name, created_at
	`

	var tag model.Tag
	err := r.db.QueryRowxContext(ctx, query, uuid.NewString(), name).StructScan(&tag)
	if err != nil {
		r.logger.Error("Failed to create tag", zap.Error(err), zap.String("name", name))
		return nil, err
	}

	return &tag, nil
}

// Ensure returns the id of the named tag, creating it when absent
func (r *TagRepository) Ensure(ctx context.Context, name string) (string, error) {
	query := `
		INSERT INTO tags (id, name)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`

	var id string
	err := r.db.QueryRowContext(ctx, query, uuid.NewString(), name).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to ensure tag", zap.Error(err), zap.String("name", name))
		return "", err
	}

	return id, nil
}

// LinkArticle associates a tag with an article
func (r *TagRepository) LinkArticle(ctx context.Context, articleID, tagID string) error {
	query := `
		INSERT INTO article_tags (id, article_id, tag_id)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.ExecContext(ctx, query, uuid.NewString(), articleID, tagID)
	if err != nil {
		r.logger.Error("Failed to link tag",
			zap.Error(err),
			zap.String("article_id", articleID),
			zap.String("tag_id", tagID))
		return err
	}

	return nil
}
