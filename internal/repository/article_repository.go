package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/wikimasters/wikimasters/internal/model"
)

// ArticleJoinRow is the raw listing/detail join row before shaping:
// article columns plus the author display name and the aggregated tag
// names, both of which may be NULL.
type ArticleJoinRow struct {
	ID         string
	Title      string
	Content    string
	ImageURL   *string
	AuthorID   string
	CreatedAt  time.Time
	AuthorName sql.NullString
	TagNames   []sql.NullString
}

// AuthorContact carries the fields the notifier needs to reach an
// article's author.
type AuthorContact struct {
	ArticleTitle string
	AuthorID     string
	Name         sql.NullString
	Email        sql.NullString
}

// ArticleRepository handles database operations for articles
type ArticleRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewArticleRepository creates a new article repository
func NewArticleRepository(db *sqlx.DB, logger *zap.Logger) *ArticleRepository {
	return &ArticleRepository{
		db:     db,
		logger: logger,
	}
}

const articleJoinSelect = `
	SELECT a.id, a.title, a.content, a.image_url, a.author_id, a.created_at,
	       u.name AS author_name,
	       ARRAY_AGG(t.name) AS tag_names
	FROM articles a
	LEFT JOIN users u ON u.id = a.author_id
	LEFT JOIN article_tags at ON at.article_id = a.id
	LEFT JOIN tags t ON t.id = at.tag_id
`

// GetAllRows retrieves every article joined with its author name and tag
// names, newest first.
func (r *ArticleRepository) GetAllRows(ctx context.Context) ([]ArticleJoinRow, error) {
	query := articleJoinSelect + `
	GROUP BY a.id, u.name
	ORDER BY a.created_at DESC
	`

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query articles", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var result []ArticleJoinRow
	for rows.Next() {
		row, err := scanJoinRow(rows)
		if err != nil {
			r.logger.Error("Failed to scan article row", zap.Error(err))
			return nil, err
		}
		result = append(result, *row)
	}

	return result, rows.Err()
}

// GetRowByID retrieves a single joined article row. Returns (nil, nil)
// when no article matches.
func (r *ArticleRepository) GetRowByID(ctx context.Context, id string) (*ArticleJoinRow, error) {
	query := articleJoinSelect + `
	WHERE a.id = $1
	GROUP BY a.id, u.name
	`

	rows, err := r.db.QueryxContext(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to query article", zap.Error(err), zap.String("id", id))
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	row, err := scanJoinRow(rows)
	if err != nil {
		r.logger.Error("Failed to scan article row", zap.Error(err), zap.String("id", id))
		return nil, err
	}

	return row, nil
}

func scanJoinRow(rows *sqlx.Rows) (*ArticleJoinRow, error) {
	var row ArticleJoinRow
	err := rows.Scan(
		&row.ID,
		&row.Title,
		&row.Content,
		&row.ImageURL,
		&row.AuthorID,
		&row.CreatedAt,
		&row.AuthorName,
		pq.Array(&row.TagNames),
	)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// GetAuthorContact looks up the article title and author name/email for
// the notifier. Returns (nil, nil) when the article does not exist.
func (r *ArticleRepository) GetAuthorContact(ctx context.Context, articleID string) (*AuthorContact, error) {
	query := `
		SELECT a.title, a.author_id, u.name, u.email
		FROM articles a
		LEFT JOIN users u ON u.id = a.author_id
		WHERE a.id = $1
	`

	var contact AuthorContact
	err := r.db.QueryRowxContext(ctx, query, articleID).Scan(
		&contact.ArticleTitle,
		&contact.AuthorID,
		&contact.Name,
		&contact.Email,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to query author contact",
			zap.Error(err),
			zap.String("article_id", articleID))
		return nil, err
	}

	return &contact, nil
}

// Create inserts a new article and returns the stored row
func (r *ArticleRepository) Create(ctx context.Context, article *model.Article) (*model.Article, error) {
	query := `
		INSERT INTO articles (id, title, slug, content, image_url, published, author_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, title, slug, content, image_url, published, author_id, created_at, updated_at
	`

	var created model.Article
	err := r.db.QueryRowxContext(
		ctx,
		query,
		article.ID,
		article.Title,
		article.Slug,
		article.Content,
		article.ImageURL,
		article.Published,
		article.AuthorID,
	).StructScan(&created)
	if err != nil {
		r.logger.Error("Failed to create article", zap.Error(err))
		return nil, err
	}

	return &created, nil
}

// Update modifies an article owned by authorID. The ownership check is a
// combined condition in the statement itself, so a missing article and an
// article owned by someone else both come back as (nil, nil).
func (r *ArticleRepository) Update(ctx context.Context, id, authorID string, upd *model.ArticleUpdate) (*model.Article, error) {
	query := `
		UPDATE articles
		SET title = $3, content = $4, image_url = COALESCE($5, image_url), updated_at = NOW()
		WHERE id = $1 AND author_id = $2
		RETURNING id, title, slug, content, image_url, published, author_id, created_at, updated_at
	`

	var updated model.Article
	err := r.db.QueryRowxContext(ctx, query, id, authorID, upd.Title, upd.Content, upd.ImageURL).StructScan(&updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to update article", zap.Error(err), zap.String("id", id))
		return nil, err
	}

	return &updated, nil
}

// Delete removes an article owned by authorID with the same combined
// condition as Update; join rows cascade in the schema.
func (r *ArticleRepository) Delete(ctx context.Context, id, authorID string) (*model.Article, error) {
	query := `
		DELETE FROM articles
		WHERE id = $1 AND author_id = $2
		RETURNING id, title, slug, content, image_url, published, author_id, created_at, updated_at
	`

	var deleted model.Article
	err := r.db.QueryRowxContext(ctx, query, id, authorID).StructScan(&deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to delete article", zap.Error(err), zap.String("id", id))
		return nil, err
	}

	return &deleted, nil
}
