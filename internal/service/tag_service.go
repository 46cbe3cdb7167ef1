package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wikimasters/wikimasters/internal/model"
)

var (
	// ErrTagInvalid reports an empty or oversized tag name
	ErrTagInvalid = errors.New("invalid tag name")
	// ErrTagExists reports a duplicate tag name
	ErrTagExists = errors.New("tag name already exists")
)

// TagStore is the relational access the tag service needs
type TagStore interface {
	GetAll(ctx context.Context) ([]model.Tag, error)
	Create(ctx context.Context, name string) (*model.Tag, error)
}

// TagService handles tag operations
type TagService struct {
	tagRepo TagStore
	logger  *zap.Logger
}

// NewTagService creates a new tag service
func NewTagService(tagRepo TagStore, logger *zap.Logger) *TagService {
	return &TagService{
		tagRepo: tagRepo,
		logger:  logger,
	}
}

// GetAllTags retrieves all tags ordered by name
func (s *TagService) GetAllTags(ctx context.Context) ([]model.Tag, error) {
	return s.tagRepo.GetAll(ctx)
}

// CreateTag creates a new tag after trimming and validating the name
func (s *TagService) CreateTag(ctx context.Context, name string) (*model.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrTagInvalid)
	}

	if len(name) > 50 {
		return nil, fmt.Errorf("%w: name cannot exceed 50 characters", ErrTagInvalid)
	}

	tag, err := s.tagRepo.Create(ctx, name)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return nil, ErrTagExists
		}
		return nil, err
	}

	return tag, nil
}
