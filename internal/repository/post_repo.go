package repository

import (
	"context"

	"anoa.com/communityrewards/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostRepository is the read-only view of forum posts this service
// needs: authorship checks before a subject-scoped grant. Posts are
// created and managed by the forum service, not here.
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// Create exists for seeding and tests only; the award path never writes posts.
func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	var post model.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}
