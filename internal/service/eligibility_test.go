package service

import (
	"context"
	"errors"
	"testing"

	"anoa.com/communityrewards/internal/model"
	"anoa.com/communityrewards/internal/repository"
	"anoa.com/communityrewards/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnregisteredTriggerPassesThrough(t *testing.T) {
	registry := NewEligibilityRegistry()

	err := registry.Check(context.Background(), "daily_checkin", uuid.New(), nil)
	assert.NoError(t, err)
}

func TestRegisteredRuleIsInvoked(t *testing.T) {
	registry := NewEligibilityRegistry()
	sentinel := errors.New("boom")
	registry.Register("community_post", func(ctx context.Context, userID uuid.UUID, subjectID *uuid.UUID) error {
		return sentinel
	})

	err := registry.Check(context.Background(), "community_post", uuid.New(), nil)
	assert.ErrorIs(t, err, sentinel)
}

func TestPostAuthorshipRule(t *testing.T) {
	db := newTestDB(t)
	postRepo := repository.NewPostRepository(db)
	rule := PostAuthorshipRule(postRepo)
	ctx := context.Background()

	author := model.User{Username: "author", Email: "author@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&author).Error)
	post := model.Post{UserID: author.ID, Title: "hi", Content: "hello"}
	require.NoError(t, db.Create(&post).Error)

	t.Run("missing subject", func(t *testing.T) {
		err := rule(ctx, author.ID, nil)
		assert.ErrorIs(t, err, apperror.ErrInvalidArgument)
	})

	t.Run("subject not found", func(t *testing.T) {
		missing := uuid.New()
		err := rule(ctx, author.ID, &missing)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("not the author", func(t *testing.T) {
		err := rule(ctx, uuid.New(), &post.ID)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("author passes", func(t *testing.T) {
		err := rule(ctx, author.ID, &post.ID)
		assert.NoError(t, err)
	})
}
