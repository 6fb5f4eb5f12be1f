package service

import (
	"context"
	"errors"

	"github.com/classware/classman-backend/internal/authz"
	"github.com/classware/classman-backend/internal/model"
	"github.com/classware/classman-backend/internal/repository"
	"github.com/classware/classman-backend/internal/websocket"
)

// ErrPostNotVisible marks a post the caller may not see. Handlers map it to
// 404 so draft existence is not leaked.
var ErrPostNotVisible = errors.New("post not visible to caller")

// PostService handles announcement posts. Listing is identity-aware:
// anonymous and rejected callers see only published posts, an authenticated
// author additionally sees their own drafts.
type PostService struct {
	postRepo *repository.PostRepository
	hub      *websocket.Hub
}

// NewPostService creates a new PostService.
func NewPostService(postRepo *repository.PostRepository, hub *websocket.Hub) *PostService {
	return &PostService{postRepo: postRepo, hub: hub}
}

// ListFor retrieves the posts visible to the given identity.
func (s *PostService) ListFor(ctx context.Context, identity authz.Identity) ([]model.Post, error) {
	if identity.Authenticated() {
		return s.postRepo.ListVisibleTo(ctx, identity.User.ID)
	}
	return s.postRepo.ListPublished(ctx)
}

// GetFor retrieves one post if the identity may see it.
func (s *PostService) GetFor(ctx context.Context, id int64, identity authz.Identity) (*model.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Status == model.PostStatusPublished {
		return post, nil
	}
	if identity.Authenticated() && identity.User.ID == post.AuthorID {
		return post, nil
	}
	return nil, ErrPostNotVisible
}

// Create creates a new draft post.
func (s *PostService) Create(ctx context.Context, post *model.Post) error {
	post.Status = model.PostStatusDraft
	return s.postRepo.Create(ctx, post)
}

// Update modifies a post's title and content.
func (s *PostService) Update(ctx context.Context, post *model.Post) error {
	return s.postRepo.Update(ctx, post)
}

// Publish makes a post public and announces it to websocket subscribers.
func (s *PostService) Publish(ctx context.Context, id int64) (*model.Post, error) {
	if err := s.postRepo.SetStatus(ctx, id, model.PostStatusPublished); err != nil {
		return nil, err
	}
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.hub.BroadcastPostPublished(*post)
	return post, nil
}

// Delete removes a post.
func (s *PostService) Delete(ctx context.Context, id int64) error {
	return s.postRepo.Delete(ctx, id)
}
