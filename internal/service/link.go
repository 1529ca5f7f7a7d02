package service

import (
	"context"
	"strings"

	"devfolio/internal/model"
	"devfolio/internal/repository"
)

// LinkService manages the external links shown on a profile.
type LinkService struct {
	linkRepo repository.LinkRepository
}

func NewLinkService(linkRepo repository.LinkRepository) *LinkService {
	return &LinkService{linkRepo: linkRepo}
}

// Create adds a link to the actor's profile.
func (s *LinkService) Create(ctx context.Context, userID string, req model.CreateLinkRequest) (*model.ExternalLink, error) {
	title := strings.TrimSpace(req.Title)
	url := strings.TrimSpace(req.URL)
	if title == "" {
		return nil, model.ErrLinkTitleRequired
	}
	if url == "" {
		return nil, model.ErrLinkURLRequired
	}

	link := &model.ExternalLink{
		UserID: userID,
		Title:  title,
		URL:    url,
	}
	if err := s.linkRepo.Create(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

// Delete removes a link after verifying it belongs to the actor.
func (s *LinkService) Delete(ctx context.Context, linkID, actorID string) error {
	link, err := s.linkRepo.GetByID(ctx, linkID)
	if err != nil {
		return err
	}
	if link.UserID != actorID {
		// Don't reveal that another user's link exists
		return model.ErrLinkNotFound
	}
	return s.linkRepo.Delete(ctx, linkID)
}

// ListByUser returns a user's links in insertion order.
func (s *LinkService) ListByUser(ctx context.Context, userID string) ([]model.ExternalLink, error) {
	return s.linkRepo.ListByUser(ctx, userID)
}
