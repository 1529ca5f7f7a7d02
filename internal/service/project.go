package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"devfolio/internal/cache"
	"devfolio/internal/model"
	"devfolio/internal/repository"
)

// ProjectFilter selects which projects to list. At most one filter applies;
// precedence is Tech, then BookmarkedBy, then OwnerID, then everything.
type ProjectFilter struct {
	OwnerID      string
	BookmarkedBy string
	Tech         string
}

// ProjectService assembles project read views and owns the owner-gated write
// operations. Read views are decorated with tech stacks, owner summaries, like
// counts, and per-viewer flags.
type ProjectService struct {
	projectRepo  repository.ProjectRepository
	userRepo     repository.UserRepository
	relationRepo repository.RelationRepository
	explore      cache.ExploreCache
}

func NewProjectService(
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	relationRepo repository.RelationRepository,
	explore cache.ExploreCache,
) *ProjectService {
	return &ProjectService{
		projectRepo:  projectRepo,
		userRepo:     userRepo,
		relationRepo: relationRepo,
		explore:      explore,
	}
}

// Create validates and inserts a new project with its tech stacks.
func (s *ProjectService) Create(ctx context.Context, ownerID string, req model.CreateProjectRequest) (*model.Project, error) {
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	if title == "" {
		return nil, model.ErrTitleRequired
	}
	if description == "" {
		return nil, model.ErrDescriptionRequired
	}

	project := &model.Project{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		ImageURL:    req.ImageURL,
		GithubURL:   trimURL(req.GithubURL),
		LiveURL:     trimURL(req.LiveURL),
	}

	// Names are trimmed but deliberately not deduplicated: a duplicate tag is
	// stored as a separate row.
	if err := s.projectRepo.Create(ctx, project, trimAll(req.TechStacks)); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	if s.explore != nil {
		if err := s.explore.Add(ctx, project.ID, project.CreatedAt.Unix()); err != nil {
			log.Printf("[ProjectService] Failed to index project %s: %v", project.ID, err)
		}
	}

	if err := s.decorate(ctx, projectSlice(project), &ownerID); err != nil {
		return nil, err
	}
	return project, nil
}

// Get returns a single decorated project view.
func (s *ProjectService) Get(ctx context.Context, projectID string, viewerID *string) (*model.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.decorate(ctx, projectSlice(project), viewerID); err != nil {
		return nil, err
	}
	return project, nil
}

// List returns decorated projects matching the filter, newest first.
func (s *ProjectService) List(ctx context.Context, filter ProjectFilter, viewerID *string) ([]model.Project, error) {
	var projects []model.Project
	var err error

	switch {
	case filter.Tech != "":
		projects, err = s.projectRepo.SearchByTech(ctx, filter.Tech)
	case filter.BookmarkedBy != "":
		projects, err = s.projectRepo.ListBookmarkedBy(ctx, filter.BookmarkedBy)
	case filter.OwnerID != "":
		projects, err = s.projectRepo.ListByOwner(ctx, filter.OwnerID)
	default:
		projects, err = s.projectRepo.ListAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	if err := s.decorateSlice(ctx, projects, viewerID); err != nil {
		return nil, err
	}
	return projects, nil
}

// Explore returns the newest projects across all users, served from the Redis
// index when it is warm and rebuilt from the database when it is not. The
// cache is an accelerator only; any cache failure falls back to the database.
func (s *ProjectService) Explore(ctx context.Context, limit int, viewerID *string) ([]model.Project, error) {
	if s.explore == nil {
		return s.exploreFromDB(ctx, limit, viewerID)
	}

	ids, err := s.explore.Recent(ctx, limit)
	if err != nil {
		log.Printf("[ProjectService] Explore index unavailable, using database: %v", err)
		return s.exploreFromDB(ctx, limit, viewerID)
	}
	if len(ids) == 0 {
		return s.exploreFromDB(ctx, limit, viewerID)
	}

	projects, err := s.projectRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if err := s.decorateSlice(ctx, projects, viewerID); err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *ProjectService) exploreFromDB(ctx context.Context, limit int, viewerID *string) ([]model.Project, error) {
	projects, err := s.projectRepo.RecentIDs(ctx, limit)
	if err != nil {
		return nil, err
	}

	if s.explore != nil && len(projects) > 0 {
		scores := make([]cache.ProjectScore, len(projects))
		for i, p := range projects {
			scores[i] = cache.ProjectScore{ProjectID: p.ID, Timestamp: p.CreatedAt.Unix()}
		}
		if err := s.explore.Warm(ctx, scores); err != nil {
			log.Printf("[ProjectService] Failed to warm explore index: %v", err)
		}
	}

	// RecentIDs returns bare rows; re-fetch with stacks attached
	ids := make([]string, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}
	projects, err = s.projectRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if err := s.decorateSlice(ctx, projects, viewerID); err != nil {
		return nil, err
	}
	return projects, nil
}

// Update validates ownership and rewrites the project. A non-nil tech-stack
// list replaces the full tag set; concurrent tag additions by another writer
// are lost, which is acceptable for single-owner mutation.
func (s *ProjectService) Update(ctx context.Context, projectID, actorID string, req model.UpdateProjectRequest) (*model.Project, error) {
	existing, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if existing.OwnerID != actorID {
		return nil, model.ErrNotProjectOwner
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if req.Title == "" {
		return nil, model.ErrTitleRequired
	}
	if req.Description == "" {
		return nil, model.ErrDescriptionRequired
	}
	req.GithubURL = trimURL(req.GithubURL)
	req.LiveURL = trimURL(req.LiveURL)
	if req.TechStacks != nil {
		req.TechStacks = trimAll(req.TechStacks)
	}

	project, err := s.projectRepo.Update(ctx, projectID, req)
	if err != nil {
		return nil, err
	}
	if err := s.decorate(ctx, projectSlice(project), &actorID); err != nil {
		return nil, err
	}
	return project, nil
}

// Delete validates ownership and removes the project together with its likes,
// bookmarks and tech stacks.
func (s *ProjectService) Delete(ctx context.Context, projectID, actorID string) error {
	existing, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if existing.OwnerID != actorID {
		return model.ErrNotProjectOwner
	}

	if err := s.projectRepo.Delete(ctx, projectID); err != nil {
		// A concurrent delete already removed it; the desired end state holds.
		if errors.Is(err, model.ErrProjectNotFound) {
			return nil
		}
		return err
	}

	if s.explore != nil {
		if err := s.explore.Remove(ctx, projectID); err != nil {
			log.Printf("[ProjectService] Failed to deindex project %s: %v", projectID, err)
		}
	}
	return nil
}

// decorateSlice is decorate for a value slice.
func (s *ProjectService) decorateSlice(ctx context.Context, projects []model.Project, viewerID *string) error {
	ptrs := make([]*model.Project, len(projects))
	for i := range projects {
		ptrs[i] = &projects[i]
	}
	return s.decorate(ctx, ptrs, viewerID)
}

// decorate attaches owner summaries, like counts, and per-viewer flags using
// one batch query per concern (no per-project roundtrips). Decoration failures
// on viewer flags degrade to false rather than failing the whole read.
func (s *ProjectService) decorate(ctx context.Context, projects []*model.Project, viewerID *string) error {
	if len(projects) == 0 {
		return nil
	}

	ids := make([]string, len(projects))
	ownerIDs := make([]string, 0, len(projects))
	seen := make(map[string]bool)
	for i, p := range projects {
		ids[i] = p.ID
		if !seen[p.OwnerID] {
			seen[p.OwnerID] = true
			ownerIDs = append(ownerIDs, p.OwnerID)
		}
	}

	owners, err := s.userRepo.GetSummaries(ctx, ownerIDs)
	if err != nil {
		return err
	}
	likeCounts, err := s.relationRepo.CountManyByTarget(ctx, model.RelationLike, ids)
	if err != nil {
		return err
	}

	var liked, bookmarked map[string]bool
	if viewerID != nil && *viewerID != "" {
		liked, err = s.relationRepo.CheckMany(ctx, model.RelationLike, *viewerID, ids)
		if err != nil {
			log.Printf("[ProjectService] Failed to check likes: %v", err)
			liked = nil
		}
		bookmarked, err = s.relationRepo.CheckMany(ctx, model.RelationBookmark, *viewerID, ids)
		if err != nil {
			log.Printf("[ProjectService] Failed to check bookmarks: %v", err)
			bookmarked = nil
		}
	}

	for _, p := range projects {
		if owner, ok := owners[p.OwnerID]; ok {
			o := owner
			p.Owner = &o
		}
		p.LikeCount = likeCounts[p.ID]
		if liked != nil {
			p.IsLiked = liked[p.ID]
		}
		if bookmarked != nil {
			p.IsBookmarked = bookmarked[p.ID]
		}
	}
	return nil
}

func projectSlice(p *model.Project) []*model.Project {
	return []*model.Project{p}
}

func trimURL(u *string) *string {
	if u == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*u)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func trimAll(names []string) []string {
	trimmed := make([]string, 0, len(names))
	for _, name := range names {
		if t := strings.TrimSpace(name); t != "" {
			trimmed = append(trimmed, t)
		}
	}
	return trimmed
}
