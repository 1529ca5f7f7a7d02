package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"devfolio/internal/cache"
	"devfolio/internal/model"
)

// Hand-rolled mocks for the repository interfaces. Each method delegates to an
// optional closure so every test defines exactly the behavior it needs; the
// zero value behaves like an empty database.

// ----------------------------------------------------------------------------
// mockUserRepository
// ----------------------------------------------------------------------------

type mockUserRepository struct {
	createFn           func(ctx context.Context, user *model.User) error
	getByIDFn          func(ctx context.Context, id string) (*model.User, error)
	getByUsernameFn    func(ctx context.Context, username string) (*model.User, error)
	getByExternalIDFn  func(ctx context.Context, externalID string) (*model.User, error)
	existsByUsernameFn func(ctx context.Context, username, excludeID string) (bool, error)
	existsByEmailFn    func(ctx context.Context, email, excludeID string) (bool, error)
	existsFn           func(ctx context.Context, id string) (bool, error)
	getSummariesFn     func(ctx context.Context, ids []string) (map[string]model.UserSummary, error)
	listFn             func(ctx context.Context) ([]model.UserSummary, error)
	updateProfileFn    func(ctx context.Context, id string, req model.UpdateProfileRequest) (*model.User, error)

	createCalls []*model.User
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls = append(m.createCalls, user)
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	if m.getByExternalIDFn != nil {
		return m.getByExternalIDFn(ctx, externalID)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username, excludeID string) (bool, error) {
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username, excludeID)
	}
	return false, nil
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	if m.existsByEmailFn != nil {
		return m.existsByEmailFn(ctx, email, excludeID)
	}
	return false, nil
}

func (m *mockUserRepository) Exists(ctx context.Context, id string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, id)
	}
	return false, nil
}

func (m *mockUserRepository) GetSummaries(ctx context.Context, ids []string) (map[string]model.UserSummary, error) {
	if m.getSummariesFn != nil {
		return m.getSummariesFn(ctx, ids)
	}
	return map[string]model.UserSummary{}, nil
}

func (m *mockUserRepository) List(ctx context.Context) ([]model.UserSummary, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []model.UserSummary{}, nil
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, id string, req model.UpdateProfileRequest) (*model.User, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, id, req)
	}
	return nil, model.ErrUserNotFound
}

// ----------------------------------------------------------------------------
// mockRelationRepository
// ----------------------------------------------------------------------------

type edgeCall struct {
	Rel      model.Relation
	SourceID string
	TargetID string
}

type mockRelationRepository struct {
	existsFn            func(ctx context.Context, rel model.Relation, sourceID, targetID string) (bool, error)
	createFn            func(ctx context.Context, rel model.Relation, sourceID, targetID string) (*model.Edge, error)
	deleteFn            func(ctx context.Context, rel model.Relation, sourceID, targetID string) error
	countByTargetFn     func(ctx context.Context, rel model.Relation, targetID string) (int, error)
	countBySourceFn     func(ctx context.Context, rel model.Relation, sourceID string) (int, error)
	countManyByTargetFn func(ctx context.Context, rel model.Relation, targetIDs []string) (map[string]int, error)
	checkManyFn         func(ctx context.Context, rel model.Relation, sourceID string, targetIDs []string) (map[string]bool, error)

	createCalls []edgeCall
	deleteCalls []edgeCall
}

func (m *mockRelationRepository) Exists(ctx context.Context, rel model.Relation, sourceID, targetID string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, rel, sourceID, targetID)
	}
	return false, nil
}

func (m *mockRelationRepository) Create(ctx context.Context, rel model.Relation, sourceID, targetID string) (*model.Edge, error) {
	m.createCalls = append(m.createCalls, edgeCall{rel, sourceID, targetID})
	if m.createFn != nil {
		return m.createFn(ctx, rel, sourceID, targetID)
	}
	return &model.Edge{ID: "edge-id", SourceID: sourceID, TargetID: targetID}, nil
}

func (m *mockRelationRepository) Delete(ctx context.Context, rel model.Relation, sourceID, targetID string) error {
	m.deleteCalls = append(m.deleteCalls, edgeCall{rel, sourceID, targetID})
	if m.deleteFn != nil {
		return m.deleteFn(ctx, rel, sourceID, targetID)
	}
	return nil
}

func (m *mockRelationRepository) CountByTarget(ctx context.Context, rel model.Relation, targetID string) (int, error) {
	if m.countByTargetFn != nil {
		return m.countByTargetFn(ctx, rel, targetID)
	}
	return 0, nil
}

func (m *mockRelationRepository) CountBySource(ctx context.Context, rel model.Relation, sourceID string) (int, error) {
	if m.countBySourceFn != nil {
		return m.countBySourceFn(ctx, rel, sourceID)
	}
	return 0, nil
}

func (m *mockRelationRepository) CountManyByTarget(ctx context.Context, rel model.Relation, targetIDs []string) (map[string]int, error) {
	if m.countManyByTargetFn != nil {
		return m.countManyByTargetFn(ctx, rel, targetIDs)
	}
	result := make(map[string]int, len(targetIDs))
	for _, id := range targetIDs {
		result[id] = 0
	}
	return result, nil
}

func (m *mockRelationRepository) CheckMany(ctx context.Context, rel model.Relation, sourceID string, targetIDs []string) (map[string]bool, error) {
	if m.checkManyFn != nil {
		return m.checkManyFn(ctx, rel, sourceID, targetIDs)
	}
	result := make(map[string]bool, len(targetIDs))
	for _, id := range targetIDs {
		result[id] = false
	}
	return result, nil
}

// memoryRelationRepository is a mutex-protected in-memory relation store with
// the same atomicity contract as the Postgres implementation: Create and
// Delete are single serialized operations that report ErrEdgeExists and
// ErrEdgeNotFound. Used by the convergence tests.
type memoryRelationRepository struct {
	mu    sync.Mutex
	edges map[edgeCall]bool
}

func newMemoryRelationRepository() *memoryRelationRepository {
	return &memoryRelationRepository{edges: make(map[edgeCall]bool)}
}

func (m *memoryRelationRepository) key(rel model.Relation, sourceID, targetID string) edgeCall {
	return edgeCall{Rel: rel, SourceID: sourceID, TargetID: targetID}
}

func (m *memoryRelationRepository) Exists(ctx context.Context, rel model.Relation, sourceID, targetID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.edges[m.key(rel, sourceID, targetID)], nil
}

func (m *memoryRelationRepository) Create(ctx context.Context, rel model.Relation, sourceID, targetID string) (*model.Edge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := m.key(rel, sourceID, targetID)
	if m.edges[k] {
		return nil, model.ErrEdgeExists
	}
	m.edges[k] = true
	return &model.Edge{
		ID:        fmt.Sprintf("%s:%s:%s", rel, sourceID, targetID),
		SourceID:  sourceID,
		TargetID:  targetID,
		CreatedAt: time.Now(),
	}, nil
}

func (m *memoryRelationRepository) Delete(ctx context.Context, rel model.Relation, sourceID, targetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := m.key(rel, sourceID, targetID)
	if !m.edges[k] {
		return model.ErrEdgeNotFound
	}
	delete(m.edges, k)
	return nil
}

func (m *memoryRelationRepository) CountByTarget(ctx context.Context, rel model.Relation, targetID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for k := range m.edges {
		if k.Rel == rel && k.TargetID == targetID {
			count++
		}
	}
	return count, nil
}

func (m *memoryRelationRepository) CountBySource(ctx context.Context, rel model.Relation, sourceID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for k := range m.edges {
		if k.Rel == rel && k.SourceID == sourceID {
			count++
		}
	}
	return count, nil
}

func (m *memoryRelationRepository) CountManyByTarget(ctx context.Context, rel model.Relation, targetIDs []string) (map[string]int, error) {
	result := make(map[string]int, len(targetIDs))
	for _, id := range targetIDs {
		n, _ := m.CountByTarget(ctx, rel, id)
		result[id] = n
	}
	return result, nil
}

func (m *memoryRelationRepository) CheckMany(ctx context.Context, rel model.Relation, sourceID string, targetIDs []string) (map[string]bool, error) {
	result := make(map[string]bool, len(targetIDs))
	for _, id := range targetIDs {
		present, _ := m.Exists(ctx, rel, sourceID, id)
		result[id] = present
	}
	return result, nil
}

// ----------------------------------------------------------------------------
// mockProjectRepository
// ----------------------------------------------------------------------------

type projectCreateCall struct {
	Project    *model.Project
	TechStacks []string
}

type projectUpdateCall struct {
	ID  string
	Req model.UpdateProjectRequest
}

type mockProjectRepository struct {
	createFn             func(ctx context.Context, project *model.Project, techStacks []string) error
	getByIDFn            func(ctx context.Context, id string) (*model.Project, error)
	updateFn             func(ctx context.Context, id string, req model.UpdateProjectRequest) (*model.Project, error)
	deleteFn             func(ctx context.Context, id string) error
	listByOwnerFn        func(ctx context.Context, ownerID string) ([]model.Project, error)
	listBookmarkedByFn   func(ctx context.Context, userID string) ([]model.Project, error)
	searchByTechFn       func(ctx context.Context, tech string) ([]model.Project, error)
	listAllFn            func(ctx context.Context) ([]model.Project, error)
	getByIDsFn           func(ctx context.Context, ids []string) ([]model.Project, error)
	existsFn             func(ctx context.Context, id string) (bool, error)
	countByOwnerFn       func(ctx context.Context, ownerID string) (int, error)
	countLikesForOwnerFn func(ctx context.Context, ownerID string) (int, error)
	recentIDsFn          func(ctx context.Context, limit int) ([]model.Project, error)

	createCalls []projectCreateCall
	updateCalls []projectUpdateCall
	deleteCalls []string
}

func (m *mockProjectRepository) Create(ctx context.Context, project *model.Project, techStacks []string) error {
	m.createCalls = append(m.createCalls, projectCreateCall{Project: project, TechStacks: techStacks})
	if m.createFn != nil {
		return m.createFn(ctx, project, techStacks)
	}
	project.ID = "generated-id"
	return nil
}

func (m *mockProjectRepository) GetByID(ctx context.Context, id string) (*model.Project, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrProjectNotFound
}

func (m *mockProjectRepository) Update(ctx context.Context, id string, req model.UpdateProjectRequest) (*model.Project, error) {
	m.updateCalls = append(m.updateCalls, projectUpdateCall{ID: id, Req: req})
	if m.updateFn != nil {
		return m.updateFn(ctx, id, req)
	}
	return nil, model.ErrProjectNotFound
}

func (m *mockProjectRepository) Delete(ctx context.Context, id string) error {
	m.deleteCalls = append(m.deleteCalls, id)
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockProjectRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Project, error) {
	if m.listByOwnerFn != nil {
		return m.listByOwnerFn(ctx, ownerID)
	}
	return []model.Project{}, nil
}

func (m *mockProjectRepository) ListBookmarkedBy(ctx context.Context, userID string) ([]model.Project, error) {
	if m.listBookmarkedByFn != nil {
		return m.listBookmarkedByFn(ctx, userID)
	}
	return []model.Project{}, nil
}

func (m *mockProjectRepository) SearchByTech(ctx context.Context, tech string) ([]model.Project, error) {
	if m.searchByTechFn != nil {
		return m.searchByTechFn(ctx, tech)
	}
	return []model.Project{}, nil
}

func (m *mockProjectRepository) ListAll(ctx context.Context) ([]model.Project, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return []model.Project{}, nil
}

func (m *mockProjectRepository) GetByIDs(ctx context.Context, ids []string) ([]model.Project, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, ids)
	}
	return []model.Project{}, nil
}

func (m *mockProjectRepository) Exists(ctx context.Context, id string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, id)
	}
	return false, nil
}

func (m *mockProjectRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	if m.countByOwnerFn != nil {
		return m.countByOwnerFn(ctx, ownerID)
	}
	return 0, nil
}

func (m *mockProjectRepository) CountLikesForOwner(ctx context.Context, ownerID string) (int, error) {
	if m.countLikesForOwnerFn != nil {
		return m.countLikesForOwnerFn(ctx, ownerID)
	}
	return 0, nil
}

func (m *mockProjectRepository) RecentIDs(ctx context.Context, limit int) ([]model.Project, error) {
	if m.recentIDsFn != nil {
		return m.recentIDsFn(ctx, limit)
	}
	return []model.Project{}, nil
}

// ----------------------------------------------------------------------------
// mockLinkRepository
// ----------------------------------------------------------------------------

type mockLinkRepository struct {
	createFn     func(ctx context.Context, link *model.ExternalLink) error
	getByIDFn    func(ctx context.Context, id string) (*model.ExternalLink, error)
	deleteFn     func(ctx context.Context, id string) error
	listByUserFn func(ctx context.Context, userID string) ([]model.ExternalLink, error)

	deleteCalls []string
}

func (m *mockLinkRepository) Create(ctx context.Context, link *model.ExternalLink) error {
	if m.createFn != nil {
		return m.createFn(ctx, link)
	}
	link.ID = "generated-id"
	return nil
}

func (m *mockLinkRepository) GetByID(ctx context.Context, id string) (*model.ExternalLink, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrLinkNotFound
}

func (m *mockLinkRepository) Delete(ctx context.Context, id string) error {
	m.deleteCalls = append(m.deleteCalls, id)
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockLinkRepository) ListByUser(ctx context.Context, userID string) ([]model.ExternalLink, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID)
	}
	return []model.ExternalLink{}, nil
}

// ----------------------------------------------------------------------------
// mockExploreCache
// ----------------------------------------------------------------------------

type mockExploreCache struct {
	recentFn func(ctx context.Context, limit int) ([]string, error)

	addCalls    []string
	removeCalls []string
	warmCalls   [][]cache.ProjectScore
}

func (m *mockExploreCache) Add(ctx context.Context, projectID string, timestamp int64) error {
	m.addCalls = append(m.addCalls, projectID)
	return nil
}

func (m *mockExploreCache) Remove(ctx context.Context, projectID string) error {
	m.removeCalls = append(m.removeCalls, projectID)
	return nil
}

func (m *mockExploreCache) Recent(ctx context.Context, limit int) ([]string, error) {
	if m.recentFn != nil {
		return m.recentFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockExploreCache) Warm(ctx context.Context, projects []cache.ProjectScore) error {
	m.warmCalls = append(m.warmCalls, projects)
	return nil
}

func (m *mockExploreCache) Size(ctx context.Context) (int64, error) {
	return 0, nil
}
