package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/projecthub/internal/auth"
	"github.com/prn-tf/projecthub/internal/cache/memory"
	"github.com/prn-tf/projecthub/internal/domain"
	"github.com/prn-tf/projecthub/internal/repository"
)

func newProjectService(repo *MockProjectRepository, cache repository.Cache) *ProjectService {
	return NewProjectService(repo, auth.NewGuard(nil), cache, nil, zerolog.Nop())
}

var baseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func seedProject(repo *MockProjectRepository, id, owner string, status domain.ProjectStatus, featured bool, age time.Duration) *domain.Project {
	p := &domain.Project{
		ID:           id,
		Title:        "Project " + id,
		Description:  "desc " + id,
		Price:        10,
		Category:     "Web",
		Technologies: "Go, React",
		Status:       status,
		Featured:     featured,
		OwnerID:      owner,
		CreatedAt:    baseTime.Add(-age),
		UpdatedAt:    baseTime.Add(-age),
	}
	repo.Add(p)
	return p
}

func validInput() ProjectInput {
	return ProjectInput{
		Title:       "X",
		Description: "A project",
		Price:       "10",
		Category:    "Web",
	}
}

func TestProjectService_OwnershipRules(t *testing.T) {
	tests := []struct {
		name    string
		session *auth.Session
		wantErr error
	}{
		{name: "owner", session: userSession("alice")},
		{name: "other user", session: userSession("bob"), wantErr: domain.ErrForbidden},
		{name: "admin", session: adminSession("root")},
		{name: "anonymous", session: nil, wantErr: domain.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run("update/"+tt.name, func(t *testing.T) {
			repo := NewMockProjectRepository()
			seedProject(repo, "p1", "alice", domain.StatusActive, false, 0)
			svc := newProjectService(repo, nil)

			in := validInput()
			in.Title = "Renamed"
			_, err := svc.Update(context.Background(), tt.session, "p1", in)

			stored, _ := repo.GetByID(context.Background(), "p1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, "Project p1", stored.Title)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Renamed", stored.Title)
		})

		t.Run("delete/"+tt.name, func(t *testing.T) {
			repo := NewMockProjectRepository()
			seedProject(repo, "p1", "alice", domain.StatusActive, false, 0)
			svc := newProjectService(repo, nil)

			err := svc.Delete(context.Background(), tt.session, "p1")

			_, getErr := repo.GetByID(context.Background(), "p1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.NoError(t, getErr)
				return
			}
			require.NoError(t, err)
			assert.ErrorIs(t, getErr, repository.ErrNotFound)
		})
	}
}

func TestProjectService_ForbiddenThenAdminFeatures(t *testing.T) {
	ctx := context.Background()
	accounts := NewMockAccountRepository()
	projects := NewMockProjectRepository()
	accountSvc := newAccountService(accounts, projects)
	projectSvc := newProjectService(projects, nil)

	alice, err := accountSvc.Provision(ctx, CreateAccountInput{Username: "alice", Password: "secret123", Role: domain.RoleUser})
	require.NoError(t, err)
	bob, err := accountSvc.Provision(ctx, CreateAccountInput{Username: "bob", Password: "bobpass1", Role: domain.RoleUser})
	require.NoError(t, err)
	root, err := accountSvc.Provision(ctx, CreateAccountInput{Username: "root", Password: "rootpass", Role: domain.RoleAdmin})
	require.NoError(t, err)

	aliceSession := &auth.Session{AccountID: alice.ID, Username: alice.Username, Role: alice.Role}
	x, err := projectSvc.Create(ctx, aliceSession, ProjectInput{
		Title: "X", Description: "desc", Price: "10", Category: "Web", Status: domain.StatusActive,
	})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, x.OwnerID)

	loggedIn, err := accountSvc.Login(ctx, bob.Username, "bobpass1")
	require.NoError(t, err)
	bobSession := &auth.Session{AccountID: loggedIn.ID, Username: loggedIn.Username, Role: loggedIn.Role}

	_, err = projectSvc.Update(ctx, bobSession, x.ID, ProjectInput{
		Title: "X", Description: "desc", Price: "10", Category: "Web",
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	loggedIn, err = accountSvc.Login(ctx, root.Username, "rootpass")
	require.NoError(t, err)
	rootSession := &auth.Session{AccountID: loggedIn.ID, Username: loggedIn.Username, Role: loggedIn.Role}

	featured := true
	updated, err := projectSvc.Update(ctx, rootSession, x.ID, ProjectInput{
		Title: "X", Description: "desc", Price: "10", Category: "Web", Featured: &featured,
	})
	require.NoError(t, err)
	assert.True(t, updated.Featured)

	stored, err := projectSvc.Get(ctx, nil, x.ID)
	require.NoError(t, err)
	assert.True(t, stored.Featured)
	assert.Equal(t, alice.ID, stored.OwnerID, "admin edits keep the owner")
}

func TestProjectService_FeaturedIgnoredForUsers(t *testing.T) {
	ctx := context.Background()
	repo := NewMockProjectRepository()
	svc := newProjectService(repo, nil)
	featured := true

	in := validInput()
	in.Featured = &featured
	created, err := svc.Create(ctx, userSession("alice"), in)
	require.NoError(t, err)
	assert.False(t, created.Featured, "create by USER ignores featured")

	seedProject(repo, "p1", "alice", domain.StatusActive, true, 0)
	notFeatured := false
	in.Featured = &notFeatured
	updated, err := svc.Update(ctx, userSession("alice"), "p1", in)
	require.NoError(t, err)
	assert.True(t, updated.Featured, "update by USER keeps the stored value")

	in.Featured = nil
	updated, err = svc.Update(ctx, adminSession("root"), "p1", in)
	require.NoError(t, err)
	assert.True(t, updated.Featured, "nil featured keeps the stored value")
}

func TestProjectService_CreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		input func(*ProjectInput)
	}{
		{"missing title", func(in *ProjectInput) { in.Title = " " }},
		{"missing description", func(in *ProjectInput) { in.Description = "" }},
		{"missing category", func(in *ProjectInput) { in.Category = "" }},
		{"negative price", func(in *ProjectInput) { in.Price = "-1" }},
		{"non-numeric price", func(in *ProjectInput) { in.Price = "ten" }},
		{"missing price", func(in *ProjectInput) { in.Price = "" }},
		{"price above column range", func(in *ProjectInput) { in.Price = "1e15" }},
		{"price with sub-cent precision", func(in *ProjectInput) { in.Price = "0.005" }},
		{"unknown status", func(in *ProjectInput) { in.Status = "published" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockProjectRepository()
			svc := newProjectService(repo, nil)

			in := validInput()
			tt.input(&in)
			_, err := svc.Create(context.Background(), userSession("alice"), in)

			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Empty(t, repo.projects)
		})
	}
}

func TestProjectService_CreateDefaults(t *testing.T) {
	repo := NewMockProjectRepository()
	svc := newProjectService(repo, nil)

	in := validInput()
	in.Price = "19.99"
	in.DemoURL = "  "
	in.SourceURL = "https://github.com/x/y"
	p, err := svc.Create(context.Background(), userSession("alice"), in)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusActive, p.Status)
	assert.Equal(t, 19.99, p.Price)
	assert.Nil(t, p.DemoURL)
	require.NotNil(t, p.SourceURL)
	assert.Equal(t, "https://github.com/x/y", *p.SourceURL)

	_, err = svc.Create(context.Background(), nil, in)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestProjectService_UpdateStatusTransitions(t *testing.T) {
	repo := NewMockProjectRepository()
	seedProject(repo, "p1", "alice", domain.StatusActive, false, 0)
	svc := newProjectService(repo, nil)
	owner := userSession("alice")

	for _, status := range []domain.ProjectStatus{domain.StatusDraft, domain.StatusArchived, domain.StatusActive, domain.StatusArchived, domain.StatusDraft} {
		in := validInput()
		in.Status = status
		p, err := svc.Update(context.Background(), owner, "p1", in)
		require.NoError(t, err)
		assert.Equal(t, status, p.Status)
	}

	in := validInput()
	p, err := svc.Update(context.Background(), owner, "p1", in)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, p.Status, "empty status keeps the stored value")
}

func TestProjectService_ListPublicOnlyActive(t *testing.T) {
	repo := NewMockProjectRepository()
	statuses := []domain.ProjectStatus{domain.StatusActive, domain.StatusDraft, domain.StatusArchived}
	for i := 0; i < 12; i++ {
		seedProject(repo, fmt.Sprintf("p%d", i), "alice", statuses[i%3], i%2 == 0, time.Duration(i)*time.Hour)
	}
	svc := newProjectService(repo, nil)

	for _, featuredOnly := range []bool{false, true} {
		projects, err := svc.ListPublic(context.Background(), "", featuredOnly)
		require.NoError(t, err)
		require.NotEmpty(t, projects)
		for _, p := range projects {
			assert.Equal(t, domain.StatusActive, p.Status)
			if featuredOnly {
				assert.True(t, p.Featured)
			}
		}
	}

	projects, err := svc.ListPublic(context.Background(), "", false)
	require.NoError(t, err)
	assert.True(t, projects[0].Featured, "featured projects come first")
}

func TestProjectService_Get(t *testing.T) {
	repo := NewMockProjectRepository()
	seedProject(repo, "draft", "alice", domain.StatusDraft, false, 0)
	svc := newProjectService(repo, nil)
	ctx := context.Background()

	_, err := svc.Get(ctx, nil, "draft")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(ctx, userSession("bob"), "draft")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	p, err := svc.Get(ctx, userSession("alice"), "draft")
	require.NoError(t, err)
	assert.Equal(t, "draft", p.ID)

	_, err = svc.Get(ctx, adminSession("root"), "draft")
	assert.NoError(t, err)

	_, err = svc.Get(ctx, nil, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectService_MissingIDs(t *testing.T) {
	svc := newProjectService(NewMockProjectRepository(), nil)
	ctx := context.Background()

	err := svc.Delete(ctx, adminSession("root"), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrInternal)

	_, err = svc.Update(ctx, adminSession("root"), "missing", validInput())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Checkout(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectService_UpdateStoreFailure(t *testing.T) {
	repo := NewMockProjectRepository()
	seedProject(repo, "p1", "alice", domain.StatusActive, false, 0)
	repo.updateErr = errStoreDown
	svc := newProjectService(repo, nil)

	_, err := svc.Update(context.Background(), userSession("alice"), "p1", validInput())
	assert.ErrorIs(t, err, domain.ErrInternal)
	assert.NotContains(t, domain.PublicMessage(err), "connection refused")
}

func TestProjectService_ListDashboard(t *testing.T) {
	repo := NewMockProjectRepository()
	seedProject(repo, "a1", "alice", domain.StatusDraft, false, 2*time.Hour)
	seedProject(repo, "a2", "alice", domain.StatusActive, true, 3*time.Hour)
	seedProject(repo, "b1", "bob", domain.StatusArchived, false, time.Hour)
	svc := newProjectService(repo, nil)
	ctx := context.Background()

	own, err := svc.ListDashboard(ctx, userSession("alice"))
	require.NoError(t, err)
	require.Len(t, own, 2)
	assert.Equal(t, "a1", own[0].ID, "dashboard is newest first")

	all, err := svc.ListDashboard(ctx, adminSession("root"))
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = svc.ListDashboard(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestProjectService_Search(t *testing.T) {
	repo := NewMockProjectRepository()
	for i := 0; i < 10; i++ {
		seedProject(repo, fmt.Sprintf("p%d", i), "alice", domain.StatusActive, false, time.Duration(i)*time.Minute)
	}
	seedProject(repo, "hidden", "alice", domain.StatusDraft, false, 0)
	svc := newProjectService(repo, nil)
	ctx := context.Background()

	for _, q := range []string{"", "a", " g "} {
		results, err := svc.Search(ctx, q)
		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	}
	assert.Equal(t, 0, repo.searchCalls, "short queries never reach the store")

	results, err := svc.Search(ctx, "react")
	require.NoError(t, err)
	assert.Len(t, results, MaxSearchResults)
	assert.Equal(t, 1, repo.searchCalls)
	assert.Equal(t, MaxSearchResults, repo.searchLimit)
	for _, r := range results {
		assert.NotEqual(t, "hidden", r.ID)
	}
}

func TestProjectService_RelatedAndCheckout(t *testing.T) {
	repo := NewMockProjectRepository()
	for i := 0; i < 5; i++ {
		seedProject(repo, fmt.Sprintf("p%d", i), "alice", domain.StatusActive, false, time.Duration(i)*time.Hour)
	}
	other := seedProject(repo, "mobile", "alice", domain.StatusActive, false, 0)
	other.Category = "Mobile"
	repo.Add(other)
	seedProject(repo, "draft", "alice", domain.StatusDraft, false, 0)
	svc := newProjectService(repo, nil)
	ctx := context.Background()

	related, err := svc.Related(ctx, "p0")
	require.NoError(t, err)
	assert.Len(t, related, MaxRelated)
	for _, p := range related {
		assert.NotEqual(t, "p0", p.ID)
		assert.Equal(t, "Web", p.Category)
	}

	_, err = svc.Related(ctx, "draft")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	p, err := svc.Checkout(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)

	_, err = svc.Checkout(ctx, "draft")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectService_CategoriesCached(t *testing.T) {
	repo := NewMockProjectRepository()
	seedProject(repo, "p1", "alice", domain.StatusActive, false, 0)
	cache := memory.NewCache(time.Minute)
	defer cache.Stop()
	svc := newProjectService(repo, cache)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		categories, err := svc.Categories(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Web"}, categories)
	}
	assert.Equal(t, 1, repo.categoriesCalls)

	in := validInput()
	in.Category = "Mobile"
	_, err := svc.Create(ctx, userSession("alice"), in)
	require.NoError(t, err)

	categories, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mobile", "Web"}, categories)
	assert.Equal(t, 2, repo.categoriesCalls)
}
