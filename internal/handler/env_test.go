package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/projecthub/internal/auth"
	"github.com/prn-tf/projecthub/internal/domain"
	"github.com/prn-tf/projecthub/internal/metrics"
	"github.com/prn-tf/projecthub/internal/repository"
	"github.com/prn-tf/projecthub/internal/repository/sqlite"
	"github.com/prn-tf/projecthub/internal/service"
	"github.com/prn-tf/projecthub/internal/storage/filesystem"
)

const testPassword = "correct-horse"

// testEnv is a fully wired API over an in-memory SQLite database.
type testEnv struct {
	handler  http.Handler
	repos    *repository.Repositories
	accounts *service.AccountService
	projects *service.ProjectService
	stats    *service.StatsService
	metrics  *metrics.Metrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ctx := context.Background()
	logger := zerolog.Nop()

	db, err := sqlite.NewDB(ctx, sqlite.DefaultConfig(":memory:"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(ctx))
	repos := sqlite.NewRepositories(db)

	m := metrics.New()
	guard := auth.NewGuard(m)
	codec, err := auth.NewSessionCodec(auth.CodecConfig{
		HashKey: []byte(strings.Repeat("h", 32)),
	})
	require.NoError(t, err)

	backend, err := filesystem.NewBackend(t.TempDir(), "/uploads", logger)
	require.NoError(t, err)

	accounts := service.NewAccountService(repos.Account, repos.Project, guard, m, logger)
	projects := service.NewProjectService(repos.Project, guard, nil, m, logger)
	messages := service.NewMessageService(repos.Message, guard, nil, logger)
	settings := service.NewSettingService(repos.Setting, guard, nil, m, logger)
	inquiries := service.NewInquiryService(nil, logger)
	stats := service.NewStatsService(repos.Project, repos.Message, repos.Sale, guard, logger)
	uploads := service.NewUploadService(backend, 1024, guard, m, logger)

	router := NewRouter(RouterConfig{
		Auth:       NewAuthHandler(accounts, codec, logger),
		Projects:   NewProjectHandler(projects, logger),
		Contact:    NewContactHandler(messages, inquiries, logger),
		Settings:   NewSettingHandler(settings, logger),
		Users:      NewUserHandler(accounts, logger),
		Uploads:    NewUploadHandler(uploads, logger),
		Dashboard:  NewDashboardHandler(DashboardConfig{ProjectService: projects, StatsService: stats, Logger: logger}),
		Codec:      codec,
		Health:     db,
		Metrics:    m,
		UploadsDir: backend.Dir(),
		UploadsURL: "/uploads",
		Logger:     logger,
	})

	return &testEnv{
		handler:  router.Handler(),
		repos:    repos,
		accounts: accounts,
		projects: projects,
		stats:    stats,
		metrics:  m,
	}
}

// provision creates an account with testPassword.
func (e *testEnv) provision(t *testing.T, username string, role domain.Role) *domain.Account {
	t.Helper()
	account, err := e.accounts.Provision(context.Background(), service.CreateAccountInput{
		Username: username,
		Password: testPassword,
		Role:     role,
	})
	require.NoError(t, err)
	return account
}

// login provisions username and returns its session cookies.
func (e *testEnv) login(t *testing.T, username string, role domain.Role) (*domain.Account, []*http.Cookie) {
	t.Helper()
	account := e.provision(t, username, role)

	rec := e.do(t, http.MethodPost, "/api/admin", map[string]string{
		"username": username,
		"password": testPassword,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 3)
	return account, cookies
}

// do sends a JSON request through the router.
func (e *testEnv) do(t *testing.T, method, target string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[errorResponse](t, rec).Error
}
