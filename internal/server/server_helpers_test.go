package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"alumnet/internal/config"
	"alumnet/internal/database"
	"alumnet/internal/middleware"
	"alumnet/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "server-test-secret-with-enough-length"

type testServer struct {
	t   *testing.T
	srv *Server
	app *fiber.App
	db  *gorm.DB
}

type testOption func(*config.Config)

func withFeatureFlags(raw string) testOption {
	return func(c *config.Config) { c.FeatureFlags = raw }
}

// newTestServer wires a full Server over a private in-memory sqlite database
// and no Redis, the way a single-instance development setup runs.
func newTestServer(t *testing.T, opts ...testOption) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))

	cfg := &config.Config{
		JWTSecret:           testJWTSecret,
		Port:                "0",
		Env:                 "test",
		ConnectionGemReward: 10,
		OTPTTLMinutes:       10,
		SessionTTLHours:     1,
		UploadDir:           t.TempDir(),
		AvatarMaxUploadMB:   1,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	srv, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)
	app := srv.NewApp()
	return &testServer{t: t, srv: srv, app: app, db: db}
}

func (ts *testServer) setNow(now time.Time) {
	ts.srv.SetClock(func() time.Time { return now })
}

type userOpt func(*models.User)

func alumnus(u *models.User) { u.IsAlumni = true }
func student(u *models.User) { u.IsStudent = true }
func admin(u *models.User)   { u.IsAdmin = true }

func inactive(u *models.User) { u.IsActive = false }

// createUser inserts a user directly and returns it with a signed token.
func (ts *testServer) createUser(username string, opts ...userOpt) (*models.User, string) {
	ts.t.Helper()
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "unused",
		IsActive: true,
	}
	for _, opt := range opts {
		opt(u)
	}
	require.NoError(ts.t, ts.db.Create(u).Error)

	token, _, err := middleware.IssueAccessToken(testJWTSecret, u.ID, u.Username, time.Hour, time.Now())
	require.NoError(ts.t, err)
	return u, token
}

type testResponse struct {
	Status int
	Body   []byte
}

func (r testResponse) decode(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body, v), string(r.Body))
}

func (r testResponse) errorCode(t *testing.T) string {
	t.Helper()
	var body models.ErrorResponse
	r.decode(t, &body)
	return body.Code
}

func (ts *testServer) do(method, path, token string, body interface{}) testResponse {
	ts.t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(ts.t, err)
			reader = bytes.NewReader(raw)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	return ts.send(req)
}

func (ts *testServer) send(req *http.Request) testResponse {
	ts.t.Helper()
	resp, err := ts.app.Test(req, 5000)
	require.NoError(ts.t, err)
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(ts.t, err)
	return testResponse{Status: resp.StatusCode, Body: raw}
}

