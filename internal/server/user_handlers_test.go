package server

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"alumnet/internal/models"
	"alumnet/internal/service"
	"alumnet/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileEndpoints(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.createUser("alice", alumnus)

	resp := ts.do(http.MethodPut, "/api/users/me", token, map[string]string{
		"profession": "Staff Engineer",
		"department": "Computer Science",
	})
	require.Equal(t, http.StatusOK, resp.Status, string(resp.Body))
	var me models.User
	resp.decode(t, &me)
	assert.Equal(t, "Staff Engineer", me.Profession)
	assert.Equal(t, "Computer Science", me.Department)

	resp = ts.do(http.MethodPut, "/api/users/me", token, map[string]string{"bio": strings.Repeat("x", 2001)})
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	resp = ts.do(http.MethodGet, "/api/users/alice", "", nil)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Contains(t, string(resp.Body), `"profession":"Staff Engineer"`)
	assert.NotContains(t, string(resp.Body), "alice@example.com")

	resp = ts.do(http.MethodGet, "/api/users/nobody", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestLikeAlumnus(t *testing.T) {
	ts := newTestServer(t)
	alice, aliceToken := ts.createUser("alice", alumnus, func(u *models.User) { u.Department = "CS" })
	bob, bobToken := ts.createUser("bob", student)

	path := fmt.Sprintf("/api/alumni/%d/like", alice.ID)
	resp := ts.do(http.MethodPost, path, bobToken, nil)
	require.Equal(t, http.StatusOK, resp.Status, string(resp.Body))
	var profile models.PublicProfile
	resp.decode(t, &profile)
	assert.Equal(t, 1, profile.Likes)

	resp = ts.do(http.MethodPost, path, bobToken, nil)
	assert.Equal(t, http.StatusConflict, resp.Status)

	resp = ts.do(http.MethodPost, path, aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	resp = ts.do(http.MethodPost, fmt.Sprintf("/api/alumni/%d/like", bob.ID), aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.Status)

	resp = ts.do(http.MethodGet, "/api/alumni/top-liked?limit=1", "", nil)
	require.Equal(t, http.StatusOK, resp.Status)
	var rankings []models.DepartmentRanking
	resp.decode(t, &rankings)
	require.Len(t, rankings, 1)
	assert.Equal(t, "CS", rankings[0].Department)
	require.Len(t, rankings[0].Alumni, 1)
	assert.Equal(t, "alice", rankings[0].Alumni[0].Username)

	resp = ts.do(http.MethodGet, "/api/leaderboard", "", nil)
	require.Equal(t, http.StatusOK, resp.Status)
	var board []models.PublicProfile
	resp.decode(t, &board)
	require.Len(t, board, 1)
	assert.Equal(t, "alice", board[0].Username)
}

func avatarRequest(t *testing.T, token string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("avatar", "me.png")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/users/me/avatar", body)
	req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	return req
}

func TestUploadAvatar(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.createUser("alice", alumnus)

	resp := ts.send(avatarRequest(t, token, testutil.TinyPNG(t, 300, 150)))
	require.Equal(t, http.StatusOK, resp.Status, string(resp.Body))
	var me models.User
	resp.decode(t, &me)
	require.True(t, strings.HasPrefix(me.AvatarURL, service.AvatarURLPrefix+"/avatars/"), me.AvatarURL)
	assert.True(t, strings.HasSuffix(me.AvatarURL, ".webp"))

	// the stored file is served back
	resp = ts.do(http.MethodGet, me.AvatarURL, "", nil)
	assert.Equal(t, http.StatusOK, resp.Status)

	resp = ts.send(avatarRequest(t, token, []byte("definitely not an image")))
	assert.Equal(t, http.StatusBadRequest, resp.Status)
}

func TestAdminUserManagement(t *testing.T) {
	ts := newTestServer(t)
	root, rootToken := ts.createUser("root", admin)
	bob, bobToken := ts.createUser("bob", student)

	resp := ts.do(http.MethodGet, "/api/admin/users?search=bo", rootToken, nil)
	require.Equal(t, http.StatusOK, resp.Status, string(resp.Body))
	var page service.UserPage
	resp.decode(t, &page)
	assert.Equal(t, int64(1), page.Total)

	resp = ts.do(http.MethodGet, "/api/admin/users", bobToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.Status)

	resp = ts.do(http.MethodPut, fmt.Sprintf("/api/admin/users/%d/status", bob.ID), rootToken,
		map[string]bool{"is_student": true, "is_alumni": true})
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	resp = ts.do(http.MethodPut, fmt.Sprintf("/api/admin/users/%d/status", bob.ID), rootToken,
		map[string]bool{"is_student": false, "is_alumni": true})
	require.Equal(t, http.StatusOK, resp.Status, string(resp.Body))
	var updated models.User
	resp.decode(t, &updated)
	assert.True(t, updated.IsAlumni)
	assert.False(t, updated.IsStudent)

	resp = ts.do(http.MethodPut, fmt.Sprintf("/api/admin/users/%d/role", root.ID), rootToken, map[string]bool{"is_admin": false})
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	resp = ts.do(http.MethodPut, fmt.Sprintf("/api/admin/users/%d/activity", root.ID), rootToken, map[string]bool{"is_active": false})
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	resp = ts.do(http.MethodPut, fmt.Sprintf("/api/admin/users/%d/activity", bob.ID), rootToken, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	resp = ts.do(http.MethodPut, fmt.Sprintf("/api/admin/users/%d/activity", bob.ID), rootToken, map[string]bool{"is_active": false})
	require.Equal(t, http.StatusOK, resp.Status, string(resp.Body))
	resp.decode(t, &updated)
	assert.False(t, updated.IsActive)
	assert.False(t, updated.IsAlumni)

	// a deactivated account loses access immediately
	resp = ts.do(http.MethodGet, "/api/users/me", bobToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.Status)

	resp = ts.do(http.MethodGet, "/api/admin/feature-flags", rootToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Contains(t, string(resp.Body), `"evaluated"`)
}
