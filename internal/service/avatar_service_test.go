package service

import (
	"bytes"
	"context"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"alumnet/internal/config"
	"alumnet/internal/models"
	"alumnet/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAvatarFixture(t *testing.T, maxMB int) (*AvatarService, string, *models.User) {
	t.Helper()
	dir := t.TempDir()
	u := &models.User{ID: 1, Username: "alice", IsActive: true}
	repo := usersByName(u)
	svc := NewAvatarService(NewUserService(repo), &config.Config{UploadDir: dir, AvatarMaxUploadMB: maxMB})
	return svc, dir, u
}

func TestAvatarService_UploadResizesToWebP(t *testing.T) {
	t.Parallel()
	svc, dir, _ := newAvatarFixture(t, 5)

	user, err := svc.Upload(context.Background(), AvatarUpload{
		UserID:      1,
		ContentType: "image/png",
		Content:     testutil.TinyPNG(t, 640, 320),
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(user.AvatarURL, "/uploads/avatars/"))
	assert.True(t, strings.HasSuffix(user.AvatarURL, ".webp"))

	stored, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(user.AvatarURL, "/uploads/")))
	require.NoError(t, err)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(stored))
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.Width)
	assert.Equal(t, 128, cfg.Height)
}

func TestAvatarService_SmallImageKeepsSize(t *testing.T) {
	t.Parallel()
	svc, dir, _ := newAvatarFixture(t, 5)

	user, err := svc.Upload(context.Background(), AvatarUpload{UserID: 1, ContentType: "image/jpg", Content: testutil.TinyJPEG(t, 40, 30)})
	require.NoError(t, err)

	stored, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(user.AvatarURL, "/uploads/")))
	require.NoError(t, err)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(stored))
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Width)
	assert.Equal(t, 30, cfg.Height)
}

func TestAvatarService_Rejects(t *testing.T) {
	t.Parallel()
	svc, dir, _ := newAvatarFixture(t, 1)
	ctx := context.Background()

	_, err := svc.Upload(ctx, AvatarUpload{UserID: 1})
	assertCode(t, err, models.CodeValidation)

	_, err = svc.Upload(ctx, AvatarUpload{UserID: 1, ContentType: "text/plain", Content: []byte("hello, not an image")})
	assertCode(t, err, models.CodeValidation)

	_, err = svc.Upload(ctx, AvatarUpload{UserID: 1, ContentType: "image/jpeg", Content: testutil.TinyPNG(t, 8, 8)})
	assertCode(t, err, models.CodeValidation)

	_, err = svc.Upload(ctx, AvatarUpload{UserID: 1, Content: make([]byte, 1024*1024+1)})
	assertCode(t, err, models.CodeValidation)

	entries, _ := os.ReadDir(filepath.Join(dir, "avatars"))
	assert.Empty(t, entries)
}

func TestAvatarService_UnknownUserLeavesNoFile(t *testing.T) {
	t.Parallel()
	svc, dir, _ := newAvatarFixture(t, 5)

	_, err := svc.Upload(context.Background(), AvatarUpload{UserID: 42, ContentType: "image/png", Content: testutil.TinyPNG(t, 16, 16)})
	assertCode(t, err, models.CodeNotFound)

	entries, _ := os.ReadDir(filepath.Join(dir, "avatars"))
	assert.Empty(t, entries)
}

func TestResizeToFit(t *testing.T) {
	t.Parallel()
	src := image.NewRGBA(image.Rect(0, 0, 1000, 10))
	out := resizeToFit(src, 256, 256)
	assert.Equal(t, 256, out.Bounds().Dx())
	assert.Equal(t, 2, out.Bounds().Dy())

	tiny := image.NewRGBA(image.Rect(0, 0, 3000, 1))
	assert.Equal(t, 1, resizeToFit(tiny, 256, 256).Bounds().Dy())
}
