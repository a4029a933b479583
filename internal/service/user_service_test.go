package service

import (
	"context"
	"strings"
	"testing"

	"alumnet/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingUsers serves one user by id and records the last field update.
func recordingUsers(u *models.User) (*userRepoStub, *map[string]interface{}) {
	var last map[string]interface{}
	repo := usersByName(u)
	repo.updateFieldsFn = func(_ context.Context, _ *models.User, fields map[string]interface{}) error {
		last = fields
		return nil
	}
	return repo, &last
}

func strPtr(s string) *string { return &s }

func TestUserService_UpdateProfile(t *testing.T) {
	t.Parallel()

	t.Run("only set fields change", func(t *testing.T) {
		t.Parallel()
		repo, fields := recordingUsers(&models.User{ID: 1, Username: "alice", IsActive: true})
		svc := NewUserService(repo)

		_, err := svc.UpdateProfile(context.Background(), 1, UpdateProfileInput{
			Profession: strPtr("Staff Engineer"),
			Bio:        strPtr(""),
		})
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"profession": "Staff Engineer", "bio": ""}, *fields)
	})

	t.Run("bio too long", func(t *testing.T) {
		t.Parallel()
		repo, fields := recordingUsers(&models.User{ID: 1, Username: "alice", IsActive: true})
		svc := NewUserService(repo)

		_, err := svc.UpdateProfile(context.Background(), 1, UpdateProfileInput{Bio: strPtr(strings.Repeat("x", 2001))})
		assertCode(t, err, models.CodeValidation)
		assert.Nil(t, *fields)
	})
}

func TestUserService_AdminRules(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo, fields := recordingUsers(&models.User{ID: 5, Username: "erin", IsActive: true})
	svc := NewUserService(repo)

	_, err := svc.SetStudentAlumni(ctx, 5, true, true)
	assertCode(t, err, models.CodeValidation)

	_, err = svc.SetAdmin(ctx, 5, 5, false)
	assertCode(t, err, models.CodeValidation)

	_, err = svc.SetActive(ctx, 5, 5, false)
	assertCode(t, err, models.CodeValidation)

	_, err = svc.SetActive(ctx, 1, 5, false)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"is_active":  false,
		"is_student": false,
		"is_alumni":  false,
		"is_admin":   false,
	}, *fields)

	_, err = svc.SetActive(ctx, 1, 5, true)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"is_active": true}, *fields)

	_, err = svc.SetAdmin(ctx, 1, 5, true)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"is_admin": true}, *fields)

	_, err = svc.SetActive(ctx, 1, 404, true)
	assertCode(t, err, models.CodeNotFound)
}

func TestUserService_LikeAlumnus(t *testing.T) {
	t.Parallel()
	repo := &userRepoStub{
		likeAlumnusFn: func(_ context.Context, _, alumnusID uint) (*models.User, error) {
			return &models.User{ID: alumnusID, Username: "alice", Email: "alice@example.com", IsAlumni: true, Likes: 4}, nil
		},
	}
	svc := NewUserService(repo)

	_, err := svc.LikeAlumnus(context.Background(), 3, 3)
	assertCode(t, err, models.CodeValidation)

	profile, err := svc.LikeAlumnus(context.Background(), 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, profile.Likes)
	assert.Equal(t, "alice", profile.Username)
}

func TestUserService_Alumnus(t *testing.T) {
	t.Parallel()
	svc := NewUserService(usersByName(alice, bob, carol))
	ctx := context.Background()

	profile, err := svc.Alumnus(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.True(t, profile.IsAlumni)

	for _, id := range []uint{bob.ID, carol.ID, 404} {
		_, err := svc.Alumnus(ctx, id)
		assertCode(t, err, models.CodeNotFound)
	}
}

func TestUserService_TopLikedClampsPerDepartment(t *testing.T) {
	t.Parallel()
	var got []int
	svc := NewUserService(&userRepoStub{
		topLikedFn: func(_ context.Context, per int) ([]models.DepartmentRanking, error) {
			got = append(got, per)
			return nil, nil
		},
	})
	for _, per := range []int{0, 7, 500} {
		_, err := svc.TopLiked(context.Background(), per)
		require.NoError(t, err)
	}
	assert.Equal(t, []int{3, 7, 20}, got)
}

func TestNotificationService_MarkReadRequiresIDs(t *testing.T) {
	t.Parallel()
	notifs := &notifRepoStub{}
	svc := NewNotificationService(notifs, &userRepoStub{}, nil)

	_, err := svc.MarkRead(context.Background(), 1, nil)
	assertCode(t, err, models.CodeValidation)

	n, err := svc.MarkRead(context.Background(), 1, []uint{4, 5})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestNotificationService_AnnounceItemWithNoRecipients(t *testing.T) {
	t.Parallel()
	notifs := &notifRepoStub{}
	pub := &recordingPublisher{}
	svc := NewNotificationService(notifs, &userRepoStub{}, pub)

	err := svc.AnnounceItem(context.Background(), &models.Job{ID: 1, JobFields: models.JobFields{Title: "SRE"}})
	require.NoError(t, err)
	assert.Empty(t, notifs.created)
	assert.Equal(t, []string{"new_job"}, pub.types())
}

func TestNotificationService_NilPublisherIsNoop(t *testing.T) {
	t.Parallel()
	notifs := &notifRepoStub{}
	svc := NewNotificationService(notifs, &userRepoStub{}, nil)

	err := svc.Notify(context.Background(), &models.Notification{UserID: 2, Message: "hi", Type: models.NotificationChatMessage}, EventChatMessage, nil)
	require.NoError(t, err)
	list, err := svc.List(context.Background(), 2, false)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
