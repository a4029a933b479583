package repository

import (
	"context"
	"errors"
	"strings"

	"alumnet/internal/cache"
	"alumnet/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	GetProfile(ctx context.Context, username string) (*models.PublicProfile, error)
	Create(ctx context.Context, user *models.User) error
	UpdateFields(ctx context.Context, user *models.User, fields map[string]interface{}) error
	SetPassword(ctx context.Context, id uint, hash string) error
	AddActivity(ctx context.Context, id uint, delta int) error
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int64, error)
	Leaderboard(ctx context.Context, limit int) ([]models.PublicProfile, error)
	TopLikedByDepartment(ctx context.Context, perDepartment int) ([]models.DepartmentRanking, error)
	LikeAlumnus(ctx context.Context, likerID, alumnusID uint) (*models.User, error)
	ActiveNonAdminIDs(ctx context.Context) ([]uint, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "User", id)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

// GetByLogin matches either the username or the email.
func (r *userRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	return r.findOne(ctx, "username = ? OR email = ?", login, login)
}

func (r *userRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// GetProfile returns the public view of an active user, served cache-aside.
func (r *userRepository) GetProfile(ctx context.Context, username string) (*models.PublicProfile, error) {
	var profile models.PublicProfile
	err := cache.Aside(ctx, cache.ProfileKey(username), &profile, cache.ProfileTTL, func() error {
		var user models.User
		if err := r.db.WithContext(ctx).
			Where("username = ? AND is_active = ?", username, true).
			First(&user).Error; err != nil {
			return notFoundOr(err, "User", username)
		}
		profile = user.Public()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Username or email already registered")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateRankings(ctx)
	return nil
}

func (r *userRepository) UpdateFields(ctx context.Context, user *models.User, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(user).Updates(fields).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Username or email already registered")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID, user.Username)
	cache.InvalidateRankings(ctx)
	return nil
}

func (r *userRepository) SetPassword(ctx context.Context, id uint, hash string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", hash)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	return nil
}

func (r *userRepository) AddActivity(ctx context.Context, id uint, delta int) error {
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		UpdateColumn("activity_score", gorm.Expr("activity_score + ?", delta)).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.LeaderboardKey)
	return nil
}

func (r *userRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})
	if !filter.IncludeInactive {
		q = q.Where("is_active = ?", true)
	}
	if filter.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(filter.Search)) + "%"
		q = q.Where(`(LOWER(username) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\')`, pattern, pattern)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var users []models.User
	if err := q.Order("created_at DESC, id DESC").
		Limit(clampLimit(filter.Limit, 20, 100)).
		Offset(filter.Offset).
		Find(&users).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return users, total, nil
}

// Leaderboard returns active alumni by activity score, then gems.
func (r *userRepository) Leaderboard(ctx context.Context, limit int) ([]models.PublicProfile, error) {
	limit = clampLimit(limit, 100, 100)
	var out []models.PublicProfile
	err := cache.Aside(ctx, cache.LeaderboardKey, &out, cache.LeaderboardTTL, func() error {
		var users []models.User
		if err := r.db.WithContext(ctx).
			Where("is_alumni = ? AND is_active = ?", true, true).
			Order("activity_score DESC, alumni_gems DESC, id ASC").
			Limit(100).
			Find(&users).Error; err != nil {
			return models.NewInternalError(err)
		}
		out = make([]models.PublicProfile, 0, len(users))
		for i := range users {
			out = append(out, users[i].Public())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// TopLikedByDepartment groups active alumni by department, keeping the perDepartment most liked.
func (r *userRepository) TopLikedByDepartment(ctx context.Context, perDepartment int) ([]models.DepartmentRanking, error) {
	perDepartment = clampLimit(perDepartment, 3, 20)
	var out []models.DepartmentRanking
	err := cache.Aside(ctx, cache.TopLikedKeyFor(perDepartment), &out, cache.TopLikedTTL, func() error {
		var users []models.User
		if err := r.db.WithContext(ctx).
			Where("is_alumni = ? AND is_active = ?", true, true).
			Order("department ASC, likes DESC, id ASC").
			Find(&users).Error; err != nil {
			return models.NewInternalError(err)
		}
		out = groupByDepartment(users, perDepartment)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// groupByDepartment expects users sorted by department, then likes.
func groupByDepartment(users []models.User, perDepartment int) []models.DepartmentRanking {
	out := []models.DepartmentRanking{}
	for i := range users {
		dept := users[i].Department
		if dept == "" {
			dept = "Other"
		}
		if len(out) == 0 || out[len(out)-1].Department != dept {
			out = append(out, models.DepartmentRanking{Department: dept})
		}
		last := &out[len(out)-1]
		if len(last.Alumni) < perDepartment {
			last.Alumni = append(last.Alumni, users[i].Public())
		}
	}
	return out
}

// LikeAlumnus records one like and bumps the alumnus's likes and activity in one transaction.
func (r *userRepository) LikeAlumnus(ctx context.Context, likerID, alumnusID uint) (*models.User, error) {
	var alumnus models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND is_alumni = ? AND is_active = ?", alumnusID, true, true).
			First(&alumnus).Error; err != nil {
			return notFoundOr(err, "Alumnus", alumnusID)
		}
		if err := tx.Create(&models.AlumniLike{LikerID: likerID, LikedID: alumnusID}).Error; err != nil {
			if isUniqueConstraintError(err) {
				return models.NewConflictError("You already liked this alumnus")
			}
			return models.NewInternalError(err)
		}
		if err := tx.Model(&alumnus).UpdateColumns(map[string]interface{}{
			"likes":          gorm.Expr("likes + ?", 1),
			"activity_score": gorm.Expr("activity_score + ?", 1),
		}).Error; err != nil {
			return models.NewInternalError(err)
		}
		return tx.First(&alumnus, alumnusID).Error
	})
	if err != nil {
		return nil, asAppError(err)
	}
	cache.InvalidateUser(ctx, alumnus.ID, alumnus.Username)
	cache.InvalidateRankings(ctx)
	return &alumnus, nil
}

// ActiveNonAdminIDs lists the recipients of broadcast notifications.
func (r *userRepository) ActiveNonAdminIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("is_active = ? AND is_admin = ?", true, false).
		Order("id ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}
