package service

import (
	"context"

	"alumnet/internal/models"
	"alumnet/internal/repository"
	"alumnet/internal/validation"
)

const (
	leaderboardLimit       = 100
	defaultTopLikedPerDept = 3
	maxTopLikedPerDept     = 20
)

type UserService struct {
	userRepo repository.UserRepository
}

// UpdateProfileInput carries the editable profile fields. Nil fields are left unchanged.
type UpdateProfileInput struct {
	Department     *string `json:"department" validate:"omitempty,max=120"`
	Profession     *string `json:"profession" validate:"omitempty,max=120"`
	AlmaMater      *string `json:"alma_mater" validate:"omitempty,max=120"`
	CurrentCompany *string `json:"current_company" validate:"omitempty,max=120"`
	Bio            *string `json:"bio" validate:"omitempty,max=2000"`
	Achievements   *string `json:"achievements" validate:"omitempty,max=5000"`
	Links          *string `json:"links" validate:"omitempty,max=2000"`
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// Profile returns the public profile of an active user.
func (s *UserService) Profile(ctx context.Context, username string) (*models.PublicProfile, error) {
	return s.userRepo.GetProfile(ctx, username)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*models.User, error) {
	if err := validation.ValidateStruct(&in); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	set := func(column string, v *string) {
		if v != nil {
			fields[column] = *v
		}
	}
	set("department", in.Department)
	set("profession", in.Profession)
	set("alma_mater", in.AlmaMater)
	set("current_company", in.CurrentCompany)
	set("bio", in.Bio)
	set("achievements", in.Achievements)
	set("links", in.Links)

	if err := s.userRepo.UpdateFields(ctx, user, fields); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, userID)
}

// SetAvatar stores the public URL of a processed avatar.
func (s *UserService) SetAvatar(ctx context.Context, userID uint, url string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateFields(ctx, user, map[string]interface{}{"avatar_url": url}); err != nil {
		return nil, err
	}
	user.AvatarURL = url
	return user, nil
}

// Leaderboard ranks active alumni by activity then gems.
func (s *UserService) Leaderboard(ctx context.Context) ([]models.PublicProfile, error) {
	return s.userRepo.Leaderboard(ctx, leaderboardLimit)
}

// TopLiked returns the most-liked alumni of each department.
func (s *UserService) TopLiked(ctx context.Context, perDepartment int) ([]models.DepartmentRanking, error) {
	if perDepartment <= 0 {
		perDepartment = defaultTopLikedPerDept
	}
	if perDepartment > maxTopLikedPerDept {
		perDepartment = maxTopLikedPerDept
	}
	return s.userRepo.TopLikedByDepartment(ctx, perDepartment)
}

// LikeAlumnus records the caller's single like of an alumnus.
func (s *UserService) LikeAlumnus(ctx context.Context, likerID, alumnusID uint) (*models.PublicProfile, error) {
	if likerID == alumnusID {
		return nil, models.NewValidationError("You cannot like your own profile")
	}
	alumnus, err := s.userRepo.LikeAlumnus(ctx, likerID, alumnusID)
	if err != nil {
		return nil, err
	}
	profile := alumnus.Public()
	return &profile, nil
}

// UserPage is one page of the admin user listing.
type UserPage struct {
	Users []models.User `json:"users"`
	Total int64         `json:"total"`
}

func (s *UserService) ListUsers(ctx context.Context, filter models.UserFilter) (*UserPage, error) {
	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &UserPage{Users: users, Total: total}, nil
}

// SetStudentAlumni sets the mutually exclusive student/alumni flags.
func (s *UserService) SetStudentAlumni(ctx context.Context, targetID uint, isStudent, isAlumni bool) (*models.User, error) {
	if isStudent && isAlumni {
		return nil, models.NewValidationError("A user cannot be both a student and an alumnus")
	}
	return s.update(ctx, targetID, map[string]interface{}{
		"is_student": isStudent,
		"is_alumni":  isAlumni,
	})
}

// SetAdmin grants or revokes the admin role. Admins cannot revoke their own.
func (s *UserService) SetAdmin(ctx context.Context, actorID, targetID uint, isAdmin bool) (*models.User, error) {
	if actorID == targetID && !isAdmin {
		return nil, models.NewValidationError("You cannot revoke your own admin role")
	}
	return s.update(ctx, targetID, map[string]interface{}{"is_admin": isAdmin})
}

// SetActive activates or deactivates an account. Deactivation clears every
// role flag; admins cannot deactivate themselves.
func (s *UserService) SetActive(ctx context.Context, actorID, targetID uint, isActive bool) (*models.User, error) {
	if actorID == targetID && !isActive {
		return nil, models.NewValidationError("You cannot deactivate your own account")
	}
	fields := map[string]interface{}{"is_active": isActive}
	if !isActive {
		fields["is_student"] = false
		fields["is_alumni"] = false
		fields["is_admin"] = false
	}
	return s.update(ctx, targetID, fields)
}

func (s *UserService) update(ctx context.Context, targetID uint, fields map[string]interface{}) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateFields(ctx, user, fields); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, targetID)
}

// Alumnus returns the public profile of an active alumnus by id.
func (s *UserService) Alumnus(ctx context.Context, id uint) (*models.PublicProfile, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, models.NewNotFoundError("Alumnus", id)
		}
		return nil, err
	}
	if !user.IsAlumni || !user.IsActive {
		return nil, models.NewNotFoundError("Alumnus", id)
	}
	profile := user.Public()
	return &profile, nil
}
