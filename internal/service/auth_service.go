package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"strings"
	"time"

	"alumnet/internal/middleware"
	"alumnet/internal/models"
	"alumnet/internal/repository"
	"alumnet/internal/tokenstore"
	"alumnet/internal/validation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthSettings are the secrets and lifetimes the auth flows use.
type AuthSettings struct {
	JWTSecret  string
	SessionTTL time.Duration
	OTPTTL     time.Duration
}

// AuthService handles signup, login, logout and the OTP password reset.
type AuthService struct {
	userRepo repository.UserRepository
	store    tokenstore.Store
	settings AuthSettings
	now      Clock
	newOTP   func() (string, error)
}

func NewAuthService(userRepo repository.UserRepository, store tokenstore.Store, settings AuthSettings) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		store:    store,
		settings: settings,
		now:      systemClock,
		newOTP:   generateOTP,
	}
}

// SetClock replaces the time source used for token issuance.
func (s *AuthService) SetClock(now Clock) {
	s.now = now
}

// SignupInput is the registration payload.
type SignupInput struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	IsStudent      bool   `json:"is_student"`
	IsAlumni       bool   `json:"is_alumni"`
	Department     string `json:"department" validate:"max=120"`
	Profession     string `json:"profession" validate:"max=120"`
	AlmaMater      string `json:"alma_mater" validate:"max=120"`
	CurrentCompany string `json:"current_company" validate:"max=120"`
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateStruct(&in); err != nil {
		return nil, err
	}
	if in.IsStudent && in.IsAlumni {
		return nil, models.NewValidationError("A user cannot be both a student and an alumnus")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:       in.Username,
		Email:          in.Email,
		Password:       string(hash),
		IsStudent:      in.IsStudent,
		IsAlumni:       in.IsAlumni,
		IsActive:       true,
		Department:     in.Department,
		Profession:     in.Profession,
		AlmaMater:      in.AlmaMater,
		CurrentCompany: in.CurrentCompany,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	middleware.Logger.InfoContext(ctx, "user signed up", slog.Uint64("user_id", uint64(user.ID)))
	return s.issue(user)
}

// Login authenticates by username or email.
func (s *AuthService) Login(ctx context.Context, login, password string) (*AuthResult, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, models.NewValidationError("Username/email and password are required")
	}
	user, err := s.userRepo.GetByLogin(ctx, login)
	if err != nil {
		return nil, err
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if !user.IsActive {
		return nil, models.NewForbiddenError("Account is deactivated")
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, claims, err := middleware.IssueAccessToken(s.settings.JWTSecret, user.ID, user.Username, s.settings.SessionTTL, s.now())
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{Token: token, ExpiresAt: claims.ExpiresAt, User: user}, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *middleware.AccessClaims) error {
	if claims == nil || claims.JTI == "" {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.store.Put(ctx, middleware.BlacklistKey(claims.JTI), "1", ttl); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// IsRevoked reports whether the token id was logged out.
func (s *AuthService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	_, ok, err := s.store.Get(ctx, middleware.BlacklistKey(jti))
	return ok, err
}

// ForgotPassword stores a one-time password for the email. The outcome is
// the same whether or not the email is registered.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.ValidateEmail(email); err != nil {
		return models.NewValidationError(err.Error())
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil || !user.IsActive {
		return nil
	}

	code, err := s.newOTP()
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := s.store.Put(ctx, tokenstore.OTPKey(email), code, s.settings.OTPTTL); err != nil {
		return models.NewInternalError(err)
	}
	// delivery is external; the code is only visible at debug level
	middleware.Logger.DebugContext(ctx, "password reset otp issued",
		slog.Uint64("user_id", uint64(user.ID)),
		slog.String("otp", code),
	)
	return nil
}

// VerifyOTP consumes a valid OTP and returns a single-use reset token.
func (s *AuthService) VerifyOTP(ctx context.Context, email, otp string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	key := tokenstore.OTPKey(email)
	stored, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	if !ok || subtle.ConstantTimeCompare([]byte(stored), []byte(strings.TrimSpace(otp))) != 1 {
		return "", models.NewValidationError("Invalid or expired OTP")
	}
	if _, ok, err := s.store.Take(ctx, key); err != nil {
		return "", models.NewInternalError(err)
	} else if !ok {
		// consumed by a concurrent verification
		return "", models.NewValidationError("Invalid or expired OTP")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", models.NewValidationError("Invalid or expired OTP")
	}

	token := uuid.NewString()
	if err := s.store.Put(ctx, tokenstore.ResetKey(token), strconv.FormatUint(uint64(user.ID), 10), s.settings.OTPTTL); err != nil {
		return "", models.NewInternalError(err)
	}
	return token, nil
}

// ResetPassword consumes the reset token and sets a new password.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := validation.ValidatePassword(newPassword); err != nil {
		return models.NewValidationError(err.Error())
	}
	raw, ok, err := s.store.Take(ctx, tokenstore.ResetKey(strings.TrimSpace(token)))
	if err != nil {
		return models.NewInternalError(err)
	}
	if !ok {
		return models.NewValidationError("Invalid or expired reset token")
	}
	userID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return models.NewInternalError(fmt.Errorf("corrupt reset token value %q", raw))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.userRepo.SetPassword(ctx, uint(userID), string(hash))
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
