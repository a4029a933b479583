package service

import (
	"context"
	"strings"

	"alumnet/internal/models"
	"alumnet/internal/repository"
	"alumnet/internal/validation"
)

// IssueService collects help requests and lets admins triage them.
type IssueService struct {
	issueRepo repository.IssueRepository
	now       Clock
}

func NewIssueService(issueRepo repository.IssueRepository) *IssueService {
	return &IssueService{issueRepo: issueRepo, now: systemClock}
}

func (s *IssueService) SetClock(now Clock) {
	s.now = now
}

// IssueInput is the help form payload.
type IssueInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Submit files an issue. userID is zero for anonymous reporters.
func (s *IssueService) Submit(ctx context.Context, userID uint, in IssueInput) (*models.UserIssue, error) {
	issue := &models.UserIssue{
		Name:        strings.TrimSpace(in.Name),
		Email:       strings.ToLower(strings.TrimSpace(in.Email)),
		Message:     strings.TrimSpace(in.Message),
		Status:      models.IssueStatusPending,
		SubmittedAt: s.now(),
	}
	if userID != 0 {
		issue.UserID = &userID
	}
	if err := validation.ValidateStruct(issue); err != nil {
		return nil, err
	}
	if err := s.issueRepo.Create(ctx, issue); err != nil {
		return nil, err
	}
	return issue, nil
}

// List returns issues with the given status, or all of them when status is empty.
func (s *IssueService) List(ctx context.Context, status string) ([]models.UserIssue, error) {
	st := models.IssueStatus(strings.ToLower(strings.TrimSpace(status)))
	if st != "" && !st.Valid() {
		return nil, models.NewValidationError("Unknown issue status " + status)
	}
	return s.issueRepo.List(ctx, st)
}

func (s *IssueService) UpdateStatus(ctx context.Context, id uint, status string) (*models.UserIssue, error) {
	st := models.IssueStatus(strings.ToLower(strings.TrimSpace(status)))
	if !st.Valid() {
		return nil, models.NewValidationError("Unknown issue status " + status)
	}
	return s.issueRepo.UpdateStatus(ctx, id, st, s.now())
}
