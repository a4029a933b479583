package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"alumnet/internal/middleware"
	"alumnet/internal/models"
	"alumnet/internal/observability"
	"alumnet/internal/repository"
	"alumnet/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// ModerationService gates user submissions behind admin review. Every item
// type goes through the same submit -> approve | reject workflow.
type ModerationService struct {
	modRepo       repository.ModerationRepository
	listingRepo   repository.ListingRepository
	notifications *NotificationService
	now           Clock
}

// NewModerationService returns a new ModerationService.
func NewModerationService(modRepo repository.ModerationRepository, listingRepo repository.ListingRepository, notifications *NotificationService) *ModerationService {
	return &ModerationService{
		modRepo:       modRepo,
		listingRepo:   listingRepo,
		notifications: notifications,
		now:           systemClock,
	}
}

// SetClock replaces the time source.
func (s *ModerationService) SetClock(now Clock) {
	s.now = now
}

// Submit stores a pending submission of rawType built from a JSON body of
// the type's domain fields.
func (s *ModerationService) Submit(ctx context.Context, rawType string, submitterID uint, body []byte) (models.UnverifiedItem, error) {
	itemType, err := models.ParseItemType(rawType)
	if err != nil {
		return nil, err
	}
	item, err := decodeSubmission(itemType, body)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if job, ok := item.(*models.UnverifiedJob); ok && job.DatePosted.IsZero() {
		job.DatePosted = models.NewDate(now)
	}

	meta := item.Meta()
	meta.SubmittedByUserID = submitterID
	meta.SubmittedAt = now
	meta.Status = models.SubmissionStatusPending
	meta.ReviewedByUserID = nil

	if err := s.modRepo.Submit(ctx, item); err != nil {
		return nil, err
	}
	observability.ModerationDecisions.WithLabelValues(string(itemType), observability.DecisionSubmitted).Inc()
	return item, nil
}

// ListPending returns pending submissions of rawType, newest first.
func (s *ModerationService) ListPending(ctx context.Context, rawType string) ([]models.UnverifiedItem, error) {
	itemType, err := models.ParseItemType(rawType)
	if err != nil {
		return nil, err
	}
	return s.modRepo.ListPending(ctx, itemType)
}

// Approve publishes a pending submission and announces it to non-admin users.
// The announcement is best-effort and never undoes the approval.
func (s *ModerationService) Approve(ctx context.Context, rawType string, id, adminID uint) (item models.VerifiedItem, err error) {
	itemType, err := models.ParseItemType(rawType)
	if err != nil {
		return nil, err
	}

	ctx, span := observability.StartSpan(ctx, "moderation.approve",
		attribute.String("item_type", string(itemType)),
		attribute.Int64("item_id", int64(id)),
		attribute.Int64("admin_id", int64(adminID)),
	)
	defer func() { observability.EndSpan(span, err) }()

	item, err = s.modRepo.Approve(ctx, itemType, id, adminID, s.now())
	if err != nil {
		return nil, err
	}
	observability.ModerationDecisions.WithLabelValues(string(itemType), observability.DecisionApproved).Inc()
	logDecision(ctx, "submission approved", itemType, id, adminID)

	s.notifications.announceBestEffort(ctx, item)
	return item, nil
}

// Reject declines a pending submission. Nothing is published.
func (s *ModerationService) Reject(ctx context.Context, rawType string, id, adminID uint) (models.UnverifiedItem, error) {
	itemType, err := models.ParseItemType(rawType)
	if err != nil {
		return nil, err
	}
	item, err := s.modRepo.Reject(ctx, itemType, id, adminID, s.now())
	if err != nil {
		return nil, err
	}
	observability.ModerationDecisions.WithLabelValues(string(itemType), observability.DecisionRejected).Inc()
	logDecision(ctx, "submission rejected", itemType, id, adminID)
	return item, nil
}

// ListMine returns every submission of userID across all types.
func (s *ModerationService) ListMine(ctx context.Context, userID uint) ([]models.SubmissionSummary, error) {
	return s.modRepo.ListBySubmitter(ctx, userID)
}

// CreateDirect publishes an admin-authored item without review and announces it.
func (s *ModerationService) CreateDirect(ctx context.Context, rawType string, body []byte) (models.VerifiedItem, error) {
	itemType, err := models.ParseItemType(rawType)
	if err != nil {
		return nil, err
	}
	item, err := decodeVerified(itemType, body)
	if err != nil {
		return nil, err
	}
	if job, ok := item.(*models.Job); ok && job.DatePosted.IsZero() {
		job.DatePosted = models.NewDate(s.now())
	}
	if err := s.listingRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	observability.ModerationDecisions.WithLabelValues(string(itemType), observability.DecisionPublished).Inc()

	s.notifications.announceBestEffort(ctx, item)
	return item, nil
}

func logDecision(ctx context.Context, msg string, t models.ItemType, id, adminID uint) {
	middleware.Logger.InfoContext(ctx, msg,
		slog.String("type", string(t)),
		slog.Uint64("item_id", uint64(id)),
		slog.Uint64("admin_id", uint64(adminID)),
	)
}

func decodeSubmission(t models.ItemType, body []byte) (models.UnverifiedItem, error) {
	switch t {
	case models.ItemTypeJob:
		f, err := decodeFields[models.JobFields](body)
		if err != nil {
			return nil, err
		}
		return &models.UnverifiedJob{JobFields: f}, nil
	case models.ItemTypeInternship:
		f, err := decodeFields[models.InternshipFields](body)
		if err != nil {
			return nil, err
		}
		return &models.UnverifiedInternship{InternshipFields: f}, nil
	case models.ItemTypeCareerFair:
		f, err := decodeFields[models.CareerFairFields](body)
		if err != nil {
			return nil, err
		}
		return &models.UnverifiedCareerFair{CareerFairFields: f}, nil
	case models.ItemTypeHackathon:
		f, err := decodeFields[models.HackathonFields](body)
		if err != nil {
			return nil, err
		}
		return &models.UnverifiedHackathon{HackathonFields: f}, nil
	}
	return nil, models.NewInvalidTypeError(string(t))
}

func decodeVerified(t models.ItemType, body []byte) (models.VerifiedItem, error) {
	switch t {
	case models.ItemTypeJob:
		f, err := decodeFields[models.JobFields](body)
		if err != nil {
			return nil, err
		}
		return &models.Job{JobFields: f}, nil
	case models.ItemTypeInternship:
		f, err := decodeFields[models.InternshipFields](body)
		if err != nil {
			return nil, err
		}
		return &models.Internship{InternshipFields: f}, nil
	case models.ItemTypeCareerFair:
		f, err := decodeFields[models.CareerFairFields](body)
		if err != nil {
			return nil, err
		}
		return &models.CareerFair{CareerFairFields: f}, nil
	case models.ItemTypeHackathon:
		f, err := decodeFields[models.HackathonFields](body)
		if err != nil {
			return nil, err
		}
		return &models.Hackathon{HackathonFields: f}, nil
	}
	return nil, models.NewInvalidTypeError(string(t))
}

// decodeFields parses only the domain fields of an item, so ids and
// moderation metadata in the body are ignored.
func decodeFields[F any](body []byte) (F, error) {
	var fields F
	if err := json.Unmarshal(body, &fields); err != nil {
		return fields, models.NewValidationError("Invalid request body")
	}
	if err := validation.ValidateStruct(&fields); err != nil {
		return fields, err
	}
	if in, ok := any(&fields).(*models.InternshipFields); ok &&
		in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(in.StartDate.Time) {
		return fields, models.NewValidationError("end_date must not be before start_date")
	}
	return fields, nil
}
