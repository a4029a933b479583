package service

import (
	"context"

	"alumnet/internal/models"
	"alumnet/internal/repository"
)

const (
	defaultFeedPerType = 3
	maxFeedPerType     = 20
)

// ListingService serves the public, verified listings.
type ListingService struct {
	listingRepo repository.ListingRepository
	now         Clock
}

// NewListingService returns a new ListingService.
func NewListingService(listingRepo repository.ListingRepository) *ListingService {
	return &ListingService{listingRepo: listingRepo, now: systemClock}
}

// SetClock replaces the time source that decides what "upcoming" means.
func (s *ListingService) SetClock(now Clock) {
	s.now = now
}

func (s *ListingService) today(upcomingOnly bool) *models.Date {
	if !upcomingOnly {
		return nil
	}
	d := models.NewDate(s.now())
	return &d
}

func (s *ListingService) Jobs(ctx context.Context, limit, offset int) ([]models.Job, error) {
	return s.listingRepo.ListJobs(ctx, limit, offset)
}

// Internships lists internships; upcoming ones have not ended yet.
func (s *ListingService) Internships(ctx context.Context, upcomingOnly bool) ([]models.Internship, error) {
	return s.listingRepo.ListInternships(ctx, s.today(upcomingOnly))
}

func (s *ListingService) CareerFairs(ctx context.Context, upcomingOnly bool) ([]models.CareerFair, error) {
	return s.listingRepo.ListCareerFairs(ctx, s.today(upcomingOnly))
}

func (s *ListingService) Hackathons(ctx context.Context, upcomingOnly bool) ([]models.Hackathon, error) {
	return s.listingRepo.ListHackathons(ctx, s.today(upcomingOnly))
}

// Get returns one verified item.
func (s *ListingService) Get(ctx context.Context, rawType string, id uint) (models.VerifiedItem, error) {
	itemType, err := models.ParseItemType(rawType)
	if err != nil {
		return nil, err
	}
	return s.listingRepo.Get(ctx, itemType, id)
}

// Feed merges the most recent jobs, internships and hackathons.
func (s *ListingService) Feed(ctx context.Context, perType int) ([]models.FeedEvent, error) {
	if perType <= 0 {
		perType = defaultFeedPerType
	}
	if perType > maxFeedPerType {
		perType = maxFeedPerType
	}
	return s.listingRepo.RecentFeed(ctx, perType)
}
