package repository

import (
	"context"
	"errors"
	"sort"

	"alumnet/internal/models"

	"gorm.io/gorm"
)

// ListingRepository reads and writes published (verified) items.
type ListingRepository interface {
	Create(ctx context.Context, item models.VerifiedItem) error
	Get(ctx context.Context, itemType models.ItemType, id uint) (models.VerifiedItem, error)
	ListJobs(ctx context.Context, limit, offset int) ([]models.Job, error)
	ListInternships(ctx context.Context, from *models.Date) ([]models.Internship, error)
	ListCareerFairs(ctx context.Context, from *models.Date) ([]models.CareerFair, error)
	ListHackathons(ctx context.Context, from *models.Date) ([]models.Hackathon, error)
	RecentFeed(ctx context.Context, perType int) ([]models.FeedEvent, error)
}

type listingRepository struct {
	db *gorm.DB
}

// NewListingRepository returns a new ListingRepository implementation.
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) Create(ctx context.Context, item models.VerifiedItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *listingRepository) Get(ctx context.Context, itemType models.ItemType, id uint) (models.VerifiedItem, error) {
	item, err := models.NewVerifiedItem(itemType)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).First(item, id).Error; err != nil {
		return nil, notFoundOr(err, string(itemType), id)
	}
	return item, nil
}

func (r *listingRepository) ListJobs(ctx context.Context, limit, offset int) ([]models.Job, error) {
	jobs := []models.Job{}
	if err := r.db.WithContext(ctx).
		Order("date_posted DESC, id DESC").
		Limit(clampLimit(limit, 50, 100)).
		Offset(offset).
		Find(&jobs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return jobs, nil
}

// ListInternships keeps, when from is set, internships that start on or after
// from, have no end date, or end on or after from.
func (r *listingRepository) ListInternships(ctx context.Context, from *models.Date) ([]models.Internship, error) {
	q := r.db.WithContext(ctx)
	if from != nil {
		q = q.Where("start_date >= ? OR end_date IS NULL OR end_date >= ?", *from, *from)
	}
	out := []models.Internship{}
	if err := q.Order("start_date ASC, id ASC").Find(&out).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}

func (r *listingRepository) ListCareerFairs(ctx context.Context, from *models.Date) ([]models.CareerFair, error) {
	out := []models.CareerFair{}
	if err := upcoming(r.db.WithContext(ctx), from).Find(&out).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}

func (r *listingRepository) ListHackathons(ctx context.Context, from *models.Date) ([]models.Hackathon, error) {
	out := []models.Hackathon{}
	if err := upcoming(r.db.WithContext(ctx), from).Find(&out).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}

func upcoming(q *gorm.DB, from *models.Date) *gorm.DB {
	if from != nil {
		q = q.Where("start_date >= ?", *from)
	}
	return q.Order("start_date ASC, id ASC")
}

// RecentFeed merges the newest jobs, internships and hackathons, perType of each.
func (r *listingRepository) RecentFeed(ctx context.Context, perType int) ([]models.FeedEvent, error) {
	perType = clampLimit(perType, 3, 20)
	db := r.db.WithContext(ctx)

	var jobs []models.Job
	var internships []models.Internship
	var hackathons []models.Hackathon
	err := errors.Join(
		db.Order("created_at DESC, id DESC").Limit(perType).Find(&jobs).Error,
		db.Order("created_at DESC, id DESC").Limit(perType).Find(&internships).Error,
		db.Order("created_at DESC, id DESC").Limit(perType).Find(&hackathons).Error,
	)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	type stamped struct {
		event models.FeedEvent
		at    int64
	}
	all := make([]stamped, 0, len(jobs)+len(internships)+len(hackathons))
	for i := range jobs {
		j := &jobs[i]
		d := j.DatePosted
		all = append(all, stamped{models.FeedEvent{Type: models.ItemTypeJob, ID: j.ID, Title: j.Title, Date: &d, Company: j.Company, URL: j.URL}, j.CreatedAt.UnixNano()})
	}
	for i := range internships {
		in := &internships[i]
		all = append(all, stamped{models.FeedEvent{Type: models.ItemTypeInternship, ID: in.ID, Title: in.Title, Date: in.StartDate, Company: in.Company, URL: in.URL}, in.CreatedAt.UnixNano()})
	}
	for i := range hackathons {
		h := &hackathons[i]
		d := h.StartDate
		all = append(all, stamped{models.FeedEvent{Type: models.ItemTypeHackathon, ID: h.ID, Title: h.Name, Date: &d, URL: h.URL}, h.CreatedAt.UnixNano()})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].at > all[j].at })

	out := make([]models.FeedEvent, 0, len(all))
	for _, s := range all {
		out = append(out, s.event)
	}
	return out, nil
}
