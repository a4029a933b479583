package repository

import (
	"context"
	"fmt"
	"strings"

	"alumnet/internal/models"

	"gorm.io/gorm"
)

// SearchRepository runs the cross-resource search and keeps per-user history.
type SearchRepository interface {
	Search(ctx context.Context, term string, perType int) ([]models.SearchResult, error)
	AddHistory(ctx context.Context, userID uint, term string) error
	History(ctx context.Context, userID uint, limit int) ([]models.SearchHistory, error)
}

type searchRepository struct {
	db *gorm.DB
}

// NewSearchRepository returns a new SearchRepository implementation.
func NewSearchRepository(db *gorm.DB) SearchRepository {
	return &searchRepository{db: db}
}

type searchHit struct {
	ID   uint
	Name string
}

type searchSource struct {
	kind       string
	table      string
	nameColumn string
	extra      string
	link       func(h searchHit) string
}

var searchSources = []searchSource{
	{
		kind: "user", table: "users", nameColumn: "username",
		extra: "deleted_at IS NULL AND is_active = true",
		link:  func(h searchHit) string { return "/users/" + h.Name },
	},
	{kind: string(models.ItemTypeCareerFair), table: "career_fairs", nameColumn: "name", link: itemLink(models.ItemTypeCareerFair)},
	{kind: string(models.ItemTypeHackathon), table: "hackathons", nameColumn: "name", link: itemLink(models.ItemTypeHackathon)},
	{kind: string(models.ItemTypeJob), table: "jobs", nameColumn: "title", link: itemLink(models.ItemTypeJob)},
}

func itemLink(t models.ItemType) func(searchHit) string {
	return func(h searchHit) string { return fmt.Sprintf("/%s/%d", t.Plural(), h.ID) }
}

// Search matches term case-insensitively against each source, perType hits per source.
func (r *searchRepository) Search(ctx context.Context, term string, perType int) ([]models.SearchResult, error) {
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	perType = clampLimit(perType, 5, 20)

	out := []models.SearchResult{}
	for _, src := range searchSources {
		q := r.db.WithContext(ctx).
			Table(src.table).
			Select("id, "+src.nameColumn+" AS name").
			Where("LOWER("+src.nameColumn+`) LIKE ? ESCAPE '\'`, pattern)
		if src.extra != "" {
			q = q.Where(src.extra)
		}
		var hits []searchHit
		if err := q.Order(src.nameColumn + " ASC").Limit(perType).Scan(&hits).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
		for _, h := range hits {
			out = append(out, models.SearchResult{Type: src.kind, ID: h.ID, Name: h.Name, URL: src.link(h)})
		}
	}
	return out, nil
}

func (r *searchRepository) AddHistory(ctx context.Context, userID uint, term string) error {
	if err := r.db.WithContext(ctx).Create(&models.SearchHistory{UserID: userID, SearchTerm: term}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *searchRepository) History(ctx context.Context, userID uint, limit int) ([]models.SearchHistory, error) {
	out := []models.SearchHistory{}
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(clampLimit(limit, 20, 100)).
		Find(&out).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}
