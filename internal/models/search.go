package models

import "time"

// SearchHistory is a search term recorded for a signed-in user.
type SearchHistory struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	SearchTerm string    `gorm:"size:200;not null" json:"search_term"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for GORM
func (SearchHistory) TableName() string {
	return "search_history"
}

// SearchResult is one hit of the cross-resource search.
type SearchResult struct {
	Type string `json:"type"`
	ID   uint   `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}
