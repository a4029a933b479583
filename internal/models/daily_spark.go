package models

import "time"

// DailySparkQuestion is an interview-style prompt posted by an alumnus.
// An alumnus may post at most one question per day.
type DailySparkQuestion struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Company        string    `gorm:"size:200" json:"company"`
	Role           string    `gorm:"size:200" json:"role"`
	Question       string    `gorm:"type:text;not null" json:"question"`
	PostedByUserID uint      `gorm:"not null;uniqueIndex:idx_spark_user_day" json:"posted_by_user_id"`
	PostedDate     Date      `gorm:"not null;uniqueIndex:idx_spark_user_day" json:"posted_date"`
	PostedBy       *User     `gorm:"foreignKey:PostedByUserID" json:"posted_by,omitempty"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for GORM
func (DailySparkQuestion) TableName() string {
	return "daily_spark_questions"
}

// DailySparkAnswer is a member's answer to a Daily Spark question.
type DailySparkAnswer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QuestionID uint      `gorm:"not null;index" json:"question_id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	Username   string    `gorm:"->;-:migration" json:"username,omitempty"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	Votes      int       `gorm:"not null;default:0" json:"votes"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (DailySparkAnswer) TableName() string {
	return "daily_spark_answers"
}

// DailySparkRanking is a question with the summed votes of its answers.
type DailySparkRanking struct {
	ID         uint   `json:"id"`
	Company    string `json:"company"`
	Role       string `json:"role"`
	Question   string `json:"question"`
	PostedDate Date   `json:"posted_date"`
	TotalVotes int    `json:"total_votes"`
}
