package models

import "time"

// NotificationQuestionAnswered tells an asker that someone answered their question.
const NotificationQuestionAnswered = "question_answered"

// Question is an open question to the community, answered by alumni and students.
type Question struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"not null;index" json:"user_id"`
	Username     string         `gorm:"->;-:migration" json:"username,omitempty"`
	QuestionText string         `gorm:"type:text;not null" json:"question_text"`
	Likes        int            `gorm:"not null;default:0;index" json:"likes"`
	Answers      []ExpertAnswer `gorm:"-" json:"expert_answers"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Question) TableName() string {
	return "questions"
}

// QuestionLike allows one like per user per question.
type QuestionLike struct {
	UserID     uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	QuestionID uint      `gorm:"primaryKey;autoIncrement:false;index" json:"question_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (QuestionLike) TableName() string {
	return "question_likes"
}

// ExpertAnswer is an answer to a Question. IsAlumniAnswer marks answers
// written by alumni so clients can highlight them.
type ExpertAnswer struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	QuestionID     uint      `gorm:"not null;index" json:"question_id"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	Username       string    `gorm:"->;-:migration" json:"username,omitempty"`
	AnswerText     string    `gorm:"type:text;not null" json:"answer_text"`
	IsAlumniAnswer bool      `gorm:"not null;default:false" json:"is_alumni_answer"`
	Likes          int       `gorm:"not null;default:0" json:"likes"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (ExpertAnswer) TableName() string {
	return "expert_qa_answers"
}
