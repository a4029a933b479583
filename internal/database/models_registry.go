package database

import "alumnet/internal/models"

// PersistentModels returns every model that owns a table, in dependency order.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.AlumniLike{},
		&models.Connection{},
		&models.Job{},
		&models.Internship{},
		&models.CareerFair{},
		&models.Hackathon{},
		&models.UnverifiedJob{},
		&models.UnverifiedInternship{},
		&models.UnverifiedCareerFair{},
		&models.UnverifiedHackathon{},
		&models.Notification{},
		&models.DailySparkQuestion{},
		&models.DailySparkAnswer{},
		&models.SearchHistory{},
		&models.UserIssue{},
		&models.ChatThread{},
		&models.ChatMessage{},
		&models.Question{},
		&models.QuestionLike{},
		&models.ExpertAnswer{},
	}
}
