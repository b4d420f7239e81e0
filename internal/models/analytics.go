package models

import "ascend/internal/grades"

// SessionAnalytics — aggregate view over all of a user's sessions.
type SessionAnalytics struct {
	TotalSessions                int                           `json:"totalSessions"`
	AverageDifficulty            float64                       `json:"averageDifficulty"`
	SentPercentage               float64                       `json:"sentPercentage"`
	SessionsByDiscipline         map[grades.Discipline]int     `json:"sessionsByDiscipline"`
	AverageDifficultyByDiscipline map[grades.Discipline]float64 `json:"averageDifficultyByDiscipline"`
	SentPercentageByDiscipline   map[grades.Discipline]float64 `json:"sentPercentageByDiscipline"`
}

type WeeklyProgress struct {
	Week          string  `json:"week"` // e.g. "2025-W07"
	AvgDifficulty float64 `json:"avgDifficulty"`
	SessionCount  int     `json:"sessionCount"`
	SentRate      float64 `json:"sentRate"`
}

type MonthlyProgress struct {
	Month         string  `json:"month"` // e.g. "2025-02"
	AvgDifficulty float64 `json:"avgDifficulty"`
	SessionCount  int     `json:"sessionCount"`
	SentRate      float64 `json:"sentRate"`
}

type ProgressAnalytics struct {
	TotalSessions   int               `json:"totalSessions"`
	SentRate        float64           `json:"sentRate"`
	AvgDifficulty   float64           `json:"avgDifficulty"`
	ProgressByWeek  []WeeklyProgress  `json:"progressByWeek"`
	ProgressByMonth []MonthlyProgress `json:"progressByMonth"`
}
