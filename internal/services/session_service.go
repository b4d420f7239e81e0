package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"ascend/internal/grades"
	"ascend/internal/models"
	"ascend/internal/repositories"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNotSessionOwner = errors.New("unauthorized to access this session")
)

type SessionService interface {
	Create(userID uuid.UUID, req *models.CreateSessionRequest) (*models.Session, error)
	List(userID uuid.UUID, discipline string, date *models.Date) ([]*models.Session, error)
	Get(sessionID, userID uuid.UUID) (*models.Session, error)
	Update(sessionID, userID uuid.UUID, req *models.UpdateSessionRequest) (*models.Session, error)
	Replace(sessionID, userID uuid.UUID, req *models.CreateSessionRequest) (*models.Session, error)
	Delete(sessionID, userID uuid.UUID) error

	Analytics(userID uuid.UUID) (*models.SessionAnalytics, error)
	Progress(userID uuid.UUID) (*models.ProgressAnalytics, error)
	HighestGrades(userID uuid.UUID) (map[grades.Discipline]string, error)
	AverageGrades(userID uuid.UUID) (map[grades.Discipline]float64, error)
}

type sessionService struct {
	repo repositories.SessionRepository
}

func NewSessionService(repo repositories.SessionRepository) SessionService {
	return &sessionService{repo: repo}
}

// validatePair applies the grade/discipline compatibility rule. The returned
// grade carries the canonical display string, which is what gets stored.
// This is a cross-field check: its error is deliberately distinct from the
// per-field "required" errors produced at binding time.
func validatePair(discipline, grade string) (grades.Discipline, grades.Grade, error) {
	d, err := grades.ParseDiscipline(discipline)
	if err != nil {
		return "", grades.Grade{}, err
	}
	g, err := grades.FromStringForDiscipline(grade, d)
	if err != nil {
		return "", grades.Grade{}, err
	}
	return d, g, nil
}

func (s *sessionService) Create(userID uuid.UUID, req *models.CreateSessionRequest) (*models.Session, error) {
	d, g, err := validatePair(req.Discipline, req.Grade)
	if err != nil {
		return nil, err
	}
	session := &models.Session{
		UserID:     userID,
		Discipline: d,
		Grade:      g.Display,
		Date:       *req.Date,
		Notes:      req.Notes,
		Sent:       *req.Sent,
	}
	if err := s.repo.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *sessionService) List(userID uuid.UUID, discipline string, date *models.Date) ([]*models.Session, error) {
	if discipline != "" {
		d, err := grades.ParseDiscipline(discipline)
		if err != nil {
			return nil, err
		}
		sessions, err := s.repo.ListByUserAndDiscipline(userID, string(d))
		if err != nil {
			return nil, err
		}
		if date == nil {
			return sessions, nil
		}
		var out []*models.Session
		for _, sess := range sessions {
			if sess.Date.String() == date.String() {
				out = append(out, sess)
			}
		}
		return out, nil
	}
	if date != nil {
		return s.repo.ListByUserAndDate(userID, date.Time())
	}
	return s.repo.ListByUser(userID)
}

func (s *sessionService) owned(sessionID, userID uuid.UUID) (*models.Session, error) {
	session, err := s.repo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.UserID != userID {
		return nil, ErrNotSessionOwner
	}
	return session, nil
}

func (s *sessionService) Get(sessionID, userID uuid.UUID) (*models.Session, error) {
	return s.owned(sessionID, userID)
}

func (s *sessionService) Update(sessionID, userID uuid.UUID, req *models.UpdateSessionRequest) (*models.Session, error) {
	session, err := s.owned(sessionID, userID)
	if err != nil {
		return nil, err
	}

	discipline := string(session.Discipline)
	grade := session.Grade
	if req.Discipline != nil {
		discipline = *req.Discipline
	}
	if req.Grade != nil {
		grade = *req.Grade
	}
	// The pair is re-validated even when only one half changed.
	d, g, err := validatePair(discipline, grade)
	if err != nil {
		return nil, err
	}
	session.Discipline = d
	session.Grade = g.Display

	if req.Date != nil {
		session.Date = *req.Date
	}
	if req.Notes != nil {
		session.Notes = *req.Notes
	}
	if req.Sent != nil {
		session.Sent = *req.Sent
	}

	if err := s.repo.Update(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *sessionService) Replace(sessionID, userID uuid.UUID, req *models.CreateSessionRequest) (*models.Session, error) {
	session, err := s.owned(sessionID, userID)
	if err != nil {
		return nil, err
	}
	d, g, err := validatePair(req.Discipline, req.Grade)
	if err != nil {
		return nil, err
	}
	session.Discipline = d
	session.Grade = g.Display
	session.Date = *req.Date
	session.Notes = req.Notes
	session.Sent = *req.Sent

	if err := s.repo.Update(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *sessionService) Delete(sessionID, userID uuid.UUID) error {
	session, err := s.owned(sessionID, userID)
	if err != nil {
		return err
	}
	return s.repo.Delete(session.ID)
}

// numericValue resolves a stored display string through the catalog.
func numericValue(session *models.Session) float64 {
	g, err := grades.FromString(session.Grade)
	if err != nil {
		return 0
	}
	return g.NumericValue
}

func (s *sessionService) Analytics(userID uuid.UUID) (*models.SessionAnalytics, error) {
	sessions, err := s.repo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	out := &models.SessionAnalytics{
		SessionsByDiscipline:          map[grades.Discipline]int{},
		AverageDifficultyByDiscipline: map[grades.Discipline]float64{},
		SentPercentageByDiscipline:    map[grades.Discipline]float64{},
	}
	if len(sessions) == 0 {
		return out, nil
	}

	out.TotalSessions = len(sessions)
	var totalDifficulty float64
	var totalSent int
	sumByDiscipline := map[grades.Discipline]float64{}
	sentByDiscipline := map[grades.Discipline]int{}

	for _, sess := range sessions {
		v := numericValue(sess)
		totalDifficulty += v
		out.SessionsByDiscipline[sess.Discipline]++
		sumByDiscipline[sess.Discipline] += v
		if sess.Sent {
			totalSent++
			sentByDiscipline[sess.Discipline]++
		}
	}

	out.AverageDifficulty = totalDifficulty / float64(len(sessions))
	out.SentPercentage = float64(totalSent) * 100.0 / float64(len(sessions))
	for d, count := range out.SessionsByDiscipline {
		out.AverageDifficultyByDiscipline[d] = sumByDiscipline[d] / float64(count)
		out.SentPercentageByDiscipline[d] = float64(sentByDiscipline[d]) * 100.0 / float64(count)
	}
	return out, nil
}

// weekKey buckets a date the way the analytics always have: week-of-year is
// dayOfYear/7+1, not ISO week.
func weekKey(t time.Time) string {
	return fmt.Sprintf("%d-W%02d", t.Year(), t.YearDay()/7+1)
}

func monthKey(t time.Time) string {
	return fmt.Sprintf("%d-%02d", t.Year(), int(t.Month()))
}

type bucket struct {
	count     int
	sent      int
	sumValues float64
}

func (s *sessionService) Progress(userID uuid.UUID) (*models.ProgressAnalytics, error) {
	sessions, err := s.repo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	out := &models.ProgressAnalytics{
		ProgressByWeek:  []models.WeeklyProgress{},
		ProgressByMonth: []models.MonthlyProgress{},
	}
	if len(sessions) == 0 {
		return out, nil
	}

	out.TotalSessions = len(sessions)
	var totalDifficulty float64
	var totalSent int
	weeks := map[string]*bucket{}
	months := map[string]*bucket{}

	add := func(m map[string]*bucket, key string, v float64, sent bool) {
		b := m[key]
		if b == nil {
			b = &bucket{}
			m[key] = b
		}
		b.count++
		b.sumValues += v
		if sent {
			b.sent++
		}
	}

	for _, sess := range sessions {
		v := numericValue(sess)
		totalDifficulty += v
		if sess.Sent {
			totalSent++
		}
		t := sess.Date.Time()
		add(weeks, weekKey(t), v, sess.Sent)
		add(months, monthKey(t), v, sess.Sent)
	}

	out.AvgDifficulty = totalDifficulty / float64(len(sessions))
	out.SentRate = float64(totalSent) * 100.0 / float64(len(sessions))

	for _, key := range sortedKeys(weeks) {
		b := weeks[key]
		out.ProgressByWeek = append(out.ProgressByWeek, models.WeeklyProgress{
			Week:          key,
			AvgDifficulty: b.sumValues / float64(b.count),
			SessionCount:  b.count,
			SentRate:      float64(b.sent) * 100.0 / float64(b.count),
		})
	}
	for _, key := range sortedKeys(months) {
		b := months[key]
		out.ProgressByMonth = append(out.ProgressByMonth, models.MonthlyProgress{
			Month:         key,
			AvgDifficulty: b.sumValues / float64(b.count),
			SessionCount:  b.count,
			SentRate:      float64(b.sent) * 100.0 / float64(b.count),
		})
	}
	return out, nil
}

func sortedKeys(m map[string]*bucket) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *sessionService) HighestGrades(userID uuid.UUID) (map[grades.Discipline]string, error) {
	sessions, err := s.repo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	best := map[grades.Discipline]float64{}
	out := map[grades.Discipline]string{}
	for _, sess := range sessions {
		v := numericValue(sess)
		if cur, ok := best[sess.Discipline]; !ok || v > cur {
			best[sess.Discipline] = v
			out[sess.Discipline] = sess.Grade
		}
	}
	return out, nil
}

// AverageGrades averages numeric values per discipline over sent climbs only.
func (s *sessionService) AverageGrades(userID uuid.UUID) (map[grades.Discipline]float64, error) {
	sessions, err := s.repo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	sums := map[grades.Discipline]float64{}
	counts := map[grades.Discipline]int{}
	for _, sess := range sessions {
		if !sess.Sent {
			continue
		}
		sums[sess.Discipline] += numericValue(sess)
		counts[sess.Discipline]++
	}
	out := map[grades.Discipline]float64{}
	for d, sum := range sums {
		out[d] = sum / float64(counts[d])
	}
	return out, nil
}
