package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"gorm.io/gorm"

	"devconnect/domain"
	"devconnect/infrastructure"
)

// Scorer rates a candidate description against a job description.
type Scorer interface {
	ScreenApplication(ctx context.Context, job, candidate string) (*infrastructure.ScreeningResult, error)
}

// ScreeningService consumes application events and stores a match score and notes on
// the application. Without a Scorer, or when it fails, skills are compared locally.
type ScreeningService struct {
	db     *gorm.DB
	scorer Scorer
}

func NewScreeningService(db *gorm.DB, scorer Scorer) *ScreeningService {
	return &ScreeningService{db: db, scorer: scorer}
}

// HandleEvent is an infrastructure.EventHandler. Applications that are already scored
// or no longer exist are skipped.
func (s *ScreeningService) HandleEvent(ctx context.Context, ev domain.ApplicationEvent) error {
	if ev.Type != domain.EventApplicationSubmitted {
		return nil
	}
	log := infrastructure.C("screening").WithField("application_id", ev.ApplicationID)

	var app domain.Application
	err := s.db.WithContext(ctx).
		Preload("Job.Skills").
		Preload("Applicant.Skills").
		First(&app, ev.ApplicationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Debug("application no longer exists")
		infrastructure.ObserveApplicationEvent("handled")
		return nil
	}
	if err != nil {
		infrastructure.ObserveApplicationEvent("handle_failed")
		return fmt.Errorf("load application %d: %w", ev.ApplicationID, err)
	}
	if app.MatchScore != nil || app.Job == nil || app.Applicant == nil {
		infrastructure.ObserveApplicationEvent("handled")
		return nil
	}

	score, notes, scorer := s.score(ctx, &app)

	changes := map[string]interface{}{"screening_notes": notes}
	if score != nil {
		changes["match_score"] = *score
	}
	if err := s.db.WithContext(ctx).Model(&domain.Application{}).Where("id = ?", app.ID).Updates(changes).Error; err != nil {
		infrastructure.ObserveApplicationEvent("handle_failed")
		return fmt.Errorf("store screening for application %d: %w", app.ID, err)
	}

	infrastructure.ObserveScreening(scorer)
	infrastructure.ObserveApplicationEvent("handled")
	log.WithField("scorer", scorer).Info("application screened")
	return nil
}

func (s *ScreeningService) score(ctx context.Context, app *domain.Application) (*float64, string, string) {
	if s.scorer != nil {
		res, err := s.scorer.ScreenApplication(ctx, describeJob(app.Job), describeCandidate(app))
		if err == nil {
			v := round3(res.MatchScore)
			return &v, res.Notes, "gemini"
		}
		infrastructure.C("screening").WithError(err).WithField("application_id", app.ID).
			Warn("remote screening failed, using skill overlap")
	}
	score, notes := SkillOverlap(app)
	return score, notes, "local"
}

// SkillOverlap scores the share of the job's skills the applicant lists or mentions in
// the cover letter or resume. Jobs without skills are left unscored.
func SkillOverlap(app *domain.Application) (*float64, string) {
	if len(app.Job.Skills) == 0 {
		return nil, "job lists no skills; not scored"
	}

	have := map[string]struct{}{}
	for _, sk := range app.Applicant.Skills {
		have[strings.ToLower(sk.Name)] = struct{}{}
	}
	text := strings.ToLower(app.CoverLetter)
	if app.ResumeText != nil {
		text += "\n" + strings.ToLower(*app.ResumeText)
	}

	var matched, missing []string
	for _, sk := range app.Job.Skills {
		name := strings.ToLower(sk.Name)
		_, listed := have[name]
		if listed || strings.Contains(text, name) {
			matched = append(matched, sk.Name)
		} else {
			missing = append(missing, sk.Name)
		}
	}

	v := round3(float64(len(matched)) / float64(len(app.Job.Skills)))
	notes := fmt.Sprintf("Matched %d of %d skills", len(matched), len(app.Job.Skills))
	if len(matched) > 0 {
		notes += ": " + strings.Join(matched, ", ")
	}
	notes += "."
	if len(missing) > 0 {
		notes += " Missing: " + strings.Join(missing, ", ") + "."
	}
	return &v, notes
}

func describeJob(j *domain.Job) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\nDescription: %s\n", j.Title, j.Description)
	if j.Requirements != nil {
		fmt.Fprintf(&sb, "Requirements: %s\n", *j.Requirements)
	}
	if names := skillNames(j.Skills); names != "" {
		fmt.Fprintf(&sb, "Skills: %s\n", names)
	}
	return sb.String()
}

func describeCandidate(app *domain.Application) string {
	var sb strings.Builder
	u := app.Applicant
	fmt.Fprintf(&sb, "Name: %s\n", u.DisplayName())
	if u.Position != nil {
		fmt.Fprintf(&sb, "Position: %s\n", *u.Position)
	}
	if u.Bio != nil {
		fmt.Fprintf(&sb, "Bio: %s\n", *u.Bio)
	}
	if names := skillNames(u.Skills); names != "" {
		fmt.Fprintf(&sb, "Skills: %s\n", names)
	}
	if app.CoverLetter != "" {
		fmt.Fprintf(&sb, "Cover letter: %s\n", app.CoverLetter)
	}
	if app.ResumeText != nil {
		fmt.Fprintf(&sb, "Resume:\n%s\n", *app.ResumeText)
	}
	return sb.String()
}

func skillNames(skills []domain.Skill) string {
	names := make([]string, 0, len(skills))
	for _, sk := range skills {
		names = append(names, sk.Name)
	}
	return strings.Join(names, ", ")
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
