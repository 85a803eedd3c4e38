package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"devconnect/domain"
	"devconnect/infrastructure"
)

type ApplicationService struct {
	db        *gorm.DB
	publisher Publisher
	now       func() time.Time
}

func NewApplicationService(db *gorm.DB, publisher Publisher) *ApplicationService {
	return &ApplicationService{db: db, publisher: publisher, now: time.Now}
}

type ApplyInput struct {
	CoverLetter string
	ResumeURL   *string
	ResumeText  *string
}

// Apply records applicantID's application to jobID. Every check and the insert run in
// one transaction; the unique (job, applicant) index is the final word on duplicates.
// The submitted event is published after commit and its failure does not fail Apply.
func (s *ApplicationService) Apply(ctx context.Context, jobID, applicantID uint, in ApplyInput) (*domain.Application, error) {
	app := domain.Application{
		JobID:       jobID,
		ApplicantID: applicantID,
		CoverLetter: strings.TrimSpace(in.CoverLetter),
		ResumeURL:   trimmedPtr(in.ResumeURL),
		ResumeText:  in.ResumeText,
		Status:      domain.ApplicationPending,
	}
	if app.ResumeURL != nil && *app.ResumeURL == "" {
		app.ResumeURL = nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job domain.Job
		if err := tx.First(&job, jobID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrJobNotFound
			}
			return err
		}
		if !job.AcceptsApplications() {
			return domain.ErrJobNotOpen
		}

		var applicants int64
		if err := tx.Model(&domain.User{}).Where("id = ?", applicantID).Count(&applicants).Error; err != nil {
			return err
		}
		if applicants == 0 {
			return domain.ErrUserNotFound
		}

		var existing int64
		err := tx.Model(&domain.Application{}).
			Where("job_id = ? AND applicant_id = ?", jobID, applicantID).
			Count(&existing).Error
		if err != nil {
			return err
		}
		if existing > 0 {
			return domain.ErrAlreadyApplied
		}

		if err := tx.Create(&app).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrAlreadyApplied
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, storageError("apply", "database error", err)
	}

	s.publish(ctx, domain.ApplicationEvent{
		Type:          domain.EventApplicationSubmitted,
		ApplicationID: app.ID,
		JobID:         app.JobID,
		ApplicantID:   app.ApplicantID,
		OccurredAt:    s.now().UTC(),
	})
	return &app, nil
}

func (s *ApplicationService) publish(ctx context.Context, ev domain.ApplicationEvent) {
	if s.publisher == nil {
		return
	}
	log := infrastructure.C("applications").WithField("application_id", ev.ApplicationID)
	if err := s.publisher.Publish(ctx, ev); err != nil {
		infrastructure.ObserveApplicationEvent("publish_failed")
		log.WithError(err).Warn("failed to publish application event")
		return
	}
	infrastructure.ObserveApplicationEvent("published")
	log.Debug("application event published")
}

// ListForJob returns the job's applications with applicant details. Only the job's
// client may see them.
func (s *ApplicationService) ListForJob(ctx context.Context, caller *domain.User, jobID uint) ([]domain.Application, error) {
	db := s.db.WithContext(ctx)

	var job domain.Job
	if err := db.First(&job, jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrJobNotFound
		}
		return nil, storageError("list job applications", "database error", err)
	}
	if err := requireSelf(caller, job.ClientID); err != nil {
		return nil, err
	}

	apps := []domain.Application{}
	err := db.Preload("Applicant").
		Where("job_id = ?", jobID).
		Order("created_at DESC").Order("id DESC").
		Find(&apps).Error
	if err != nil {
		return nil, storageError("list job applications", "query failed", err)
	}
	return apps, nil
}

// UpdateStatus moves an application through its review states on behalf of the job's client.
func (s *ApplicationService) UpdateStatus(ctx context.Context, caller *domain.User, id uint, status string) (*domain.Application, error) {
	next, err := domain.ParseApplicationStatus(status)
	if err != nil {
		return nil, err
	}

	var app domain.Application
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Job").First(&app, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrApplicationNotFound
			}
			return err
		}
		if app.Job == nil {
			return domain.ErrJobNotFound
		}
		if err := requireSelf(caller, app.Job.ClientID); err != nil {
			return err
		}
		if !app.Status.CanTransitionTo(next) {
			return domain.Invalid(fmt.Sprintf("cannot change status from %s to %s", app.Status, next))
		}

		if err := tx.Model(&app).Update("status", next).Error; err != nil {
			return err
		}
		return tx.Preload("Job.Client").Preload("Applicant").First(&app, id).Error
	})
	if err != nil {
		return nil, storageError("update application status", "database error", err)
	}
	return &app, nil
}
