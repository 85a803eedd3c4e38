package domain

import (
	"strings"
	"time"
)

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationReviewed ApplicationStatus = "reviewed"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

// accepted and rejected are terminal
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationPending:  {ApplicationReviewed, ApplicationAccepted, ApplicationRejected},
	ApplicationReviewed: {ApplicationAccepted, ApplicationRejected},
}

func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	st := ApplicationStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case ApplicationPending, ApplicationReviewed, ApplicationAccepted, ApplicationRejected:
		return st, nil
	}
	return "", Invalid("status must be one of: pending, reviewed, accepted, rejected")
}

func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range applicationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Application struct {
	ID          uint              `gorm:"primaryKey"`
	JobID       uint              `gorm:"not null;uniqueIndex:idx_applications_job_applicant"`
	ApplicantID uint              `gorm:"not null;uniqueIndex:idx_applications_job_applicant;index"`
	CoverLetter string            `gorm:"type:text"`
	ResumeURL   *string           `gorm:"size:500"`
	ResumeText  *string           `gorm:"type:text"`
	Status      ApplicationStatus `gorm:"size:20;not null;default:'pending'"`

	MatchScore     *float64 `gorm:"type:decimal(4,3)"`
	ScreeningNotes *string  `gorm:"type:text"`

	Job       *Job  `gorm:"constraint:OnDelete:CASCADE"`
	Applicant *User `gorm:"foreignKey:ApplicantID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

const EventApplicationSubmitted = "application.submitted"

// ApplicationEvent is the queue message emitted after an application is stored.
type ApplicationEvent struct {
	Type          string    `json:"type"`
	ApplicationID uint      `json:"application_id"`
	JobID         uint      `json:"job_id"`
	ApplicantID   uint      `json:"applicant_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}
