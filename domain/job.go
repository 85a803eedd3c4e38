package domain

import (
	"strings"
	"time"
)

type JobStatus string

const (
	JobOpen       JobStatus = "open"
	JobInProgress JobStatus = "in_progress"
	JobPaused     JobStatus = "paused"
	JobClosed     JobStatus = "closed"
)

var jobStatuses = []JobStatus{JobOpen, JobInProgress, JobPaused, JobClosed}

func ParseJobStatus(s string) (JobStatus, error) {
	st := JobStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range jobStatuses {
		if st == known {
			return st, nil
		}
	}
	return "", Invalid("status must be one of: open, in_progress, paused, closed")
}

type Job struct {
	ID           uint      `gorm:"primaryKey"`
	Title        string    `gorm:"size:200;not null"`
	Description  string    `gorm:"type:text;not null"`
	Requirements *string   `gorm:"type:text"`
	Budget       *float64  `gorm:"type:decimal(12,2)"`
	BudgetMin    *float64  `gorm:"type:decimal(12,2)"`
	BudgetMax    *float64  `gorm:"type:decimal(12,2)"`
	Status       JobStatus `gorm:"size:20;not null;default:'open';index"`
	IsFeatured   bool      `gorm:"not null;default:false;index"`

	ClientID     uint          `gorm:"not null;index"`
	Client       *User         `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
	Skills       []Skill       `gorm:"many2many:job_skills;constraint:OnDelete:CASCADE"`
	Applications []Application `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (j *Job) AcceptsApplications() bool { return j.Status == JobOpen }

// ValidateCompensation checks that amounts are non-negative and the range is ordered.
func (j *Job) ValidateCompensation() error {
	for _, v := range []*float64{j.Budget, j.BudgetMin, j.BudgetMax} {
		if v != nil && *v < 0 {
			return Invalid("budget values must not be negative")
		}
	}
	if j.BudgetMin != nil && j.BudgetMax != nil && *j.BudgetMin > *j.BudgetMax {
		return Invalid("budget_min must not exceed budget_max")
	}
	return nil
}
