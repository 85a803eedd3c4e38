package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"devconnect/domain"
)

type JobService struct {
	db             *gorm.DB
	ownershipCheck bool
}

func NewJobService(db *gorm.DB, ownershipCheck bool) *JobService {
	return &JobService{db: db, ownershipCheck: ownershipCheck}
}

// JobInput carries the writable job fields. Nil fields are left untouched on update;
// a nil Skills slice keeps the current skills, an empty one clears them.
type JobInput struct {
	Title        *string  `json:"title"`
	Description  *string  `json:"description"`
	Requirements *string  `json:"requirements"`
	Budget       *float64 `json:"budget"`
	BudgetMin    *float64 `json:"budget_min"`
	BudgetMax    *float64 `json:"budget_max"`
	Status       *string  `json:"status"`
	IsFeatured   *bool    `json:"is_featured"`
	ClientID     *uint    `json:"client_id"`
	Skills       []string `json:"skills"`
}

func (in JobInput) empty() bool {
	return in.Title == nil && in.Description == nil && in.Requirements == nil &&
		in.Budget == nil && in.BudgetMin == nil && in.BudgetMax == nil &&
		in.Status == nil && in.IsFeatured == nil && in.Skills == nil
}

func (s *JobService) Get(ctx context.Context, id uint) (*domain.Job, error) {
	return s.load(s.db.WithContext(ctx), id)
}

func (s *JobService) load(db *gorm.DB, id uint) (*domain.Job, error) {
	var job domain.Job
	if err := db.Preload("Client").Preload("Skills").First(&job, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrJobNotFound
		}
		return nil, storageError("load job", "database error", err)
	}
	return &job, nil
}

// Featured lists featured jobs, newest first.
func (s *JobService) Featured(ctx context.Context) ([]domain.Job, error) {
	jobs := []domain.Job{}
	err := s.db.WithContext(ctx).
		Preload("Client").
		Preload("Skills").
		Where("is_featured = ?", true).
		Order("created_at DESC").Order("id DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, storageError("featured jobs", "query failed", err)
	}
	return jobs, nil
}

// Create posts a job for caller. Only clients may post; client_id defaults to the caller.
func (s *JobService) Create(ctx context.Context, caller *domain.User, in JobInput) (*domain.Job, error) {
	if caller == nil {
		return nil, domain.Unauthorized("authentication required")
	}
	if caller.Role != domain.RoleClient {
		return nil, domain.Forbidden("only clients can post jobs")
	}

	title := strings.TrimSpace(deref(in.Title))
	description := strings.TrimSpace(deref(in.Description))
	if title == "" || description == "" {
		return nil, domain.Invalid("title and description are required")
	}

	clientID := caller.ID
	if in.ClientID != nil && *in.ClientID != caller.ID {
		if s.ownershipCheck {
			return nil, domain.ErrNotOwner
		}
		clientID = *in.ClientID
	}

	job := domain.Job{
		Title:        title,
		Description:  description,
		Requirements: trimmedPtr(in.Requirements),
		Budget:       in.Budget,
		BudgetMin:    in.BudgetMin,
		BudgetMax:    in.BudgetMax,
		Status:       domain.JobOpen,
		ClientID:     clientID,
	}
	if in.IsFeatured != nil {
		job.IsFeatured = *in.IsFeatured
	}
	if in.Status != nil {
		st, err := domain.ParseJobStatus(*in.Status)
		if err != nil {
			return nil, err
		}
		job.Status = st
	}
	if err := job.ValidateCompensation(); err != nil {
		return nil, err
	}

	var created *domain.Job
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if clientID != caller.ID {
			var n int64
			if err := tx.Model(&domain.User{}).Where("id = ?", clientID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return domain.Invalid("invalid client_id")
			}
		}

		skills, err := findOrCreateSkills(tx, in.Skills)
		if err != nil {
			return err
		}
		job.Skills = skills

		if err := tx.Omit("Skills.*").Create(&job).Error; err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return domain.Invalid("invalid client_id")
			}
			return err
		}
		created, err = s.load(tx, job.ID)
		return err
	})
	if err != nil {
		return nil, storageError("create job", "database error", err)
	}
	return created, nil
}

func (s *JobService) authorize(caller *domain.User, job *domain.Job) error {
	if caller == nil {
		return domain.Unauthorized("authentication required")
	}
	if s.ownershipCheck && job.ClientID != caller.ID {
		return domain.ErrNotOwner
	}
	return nil
}

// Update applies the non-nil fields of in to the job.
func (s *JobService) Update(ctx context.Context, caller *domain.User, id uint, in JobInput) (*domain.Job, error) {
	if in.empty() {
		return nil, domain.Invalid("no data provided")
	}

	var updated *domain.Job
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		job, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if err := s.authorize(caller, job); err != nil {
			return err
		}

		changes := map[string]interface{}{}
		if in.Title != nil {
			t := strings.TrimSpace(*in.Title)
			if t == "" {
				return domain.Invalid("title must not be empty")
			}
			job.Title, changes["title"] = t, t
		}
		if in.Description != nil {
			d := strings.TrimSpace(*in.Description)
			if d == "" {
				return domain.Invalid("description must not be empty")
			}
			job.Description, changes["description"] = d, d
		}
		if in.Requirements != nil {
			job.Requirements = trimmedPtr(in.Requirements)
			changes["requirements"] = job.Requirements
		}
		if in.Budget != nil {
			job.Budget, changes["budget"] = in.Budget, in.Budget
		}
		if in.BudgetMin != nil {
			job.BudgetMin, changes["budget_min"] = in.BudgetMin, in.BudgetMin
		}
		if in.BudgetMax != nil {
			job.BudgetMax, changes["budget_max"] = in.BudgetMax, in.BudgetMax
		}
		if in.Status != nil {
			st, err := domain.ParseJobStatus(*in.Status)
			if err != nil {
				return err
			}
			job.Status, changes["status"] = st, st
		}
		if in.IsFeatured != nil {
			job.IsFeatured, changes["is_featured"] = *in.IsFeatured, *in.IsFeatured
		}
		if err := job.ValidateCompensation(); err != nil {
			return err
		}

		if len(changes) > 0 {
			if err := tx.Model(&domain.Job{}).Where("id = ?", job.ID).Updates(changes).Error; err != nil {
				return err
			}
		}
		if in.Skills != nil {
			skills, err := findOrCreateSkills(tx, in.Skills)
			if err != nil {
				return err
			}
			if err := tx.Model(job).Association("Skills").Replace(skills); err != nil {
				return err
			}
		}

		updated, err = s.load(tx, job.ID)
		return err
	})
	if err != nil {
		return nil, storageError("update job", "database error", err)
	}
	return updated, nil
}

// Delete removes the job together with its skill links and applications.
func (s *JobService) Delete(ctx context.Context, caller *domain.User, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job domain.Job
		if err := tx.First(&job, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrJobNotFound
			}
			return err
		}
		if err := s.authorize(caller, &job); err != nil {
			return err
		}
		return tx.Select("Skills", "Applications").Delete(&job).Error
	})
	if err != nil {
		return storageError("delete job", "database error", err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
