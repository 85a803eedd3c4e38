package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"devconnect/domain"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// UserUpdate carries the editable profile fields. Nil fields stay unchanged; a nil
// Skills slice keeps the current skills.
type UserUpdate struct {
	Name      *string  `json:"name"`
	FirstName *string  `json:"first_name"`
	LastName  *string  `json:"last_name"`
	Email     *string  `json:"email"`
	Bio       *string  `json:"bio"`
	Company   *string  `json:"company"`
	Position  *string  `json:"position"`
	Phone     *string  `json:"phone"`
	Skills    []string `json:"skills"`
}

func (in UserUpdate) empty() bool {
	return in.Name == nil && in.FirstName == nil && in.LastName == nil && in.Email == nil &&
		in.Bio == nil && in.Company == nil && in.Position == nil && in.Phone == nil && in.Skills == nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*domain.User, error) {
	return loadUser(ctx, s.db, id)
}

func (s *UserService) Profile(ctx context.Context, caller *domain.User, id uint) (*domain.User, error) {
	if err := requireSelf(caller, id); err != nil {
		return nil, err
	}
	return loadUser(ctx, s.db, id, "Skills")
}

func (s *UserService) Applications(ctx context.Context, caller *domain.User, id uint) ([]domain.Application, error) {
	if err := requireSelf(caller, id); err != nil {
		return nil, err
	}
	if _, err := loadUser(ctx, s.db, id); err != nil {
		return nil, err
	}
	apps := []domain.Application{}
	err := s.db.WithContext(ctx).
		Preload("Job.Client").
		Where("applicant_id = ?", id).
		Order("created_at DESC").Order("id DESC").
		Find(&apps).Error
	if err != nil {
		return nil, storageError("user applications", "query failed", err)
	}
	return apps, nil
}

func (s *UserService) PostedJobs(ctx context.Context, caller *domain.User, id uint) ([]domain.Job, error) {
	if err := requireSelf(caller, id); err != nil {
		return nil, err
	}
	if _, err := loadUser(ctx, s.db, id); err != nil {
		return nil, err
	}
	jobs := []domain.Job{}
	err := s.db.WithContext(ctx).
		Preload("Skills").
		Where("client_id = ?", id).
		Order("created_at DESC").Order("id DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, storageError("posted jobs", "query failed", err)
	}
	return jobs, nil
}

// Stats returns detailed numbers to the user themselves and a public summary to
// everyone else.
func (s *UserService) Stats(ctx context.Context, caller *domain.User, id uint) (map[string]interface{}, error) {
	u, err := loadUser(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	var posted, open int64
	if err := db.Model(&domain.Job{}).Where("client_id = ?", id).Count(&posted).Error; err != nil {
		return nil, storageError("user stats", "query failed", err)
	}
	if err := db.Model(&domain.Job{}).Where("client_id = ? AND status = ?", id, domain.JobOpen).Count(&open).Error; err != nil {
		return nil, storageError("user stats", "query failed", err)
	}

	stats := map[string]interface{}{
		"user_id":      u.ID,
		"role":         string(u.Role),
		"jobs_posted":  posted,
		"open_jobs":    open,
		"member_since": u.CreatedAt.UTC().Format(time.RFC3339),
	}
	if caller == nil || caller.ID != id {
		return stats, nil
	}

	type statusCount struct {
		Status domain.ApplicationStatus
		Total  int64
	}
	var rows []statusCount
	err = db.Model(&domain.Application{}).
		Select("status, COUNT(*) AS total").
		Where("applicant_id = ?", id).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, storageError("user stats", "query failed", err)
	}
	byStatus := map[string]int64{
		string(domain.ApplicationPending):  0,
		string(domain.ApplicationReviewed): 0,
		string(domain.ApplicationAccepted): 0,
		string(domain.ApplicationRejected): 0,
	}
	var sent int64
	for _, r := range rows {
		byStatus[string(r.Status)] = r.Total
		sent += r.Total
	}

	var received int64
	err = db.Model(&domain.Application{}).
		Joins("JOIN jobs ON jobs.id = applications.job_id").
		Where("jobs.client_id = ?", id).
		Count(&received).Error
	if err != nil {
		return nil, storageError("user stats", "query failed", err)
	}

	stats["applications_sent"] = sent
	stats["applications_by_status"] = byStatus
	stats["applications_received"] = received
	return stats, nil
}

// Update edits the caller's own profile. The target row is untouched when the caller
// is someone else.
func (s *UserService) Update(ctx context.Context, caller *domain.User, id uint, in UserUpdate) (*domain.User, error) {
	if err := requireSelf(caller, id); err != nil {
		return nil, err
	}
	if in.empty() {
		return nil, domain.Invalid("no data provided")
	}

	var updated *domain.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := loadUser(ctx, tx, id)
		if err != nil {
			return err
		}

		changes := map[string]interface{}{}
		if in.Name != nil {
			n := strings.TrimSpace(*in.Name)
			if n == "" {
				return domain.Invalid("name must not be empty")
			}
			changes["name"] = n
		}
		if in.FirstName != nil {
			changes["first_name"] = strings.TrimSpace(*in.FirstName)
		}
		if in.LastName != nil {
			changes["last_name"] = strings.TrimSpace(*in.LastName)
		}
		if in.Email != nil {
			e := normalizeEmail(*in.Email)
			if e == "" || !strings.Contains(e, "@") {
				return domain.Invalid("a valid email is required")
			}
			if e != u.Email {
				var n int64
				if err := tx.Model(&domain.User{}).Where("email = ? AND id <> ?", e, id).Count(&n).Error; err != nil {
					return err
				}
				if n > 0 {
					return domain.ErrEmailTaken
				}
				changes["email"] = e
			}
		}
		for col, v := range map[string]*string{"bio": in.Bio, "company": in.Company, "position": in.Position, "phone": in.Phone} {
			if v != nil {
				changes[col] = trimmedPtr(v)
			}
		}

		if len(changes) > 0 {
			if err := tx.Model(&domain.User{}).Where("id = ?", id).Updates(changes).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return domain.ErrEmailTaken
				}
				return err
			}
		}
		if in.Skills != nil {
			skills, err := findOrCreateSkills(tx, in.Skills)
			if err != nil {
				return err
			}
			if err := tx.Model(u).Association("Skills").Replace(skills); err != nil {
				return err
			}
		}

		updated, err = loadUser(ctx, tx, id, "Skills")
		return err
	})
	if err != nil {
		return nil, storageError("update user", "database error", err)
	}
	return updated, nil
}

// Delete removes the caller's account with its skill links, applications and posted
// jobs in one transaction.
func (s *UserService) Delete(ctx context.Context, caller *domain.User, id uint) error {
	if err := requireSelf(caller, id); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := loadUser(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := tx.Model(u).Association("Skills").Clear(); err != nil {
			return err
		}
		if err := tx.Where("applicant_id = ?", id).Delete(&domain.Application{}).Error; err != nil {
			return err
		}

		var jobIDs []uint
		if err := tx.Model(&domain.Job{}).Where("client_id = ?", id).Pluck("id", &jobIDs).Error; err != nil {
			return err
		}
		if len(jobIDs) > 0 {
			if err := tx.Where("job_id IN ?", jobIDs).Delete(&domain.Application{}).Error; err != nil {
				return err
			}
			if err := tx.Exec("DELETE FROM job_skills WHERE job_id IN ?", jobIDs).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", jobIDs).Delete(&domain.Job{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&domain.User{}, id).Error
	})
	if err != nil {
		return storageError("delete user", "database error", err)
	}
	return nil
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
