// Package service holds the job board's use cases. Every service owns its storage
// access through an injected *gorm.DB and hands back domain errors only.
package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"devconnect/domain"
	"devconnect/infrastructure"
)

// Publisher delivers application events to the screening pipeline.
type Publisher interface {
	Publish(ctx context.Context, ev domain.ApplicationEvent) error
}

// Services bundles every use case for the transport layer.
type Services struct {
	Auth         *AuthService
	Jobs         *JobService
	Applications *ApplicationService
	Users        *UserService
	Skills       *SkillService
}

type Options struct {
	JobOwnershipCheck bool
}

func New(db *gorm.DB, tokens *infrastructure.TokenManager, hasher *infrastructure.PasswordHasher, pub Publisher, opts Options) *Services {
	return &Services{
		Auth:         NewAuthService(db, tokens, hasher),
		Jobs:         NewJobService(db, opts.JobOwnershipCheck),
		Applications: NewApplicationService(db, pub),
		Users:        NewUserService(db),
		Skills:       NewSkillService(db),
	}
}

// storageError logs err and wraps it behind msg. Domain errors pass through untouched.
func storageError(op, msg string, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	infrastructure.C("service").WithError(err).WithField("op", op).Error(msg)
	return domain.Internal(msg, err)
}

func loadUser(ctx context.Context, db *gorm.DB, id uint, preloads ...string) (*domain.User, error) {
	q := db.WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	var u domain.User
	if err := q.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, storageError("load user", "database error", err)
	}
	return &u, nil
}

func requireSelf(caller *domain.User, id uint) error {
	if caller == nil {
		return domain.Unauthorized("authentication required")
	}
	if caller.ID != id {
		return domain.ErrNotOwner
	}
	return nil
}

// findOrCreateSkills resolves names to Skill rows, matching existing names
// case-insensitively and creating the rest.
func findOrCreateSkills(tx *gorm.DB, names []string) ([]domain.Skill, error) {
	names = domain.NormalizeSkillNames(names)
	out := make([]domain.Skill, 0, len(names))
	for _, n := range names {
		var sk domain.Skill
		err := tx.Where("LOWER(name) = ?", strings.ToLower(n)).First(&sk).Error
		switch {
		case err == nil:
		case errors.Is(err, gorm.ErrRecordNotFound):
			sk = domain.Skill{Name: n}
			if err := tx.Create(&sk).Error; err != nil {
				return nil, err
			}
		default:
			return nil, err
		}
		out = append(out, sk)
	}
	return out, nil
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
