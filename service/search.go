package service

import (
	"context"
	"math"
	"strings"

	"gorm.io/gorm"

	"devconnect/domain"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
	// MaxPage keeps (page-1)*per_page inside 32 bits.
	MaxPage = math.MaxInt32 / MaxPerPage
)

// Page is a 1-based page request. Use NewPage to get clamped values.
type Page struct {
	Number  int
	PerPage int
}

func NewPage(number, perPage int) Page {
	if number < 1 {
		number = 1
	}
	if number > MaxPage {
		number = MaxPage
	}
	if perPage < 1 {
		perPage = 1
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return Page{Number: number, PerPage: perPage}
}

func (p Page) Offset() int64 { return int64(p.Number-1) * int64(p.PerPage) }

// pastEnd reports whether the page starts at or after the last of total rows.
func (p Page) pastEnd(total int64) bool { return p.Number < 1 || p.Offset() >= total }

type Pagination struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
}

func NewPagination(p Page, total int64) Pagination {
	pages := int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
	return Pagination{Page: p.Number, PerPage: p.PerPage, Total: total, Pages: pages}
}

type JobFilter struct {
	Search   string
	Skill    string
	Status   string
	Featured *bool
}

type UserFilter struct {
	Search   string
	Company  string
	Position string
	Role     string
}

// likePattern builds a case-insensitive contains pattern; use with ESCAPE '!'.
func likePattern(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}

func (f JobFilter) scope(db *gorm.DB) (func(*gorm.DB) *gorm.DB, error) {
	var status domain.JobStatus
	if s := strings.TrimSpace(f.Status); s != "" {
		st, err := domain.ParseJobStatus(s)
		if err != nil {
			return nil, err
		}
		status = st
	}
	search := strings.TrimSpace(f.Search)
	skill := strings.TrimSpace(f.Skill)

	return func(q *gorm.DB) *gorm.DB {
		if search != "" {
			p := likePattern(search)
			q = q.Where("LOWER(jobs.title) LIKE ? ESCAPE '!' OR LOWER(jobs.description) LIKE ? ESCAPE '!' OR LOWER(jobs.requirements) LIKE ? ESCAPE '!'", p, p, p)
		}
		if skill != "" {
			sub := db.Table("job_skills").
				Select("job_skills.job_id").
				Joins("JOIN skills ON skills.id = job_skills.skill_id").
				Where("LOWER(skills.name) LIKE ? ESCAPE '!'", likePattern(skill))
			q = q.Where("jobs.id IN (?)", sub)
		}
		if status != "" {
			q = q.Where("jobs.status = ?", status)
		}
		if f.Featured != nil {
			q = q.Where("jobs.is_featured = ?", *f.Featured)
		}
		return q
	}, nil
}

// SearchJobs returns one page of jobs matching f, newest first, plus the total number
// of matches before paging.
func (s *JobService) SearchJobs(ctx context.Context, f JobFilter, p Page) ([]domain.Job, int64, error) {
	db := s.db.WithContext(ctx)
	filter, err := f.scope(db)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := db.Model(&domain.Job{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, storageError("search jobs", "query failed", err)
	}

	jobs := []domain.Job{}
	if p.pastEnd(total) {
		return jobs, total, nil
	}
	err = db.Scopes(filter).
		Preload("Client").
		Preload("Skills").
		Order("jobs.created_at DESC").Order("jobs.id DESC").
		Limit(p.PerPage).Offset(int(p.Offset())).
		Find(&jobs).Error
	if err != nil {
		return nil, 0, storageError("search jobs", "query failed", err)
	}
	return jobs, total, nil
}

func (f UserFilter) scope() (func(*gorm.DB) *gorm.DB, error) {
	var role domain.Role
	if r := strings.TrimSpace(f.Role); r != "" {
		parsed, err := domain.ParseRole(r)
		if err != nil {
			return nil, err
		}
		role = parsed
	}
	search := strings.TrimSpace(f.Search)
	company := strings.TrimSpace(f.Company)
	position := strings.TrimSpace(f.Position)

	return func(q *gorm.DB) *gorm.DB {
		if search != "" {
			p := likePattern(search)
			q = q.Where("LOWER(users.name) LIKE ? ESCAPE '!' OR LOWER(users.first_name) LIKE ? ESCAPE '!' OR LOWER(users.last_name) LIKE ? ESCAPE '!' OR LOWER(users.bio) LIKE ? ESCAPE '!'", p, p, p, p)
		}
		if company != "" {
			q = q.Where("LOWER(users.company) LIKE ? ESCAPE '!'", likePattern(company))
		}
		if position != "" {
			q = q.Where("LOWER(users.position) LIKE ? ESCAPE '!'", likePattern(position))
		}
		if role != "" {
			q = q.Where("users.role = ?", role)
		}
		return q
	}, nil
}

// SearchUsers pages through users with the same ordering and clamping rules as SearchJobs.
func (s *UserService) SearchUsers(ctx context.Context, f UserFilter, p Page) ([]domain.User, int64, error) {
	filter, err := f.scope()
	if err != nil {
		return nil, 0, err
	}
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&domain.User{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, storageError("search users", "query failed", err)
	}

	users := []domain.User{}
	if p.pastEnd(total) {
		return users, total, nil
	}
	err = db.Scopes(filter).
		Preload("Skills").
		Order("users.created_at DESC").Order("users.id DESC").
		Limit(p.PerPage).Offset(int(p.Offset())).
		Find(&users).Error
	if err != nil {
		return nil, 0, storageError("search users", "query failed", err)
	}
	return users, total, nil
}
