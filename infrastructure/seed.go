package infrastructure

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"devconnect/domain"
)

type seedUser struct {
	name, email, password string
	role                  domain.Role
	bio                   string
	skills                []string
}

type seedJob struct {
	title, description, requirements string
	budget                           float64
	featured                         bool
	status                           domain.JobStatus
	skills                           []string
}

var demoUsers = []seedUser{
	{
		name: "Alice Developer", email: "alice@devconnect.com", password: "password123",
		role: domain.RoleDeveloper, bio: "Experienced frontend developer.",
		skills: []string{"React", "JavaScript", "Node.js"},
	},
	{
		name: "Bob Client", email: "bob@devconnect.com", password: "securepass",
		role: domain.RoleClient, bio: "Startup founder looking for tech talent.",
	},
}

var demoJobs = []seedJob{
	{
		title: "Full Stack Web Developer", description: "Build a MERN stack dashboard.",
		requirements: "MongoDB, Express, React, Node.js", budget: 1200, featured: true,
		status: domain.JobOpen, skills: []string{"MongoDB", "Express", "React", "Node.js"},
	},
	{
		title: "Mobile App Developer", description: "Develop a cross-platform app using Flutter.",
		requirements: "Flutter, Firebase, Dart", budget: 800,
		status: domain.JobInProgress, skills: []string{"Flutter", "Firebase", "Dart"},
	},
}

// SeedDemoData loads a small demo data set into an empty database. It is a no-op once
// any user exists.
func SeedDemoData(ctx context.Context, db *gorm.DB, hasher *PasswordHasher) error {
	var count int64
	if err := db.WithContext(ctx).Model(&domain.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		C("seed").Debug("database already has users, skipping demo data")
		return nil
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		skills := map[string]domain.Skill{}
		skillSet := func(names []string) ([]domain.Skill, error) {
			out := make([]domain.Skill, 0, len(names))
			for _, n := range names {
				sk, ok := skills[n]
				if !ok {
					sk = domain.Skill{Name: n}
					if err := tx.Create(&sk).Error; err != nil {
						return nil, err
					}
					skills[n] = sk
				}
				out = append(out, sk)
			}
			return out, nil
		}

		var client *domain.User
		for _, su := range demoUsers {
			hash, err := hasher.Hash(su.password)
			if err != nil {
				return err
			}
			bio := su.bio
			u := domain.User{Name: su.name, Email: su.email, PasswordHash: hash, Role: su.role, Bio: &bio}
			u.SplitName()
			if u.Skills, err = skillSet(su.skills); err != nil {
				return err
			}
			if err := tx.Omit("Skills.*").Create(&u).Error; err != nil {
				return fmt.Errorf("seed user %s: %w", su.email, err)
			}
			if u.Role == domain.RoleClient && client == nil {
				client = &u
			}
		}

		for _, sj := range demoJobs {
			req, budget := sj.requirements, sj.budget
			j := domain.Job{
				Title: sj.title, Description: sj.description, Requirements: &req, Budget: &budget,
				IsFeatured: sj.featured, Status: sj.status, ClientID: client.ID,
			}
			var err error
			if j.Skills, err = skillSet(sj.skills); err != nil {
				return err
			}
			if err := tx.Omit("Skills.*").Create(&j).Error; err != nil {
				return fmt.Errorf("seed job %q: %w", sj.title, err)
			}
		}

		C("seed").WithField("users", len(demoUsers)).WithField("jobs", len(demoJobs)).Info("demo data loaded")
		return nil
	})
}
