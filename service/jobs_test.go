package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devconnect/domain"
)

func TestCreateJobRequiresClientRole(t *testing.T) {
	f := newFixture(t, Options{JobOwnershipCheck: true})
	dev := f.register(t, "Alice", "alice@example.com", domain.RoleDeveloper)

	_, err := f.svc.Jobs.Create(context.Background(), dev, JobInput{Title: ptr("T"), Description: ptr("D")})
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
}

func TestCreateJobValidates(t *testing.T) {
	f := newFixture(t, Options{JobOwnershipCheck: true})
	ctx := context.Background()
	client := f.register(t, "Bob", "bob@example.com", domain.RoleClient)
	other := f.register(t, "Eve", "eve@example.com", domain.RoleClient)

	_, err := f.svc.Jobs.Create(ctx, client, JobInput{Title: ptr("  "), Description: ptr("D")})
	assert.Equal(t, domain.KindInvalid, domain.KindOf(err))

	_, err = f.svc.Jobs.Create(ctx, client, JobInput{Title: ptr("T"), Description: ptr("D"), BudgetMin: ptr(500.0), BudgetMax: ptr(100.0)})
	assert.Equal(t, domain.KindInvalid, domain.KindOf(err))

	_, err = f.svc.Jobs.Create(ctx, client, JobInput{Title: ptr("T"), Description: ptr("D"), Status: ptr("archived")})
	assert.Equal(t, domain.KindInvalid, domain.KindOf(err))

	_, err = f.svc.Jobs.Create(ctx, client, JobInput{Title: ptr("T"), Description: ptr("D"), ClientID: &other.ID})
	assert.True(t, errors.Is(err, domain.ErrNotOwner))
}

func TestCreateJobWithSkillsReusesExistingNames(t *testing.T) {
	f := newFixture(t, Options{JobOwnershipCheck: true})
	client := f.register(t, "Bob", "bob@example.com", domain.RoleClient)

	first := f.postJob(t, client, "First", "Go", "Docker")
	second := f.postJob(t, client, "Second", "go", "Kubernetes", "GO")

	assert.Equal(t, domain.JobOpen, first.Status)
	assert.Equal(t, client.ID, first.ClientID)
	require.Len(t, second.Skills, 2)

	var skills int64
	require.NoError(t, f.db.Model(&domain.Skill{}).Count(&skills).Error)
	assert.EqualValues(t, 3, skills)

	listed, err := f.svc.Skills.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "Docker", listed[0].Name)
}

func TestCreateJobForAnotherClientWithoutOwnershipCheck(t *testing.T) {
	f := newFixture(t, Options{JobOwnershipCheck: false})
	ctx := context.Background()
	client := f.register(t, "Bob", "bob@example.com", domain.RoleClient)
	other := f.register(t, "Eve", "eve@example.com", domain.RoleClient)

	job, err := f.svc.Jobs.Create(ctx, client, JobInput{Title: ptr("T"), Description: ptr("D"), ClientID: &other.ID})
	require.NoError(t, err)
	assert.Equal(t, other.ID, job.ClientID)

	missing := uint(9999)
	_, err = f.svc.Jobs.Create(ctx, client, JobInput{Title: ptr("T"), Description: ptr("D"), ClientID: &missing})
	assert.Equal(t, domain.KindInvalid, domain.KindOf(err))
	assert.Equal(t, "invalid client_id", err.Error())
}

func TestUpdateJobOwnership(t *testing.T) {
	ctx := context.Background()

	t.Run("enforced", func(t *testing.T) {
		f := newFixture(t, Options{JobOwnershipCheck: true})
		owner := f.register(t, "Bob", "bob@example.com", domain.RoleClient)
		other := f.register(t, "Eve", "eve@example.com", domain.RoleClient)
		job := f.postJob(t, owner, "Original")

		_, err := f.svc.Jobs.Update(ctx, other, job.ID, JobInput{Title: ptr("Hijacked")})
		assert.True(t, errors.Is(err, domain.ErrNotOwner))

		err = f.svc.Jobs.Delete(ctx, other, job.ID)
		assert.True(t, errors.Is(err, domain.ErrNotOwner))

		got, err := f.svc.Jobs.Get(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, "Original", got.Title)
	})

	t.Run("relaxed", func(t *testing.T) {
		f := newFixture(t, Options{JobOwnershipCheck: false})
		owner := f.register(t, "Bob", "bob@example.com", domain.RoleClient)
		other := f.register(t, "Eve", "eve@example.com", domain.RoleDeveloper)
		job := f.postJob(t, owner, "Original")

		got, err := f.svc.Jobs.Update(ctx, other, job.ID, JobInput{Title: ptr("Edited")})
		require.NoError(t, err)
		assert.Equal(t, "Edited", got.Title)
	})
}

func TestUpdateJobPartialFields(t *testing.T) {
	f := newFixture(t, Options{JobOwnershipCheck: true})
	ctx := context.Background()
	owner := f.register(t, "Bob", "bob@example.com", domain.RoleClient)
	job := f.postJob(t, owner, "Original", "Go")

	_, err := f.svc.Jobs.Update(ctx, owner, job.ID, JobInput{})
	assert.Equal(t, domain.KindInvalid, domain.KindOf(err))

	got, err := f.svc.Jobs.Update(ctx, owner, job.ID, JobInput{
		Status: ptr("paused"), Budget: ptr(1500.0), Skills: []string{"Rust"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Original", got.Title)
	assert.Equal(t, domain.JobPaused, got.Status)
	require.NotNil(t, got.Budget)
	assert.InDelta(t, 1500.0, *got.Budget, 0.001)
	require.Len(t, got.Skills, 1)
	assert.Equal(t, "Rust", got.Skills[0].Name)

	_, err = f.svc.Jobs.Update(ctx, owner, job.ID, JobInput{Budget: ptr(-1.0)})
	assert.Equal(t, domain.KindInvalid, domain.KindOf(err))

	_, err = f.svc.Jobs.Update(ctx, owner, 9999, JobInput{Title: ptr("x")})
	assert.True(t, errors.Is(err, domain.ErrJobNotFound))
}

func TestDeleteJobRemovesApplications(t *testing.T) {
	f := newFixture(t, Options{JobOwnershipCheck: true})
	ctx := context.Background()
	owner := f.register(t, "Bob", "bob@example.com", domain.RoleClient)
	dev := f.register(t, "Alice", "alice@example.com", domain.RoleDeveloper)
	job := f.postJob(t, owner, "Doomed", "Go")

	_, err := f.svc.Applications.Apply(ctx, job.ID, dev.ID, ApplyInput{CoverLetter: "hi"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Jobs.Delete(ctx, owner, job.ID))

	_, err = f.svc.Jobs.Get(ctx, job.ID)
	assert.True(t, errors.Is(err, domain.ErrJobNotFound))

	var apps, links int64
	require.NoError(t, f.db.Model(&domain.Application{}).Count(&apps).Error)
	require.NoError(t, f.db.Table("job_skills").Count(&links).Error)
	assert.Zero(t, apps)
	assert.Zero(t, links)

	err = f.svc.Jobs.Delete(ctx, owner, job.ID)
	assert.True(t, errors.Is(err, domain.ErrJobNotFound))
}

func TestFeaturedJobs(t *testing.T) {
	f := newFixture(t, Options{JobOwnershipCheck: true})
	ctx := context.Background()
	owner := f.register(t, "Bob", "bob@example.com", domain.RoleClient)
	f.postJob(t, owner, "Plain")
	star, err := f.svc.Jobs.Create(ctx, owner, JobInput{Title: ptr("Star"), Description: ptr("D"), IsFeatured: ptr(true)})
	require.NoError(t, err)

	jobs, err := f.svc.Jobs.Featured(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, star.ID, jobs[0].ID)
}
