package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devconnect/domain"
)

func countApplications(t *testing.T, f *fixture) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&domain.Application{}).Count(&n).Error)
	return n
}

func TestApplyTwiceKeepsSingleApplication(t *testing.T) {
	f := newFixture(t, Options{JobOwnershipCheck: true})
	ctx := context.Background()
	client := f.register(t, "Bob", "bob@example.com", domain.RoleClient)
	dev := f.register(t, "Alice", "alice@example.com", domain.RoleDeveloper)
	job := f.postJob(t, client, "Go Engineer", "Go")

	app, err := f.svc.Applications.Apply(ctx, job.ID, dev.ID, ApplyInput{CoverLetter: "  I love Go  "})
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationPending, app.Status)
	assert.Equal(t, "I love Go", app.CoverLetter)

	_, err = f.svc.Applications.Apply(ctx, job.ID, dev.ID, ApplyInput{CoverLetter: "again"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAlreadyApplied))
	assert.Equal(t, "already applied", err.Error())

	assert.EqualValues(t, 1, countApplications(t, f))

	events := f.pub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventApplicationSubmitted, events[0].Type)
	assert.Equal(t, app.ID, events[0].ApplicationID)
	assert.Equal(t, job.ID, events[0].JobID)
	assert.Equal(t, dev.ID, events[0].ApplicantID)
}

func TestUniqueIndexRejectsDuplicateInsert(t *testing.T) {
	f := newFixture(t, Options{JobOwnershipCheck: true})
	ctx := context.Background()
	client := f.register(t, "Bob", "bob@example.com", domain.RoleClient)
	dev := f.register(t, "Alice", "alice@example.com", domain.RoleDeveloper)
	job := f.postJob(t, client, "Go Engineer")

	_, err := f.svc.Applications.Apply(ctx, job.ID, dev.ID, ApplyInput{})
	require.NoError(t, err)

	dup := domain.Application{JobID: job.ID, ApplicantID: dev.ID, Status: domain.ApplicationPending}
	assert.Error(t, f.db.Create(&dup).Error)
	assert.EqualValues(t, 1, countApplications(t, f))
}

func TestApplyToClosedJobLeavesNoRow(t *testing.T) {
	f := newFixture(t, Options{JobOwnershipCheck: true})
	ctx := context.Background()
	client := f.register(t, "Bob", "bob@example.com", domain.RoleClient)
	dev := f.register(t, "Alice", "alice@example.com", domain.RoleDeveloper)
	job := f.postJob(t, client, "Go Engineer")

	for _, status := range []string{"closed", "paused", "in_progress"} {
		_, err := f.svc.Jobs.Update(ctx, client, job.ID, JobInput{Status: ptr(status)})
		require.NoError(t, err)

		_, err = f.svc.Applications.Apply(ctx, job.ID, dev.ID, ApplyInput{CoverLetter: "please"})
		assert.True(t, errors.Is(err, domain.ErrJobNotOpen), status)
	}
	assert.Zero(t, countApplications(t, f))
	assert.Empty(t, f.pub.Events())
}

func TestApplyMissingJobOrApplicant(t *testing.T) {
	f := newFixture(t, Options{JobOwnershipCheck: true})
	ctx := context.Background()
	client := f.register(t, "Bob", "bob@example.com", domain.RoleClient)
	job := f.postJob(t, client, "Go Engineer")

	_, err := f.svc.Applications.Apply(ctx, 9999, client.ID, ApplyInput{})
	assert.True(t, errors.Is(err, domain.ErrJobNotFound))

	_, err = f.svc.Applications.Apply(ctx, job.ID, 9999, ApplyInput{})
	assert.True(t, errors.Is(err, domain.ErrUserNotFound))
	assert.Zero(t, countApplications(t, f))
}

func TestApplySucceedsWhenPublishFails(t *testing.T) {
	f := newFixture(t, Options{JobOwnershipCheck: true})
	f.pub.err = errors.New("broker down")
	client := f.register(t, "Bob", "bob@example.com", domain.RoleClient)
	dev := f.register(t, "Alice", "alice@example.com", domain.RoleDeveloper)
	job := f.postJob(t, client, "Go Engineer")

	resume := "Go, Docker"
	app, err := f.svc.Applications.Apply(context.Background(), job.ID, dev.ID, ApplyInput{ResumeText: &resume, ResumeURL: ptr(" ")})
	require.NoError(t, err)
	assert.Nil(t, app.ResumeURL)
	assert.EqualValues(t, 1, countApplications(t, f))
}

func TestListForJobOwnerOnly(t *testing.T) {
	f := newFixture(t, Options{JobOwnershipCheck: true})
	ctx := context.Background()
	client := f.register(t, "Bob", "bob@example.com", domain.RoleClient)
	dev := f.register(t, "Alice", "alice@example.com", domain.RoleDeveloper)
	job := f.postJob(t, client, "Go Engineer")
	_, err := f.svc.Applications.Apply(ctx, job.ID, dev.ID, ApplyInput{})
	require.NoError(t, err)

	apps, err := f.svc.Applications.ListForJob(ctx, client, job.ID)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	require.NotNil(t, apps[0].Applicant)
	assert.Equal(t, dev.ID, apps[0].Applicant.ID)

	_, err = f.svc.Applications.ListForJob(ctx, dev, job.ID)
	assert.True(t, errors.Is(err, domain.ErrNotOwner))

	_, err = f.svc.Applications.ListForJob(ctx, client, 9999)
	assert.True(t, errors.Is(err, domain.ErrJobNotFound))
}

func TestUpdateApplicationStatus(t *testing.T) {
	f := newFixture(t, Options{JobOwnershipCheck: true})
	ctx := context.Background()
	client := f.register(t, "Bob", "bob@example.com", domain.RoleClient)
	dev := f.register(t, "Alice", "alice@example.com", domain.RoleDeveloper)
	job := f.postJob(t, client, "Go Engineer")
	app, err := f.svc.Applications.Apply(ctx, job.ID, dev.ID, ApplyInput{})
	require.NoError(t, err)

	_, err = f.svc.Applications.UpdateStatus(ctx, dev, app.ID, "accepted")
	assert.True(t, errors.Is(err, domain.ErrNotOwner))

	_, err = f.svc.Applications.UpdateStatus(ctx, client, app.ID, "hired")
	assert.Equal(t, domain.KindInvalid, domain.KindOf(err))

	got, err := f.svc.Applications.UpdateStatus(ctx, client, app.ID, "reviewed")
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationReviewed, got.Status)
	require.NotNil(t, got.Job)
	require.NotNil(t, got.Applicant)

	_, err = f.svc.Applications.UpdateStatus(ctx, client, app.ID, "pending")
	assert.Equal(t, domain.KindInvalid, domain.KindOf(err))

	_, err = f.svc.Applications.UpdateStatus(ctx, client, app.ID, "accepted")
	require.NoError(t, err)
	_, err = f.svc.Applications.UpdateStatus(ctx, client, app.ID, "rejected")
	assert.Equal(t, domain.KindInvalid, domain.KindOf(err))

	_, err = f.svc.Applications.UpdateStatus(ctx, client, 9999, "reviewed")
	assert.True(t, errors.Is(err, domain.ErrApplicationNotFound))
}
