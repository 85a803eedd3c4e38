package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devconnect/domain"
)

func TestNewPageClamps(t *testing.T) {
	tests := []struct {
		page, perPage     int
		wantPage, wantPer int
	}{
		{1, 10, 1, 10},
		{0, 0, 1, 1},
		{-3, -1, 1, 1},
		{2, 500, 2, 100},
		{math.MaxInt / 5, 10, MaxPage, 10},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.page, tt.perPage), func(t *testing.T) {
			p := NewPage(tt.page, tt.perPage)
			assert.Equal(t, tt.wantPage, p.Number)
			assert.Equal(t, tt.wantPer, p.PerPage)
			assert.GreaterOrEqual(t, p.Offset(), int64(0))
		})
	}

	assert.Equal(t, 2, NewPagination(NewPage(1, 10), 15).Pages)
	assert.Equal(t, 0, NewPagination(NewPage(1, 10), 0).Pages)
	assert.Equal(t, 3, NewPagination(NewPage(1, 5), 15).Pages)
}

func TestSearchJobsMatchesTextCaseInsensitively(t *testing.T) {
	f := newFixture(t, Options{JobOwnershipCheck: true})
	client := f.register(t, "Bob Client", "bob@example.com", domain.RoleClient)
	react := f.postJob(t, client, "Senior React Developer", "React", "TypeScript")
	f.postJob(t, client, "Go Backend Engineer", "Go", "PostgreSQL")
	f.postJob(t, client, "Data Analyst", "Python")

	jobs, total, err := f.svc.Jobs.SearchJobs(context.Background(), JobFilter{Search: "react"}, NewPage(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, jobs, 1)
	assert.Equal(t, react.ID, jobs[0].ID)
	require.NotNil(t, jobs[0].Client)
	assert.Equal(t, client.ID, jobs[0].Client.ID)
	assert.Len(t, jobs[0].Skills, 2)
}

func TestSearchJobsSkillFilterReturnsEachJobOnce(t *testing.T) {
	f := newFixture(t, Options{JobOwnershipCheck: true})
	client := f.register(t, "Bob Client", "bob@example.com", domain.RoleClient)
	both := f.postJob(t, client, "Script Wrangler", "JavaScript", "Java")
	f.postJob(t, client, "Pythonista", "Python")

	jobs, total, err := f.svc.Jobs.SearchJobs(context.Background(), JobFilter{Skill: "JAVA"}, NewPage(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, jobs, 1)
	assert.Equal(t, both.ID, jobs[0].ID)
}

func TestSearchJobsEscapesWildcards(t *testing.T) {
	f := newFixture(t, Options{JobOwnershipCheck: true})
	client := f.register(t, "Bob Client", "bob@example.com", domain.RoleClient)
	f.postJob(t, client, "Scale to 1000 users, hire coders")
	remote := f.postJob(t, client, "100% remote Go role")
	f.postJob(t, client, "snake_case fan")

	jobs, _, err := f.svc.Jobs.SearchJobs(context.Background(), JobFilter{Search: "100%"}, NewPage(1, 10))
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, remote.ID, jobs[0].ID)

	jobs, _, err = f.svc.Jobs.SearchJobs(context.Background(), JobFilter{Search: "e_c"}, NewPage(1, 10))
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "snake_case fan", jobs[0].Title)
}

func TestSearchJobsPaginates(t *testing.T) {
	f := newFixture(t, Options{JobOwnershipCheck: true})
	client := f.register(t, "Bob Client", "bob@example.com", domain.RoleClient)
	var lastID uint
	for i := 1; i <= 15; i++ {
		lastID = f.postJob(t, client, fmt.Sprintf("Job %02d", i)).ID
	}
	ctx := context.Background()

	page1, total, err := f.svc.Jobs.SearchJobs(ctx, JobFilter{}, NewPage(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 15, total)
	require.Len(t, page1, 10)
	assert.Equal(t, lastID, page1[0].ID)

	page2, total, err := f.svc.Jobs.SearchJobs(ctx, JobFilter{}, NewPage(2, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 15, total)
	assert.Len(t, page2, 5)

	page3, total, err := f.svc.Jobs.SearchJobs(ctx, JobFilter{}, NewPage(3, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 15, total)
	assert.Empty(t, page3)

	far, total, err := f.svc.Jobs.SearchJobs(ctx, JobFilter{}, NewPage(math.MaxInt/5, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 15, total)
	assert.Empty(t, far)

	seen := map[uint]bool{}
	for _, j := range append(page1, page2...) {
		assert.False(t, seen[j.ID], "job %d returned twice", j.ID)
		seen[j.ID] = true
	}
	assert.Len(t, seen, 15)
}

func TestSearchJobsStatusAndFeatured(t *testing.T) {
	f := newFixture(t, Options{JobOwnershipCheck: true})
	ctx := context.Background()
	client := f.register(t, "Bob Client", "bob@example.com", domain.RoleClient)
	open := f.postJob(t, client, "Open role")
	closed := f.postJob(t, client, "Closed role")
	_, err := f.svc.Jobs.Update(ctx, client, closed.ID, JobInput{Status: ptr("closed"), IsFeatured: ptr(true)})
	require.NoError(t, err)

	jobs, _, err := f.svc.Jobs.SearchJobs(ctx, JobFilter{Status: "open"}, NewPage(1, 10))
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, open.ID, jobs[0].ID)

	jobs, _, err = f.svc.Jobs.SearchJobs(ctx, JobFilter{Featured: ptr(true)}, NewPage(1, 10))
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, closed.ID, jobs[0].ID)

	_, _, err = f.svc.Jobs.SearchJobs(ctx, JobFilter{Status: "archived"}, NewPage(1, 10))
	assert.Equal(t, domain.KindInvalid, domain.KindOf(err))
}

func TestSearchUsers(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	alice := f.register(t, "Alice Developer", "alice@example.com", domain.RoleDeveloper)
	f.register(t, "Bob Client", "bob@example.com", domain.RoleClient)
	_, err := f.svc.Users.Update(ctx, alice, alice.ID, UserUpdate{Company: ptr("Acme Corp"), Bio: ptr("React and Go")})
	require.NoError(t, err)

	users, total, err := f.svc.Users.SearchUsers(ctx, UserFilter{Role: "developer"}, NewPage(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, alice.ID, users[0].ID)

	users, _, err = f.svc.Users.SearchUsers(ctx, UserFilter{Search: "react", Company: "acme"}, NewPage(1, 10))
	require.NoError(t, err)
	assert.Len(t, users, 1)

	users, total, err = f.svc.Users.SearchUsers(ctx, UserFilter{}, NewPage(1, 1))
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, users, 1)

	_, _, err = f.svc.Users.SearchUsers(ctx, UserFilter{Role: "admin"}, NewPage(1, 10))
	assert.Equal(t, domain.KindInvalid, domain.KindOf(err))
}

func TestSearchStorageFailureIsGeneric(t *testing.T) {
	f := newFixture(t, Options{JobOwnershipCheck: true})
	client := f.register(t, "Bob Client", "bob@example.com", domain.RoleClient)
	f.postJob(t, client, "Go Engineer", "Go")
	ctx := context.Background()

	for _, table := range []string{"applications", "job_skills", "jobs"} {
		require.NoError(t, f.db.Exec("DROP TABLE " + table).Error)
	}

	jobs, total, err := f.svc.Jobs.SearchJobs(ctx, JobFilter{}, NewPage(1, 10))
	require.Error(t, err)
	assert.Nil(t, jobs)
	assert.Zero(t, total)

	var de *domain.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, domain.KindInternal, de.Kind)
	assert.Equal(t, "query failed", de.Message)

	for _, table := range []string{"user_skills", "users"} {
		require.NoError(t, f.db.Exec("DROP TABLE " + table).Error)
	}
	users, total, err := f.svc.Users.SearchUsers(ctx, UserFilter{}, NewPage(1, 10))
	assert.Nil(t, users)
	assert.Zero(t, total)
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "query failed", de.Message)
}
