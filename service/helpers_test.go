package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"devconnect/domain"
	"devconnect/infrastructure"
)

var dbCounter int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	infrastructure.InitLogger("error", "text")
	dsn := fmt.Sprintf("file:service_test_%d?mode=memory&cache=shared", atomic.AddInt64(&dbCounter, 1))
	db, err := infrastructure.OpenDatabase("sqlite", dsn, "silent")
	require.NoError(t, err)
	t.Cleanup(func() { _ = infrastructure.CloseDatabase(db) })
	return db
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.ApplicationEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev domain.ApplicationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Events() []domain.ApplicationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.ApplicationEvent(nil), p.events...)
}

type fixture struct {
	db  *gorm.DB
	svc *Services
	pub *recordingPublisher
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	db := newTestDB(t)
	pub := &recordingPublisher{}
	tokens := infrastructure.NewTokenManager("test-secret", time.Hour)
	hasher := infrastructure.NewPasswordHasher(bcrypt.MinCost)
	return &fixture{db: db, svc: New(db, tokens, hasher, pub, opts), pub: pub}
}

func (f *fixture) register(t *testing.T, name, email string, role domain.Role) *domain.User {
	t.Helper()
	s, err := f.svc.Auth.Register(context.Background(), RegisterInput{
		Name: name, Email: email, Password: "password123", Role: string(role),
	})
	require.NoError(t, err)
	return s.User
}

func (f *fixture) postJob(t *testing.T, client *domain.User, title string, skills ...string) *domain.Job {
	t.Helper()
	desc := "Description for " + title
	job, err := f.svc.Jobs.Create(context.Background(), client, JobInput{
		Title: &title, Description: &desc, Skills: skills,
	})
	require.NoError(t, err)
	return job
}

func ptr[T any](v T) *T { return &v }
