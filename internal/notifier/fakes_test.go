package notifier

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/clients"
	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/domain/notification"
)

type fakeStore struct {
	mu       sync.Mutex
	created  []*notification.Record
	failNext int // number of Create calls to fail before succeeding

	unsent  []*notification.Record
	listErr error

	markedSent  []string
	markedError map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{markedError: make(map[string]string)}
}

func (s *fakeStore) Create(ctx context.Context, rec *notification.Record) (*notification.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext > 0 {
		s.failNext--
		return nil, errors.New("store unavailable")
	}
	out := *rec
	if out.ID == "" {
		out.ID = fmt.Sprintf("n-%d", len(s.created)+1)
	}
	out.CreatedAt = time.Now().UTC()
	s.created = append(s.created, &out)
	return &out, nil
}

func (s *fakeStore) ListUnsentRecommendations(ctx context.Context, limit int) ([]*notification.Record, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	if limit < len(s.unsent) {
		return s.unsent[:limit], nil
	}
	return s.unsent, nil
}

func (s *fakeStore) MarkEmailSent(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markedSent = append(s.markedSent, id)
	return nil
}

func (s *fakeStore) MarkEmailError(ctx context.Context, id, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markedError[id] = msg
	return nil
}

type sentEmail struct {
	To      string
	Subject string
	Kind    notification.Type
	Content any
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, to, subject string, kind notification.Type, content any) (*clients.SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.sent = append(m.sent, sentEmail{To: to, Subject: subject, Kind: kind, Content: content})
	return &clients.SendResult{Success: true, MessageID: "msg-1"}, nil
}

type fakeDirectory struct {
	emails   map[string]string
	emailErr error

	users   []clients.User
	listErr error
}

func (d *fakeDirectory) GetEmail(ctx context.Context, userID string) (string, error) {
	if d.emailErr != nil {
		return "", d.emailErr
	}
	return d.emails[userID], nil
}

func (d *fakeDirectory) ListUsers(ctx context.Context) ([]clients.User, error) {
	if d.listErr != nil {
		return nil, d.listErr
	}
	return d.users, nil
}

type published struct {
	Topic string
	Key   string
	Value []byte
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []published
	err      error
}

func (p *fakePublisher) Publish(ctx context.Context, topic string, key, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, published{Topic: topic, Key: string(key), Value: value})
	return nil
}

// sleepRecorder replaces the backoff wait so retry tests run instantly.
type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *sleepRecorder) sleep(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
}

func testDeps(store *fakeStore, mailer *fakeMailer, users *fakeDirectory) (Deps, *sleepRecorder) {
	rec := &sleepRecorder{}
	return Deps{
		Store:  store,
		Mailer: mailer,
		Users:  users,
		Sleep:  rec.sleep,
	}, rec
}
