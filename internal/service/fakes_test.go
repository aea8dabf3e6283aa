package service_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"citypulse/api/internal/config"
	"citypulse/api/internal/models"
	"citypulse/api/internal/repository"
)

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Environment: "test",
		Security: config.SecurityConfig{
			JWTAccessSecret:  "unit-test-access-secret",
			JWTRefreshSecret: "unit-test-refresh-secret",
			JWTAccessTTL:     time.Minute,
			JWTRefreshTTL:    time.Hour,
		},
		Upload: config.UploadConfig{
			MaxMediaFiles: 5,
			MaxFileBytes:  1 << 20,
		},
	}
}

type memoryUserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{users: make(map[string]models.User)}
}

func (m *memoryUserStore) Create(ctx context.Context, user models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *memoryUserStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (m *memoryUserStore) GetByID(ctx context.Context, id string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *memoryUserStore) SetRefreshTokenHash(ctx context.Context, userID string, hash []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.RefreshTokenHash = hash
	m.users[userID] = user
	return nil
}

func (m *memoryUserStore) RotateRefreshTokenHash(ctx context.Context, userID string, prev []byte, next []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	if !bytes.Equal(user.RefreshTokenHash, prev) {
		return repository.ErrStaleToken
	}
	user.RefreshTokenHash = next
	m.users[userID] = user
	return nil
}

func (m *memoryUserStore) ClearRefreshToken(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.RefreshTokenHash = nil
	m.users[userID] = user
	return nil
}

func (m *memoryUserStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

type memoryIssueStore struct {
	mu        sync.Mutex
	issues    map[string]models.Issue
	createErr error
}

func newMemoryIssueStore() *memoryIssueStore {
	return &memoryIssueStore{issues: make(map[string]models.Issue)}
}

func (m *memoryIssueStore) Create(ctx context.Context, issue models.Issue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.issues[issue.ID] = issue
	return nil
}

func (m *memoryIssueStore) GetByID(ctx context.Context, id string) (models.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	issue, ok := m.issues[id]
	if !ok {
		return models.Issue{}, repository.ErrIssueNotFound
	}
	return issue, nil
}

func (m *memoryIssueStore) ListByReporter(ctx context.Context, userID string) ([]models.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Issue
	for _, issue := range m.issues {
		if issue.ReportedBy == userID {
			out = append(out, issue)
		}
	}
	return out, nil
}

func (m *memoryIssueStore) UpdateStatus(ctx context.Context, id string, status models.IssueStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	issue, ok := m.issues[id]
	if !ok {
		return repository.ErrIssueNotFound
	}
	issue.Status = status
	m.issues[id] = issue
	return nil
}

func (m *memoryIssueStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.issues)
}

// fakeMediaStore records uploads and can be told to reject files of a given
// size, which makes failure injection deterministic even though uploads run
// concurrently.
type fakeMediaStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	removed   []string
	failSizes map[int64]bool
}

func newFakeMediaStore() *fakeMediaStore {
	return &fakeMediaStore{
		objects:   make(map[string][]byte),
		failSizes: make(map[int64]bool),
	}
}

func (f *fakeMediaStore) Put(ctx context.Context, bucket string, objectKey string, r io.Reader, size int64, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSizes[size] {
		return "", fmt.Errorf("injected upload failure for size %d", size)
	}
	f.objects[bucket+"/"+objectKey] = data
	return "https://cdn.test/" + bucket + "/" + objectKey, nil
}

func (f *fakeMediaStore) Remove(ctx context.Context, bucket string, objectKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, bucket+"/"+objectKey)
	f.removed = append(f.removed, bucket+"/"+objectKey)
	return nil
}

func (f *fakeMediaStore) AvatarBucket() string { return "avatars" }
func (f *fakeMediaStore) MediaBucket() string  { return "issue-media" }

func (f *fakeMediaStore) stored() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

func (f *fakeMediaStore) removedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.removed)
}

// jpegBytes fabricates a JPEG-sniffable payload of exactly n bytes (n >= 4).
func jpegBytes(n int) []byte {
	data := make([]byte, n)
	copy(data, []byte{0xff, 0xd8, 0xff, 0xe0})
	return data
}

// pngBytes fabricates a PNG-sniffable payload of exactly n bytes (n >= 8).
func pngBytes(n int) []byte {
	data := make([]byte, n)
	copy(data, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'})
	return data
}
