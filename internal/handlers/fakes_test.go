package handlers

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/AnshRaj112/videotube-backend/internal/models"
	"github.com/AnshRaj112/videotube-backend/internal/services"
)

// memStore is an in-memory services.UserStore
type memStore struct {
	mu     sync.Mutex
	users  map[string]*models.User
	nextID int

	createErr       error
	setRefreshErr   error
	losePublicAfter bool // FindPublicByID reports not found
}

func newMemStore() *memStore {
	return &memStore{users: map[string]*models.User{}}
}

func (s *memStore) FindByUsernameOrEmail(_ context.Context, username, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, services.ErrUserNotFound
}

func (s *memStore) Create(_ context.Context, user *models.User) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return "", s.createErr
	}
	s.nextID++
	user.ID = fmt.Sprintf("user-%d", s.nextID)
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	s.users[user.ID] = &cp
	return user.ID, nil
}

func (s *memStore) FindByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, services.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) FindPublicByID(ctx context.Context, id string) (*models.User, error) {
	if s.losePublicAfter {
		return nil, services.ErrUserNotFound
	}
	u, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.Public(), nil
}

func (s *memStore) SetRefreshToken(_ context.Context, id, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setRefreshErr != nil {
		return s.setRefreshErr
	}
	u, ok := s.users[id]
	if !ok {
		return services.ErrUserNotFound
	}
	u.RefreshToken = token
	return nil
}

func (s *memStore) ClearRefreshToken(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return services.ErrUserNotFound
	}
	u.RefreshToken = ""
	return nil
}

func (s *memStore) get(id string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id]
}

// fakeUploader "hosts" a file at a URL derived from its contents. Files whose
// contents are listed in fail are rejected.
type fakeUploader struct {
	mu       sync.Mutex
	fail     map[string]bool
	uploaded []string
}

func (f *fakeUploader) UploadLocalFile(_ context.Context, localPath string) (*services.UploadResult, error) {
	if localPath == "" {
		return nil, nil
	}
	defer os.Remove(localPath)

	data, err := os.ReadFile(localPath)
	if err != nil {
		return nil, err
	}
	content := strings.TrimSpace(string(data))

	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded = append(f.uploaded, content)
	if f.fail[content] {
		return nil, fmt.Errorf("media host rejected %s", content)
	}
	return &services.UploadResult{
		URL:       "http://media.test/" + content,
		SecureURL: "https://media.test/" + content,
		PublicID:  content,
	}, nil
}

func (f *fakeUploader) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.uploaded...)
}
