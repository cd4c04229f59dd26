package auth

import (
	"context"
	"errors"
	"sync"
)

type memStore struct {
	mu       sync.Mutex
	users    map[string]*User
	sessions map[string]*Session
	writes   int
	failGet  error
}

func newMemStore() *memStore {
	return &memStore{users: map[string]*User{}, sessions: map[string]*Session{}}
}

func (m *memStore) GetUser(_ context.Context, userID string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return nil, m.failGet
	}
	if u, ok := m.users[userID]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *memStore) CreateUser(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if _, ok := m.users[user.UserID]; ok {
		return ErrUserExists
	}
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *memStore) UpdateUser(_ context.Context, userID string, patch UserPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	u, ok := m.users[userID]
	if !ok {
		return errors.New("user not found")
	}
	if patch.Verified != nil {
		u.Verified = *patch.Verified
	}
	if patch.VerifyKey != nil {
		u.VerifyKey = *patch.VerifyKey
	}
	if patch.ResetKey != nil {
		u.ResetKey = *patch.ResetKey
	}
	return nil
}

func (m *memStore) findBy(match func(*User) bool) *User {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*User, error) {
	return m.findBy(func(u *User) bool { return u.Email == email }), nil
}

func (m *memStore) GetUserByVerifyKey(_ context.Context, hash string) (*User, error) {
	return m.findBy(func(u *User) bool { return hash != "" && u.VerifyKey == hash }), nil
}

func (m *memStore) GetUserByResetKey(_ context.Context, hash string) (*User, error) {
	return m.findBy(func(u *User) bool { return hash != "" && u.ResetKey == hash }), nil
}

func (m *memStore) UpdatePassword(_ context.Context, userID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	u, ok := m.users[userID]
	if !ok {
		return errors.New("user not found")
	}
	u.PasswordHash = hash
	u.ResetKey = ""
	return nil
}

func (m *memStore) CreateSession(_ context.Context, session *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *session
	m.sessions[session.Key] = &cp
	return nil
}

func (m *memStore) GetSession(_ context.Context, key string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[key]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (m *memStore) DeleteSession(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key)
	return nil
}

func (m *memStore) ClearCSRFToken(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[key]; ok {
		s.CSRFToken = ""
	}
	return nil
}

type sentMail struct {
	To, Subject, Body string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, to, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (n *recordingNotifier) last() sentMail {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return sentMail{}
	}
	return n.sent[len(n.sent)-1]
}
