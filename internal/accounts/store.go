// Package accounts is an in-memory stand-in for the account system: it knows
// which viewer owns which camera and which message token each viewer holds.
package accounts

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dkeye/CamRelay/internal/core"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrUnknownAccount = errors.New("unknown account")
	ErrAccountExists  = errors.New("account already exists")
	ErrCameraTaken    = errors.New("camera already has an owner")
)

var _ core.Authority = (*Store)(nil)

type Account struct {
	Username     string
	MessageToken string
	Cameras      []string
}

type Store struct {
	mu       sync.RWMutex
	accounts map[string]*Account
	owners   map[string]string // camera id -> username
}

func NewStore() *Store {
	return &Store{
		accounts: make(map[string]*Account),
		owners:   make(map[string]string),
	}
}

func (s *Store) AddAccount(username string, cameras ...string) error {
	if username == "" {
		return fmt.Errorf("%w: empty username", ErrUnknownAccount)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[username]; ok {
		return fmt.Errorf("%w: %s", ErrAccountExists, username)
	}
	for _, cam := range cameras {
		if owner, ok := s.owners[cam]; ok {
			return fmt.Errorf("%w: %s owned by %s", ErrCameraTaken, cam, owner)
		}
	}
	acc := &Account{Username: username}
	for _, cam := range cameras {
		if slices.Contains(acc.Cameras, cam) {
			continue
		}
		acc.Cameras = append(acc.Cameras, cam)
		s.owners[cam] = username
	}
	s.accounts[username] = acc
	log.Info().Str("module", "accounts").Str("username", username).Int("cameras", len(acc.Cameras)).Msg("account added")
	return nil
}

// IssueToken replaces the viewer's message token with a fresh one.
func (s *Store) IssueToken(username string) (string, error) {
	token := uuid.NewString()
	if err := s.SetToken(username, token); err != nil {
		return "", err
	}
	return token, nil
}

func (s *Store) SetToken(username, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[username]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAccount, username)
	}
	acc.MessageToken = token
	return nil
}

func (s *Store) Cameras(username string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if acc, ok := s.accounts[username]; ok {
		return slices.Clone(acc.Cameras)
	}
	return nil
}

func (s *Store) AuthenticateViewerToken(ctx context.Context, username, token string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[username]
	if !ok || token == "" || acc.MessageToken == "" {
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(acc.MessageToken), []byte(token)) == 1, nil
}

func (s *Store) IsViewerAuthorizedForCamera(ctx context.Context, username, camera string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	owner, ok := s.owners[camera]
	return ok && owner == username, nil
}
