package sessions

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/miportal/portal/internal/models"
	"github.com/sirupsen/logrus"
)

// AuthClient is the part of the portal API the session lifecycle needs.
type AuthClient interface {
	Authenticate(ctx context.Context, username, password string) (string, error)
	CurrentUser(ctx context.Context, token string) (*models.User, error)
}

// State is a snapshot of the authentication state.
type State struct {
	User    *models.User
	Loading bool
}

func (s State) IsAuthenticated() bool {
	return s.User != nil
}

// Store owns the session lifecycle: restore, login and logout. One Store is
// created per process and handed to whatever needs it.
type Store struct {
	client AuthClient
	tokens TokenStore

	// transition serialises Restore, Login and Logout. It may be held
	// across network calls; mu is not.
	transition sync.Mutex

	mu          sync.RWMutex
	state       State
	token       string
	subscribers map[int]func(State)
	nextID      int
}

func NewStore(client AuthClient, tokens TokenStore) *Store {
	return &Store{
		client:      client,
		tokens:      tokens,
		state:       State{Loading: true},
		subscribers: make(map[int]func(State)),
	}
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Token returns the credential token while a user is signed in.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state.User == nil || len(s.token) == 0 {
		return "", false
	}
	return s.token, true
}

// Subscribe registers fn to be called after every state change. The
// returned function removes the subscription.
//
// Callbacks run while a Restore, Login or Logout is still holding the
// transition lock, so fn must not call any of those methods and must
// not block. Reading State or Token from fn is fine.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Restore validates a previously persisted token. It never fails: any
// problem leaves the store signed out with the token discarded.
func (s *Store) Restore(ctx context.Context) {
	s.transition.Lock()
	defer s.transition.Unlock()

	s.update(func(state *State) {
		state.Loading = true
	})

	token, err := s.tokens.Load()
	if errors.Is(err, ErrNoToken) {
		logrus.Debugln("No stored credential token, starting signed out")
		s.finishRestore(nil, "")
		return
	} else if err != nil {
		logrus.WithError(err).Warnln("Failed to read stored credential token")
		s.discardToken()
		s.finishRestore(nil, "")
		return
	}

	user, err := s.client.CurrentUser(ctx, token)
	if err != nil {
		logrus.WithError(err).Debugln("Stored credential token rejected, discarding it")
		s.discardToken()
		s.finishRestore(nil, "")
		return
	}

	logrus.WithFields(logrus.Fields{
		"user": user.GetIdentity(),
	}).Debugln("Session restored")

	s.finishRestore(user, token)
}

func (s *Store) finishRestore(user *models.User, token string) {
	s.update(func(state *State) {
		state.User = user
		state.Loading = false
		s.token = token
	})
}

// Login authenticates, persists the token and loads the identity. A failure
// at any step leaves no token behind and returns the error. Loading is
// never touched.
func (s *Store) Login(ctx context.Context, username, password string) error {
	s.transition.Lock()
	defer s.transition.Unlock()

	token, err := s.client.Authenticate(ctx, username, password)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"username": username,
		}).Debugln("Authentication failed")
		return err
	}

	if err := s.tokens.Save(token); err != nil {
		s.discardToken()
		s.signOut()
		return fmt.Errorf("persist credential token: %w", err)
	}

	user, err := s.client.CurrentUser(ctx, token)
	if err != nil {
		logrus.WithError(err).Debugln("Failed to load identity after login")
		s.discardToken()
		s.signOut()
		return err
	}

	logrus.WithFields(logrus.Fields{
		"user": user.GetIdentity(),
	}).Debugln("Logged in")

	s.update(func(state *State) {
		state.User = user
		s.token = token
	})

	return nil
}

// Logout forgets the token and the identity. It makes no network call.
func (s *Store) Logout() {
	s.transition.Lock()
	defer s.transition.Unlock()

	s.discardToken()
	s.signOut()
}

func (s *Store) signOut() {
	s.update(func(state *State) {
		state.User = nil
		s.token = ""
	})
}

func (s *Store) discardToken() {
	if err := s.tokens.Delete(); err != nil {
		logrus.WithError(err).Warnln("Failed to delete stored credential token")
	}
}

// update applies fn under the state lock then notifies subscribers outside
// of it.
func (s *Store) update(fn func(state *State)) {
	s.mu.Lock()
	fn(&s.state)
	snapshot := s.snapshot()
	subscribers := make([]func(State), 0, len(s.subscribers))
	for _, subscriber := range s.subscribers {
		subscribers = append(subscribers, subscriber)
	}
	s.mu.Unlock()

	for _, subscriber := range subscribers {
		subscriber(snapshot)
	}
}

// snapshot must be called with mu held.
func (s *Store) snapshot() State {
	state := State{Loading: s.state.Loading}
	if s.state.User != nil {
		user := *s.state.User
		state.User = &user
	}
	return state
}
