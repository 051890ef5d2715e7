package sessions

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jrsteele09/go-kyc-client/credentials"
	"github.com/jrsteele09/go-kyc-client/internal/errors"
	"github.com/jrsteele09/go-kyc-client/internal/watch"
	"github.com/jrsteele09/go-kyc-client/users"
	"github.com/rs/zerolog"
)

const defaultPersistTimeout = 2 * time.Second

// Store owns the single live session State and mirrors its credentials into a
// credentials.Repo. Every mutator swaps in a complete new State under the lock, so readers
// never observe a partially applied change.
type Store struct {
	mu    sync.RWMutex
	state State
	seq   uint64 // Bumped by every change to the credential fields

	persistMu    sync.Mutex // Serializes repo writes, never held together with mu
	persistedSeq uint64

	repo           credentials.Repo
	watchers       *watch.Broadcaster[State]
	logger         zerolog.Logger
	nowTime        func() time.Time
	persistTimeout time.Duration
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

// WithLogger sets the logger used to report persistence problems.
func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithPersistTimeout bounds every call into the credentials repo.
func WithPersistTimeout(d time.Duration) StoreOption {
	return func(s *Store) {
		if d > 0 {
			s.persistTimeout = d
		}
	}
}

// NewStore creates the session store and rehydrates it from repo.
func NewStore(repo credentials.Repo, options ...StoreOption) (*Store, error) {
	if repo == nil {
		return nil, fmt.Errorf("[NewStore] credentials repo is required")
	}

	s := &Store{
		repo:           repo,
		watchers:       watch.New[State](),
		logger:         zerolog.Nop(),
		nowTime:        time.Now,
		persistTimeout: defaultPersistTimeout,
	}
	for _, opt := range options {
		opt(s)
	}

	s.state = s.rehydrate()
	return s, nil
}

// rehydrate seeds the initial state. Anything short of a complete, parseable credential set
// yields a logged out session and clears whatever partial keys were left behind.
func (s *Store) rehydrate() State {
	ctx, cancel := s.persistContext()
	defer cancel()

	values := make(map[credentials.Key]string, len(credentials.AllKeys))
	complete := true
	for _, k := range credentials.AllKeys {
		v, err := s.repo.Get(ctx, k)
		if err != nil && !errors.Is(err, credentials.ErrNotFound) {
			s.logger.Warn().Err(err).Str("key", string(k)).Msg("reading persisted session")
		}
		if err != nil || v == "" {
			complete = false
			continue
		}
		values[k] = v
	}

	if complete {
		var user *users.User
		err := json.Unmarshal([]byte(values[credentials.KeyCurrentUser]), &user)
		if err == nil && user != nil {
			s.logger.Debug().Str("user", user.Username).Msg("session restored")
			return authenticated(user, values[credentials.KeyAccessToken], values[credentials.KeyRefreshToken])
		}
		s.logger.Warn().Err(err).Msg("discarding unparseable persisted user")
	}

	s.clearPersisted(ctx)
	return loggedOut()
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// IsAuthenticated reports whether the session holds a user and both tokens.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsAuthenticated
}

// CurrentUser returns a copy of the session user, or nil when logged out.
func (s *Store) CurrentUser() *users.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.User.Clone()
}

// Token returns the bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// Loading reports whether a login or register call is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Loading
}

// Error returns the last failure message, or "".
func (s *Store) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Error
}

// IsAdmin reports whether the session user holds ADMIN or ROLE_ADMIN.
func (s *Store) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsAdmin()
}

// IsOperator reports whether the session user holds OPERATOR.
func (s *Store) IsOperator() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsOperator()
}

// IsTokenExpired reports whether the current token is absent, undecodable or past its expiry.
func (s *Store) IsTokenExpired() bool {
	return IsExpired(s.Token(), s.nowTime())
}

// Watch delivers the current state immediately and then the latest state after every change.
// Intermediate states may be skipped by a slow reader. The channel closes when ctx is done.
func (s *Store) Watch(ctx context.Context) <-chan State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.watchers.Subscribe(ctx, s.state.clone())
}

// SetLoading replaces the loading flag.
func (s *Store) SetLoading(loading bool) {
	s.update(func(st State) State {
		st.Loading = loading
		return st
	})
}

// SetError replaces the error message; "" clears it.
func (s *Store) SetError(msg string) {
	s.update(func(st State) State {
		st.Error = msg
		return st
	})
}

// BeginLoading marks an authentication attempt as in flight and clears the previous error.
// It returns false, changing nothing, when an attempt is already in flight.
func (s *Store) BeginLoading() bool {
	started := false
	s.update(func(st State) State {
		if st.Loading {
			return st
		}
		started = true
		st.Loading = true
		st.Error = ""
		return st
	})
	return started
}

// FailLoading ends an in flight attempt with an error in a single transition.
func (s *Store) FailLoading(msg string) {
	s.update(func(st State) State {
		st.Loading = false
		st.Error = msg
		return st
	})
}

// LoginSuccess is the only transition into the authenticated state.
func (s *Store) LoginSuccess(user *users.User, token, refreshToken string) error {
	if user == nil || token == "" || refreshToken == "" {
		return fmt.Errorf("[LoginSuccess] %w: user, token and refresh token are required", errors.ErrInvalidCredentials)
	}

	s.mu.Lock()
	s.state = authenticated(user, token, refreshToken)
	seq, st := s.commitLocked(true)
	s.mu.Unlock()

	s.persist(seq, st)
	return nil
}

// Logout resets to the logged out state and clears every persisted key. Calling it while
// already logged out leaves the state unchanged but still clears the keys.
func (s *Store) Logout() {
	s.mu.Lock()
	changed := s.state != loggedOut()
	s.state = loggedOut()
	seq, st := s.commitLocked(changed)
	s.mu.Unlock()

	s.persist(seq, st)
}

// LogoutIf logs out only while the session still holds refreshToken. It reports whether it did.
func (s *Store) LogoutIf(refreshToken string) bool {
	s.mu.Lock()
	if refreshToken == "" || s.state.RefreshToken != refreshToken {
		s.mu.Unlock()
		return false
	}
	s.state = loggedOut()
	seq, st := s.commitLocked(true)
	s.mu.Unlock()

	s.persist(seq, st)
	return true
}

// UpdateUser replaces the session user and re-persists it.
func (s *Store) UpdateUser(user *users.User) error {
	if user == nil {
		return fmt.Errorf("[UpdateUser] %w: user is required", errors.ErrInvalidCredentials)
	}

	s.mu.Lock()
	if !s.state.IsAuthenticated {
		s.mu.Unlock()
		return fmt.Errorf("[UpdateUser] %w", errors.ErrNotAuthenticated)
	}
	next := s.state
	next.User = user.Clone()
	s.state = next
	seq, st := s.commitLocked(true)
	s.mu.Unlock()

	s.persist(seq, st)
	return nil
}

// RefreshTokens replaces both tokens, leaving the user and authentication flag untouched.
func (s *Store) RefreshTokens(token, refreshToken string) error {
	_, err := s.replaceTokens("", token, refreshToken)
	if err != nil {
		return fmt.Errorf("[RefreshTokens] %w", err)
	}
	return nil
}

// RefreshTokensIf replaces both tokens only while the session still holds expectedRefresh, so
// a refresh answered after the session changed hands cannot land on the new session. It
// reports whether the tokens were replaced.
func (s *Store) RefreshTokensIf(expectedRefresh, token, refreshToken string) (bool, error) {
	if expectedRefresh == "" {
		return false, fmt.Errorf("[RefreshTokensIf] %w: expected refresh token is required", errors.ErrInvalidCredentials)
	}
	applied, err := s.replaceTokens(expectedRefresh, token, refreshToken)
	if err != nil {
		return false, fmt.Errorf("[RefreshTokensIf] %w", err)
	}
	return applied, nil
}

// replaceTokens swaps the tokens; a non-empty expectedRefresh must match the current one.
func (s *Store) replaceTokens(expectedRefresh, token, refreshToken string) (bool, error) {
	if token == "" || refreshToken == "" {
		return false, fmt.Errorf("%w: token and refresh token are required", errors.ErrInvalidCredentials)
	}

	s.mu.Lock()
	if !s.state.IsAuthenticated {
		s.mu.Unlock()
		if expectedRefresh != "" {
			return false, nil
		}
		return false, errors.ErrNotAuthenticated
	}
	if expectedRefresh != "" && s.state.RefreshToken != expectedRefresh {
		s.mu.Unlock()
		return false, nil
	}
	next := s.state
	next.Token = token
	next.RefreshToken = refreshToken
	s.state = next
	seq, st := s.commitLocked(true)
	s.mu.Unlock()

	s.persist(seq, st)
	return true, nil
}

// update applies fn to a copy of the state and swaps it in, publishing only real changes.
// fn must not touch the credential fields.
func (s *Store) update(fn func(State) State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	next := fn(prev)
	if next == prev {
		return
	}
	s.state = next
	s.publishLocked()
}

// commitLocked stamps a credential change with the next sequence number and returns the
// snapshot to persist once mu is released.
func (s *Store) commitLocked(publish bool) (uint64, State) {
	s.seq++
	if publish {
		s.publishLocked()
	}
	return s.seq, s.state.clone()
}

func (s *Store) publishLocked() {
	s.watchers.Publish(s.state.clone())
}

// persist mirrors the credential fields of st. A snapshot older than one already written is
// dropped, so the repo always converges on the latest state. Failures are logged; the
// in-memory state stays authoritative.
func (s *Store) persist(seq uint64, st State) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if seq <= s.persistedSeq {
		return
	}
	s.persistedSeq = seq

	ctx, cancel := s.persistContext()
	defer cancel()

	if !st.IsAuthenticated {
		s.clearPersisted(ctx)
		return
	}

	data, err := json.Marshal(st.User)
	if err != nil {
		s.logger.Error().Err(err).Msg("encoding session user")
		return
	}
	s.set(ctx, credentials.KeyAccessToken, st.Token)
	s.set(ctx, credentials.KeyRefreshToken, st.RefreshToken)
	s.set(ctx, credentials.KeyCurrentUser, string(data))
}

func (s *Store) set(ctx context.Context, key credentials.Key, value string) {
	if err := s.repo.Set(ctx, key, value); err != nil {
		s.logger.Error().Err(err).Str("key", string(key)).Msg("persisting session")
	}
}

func (s *Store) clearPersisted(ctx context.Context) {
	if err := s.repo.Delete(ctx, credentials.AllKeys...); err != nil {
		s.logger.Error().Err(err).Msg("clearing persisted session")
	}
}

func (s *Store) persistContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.persistTimeout)
}
