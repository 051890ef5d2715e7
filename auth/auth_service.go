package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jrsteele09/go-kyc-client/internal/errors"
	"github.com/jrsteele09/go-kyc-client/sessions"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const (
	loginFailedMsg        = "Login failed"
	registrationFailedMsg = "Registration failed"

	defaultRequestTimeout = 15 * time.Second
)

// Service drives the backend auth endpoints and keeps the session store in step with them.
type Service struct {
	api            API             // Backend auth endpoints
	session        *sessions.Store // The single live session
	requestTimeout time.Duration   // Hard bound on every network call
	logger         zerolog.Logger
	refreshes      singleflight.Group // Coalesces concurrent refreshes of one refresh token
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithRequestTimeout bounds each login, register and refresh call.
func WithRequestTimeout(d time.Duration) ServiceOption {
	return func(as *Service) {
		if d > 0 {
			as.requestTimeout = d
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(as *Service) {
		as.logger = logger
	}
}

// NewService initializes a new Service with required dependencies.
func NewService(api API, session *sessions.Store, options ...ServiceOption) (*Service, error) {
	if api == nil {
		return nil, fmt.Errorf("[NewService] api is required")
	}
	if session == nil {
		return nil, fmt.Errorf("[NewService] session store is required")
	}

	as := &Service{
		api:            api,
		session:        session,
		requestTimeout: defaultRequestTimeout,
		logger:         zerolog.Nop(),
	}
	for _, opt := range options {
		opt(as)
	}
	return as, nil
}

// Session returns the store this service drives.
func (as *Service) Session() *sessions.Store {
	return as.session
}

// Login authenticates against the backend. Only one login or registration may be in flight;
// a second attempt fails with AuthInProgressErr and leaves the session untouched. On failure
// the session error holds the backend's message, or "Login failed".
func (as *Service) Login(ctx context.Context, request LoginRequest) (*LoginResponse, error) {
	if !as.session.BeginLoading() {
		return nil, AuthInProgressErr
	}

	if err := request.Validate(); err != nil {
		as.session.FailLoading(failureMessage(err, loginFailedMsg))
		return nil, fmt.Errorf("[Login] %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, as.requestTimeout)
	defer cancel()

	response, err := as.api.Login(ctx, request)
	if err == nil && !response.complete() {
		err = fmt.Errorf("%w: login response missing credentials", InvalidResponseErr)
	}
	if err == nil {
		err = as.session.LoginSuccess(response.User, response.Token, response.RefreshToken)
	}
	if err != nil {
		as.session.FailLoading(failureMessage(err, loginFailedMsg))
		as.logger.Warn().Err(err).Str("username", request.Username).Msg("login failed")
		return nil, fmt.Errorf("[Login] %w", err)
	}

	as.logger.Info().Str("username", request.Username).Msg("logged in")
	return response, nil
}

// Register creates an account. Success does not authenticate: it only ends the loading state
// with no error set.
func (as *Service) Register(ctx context.Context, request RegisterRequest) error {
	if !as.session.BeginLoading() {
		return AuthInProgressErr
	}

	if err := request.Validate(); err != nil {
		as.session.FailLoading(failureMessage(err, registrationFailedMsg))
		return fmt.Errorf("[Register] %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, as.requestTimeout)
	defer cancel()

	if err := as.api.Register(ctx, request); err != nil {
		as.session.FailLoading(failureMessage(err, registrationFailedMsg))
		as.logger.Warn().Err(err).Str("username", request.Username).Msg("registration failed")
		return fmt.Errorf("[Register] %w", err)
	}

	as.session.SetLoading(false)
	as.logger.Info().Str("username", request.Username).Msg("registered")
	return nil
}

// Logout ends the session locally. It is safe to call in any state.
func (as *Service) Logout() {
	as.session.Logout()
}

// RefreshToken exchanges the session's refresh token for new credentials. Any failure of the
// exchange logs the session out. Concurrent callers holding the same refresh token share a
// single network call, which runs under the request timeout and not any one caller's ctx.
// If the session changed hands while the call was in flight, the result is dropped and
// SessionSupersededErr is returned.
func (as *Service) RefreshToken(ctx context.Context) (*LoginResponse, error) {
	refreshToken := as.session.Snapshot().RefreshToken
	if refreshToken == "" {
		return nil, NoRefreshTokenErr
	}

	shared := context.WithoutCancel(ctx)
	results := as.refreshes.DoChan(refreshToken, func() (interface{}, error) {
		return as.refresh(shared, refreshToken)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("[RefreshToken] %w", ctx.Err())
	case res := <-results:
		if res.Err != nil {
			return nil, fmt.Errorf("[RefreshToken] %w", res.Err)
		}
		return res.Val.(*LoginResponse), nil
	}
}

func (as *Service) refresh(ctx context.Context, refreshToken string) (*LoginResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, as.requestTimeout)
	defer cancel()

	response, err := as.api.Refresh(ctx, RefreshRequest{RefreshToken: refreshToken})
	if err == nil && !response.hasTokens() {
		err = fmt.Errorf("%w: refresh response missing tokens", InvalidResponseErr)
	}
	if err != nil {
		if as.session.LogoutIf(refreshToken) {
			as.logger.Warn().Err(err).Msg("token refresh failed, logging out")
		} else {
			as.logger.Warn().Err(err).Msg("token refresh failed for a session that has since changed")
		}
		return nil, err
	}

	applied, err := as.session.RefreshTokensIf(refreshToken, response.Token, response.RefreshToken)
	if err != nil {
		return nil, err
	}
	if !applied {
		as.logger.Info().Msg("dropping refreshed tokens, the session changed while refreshing")
		return nil, SessionSupersededErr
	}
	as.logger.Debug().Msg("tokens refreshed")
	return response, nil
}

// TokenSource exposes the session bearer token to oauth2 aware transports. An expired token
// is refreshed through RefreshToken before it is handed out.
func (as *Service) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &sessionTokenSource{ctx: ctx, service: as}
}

// HTTPClient returns a client that sends the session bearer token with every request. The
// token is read from the session per request, so a logout or rotation takes effect at once.
// A *http.Client stored in ctx under oauth2.HTTPClient supplies the base transport.
func (as *Service) HTTPClient(ctx context.Context) *http.Client {
	var base http.RoundTripper
	if c, ok := ctx.Value(oauth2.HTTPClient).(*http.Client); ok && c != nil {
		base = c.Transport
	}
	return &http.Client{
		Transport: &oauth2.Transport{Source: as.TokenSource(ctx), Base: base},
	}
}

type sessionTokenSource struct {
	ctx     context.Context
	service *Service
}

func (ts *sessionTokenSource) Token() (*oauth2.Token, error) {
	session := ts.service.session
	if !session.IsAuthenticated() {
		return nil, NotAuthenticatedErr
	}

	if session.IsTokenExpired() {
		if _, err := ts.service.RefreshToken(ts.ctx); err != nil {
			return nil, err
		}
	}

	st := session.Snapshot()
	if !st.IsAuthenticated {
		return nil, NotAuthenticatedErr
	}
	token := &oauth2.Token{
		AccessToken:  st.Token,
		TokenType:    "Bearer",
		RefreshToken: st.RefreshToken,
	}
	if exp, err := sessions.TokenExpiry(st.Token); err == nil {
		token.Expiry = exp
	}
	return token, nil
}

// failureMessage picks the text stored in the session error.
func failureMessage(err error, fallback string) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return errors.MessageOr(err, fallback)
}
