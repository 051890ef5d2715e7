package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/jrsteele09/go-kyc-client/auth"
	"github.com/jrsteele09/go-kyc-client/credentials"
	"github.com/jrsteele09/go-kyc-client/credentials/filerepo"
	"github.com/jrsteele09/go-kyc-client/credentials/redisrepo"
	credentialrepofake "github.com/jrsteele09/go-kyc-client/credentials/repofake"
	"github.com/jrsteele09/go-kyc-client/internal/config"
	"github.com/jrsteele09/go-kyc-client/internal/logging"
	"github.com/jrsteele09/go-kyc-client/internal/ui"
	"github.com/jrsteele09/go-kyc-client/kyc"
	"github.com/jrsteele09/go-kyc-client/kycapi"
	"github.com/jrsteele09/go-kyc-client/sessions"
	"github.com/rs/zerolog"
)

// app is everything one kycctl invocation needs, built from the environment.
type app struct {
	config  config.Config
	logger  zerolog.Logger
	out     io.Writer
	paint   ui.Painter
	session *sessions.Store
	auth    *auth.Service
	kyc     *kyc.Service

	stopWatch context.CancelFunc
	watchDone sync.WaitGroup
	closers   []func() error
}

func newApp(ctx context.Context, stdout, stderr io.Writer) (*app, error) {
	c, err := config.New()
	if err != nil {
		return nil, err
	}
	logger := logging.New(stderr, c.GetLogLevel(), c.IsDev())

	a := &app{
		config: c,
		logger: logger,
		out:    stdout,
		paint:  ui.NewPainter(stdout),
	}

	repo, err := a.openCredentialRepo(ctx)
	if err != nil {
		return nil, err
	}

	a.session, err = sessions.NewStore(repo,
		sessions.WithLogger(logger),
		sessions.WithPersistTimeout(c.GetPersistTimeout()),
	)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("[newApp] %w", err)
	}

	client := kycapi.New(c.GetAPIBaseURL(), kycapi.WithLogger(logger))
	a.auth, err = auth.NewService(client, a.session,
		auth.WithLogger(logger),
		auth.WithRequestTimeout(c.GetAuthRequestTimeout()),
	)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("[newApp] %w", err)
	}

	a.kyc, err = kyc.NewService(client.WithAuthorizedClient(a.auth.HTTPClient(ctx)), kyc.NewStore(),
		kyc.WithLogger(logger),
		kyc.WithRequestTimeout(c.GetKYCRequestTimeout()),
	)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("[newApp] %w", err)
	}

	a.watchSession(ctx)
	return a, nil
}

func (a *app) openCredentialRepo(ctx context.Context) (credentials.Repo, error) {
	switch a.config.GetStorageBackend() {
	case config.StorageRedis:
		client, err := redisrepo.NewClient(ctx, a.config.GetRedisURL())
		if err != nil {
			return nil, fmt.Errorf("[openCredentialRepo] %w", err)
		}
		a.closers = append(a.closers, client.Close)
		return redisrepo.New(client, a.config.GetRedisKeyPrefix()), nil
	case config.StorageMemory:
		a.logger.Warn().Msg("credentials are kept in memory and will not survive this process")
		return credentialrepofake.NewFakeCredentialRepo(), nil
	default:
		return filerepo.New(a.config.GetCredentialsFile()), nil
	}
}

// watchSession clears the KYC view whenever the session stops being authenticated, whether by
// an explicit logout or a failed refresh.
func (a *app) watchSession(ctx context.Context) {
	ctx, a.stopWatch = context.WithCancel(ctx)
	changes := a.session.Watch(ctx)

	a.watchDone.Add(1)
	go func() {
		defer a.watchDone.Done()
		wasAuthenticated := false
		for st := range changes {
			if wasAuthenticated && !st.IsAuthenticated {
				a.kyc.Store().Reset()
				a.logger.Debug().Msg("session ended, kyc state cleared")
			}
			wasAuthenticated = st.IsAuthenticated
		}
	}()
}

func (a *app) close() {
	if a.stopWatch != nil {
		a.stopWatch()
		a.watchDone.Wait()
	}
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			a.logger.Warn().Err(err).Msg("close failed")
		}
	}
}
