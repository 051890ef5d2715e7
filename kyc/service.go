package kyc

import (
	"context"
	"fmt"
	"time"

	"github.com/jrsteele09/go-kyc-client/internal/errors"
	"github.com/rs/zerolog"
)

const (
	submissionFailedMsg = "Submission failed"
	statusFailedMsg     = "Failed to load status"
	documentsFailedMsg  = "Failed to load documents"

	defaultRequestTimeout = 30 * time.Second
)

// API is the backend's KYC surface. Calls are expected to carry the session bearer token.
type API interface {
	SubmitDocument(ctx context.Context, customerID string, request SubmissionRequest) (*SubmissionResponse, error)
	GetStatus(ctx context.Context, customerID string) (*Status, error)
	GetDocuments(ctx context.Context, customerID string) ([]Document, error)
}

// Service runs KYC calls and records their outcome in the store.
type Service struct {
	api            API
	store          *Store
	requestTimeout time.Duration
	logger         zerolog.Logger
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

func WithRequestTimeout(d time.Duration) ServiceOption {
	return func(ks *Service) {
		if d > 0 {
			ks.requestTimeout = d
		}
	}
}

func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(ks *Service) {
		ks.logger = logger
	}
}

func NewService(api API, store *Store, options ...ServiceOption) (*Service, error) {
	if api == nil {
		return nil, fmt.Errorf("[kyc NewService] api is required")
	}
	if store == nil {
		return nil, fmt.Errorf("[kyc NewService] store is required")
	}
	ks := &Service{
		api:            api,
		store:          store,
		requestTimeout: defaultRequestTimeout,
		logger:         zerolog.Nop(),
	}
	for _, opt := range options {
		opt(ks)
	}
	return ks, nil
}

func (ks *Service) Store() *Store {
	return ks.store
}

// SubmitDocument uploads a document for customerID.
func (ks *Service) SubmitDocument(ctx context.Context, customerID string, request SubmissionRequest) (*SubmissionResponse, error) {
	if customerID == "" {
		return nil, fmt.Errorf("[SubmitDocument] customer id is required")
	}
	if !request.DocType.Valid() {
		return nil, fmt.Errorf("[SubmitDocument] unknown document type %q", request.DocType)
	}
	if request.LegalBasis == "" {
		request.LegalBasis = LegalBasisLegalObligation
	}

	ks.store.SetSubmitting(true)

	ctx, cancel := context.WithTimeout(ctx, ks.requestTimeout)
	defer cancel()

	response, err := ks.api.SubmitDocument(ctx, customerID, request)
	if err != nil {
		ks.store.SubmitFailure(errors.MessageOr(err, submissionFailedMsg))
		ks.logger.Warn().Err(err).Str("customer_id", customerID).Msg("document submission failed")
		return nil, fmt.Errorf("[SubmitDocument] %w", err)
	}

	ks.store.SubmitSuccess(response)
	return response, nil
}

// LoadStatus fetches the verification status for customerID.
func (ks *Service) LoadStatus(ctx context.Context, customerID string) (*Status, error) {
	ks.store.SetLoading(true)

	ctx, cancel := context.WithTimeout(ctx, ks.requestTimeout)
	defer cancel()

	status, err := ks.api.GetStatus(ctx, customerID)
	if err != nil {
		ks.store.LoadFailure(errors.MessageOr(err, statusFailedMsg))
		return nil, fmt.Errorf("[LoadStatus] %w", err)
	}

	ks.store.SetCurrentStatus(status)
	return status, nil
}

// LoadDocuments fetches every document submitted for customerID.
func (ks *Service) LoadDocuments(ctx context.Context, customerID string) ([]Document, error) {
	ks.store.SetLoading(true)

	ctx, cancel := context.WithTimeout(ctx, ks.requestTimeout)
	defer cancel()

	documents, err := ks.api.GetDocuments(ctx, customerID)
	if err != nil {
		ks.store.LoadFailure(errors.MessageOr(err, documentsFailedMsg))
		return nil, fmt.Errorf("[LoadDocuments] %w", err)
	}

	ks.store.SetSubmissions(documents)
	return documents, nil
}
