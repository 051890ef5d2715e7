package kycapi_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-kyc-client/auth"
	"github.com/jrsteele09/go-kyc-client/internal/errors"
	"github.com/jrsteele09/go-kyc-client/kyc"
	"github.com/jrsteele09/go-kyc-client/kycapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *kycapi.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return kycapi.New(srv.URL + "/api/")
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		serverMsg  string
		statusText string
		expected   string
	}{
		{"400 with message", http.StatusBadRequest, "Username is taken", "", "Username is taken"},
		{"400 without message", http.StatusBadRequest, "", "", "Bad request"},
		{"401 ignores message", http.StatusUnauthorized, "Bad credentials", "", "Unauthorized. Please login again."},
		{"403", http.StatusForbidden, "", "", "Access denied. You do not have permission to perform this action."},
		{"404", http.StatusNotFound, "no such customer", "", "Resource not found"},
		{"422 with message", http.StatusUnprocessableEntity, "Invalid document", "", "Invalid document"},
		{"422 without message", http.StatusUnprocessableEntity, "", "", "Validation error"},
		{"500", http.StatusInternalServerError, "stack trace", "", "Internal server error. Please try again later."},
		{"other with message", http.StatusConflict, "Already submitted", "", "Already submitted"},
		{"other with status text", http.StatusServiceUnavailable, "", "Down for maintenance", "Error 503: Down for maintenance"},
		{"other without status text", http.StatusBadGateway, "", "", "Error 502: Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, kycapi.ErrorMessage(tt.status, tt.serverMsg, tt.statusText))
		})
	}
}

func TestClient_Login(t *testing.T) {
	requestIDs := make(chan string, 1)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		requestIDs <- r.Header.Get("X-Request-ID")

		var req auth.LoginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice", req.Username)

		_, _ = io.WriteString(w, `{"token":"t1","refreshToken":"r1","user":{"id":"u1","username":"alice","roles":["ADMIN"]}}`)
	})

	resp, err := client.Login(context.Background(), auth.LoginRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	require.Equal(t, "t1", resp.Token)
	require.Equal(t, "r1", resp.RefreshToken)
	require.NotNil(t, resp.User)
	require.True(t, resp.User.IsAdmin())

	_, err = uuid.Parse(<-requestIDs)
	require.NoError(t, err, "request id should be a uuid")
}

func TestClient_ErrorResponses(t *testing.T) {
	t.Run("server message is exposed", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"message":"Bad credentials"}`)
		})

		_, err := client.Login(context.Background(), auth.LoginRequest{Username: "alice", Password: "secret1"})
		var apiErr *kycapi.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusUnauthorized, apiErr.Status)
		require.Equal(t, "Bad credentials", apiErr.ServerMessage())
		require.Equal(t, "Unauthorized. Please login again.", apiErr.Error())
		require.NotEmpty(t, apiErr.RequestID)
		require.Equal(t, "Bad credentials", errors.MessageOr(err, "Login failed"))
	})

	t.Run("non JSON body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, "<html>bad gateway</html>")
		})

		err := client.Register(context.Background(), auth.RegisterRequest{Username: "bob"})
		var apiErr *kycapi.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Empty(t, apiErr.ServerMessage())
		require.Equal(t, "Error 502: Bad Gateway", apiErr.Error())
		require.Equal(t, "Registration failed", errors.MessageOr(err, "Registration failed"))
	})

	t.Run("undecodable success body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "not json")
		})

		_, err := client.Refresh(context.Background(), auth.RefreshRequest{RefreshToken: "r1"})
		require.ErrorContains(t, err, "decode response")
	})

	t.Run("cancelled context", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := client.Login(ctx, auth.LoginRequest{Username: "alice", Password: "secret1"})
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestClient_RegisterEmptyBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/register", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
	})

	require.NoError(t, client.Register(context.Background(), auth.RegisterRequest{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "password1",
	}))
}

func TestClient_SubmitDocument(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/kyc/submit", r.URL.Path)
		assert.Equal(t, "c-42", r.Header.Get("X-Customer-Id"))
		assert.Equal(t, "consent-granted", r.Header.Get("X-Consent-Token"))
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))

		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "PASSPORT", r.FormValue("docType"))
		assert.Equal(t, "LEGAL_OBLIGATION", r.FormValue("legalBasis"))

		file, header, err := r.FormFile("document")
		if assert.NoError(t, err) {
			defer file.Close()
			data, _ := io.ReadAll(file)
			assert.Equal(t, "passport.png", header.Filename)
			assert.Equal(t, "image-bytes", string(data))
		}

		_, _ = io.WriteString(w, `{"documentId":"d-1","status":"PENDING","message":"Document received",
			"kycStatus":{"documentStatus":"PENDING","overallStatus":"PENDING","riskLevel":"LOW","confidenceScore":0}}`)
	})

	resp, err := client.SubmitDocument(context.Background(), "c-42", kyc.SubmissionRequest{
		Document:   strings.NewReader("image-bytes"),
		FileName:   "passport.png",
		DocType:    kyc.DocumentPassport,
		LegalBasis: kyc.LegalBasisLegalObligation,
	})
	require.NoError(t, err)
	require.Equal(t, "d-1", resp.DocumentID)
	require.NotNil(t, resp.KycStatus)
	require.Equal(t, "PENDING", resp.KycStatus.OverallStatus)
}

func TestClient_SubmitDocumentRequiresDocument(t *testing.T) {
	client := kycapi.New("http://127.0.0.1:0")
	_, err := client.SubmitDocument(context.Background(), "c-42", kyc.SubmissionRequest{DocType: kyc.DocumentPassport})
	require.Error(t, err)
}

func TestClient_StatusAndDocuments(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/kyc/status/c-42":
			_, _ = io.WriteString(w, `{"documentStatus":"VERIFIED","overallStatus":"VERIFIED","riskLevel":"LOW","confidenceScore":0.97}`)
		case "/api/kyc/documents/c-42":
			_, _ = io.WriteString(w, `[{"id":"d-1","customerId":"c-42","documentType":"PASSPORT","verificationStatus":"VERIFIED","confidenceScore":0.97},
				{"id":"d-2","customerId":"c-42","documentType":"UTILITY_BILL","verificationStatus":"PENDING"}]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	status, err := client.GetStatus(context.Background(), "c-42")
	require.NoError(t, err)
	require.Equal(t, "VERIFIED", status.OverallStatus)

	docs, err := client.GetDocuments(context.Background(), "c-42")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, kyc.DocumentPassport, docs[0].DocumentType)
	require.NotNil(t, docs[0].ConfidenceScore)
	require.InDelta(t, 0.97, *docs[0].ConfidenceScore, 1e-9)
	require.Nil(t, docs[1].ConfidenceScore)

	_, err = client.GetStatus(context.Background(), "missing")
	require.EqualError(t, err, "Resource not found")
}

func TestClient_WithAuthorizedClient(t *testing.T) {
	gotAuth := make(chan string, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth <- r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `[]`)
	}))
	t.Cleanup(srv.Close)

	base := kycapi.New(srv.URL)
	authorized := base.WithAuthorizedClient(&http.Client{Transport: headerTransport{"Authorization", "Bearer t1"}})

	_, err := authorized.GetDocuments(context.Background(), "c-42")
	require.NoError(t, err)
	require.Equal(t, "Bearer t1", <-gotAuth)

	_, err = base.GetDocuments(context.Background(), "c-42")
	require.NoError(t, err)
	require.Empty(t, <-gotAuth)
}

type headerTransport struct{ key, value string }

func (h headerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set(h.key, h.value)
	return http.DefaultTransport.RoundTrip(r)
}
