package kycapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-kyc-client/kyc"
)

var _ kyc.API = (*Client)(nil)

const (
	customerIDHeader = "X-Customer-Id"
	consentHeader    = "X-Consent-Token"
	consentGranted   = "consent-granted"
)

// SubmitDocument uploads a document as multipart form data.
func (c *Client) SubmitDocument(ctx context.Context, customerID string, request kyc.SubmissionRequest) (*kyc.SubmissionResponse, error) {
	if request.Document == nil {
		return nil, fmt.Errorf("[kycapi SubmitDocument] document is required")
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	fileName := request.FileName
	if fileName == "" {
		fileName = "document"
	}
	part, err := form.CreateFormFile("document", fileName)
	if err != nil {
		return nil, fmt.Errorf("[kycapi SubmitDocument] %w", err)
	}
	if _, err := io.Copy(part, request.Document); err != nil {
		return nil, fmt.Errorf("[kycapi SubmitDocument] read document: %w", err)
	}
	if err := form.WriteField("docType", string(request.DocType)); err != nil {
		return nil, fmt.Errorf("[kycapi SubmitDocument] %w", err)
	}
	if err := form.WriteField("legalBasis", string(request.LegalBasis)); err != nil {
		return nil, fmt.Errorf("[kycapi SubmitDocument] %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("[kycapi SubmitDocument] %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/kyc/submit", &buf)
	if err != nil {
		return nil, fmt.Errorf("[kycapi SubmitDocument] %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set(customerIDHeader, customerID)
	req.Header.Set(consentHeader, consentGranted)

	var response kyc.SubmissionResponse
	if err := c.do(req, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func (c *Client) GetStatus(ctx context.Context, customerID string) (*kyc.Status, error) {
	var status kyc.Status
	if err := c.getJSON(ctx, "/kyc/status/"+url.PathEscape(customerID), &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) GetDocuments(ctx context.Context, customerID string) ([]kyc.Document, error) {
	var documents []kyc.Document
	if err := c.getJSON(ctx, "/kyc/documents/"+url.PathEscape(customerID), &documents); err != nil {
		return nil, err
	}
	return documents, nil
}
