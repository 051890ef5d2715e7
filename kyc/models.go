package kyc

import (
	"io"
	"slices"
)

type DocumentType string

const (
	DocumentIDCard         DocumentType = "ID_CARD"
	DocumentPassport       DocumentType = "PASSPORT"
	DocumentDriversLicense DocumentType = "DRIVERS_LICENSE"
	DocumentProofOfAddress DocumentType = "PROOF_OF_ADDRESS"
	DocumentUtilityBill    DocumentType = "UTILITY_BILL"
	DocumentBankStatement  DocumentType = "BANK_STATEMENT"
)

// DocumentTypes lists the accepted document types in display order.
var DocumentTypes = []DocumentType{
	DocumentIDCard,
	DocumentPassport,
	DocumentDriversLicense,
	DocumentProofOfAddress,
	DocumentUtilityBill,
	DocumentBankStatement,
}

// Valid reports whether t is one of DocumentTypes.
func (t DocumentType) Valid() bool {
	return slices.Contains(DocumentTypes, t)
}

type VerificationStatus string

const (
	StatusPending     VerificationStatus = "PENDING"
	StatusInProgress  VerificationStatus = "IN_PROGRESS"
	StatusVerified    VerificationStatus = "VERIFIED"
	StatusRejected    VerificationStatus = "REJECTED"
	StatusNeedsReview VerificationStatus = "NEEDS_REVIEW"
	StatusExpired     VerificationStatus = "EXPIRED"
)

type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// LegalBasis is the GDPR ground under which a document is processed.
type LegalBasis string

const (
	LegalBasisConsent            LegalBasis = "CONSENT"
	LegalBasisLegalObligation    LegalBasis = "LEGAL_OBLIGATION"
	LegalBasisContract           LegalBasis = "CONTRACT"
	LegalBasisLegitimateInterest LegalBasis = "LEGITIMATE_INTEREST"
	LegalBasisVitalInterest      LegalBasis = "VITAL_INTEREST"
	LegalBasisPublicTask         LegalBasis = "PUBLIC_TASK"
)

// OverallIncomplete is reported until a status has been loaded.
const OverallIncomplete = "INCOMPLETE"

// Document is a submitted KYC document as tracked by the backend.
type Document struct {
	ID                 string             `json:"id"`
	CustomerID         string             `json:"customerId"`
	DocumentType       DocumentType       `json:"documentType"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
	RiskLevel          RiskLevel          `json:"riskLevel,omitempty"`
	ConfidenceScore    *float64           `json:"confidenceScore,omitempty"`
	CreatedAt          string             `json:"createdAt"` // Backend local date-time, passed through as sent
	ProcessedAt        string             `json:"processedAt,omitempty"`
	Findings           []string           `json:"findings,omitempty"`
}

// Status summarises a customer's verification.
type Status struct {
	DocumentStatus  string   `json:"documentStatus"`
	RiskLevel       string   `json:"riskLevel"`
	ConfidenceScore float64  `json:"confidenceScore"`
	OverallStatus   string   `json:"overallStatus"`
	Findings        []string `json:"findings,omitempty"`
}

// SubmissionRequest uploads one identity document.
type SubmissionRequest struct {
	Document   io.Reader
	FileName   string
	DocType    DocumentType
	LegalBasis LegalBasis // Defaults to LegalBasisLegalObligation
}

type SubmissionResponse struct {
	Status     string  `json:"status"`
	Message    string  `json:"message"`
	DocumentID string  `json:"documentId,omitempty"`
	KycStatus  *Status `json:"kycStatus,omitempty"`
}
