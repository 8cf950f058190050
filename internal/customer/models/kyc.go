package models

import (
	"fmt"
	"slices"
	"strings"
	"time"

	dErrors "refurb/pkg/domain-errors"
)

type KYCStatus string

const (
	KYCPending  KYCStatus = "pending"
	KYCVerified KYCStatus = "verified"
	KYCRejected KYCStatus = "rejected"
)

func (s KYCStatus) IsValid() bool {
	return s == KYCPending || s == KYCVerified || s == KYCRejected
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

func (r RiskLevel) IsValid() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}

type DocumentKind string

const (
	DocumentAadhar      DocumentKind = "aadhar"
	DocumentPAN         DocumentKind = "pan"
	DocumentBankAccount DocumentKind = "bank_account"
)

var documentLabels = map[DocumentKind]string{
	DocumentAadhar:      "Aadhar card",
	DocumentPAN:         "PAN card",
	DocumentBankAccount: "Bank account",
}

func (k DocumentKind) IsValid() bool {
	_, ok := documentLabels[k]
	return ok
}

func (k DocumentKind) Label() string {
	if l, ok := documentLabels[k]; ok {
		return l
	}
	return string(k)
}

// Document is one uploaded KYC proof. Bank accounts also carry IFSCCode
// and BankName.
type Document struct {
	Kind            DocumentKind `json:"kind"`
	Number          string       `json:"number"`
	IFSCCode        string       `json:"ifsc_code,omitempty"`
	BankName        string       `json:"bank_name,omitempty"`
	Verified        bool         `json:"verified"`
	UploadedAt      time.Time    `json:"uploaded_at"`
	RejectionReason string       `json:"rejection_reason,omitempty"`
}

func (d Document) IsRejected() bool {
	return d.RejectionReason != ""
}

// KYC is a customer's identity verification record. Status is derived from
// the documents and never set directly.
type KYC struct {
	Status     KYCStatus  `json:"status"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	RiskLevel  RiskLevel  `json:"risk_level"`
	Documents  []Document `json:"documents"`
}

// DeriveKYCStatus is rejected when any document is rejected, verified when
// every document is verified, and pending otherwise. No documents is
// pending.
func DeriveKYCStatus(docs []Document) KYCStatus {
	if len(docs) == 0 {
		return KYCPending
	}
	verified := 0
	for _, d := range docs {
		if d.IsRejected() {
			return KYCRejected
		}
		if d.Verified {
			verified++
		}
	}
	if verified == len(docs) {
		return KYCVerified
	}
	return KYCPending
}

// RejectionReasons lists the reasons of every rejected document.
func (k KYC) RejectionReasons() []string {
	var out []string
	for _, d := range k.Documents {
		if d.IsRejected() {
			out = append(out, d.RejectionReason)
		}
	}
	return out
}

func (k KYC) validate() error {
	if !k.Status.IsValid() {
		return dErrors.New(dErrors.CodeInvariantViolation, "kyc status is invalid")
	}
	if !k.RiskLevel.IsValid() {
		return dErrors.New(dErrors.CodeInvariantViolation, "kyc risk level is invalid")
	}
	seen := make(map[DocumentKind]struct{}, len(k.Documents))
	for _, d := range k.Documents {
		if !d.Kind.IsValid() {
			return dErrors.New(dErrors.CodeInvariantViolation, "unknown kyc document "+string(d.Kind))
		}
		if _, dup := seen[d.Kind]; dup {
			return dErrors.New(dErrors.CodeInvariantViolation, "duplicate kyc document "+string(d.Kind))
		}
		if d.Verified && d.IsRejected() {
			return dErrors.New(dErrors.CodeInvariantViolation, "kyc document cannot be verified and rejected")
		}
		seen[d.Kind] = struct{}{}
	}
	if DeriveKYCStatus(k.Documents) != k.Status {
		return dErrors.New(dErrors.CodeInvariantViolation, "kyc status does not match its documents")
	}
	if (k.Status == KYCVerified) != (k.VerifiedAt != nil) {
		return dErrors.New(dErrors.CodeInvariantViolation, "kyc verified time must be set exactly when verified")
	}
	return nil
}

func (k KYC) clone() KYC {
	k.Documents = slices.Clone(k.Documents)
	if k.VerifiedAt != nil {
		t := *k.VerifiedAt
		k.VerifiedAt = &t
	}
	return k
}

// DocumentReview is an admin decision on one KYC document. Rejections need
// a reason.
type DocumentReview struct {
	Kind    DocumentKind
	Approve bool
	Reason  string
}

// WithDocumentReview applies r and recomputes the KYC status. VerifiedAt is
// stamped when the record becomes verified and cleared when it stops being
// verified.
func (c Customer) WithDocumentReview(r DocumentReview, now time.Time) (Customer, error) {
	if !r.Kind.IsValid() {
		return Customer{}, dErrors.New(dErrors.CodeValidation, "Please select a valid document")
	}
	reason := strings.TrimSpace(r.Reason)
	if !r.Approve && reason == "" {
		return Customer{}, dErrors.New(dErrors.CodeValidation, "Please provide a reason for rejection")
	}
	out := c.Clone()
	i := slices.IndexFunc(out.KYC.Documents, func(d Document) bool { return d.Kind == r.Kind })
	if i < 0 {
		return Customer{}, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("No %s on file for %s", r.Kind.Label(), c.Name))
	}
	doc := &out.KYC.Documents[i]
	switch {
	case r.Approve && doc.Verified:
		return Customer{}, dErrors.New(dErrors.CodeConflict, fmt.Sprintf("%s is already verified", r.Kind.Label()))
	case r.Approve:
		doc.Verified, doc.RejectionReason = true, ""
	default:
		doc.Verified, doc.RejectionReason = false, reason
	}

	was := out.KYC.Status
	out.KYC.Status = DeriveKYCStatus(out.KYC.Documents)
	switch {
	case out.KYC.Status == KYCVerified && was != KYCVerified:
		t := now
		out.KYC.VerifiedAt = &t
	case out.KYC.Status != KYCVerified:
		out.KYC.VerifiedAt = nil
	}
	out.UpdatedAt = now
	return out, nil
}

// WithRiskLevel sets the risk assessment. Setting the current level is a
// conflict.
func (c Customer) WithRiskLevel(level RiskLevel, now time.Time) (Customer, error) {
	if !level.IsValid() {
		return Customer{}, dErrors.New(dErrors.CodeValidation, "Please select a valid risk level")
	}
	if c.KYC.RiskLevel == level {
		return Customer{}, dErrors.New(dErrors.CodeConflict, fmt.Sprintf("%s is already %s risk", c.Name, level))
	}
	out := c.Clone()
	out.KYC.RiskLevel = level
	out.UpdatedAt = now
	return out, nil
}
