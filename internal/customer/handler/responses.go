package handler

import (
	"time"

	"refurb/internal/customer/models"
	"refurb/internal/customer/service"
	id "refurb/pkg/domain"
	"refurb/pkg/money"
)

// visibleDigits of a document number stay readable; the rest is masked.
const visibleDigits = 4

// CustomerResponse is a customer as the console shows it. Document numbers
// are masked.
type CustomerResponse struct {
	ID            id.CustomerID          `json:"id"`
	Name          string                 `json:"name"`
	Email         string                 `json:"email"`
	Phone         string                 `json:"phone,omitempty"`
	Role          models.Role            `json:"role"`
	Status        models.Status          `json:"status"`
	JoinedAt      time.Time              `json:"joined_at"`
	LastActiveAt  *time.Time             `json:"last_active_at,omitempty"`
	TotalProducts int                    `json:"total_products"`
	TotalSales    string                 `json:"total_sales"`
	Personal      models.PersonalDetails `json:"personal_details"`
	KYC           KYCResponse            `json:"kyc"`
}

type KYCResponse struct {
	Status           models.KYCStatus   `json:"status"`
	VerifiedAt       *time.Time         `json:"verified_at,omitempty"`
	RiskLevel        models.RiskLevel   `json:"risk_level"`
	Documents        []DocumentResponse `json:"documents"`
	RejectionReasons []string           `json:"rejection_reasons"`
}

type DocumentResponse struct {
	Kind            models.DocumentKind `json:"kind"`
	Label           string              `json:"label"`
	Number          string              `json:"number"`
	IFSCCode        string              `json:"ifsc_code,omitempty"`
	BankName        string              `json:"bank_name,omitempty"`
	Verified        bool                `json:"verified"`
	UploadedAt      time.Time           `json:"uploaded_at"`
	RejectionReason string              `json:"rejection_reason,omitempty"`
}

type ListResponse struct {
	Customers []CustomerResponse `json:"customers"`
	Total     int                `json:"total"`
}

type BulkStatusResponse struct {
	Updated int    `json:"updated"`
	Status  string `json:"status"`
}

type SelectionResponse struct {
	Selected []id.CustomerID `json:"selected"`
}

type SummaryResponse struct {
	Total    int                      `json:"total"`
	ByStatus map[models.Status]int    `json:"by_status"`
	ByKYC    map[models.KYCStatus]int `json:"by_kyc"`
	HighRisk int                      `json:"high_risk"`
}

func toCustomerResponse(c models.Customer) CustomerResponse {
	docs := make([]DocumentResponse, 0, len(c.KYC.Documents))
	for _, d := range c.KYC.Documents {
		docs = append(docs, DocumentResponse{
			Kind:            d.Kind,
			Label:           d.Kind.Label(),
			Number:          maskNumber(d.Number),
			IFSCCode:        d.IFSCCode,
			BankName:        d.BankName,
			Verified:        d.Verified,
			UploadedAt:      d.UploadedAt,
			RejectionReason: d.RejectionReason,
		})
	}
	reasons := c.KYC.RejectionReasons()
	if reasons == nil {
		reasons = []string{}
	}
	return CustomerResponse{
		ID:            c.ID,
		Name:          c.Name,
		Email:         c.Email,
		Phone:         c.Phone,
		Role:          c.Role,
		Status:        c.Status,
		JoinedAt:      c.JoinedAt,
		LastActiveAt:  c.LastActiveAt,
		TotalProducts: c.TotalProducts,
		TotalSales:    money.Format(c.TotalSales),
		Personal:      c.Personal,
		KYC: KYCResponse{
			Status:           c.KYC.Status,
			VerifiedAt:       c.KYC.VerifiedAt,
			RiskLevel:        c.KYC.RiskLevel,
			Documents:        docs,
			RejectionReasons: reasons,
		},
	}
}

// maskNumber hides every letter and digit except the last four, keeping
// separators: "1234-5678-9012" becomes "XXXX-XXXX-9012".
func maskNumber(number string) string {
	runes := []rune(number)
	keep := 0
	for i := len(runes) - 1; i >= 0; i-- {
		if !isAlnum(runes[i]) {
			continue
		}
		if keep < visibleDigits {
			keep++
			continue
		}
		runes[i] = 'X'
	}
	return string(runes)
}

func isAlnum(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func toSummaryResponse(s service.Summary) SummaryResponse {
	return SummaryResponse{Total: s.Total, ByStatus: s.ByStatus, ByKYC: s.ByKYC, HighRisk: s.HighRisk}
}
