package handler

import (
	"refurb/internal/settlement/models"
	"refurb/internal/settlement/service"
	"refurb/pkg/money"
)

// PaymentResponse adds display fields to a payment.
type PaymentResponse struct {
	models.Payment
	AmountDisplay string `json:"amount_display"`
	MethodLabel   string `json:"payment_method_label,omitempty"`
	Busy          bool   `json:"busy"`
}

type ListResponse struct {
	Payments []PaymentResponse `json:"payments"`
	Total    int               `json:"total"`
}

type SummaryResponse struct {
	Counts          map[models.PaymentStatus]int `json:"counts"`
	PendingAmount   string                       `json:"pending_amount"`
	CompletedAmount string                       `json:"completed_amount"`
}

type MethodResponse struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func (h *Handler) toPaymentResponse(p models.Payment) PaymentResponse {
	return PaymentResponse{
		Payment:       p,
		AmountDisplay: money.Format(p.Amount),
		MethodLabel:   p.Method.Label(),
		Busy:          h.service.IsBusy(p.ID),
	}
}

func toSummaryResponse(s service.Summary) SummaryResponse {
	return SummaryResponse{
		Counts:          s.Counts,
		PendingAmount:   s.PendingAmount,
		CompletedAmount: s.CompletedAmount,
	}
}

func methodResponses() []MethodResponse {
	methods := []models.Method{models.MethodBankTransfer, models.MethodUPI, models.MethodCheck}
	out := make([]MethodResponse, 0, len(methods))
	for _, m := range methods {
		out = append(out, MethodResponse{Value: string(m), Label: m.Label()})
	}
	return out
}
