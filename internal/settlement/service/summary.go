package service

import (
	"github.com/shopspring/decimal"

	"refurb/internal/settlement/models"
	"refurb/pkg/money"
)

// Summary aggregates the ledger for the dashboard.
type Summary struct {
	Counts          map[models.PaymentStatus]int
	PendingAmount   string
	CompletedAmount string
}

// Summarize counts payments by status and totals pending and completed
// amounts.
func (s *Service) Summarize() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[models.PaymentStatus]int, 4)
	var pending, completed []models.Payment
	for _, pid := range s.order {
		p := s.payments[pid]
		counts[p.Status]++
		switch p.Status {
		case models.StatusPending:
			pending = append(pending, p)
		case models.StatusCompleted:
			completed = append(completed, p)
		}
	}
	return Summary{
		Counts:          counts,
		PendingAmount:   money.Format(sumAmounts(pending)),
		CompletedAmount: money.Format(sumAmounts(completed)),
	}
}

func sumAmounts(payments []models.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}
