package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"refurb/internal/catalog/models"
	"refurb/pkg/money"
)

const (
	msgLoadFailed        = "Failed to load products. Please try again."
	msgLoadOneFailed     = "Failed to load product details. Please try again."
	msgStatusFailed      = "Failed to update product status. Please try again."
	msgBulkFailed        = "Failed to perform bulk action. Please try again."
	msgNegotiationFailed = "Failed to submit negotiation. Please try again."
	msgDeleteFailed      = "Failed to delete product. Please try again."

	msgSelectProducts  = "Please select products to perform bulk action"
	msgRequiredFields  = "Please fill in all required fields"
	msgInvalidPrice    = "Please enter a valid price"
	msgInvalidReason   = "Please select a valid negotiation reason"
	msgInvalidStatus   = "Please select a valid product status"
	msgProductBusy     = "Another action is already in progress for this product"
	msgProductNotFound = "Product not found"
)

func statusMessage(title string, status models.ProductStatus) string {
	switch status {
	case models.StatusApproved:
		return fmt.Sprintf(`Product "%s" has been approved successfully`, title)
	case models.StatusRejected:
		return fmt.Sprintf(`Product "%s" has been rejected`, title)
	default:
		return fmt.Sprintf(`Product "%s" status changed to %s`, title, status)
	}
}

func transitionMessage(title string, from, to models.ProductStatus) string {
	if from == to {
		return fmt.Sprintf(`Product "%s" is already %s`, title, to)
	}
	return fmt.Sprintf(`Product "%s" cannot move from %s to %s`, title, from, to)
}

func bulkMessage(n int, status models.ProductStatus) string {
	return fmt.Sprintf("%d product(s) %s successfully", n, status.PastTense())
}

func deletedMessage(title string) string {
	return fmt.Sprintf(`Product "%s" has been deleted successfully`, title)
}

// NegotiationMessage describes a proposal relative to the price it replaces.
func NegotiationMessage(seller string, previous, proposed decimal.Decimal) string {
	delta := proposed.Sub(previous)
	switch delta.Sign() {
	case 1:
		return fmt.Sprintf("Price negotiation sent to %s. Proposed increase of %s", seller, money.Format(delta))
	case -1:
		return fmt.Sprintf("Price negotiation sent to %s. Proposed decrease of %s", seller, money.Format(delta.Abs()))
	default:
		return fmt.Sprintf("Price negotiation sent to %s. Proposed price unchanged at %s", seller, money.Format(proposed))
	}
}
