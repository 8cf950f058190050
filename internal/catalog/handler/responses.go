package handler

import (
	"refurb/internal/catalog/models"
	id "refurb/pkg/domain"
	"refurb/pkg/money"
)

// ProductResponse adds display fields to a product.
type ProductResponse struct {
	models.Product
	PriceDisplay string `json:"price_display"`
	Busy         bool   `json:"busy"`
}

type PageResponse struct {
	Products   []ProductResponse `json:"products"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

type BulkStatusResponse struct {
	Updated int    `json:"updated"`
	Status  string `json:"status"`
}

type NegotiationHistoryResponse struct {
	ProductID    id.ProductID         `json:"product_id"`
	Negotiations []models.Negotiation `json:"negotiations"`
}

type SelectionResponse struct {
	Selected []id.ProductID `json:"selected"`
}

type ReasonResponse struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func (h *Handler) toProductResponse(p models.Product) ProductResponse {
	if p.Negotiations == nil {
		p.Negotiations = []models.Negotiation{}
	}
	return ProductResponse{
		Product:      p,
		PriceDisplay: money.Format(p.Price),
		Busy:         h.service.IsBusy(p.ID),
	}
}

func (h *Handler) toPageResponse(page models.Page) PageResponse {
	products := make([]ProductResponse, 0, len(page.Products))
	for _, p := range page.Products {
		products = append(products, h.toProductResponse(p))
	}
	return PageResponse{
		Products:   products,
		Total:      page.Total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages,
	}
}

func reasonResponses() []ReasonResponse {
	reasons := []models.NegotiationReason{
		models.ReasonMarketAdjustment,
		models.ReasonConditionAdjustment,
		models.ReasonCompetitivePricing,
		models.ReasonDemandBased,
		models.ReasonSeasonalAdjustment,
		models.ReasonOther,
	}
	out := make([]ReasonResponse, 0, len(reasons))
	for _, r := range reasons {
		out = append(out, ReasonResponse{Value: string(r), Label: r.Label()})
	}
	return out
}
