package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"refurb/internal/customer/models"
	"refurb/internal/customer/service"
	"refurb/internal/customer/store"
	"refurb/internal/notification"
	id "refurb/pkg/domain"
	request "refurb/pkg/platform/middleware/request"
	"refurb/pkg/requestcontext"
)

// =============================================================================
// Customer Handler Test Suite
// =============================================================================
// Justification for unit tests: checks routing, status codes, the error
// envelope and that KYC document numbers leave the server masked, over the
// real service seeded with the demo customers.

type CustomerHandlerSuite struct {
	suite.Suite
	router http.Handler
	center *notification.Center
}

func TestCustomerHandlerSuite(t *testing.T) {
	suite.Run(t, new(CustomerHandlerSuite))
}

func (s *CustomerHandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.NewInMemory()
	s.Require().NoError(store.SeedDemoCustomers(context.Background(), st))
	s.center = notification.New(notification.WithLogger(logger))
	customers, err := service.New(st, s.center, service.WithLogger(logger))
	s.Require().NoError(err)

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(requestcontext.WithActorName(r.Context(), "Alice Johnson")))
		})
	})
	New(customers, logger).Register(r)
	s.router = r
}

func (s *CustomerHandlerSuite) TearDownTest() {
	s.center.Clear()
}

func (s *CustomerHandlerSuite) do(method, target string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func customerPath(n int, suffix string) string {
	return "/customers/" + store.SeedCustomerID(n).String() + suffix
}

type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (s *CustomerHandlerSuite) decodeError(rec *httptest.ResponseRecorder) errorBody {
	var resp errorBody
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func (s *CustomerHandlerSuite) decodeCustomer(rec *httptest.ResponseRecorder) CustomerResponse {
	var resp CustomerResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func (s *CustomerHandlerSuite) TestList() {
	s.Run("returns customers in join order", func() {
		rec := s.do(http.MethodGet, "/customers", nil)
		s.Require().Equal(http.StatusOK, rec.Code)

		var resp ListResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Require().Equal(4, resp.Total)
		s.Equal("John Doe", resp.Customers[0].Name)
		s.Equal("₹125,000", resp.Customers[0].TotalSales)
	})

	s.Run("filters by search, status and kyc", func() {
		rec := s.do(http.MethodGet, "/customers?search=john&status=suspended&kyc=rejected", nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		var resp ListResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Require().Equal(1, resp.Total)
		s.Equal("Mike Johnson", resp.Customers[0].Name)
		s.Equal([]string{"Document quality unclear", "Name mismatch"}, resp.Customers[0].KYC.RejectionReasons)
	})

	s.Run("rejects unknown filters", func() {
		s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/customers?status=deleted", nil).Code)
		s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/customers?kyc=maybe", nil).Code)
	})
}

func (s *CustomerHandlerSuite) TestGetMasksDocuments() {
	rec := s.do(http.MethodGet, customerPath(1, ""), nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.NotContains(rec.Body.String(), "1234-5678-9012")
	s.NotContains(rec.Body.String(), "ABCDE1234F")

	resp := s.decodeCustomer(rec)
	s.Require().Len(resp.KYC.Documents, 3)
	s.Equal("XXXX-XXXX-9012", resp.KYC.Documents[0].Number)
	s.Equal("XXXXXX234F", resp.KYC.Documents[1].Number)
	s.Equal("Bank account", resp.KYC.Documents[2].Label)
	s.Equal("HDFC0001234", resp.KYC.Documents[2].IFSCCode)
	s.Equal("Bangalore", resp.Personal.Address.City)

	rec = s.do(http.MethodGet, "/customers/not-a-uuid", nil)
	s.Equal(http.StatusBadRequest, rec.Code)
	rec = s.do(http.MethodGet, "/customers/"+id.NewCustomerID().String(), nil)
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("User not found", s.decodeError(rec).ErrorDescription)
}

func (s *CustomerHandlerSuite) TestStatus() {
	s.Run("set and toggle", func() {
		rec := s.do(http.MethodPut, customerPath(2, "/status"), StatusRequest{Status: " Banned "})
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Equal(models.StatusBanned, s.decodeCustomer(rec).Status)

		rec = s.do(http.MethodPost, customerPath(2, "/toggle"), nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Equal(models.StatusActive, s.decodeCustomer(rec).Status)
	})

	s.Run("current status conflicts", func() {
		rec := s.do(http.MethodPut, customerPath(3, "/status"), StatusRequest{Status: "suspended"})
		s.Equal(http.StatusConflict, rec.Code)
		s.Equal(`User "Mike Johnson" is already suspended`, s.decodeError(rec).ErrorDescription)
	})

	s.Run("missing status", func() {
		rec := s.do(http.MethodPut, customerPath(3, "/status"), StatusRequest{})
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *CustomerHandlerSuite) TestBulkStatusAndSelection() {
	rec := s.do(http.MethodPost, "/customers/selection/all?status=active", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var sel SelectionResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &sel))
	s.Len(sel.Selected, 3)

	rec = s.do(http.MethodPost, customerPath(4, "/select"), nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &sel))
	s.Len(sel.Selected, 2)

	rec = s.do(http.MethodPost, "/customers/bulk-status", BulkStatusRequest{Status: "suspended"})
	s.Require().Equal(http.StatusOK, rec.Code)
	var bulk BulkStatusResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &bulk))
	s.Equal(2, bulk.Updated)

	rec = s.do(http.MethodGet, "/customers/selection", nil)
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &sel))
	s.Empty(sel.Selected)

	rec = s.do(http.MethodPost, "/customers/bulk-status", BulkStatusRequest{Status: "banned"})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("Please select users to perform bulk action", s.decodeError(rec).ErrorDescription)

	rec = s.do(http.MethodPost, "/customers/bulk-status", BulkStatusRequest{
		CustomerIDs: []string{store.SeedCustomerID(1).String(), store.SeedCustomerID(3).String()},
		Status:      "active",
	})
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, "/customers/bulk-status", BulkStatusRequest{CustomerIDs: []string{"nope"}, Status: "active"})
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodDelete, "/customers/selection", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	assert.JSONEq(s.T(), `{"selected":[]}`, rec.Body.String())
}

func (s *CustomerHandlerSuite) TestKYC() {
	s.Run("rejecting a document", func() {
		rec := s.do(http.MethodPut, customerPath(1, "/kyc/documents/pan"), ReviewRequest{Decision: "reject", Reason: "Blurry scan"})
		s.Require().Equal(http.StatusOK, rec.Code)
		resp := s.decodeCustomer(rec)
		s.Equal(models.KYCRejected, resp.KYC.Status)
		s.Equal([]string{"Blurry scan"}, resp.KYC.RejectionReasons)
	})

	s.Run("unknown decision and document", func() {
		rec := s.do(http.MethodPut, customerPath(1, "/kyc/documents/pan"), ReviewRequest{Decision: "maybe"})
		s.Equal(http.StatusBadRequest, rec.Code)

		rec = s.do(http.MethodPut, customerPath(1, "/kyc/documents/passport"), ReviewRequest{Decision: "approve"})
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("Please select a valid document", s.decodeError(rec).ErrorDescription)

		rec = s.do(http.MethodPut, customerPath(2, "/kyc/documents/aadhar"), ReviewRequest{Decision: "reject"})
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("Please provide a reason for rejection", s.decodeError(rec).ErrorDescription)
	})

	s.Run("risk level", func() {
		rec := s.do(http.MethodPut, customerPath(2, "/kyc/risk"), RiskRequest{RiskLevel: "HIGH"})
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Equal(models.RiskHigh, s.decodeCustomer(rec).KYC.RiskLevel)

		rec = s.do(http.MethodGet, "/customers/summary", nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		var sum SummaryResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &sum))
		s.Equal(4, sum.Total)
		s.Equal(2, sum.HighRisk)
		s.Equal(2, sum.ByKYC[models.KYCRejected])
	})
}

func TestMaskNumber(t *testing.T) {
	assert.Equal(t, "XXXX-XXXX-9012", maskNumber("1234-5678-9012"))
	assert.Equal(t, "XXXXXX7890", maskNumber("1234567890"))
	assert.Equal(t, "123", maskNumber("123"))
	assert.Equal(t, "", maskNumber(""))
}
