package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"refurb/internal/customer/models"
	id "refurb/pkg/domain"
)

var seedNamespace = uuid.MustParse("6f3a9b10-2c7e-4d85-b41f-e8d05a6c9273")

// SeedCustomerID derives the stable id of demo customer n. The demo payout
// ledger uses the same ids.
func SeedCustomerID(n int) id.CustomerID {
	return id.CustomerID(uuid.NewSHA1(seedNamespace, []byte{'c', byte(n)}))
}

// SeedDemoCustomers loads the demo marketplace users.
func SeedDemoCustomers(ctx context.Context, st *InMemory) error {
	for _, c := range demoCustomers() {
		if err := st.Create(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func demoCustomers() []models.Customer {
	at := func(s string) time.Time {
		t, _ := time.Parse(time.RFC3339, s)
		return t
	}
	ptr := func(s string) *time.Time {
		t := at(s)
		return &t
	}
	return []models.Customer{
		{
			ID:            SeedCustomerID(1),
			Name:          "John Doe",
			Email:         "john.doe@email.com",
			Phone:         "+91 9876543210",
			Role:          models.RoleSeller,
			Status:        models.StatusActive,
			JoinedAt:      at("2024-11-15T10:30:00Z"),
			LastActiveAt:  ptr("2024-12-25T08:45:00Z"),
			UpdatedAt:     at("2024-11-20T14:30:00Z"),
			TotalProducts: 15,
			TotalSales:    decimal.NewFromInt(125000),
			Personal: models.PersonalDetails{
				DateOfBirth:      "1985-03-15",
				Gender:           "Male",
				Address:          models.Address{Street: "123 MG Road", City: "Bangalore", State: "Karnataka", Pincode: "560001", Country: "India"},
				EmergencyContact: models.EmergencyContact{Name: "Jane Doe", Relation: "Spouse", Phone: "+91 9876543211"},
			},
			KYC: models.KYC{
				Status:     models.KYCVerified,
				VerifiedAt: ptr("2024-11-20T14:30:00Z"),
				RiskLevel:  models.RiskLow,
				Documents: []models.Document{
					{Kind: models.DocumentAadhar, Number: "1234-5678-9012", Verified: true, UploadedAt: at("2024-11-16T10:00:00Z")},
					{Kind: models.DocumentPAN, Number: "ABCDE1234F", Verified: true, UploadedAt: at("2024-11-16T10:05:00Z")},
					{Kind: models.DocumentBankAccount, Number: "1234567890", IFSCCode: "HDFC0001234", BankName: "HDFC Bank", Verified: true, UploadedAt: at("2024-11-16T10:10:00Z")},
				},
			},
		},
		{
			ID:           SeedCustomerID(2),
			Name:         "Jane Smith",
			Email:        "jane.smith@email.com",
			Phone:        "+91 8765432109",
			Role:         models.RoleBuyer,
			Status:       models.StatusActive,
			JoinedAt:     at("2024-10-22T14:20:00Z"),
			LastActiveAt: ptr("2024-12-24T16:30:00Z"),
			UpdatedAt:    at("2024-10-23T09:10:00Z"),
			TotalSales:   decimal.Zero,
			Personal: models.PersonalDetails{
				DateOfBirth:      "1990-07-22",
				Gender:           "Female",
				Address:          models.Address{Street: "456 Brigade Road", City: "Mumbai", State: "Maharashtra", Pincode: "400001", Country: "India"},
				EmergencyContact: models.EmergencyContact{Name: "Robert Smith", Relation: "Father", Phone: "+91 8765432108"},
			},
			KYC: models.KYC{
				Status:    models.KYCPending,
				RiskLevel: models.RiskMedium,
				Documents: []models.Document{
					{Kind: models.DocumentAadhar, Number: "2345-6789-0123", UploadedAt: at("2024-10-23T09:00:00Z")},
					{Kind: models.DocumentPAN, Number: "BCDEF2345G", UploadedAt: at("2024-10-23T09:05:00Z")},
					{Kind: models.DocumentBankAccount, Number: "2345678901", IFSCCode: "ICICI0002345", BankName: "ICICI Bank", UploadedAt: at("2024-10-23T09:10:00Z")},
				},
			},
		},
		{
			ID:            SeedCustomerID(3),
			Name:          "Mike Johnson",
			Email:         "mike.johnson@email.com",
			Phone:         "+91 7654321098",
			Role:          models.RoleSeller,
			Status:        models.StatusSuspended,
			JoinedAt:      at("2024-09-10T11:15:00Z"),
			LastActiveAt:  ptr("2024-12-20T12:00:00Z"),
			UpdatedAt:     at("2024-09-11T10:10:00Z"),
			TotalProducts: 8,
			TotalSales:    decimal.NewFromInt(45000),
			Personal: models.PersonalDetails{
				DateOfBirth:      "1988-12-10",
				Gender:           "Male",
				Address:          models.Address{Street: "789 Commercial Street", City: "Delhi", State: "Delhi", Pincode: "110001", Country: "India"},
				EmergencyContact: models.EmergencyContact{Name: "Sarah Johnson", Relation: "Sister", Phone: "+91 7654321097"},
			},
			KYC: models.KYC{
				Status:    models.KYCRejected,
				RiskLevel: models.RiskHigh,
				Documents: []models.Document{
					{Kind: models.DocumentAadhar, Number: "3456-7890-1234", UploadedAt: at("2024-09-11T10:00:00Z"), RejectionReason: "Document quality unclear"},
					{Kind: models.DocumentPAN, Number: "CDEFG3456H", UploadedAt: at("2024-09-11T10:05:00Z"), RejectionReason: "Name mismatch"},
					{Kind: models.DocumentBankAccount, Number: "3456789012", IFSCCode: "SBI0003456", BankName: "State Bank of India", UploadedAt: at("2024-09-11T10:10:00Z")},
				},
			},
		},
		{
			ID:            SeedCustomerID(4),
			Name:          "Sarah Wilson",
			Email:         "sarah.wilson@email.com",
			Phone:         "+91 6543210987",
			Role:          models.RoleSeller,
			Status:        models.StatusActive,
			JoinedAt:      at("2024-12-01T09:00:00Z"),
			LastActiveAt:  ptr("2024-12-22T14:20:00Z"),
			UpdatedAt:     at("2024-12-03T11:00:00Z"),
			TotalProducts: 2,
			TotalSales:    decimal.Zero,
			Personal: models.PersonalDetails{
				Gender:  "Female",
				Address: models.Address{City: "Pune", State: "Maharashtra", Pincode: "411001", Country: "India"},
			},
			KYC: models.KYC{
				Status:     models.KYCVerified,
				VerifiedAt: ptr("2024-12-03T11:00:00Z"),
				RiskLevel:  models.RiskLow,
				Documents: []models.Document{
					{Kind: models.DocumentAadhar, Number: "4567-8901-2345", Verified: true, UploadedAt: at("2024-12-02T10:00:00Z")},
					{Kind: models.DocumentPAN, Number: "DEFGH4567J", Verified: true, UploadedAt: at("2024-12-02T10:05:00Z")},
				},
			},
		},
	}
}
