package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "refurb/pkg/domain-errors"
)

// Typed identifiers keep product, payment and staff ids from being swapped
// at call sites. All share the same parsing rules.
type (
	ProductID     uuid.UUID
	NegotiationID uuid.UUID
	PaymentID     uuid.UUID
	CustomerID    uuid.UUID
	StaffID       uuid.UUID
)

func (i ProductID) String() string     { return uuid.UUID(i).String() }
func (i NegotiationID) String() string { return uuid.UUID(i).String() }
func (i PaymentID) String() string     { return uuid.UUID(i).String() }
func (i CustomerID) String() string    { return uuid.UUID(i).String() }
func (i StaffID) String() string       { return uuid.UUID(i).String() }

func (i ProductID) IsNil() bool  { return uuid.UUID(i) == uuid.Nil }
func (i PaymentID) IsNil() bool  { return uuid.UUID(i) == uuid.Nil }
func (i StaffID) IsNil() bool    { return uuid.UUID(i) == uuid.Nil }
func (i CustomerID) IsNil() bool { return uuid.UUID(i) == uuid.Nil }

func (i ProductID) MarshalText() ([]byte, error)     { return uuid.UUID(i).MarshalText() }
func (i NegotiationID) MarshalText() ([]byte, error) { return uuid.UUID(i).MarshalText() }
func (i PaymentID) MarshalText() ([]byte, error)     { return uuid.UUID(i).MarshalText() }
func (i CustomerID) MarshalText() ([]byte, error)    { return uuid.UUID(i).MarshalText() }
func (i StaffID) MarshalText() ([]byte, error)       { return uuid.UUID(i).MarshalText() }

func (i *ProductID) UnmarshalText(b []byte) error     { return unmarshalInto(b, i, ParseProductID) }
func (i *NegotiationID) UnmarshalText(b []byte) error { return unmarshalInto(b, i, ParseNegotiationID) }
func (i *PaymentID) UnmarshalText(b []byte) error     { return unmarshalInto(b, i, ParsePaymentID) }
func (i *CustomerID) UnmarshalText(b []byte) error    { return unmarshalInto(b, i, ParseCustomerID) }
func (i *StaffID) UnmarshalText(b []byte) error       { return unmarshalInto(b, i, ParseStaffID) }

func NewProductID() ProductID         { return ProductID(uuid.New()) }
func NewNegotiationID() NegotiationID { return NegotiationID(uuid.New()) }
func NewPaymentID() PaymentID         { return PaymentID(uuid.New()) }
func NewCustomerID() CustomerID       { return CustomerID(uuid.New()) }
func NewStaffID() StaffID             { return StaffID(uuid.New()) }

func ParseProductID(s string) (ProductID, error) {
	u, err := parseUUID(s, "product")
	return ProductID(u), err
}

func ParseNegotiationID(s string) (NegotiationID, error) {
	u, err := parseUUID(s, "negotiation")
	return NegotiationID(u), err
}

func ParsePaymentID(s string) (PaymentID, error) {
	u, err := parseUUID(s, "payment")
	return PaymentID(u), err
}

func ParseCustomerID(s string) (CustomerID, error) {
	u, err := parseUUID(s, "customer")
	return CustomerID(u), err
}

func ParseStaffID(s string) (StaffID, error) {
	u, err := parseUUID(s, "staff")
	return StaffID(u), err
}

// parseUUID rejects empty, malformed and nil UUIDs with CodeInvalidInput.
func parseUUID(s, kind string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind+" id")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id cannot be nil")
	}
	return u, nil
}

func unmarshalInto[T any](b []byte, dst *T, parse func(string) (T, error)) error {
	v, err := parse(string(b))
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
