package entity

import "github.com/shopspring/decimal"

// Process status values written to and read from the contacts table.
const (
	ProcessNew   = "new"
	ProcessStart = "START"
)

// Contact is one row of the contacts table.
type Contact struct {
	ID            string
	Name          string
	Email         string
	DebitorName   string
	ClientRefID   string
	InvoiceID     string
	OverdueAmount *decimal.Decimal // nil when the field is absent
	Process       string
	PaymentLink   string
}

// IsEligible reports whether the contact still needs a payment link.
func (c Contact) IsEligible() bool {
	return c.Process == ProcessNew && c.PaymentLink == ""
}

// ContactUpdate is written back after a contact has been billed.
type ContactUpdate struct {
	PaymentLinkURL string
	Process        string
	PortalLoginURL string
	CustomerID     string
}
