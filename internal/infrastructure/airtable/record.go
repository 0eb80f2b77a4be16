package airtable

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wekeepgrowing/paylink-sync/internal/domain/entity"
)

// Column names in the contacts table.
const (
	FieldName           = "Name"
	FieldEmail          = "Email"
	FieldDebitorName    = "Debitor name"
	FieldClientRefID    = "Client REF ID"
	FieldInvoiceID      = "Invoice ID"
	FieldOverdueAmount  = "Overdue amount"
	FieldProcess        = "PROCESS"
	FieldPaymentLink    = "paylink"
	FieldPortalLogin    = "Stripe Log in"
	FieldStripeCustomer = "Stripe REF ID"
)

// Field values are kept raw because Airtable types a column by its
// configuration: a reference id may be text in one base and a number in
// another.
type record struct {
	ID     string                     `json:"id"`
	Fields map[string]json.RawMessage `json:"fields"`
}

func (r record) toContact() (entity.Contact, error) {
	contact := entity.Contact{
		ID:          r.ID,
		Name:        r.text(FieldName),
		Email:       r.text(FieldEmail),
		DebitorName: r.text(FieldDebitorName),
		ClientRefID: r.text(FieldClientRefID),
		InvoiceID:   r.text(FieldInvoiceID),
		Process:     r.value(FieldProcess),
		PaymentLink: r.value(FieldPaymentLink),
	}

	if raw, ok := r.Fields[FieldOverdueAmount]; ok && !isNull(raw) {
		var amount decimal.Decimal
		if err := amount.UnmarshalJSON(raw); err != nil {
			return entity.Contact{}, fmt.Errorf("field %q: %w", FieldOverdueAmount, err)
		}
		contact.OverdueAmount = &amount
	}

	return contact, nil
}

// text renders a scalar field as a string. Numbers keep their JSON
// spelling; missing, null and non-scalar fields read as empty.
func (r record) text(name string) string {
	raw, ok := r.Fields[name]
	if !ok || isNull(raw) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}

	return ""
}

// value is text for scalar fields. Any other non-empty value, such as the
// array a lookup column returns, is kept as compact JSON so that it never
// reads as empty.
func (r record) value(name string) string {
	if s := r.text(name); s != "" {
		return s
	}

	raw := r.Fields[name]
	if isEmpty(raw) {
		return ""
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(bytes.TrimSpace(raw))
	}
	return buf.String()
}

// isEmpty reports whether raw is missing, null, "", [] or {}.
func isEmpty(raw json.RawMessage) bool {
	if isNull(raw) {
		return true
	}

	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case string:
		return t == ""
	case []interface{}:
		return len(t) == 0
	case map[string]interface{}:
		return len(t) == 0
	}
	return false
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
