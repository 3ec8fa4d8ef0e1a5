package domain

import (
	"strings"
	"time"
)

// TransactionType classifies where a spending record originated.
// It is a closed set; external text is validated at the ingest boundary.
type TransactionType string

const (
	TypeBank      TransactionType = "bank"
	TypeRetail    TransactionType = "retail"
	TypeECommerce TransactionType = "e-commerce"
	TypeUnknown   TransactionType = "unknown"
)

// ParseTransactionType validates external text into a TransactionType.
// Unrecognized values map to TypeUnknown.
func ParseTransactionType(s string) TransactionType {
	switch TransactionType(strings.ToLower(strings.TrimSpace(s))) {
	case TypeBank:
		return TypeBank
	case TypeRetail:
		return TypeRetail
	case TypeECommerce:
		return TypeECommerce
	default:
		return TypeUnknown
	}
}

var bankKeywords = []string{"bank", "atm", "bri", "mandiri", "bca", "bni", "transfer"}

var ecommerceKeywords = []string{"shopee", "tokopedia", "bukalapak", "lazada", "blibli", "online"}

// DetectTransactionType guesses the transaction type from a vendor name.
// Used at ingest when the caller does not supply a type.
func DetectTransactionType(vendor string) TransactionType {
	v := strings.ToLower(vendor)
	for _, kw := range bankKeywords {
		if strings.Contains(v, kw) {
			return TypeBank
		}
	}
	for _, kw := range ecommerceKeywords {
		if strings.Contains(v, kw) {
			return TypeECommerce
		}
	}
	return TypeRetail
}

// LedgerRecord is one settled monetary transaction. Amount is the
// authoritative record-level total; line-item totals are informational
// and are not required to sum to it (OCR-sourced data may be inconsistent).
type LedgerRecord struct {
	ID        string          `json:"id"`
	Vendor    string          `json:"vendor"`
	Date      string          `json:"date"` // stored as text, may be empty or unparsable
	Amount    float64         `json:"amount"`
	Type      TransactionType `json:"transactionType"`
	Items     []LineItem      `json:"items,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// LineItem is a child of exactly one LedgerRecord.
type LineItem struct {
	ID         string  `json:"id"`
	RecordID   string  `json:"recordId"`
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice,omitempty"`
	TotalPrice float64 `json:"totalPrice"`
}

// recordDateLayouts are the accepted textual date formats, tried in order.
var recordDateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
	"02/01/06",
	"02-01-06",
}

// ParseRecordDate parses a stored date string. The boolean is false when
// the value is empty or matches none of the accepted formats; such records
// are excluded from date-keyed aggregation but not from grand totals.
func ParseRecordDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range recordDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
