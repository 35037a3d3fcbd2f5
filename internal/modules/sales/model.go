package sales

import (
	"strings"
	"time"

	"github.com/sedifex/sedifex-backend/internal/docstore"
)

// Tender methods accepted at the till.
const (
	TenderCash     = "cash"
	TenderCard     = "card"
	TenderMomo     = "momo"
	TenderTransfer = "transfer"
)

// NormalizeTenderMethod maps arbitrary tender input to a known method.
// Unrecognized values default to cash, matching how the till records a
// drawer sale when the method is missing.
func NormalizeTenderMethod(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case TenderCard:
		return TenderCard
	case TenderMomo, "mobile-money", "mobile_money":
		return TenderMomo
	case TenderTransfer, "bank-transfer", "bank_transfer":
		return TenderTransfer
	default:
		return TenderCash
	}
}

// Tender is one payment leg of a sale. A split payment carries several.
type Tender struct {
	Method string  `json:"method"`
	Amount float64 `json:"amount"`
}

// Sale is one completed transaction.
type Sale struct {
	ID         string    `json:"id"`
	StoreID    string    `json:"store_id"`
	Day        string    `json:"day"`
	Total      float64   `json:"total"`
	Tenders    []Tender  `json:"tenders"`
	CustomerID string    `json:"customer_id,omitempty"`
	SoldBy     string    `json:"sold_by,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

// NonCashTotal sums the sale's tender amounts whose method is not cash.
func (s Sale) NonCashTotal() float64 {
	var total float64
	for _, t := range s.Tenders {
		if t.Method != TenderCash {
			total += t.Amount
		}
	}
	return total
}

// DayKey formats the calendar day a sale belongs to, in the till's local
// time zone.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// NormalizeSale builds a Sale from an untyped store document.
func NormalizeSale(id string, data map[string]interface{}) Sale {
	s := Sale{
		ID:         id,
		StoreID:    docstore.OptionalString(data, "storeId"),
		Day:        docstore.OptionalString(data, "day"),
		Total:      docstore.Number(data, "total"),
		CustomerID: docstore.OptionalString(data, "customerId"),
		SoldBy:     docstore.OptionalString(data, "soldBy"),
		CreatedAt:  docstore.Time(data, "createdAt"),
	}
	if raw, ok := data["tenders"].([]interface{}); ok {
		for _, entry := range raw {
			item, ok := entry.(map[string]interface{})
			if !ok {
				continue
			}
			s.Tenders = append(s.Tenders, Tender{
				Method: NormalizeTenderMethod(docstore.OptionalString(item, "method")),
				Amount: docstore.Number(item, "amount"),
			})
		}
	}
	if s.Day == "" && !s.CreatedAt.IsZero() {
		s.Day = DayKey(s.CreatedAt)
	}
	return s
}

func (s Sale) toDoc(now time.Time) map[string]interface{} {
	tenders := make([]interface{}, 0, len(s.Tenders))
	for _, t := range s.Tenders {
		tenders = append(tenders, map[string]interface{}{
			"method": t.Method,
			"amount": t.Amount,
		})
	}
	doc := map[string]interface{}{
		"storeId":   s.StoreID,
		"day":       s.Day,
		"total":     s.Total,
		"tenders":   tenders,
		"createdAt": now,
	}
	if s.CustomerID != "" {
		doc["customerId"] = s.CustomerID
	}
	if s.SoldBy != "" {
		doc["soldBy"] = s.SoldBy
	}
	return doc
}
