package closeout

import (
	"time"

	"github.com/sedifex/sedifex-backend/internal/docstore"
)

// Record is one persisted closeout: one per store per business day,
// immutable once written.
type Record struct {
	ID           string         `json:"id"`
	StoreID      string         `json:"store_id"`
	Day          string         `json:"day"`
	Counts       map[string]int `json:"counts"`
	LooseCash    float64        `json:"loose_cash"`
	TotalSales   float64        `json:"total_sales"`
	NonCashTotal float64        `json:"non_cash_total"`
	CashRemoved  float64        `json:"cash_removed"`
	CashAdded    float64        `json:"cash_added"`
	CountedCash  float64        `json:"counted_cash"`
	ExpectedCash float64        `json:"expected_cash"`
	Variance     float64        `json:"variance"`
	Outcome      Outcome        `json:"outcome"`
	Notes        string         `json:"notes,omitempty"`
	ClosedBy     string         `json:"closed_by"`
	ClosedAt     time.Time      `json:"closed_at"`
}

// RecordID keys a closeout by store and day, enforcing at most one per
// business day.
func RecordID(storeID, day string) string {
	return storeID + "_" + day
}

// NormalizeRecord builds a Record from an untyped store document.
func NormalizeRecord(id string, data map[string]interface{}) Record {
	r := Record{
		ID:           id,
		StoreID:      docstore.OptionalString(data, "storeId"),
		Day:          docstore.OptionalString(data, "day"),
		LooseCash:    docstore.Number(data, "looseCash"),
		TotalSales:   docstore.Number(data, "totalSales"),
		NonCashTotal: docstore.Number(data, "nonCashTotal"),
		CashRemoved:  docstore.Number(data, "cashRemoved"),
		CashAdded:    docstore.Number(data, "cashAdded"),
		CountedCash:  docstore.Number(data, "countedCash"),
		ExpectedCash: docstore.Number(data, "expectedCash"),
		Variance:     docstore.Number(data, "variance"),
		Outcome:      Classify(docstore.Number(data, "variance")),
		Notes:        docstore.OptionalString(data, "notes"),
		ClosedBy:     docstore.OptionalString(data, "closedBy"),
		ClosedAt:     docstore.Time(data, "closedAt"),
	}
	if counts := docstore.Map(data, "counts"); counts != nil {
		r.Counts = make(map[string]int, len(counts))
		for key := range counts {
			r.Counts[key] = int(docstore.Number(counts, key))
		}
	}
	return r
}

func (r Record) toDoc() map[string]interface{} {
	counts := make(map[string]interface{}, len(r.Counts))
	for key, count := range r.Counts {
		counts[key] = count
	}
	doc := map[string]interface{}{
		"storeId":      r.StoreID,
		"day":          r.Day,
		"counts":       counts,
		"looseCash":    r.LooseCash,
		"totalSales":   r.TotalSales,
		"nonCashTotal": r.NonCashTotal,
		"cashRemoved":  r.CashRemoved,
		"cashAdded":    r.CashAdded,
		"countedCash":  r.CountedCash,
		"expectedCash": r.ExpectedCash,
		"variance":     r.Variance,
		"closedBy":     r.ClosedBy,
		"closedAt":     r.ClosedAt,
	}
	if r.Notes != "" {
		doc["notes"] = r.Notes
	}
	return doc
}
