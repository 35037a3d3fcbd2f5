package pendingops

import (
	"encoding/json"
	"math"
	"time"
)

// The persisted queue is JSON that may originate from older clients or a
// partially completed write. Decoding is forgiving: entries that do not
// carry a recognizable kind and key are dropped, and numeric fields are
// coerced to null unless they are finite numbers. A corrupt queue never
// aborts a read.

func encodeOperations(ops []Operation) ([]byte, error) {
	entries := make([]map[string]interface{}, 0, len(ops))
	for _, op := range ops {
		entry := map[string]interface{}{
			"kind":      string(op.Kind),
			"storeId":   op.StoreID,
			"createdAt": op.CreatedAt.UnixMilli(),
		}
		switch op.Kind {
		case KindCreate:
			entry["clientId"] = op.Create.ClientID
			entry["name"] = op.Create.Name
			entry["sku"] = op.Create.SKU
			entry["price"] = numberOrNil(op.Create.Price)
			entry["reorderThreshold"] = numberOrNil(op.Create.ReorderThreshold)
			entry["stockCount"] = numberOrNil(op.Create.StockCount)
		case KindUpdate:
			entry["productId"] = op.Update.ProductID
			entry["name"] = op.Update.Name
			entry["sku"] = op.Update.SKU
			entry["price"] = numberOrNil(op.Update.Price)
			entry["reorderThreshold"] = numberOrNil(op.Update.ReorderThreshold)
			entry["previous"] = map[string]interface{}{
				"name":             op.Update.Previous.Name,
				"sku":              op.Update.Previous.SKU,
				"price":            numberOrNil(op.Update.Previous.Price),
				"reorderThreshold": numberOrNil(op.Update.Previous.ReorderThreshold),
			}
		}
		entries = append(entries, entry)
	}
	return json.Marshal(entries)
}

func decodeOperations(raw []byte, storeID string) []Operation {
	var entries []map[string]interface{}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}
	var ops []Operation
	for _, entry := range entries {
		if op, ok := decodeOperation(entry, storeID); ok {
			ops = append(ops, op)
		}
	}
	return ops
}

func decodeOperation(entry map[string]interface{}, storeID string) (Operation, bool) {
	op := Operation{
		StoreID:   storeID,
		CreatedAt: millisToTime(entry["createdAt"]),
	}
	switch Kind(stringField(entry, "kind")) {
	case KindCreate:
		clientID := stringField(entry, "clientId")
		if clientID == "" {
			return Operation{}, false
		}
		op.Kind = KindCreate
		op.Create = &Create{
			ClientID:         clientID,
			Name:             stringField(entry, "name"),
			SKU:              stringField(entry, "sku"),
			Price:            numberField(entry, "price"),
			ReorderThreshold: numberField(entry, "reorderThreshold"),
			StockCount:       numberField(entry, "stockCount"),
		}
	case KindUpdate:
		productID := stringField(entry, "productId")
		if productID == "" {
			return Operation{}, false
		}
		previous, _ := entry["previous"].(map[string]interface{})
		op.Kind = KindUpdate
		op.Update = &Update{
			ProductID:        productID,
			Name:             stringField(entry, "name"),
			SKU:              stringField(entry, "sku"),
			Price:            numberField(entry, "price"),
			ReorderThreshold: numberField(entry, "reorderThreshold"),
			Previous: Snapshot{
				Name:             stringField(previous, "name"),
				SKU:              stringField(previous, "sku"),
				Price:            numberField(previous, "price"),
				ReorderThreshold: numberField(previous, "reorderThreshold"),
			},
		}
	default:
		return Operation{}, false
	}
	return op, true
}

func stringField(entry map[string]interface{}, key string) string {
	value, _ := entry[key].(string)
	return value
}

// numberField returns the field as a float pointer, or nil unless the value
// is a finite number.
func numberField(entry map[string]interface{}, key string) *float64 {
	if entry == nil {
		return nil
	}
	value, ok := entry[key].(float64)
	if !ok || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil
	}
	return &value
}

func numberOrNil(value *float64) interface{} {
	if value == nil {
		return nil
	}
	return *value
}

func millisToTime(value interface{}) time.Time {
	millis, ok := value.(float64)
	if !ok {
		return time.Time{}
	}
	return time.UnixMilli(int64(millis)).UTC()
}
