package models

import "github.com/shopspring/decimal"

func init() {
	// Money goes over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// All returns every persisted model, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Agency{},
		&Client{},
		&Project{},
		&Task{},
		&TaskAssignment{},
		&TaskComment{},
		&Invoice{},
		&InvoiceItem{},
		&Notification{},
		&Message{},
	}
}
