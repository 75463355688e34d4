package models

import "github.com/shopspring/decimal"

func init() {
	// Prices leave the API as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}
