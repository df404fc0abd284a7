package domain

import "errors"

var (
	MessageFailedDownloadCart = "failed to generate shopping list"

	ErrShoppingCartEmpty = errors.New("shopping cart is empty")
)

type (
	// IngredientLine is one raw line pulled from a cart recipe, before
	// aggregation.
	IngredientLine struct {
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}

	// ShoppingListItem is one aggregated line. Amount is int64 so summing
	// many max-amount lines can never overflow.
	ShoppingListItem struct {
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int64  `json:"amount"`
	}

	ShoppingListFile struct {
		FileName string `json:"file_name"`
		Content  string `json:"content"`
	}
)
