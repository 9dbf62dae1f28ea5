package order

import (
	"errors"
	"fmt"
	"strings"

	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// Item is one priced line of the order. Prices come from the catalog at
// checkout and are frozen here.
type Item struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// NewItem validates a single order line.
func NewItem(productID, name string, quantity int, unitPrice decimal.Decimal) (Item, error) {
	item := Item{
		ProductID: strings.TrimSpace(productID),
		Name:      strings.TrimSpace(name),
		Quantity:  quantity,
		UnitPrice: unitPrice,
	}
	if err := item.Validate(); err != nil {
		return Item{}, err
	}
	return item, nil
}

func (i Item) Validate() error {
	var problems []error
	if i.ProductID == "" {
		problems = append(problems, errs.NewValueIsRequiredError("product_id"))
	}
	if i.Quantity <= 0 {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("quantity",
			fmt.Errorf("%d is not greater than 0", i.Quantity)))
	}
	if i.UnitPrice.IsNegative() {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("unit_price",
			fmt.Errorf("%s is negative", i.UnitPrice)))
	}
	return errors.Join(problems...)
}

// LineTotal is quantity × unit price.
func (i Item) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Subtotal sums the line totals.
func Subtotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, i := range items {
		total = total.Add(i.LineTotal())
	}
	return total
}
