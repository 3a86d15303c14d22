package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places every binding stores (NUMERIC(12,2))
const MoneyScale = 2

// MaxMoney is the first amount that no longer fits NUMERIC(12,2)
var MaxMoney = decimal.New(1, 10)

// CheckMoney reports ErrInvalidInput when amount has sub-cent digits or does not fit storage
func CheckMoney(field string, amount decimal.Decimal) error {
	if !amount.Equal(amount.Round(MoneyScale)) {
		return fmt.Errorf("%w: %s must have at most %d decimal places", ErrInvalidInput, field, MoneyScale)
	}
	if amount.Abs().GreaterThanOrEqual(MaxMoney) {
		return fmt.Errorf("%w: %s must be below %s", ErrInvalidInput, field, MaxMoney.String())
	}
	return nil
}

// CheckMoney validates the monetary fields of a new product
func (p NewProduct) CheckMoney() error {
	if p.Price != nil {
		if err := CheckMoney("price", *p.Price); err != nil {
			return err
		}
	}
	if p.Cost != nil {
		return CheckMoney("cost", *p.Cost)
	}
	return nil
}

// CheckMoney validates the monetary fields present in the patch
func (p ProductPatch) CheckMoney() error {
	if p.Price != nil {
		if err := CheckMoney("price", *p.Price); err != nil {
			return err
		}
	}
	if p.Cost != nil {
		return CheckMoney("cost", *p.Cost)
	}
	return nil
}
