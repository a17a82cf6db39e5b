// README: Common money value object used across modules.
package types

import "fmt"

// CurrencyKRW is the only currency quoted by the routing providers we use.
const CurrencyKRW = "KRW"

type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func Won(amount int64) Money {
	return Money{Amount: amount, Currency: CurrencyKRW}
}

func (m Money) String() string {
	return fmt.Sprintf("%d %s", m.Amount, m.Currency)
}
