package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Price is a non-negative amount of money in cents.
type Price int64

// ParsePrice converts a decimal amount such as "10", "10.5", "$10.50" or
// "1,250.00" into cents. At most two fractional digits are accepted.
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, fmt.Errorf("price is empty")
	}
	if strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("price %q is negative", s)
	}
	s = strings.TrimPrefix(s, "+")

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if !isDigits(whole) || (hasFrac && (frac == "" || !isDigits(frac))) {
		return 0, fmt.Errorf("price %q is not a number", s)
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("price %q has more than two decimal places", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("price %q: %w", s, err)
	}
	cents, _ := strconv.ParseInt(frac, 10, 64)
	if units > (1<<63-1-cents)/100 {
		return 0, fmt.Errorf("price %q is too large", s)
	}
	return Price(units*100 + cents), nil
}

// Cents returns the amount in cents.
func (p Price) Cents() int64 {
	return int64(p)
}

// Mul returns the price multiplied by a quantity. Callers that cannot bound
// both operands use MulChecked.
func (p Price) Mul(qty int) Price {
	return p * Price(qty)
}

// MulChecked is Mul that reports false instead of wrapping when the product
// does not fit in a Price. Negative operands are rejected.
func (p Price) MulChecked(qty int) (Price, bool) {
	if p < 0 || qty < 0 {
		return 0, false
	}
	if p != 0 && int64(qty) > math.MaxInt64/int64(p) {
		return 0, false
	}
	return p * Price(qty), true
}

// AddChecked is p+q, reporting false when the sum would overflow.
func (p Price) AddChecked(q Price) (Price, bool) {
	if p < 0 || q < 0 || p > math.MaxInt64-q {
		return 0, false
	}
	return p + q, true
}

// String formats the price with exactly two decimals, e.g. "25.50".
func (p Price) String() string {
	sign := ""
	v := int64(p)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts either a JSON string ("10.50") or a JSON number (10.5).
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("price must be a string or number: %w", err)
		}
		s = n.String()
	}
	v, err := ParsePrice(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}
