package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math/big"
)

// Amount is a non-negative currency balance of arbitrary precision.
// It is stored as numeric(40,0) and serialized to JSON as a decimal string.
type Amount struct {
	v big.Int
}

func NewAmount(n int64) Amount {
	var a Amount
	a.v.SetInt64(n)
	return a
}

// ParseAmount parses a base-10 integer string.
func ParseAmount(s string) (Amount, error) {
	var a Amount
	if _, ok := a.v.SetString(s, 10); !ok {
		return Amount{}, fmt.Errorf("invalid amount %q", s)
	}
	if a.v.Sign() < 0 {
		return Amount{}, fmt.Errorf("negative amount %q", s)
	}
	return a, nil
}

func (a Amount) String() string {
	return a.v.String()
}

// Add returns a + n without modifying a.
func (a Amount) Add(n int64) Amount {
	var out Amount
	out.v.Add(&a.v, big.NewInt(n))
	return out
}

func (a Amount) Cmp(b Amount) int {
	return a.v.Cmp(&b.v)
}

func (a Amount) Equal(b Amount) bool {
	return a.Cmp(b) == 0
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.v.String())
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("amount must be a decimal string: %w", err)
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value implements driver.Valuer.
func (a Amount) Value() (driver.Value, error) {
	return a.v.String(), nil
}

// Scan implements sql.Scanner.
func (a *Amount) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = Amount{}
		return nil
	case int64:
		*a = NewAmount(v)
		return nil
	case []byte:
		return a.scanString(string(v))
	case string:
		return a.scanString(v)
	default:
		return fmt.Errorf("cannot scan %T into Amount", src)
	}
}

func (a *Amount) scanString(s string) error {
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
