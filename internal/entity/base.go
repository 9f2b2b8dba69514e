package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"gorm.io/gorm"
)

type Base struct {
	ID        string `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

type SnowFlakeBase struct {
	ID        int64 `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time
}

type Array[T any] []T

func (a *Array[T]) Scan(obj any) error {
	switch t := obj.(type) {
	case string:
		return json.Unmarshal([]byte(t), a)
	case []byte:
		return json.Unmarshal(t, a)
	}

	return fmt.Errorf("cannot scan invalid data type %T", obj)
}

func (Array[T]) GormDataType() string {
	return "json"
}

func (a Array[T]) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}

	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}

	return string(b), nil
}

type Map map[string]any

func (m *Map) Scan(value any) error {
	switch t := value.(type) {
	case string:
		return json.Unmarshal([]byte(t), m)
	case []byte:
		return json.Unmarshal(t, m)
	default:
		return fmt.Errorf("cannot scan invalid data type %T", value)
	}
}

func (Map) GormDataType() string {
	return "json"
}

func (m Map) Value() (driver.Value, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}

	return string(b), nil
}

// BigInt stores an arbitrary precision integer (wei, LINK juels) as a decimal
// string column.
type BigInt struct {
	v *big.Int
}

func NewBigInt(v *big.Int) BigInt {
	if v == nil {
		return BigInt{v: new(big.Int)}
	}

	return BigInt{v: new(big.Int).Set(v)}
}

// Big returns a copy of the stored value. The zero BigInt is 0.
func (b BigInt) Big() *big.Int {
	if b.v == nil {
		return new(big.Int)
	}

	return new(big.Int).Set(b.v)
}

func (b BigInt) String() string {
	return b.Big().String()
}

func (b *BigInt) Scan(value any) error {
	var s string
	switch t := value.(type) {
	case string:
		s = t
	case []byte:
		s = string(t)
	case int64:
		b.v = big.NewInt(t)
		return nil
	case nil:
		b.v = new(big.Int)
		return nil
	default:
		return fmt.Errorf("cannot scan invalid data type %T", value)
	}

	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return fmt.Errorf("invalid big integer %q", s)
	}

	b.v = v
	return nil
}

func (b BigInt) Value() (driver.Value, error) {
	return b.String(), nil
}

func (BigInt) GormDataType() string {
	return "string"
}

func (b BigInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b *BigInt) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	return b.Scan(s)
}
