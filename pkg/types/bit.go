package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
)

// Bit is a single-bit boolean column such as ngo.verified. Drivers hand the
// value back as a one byte buffer, a bit string or a bits struct; all of them
// collapse to a plain bool and are written to clients as true/false.
type Bit bool

// BitFromBytes reports whether the first byte of a bit buffer is 1. An empty
// or nil buffer is false.
func BitFromBytes(b []byte) Bit {
	return Bit(len(b) > 0 && b[0] == 1)
}

func (b *Bit) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*b = false
	case []byte:
		// text protocol delivers "1"/"0", binary protocol a raw byte
		if len(v) == 1 && (v[0] == '1' || v[0] == '0') {
			*b = v[0] == '1'
			return nil
		}
		*b = BitFromBytes(v)
	case string:
		*b = v == "1" || v == "t" || v == "true"
	case bool:
		*b = Bit(v)
	case int64:
		*b = v == 1
	case pgtype.Bits:
		return b.ScanBits(v)
	default:
		return fmt.Errorf("cannot scan %T into Bit", src)
	}

	return nil
}

// ScanBits lets pgx decode BIT(n) columns directly. Postgres stores bits
// most-significant first, so BIT(1) '1' arrives as 0x80.
func (b *Bit) ScanBits(v pgtype.Bits) error {
	*b = Bit(v.Valid && v.Len > 0 && len(v.Bytes) > 0 && v.Bytes[0]&0x80 != 0)
	return nil
}

func (b Bit) BitsValue() (pgtype.Bits, error) {
	var out byte
	if b {
		out = 0x80
	}
	return pgtype.Bits{Bytes: []byte{out}, Len: 1, Valid: true}, nil
}

func (b Bit) Value() (driver.Value, error) {
	if b {
		return "1", nil
	}
	return "0", nil
}

func (b Bit) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(b))
}

func (b *Bit) UnmarshalJSON(data []byte) error {
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*b = Bit(v)
	return nil
}
