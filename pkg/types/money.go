package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
)

var ErrAmountOutOfRange = errors.New("amount out of range")

var amountReg = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

// Amount is a monetary decimal kept in its string form end to end. Clients
// may send it as a JSON string or number; it is always written as a string.
type Amount string

func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("amount must be a decimal: %w", err)
		}
		s = n.String()
	}

	*a = Amount(strings.TrimSpace(s))
	return nil
}

func (a Amount) Valid() bool {
	return amountReg.MatchString(string(a))
}

// Cents converts the amount into minor units, truncating past two decimals.
// Amounts that do not fit in an int64 of minor units are an error.
func (a Amount) Cents() (int64, error) {
	if !a.Valid() {
		return 0, fmt.Errorf("invalid amount %q", string(a))
	}

	s := string(a)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac, _ := strings.Cut(s, ".")
	frac = (frac + "00")[:2]

	var cents int64
	for _, c := range whole + frac {
		d := int64(c - '0')
		if cents > (math.MaxInt64-d)/10 {
			return 0, fmt.Errorf("%w: %q", ErrAmountOutOfRange, string(a))
		}
		cents = cents*10 + d
	}
	if neg {
		cents = -cents
	}

	return cents, nil
}
