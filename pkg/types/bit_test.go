package types

import (
	"encoding/json"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitFromBytes(t *testing.T) {
	assert.True(t, bool(BitFromBytes([]byte{1})))
	assert.False(t, bool(BitFromBytes([]byte{0})))
	assert.False(t, bool(BitFromBytes(nil)))
	assert.False(t, bool(BitFromBytes([]byte{})))
}

func TestBitScan(t *testing.T) {
	cases := []struct {
		name string
		src  any
		want bool
	}{
		{"byte one", []byte{1}, true},
		{"byte zero", []byte{0}, false},
		{"text one", []byte("1"), true},
		{"text zero", []byte("0"), false},
		{"string", "1", true},
		{"null", nil, false},
		{"bool", true, true},
		{"int", int64(1), true},
		{"pg bits set", pgtype.Bits{Bytes: []byte{0x80}, Len: 1, Valid: true}, true},
		{"pg bits clear", pgtype.Bits{Bytes: []byte{0x00}, Len: 1, Valid: true}, false},
		{"pg bits null", pgtype.Bits{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := Bit(!tc.want)
			require.NoError(t, b.Scan(tc.src))
			assert.Equal(t, tc.want, bool(b))
		})
	}

	var b Bit
	assert.Error(t, b.Scan(3.5))
}

func TestBitMarshalsAsBool(t *testing.T) {
	out, err := json.Marshal(struct {
		Verified Bit `json:"verified"`
	}{Verified: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"verified":true}`, string(out))
}

func TestParseRole(t *testing.T) {
	for in, want := range map[string]Role{
		"user":  RoleUser,
		"NGO":   RoleNGO,
		"ngo":   RoleNGO,
		" Ngo ": RoleNGO,
		"ADMIN": RoleAdmin,
	} {
		got, err := ParseRole(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseRole("sponsor")
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestAmount(t *testing.T) {
	var a Amount
	require.NoError(t, json.Unmarshal([]byte(`"12.5"`), &a))
	assert.Equal(t, Amount("12.5"), a)

	require.NoError(t, json.Unmarshal([]byte(`40`), &a))
	assert.Equal(t, Amount("40"), a)

	cents, err := Amount("12.5").Cents()
	require.NoError(t, err)
	assert.Equal(t, int64(1250), cents)

	cents, err = Amount("-3.999").Cents()
	require.NoError(t, err)
	assert.Equal(t, int64(-399), cents)

	_, err = Amount("184467440737095516.17").Cents()
	assert.ErrorIs(t, err, ErrAmountOutOfRange)

	cents, err = Amount("-92233720368547758.07").Cents()
	require.NoError(t, err)
	assert.Equal(t, int64(-9223372036854775807), cents)

	assert.False(t, Amount("ten").Valid())
	_, err = Amount("").Cents()
	assert.Error(t, err)
}
