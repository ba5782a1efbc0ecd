package rfc4648

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTables(t *testing.T) {
	t.Parallel()

	const invalidDecodeVal = byte(invalidSym)

	symbols := map[Alphabet]string{
		Hex:       "0123456789ABCDEF",
		Base32Std: "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567",
		Base32Hex: "0123456789ABCDEFGHIJKLMNOPQRSTUV",
		Base64Std: "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/",
		Base64URL: "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_",
	}

	for _, a := range Alphabets {
		t.Run(a.String(), func(t *testing.T) {
			t.Parallel()

			is := assert.New(t)

			chars := symbols[a]
			tab := a.table()

			is.Equal(chars, a.Symbols())
			is.Len(chars, 1<<a.Bits())

			validChar := func(c byte) (byte, int8) {
				if a == Hex && c >= 'a' && c <= 'f' {
					c -= ('a' - 'A')
				}
				return c, int8(strings.IndexByte(chars, c))
			}

			for i := range 256 {
				c := byte(i)

				uc, i := validChar(c)
				if i == -1 {
					is.Equal(invalidDecodeVal, tab.dec[c])

					_, ok := a.Lookup(c)
					is.False(ok)
					continue
				}

				is.Equal(i, int8(tab.dec[c]))
				is.Equal(uc, tab.enc[i])
			}

			// inverse[forward[v]] == v for every group value
			for v := range 1 << a.Bits() {
				got, ok := a.Lookup(tab.enc[v])
				is.True(ok)
				is.Equal(byte(v), got)
			}

			// the pad symbol is never part of an alphabet
			_, ok := a.Lookup(padChar)
			is.False(ok)
		})
	}
}

func TestBlockGeometry(t *testing.T) {
	t.Parallel()

	is := assert.New(t)

	type geometry struct {
		bits, raw, enc int
		padded         bool
	}

	exp := map[Alphabet]geometry{
		Hex:       {4, 1, 2, false},
		Base32Std: {5, 5, 8, true},
		Base32Hex: {5, 5, 8, true},
		Base64Std: {6, 3, 4, true},
		Base64URL: {6, 3, 4, true},
	}

	for _, a := range Alphabets {
		raw, enc := a.BlockSize()
		is.Equal(exp[a], geometry{a.Bits(), raw, enc, a.Padded()}, a.String())
		is.Equal(raw*8, enc*a.Bits(), a.String())
	}
}

func TestAlphabetValidity(t *testing.T) {
	t.Parallel()

	is := assert.New(t)

	is.False(Alphabet(0).Valid())
	is.False((Base64URL + 1).Valid())
	is.Equal("invalid", Alphabet(0).String())

	is.PanicsWithValue("rfc4648: invalid alphabet", func() {
		Alphabet(0).Encode([]byte("f"))
	})
	is.PanicsWithValue("rfc4648: invalid alphabet", func() {
		NewWriter(Alphabet(42), nil)
	})
	is.PanicsWithValue("rfc4648: invalid alphabet", func() {
		NewReader(Alphabet(0), nil)
	})
}

func TestParseAlphabet(t *testing.T) {
	t.Parallel()

	is := assert.New(t)

	for name, exp := range map[string]Alphabet{
		"hex":       Hex,
		"Base16":    Hex,
		"base32":    Base32Std,
		"BASE32HEX": Base32Hex,
		" base64 ":  Base64Std,
		"base64url": Base64URL,
	} {
		a, err := ParseAlphabet(name)
		is.NoError(err, name)
		is.Equal(exp, a, name)
	}

	for _, a := range Alphabets {
		got, err := ParseAlphabet(a.String())
		is.NoError(err)
		is.Equal(a, got)
	}

	_, err := ParseAlphabet("base58")
	is.ErrorIs(err, ErrUnknownAlphabet)
	is.Equal(`rfc4648: unknown alphabet "base58"`, err.Error())
}
