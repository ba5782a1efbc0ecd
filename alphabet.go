// Package rfc4648 implements the base16, base32 and base64 data encodings
// described by RFC 4648, including the base32 extended hex alphabet and the
// URL and filename safe base64 alphabet.
//
// Every alphabet offers whole-buffer encode and decode functions as well as
// a streaming Writer and Reader which tolerate input arriving in arbitrarily
// small pieces.
//
// Decoding is strict. Padding must be complete and well placed, and the
// unused bits of a short final group must be zero. Whitespace (space, tab,
// CR and LF) between symbols is ignored.
package rfc4648

import "strings"

// Alphabet selects one of the RFC 4648 encodings. The zero value is not a
// valid alphabet.
type Alphabet uint8

const (
	// Hex is base16 with the upper case alphabet 0-9A-F. Decoding also
	// accepts lower case digits.
	Hex Alphabet = iota + 1
	// Base32Std is base32 with the alphabet A-Z2-7.
	Base32Std
	// Base32Hex is base32 with the extended hex alphabet 0-9A-V.
	Base32Hex
	// Base64Std is base64 with the alphabet A-Za-z0-9+/.
	Base64Std
	// Base64URL is base64 with the URL and filename safe alphabet A-Za-z0-9-_.
	Base64URL
)

// Alphabets lists every supported alphabet.
var Alphabets = [...]Alphabet{Hex, Base32Std, Base32Hex, Base64Std, Base64URL}

func (a Alphabet) table() *table {
	if !a.Valid() {
		panic("rfc4648: invalid alphabet")
	}

	return &tables[a]
}

// Valid reports whether a is one of the defined alphabets.
func (a Alphabet) Valid() bool {
	return a >= Hex && a <= Base64URL
}

func (a Alphabet) String() string {
	if !a.Valid() {
		return "invalid"
	}

	return tables[a].name
}

// Symbols returns the alphabet in group value order.
func (a Alphabet) Symbols() string {
	t := a.table()
	return string(t.enc[:1<<t.bits])
}

// Lookup returns the group value of the symbol c. ok is false when c is not
// part of the alphabet.
func (a Alphabet) Lookup(c byte) (v byte, ok bool) {
	v = a.table().dec[c]
	return v, v != invalidSym
}

// Bits returns the number of bits carried by each symbol.
func (a Alphabet) Bits() int {
	return int(a.table().bits)
}

// BlockSize returns the number of raw bytes in a block and the number of
// symbols that block encodes to.
func (a Alphabet) BlockSize() (raw, encoded int) {
	t := a.table()
	return t.rawBlock, t.encBlock
}

// Padded reports whether short final blocks are padded with '='.
func (a Alphabet) Padded() bool {
	return a.table().rawBlock > 1
}

// ParseAlphabet returns the alphabet with the given case insensitive name.
func ParseAlphabet(name string) (Alphabet, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "hex", "base16":
		return Hex, nil
	case "base32", "base32std":
		return Base32Std, nil
	case "base32hex":
		return Base32Hex, nil
	case "base64", "base64std":
		return Base64Std, nil
	case "base64url":
		return Base64URL, nil
	}

	return 0, &UnknownAlphabetError{Name: name}
}
