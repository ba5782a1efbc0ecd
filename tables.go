package rfc4648

const (
	invalidSym = 0xFF
	padChar    = '='
)

// table holds the immutable forward and inverse maps of one alphabet along
// with the block geometry shared by every alphabet of the same family.
type table struct {
	name string
	enc  [64]byte
	dec  [256]byte

	bits     uint
	rawBlock int
	encBlock int

	// tailSymbols maps the byte count of a short final block to the number of
	// data symbols it encodes to. Remaining positions are padding.
	tailSymbols [5]uint8

	// tailBytes maps the data symbol count of a padded final group to the
	// number of bytes it decodes to.
	tailBytes [8]uint8
}

//
// encode and decode tables are built once and never mutated afterwards
//

var tables = func() [Base64URL + 1]table {
	var t [Base64URL + 1]table

	t[Hex] = newTable("hex", "0123456789ABCDEF", 4, 1, 2, true)

	t[Base32Std] = newTable("base32", "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567", 5, 5, 8, false)
	t[Base32Hex] = newTable("base32hex", "0123456789ABCDEFGHIJKLMNOPQRSTUV", 5, 5, 8, false)
	for _, a := range [...]Alphabet{Base32Std, Base32Hex} {
		t[a].tailSymbols = [5]uint8{0, 2, 4, 5, 7}
		t[a].tailBytes = [8]uint8{0, 0, 1, 2, 2, 3, 4, 4}
	}

	const b64Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	t[Base64Std] = newTable("base64", b64Chars+"+/", 6, 3, 4, false)
	t[Base64URL] = newTable("base64url", b64Chars+"-_", 6, 3, 4, false)
	for _, a := range [...]Alphabet{Base64Std, Base64URL} {
		t[a].tailSymbols = [5]uint8{0, 2, 3}
		t[a].tailBytes = [8]uint8{0, 0, 1, 2}
	}

	return t
}()

func newTable(name, chars string, bits uint, rawBlock, encBlock int, foldLower bool) table {
	const upToLow = ('a' - 'A')

	t := table{
		name:     name,
		bits:     bits,
		rawBlock: rawBlock,
		encBlock: encBlock,
	}

	for i := range t.dec {
		t.dec[i] = invalidSym
	}

	for i := range chars {
		v := chars[i]

		t.enc[i] = v
		t.dec[v] = byte(i)

		if foldLower && v >= 'A' && v <= 'Z' {
			t.dec[v+upToLow] = byte(i)
		}
	}

	return t
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
