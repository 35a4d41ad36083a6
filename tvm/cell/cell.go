package cell

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Cell is the canonical encoding unit of the ledger, a bounded bit string
// plus up to 4 ordered child cells.
type Cell struct {
	special bool
	bitsSz  uint
	data    []byte

	refs []*Cell
}

func (c *Cell) BeginParse() *Slice {
	// copy data to not corrupt cell on load
	data := append([]byte{}, c.data...)

	return &Slice{
		special: c.special,
		bitsSz:  c.bitsSz,
		data:    data,
		refs:    c.refs,
	}
}

func (c *Cell) ToBuilder() *Builder {
	// copy data
	data := append([]byte{}, c.data...)

	return &Builder{
		bitsSz: c.bitsSz,
		data:   data,
		refs:   c.refs,
	}
}

func (c *Cell) BitsSize() uint {
	return c.bitsSz
}

func (c *Cell) RefsNum() int {
	return len(c.refs)
}

func (c *Cell) PeekRef(i int) (*Cell, error) {
	if i >= len(c.refs) {
		return nil, ErrNoMoreRefs
	}
	return c.refs[i], nil
}

func (c *Cell) MustPeekRef(i int) *Cell {
	r, err := c.PeekRef(i)
	if err != nil {
		panic(err)
	}
	return r
}

func (c *Cell) Dump() string {
	return c.dump(0, false)
}

func (c *Cell) DumpBits() string {
	return c.dump(0, true)
}

func (c *Cell) dump(deep int, bin bool) string {
	sz, data, _ := c.BeginParse().RestBits()

	var val string
	if bin {
		for _, n := range data {
			val += fmt.Sprintf("%08b", n)
		}
		if sz%8 != 0 {
			val = val[:uint(len(val))-(8-(sz%8))]
		}
	} else {
		val = hex.EncodeToString(data)
	}

	str := strings.Repeat("  ", deep) + fmt.Sprint(sz) + "[" + val + "]"
	if len(c.refs) > 0 {
		str += " -> {"
		for i, ref := range c.refs {
			str += "\n" + ref.dump(deep+1, bin)
			if i == len(c.refs)-1 {
				str += "\n"
			} else {
				str += ","
			}
		}
		str += strings.Repeat("  ", deep)
		return str + "}"
	}
	return str
}

// Hash computes the representation hash of the cell,
// stable over (bits + ordered child hashes).
func (c *Cell) Hash() []byte {
	hash := sha256.New()
	hash.Write(c.serializeHash())
	return hash.Sum(nil)
}

func (c *Cell) Sign(key ed25519.PrivateKey) []byte {
	return ed25519.Sign(key, c.Hash())
}
