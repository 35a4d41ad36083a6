package cell

import (
	"math/big"
)

type Slice struct {
	special  bool
	bitsSz   uint
	loadedSz uint
	data     []byte

	// store it as slice of pointers to make indexing logic cleaner on parse,
	// from outside it should always come as object to not have problems
	refs []*Cell
}

func (c *Slice) MustLoadRef() *Slice {
	r, err := c.LoadRef()
	if err != nil {
		panic(err)
	}
	return r
}

func (c *Slice) LoadRef() (*Slice, error) {
	ref, err := c.LoadRefCell()
	if err != nil {
		return nil, err
	}
	return ref.BeginParse(), nil
}

func (c *Slice) LoadRefCell() (*Cell, error) {
	if len(c.refs) == 0 {
		return nil, ErrNoMoreRefs
	}
	ref := c.refs[0]
	c.refs = c.refs[1:]

	return ref, nil
}

func (c *Slice) MustLoadRefCell() *Cell {
	r, err := c.LoadRefCell()
	if err != nil {
		panic(err)
	}
	return r
}

func (c *Slice) MustLoadUInt(sz uint) uint64 {
	res, err := c.LoadUInt(sz)
	if err != nil {
		panic(err)
	}
	return res
}

func (c *Slice) LoadUInt(sz uint) (uint64, error) {
	res, err := c.LoadBigUInt(sz)
	if err != nil {
		return 0, err
	}
	return res.Uint64(), nil
}

func (c *Slice) LoadBoolBit() (bool, error) {
	res, err := c.LoadUInt(1)
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

func (c *Slice) MustLoadBoolBit() bool {
	res, err := c.LoadBoolBit()
	if err != nil {
		panic(err)
	}
	return res
}

func (c *Slice) LoadBigUInt(sz uint) (*big.Int, error) {
	if sz > 256 {
		return nil, ErrTooBigValue
	}

	b, err := c.LoadSlice(sz)
	if err != nil {
		return nil, err
	}

	// check is value uses full bytes
	if offset := sz % 8; offset > 0 {
		// move bits to right side of bytes
		for i := len(b) - 1; i >= 0; i-- {
			b[i] >>= 8 - offset // get last bits
			if i > 0 {
				b[i] += b[i-1] << offset
			}
		}
	}

	return new(big.Int).SetBytes(b), nil
}

func (c *Slice) LoadCoins() (uint64, error) {
	value, err := c.LoadBigCoins()
	if err != nil {
		return 0, err
	}

	return value.Uint64(), nil
}

func (c *Slice) LoadBigCoins() (*big.Int, error) {
	// varInt 16
	ln, err := c.LoadUInt(4)
	if err != nil {
		return nil, err
	}

	return c.LoadBigUInt(uint(ln) * 8)
}

func (c *Slice) MustLoadSlice(sz uint) []byte {
	s, err := c.LoadSlice(sz)
	if err != nil {
		panic(err)
	}
	return s
}

func (c *Slice) LoadSlice(sz uint) ([]byte, error) {
	if c.bitsSz-c.loadedSz < sz {
		return nil, ErrNotEnoughData
	}

	if sz == 0 {
		return []byte{}, nil
	}

	out := make([]byte, (sz+7)/8)
	for i := uint(0); i < sz; i++ {
		pos := c.loadedSz + i
		if c.data[pos/8]&(0x80>>(pos%8)) != 0 {
			out[i/8] |= 0x80 >> (i % 8)
		}
	}
	c.loadedSz += sz

	return out, nil
}

func (c *Slice) LoadAddr() (workchain int8, data []byte, err error) {
	typ, err := c.LoadUInt(2)
	if err != nil {
		return 0, nil, err
	}

	switch typ {
	case 0b00:
		return 0, nil, nil
	case 0b10:
		// anycast
		if _, err = c.LoadUInt(1); err != nil {
			return 0, nil, err
		}

		wc, err := c.LoadUInt(8)
		if err != nil {
			return 0, nil, err
		}

		data, err = c.LoadSlice(256)
		if err != nil {
			return 0, nil, err
		}

		return int8(wc), data, nil
	}

	return 0, nil, ErrAddressTypeNotSupported
}

func (c *Slice) LoadStringSnake() (string, error) {
	b, err := c.LoadBinarySnake()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (c *Slice) LoadBinarySnake() ([]byte, error) {
	var data []byte
	ref := c
	for ref != nil {
		sz, b, err := ref.RestBits()
		if err != nil {
			return nil, err
		}

		if sz%8 != 0 {
			return nil, ErrInvalidCell
		}
		data = append(data, b...)

		if len(ref.refs) > 0 {
			ref, err = ref.LoadRef()
			if err != nil {
				return nil, err
			}
			continue
		}
		ref = nil
	}

	return data, nil
}

// RestBits consumes and returns everything left in the slice data
func (c *Slice) RestBits() (uint, []byte, error) {
	left := c.bitsSz - c.loadedSz
	data, err := c.LoadSlice(left)
	return left, data, err
}

func (c *Slice) BitsLeft() uint {
	return c.bitsSz - c.loadedSz
}

func (c *Slice) RefsNum() int {
	return len(c.refs)
}

// ToCell converts the rest of the slice back to a cell
func (c *Slice) ToCell() (*Cell, error) {
	sz, data, err := c.Copy().RestBits()
	if err != nil {
		return nil, err
	}

	b := BeginCell()
	if err = b.StoreSlice(data, sz); err != nil {
		return nil, err
	}

	for _, ref := range c.refs {
		if err = b.StoreRef(ref); err != nil {
			return nil, err
		}
	}

	return b.EndCell(), nil
}

func (c *Slice) Copy() *Slice {
	// copy data
	data := append([]byte{}, c.data...)

	return &Slice{
		special:  c.special,
		bitsSz:   c.bitsSz,
		loadedSz: c.loadedSz,
		data:     data,
		refs:     c.refs,
	}
}
