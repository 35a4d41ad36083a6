package cell

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
	"math"
	"sort"
)

var ErrTooBigValue = errors.New("too big value")
var ErrNegative = errors.New("value should be non negative")
var ErrRefCannotBeNil = errors.New("ref cannot be nil")
var ErrSmallSlice = errors.New("too small slice for this size")
var ErrTooBigSize = errors.New("too big size")
var ErrTooMuchRefs = errors.New("too much refs")
var ErrNotFit1023 = errors.New("cell data size should fit into 1023 bits")
var ErrNoMoreRefs = errors.New("no more refs exists")
var ErrNotEnoughData = errors.New("not enough data in cell")
var ErrInvalidCell = errors.New("invalid cell")
var ErrAddressTypeNotSupported = errors.New("address type is not supported")

var bocMagic = []byte{0xB5, 0xEE, 0x9C, 0x72}

func (c *Cell) ToBOC() []byte {
	return c.ToBOCWithFlags(true)
}

func (c *Cell) ToBOCWithFlags(withCRC bool) []byte {
	// recursively go through cells, build hash index and store unique in slice
	sortedCells, index := flattenIndex([]*Cell{c})

	// bytes needed to store num of cells
	cellSizeBits := math.Log2(float64(len(sortedCells)) + 1)
	cellSizeBytes := byte(math.Ceil(cellSizeBits / 8))

	var payload []byte
	for _, cl := range sortedCells {
		// serialize each cell
		payload = append(payload, cl.serialize(index, int(cellSizeBytes))...)
	}

	// bytes needed to store len of payload
	sizeBits := math.Log2(float64(len(payload)) + 1)
	sizeBytes := byte(math.Ceil(sizeBits / 8))

	// has_idx 1bit, hash_crc32 1bit, has_cache_bits 1bit, flags 2bit, size_bytes 3 bit
	flags := byte(0b0_0_0_00_000)
	if withCRC {
		flags |= 0b0_1_0_00_000
	}

	flags |= cellSizeBytes

	var data []byte

	data = append(data, bocMagic...)
	data = append(data, flags)

	// bytes needed to store size
	data = append(data, sizeBytes)

	// cells num
	data = append(data, dynamicIntBytes(uint64(len(sortedCells)), uint(cellSizeBytes))...)

	// roots num (only 1 supported for now)
	data = append(data, dynamicIntBytes(1, uint(cellSizeBytes))...)

	// complete BOCs = 0
	data = append(data, dynamicIntBytes(0, uint(cellSizeBytes))...)

	// len of data
	data = append(data, dynamicIntBytes(uint64(len(payload)), uint(sizeBytes))...)

	// root index
	data = append(data, dynamicIntBytes(0, uint(cellSizeBytes))...)
	data = append(data, payload...)

	if withCRC {
		checksum := make([]byte, 4)
		binary.LittleEndian.PutUint32(checksum, crc32.Checksum(data, crc32.MakeTable(crc32.Castagnoli)))

		data = append(data, checksum...)
	}

	return data
}

// serialize renders a single cell for boc payload, refs as indexes
func (c *Cell) serialize(index map[string]uint64, refIndexSzBytes int) []byte {
	data := append(c.descriptors(), c.augmentedData()...)

	for _, ref := range c.refs {
		data = append(data, dynamicIntBytes(index[string(ref.Hash())], uint(refIndexSzBytes))...)
	}

	return data
}

// serializeHash renders the cell for hashing, refs as (depth, hash) pairs,
// so the hash is stable over bits + ordered child hashes
func (c *Cell) serializeHash() []byte {
	data := append(c.descriptors(), c.augmentedData()...)

	for _, ref := range c.refs {
		data = append(data, make([]byte, 2)...)
		binary.BigEndian.PutUint16(data[len(data)-2:], uint16(ref.maxDepth(0)))
	}
	for _, ref := range c.refs {
		data = append(data, ref.Hash()...)
	}

	return data
}

// calc how deep is the cell (how long children tree)
func (c *Cell) maxDepth(start int) int {
	d := start
	for _, cc := range c.refs {
		if x := cc.maxDepth(start + 1); x > d {
			d = x
		}
	}
	return d
}

// augmentedData returns cell data with the completion tag set
// when the last byte is not fully used
func (c *Cell) augmentedData() []byte {
	payload := append([]byte{}, c.data...)

	if unusedBits := 8 - (c.bitsSz % 8); unusedBits != 8 {
		// we need to set bit at the end if not whole byte was used
		payload[len(payload)-1] |= 1 << (unusedBits - 1)
	}
	return payload
}

func (c *Cell) descriptors() []byte {
	ceilBytes := c.bitsSz / 8
	if c.bitsSz%8 != 0 {
		ceilBytes++
	}

	// calc size
	ln := ceilBytes + c.bitsSz/8

	specBit := byte(0)
	if c.special {
		specBit = 8
	}

	return []byte{byte(len(c.refs)) + specBit, byte(ln)}
}

type idxItem struct {
	index uint64
	cell  *Cell
}

func flattenIndex(cells []*Cell) ([]*Cell, map[string]uint64) {
	index := map[string]*idxItem{}

	idx := uint64(0)
	for len(cells) > 0 {
		next := make([]*Cell, 0, len(cells)*4)
		for _, p := range cells {
			hash := string(p.Hash())

			if _, ok := index[hash]; ok {
				continue
			}

			// move cell forward in boc, because behind reference is not allowed
			index[hash] = &idxItem{
				cell:  p,
				index: idx,
			}
			idx++
			next = append(next, p.refs...)
		}
		cells = next
	}

	idxSlice := make([]*idxItem, 0, len(index))
	for _, id := range index {
		idxSlice = append(idxSlice, id)
	}

	for verifyOrder := true; verifyOrder; {
		verifyOrder = false

		for _, id := range idxSlice {
			for _, ref := range id.cell.refs {
				idRef := index[string(ref.Hash())]

				if idRef.index < id.index {
					// if we found that ref index is behind parent,
					// move ref index forward
					idRef.index = idx
					idx++

					// we changed index, so we need to verify order again
					verifyOrder = true
				}
			}
		}
	}

	sort.Slice(idxSlice, func(i, j int) bool {
		return idxSlice[i].index < idxSlice[j].index
	})

	ordered := make([]*Cell, len(idxSlice))
	flat := make(map[string]uint64, len(idxSlice))
	for i, id := range idxSlice {
		// remove gaps in indexes
		id.index = uint64(i)

		ordered[i] = id.cell
		flat[string(id.cell.Hash())] = uint64(i)
	}

	return ordered, flat
}

func dynamicIntBytes(val uint64, sz uint) []byte {
	data := make([]byte, 8)
	binary.BigEndian.PutUint64(data, val)

	return data[8-sz:]
}
