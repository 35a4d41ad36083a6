package cell

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"math/bits"
)

func dynInt(data []byte) int {
	tmp := make([]byte, 8)
	copy(tmp[8-len(data):], data)

	return int(binary.BigEndian.Uint64(tmp))
}

func FromBOC(data []byte) (*Cell, error) {
	cells, err := fromBOCMultiRoot(data)
	if err != nil {
		return nil, err
	}

	return cells[0], nil
}

func fromBOCMultiRoot(data []byte) ([]*Cell, error) {
	if len(data) < 10 {
		return nil, errors.New("invalid boc")
	}

	r := newReader(data)

	if !bytes.Equal(r.MustReadBytes(4), bocMagic) {
		return nil, errors.New("invalid boc magic header")
	}

	flags := r.MustReadByte()

	cellNumSizeBytes := int(flags & 0b111)
	dataSizeBytes := int(r.MustReadByte())

	cellsNum := dynInt(r.MustReadBytes(cellNumSizeBytes))
	rootsNum := dynInt(r.MustReadBytes(cellNumSizeBytes))

	// complete BOCs
	_ = r.MustReadBytes(cellNumSizeBytes)

	dataLen := dynInt(r.MustReadBytes(dataSizeBytes))

	// with checksum
	if flags&0b01000000 != 0 {
		crc := crc32.Checksum(data[:len(data)-4], crc32.MakeTable(crc32.Castagnoli))
		if binary.LittleEndian.Uint32(data[len(data)-4:]) != crc {
			return nil, errors.New("checksum not matches")
		}
	}

	rootIndex := dynInt(r.MustReadBytes(cellNumSizeBytes))
	if rootIndex != 0 {
		return nil, fmt.Errorf("first root index should be 0, but it is %d", rootIndex)
	}

	payload, err := r.ReadBytes(dataLen)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload, want %d, has %d", dataLen, r.LeftLen())
	}

	cll, err := parseCells(rootsNum, cellsNum, cellNumSizeBytes, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to parse payload: %w", err)
	}

	return cll, nil
}

func parseCells(rootsNum, cellsNum, refSzBytes int, data []byte) ([]*Cell, error) {
	cells := make([]*Cell, cellsNum)
	for i := range cells {
		cells[i] = new(Cell)
	}
	referred := make([]bool, cellsNum)

	r := newReader(data)

	for i := 0; i < cellsNum; i++ {
		flags, err := r.ReadByte()
		if err != nil {
			return nil, errors.New("failed to parse cell refs num, corrupted data")
		}

		refsNum := int(flags & 0b111)
		special := (flags & 0b1000) != 0

		ln, err := r.ReadByte()
		if err != nil {
			return nil, errors.New("failed to parse cell length, corrupted data")
		}

		// round to 1 byte, len in half-bytes
		oneMore := ln % 2

		payload, err := r.ReadBytes(int(ln/2 + oneMore))
		if err != nil {
			return nil, errors.New("failed to parse cell payload, corrupted data")
		}

		bitsSz := uint(ln/2) * 8
		if oneMore != 0 {
			// last byte carries the completion tag, cut it off to get exact bits len
			last := payload[len(payload)-1]
			if last == 0 {
				return nil, errors.New("failed to parse cell payload, missing completion tag")
			}
			bitsSz = uint(ln/2)*8 + uint(7-bits.TrailingZeros8(last))
			payload = append([]byte{}, payload...)
			payload[len(payload)-1] &= 0xFF << (8 - bitsSz%8)
		}

		var refs []*Cell
		for y := 0; y < refsNum; y++ {
			idx, err := r.ReadBytes(refSzBytes)
			if err != nil {
				return nil, errors.New("failed to parse cell references, corrupted data")
			}

			id := dynInt(idx)
			if id >= cellsNum {
				return nil, errors.New("ref index out of range, corrupted data")
			}

			refs = append(refs, cells[id])
			referred[id] = true
		}

		cells[i].special = special
		cells[i].bitsSz = bitsSz
		cells[i].data = payload
		cells[i].refs = refs
	}

	var roots []*Cell

	// get cells which are not referenced by another, its root cells
	for y, isRef := range referred {
		if !isRef {
			roots = append(roots, cells[y])
		}
	}

	if len(roots) != rootsNum {
		return nil, errors.New("roots num not match actual num")
	}

	return roots, nil
}
