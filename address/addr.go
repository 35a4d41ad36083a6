package address

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sigurn/crc16"
)

type AddrType int

const (
	NoneAddress AddrType = iota
	ExtAddress
	StdAddress
	VarAddress
)

type Address struct {
	flags     flags
	addrType  AddrType
	workchain int32
	bitsLen   uint
	data      []byte
}

type flags struct {
	bounceable bool
	testnet    bool
}

var crcTable = crc16.MakeTable(crc16.CRC16_XMODEM)

var ErrAddrChecksum = errors.New("invalid address checksum")

func NewAddress(flags byte, workchain byte, data []byte) *Address {
	return &Address{
		flags:     parseFlags(flags),
		addrType:  StdAddress,
		workchain: int32(int8(workchain)),
		bitsLen:   uint(len(data) * 8),
		data:      data,
	}
}

func NewAddressNone() *Address {
	return &Address{
		addrType: NoneAddress,
	}
}

func NewAddressExt(flags byte, bitsLen uint, data []byte) *Address {
	return &Address{
		flags:    parseFlags(flags),
		addrType: ExtAddress,
		bitsLen:  bitsLen,
		data:     data,
	}
}

func NewAddressVar(flags byte, workchain int32, bitsLen uint, data []byte) *Address {
	return &Address{
		flags:     parseFlags(flags),
		addrType:  VarAddress,
		workchain: workchain,
		bitsLen:   bitsLen,
		data:      data,
	}
}

func (a *Address) IsAddrNone() bool {
	return a == nil || a.addrType == NoneAddress
}

func (a *Address) Type() AddrType {
	return a.addrType
}

func (a *Address) Copy() *Address {
	return &Address{
		flags:     a.flags,
		addrType:  a.addrType,
		workchain: a.workchain,
		bitsLen:   a.bitsLen,
		data:      append([]byte{}, a.data...),
	}
}

// Bounce returns a copy of the address with the bounce flag set as given
func (a *Address) Bounce(bounce bool) *Address {
	x := a.Copy()
	x.flags.bounceable = bounce
	return x
}

// Testnet returns a copy of the address with the testnet-only flag set as given
func (a *Address) Testnet(testnet bool) *Address {
	x := a.Copy()
	x.flags.testnet = testnet
	return x
}

func (a *Address) String() string {
	switch a.addrType {
	case NoneAddress:
		return "NONE"
	case StdAddress:
		address := make([]byte, 36)
		copy(address, a.prepareChecksumData())
		binary.BigEndian.PutUint16(address[34:], a.Checksum())
		return base64.RawURLEncoding.EncodeToString(address)
	default:
		// base64 form exists only for std addresses
		return "NOT_SUPPORTED"
	}
}

func (a *Address) StringRaw() string {
	return fmt.Sprintf("%d:%s", a.workchain, hex.EncodeToString(a.data))
}

func (a *Address) Dump() string {
	return fmt.Sprintf("human-readable address: %s isBounceable: %t, isTestnetOnly: %t, data.len: %d", a, a.flags.bounceable, a.flags.testnet, len(a.data))
}

func (a *Address) Checksum() uint16 {
	return crc16.Checksum(a.prepareChecksumData(), crcTable)
}

func (a *Address) prepareChecksumData() []byte {
	data := make([]byte, 34)
	data[0] = a.FlagsToByte()
	data[1] = byte(a.workchain)
	copy(data[2:], a.data)
	return data
}

func (a *Address) FlagsToByte() (flags byte) {
	// TODO: maybe better to use other addr types too
	flags = 0b00010001
	if !a.flags.bounceable {
		setBit(&flags, 6)
	}
	if a.flags.testnet {
		setBit(&flags, 7)
	}
	return flags
}

func parseFlags(data byte) flags {
	return flags{
		bounceable: !hasBit(data, 6),
		testnet:    hasBit(data, 7),
	}
}

func MustParseAddr(addr string) *Address {
	a, err := ParseAddr(addr)
	if err != nil {
		panic(err)
	}
	return a
}

func ParseAddr(addr string) (*Address, error) {
	data, err := base64.RawURLEncoding.DecodeString(addr)
	if err != nil {
		return nil, err
	}

	if len(data) != 36 {
		return nil, errors.New("incorrect address data")
	}

	checksum := data[len(data)-2:]
	if crc16.Checksum(data[:len(data)-2], crcTable) != binary.BigEndian.Uint16(checksum) {
		return nil, ErrAddrChecksum
	}

	a := NewAddress(data[0], data[1], data[2:len(data)-2])
	return a, nil
}

func MustParseRawAddr(addr string) *Address {
	a, err := ParseRawAddr(addr)
	if err != nil {
		panic(err)
	}
	return a
}

func ParseRawAddr(addr string) (*Address, error) {
	parts := strings.SplitN(addr, ":", 2)
	if len(parts) != 2 {
		return nil, errors.New("incorrect address format")
	}

	workchain, err := strconv.ParseInt(parts[0], 10, 32)
	if err != nil {
		return nil, errors.New("incorrect workchain")
	}

	data, err := hex.DecodeString(parts[1])
	if err != nil {
		return nil, errors.New("incorrect address data")
	}
	if len(data) != 32 {
		return nil, errors.New("incorrect address data length")
	}

	// bounceable by default
	a := NewAddress(0b00010001, byte(workchain), data)
	return a, nil
}

func (a *Address) IsBounceable() bool {
	return a.flags.bounceable
}

func (a *Address) IsTestnetOnly() bool {
	return a.flags.testnet
}

func (a *Address) SetBounce(bouncable bool) {
	a.flags.bounceable = bouncable
}

func (a *Address) SetTestnetOnly(testnetOnly bool) {
	a.flags.testnet = testnetOnly
}

func (a *Address) Workchain() int32 {
	return a.workchain
}

func (a *Address) BitsLen() uint {
	return a.bitsLen
}

func (a *Address) Data() []byte {
	return a.data
}

func (a *Address) Equals(b *Address) bool {
	if a == nil || b == nil {
		return a == b
	}

	if a.addrType != b.addrType ||
		a.workchain != b.workchain ||
		a.bitsLen != b.bitsLen ||
		len(a.data) != len(b.data) {
		return false
	}

	for i := range a.data {
		if a.data[i] != b.data[i] {
			return false
		}
	}
	return true
}

func (a *Address) MarshalJSON() ([]byte, error) {
	switch a.addrType {
	case NoneAddress:
		return []byte(strconv.Quote("NONE")), nil
	case StdAddress:
		return []byte(strconv.Quote(a.String())), nil
	case ExtAddress:
		buf := make([]byte, 5)
		buf[0] = a.FlagsToByte()
		binary.BigEndian.PutUint32(buf[1:], uint32(a.bitsLen))
		return []byte(strconv.Quote("EXT:" + hex.EncodeToString(append(buf, a.data...)))), nil
	case VarAddress:
		buf := make([]byte, 9)
		buf[0] = a.FlagsToByte()
		binary.BigEndian.PutUint32(buf[1:], uint32(a.workchain))
		binary.BigEndian.PutUint32(buf[5:], uint32(a.bitsLen))
		return []byte(strconv.Quote("VAR:" + hex.EncodeToString(append(buf, a.data...)))), nil
	default:
		return nil, errors.New("unknown address type")
	}
}

func (a *Address) UnmarshalJSON(data []byte) error {
	str, err := strconv.Unquote(string(data))
	if err != nil {
		return errors.New("invalid data")
	}

	switch {
	case str == "NONE":
		*a = *NewAddressNone()
		return nil
	case strings.HasPrefix(str, "EXT:"):
		raw, err := hex.DecodeString(str[4:])
		if err != nil || len(raw) < 5 {
			return errors.New("invalid ext addr data")
		}
		bitsLen := binary.BigEndian.Uint32(raw[1:5])
		*a = *NewAddressExt(raw[0], uint(bitsLen), raw[5:])
		return nil
	case strings.HasPrefix(str, "VAR:"):
		raw, err := hex.DecodeString(str[4:])
		if err != nil || len(raw) < 9 {
			return errors.New("invalid var addr data")
		}
		workchain := int32(binary.BigEndian.Uint32(raw[1:5]))
		bitsLen := binary.BigEndian.Uint32(raw[5:9])
		*a = *NewAddressVar(raw[0], workchain, uint(bitsLen), raw[9:])
		return nil
	case strings.Contains(str, ":"):
		addr, err := ParseRawAddr(str)
		if err != nil {
			return err
		}
		*a = *addr
		return nil
	default:
		addr, err := ParseAddr(str)
		if err != nil {
			return err
		}
		*a = *addr
		return nil
	}
}

func setBit(n *byte, pos uint) {
	*n |= 1 << pos
}

func hasBit(n byte, pos uint) bool {
	return (n & (1 << pos)) > 0
}
