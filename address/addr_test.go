package address

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	addrData1 = []byte{186, 41, 94, 51, 179, 196, 201, 181, 38, 90, 164, 234, 209, 22, 106, 146, 147, 28, 233, 171, 234, 18, 10, 140, 94, 145, 4, 74, 18, 87, 248, 156}
	addrData2 = []byte{147, 13, 85, 51, 152, 10, 186, 17, 252, 216, 24, 69, 169, 84, 235, 245, 235, 42, 62, 31, 149, 112, 220, 29, 43, 146, 215, 34, 119, 63, 212, 44}
)

func TestAddress_String(t *testing.T) {
	tests := []struct {
		name      string
		flags     byte
		workchain byte
		data      []byte
		want      string
	}{
		{"bounceable 1", 0b00010001, 0, addrData1, "EQC6KV4zs8TJtSZapOrRFmqSkxzpq-oSCoxekQRKElf4nC1I"},
		{"bounceable 2", 0b00010001, 0, addrData2, "EQCTDVUzmAq6EfzYGEWpVOv16yo-H5Vw3B0rktcidz_ULOUj"},
		{"non-bounceable 1", 0b01010001, 0, addrData1, "UQC6KV4zs8TJtSZapOrRFmqSkxzpq-oSCoxekQRKElf4nHCN"},
		{"non-bounceable 2", 0b01010001, 0, addrData2, "UQCTDVUzmAq6EfzYGEWpVOv16yo-H5Vw3B0rktcidz_ULLjm"},
		{"testnet bounceable 1", 0b10010001, 0, addrData1, "kQC6KV4zs8TJtSZapOrRFmqSkxzpq-oSCoxekQRKElf4nJbC"},
		{"testnet bounceable 2", 0b10010001, 0, addrData2, "kQCTDVUzmAq6EfzYGEWpVOv16yo-H5Vw3B0rktcidz_ULF6p"},
		{"testnet non-bounceable 1", 0b11010001, 0, addrData1, "0QC6KV4zs8TJtSZapOrRFmqSkxzpq-oSCoxekQRKElf4nMsH"},
		{"testnet non-bounceable 2", 0b11010001, 0, addrData2, "0QCTDVUzmAq6EfzYGEWpVOv16yo-H5Vw3B0rktcidz_ULANs"},
		{"workchain 1 first", 0b11010001, 1, addrData1, "0QG6KV4zs8TJtSZapOrRFmqSkxzpq-oSCoxekQRKElf4nEbb"},
		{"workchain 1 second", 0b11010001, 1, addrData2, "0QGTDVUzmAq6EfzYGEWpVOv16yo-H5Vw3B0rktcidz_ULI6w"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAddress(tt.flags, tt.workchain, tt.data)
			assert.Equal(t, tt.want, a.String())
		})
	}
}

func TestAddress_Checksum(t *testing.T) {
	tests := []struct {
		name      string
		flags     byte
		workchain byte
		data      []byte
		want      uint16
	}{
		{"mainnet bounceable 1", 0b00010001, 0, addrData1, 11592},
		{"mainnet bounceable 2", 0b00010001, 0, addrData2, 58659},
		{"mainnet non-bounceable", 0b01010001, 0, addrData1, 28813},
		{"testnet bounceable", 0b10010001, 0, addrData2, 24233},
		{"testnet workchain 1", 0b10010001, 1, addrData2, 54133},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAddress(tt.flags, tt.workchain, tt.data)
			assert.Equal(t, tt.want, a.Checksum())
		})
	}
}

func TestParseAddr(t *testing.T) {
	a, err := ParseAddr("EQC6KV4zs8TJtSZapOrRFmqSkxzpq-oSCoxekQRKElf4nC1I")
	require.NoError(t, err)

	assert.Equal(t, StdAddress, a.Type())
	assert.Equal(t, int32(0), a.Workchain())
	assert.Equal(t, addrData1, a.Data())
	assert.Equal(t, uint(256), a.BitsLen())
	assert.True(t, a.IsBounceable())
	assert.False(t, a.IsTestnetOnly())

	a, err = ParseAddr("0QGTDVUzmAq6EfzYGEWpVOv16yo-H5Vw3B0rktcidz_ULI6w")
	require.NoError(t, err)

	assert.Equal(t, int32(1), a.Workchain())
	assert.Equal(t, addrData2, a.Data())
	assert.False(t, a.IsBounceable())
	assert.True(t, a.IsTestnetOnly())
}

func TestParseAddr_Errors(t *testing.T) {
	// flag byte tampered, checksum no longer matches
	_, err := ParseAddr("AQCTDVUzmAq6EfzYGEWpVOv16yo-H5Vw3B0rktcidz_ULOUj")
	assert.ErrorIs(t, err, ErrAddrChecksum)

	// checksum bytes tampered
	_, err = ParseAddr("EQCTDVUzmAq6EfzYGEWpVOv16yo-H5Vw3B0rktcidz_ULOUB")
	assert.ErrorIs(t, err, ErrAddrChecksum)

	// too short
	_, err = ParseAddr("EQC6KV4z")
	assert.Error(t, err)

	// not base64
	_, err = ParseAddr("!!!")
	assert.Error(t, err)
}

func TestParseRawAddr(t *testing.T) {
	data := make([]byte, 32)
	for i := range data {
		data[i] = 0x12
	}

	for _, wc := range []int32{0, -1, 127, -127} {
		a, err := ParseRawAddr(strconv.FormatInt(int64(wc), 10) + ":1212121212121212121212121212121212121212121212121212121212121212")
		require.NoError(t, err)

		assert.Equal(t, wc, a.Workchain())
		assert.Equal(t, data, a.Data())
		// raw form carries no flags, bounceable is the default
		assert.True(t, a.IsBounceable())
		assert.False(t, a.IsTestnetOnly())
	}

	_, err := ParseRawAddr("no-colon")
	assert.Error(t, err)

	_, err = ParseRawAddr("x:1212")
	assert.Error(t, err)

	_, err = ParseRawAddr("0:zz")
	assert.Error(t, err)

	_, err = ParseRawAddr("0:1212")
	assert.Error(t, err)
}

func TestAddress_StringRaw(t *testing.T) {
	a := MustParseAddr("EQC6KV4zs8TJtSZapOrRFmqSkxzpq-oSCoxekQRKElf4nC1I")
	assert.Equal(t, "0:ba295e33b3c4c9b5265aa4ead1166a92931ce9abea120a8c5e91044a1257f89c", a.StringRaw())

	b, err := ParseRawAddr(a.StringRaw())
	require.NoError(t, err)
	assert.True(t, a.Equals(b))
}

func TestAddress_Dump(t *testing.T) {
	a := NewAddress(0b00010001, 0, addrData1)
	assert.Equal(t, "human-readable address: EQC6KV4zs8TJtSZapOrRFmqSkxzpq-oSCoxekQRKElf4nC1I isBounceable: true, isTestnetOnly: false, data.len: 32", a.Dump())
}

func TestAddress_FlagsToByte(t *testing.T) {
	tests := []struct {
		name       string
		bounceable bool
		testnet    bool
		want       byte
	}{
		{"bounceable", true, false, 0b00010001},
		{"non-bounceable", false, false, 0b01010001},
		{"testnet bounceable", true, true, 0b10010001},
		{"testnet non-bounceable", false, true, 0b11010001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAddress(0b00010001, 0, addrData1)
			a.SetBounce(tt.bounceable)
			a.SetTestnetOnly(tt.testnet)
			assert.Equal(t, tt.want, a.FlagsToByte())

			// the byte form should parse back to the same flags
			parsed := parseFlags(tt.want)
			assert.Equal(t, tt.bounceable, parsed.bounceable)
			assert.Equal(t, tt.testnet, parsed.testnet)
		})
	}
}

func TestAddress_BounceTestnetCopies(t *testing.T) {
	a := MustParseAddr("EQC6KV4zs8TJtSZapOrRFmqSkxzpq-oSCoxekQRKElf4nC1I")

	b := a.Bounce(false)
	assert.False(t, b.IsBounceable())
	assert.True(t, a.IsBounceable(), "original should not be modified")
	assert.Equal(t, "UQC6KV4zs8TJtSZapOrRFmqSkxzpq-oSCoxekQRKElf4nHCN", b.String())

	tn := a.Testnet(true)
	assert.True(t, tn.IsTestnetOnly())
	assert.False(t, a.IsTestnetOnly(), "original should not be modified")
	assert.Equal(t, "kQC6KV4zs8TJtSZapOrRFmqSkxzpq-oSCoxekQRKElf4nJbC", tn.String())
}

func TestAddress_Equals(t *testing.T) {
	a := MustParseAddr("EQC6KV4zs8TJtSZapOrRFmqSkxzpq-oSCoxekQRKElf4nC1I")
	b := MustParseAddr("UQC6KV4zs8TJtSZapOrRFmqSkxzpq-oSCoxekQRKElf4nHCN")
	c := MustParseAddr("EQCTDVUzmAq6EfzYGEWpVOv16yo-H5Vw3B0rktcidz_ULOUj")

	// flags are presentation only, identity is workchain + data
	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
	assert.False(t, a.Equals(nil))
	assert.False(t, a.Equals(NewAddressNone()))
}

func TestAddress_None(t *testing.T) {
	a := NewAddressNone()
	assert.True(t, a.IsAddrNone())
	assert.Equal(t, NoneAddress, a.Type())
	assert.Equal(t, "NONE", a.String())

	var nilAddr *Address
	assert.True(t, nilAddr.IsAddrNone())

	std := MustParseAddr("EQC6KV4zs8TJtSZapOrRFmqSkxzpq-oSCoxekQRKElf4nC1I")
	assert.False(t, std.IsAddrNone())
}

func TestAddress_JSON(t *testing.T) {
	tests := []struct {
		name string
		addr *Address
		want string
	}{
		{"std", MustParseAddr("EQCTDVUzmAq6EfzYGEWpVOv16yo-H5Vw3B0rktcidz_ULOUj"), `"EQCTDVUzmAq6EfzYGEWpVOv16yo-H5Vw3B0rktcidz_ULOUj"`},
		{"none", NewAddressNone(), `"NONE"`},
		{"ext", NewAddressExt(0b00010001, 256, []byte{1, 2, 3}), `"EXT:1100000100010203"`},
		{"ext empty", NewAddressExt(0b00010001, 256, nil), `"EXT:1100000100"`},
		{"var", NewAddressVar(0b10010001, -1, 256, []byte{4, 5, 6}), `"VAR:91ffffffff00000100040506"`},
		{"var empty", NewAddressVar(0b10010001, -1, 256, nil), `"VAR:91ffffffff00000100"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.addr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))

			var back Address
			require.NoError(t, json.Unmarshal(got, &back))
			assert.Equal(t, tt.addr.Type(), back.Type())
			assert.True(t, tt.addr.Equals(&back) || tt.addr.Type() != StdAddress)
		})
	}
}

func TestAddress_UnmarshalJSON_Errors(t *testing.T) {
	var a Address
	assert.Error(t, a.UnmarshalJSON([]byte("")))
	assert.Error(t, a.UnmarshalJSON([]byte(`""`)))
	assert.Error(t, a.UnmarshalJSON([]byte(`"AQCTDVUzmAq6EfzYGEWpVOv16yo-H5Vw3B0rktcidz_ULOUj"`)))
	assert.Error(t, a.UnmarshalJSON([]byte(`"EXT:11"`)))
	assert.Error(t, a.UnmarshalJSON([]byte(`"VAR:91ffffffff"`)))
}
