package tlb

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XaBbl4/tonsdk/tvm/cell"
)

func TestCoins_FromTON(t *testing.T) {
	tests := []struct {
		in   string
		nano string
	}{
		{"0", "0"},
		{"1", "1000000000"},
		{"1.5", "1500000000"},
		{"0.000000001", "1"},
		{"0.097", "97000000"},
		{"123.456789", "123456789000"},
	}

	for _, tt := range tests {
		c, err := FromTON(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.nano, c.Nano().String(), tt.in)
	}

	_, err := FromTON("not a number")
	assert.Error(t, err)
}

func TestCoins_NegativeRejected(t *testing.T) {
	for _, v := range []string{"-1", "-1.5", "-0.000000001"} {
		_, err := FromTON(v)
		assert.Error(t, err, v)
	}
}

func TestCoins_String(t *testing.T) {
	tests := []struct {
		nano uint64
		want string
	}{
		{0, "0"},
		{1, "0.000000001"},
		{1000000000, "1"},
		{1500000000, "1.5"},
		{97000000, "0.097"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FromNanoTONU(tt.nano).String())
	}
}

func TestCoins_StringRoundTrip(t *testing.T) {
	for _, v := range []string{"0", "1", "1.5", "0.000000001", "9999.999999999"} {
		c := MustFromTON(v)
		assert.Equal(t, v, c.String())
	}
}

func TestCoins_ZeroValue(t *testing.T) {
	var c Coins
	assert.Equal(t, "0", c.String())
	assert.Equal(t, int64(0), c.Nano().Int64())
}

func TestCoins_TooBig(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 130)
	_, err := FromDecimal(huge.String(), 0)
	assert.Error(t, err)
}

func TestCoins_CellRoundTrip(t *testing.T) {
	amount := MustFromTON("12.345")

	c := cell.BeginCell().MustStoreBigCoins(amount.Nano()).EndCell()

	var got Coins
	require.NoError(t, got.LoadFromCell(c.BeginParse()))
	assert.Equal(t, amount.Nano().String(), got.Nano().String())
	assert.Equal(t, "12.345", got.String())
}

func TestCoins_MarshalJSON(t *testing.T) {
	b, err := MustFromTON("1.5").MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"1500000000"`, string(b))
}
