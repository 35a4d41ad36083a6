package wallet

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/XaBbl4/tonsdk/address"
	"github.com/XaBbl4/tonsdk/tlb"
	"github.com/XaBbl4/tonsdk/tvm/cell"
)

// https://github.com/toncenter/tonweb/blob/master/src/contract/wallet/WalletSources.md#v3-wallet
const _V3R1CodeHex = "B5EE9C724101010100620000C0FF0020DD2082014C97BA9730ED44D0D70B1FE0A4F2608308D71820D31FD31FD31FF82313BBF263ED44D0D31FD31FD3FFD15132BAF2A15144BAF2A204F901541055F910F2A3F8009320D74A96D307D402FB00E8D101A4C8CB1FCB1FCBFFC9ED543FBE6EE0"

// https://github.com/toncenter/tonweb/blob/master/src/contract/wallet/WalletSources.md#revision-2-2
const _V3R2CodeHex = "B5EE9C724101010100710000DEFF0020DD2082014C97BA218201339CBAB19F71B0ED44D0D31FD31F31D70BFFE304E0A4F2608308D71820D31FD31FD31FF82313BBF263ED44D0D31FD31FD3FFD15132BAF2A15144BAF2A204F901541055F910F2A3F8009320D74A96D307D402FB00E8D101A4C8CB1FCB1FCBFFC9ED5410BD6DAD"

type Version int

const (
	V3R1    Version = 31
	V3R2    Version = 32
	V3              = V3R2
	Unknown Version = 0
)

// DefaultSubwallet for V3 wallets, hardcoded everywhere in the ecosystem
const DefaultSubwallet = 698983191

var ErrUnsupportedWalletVersion = errors.New("wallet version is not supported")

var (
	walletCodeHex = map[Version]string{
		V3R1: _V3R1CodeHex, V3R2: _V3R2CodeHex,
	}
	walletCode = map[Version]*cell.Cell{}
)

func init() {
	for ver, codeHex := range walletCodeHex {
		boc, err := hex.DecodeString(codeHex)
		if err != nil {
			panic(err)
		}
		walletCode[ver], err = cell.FromBOC(boc)
		if err != nil {
			panic(err)
		}
	}
}

func (v Version) String() string {
	if v == Unknown {
		return "unknown"
	}
	if v/10 > 0 && v/10 < 10 {
		return fmt.Sprintf("V%dR%d", v/10, v%10)
	}
	return fmt.Sprintf("%d", v)
}

// GetWalletCode returns the embedded code cell for the given version
func GetWalletCode(ver Version) (*cell.Cell, error) {
	code, ok := walletCode[ver]
	if !ok {
		return nil, ErrUnsupportedWalletVersion
	}
	return code, nil
}

// GetStateInit builds the deploy package of the wallet contract,
// the initial data cell holds seqno 0, the subwallet id and the public key
func GetStateInit(pubKey ed25519.PublicKey, ver Version, subwallet uint32) (*tlb.StateInit, error) {
	code, err := GetWalletCode(ver)
	if err != nil {
		return nil, err
	}

	data := cell.BeginCell().
		MustStoreUInt(0, 32). // seqno
		MustStoreUInt(uint64(subwallet), 32).
		MustStoreSlice(pubKey, 256).
		EndCell()

	return &tlb.StateInit{
		Data: data,
		Code: code,
	}, nil
}

// AddressFromPubKey derives the deterministic wallet address,
// the hash of the state init it would be deployed with
func AddressFromPubKey(key ed25519.PublicKey, ver Version, subwallet uint32) (*address.Address, error) {
	state, err := GetStateInit(key, ver, subwallet)
	if err != nil {
		return nil, fmt.Errorf("failed to get state: %w", err)
	}

	stateCell, err := state.ToCell()
	if err != nil {
		return nil, fmt.Errorf("failed to get state cell: %w", err)
	}

	return address.NewAddress(0, 0, stateCell.Hash()), nil
}
