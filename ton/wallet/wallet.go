package wallet

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/XaBbl4/tonsdk/address"
	"github.com/XaBbl4/tonsdk/tlb"
	"github.com/XaBbl4/tonsdk/tvm/cell"
)

var (
	// ErrNoIdentity - wallet constructed without a key pair, an address or a key set
	ErrNoIdentity = errors.New("wallet requires a key pair, an address or a set of public keys")
	// ErrNoPrivateKey - a real signature requested but no private key was supplied
	ErrNoPrivateKey = errors.New("no private key available to sign")
	// ErrNoPublicKey - deployment data requested but no public key was supplied
	ErrNoPublicKey = errors.New("no public key available to build deployment data")
	// ErrTooManyMessages - the contract accepts at most 4 transfers per message
	ErrTooManyMessages = errors.New("for this type of wallet max 4 messages can be sent at the same time")
)

// defining time this way to mock it in tests
var timeNow = time.Now

const defaultMessagesTTL = 60 * 3 // 3 min

// Options describe the wallet identity and variant. At least one of
// PrivateKey, PublicKey, Address or PublicKeys must be set.
type Options struct {
	PublicKey  ed25519.PublicKey
	PrivateKey ed25519.PrivateKey

	// PublicKeys reserves the multi-owner identity variant, such wallets
	// can only produce dummy-signed messages through this facade
	PublicKeys []ed25519.PublicKey

	// Address overrides derivation from the public key
	Address *address.Address

	Version   Version // V3R2 when zero
	Subwallet uint32  // DefaultSubwallet when zero

	// MessagesTTL bounds the validity of transfer messages, seconds
	MessagesTTL uint32
}

// Wallet is a stateless facade over the message builders. It holds only the
// identity supplied at construction, the replay counter (seqno) comes from
// the caller on every call.
type Wallet struct {
	key       ed25519.PrivateKey
	pubKey    ed25519.PublicKey
	pubKeys   []ed25519.PublicKey
	addr      *address.Address
	ver       Version
	subwallet uint32
	ttl       uint32
}

// SignedMessage is the built external message envelope together with all
// intermediate artifacts, for caller inspection and submission.
type SignedMessage struct {
	Address        *address.Address
	Message        *cell.Cell
	Body           *cell.Cell
	Signature      []byte
	SigningPayload *cell.Cell

	// deploy package, set only when the message carries seqno 0
	StateInit *tlb.StateInit
	Code      *cell.Cell
	Data      *cell.Cell
}

func New(opts Options) (*Wallet, error) {
	if opts.PrivateKey == nil && opts.PublicKey == nil &&
		opts.Address == nil && len(opts.PublicKeys) == 0 {
		return nil, ErrNoIdentity
	}

	pubKey := opts.PublicKey
	if pubKey == nil && opts.PrivateKey != nil {
		pubKey = opts.PrivateKey.Public().(ed25519.PublicKey)
	}

	ver := opts.Version
	if ver == Unknown {
		ver = V3
	}
	if _, ok := walletCode[ver]; !ok {
		return nil, ErrUnsupportedWalletVersion
	}

	subwallet := opts.Subwallet
	if subwallet == 0 {
		subwallet = DefaultSubwallet
	}

	ttl := opts.MessagesTTL
	if ttl == 0 {
		ttl = defaultMessagesTTL
	}

	return &Wallet{
		key:       opts.PrivateKey,
		pubKey:    pubKey,
		pubKeys:   opts.PublicKeys,
		addr:      opts.Address,
		ver:       ver,
		subwallet: subwallet,
		ttl:       ttl,
	}, nil
}

func FromPrivateKey(key ed25519.PrivateKey) (*Wallet, error) {
	return New(Options{PrivateKey: key})
}

func FromAddress(addr *address.Address) (*Wallet, error) {
	return New(Options{Address: addr})
}

// Address returns the explicit address when one was supplied,
// otherwise derives it from the public key
func (w *Wallet) Address() (*address.Address, error) {
	if w.addr != nil {
		return w.addr, nil
	}
	if w.pubKey == nil {
		return nil, ErrNoPublicKey
	}
	return AddressFromPubKey(w.pubKey, w.ver, w.subwallet)
}

func (w *Wallet) PrivateKey() ed25519.PrivateKey {
	return w.key
}

func (w *Wallet) PublicKey() ed25519.PublicKey {
	return w.pubKey
}

func (w *Wallet) SubwalletID() uint32 {
	return w.subwallet
}

func (w *Wallet) Version() Version {
	return w.ver
}

// BuildSigningPayload assembles the unsigned replay-protected payload:
// a header with the subwallet id, expiry and seqno, followed by one branch
// per transfer holding its send-mode byte and the internal message.
// Zero transfers is the deployment handshake form.
func (w *Wallet) BuildSigningPayload(seqno uint32, transfers []*Transfer) (*cell.Cell, error) {
	if len(transfers) > 4 {
		return nil, ErrTooManyMessages
	}

	payload := cell.BeginCell().MustStoreUInt(uint64(w.subwallet), 32)

	if seqno == 0 {
		// first message of an undeployed wallet never expires
		payload.MustStoreUInt(0xFFFFFFFF, 32)
	} else {
		validUntil := timeNow().Add(time.Duration(w.ttl) * time.Second).UTC().Unix()
		payload.MustStoreUInt(uint64(validUntil), 32)
	}

	payload.MustStoreUInt(uint64(seqno), 32)

	for i, t := range transfers {
		intMsg, err := t.toInternalMessage()
		if err != nil {
			return nil, fmt.Errorf("failed to build internal message %d: %w", i, err)
		}

		msgCell, err := intMsg.ToCell()
		if err != nil {
			return nil, fmt.Errorf("failed to convert internal message %d to cell: %w", i, err)
		}

		payload.MustStoreUInt(uint64(t.sendMode()), 8).MustStoreRef(msgCell)
	}

	return payload.EndCell(), nil
}

// BuildTransfer builds and signs a single-recipient external message
func (w *Wallet) BuildTransfer(transfer *Transfer, seqno uint32) (*SignedMessage, error) {
	return w.BuildTransferBatch([]*Transfer{transfer}, seqno)
}

// BuildTransferBatch builds and signs an external message carrying up to
// 4 transfers, in input order
func (w *Wallet) BuildTransferBatch(transfers []*Transfer, seqno uint32) (*SignedMessage, error) {
	return w.buildExternalMessage(transfers, seqno, false)
}

// BuildUnsignedTransferBatch is BuildTransferBatch with a 64-zero-byte dummy
// signature, for fee estimation. Works without a private key.
func (w *Wallet) BuildUnsignedTransferBatch(transfers []*Transfer, seqno uint32) (*SignedMessage, error) {
	return w.buildExternalMessage(transfers, seqno, true)
}

// BuildDeployMessage builds the signed external message that activates the
// wallet contract without moving funds: seqno 0, no transfer branches,
// deploy package attached
func (w *Wallet) BuildDeployMessage() (*SignedMessage, error) {
	return w.buildExternalMessage(nil, 0, false)
}

func (w *Wallet) buildExternalMessage(transfers []*Transfer, seqno uint32, dummySignature bool) (*SignedMessage, error) {
	payload, err := w.BuildSigningPayload(seqno, transfers)
	if err != nil {
		return nil, err
	}

	signature := make([]byte, 64)
	if !dummySignature {
		if w.key == nil {
			return nil, ErrNoPrivateKey
		}
		signature = payload.Sign(w.key)
	}

	body := cell.BeginCell().
		MustStoreSlice(signature, 512).
		MustStoreBuilder(payload.ToBuilder()).
		EndCell()

	addr, err := w.Address()
	if err != nil {
		return nil, err
	}

	var stateInit *tlb.StateInit
	if seqno == 0 {
		if w.pubKey == nil {
			return nil, ErrNoPublicKey
		}
		stateInit, err = GetStateInit(w.pubKey, w.ver, w.subwallet)
		if err != nil {
			return nil, fmt.Errorf("failed to get state init: %w", err)
		}
	}

	ext := &tlb.ExternalMessage{
		DstAddr:   addr,
		StateInit: stateInit,
		Body:      body,
	}

	msg, err := ext.ToCell()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize external message: %w", err)
	}

	sm := &SignedMessage{
		Address:        addr,
		Message:        msg,
		Body:           body,
		Signature:      signature,
		SigningPayload: payload,
		StateInit:      stateInit,
	}
	if stateInit != nil {
		sm.Code = stateInit.Code
		sm.Data = stateInit.Data
	}

	return sm, nil
}
