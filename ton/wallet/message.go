package wallet

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/XaBbl4/tonsdk/address"
	"github.com/XaBbl4/tonsdk/tlb"
	"github.com/XaBbl4/tonsdk/tvm/cell"
)

var ErrMalformedTransfer = errors.New("malformed transfer data")

type payloadKind int

const (
	payloadEmpty payloadKind = iota
	payloadText
	payloadBinary
	payloadCell
)

// Payload is the closed set of transfer body variants. The zero value is
// the empty payload.
type Payload struct {
	kind payloadKind
	text string
	data []byte
	cell *cell.Cell
}

func EmptyPayload() Payload {
	return Payload{}
}

// TextPayload is a plain text comment, serialized with a 32-bit zero marker
// so it is distinguishable from binary data at decode time
func TextPayload(text string) Payload {
	return Payload{kind: payloadText, text: text}
}

// BinaryPayload is opaque bytes, serialized without a marker
func BinaryPayload(data []byte) Payload {
	return Payload{kind: payloadBinary, data: data}
}

// CellPayload is a pre-built body used verbatim, the caller asserts it is well-formed
func CellPayload(c *cell.Cell) Payload {
	return Payload{kind: payloadCell, cell: c}
}

func (p Payload) IsEmpty() bool {
	return p.kind == payloadEmpty
}

func (p Payload) ToCell() (*cell.Cell, error) {
	switch p.kind {
	case payloadEmpty:
		return cell.BeginCell().EndCell(), nil
	case payloadText:
		return CreateCommentCell(p.text)
	case payloadBinary:
		b := cell.BeginCell()
		if err := b.StoreBinarySnake(p.data); err != nil {
			return nil, fmt.Errorf("failed to store binary payload: %w", err)
		}
		return b.EndCell(), nil
	case payloadCell:
		if p.cell == nil {
			return nil, fmt.Errorf("%w: nil payload cell", ErrMalformedTransfer)
		}
		return p.cell, nil
	}
	return nil, fmt.Errorf("%w: unknown payload kind", ErrMalformedTransfer)
}

// Transfer describes one recipient of an outgoing message. It is a value
// object, built once and consumed by the signing payload builder.
type Transfer struct {
	// Address is the destination in its human-readable string form,
	// parsed and validated when the message is built
	Address string
	Amount  tlb.Coins

	// Mode of 0 means DefaultSendMode
	Mode    SendMode
	Payload Payload

	// StateInit deploys the destination contract together with the transfer
	StateInit *tlb.StateInit
}

func (t *Transfer) sendMode() SendMode {
	if t.Mode == 0 {
		return DefaultSendMode
	}
	return t.Mode
}

// toInternalMessage resolves the destination address and payload into the
// wire form of the transfer
func (t *Transfer) toInternalMessage() (*tlb.InternalMessage, error) {
	addr, err := address.ParseAddr(t.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to parse destination address: %w", err)
	}

	body, err := t.Payload.ToCell()
	if err != nil {
		return nil, err
	}

	return &tlb.InternalMessage{
		IHRDisabled: true,
		Bounce:      addr.IsBounceable(),
		DstAddr:     addr,
		Amount:      t.Amount,
		Body:        body,
		StateInit:   t.StateInit,
	}, nil
}

// ToMap renders the transfer as a loosely-typed mapping, the inverse of
// TransferFromMap. The send mode is always present, defaulted when unset.
func (t *Transfer) ToMap() map[string]any {
	m := map[string]any{
		"address":   t.Address,
		"amount":    t.Amount.Nano().String(),
		"send_mode": uint8(t.sendMode()),
	}

	switch t.Payload.kind {
	case payloadText:
		m["payload"] = t.Payload.text
	case payloadBinary:
		m["payload"] = t.Payload.data
	case payloadCell:
		m["payload"] = t.Payload.cell
	}

	if t.StateInit != nil {
		m["state_init"] = t.StateInit
	}

	return m
}

// TransferFromMap builds a transfer from a loosely-typed mapping.
// Address and amount are required, everything else gets defaults.
func TransferFromMap(m map[string]any) (*Transfer, error) {
	t := &Transfer{
		Mode: DefaultSendMode,
	}

	addr, ok := m["address"].(string)
	if !ok || addr == "" {
		return nil, fmt.Errorf("%w: address is required", ErrMalformedTransfer)
	}
	t.Address = addr

	amount, err := amountFromValue(m["amount"])
	if err != nil {
		return nil, err
	}
	t.Amount = amount

	if v, ok := m["send_mode"]; ok {
		mode, err := sendModeFromValue(v)
		if err != nil {
			return nil, err
		}
		t.Mode = mode
	}

	if v, ok := m["payload"]; ok {
		switch p := v.(type) {
		case string:
			t.Payload = TextPayload(p)
		case []byte:
			t.Payload = BinaryPayload(p)
		case *cell.Cell:
			t.Payload = CellPayload(p)
		case nil:
		default:
			return nil, fmt.Errorf("%w: unsupported payload type %T", ErrMalformedTransfer, v)
		}
	}

	if v, ok := m["state_init"]; ok && v != nil {
		si, ok := v.(*tlb.StateInit)
		if !ok {
			return nil, fmt.Errorf("%w: unsupported state init type %T", ErrMalformedTransfer, v)
		}
		t.StateInit = si
	}

	return t, nil
}

func amountFromValue(v any) (tlb.Coins, error) {
	switch a := v.(type) {
	case tlb.Coins:
		return a, nil
	case string:
		val, ok := new(big.Int).SetString(a, 10)
		if !ok || val.Sign() < 0 {
			return tlb.Coins{}, fmt.Errorf("%w: invalid amount %q", ErrMalformedTransfer, a)
		}
		return tlb.FromNanoTON(val), nil
	case uint64:
		return tlb.FromNanoTONU(a), nil
	case int:
		if a < 0 {
			return tlb.Coins{}, fmt.Errorf("%w: negative amount", ErrMalformedTransfer)
		}
		return tlb.FromNanoTONU(uint64(a)), nil
	case int64:
		if a < 0 {
			return tlb.Coins{}, fmt.Errorf("%w: negative amount", ErrMalformedTransfer)
		}
		return tlb.FromNanoTONU(uint64(a)), nil
	case *big.Int:
		if a.Sign() < 0 {
			return tlb.Coins{}, fmt.Errorf("%w: negative amount", ErrMalformedTransfer)
		}
		return tlb.FromNanoTON(a), nil
	case nil:
		return tlb.Coins{}, fmt.Errorf("%w: amount is required", ErrMalformedTransfer)
	}
	return tlb.Coins{}, fmt.Errorf("%w: unsupported amount type %T", ErrMalformedTransfer, v)
}

func sendModeFromValue(v any) (SendMode, error) {
	switch m := v.(type) {
	case SendMode:
		return m, nil
	case uint8:
		return SendMode(m), nil
	case int:
		if m < 0 || m > 255 {
			return 0, fmt.Errorf("%w: send mode should fit in one byte", ErrMalformedTransfer)
		}
		return SendMode(m), nil
	case uint64:
		if m > 255 {
			return 0, fmt.Errorf("%w: send mode should fit in one byte", ErrMalformedTransfer)
		}
		return SendMode(m), nil
	}
	return 0, fmt.Errorf("%w: unsupported send mode type %T", ErrMalformedTransfer, v)
}
