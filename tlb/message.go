package tlb

import (
	"fmt"

	"github.com/XaBbl4/tonsdk/address"
	"github.com/XaBbl4/tonsdk/tvm/cell"
)

// InternalMessage is a value-carrying message between contracts,
// int_msg_info$0 in the ledger scheme
type InternalMessage struct {
	IHRDisabled bool
	Bounce      bool
	Bounced     bool
	SrcAddr     *address.Address
	DstAddr     *address.Address
	Amount      Coins
	IHRFee      Coins
	FwdFee      Coins
	CreatedLT   uint64
	CreatedAt   uint32

	StateInit *StateInit
	Body      *cell.Cell
}

// ExternalMessage enters the chain from outside, ext_in_msg_info$10
type ExternalMessage struct {
	SrcAddr   *address.Address
	DstAddr   *address.Address
	ImportFee Coins

	StateInit *StateInit
	Body      *cell.Cell
}

func (m *InternalMessage) ToCell() (*cell.Cell, error) {
	b := cell.BeginCell()
	b.MustStoreUInt(0, 1) // identification of int msg
	b.MustStoreBoolBit(m.IHRDisabled)
	b.MustStoreBoolBit(m.Bounce)
	b.MustStoreBoolBit(m.Bounced)
	b.MustStoreAddr(m.SrcAddr)
	b.MustStoreAddr(m.DstAddr)
	b.MustStoreBigCoins(m.Amount.Nano())

	// empty extra currencies dict
	b.MustStoreBoolBit(false)

	b.MustStoreBigCoins(m.IHRFee.Nano())
	b.MustStoreBigCoins(m.FwdFee.Nano())

	b.MustStoreUInt(m.CreatedLT, 64)
	b.MustStoreUInt(uint64(m.CreatedAt), 32)

	err := appendInitStateAndBody(b, m.StateInit, m.Body)
	if err != nil {
		return nil, err
	}

	return b.EndCell(), nil
}

// Comment extracts the plain text comment from the body,
// empty string when the body is not a text comment
func (m *InternalMessage) Comment() string {
	if m.Body != nil {
		l := m.Body.BeginParse()
		if val, err := l.LoadUInt(32); err == nil && val == 0 {
			str, _ := l.LoadStringSnake()
			return str
		}
	}
	return ""
}

func (m *InternalMessage) Dump() string {
	return fmt.Sprintf("Amount %s TON, Created at: %d, Created lt %d\nBounce: %t, Bounced %t, IHRDisabled %t\nSrcAddr: %s\nDstAddr: %s\nPayload: %s",
		m.Amount.String(), m.CreatedAt, m.CreatedLT, m.Bounce, m.Bounced, m.IHRDisabled, m.SrcAddr, m.DstAddr, m.Body.Dump())
}

func (m *ExternalMessage) ToCell() (*cell.Cell, error) {
	b := cell.BeginCell().MustStoreUInt(0b10, 2).
		MustStoreAddr(m.SrcAddr).
		MustStoreAddr(m.DstAddr).
		MustStoreBigCoins(m.ImportFee.Nano())

	err := appendInitStateAndBody(b, m.StateInit, m.Body)
	if err != nil {
		return nil, err
	}

	return b.EndCell(), nil
}

func (m *InternalMessage) LoadFromCell(loader *cell.Slice) error {
	tag, err := loader.LoadUInt(1)
	if err != nil {
		return fmt.Errorf("failed to load tag: %w", err)
	}
	if tag != 0 {
		return fmt.Errorf("not an internal message")
	}

	if m.IHRDisabled, err = loader.LoadBoolBit(); err != nil {
		return fmt.Errorf("failed to load ihr disabled bit: %w", err)
	}
	if m.Bounce, err = loader.LoadBoolBit(); err != nil {
		return fmt.Errorf("failed to load bounce bit: %w", err)
	}
	if m.Bounced, err = loader.LoadBoolBit(); err != nil {
		return fmt.Errorf("failed to load bounced bit: %w", err)
	}
	if m.SrcAddr, err = loadMsgAddr(loader); err != nil {
		return fmt.Errorf("failed to load src addr: %w", err)
	}
	if m.DstAddr, err = loadMsgAddr(loader); err != nil {
		return fmt.Errorf("failed to load dst addr: %w", err)
	}
	if err = m.Amount.LoadFromCell(loader); err != nil {
		return fmt.Errorf("failed to load amount: %w", err)
	}

	// extra currencies dict, only empty is supported
	hasExtra, err := loader.LoadBoolBit()
	if err != nil {
		return fmt.Errorf("failed to load extra currencies bit: %w", err)
	}
	if hasExtra {
		if _, err = loader.LoadRefCell(); err != nil {
			return fmt.Errorf("failed to load extra currencies: %w", err)
		}
	}

	if err = m.IHRFee.LoadFromCell(loader); err != nil {
		return fmt.Errorf("failed to load ihr fee: %w", err)
	}
	if err = m.FwdFee.LoadFromCell(loader); err != nil {
		return fmt.Errorf("failed to load fwd fee: %w", err)
	}
	if m.CreatedLT, err = loader.LoadUInt(64); err != nil {
		return fmt.Errorf("failed to load created lt: %w", err)
	}
	createdAt, err := loader.LoadUInt(32)
	if err != nil {
		return fmt.Errorf("failed to load created at: %w", err)
	}
	m.CreatedAt = uint32(createdAt)

	m.StateInit, m.Body, err = loadInitStateAndBody(loader)
	return err
}

func (m *ExternalMessage) LoadFromCell(loader *cell.Slice) error {
	tag, err := loader.LoadUInt(2)
	if err != nil {
		return fmt.Errorf("failed to load tag: %w", err)
	}
	if tag != 0b10 {
		return fmt.Errorf("not an external in message")
	}

	if m.SrcAddr, err = loadMsgAddr(loader); err != nil {
		return fmt.Errorf("failed to load src addr: %w", err)
	}
	if m.DstAddr, err = loadMsgAddr(loader); err != nil {
		return fmt.Errorf("failed to load dst addr: %w", err)
	}
	if err = m.ImportFee.LoadFromCell(loader); err != nil {
		return fmt.Errorf("failed to load import fee: %w", err)
	}

	m.StateInit, m.Body, err = loadInitStateAndBody(loader)
	return err
}

func appendInitStateAndBody(b *cell.Builder, stateInit *StateInit, body *cell.Cell) error {
	var err error
	if b.BitsLeft() < 3 {
		return fmt.Errorf("not enough storage to serialize state init and body")
	}
	b.MustStoreBoolBit(stateInit != nil)
	if stateInit != nil {
		stateCell, err := stateInit.ToCell()
		if err != nil {
			return fmt.Errorf("failed to serialize state init: %w", err)
		}

		if int(stateCell.BitsSize()) > int(b.BitsLeft())-2 || int(stateCell.RefsNum()) > b.RefsLeft()-1 {
			b.MustStoreBoolBit(true) // state as ref
			err = b.StoreRef(stateCell)
		} else {
			b.MustStoreBoolBit(false) // state as slice
			err = b.StoreBuilder(stateCell.ToBuilder())
		}
		if err != nil {
			return fmt.Errorf("failed to store message state init: %w", err)
		}
	}

	if body != nil {
		if int(body.BitsSize()) > int(b.BitsLeft())-1 || body.RefsNum() > b.RefsLeft() {
			b.MustStoreBoolBit(true) // body as ref
			err = b.StoreRef(body)
		} else {
			b.MustStoreBoolBit(false) // body as slice
			err = b.StoreBuilder(body.ToBuilder())
		}
		if err != nil {
			return fmt.Errorf("failed to store message body: %w", err)
		}
	} else {
		b.MustStoreBoolBit(false)
	}

	return nil
}

func loadInitStateAndBody(loader *cell.Slice) (*StateInit, *cell.Cell, error) {
	var stateInit *StateInit

	hasInit, err := loader.LoadBoolBit()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load state init bit: %w", err)
	}
	if hasInit {
		initAsRef, err := loader.LoadBoolBit()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load state init either bit: %w", err)
		}

		initLoader := loader
		if initAsRef {
			if initLoader, err = loader.LoadRef(); err != nil {
				return nil, nil, fmt.Errorf("failed to load state init ref: %w", err)
			}
		}

		if stateInit, err = LoadStateInit(initLoader); err != nil {
			return nil, nil, fmt.Errorf("failed to load state init: %w", err)
		}
	}

	bodyAsRef, err := loader.LoadBoolBit()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load body either bit: %w", err)
	}

	var body *cell.Cell
	if bodyAsRef {
		if body, err = loader.LoadRefCell(); err != nil {
			return nil, nil, fmt.Errorf("failed to load body ref: %w", err)
		}
	} else {
		if body, err = loader.ToCell(); err != nil {
			return nil, nil, fmt.Errorf("failed to load body: %w", err)
		}
	}

	return stateInit, body, nil
}

func loadMsgAddr(loader *cell.Slice) (*address.Address, error) {
	workchain, data, err := loader.LoadAddr()
	if err != nil {
		return nil, err
	}
	if data == nil {
		return address.NewAddressNone(), nil
	}
	return address.NewAddress(0b00010001, byte(workchain), data), nil
}
