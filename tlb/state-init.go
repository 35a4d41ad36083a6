package tlb

import (
	"fmt"

	"github.com/XaBbl4/tonsdk/address"
	"github.com/XaBbl4/tonsdk/tvm/cell"
)

// StateInit carries the code and data cells a contract is deployed with.
// Split depth, tick-tock and the library dict are not used by ordinary
// wallets, they serialize as empty.
type StateInit struct {
	Code *cell.Cell
	Data *cell.Cell
}

func (s *StateInit) ToCell() (*cell.Cell, error) {
	b := cell.BeginCell().
		MustStoreBoolBit(false). // no split depth
		MustStoreBoolBit(false)  // no tick-tock

	if err := b.StoreMaybeRef(s.Code); err != nil {
		return nil, fmt.Errorf("failed to store code: %w", err)
	}
	if err := b.StoreMaybeRef(s.Data); err != nil {
		return nil, fmt.Errorf("failed to store data: %w", err)
	}

	// empty libraries dict
	b.MustStoreBoolBit(false)

	return b.EndCell(), nil
}

// CalcAddress derives the deterministic contract address,
// the hash of the serialized state init in the given workchain
func (s *StateInit) CalcAddress(workchain int) (*address.Address, error) {
	c, err := s.ToCell()
	if err != nil {
		return nil, err
	}
	return address.NewAddress(0b00010001, byte(workchain), c.Hash()), nil
}

func LoadStateInit(loader *cell.Slice) (*StateInit, error) {
	hasDepth, err := loader.LoadBoolBit()
	if err != nil {
		return nil, fmt.Errorf("failed to load split depth bit: %w", err)
	}
	if hasDepth {
		if _, err = loader.LoadUInt(5); err != nil {
			return nil, fmt.Errorf("failed to load split depth: %w", err)
		}
	}

	hasTickTock, err := loader.LoadBoolBit()
	if err != nil {
		return nil, fmt.Errorf("failed to load tick-tock bit: %w", err)
	}
	if hasTickTock {
		if _, err = loader.LoadUInt(2); err != nil {
			return nil, fmt.Errorf("failed to load tick-tock: %w", err)
		}
	}

	var si StateInit

	hasCode, err := loader.LoadBoolBit()
	if err != nil {
		return nil, fmt.Errorf("failed to load code bit: %w", err)
	}
	if hasCode {
		si.Code, err = loader.LoadRefCell()
		if err != nil {
			return nil, fmt.Errorf("failed to load code: %w", err)
		}
	}

	hasData, err := loader.LoadBoolBit()
	if err != nil {
		return nil, fmt.Errorf("failed to load data bit: %w", err)
	}
	if hasData {
		si.Data, err = loader.LoadRefCell()
		if err != nil {
			return nil, fmt.Errorf("failed to load data: %w", err)
		}
	}

	// libraries dict bit
	if _, err = loader.LoadBoolBit(); err != nil {
		return nil, fmt.Errorf("failed to load lib bit: %w", err)
	}

	return &si, nil
}
