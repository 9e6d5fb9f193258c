package core

import (
	"errors"
	"math/big"

	"github.com/eth2030/eth2030/core/types"
	"github.com/eth2030/eth2030/core/vm"
)

// ErrIntrinsicGasTooLow is returned when a message's gas limit is below the
// intrinsic gas required to even start execution.
var ErrIntrinsicGasTooLow = errors.New("intrinsic gas too low")

// TxAuthTupleGas is the per-authorization-tuple gas charged up front by
// EIP-7702 (PER_EMPTY_ACCOUNT_COST). No part of it is refunded, even when
// the authority account already exists.
const TxAuthTupleGas uint64 = 25000

// IntrinsicGasForMessage computes the intrinsic gas required before any EVM
// execution occurs: the flat base cost, the per-byte calldata cost, the
// EIP-2930 access list surcharge, the EIP-3860 initcode word cost for
// contract creation, and the EIP-7702 per-authorization-tuple cost.
func IntrinsicGasForMessage(msg *Message) (uint64, error) {
	isCreate := msg.To == nil

	gas, err := IntrinsicGasWithAccessList(msg.Data, isCreate, msg.AccessList)
	if err != nil {
		return 0, err
	}

	if isCreate {
		words := (uint64(len(msg.Data)) + 31) / 32
		initGas := words * vm.InitCodeWordGas
		gas += initGas
		if gas < initGas {
			return 0, ErrGasUint64Overflow
		}
	}

	if n := len(msg.AuthList); n > 0 {
		authGas := uint64(n) * TxAuthTupleGas
		gas += authGas
		if gas < authGas {
			return 0, ErrGasUint64Overflow
		}
	}

	return gas, nil
}

// applyAuthorizations processes an EIP-7702 authorization list, setting each
// valid authority's code to a delegation designator (or clearing it, when the
// authorization names the zero address) before frame 0 starts. Invalid tuples
// (bad signature, out-of-range nonce, wrong chain ID) are skipped rather than
// failing the whole transaction, per EIP-7702.
func applyAuthorizations(state vm.StateDB, chainID uint64, authList []types.Authorization) {
	for i := range authList {
		a := &authList[i]

		if a.ChainID != nil && a.ChainID.Sign() != 0 && a.ChainID.Uint64() != chainID {
			continue
		}
		if a.V == nil || a.R == nil || a.S == nil {
			continue
		}

		auth := &vm.Authorization7702{
			ChainID: chainID,
			Address: a.Address,
			Nonce:   a.Nonce,
			V:       []byte{byte(a.V.Uint64())},
			R:       leftPad32(a.R.Bytes()),
			S:       leftPad32(a.S.Bytes()),
		}
		if err := vm.ValidateAuthorization(auth, types.Address{}); err != nil {
			continue
		}

		signer, err := vm.RecoverSigner(auth)
		if err != nil {
			continue
		}
		if state.GetNonce(signer) != a.Nonce {
			continue
		}

		if a.Address.IsZero() {
			state.SetCode(signer, nil)
		} else {
			state.SetCode(signer, vm.NewDelegationDesignator(a.Address))
		}
		state.SetNonce(signer, a.Nonce+1)
		state.AddAddressToAccessList(signer)
	}
}

func leftPad32(b []byte) []byte {
	if len(b) >= 32 {
		return b[len(b)-32:]
	}
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}

// ApplyMessage executes msg against evm: it charges intrinsic gas, applies
// any EIP-7702 authorization-list delegations, pre-warms the sender/recipient
// per EIP-2929, dispatches to Create or Call, and caps the final gas refund.
func ApplyMessage(evm *vm.EVM, msg *Message) (*ExecutionResult, error) {
	intrinsic, err := IntrinsicGasForMessage(msg)
	if err != nil {
		return nil, err
	}
	if msg.GasLimit < intrinsic {
		return nil, ErrIntrinsicGasTooLow
	}
	gasRemaining := msg.GasLimit - intrinsic

	if len(msg.AuthList) > 0 && evm.StateDB != nil {
		applyAuthorizations(evm.StateDB, evm.ChainID(), msg.AuthList)
	}

	evm.PreWarmAccessList(msg.From, msg.To)
	if evm.StateDB != nil {
		for _, tuple := range msg.AccessList {
			evm.StateDB.AddAddressToAccessList(tuple.Address)
			for _, key := range tuple.StorageKeys {
				evm.StateDB.AddSlotToAccessList(tuple.Address, key)
			}
		}
	}

	var (
		ret             []byte
		gasLeft         uint64
		execErr         error
		contractAddress types.Address
	)

	if msg.To == nil {
		ret, contractAddress, gasLeft, execErr = evm.Create(msg.From, msg.Data, gasRemaining, valueOrZero(msg.Value))
	} else {
		ret, gasLeft, execErr = evm.Call(msg.From, *msg.To, msg.Data, gasRemaining, valueOrZero(msg.Value))
	}

	gasUsed := gasRemaining - gasLeft

	quotient := uint64(2)
	if evm.GetForkRules().IsLondon {
		quotient = vm.MaxRefundQuotient
	}
	if evm.StateDB != nil {
		refund := evm.StateDB.GetRefund()
		refundCap := gasUsed / quotient
		if refund > refundCap {
			refund = refundCap
		}
		gasLeft += refund
		gasUsed -= refund
	}

	result := &ExecutionResult{
		UsedGas:         gasUsed + intrinsic,
		BlockGasUsed:    gasRemaining - gasLeft + intrinsic,
		Err:             execErr,
		ReturnData:      ret,
		ContractAddress: contractAddress,
	}
	return result, nil
}

func valueOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
