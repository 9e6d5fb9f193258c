package vm

import "github.com/eth2030/eth2030/core/types"

// EIP-7702 delegation designator: a 23-byte code blob of the form
// 0xef0100 || address, recognized in place of ordinary bytecode. Any account
// carrying this code executes the pointee's code while keeping its own
// storage, balance, and nonce.
var delegationPrefix = [3]byte{0xef, 0x01, 0x00}

// DelegationDesignatorSize is the length of a delegation designator: 3-byte
// prefix plus a 20-byte address.
const DelegationDesignatorSize = 23

// IsDelegationDesignator reports whether code is an EIP-7702 delegation
// designator.
func IsDelegationDesignator(code []byte) bool {
	return len(code) == DelegationDesignatorSize &&
		code[0] == delegationPrefix[0] && code[1] == delegationPrefix[1] && code[2] == delegationPrefix[2]
}

// ParseDelegation extracts the delegated-to address from a designator.
// ok is false if code is not a delegation designator.
func ParseDelegation(code []byte) (addr types.Address, ok bool) {
	if !IsDelegationDesignator(code) {
		return types.Address{}, false
	}
	copy(addr[:], code[3:23])
	return addr, true
}

// NewDelegationDesignator builds the 23-byte designator code for target.
func NewDelegationDesignator(target types.Address) []byte {
	code := make([]byte, DelegationDesignatorSize)
	copy(code[0:3], delegationPrefix[:])
	copy(code[3:23], target[:])
	return code
}

// createdSetTracker is implemented by StateDBs that track which addresses
// were created (via CREATE/CREATE2) earlier in the current transaction, per
// EIP-6780. It is consulted as an optional capability rather than a required
// StateDB method so that minimal StateDB implementations (tests, mocks) keep
// compiling unchanged; such implementations simply report nothing as created,
// so SELFDESTRUCT against them only moves the balance and never destroys.
type createdSetTracker interface {
	MarkCreated(addr types.Address)
	WasCreatedThisTx(addr types.Address) bool
}

// markCreated records that addr was created by CREATE/CREATE2 in the current
// transaction, if the StateDB supports tracking this.
func markCreated(state StateDB, addr types.Address) {
	if t, ok := state.(createdSetTracker); ok {
		t.MarkCreated(addr)
	}
}

// wasCreatedThisTx reports whether addr was created earlier in the current
// transaction, per EIP-6780. StateDBs that don't implement createdSetTracker
// report false, meaning SELFDESTRUCT never actually destroys the account.
func wasCreatedThisTx(state StateDB, addr types.Address) bool {
	if t, ok := state.(createdSetTracker); ok {
		return t.WasCreatedThisTx(addr)
	}
	return false
}

// resolveCode fetches the code to execute for addr, following a single
// EIP-7702 delegation hop if present. Delegation does not chain: if the
// pointee's own code is itself a designator, the pointee's raw code (the
// designator bytes) is executed, matching the no-recursive-delegation rule.
func resolveCode(state StateDB, addr types.Address) []byte {
	code := state.GetCode(addr)
	if target, ok := ParseDelegation(code); ok {
		return state.GetCode(target)
	}
	return code
}
