package vm

import (
	"math/big"

	"github.com/eth2030/eth2030/core/types"
)

// dynamicGasFunc calculates dynamic gas cost for an operation. The error
// return reports InvalidRange-style failures (an offset/length that cannot
// be realized as a machine address) rather than silently wrapping them into
// some small in-range cost.
type dynamicGasFunc func(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error)

// memorySizeFunc returns the required memory size for an operation and
// whether that size could be computed without overflow. false means the
// requested range can never be realized as a machine address.
type memorySizeFunc func(stack *Stack) (uint64, bool)

// operation represents a single EVM opcode's execution metadata.
type operation struct {
	execute     executionFunc
	constantGas uint64
	dynamicGas  dynamicGasFunc
	minStack    int // minimum stack items required
	maxStack    int // maximum stack items allowed (1024 - net stack items pushed)
	memorySize  memorySizeFunc
	halts       bool // whether this opcode halts execution (STOP, RETURN, SELFDESTRUCT)
	jumps       bool // whether this opcode performs a jump (JUMP, JUMPI)
	writes      bool // whether this opcode modifies state (SSTORE, LOG, CREATE, etc.)
}

// JumpTable maps every possible opcode to its operation definition.
type JumpTable [256]*operation

// Memory size functions for operations that access memory. Each mirrors the
// opcode's stack layout; offsets/lengths go through memoryRangeSize so a
// pathological 256-bit offset reports overflow instead of wrapping into a
// tiny in-range access.

func memoryMload(stack *Stack) (uint64, bool) {
	return memoryRangeSize(stack.Back(0), big.NewInt(32))
}

func memoryMstore(stack *Stack) (uint64, bool) {
	return memoryRangeSize(stack.Back(0), big.NewInt(32))
}

func memoryMstore8(stack *Stack) (uint64, bool) {
	return memoryRangeSize(stack.Back(0), big.NewInt(1))
}

func memoryReturn(stack *Stack) (uint64, bool) {
	return memoryRangeSize(stack.Back(0), stack.Back(1))
}

func memoryKeccak256(stack *Stack) (uint64, bool) {
	return memoryRangeSize(stack.Back(0), stack.Back(1))
}

func memoryCalldataCopy(stack *Stack) (uint64, bool) {
	return memoryRangeSize(stack.Back(0), stack.Back(2))
}

func memoryCodeCopy(stack *Stack) (uint64, bool) {
	return memoryRangeSize(stack.Back(0), stack.Back(2))
}

func memoryLog(stack *Stack) (uint64, bool) {
	return memoryRangeSize(stack.Back(0), stack.Back(1))
}

func memoryReturndataCopy(stack *Stack) (uint64, bool) {
	return memoryRangeSize(stack.Back(0), stack.Back(2))
}

func memoryExtcodeCopy(stack *Stack) (uint64, bool) {
	return memoryRangeSize(stack.Back(1), stack.Back(3))
}

// memoryCall returns the required memory size for CALL.
// Stack: gas, addr, value, argsOffset, argsLength, retOffset, retLength
func memoryCall(stack *Stack) (uint64, bool) {
	return memoryCallLike(stack.Back(3), stack.Back(4), stack.Back(5), stack.Back(6))
}

// memoryCallCode returns the required memory size for CALLCODE.
// Same stack layout as CALL.
func memoryCallCode(stack *Stack) (uint64, bool) {
	return memoryCall(stack)
}

// memoryDelegateCall returns the required memory size for DELEGATECALL.
// Stack: gas, addr, argsOffset, argsLength, retOffset, retLength (no value)
func memoryDelegateCall(stack *Stack) (uint64, bool) {
	return memoryCallLike(stack.Back(2), stack.Back(3), stack.Back(4), stack.Back(5))
}

// memoryStaticCall returns the required memory size for STATICCALL.
// Same stack layout as DELEGATECALL.
func memoryStaticCall(stack *Stack) (uint64, bool) {
	return memoryDelegateCall(stack)
}

func memoryCallLike(argsOffset, argsLength, retOffset, retLength *big.Int) (uint64, bool) {
	argsEnd, ok := memoryRangeSize(argsOffset, argsLength)
	if !ok {
		return 0, false
	}
	retEnd, ok := memoryRangeSize(retOffset, retLength)
	if !ok {
		return 0, false
	}
	if argsEnd > retEnd {
		return argsEnd, true
	}
	return retEnd, true
}

// memoryCreate returns the required memory size for CREATE.
// Stack: value, offset, length
func memoryCreate(stack *Stack) (uint64, bool) {
	return memoryRangeSize(stack.Back(1), stack.Back(2))
}

// memoryCreate2 returns the required memory size for CREATE2.
// Stack: value, offset, length, salt
func memoryCreate2(stack *Stack) (uint64, bool) {
	return memoryRangeSize(stack.Back(1), stack.Back(2))
}

// memoryMcopy returns the required memory size for MCOPY.
// Stack: destOffset, offset, length
func memoryMcopy(stack *Stack) (uint64, bool) {
	destEnd, ok := memoryRangeSize(stack.Back(0), stack.Back(2))
	if !ok {
		return 0, false
	}
	srcEnd, ok := memoryRangeSize(stack.Back(1), stack.Back(2))
	if !ok {
		return 0, false
	}
	if destEnd > srcEnd {
		return destEnd, true
	}
	return srcEnd, true
}

// gasMemExpansion calculates dynamic gas for memory expansion, per the
// 3*words + words^2/512 formula. It charges only the incremental cost over
// whatever memory is already allocated.
func gasMemExpansion(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	if memorySize == 0 {
		return 0, nil
	}
	words := (memorySize + 31) / 32
	newCost := words*GasMemory + (words*words)/512
	if uint64(mem.Len()) == 0 {
		return newCost, nil
	}
	oldWords := (uint64(mem.Len()) + 31) / 32
	oldCost := oldWords*GasMemory + (oldWords*oldWords)/512
	if newCost > oldCost {
		return newCost - oldCost, nil
	}
	return 0, nil
}

// gasSload charges EIP-2929 warm/cold SLOAD access. SLOAD touches no memory.
func gasSload(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	key := bigToHash(stack.Peek())
	if evm.StateDB == nil {
		return 0, nil
	}
	if _, slotWarm := evm.StateDB.SlotInAccessList(contract.Address, key); slotWarm {
		return 0, nil
	}
	evm.StateDB.AddSlotToAccessList(contract.Address, key)
	return ColdSloadCost - WarmStorageReadCost, nil
}

// gasSstore implements the EIP-2200/2929/3529 net-metered SSTORE gas
// schedule plus refund accounting, delegating the tier logic to
// CalcSStoreGas in dynamic_gas.go.
func gasSstore(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	if evm.StateDB == nil {
		return GasSstoreSet, nil
	}
	key := bigToHash(stack.Back(0))
	newVal := bigToHash(stack.Back(1))

	var coldAccess bool
	if _, slotWarm := evm.StateDB.SlotInAccessList(contract.Address, key); !slotWarm {
		evm.StateDB.AddSlotToAccessList(contract.Address, key)
		coldAccess = true
	}

	current := evm.StateDB.GetState(contract.Address, key)
	original := evm.StateDB.GetCommittedState(contract.Address, key)

	calc := NewDynamicGasCalculator(DefaultPricingRules())
	cost, refund, err := calc.CalcSStoreGas(current, original, newVal, coldAccess)
	if err != nil {
		return 0, err
	}
	switch {
	case refund > 0:
		evm.StateDB.AddRefund(uint64(refund))
	case refund < 0:
		evm.StateDB.SubRefund(uint64(-refund))
	}
	return cost, nil
}

// gasAccountAccess charges the EIP-2929 cold-address surcharge, over and
// above the warm constantGas already charged for every access. Used by
// BALANCE, EXTCODESIZE, EXTCODEHASH, EXTCODECOPY and the CALL family.
func gasAccountAccess(evm *EVM, addr types.Address, warmCost, coldCost uint64) (uint64, error) {
	if evm.StateDB == nil {
		return 0, nil
	}
	if evm.StateDB.AddressInAccessList(addr) {
		return 0, nil
	}
	evm.StateDB.AddAddressToAccessList(addr)
	return coldCost - warmCost, nil
}

func gasBalance(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return gasAccountAccess(evm, bigToAddress(stack.Peek()), WarmStorageReadCost, ColdAccountAccessCost)
}

func gasExtcodesize(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return gasAccountAccess(evm, bigToAddress(stack.Peek()), WarmStorageReadCost, ColdAccountAccessCost)
}

func gasExtcodehash(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return gasAccountAccess(evm, bigToAddress(stack.Peek()), WarmStorageReadCost, ColdAccountAccessCost)
}

func gasExtcodeCopy(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	accessCost, err := gasAccountAccess(evm, bigToAddress(stack.Back(0)), WarmStorageReadCost, ColdAccountAccessCost)
	if err != nil {
		return 0, err
	}
	memCost, err := gasMemExpansion(evm, contract, stack, mem, memorySize)
	if err != nil {
		return 0, err
	}
	return accessCost + memCost, nil
}

// gasCallFamily charges the EIP-2929 cold/warm surcharge for CALL-family
// opcodes on top of memory expansion. The EIP-150 63/64 forwarding rule and
// the 2300 stipend are applied in the opcode handlers, since they size the
// child call's gas rather than the caller's own charge.
func gasCallFamily(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64, addr types.Address) (uint64, error) {
	accessCost, err := gasAccountAccess(evm, addr, WarmStorageReadCost, ColdAccountAccessCost)
	if err != nil {
		return 0, err
	}
	memCost, err := gasMemExpansion(evm, contract, stack, mem, memorySize)
	if err != nil {
		return 0, err
	}
	return accessCost + memCost, nil
}

func gasCall(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	addr := bigToAddress(stack.Back(1))
	cost, err := gasCallFamily(evm, contract, stack, mem, memorySize, addr)
	if err != nil {
		return 0, err
	}
	if stack.Back(2).Sign() > 0 {
		cost += CallValueTransferGas
		if evm.StateDB != nil && !evm.StateDB.Exist(addr) {
			cost += CallNewAccountGas
		}
	}
	return cost, nil
}

func gasCallCode(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	addr := bigToAddress(stack.Back(1))
	cost, err := gasCallFamily(evm, contract, stack, mem, memorySize, addr)
	if err != nil {
		return 0, err
	}
	if stack.Back(2).Sign() > 0 {
		cost += CallValueTransferGas
	}
	return cost, nil
}

func gasDelegateCall(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return gasCallFamily(evm, contract, stack, mem, memorySize, bigToAddress(stack.Back(1)))
}

func gasStaticCall(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return gasCallFamily(evm, contract, stack, mem, memorySize, bigToAddress(stack.Back(1)))
}

// gasSelfdestruct charges the EIP-2929 cold-address surcharge plus the
// EIP-161 new-account surcharge when the beneficiary receives a non-zero
// balance and does not yet exist.
func gasSelfdestruct(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	beneficiary := bigToAddress(stack.Peek())
	var cost uint64
	if evm.StateDB != nil {
		if !evm.StateDB.AddressInAccessList(beneficiary) {
			evm.StateDB.AddAddressToAccessList(beneficiary)
			cost += ColdAccountAccessCost
		}
		if evm.StateDB.GetBalance(contract.Address).Sign() > 0 && !evm.StateDB.Exist(beneficiary) {
			cost += CreateBySelfdestructGas
		}
	}
	return cost, nil
}

// NewFrontierJumpTable returns the Frontier (genesis) jump table.
func NewFrontierJumpTable() JumpTable {
	var tbl JumpTable

	// Arithmetic
	tbl[STOP] = &operation{execute: opStop, constantGas: GasStop, minStack: 0, maxStack: 1024, halts: true}
	tbl[ADD] = &operation{execute: opAdd, constantGas: GasQuickStep, minStack: 2, maxStack: 1024}
	tbl[MUL] = &operation{execute: opMul, constantGas: GasFastestStep, minStack: 2, maxStack: 1024}
	tbl[SUB] = &operation{execute: opSub, constantGas: GasQuickStep, minStack: 2, maxStack: 1024}
	tbl[DIV] = &operation{execute: opDiv, constantGas: GasFastStep, minStack: 2, maxStack: 1024}
	tbl[SDIV] = &operation{execute: opSdiv, constantGas: GasFastStep, minStack: 2, maxStack: 1024}
	tbl[MOD] = &operation{execute: opMod, constantGas: GasFastStep, minStack: 2, maxStack: 1024}
	tbl[SMOD] = &operation{execute: opSmod, constantGas: GasFastStep, minStack: 2, maxStack: 1024}
	tbl[ADDMOD] = &operation{execute: opAddmod, constantGas: GasMidStep, minStack: 3, maxStack: 1024}
	tbl[MULMOD] = &operation{execute: opMulmod, constantGas: GasMidStep, minStack: 3, maxStack: 1024}
	tbl[EXP] = &operation{execute: opExp, constantGas: GasSlowStep, minStack: 2, maxStack: 1024}
	tbl[SIGNEXTEND] = &operation{execute: opSignExtend, constantGas: GasFastStep, minStack: 2, maxStack: 1024}

	// Comparison
	tbl[LT] = &operation{execute: opLt, constantGas: GasQuickStep, minStack: 2, maxStack: 1024}
	tbl[GT] = &operation{execute: opGt, constantGas: GasQuickStep, minStack: 2, maxStack: 1024}
	tbl[SLT] = &operation{execute: opSlt, constantGas: GasQuickStep, minStack: 2, maxStack: 1024}
	tbl[SGT] = &operation{execute: opSgt, constantGas: GasQuickStep, minStack: 2, maxStack: 1024}
	tbl[EQ] = &operation{execute: opEq, constantGas: GasQuickStep, minStack: 2, maxStack: 1024}
	tbl[ISZERO] = &operation{execute: opIsZero, constantGas: GasQuickStep, minStack: 1, maxStack: 1024}

	// Bitwise
	tbl[AND] = &operation{execute: opAnd, constantGas: GasQuickStep, minStack: 2, maxStack: 1024}
	tbl[OR] = &operation{execute: opOr, constantGas: GasQuickStep, minStack: 2, maxStack: 1024}
	tbl[XOR] = &operation{execute: opXor, constantGas: GasQuickStep, minStack: 2, maxStack: 1024}
	tbl[NOT] = &operation{execute: opNot, constantGas: GasQuickStep, minStack: 1, maxStack: 1024}
	tbl[BYTE] = &operation{execute: opByte, constantGas: GasQuickStep, minStack: 2, maxStack: 1024}

	// Environment
	tbl[ADDRESS] = &operation{execute: opAddress, constantGas: GasQuickStep, minStack: 0, maxStack: 1023}
	tbl[ORIGIN] = &operation{execute: opOrigin, constantGas: GasQuickStep, minStack: 0, maxStack: 1023}
	tbl[CALLER] = &operation{execute: opCaller, constantGas: GasQuickStep, minStack: 0, maxStack: 1023}
	tbl[CALLVALUE] = &operation{execute: opCallValue, constantGas: GasQuickStep, minStack: 0, maxStack: 1023}
	tbl[CALLDATALOAD] = &operation{execute: opCalldataLoad, constantGas: GasQuickStep, minStack: 1, maxStack: 1024}
	tbl[CALLDATASIZE] = &operation{execute: opCalldataSize, constantGas: GasQuickStep, minStack: 0, maxStack: 1023}
	tbl[CALLDATACOPY] = &operation{execute: opCalldataCopy, constantGas: GasQuickStep, minStack: 3, maxStack: 1024, memorySize: memoryCalldataCopy, dynamicGas: gasMemExpansion}
	tbl[CODESIZE] = &operation{execute: opCodeSize, constantGas: GasQuickStep, minStack: 0, maxStack: 1023}
	tbl[CODECOPY] = &operation{execute: opCodeCopy, constantGas: GasQuickStep, minStack: 3, maxStack: 1024, memorySize: memoryCodeCopy, dynamicGas: gasMemExpansion}
	tbl[GASPRICE] = &operation{execute: opGasPrice, constantGas: GasQuickStep, minStack: 0, maxStack: 1023}

	// Block
	tbl[COINBASE] = &operation{execute: opCoinbase, constantGas: GasQuickStep, minStack: 0, maxStack: 1023}
	tbl[TIMESTAMP] = &operation{execute: opTimestamp, constantGas: GasQuickStep, minStack: 0, maxStack: 1023}
	tbl[NUMBER] = &operation{execute: opNumber, constantGas: GasQuickStep, minStack: 0, maxStack: 1023}
	tbl[PREVRANDAO] = &operation{execute: opPrevRandao, constantGas: GasQuickStep, minStack: 0, maxStack: 1023}
	tbl[GASLIMIT] = &operation{execute: opGasLimit, constantGas: GasQuickStep, minStack: 0, maxStack: 1023}

	// Stack, memory, flow
	tbl[POP] = &operation{execute: opPop, constantGas: GasPop, minStack: 1, maxStack: 1024}
	tbl[MLOAD] = &operation{execute: opMload, constantGas: GasMload, minStack: 1, maxStack: 1024, memorySize: memoryMload, dynamicGas: gasMemExpansion}
	tbl[MSTORE] = &operation{execute: opMstore, constantGas: GasMstore, minStack: 2, maxStack: 1024, memorySize: memoryMstore, dynamicGas: gasMemExpansion}
	tbl[MSTORE8] = &operation{execute: opMstore8, constantGas: GasMstore8, minStack: 2, maxStack: 1024, memorySize: memoryMstore8, dynamicGas: gasMemExpansion}
	tbl[JUMP] = &operation{execute: opJump, constantGas: GasJump, minStack: 1, maxStack: 1024, jumps: true}
	tbl[JUMPI] = &operation{execute: opJumpi, constantGas: GasJumpi, minStack: 2, maxStack: 1024, jumps: true}
	tbl[PC] = &operation{execute: opPc, constantGas: GasPc, minStack: 0, maxStack: 1023}
	tbl[MSIZE] = &operation{execute: opMsize, constantGas: GasMsize, minStack: 0, maxStack: 1023}
	tbl[GAS] = &operation{execute: opGas, constantGas: GasGas, minStack: 0, maxStack: 1023}
	tbl[JUMPDEST] = &operation{execute: opJumpdest, constantGas: GasJumpDest, minStack: 0, maxStack: 1024}

	// Push
	tbl[PUSH1] = &operation{execute: opPush1, constantGas: GasPush, minStack: 0, maxStack: 1023}
	for i := 2; i <= 32; i++ {
		tbl[PUSH1+OpCode(i-1)] = &operation{
			execute:     makePush(uint64(i)),
			constantGas: GasPush,
			minStack:    0,
			maxStack:    1023,
		}
	}

	// Dup
	for i := 1; i <= 16; i++ {
		tbl[DUP1+OpCode(i-1)] = &operation{
			execute:     makeDup(i),
			constantGas: GasDup,
			minStack:    i,
			maxStack:    1023,
		}
	}

	// Swap
	for i := 1; i <= 16; i++ {
		tbl[SWAP1+OpCode(i-1)] = &operation{
			execute:     makeSwap(i),
			constantGas: GasSwap,
			minStack:    i + 1,
			maxStack:    1024,
		}
	}

	// Hash
	tbl[KECCAK256] = &operation{execute: opKeccak256, constantGas: GasKeccak256, minStack: 2, maxStack: 1024, memorySize: memoryKeccak256, dynamicGas: gasMemExpansion}

	// State
	tbl[BALANCE] = &operation{execute: opBalance, constantGas: WarmStorageReadCost, minStack: 1, maxStack: 1024, dynamicGas: gasBalance}
	tbl[SLOAD] = &operation{execute: opSload, constantGas: WarmStorageReadCost, minStack: 1, maxStack: 1024, dynamicGas: gasSload}
	tbl[SSTORE] = &operation{execute: opSstore, constantGas: 0, minStack: 2, maxStack: 1024, writes: true, dynamicGas: gasSstore}

	// Log
	for i := 0; i <= 4; i++ {
		n := i
		tbl[LOG0+OpCode(i)] = &operation{
			execute:     makeLog(n),
			constantGas: GasLog,
			minStack:    2 + n,
			maxStack:    1024,
			writes:      true,
			memorySize:  memoryLog,
			dynamicGas:  makeGasLog(uint64(n)),
		}
	}

	// Ext code
	tbl[EXTCODESIZE] = &operation{execute: opExtcodesize, constantGas: WarmStorageReadCost, minStack: 1, maxStack: 1024, dynamicGas: gasExtcodesize}
	tbl[EXTCODECOPY] = &operation{execute: opExtcodecopy, constantGas: WarmStorageReadCost, minStack: 4, maxStack: 1024, memorySize: memoryExtcodeCopy, dynamicGas: gasExtcodeCopy}

	// CALL-family
	tbl[CALL] = &operation{execute: opCall, constantGas: WarmStorageReadCost, minStack: 7, maxStack: 1024, memorySize: memoryCall, dynamicGas: gasCall}
	tbl[CALLCODE] = &operation{execute: opCallCode, constantGas: WarmStorageReadCost, minStack: 7, maxStack: 1024, memorySize: memoryCallCode, dynamicGas: gasCallCode}

	// CREATE
	tbl[CREATE] = &operation{execute: opCreate, constantGas: 0, minStack: 3, maxStack: 1024, memorySize: memoryCreate, dynamicGas: gasMemExpansion, writes: true}

	// Return / Invalid
	tbl[RETURN] = &operation{execute: opReturn, constantGas: GasReturn, minStack: 2, maxStack: 1024, halts: true, memorySize: memoryReturn, dynamicGas: gasMemExpansion}
	tbl[INVALID] = &operation{execute: opInvalid, constantGas: 0, minStack: 0, maxStack: 1024}

	// SELFDESTRUCT exists since Frontier at a flat cost; Berlin adds the
	// EIP-2929 cold-beneficiary surcharge via dynamicGas.
	tbl[SELFDESTRUCT] = &operation{execute: opSelfdestruct, constantGas: SelfdestructGas, minStack: 1, maxStack: 1024, halts: true, writes: true}

	return tbl
}

// NewHomesteadJumpTable returns the Homestead fork jump table.
func NewHomesteadJumpTable() JumpTable {
	tbl := NewFrontierJumpTable()
	// Homestead added DELEGATECALL.
	tbl[DELEGATECALL] = &operation{execute: opDelegateCall, constantGas: WarmStorageReadCost, minStack: 6, maxStack: 1024, memorySize: memoryDelegateCall, dynamicGas: gasDelegateCall}
	return tbl
}

// NewTangerineWhistleJumpTable returns the Tangerine Whistle (EIP-150) fork jump table.
func NewTangerineWhistleJumpTable() JumpTable {
	tbl := NewHomesteadJumpTable()
	// Gas cost repricing was the main change; the 63/64 forwarding rule is
	// applied in the CALL-family opcode handlers.
	return tbl
}

// NewSpuriousDragonJumpTable returns the Spurious Dragon fork jump table.
func NewSpuriousDragonJumpTable() JumpTable {
	tbl := NewTangerineWhistleJumpTable()
	return tbl
}

// NewByzantiumJumpTable returns the Byzantium fork jump table.
func NewByzantiumJumpTable() JumpTable {
	tbl := NewSpuriousDragonJumpTable()
	// Byzantium added REVERT, STATICCALL, RETURNDATASIZE, RETURNDATACOPY.
	tbl[REVERT] = &operation{execute: opRevert, constantGas: GasRevert, minStack: 2, maxStack: 1024, halts: true, memorySize: memoryReturn, dynamicGas: gasMemExpansion}
	tbl[RETURNDATASIZE] = &operation{execute: opReturndataSize, constantGas: GasQuickStep, minStack: 0, maxStack: 1023}
	tbl[RETURNDATACOPY] = &operation{execute: opReturndataCopy, constantGas: GasQuickStep, minStack: 3, maxStack: 1024, memorySize: memoryReturndataCopy, dynamicGas: gasMemExpansion}
	tbl[STATICCALL] = &operation{execute: opStaticCall, constantGas: WarmStorageReadCost, minStack: 6, maxStack: 1024, memorySize: memoryStaticCall, dynamicGas: gasStaticCall}
	return tbl
}

// NewConstantinopleJumpTable returns the Constantinople fork jump table.
func NewConstantinopleJumpTable() JumpTable {
	tbl := NewByzantiumJumpTable()
	// Constantinople added SHL, SHR, SAR, EXTCODEHASH, CREATE2.
	tbl[SHL] = &operation{execute: opSHL, constantGas: GasQuickStep, minStack: 2, maxStack: 1024}
	tbl[SHR] = &operation{execute: opSHR, constantGas: GasQuickStep, minStack: 2, maxStack: 1024}
	tbl[SAR] = &operation{execute: opSAR, constantGas: GasQuickStep, minStack: 2, maxStack: 1024}
	tbl[EXTCODEHASH] = &operation{execute: opExtcodehash, constantGas: WarmStorageReadCost, minStack: 1, maxStack: 1024, dynamicGas: gasExtcodehash}
	tbl[CREATE2] = &operation{execute: opCreate2, constantGas: 0, minStack: 4, maxStack: 1024, memorySize: memoryCreate2, dynamicGas: gasMemExpansion, writes: true}
	return tbl
}

// NewIstanbulJumpTable returns the Istanbul fork jump table.
func NewIstanbulJumpTable() JumpTable {
	tbl := NewConstantinopleJumpTable()
	// Istanbul added CHAINID and SELFBALANCE.
	tbl[CHAINID] = &operation{execute: opChainID, constantGas: GasQuickStep, minStack: 0, maxStack: 1023}
	tbl[SELFBALANCE] = &operation{execute: opSelfBalance, constantGas: GasFastStep, minStack: 0, maxStack: 1023}
	return tbl
}

// NewBerlinJumpTable returns the Berlin fork jump table.
func NewBerlinJumpTable() JumpTable {
	tbl := NewIstanbulJumpTable()
	// Berlin's EIP-2929 warm/cold gas accounting is wired directly into the
	// dynamicGas functions above (gasSload, gasSstore, gasBalance, etc.).
	// SELFDESTRUCT keeps its flat constantGas but gains the cold-beneficiary
	// surcharge as dynamic gas.
	tbl[SELFDESTRUCT] = &operation{execute: opSelfdestruct, constantGas: SelfdestructGas, minStack: 1, maxStack: 1024, halts: true, writes: true, dynamicGas: gasSelfdestruct}
	return tbl
}

// NewLondonJumpTable returns the London fork jump table.
func NewLondonJumpTable() JumpTable {
	tbl := NewBerlinJumpTable()
	// London added BASEFEE; EIP-3529 reduces the SSTORE clear refund and the
	// refund cap, both applied in gas_table.go/dynamic_gas.go.
	tbl[BASEFEE] = &operation{execute: opBaseFee, constantGas: GasQuickStep, minStack: 0, maxStack: 1023}
	return tbl
}

// NewMergeJumpTable returns the Merge (Paris) fork jump table.
func NewMergeJumpTable() JumpTable {
	tbl := NewLondonJumpTable()
	// PREVRANDAO replaces DIFFICULTY (same opcode slot, already mapped).
	return tbl
}

// NewShanghaiJumpTable returns the Shanghai fork jump table.
func NewShanghaiJumpTable() JumpTable {
	tbl := NewMergeJumpTable()
	// Shanghai added PUSH0.
	tbl[PUSH0] = &operation{execute: opPush0, constantGas: GasPush0, minStack: 0, maxStack: 1023}
	return tbl
}

// NewCancunJumpTable returns the Cancun fork jump table.
func NewCancunJumpTable() JumpTable {
	tbl := NewShanghaiJumpTable()
	// Cancun added TLOAD, TSTORE (EIP-1153), MCOPY (EIP-5656),
	// BLOBHASH (EIP-4844), BLOBBASEFEE (EIP-7516).
	tbl[TLOAD] = &operation{execute: opTload, constantGas: GasTload, minStack: 1, maxStack: 1024}
	tbl[TSTORE] = &operation{execute: opTstore, constantGas: GasTstore, minStack: 2, maxStack: 1024, writes: true}
	tbl[MCOPY] = &operation{execute: opMcopy, constantGas: GasMcopyBase, minStack: 3, maxStack: 1024, memorySize: memoryMcopy, dynamicGas: gasMemExpansion}
	tbl[BLOBHASH] = &operation{execute: opBlobHash, constantGas: GasBlobHash, minStack: 1, maxStack: 1024}
	tbl[BLOBBASEFEE] = &operation{execute: opBlobBaseFee, constantGas: GasBlobBaseFee, minStack: 0, maxStack: 1023}
	return tbl
}

// NewPragueJumpTable returns the Prague fork jump table.
func NewPragueJumpTable() JumpTable {
	tbl := NewCancunJumpTable()
	// Prague's EIP-7702 delegation designator is resolved at code-load time
	// (see delegation.go) rather than as a new opcode; EIP-7685 general
	// purpose requests are a block/consensus-level concern outside the
	// per-transaction interpreter.
	return tbl
}
