// e2e_helpers.go provides a small EVM bytecode assembler and contract
// builders shared by the end-to-end tests in e2e_test.go. This file
// establishes the base package for the module root directory, enabling the
// external e2e_test package to use these exported helpers.
package e2e

import (
	"encoding/binary"
	"math/big"

	"github.com/eth2030/eth2030/core/types"
	"github.com/eth2030/eth2030/core/vm"
)

// ---------------------------------------------------------------------------
// Assembler
// ---------------------------------------------------------------------------

// asm is a minimal two-pass EVM bytecode assembler. Labels are always
// referenced via a fixed-width PUSH2 so their encoded size never changes
// between the pass that records label positions and the pass that resolves
// them.
type asm struct {
	buf    []byte
	labels map[string]int
	fixups []fixup
}

type fixup struct {
	pos   int
	label string
}

func newAsm() *asm {
	return &asm{labels: make(map[string]int)}
}

func (a *asm) op(code vm.OpCode) *asm {
	a.buf = append(a.buf, byte(code))
	return a
}

// push emits the minimal PUSH1..PUSH32 instruction for v (PUSH1 0 for nil/zero).
func (a *asm) push(v *big.Int) *asm {
	b := v.Bytes()
	if len(b) == 0 {
		b = []byte{0}
	}
	if len(b) > 32 {
		b = b[len(b)-32:]
	}
	a.op(vm.OpCode(byte(vm.PUSH1) + byte(len(b)-1)))
	a.buf = append(a.buf, b...)
	return a
}

func (a *asm) pushUint64(v uint64) *asm {
	return a.push(new(big.Int).SetUint64(v))
}

// pushAddress emits a PUSH20 of addr.
func (a *asm) pushAddress(addr types.Address) *asm {
	a.op(vm.PUSH20)
	a.buf = append(a.buf, addr[:]...)
	return a
}

// label marks the current position as the JUMPDEST target name.
// It emits the JUMPDEST opcode itself.
func (a *asm) label(name string) *asm {
	a.labels[name] = len(a.buf)
	a.op(vm.JUMPDEST)
	return a
}

// pushLabel emits a fixed-width PUSH2 whose value is filled in by assemble()
// once every label has been recorded.
func (a *asm) pushLabel(name string) *asm {
	a.op(vm.PUSH2)
	a.fixups = append(a.fixups, fixup{pos: len(a.buf), label: name})
	a.buf = append(a.buf, 0, 0)
	return a
}

// jump assembles an unconditional jump to name.
func (a *asm) jump(name string) *asm {
	a.pushLabel(name)
	return a.op(vm.JUMP)
}

// jumpi assembles a conditional jump to name. The caller must have already
// pushed the condition onto the stack.
func (a *asm) jumpi(name string) *asm {
	a.pushLabel(name)
	return a.op(vm.JUMPI)
}

// mstore32 stores the top-of-stack value (already pushed by the caller) to
// memory at a constant offset.
func (a *asm) mstore32(offset uint64) *asm {
	a.pushUint64(offset)
	return a.op(vm.MSTORE)
}

// mload32 loads a 32-byte word from a constant memory offset.
func (a *asm) mload32(offset uint64) *asm {
	a.pushUint64(offset)
	return a.op(vm.MLOAD)
}

// ret32 returns the 32-byte word at a constant memory offset.
func (a *asm) ret32(offset uint64) *asm {
	a.pushUint64(32)
	a.pushUint64(offset)
	return a.op(vm.RETURN)
}

// revert returns the byte range [offset, offset+size) as revert data.
func (a *asm) revert(offset, size uint64) *asm {
	a.pushUint64(size)
	a.pushUint64(offset)
	return a.op(vm.REVERT)
}

// selfCall emits a zero-value CALL to addr, forwarding all remaining gas,
// reading input from [inOffset, inOffset+inSize) and writing the returned
// data to [retOffset, retOffset+retSize).
func (a *asm) selfCall(addr types.Address, inOffset, inSize, retOffset, retSize uint64) *asm {
	a.pushUint64(retSize)
	a.pushUint64(retOffset)
	a.pushUint64(inSize)
	a.pushUint64(inOffset)
	a.pushUint64(0) // value
	a.pushAddress(addr)
	a.op(vm.GAS)
	return a.op(vm.CALL)
}

// assemble resolves every label reference and returns the final bytecode.
func (a *asm) assemble() []byte {
	out := make([]byte, len(a.buf))
	copy(out, a.buf)
	for _, f := range a.fixups {
		target, ok := a.labels[f.label]
		if !ok {
			panic("e2e: undefined label " + f.label)
		}
		binary.BigEndian.PutUint16(out[f.pos:f.pos+2], uint16(target))
	}
	return out
}

// ---------------------------------------------------------------------------
// Contracts
// ---------------------------------------------------------------------------

// Memory layout for the Ackermann contract:
//
//	0..32    scratch: this frame's own return value / a subcall's return value
//	64..128  staging for the next CALL's 64-byte calldata (argM || argN)
//	160..192 this frame's original m (preserved across subcalls)
//	192..224 this frame's original n (preserved across subcalls)
const (
	ackScratch = 0
	ackArgM    = 64
	ackArgN    = 96
	ackSavedM  = 160
	ackSavedN  = 192
)

// AckermannContractCode returns the init code for a self-recursive contract
// computing the two-argument Ackermann function. Calldata is (m uint256 ||
// n uint256); the deployed contract returns A(m, n) as a single uint256.
// Recursion is implemented as a CALL to the contract's own address (CODESIZE
// address), so each recursive step is a genuine new EVM call frame rather
// than a loop, exercising the invoker's call-stack and EIP-150 gas
// forwarding.
func AckermannContractCode(self types.Address) []byte {
	a := newAsm()

	// Load (m, n) from calldata and save them.
	a.pushUint64(0).op(vm.CALLDATALOAD)
	a.mstore32(ackSavedM)
	a.pushUint64(32).op(vm.CALLDATALOAD)
	a.mstore32(ackSavedN)

	a.label("start")
	a.mload32(ackSavedM)
	a.op(vm.ISZERO)
	a.jumpi("baseM0")
	a.mload32(ackSavedN)
	a.op(vm.ISZERO)
	a.jumpi("baseN0")
	a.jump("recursive")

	// A(0, n) = n + 1
	a.label("baseM0")
	a.mload32(ackSavedN)
	a.pushUint64(1)
	a.op(vm.ADD)
	a.mstore32(ackScratch)
	a.ret32(ackScratch)

	// A(m, 0) = A(m-1, 1)
	a.label("baseN0")
	a.mload32(ackSavedM)
	a.pushUint64(1)
	a.op(vm.SWAP1).op(vm.SUB) // m - 1
	a.mstore32(ackArgM)
	a.pushUint64(1)
	a.mstore32(ackArgN)
	a.selfCall(self, ackArgM, 64, ackScratch, 32)
	a.ret32(ackScratch)

	// A(m, n) = A(m-1, A(m, n-1))
	a.label("recursive")
	a.mload32(ackSavedM)
	a.mstore32(ackArgM)
	a.mload32(ackSavedN)
	a.pushUint64(1)
	a.op(vm.SWAP1).op(vm.SUB) // n - 1
	a.mstore32(ackArgN)
	a.selfCall(self, ackArgM, 64, ackScratch, 32) // scratch = A(m, n-1)

	a.mload32(ackScratch)
	a.mstore32(ackArgN) // argN = A(m, n-1)
	a.mload32(ackSavedM)
	a.pushUint64(1)
	a.op(vm.SWAP1).op(vm.SUB) // m - 1
	a.mstore32(ackArgM)
	a.selfCall(self, ackArgM, 64, ackScratch, 32) // scratch = A(m-1, A(m, n-1))
	a.ret32(ackScratch)

	return a.assemble()
}

// SimpleRevertCode returns a tiny contract that always reverts with a
// 1-byte, zero-valued revert reason: PUSH1 1, PUSH1 0, REVERT (revert the
// single zero byte sitting at memory offset 0; touching memory[0:1] costs
// one word of memory expansion gas).
func SimpleRevertCode() []byte {
	return []byte{byte(vm.PUSH1), 0x01, byte(vm.PUSH1), 0x00, byte(vm.REVERT)}
}

// InfiniteLoopCode returns JUMPDEST; PUSH1 0; JUMP — an unconditional loop
// back to its own start, used to force an out-of-gas exit mid-execution.
func InfiniteLoopCode() []byte {
	return []byte{byte(vm.JUMPDEST), byte(vm.PUSH1), 0x00, byte(vm.JUMP)}
}

// EmptyReturnCode deploys no-op code that immediately stops: used as the
// callee in the CALL-with-stipend scenario, where only the frame's gas
// accounting matters, not its output.
func EmptyReturnCode() []byte {
	return []byte{byte(vm.STOP)}
}

// ZeroGasValueCallCode builds a contract that CALLs callee with the given
// value but explicitly requests zero gas for the call. The callee frame
// must still be able to run because EIP-150 adds the 2300 gas call stipend
// whenever a CALL carries value, independent of how much gas the caller
// requested.
func ZeroGasValueCallCode(callee types.Address, value uint64) []byte {
	a := newAsm()
	a.pushUint64(0) // retSize
	a.pushUint64(0) // retOffset
	a.pushUint64(0) // inSize
	a.pushUint64(0) // inOffset
	a.pushUint64(value)
	a.pushAddress(callee)
	a.pushUint64(0) // gas: request none, rely on the stipend
	a.op(vm.CALL)
	a.op(vm.STOP)
	return a.assemble()
}
