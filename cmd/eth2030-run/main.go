// Command eth2030-run is a minimal harness for executing raw EVM bytecode
// against an in-memory state database. It is not a node: no networking, no
// block production, just a single message dispatched through core.ApplyMessage.
//
// Usage:
//
//	eth2030-run -code 600160005260206000F3 -gas 100000
//	eth2030-run -code 600160005260206000F3 -input deadbeef -value 0 -create
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"os"

	"github.com/eth2030/eth2030/core"
	"github.com/eth2030/eth2030/core/state"
	"github.com/eth2030/eth2030/core/types"
	"github.com/eth2030/eth2030/core/vm"
	"github.com/eth2030/eth2030/log"
)

func main() {
	os.Exit(run())
}

// run is the actual entry point, returning an exit code.
func run() int {
	var (
		codeHex  = flag.String("code", "", "hex-encoded bytecode (deployed code for a call, init code for -create)")
		inputHex = flag.String("input", "", "hex-encoded calldata")
		gasLimit = flag.Uint64("gas", 1_000_000, "gas limit for the message")
		value    = flag.Int64("value", 0, "wei value attached to the message")
		create   = flag.Bool("create", false, "treat -code as contract-creation init code")
		loglevel = flag.String("loglevel", "info", "log verbosity (debug, info, warn, error)")
	)
	flag.Parse()

	log.SetDefault(log.New(parseLevel(*loglevel)))

	code, err := hex.DecodeString(*codeHex)
	if err != nil {
		log.Error("invalid -code hex", "err", err)
		return 1
	}
	input, err := hex.DecodeString(*inputHex)
	if err != nil {
		log.Error("invalid -input hex", "err", err)
		return 1
	}

	stateDB := state.NewMemoryStateDB()
	sender := types.Address{0x01}
	stateDB.CreateAccount(sender)
	stateDB.AddBalance(sender, new(big.Int).Lsh(big.NewInt(1), 128))

	msg := &core.Message{
		From:     sender,
		Value:    big.NewInt(*value),
		GasLimit: *gasLimit,
		GasPrice: big.NewInt(1),
		Data:     input,
	}

	rules := vm.ForkRules{IsPrague: true, IsCancun: true, IsShanghai: true, IsMerge: true, IsLondon: true, IsBerlin: true, IsIstanbul: true, IsConstantinople: true, IsByzantium: true, IsHomestead: true, IsEIP158: true}

	evm := vm.NewEVMWithState(vm.BlockContext{
		GetHash:     func(uint64) types.Hash { return types.Hash{} },
		BlockNumber: big.NewInt(1),
		GasLimit:    30_000_000,
		BaseFee:     big.NewInt(1),
	}, vm.TxContext{Origin: sender, GasPrice: big.NewInt(1)}, vm.Config{}, stateDB)
	evm.SetForkRules(rules)
	evm.SetJumpTable(vm.SelectJumpTable(rules))
	evm.SetPrecompiles(vm.SelectPrecompiles(rules))

	if *create {
		msg.Data = append(code, input...)
	} else {
		target := types.Address{0x02}
		stateDB.CreateAccount(target)
		stateDB.SetCode(target, code)
		msg.To = &target
	}

	result, err := core.ApplyMessage(evm, msg)
	if err != nil {
		log.Error("apply message failed", "err", err)
		return 1
	}

	fmt.Printf("gas used:   %d\n", result.UsedGas)
	fmt.Printf("contract:   %s\n", result.ContractAddress.Hex())
	fmt.Printf("return:     %s\n", hex.EncodeToString(result.Return()))
	if result.Failed() {
		fmt.Printf("error:      %v\n", result.Err)
		fmt.Printf("revert:     %s\n", hex.EncodeToString(result.Revert()))
		return 1
	}
	return 0
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
