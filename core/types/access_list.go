package types

import "math/big"

// Transaction type constants, used to select intrinsic-gas and authorization
// handling in the transaction entry point.
const (
	LegacyTxType     = 0x00
	AccessListTxType = 0x01
	DynamicFeeTxType = 0x02
	BlobTxType       = 0x03
	SetCodeTxType    = 0x04
)

// AuthMagic is the signing magic byte for EIP-7702 authorization hashes:
// keccak256(MAGIC || rlp([chain_id, address, nonce])).
const AuthMagic byte = 0x05

// AccessList is a list of address-slot pairs pre-declared by a transaction
// (EIP-2930). Pre-declared entries are warmed before execution starts and
// charged a flat fee as part of intrinsic gas.
type AccessList []AccessTuple

// AccessTuple is a single address and its accessed storage slots.
type AccessTuple struct {
	Address     Address
	StorageKeys []Hash
}

// Authorization is an EIP-7702 authorization tuple. A transaction carrying a
// non-empty authorization list applies each entry's delegation designator to
// the signer's account before frame 0 starts.
type Authorization struct {
	ChainID *big.Int
	Address Address
	Nonce   uint64
	V       *big.Int
	R       *big.Int
	S       *big.Int
}
