package ethereum

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	goethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ENSRegistryAddress is the ENS registry on mainnet.
var ENSRegistryAddress = common.HexToAddress("0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e")

const ensRegistryABIJSON = `[
	{
		"inputs": [{"name": "node", "type": "bytes32"}],
		"name": "resolver",
		"outputs": [{"name": "", "type": "address"}],
		"stateMutability": "view",
		"type": "function"
	}
]`

const ensResolverABIJSON = `[
	{
		"inputs": [{"name": "node", "type": "bytes32"}],
		"name": "name",
		"outputs": [{"name": "", "type": "string"}],
		"stateMutability": "view",
		"type": "function"
	}
]`

var (
	ensRegistryABI = mustParseABI(ensRegistryABIJSON)
	ensResolverABI = mustParseABI(ensResolverABIJSON)
)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(fmt.Sprintf("parse abi: %v", err))
	}
	return parsed
}

// Namehash computes the EIP-137 namehash of a dot-separated name.
// Labels are hashed as given; callers normalize case first.
func Namehash(name string) common.Hash {
	var node common.Hash
	if name == "" {
		return node
	}
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		labelHash := crypto.Keccak256([]byte(labels[i]))
		node = common.BytesToHash(crypto.Keccak256(node.Bytes(), labelHash))
	}
	return node
}

// ReverseNode returns the namehash of <addr>.addr.reverse.
func ReverseNode(addr common.Address) common.Hash {
	return Namehash(hex.EncodeToString(addr.Bytes()) + ".addr.reverse")
}

// LookupName resolves the primary ENS name of addr. Returns "" when no
// reverse record or resolver is set.
func LookupName(ctx context.Context, chain ChainReader, addr common.Address) (string, error) {
	node := ReverseNode(addr)

	resolverAddr, err := callUnpack[common.Address](ctx, chain, ENSRegistryAddress, ensRegistryABI, "resolver", [32]byte(node))
	if err != nil {
		return "", fmt.Errorf("ens resolver: %w", err)
	}
	if resolverAddr == (common.Address{}) {
		return "", nil
	}

	name, err := callUnpack[string](ctx, chain, resolverAddr, ensResolverABI, "name", [32]byte(node))
	if err != nil {
		return "", fmt.Errorf("ens name: %w", err)
	}
	return name, nil
}

// callUnpack packs method(args), calls it at the latest block and unpacks the single return value.
func callUnpack[T any](ctx context.Context, chain ChainReader, to common.Address, contract abi.ABI, method string, args ...any) (T, error) {
	var zero T

	data, err := contract.Pack(method, args...)
	if err != nil {
		return zero, fmt.Errorf("pack %s: %w", method, err)
	}

	out, err := chain.CallContract(ctx, goethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return zero, fmt.Errorf("call %s: %w", method, err)
	}
	if len(out) == 0 {
		return zero, nil
	}

	values, err := contract.Unpack(method, out)
	if err != nil {
		return zero, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return zero, nil
	}

	v, ok := values[0].(T)
	if !ok {
		return zero, fmt.Errorf("unpack %s: unexpected type %T", method, values[0])
	}
	return v, nil
}
