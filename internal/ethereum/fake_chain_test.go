package ethereum

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"sync/atomic"

	goethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// fakeChain is an in-memory ChainReader.
type fakeChain struct {
	balance    *big.Int
	balanceErr error
	nonce      uint64
	nonceErr   error

	resolver common.Address // zero means no reverse record
	ensName  string
	callErr  error

	calls atomic.Int32
}

func (f *fakeChain) BalanceAt(context.Context, common.Address, *big.Int) (*big.Int, error) {
	return f.balance, f.balanceErr
}

func (f *fakeChain) NonceAt(context.Context, common.Address, *big.Int) (uint64, error) {
	return f.nonce, f.nonceErr
}

func (f *fakeChain) CallContract(_ context.Context, msg goethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.calls.Add(1)
	if f.callErr != nil {
		return nil, f.callErr
	}

	switch {
	case *msg.To == ENSRegistryAddress && bytes.HasPrefix(msg.Data, ensRegistryABI.Methods["resolver"].ID):
		return ensRegistryABI.Methods["resolver"].Outputs.Pack(f.resolver)
	case *msg.To == f.resolver && bytes.HasPrefix(msg.Data, ensResolverABI.Methods["name"].ID):
		return ensResolverABI.Methods["name"].Outputs.Pack(f.ensName)
	}
	return nil, errors.New("unexpected call")
}

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}
