package envtest

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/zarlcorp/zcircle/internal/celo"
)

const (
	rootAcct  = "0xroot"
	testAcct  = "0xtest"
	otherAcct = "0xother"
)

// fakeKit keeps balances in memory, keyed by token then owner.
type fakeKit struct {
	mu        sync.Mutex
	accounts  []string
	registry  map[string]string
	balances  map[string]map[string]*big.Int
	transfers int

	skim        *big.Int // withheld from every transfer
	transferErr error
}

func newFakeKit() *fakeKit {
	return &fakeKit{
		accounts: []string{rootAcct, testAcct},
		registry: map[string]string{
			"StableToken":    "0xcusd",
			"StableTokenEUR": "0xceur",
		},
		balances: map[string]map[string]*big.Int{
			"0xcusd": {rootAcct: big.NewInt(1e18)},
			"0xceur": {rootAcct: big.NewInt(1e18)},
		},
	}
}

func (k *fakeKit) Accounts(context.Context) ([]string, error) {
	return k.accounts, nil
}

func (k *fakeKit) ContractAddress(_ context.Context, name string) (string, error) {
	addr, ok := k.registry[name]
	if !ok {
		return "", fmt.Errorf("registry %s: %w", name, celo.ErrNotRegistered)
	}
	return addr, nil
}

func (k *fakeKit) BalanceOf(_ context.Context, token, owner string) (*big.Int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return new(big.Int).Set(k.balance(token, owner)), nil
}

func (k *fakeKit) Transfer(_ context.Context, token, from, to string, amount *big.Int) (*celo.Receipt, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.transferErr != nil {
		return nil, k.transferErr
	}
	if k.balance(token, from).Cmp(amount) < 0 {
		return nil, errors.New("insufficient funds")
	}

	credited := new(big.Int).Set(amount)
	if k.skim != nil {
		credited.Sub(credited, k.skim)
	}

	k.balances[token][from] = new(big.Int).Sub(k.balance(token, from), amount)
	k.balances[token][to] = new(big.Int).Add(k.balance(token, to), credited)
	k.transfers++

	return &celo.Receipt{TransactionHash: fmt.Sprintf("0x%d", k.transfers), Success: true}, nil
}

func (k *fakeKit) balance(token, owner string) *big.Int {
	if b, ok := k.balances[token][owner]; ok {
		return b
	}
	return new(big.Int)
}
