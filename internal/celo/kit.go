package celo

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// RegistryAddress is the fixed address of the core contract registry.
const RegistryAddress = "0x000000000000000000000000000000000000ce10"

var (
	// ErrNotRegistered is returned when the registry has no entry for a name.
	ErrNotRegistered = errors.New("not registered")

	// ErrReverted is returned when a mined transaction failed.
	ErrReverted = errors.New("transaction reverted")
)

// Kit resolves core contracts through the registry and moves stable tokens.
type Kit struct {
	client   *Client
	registry common.Address
}

// NewKit connects to the node at providerURL.
func NewKit(ctx context.Context, providerURL string) (*Kit, error) {
	c, err := Dial(ctx, providerURL)
	if err != nil {
		return nil, err
	}
	return &Kit{client: c, registry: common.HexToAddress(RegistryAddress)}, nil
}

// Client returns the underlying node client.
func (k *Kit) Client() *Client {
	return k.client
}

// Close releases the node connection.
func (k *Kit) Close() {
	k.client.Close()
}

// Accounts returns the node-managed accounts; the first is the root account.
func (k *Kit) Accounts(ctx context.Context) ([]string, error) {
	return k.client.Accounts(ctx)
}

// ContractAddress looks up name (for example "StableToken") in the registry.
func (k *Kit) ContractAddress(ctx context.Context, name string) (string, error) {
	data, err := registryABI.Pack("getAddressForString", name)
	if err != nil {
		return "", fmt.Errorf("registry %s: %w", name, err)
	}

	out, err := k.client.Call(ctx, k.registry.Hex(), data)
	if err != nil {
		return "", fmt.Errorf("registry %s: %w", name, err)
	}

	addr, err := unpackAddress(registryABI, "getAddressForString", out)
	if err != nil {
		return "", fmt.Errorf("registry %s: %w", name, err)
	}
	if addr == (common.Address{}) {
		return "", fmt.Errorf("registry %s: %w", name, ErrNotRegistered)
	}
	return addr.Hex(), nil
}

// BalanceOf returns the token balance of owner.
func (k *Kit) BalanceOf(ctx context.Context, token, owner string) (*big.Int, error) {
	addr, err := parseAddress(owner)
	if err != nil {
		return nil, fmt.Errorf("balance of: %w", err)
	}

	data, err := stableTokenABI.Pack("balanceOf", addr)
	if err != nil {
		return nil, fmt.Errorf("balance of %s: %w", owner, err)
	}

	out, err := k.client.Call(ctx, token, data)
	if err != nil {
		return nil, fmt.Errorf("balance of %s: %w", owner, err)
	}

	bal, err := unpackUint(stableTokenABI, "balanceOf", out)
	if err != nil {
		return nil, fmt.Errorf("balance of %s: %w", owner, err)
	}
	return bal, nil
}

// Transfer moves amount of token from one node-managed account to another
// and waits for the transaction to be mined.
func (k *Kit) Transfer(ctx context.Context, token, from, to string, amount *big.Int) (*Receipt, error) {
	toAddr, err := parseAddress(to)
	if err != nil {
		return nil, fmt.Errorf("transfer: %w", err)
	}
	if err := checkAmount(amount); err != nil {
		return nil, fmt.Errorf("transfer: %w", err)
	}

	data, err := stableTokenABI.Pack("transfer", toAddr, amount)
	if err != nil {
		return nil, fmt.Errorf("transfer: %w", err)
	}

	hash, err := k.client.SendTransaction(ctx, Tx{From: from, To: token, Data: data})
	if err != nil {
		return nil, fmt.Errorf("transfer: %w", err)
	}

	r, err := k.client.WaitReceipt(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("transfer: %w", err)
	}
	if !r.Success {
		return r, fmt.Errorf("transfer %s: %w", hash, ErrReverted)
	}
	return r, nil
}
