package celo

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrInvalidAddress is returned for strings that are not 20-byte hex addresses.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidAmount is returned for token amounts outside the uint256 range.
	ErrInvalidAmount = errors.New("invalid amount")
)

const registryJSON = `[
	{"type":"function","name":"getAddressForString","stateMutability":"view",
	 "inputs":[{"name":"identifier","type":"string"}],
	 "outputs":[{"name":"","type":"address"}]}
]`

const stableTokenJSON = `[
	{"type":"function","name":"balanceOf","stateMutability":"view",
	 "inputs":[{"name":"owner","type":"address"}],
	 "outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"transfer","stateMutability":"nonpayable",
	 "inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],
	 "outputs":[{"name":"","type":"bool"}]}
]`

var (
	registryABI    = mustParseABI(registryJSON)
	stableTokenABI = mustParseABI(stableTokenJSON)
)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(fmt.Sprintf("celo: parse abi: %v", err))
	}
	return parsed
}

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// parseAddress accepts a 20-byte hex address with or without 0x.
func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return common.HexToAddress(s), nil
}

func checkAmount(v *big.Int) error {
	if v == nil || v.Sign() < 0 || v.Cmp(maxUint256) > 0 {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, v)
	}
	return nil
}

// unpackAddress decodes the single address a view method returns.
func unpackAddress(a abi.ABI, method string, out []byte) (common.Address, error) {
	vals, err := a.Unpack(method, out)
	if err != nil {
		return common.Address{}, fmt.Errorf("unpack %s: %w", method, err)
	}
	addr, ok := vals[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unpack %s: got %T", method, vals[0])
	}
	return addr, nil
}

// unpackUint decodes the single uint256 a view method returns.
func unpackUint(a abi.ABI, method string, out []byte) (*big.Int, error) {
	vals, err := a.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	n, ok := vals[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unpack %s: got %T", method, vals[0])
	}
	return n, nil
}
