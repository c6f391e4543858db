// Package celo is a small client for a Celo node. It covers what the
// environment tests need: node-managed accounts, registry lookups and
// stable token transfers. Signing is left to the node.
package celo

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Client talks JSON-RPC to a single node.
type Client struct {
	rpc          *rpc.Client
	eth          *ethclient.Client
	pollInterval time.Duration
}

// Dial connects to the node at url.
func Dial(ctx context.Context, url string) (*Client, error) {
	rc, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Client{
		rpc:          rc,
		eth:          ethclient.NewClient(rc),
		pollInterval: time.Second,
	}, nil
}

// Close releases the connection.
func (c *Client) Close() {
	c.rpc.Close()
}

// Tx is a transaction for the node to sign and send.
type Tx struct {
	From  string
	To    string
	Data  []byte
	Value *big.Int
	Gas   uint64
}

// Receipt is the mined outcome of a transaction.
type Receipt struct {
	TransactionHash string
	BlockNumber     uint64
	GasUsed         uint64
	Success         bool
}

// sendTxArgs is the eth_sendTransaction parameter object.
type sendTxArgs struct {
	From  common.Address  `json:"from"`
	To    common.Address  `json:"to"`
	Gas   *hexutil.Uint64 `json:"gas,omitempty"`
	Value *hexutil.Big    `json:"value,omitempty"`
	Data  hexutil.Bytes   `json:"data"`
}

// Accounts returns the accounts the node can sign for.
func (c *Client) Accounts(ctx context.Context) ([]string, error) {
	var accounts []common.Address
	if err := c.rpc.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, fmt.Errorf("accounts: %w", wrapErr(err))
	}

	out := make([]string, len(accounts))
	for i, a := range accounts {
		out[i] = a.Hex()
	}
	return out, nil
}

// ChainID returns the chain id the node reports.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	id, err := c.eth.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain id: %w", wrapErr(err))
	}
	return id, nil
}

// Call executes a read-only call against the latest block.
func (c *Client) Call(ctx context.Context, to string, data []byte) ([]byte, error) {
	addr, err := parseAddress(to)
	if err != nil {
		return nil, fmt.Errorf("call: %w", err)
	}

	out, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &addr, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", to, wrapErr(err))
	}
	return out, nil
}

// SendTransaction asks the node to sign and broadcast tx and returns its hash.
func (c *Client) SendTransaction(ctx context.Context, tx Tx) (string, error) {
	from, err := parseAddress(tx.From)
	if err != nil {
		return "", fmt.Errorf("send transaction: from: %w", err)
	}
	to, err := parseAddress(tx.To)
	if err != nil {
		return "", fmt.Errorf("send transaction: to: %w", err)
	}

	args := sendTxArgs{From: from, To: to, Data: tx.Data}
	if tx.Value != nil {
		args.Value = (*hexutil.Big)(tx.Value)
	}
	if tx.Gas > 0 {
		gas := hexutil.Uint64(tx.Gas)
		args.Gas = &gas
	}

	var hash common.Hash
	if err := c.rpc.CallContext(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return "", fmt.Errorf("send transaction: %w", wrapErr(err))
	}
	return hash.Hex(), nil
}

// TransactionReceipt returns the receipt for hash, or nil while it is pending.
func (c *Client) TransactionReceipt(ctx context.Context, hash string) (*Receipt, error) {
	r, err := c.eth.TransactionReceipt(ctx, common.HexToHash(hash))
	if errors.Is(err, ethereum.NotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("receipt %s: %w", hash, wrapErr(err))
	}
	return toReceipt(r), nil
}

// WaitReceipt polls until hash is mined or ctx is done.
func (c *Client) WaitReceipt(ctx context.Context, hash string) (*Receipt, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		r, err := c.TransactionReceipt(ctx, hash)
		if err != nil {
			return nil, err
		}
		if r != nil {
			return r, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("wait receipt %s: %w", hash, ctx.Err())
		case <-ticker.C:
		}
	}
}

func toReceipt(r *types.Receipt) *Receipt {
	out := &Receipt{
		TransactionHash: r.TxHash.Hex(),
		GasUsed:         r.GasUsed,
		Success:         r.Status == types.ReceiptStatusSuccessful,
	}
	if r.BlockNumber != nil {
		out.BlockNumber = r.BlockNumber.Uint64()
	}
	return out
}

// Error represents a JSON-RPC or transport error from the node.
type Error struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("celo: %s (code %d)", e.Message, e.Code)
	}
	return fmt.Sprintf("celo: %s (status %d)", e.Message, e.StatusCode)
}

// wrapErr turns node-reported errors into *Error and leaves the rest alone.
func wrapErr(err error) error {
	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		return &Error{StatusCode: httpErr.StatusCode, Message: httpErr.Status}
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return &Error{Code: rpcErr.ErrorCode(), Message: rpcErr.Error()}
	}
	return err
}
