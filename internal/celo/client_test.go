package celo

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const (
	rootAccount  = "0x1000000000000000000000000000000000000001"
	otherAccount = "0x2000000000000000000000000000000000000002"
	tokenAddress = "0x3000000000000000000000000000000000000003"
	txHash       = "0x00000000000000000000000000000000000000000000000000000000000feed0"
)

// fakeNode answers the JSON-RPC methods the client uses. Token balances are
// kept per owner and moved by transfer calls.
type fakeNode struct {
	mu        sync.Mutex
	balances  map[common.Address]*big.Int
	registry  map[string]string
	pending   int // receipt polls that return null before the receipt
	revert    bool
	calls     []string
	lastTxReq map[string]string
}

func newFakeNode() *fakeNode {
	return &fakeNode{
		balances: map[common.Address]*big.Int{
			common.HexToAddress(rootAccount): big.NewInt(1000),
		},
		registry: map[string]string{
			"StableToken": tokenAddress,
		},
	}
}

func (n *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     json.RawMessage   `json:"id"`
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, req.Method)

	result, rpcErr := n.handle(req.Method, req.Params)

	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	if rpcErr != "" {
		resp["error"] = map[string]any{"code": -32000, "message": rpcErr}
	} else {
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (n *fakeNode) handle(method string, params []json.RawMessage) (any, string) {
	switch method {
	case "eth_accounts":
		return []string{rootAccount, otherAccount}, ""

	case "eth_chainId":
		return "0xaef3", ""

	case "eth_call":
		var msg map[string]string
		json.Unmarshal(params[0], &msg)
		input := msg["input"]
		if input == "" {
			input = msg["data"]
		}
		data, _ := hexutil.Decode(input)
		return n.call(msg["to"], data)

	case "eth_sendTransaction":
		var msg map[string]string
		json.Unmarshal(params[0], &msg)
		n.lastTxReq = msg
		data, _ := hexutil.Decode(msg["data"])
		method := stableTokenABI.Methods["transfer"]
		if !strings.EqualFold(msg["to"], tokenAddress) || len(data) < 4 || string(data[:4]) != string(method.ID) {
			return nil, "unsupported transaction"
		}
		if !n.revert {
			args, err := method.Inputs.Unpack(data[4:])
			if err != nil {
				return nil, err.Error()
			}
			n.move(common.HexToAddress(msg["from"]), args[0].(common.Address), args[1].(*big.Int))
		}
		return txHash, ""

	case "eth_getTransactionReceipt":
		if n.pending > 0 {
			n.pending--
			return nil, ""
		}
		status := "0x1"
		if n.revert {
			status = "0x0"
		}
		return map[string]any{
			"transactionHash":   txHash,
			"blockNumber":       "0x10",
			"gasUsed":           "0x5208",
			"cumulativeGasUsed": "0x5208",
			"logsBloom":         "0x" + strings.Repeat("00", 256),
			"logs":              []any{},
			"status":            status,
		}, ""
	}
	return nil, "method not found"
}

func (n *fakeNode) call(to string, data []byte) (any, string) {
	if len(data) < 4 {
		return nil, "execution reverted"
	}

	lookup := registryABI.Methods["getAddressForString"]
	balanceOf := stableTokenABI.Methods["balanceOf"]
	sel := string(data[:4])

	switch {
	case strings.EqualFold(to, RegistryAddress) && sel == string(lookup.ID):
		args, err := lookup.Inputs.Unpack(data[4:])
		if err != nil {
			return nil, err.Error()
		}
		out, _ := lookup.Outputs.Pack(common.HexToAddress(n.registry[args[0].(string)]))
		return hexutil.Encode(out), ""

	case strings.EqualFold(to, tokenAddress) && sel == string(balanceOf.ID):
		args, err := balanceOf.Inputs.Unpack(data[4:])
		if err != nil {
			return nil, err.Error()
		}
		out, _ := balanceOf.Outputs.Pack(n.balance(args[0].(common.Address)))
		return hexutil.Encode(out), ""
	}
	return nil, "execution reverted"
}

func (n *fakeNode) balance(owner common.Address) *big.Int {
	if b, ok := n.balances[owner]; ok {
		return b
	}
	return new(big.Int)
}

func (n *fakeNode) move(from, to common.Address, amount *big.Int) {
	n.balances[from] = new(big.Int).Sub(n.balance(from), amount)
	n.balances[to] = new(big.Int).Add(n.balance(to), amount)
}

func (n *fakeNode) count(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, m := range n.calls {
		if m == method {
			c++
		}
	}
	return c
}

func testKit(t *testing.T, node http.Handler) *Kit {
	t.Helper()
	srv := httptest.NewServer(node)
	t.Cleanup(srv.Close)

	k, err := NewKit(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("new kit: %v", err)
	}
	t.Cleanup(k.Close)
	k.client.pollInterval = time.Millisecond
	return k
}

func sameAddress(a, b string) bool {
	return common.HexToAddress(a) == common.HexToAddress(b)
}

func TestAccounts(t *testing.T) {
	k := testKit(t, newFakeNode())

	accounts, err := k.Accounts(context.Background())
	if err != nil {
		t.Fatalf("accounts: %v", err)
	}
	if len(accounts) != 2 || !sameAddress(accounts[0], rootAccount) {
		t.Errorf("accounts = %v", accounts)
	}
}

func TestChainID(t *testing.T) {
	k := testKit(t, newFakeNode())

	id, err := k.Client().ChainID(context.Background())
	if err != nil {
		t.Fatalf("chain id: %v", err)
	}
	if id.Int64() != 44787 {
		t.Errorf("chain id = %v, want 44787", id)
	}
}

func TestRPCError(t *testing.T) {
	k := testKit(t, newFakeNode())

	_, err := k.Client().Call(context.Background(), otherAccount, []byte{1, 2, 3, 4})

	var rpcErr *Error
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if rpcErr.Code != -32000 || rpcErr.Message != "execution reverted" {
		t.Errorf("error = %+v", rpcErr)
	}
}

func TestHTTPError(t *testing.T) {
	k := testKit(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))

	_, err := k.Accounts(context.Background())

	var rpcErr *Error
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if rpcErr.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rpcErr.StatusCode)
	}
}

func TestCallInvalidAddress(t *testing.T) {
	k := testKit(t, newFakeNode())

	if _, err := k.Client().Call(context.Background(), "nope", nil); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("err = %v, want ErrInvalidAddress", err)
	}
}

func TestContractAddress(t *testing.T) {
	k := testKit(t, newFakeNode())

	addr, err := k.ContractAddress(context.Background(), "StableToken")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !sameAddress(addr, tokenAddress) {
		t.Errorf("address = %s, want %s", addr, tokenAddress)
	}

	_, err = k.ContractAddress(context.Background(), "StableTokenXYZ")
	if !errors.Is(err, ErrNotRegistered) {
		t.Errorf("unknown name err = %v, want ErrNotRegistered", err)
	}
}

func TestBalanceOf(t *testing.T) {
	k := testKit(t, newFakeNode())

	bal, err := k.BalanceOf(context.Background(), tokenAddress, rootAccount)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if bal.Int64() != 1000 {
		t.Errorf("balance = %v, want 1000", bal)
	}

	if _, err := k.BalanceOf(context.Background(), tokenAddress, "nope"); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("invalid owner err = %v", err)
	}
}

func TestTransferWaitsForReceipt(t *testing.T) {
	node := newFakeNode()
	node.pending = 2
	k := testKit(t, node)

	r, err := k.Transfer(context.Background(), tokenAddress, rootAccount, otherAccount, big.NewInt(250))
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if !r.Success || r.BlockNumber != 16 || r.GasUsed != 21000 {
		t.Errorf("receipt = %+v", r)
	}
	if !sameAddress(node.lastTxReq["from"], rootAccount) {
		t.Errorf("from = %q, want root", node.lastTxReq["from"])
	}
	if polls := node.count("eth_getTransactionReceipt"); polls != 3 {
		t.Errorf("receipt polls = %d, want 3", polls)
	}

	bal, _ := k.BalanceOf(context.Background(), tokenAddress, otherAccount)
	if bal.Int64() != 250 {
		t.Errorf("recipient balance = %v, want 250", bal)
	}
}

func TestTransferReverted(t *testing.T) {
	node := newFakeNode()
	node.revert = true
	k := testKit(t, node)

	_, err := k.Transfer(context.Background(), tokenAddress, rootAccount, otherAccount, big.NewInt(1))
	if !errors.Is(err, ErrReverted) {
		t.Errorf("err = %v, want ErrReverted", err)
	}
}

func TestTransferInvalidAmount(t *testing.T) {
	node := newFakeNode()
	k := testKit(t, node)

	_, err := k.Transfer(context.Background(), tokenAddress, rootAccount, otherAccount, big.NewInt(-1))
	if !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("err = %v, want ErrInvalidAmount", err)
	}
	if n := node.count("eth_sendTransaction"); n != 0 {
		t.Errorf("sent %d transactions, want 0", n)
	}
}

func TestWaitReceiptCanceled(t *testing.T) {
	node := newFakeNode()
	node.pending = 1 << 30
	k := testKit(t, node)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := k.Client().WaitReceipt(ctx, txHash)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}
