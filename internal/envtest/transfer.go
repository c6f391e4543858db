package envtest

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"go.uber.org/zap"
)

// TransferAmount is sent once per stable token: 0.01 of an 18-decimal token.
var TransferAmount = big.NewInt(10_000_000_000_000_000)

// ErrNoTestAccount is returned when the node manages only the root account.
var ErrNoTestAccount = errors.New("node exposes no test account besides root")

// TransferTest sends TransferAmount of every configured stable token from
// the root account to the first test account and checks the recipient
// balance grew by exactly that amount.
func TransferTest(ctx context.Context, tc Context) error {
	root, recipient, err := transferAccounts(ctx, tc.Kit)
	if err != nil {
		return err
	}

	for _, symbol := range tc.StableTokens {
		if err := transferToken(ctx, tc, symbol, root, recipient); err != nil {
			return fmt.Errorf("%s: %w", symbol, err)
		}
	}
	return nil
}

func transferAccounts(ctx context.Context, kit Kit) (root, recipient string, err error) {
	accounts, err := kit.Accounts(ctx)
	if err != nil {
		return "", "", err
	}
	if len(accounts) < 2 {
		return "", "", ErrNoTestAccount
	}
	return accounts[0], accounts[1], nil
}

func transferToken(ctx context.Context, tc Context, symbol, from, to string) error {
	token, err := tokenAddress(ctx, tc.Kit, symbol)
	if err != nil {
		return err
	}

	before, err := tc.Kit.BalanceOf(ctx, token, to)
	if err != nil {
		return err
	}

	r, err := tc.Kit.Transfer(ctx, token, from, to, TransferAmount)
	if err != nil {
		return err
	}

	after, err := tc.Kit.BalanceOf(ctx, token, to)
	if err != nil {
		return err
	}

	got := new(big.Int).Sub(after, before)
	if got.Cmp(TransferAmount) != 0 {
		return fmt.Errorf("recipient balance changed by %s, want %s", got, TransferAmount)
	}

	tc.Logger.Info("transferred",
		zap.String("token", symbol),
		zap.String("from", from),
		zap.String("to", to),
		zap.String("amount", TransferAmount.String()),
		zap.String("tx", r.TransactionHash),
	)
	return nil
}

func tokenAddress(ctx context.Context, kit Kit, symbol string) (string, error) {
	name, ok := RegistryName(symbol)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidToken, symbol)
	}
	return kit.ContractAddress(ctx, name)
}
