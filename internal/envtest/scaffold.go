package envtest

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ClearAllFundsToRoot moves every stable token balance held by non-root
// accounts back to the root account. Every account and token is attempted;
// the failures are joined.
func ClearAllFundsToRoot(ctx context.Context, tc Context) error {
	accounts, err := tc.Kit.Accounts(ctx)
	if err != nil {
		return err
	}
	if len(accounts) < 2 {
		return nil
	}
	root := accounts[0]

	var errs []error
	for _, symbol := range tc.StableTokens {
		token, err := tokenAddress(ctx, tc.Kit, symbol)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", symbol, err))
			continue
		}

		for _, acct := range accounts[1:] {
			if err := sweep(ctx, tc, symbol, token, acct, root); err != nil {
				errs = append(errs, fmt.Errorf("%s from %s: %w", symbol, acct, err))
			}
		}
	}

	return errors.Join(errs...)
}

func sweep(ctx context.Context, tc Context, symbol, token, from, root string) error {
	bal, err := tc.Kit.BalanceOf(ctx, token, from)
	if err != nil {
		return err
	}
	if bal.Sign() == 0 {
		return nil
	}

	if _, err := tc.Kit.Transfer(ctx, token, from, root, bal); err != nil {
		return err
	}

	tc.Logger.Info("returned funds to root",
		zap.String("token", symbol),
		zap.String("from", from),
		zap.String("amount", bal.String()),
	)
	return nil
}
