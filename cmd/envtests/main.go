// Command envtests runs the environment tests against a Celo node.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/zarlcorp/core/pkg/zapp"
	"github.com/zarlcorp/zcircle/internal/celo"
	"github.com/zarlcorp/zcircle/internal/envtest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	dir := flag.String("dir", ".", "directory holding .env files")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	logger, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "envtests: %v\n", err)
		os.Exit(1)
	}

	app := zapp.New(zapp.WithName("envtests"))
	ctx, cancel := zapp.SignalContext(context.Background())

	code := run(ctx, logger, *dir)

	cancel()
	_ = app.Close()
	_ = logger.Sync()
	os.Exit(code)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

func run(ctx context.Context, logger *zap.Logger, dir string) int {
	envName, err := envtest.LoadEnvFile(dir)
	if err != nil {
		logger.Error("load env file", zap.Error(err))
		return 1
	}

	cfg, err := envtest.LoadConfig(envName)
	if err != nil {
		logger.Error("load config", zap.Error(err))
		return 1
	}

	kit, err := celo.NewKit(ctx, cfg.Provider)
	if err != nil {
		logger.Error("dial", zap.String("provider", cfg.Provider), zap.Error(err))
		return 1
	}
	defer kit.Close()

	chainID, err := kit.Client().ChainID(ctx)
	if err != nil {
		logger.Error("connect", zap.String("provider", cfg.Provider), zap.Error(err))
		return 1
	}
	logger.Info("connected",
		zap.String("env", envName),
		zap.String("provider", cfg.Provider),
		zap.String("chain_id", chainID.String()),
		zap.Strings("stable_tokens", cfg.StableTokens),
	)

	suite := envtest.NewSuite(envtest.Context{
		Kit:                           kit,
		Mnemonic:                      cfg.Mnemonic,
		Logger:                        logger,
		ReserveSpenderMultiSigAddress: cfg.ReserveSpenderMultiSigAddress,
		StableTokens:                  cfg.StableTokens,
	})
	suite.Register("transfer stable tokens", envtest.TransferTest)
	suite.AfterAll("clear all funds to root", envtest.ClearAllFundsToRoot)

	report := suite.Run(ctx)
	fmt.Println(report.Summary())

	if report.Failed() {
		return 1
	}
	return 0
}
