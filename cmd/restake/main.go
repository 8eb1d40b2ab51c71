// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/restake/api"
	"github.com/vechain/restake/config"
	"github.com/vechain/restake/delegator"
	"github.com/vechain/restake/kv"
	"github.com/vechain/restake/log"
	"github.com/vechain/restake/lvldb"
	"github.com/vechain/restake/metrics"
	"github.com/vechain/restake/registry"
	"github.com/vechain/restake/restake"
	"github.com/vechain/restake/slasher"
	"github.com/vechain/restake/state"
	"github.com/vechain/restake/storage"
	"github.com/vechain/restake/vault"
)

var (
	version   string
	gitCommit string
	logger    = log.WithContext("pkg", "main")
)

func fullVersion() string {
	if gitCommit == "" {
		return version + "-dev"
	}
	return fmt.Sprintf("%s-%s", version, gitCommit)
}

func main() {
	app := cli.App{
		Version: fullVersion(),
		Name:    "restake",
		Usage:   "restaking protocol core with read accessor API",
		Flags: []cli.Flag{
			configFlag,
			dataDirFlag,
			apiAddrFlag,
			apiCorsFlag,
			verbosityFlag,
			enableMetricsFlag,
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initLogger(ctx *cli.Context) {
	switch ctx.Int(verbosityFlag.Name) {
	case 0:
		log.SetVerbosity(slog.LevelError)
	case 1, 2:
		log.SetVerbosity(slog.LevelWarn)
	case 3:
		log.SetVerbosity(slog.LevelInfo)
	default:
		log.SetVerbosity(slog.LevelDebug)
	}
}

func openStore(ctx *cli.Context) (kv.GetPutCloser, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		logger.Info("using in-memory state")
		return lvldb.NewMem()
	}
	path := filepath.Join(dataDir, "state.db")
	logger.Info("opening state database", "path", path)
	return lvldb.New(path, lvldb.Options{})
}

func run(ctx *cli.Context) error {
	initLogger(ctx)

	cfg, err := config.LoadFile(ctx.String(configFlag.Name))
	if err != nil {
		return err
	}
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	st := state.New(kv.Bucket("protocol-state").NewStore(store))
	collateral := registry.NewMemCollateral()
	reg := registry.NewMemRegistry()

	v, err := vault.New(
		storage.NewContext(restake.ComponentAddress("restake-vault"), st),
		collateral, reg,
		vault.Options{
			EpochInit:     cfg.EpochInit,
			EpochDuration: cfg.EpochDuration,
			Burner:        cfg.BurnerAddress(),
		},
	)
	if err != nil {
		return err
	}
	d, err := delegator.NewShares(
		storage.NewContext(restake.ComponentAddress("restake-delegator"), st),
		v, delegator.Options{LimitDelayEpochs: cfg.LimitDelayEpochs},
	)
	if err != nil {
		return err
	}
	s, err := slasher.New(
		storage.NewContext(restake.ComponentAddress("restake-slasher"), st),
		v, d, registry.NewMemMiddleware(), registry.NewMemOptIn(),
		slasher.Options{
			VetoDuration:           cfg.VetoDuration,
			ExecuteDuration:        cfg.ExecuteDuration,
			ResolverSetEpochsDelay: cfg.ResolverSetEpochsDelay,
		},
	)
	if err != nil {
		return err
	}
	reg.Register(s.Address())

	var origins []string
	if cors := ctx.String(apiCorsFlag.Name); cors != "" {
		origins = strings.Split(cors, ",")
	}
	handler := api.New(v, d, s, api.Options{
		EnableMetrics:  ctx.Bool(enableMetricsFlag.Name),
		AllowedOrigins: origins,
	})

	listener, err := net.Listen("tcp", ctx.String(apiAddrFlag.Name))
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("accessor API serving", "addr", listener.Addr(), "version", fullVersion())
		errCh <- srv.Serve(listener)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig)
		if err := srv.Close(); err != nil {
			return err
		}
	}

	// flush accumulated writes so the data-dir survives a restart
	if err := st.Commit(); err != nil {
		return err
	}
	logger.Info("state committed")
	return nil
}
