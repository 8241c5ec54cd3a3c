// txverify checks the signatures of a raw transaction, or signs one of its
// inputs, looking previous transactions up in a local leveldb cache backed
// by an optional bitcoind RPC connection.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/chainkit/txcore/lib/btc"
	"github.com/chainkit/txcore/lib/metrics"
	"github.com/chainkit/txcore/lib/prevout"
	"github.com/chainkit/txcore/lib/script"
	"github.com/chainkit/txcore/lib/secp256k1"
	"github.com/chainkit/txcore/lib/tx"
)

type config struct {
	Tx          string   `long:"tx" env:"TXVERIFY_TX" description:"raw transaction hex, read from stdin when empty"`
	Testnet     bool     `long:"testnet" env:"TXVERIFY_TESTNET" description:"the transaction belongs to testnet"`
	DB          string   `long:"db" env:"TXVERIFY_DB" description:"leveldb directory caching previous transactions" default:"txcache"`
	RPCHost     string   `long:"rpc.host" env:"TXVERIFY_RPC_HOST" description:"bitcoind RPC host:port, the cache alone is used when empty"`
	RPCUser     string   `long:"rpc.user" env:"TXVERIFY_RPC_USER" description:"bitcoind RPC username"`
	RPCPass     string   `long:"rpc.pass" env:"TXVERIFY_RPC_PASS" description:"bitcoind RPC password"`
	Fetch       []string `long:"fetch" description:"txid to copy into the cache before anything else (repeatable)"`
	Workers     int      `long:"workers" env:"TXVERIFY_WORKERS" description:"inputs verified in parallel, 0 means one per CPU" default:"4"`
	SignInput   int      `long:"sign.input" description:"index of the input to sign instead of verifying" default:"-1"`
	SignKey     string   `long:"sign.key" env:"TXVERIFY_SIGN_KEY" description:"hex secret exponent used by --sign.input"`
	MetricsAddr string   `long:"metrics.addr" env:"TXVERIFY_METRICS_ADDR" description:"address for the metrics server, disabled when empty"`
	LogDev      bool     `long:"log.dev" env:"TXVERIFY_LOG_DEV" description:"human readable debug logging"`
}

func main() {
	cfg := config{}
	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := newLogger(cfg.LogDev)
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := run(ctx, cfg, os.Stdin, os.Stdout, logger); err != nil {
		logger.Fatal("txverify failed", zap.Error(err))
	}
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(ctx context.Context, cfg config, stdin io.Reader, stdout io.Writer, logger *zap.Logger) error {
	script.UseLogger(logger.Named("script"))
	tx.UseLogger(logger.Named("tx"))
	prevout.UseLogger(logger.Named("prevout"))

	if cfg.MetricsAddr != "" {
		startMetricsServer(ctx, cfg.MetricsAddr, logger)
	}

	store, err := prevout.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer store.Close()

	var upstream prevout.Source
	if cfg.RPCHost != "" {
		client, err := prevout.NewRPCClient(cfg.RPCHost, cfg.RPCUser, cfg.RPCPass)
		if err != nil {
			return fmt.Errorf("init rpc client: %w", err)
		}
		defer func() {
			client.Shutdown()
			client.WaitForShutdown()
		}()
		upstream = prevout.NewRPCSource(client, cfg.Testnet)
	}
	src := prevout.NewCached(store, upstream)

	for _, s := range cfg.Fetch {
		id, err := btc.NewUint256FromString(s)
		if err != nil {
			return fmt.Errorf("--fetch %q: %w", s, err)
		}
		t, err := src.FetchTx(ctx, id, cfg.Testnet)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", s, err)
		}
		logger.Info("transaction cached", zap.String("tx", t.Id()), zap.Int("outputs", len(t.TxOut)))
	}

	raw := cfg.Tx
	if raw == "" {
		if len(cfg.Fetch) > 0 {
			return nil
		}
		b, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		raw = string(b)
	}
	t, err := tx.ParseHex(strings.TrimSpace(raw), cfg.Testnet)
	if err != nil {
		return err
	}
	f := prevout.NewFetcher(src)

	if cfg.SignInput >= 0 {
		return sign(ctx, cfg, t, f, stdout, logger)
	}
	return verify(ctx, cfg, t, f, stdout, logger)
}

func verify(ctx context.Context, cfg config, t *tx.Tx, f tx.PrevOutFetcher, stdout io.Writer, logger *zap.Logger) error {
	started := time.Now()
	err := t.VerifyParallel(ctx, f, cfg.Workers)
	metrics.ObserveTxVerify(err, len(t.TxIn), started)
	if err != nil {
		return fmt.Errorf("transaction %s invalid: %w", t.Id(), err)
	}
	fee, err := t.Fee(ctx, f)
	if err != nil {
		return err
	}
	logger.Info("transaction valid",
		zap.String("tx", t.Id()),
		zap.Int("inputs", len(t.TxIn)),
		zap.Int64("fee", fee),
		zap.Duration("took", time.Since(started)),
	)
	fmt.Fprintf(stdout, "%s OK fee %d\n", t.Id(), fee)
	return nil
}

func parseSecret(s string) (*secp256k1.PrivateKey, error) {
	d, ok := new(big.Int).SetString(strings.TrimPrefix(strings.TrimSpace(s), "0x"), 16)
	if !ok {
		return nil, errors.New("secret must be hex")
	}
	if d.Sign() <= 0 || d.Cmp(secp256k1.N) >= 0 {
		return nil, errors.New("secret out of range")
	}
	return secp256k1.NewPrivateKey(d), nil
}

func sign(ctx context.Context, cfg config, t *tx.Tx, f tx.PrevOutFetcher, stdout io.Writer, logger *zap.Logger) error {
	key, err := parseSecret(cfg.SignKey)
	if err != nil {
		return fmt.Errorf("--sign.key: %w", err)
	}
	err = t.SignInput(ctx, f, cfg.SignInput, key)
	metrics.ObserveSign(err)
	if err != nil {
		return err
	}
	raw, err := t.Serialize()
	if err != nil {
		return err
	}
	logger.Info("input signed", zap.String("tx", t.Id()), zap.Int("input", cfg.SignInput),
		zap.String("address", key.PublicKey().Address(true, cfg.Testnet)))
	fmt.Fprintf(stdout, "%x\n", raw)
	return nil
}

func startMetricsServer(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown metrics server", zap.Error(err))
		}
	}()
}
