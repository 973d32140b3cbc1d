package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/samvad-catalog-client/internal/app"
	"github.com/samvad-hq/samvad-catalog-client/internal/config"
	"github.com/samvad-hq/samvad-catalog-client/internal/logger"
	"github.com/spf13/pflag"
)

const usage = `usage: catalog <command> [flags]

commands:
  products [--pretty]        fetch the products collection
  categories [--pretty]      fetch the categories collection
  sync [--once]              fetch both collections and publish them
  token set <value> [--ttl]  store the access token
  token clear                remove the stored access token
`

var errUsage = errors.New("invalid usage")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "catalog: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch args[0] {
	case "products", "categories":
		return runFetch(ctx, cfg, log, args[0], args[1:], stdout)
	case "sync":
		return runSync(ctx, cfg, log, args[1:])
	case "token":
		return runToken(cfg, log, args[1:])
	default:
		return errUsage
	}
}

func runFetch(ctx context.Context, cfg *config.Config, log logger.Logger, cmd string, args []string, stdout io.Writer) error {
	fs := pflag.NewFlagSet(cmd, pflag.ContinueOnError)
	pretty := fs.Bool("pretty", false, "indent JSON output")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	client, err := app.NewCatalogClient(cfg, log)
	if err != nil {
		return err
	}
	defer client.Close()

	fetch := client.GetProducts
	if cmd == "categories" {
		fetch = client.GetCategories
	}
	payload, err := fetch(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(payload)
}

func runSync(ctx context.Context, cfg *config.Config, log logger.Logger, args []string) error {
	fs := pflag.NewFlagSet("sync", pflag.ContinueOnError)
	once := fs.Bool("once", false, "run a single pass regardless of sync_interval_seconds")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	client, err := app.NewCatalogClient(cfg, log)
	if err != nil {
		return err
	}
	defer client.Close()

	fanout, err := app.BuildFanout(ctx, cfg, log)
	if err != nil {
		log.ErrorObj("failed to initialize publishers", "error", err)
		return err
	}
	defer fanout.Close()

	interval := cfg.SyncInterval
	if *once {
		interval = 0
	}

	if err := app.NewSyncer(client, fanout, interval, log).Run(ctx); err != nil {
		return fmt.Errorf("sync run: %w", err)
	}
	return nil
}

func runToken(cfg *config.Config, log logger.Logger, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	fs := pflag.NewFlagSet("token", pflag.ContinueOnError)
	ttl := fs.Duration("ttl", 0, "token lifetime in the cookie jar (0 = no expiry)")
	if err := fs.Parse(args[1:]); err != nil {
		return errUsage
	}

	store, err := app.OpenTokenStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	switch args[0] {
	case "set":
		if fs.NArg() != 1 || fs.Arg(0) == "" {
			return errUsage
		}
		if err := store.Store(fs.Arg(0), *ttl); err != nil {
			return fmt.Errorf("store token: %w", err)
		}
		log.InfoObj("access token stored", "token_store", map[string]any{
			"source": cfg.TokenSource,
			"ttl":    ttl.String(),
		})
	case "clear":
		if err := store.Clear(); err != nil {
			return fmt.Errorf("clear token: %w", err)
		}
		log.InfoObj("access token cleared", "token_store", map[string]any{
			"source": cfg.TokenSource,
		})
	default:
		return errUsage
	}
	return nil
}
