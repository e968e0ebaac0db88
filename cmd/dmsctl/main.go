// Command dmsctl runs the local data store against the configured sync endpoint.
//
//	dmsctl pull                          pull the remote document once for this session
//	dmsctl push                          pull if needed, then push the local data set
//	dmsctl list <collection>             print one collection as JSON
//	dmsctl stats                         print the dashboard summary
//	dmsctl login <username> <password>   sign in for this session
//	dmsctl logout                        sign out
//	dmsctl checkout [flags] <id:qty>...  sell products at the point of sale
//	dmsctl adjust [flags] <id> <qty>     add or remove stock
//
// Commands that change data pull the remote document first and refuse to run when it cannot be
// pulled.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dms-service/config"
	"dms-service/internal/dms"
	"dms-service/internal/redisclient"
	"dms-service/internal/service"
	"dms-service/internal/syncer"
	"dms-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: dmsctl [flags] pull | push | list <collection> | stats | login | logout | checkout | adjust")
		flag.PrintDefaults()
	}
	sessionID := flag.String("session", "", "session id (default DMS_SESSION_ID or a new one)")
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	if *sessionID != "" {
		cfg.Session.ID = *sessionID
	}
	if cfg.Session.ID == "" {
		cfg.Session.ID = uuid.New().String()
	}

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()
	logger := util.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, flag.Args(), os.Stdout, logger); err != nil {
		logger.Error("Command failed", zap.Error(err))
		util.SyncLogger()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, args []string, out io.Writer, logger *zap.Logger) error {
	opts := dms.Options{
		Sync: syncer.Config{
			Endpoint: cfg.Sync.Endpoint,
			Enabled:  cfg.Sync.Enabled,
			Debounce: cfg.Sync.Debounce,
			Timeout:  cfg.Sync.Timeout,
		},
		Logger: logger,
	}

	if cfg.Redis.Addr != "" {
		rc, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn("Redis unavailable, keeping data in memory", zap.Error(err))
		} else {
			defer rc.Close()
			opts.Durable = rc.Namespace(redisclient.DurablePrefix, 0)
			opts.Session = rc.Namespace(redisclient.SessionPrefix(cfg.Session.ID), cfg.Session.TTL)
		}
	}

	store, err := dms.New(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.Sync.Timeout+time.Second)
		defer cancel()
		store.Close(flushCtx)
	}()

	services := service.New(store, service.Config{TaxRate: cfg.Business.TaxRate}, logger)

	switch args[0] {
	case "pull":
		before := store.Sync.State(ctx)
		changed := store.Sync.PullOnce(ctx)
		fmt.Fprintf(out, "session %s: %s -> %s, changed=%t\n", cfg.Session.ID, before, store.Sync.State(ctx), changed)
		return nil

	case "push":
		return store.Sync.PushPulled(ctx)

	case "list":
		if len(args) < 2 {
			return fmt.Errorf("list needs a collection name")
		}
		return listCollection(ctx, store, args[1], out)

	case "stats":
		return writeJSON(out, services.Reports.Dashboard(ctx))

	case "login":
		return login(ctx, store, services, args[1:], out)

	case "logout":
		services.Auth.Logout(ctx)
		return nil

	case "checkout":
		return checkout(ctx, store, services, args[1:], out)

	case "adjust":
		return adjust(ctx, store, services, args[1:], out)

	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func listCollection(ctx context.Context, store *dms.Store, name string, out io.Writer) error {
	snap := store.Data.Export(ctx)
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return err
	}
	items, ok := fields[name]
	if !ok || name == "updatedAt" {
		return fmt.Errorf("unknown collection %q", name)
	}
	var v interface{}
	if err := json.Unmarshal(items, &v); err != nil {
		return err
	}
	return writeJSON(out, v)
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
