package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/Checker-Finance/adapters/vertex-adapter/internal/account"
	"github.com/Checker-Finance/adapters/vertex-adapter/internal/api"
	"github.com/Checker-Finance/adapters/vertex-adapter/internal/config"
	"github.com/Checker-Finance/adapters/vertex-adapter/internal/dispatcher"
	"github.com/Checker-Finance/adapters/vertex-adapter/internal/metrics"
	"github.com/Checker-Finance/adapters/vertex-adapter/internal/order"
	"github.com/Checker-Finance/adapters/vertex-adapter/internal/publisher"
	"github.com/Checker-Finance/adapters/vertex-adapter/internal/security"
	"github.com/Checker-Finance/adapters/vertex-adapter/internal/store"
	"github.com/Checker-Finance/adapters/vertex-adapter/internal/symbology"
	"github.com/Checker-Finance/adapters/vertex-adapter/internal/vertex"
	"github.com/Checker-Finance/adapters/vertex-adapter/pkg/broadcast"
	pkgconfig "github.com/Checker-Finance/adapters/vertex-adapter/pkg/config"
	"github.com/Checker-Finance/adapters/vertex-adapter/pkg/logger"
	"github.com/Checker-Finance/adapters/vertex-adapter/pkg/secrets"
)

// Version is set at build time
var Version = "dev"

func main() {
	configPath := flag.String("config", pkgconfig.GetEnv("VERTEX_CONFIG", "config.json"), "path to the account config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.L()
	logg.Info("starting [vertex-adapter]",
		zap.String("version", Version),
		zap.String("account", cfg.AccountID))

	// --- Signing credential (env, AWS Secrets Manager when configured) ---
	var secretProvider secrets.Provider
	if cfg.AWSSecretName != "" {
		secretProvider, err = secrets.NewAWSProvider(cfg.AWSRegion)
		if err != nil {
			logg.Fatal("failed to init AWS secrets provider", zap.Error(err))
		}
	}
	signer, err := security.LoadSigner(ctx, secretProvider, cfg.AWSSecretName, logg)
	if err != nil {
		logg.Fatal("failed to initialize signing credential", zap.Error(err))
	}

	// --- Venue client + symbology (loaded once, immutable) ---
	client := vertex.NewGatewayClient(cfg.GatewayURL, signer, logg)
	snapshot, err := symbology.Load(ctx, client, logg)
	if err != nil {
		logg.Fatal("failed to load symbology", zap.Error(err))
	}

	// --- Optional account summary cache ---
	var st store.Store
	if cfg.RedisAddr != "" {
		st, err = store.NewRedis(cfg.RedisAddr, cfg.RedisDB, logg)
		if err != nil {
			logg.Fatal("failed to init store", zap.Error(err))
		}
		defer st.Close() //nolint:errcheck
	}

	// --- Core pipeline: distributor, translator, reporter, dispatcher ---
	dist := dispatcher.NewDistributor(broadcast.DefaultCapacity)
	translator := order.NewTranslator(snapshot, client, dist, logg)
	reporter := account.NewReporter(snapshot, client, dist, st, cfg.AccountID, logg)
	disp := dispatcher.New(translator, reporter, logg)

	// --- Optional NATS order-flow mirror ---
	if cfg.NATSURL != "" {
		nc, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			logg.Fatal("failed to connect to NATS", zap.Error(err))
		}
		pub, err := publisher.New(nc, cfg.ServiceName, logg)
		if err != nil {
			logg.Fatal("failed to init publisher", zap.Error(err))
		}
		defer pub.Close()
		go pub.Run(ctx, dist)
	}

	// --- Transport + admin + metrics servers ---
	server := api.NewServer(disp, dist, snapshot, logg)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Run(config.TransportAddr)
	}()

	adminApp := api.NewAdminApp(&api.AdminHandler{
		Snapshot: snapshot,
		Store:    st,
		Account:  cfg.AccountID,
		Logger:   logg,
	})
	go func() {
		addr := fmt.Sprintf(":%d", cfg.AdminPort)
		logg.Info("admin API listening", zap.String("addr", addr))
		if err := adminApp.Listen(addr); err != nil {
			logg.Error("admin.listen_failed", zap.Error(err))
		}
	}()

	metrics.StartServer(fmt.Sprintf(":%d", cfg.MetricsPort))

	// --- Central control loop ---
	if err := disp.Run(ctx, serverErr, cfg.PollInterval); err != nil {
		logg.Fatal("dispatcher terminated", zap.Error(err))
	}
	logg.Info("shutdown complete")
}
