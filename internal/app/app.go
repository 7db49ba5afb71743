package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"github.com/shipledger/ledger/internal/dal/interfaces/iledgerrepo"
	"github.com/shipledger/ledger/internal/dal/ledgerstore"
	"github.com/shipledger/ledger/internal/dal/postgres"
	pebblerepo "github.com/shipledger/ledger/internal/dal/repositories/ledger/pebble"
	postgresrepo "github.com/shipledger/ledger/internal/dal/repositories/ledger/postgres"
	"github.com/shipledger/ledger/internal/dal/rabbitmq"
	"github.com/shipledger/ledger/internal/events"
	"github.com/shipledger/ledger/internal/jaeger"
	"github.com/shipledger/ledger/internal/service/models/identity"
	"github.com/shipledger/ledger/internal/service/services/escrowsvc"
	httptransport "github.com/shipledger/ledger/internal/transport/http"
	"github.com/shipledger/ledger/internal/worker/relay"
)

// App represents the application.
type App struct {
	escrowSvc *escrowsvc.EscrowService
	transport *httptransport.HTTPTransport
	repo      iledgerrepo.Repository
	bus       *events.Bus

	rabbitClient *rabbitmq.Client
	relayWorker  *relay.Worker
	relayCancel  context.CancelFunc

	shutdownTracing func(context.Context) error
}

// MustNewApp creates a new application: durable repository per the configured
// storage driver, ledger state recovered from it, escrow engine, HTTP
// transport and the optional rabbitmq relay.
func MustNewApp() *App {
	company := identity.Normalize(viper.GetString("company.address"))
	if company.IsZero() {
		panic("company.address is required")
	}

	repo := mustNewRepository()

	store := ledgerstore.New(company)
	state, err := repo.Load(context.Background())
	if err != nil {
		panic("load ledger state: " + err.Error())
	}
	if err := store.Restore(state); err != nil {
		panic("restore ledger state: " + err.Error())
	}
	slog.Info("Ledger state recovered",
		"orders", store.OrderCount(),
		"reviews", store.ReviewCount(),
		"treasury", store.TreasuryBalance(),
	)

	bus := events.NewBus(viper.GetInt("events.buffer"))

	escrowSvc := escrowsvc.MustNewEscrowService(
		escrowsvc.WithStore(store),
		escrowsvc.WithRepository(repo),
		escrowsvc.WithBus(bus),
	)

	transport := httptransport.NewHTTPTransport(escrowSvc)
	transport.RegisterRoutes()

	app := &App{
		escrowSvc: escrowSvc,
		transport: transport,
		repo:      repo,
		bus:       bus,
	}

	if viper.GetBool("rabbitmq.enabled") {
		app.rabbitClient = rabbitmq.MustNewClient()
		app.relayWorker = relay.NewWorker(app.rabbitClient, bus)
	}

	if viper.GetBool("jaeger.enabled") {
		app.shutdownTracing = jaeger.MustSetupTracing("ledger-svc")
	}

	return app
}

// mustNewRepository builds the durable ledger repository named by the
// storage.driver config key.
func mustNewRepository() iledgerrepo.Repository {
	driver := viper.GetString("storage.driver")
	switch driver {
	case "postgres":
		client := postgres.MustNewClient()
		return postgresrepo.NewRepository(client.Pool())
	case "pebble":
		repo, err := pebblerepo.NewRepository(viper.GetString("storage.pebble.dir"))
		if err != nil {
			panic("open pebble repository: " + err.Error())
		}
		return repo
	case "", "memory":
		return iledgerrepo.Noop()
	default:
		panic("unknown storage driver: " + driver)
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	// Create a channel to receive OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	if a.relayWorker != nil {
		relayCtx, cancel := context.WithCancel(context.Background())
		a.relayCancel = cancel
		go a.relayWorker.Start(relayCtx)
	}

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if a.relayCancel != nil {
		a.relayCancel()
	}
	a.bus.Close()

	if a.rabbitClient != nil {
		if err := a.rabbitClient.Close(); err != nil {
			slog.Error("RabbitMQ connection close error", "error", err)
		}
	}

	if err := a.repo.Close(); err != nil {
		slog.Error("Ledger repository close error", "error", err)
	} else {
		slog.Info("Ledger repository closed")
	}

	if a.shutdownTracing != nil {
		if err := a.shutdownTracing(ctx); err != nil {
			slog.Error("Tracing shutdown error", "error", err)
		}
	}

	slog.Info("Application shutdown complete")
}
