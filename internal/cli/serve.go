package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/community-bot/internal/api/http"
	"github.com/spec-kit/community-bot/internal/api/http/handlers"
	"github.com/spec-kit/community-bot/internal/auth"
	"github.com/spec-kit/community-bot/internal/bot"
	"github.com/spec-kit/community-bot/internal/clock"
	"github.com/spec-kit/community-bot/internal/config"
	"github.com/spec-kit/community-bot/internal/events"
	"github.com/spec-kit/community-bot/internal/observability"
	"github.com/spec-kit/community-bot/internal/persistence"
	"github.com/spec-kit/community-bot/internal/platform/discord"
	"github.com/spec-kit/community-bot/internal/repository"
	"github.com/spec-kit/community-bot/internal/service"
	"github.com/spec-kit/community-bot/internal/worker"
)

const shutdownTimeout = 15 * time.Second

var skipSync bool

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Connect to the gateway and serve interactions",
		RunE:  runServe,
	}
	cmd.Flags().BoolVar(&skipSync, "skip-sync", false, "Do not register slash commands on startup")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics()
	clk := clock.Real()

	store, closeStore := openSnapshotStore(ctx, cfg, logger)
	defer closeStore()
	vehicleRepo := repository.NewVehicleRepository(store, logger)
	vehicleRepo.Load(ctx)

	client, err := discord.New(cfg.Discord, logger)
	if err != nil {
		return err
	}

	roles := auth.NewRoleTable(cfg.Roles)
	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartAuditWorker(service.NewAuditService(dispatcher, client, logger, cfg.Channels))

	scheduler := worker.NewScheduler(clk, logger)
	scheduler.OnPendingChange = metrics.PendingCloses

	casefileRepo := repository.NewCasefileRepository()
	vehicles := service.NewVehicleService(service.VehicleDependencies{
		VehicleRepo: vehicleRepo,
		Dispatcher:  dispatcher,
		Clock:       clk,
		Metrics:     metrics,
		Logger:      logger,
	})
	router := bot.NewRouter(bot.Dependencies{
		Tickets: service.NewTicketService(service.TicketDependencies{
			Platform:       client,
			Roles:          roles,
			CasefileRepo:   casefileRepo,
			Sequence:       repository.NewTicketSequence(0),
			Transcripts:    service.NewTranscriptService(client, clk, logger, cfg.Channels.ActionLog, cfg.Tickets.TranscriptLimit),
			Scheduler:      scheduler,
			Dispatcher:     dispatcher,
			Clock:          clk,
			Metrics:        metrics,
			Logger:         logger,
			EveryoneRoleID: cfg.Discord.GuildID,
			CategoryID:     cfg.Channels.TicketCategory,
			CloseDelay:     cfg.Tickets.CloseDelay(),
		}),
		Sessions: service.NewSessionService(service.SessionDependencies{
			Platform:    client,
			SessionRepo: repository.NewSessionRepository(),
			Roles:       roles,
			Dispatcher:  dispatcher,
			Clock:       clk,
			Metrics:     metrics,
			Logger:      logger,
		}),
		Vehicles: vehicles,
		Casefiles: service.NewCasefileService(service.CasefileDependencies{
			Platform:     client,
			CasefileRepo: casefileRepo,
			Vehicles:     vehicles,
			Dispatcher:   dispatcher,
			Clock:        clk,
			Logger:       logger,
		}),
		Community: service.NewCommunityService(client, logger, cfg.Channels.MuteHint),
		Platform:  client,
		Roles:     roles,
		Clock:     clk,
		Metrics:   metrics,
		Logger:    logger,
	})

	client.Serve(ctx, router)
	if err := client.Open(); err != nil {
		return err
	}
	if !skipSync {
		if _, err := client.SyncCommands(ctx, cfg.Discord.CommandGuildID, bot.Commands()); err != nil {
			logger.Warn("slash command sync failed", zap.Error(err))
		}
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, client, store),
		Registry: metrics.Registry(),
	})
	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Error("fiber listen", zap.Error(err))
			stop()
		}
	}()

	logger.Info("bot running", zap.String("http_addr", cfg.App.Addr()))
	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := scheduler.Shutdown(shutdownCtx); err != nil {
		logger.Warn("in-flight ticket close interrupted", zap.Error(err))
	}
	if err := client.Close(); err != nil {
		logger.Warn("gateway close", zap.Error(err))
	}
	return app.ShutdownWithContext(shutdownCtx)
}

// openSnapshotStore selects the vehicle registry backend.
func openSnapshotStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.SnapshotStore, func()) {
	if cfg.Persistence.Backend == config.BackendRedis {
		rdb := persistence.NewRedis(ctx, cfg.Redis, logger)
		return repository.NewRedisSnapshotStore(rdb.Client, cfg.Persistence.RedisKey), rdb.Close
	}
	logger.Info("vehicle registry on file", zap.String("path", cfg.Persistence.File))
	return repository.NewFileSnapshotStore(cfg.Persistence.File), func() {}
}
