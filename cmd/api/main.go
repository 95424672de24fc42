package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/workdesk/internal/api/http"
	"github.com/spec-kit/workdesk/internal/api/http/handlers"
	"github.com/spec-kit/workdesk/internal/auth"
	"github.com/spec-kit/workdesk/internal/config"
	"github.com/spec-kit/workdesk/internal/events"
	"github.com/spec-kit/workdesk/internal/observability"
	"github.com/spec-kit/workdesk/internal/persistence"
	"github.com/spec-kit/workdesk/internal/repository"
	"github.com/spec-kit/workdesk/internal/service"
	"github.com/spec-kit/workdesk/internal/stream"
	"github.com/spec-kit/workdesk/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	codec, err := auth.NewTokenCodec(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL())
	if err != nil {
		logger.Fatal("failed to init token codec", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	feed := stream.NewFeed(redis.Client, cfg.Notification.FeedMaxLen)

	pool := pg.PoolHandle()
	orgRepo := repository.NewOrganizationRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	membershipRepo := repository.NewMembershipRepository(pool)
	departmentRepo := repository.NewDepartmentRepository(pool)
	projectRepo := repository.NewProjectRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	attendanceRepo := repository.NewAttendanceRepository(pool)
	requestRepo := repository.NewResourceRequestRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		OrganizationRepo:  orgRepo,
		UserRepo:          userRepo,
		MembershipRepo:    membershipRepo,
		PasswordResetRepo: resetRepo,
		Dispatcher:        dispatcher,
		Codec:             codec,
	})
	scopeService := service.NewScopeService(service.ScopeDependencies{
		MembershipRepo: membershipRepo,
		DepartmentRepo: departmentRepo,
		ProjectRepo:    projectRepo,
		Codec:          codec,
	})
	roleService := service.NewRoleService(service.RoleDependencies{
		MembershipRepo: membershipRepo,
		UserRepo:       userRepo,
		Dispatcher:     dispatcher,
	})
	directoryService := service.NewDirectoryService(service.DirectoryDependencies{
		DepartmentRepo: departmentRepo,
		ProjectRepo:    projectRepo,
		UserRepo:       userRepo,
		MembershipRepo: membershipRepo,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		DepartmentRepo: departmentRepo,
		ProjectRepo:    projectRepo,
		UserRepo:       userRepo,
		Dispatcher:     dispatcher,
	})
	attendanceService := service.NewAttendanceService(attendanceRepo, dispatcher)
	requestService := service.NewResourceRequestService(service.ResourceRequestDependencies{
		RequestRepo:    requestRepo,
		DepartmentRepo: departmentRepo,
		Dispatcher:     dispatcher,
	})
	notificationService := service.NewNotificationService(notificationRepo, feed, dispatcher, logger, cfg.Notification)

	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(codec)

	app := fiber.New(fiber.Config{
		AppName: cfg.App.Name,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:           handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:             handlers.NewAuthHandler(authService),
		Scope:            handlers.NewScopeHandler(scopeService),
		Roles:            handlers.NewRolesHandler(roleService),
		Directory:        handlers.NewDirectoryHandler(directoryService),
		Tickets:          handlers.NewTicketsHandler(ticketService),
		Attendance:       handlers.NewAttendanceHandler(attendanceService),
		ResourceRequests: handlers.NewResourceRequestsHandler(requestService),
		Notifications:    handlers.NewNotificationsHandler(notificationService, cfg.Notification),
		AuthMiddleware:   authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
