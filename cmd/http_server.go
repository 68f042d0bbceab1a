package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/peoplekit/hrcore/internal"
	"github.com/peoplekit/hrcore/internal/attendance"
	attendancepg "github.com/peoplekit/hrcore/internal/attendance/postgres"
	"github.com/peoplekit/hrcore/internal/audit"
	auditpg "github.com/peoplekit/hrcore/internal/audit/postgres"
	"github.com/peoplekit/hrcore/internal/auth"
	authpg "github.com/peoplekit/hrcore/internal/auth/postgres"
	"github.com/peoplekit/hrcore/internal/authz"
	"github.com/peoplekit/hrcore/internal/core/events"
	directorypg "github.com/peoplekit/hrcore/internal/directory/postgres"
	"github.com/peoplekit/hrcore/internal/expense"
	expensepg "github.com/peoplekit/hrcore/internal/expense/postgres"
	"github.com/peoplekit/hrcore/internal/form16"
	form16pg "github.com/peoplekit/hrcore/internal/form16/postgres"
	"github.com/peoplekit/hrcore/internal/leave"
	leavepg "github.com/peoplekit/hrcore/internal/leave/postgres"
	"github.com/peoplekit/hrcore/internal/ledger"
	ledgerpg "github.com/peoplekit/hrcore/internal/ledger/postgres"
	"github.com/peoplekit/hrcore/internal/maintenance"
	"github.com/peoplekit/hrcore/internal/memo"
	memopg "github.com/peoplekit/hrcore/internal/memo/postgres"
	"github.com/peoplekit/hrcore/internal/profilechange"
	profilechangepg "github.com/peoplekit/hrcore/internal/profilechange/postgres"
	"github.com/peoplekit/hrcore/internal/storage"
	"github.com/peoplekit/hrcore/internal/transport/rest"
	"github.com/peoplekit/hrcore/internal/workflow"
	"github.com/peoplekit/hrcore/pkg/logger"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

func startHTTPServer() {
	cfg, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(os.Getenv("APP_ENV"))
	log := logger.L()

	db, err := initDB(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize database: %v\n", err)
		os.Exit(1)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize ORM: %v\n", err)
		os.Exit(1)
	}

	// directory and authorization
	dirRepo := directorypg.NewDirectoryRepository(gormDB)
	resolver := authz.NewResolver(dirRepo, log)
	gate := authz.NewGate(resolver, log)
	engine := workflow.NewEngine(resolver, log)

	// audit and the delete guard it witnesses
	auditRepo := auditpg.NewAuditRepository(gormDB)
	auditSvc := audit.NewService(auditRepo, dirRepo, log)
	guard := workflow.NewDeleteGuard(auditSvc, log)

	// ledger
	ledgerRepo := ledgerpg.NewLedgerRepository(gormDB)
	ledgerSvc := ledger.NewService(ledgerRepo, log)

	// event bus; subscribers observe transitions, they cannot veto them
	bus := events.NewEventBus(log)
	bus.Subscribe(events.EventTypeTransition, audit.TransitionSubscriber(auditSvc))

	// entity services
	memoSvc := memo.NewService(memopg.NewMemoRepository(gormDB), gate, engine, auditSvc, guard, log)
	leaveSvc := leave.NewService(leavepg.NewLeaveRepository(gormDB), gate, engine, auditSvc, log)
	attendanceSvc := attendance.NewService(attendancepg.NewAttendanceRepository(gormDB), gate, engine, auditSvc, log)
	expenseSvc := expense.NewService(expensepg.NewExpenseRepository(gormDB), gate, engine, ledgerSvc, auditSvc, guard, storage.NewAccessPolicy(gate), bus, log)
	profileChangeSvc := profilechange.NewService(profilechangepg.NewProfileChangeRepository(gormDB), gate, engine, dirRepo, auditSvc, log)
	form16Svc := form16.NewService(form16pg.NewForm16Repository(gormDB), gate, guard, auditSvc, log)

	// maintenance override paths
	maintenanceSvc := maintenance.NewService(guard, resolver, log)
	maintenanceSvc.RegisterDeleter(authz.EntityMemo, memoSvc.DeleteMemo)
	maintenanceSvc.RegisterDeleter(authz.EntityExpense, expenseSvc.DeleteExpense)
	maintenanceSvc.RegisterDeleter(authz.EntityForm16, form16Svc.DeleteRecord)

	// authentication
	tokenGen := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authSvc := auth.NewService(authpg.NewUserRepository(db), tokenGen, cfg.Security.BCryptCost)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, rest.Handlers{
		Auth:          auth.NewHandler(authSvc),
		Memo:          memo.NewHandler(memoSvc),
		Leave:         leave.NewHandler(leaveSvc),
		Attendance:    attendance.NewHandler(attendanceSvc),
		Expense:       expense.NewHandler(expenseSvc),
		ProfileChange: profilechange.NewHandler(profileChangeSvc),
		Form16:        form16.NewHandler(form16Svc),
		Audit:         audit.NewHandler(auditSvc),
		Maintenance:   maintenance.NewHandler(maintenanceSvc),
	}, authSvc, resolver, log)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		log.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("server shutdown error", "error", err)
		}
		if err := db.Close(); err != nil {
			log.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	log.Info("server stopped")
}

func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
