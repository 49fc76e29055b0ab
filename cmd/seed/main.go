// Command seed loads demo staff and menus for one tenant and prints bearer
// tokens for local testing.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/booking-service/internal/auth"
	"github.com/spec-kit/booking-service/internal/config"
	"github.com/spec-kit/booking-service/internal/domain"
	"github.com/spec-kit/booking-service/internal/observability"
	"github.com/spec-kit/booking-service/internal/persistence"
	"github.com/spec-kit/booking-service/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	tenantFlag := flag.String("tenant", cfg.Booking.DefaultTenantID, "tenant to seed")
	userFlag := flag.String("user", "demo-user", "user id for the printed user token")
	flag.Parse()

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, cfg.App.Name+"-seed", logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	if !pg.Enabled() {
		logger.Fatal("seed requires POSTGRES_DSN")
	}
	if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	tenant := domain.TenantID(*tenantFlag)
	store := repository.NewStore(pg.PoolHandle())

	for i, name := range []string{"Aoi", "Ren", "Mio"} {
		staff := &domain.StaffMember{
			ID:       fmt.Sprintf("%s-staff-%d", tenant, i+1),
			TenantID: tenant,
			Name:     name,
			Role:     "STYLIST",
			Active:   true,
		}
		if err := upsertStaff(ctx, store.Staff(), staff); err != nil {
			logger.Fatal("seed staff", zap.String("staff_id", staff.ID), zap.Error(err))
		}
	}

	menus := []domain.Menu{
		{Name: "Cut", Price: 4500, DurationMinutes: 60},
		{Name: "Trim", Price: 2500, DurationMinutes: 30},
		{Name: "Color", Price: 8000, DurationMinutes: 90},
	}
	for i := range menus {
		menu := menus[i]
		menu.ID = fmt.Sprintf("%s-menu-%d", tenant, i+1)
		menu.TenantID = tenant
		menu.Active = true
		err := store.Menus().Create(ctx, &menu)
		if err != nil && !errors.Is(err, repository.ErrDuplicate) {
			logger.Fatal("seed menu", zap.String("menu_id", menu.ID), zap.Error(err))
		}
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	userToken, _, err := tokens.GenerateToken(domain.Principal{UserID: *userFlag, TenantID: tenant, Role: domain.SubjectRoleUser})
	if err != nil {
		logger.Fatal("sign user token", zap.Error(err))
	}
	adminToken, _, err := tokens.GenerateToken(domain.Principal{UserID: "demo-admin", TenantID: tenant, Role: domain.SubjectRoleAdmin})
	if err != nil {
		logger.Fatal("sign admin token", zap.Error(err))
	}

	logger.Info("seed complete", zap.String("tenant", string(tenant)))
	fmt.Printf("USER_TOKEN=%s\nADMIN_TOKEN=%s\n", userToken, adminToken)
}

func upsertStaff(ctx context.Context, repo repository.StaffRepository, staff *domain.StaffMember) error {
	err := repo.Create(ctx, staff)
	if errors.Is(err, repository.ErrDuplicate) {
		return repo.Update(ctx, staff)
	}
	return err
}
