// Sweeper runs the periodic maintenance passes once and exits, so it can be
// scheduled with cron or any job runner: expire stale offers, cancel orders
// whose payment deadline lapsed, purge old refresh tokens.
package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/velobay/velobay-backend/internal/config"
	"github.com/velobay/velobay-backend/internal/db"
	"github.com/velobay/velobay-backend/internal/repository"
	"github.com/velobay/velobay-backend/internal/security"
	"github.com/velobay/velobay-backend/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	conn, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}

	manager := security.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.AccessTokenMinutes)*time.Minute)
	userRepo := repository.NewUserRepository(conn)
	bicycleRepo := repository.NewBicycleRepository(conn)
	messageRepo := repository.NewMessageRepository(conn)
	orderRepo := repository.NewOrderRepository(conn)
	tokenRepo := repository.NewRefreshTokenRepository(conn)
	notifyRepo := repository.NewNotificationRepository(conn)

	notifySvc := service.NewNotificationService(notifyRepo)
	bicycleSvc := service.NewBicycleService(bicycleRepo, orderRepo)
	materializer := service.NewOrderMaterializer(time.Duration(cfg.OrderPaymentDeadlineHours) * time.Hour)
	offerSvc := service.NewOfferService(conn, messageRepo, bicycleRepo, orderRepo, materializer, notifySvc,
		time.Duration(cfg.OfferTTLHours)*time.Hour)
	orderSvc := service.NewOrderService(conn, orderRepo, bicycleSvc, notifySvc)
	authSvc := service.NewAuthService(conn, userRepo, tokenRepo, manager, time.Duration(cfg.RefreshTokenDays)*24*time.Hour)

	ctx := context.Background()

	expired, err := offerSvc.ExpireStaleOffers(ctx)
	if err != nil {
		log.Fatalf("expire stale offers: %v", err)
	}
	log.Printf("expired %d stale offers", expired)

	cancelled, err := orderSvc.CancelExpiredOrders(ctx)
	if err != nil {
		log.Fatalf("cancel expired orders: %v", err)
	}
	log.Printf("cancelled %d overdue orders", cancelled)

	res, err := authSvc.CleanupExpiredTokens(ctx, cfg.ExpiredTokenRetentionDays, cfg.RevokedTokenRetentionDays)
	if err != nil {
		log.Fatalf("cleanup refresh tokens: %v", err)
	}
	log.Printf("purged %d refresh tokens (%d expired, %d revoked)",
		res.TotalCleaned, res.ExpiredTokensCleaned, res.RevokedTokensCleaned)
}
