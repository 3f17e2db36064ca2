package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/velobay/velobay-backend/internal/model"
	"github.com/velobay/velobay-backend/internal/repository"
	"github.com/velobay/velobay-backend/internal/security"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db        *gorm.DB
	userRepo  repository.UserRepository
	bikeRepo  repository.BicycleRepository
	msgRepo   repository.MessageRepository
	orderRepo repository.OrderRepository
	tokenRepo repository.RefreshTokenRepository

	bikes    BicycleService
	offers   OfferService
	orders   OrderService
	messages MessageService
	auth     AuthService
	notify   NotificationService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{},
		&model.Bicycle{},
		&model.Message{},
		&model.Order{},
		&model.RefreshToken{},
		&model.Notification{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)

	env := &testEnv{
		db:        db,
		userRepo:  repository.NewUserRepository(db),
		bikeRepo:  repository.NewBicycleRepository(db),
		msgRepo:   repository.NewMessageRepository(db),
		orderRepo: repository.NewOrderRepository(db),
		tokenRepo: repository.NewRefreshTokenRepository(db),
	}
	env.notify = NewNotificationService(repository.NewNotificationRepository(db))
	env.bikes = NewBicycleService(env.bikeRepo, env.orderRepo)
	materializer := NewOrderMaterializer(48 * time.Hour)
	env.offers = NewOfferService(db, env.msgRepo, env.bikeRepo, env.orderRepo, materializer, env.notify, 72*time.Hour)
	env.orders = NewOrderService(db, env.orderRepo, env.bikes, env.notify)
	env.messages = NewMessageService(env.msgRepo, env.bikeRepo)
	manager := security.NewTokenManager("test-secret", 15*time.Minute)
	env.auth = NewAuthService(db, env.userRepo, env.tokenRepo, manager, 7*24*time.Hour)
	return env
}

func (e *testEnv) createUser(t *testing.T, email string) *model.User {
	t.Helper()
	u := &model.User{Email: email, PasswordHash: "x", DisplayName: email}
	if err := e.userRepo.Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func (e *testEnv) createBicycle(t *testing.T, sellerID uint64, price int64, status model.BicycleStatus) *model.Bicycle {
	t.Helper()
	b := &model.Bicycle{
		SellerID:  sellerID,
		Brand:     "Bianchi",
		Model:     "Oltre",
		Year:      2021,
		Condition: "good",
		Price:     price,
		Status:    status,
	}
	if err := e.bikeRepo.Create(context.Background(), b); err != nil {
		t.Fatalf("create bicycle: %v", err)
	}
	return b
}
