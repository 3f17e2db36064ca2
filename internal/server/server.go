package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/velobay/velobay-backend/internal/config"
	"github.com/velobay/velobay-backend/internal/handler"
	appmw "github.com/velobay/velobay-backend/internal/middleware"
	"github.com/velobay/velobay-backend/internal/repository"
	"github.com/velobay/velobay-backend/internal/security"
	"github.com/velobay/velobay-backend/internal/service"
	"gorm.io/gorm"
)

type Server struct {
	e *echo.Echo

	Offers   service.OfferService
	Orders   service.OrderService
	Auth     service.AuthService
	Bicycles service.BicycleService
}

func New(db *gorm.DB, cfg *config.Config) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	manager := security.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.AccessTokenMinutes)*time.Minute)

	userRepo := repository.NewUserRepository(db)
	bicycleRepo := repository.NewBicycleRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	notifyRepo := repository.NewNotificationRepository(db)

	notifySvc := service.NewNotificationService(notifyRepo)
	bicycleSvc := service.NewBicycleService(bicycleRepo, orderRepo)
	materializer := service.NewOrderMaterializer(time.Duration(cfg.OrderPaymentDeadlineHours) * time.Hour)
	offerSvc := service.NewOfferService(db, messageRepo, bicycleRepo, orderRepo, materializer, notifySvc,
		time.Duration(cfg.OfferTTLHours)*time.Hour)
	orderSvc := service.NewOrderService(db, orderRepo, bicycleSvc, notifySvc)
	messageSvc := service.NewMessageService(messageRepo, bicycleRepo)
	authSvc := service.NewAuthService(db, userRepo, tokenRepo, manager, time.Duration(cfg.RefreshTokenDays)*24*time.Hour)

	authHandler := handler.NewAuthHandler(authSvc)
	bicycleHandler := handler.NewBicycleHandler(bicycleSvc)
	offerHandler := handler.NewOfferHandler(offerSvc)
	orderHandler := handler.NewOrderHandler(orderSvc, notifySvc)
	messageHandler := handler.NewMessageHandler(messageSvc)
	notificationHandler := handler.NewNotificationHandler(notifySvc)

	authMw := appmw.NewAuthMiddleware(manager)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"ok": "true"})
	})

	api := e.Group("/api")

	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout, authMw.RequireAuth)

	api.GET("/bicycles", bicycleHandler.List)
	api.GET("/bicycles/:id", bicycleHandler.Get)
	api.POST("/bicycles", bicycleHandler.Create, authMw.RequireAuth)
	api.PUT("/bicycles/:id", bicycleHandler.Update, authMw.RequireAuth)
	api.POST("/bicycles/:id/publish", bicycleHandler.Publish, authMw.RequireAuth)
	api.POST("/bicycles/:id/archive", bicycleHandler.Archive, authMw.RequireAuth)
	api.GET("/me/bicycles", bicycleHandler.ListMine, authMw.RequireAuth)

	api.POST("/bicycles/:id/offers", offerHandler.Create, authMw.RequireAuth)
	api.GET("/bicycles/:id/offers", offerHandler.ListForBicycle, authMw.RequireAuth)
	api.GET("/offers/:id", offerHandler.Get, authMw.RequireAuth)
	api.POST("/offers/:id/accept", offerHandler.Accept, authMw.RequireAuth)
	api.POST("/offers/:id/reject", offerHandler.Reject, authMw.RequireAuth)
	api.GET("/me/offers", offerHandler.ListMine, authMw.RequireAuth)

	api.POST("/bicycles/:id/messages", messageHandler.Send, authMw.RequireAuth)
	api.GET("/bicycles/:id/messages", messageHandler.ListThread, authMw.RequireAuth)
	api.POST("/bicycles/:id/messages/read", messageHandler.MarkRead, authMw.RequireAuth)
	api.GET("/conversations", messageHandler.ListInbox, authMw.RequireAuth)

	api.GET("/orders/:id", orderHandler.Get, authMw.RequireAuth)
	api.PUT("/orders/:id/shipping-address", orderHandler.SetShippingAddress, authMw.RequireAuth)
	api.POST("/orders/:id/payment", orderHandler.SubmitPayment, authMw.RequireAuth)
	api.POST("/orders/:id/payment/confirm", orderHandler.ConfirmPayment, authMw.RequireAuth)
	api.POST("/orders/:id/ship", orderHandler.MarkShipped, authMw.RequireAuth)
	api.POST("/orders/:id/receive", orderHandler.MarkDelivered, authMw.RequireAuth)
	api.POST("/orders/:id/complete", orderHandler.Complete, authMw.RequireAuth)
	api.POST("/orders/:id/cancel", orderHandler.Cancel, authMw.RequireAuth)
	api.GET("/me/orders", orderHandler.ListMine, authMw.RequireAuth)
	api.GET("/me/sales", orderHandler.ListSales, authMw.RequireAuth)

	api.GET("/notifications", notificationHandler.List, authMw.RequireAuth)
	api.POST("/notifications/read", notificationHandler.MarkAllRead, authMw.RequireAuth)

	return &Server{
		e:        e,
		Offers:   offerSvc,
		Orders:   orderSvc,
		Auth:     authSvc,
		Bicycles: bicycleSvc,
	}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}
