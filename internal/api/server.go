package api

import (
	"fmt"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sorteos-app/sorteos-api/docs"
	v1 "github.com/sorteos-app/sorteos-api/internal/api/handler/v1"
	"github.com/sorteos-app/sorteos-api/internal/api/middleware"
	"github.com/sorteos-app/sorteos-api/internal/config"
	"github.com/sorteos-app/sorteos-api/internal/notification"
	"github.com/sorteos-app/sorteos-api/internal/permission"
	"github.com/sorteos-app/sorteos-api/internal/pkg/ordernumber"
	"github.com/sorteos-app/sorteos-api/internal/repository"
	"github.com/sorteos-app/sorteos-api/internal/repository/dao"
	"github.com/sorteos-app/sorteos-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine

	enforcer *permission.Enforcer
	notifier notification.Notifier
}

func NewServer(conf *config.AppConfig, db *gorm.DB) (*Server, error) {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	enforcer, err := permission.NewEnforcer(db, zap.L())
	if err != nil {
		return nil, fmt.Errorf("api.NewServer -> permission.NewEnforcer -> %w", err)
	}

	s := &Server{
		Config:   conf,
		Router:   engine,
		enforcer: enforcer,
		notifier: buildNotifier(conf.SMTP),
	}

	s.MountMiddlewares()

	authHandler := s.initAuthHandler(db)
	userHandler := s.initUserHandler(db)
	raffleHandler := s.initRaffleHandler(db)
	orderHandler := s.initOrderHandler(db)
	prizeHandler := s.initPrizeHandler(db)
	s.MountHandlers(authHandler, userHandler, raffleHandler, orderHandler, prizeHandler)

	return s, nil
}

// buildNotifier picks SMTP when it is configured and falls back to
// structured logging so transitions never go silent in development.
func buildNotifier(conf *config.SMTPConfig) notification.Notifier {
	if conf == nil || conf.Host == "" {
		return notification.NewLogNotifier(zap.L())
	}

	return notification.NewSMTPNotifier(notification.SMTPConfig{
		Host:        conf.Host,
		Port:        conf.Port,
		Username:    conf.Username,
		Password:    conf.Password,
		FromAddress: conf.FromAddress,
	})
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewAuthService(repo)
	handler := v1.NewAuthHandler(s.Config.API, svc)

	return handler
}

func (s *Server) initUserHandler(db *gorm.DB) *v1.UserHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewUserService(repo, s.enforcer)
	handler := v1.NewUserHandler(svc)

	return handler
}

func (s *Server) initRaffleHandler(db *gorm.DB) *v1.RaffleHandler {
	raffleRepo := repository.NewRaffleRepository(dao.NewRaffleDAO(db))
	orderRepo := repository.NewOrderRepository(dao.NewOrderDAO(db))
	svc := service.NewRaffleService(raffleRepo, orderRepo, s.enforcer)
	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)), s.enforcer)
	handler := v1.NewRaffleHandler(svc, uSvc)

	return handler
}

func (s *Server) initOrderHandler(db *gorm.DB) *v1.OrderHandler {
	orderRepo := repository.NewOrderRepository(dao.NewOrderDAO(db))
	raffleRepo := repository.NewRaffleRepository(dao.NewRaffleDAO(db))
	ticketRepo := repository.NewTicketRepository(dao.NewTicketDAO(db))
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))

	svc := service.NewOrderService(
		orderRepo,
		raffleRepo,
		ticketRepo,
		service.NewPricingService(),
		ordernumber.NewGenerator(),
		s.enforcer,
		s.notifier,
	)
	checkoutSvc := service.NewCheckoutService(userRepo)
	uSvc := service.NewUserService(userRepo, s.enforcer)
	handler := v1.NewOrderHandler(svc, checkoutSvc, uSvc)

	return handler
}

func (s *Server) initPrizeHandler(db *gorm.DB) *v1.PrizeHandler {
	prizeRepo := repository.NewPrizeRepository(dao.NewPrizeDAO(db))
	raffleRepo := repository.NewRaffleRepository(dao.NewRaffleDAO(db))
	ticketRepo := repository.NewTicketRepository(dao.NewTicketDAO(db))
	svc := service.NewPrizeService(prizeRepo, raffleRepo, ticketRepo, s.enforcer)
	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)), s.enforcer)
	handler := v1.NewPrizeHandler(svc, uSvc)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	authHandler *v1.AuthHandler,
	userHandler *v1.UserHandler,
	raffleHandler *v1.RaffleHandler,
	orderHandler *v1.OrderHandler,
	prizeHandler *v1.PrizeHandler,
) {
	const basePath = "/api/v1"

	authenticator := middleware.NewAuthenticator(s.Config.API.JWTSigningKey)

	public := s.Router.Group(basePath)
	{
		public.POST("/auth/signup", authHandler.HandleSignup)
		public.POST("/auth/login", authHandler.HandleLogin)

		public.GET("/raffles", raffleHandler.HandleListRaffles)
		public.GET("/raffles/:raffleID", raffleHandler.HandleGetRaffle)
		public.GET("/raffles/:raffleID/packages", raffleHandler.HandleListPackages)
		public.GET("/raffles/:raffleID/prizes", prizeHandler.HandleListPrizes)

		public.POST("/checkout/probe", orderHandler.HandleProbeEmail)
	}

	// Checkout accepts both guests and logged-in buyers.
	checkout := s.Router.Group(basePath, authenticator.OptionalJWT())
	{
		checkout.POST("/checkout", orderHandler.HandleCheckout)
	}

	users := s.Router.Group(basePath, authenticator.VerifyJWT())
	{
		users.GET("/users/me", userHandler.HandleGetMe)

		users.GET("/orders", orderHandler.HandleListMyOrders)
		users.GET("/orders/:orderID", orderHandler.HandleGetOrder)
		users.GET("/orders/:orderID/tickets", orderHandler.HandleListOrderTickets)
		users.GET("/raffles/:raffleID/my-tickets", orderHandler.HandleListMyRaffleTickets)
		users.POST("/orders/:orderID/receipt", orderHandler.HandleSubmitReceipt)
		users.POST("/orders/:orderID/cancel", orderHandler.HandleCancelOrder)
	}

	admin := s.Router.Group(basePath+"/admin", authenticator.VerifyJWT())
	{
		admin.POST("/raffles", raffleHandler.HandleCreateRaffle)
		admin.POST("/raffles/:raffleID/activate", raffleHandler.HandleActivateRaffle)
		admin.POST("/raffles/:raffleID/complete", raffleHandler.HandleCompleteRaffle)
		admin.POST("/raffles/:raffleID/packages", raffleHandler.HandleCreatePackage)
		admin.POST("/packages/:packageID/deactivate", raffleHandler.HandleDeactivatePackage)
		admin.DELETE("/packages/:packageID", raffleHandler.HandleDeletePackage)

		admin.POST("/raffles/:raffleID/prizes", prizeHandler.HandleCreatePrize)
		admin.POST("/raffles/:raffleID/prizes/evaluate", prizeHandler.HandleEvaluateUnlocks)
		admin.POST("/prizes/:prizeID/winner", prizeHandler.HandleDesignateWinner)

		admin.GET("/orders", orderHandler.HandleListOrders)
		admin.POST("/orders/:orderID/approve", orderHandler.HandleApproveOrder)
		admin.POST("/orders/:orderID/reject", orderHandler.HandleRejectOrder)
		admin.POST("/orders/:orderID/complete", orderHandler.HandleCompleteOrder)
		admin.GET("/dashboard", orderHandler.HandleDashboard)

		admin.PATCH("/users/:userID/status", userHandler.HandleUpdateUserStatus)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Sorteos API"
	docs.SwaggerInfo.Description = "Raffle ticket sales with manual payment verification."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
