package api

import (
	"context"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/homeloto/retail-api/docs"
	v1 "github.com/homeloto/retail-api/internal/api/handler/v1"
	"github.com/homeloto/retail-api/internal/api/middleware"
	"github.com/homeloto/retail-api/internal/config"
	"github.com/homeloto/retail-api/internal/domain"
	"github.com/homeloto/retail-api/internal/repository"
	"github.com/homeloto/retail-api/internal/repository/dao"
	"github.com/homeloto/retail-api/internal/service"
)

// SessionStore backs token revocation and sale idempotency.
type SessionStore interface {
	service.TokenRevoker
	service.IdempotencyStore
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type Dependencies struct {
	DB       *gorm.DB
	Sessions SessionStore
	Identity service.IdentityProvider
	Media    service.MediaStore
	// MediaDir is served under /media when set.
	MediaDir string
	Mailer   service.Notifier
	Renderer service.Renderer
	Location *time.Location
}

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine

	deps  Dependencies
	users *repository.UserRepository
	auth  *middleware.Authenticator
}

func NewServer(conf *config.AppConfig, deps Dependencies) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
		deps:   deps,
		users:  repository.NewUserRepository(dao.NewUserDAO(deps.DB)),
	}

	userSvc := service.NewUserService(s.users)
	s.auth = middleware.NewAuthenticator(conf.API.JWTSigningKey, deps.Sessions, userSvc)

	s.MountMiddlewares()
	s.MountHandlers(handlers{
		auth:   s.initAuthHandler(userSvc),
		user:   v1.NewUserHandler(userSvc),
		draw:   s.initDrawHandler(),
		sale:   s.initSaleHandler(),
		payout: s.initPayoutHandler(),
		report: s.initReportHandler(),
	})

	return s
}

type handlers struct {
	auth   *v1.AuthHandler
	user   *v1.UserHandler
	draw   *v1.DrawHandler
	sale   *v1.SaleHandler
	payout *v1.PayoutHandler
	report *v1.ReportHandler
}

func (s *Server) initAuthHandler(userSvc *service.UserService) *v1.AuthHandler {
	svc := service.NewAuthService(s.users, s.deps.Identity, s.deps.Sessions, s.deps.Mailer, s.Config.Mail.AdminNotify)
	handler := v1.NewAuthHandler(s.Config.API, svc, userSvc)

	return handler
}

func (s *Server) initDrawHandler() *v1.DrawHandler {
	draws := repository.NewDrawRepository(dao.NewDrawDAO(s.deps.DB))
	tickets := repository.NewTicketRepository(dao.NewTicketDAO(s.deps.DB))
	svc := service.NewDrawService(draws, tickets, s.deps.Mailer, s.Config.Lottery.TicketPrice)
	handler := v1.NewDrawHandler(svc)

	return handler
}

func (s *Server) initSaleHandler() *v1.SaleHandler {
	transactions := repository.NewTransactionRepository(dao.NewTransactionDAO(s.deps.DB))
	tickets := repository.NewTicketRepository(dao.NewTicketDAO(s.deps.DB))
	draws := repository.NewDrawRepository(dao.NewDrawDAO(s.deps.DB))
	printer := service.NewPrinter(s.deps.Renderer, s.deps.Media, s.deps.Location)
	svc := service.NewSaleService(transactions, tickets, draws, s.users, s.deps.Sessions, printer)
	handler := v1.NewSaleHandler(svc)

	return handler
}

func (s *Server) initPayoutHandler() *v1.PayoutHandler {
	tickets := repository.NewTicketRepository(dao.NewTicketDAO(s.deps.DB))
	transactions := repository.NewTransactionRepository(dao.NewTransactionDAO(s.deps.DB))
	svc := service.NewPayoutService(tickets, transactions)
	handler := v1.NewPayoutHandler(svc)

	return handler
}

func (s *Server) initReportHandler() *v1.ReportHandler {
	reports := repository.NewReportRepository(dao.NewReportDAO(s.deps.DB))
	draws := repository.NewDrawRepository(dao.NewDrawDAO(s.deps.DB))
	transactions := repository.NewTransactionRepository(dao.NewTransactionDAO(s.deps.DB))
	svc := service.NewReportService(reports, draws, transactions)
	handler := v1.NewReportHandler(svc)

	return handler
}

func (s *Server) MountMiddlewares() {
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.Logger())
	s.Router.Use(middleware.Recovery())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(h handlers) {
	const basePath = "/api/v1"

	public := s.Router.Group(basePath)
	{
		public.POST("/auth/register", h.auth.HandleRegister)
		public.POST("/auth/login", h.auth.HandleLogin)
		public.GET("/tickets/:ticketID/check", h.payout.HandleCheckTicket)
	}

	session := s.Router.Group(basePath, s.auth.VerifyJWT())
	{
		session.POST("/auth/logout", h.auth.HandleLogout)
		session.GET("/me", h.auth.HandleMe)
	}

	staff := s.Router.Group(basePath, s.auth.VerifyJWT(), s.auth.RequireRoles(domain.RoleCashier, domain.RoleOrganizer))
	{
		staff.GET("/draws", h.draw.HandleListDraws)
		staff.GET("/draws/:drawID", h.draw.HandleGetDraw)
		staff.GET("/draws/:drawID/tickets", h.draw.HandleDrawTickets)
	}

	organizer := s.Router.Group(basePath, s.auth.VerifyJWT(), s.auth.RequireRoles(domain.RoleOrganizer))
	{
		organizer.POST("/draws", h.draw.HandleCreateDraw)
		organizer.POST("/draws/:drawID/resolve", h.draw.HandleResolveDraw)
		organizer.GET("/draws/:drawID/winners", h.draw.HandleWinners)
		organizer.GET("/reports/sellers", h.report.HandleSellers)
		organizer.GET("/reports/sellers/:email/transactions", h.report.HandleSellerTransactions)
		organizer.GET("/reports/draws/:drawID", h.report.HandleDrawSummary)
	}

	cashier := s.Router.Group(basePath, s.auth.VerifyJWT(), s.auth.RequireRoles(domain.RoleCashier))
	{
		cashier.GET("/me/settings", h.user.HandleGetSettings)
		cashier.PUT("/me/settings", h.user.HandleUpdateSettings)
		cashier.POST("/sales", h.sale.HandleSell)
		cashier.GET("/sales/history", h.sale.HandleHistory)
		cashier.GET("/transactions/:trID/print", h.sale.HandlePrint)
		cashier.GET("/transactions/:trID/receipt.png", h.sale.HandleReceiptImage)
		cashier.GET("/transactions/:trID/tickets", h.payout.HandleScanTransaction)
		cashier.GET("/tickets/:ticketID/image.png", h.sale.HandleTicketImage)
		cashier.POST("/payouts", h.payout.HandlePay)
	}

	admin := s.Router.Group(basePath, s.auth.VerifyJWT(), s.auth.RequireRoles(domain.RoleAdmin))
	{
		admin.GET("/users", h.user.HandleListUsers)
		admin.PATCH("/users/:userID/role", h.user.HandleUpdateRole)
	}

	if s.deps.MediaDir != "" {
		s.Router.Static("/media", s.deps.MediaDir)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "HOMELOTO retail API"
	docs.SwaggerInfo.Description = "Point-of-sale backend for the HOMELOTO 7/49 lottery."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
