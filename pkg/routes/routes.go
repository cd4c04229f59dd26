package pkg

import (
	"StudentRequests/internal/auth"
	"StudentRequests/internal/bootstrap"
	"StudentRequests/internal/config"
	"StudentRequests/internal/notification"
	"StudentRequests/internal/queue"
	"StudentRequests/internal/requests"
	"StudentRequests/pkg/middleware"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

var EchoModules = fx.Module("echo",
	fx.Provide(bootstrap.NewLogger),
	fx.Provide(config.NewAppConfig),
	fx.Provide(config.NewMongoDBConfig),
	fx.Provide(config.NewMongoDatabase),
	fx.Provide(config.NewMailConfig),
	fx.Provide(NewEchoServer),
	fx.Provide(NewEstimator),
	fx.Provide(NewCookieCodec),
	fx.Provide(middleware.NewEnforcer),

	fx.Provide(notification.NewMailer),
	fx.Provide(fx.Annotate(notification.NewNotificationRepository, fx.As(new(notification.NotificationStore)))),
	fx.Provide(notification.NewNotificationService),
	fx.Provide(notification.NewNotificationScheduler),
	fx.Provide(notification.NewNotificationHandler),
	fx.Provide(func(s *notification.NotificationService) auth.Notifier { return s }),
	fx.Provide(func(s *notification.NotificationService) requests.Notifier { return s }),

	fx.Provide(fx.Annotate(auth.NewUserRepository, fx.As(new(auth.CredentialStore)))),
	fx.Provide(auth.NewAuthService),
	fx.Provide(auth.NewAuthHandler),

	fx.Provide(fx.Annotate(requests.NewRequestRepository, fx.As(new(requests.RequestStore)))),
	fx.Provide(requests.NewRequestService),
	fx.Provide(requests.NewRequestHandler),

	fx.Invoke(RegisterRoutes),
	fx.Invoke(func(s *notification.NotificationScheduler, lc fx.Lifecycle) { s.StartScheduler(lc) }),
)

// WithZapEvents routes fx's own lifecycle logging through the app logger.
var WithZapEvents = fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
	return &fxevent.ZapLogger{Logger: logger.Named("fx")}
})

func NewEchoServer(lc fx.Lifecycle, cfg *config.AppConfig, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	middleware.SetupMiddleware(e, cfg, logger)
	addr := ":" + cfg.Port
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("server running", zap.String("addr", addr), zap.String("env", cfg.Env))
			go func() {
				if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal("failed to start the server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("shutting down the server ...")
			return e.Shutdown(ctx)
		},
	})
	return e
}

func NewEstimator(cfg *config.AppConfig) (*queue.Estimator, error) {
	calendar, err := queue.NewCalendar(cfg.Location, cfg.WorkDayStart, cfg.WorkDayEnd, cfg.WorkingDays)
	if err != nil {
		return nil, err
	}
	return queue.NewEstimator(calendar, time.Duration(cfg.ServiceMinutes)*time.Minute), nil
}

func NewCookieCodec(cfg *config.AppConfig) *auth.CookieCodec {
	return auth.NewCookieCodec(cfg.CookieSecret, !cfg.Development())
}

func RegisterRoutes(
	e *echo.Echo,
	authService *auth.AuthService,
	cookies *auth.CookieCodec,
	enforcer *casbin.Enforcer,
	logger *zap.Logger,
	authHandler *auth.AuthHandler,
	requestHandler *requests.RequestHandler,
	notificationHandler *notification.NotificationHandler,
) {
	e.POST("/register", authHandler.Register)
	e.POST("/login", authHandler.Login)
	e.POST("/logout", authHandler.Logout)
	e.GET("/verify", authHandler.VerifyEmail)
	e.POST("/forgot-password", authHandler.ForgotPassword)
	e.GET("/reset-password", authHandler.CheckResetKey)
	e.POST("/reset-password", authHandler.ResetPassword)

	protected := e.Group("/api")
	protected.Use(middleware.SessionMiddleware(authService, cookies, logger))
	protected.Use(middleware.CasbinMiddleware(enforcer, logger))
	protected.Use(middleware.CSRFMiddleware(authService, logger))
	protected.GET("/profile", authHandler.Profile)

	protected.GET("/requests", requestHandler.History)
	protected.POST("/requests", requestHandler.Submit)
	protected.POST("/requests/cancel", requestHandler.Cancel)

	staff := protected.Group("/staff")
	staff.GET("/dashboard", requestHandler.Dashboard)
	staff.GET("/queue/:category", requestHandler.Queue)
	staff.POST("/act", requestHandler.Act)
	staff.GET("/random", requestHandler.Random)
	staff.GET("/notifications", notificationHandler.ListNotifications)
}
