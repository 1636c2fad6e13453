package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"crm-backend/internal/config"
	handler "crm-backend/internal/handler/http"
	wshandler "crm-backend/internal/handler/ws"
	"crm-backend/internal/middleware"
	"crm-backend/internal/repository"
	"crm-backend/internal/router"
	"crm-backend/internal/tasks"
	"crm-backend/internal/usecase"
	"crm-backend/pkg/logger"
	"crm-backend/pkg/mailer"
	"crm-backend/pkg/notifier"
	notifyws "crm-backend/pkg/notifier/ws"
	"crm-backend/pkg/smsclient"
	"crm-backend/pkg/template"
	"crm-backend/pkg/webhook"

	"go.uber.org/zap"
)

const (
	tokenTTL          = 24 * time.Hour
	heartbeatInterval = 30 * time.Second
	taskQueueSize     = 256
	taskWorkers       = 4
	taskTimeout       = 30 * time.Second
)

type Server struct {
	http  *http.Server
	pool  *pgxpool.Pool
	redis *redis.Client
	queue *tasks.Queue
}

func New(ctx context.Context, cfg config.AppConfig) (*Server, error) {
	pool, err := config.ConnectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPass})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.L().Warn("redis unreachable, rate limiting disabled", zap.Error(err))
		rdb = nil
	}

	users := repository.NewUserRepository(pool)
	contacts := repository.NewContactRepository(pool)
	estimates := repository.NewEstimateRepository(pool)
	jobs := repository.NewJobRepository(pool)
	calendar := repository.NewCalendarRepository(pool)
	notifications := repository.NewNotificationRepository(pool)
	messages := repository.NewMessageRepository(pool)

	tmpl, err := template.NewTemplateService("Get Connected")
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	hub := notifyws.NewManager()
	go hub.Heartbeat(heartbeatInterval)

	email := mailer.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.EmailFrom, tmpl)
	sms := smsclient.NewClient(cfg.SMSBaseURL, cfg.SMSUserID, cfg.SMSPassword, cfg.SMSSenderID)
	notify := notifier.NewNotifier(email, sms, hub)
	replyHook := webhook.NewClient(cfg.N8NReplyWebhookURL)

	queue := tasks.NewQueue(taskQueueSize, taskWorkers, taskTimeout)

	tokens := middleware.NewTokenManager(cfg.JWTSecret, tokenTTL)

	notificationUC := usecase.NewNotificationUsecase(notifications, users, notify)
	conversationUC := usecase.NewConversationUsecase(messages, contacts, estimates, users, hub, replyHook)
	authUC := usecase.NewAuthUsecase(users, tokens)
	contactUC := usecase.NewContactUsecase(contacts)
	estimateUC := usecase.NewEstimateUsecase(estimates, contacts, jobs, calendar, notificationUC, queue)
	jobUC := usecase.NewJobUsecase(jobs, contacts, calendar, notificationUC, queue)
	calendarUC := usecase.NewCalendarUsecase(calendar)

	mux := router.New(router.Deps{
		Auth:          handler.NewAuthHandler(authUC),
		Contacts:      handler.NewContactHandler(contactUC),
		Estimates:     handler.NewEstimateHandler(estimateUC),
		Jobs:          handler.NewJobHandler(jobUC),
		Calendar:      handler.NewCalendarHandler(calendarUC),
		Notifications: handler.NewNotificationHandler(notificationUC),
		AI:            handler.NewAIHandler(conversationUC),
		Socket:        wshandler.NewSocketHandler(hub),

		Tokens:         tokens,
		Redis:          rdb,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	return &Server{
		http: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		pool:  pool,
		redis: rdb,
		queue: queue,
	}, nil
}

func (s *Server) Run() error {
	logger.L().Info("http server listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, drains the task queue and releases
// connections.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)

	if qerr := s.queue.Shutdown(ctx); qerr != nil {
		logger.L().Warn("task queue drain incomplete", zap.Error(qerr))
	}
	if s.redis != nil {
		_ = s.redis.Close()
	}
	s.pool.Close()
	return err
}
