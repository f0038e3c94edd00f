package echoapi

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/aredu/arcportal/core"
	"github.com/aredu/arcportal/core/application"
	"github.com/aredu/arcportal/core/audit"
	"github.com/aredu/arcportal/core/document"
	"github.com/aredu/arcportal/core/message"
	"github.com/aredu/arcportal/core/notification"
	"github.com/aredu/arcportal/core/progress"
	"github.com/aredu/arcportal/core/statement"
	"github.com/aredu/arcportal/core/task"
	"github.com/aredu/arcportal/core/user"
	"github.com/aredu/arcportal/realtime"
)

// Options carries every collaborator the API needs; all fields are required
// unless noted.
type Options struct {
	Addr   string
	Logger core.Logger

	UserSvc         *user.Service
	ApplicationSvc  *application.Service
	ProgressSvc     *progress.Service
	DocumentSvc     *document.Service
	TaskSvc         *task.Service
	MessageSvc      *message.Service
	NotificationSvc *notification.Service
	AuditSvc        *audit.Service
	StatementSvc    *statement.Service
	Hub             *realtime.Hub

	// BlobRootDir, when set, is served under /media for the filesystem store.
	BlobRootDir string
}

type Server struct {
	addr   string
	router *echo.Echo
	hub    *realtime.Hub
}

type appValidator struct {
	validate *validator.Validate
}

func (v appValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func NewServer(opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Logger())
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))

	e.Validator = &appValidator{validate: core.Validate}
	e.HTTPErrorHandler = appHTTPErrorHandler
	e.Debug = core.Conf.GetBool("debug")

	e.GET("/", home)
	if opts.BlobRootDir != "" {
		e.Static("/media", opts.BlobRootDir)
	}

	jwt := middleware.JWTWithConfig(appJWTConfig())
	v1 := e.Group("/v1")

	registerUserAPI(v1, jwt, opts.UserSvc)
	registerApplicationAPI(v1, jwt, opts.ApplicationSvc, opts.UserSvc)
	registerProgressAPI(v1, jwt, opts.ProgressSvc, opts.UserSvc)
	registerDocumentAPI(v1, jwt, opts.DocumentSvc, opts.UserSvc)
	registerTaskAPI(v1, jwt, opts.TaskSvc, opts.UserSvc)
	registerMessageAPI(v1, jwt, opts.MessageSvc, opts.UserSvc)
	registerNotificationAPI(v1, jwt, opts.NotificationSvc, opts.UserSvc)
	registerAuditAPI(v1, jwt, opts.AuditSvc)
	registerStatementAPI(v1, jwt, opts.StatementSvc, opts.UserSvc)
	registerStreamAPI(v1, jwt, opts.Hub)

	return &Server{addr: opts.Addr, router: e, hub: opts.Hub}
}

func (s *Server) Start() error {
	return s.router.Start(s.addr)
}

// Stop shuts the router down and tears down every live subscription.
func (s *Server) Stop(ctx context.Context) error {
	if s.hub != nil {
		s.hub.Close()
	}
	return s.router.Shutdown(ctx)
}

// ServeHTTP lets tests drive the router without a listening socket.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func home(c echo.Context) error {
	return c.String(http.StatusOK, "Welcome to "+core.Conf.GetString("appName")+"!")
}
