package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	echoapi "github.com/aredu/arcportal/api/echo"
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
	blobsvc "github.com/aredu/arcportal/services/blob"
	emailsvc "github.com/aredu/arcportal/services/email"
	sendgridmail "github.com/aredu/arcportal/services/email/sendgrid"
	logsvc "github.com/aredu/arcportal/services/logger"
	dummytext "github.com/aredu/arcportal/services/textgen/dummy"
	geminitext "github.com/aredu/arcportal/services/textgen/gemini"
	"github.com/aredu/arcportal/realtime"
	"github.com/aredu/arcportal/storage/database"
	sqlxrepos "github.com/aredu/arcportal/storage/database/sqlx"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	errAndDie(std, core.ValidateConf())

	var logger core.Logger
	if core.Conf.GetString("rollbarToken") != "" {
		logger = logsvc.NewRollbarLogger(std)
	} else {
		logger = logsvc.NewStdLogger(std)
	}

	// set up DB
	errAndDie(std, database.CreateIfNotExist())
	db, err := database.Open()
	errAndDie(std, err)
	defer db.Close()
	errAndDie(std, db.Ping())
	errAndDie(std, database.Migrate(db.DB))

	// ambient services
	var mailSvc core.EmailService
	if core.Conf.GetBool("debug") {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = sendgridmail.NewService(logger)
	}
	blob, err := blobsvc.NewFSStore(core.Conf.GetString("blobRootDir"), core.Conf.GetString("blobBaseURL"))
	errAndDie(std, err)
	var textGen statement.Generator
	if key := core.Conf.GetString("geminiApiKey"); key != "" {
		textGen = geminitext.NewService(key, core.Conf.GetString("geminiModel"))
	} else {
		textGen = dummytext.NewService("statement generation is not configured")
	}

	hub := realtime.NewHub()

	// domain services; audit and notifications first, everything else fans
	// out through them
	auditSvc := audit.NewService(sqlxrepos.NewAuditRepository(db), hub, logger)
	notifSvc := notification.NewService(sqlxrepos.NewNotificationRepository(db), hub, logger)
	progressSvc := progress.NewService(sqlxrepos.NewProgressRepository(db), notifSvc, hub)
	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), auditSvc, progressSvc, notifSvc, mailSvc, logger)
	appSvc := application.NewService(sqlxrepos.NewApplicationRepository(db), notifSvc, auditSvc, usrSvc, hub)
	docSvc := document.NewService(sqlxrepos.NewDocumentRepository(db), blob, notifSvc, auditSvc, logger, hub)
	taskSvc := task.NewService(sqlxrepos.NewTaskRepository(db), notifSvc, hub)
	msgSvc := message.NewService(sqlxrepos.NewMessageRepository(db), notifSvc, usrSvc, hub)
	stmtSvc := statement.NewService(sqlxrepos.NewStatementRepository(db), textGen, logger)

	app := echoapi.NewServer(echoapi.Options{
		Addr:            core.Conf.GetString("serverAddress"),
		Logger:          logger,
		UserSvc:         usrSvc,
		ApplicationSvc:  appSvc,
		ProgressSvc:     progressSvc,
		DocumentSvc:     docSvc,
		TaskSvc:         taskSvc,
		MessageSvc:      msgSvc,
		NotificationSvc: notifSvc,
		AuditSvc:        auditSvc,
		StatementSvc:    stmtSvc,
		Hub:             hub,
		BlobRootDir:     core.Conf.GetString("blobRootDir"),
	})

	// graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	serverErrs := make(chan error, 1)
	go func() { serverErrs <- app.Start() }()

	select {
	case err := <-serverErrs:
		errAndDie(std, err)
	case sig := <-shutdown:
		std.Printf("shutting down on %v", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Stop(ctx); err != nil {
			std.Printf("graceful shutdown failed: %v", err)
		}
	}
}

func errAndDie(std *log.Logger, err error) {
	if err != nil {
		std.Fatal(err)
	}
}
