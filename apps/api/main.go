package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/edumanage/edurisk/apps/api/echo"
	"github.com/edumanage/edurisk/core"
	"github.com/edumanage/edurisk/core/alert"
	"github.com/edumanage/edurisk/core/student"
	"github.com/edumanage/edurisk/core/ticket"
	emailsvc "github.com/edumanage/edurisk/services/email"
	logsvc "github.com/edumanage/edurisk/services/logger"
	smssvc "github.com/edumanage/edurisk/services/sms"
	"github.com/edumanage/edurisk/storage/database"
	inmemdb "github.com/edumanage/edurisk/storage/database/inmem"
	sqlxrepos "github.com/edumanage/edurisk/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up storage
	var (
		studentRepo student.Repository
		uploadRepo  student.UploadLogRepository
		ticketRepo  ticket.Repository
		alertRepo   alert.Repository
	)
	seedOnBoot := false
	if conf.Database.Engine == "inmem" {
		mem, err := inmemdb.Open()
		if err != nil {
			logger.Fatal(fmt.Sprintf("opening in-memory store: %v", err), err)
		}
		studentRepo = inmemdb.NewStudentRepository(mem)
		uploadRepo = inmemdb.NewUploadLogRepository(mem)
		ticketRepo = inmemdb.NewTicketRepository(mem)
		alertRepo = inmemdb.NewAlertRepository(mem)
		seedOnBoot = true
	} else {
		db, err := setUpDB(conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
		}
		defer func() {
			if err = db.Close(); err != nil {
				logger.Error(fmt.Sprintf("closing database: %v", err), err)
			}
		}()
		studentRepo = sqlxrepos.NewStudentRepository(db)
		uploadRepo = sqlxrepos.NewUploadLogRepository(db)
		ticketRepo = sqlxrepos.NewTicketRepository(db)
		alertRepo = sqlxrepos.NewAlertRepository(db)
	}

	// set up services
	var smsSvc core.SMSService
	var mailSvc core.EmailService
	if conf.Debug {
		smsSvc = smssvc.NewConsoleService()
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		smsSvc = smssvc.NewTwilioService(conf)
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	studentSvc, err := student.NewService(studentRepo, uploadRepo, logger, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up student service: %v", err), err)
	}
	ticketSvc := ticket.NewService(ticketRepo, conf)
	alertSvc := alert.NewService(alertRepo, smsSvc, mailSvc, logger, conf)

	// a fresh in-memory store starts from the seed roster
	if seedOnBoot {
		if err = studentSvc.ResetToSeed(); err != nil {
			logger.Fatal(fmt.Sprintf("seeding registry: %v", err), err)
		}
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			StudentSvc: studentSvc,
			TicketSvc:  ticketSvc,
			AlertSvc:   alertSvc,
			Validate:   validate,
			Translator: translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB, conf); err != nil {
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
