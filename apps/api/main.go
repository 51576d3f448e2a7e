package main

import (
	"context"
	"encoding/json"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/trezcool/somo/apps/api/echo"
	"github.com/trezcool/somo/core"
	"github.com/trezcool/somo/core/store"
	"github.com/trezcool/somo/core/user"
	appfs "github.com/trezcool/somo/fs"
	emailsvc "github.com/trezcool/somo/services/email"
	goalsvc "github.com/trezcool/somo/services/goal"
	logsvc "github.com/trezcool/somo/services/logger"
	summarizersvc "github.com/trezcool/somo/services/summarizer"
	"github.com/trezcool/somo/storage/database"
	"github.com/trezcool/somo/storage/localcache"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig(build)

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	usrSvc := user.NewService(database.NewUserRepository(db), mailSvc, conf)

	// set up study data stores: writes go to the DB and a local mirror that
	// serves reads when the DB is down
	cache, err := localcache.NewTreeRepository(filepath.Join(conf.WorkDir, ".cache", "study"))
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up local cache: %v", err), err)
	}
	seed, err := loadSeed()
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading seed data: %v", err), err)
	}
	treeRepo := database.NewTreeRepository(db)
	queue := store.NewWriteQueue(func(res store.WriteResult) {
		if res.Err != nil {
			dbLogger.Error(fmt.Sprintf("persisting study data for %s: %v", res.UserID, res.Err), res.Err)
		}
	}, 0, treeRepo, cache)
	defer queue.Close()
	stores := store.NewManager(treeRepo, cache, seed, queue, dbLogger)

	var summarizer core.Summarizer
	if conf.Summarizer.Enabled {
		summarizer = summarizersvc.NewOllamaService(conf)
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	core.ParseEmailTemplates(conf, logger)

	user.LoadCommonPasswords(conf, logger)

	// =========================================================================
	// Start Goal Notifier

	notifier := goalsvc.NewNotifier(conf, usrSvc, stores, mailSvc, logger)
	if err = notifier.Start(); err != nil {
		logger.Fatal(fmt.Sprintf("starting goal notifier: %v", err), err)
	}
	defer notifier.Stop()

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err = http.ListenAndServe(conf.Server.DebugAddr, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			UserSvc:    usrSvc,
			Stores:     stores,
			Summarizer: summarizer,
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

	if err = database.Migrate(db); err != nil {
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

func loadSeed() (store.EntityTree, error) {
	doc, err := appfs.FS.ReadFile("seed.json")
	if err != nil {
		return store.EntityTree{}, err
	}
	var tree store.EntityTree
	if err = json.Unmarshal(doc, &tree); err != nil {
		return store.EntityTree{}, err
	}
	return tree, nil
}
