package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"senda/relay/config"
	"senda/relay/internal/entities"
	"senda/relay/internal/fs"
	"senda/relay/internal/notify"
	"senda/relay/internal/realtime"
	"senda/relay/internal/relay"
	"senda/relay/internal/session"
	filecache "senda/relay/pkg/cache/file"
	"senda/relay/pkg/dealer"
	transport "senda/relay/pkg/http"
	"senda/relay/pkg/logging"
	"senda/relay/pkg/metrics"
	"senda/relay/pkg/middleware"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

func main() {

	log.Println("booting application...")

	debug, strict, logsPath, configPath := parseFlags()

	logger, err := logging.WithConfig(&logging.Config{
		Encoding: logging.JSON,
		Strict:   strict,
		LogsPath: logsPath,
		Debug:    debug,
	})

	if err != nil {
		log.Fatalf("could not get logger. %s", err.Error())
	}
	defer logger.Sync()

	if err := godotenv.Load(".env"); err != nil {
		logger.Warnf("could not load .env variables %s", err.Error())
	}

	v, err := config.OpenConfig(configPath)
	if err != nil {
		logger.Fatalf("could not open config: %s", err.Error())
	}

	cfg, err := config.GetAppConfig(v, debug)
	if err != nil {
		logger.Fatalf("could not get app config. %s", err.Error())
	}

	fs.SetUploadDir(cfg.Upload.Dir)
	if err := fs.EnsureDir(); err != nil {
		logger.Fatalf("could not prepare upload dir. %s", err.Error())
	}

	var fileCache filecache.Cache = filecache.NoOp{}
	if cfg.FileCacheConfig != nil {
		fileCache = filecache.NewFileCache(logger, cfg.FileCacheConfig)
	}

	jobDealer := dealer.New(logger, cfg.Upload.IOWorkers)
	jobDealer.WithStrategy(dealer.WorkerPool) // see dealer.WorkerPool impl.

	hub := notify.NewHub(logger)

	store := session.NewStore(logger, session.Config{
		TTL:        cfg.Session.TTL,
		CodeDigits: cfg.Session.CodeDigits,
		MaxFiles:   cfg.Upload.MaxSessionFiles,
	}, relay.NewDiskRemover(logger, jobDealer, fileCache))

	store.OnDestroy(func(s *entities.Session) {
		hub.Drop(s.ID)
	})

	sweeper := session.NewSweeper(logger, store, cfg.Session.SweepEvery)

	service := relay.NewService(logger, store, hub, jobDealer, fileCache, relay.Config{
		PublicURL:       cfg.PublicURL,
		SenderPath:      cfg.SenderPath,
		MaxFiles:        cfg.Upload.MaxFiles,
		MaxSessionFiles: cfg.Upload.MaxSessionFiles,
		MaxFileSize:     cfg.Upload.MaxFileSize,
		MaxBatchSize:    cfg.Upload.MaxBatchSize,
		AllowedTypes:    cfg.Upload.AllowedTypes,
		SniffContent:    cfg.Upload.SniffContent,
	})

	m := mux.NewRouter()
	middlewares := middleware.NewMiddlewares(logger)

	handler := relay.NewHandler(&relay.HandlerDeps{
		Logger:       logger,
		Mux:          m,
		Service:      service,
		MaxMemory:    cfg.Upload.MaxMemory,
		MaxBatchSize: cfg.Upload.MaxBatchSize,
		StaticDir:    cfg.StaticDir,
	})
	rtHandler := realtime.NewHandler(logger, hub, store, realtime.Config{
		SendBuffer: cfg.Ws.SendBuffer,
		PingEvery:  cfg.Ws.PingEvery,
	})

	handler.InitRoutes()
	rtHandler.InitRoutes(m)
	metrics.StartRecordingMetrics(m)
	// Catch-all, goes last
	handler.InitStaticRoutes()

	srv := transport.NewServer(cfg.AppPort, cfg.AppHost, middlewares.Wrap(m), transport.Timeouts{
		Read:  cfg.Http.ReadTimeout,
		Write: cfg.Http.WriteTimeout,
		Idle:  cfg.Http.IdleTimeout,
	})

	//Starts several goroutines
	err = fileCache.Start(debug)
	if err != nil {
		logger.Fatalf("could not start fileCache: %s", err.Error())
	}

	//Init worker pool and job pool
	jobDealer.Start()

	sweeper.Start()

	//Graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil {
			logger.Fatalf("server could not start listening. %s", err.Error())
		}
	}()
	logger.Infof("server is listening on %s (public url: %s)", srv.Addr(), cfg.PublicURL)

	<-shutdown
	logger.Debug("shutting down gracefully...")

	//Context for graceful shutdown
	gctx, gcancel := context.WithTimeout(context.Background(), time.Second*5)
	defer gcancel()

	if err := srv.Shutdown(gctx); err != nil {
		//No fatal error to make clean up
		logger.Errorf("server could not shutdown gracefully. %s", err.Error())
	}
	logger.Debug("server has shutdown")

	sweeper.Stop()
	logger.Debug("sweeper has stopped")

	jobDealer.Stop()
	logger.Debug("jobDealer has stopped")

	fileCache.Stop()
	logger.Debug("fileCache has stopped")
}

func parseFlags() (bool, bool, string, string) {

	debug := flag.Bool("debug", true, "determines whether logs are written to stdout or file")
	strict := flag.Bool("strict-log", false, "determines if logger shouldn't log any info/debug logs")
	logsPath := flag.String("logs-path", "", "determines where log file is")
	configPath := flag.String("config", config.BasePath, "path to yaml config")
	flag.Parse()

	return *debug, *strict, *logsPath, *configPath
}
