package main

import (
	"flag"
	"net/http"
	"time"

	"github.com/egyptiangio/newspaparr/lib/configutil"
	"github.com/egyptiangio/newspaparr/lib/serviceutil"
	"github.com/egyptiangio/newspaparr/lib/sqliteutil"
	"github.com/egyptiangio/newspaparr/lib/timezone"
	"github.com/egyptiangio/newspaparr/services/renewal"
	"github.com/egyptiangio/newspaparr/services/renewal/captcha"
	"github.com/egyptiangio/newspaparr/services/renewal/db"
	"github.com/egyptiangio/newspaparr/services/renewal/proxyman"
)

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	scanNow := flag.Bool("scan", false, "Scan for due accounts immediately on run.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	InitTelemetry(ctx, *verbose)

	cfg, err := configutil.ReadConfig[renewal.Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("read config", err)
	}

	if cfg.DisplayTimezone != "" {
		err := timezone.SetDisplay(cfg.DisplayTimezone)
		if err != nil {
			serviceutil.Fatal("set display timezone", err)
		}
	}

	dbPath := cfg.Database
	if dbPath == "" {
		dbPath = "newspaparr.db"
	}
	database, err := sqliteutil.OpenDB(db.Schema, dbPath)
	if err != nil {
		serviceutil.Fatal("open database", err)
	}

	proxy := proxyman.New(proxyman.Options{
		ListenAddr: cfg.Proxy.ListenAddr,
		TTL:        time.Duration(cfg.Proxy.TtlSeconds) * time.Second,
	})
	var solver captcha.Solver
	if cfg.Captcha.ApiKey != "" {
		solver = captcha.NewCapSolver(captcha.CapSolverOptions{
			BaseURL: cfg.Captcha.BaseUrl,
			APIKey:  cfg.Captcha.ApiKey,
		})
	}

	service := renewal.NewService(renewal.ServiceOptions{
		Store:          renewal.NewStore(database),
		Scheduler:      renewal.NewScheduler(time.Duration(cfg.FallbackIntervalHours) * time.Hour),
		Solver:         solver,
		Proxy:          proxy,
		Notifier:       renewal.NewNotifier(cfg.Smtp),
		Location:       timezone.Display(),
		MaxConcurrent:  cfg.MaxConcurrent,
		AttemptTimeout: time.Duration(cfg.AttemptTimeoutSeconds) * time.Second,
	})

	retention := time.Duration(cfg.RetentionDays) * time.Hour * 24
	err = service.StartDaemons(ctx, retention)
	if err != nil {
		serviceutil.Fatal("start daemons", err)
	}
	if *scanNow {
		go service.ScanDue(ctx)
	}

	mux := http.NewServeMux()
	newApi(service).register(mux)

	port := cfg.Port
	if port == 0 {
		port = 8000
	}
	go serviceutil.StartHttpServer(port, mux)
	<-ctx.Done()
}
