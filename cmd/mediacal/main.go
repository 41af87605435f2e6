package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mediacal/internal/calendar"
	"mediacal/internal/config"
	"mediacal/internal/ics"
	appLog "mediacal/internal/log"
	"mediacal/internal/refresh"
	"mediacal/internal/service"
	"mediacal/internal/source"
	"mediacal/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	logLevel   string
	once       bool
	year       int
	month      int
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	level := conf.LogLevel
	if flags.logLevel != "" {
		level = flags.logLevel
	}
	appLog.SetLevel(appLog.ParseLevel(level))

	loc, err := conf.Location()
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "timezone", conf.Timezone)
	}

	src, err := buildSources(conf, loc)
	if err != nil {
		appLog.Error("failed to set up event sources", err)
		os.Exit(1)
	}

	svc := service.New(src, service.Options{
		Icons: calendar.NewIconTable(conf.Icons),
		Geometry: calendar.Geometry{
			MinWeekHeight: conf.Layout.MinWeekHeight,
			BaseHeight:    conf.Layout.BaseHeight,
			RowHeight:     conf.Layout.RowHeight,
		},
		Location: loc,
		CacheTTL: conf.CacheTTL(),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if flags.once {
		if err := runOnce(ctx, svc, flags.year, time.Month(flags.month)); err != nil {
			appLog.Error("layout failed", err)
			os.Exit(1)
		}
		return
	}

	appLog.Info("mediacal starting",
		"listen", conf.Listen,
		"timezone", loc.String(),
		"refresh", conf.RefreshCron,
		"cache_ttl", conf.CacheTTL(),
		"sources", len(src),
	)

	sched, err := refresh.New(conf.RefreshCron, svc, loc)
	if err != nil {
		appLog.Error("failed to set up refresh scheduler", err)
		os.Exit(1)
	}
	sched.Warm(ctx)
	sched.Start()

	if err := web.NewServer(conf, svc).ListenAndServe(ctx); err != nil {
		appLog.Error("http server failed", err)
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	sched.Stop(stopCtx)
	appLog.Info("mediacal exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/mediacal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Compute one month layout, print it as JSON and exit")
	flag.IntVar(&cfg.year, "year", 0, "Year for -once (default: current year)")
	flag.IntVar(&cfg.month, "month", 0, "Month 1-12 for -once (default: current month)")

	flag.Parse()

	return cfg
}

// buildSources assembles every enabled event source, in config order.
func buildSources(conf *config.Config, loc *time.Location) (source.Multi, error) {
	var multi source.Multi

	if conf.Sources.Canned {
		canned, err := source.NewCanned(time.Duration(conf.Sources.CannedLatencyMillis) * time.Millisecond)
		if err != nil {
			return nil, err
		}
		multi = append(multi, source.Named{Name: "canned", Source: canned})
	}
	if conf.Sources.File != "" {
		multi = append(multi, source.Named{Name: "file", Source: source.File{Path: conf.Sources.File}})
	}
	if h := conf.Sources.HTTP; h != nil && h.BaseURL != "" {
		timeout := time.Duration(h.TimeoutSeconds) * time.Second
		multi = append(multi, source.Named{Name: "http", Source: source.NewHTTP(h.BaseURL, h.Token, timeout, nil)})
	}
	if len(conf.Sources.ICS) > 0 {
		fetcher := ics.NewFetcher(conf.Sources.ICSCacheDir, nil)
		multi = append(multi, source.Named{Name: "ics", Source: source.NewICS(conf.Sources.ICS, fetcher, loc)})
	}

	if len(multi) == 0 {
		appLog.Warn("no event sources configured; calendar will be empty")
	}
	return multi, nil
}

func runOnce(ctx context.Context, svc *service.Service, year int, month time.Month) error {
	curYear, curMonth := svc.CurrentMonth()
	if year == 0 {
		year = curYear
	}
	if month == 0 {
		month = curMonth
	}
	if month < time.January || month > time.December {
		return errors.New("month must be between 1 and 12")
	}

	ml := svc.Month(ctx, year, month)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ml); err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	return nil
}
