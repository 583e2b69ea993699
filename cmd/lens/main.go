package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"MarketLens/internal/analysis"
	"MarketLens/internal/collector"
	"MarketLens/internal/config"
	"MarketLens/internal/export"
	"MarketLens/internal/logger"
	"MarketLens/internal/notifier"
	"MarketLens/internal/recorder"
)

func main() {
	_ = godotenv.Load()
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	log := logger.GetLogger().WithComponent("main")

	fs := flag.NewFlagSet("lens", flag.ContinueOnError)
	defaultCfg := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultCfg = v
	}
	cfgPath := fs.String("config", defaultCfg, "path to YAML config")
	startFlag := fs.String("start", "", "start date YYYY-MM-DD (default from config)")
	endFlag := fs.String("end", "", "end date YYYY-MM-DD (default from config)")
	selectFlag := fs.String("select", "", "comma-separated commodity names (default from config)")
	csvPath := fs.String("csv", "", "write the normalized monthly overlay to this CSV file")
	notify := fs.Bool("notify", false, "send a summary to Telegram")
	list := fs.Bool("list", false, "list the configured instruments and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.WithError(err).Error("load config")
		return 1
	}
	if *startFlag != "" {
		cfg.Analysis.StartDate = *startFlag
	}
	if *endFlag != "" {
		cfg.Analysis.EndDate = *endFlag
	}
	if *selectFlag != "" {
		cfg.Analysis.Selected = config.SplitNames(*selectFlag)
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Error("config validation")
		return 1
	}
	if *notify {
		if err := cfg.ValidateTelegram(); err != nil {
			log.WithError(err).Error("config validation")
			return 1
		}
	}
	if err := logger.GetLogger().Configure(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.MaxAge); err != nil {
		log.WithError(err).Error("configure logger")
		return 1
	}

	set := cfg.InstrumentSet()
	if *list {
		fmt.Fprintf(stdout, "index: %s (%s)\n", set.Index.Name, set.Index.Ticker)
		for _, in := range set.Commodities {
			fmt.Fprintf(stdout, "  %-12s %s\n", in.Name, in.Ticker)
		}
		return 0
	}

	// Init fetcher
	var fetcher collector.Fetcher
	if cfg.DataSource.BaseURL != "" {
		fetcher = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy,
			cfg.DataSource.Timeout, cfg.DataSource.RequestsPerSecond)
	} else {
		fetcher = collector.NewYahooFetcher(cfg.Proxy, cfg.DataSource.Timeout, cfg.DataSource.RequestsPerSecond)
	}
	fetcher = collector.NewCachingFetcher(fetcher, cfg.Cache.TTL, cfg.Cache.MaxEntries)
	log.WithFields(logger.Fields{"source": fetcher.Name()}).Info("data source ready")

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.WithError(err).Warn("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	start, end, err := cfg.DateRange()
	if err != nil {
		log.WithError(err).Error("date range")
		return 1
	}
	a := analysis.NewAnalyzer(fetcher, set, rec, logger.GetLogger().WithComponent("analysis"))
	report, err := a.Run(ctx, analysis.Request{Start: start, End: end, Selected: cfg.Analysis.Selected})
	if err != nil {
		log.WithError(err).Error("analysis")
		return 1
	}

	fmt.Fprint(stdout, notifier.FormatReport(report))

	if *csvPath != "" {
		if err := export.WriteOverlayFile(*csvPath, report); err != nil {
			log.WithError(err).Error("write overlay csv")
		} else {
			log.WithFields(logger.Fields{"path": *csvPath}).Info("overlay written")
		}
	}

	if *notify {
		tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		if err := tn.SendWithRetry(ctx, notifier.FormatSummary(report), 3); err != nil {
			log.WithError(err).Error("telegram delivery failed")
		}
	}

	failed := []string{}
	for _, c := range report.Correlations {
		if c.Err != nil {
			failed = append(failed, c.Commodity)
		}
	}
	if len(failed) > 0 {
		log.WithFields(logger.Fields{"commodities": strings.Join(failed, ",")}).Warn("some correlations are undefined")
	}
	return 0
}
