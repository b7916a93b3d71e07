package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"investor-assist/internal/advisor"
	"investor-assist/internal/api"
	"investor-assist/internal/chat"
	"investor-assist/internal/config"
	"investor-assist/internal/market"
	"investor-assist/internal/store"
	"investor-assist/internal/web"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "configs/app.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	hlog.SetLevel(logLevel(cfg.Log.Level))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	h := server.Default(server.WithHostPorts(addr))

	var st *store.Store
	if cfg.Store.Sqlite.Path != "" {
		st, err = store.Open(cfg.Store.Sqlite.Path)
		if err != nil {
			hlog.Fatalf("store error: %v", err)
		}
		defer func() {
			if err := st.Close(); err != nil {
				hlog.Errorf("store close error: %v", err)
			}
		}()
	} else {
		hlog.Warnf("store disabled: store.sqlite.path is empty")
	}

	timeout := time.Duration(cfg.Market.TimeoutMs) * time.Millisecond
	providers := []market.MarketProvider{newProvider(cfg.Market.Provider, cfg.Market, timeout)}
	if cfg.Market.Fallback != "" {
		providers = append(providers, newProvider(cfg.Market.Fallback, cfg.Market, timeout))
	}
	var provider market.MarketProvider = providers[0]
	if len(providers) > 1 {
		provider = market.NewMultiProvider(providers...)
	}
	if cfg.Market.Provider == config.ProviderAlphaVantage && cfg.Market.AlphaVantage.APIKey == "" {
		hlog.Warnf("market: alpha vantage api key is empty, quotes will fail")
	}
	mkt := market.NewClient(provider, st, cfg.Market.SeriesPoints)

	adv := advisor.New(cfg.Advisor)
	mode, reason := adv.Mode()
	hlog.Infof("advisor mode=%s (%s)", mode, reason)

	mgr := chat.NewManager(chat.Deps{Market: mkt, Advisor: adv}, chat.ManagerConfig{
		IdleTTL:     time.Duration(cfg.Session.IdleTTLSec) * time.Second,
		SweepSpec:   cfg.Session.SweepSpec,
		MaxSessions: cfg.Session.MaxSessions,
	})
	if err := mgr.Start(); err != nil {
		hlog.Fatalf("session manager error: %v", err)
	}
	defer mgr.Stop()

	api.RegisterRoutes(h, mgr, mkt, st)
	if err := web.RegisterRoutes(h); err != nil {
		hlog.Fatalf("page routes error: %v", err)
	}

	hlog.Infof("server starting on %s (market=%s log.level=%s)", addr, provider.Name(), cfg.Log.Level)
	h.Spin()
}

func newProvider(name string, cfg config.MarketConfig, timeout time.Duration) market.MarketProvider {
	switch name {
	case config.ProviderYahoo:
		return market.NewYahooProvider(cfg.Yahoo.BaseURL, timeout)
	default:
		return market.NewAlphaVantageProvider(cfg.AlphaVantage.BaseURL, cfg.AlphaVantage.APIKey, timeout)
	}
}

func logLevel(level string) hlog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return hlog.LevelTrace
	case "debug":
		return hlog.LevelDebug
	case "warn", "warning":
		return hlog.LevelWarn
	case "error":
		return hlog.LevelError
	default:
		return hlog.LevelInfo
	}
}
