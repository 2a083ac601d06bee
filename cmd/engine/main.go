package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"jobsearch-engine/internal/budget"
	"jobsearch-engine/internal/cache"
	"jobsearch-engine/internal/config"
	"jobsearch-engine/internal/events"
	"jobsearch-engine/internal/httpapi"
	"jobsearch-engine/internal/search"
	"jobsearch-engine/internal/secrets"
	"jobsearch-engine/internal/storage"
	"jobsearch-engine/internal/upstream"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"
)

// resolveDataDir picks the engine data dir: env first (the embedding shell
// can pass one), then app.data_dir from the shipped defaults, else the local
// folder. The user config can't decide this; it lives inside the data dir.
func resolveDataDir(defaultCfgPath string) string {
	if dir := strings.TrimSpace(os.Getenv("JOBSEARCH_DATA_DIR")); dir != "" {
		return dir
	}
	if cfg, err := config.Load(defaultCfgPath); err == nil {
		if dir := strings.TrimSpace(cfg.App.DataDir); dir != "" {
			return dir
		}
	}
	return "."
}

func main() {
	defaultCfgPath := filepath.Join("config", "config.yml")

	dataDir := resolveDataDir(defaultCfgPath)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	// One engine per data dir, otherwise two processes share one budget.
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("lock failed: %v", err)
	}
	if !locked {
		log.Fatalf("another engine instance already owns %s", dataDir)
	}
	defer func() { _ = lock.Unlock() }()

	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		raw, err := config.Load(userCfgPath)
		if err != nil {
			return config.Config{}, err
		}
		normalized, vr := config.NormalizeAndValidate(raw)
		if !vr.OK() {
			return config.Config{}, fmt.Errorf("config invalid: %v", vr.Errors)
		}
		for _, warn := range vr.Warnings {
			log.Printf("[config] warning: %s", warn)
		}
		return normalized, nil
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	kv, err := storage.Open(filepath.Join(dataDir, "engine.db"))
	if err != nil {
		log.Fatal(err)
	}
	defer kv.Close()

	bud := budget.New(kv, cfg.Budget.MonthlyCeiling)
	resCache := cache.New(kv, time.Duration(cfg.Cache.TTLHours)*time.Hour, cfg.Cache.MaxEntries)

	apiKey := func() (string, error) {
		cur := cfgVal.Load().(config.Config)
		return secrets.GetUpstreamKey(secrets.UpstreamKeyringAccount(cur.Upstream.BaseURL))
	}
	client := upstream.New(cfg.Upstream.BaseURL, apiKey, cfg.Upstream.RequestsPerSecond, cfg.Upstream.Burst)

	orch := search.New(client, bud, resCache, search.Options{
		FirstPageTimeout: time.Duration(cfg.Search.FirstPageTimeoutSeconds) * time.Second,
		PageTimeout:      time.Duration(cfg.Search.PageTimeoutSeconds) * time.Second,
		PageDelay:        time.Duration(cfg.Search.PageDelayMillis) * time.Millisecond,
		RetryDelay:       time.Duration(cfg.Search.RetryDelayMillis) * time.Millisecond,
		DefaultMaxPages:  cfg.Search.MaxPages,
		PageSize:         cfg.Search.ResultsPerPage,
	})

	hub := events.NewHub()

	mux := httpapi.NewMux(httpapi.Deps{
		Searcher:    orch,
		Hub:         hub,
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
		ClearCache:  resCache.Clear,
	})

	token, err := randomToken(16)
	if err != nil {
		log.Fatal(err)
	}
	tokenPath, err := writeShutdownToken(dataDir, token)
	if err != nil {
		log.Fatalf("shutdown token write failed: %v", err)
	}
	defer func() { _ = os.Remove(tokenPath) }()
	log.Printf("shutdown token written to %s", tokenPath)

	srv := &http.Server{
		Handler: httpapi.Chain(mux,
			httpapi.RequestID,
			httpapi.Cors,
			httpapi.Recover,
			httpapi.AccessLog,
		),
		ReadHeaderTimeout: 5 * time.Second,
	}
	mux.HandleFunc("/shutdown", shutdownHandler(&token, srv))

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.App.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("engine listening on http://%s (data=%s)", addr, dataDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		orch.CancelAll()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
	log.Printf("engine stopped")
}
