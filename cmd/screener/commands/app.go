package commands

import (
	"fmt"
	"time"

	"github.com/crownwell/vnscreener/internal/external/cafef"
	"github.com/crownwell/vnscreener/internal/external/tcbs"
	"github.com/crownwell/vnscreener/internal/external/vietstock"
	"github.com/crownwell/vnscreener/internal/external/vndirect"
	"github.com/crownwell/vnscreener/internal/scan"
	"github.com/crownwell/vnscreener/internal/store"
	"github.com/crownwell/vnscreener/internal/universe"
	"github.com/crownwell/vnscreener/pkg/config"
	"github.com/crownwell/vnscreener/pkg/database"
	"github.com/crownwell/vnscreener/pkg/httputil"
	"github.com/crownwell/vnscreener/pkg/logger"
	"github.com/crownwell/vnscreener/pkg/redis"
)

// Per-provider request budgets. The public APIs tolerate more than
// the scraped sites.
const (
	tcbsRPS      = 5
	vndirectRPS  = 5
	cafefRPS     = 2
	vietstockRPS = 2
)

// app bundles the wired components every command builds from.
// Wiring happens in newApp only.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *database.DB
	redis    *redis.Client
	cache    *scan.Cache
	engine   *scan.Engine
	universe *universe.Service
	repo     *store.Repository
}

// newApp wires the full pipeline. withDB controls whether a Postgres
// connection is established; scan-only invocations can run without
// one.
func newApp(withDB bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	redisClient, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	var db *database.DB
	if withDB {
		db, err = database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
	}

	cache := scan.NewCache(map[scan.QueryKind]time.Duration{
		scan.KindStatement:       cfg.Scan.StatementTTL,
		scan.KindStatementSeries: cfg.Scan.StatementTTL,
		scan.KindOverview:        cfg.Scan.OverviewTTL,
		scan.KindPrice:           cfg.Scan.PriceTTL,
	})

	// Redis coordinates request budgets across processes (scheduler
	// daemon and ad hoc CLI scans sharing one upstream quota); the
	// in-process pacing below is separate.
	limiter := redis.NewRateLimiter(redisClient, "vnscreener")

	tcbsHTTP := httputil.NewWithTimeout(cfg, log, cfg.TCBS.Timeout).WithRateLimiter(limiter, redis.TCBSRateLimit)
	vndHTTP := httputil.NewWithTimeout(cfg, log, cfg.VNDirect.Timeout).WithRateLimiter(limiter, redis.VNDirectRateLimit)
	cafefHTTP := httputil.NewWithTimeout(cfg, log, cfg.CafeF.Timeout).WithRateLimiter(limiter, redis.CafeFRateLimit)
	vietstockHTTP := httputil.NewWithTimeout(cfg, log, cfg.Vietstock.Timeout).WithRateLimiter(limiter, redis.VietstockRateLimit)

	tcbsClient := tcbs.NewClient(tcbsHTTP, log, cfg.TCBS.BaseURL)
	vndClient := vndirect.NewClient(vndHTTP, log, cfg.VNDirect.BaseURL)
	cafefClient := cafef.NewClient(cafefHTTP, log, cfg.CafeF.BaseURL)
	vietstockClient := vietstock.NewClient(vietstockHTTP, log, cfg.Vietstock.BaseURL)

	// Wrap order matters: the cache sits inside Soft so misses are
	// throttled and absorbed, and hits never spend a rate token.
	providers := []scan.Provider{
		scan.Soft(scan.Cached(scan.Limited(tcbsClient, tcbsRPS, tcbsRPS), cache, scan.KindStatement), log),
		scan.Soft(scan.Cached(scan.Limited(vndClient, vndirectRPS, vndirectRPS), cache, scan.KindPrice), log),
		scan.Soft(scan.Cached(scan.Limited(cafefClient, cafefRPS, cafefRPS), cache, scan.KindOverview), log),
		scan.Soft(scan.Cached(scan.Limited(vietstockClient, vietstockRPS, vietstockRPS), cache, scan.KindOverview), log),
	}

	engine := scan.NewEngine(providers, tcbsClient, cache, cfg.Scan.Workers, cfg.Scan.RequestDelay, log)

	universeSvc := universe.NewService(
		httputil.NewWithTimeout(cfg, log, cfg.VNDirect.Timeout),
		redis.NewCache(redisClient, "vnscreener"),
		log,
	)

	a := &app{
		cfg:      cfg,
		log:      log,
		db:       db,
		redis:    redisClient,
		cache:    cache,
		engine:   engine,
		universe: universeSvc,
	}
	if db != nil {
		a.repo = store.NewRepository(db, log)
	}
	return a, nil
}

// close releases connections.
func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
}
