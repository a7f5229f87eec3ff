package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/stakelab-io/stake-ledger/internal/config"
	"github.com/stakelab-io/stake-ledger/internal/db/model"
	"github.com/stakelab-io/stake-ledger/internal/observability/metrics"
	"github.com/stakelab-io/stake-ledger/internal/observability/tracing"
)

const (
	readTimeout     = 10 * time.Second
	writeTimeout    = 10 * time.Second
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

// StakingService is the slice of the service layer the API needs.
type StakingService interface {
	Stake(ctx context.Context, participant string, amount sdkmath.Int) error
	Unstake(ctx context.Context, caller, participant string) (principal, reward sdkmath.Int, err error)
	Reward(ctx context.Context, participant string) sdkmath.Int
	GetStake(ctx context.Context, participant string) (*model.StakeDocument, error)
	SetPaused(ctx context.Context, caller string, paused bool) error
	FundRewards(ctx context.Context, caller string, amount sdkmath.Int) error
}

type Server struct {
	cfg     *config.APIConfig
	service StakingService
	server  *http.Server
}

func New(cfg *config.APIConfig, service StakingService) *Server {
	s := &Server{
		cfg:     cfg,
		service: service,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(traceMiddleware)
	r.Use(requestMetrics)

	r.Get("/healthcheck", s.handleHealthcheck)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/stake", s.handleStake)
		r.Post("/unstake", s.handleUnstake)
		r.Get("/reward/{address}", s.handleReward)
		r.Get("/stakes/{address}", s.handleGetStake)
		r.Post("/admin/pause", s.handlePause)
		r.Post("/admin/fund-rewards", s.handleFundRewards)
	})

	s.server = &http.Server{
		Addr:         cfg.Address(),
		Handler:      r,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
	return s
}

// Start serves the API until ctx is cancelled, then drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Ctx(ctx).Info().Str("addr", s.server.Addr).Msg("Starting API server")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

func traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := tracing.InjectTraceID(r.Context())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		metrics.RecordHttpRequestDuration(time.Since(start), r.Method, r.URL.Path, ww.Status())
	})
}
