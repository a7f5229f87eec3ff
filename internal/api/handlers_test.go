package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakelab-io/stake-ledger/internal/config"
	"github.com/stakelab-io/stake-ledger/internal/db"
	"github.com/stakelab-io/stake-ledger/internal/db/model"
	"github.com/stakelab-io/stake-ledger/internal/ledger"
	"github.com/stakelab-io/stake-ledger/internal/observability/metrics"
	"github.com/stakelab-io/stake-ledger/internal/token"
	"github.com/stakelab-io/stake-ledger/internal/types"
	"github.com/stakelab-io/stake-ledger/pkg"
)

func TestMain(m *testing.M) {
	// the request metrics middleware records into prometheus collectors
	metrics.Init(2114)
	os.Exit(m.Run())
}

// stubService scripts the service layer so handlers can be tested without
// mongo or a queue.
type stubService struct {
	stakeErr   error
	unstakeErr error
	principal  sdkmath.Int
	reward     sdkmath.Int
	stakeDoc   *model.StakeDocument
	getErr     error
	pauseErr   error
	fundErr    error

	lastParticipant string
	lastCaller      string
	lastAmount      sdkmath.Int
}

func (s *stubService) Stake(_ context.Context, participant string, amount sdkmath.Int) error {
	s.lastParticipant = participant
	s.lastAmount = amount
	return s.stakeErr
}

func (s *stubService) Unstake(_ context.Context, caller, participant string) (sdkmath.Int, sdkmath.Int, error) {
	s.lastCaller = caller
	s.lastParticipant = participant
	if s.unstakeErr != nil {
		return sdkmath.ZeroInt(), sdkmath.ZeroInt(), s.unstakeErr
	}
	return s.principal, s.reward, nil
}

func (s *stubService) Reward(_ context.Context, participant string) sdkmath.Int {
	s.lastParticipant = participant
	return s.reward
}

func (s *stubService) GetStake(_ context.Context, participant string) (*model.StakeDocument, error) {
	s.lastParticipant = participant
	return s.stakeDoc, s.getErr
}

func (s *stubService) SetPaused(_ context.Context, caller string, _ bool) error {
	s.lastCaller = caller
	return s.pauseErr
}

func (s *stubService) FundRewards(_ context.Context, caller string, amount sdkmath.Int) error {
	s.lastCaller = caller
	s.lastAmount = amount
	return s.fundErr
}

func newTestServer(stub *stubService) *Server {
	return New(&config.APIConfig{Host: "127.0.0.1", Port: 8080}, stub)
}

func doRequest(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealthcheck(t *testing.T) {
	srv := newTestServer(&stubService{})

	rec := doRequest(t, srv, http.MethodGet, "/healthcheck", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleStake(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		stub := &stubService{}
		srv := newTestServer(stub)

		rec := doRequest(t, srv, http.MethodPost, "/v1/stake", stakeRequest{
			Participant: "0xalice",
			Amount:      "100",
		})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "0xalice", stub.lastParticipant)
		assert.Equal(t, sdkmath.NewInt(100), stub.lastAmount)
	})

	t.Run("invalid amount string", func(t *testing.T) {
		srv := newTestServer(&stubService{})

		rec := doRequest(t, srv, http.MethodPost, "/v1/stake", stakeRequest{
			Participant: "0xalice",
			Amount:      "one hundred",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing participant", func(t *testing.T) {
		srv := newTestServer(&stubService{})

		rec := doRequest(t, srv, http.MethodPost, "/v1/stake", stakeRequest{Amount: "100"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("ledger precondition failures map to statuses", func(t *testing.T) {
		cases := []struct {
			name   string
			err    error
			status int
		}{
			{"invalid amount", &ledger.InvalidAmountError{Message: "stake amount must be positive"}, http.StatusBadRequest},
			{"insufficient balance", &ledger.InsufficientBalanceError{Message: "balance too low"}, http.StatusBadRequest},
			{"paused", &ledger.StakingPausedError{Message: "staking is paused"}, http.StatusConflict},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				srv := newTestServer(&stubService{stakeErr: tc.err})

				rec := doRequest(t, srv, http.MethodPost, "/v1/stake", stakeRequest{
					Participant: "0xalice",
					Amount:      "100",
				})
				assert.Equal(t, tc.status, rec.Code)

				var resp errorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, tc.err.Error(), resp.Error)
			})
		}
	})
}

func TestHandleUnstake(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		stub := &stubService{
			principal: sdkmath.NewInt(100),
			reward:    sdkmath.ZeroInt(),
		}
		srv := newTestServer(stub)

		rec := doRequest(t, srv, http.MethodPost, "/v1/unstake", unstakeRequest{
			Participant: "0xalice",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp unstakeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "100", resp.Principal)
		assert.Equal(t, "0", resp.Reward)

		// caller defaults to the participant
		assert.Equal(t, "0xalice", stub.lastCaller)
	})

	t.Run("period not met", func(t *testing.T) {
		srv := newTestServer(&stubService{
			unstakeErr: &ledger.StakingPeriodNotMetError{Message: "too early"},
		})

		rec := doRequest(t, srv, http.MethodPost, "/v1/unstake", unstakeRequest{
			Participant: "0xalice",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unauthorized caller", func(t *testing.T) {
		srv := newTestServer(&stubService{
			unstakeErr: &ledger.UnauthorizedError{Message: "not yours"},
		})

		rec := doRequest(t, srv, http.MethodPost, "/v1/unstake", unstakeRequest{
			Caller:      "0xbob",
			Participant: "0xalice",
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unfunded reward pool is a retryable conflict", func(t *testing.T) {
		srv := newTestServer(&stubService{
			unstakeErr: fmt.Errorf("failed to return stake from custody: %w", token.ErrInsufficientBalance),
		})

		rec := doRequest(t, srv, http.MethodPost, "/v1/unstake", unstakeRequest{
			Participant: "0xalice",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("no active stake", func(t *testing.T) {
		srv := newTestServer(&stubService{
			unstakeErr: &ledger.NoActiveStakeError{Message: "no stake"},
		})

		rec := doRequest(t, srv, http.MethodPost, "/v1/unstake", unstakeRequest{
			Participant: "0xalice",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleReward(t *testing.T) {
	stub := &stubService{reward: sdkmath.NewInt(42)}
	srv := newTestServer(stub)

	rec := doRequest(t, srv, http.MethodGet, "/v1/reward/0xalice", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp rewardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "0xalice", resp.Participant)
	assert.Equal(t, "42", resp.Reward)
}

func TestHandleGetStake(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		now := time.Now().UTC()
		srv := newTestServer(&stubService{
			stakeDoc: pkg.Ptr(model.StakeDocument{
				Participant: "0xalice",
				Amount:      "100",
				Since:       now,
				MaturesAt:   now.Add(time.Hour),
				State:       types.StateStaking,
			}),
		})

		rec := doRequest(t, srv, http.MethodGet, "/v1/stakes/0xalice", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		srv := newTestServer(&stubService{
			getErr: &db.NotFoundError{Key: "0xalice", Message: "stake not found"},
		})

		rec := doRequest(t, srv, http.MethodGet, "/v1/stakes/0xalice", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleAdmin(t *testing.T) {
	t.Run("pause", func(t *testing.T) {
		stub := &stubService{}
		srv := newTestServer(stub)

		rec := doRequest(t, srv, http.MethodPost, "/v1/admin/pause", pauseRequest{
			Caller: "0xowner",
			Paused: true,
		})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "0xowner", stub.lastCaller)
	})

	t.Run("pause unauthorized", func(t *testing.T) {
		srv := newTestServer(&stubService{
			pauseErr: &ledger.UnauthorizedError{Message: "not the owner"},
		})

		rec := doRequest(t, srv, http.MethodPost, "/v1/admin/pause", pauseRequest{
			Caller: "0xmallory",
			Paused: true,
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("fund rewards", func(t *testing.T) {
		stub := &stubService{}
		srv := newTestServer(stub)

		rec := doRequest(t, srv, http.MethodPost, "/v1/admin/fund-rewards", fundRewardsRequest{
			Caller: "0xowner",
			Amount: "5000",
		})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, sdkmath.NewInt(5000), stub.lastAmount)
	})
}
