package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	sdkmath "cosmossdk.io/math"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/stakelab-io/stake-ledger/internal/db"
	"github.com/stakelab-io/stake-ledger/internal/ledger"
	"github.com/stakelab-io/stake-ledger/internal/token"
)

type stakeRequest struct {
	Participant string `json:"participant"`
	Amount      string `json:"amount"`
}

type unstakeRequest struct {
	Caller      string `json:"caller"`
	Participant string `json:"participant"`
}

type unstakeResponse struct {
	Participant string `json:"participant"`
	Principal   string `json:"principal"`
	Reward      string `json:"reward"`
}

type rewardResponse struct {
	Participant string `json:"participant"`
	Reward      string `json:"reward"`
}

type pauseRequest struct {
	Caller string `json:"caller"`
	Paused bool   `json:"paused"`
}

type fundRewardsRequest struct {
	Caller string `json:"caller"`
	Amount string `json:"amount"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealthcheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStake(w http.ResponseWriter, r *http.Request) {
	var req stakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.Participant == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("participant is required"))
		return
	}

	amount, ok := sdkmath.NewIntFromString(req.Amount)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Errorf("amount %q is not a valid integer", req.Amount))
		return
	}

	if err := s.service.Stake(r.Context(), req.Participant, amount); err != nil {
		writeLedgerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "staked"})
}

func (s *Server) handleUnstake(w http.ResponseWriter, r *http.Request) {
	var req unstakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.Participant == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("participant is required"))
		return
	}
	if req.Caller == "" {
		req.Caller = req.Participant
	}

	principal, reward, err := s.service.Unstake(r.Context(), req.Caller, req.Participant)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, unstakeResponse{
		Participant: req.Participant,
		Principal:   principal.String(),
		Reward:      reward.String(),
	})
}

func (s *Server) handleReward(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	reward := s.service.Reward(r.Context(), address)

	writeJSON(w, http.StatusOK, rewardResponse{
		Participant: address,
		Reward:      reward.String(),
	})
}

func (s *Server) handleGetStake(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	stake, err := s.service.GetStake(r.Context(), address)
	if err != nil {
		if db.IsNotFoundError(err) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stake)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	var req pauseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	if err := s.service.SetPaused(r.Context(), req.Caller, req.Paused); err != nil {
		writeLedgerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"paused": req.Paused})
}

func (s *Server) handleFundRewards(w http.ResponseWriter, r *http.Request) {
	var req fundRewardsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	amount, ok := sdkmath.NewIntFromString(req.Amount)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Errorf("amount %q is not a valid integer", req.Amount))
		return
	}

	if err := s.service.FundRewards(r.Context(), req.Caller, amount); err != nil {
		writeLedgerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "funded"})
}

// writeLedgerError maps ledger precondition failures to HTTP statuses.
func writeLedgerError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case ledger.IsInvalidAmountError(err),
		ledger.IsInsufficientBalanceError(err):
		writeError(w, http.StatusBadRequest, err)
	case ledger.IsUnauthorizedError(err):
		writeError(w, http.StatusForbidden, err)
	case ledger.IsNoActiveStakeError(err):
		writeError(w, http.StatusNotFound, err)
	case ledger.IsStakingPeriodNotMetError(err),
		ledger.IsStakingPausedError(err):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, token.ErrInsufficientBalance):
		// custody can't cover the payout until the owner funds rewards
		writeError(w, http.StatusConflict, err)
	default:
		writeInternalError(w, r, err)
	}
}

func writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	log.Ctx(r.Context()).Error().Err(err).Msg("internal error while handling request")
	writeError(w, http.StatusInternalServerError, fmt.Errorf("internal server error"))
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
