package rpc

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"rewardpool/crypto"
	"rewardpool/native/rewards"
)

const (
	codeRewardsInvalidParams = -32061
	codeRewardsNotFound      = -32062
	codeRewardsUnauthorized  = -32063
	codeRewardsConflict      = -32064
	codeRewardsInternal      = -32065
)

type initializeParams struct {
	authParams
	InitialBalance string `json:"initialBalance"`
}

type depositParams struct {
	authParams
	Amount string `json:"amount"`
}

type setPoolStatusParams struct {
	authParams
	Active bool `json:"active"`
}

type assignParams struct {
	authParams
	Recipient string `json:"recipient"`
	Kind      string `json:"kind"`
	Amount    string `json:"amount,omitempty"`
	RateBps   uint32 `json:"rateBps,omitempty"`
	ExpiresAt int64  `json:"expiresAt,omitempty"`
}

type claimParams struct {
	authParams
	Recipient string `json:"recipient"`
	Index     uint32 `json:"index"`
}

type addressParams struct {
	Address string `json:"address"`
}

type assignResult struct {
	Index uint32 `json:"index"`
}

type claimResult struct {
	Payout string `json:"payout"`
}

type balanceResult struct {
	Address string `json:"address"`
	Settled string `json:"settled"`
}

type poolJSON struct {
	Admin            string `json:"admin"`
	TotalBalance     string `json:"totalBalance"`
	TotalDistributed string `json:"totalDistributed"`
	Active           bool   `json:"active"`
	CreatedAt        int64  `json:"createdAt"`
	UpdatedAt        int64  `json:"updatedAt"`
}

type rewardJSON struct {
	Index     uint32 `json:"index"`
	Recipient string `json:"recipient"`
	Kind      string `json:"kind"`
	Amount    string `json:"amount,omitempty"`
	RateBps   uint32 `json:"rateBps,omitempty"`
	ExpiresAt int64  `json:"expiresAt,omitempty"`
	Claimed   bool   `json:"claimed"`
	ClaimedAt int64  `json:"claimedAt,omitempty"`
	Payout    string `json:"payout,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

func poolToJSON(pool *rewards.RewardPool) *poolJSON {
	if pool == nil {
		return nil
	}
	return &poolJSON{
		Admin:            crypto.MustNewAddress(pool.Admin[:]).String(),
		TotalBalance:     pool.TotalBalance.String(),
		TotalDistributed: pool.TotalDistributed.String(),
		Active:           pool.Active,
		CreatedAt:        pool.CreatedAt,
		UpdatedAt:        pool.UpdatedAt,
	}
}

func rewardToJSON(index uint32, reward *rewards.Reward) *rewardJSON {
	if reward == nil {
		return nil
	}
	out := &rewardJSON{
		Index:     index,
		Recipient: crypto.MustNewAddress(reward.Recipient[:]).String(),
		Kind:      reward.Type.Kind.String(),
		ExpiresAt: reward.ExpiresAt,
		Claimed:   reward.Claimed,
		ClaimedAt: reward.ClaimedAt,
		CreatedAt: reward.CreatedAt,
	}
	if reward.Type.Kind == rewards.RewardFixed && reward.Type.Amount != nil {
		out.Amount = reward.Type.Amount.String()
	}
	if reward.Type.Kind == rewards.RewardPercentage {
		out.RateBps = reward.Type.RateBps
	}
	if reward.Payout != nil {
		out.Payout = reward.Payout.String()
	}
	return out
}

// rewardsErrorCode maps domain sentinels onto distinguishable RPC errors so
// a client can render "already claimed" differently from "expired".
func rewardsErrorCode(err error) (int, int, string) {
	switch {
	case errors.Is(err, rewards.ErrAlreadyInitialized):
		return http.StatusConflict, codeRewardsConflict, "already_initialized"
	case errors.Is(err, rewards.ErrPoolNotFound):
		return http.StatusNotFound, codeRewardsNotFound, "pool_not_found"
	case errors.Is(err, rewards.ErrPoolInactive):
		return http.StatusConflict, codeRewardsConflict, "pool_inactive"
	case errors.Is(err, rewards.ErrUnauthorized):
		return http.StatusForbidden, codeRewardsUnauthorized, "unauthorized"
	case errors.Is(err, rewards.ErrInvalidAmount):
		return http.StatusBadRequest, codeRewardsInvalidParams, "invalid_amount"
	case errors.Is(err, rewards.ErrInvalidRewardType):
		return http.StatusBadRequest, codeRewardsInvalidParams, "invalid_reward_type"
	case errors.Is(err, rewards.ErrInvalidExpiry):
		return http.StatusBadRequest, codeRewardsInvalidParams, "invalid_expiry"
	case errors.Is(err, rewards.ErrRewardNotFound):
		return http.StatusNotFound, codeRewardsNotFound, "reward_not_found"
	case errors.Is(err, rewards.ErrAlreadyClaimed):
		return http.StatusConflict, codeRewardsConflict, "already_claimed"
	case errors.Is(err, rewards.ErrRewardExpired):
		return http.StatusConflict, codeRewardsConflict, "reward_expired"
	case errors.Is(err, rewards.ErrInsufficientPoolBalance):
		return http.StatusConflict, codeRewardsConflict, "insufficient_pool_balance"
	case errors.Is(err, rewards.ErrOverflow):
		return http.StatusBadRequest, codeRewardsInvalidParams, "overflow"
	case errors.Is(err, rewards.ErrTransferFailed):
		return http.StatusBadGateway, codeRewardsInternal, "transfer_failed"
	default:
		return http.StatusInternalServerError, codeRewardsInternal, "internal_error"
	}
}

func (s *Server) writeRewardsError(w http.ResponseWriter, id interface{}, err error) {
	status, code, message := rewardsErrorCode(err)
	writeError(w, status, id, code, message, err.Error())
}

func decodeSingleParam(req *RPCRequest, out interface{}) *RPCError {
	if len(req.Params) != 1 {
		return &RPCError{Code: codeRewardsInvalidParams, Message: "invalid_params", Data: "exactly one parameter object expected"}
	}
	if err := json.Unmarshal(req.Params[0], out); err != nil {
		return &RPCError{Code: codeRewardsInvalidParams, Message: "invalid_params", Data: err.Error()}
	}
	return nil
}

func parseNonNegativeBigInt(raw string) (*big.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, errors.New("amount required")
	}
	value, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, errors.New("amount must be a base-10 integer")
	}
	if value.Sign() < 0 {
		return nil, errors.New("amount must not be negative")
	}
	return value, nil
}

func (s *Server) handleInitialize(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params initializeParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	initialBalance, err := parseNonNegativeBigInt(params.InitialBalance)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeRewardsInvalidParams, "invalid_params", err.Error())
		return
	}
	caller, rpcErr := s.verifyCaller(params.authParams, "rewards_initialize", params.InitialBalance)
	if rpcErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	pool, err := s.ledger.Initialize(caller, initialBalance)
	if err != nil {
		s.writeRewardsError(w, req.ID, err)
		return
	}
	s.metrics.UpdatePool(pool.TotalBalance, pool.TotalDistributed)
	writeResult(w, req.ID, poolToJSON(pool))
}

func (s *Server) handleDeposit(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params depositParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	amount, err := parseNonNegativeBigInt(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeRewardsInvalidParams, "invalid_params", err.Error())
		return
	}
	caller, rpcErr := s.verifyCaller(params.authParams, "rewards_deposit", params.Amount)
	if rpcErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	pool, err := s.ledger.Deposit(caller, amount)
	if err != nil {
		s.writeRewardsError(w, req.ID, err)
		return
	}
	s.metrics.ObserveDeposit()
	s.metrics.UpdatePool(pool.TotalBalance, pool.TotalDistributed)
	writeResult(w, req.ID, poolToJSON(pool))
}

func (s *Server) handleSetPoolStatus(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params setPoolStatusParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	caller, rpcErr := s.verifyCaller(params.authParams, "rewards_setPoolStatus", strconv.FormatBool(params.Active))
	if rpcErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	pool, err := s.ledger.SetPoolStatus(caller, params.Active)
	if err != nil {
		s.writeRewardsError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, poolToJSON(pool))
}

func (s *Server) handleAssign(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params assignParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	recipient, err := crypto.DecodeAddress(params.Recipient)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeRewardsInvalidParams, "invalid_params", err.Error())
		return
	}
	var rewardType rewards.RewardType
	switch strings.ToLower(strings.TrimSpace(params.Kind)) {
	case "fixed":
		amount, parseErr := parseNonNegativeBigInt(params.Amount)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeRewardsInvalidParams, "invalid_params", parseErr.Error())
			return
		}
		rewardType, err = rewards.NewFixedReward(amount)
	case "percentage":
		rewardType, err = rewards.NewPercentageReward(params.RateBps)
	default:
		writeError(w, http.StatusBadRequest, req.ID, codeRewardsInvalidParams, "invalid_params", "kind must be fixed or percentage")
		return
	}
	if err != nil {
		s.writeRewardsError(w, req.ID, err)
		return
	}
	caller, rpcErr := s.verifyCaller(params.authParams, "rewards_assign",
		params.Recipient,
		params.Kind,
		params.Amount,
		strconv.FormatUint(uint64(params.RateBps), 10),
		strconv.FormatInt(params.ExpiresAt, 10),
	)
	if rpcErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	index, err := s.ledger.Assign(caller, recipient.Raw(), rewardType, params.ExpiresAt)
	if err != nil {
		s.writeRewardsError(w, req.ID, err)
		return
	}
	s.metrics.ObserveAssignment(rewardType.Kind.String())
	writeResult(w, req.ID, assignResult{Index: index})
}

func (s *Server) handleClaim(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params claimParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	recipient, err := crypto.DecodeAddress(params.Recipient)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeRewardsInvalidParams, "invalid_params", err.Error())
		return
	}
	caller, rpcErr := s.verifyCaller(params.authParams, "rewards_claim",
		params.Recipient,
		strconv.FormatUint(uint64(params.Index), 10),
	)
	if rpcErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	payout, err := s.ledger.Claim(caller, recipient.Raw(), params.Index)
	if err != nil {
		_, _, reason := rewardsErrorCode(err)
		s.metrics.ObserveClaimError(reason)
		s.writeRewardsError(w, req.ID, err)
		return
	}
	if pool, poolErr := s.ledger.PoolInfo(); poolErr == nil {
		s.metrics.UpdatePool(pool.TotalBalance, pool.TotalDistributed)
	}
	list, listErr := s.ledger.UserRewards(recipient.Raw())
	if listErr == nil && uint64(params.Index) < uint64(len(list)) {
		s.metrics.ObserveClaim(list[params.Index].Type.Kind.String())
	}
	writeResult(w, req.ID, claimResult{Payout: payout.String()})
}

func (s *Server) handleGetPoolInfo(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	if len(req.Params) != 0 {
		writeError(w, http.StatusBadRequest, req.ID, codeRewardsInvalidParams, "invalid_params", "no parameters expected")
		return
	}
	pool, err := s.ledger.PoolInfo()
	if err != nil {
		s.writeRewardsError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, poolToJSON(pool))
}

func (s *Server) handleGetUserRewards(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params addressParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	recipient, err := crypto.DecodeAddress(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeRewardsInvalidParams, "invalid_params", err.Error())
		return
	}
	list, err := s.ledger.UserRewards(recipient.Raw())
	if err != nil {
		s.writeRewardsError(w, req.ID, err)
		return
	}
	out := make([]*rewardJSON, 0, len(list))
	for i, reward := range list {
		out = append(out, rewardToJSON(uint32(i), reward))
	}
	writeResult(w, req.ID, out)
}

func (s *Server) handleGetSettledBalance(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params addressParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	addr, err := crypto.DecodeAddress(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeRewardsInvalidParams, "invalid_params", err.Error())
		return
	}
	balance, err := s.ledger.SettledBalance(addr.Raw())
	if err != nil {
		s.writeRewardsError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, balanceResult{Address: params.Address, Settled: balance.String()})
}
