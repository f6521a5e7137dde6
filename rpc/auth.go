package rpc

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"rewardpool/crypto"
)

// authParams carry the caller identity proof attached to every mutating
// method: the claimed address, a recoverable signature over the canonical
// request digest, and replay protection via a per-caller nonce with expiry.
type authParams struct {
	Caller    string `json:"caller"`
	Signature string `json:"signature"`
	Nonce     uint64 `json:"nonce"`
	ExpiresAt int64  `json:"expiresAt"`
}

type nonceState struct {
	nonce   uint64
	expires time.Time
}

// SignatureDigest builds the canonical 32-byte digest a caller signs for a
// mutating method. Clients must use the exact same field order as the
// corresponding handler.
func SignatureDigest(method string, nonce uint64, expiresAt int64, fields ...string) []byte {
	parts := make([]string, 0, len(fields)+3)
	parts = append(parts, method, strconv.FormatUint(nonce, 10), strconv.FormatInt(expiresAt, 10))
	parts = append(parts, fields...)
	return ethcrypto.Keccak256([]byte(strings.Join(parts, "\n")))
}

// verifyCaller resolves and proves the caller identity for a mutating
// request. On success it returns the verified 20-byte address that the
// engine's authorization gate will compare against stored identities.
func (s *Server) verifyCaller(params authParams, method string, fields ...string) ([20]byte, *RPCError) {
	var zero [20]byte
	caller, err := crypto.DecodeAddress(params.Caller)
	if err != nil {
		return zero, &RPCError{Code: codeRewardsInvalidParams, Message: "invalid_params", Data: err.Error()}
	}
	now := s.nowFn()
	if params.ExpiresAt <= 0 {
		return zero, &RPCError{Code: codeRewardsInvalidParams, Message: "invalid_params", Data: "expiresAt required"}
	}
	expiry := time.Unix(params.ExpiresAt, 0)
	if !expiry.After(now) {
		return zero, &RPCError{Code: codeRewardsUnauthorized, Message: "unauthorized", Data: "request expired"}
	}
	if expiry.After(now.Add(s.nonceTTL)) {
		return zero, &RPCError{Code: codeRewardsInvalidParams, Message: "invalid_params", Data: fmt.Sprintf("expiresAt exceeds the %s window", s.nonceTTL)}
	}
	if params.Nonce == 0 {
		return zero, &RPCError{Code: codeRewardsInvalidParams, Message: "invalid_params", Data: "nonce must be greater than zero"}
	}

	sigHex := strings.TrimPrefix(strings.TrimSpace(params.Signature), "0x")
	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		return zero, &RPCError{Code: codeRewardsInvalidParams, Message: "invalid_params", Data: "signature must be hex encoded"}
	}
	digest := SignatureDigest(method, params.Nonce, params.ExpiresAt, fields...)
	recovered, err := crypto.RecoverAddress(digest, sig)
	if err != nil {
		return zero, &RPCError{Code: codeRewardsUnauthorized, Message: "unauthorized", Data: err.Error()}
	}
	if recovered.Raw() != caller.Raw() {
		return zero, &RPCError{Code: codeRewardsUnauthorized, Message: "unauthorized", Data: "signature does not match caller"}
	}
	if rpcErr := s.trackNonce(params.Caller, params.Nonce, expiry, now); rpcErr != nil {
		return zero, rpcErr
	}
	return caller.Raw(), nil
}

// trackNonce enforces strictly increasing nonces per caller while the
// previous nonce is still inside its validity window.
func (s *Server) trackNonce(caller string, nonce uint64, expiry time.Time, now time.Time) *RPCError {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, state := range s.nonceSeen {
		if !state.expires.After(now) {
			delete(s.nonceSeen, key)
		}
	}
	if state, ok := s.nonceSeen[caller]; ok && nonce <= state.nonce {
		return &RPCError{Code: codeRewardsUnauthorized, Message: "unauthorized", Data: "nonce already used"}
	}
	s.nonceSeen[caller] = nonceState{nonce: nonce, expires: expiry}
	return nil
}
