package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"rewardpool/crypto"
	"rewardpool/rpc"
)

const requestTTL = 120 * time.Second

type rpcPayload struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

func call(method string, params ...interface{}) {
	payload := rpcPayload{JSONRPC: "2.0", Method: method, Params: params, ID: 1}
	body, err := json.Marshal(payload)
	if err != nil {
		fmt.Printf("Error encoding request: %v\n", err)
		os.Exit(1)
	}
	req, err := http.NewRequest(http.MethodPost, rpcEndpoint, bytes.NewReader(body))
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := strings.TrimSpace(rpcAuthToken); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error calling %s: %v\n", rpcEndpoint, err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Printf("Error reading response: %v\n", err)
		os.Exit(1)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		fmt.Println(string(raw))
		return
	}
	fmt.Println(pretty.String())
}

// signedParams assembles the caller/signature envelope for a mutating
// method. The field order must match the server's handler exactly.
func signedParams(key *crypto.PrivateKey, method string, fields ...string) map[string]interface{} {
	nonce := uint64(time.Now().UnixNano())
	expiresAt := time.Now().Add(requestTTL).Unix()
	digest := rpc.SignatureDigest(method, nonce, expiresAt, fields...)
	sig, err := key.Sign(digest)
	if err != nil {
		fmt.Printf("Error signing request: %v\n", err)
		os.Exit(1)
	}
	return map[string]interface{}{
		"caller":    key.PubKey().Address().String(),
		"signature": hex.EncodeToString(sig),
		"nonce":     nonce,
		"expiresAt": expiresAt,
	}
}

func initializePool(initialBalance, keyFile string) {
	key := mustLoadKey(keyFile)
	params := signedParams(key, "rewards_initialize", initialBalance)
	params["initialBalance"] = initialBalance
	call("rewards_initialize", params)
}

func deposit(amount, keyFile string) {
	key := mustLoadKey(keyFile)
	params := signedParams(key, "rewards_deposit", amount)
	params["amount"] = amount
	call("rewards_deposit", params)
}

func setPoolStatus(status, keyFile string) {
	var active bool
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "active":
		active = true
	case "inactive":
		active = false
	default:
		fmt.Println("Error: status must be active or inactive.")
		os.Exit(1)
	}
	key := mustLoadKey(keyFile)
	params := signedParams(key, "rewards_setPoolStatus", strconv.FormatBool(active))
	params["active"] = active
	call("rewards_setPoolStatus", params)
}

func assignFixed(recipient, amount string, expiresAt int64, keyFile string) {
	key := mustLoadKey(keyFile)
	params := signedParams(key, "rewards_assign",
		recipient, "fixed", amount, "0", strconv.FormatInt(expiresAt, 10))
	params["recipient"] = recipient
	params["kind"] = "fixed"
	params["amount"] = amount
	if expiresAt > 0 {
		params["expiresAt"] = expiresAt
	}
	call("rewards_assign", params)
}

func assignPercentage(recipient, rateBps string, expiresAt int64, keyFile string) {
	rate, err := strconv.ParseUint(rateBps, 10, 32)
	if err != nil {
		fmt.Println("Error: Invalid basis-point rate.")
		os.Exit(1)
	}
	key := mustLoadKey(keyFile)
	params := signedParams(key, "rewards_assign",
		recipient, "percentage", "", strconv.FormatUint(rate, 10), strconv.FormatInt(expiresAt, 10))
	params["recipient"] = recipient
	params["kind"] = "percentage"
	params["rateBps"] = rate
	if expiresAt > 0 {
		params["expiresAt"] = expiresAt
	}
	call("rewards_assign", params)
}

func claim(index uint32, keyFile string) {
	key := mustLoadKey(keyFile)
	recipient := key.PubKey().Address().String()
	params := signedParams(key, "rewards_claim",
		recipient, strconv.FormatUint(uint64(index), 10))
	params["recipient"] = recipient
	params["index"] = index
	call("rewards_claim", params)
}

func getPoolInfo() {
	call("rewards_getPoolInfo")
}

func getUserRewards(address string) {
	call("rewards_getUserRewards", map[string]interface{}{"address": address})
}

func getSettledBalance(address string) {
	call("rewards_getSettledBalance", map[string]interface{}{"address": address})
}
