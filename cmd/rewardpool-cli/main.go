package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"rewardpool/crypto"
)

var rpcEndpoint = defaultRPCEndpoint() // Defaults to localhost, can be overridden via RPC_URL or --rpc flag
var rpcAuthToken = os.Getenv("REWARDPOOL_RPC_TOKEN")

func main() {
	args := os.Args[1:]
	var err error
	args, err = applyGlobalFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if len(args) < 1 {
		printUsage()
		return
	}

	command := args[0]
	switch command {
	case "generate-key":
		generateKey()
	case "address":
		requireArgs(args, 2, "Please provide a key file.")
		showAddress(args[1])
	case "init":
		requireArgs(args, 3, "Please provide an initial balance and a key file.")
		initializePool(args[1], args[2])
	case "deposit":
		requireArgs(args, 3, "Please provide an amount and a key file.")
		deposit(args[1], args[2])
	case "set-status":
		requireArgs(args, 3, "Please provide active|inactive and a key file.")
		setPoolStatus(args[1], args[2])
	case "assign-fixed":
		requireArgs(args, 4, "Please provide a recipient, an amount and a key file.")
		expiresAt := int64(0)
		if len(args) > 4 {
			expiresAt = parseInt64(args[4], "expiry timestamp")
		}
		assignFixed(args[1], args[2], expiresAt, args[3])
	case "assign-percentage":
		requireArgs(args, 4, "Please provide a recipient, a basis-point rate and a key file.")
		expiresAt := int64(0)
		if len(args) > 4 {
			expiresAt = parseInt64(args[4], "expiry timestamp")
		}
		assignPercentage(args[1], args[2], expiresAt, args[3])
	case "claim":
		requireArgs(args, 3, "Please provide a reward index and a key file.")
		index, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			fmt.Println("Error: Invalid reward index.")
			return
		}
		claim(uint32(index), args[2])
	case "pool-info":
		getPoolInfo()
	case "rewards":
		requireArgs(args, 2, "Please provide an address.")
		getUserRewards(args[1])
	case "settled":
		requireArgs(args, 2, "Please provide an address.")
		getSettledBalance(args[1])
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
	}
}

func requireArgs(args []string, n int, msg string) {
	if len(args) < n {
		fmt.Println("Error: " + msg)
		printUsage()
		os.Exit(1)
	}
}

func parseInt64(raw, what string) int64 {
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		fmt.Printf("Error: Invalid %s.\n", what)
		os.Exit(1)
	}
	return value
}

func applyGlobalFlags(args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--rpc":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("--rpc requires a URL")
			}
			i++
			rpcEndpoint = args[i]
		case strings.HasPrefix(arg, "--rpc="):
			rpcEndpoint = strings.TrimPrefix(arg, "--rpc=")
		default:
			out = append(out, arg)
		}
	}
	if strings.TrimSpace(rpcEndpoint) == "" {
		return nil, fmt.Errorf("rpc endpoint must not be empty")
	}
	return out, nil
}

func defaultRPCEndpoint() string {
	if url := strings.TrimSpace(os.Getenv("RPC_URL")); url != "" {
		return url
	}
	return "http://localhost:8080"
}

func generateKey() {
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		fmt.Printf("Error generating key: %v\n", err)
		os.Exit(1)
	}
	path := "wallet.key"
	if err := crypto.SaveKey(key, path); err != nil {
		fmt.Printf("Error saving key: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("New key saved to %s\n", path)
	fmt.Printf("Address: %s\n", key.PubKey().Address().String())
}

func showAddress(keyFile string) {
	key := mustLoadKey(keyFile)
	fmt.Println(key.PubKey().Address().String())
}

func mustLoadKey(keyFile string) *crypto.PrivateKey {
	key, err := crypto.LoadKey(keyFile)
	if err != nil {
		fmt.Printf("Error loading key file %s: %v\n", keyFile, err)
		os.Exit(1)
	}
	return key
}

func printUsage() {
	fmt.Println(`Usage: rewardpool-cli [--rpc URL] <command> [arguments]

Key management:
  generate-key                                     Create wallet.key in the current directory
  address <key-file>                               Print the address for a key file

Admin operations (signed with the admin key):
  init <initial-balance> <key-file>                Initialize the pool, caller becomes admin
  deposit <amount> <key-file>                      Credit the pool balance
  set-status <active|inactive> <key-file>          Toggle the pool circuit breaker
  assign-fixed <recipient> <amount> <key-file> [expires-at]
  assign-percentage <recipient> <rate-bps> <key-file> [expires-at]

Recipient operations:
  claim <index> <key-file>                         Claim the caller's reward at index

Queries:
  pool-info                                        Show the pool snapshot
  rewards <address>                                List an address' rewards
  settled <address>                                Show the total settled to an address`)
}
