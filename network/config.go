package network

import "fmt"

// Environment variables read by ResolveConfig.
const (
	EnvRPCURL  = "FAIRBURN_RPC_URL"
	EnvRPCUser = "FAIRBURN_RPC_USER"
	EnvRPCPass = "FAIRBURN_RPC_PASS"
)

// RPCConfig holds the connection parameters for a node's JSON-RPC interface.
type RPCConfig struct {
	URL      string `json:"url"`
	User     string `json:"user"`
	Password string `json:"password"`
	Network  string `json:"network"`
}

// NetworkPresets are local-node defaults. Mainnet has none and must be
// configured explicitly.
var NetworkPresets = map[string]RPCConfig{
	"regtest": {URL: "http://localhost:18332", User: "fairburn", Password: "fairburn"},
	"testnet": {URL: "http://localhost:18333", User: "fairburn", Password: "fairburn"},
}

// ResolveConfig layers flags over env over the network preset. It fails
// when no URL results.
func ResolveConfig(flags *RPCConfig, env map[string]string, network string) (*RPCConfig, error) {
	result := NetworkPresets[network]
	result.Network = network

	if v := env[EnvRPCURL]; v != "" {
		result.URL = v
	}
	if v := env[EnvRPCUser]; v != "" {
		result.User = v
	}
	if v := env[EnvRPCPass]; v != "" {
		result.Password = v
	}

	if flags != nil {
		if flags.URL != "" {
			result.URL = flags.URL
		}
		if flags.User != "" {
			result.User = flags.User
		}
		if flags.Password != "" {
			result.Password = flags.Password
		}
	}

	if result.URL == "" {
		return nil, fmt.Errorf("%w: %s has no RPC URL (set --rpc-url or %s)", ErrNotConfigured, network, EnvRPCURL)
	}
	return &result, nil
}
