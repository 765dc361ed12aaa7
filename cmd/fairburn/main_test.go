package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/fairburn-go/contract"
	"github.com/bitfsorg/fairburn-go/settle"
)

const (
	poolAddress      = "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2"
	recipientAddress = "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"
)

type cli struct {
	t       *testing.T
	dataDir string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	return &cli{t: t, dataDir: t.TempDir()}
}

func (c *cli) run(cmd string, args ...string) ([]byte, error) {
	c.t.Helper()
	full := append([]string{cmd,
		"--datadir", c.dataDir,
		"--env-file", filepath.Join(c.dataDir, "missing.env"),
	}, args...)
	var out bytes.Buffer
	err := run(full, &out)
	return out.Bytes(), err
}

func (c *cli) mustRun(cmd string, args ...string) []byte {
	c.t.Helper()
	out, err := c.run(cmd, args...)
	require.NoError(c.t, err)
	return out
}

type settleJSON struct {
	Instructions []struct {
		Kind  string `json:"kind"`
		To    string `json:"to"`
		Coins []struct {
			Denom string `json:"denom"`
		} `json:"coins"`
	} `json:"instructions"`
	Events []settle.Event `json:"events"`
	Digest string         `json:"digest"`
	Payout *struct {
		Hex  string `json:"hex"`
		TxID string `json:"txid"`
	} `json:"payout"`
}

func TestRun_NoArgsAndUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run(nil, &out))
	assert.ErrorContains(t, run([]string{"frobnicate"}, &out), "unknown command")

	out.Reset()
	require.NoError(t, run([]string{"help"}, &out))
	assert.Contains(t, out.String(), "update-fee")
}

func TestRun_InitAndConfig(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("init", "--fee-bps", "5000")
	var resp contract.Response
	require.NoError(t, json.Unmarshal(out, &resp))
	require.Len(t, resp.Events, 1)
	assert.Equal(t, contract.EventInstantiate, resp.Events[0].Type)
	v, ok := resp.Events[0].Attribute(contract.AttrFeePercent)
	require.True(t, ok)
	assert.Equal(t, "50", v)

	assert.FileExists(t, filepath.Join(c.dataDir, "config"))

	out = c.mustRun("config")
	var cfg contract.ConfigResponse
	require.NoError(t, json.Unmarshal(out, &cfg))
	assert.Equal(t, uint64(5000), cfg.FeeBps)
	assert.Equal(t, "50", cfg.FeePercent)
}

func TestRun_InitRejectsOutOfRangeRate(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("init", "--fee-bps", "10001")
	assert.Error(t, err)
}

func TestRun_ConfigBeforeInit(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("config")
	assert.Error(t, err)
}

func TestRun_Settle(t *testing.T) {
	c := newCLI(t)
	c.mustRun("init", "--fee-bps", "5000")

	out := c.mustRun("settle", "--funds", "1000sat")
	var res settleJSON
	require.NoError(t, json.Unmarshal(out, &res))
	require.Len(t, res.Instructions, 2)
	assert.Equal(t, "burn", res.Instructions[0].Kind)
	assert.Equal(t, "fund-pool", res.Instructions[1].Kind)
	assert.Len(t, res.Digest, 64)
	assert.Nil(t, res.Payout)

	out = c.mustRun("settle", "--funds", "1000sat,10uatom", "--recipient", recipientAddress)
	res = settleJSON{}
	require.NoError(t, json.Unmarshal(out, &res))
	require.Len(t, res.Instructions, 3)
	assert.Equal(t, "burn", res.Instructions[0].Kind)
	assert.Equal(t, "transfer", res.Instructions[1].Kind)
	assert.Equal(t, recipientAddress, res.Instructions[1].To)
	assert.Equal(t, "fund-pool", res.Instructions[2].Kind)
}

func TestRun_SettleErrors(t *testing.T) {
	c := newCLI(t)
	c.mustRun("init", "--fee-bps", "100")

	_, err := c.run("settle")
	assert.ErrorIs(t, err, settle.ErrEmptyInput)

	_, err = c.run("settle", "--funds", "0sat")
	assert.ErrorIs(t, err, settle.ErrZeroAmount)

	_, err = c.run("settle", "--funds", "10sat", "--recipient", "not-an-address")
	assert.ErrorIs(t, err, settle.ErrInvalidRecipient)

	_, err = c.run("settle", "--funds", "10sat", "--payout")
	assert.ErrorContains(t, err, "pooladdress")
}

func TestRun_SettlePayoutAndVerify(t *testing.T) {
	t.Setenv("FAIRBURN_POOLADDRESS", poolAddress)
	c := newCLI(t)
	c.mustRun("init", "--fee-bps", "2500")

	out := c.mustRun("settle", "--funds", "1000sat", "--recipient", recipientAddress, "--payout")
	var res settleJSON
	require.NoError(t, json.Unmarshal(out, &res))
	require.NotNil(t, res.Payout)
	require.NotEmpty(t, res.Payout.Hex)
	assert.Len(t, res.Payout.TxID, 64)

	out = c.mustRun("verify", "--funds", "1000sat", "--recipient", recipientAddress, "--tx", res.Payout.Hex)
	var verified map[string]any
	require.NoError(t, json.Unmarshal(out, &verified))
	assert.Equal(t, true, verified["valid"])
	assert.Equal(t, res.Digest, verified["digest"])

	_, err := c.run("verify", "--funds", "2000sat", "--recipient", recipientAddress, "--tx", res.Payout.Hex)
	assert.Error(t, err)

	_, err = c.run("verify", "--funds", "1000sat", "--tx", "zz")
	assert.ErrorContains(t, err, "decode tx hex")
}

func TestRun_Execute(t *testing.T) {
	c := newCLI(t)
	c.mustRun("init", "--fee-bps", "1000")

	out := c.mustRun("execute", "--funds", "100sat", "--msg", `{"fair_burn":{"recipient":"`+recipientAddress+`"}}`)
	var res settleJSON
	require.NoError(t, json.Unmarshal(out, &res))
	require.Len(t, res.Instructions, 2)
	assert.Equal(t, "transfer", res.Instructions[1].Kind)

	_, err := c.run("execute", "--funds", "100sat", "--msg", `{"other":{}}`)
	assert.ErrorIs(t, err, contract.ErrInvalidMsg)
}

func TestRun_UpdateFeeRequiresAdmin(t *testing.T) {
	t.Setenv("FAIRBURN_ADMINS", "admin1,admin2")
	c := newCLI(t)
	c.mustRun("init", "--fee-bps", "100")

	_, err := c.run("update-fee", "--caller", "mallory", "--fee-bps", "200")
	assert.ErrorIs(t, err, contract.ErrUnauthorized)

	_, err = c.run("update-fee", "--caller", "admin2", "--fee-bps", "10001")
	assert.Error(t, err)

	c.mustRun("update-fee", "--caller", "admin2", "--fee-bps", "200")
	var cfg contract.ConfigResponse
	require.NoError(t, json.Unmarshal(c.mustRun("config"), &cfg))
	assert.Equal(t, uint64(200), cfg.FeeBps)

	// Omitting --fee-bps leaves the rate unchanged.
	c.mustRun("update-fee", "--caller", "admin1")
	require.NoError(t, json.Unmarshal(c.mustRun("config"), &cfg))
	assert.Equal(t, uint64(200), cfg.FeeBps)
}

func TestRun_Sudo(t *testing.T) {
	t.Setenv("FAIRBURN_ADMINS", "root")
	c := newCLI(t)
	c.mustRun("init", "--fee-bps", "100")

	out := c.mustRun("sudo", "--caller", "root", "--msg", `{"update_config":{"fair_burn_bps":25}}`)
	var resp contract.Response
	require.NoError(t, json.Unmarshal(out, &resp))
	require.Len(t, resp.Events, 1)
	v, ok := resp.Events[0].Attribute(contract.AttrFeePercent)
	require.True(t, ok)
	assert.Equal(t, "0.25", v)

	_, err := c.run("sudo", "--caller", "root", "--msg", `{"update_config":{"fee_bps":25}}`)
	assert.ErrorIs(t, err, contract.ErrInvalidMsg)
}

func TestRun_ResolvePlainAddress(t *testing.T) {
	c := newCLI(t)
	out := c.mustRun("resolve", recipientAddress)
	var got map[string]string
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, recipientAddress, got["address"])

	_, err := c.run("resolve")
	assert.Error(t, err)
}

func TestRun_InvalidEnvironmentConfig(t *testing.T) {
	t.Setenv("FAIRBURN_NETWORK", "devnet")
	c := newCLI(t)
	_, err := c.run("config")
	assert.Error(t, err)
}

// fakeNode answers sendrawtransaction and listunspent.
func fakeNode(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     int64  `json:"id"`
			Method string `json:"method"`
			Params []any  `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var result any
		switch req.Method {
		case "sendrawtransaction":
			result = "broadcast-txid"
		case "listunspent":
			addr := req.Params[2].([]any)[0].(string)
			script := "76a914" + strings.Repeat("11", 20) + "88ac"
			result = []map[string]any{
				{"txid": strings.Repeat("aa", 32), "vout": 0, "amount": 0.0000015, "address": addr, "scriptPubKey": script},
				{"txid": strings.Repeat("bb", 32), "vout": 3, "amount": 1, "address": addr, "scriptPubKey": script},
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": req.ID, "result": result})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRun_VerifyBroadcast(t *testing.T) {
	t.Setenv("FAIRBURN_POOLADDRESS", poolAddress)
	node := fakeNode(t)
	c := newCLI(t)
	c.mustRun("init", "--fee-bps", "100")

	var res settleJSON
	require.NoError(t, json.Unmarshal(c.mustRun("settle", "--funds", "5000sat", "--payout"), &res))
	require.NotNil(t, res.Payout)

	// Mainnet has no preset node.
	_, err := c.run("verify", "--funds", "5000sat", "--tx", res.Payout.Hex, "--broadcast")
	assert.Error(t, err)

	out := c.mustRun("verify", "--funds", "5000sat", "--tx", res.Payout.Hex, "--broadcast", "--rpc-url", node.URL)
	var got map[string]any
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, "broadcast-txid", got["txid"])
}

func TestRun_PoolUTXOs(t *testing.T) {
	node := fakeNode(t)
	t.Setenv("FAIRBURN_RPC_URL", node.URL)
	c := newCLI(t)

	_, err := c.run("pool-utxos")
	assert.ErrorContains(t, err, "pooladdress")

	t.Setenv("FAIRBURN_POOLADDRESS", poolAddress)
	out := c.mustRun("pool-utxos")
	var got struct {
		Address string `json:"address"`
		Total   uint64 `json:"total"`
		UTXOs   []struct {
			TxID   string `json:"txid"`
			Amount uint64 `json:"amount"`
		} `json:"utxos"`
	}
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, poolAddress, got.Address)
	assert.Equal(t, uint64(100_000_150), got.Total)
	require.Len(t, got.UTXOs, 2)
	assert.Equal(t, uint64(150), got.UTXOs[0].Amount)
}

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestRun_WalletInit(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("wallet-init")
	assert.ErrorContains(t, err, "password")

	out := c.mustRun("wallet-init", "--password", "pw")
	var created map[string]string
	require.NoError(t, json.Unmarshal(out, &created))
	assert.Len(t, strings.Fields(created["mnemonic"]), 24)
	assert.Equal(t, "m/44'/236'/0'/0/0", created["path"])

	_, err = c.run("wallet-init", "--password", "pw")
	assert.Error(t, err, "existing keystore is not overwritten")

	t.Setenv("FAIRBURN_WALLET_PASSWORD", "pw")
	var shown map[string]any
	require.NoError(t, json.Unmarshal(c.mustRun("wallet"), &shown))
	assert.Equal(t, created["address"], shown["address"])

	_, err = c.run("wallet", "--password", "wrong")
	assert.Error(t, err)
}

func TestRun_SettleFundAndBroadcast(t *testing.T) {
	t.Setenv("FAIRBURN_POOLADDRESS", poolAddress)
	t.Setenv("FAIRBURN_WALLET_PASSWORD", "pw")
	t.Setenv("FAIRBURN_RPC_URL", fakeNode(t).URL)
	c := newCLI(t)
	c.mustRun("init", "--fee-bps", "100")

	var restored map[string]string
	require.NoError(t, json.Unmarshal(c.mustRun("wallet-init", "--mnemonic", testMnemonic), &restored))
	_, hasMnemonic := restored["mnemonic"]
	assert.False(t, hasMnemonic, "restored mnemonic is not echoed")

	var bal map[string]any
	require.NoError(t, json.Unmarshal(c.mustRun("wallet", "--balance"), &bal))
	assert.Equal(t, float64(100_000_150), bal["balance"])

	_, err := c.run("settle", "--funds", "5000sat", "--broadcast")
	assert.ErrorContains(t, err, "--fund")

	var res settleJSON
	require.NoError(t, json.Unmarshal(c.mustRun("settle", "--funds", "5000sat", "--fund", "--broadcast"), &res))
	require.NotNil(t, res.Payout)

	// The funded payout still carries the settlement outputs first.
	var verified map[string]any
	require.NoError(t, json.Unmarshal(c.mustRun("verify", "--funds", "5000sat", "--tx", res.Payout.Hex), &verified))
	assert.Equal(t, true, verified["valid"])
}

func TestRun_SettleSimulate(t *testing.T) {
	c := newCLI(t)
	c.mustRun("init", "--fee-bps", "5000")

	out := c.mustRun("settle", "--funds", "1000sat,10uatom", "--recipient", recipientAddress, "--simulate")
	var res struct {
		Simulation struct {
			Balances map[string][]struct {
				Denom  string `json:"denom"`
				Amount string `json:"amount"`
			} `json:"balances"`
			Burned []struct {
				Denom  string `json:"denom"`
				Amount string `json:"amount"`
			} `json:"burned"`
		} `json:"simulation"`
	}
	require.NoError(t, json.Unmarshal(out, &res))

	sim := res.Simulation
	assert.NotContains(t, sim.Balances, contractAccount, "contract keeps nothing")
	require.Len(t, sim.Balances[recipientAddress], 2)
	assert.Equal(t, "sat", sim.Balances[recipientAddress][0].Denom)
	assert.Equal(t, "500", sim.Balances[recipientAddress][0].Amount)
	require.Len(t, sim.Balances["fair-burn-pool"], 1)
	assert.Equal(t, "uatom", sim.Balances["fair-burn-pool"][0].Denom)
	assert.Equal(t, "5", sim.Balances["fair-burn-pool"][0].Amount)
	require.Len(t, sim.Burned, 1)
	assert.Equal(t, "500", sim.Burned[0].Amount)
}

func TestRun_MetricsFile(t *testing.T) {
	c := newCLI(t)
	c.mustRun("init", "--fee-bps", "100")

	path := filepath.Join(c.dataDir, "fairburn.prom")
	_, err := c.run("settle", "--funds", "0sat", "--metrics-file", path)
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err, "metrics are written even when the command fails")
	assert.Contains(t, string(data), `fairburn_settlements_total{status="error"}`)
}
