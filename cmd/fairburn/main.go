// Command fairburn drives the fee-burn settlement contract from the command
// line. State lives in a bbolt database under the data directory; every
// command prints its result as JSON on stdout.
package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/bitfsorg/fairburn-go/coin"
	"github.com/bitfsorg/fairburn-go/config"
	"github.com/bitfsorg/fairburn-go/contract"
	"github.com/bitfsorg/fairburn-go/ledger"
	"github.com/bitfsorg/fairburn-go/logger"
	"github.com/bitfsorg/fairburn-go/network"
	"github.com/bitfsorg/fairburn-go/paymail"
	"github.com/bitfsorg/fairburn-go/settle"
	"github.com/bitfsorg/fairburn-go/state"
	"github.com/bitfsorg/fairburn-go/tx"
	"github.com/bitfsorg/fairburn-go/wallet"
)

const usage = `usage: fairburn <command> [flags]

commands:
  init        store the initial fee rate
  settle      split funds and print the resulting instructions
  execute     run a JSON execute message
  config      print the stored fee rate
  update-fee  change the fee rate (admin only)
  sudo        run a JSON sudo message (admin only)
  resolve     resolve a paymail handle to an address
  verify      check a payout transaction against a settlement
  pool-utxos  list unspent outputs held by the pool address
  wallet-init create the encrypted funding wallet
  wallet      print the funding address and its balance
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New(strings.TrimSpace(usage))
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "init":
		return cmdInit(rest, out)
	case "settle":
		return cmdSettle(rest, out)
	case "execute":
		return cmdExecute(rest, out)
	case "config":
		return cmdConfig(rest, out)
	case "update-fee":
		return cmdUpdateFee(rest, out)
	case "sudo":
		return cmdSudo(rest, out)
	case "resolve":
		return cmdResolve(rest, out)
	case "verify":
		return cmdVerify(rest, out)
	case "pool-utxos":
		return cmdPoolUTXOs(rest, out)
	case "wallet-init":
		return cmdWalletInit(rest, out)
	case "wallet":
		return cmdWallet(rest, out)
	case "help", "-h", "--help":
		_, err := io.WriteString(out, usage)
		return err
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

// rpcTimeout bounds every node call.
const rpcTimeout = 30 * time.Second

// commonFlags are accepted by every command.
type commonFlags struct {
	dataDir    string
	dataDirSet bool
	envFile    string
	metrics    string
	password   string
	rpc        network.RPCConfig
}

func newFlagSet(name string) (*flag.FlagSet, *commonFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	c := &commonFlags{}
	fs.StringVar(&c.dataDir, "datadir", config.DefaultDataDir(), "data directory (or set FAIRBURN_DATADIR env var)")
	fs.StringVar(&c.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	fs.StringVar(&c.metrics, "metrics-file", "", "write Prometheus metrics in text format to this file on exit")
	fs.StringVar(&c.password, "password", "", "funding wallet password (or set FAIRBURN_WALLET_PASSWORD env var)")
	fs.StringVar(&c.rpc.URL, "rpc-url", "", "node JSON-RPC URL (or set FAIRBURN_RPC_URL env var)")
	fs.StringVar(&c.rpc.User, "rpc-user", "", "node RPC user (or set FAIRBURN_RPC_USER env var)")
	fs.StringVar(&c.rpc.Password, "rpc-pass", "", "node RPC password (or set FAIRBURN_RPC_PASS env var)")
	return fs, c
}

// app holds the wired components shared by commands.
type app struct {
	cfg      config.Config
	log      *zap.Logger
	store    *state.BoltStore
	contract *contract.Contract
	rpc      network.RPCConfig
	password string
}

// open loads configuration and wires the store, engine and contract.
func open(c *commonFlags) (*app, error) {
	if err := config.LoadEnv(c.envFile); err != nil {
		return nil, err
	}
	dataDir := c.dataDir
	if v := os.Getenv(config.EnvPrefix + "DATADIR"); v != "" && !c.dataDirSet {
		dataDir = v
	}

	cfg, err := config.LoadConfig(config.ConfigPath(dataDir))
	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, err
	}
	cfg = config.ApplyEnv(cfg)
	cfg.DataDir = dataDir
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, err
	}

	engine, err := settle.NewEngine(settle.Params{NativeDenom: cfg.NativeDenom, PoolKey: cfg.PoolKey})
	if err != nil {
		return nil, err
	}

	store, err := state.OpenBoltStore(config.StatePath(cfg.DataDir))
	if err != nil {
		return nil, err
	}

	ct, err := contract.New(store, engine, contract.Options{
		ValidateAddress: tx.ValidateAddress,
		Logger:          log,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return &app{cfg: cfg, log: log, store: store, contract: ct, rpc: c.rpc, password: c.password}, nil
}

func (a *app) close() {
	_ = a.log.Sync()
	_ = a.store.Close()
}

func (a *app) gate() *contract.Gate {
	return contract.NewGate(a.contract, contract.NewStaticAuthorizer(a.cfg.Admins...))
}

func (a *app) resolver() *paymail.Resolver {
	var dns paymail.DNSResolver
	if a.cfg.DNSUpstream != "" {
		dns = paymail.NewDNSSECResolver(a.cfg.DNSUpstream)
	}
	return paymail.NewResolver(nil, dns, a.cfg.IsMainnet(), a.log)
}

// node connects to the configured node RPC endpoint.
func (a *app) node() (network.Node, error) {
	env := make(map[string]string)
	for _, k := range []string{network.EnvRPCURL, network.EnvRPCUser, network.EnvRPCPass} {
		env[k] = os.Getenv(k)
	}
	cfg, err := network.ResolveConfig(&a.rpc, env, a.cfg.Network)
	if err != nil {
		return nil, err
	}
	return network.NewRPCClient(*cfg), nil
}

// walletPassword prefers the flag over FAIRBURN_WALLET_PASSWORD.
func (a *app) walletPassword() (string, error) {
	pw := a.password
	if pw == "" {
		pw = os.Getenv(config.EnvPrefix + "WALLET_PASSWORD")
	}
	if pw == "" {
		return "", errors.New("wallet password required (--password or FAIRBURN_WALLET_PASSWORD)")
	}
	return pw, nil
}

// fundingKey opens the keystore and derives the first funding key.
func (a *app) fundingKey() (*wallet.KeyPair, error) {
	pw, err := a.walletPassword()
	if err != nil {
		return nil, err
	}
	seed, err := wallet.OpenKeystore(wallet.KeystorePath(a.cfg.DataDir), pw)
	if err != nil {
		return nil, err
	}
	w, err := wallet.NewWallet(seed, a.cfg.IsMainnet())
	if err != nil {
		return nil, err
	}
	return w.FundingKey(0)
}

// payoutParams renders against the configured pool address.
func (a *app) payoutParams() (tx.PayoutParams, error) {
	if a.cfg.PoolAddress == "" {
		return tx.PayoutParams{}, errors.New("pooladdress is not configured")
	}
	return tx.PayoutParams{NativeDenom: a.cfg.NativeDenom, PoolAddress: a.cfg.PoolAddress}, nil
}

// withApp parses args, opens the app and runs fn.
func withApp(fs *flag.FlagSet, c *commonFlags, args []string, fn func(*app) error) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	c.dataDirSet = fs.Changed("datadir")
	a, err := open(c)
	if err != nil {
		return err
	}
	defer a.close()

	err = fn(a)
	if c.metrics != "" {
		if werr := prometheus.WriteToTextfile(c.metrics, prometheus.DefaultGatherer); werr != nil {
			return errors.Join(err, fmt.Errorf("write metrics: %w", werr))
		}
	}
	return err
}

func cmdInit(args []string, out io.Writer) error {
	fs, c := newFlagSet("init")
	feeBps := fs.Uint64("fee-bps", 0, "fee rate in basis points (0-10000)")
	return withApp(fs, c, args, func(a *app) error {
		path := config.ConfigPath(a.cfg.DataDir)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			if err := config.SaveConfig(path, a.cfg); err != nil {
				return err
			}
		}
		resp, err := a.contract.Instantiate(contract.InstantiateMsg{FeeBps: *feeBps})
		if err != nil {
			return err
		}
		return writeJSON(out, resp)
	})
}

// settleOutput is printed by settle.
type settleOutput struct {
	*contract.Response
	Digest     string      `json:"digest"`
	Payout     *tx.Payout  `json:"payout,omitempty"`
	Simulation *simulation `json:"simulation,omitempty"`
}

// simulation reports balances after executing a settlement on an
// in-memory ledger where the contract account holds exactly the funds.
type simulation struct {
	Balances map[string]coin.Coins `json:"balances"`
	Burned   coin.Coins            `json:"burned"`
}

const contractAccount = "fairburn-contract"

func simulate(funds coin.Coins, resp *contract.Response, poolKey string) (*simulation, error) {
	bank := ledger.NewBank(poolKey)
	if err := bank.Mint(contractAccount, funds); err != nil {
		return nil, err
	}
	if err := bank.Execute(contractAccount, resp.Instructions); err != nil {
		return nil, err
	}

	sim := &simulation{Balances: make(map[string]coin.Coins)}
	accounts := []string{contractAccount, poolKey}
	for _, in := range resp.Instructions {
		if in.Kind == settle.InstructionTransfer {
			accounts = append(accounts, in.To)
		}
	}
	for _, acct := range accounts {
		if bal := bank.Balances(acct); len(bal) > 0 {
			sim.Balances[acct] = bal
		}
	}
	agg, err := settle.Aggregate(funds)
	if err != nil {
		return nil, err
	}
	for _, c := range agg {
		if supply := bank.Supply(c.Denom); supply.Lt(c.Amount) {
			sim.Burned = append(sim.Burned, coin.NewFromInt(new(uint256.Int).Sub(c.Amount, supply), c.Denom))
		}
	}
	return sim, nil
}

func cmdSettle(args []string, out io.Writer) error {
	fs, c := newFlagSet("settle")
	funds := fs.String("funds", "", "attached funds, e.g. 1000sat,50uatom")
	recipient := fs.String("recipient", "", "recipient address or paymail handle")
	var po payoutOptions
	fs.BoolVar(&po.render, "payout", false, "also render a payout transaction (unfunded unless --fund)")
	fs.BoolVar(&po.fund, "fund", false, "fund and sign the payout from the funding wallet")
	fs.BoolVar(&po.broadcast, "broadcast", false, "broadcast the signed payout")
	fs.BoolVar(&po.simulate, "simulate", false, "execute the instructions on an in-memory ledger")
	return withApp(fs, c, args, func(a *app) error {
		coins, err := coin.ParseCoins(*funds)
		if err != nil {
			return err
		}
		msg, err := resolveSettleMsg(a, *recipient)
		if err != nil {
			return err
		}
		resp, err := a.contract.Settle(coins, msg)
		if err != nil {
			return err
		}
		if po.simulate {
			if po.sim, err = simulate(coins, resp, a.cfg.PoolKey); err != nil {
				return err
			}
		}
		return writeSettlement(out, a, resp, po)
	})
}

func cmdExecute(args []string, out io.Writer) error {
	fs, c := newFlagSet("execute")
	funds := fs.String("funds", "", "attached funds, e.g. 1000sat")
	raw := fs.String("msg", "", `execute message, e.g. {"fair_burn":{}}`)
	return withApp(fs, c, args, func(a *app) error {
		coins, err := coin.ParseCoins(*funds)
		if err != nil {
			return err
		}
		msg, err := contract.ParseExecuteMsg([]byte(*raw))
		if err != nil {
			return err
		}
		if msg.FairBurn != nil && msg.FairBurn.Recipient != nil {
			resolved, err := resolveSettleMsg(a, *msg.FairBurn.Recipient)
			if err != nil {
				return err
			}
			msg.FairBurn = &resolved
		}
		resp, err := a.contract.Execute(coins, msg)
		if err != nil {
			return err
		}
		return writeSettlement(out, a, resp, payoutOptions{})
	})
}

func cmdConfig(args []string, out io.Writer) error {
	fs, c := newFlagSet("config")
	return withApp(fs, c, args, func(a *app) error {
		resp, err := a.contract.Config()
		if err != nil {
			return err
		}
		return writeJSON(out, resp)
	})
}

func cmdUpdateFee(args []string, out io.Writer) error {
	fs, c := newFlagSet("update-fee")
	caller := fs.String("caller", "", "admin address authorizing the change")
	feeBps := fs.Uint64("fee-bps", 0, "new fee rate in basis points (0-10000)")
	return withApp(fs, c, args, func(a *app) error {
		msg := contract.UpdateFeeRateMsg{}
		if fs.Changed("fee-bps") {
			msg.FeeBps = feeBps
		}
		resp, err := a.gate().UpdateFeeRate(*caller, msg)
		if err != nil {
			return err
		}
		return writeJSON(out, resp)
	})
}

func cmdSudo(args []string, out io.Writer) error {
	fs, c := newFlagSet("sudo")
	caller := fs.String("caller", "", "admin address authorizing the message")
	raw := fs.String("msg", "", `sudo message, e.g. {"update_config":{"fair_burn_bps":100}}`)
	return withApp(fs, c, args, func(a *app) error {
		msg, err := contract.ParseSudoMsg([]byte(*raw))
		if err != nil {
			return err
		}
		resp, err := a.gate().Sudo(*caller, msg)
		if err != nil {
			return err
		}
		return writeJSON(out, resp)
	})
}

func cmdResolve(args []string, out io.Writer) error {
	fs, c := newFlagSet("resolve")
	return withApp(fs, c, args, func(a *app) error {
		if fs.NArg() != 1 {
			return errors.New("resolve takes exactly one handle")
		}
		addr, err := a.resolver().ResolveRecipient(fs.Arg(0))
		if err != nil {
			return err
		}
		return writeJSON(out, map[string]string{"handle": fs.Arg(0), "address": addr})
	})
}

func cmdVerify(args []string, out io.Writer) error {
	fs, c := newFlagSet("verify")
	funds := fs.String("funds", "", "funds the settlement was computed from")
	recipient := fs.String("recipient", "", "recipient address or paymail handle")
	rawHex := fs.String("tx", "", "payout transaction hex")
	broadcast := fs.Bool("broadcast", false, "broadcast the transaction once it verifies")
	return withApp(fs, c, args, func(a *app) error {
		rawTx, err := hex.DecodeString(*rawHex)
		if err != nil {
			return fmt.Errorf("decode tx hex: %w", err)
		}
		coins, err := coin.ParseCoins(*funds)
		if err != nil {
			return err
		}
		msg, err := resolveSettleMsg(a, *recipient)
		if err != nil {
			return err
		}
		resp, err := a.contract.Settle(coins, msg)
		if err != nil {
			return err
		}
		params, err := a.payoutParams()
		if err != nil {
			return err
		}
		result := &settle.Result{Instructions: resp.Instructions, Events: resp.Events}
		if err := tx.VerifyPayout(rawTx, result, params); err != nil {
			return err
		}
		o := map[string]any{"valid": true, "digest": result.DigestHex()}
		if *broadcast {
			node, err := a.node()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
			defer cancel()
			txid, err := node.BroadcastTx(ctx, hex.EncodeToString(rawTx))
			if err != nil {
				return err
			}
			a.log.Info("payout broadcast", zap.String("txid", txid), zap.String("digest", result.DigestHex()))
			o["txid"] = txid
		}
		return writeJSON(out, o)
	})
}

func cmdPoolUTXOs(args []string, out io.Writer) error {
	fs, c := newFlagSet("pool-utxos")
	return withApp(fs, c, args, func(a *app) error {
		if a.cfg.PoolAddress == "" {
			return errors.New("pooladdress is not configured")
		}
		node, err := a.node()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
		defer cancel()
		utxos, err := node.ListUnspent(ctx, a.cfg.PoolAddress)
		if err != nil {
			return err
		}
		return writeJSON(out, map[string]any{
			"address": a.cfg.PoolAddress,
			"total":   network.TotalAmount(utxos),
			"utxos":   utxos,
		})
	})
}

func cmdWalletInit(args []string, out io.Writer) error {
	fs, c := newFlagSet("wallet-init")
	mnemonic := fs.String("mnemonic", "", "restore from this BIP39 mnemonic instead of generating one")
	passphrase := fs.String("passphrase", "", "optional BIP39 passphrase")
	return withApp(fs, c, args, func(a *app) error {
		pw, err := a.walletPassword()
		if err != nil {
			return err
		}
		words, generated := *mnemonic, false
		if words == "" {
			if words, err = wallet.GenerateMnemonic(wallet.Mnemonic24Words); err != nil {
				return err
			}
			generated = true
		}
		seed, err := wallet.SeedFromMnemonic(words, *passphrase)
		if err != nil {
			return err
		}
		if err := wallet.CreateKeystore(wallet.KeystorePath(a.cfg.DataDir), seed, pw, wallet.DefaultKDFParams); err != nil {
			return err
		}
		w, err := wallet.NewWallet(seed, a.cfg.IsMainnet())
		if err != nil {
			return err
		}
		kp, err := w.FundingKey(0)
		if err != nil {
			return err
		}
		o := map[string]string{"address": kp.Address, "path": kp.Path}
		if generated {
			o["mnemonic"] = words
		}
		return writeJSON(out, o)
	})
}

func cmdWallet(args []string, out io.Writer) error {
	fs, c := newFlagSet("wallet")
	balance := fs.Bool("balance", false, "query the node for the funding balance")
	return withApp(fs, c, args, func(a *app) error {
		kp, err := a.fundingKey()
		if err != nil {
			return err
		}
		o := map[string]any{"address": kp.Address, "path": kp.Path}
		if *balance {
			node, err := a.node()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
			defer cancel()
			utxos, err := node.ListUnspent(ctx, kp.Address)
			if err != nil {
				return err
			}
			o["balance"] = network.TotalAmount(utxos)
		}
		return writeJSON(out, o)
	})
}

// resolveSettleMsg turns a recipient flag into a SettleMsg, resolving
// paymail handles to addresses.
func resolveSettleMsg(a *app, recipient string) (contract.SettleMsg, error) {
	if recipient == "" {
		return contract.SettleMsg{}, nil
	}
	addr, err := a.resolver().ResolveRecipient(recipient)
	if err != nil {
		return contract.SettleMsg{}, err
	}
	return contract.SettleMsg{Recipient: &addr}, nil
}

// payoutOptions select how far settle takes the payout transaction.
type payoutOptions struct {
	render    bool
	fund      bool
	broadcast bool
	simulate  bool
	sim       *simulation
}

func writeSettlement(out io.Writer, a *app, resp *contract.Response, po payoutOptions) error {
	result := &settle.Result{Instructions: resp.Instructions, Events: resp.Events}
	o := settleOutput{Response: resp, Digest: result.DigestHex(), Simulation: po.sim}
	if po.fund || po.broadcast {
		po.render = true
	}
	if po.broadcast && !po.fund {
		return errors.New("--broadcast requires --fund")
	}
	if !po.render {
		return writeJSON(out, o)
	}

	params, err := a.payoutParams()
	if err != nil {
		return err
	}

	var node network.Node
	if po.fund {
		if node, err = a.node(); err != nil {
			return err
		}
		kp, err := a.fundingKey()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
		defer cancel()
		utxos, err := node.ListUnspent(ctx, kp.Address)
		if err != nil {
			return err
		}
		if params.FeeInputs, err = wallet.FundingInputs(utxos, kp); err != nil {
			return err
		}
		params.ChangeAddress = kp.Address
	}

	p, err := tx.BuildPayout(result, params)
	if err != nil {
		return err
	}
	if po.fund {
		if err := tx.SignPayout(p); err != nil {
			return err
		}
	}
	if po.broadcast {
		ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
		defer cancel()
		txid, err := node.BroadcastTx(ctx, p.Hex)
		if err != nil {
			return err
		}
		a.log.Info("payout broadcast", zap.String("txid", txid), zap.String("digest", o.Digest))
	}
	o.Payout = p
	return writeJSON(out, o)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
