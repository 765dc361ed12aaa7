// Package contract exposes the fair-burn entry points: initialization,
// settlement of attached funds, the config query, and the privileged fee
// rate update.
//
// A Contract holds no locks; the host serialises calls against one store.
package contract

import (
	"fmt"

	"github.com/bitfsorg/fairburn-go/coin"
	"github.com/bitfsorg/fairburn-go/feesplit"
	"github.com/bitfsorg/fairburn-go/metrics"
	"github.com/bitfsorg/fairburn-go/settle"
	"github.com/bitfsorg/fairburn-go/state"
	"go.uber.org/zap"
)

// Name and version reported by the instantiate event.
const (
	ContractName    = "fairburn"
	ContractVersion = "1.0.0"
)

// Event types emitted outside of settlement.
const (
	EventInstantiate  = "instantiate"
	EventUpdateConfig = "sudo-update-config"

	AttrAction          = "action"
	AttrContractName    = "contract_name"
	AttrContractVersion = "contract_version"
	AttrFeePercent      = "fee_percent"
)

// AddressValidator rejects malformed recipient addresses.
type AddressValidator func(addr string) error

// Options configures a Contract.
type Options struct {
	// ValidateAddress checks recipients. Nil accepts any non-empty string.
	ValidateAddress AddressValidator
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// Contract binds the settlement engine to a configuration store.
type Contract struct {
	store    state.Store
	engine   *settle.Engine
	validate AddressValidator
	log      *zap.Logger
}

// New creates a Contract.
func New(store state.Store, engine *settle.Engine, opts Options) (*Contract, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store", ErrNilParam)
	}
	if engine == nil {
		return nil, fmt.Errorf("%w: engine", ErrNilParam)
	}
	c := &Contract{
		store:    store,
		engine:   engine,
		validate: opts.ValidateAddress,
		log:      opts.Logger,
	}
	if c.validate == nil {
		c.validate = func(string) error { return nil }
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c, nil
}

// Instantiate stores the initial configuration.
func (c *Contract) Instantiate(msg InstantiateMsg) (*Response, error) {
	rate := feesplit.RateFromBasisPoints(msg.FeeBps)
	if err := rate.Validate(); err != nil {
		return nil, err
	}
	if err := c.store.SaveConfig(&state.Config{FeeRate: rate}); err != nil {
		return nil, fmt.Errorf("save config: %w", err)
	}

	c.log.Info("instantiated", zap.String("fee_percent", rate.Percent()))

	event := settle.NewEvent(EventInstantiate).
		Add(AttrAction, EventInstantiate).
		Add(AttrContractName, ContractName).
		Add(AttrContractVersion, ContractVersion).
		Add(AttrFeePercent, rate.Percent())
	return &Response{Events: []settle.Event{event}}, nil
}

// Settle splits funds at the configured rate and returns the resulting
// instructions and events.
func (c *Contract) Settle(funds coin.Coins, msg SettleMsg) (resp *Response, err error) {
	defer func() { metrics.RecordSettlement(err) }()

	var recipient string
	if msg.Recipient != nil && *msg.Recipient != "" {
		recipient = *msg.Recipient
		if err := c.validate(recipient); err != nil {
			return nil, fmt.Errorf("%w: %w", settle.ErrInvalidRecipient, err)
		}
	}

	cfg, err := c.store.LoadConfig()
	if err != nil {
		return nil, err
	}

	res, err := c.engine.Settle(funds, recipient, cfg.FeeRate)
	if err != nil {
		c.log.Debug("settlement rejected", zap.String("funds", funds.String()), zap.Error(err))
		return nil, err
	}

	for _, in := range res.Instructions {
		metrics.RecordInstruction(in.Kind.String())
	}
	c.log.Info("settled",
		zap.String("funds", funds.String()),
		zap.String("recipient", recipient),
		zap.String("burned", res.Burned().String()),
		zap.String("pooled", res.Pooled().String()),
		zap.String("transferred", res.Transferred().String()),
		zap.String("digest", res.DigestHex()),
	)
	return &Response{Instructions: res.Instructions, Events: res.Events}, nil
}

// Config returns the stored configuration.
func (c *Contract) Config() (*ConfigResponse, error) {
	cfg, err := c.store.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &ConfigResponse{
		FeePercent: cfg.FeeRate.Percent(),
		FeeBps:     cfg.FeeRate.BasisPoints(),
	}, nil
}

// UpdateFeeRate replaces the fee rate when msg.FeeBps is set. It performs
// no authorization or bounds checks; see Gate.
func (c *Contract) UpdateFeeRate(msg UpdateFeeRateMsg) (*Response, error) {
	cfg, err := c.store.LoadConfig()
	if err != nil {
		return nil, err
	}

	event := settle.NewEvent(EventUpdateConfig)
	if msg.FeeBps != nil {
		cfg.FeeRate = feesplit.RateFromBasisPoints(*msg.FeeBps)
		event = event.Add(AttrFeePercent, cfg.FeeRate.Percent())
	}
	if err := c.store.SaveConfig(cfg); err != nil {
		return nil, fmt.Errorf("save config: %w", err)
	}

	if msg.FeeBps != nil {
		metrics.FeeUpdatesTotal.Inc()
		c.log.Info("fee rate updated", zap.String("fee_percent", cfg.FeeRate.Percent()))
	}
	return &Response{Events: []settle.Event{event}}, nil
}

// Execute dispatches a decoded ExecuteMsg.
func (c *Contract) Execute(funds coin.Coins, msg *ExecuteMsg) (*Response, error) {
	if msg == nil || msg.FairBurn == nil {
		return nil, fmt.Errorf("%w: no execute variant", ErrInvalidMsg)
	}
	return c.Settle(funds, *msg.FairBurn)
}
