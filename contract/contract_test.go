package contract

import (
	"errors"
	"testing"

	"github.com/bitfsorg/fairburn-go/coin"
	"github.com/bitfsorg/fairburn-go/ledger"
	"github.com/bitfsorg/fairburn-go/settle"
	"github.com/bitfsorg/fairburn-go/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const (
	admin = "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2"
	alice = "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"
)

func ptr[T any](v T) *T { return &v }

func newTestContract(t *testing.T, store state.Store, opts Options) *Contract {
	t.Helper()
	engine, err := settle.NewEngine(settle.Params{NativeDenom: "sat"})
	require.NoError(t, err)
	c, err := New(store, engine, opts)
	require.NoError(t, err)
	return c
}

func instantiated(t *testing.T, bps uint64) *Contract {
	t.Helper()
	c := newTestContract(t, state.NewMemStore(), Options{})
	_, err := c.Instantiate(InstantiateMsg{FeeBps: bps})
	require.NoError(t, err)
	return c
}

func mustCoins(t *testing.T, s string) coin.Coins {
	t.Helper()
	cs, err := coin.ParseCoins(s)
	require.NoError(t, err)
	return cs
}

// failingStore returns err from every call.
type failingStore struct{ err error }

func (s failingStore) LoadConfig() (*state.Config, error) { return nil, s.err }
func (s failingStore) SaveConfig(*state.Config) error     { return s.err }

func TestNew_NilParams(t *testing.T) {
	engine, err := settle.NewEngine(settle.Params{NativeDenom: "sat"})
	require.NoError(t, err)

	_, err = New(nil, engine, Options{})
	assert.ErrorIs(t, err, ErrNilParam)
	_, err = New(state.NewMemStore(), nil, Options{})
	assert.ErrorIs(t, err, ErrNilParam)
}

func TestInstantiate(t *testing.T) {
	c := newTestContract(t, state.NewMemStore(), Options{})
	resp, err := c.Instantiate(InstantiateMsg{FeeBps: 5000})
	require.NoError(t, err)

	assert.Empty(t, resp.Instructions)
	require.Len(t, resp.Events, 1)
	ev := resp.Events[0]
	assert.Equal(t, EventInstantiate, ev.Type)
	v, _ := ev.Attribute(AttrAction)
	assert.Equal(t, "instantiate", v)
	v, _ = ev.Attribute(AttrContractName)
	assert.Equal(t, ContractName, v)
	v, _ = ev.Attribute(AttrContractVersion)
	assert.Equal(t, ContractVersion, v)
	v, _ = ev.Attribute(AttrFeePercent)
	assert.Equal(t, "50", v)

	cfg, err := c.Config()
	require.NoError(t, err)
	assert.Equal(t, &ConfigResponse{FeePercent: "50", FeeBps: 5000}, cfg)
}

func TestInstantiate_RejectsOutOfRange(t *testing.T) {
	store := state.NewMemStore()
	c := newTestContract(t, store, Options{})
	_, err := c.Instantiate(InstantiateMsg{FeeBps: 10001})
	assert.Error(t, err)

	_, err = store.LoadConfig()
	assert.ErrorIs(t, err, state.ErrConfigNotFound)
}

func TestSettle(t *testing.T) {
	c := instantiated(t, 5000)

	tests := []struct {
		name      string
		funds     string
		recipient *string
		wantBurn  string
		wantPool  string
		wantSent  string
	}{
		{"single unit", "1sat", nil, "1sat", "", ""},
		{"duplicate coins", "1sat,1sat", nil, "1sat", "1sat", ""},
		{"native to pool", "11sat", nil, "6sat", "5sat", ""},
		{"empty recipient means pool", "11sat", ptr(""), "6sat", "5sat", ""},
		{"native to recipient", "11sat", ptr(alice), "6sat", "", "5sat"},
		{"alt to pool", "11uatom", nil, "", "11uatom", ""},
		{"alt to recipient", "11uatom", ptr(alice), "", "6uatom", "5uatom"},
		{"mixed to pool", "11sat,11uatom", nil, "6sat", "5sat,11uatom", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := c.Settle(mustCoins(t, tt.funds), SettleMsg{Recipient: tt.recipient})
			require.NoError(t, err)

			res := &settle.Result{Instructions: resp.Instructions, Events: resp.Events}
			assert.Equal(t, tt.wantBurn, res.Burned().String())
			assert.Equal(t, tt.wantPool, res.Pooled().String())
			assert.Equal(t, tt.wantSent, res.Transferred().String())
		})
	}
}

func TestSettle_Errors(t *testing.T) {
	c := instantiated(t, 5000)

	_, err := c.Settle(coin.Coins{}, SettleMsg{})
	assert.ErrorIs(t, err, settle.ErrEmptyInput)

	_, err = c.Settle(mustCoins(t, "0sat"), SettleMsg{})
	assert.ErrorIs(t, err, settle.ErrZeroAmount)

	_, err = c.Settle(mustCoins(t, "1sat"), SettleMsg{Recipient: ptr(settle.DefaultPoolKey)})
	assert.ErrorIs(t, err, settle.ErrInvalidRecipient)
}

func TestSettle_AddressValidator(t *testing.T) {
	badAddr := errors.New("bad address")
	c := newTestContract(t, state.NewMemStore(), Options{
		ValidateAddress: func(addr string) error {
			if addr != alice {
				return badAddr
			}
			return nil
		},
	})
	_, err := c.Instantiate(InstantiateMsg{FeeBps: 5000})
	require.NoError(t, err)

	_, err = c.Settle(mustCoins(t, "11sat"), SettleMsg{Recipient: ptr("nope")})
	assert.ErrorIs(t, err, settle.ErrInvalidRecipient)
	assert.ErrorIs(t, err, badAddr)

	_, err = c.Settle(mustCoins(t, "11sat"), SettleMsg{Recipient: ptr(alice)})
	assert.NoError(t, err)
}

func TestSettle_StoreErrorsPropagate(t *testing.T) {
	c := newTestContract(t, state.NewMemStore(), Options{})
	_, err := c.Settle(mustCoins(t, "11sat"), SettleMsg{})
	assert.ErrorIs(t, err, state.ErrConfigNotFound)

	boom := errors.New("disk on fire")
	c = newTestContract(t, failingStore{err: boom}, Options{})
	_, err = c.Settle(mustCoins(t, "11sat"), SettleMsg{})
	assert.ErrorIs(t, err, boom)
	_, err = c.Config()
	assert.ErrorIs(t, err, boom)
	_, err = c.UpdateFeeRate(UpdateFeeRateMsg{FeeBps: ptr(uint64(1))})
	assert.ErrorIs(t, err, boom)
}

func TestSettle_Logs(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	c := newTestContract(t, state.NewMemStore(), Options{Logger: zap.New(core)})
	_, err := c.Instantiate(InstantiateMsg{FeeBps: 5000})
	require.NoError(t, err)

	_, err = c.Settle(mustCoins(t, "11sat"), SettleMsg{Recipient: ptr(alice)})
	require.NoError(t, err)

	entries := logs.FilterMessage("settled").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "6sat", fields["burned"])
	assert.Equal(t, "5sat", fields["transferred"])
	assert.Equal(t, alice, fields["recipient"])
	assert.Len(t, fields["digest"], 64)
}

func TestUpdateFeeRate(t *testing.T) {
	c := instantiated(t, 5000)

	resp, err := c.UpdateFeeRate(UpdateFeeRateMsg{FeeBps: ptr(uint64(2500))})
	require.NoError(t, err)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, EventUpdateConfig, resp.Events[0].Type)
	v, ok := resp.Events[0].Attribute(AttrFeePercent)
	require.True(t, ok)
	assert.Equal(t, "25", v)

	cfg, err := c.Config()
	require.NoError(t, err)
	assert.Equal(t, uint64(2500), cfg.FeeBps)

	// new rate applies to subsequent settlements: ceil(11 * 0.25) = 3
	out, err := c.Settle(mustCoins(t, "11sat"), SettleMsg{})
	require.NoError(t, err)
	res := &settle.Result{Instructions: out.Instructions}
	assert.Equal(t, "3sat", res.Burned().String())
}

func TestUpdateFeeRate_NoRateIsNoop(t *testing.T) {
	c := instantiated(t, 5000)

	resp, err := c.UpdateFeeRate(UpdateFeeRateMsg{})
	require.NoError(t, err)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, EventUpdateConfig, resp.Events[0].Type)
	assert.Empty(t, resp.Events[0].Attributes)

	cfg, err := c.Config()
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), cfg.FeeBps)
}

func TestUpdateFeeRate_NoBoundsCheck(t *testing.T) {
	c := instantiated(t, 5000)
	_, err := c.UpdateFeeRate(UpdateFeeRateMsg{FeeBps: ptr(uint64(20000))})
	require.NoError(t, err)

	cfg, err := c.Config()
	require.NoError(t, err)
	assert.Equal(t, uint64(20000), cfg.FeeBps)

	// the engine refuses to settle at a rate above one
	_, err = c.Settle(mustCoins(t, "11sat"), SettleMsg{})
	assert.ErrorIs(t, err, settle.ErrInvalidRate)
}

func TestUpdateFeeRate_BeforeInstantiate(t *testing.T) {
	c := newTestContract(t, state.NewMemStore(), Options{})
	_, err := c.UpdateFeeRate(UpdateFeeRateMsg{FeeBps: ptr(uint64(1))})
	assert.ErrorIs(t, err, state.ErrConfigNotFound)
}

func TestExecute(t *testing.T) {
	c := instantiated(t, 5000)

	msg, err := ParseExecuteMsg([]byte(`{"fair_burn":{"recipient":"` + alice + `"}}`))
	require.NoError(t, err)
	resp, err := c.Execute(mustCoins(t, "11sat"), msg)
	require.NoError(t, err)
	assert.Len(t, resp.Instructions, 2)

	_, err = c.Execute(mustCoins(t, "11sat"), &ExecuteMsg{})
	assert.ErrorIs(t, err, ErrInvalidMsg)
}

func TestAppendSettle(t *testing.T) {
	c := instantiated(t, 5000)

	prior := &Response{
		Instructions: []settle.Instruction{{Kind: settle.InstructionTransfer, To: admin, Coins: mustCoins(t, "100sat")}},
		Events:       []settle.Event{settle.NewEvent("sale")},
	}
	merged, err := c.AppendSettle(prior, mustCoins(t, "11sat"), alice)
	require.NoError(t, err)

	require.Len(t, merged.Instructions, 3)
	assert.Equal(t, admin, merged.Instructions[0].To)
	assert.Equal(t, settle.InstructionBurn, merged.Instructions[1].Kind)
	assert.Equal(t, alice, merged.Instructions[2].To)
	require.Len(t, merged.Events, 2)
	assert.Equal(t, "sale", merged.Events[0].Type)
	assert.Len(t, prior.Instructions, 1)

	fresh, err := c.AppendSettle(nil, mustCoins(t, "11sat"), "")
	require.NoError(t, err)
	assert.Len(t, fresh.Instructions, 2)

	_, err = c.AppendSettle(prior, coin.Coins{}, "")
	assert.ErrorIs(t, err, settle.ErrEmptyInput)
}

func TestSettle_ExecutesOnLedger(t *testing.T) {
	c := instantiated(t, 5000)
	bank := ledger.NewBank(settle.DefaultPoolKey)
	funds := mustCoins(t, "11sat,11uatom,3uosmo")
	require.NoError(t, bank.Mint("contract", funds))

	resp, err := c.Settle(funds, SettleMsg{Recipient: ptr(alice)})
	require.NoError(t, err)
	require.NoError(t, bank.Execute("contract", resp.Instructions))

	assert.Empty(t, bank.Balances("contract"))
	assert.Equal(t, "5sat,5uatom,1uosmo", bank.Balances(alice).String())
	assert.Equal(t, "6uatom,2uosmo", bank.Balances(settle.DefaultPoolKey).String())
	assert.Equal(t, uint64(5), bank.Supply("sat").Uint64())
}
