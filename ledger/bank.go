// Package ledger is an in-memory host ledger that executes settlement
// instructions: it tracks balances per account and total supply per denom.
package ledger

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/bitfsorg/fairburn-go/coin"
	"github.com/bitfsorg/fairburn-go/settle"
	"github.com/holiman/uint256"
)

type balanceKey struct {
	account string
	denom   string
}

// Bank holds balances and supply. It is safe for concurrent use.
type Bank struct {
	mu          sync.RWMutex
	poolAccount string
	balances    map[balanceKey]*uint256.Int
	supply      map[string]*uint256.Int
}

// NewBank creates an empty bank. Fund-pool instructions credit poolAccount.
func NewBank(poolAccount string) *Bank {
	return &Bank{
		poolAccount: poolAccount,
		balances:    make(map[balanceKey]*uint256.Int),
		supply:      make(map[string]*uint256.Int),
	}
}

// PoolAccount returns the account credited by fund-pool instructions.
func (b *Bank) PoolAccount() string { return b.poolAccount }

// Mint credits coins to account and grows supply.
func (b *Bank) Mint(account string, coins coin.Coins) error {
	if account == "" {
		return ErrInvalidAccount
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	t := b.begin()
	for _, c := range coins {
		if err := c.Validate(); err != nil {
			return err
		}
		if err := t.credit(account, c); err != nil {
			return err
		}
		sum, err := coin.Add(t.supplyOf(c.Denom), c.Amount)
		if err != nil {
			return fmt.Errorf("%w: supply of %s", err, c.Denom)
		}
		t.supply[c.Denom] = sum
	}
	t.commit()
	return nil
}

// Balance returns a copy of account's balance in denom.
func (b *Bank) Balance(account, denom string) *uint256.Int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if v, ok := b.balances[balanceKey{account, denom}]; ok {
		return v.Clone()
	}
	return new(uint256.Int)
}

// Balances returns every non-zero balance of account in denom order.
func (b *Bank) Balances(account string) coin.Coins {
	b.mu.RLock()
	defer b.mu.RUnlock()
	byDenom := make(map[string]*uint256.Int)
	for k, v := range b.balances {
		if k.account == account && !v.IsZero() {
			byDenom[k.denom] = v
		}
	}
	out := make(coin.Coins, 0, len(byDenom))
	for _, d := range slices.Sorted(maps.Keys(byDenom)) {
		out = append(out, coin.NewFromInt(byDenom[d], d))
	}
	return out
}

// Supply returns a copy of the total supply of denom.
func (b *Bank) Supply(denom string) *uint256.Int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if v, ok := b.supply[denom]; ok {
		return v.Clone()
	}
	return new(uint256.Int)
}

// Send moves coins from one account to another.
func (b *Bank) Send(from, to string, coins coin.Coins) error {
	if from == "" || to == "" {
		return ErrInvalidAccount
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	t := b.begin()
	if err := t.move(from, to, coins); err != nil {
		return err
	}
	t.commit()
	return nil
}

// Execute applies instructions debiting from. Either every instruction
// applies or none does.
func (b *Bank) Execute(from string, instructions []settle.Instruction) error {
	if from == "" {
		return ErrInvalidAccount
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	t := b.begin()
	for i, in := range instructions {
		var err error
		switch in.Kind {
		case settle.InstructionBurn:
			err = t.burn(from, in.Coins)
		case settle.InstructionFundPool:
			err = t.move(from, b.poolAccount, in.Coins)
		case settle.InstructionTransfer:
			if in.To == "" {
				err = ErrInvalidAccount
				break
			}
			err = t.move(from, in.To, in.Coins)
		default:
			err = fmt.Errorf("%w: %d", ErrUnknownInstruction, in.Kind)
		}
		if err != nil {
			return fmt.Errorf("instruction %d (%s): %w", i, in.Kind, err)
		}
	}
	t.commit()
	return nil
}

// txn stages balance and supply changes until commit.
type txn struct {
	bank     *Bank
	balances map[balanceKey]*uint256.Int
	supply   map[string]*uint256.Int
}

func (b *Bank) begin() *txn {
	return &txn{
		bank:     b,
		balances: make(map[balanceKey]*uint256.Int),
		supply:   make(map[string]*uint256.Int),
	}
}

func (t *txn) balanceOf(account, denom string) *uint256.Int {
	k := balanceKey{account, denom}
	if v, ok := t.balances[k]; ok {
		return v
	}
	if v, ok := t.bank.balances[k]; ok {
		return v
	}
	return new(uint256.Int)
}

func (t *txn) supplyOf(denom string) *uint256.Int {
	if v, ok := t.supply[denom]; ok {
		return v
	}
	if v, ok := t.bank.supply[denom]; ok {
		return v
	}
	return new(uint256.Int)
}

func (t *txn) credit(account string, c coin.Coin) error {
	sum, err := coin.Add(t.balanceOf(account, c.Denom), c.Amount)
	if err != nil {
		return fmt.Errorf("%w: balance of %s", err, account)
	}
	t.balances[balanceKey{account, c.Denom}] = sum
	return nil
}

func (t *txn) debit(account string, c coin.Coin) error {
	bal := t.balanceOf(account, c.Denom)
	if bal.Lt(c.Amount) {
		return fmt.Errorf("%w: %s has %s%s, needs %s", ErrInsufficientFunds, account, bal.Dec(), c.Denom, c)
	}
	t.balances[balanceKey{account, c.Denom}] = new(uint256.Int).Sub(bal, c.Amount)
	return nil
}

func (t *txn) move(from, to string, coins coin.Coins) error {
	for _, c := range coins {
		if err := c.Validate(); err != nil {
			return err
		}
		if err := t.debit(from, c); err != nil {
			return err
		}
		if err := t.credit(to, c); err != nil {
			return err
		}
	}
	return nil
}

func (t *txn) burn(from string, coins coin.Coins) error {
	for _, c := range coins {
		if err := c.Validate(); err != nil {
			return err
		}
		if err := t.debit(from, c); err != nil {
			return err
		}
		t.supply[c.Denom] = new(uint256.Int).Sub(t.supplyOf(c.Denom), c.Amount)
	}
	return nil
}

func (t *txn) commit() {
	maps.Copy(t.bank.balances, t.balances)
	maps.Copy(t.bank.supply, t.supply)
}
