package token

import (
	"fmt"
	"sync"

	sdkmath "cosmossdk.io/math"
)

// Ledger is an in-process fungible asset ledger with ERC20-style semantics:
// a balance per address plus an allowance table that lets a spender move
// funds on an owner's behalf. Every operation runs under a single mutex so
// each call is all-or-nothing.
type Ledger struct {
	mu sync.RWMutex

	name   string
	symbol string

	totalSupply sdkmath.Int
	balances    map[string]sdkmath.Int
	allowances  map[string]map[string]sdkmath.Int
}

func NewLedger(name, symbol string) *Ledger {
	return &Ledger{
		name:        name,
		symbol:      symbol,
		totalSupply: sdkmath.ZeroInt(),
		balances:    make(map[string]sdkmath.Int),
		allowances:  make(map[string]map[string]sdkmath.Int),
	}
}

func (l *Ledger) Name() string {
	return l.name
}

func (l *Ledger) Symbol() string {
	return l.symbol
}

func (l *Ledger) TotalSupply() sdkmath.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.totalSupply
}

func (l *Ledger) BalanceOf(addr string) sdkmath.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balanceOf(addr)
}

// Mint creates amount new units and credits them to addr. It is used for the
// deploy-time supply and for test fixtures; there is no burn path.
func (l *Ledger) Mint(addr string, amount sdkmath.Int) error {
	if err := validateAmount(amount); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.balances[addr] = l.balanceOf(addr).Add(amount)
	l.totalSupply = l.totalSupply.Add(amount)
	return nil
}

// Transfer moves amount from one address to another.
func (l *Ledger) Transfer(from, to string, amount sdkmath.Int) error {
	if err := validateAmount(amount); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.transfer(from, to, amount)
}

// Approve sets the allowance of spender over owner's balance. It overwrites
// any previous allowance rather than adding to it.
func (l *Ledger) Approve(owner, spender string, amount sdkmath.Int) error {
	if amount.IsNil() {
		return ErrInvalidAmount
	}
	if amount.IsNegative() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.allowances[owner] == nil {
		l.allowances[owner] = make(map[string]sdkmath.Int)
	}
	l.allowances[owner][spender] = amount
	return nil
}

func (l *Ledger) Allowance(owner, spender string) sdkmath.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.allowanceOf(owner, spender)
}

// TransferFrom moves amount from one address to another on behalf of spender,
// consuming spender's allowance over the source address.
func (l *Ledger) TransferFrom(spender, from, to string, amount sdkmath.Int) error {
	if err := validateAmount(amount); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	allowance := l.allowanceOf(from, spender)
	if allowance.LT(amount) {
		return fmt.Errorf("%w: spender %s has allowance %s over %s, need %s",
			ErrInsufficientAllowance, spender, allowance, from, amount)
	}

	if err := l.transfer(from, to, amount); err != nil {
		return err
	}
	l.allowances[from][spender] = allowance.Sub(amount)
	return nil
}

func (l *Ledger) balanceOf(addr string) sdkmath.Int {
	if balance, ok := l.balances[addr]; ok {
		return balance
	}
	return sdkmath.ZeroInt()
}

func (l *Ledger) allowanceOf(owner, spender string) sdkmath.Int {
	if allowance, ok := l.allowances[owner][spender]; ok {
		return allowance
	}
	return sdkmath.ZeroInt()
}

func (l *Ledger) transfer(from, to string, amount sdkmath.Int) error {
	balance := l.balanceOf(from)
	if balance.LT(amount) {
		return fmt.Errorf("%w: %s holds %s, need %s", ErrInsufficientBalance, from, balance, amount)
	}

	l.balances[from] = balance.Sub(amount)
	l.balances[to] = l.balanceOf(to).Add(amount)
	return nil
}

func validateAmount(amount sdkmath.Int) error {
	if amount.IsNil() {
		return ErrInvalidAmount
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	return nil
}
