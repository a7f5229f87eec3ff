package config

import (
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"
)

type TokenConfig struct {
	Name   string `mapstructure:"name"`
	Symbol string `mapstructure:"symbol"`
	// InitialSupply is minted to the owner address at startup. Decimal string
	// in the smallest denomination.
	InitialSupply string `mapstructure:"initial-supply"`
}

func (cfg *TokenConfig) Validate() error {
	if cfg.Name == "" {
		return errors.New("token name is required")
	}
	if cfg.Symbol == "" {
		return errors.New("token symbol is required")
	}
	if _, err := cfg.ParseInitialSupply(); err != nil {
		return err
	}

	return nil
}

func (cfg *TokenConfig) ParseInitialSupply() (sdkmath.Int, error) {
	supply, ok := sdkmath.NewIntFromString(cfg.InitialSupply)
	if !ok {
		return sdkmath.Int{}, fmt.Errorf("token initial-supply %q is not a valid integer", cfg.InitialSupply)
	}
	if supply.IsNegative() {
		return sdkmath.Int{}, errors.New("token initial-supply must not be negative")
	}

	return supply, nil
}
