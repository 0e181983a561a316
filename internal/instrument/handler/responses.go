package handler

import (
	"time"

	"mintgate/internal/instrument"
)

// ConfigResponse is the JSON view of an instrument configuration.
type ConfigResponse struct {
	Address         string    `json:"address"`
	Asset           string    `json:"asset"`
	MasterAuthority string    `json:"master_authority"`
	Blacklister     string    `json:"blacklister"`
	Pauser          string    `json:"pauser"`
	Seizer          string    `json:"seizer"`
	Name            string    `json:"name"`
	Symbol          string    `json:"symbol"`
	URI             string    `json:"uri,omitempty"`
	Decimals        uint8     `json:"decimals"`
	Paused          bool      `json:"paused"`
	EnableSeize     bool      `json:"enable_seize"`
	EnableHook      bool      `json:"enable_hook"`
	DefaultFrozen   bool      `json:"default_frozen"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toConfigResponse(cfg instrument.Config) ConfigResponse {
	return ConfigResponse{
		Address:         cfg.Address.String(),
		Asset:           cfg.Asset.String(),
		MasterAuthority: cfg.MasterAuthority.String(),
		Blacklister:     cfg.Blacklister.String(),
		Pauser:          cfg.Pauser.String(),
		Seizer:          cfg.Seizer.String(),
		Name:            cfg.Name,
		Symbol:          cfg.Symbol,
		URI:             cfg.URI,
		Decimals:        cfg.Decimals,
		Paused:          cfg.Paused,
		EnableSeize:     cfg.EnableSeize,
		EnableHook:      cfg.EnableHook,
		DefaultFrozen:   cfg.DefaultFrozen,
		CreatedAt:       cfg.CreatedAt,
		UpdatedAt:       cfg.UpdatedAt,
	}
}
