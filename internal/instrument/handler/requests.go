package handler

import (
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
)

// InitializeRequest is the body for POST /instruments.
type InitializeRequest struct {
	Asset         string `json:"asset"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	URI           string `json:"uri,omitempty"`
	Decimals      uint8  `json:"decimals"`
	EnableSeize   bool   `json:"enable_seize"`
	EnableHook    bool   `json:"enable_hook"`
	DefaultFrozen bool   `json:"default_frozen"`
	Blacklister   string `json:"blacklister,omitempty"`
	Pauser        string `json:"pauser,omitempty"`
	Seizer        string `json:"seizer,omitempty"`
}

// RolesRequest is the body for PUT /instruments/{asset}/roles. Omitted
// fields leave the role unchanged.
type RolesRequest struct {
	Blacklister *string `json:"blacklister,omitempty"`
	Pauser      *string `json:"pauser,omitempty"`
	Seizer      *string `json:"seizer,omitempty"`
}

// AuthorityRequest is the body for PUT /instruments/{asset}/authority.
type AuthorityRequest struct {
	NewAuthority string `json:"new_authority"`
}

// AccountRequest is the body for freeze and thaw.
type AccountRequest struct {
	Account string `json:"account"`
}

// SeizeRequest is the body for POST /instruments/{asset}/seize.
type SeizeRequest struct {
	Source string `json:"source"`
	Dest   string `json:"dest"`
	Amount uint64 `json:"amount"`
}

func parseOptionalIdentity(field, value string) (domain.Identity, error) {
	if value == "" {
		return domain.Identity{}, nil
	}
	id, err := domain.ParseIdentity(value)
	if err != nil {
		return domain.Identity{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+field)
	}
	return id, nil
}
