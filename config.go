package bookshelf

import "github.com/golang-jwt/jwt/v5"

// Config holds auth and query options
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetContextKey() string
	GetTokenExpiration() int
	GetTokenLookup() string
	GetAuthScheme() string
	GetIssuer() string
	GetAudience() jwt.ClaimStrings
	GetMaxPageSize() int
}

// BaseConfig is an explicit configuration value implementing Config. It is
// built once at startup and passed into the middleware at construction; no
// mutable global state.
type BaseConfig struct {
	SigningKey      string           `json:"signing_key"`
	SigningMethod   string           `json:"signing_method"`
	ContextKey      string           `json:"context_key"`
	TokenExpiration int              `json:"token_expiration"`
	TokenLookup     string           `json:"token_lookup"`
	AuthScheme      string           `json:"auth_scheme"`
	Issuer          string           `json:"issuer"`
	Audience        jwt.ClaimStrings `json:"audience"`
	MaxPageSize     int              `json:"max_page_size"`
}

func (c BaseConfig) GetSigningKey() string { return c.SigningKey }

func (c BaseConfig) GetSigningMethod() string {
	if c.SigningMethod == "" {
		return "HS256"
	}
	return c.SigningMethod
}

func (c BaseConfig) GetContextKey() string {
	if c.ContextKey == "" {
		return "user"
	}
	return c.ContextKey
}

func (c BaseConfig) GetTokenExpiration() int {
	if c.TokenExpiration <= 0 {
		return 1
	}
	return c.TokenExpiration
}

func (c BaseConfig) GetTokenLookup() string {
	if c.TokenLookup == "" {
		return "header:Authorization"
	}
	return c.TokenLookup
}

func (c BaseConfig) GetAuthScheme() string {
	if c.AuthScheme == "" {
		return "Bearer"
	}
	return c.AuthScheme
}

func (c BaseConfig) GetIssuer() string { return c.Issuer }

func (c BaseConfig) GetAudience() jwt.ClaimStrings { return c.Audience }

func (c BaseConfig) GetMaxPageSize() int {
	if c.MaxPageSize <= 0 {
		return 100
	}
	return c.MaxPageSize
}

var _ Config = BaseConfig{}
