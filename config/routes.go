package config

// AccountRoutes is the immutable quote-asset -> settlement-account mapping.
// It is built once at startup and passed by reference into the matching
// engine and the dispatcher.
type AccountRoutes struct {
	byQuote  map[string]string
	fallback string
}

func NewAccountRoutes(byQuote map[string]string, fallback string) *AccountRoutes {
	routes := make(map[string]string, len(byQuote))
	for quote, account := range byQuote {
		routes[quote] = account
	}
	return &AccountRoutes{byQuote: routes, fallback: fallback}
}

// AccountFor returns the settlement account for a quote asset, falling back
// to the default account for unmapped assets.
func (r *AccountRoutes) AccountFor(quote string) string {
	if account, ok := r.byQuote[quote]; ok {
		return account
	}
	return r.fallback
}

// Routes builds the account route table from settlement config.
func (c *SettlementConfig) Routes() *AccountRoutes {
	return NewAccountRoutes(c.AccountRoutes, c.DefaultAccount)
}
