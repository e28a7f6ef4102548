package domain

// AppSettings is the singleton row (id=1) holding the active display
// currency. Read by every client for formatting, written only from the
// admin settings screen.
type AppSettings struct {
	ID             int    `json:"id"`
	CurrencyCode   string `json:"currency_code"`
	CurrencySymbol string `json:"currency_symbol"`
}

// DefaultSettings is used until the row exists (fresh installs).
func DefaultSettings() AppSettings {
	return AppSettings{ID: 1, CurrencyCode: "XOF", CurrencySymbol: "FCFA"}
}

// UpdateCurrencyRequest is the admin currency switch payload.
type UpdateCurrencyRequest struct {
	CurrencyCode   string `json:"currency_code"`
	CurrencySymbol string `json:"currency_symbol"`
}
