package domain

// ============================================================
// Auth — Request / Response types
// ============================================================

// TokenRequest is the body of POST /v1/auth/token.
type TokenRequest struct {
	APIKey string `json:"apiKey"`
	UserID string `json:"userId,omitempty"`
}

// TokenResponse carries a freshly issued access token.
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int    `json:"expiresIn"`
}
