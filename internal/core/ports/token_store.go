package ports

// TokenStore owns the current access token. At most one token value is
// live at a time; no history is retained. The refresh token is never
// held here; it lives in an HTTP-only cookie managed by the server.
type TokenStore interface {
	// Token returns the stored access token, if any.
	Token() (string, bool)
	// Set replaces the stored token.
	Set(token string)
	// Clear removes the stored token.
	Clear()
}
