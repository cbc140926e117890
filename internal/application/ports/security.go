package ports

// TokenVerifier validates access tokens (RS256) issued by the auth service.
type TokenVerifier interface {
	// ValidateAccessToken returns the user id carried by a valid token.
	ValidateAccessToken(tokenString string) (userID string, err error)
}
