package models

const TokenTypeBearer = "bearer"

// Token is the response body of the access-token endpoint.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ErrorBody is the error envelope used by the portal API. Detail is either
// a plain string or a list of validation issues.
type ErrorBody struct {
	Detail any `json:"detail"`
}
