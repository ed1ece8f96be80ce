package request

// SetMarketTokenRequest carries a new upstream API token to store encrypted.
type SetMarketTokenRequest struct {
	Token string `json:"token"`
}
