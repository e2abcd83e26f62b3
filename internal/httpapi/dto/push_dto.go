package dto

// SubscriptionKeys carries the receiver's key material, base64url encoded.
type SubscriptionKeys struct {
	P256dh string `json:"p256dh" binding:"required"`
	Auth   string `json:"auth" binding:"required"`
}

// SubscribeRequest: payload for registering a push subscription
type SubscribeRequest struct {
	Endpoint string           `json:"endpoint" binding:"required,url"`
	Keys     SubscriptionKeys `json:"keys" binding:"required"`
}

// SubscribeResponse: acknowledgement for a registration call
type SubscribeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	TokenID string `json:"tokenId,omitempty"`
}

// UnsubscribeRequest: payload for removing a push subscription
type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required,url"`
}
