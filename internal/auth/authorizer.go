package auth

import (
	"context"
	"crypto/subtle"
)

// ActorInfo describes an authenticated caller.
type ActorInfo struct {
	ActorID string `json:"actor_id"`
	KeyName string `json:"key_name"`
}

// Authorizer validates API keys in one call.
type Authorizer interface {
	// Authorize validates the API key for the given operation.
	// Returns ActorInfo if authorized, error otherwise.
	Authorize(ctx context.Context, apiKey, operation string) (*ActorInfo, error)
}

// StaticAuthorizer accepts a single pre-shared API key. An empty configured
// key disables authentication, which is the local development default.
type StaticAuthorizer struct {
	key string
}

func NewStaticAuthorizer(key string) *StaticAuthorizer {
	return &StaticAuthorizer{key: key}
}

func (a *StaticAuthorizer) Authorize(_ context.Context, apiKey, _ string) (*ActorInfo, error) {
	if a.key == "" {
		return &ActorInfo{ActorID: "local-dev", KeyName: "none"}, nil
	}
	if subtle.ConstantTimeCompare([]byte(apiKey), []byte(a.key)) != 1 {
		return nil, ErrInvalidAPIKey
	}
	return &ActorInfo{ActorID: "api-key", KeyName: "static"}, nil
}
