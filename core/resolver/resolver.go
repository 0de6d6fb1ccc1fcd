package resolver

import "context"

// IResolver looks up the caller's public address.
type IResolver interface {
	String() string
	Resolve(ctx context.Context) (string, error)
}
