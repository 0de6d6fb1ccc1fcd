package hook

import "context"

// Event describes a finished run.
type Event struct {
	IPv4    string
	IPv6    string
	Updated int
	Domains []string
}

type IHook interface {
	String() string
	ExecHook(ctx context.Context, event Event) error
}
