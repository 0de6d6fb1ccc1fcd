package ddns

import "context"

// Record is a DNS record as the provider reports it.
type Record struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
	Name string `json:"name"`
	Data string `json:"data"`
	TTL  int    `json:"ttl,omitempty"`
}

// IProvider lists and updates existing records of a domain.
type IProvider interface {
	String() string
	// Endpoint is the API base used to wait for connectivity.
	Endpoint() string
	ListRecords(ctx context.Context, domain string) ([]Record, error)
	UpdateRecord(ctx context.Context, domain string, id int64, recordType, name, data string) error
}
