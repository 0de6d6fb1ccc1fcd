package ddns

import (
	"context"
	"testing"

	"github.com/jxo-me/dyndns/config"
	"github.com/jxo-me/dyndns/consts"
	core "github.com/jxo-me/dyndns/core/ddns"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type update struct {
	Domain string
	ID     int64
	Type   string
	Name   string
	Data   string
}

type fakeProvider struct {
	records   map[string][]core.Record
	updates   []update
	listErr   error
	updateErr error
}

func (p *fakeProvider) String() string { return "fake" }

func (p *fakeProvider) Endpoint() string { return "" }

func (p *fakeProvider) ListRecords(ctx context.Context, domain string) ([]core.Record, error) {
	if p.listErr != nil {
		return nil, p.listErr
	}
	return p.records[domain], nil
}

func (p *fakeProvider) UpdateRecord(ctx context.Context, domain string, id int64, recordType, name, data string) error {
	if p.updateErr != nil {
		return p.updateErr
	}
	p.updates = append(p.updates, update{Domain: domain, ID: id, Type: recordType, Name: name, Data: data})
	return nil
}

type recorded struct {
	Name   string
	Status consts.UpdateStatusType
}

type fakeObserver struct {
	records []recorded
	missing []string
}

func (o *fakeObserver) Record(domain string, record core.Record, status consts.UpdateStatusType) {
	o.records = append(o.records, recorded{Name: record.Name, Status: status})
}

func (o *fakeObserver) Missing(domain, name string) {
	o.missing = append(o.missing, name)
}

func spec(subdomains ...string) config.DomainSpec {
	return config.DomainSpec{Name: "example.com", Subdomains: subdomains}
}

func TestReconcileUpdatesStaleRecord(t *testing.T) {
	p := &fakeProvider{records: map[string][]core.Record{
		"example.com": {
			{ID: 1, Type: "A", Name: "home", Data: "1.2.3.4"},
			{ID: 2, Type: "A", Name: "office", Data: "5.6.7.8"},
		},
	}}
	o := &fakeObserver{}

	res, err := NewReconciler(p, false, WithObserver(o)).Reconcile(context.Background(), spec("home", "office"), Addrs{IPv4: "5.6.7.8"})
	require.NoError(t, err)

	assert.Equal(t, []update{{Domain: "example.com", ID: 1, Type: "A", Name: "home", Data: "5.6.7.8"}}, p.updates)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 1, res.Stale)
	assert.Equal(t, 2, res.Matched)
	assert.Empty(t, res.Missing)
	assert.Equal(t, []recorded{
		{Name: "home", Status: consts.UpdateNeeded},
		{Name: "office", Status: consts.UpdatedNothing},
	}, o.records)
	assert.Empty(t, o.missing)
}

func TestReconcileIsIdempotent(t *testing.T) {
	p := &fakeProvider{records: map[string][]core.Record{
		"example.com": {
			{ID: 1, Type: "A", Name: "home", Data: "5.6.7.8"},
			{ID: 2, Type: "A", Name: "office", Data: "5.6.7.8"},
		},
	}}

	res, err := NewReconciler(p, false).Reconcile(context.Background(), spec("home", "office"), Addrs{IPv4: "5.6.7.8"})
	require.NoError(t, err)
	assert.Empty(t, p.updates)
	assert.Equal(t, 0, res.Updated)
}

func TestReconcileOnePutPerStaleRecord(t *testing.T) {
	p := &fakeProvider{records: map[string][]core.Record{
		"example.com": {
			{ID: 1, Type: "A", Name: "a", Data: "1.1.1.1"},
			{ID: 2, Type: "A", Name: "b", Data: "2.2.2.2"},
			{ID: 3, Type: "A", Name: "a", Data: "3.3.3.3"},
			{ID: 4, Type: "A", Name: "c", Data: "9.9.9.9"},
		},
	}}

	res, err := NewReconciler(p, false).Reconcile(context.Background(), spec("a", "b", "c"), Addrs{IPv4: "9.9.9.9"})
	require.NoError(t, err)
	require.Len(t, p.updates, 3)
	assert.Equal(t, len(p.updates), res.Updated)
	assert.Equal(t, []int64{1, 2, 3}, []int64{p.updates[0].ID, p.updates[1].ID, p.updates[2].ID})
}

func TestReconcileMissingSubdomain(t *testing.T) {
	p := &fakeProvider{records: map[string][]core.Record{
		"example.com": {
			{ID: 1, Type: "A", Name: "home", Data: "1.2.3.4"},
			{ID: 2, Type: "CNAME", Name: "missing", Data: "home.example.com."},
		},
	}}
	o := &fakeObserver{}

	res, err := NewReconciler(p, false, WithObserver(o)).Reconcile(context.Background(), spec("home", "missing"), Addrs{IPv4: "1.2.3.4"})
	require.NoError(t, err)
	assert.Equal(t, []string{"missing"}, res.Missing)
	assert.Equal(t, []string{"missing"}, o.missing)
	assert.Empty(t, p.updates)
}

func TestReconcileIgnoresAAAAWhenDisabled(t *testing.T) {
	p := &fakeProvider{records: map[string][]core.Record{
		"example.com": {
			{ID: 1, Type: "AAAA", Name: "v6", Data: "2001:db8::1"},
		},
	}}

	res, err := NewReconciler(p, false).Reconcile(context.Background(), spec("v6"), Addrs{IPv4: "1.2.3.4", IPv6: "2001:db8::2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"v6"}, res.Missing)
	assert.Empty(t, p.updates)
}

func TestReconcileIPv6(t *testing.T) {
	p := &fakeProvider{records: map[string][]core.Record{
		"example.com": {
			{ID: 1, Type: "A", Name: "home", Data: "1.2.3.4"},
			{ID: 2, Type: "AAAA", Name: "home", Data: "2001:db8::1"},
		},
	}}

	res, err := NewReconciler(p, true).Reconcile(context.Background(), spec("home"), Addrs{IPv4: "1.2.3.4", IPv6: "2001:db8::2"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, []update{{Domain: "example.com", ID: 2, Type: "AAAA", Name: "home", Data: "2001:db8::2"}}, p.updates)
}

func TestReconcileCaseSensitive(t *testing.T) {
	p := &fakeProvider{records: map[string][]core.Record{
		"example.com": {{ID: 1, Type: "A", Name: "home", Data: "1.2.3.4"}},
	}}

	res, err := NewReconciler(p, false).Reconcile(context.Background(), spec("Home"), Addrs{IPv4: "5.6.7.8"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Home"}, res.Missing)
	assert.Empty(t, p.updates)
}

func TestReconcileErrors(t *testing.T) {
	listErr := errors.New("status 401")
	p := &fakeProvider{listErr: listErr}
	_, err := NewReconciler(p, false).Reconcile(context.Background(), spec("home"), Addrs{IPv4: "1.2.3.4"})
	assert.ErrorIs(t, err, listErr)

	updateErr := errors.New("status 500")
	p = &fakeProvider{
		records: map[string][]core.Record{
			"example.com": {{ID: 1, Type: "A", Name: "home", Data: "1.2.3.4"}},
		},
		updateErr: updateErr,
	}
	res, err := NewReconciler(p, false).Reconcile(context.Background(), spec("home"), Addrs{IPv4: "5.6.7.8"})
	assert.ErrorIs(t, err, updateErr)
	assert.Equal(t, 0, res.Updated)
	assert.Equal(t, 1, res.Stale)
}

func TestAddrsFor(t *testing.T) {
	a := Addrs{IPv4: "1.2.3.4", IPv6: "2001:db8::1"}
	assert.Equal(t, "1.2.3.4", a.For("A"))
	assert.Equal(t, "2001:db8::1", a.For("AAAA"))
}
