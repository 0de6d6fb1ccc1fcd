package ddns

import (
	"context"

	"github.com/jxo-me/dyndns/config"
	"github.com/jxo-me/dyndns/consts"
	core "github.com/jxo-me/dyndns/core/ddns"
	"github.com/jxo-me/dyndns/core/logger"
	"github.com/pkg/errors"
)

// Addrs holds the resolved public addresses. IPv6 is empty when disabled.
type Addrs struct {
	IPv4 string
	IPv6 string
}

// For returns the address matching recordType.
func (a Addrs) For(recordType string) string {
	if recordType == consts.RecordTypeAAAA {
		return a.IPv6
	}
	return a.IPv4
}

// Observer is told about every evaluated record and every missing name,
// in the order they are found.
type Observer interface {
	Record(domain string, record core.Record, status consts.UpdateStatusType)
	Missing(domain, name string)
}

// Result 一个域名的对比结果
type Result struct {
	Domain  string
	Matched int
	Stale   int
	Updated int
	Missing []string
}

type ReconcilerOption func(*Reconciler)

func WithObserver(o Observer) ReconcilerOption {
	return func(r *Reconciler) {
		r.observer = o
	}
}

func WithLogger(log logger.ILogger) ReconcilerOption {
	return func(r *Reconciler) {
		if log != nil {
			r.logger = log
		}
	}
}

// Reconciler brings existing provider records in line with the resolved
// addresses. It never creates or deletes records.
type Reconciler struct {
	provider core.IProvider
	ipv6     bool
	observer Observer
	logger   logger.ILogger
}

func NewReconciler(provider core.IProvider, ipv6 bool, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		provider: provider,
		ipv6:     ipv6,
		logger:   logger.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile lists the records of spec.Name, selects those named in
// spec.Subdomains with an enabled type and updates every one whose data
// differs from the address of its family. Records are handled in provider
// order. The first provider error stops the run; the returned Result then
// reflects the work done so far.
func (r *Reconciler) Reconcile(ctx context.Context, spec config.DomainSpec, addrs Addrs) (Result, error) {
	result := Result{Domain: spec.Name}

	records, err := r.provider.ListRecords(ctx, spec.Name)
	if err != nil {
		return result, errors.Wrapf(err, "listing records of %s", spec.Name)
	}

	wanted := make(map[string]struct{}, len(spec.Subdomains))
	for _, name := range spec.Subdomains {
		wanted[name] = struct{}{}
	}

	found := make(map[string]struct{}, len(spec.Subdomains))
	var matched []core.Record
	for _, record := range records {
		if _, ok := wanted[record.Name]; !ok || !r.enabled(record.Type) {
			continue
		}
		found[record.Name] = struct{}{}
		matched = append(matched, record)
	}

	for _, name := range spec.Subdomains {
		if _, ok := found[name]; ok {
			continue
		}
		result.Missing = append(result.Missing, name)
		r.logger.Warnf("could not find a record for subdomain %s of %s", name, spec.Name)
		if r.observer != nil {
			r.observer.Missing(spec.Name, name)
		}
	}

	var stale []core.Record
	for _, record := range matched {
		result.Matched++
		status := consts.UpdatedNothing
		if record.Data != addrs.For(record.Type) {
			status = consts.UpdateNeeded
			stale = append(stale, record)
		}
		if r.observer != nil {
			r.observer.Record(spec.Name, record, status)
		}
	}
	result.Stale = len(stale)

	for _, record := range stale {
		data := addrs.For(record.Type)
		err = r.provider.UpdateRecord(ctx, spec.Name, record.ID, record.Type, record.Name, data)
		if err != nil {
			return result, errors.Wrapf(err, "updating %s record %s of %s", record.Type, record.Name, spec.Name)
		}
		result.Updated++
		r.logger.Infof("updated %s record %s.%s from %s to %s", record.Type, record.Name, spec.Name, record.Data, data)
	}

	return result, nil
}

func (r *Reconciler) enabled(recordType string) bool {
	switch recordType {
	case consts.RecordTypeA:
		return true
	case consts.RecordTypeAAAA:
		return r.ipv6
	}
	return false
}
