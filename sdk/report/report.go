package report

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/jxo-me/dyndns/consts"
	"github.com/jxo-me/dyndns/core/ddns"
)

const columnWidth = 30

type Option func(*Reporter)

// WithColor forces colored status words on or off.
func WithColor(enabled bool) Option {
	return func(r *Reporter) {
		r.colored = enabled
	}
}

// Reporter prints one line per evaluated record and a final summary.
type Reporter struct {
	mu      sync.Mutex
	w       io.Writer
	colored bool
	ok      *color.Color
	stale   *color.Color
	warn    *color.Color
}

func New(w io.Writer, opts ...Option) *Reporter {
	r := &Reporter{
		w:       w,
		colored: !color.NoColor,
		ok:      color.New(color.FgGreen),
		stale:   color.New(color.FgYellow),
		warn:    color.New(color.FgRed, color.Bold),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.colored {
		for _, c := range []*color.Color{r.ok, r.stale, r.warn} {
			c.EnableColor()
		}
	} else {
		for _, c := range []*color.Color{r.ok, r.stale, r.warn} {
			c.DisableColor()
		}
	}
	return r
}

// Record implements ddns.Observer.
func (r *Reporter) Record(domain string, record ddns.Record, status consts.UpdateStatusType) {
	c := r.ok
	if status != consts.UpdatedNothing {
		c = r.stale
	}
	r.printf("%-*s%-*s%s%s\n",
		columnWidth, domain,
		columnWidth, record.Name,
		center(record.Data, columnWidth),
		c.Sprint(string(status)))
}

// Missing implements ddns.Observer.
func (r *Reporter) Missing(domain, name string) {
	r.printf("%s Could not find an A record for subdomain %s\n", r.warn.Sprint("WARNING:"), name)
}

// Summary prints the number of records updated by the run.
func (r *Reporter) Summary(updated int) {
	r.printf("\nUpdated %d records\n", updated)
}

func (r *Reporter) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, format, args...)
}

// center pads s on both sides to width, extra space going right.
func center(s string, width int) string {
	pad := width - len(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}
