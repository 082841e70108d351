package memory

import (
	"context"
	"sync"

	appoutbox "stayhub/internal/app/outbox"
)

// Outbox buffers event records until flushed. An optional publish hook lets
// tests and the memory runtime observe what would go to the broker.
type Outbox struct {
	mu        sync.Mutex
	records   []appoutbox.EventRecord
	published []appoutbox.EventRecord

	Publish func(ctx context.Context, record appoutbox.EventRecord) error
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, record)
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	pending := o.records
	o.records = nil
	o.mu.Unlock()

	for _, rec := range pending {
		if o.Publish != nil {
			if err := o.Publish(ctx, rec); err != nil {
				return err
			}
		}
		o.mu.Lock()
		o.published = append(o.published, rec)
		o.mu.Unlock()
	}
	return nil
}

// Published returns a snapshot of flushed records.
func (o *Outbox) Published() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]appoutbox.EventRecord(nil), o.published...)
}

// Pending returns a snapshot of records not yet flushed.
func (o *Outbox) Pending() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]appoutbox.EventRecord(nil), o.records...)
}

var _ appoutbox.Outbox = (*Outbox)(nil)
