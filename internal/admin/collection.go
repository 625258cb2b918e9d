package admin

import (
	"github.com/jifma-project/jifmactl/internal/record"
)

// Collection is an id-indexed snapshot of one kind, in the order the API returned it.
// A snapshot is never modified; loads replace it whole.
type Collection struct {
	order []record.ID
	byID  map[record.ID]record.Record
}

func newCollection(records []record.Record) *Collection {
	c := &Collection{
		order: make([]record.ID, 0, len(records)),
		byID:  make(map[record.ID]record.Record, len(records)),
	}
	for _, rec := range records {
		id := rec.RecordID()
		if _, dup := c.byID[id]; !dup {
			c.order = append(c.order, id)
		}
		c.byID[id] = rec
	}
	return c
}

// Len returns the number of records
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// Get looks up a record by id
func (c *Collection) Get(id record.ID) (record.Record, bool) {
	if c == nil {
		return nil, false
	}
	rec, ok := c.byID[id]
	return rec, ok
}

// Records returns the records in API order
func (c *Collection) Records() []record.Record {
	if c == nil {
		return nil
	}
	out := make([]record.Record, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}
