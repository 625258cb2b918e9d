// Package admin drives the administrative console: section loads, the create/edit form
// lifecycle, deletions and the transient messages reporting their outcome.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jifma-project/jifmactl/internal/fields"
	"github.com/jifma-project/jifmactl/internal/gateway"
	"github.com/jifma-project/jifmactl/internal/record"
)

var (
	// ErrBusy is returned when a submit or delete is attempted while another operation runs
	ErrBusy = errors.New("another operation is in progress")
	// ErrUnknownSection is returned for section names outside the menu
	ErrUnknownSection = errors.New("unknown section")
	// ErrNoModal is returned when submitting or editing without an open form
	ErrNoModal = errors.New("no form is open")
	// ErrDeclined is returned when the operator does not confirm a deletion
	ErrDeclined = errors.New("deletion not confirmed")
	// ErrSuperseded is returned by a load whose section was deselected before it finished
	ErrSuperseded = errors.New("section changed before load finished")
	// ErrLockedField is returned when editing a field that is fixed once the record exists
	ErrLockedField = errors.New("field cannot be changed on an existing record")
	// ErrNoConfirmer is returned by Remove when no Confirmer is given
	ErrNoConfirmer = errors.New("deletion requires a confirmer")
)

// Confirmer asks the operator to approve a deletion
type Confirmer interface {
	Confirm(kind record.Kind, id record.ID) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(kind record.Kind, id record.ID) (bool, error)

// Confirm implements Confirmer
func (f ConfirmFunc) Confirm(kind record.Kind, id record.ID) (bool, error) {
	return f(kind, id)
}

// AlwaysConfirm approves every deletion without asking
var AlwaysConfirm = ConfirmFunc(func(record.Kind, record.ID) (bool, error) { return true, nil })

// Modal is the state of the create/edit form
type Modal struct {
	Open bool
	Kind record.Kind
	// Editing is the record being edited, nil in create mode
	Editing record.Record
}

// LoadError reports the collections a section load could not refresh
type LoadError struct {
	Failed map[record.Kind]error
}

func (e *LoadError) Error() string {
	kinds := make([]string, 0, len(e.Failed))
	for _, k := range record.Kinds() {
		if err, ok := e.Failed[k]; ok {
			kinds = append(kinds, fmt.Sprintf("%s: %v", k.Collection(), err))
		}
	}
	return "loading " + strings.Join(kinds, ", ")
}

// Unwrap exposes the individual failures to errors.Is and errors.As
func (e *LoadError) Unwrap() []error {
	out := make([]error, 0, len(e.Failed))
	for _, k := range record.Kinds() {
		if err, ok := e.Failed[k]; ok {
			out = append(out, err)
		}
	}
	return out
}

// Config holds the orchestrator settings
type Config struct {
	// MessageTTL is how long messages stay visible; zero keeps them until superseded
	MessageTTL time.Duration
	Logger     *slog.Logger
}

// Orchestrator owns the cached collections and the form state of one admin session
type Orchestrator struct {
	gw       gateway.Gateway
	registry *fields.Registry
	logger   *slog.Logger
	ttl      time.Duration
	after    afterFunc

	mu          sync.Mutex
	active      Section
	generation  uint64
	collections map[record.Kind]*Collection
	modal       Modal
	draft       map[string]string
	inflight    int
	message     *Message
	messageSeq  uint64
	stopExpiry  func() bool
}

// New creates an orchestrator over gw. The dashboard is selected but nothing is loaded
// until SelectSection is called.
func New(gw gateway.Gateway, registry *fields.Registry, cfg Config) *Orchestrator {
	if registry == nil {
		registry = fields.NewRegistry()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		gw:          gw,
		registry:    registry,
		logger:      logger,
		ttl:         cfg.MessageTTL,
		after:       timeAfterFunc,
		active:      SectionDashboard,
		collections: make(map[record.Kind]*Collection),
	}
}

// Active returns the selected section
func (o *Orchestrator) Active() Section {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.active
}

// Loading reports whether a load, submit or delete is in flight
func (o *Orchestrator) Loading() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inflight > 0
}

// Collection returns the cached snapshot of kind; it is empty before the first load
func (o *Orchestrator) Collection(kind record.Kind) *Collection {
	o.mu.Lock()
	defer o.mu.Unlock()
	if c, ok := o.collections[kind]; ok {
		return c
	}
	return newCollection(nil)
}

// Find looks up a cached record
func (o *Orchestrator) Find(kind record.Kind, id record.ID) (record.Record, bool) {
	return o.Collection(kind).Get(id)
}

// SelectSection makes s the active section and loads its collections. The dashboard
// loads all five concurrently; settings loads nothing.
func (o *Orchestrator) SelectSection(ctx context.Context, s Section) error {
	if _, ok := sectionNames[s]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownSection, int(s))
	}

	o.mu.Lock()
	o.active = s
	o.generation++
	gen := o.generation
	o.mu.Unlock()

	return o.load(ctx, gen, s.Kinds())
}

// Reload refreshes the active section
func (o *Orchestrator) Reload(ctx context.Context) error {
	o.mu.Lock()
	o.generation++
	gen := o.generation
	kinds := o.active.Kinds()
	o.mu.Unlock()

	return o.load(ctx, gen, kinds)
}

// LoadReferences fetches the collections whose records a form of kind offers as options.
// It does not change the active section.
func (o *Orchestrator) LoadReferences(ctx context.Context, kind record.Kind) error {
	o.mu.Lock()
	gen := o.generation
	o.mu.Unlock()

	return o.load(ctx, gen, o.registry.References(kind))
}

// load fetches kinds concurrently. Each result replaces its collection as soon as it
// arrives, provided gen is still current; failed kinds keep their previous snapshot.
func (o *Orchestrator) load(ctx context.Context, gen uint64, kinds []record.Kind) error {
	if len(kinds) == 0 {
		return nil
	}
	o.mu.Lock()
	o.inflight++
	o.mu.Unlock()

	var g errgroup.Group
	var failMu sync.Mutex
	failed := make(map[record.Kind]error)
	for _, kind := range kinds {
		g.Go(func() error {
			records, err := o.gw.List(ctx, kind)
			if err != nil {
				failMu.Lock()
				failed[kind] = err
				failMu.Unlock()
				return nil
			}

			o.mu.Lock()
			defer o.mu.Unlock()
			if o.generation != gen {
				return nil
			}
			o.collections[kind] = newCollection(records)
			return nil
		})
	}
	_ = g.Wait()

	o.mu.Lock()
	defer o.mu.Unlock()
	o.inflight--
	if o.generation != gen {
		o.logger.Debug("discarding superseded load", "kinds", kinds)
		return ErrSuperseded
	}

	if len(failed) == 0 {
		return nil
	}
	for kind, err := range failed {
		o.logger.Warn("load failed",
			"operation", "list",
			"kind", kind.String(),
			"class", gateway.Classify(err),
			"error", err)
	}
	o.showLocked(msgLoadFailed, MessageError)
	return &LoadError{Failed: failed}
}

// OpenModal opens the form for kind. A nil rec opens it in create mode with the
// registry defaults; otherwise the draft is seeded from rec. Any open form is replaced.
func (o *Orchestrator) OpenModal(kind record.Kind, rec record.Record) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown record kind %d", int(kind))
	}
	if rec != nil && rec.Kind() != kind {
		return fmt.Errorf("cannot edit a %s in a %s form", rec.Kind(), kind)
	}

	var draft map[string]string
	if rec == nil {
		draft = o.registry.Defaults(kind)
	} else {
		draft = o.registry.Values(rec)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.modal = Modal{Open: true, Kind: kind, Editing: rec}
	o.draft = draft
	return nil
}

// Modal returns the form state
func (o *Orchestrator) Modal() Modal {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.modal
}

// Draft returns a copy of the values entered in the open form
func (o *Orchestrator) Draft() map[string]string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return maps.Clone(o.draft)
}

// SetField changes one value of the open form
func (o *Orchestrator) SetField(name, value string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.modal.Open {
		return ErrNoModal
	}
	f, ok := o.registry.Field(o.modal.Kind, name)
	if !ok {
		return fmt.Errorf("%s has no field %q", o.modal.Kind, name)
	}
	if f.Locked && o.modal.Editing != nil && o.draft[name] != value {
		return fmt.Errorf("%w: %s", ErrLockedField, name)
	}
	o.draft[name] = value
	return nil
}

// CloseModal discards the form and its draft
func (o *Orchestrator) CloseModal() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closeLocked()
}

func (o *Orchestrator) closeLocked() {
	o.modal = Modal{}
	o.draft = nil
}

// Submit saves the open form. A draft missing required fields is rejected with a
// *fields.ValidationGap before any request is made. On success the form closes and
// the active section is reloaded; on failure the form and draft stay as they were.
func (o *Orchestrator) Submit(ctx context.Context) error {
	o.mu.Lock()
	if o.inflight > 0 {
		o.mu.Unlock()
		return ErrBusy
	}
	if !o.modal.Open {
		o.mu.Unlock()
		return ErrNoModal
	}
	modal := o.modal
	draft := maps.Clone(o.draft)

	payload, err := o.registry.Coerce(modal.Kind, draft)
	if err != nil {
		o.mu.Unlock()
		return err
	}
	o.inflight++
	o.mu.Unlock()

	op := "create"
	if modal.Editing != nil {
		op = "update"
		_, err = o.gw.Update(ctx, modal.Kind, modal.Editing.RecordID(), payload)
	} else {
		_, err = o.gw.Create(ctx, modal.Kind, payload)
	}

	o.mu.Lock()
	o.inflight--
	if err != nil {
		o.logger.Warn("save failed",
			"operation", op,
			"kind", modal.Kind.String(),
			"class", gateway.Classify(err),
			"error", err)
		o.showLocked(msgSaveFailed, MessageError)
		o.mu.Unlock()
		return fmt.Errorf("saving %s: %w", modal.Kind, err)
	}

	if modal.Editing != nil {
		o.showLocked(msgUpdated, MessageSuccess)
	} else {
		o.showLocked(msgCreated, MessageSuccess)
	}
	o.closeLocked()
	o.mu.Unlock()

	o.logger.Info("record saved", "operation", op, "kind", modal.Kind.String())
	return o.reloadAfterMutation(ctx)
}

// Remove deletes a record after confirm approves it; callers that skip the prompt pass
// AlwaysConfirm. The collection changes only through the reload that follows a
// successful delete.
func (o *Orchestrator) Remove(ctx context.Context, kind record.Kind, id record.ID, confirm Confirmer) error {
	if confirm == nil {
		return ErrNoConfirmer
	}
	if o.Loading() {
		return ErrBusy
	}
	ok, err := confirm.Confirm(kind, id)
	if err != nil {
		return fmt.Errorf("confirming deletion: %w", err)
	}
	if !ok {
		return ErrDeclined
	}

	o.mu.Lock()
	if o.inflight > 0 {
		o.mu.Unlock()
		return ErrBusy
	}
	o.inflight++
	o.mu.Unlock()

	err = o.gw.Delete(ctx, kind, id)

	o.mu.Lock()
	o.inflight--
	if err != nil {
		o.logger.Warn("delete failed",
			"operation", "delete",
			"kind", kind.String(),
			"id", id.String(),
			"class", gateway.Classify(err),
			"error", err)
		o.showLocked(msgDeleteFailed, MessageError)
		o.mu.Unlock()
		return fmt.Errorf("deleting %s %s: %w", kind, id, err)
	}
	o.showLocked(msgDeleted, MessageSuccess)
	o.mu.Unlock()

	o.logger.Info("record deleted", "kind", kind.String(), "id", id.String())
	return o.reloadAfterMutation(ctx)
}

// reloadAfterMutation refreshes the active section. The write already succeeded, so a
// failed refresh is reported through the message only.
func (o *Orchestrator) reloadAfterMutation(ctx context.Context) error {
	err := o.Reload(ctx)
	if err != nil && !errors.Is(err, ErrSuperseded) {
		o.logger.Debug("reload after write failed", "error", err)
	}
	return nil
}

// Summary is the dashboard overview
type Summary struct {
	Counts    map[record.Kind]int
	Finished  int
	Scheduled int
}

// Summary counts the cached records of every kind
func (o *Orchestrator) Summary() Summary {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := Summary{Counts: make(map[record.Kind]int, len(record.Kinds()))}
	for _, kind := range record.Kinds() {
		s.Counts[kind] = o.collections[kind].Len()
	}
	for _, rec := range o.collections[record.KindGame].Records() {
		g, ok := rec.(record.Game)
		if !ok {
			continue
		}
		switch {
		case g.Status.Is(record.StatusFinished):
			s.Finished++
		case g.Status.Is(record.StatusScheduled):
			s.Scheduled++
		}
	}
	return s
}

// Options lists the selectable values of a field of kind, drawn from the cached
// referenced collection or the field's fixed choices.
func (o *Orchestrator) Options(kind record.Kind, name string) ([]fields.Option, error) {
	f, ok := o.registry.Field(kind, name)
	if !ok {
		return nil, fmt.Errorf("%s has no field %q", kind, name)
	}
	if f.Ref == nil {
		return fields.Options(f, nil), nil
	}
	return fields.Options(f, o.Collection(*f.Ref).Records()), nil
}
