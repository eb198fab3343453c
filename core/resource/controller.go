// Package resource implements the one CRUD state machine shared by
// every manageable collection: fetch list, open modal form, submit
// create-or-update, delete, refetch. Individual resources only supply
// their endpoint set and payload shaping.
package resource

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/tomeducation/admin/core"
)

type (
	// Entity is a server-owned record: the remote API is the source of
	// truth, the controller's list is a read-through cache.
	Entity interface {
		EntityID() string
	}

	// Endpoints is the slice of the remote API one resource needs.
	// P is the form/payload shape sent on create and update.
	Endpoints[T Entity, P any] interface {
		List(ctx context.Context) ([]T, error)
		Create(ctx context.Context, payload P) error
		Update(ctx context.Context, id string, payload P) error
		Delete(ctx context.Context, id string) error
	}

	Config[T Entity, P any] struct {
		// Name is the plural resource name used in notifications and
		// diagnostics, e.g. "branches".
		Name string
		API  Endpoints[T, P]

		// FormFrom pre-populates the modal form from an existing
		// record. Server-assigned fields never round-trip through it.
		FormFrom func(T) P

		// MediaURL exposes the payload's media field; nil when the
		// resource embeds no media.
		MediaURL func(*P) *string
		// RequireMediaOnCreate rejects a create that has neither a
		// pending file nor a pre-existing URL, before any network call.
		RequireMediaOnCreate bool
		// MaxUploadSize overrides the configured default ceiling
		// when > 0.
		MaxUploadSize int64

		Uploader core.Uploader
		Notifier core.Notifier
		Logger   core.Logger
	}

	// Controller mediates between one remote collection and its
	// list/form view. It is the error boundary for all operations on
	// the resource: nothing escapes it, every failure is logged,
	// notified and leaves the state safe.
	Controller[T Entity, P any] struct {
		cfg Config[T, P]

		mu         sync.Mutex
		items      []T
		loading    bool
		modalOpen  bool
		editing    *T
		form       P
		file       *core.File
		preview    string
		submitting bool
		gen        uint64
		closed     bool
	}
)

func NewController[T Entity, P any](cfg Config[T, P]) *Controller[T, P] {
	return &Controller[T, P]{
		cfg:   cfg,
		items: []T{},
	}
}

func (c *Controller[T, P]) Name() string { return c.cfg.Name }

// FetchAll refreshes the list from the server. Whatever happens — a
// populated response, an empty one, a nil array or an error — the list
// ends up a concrete slice and the loading flag is cleared. Responses
// arriving after the controller was closed, or superseded by a newer
// fetch, are discarded.
func (c *Controller[T, P]) FetchAll(ctx context.Context) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.gen++
	gen := c.gen
	c.loading = true
	c.mu.Unlock()

	items, err := c.cfg.API.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen {
		return // stale response
	}
	c.loading = false
	if err != nil {
		c.cfg.Logger.Error(c.cfg.Name+": fetching list", err)
		c.cfg.Notifier.Error(fmt.Sprintf("Failed to load %s", c.cfg.Name))
		c.items = []T{}
		return
	}
	if items == nil {
		items = []T{}
	}
	c.items = items
}

// OpenCreate opens the modal in create mode: no entity under edit, a
// blank form, no pending file.
func (c *Controller[T, P]) OpenCreate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	var blank P
	c.editing = nil
	c.form = blank
	c.file = nil
	c.preview = ""
	c.modalOpen = true
}

// OpenEdit opens the modal pre-populated from `ent`; the next Submit
// performs an update keyed by its id. An existing media URL seeds the
// preview.
func (c *Controller[T, P]) OpenEdit(ent T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.editing = &ent
	c.form = c.cfg.FormFrom(ent)
	c.file = nil
	c.preview = ""
	if c.cfg.MediaURL != nil {
		c.preview = *c.cfg.MediaURL(&c.form)
	}
	c.modalOpen = true
}

// CloseModal discards the form state without submitting.
func (c *Controller[T, P]) CloseModal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetModal()
}

// caller must hold c.mu
func (c *Controller[T, P]) resetModal() {
	var blank P
	c.modalOpen = false
	c.editing = nil
	c.form = blank
	c.file = nil
	c.preview = ""
}

// SetForm replaces the current form values.
func (c *Controller[T, P]) SetForm(form P) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = form
}

// AttachFile selects a file for the media field; it is uploaded on the
// next Submit, before the entity write.
func (c *Controller[T, P]) AttachFile(file core.File) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := file
	c.file = &f
	c.preview = file.Name
}

// Submit validates the form, resolves media, then creates or updates
// depending on whether an entity is under edit. On success the modal
// closes and the list is refetched; on failure the modal stays open
// with the form intact so the user can retry. Re-entry while a submit
// is in flight is rejected: the API does not dedupe creates.
func (c *Controller[T, P]) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	if c.submitting {
		c.mu.Unlock()
		return nil
	}
	form := c.form
	file := c.file
	editing := c.editing

	// validation happens before any network call
	if err := c.validate(&form, file, editing == nil); err != nil {
		c.mu.Unlock()
		c.notifyError(err)
		return err
	}
	c.submitting = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
	}()

	// the upload must complete before the entity write is issued; if
	// it fails the write is skipped entirely
	if file != nil && c.cfg.MediaURL != nil {
		url, err := c.cfg.Uploader.Upload(ctx, *file)
		if err != nil {
			c.cfg.Logger.Error(c.cfg.Name+": uploading media", err)
			c.notifyError(err)
			return err
		}
		*c.cfg.MediaURL(&form) = url
	}

	var err error
	if editing != nil {
		err = c.cfg.API.Update(ctx, (*editing).EntityID(), form)
	} else {
		err = c.cfg.API.Create(ctx, form)
	}
	if err != nil {
		c.cfg.Logger.Error(c.cfg.Name+": saving", err)
		c.notifyError(err)
		return err
	}

	c.cfg.Notifier.Success(fmt.Sprintf("Saved %s record", c.cfg.Name))
	c.mu.Lock()
	if !c.closed {
		c.resetModal()
	}
	c.mu.Unlock()

	c.FetchAll(ctx)
	return nil
}

// Remove deletes the record then refetches the list; the refetched
// list is trusted verbatim, with no client-side filtering.
func (c *Controller[T, P]) Remove(ctx context.Context, id string) error {
	if err := c.cfg.API.Delete(ctx, id); err != nil {
		c.cfg.Logger.Error(c.cfg.Name+": deleting "+id, err)
		c.notifyError(err)
		return err
	}
	c.cfg.Notifier.Success(fmt.Sprintf("Deleted %s record", c.cfg.Name))
	c.FetchAll(ctx)
	return nil
}

// Close marks the controller unmounted; responses still in flight are
// discarded instead of mutating state that no view owns anymore.
func (c *Controller[T, P]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *Controller[T, P]) validate(form *P, file *core.File, isCreate bool) error {
	if err := core.CheckStruct(form); err != nil {
		return err
	}
	if c.cfg.MediaURL != nil {
		if file != nil {
			max := c.cfg.MaxUploadSize
			if max == 0 {
				max = core.Conf.Upload.MaxSize
			}
			if file.Size > max {
				return core.NewValidationError(
					errors.Errorf("file exceeds the %dMB limit", max>>20),
					core.FieldError{Field: "file", Error: "file too large"},
				)
			}
		} else if isCreate && c.cfg.RequireMediaOnCreate && *c.cfg.MediaURL(form) == "" {
			return core.NewValidationError(
				errors.New("media file is required"),
				core.FieldError{Field: "file", Error: "this field is required"},
			)
		}
	}
	return nil
}

func (c *Controller[T, P]) notifyError(err error) {
	if vErr, ok := err.(*core.ValidationError); ok && len(vErr.Fields) > 0 {
		for _, fld := range vErr.Fields {
			c.cfg.Notifier.Error(fmt.Sprintf("%s: %s", fld.Field, fld.Error))
		}
		return
	}
	c.cfg.Notifier.Error(err.Error())
}

// Read-only observations of the controller state.

// Items returns the current list; never nil.
func (c *Controller[T, P]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]T, len(c.items))
	copy(items, c.items)
	return items
}

func (c *Controller[T, P]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Controller[T, P]) ModalOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modalOpen
}

// Editing returns the entity under edit, or nil in create mode.
func (c *Controller[T, P]) Editing() *T {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editing == nil {
		return nil
	}
	ent := *c.editing
	return &ent
}

func (c *Controller[T, P]) Form() P {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// Preview is the media preview source: the pending file's name, or the
// entity's existing URL when editing.
func (c *Controller[T, P]) Preview() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.preview
}
