// Package tracker owns the temporary resources of a single export.
//
// An export creates throwaway objects: a hidden container holding the
// sanitized copy of the graphic, a canvas element and its offscreen pixel
// buffer. Each export gets its own [Tracker]; every object is registered
// under a role when it is created and released by [Tracker.ReleaseAll].
//
//	tr := tracker.New(logger)
//	defer tr.ReleaseAll()
//
//	el, err := tracker.Allocate(tr, "container", func() (*node, error) {
//	    return newContainer(tr.ElementID("container"))
//	})
//
// A tracker only ever releases handles it registered itself. It never
// searches the document for things to remove, so two exports running side by
// side cannot release each other's resources.
//
// Trackers are not safe for concurrent use; an export allocates and releases
// sequentially.
package tracker

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// ElementPrefix prefixes every element id derived from a tracker.
const ElementPrefix = "dl-png"

// ErrRoleInUse is returned by [Allocate] when the role is already registered.
var ErrRoleInUse = errors.New("role already allocated")

// Resource is anything a tracker can release.
type Resource interface {
	Release() error
}

// ReleaseFunc adapts a function to [Resource].
type ReleaseFunc func() error

// Release calls f.
func (f ReleaseFunc) Release() error { return f() }

// Tracker is a per-export registry of temporary resources.
type Tracker struct {
	id        string
	logger    *log.Logger
	roles     []string
	resources map[string]Resource
}

// New returns an empty tracker with a fresh random identifier.
// A nil logger discards release diagnostics.
func New(logger *log.Logger) *Tracker {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Tracker{
		id:        uuid.NewString(),
		logger:    logger,
		resources: make(map[string]Resource),
	}
}

// ID returns the tracker's unique identifier.
func (t *Tracker) ID() string { return t.id }

// ElementID returns the document id for the resource with the given role.
func (t *Tracker) ElementID(role string) string {
	return fmt.Sprintf("%s-%s-%s", ElementPrefix, role, t.id)
}

// Allocate runs factory and registers its result under role.
// The factory is not invoked when role is already registered. When the
// factory fails nothing is registered.
func Allocate[R Resource](t *Tracker, role string, factory func() (R, error)) (R, error) {
	var zero R
	if _, ok := t.resources[role]; ok {
		return zero, fmt.Errorf("%s: %w", role, ErrRoleInUse)
	}
	r, err := factory()
	if err != nil {
		return zero, err
	}
	t.resources[role] = r
	t.roles = append(t.roles, role)
	t.logger.Debug("allocated resource", "role", role, "tracker", t.id)
	return r, nil
}

// ReleaseAll releases every registered resource, most recent first, and
// empties the registry. A failing release is logged and does not stop the
// others. It returns the number of resources released without error.
func (t *Tracker) ReleaseAll() int {
	released := 0
	for _, role := range slices.Backward(t.roles) {
		r := t.resources[role]
		delete(t.resources, role)
		if err := release(r); err != nil {
			t.logger.Warn("release failed", "role", role, "tracker", t.id, "err", err)
			continue
		}
		released++
	}
	t.roles = t.roles[:0]
	return released
}

func release(r Resource) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("release panicked: %v", p)
		}
	}()
	return r.Release()
}

// Len returns the number of registered resources.
func (t *Tracker) Len() int { return len(t.resources) }

// Has reports whether a resource is registered under role.
func (t *Tracker) Has(role string) bool {
	_, ok := t.resources[role]
	return ok
}

// Roles returns the registered roles in allocation order.
func (t *Tracker) Roles() []string {
	return slices.Clone(t.roles)
}
