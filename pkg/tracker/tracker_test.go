package tracker

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

type fakeResource struct {
	name     string
	released int
	err      error
	order    *[]string
}

func (f *fakeResource) Release() error {
	f.released++
	if f.order != nil {
		*f.order = append(*f.order, f.name)
	}
	return f.err
}

func TestAllocateRegisters(t *testing.T) {
	tr := New(nil)

	r, err := Allocate(tr, "surface", func() (*fakeResource, error) {
		return &fakeResource{name: "surface"}, nil
	})
	if err != nil {
		t.Fatalf("Allocate() error: %v", err)
	}
	if r.name != "surface" {
		t.Errorf("Allocate() returned %q, want %q", r.name, "surface")
	}
	if !tr.Has("surface") || tr.Len() != 1 {
		t.Errorf("tracker should hold exactly the surface, got roles %v", tr.Roles())
	}
}

func TestAllocateRoleInUse(t *testing.T) {
	tr := New(nil)
	_, _ = Allocate(tr, "container", func() (*fakeResource, error) { return &fakeResource{}, nil })

	called := false
	_, err := Allocate(tr, "container", func() (*fakeResource, error) {
		called = true
		return &fakeResource{}, nil
	})
	if !errors.Is(err, ErrRoleInUse) {
		t.Errorf("second Allocate() error = %v, want ErrRoleInUse", err)
	}
	if called {
		t.Error("factory should not run for a role in use")
	}
}

func TestAllocateFactoryError(t *testing.T) {
	tr := New(nil)
	boom := errors.New("boom")

	_, err := Allocate(tr, "surface", func() (*fakeResource, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Errorf("Allocate() error = %v, want %v", err, boom)
	}
	if tr.Len() != 0 {
		t.Errorf("Len() = %d after failed factory, want 0", tr.Len())
	}
}

func TestReleaseAllReverseOrder(t *testing.T) {
	tr := New(nil)
	var order []string
	for _, role := range []string{"container", "surface", "scratch"} {
		_, _ = Allocate(tr, role, func() (*fakeResource, error) {
			return &fakeResource{name: role, order: &order}, nil
		})
	}

	if n := tr.ReleaseAll(); n != 3 {
		t.Errorf("ReleaseAll() = %d, want 3", n)
	}
	want := []string{"scratch", "surface", "container"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("release order = %v, want %v", order, want)
	}
}

func TestReleaseAllIdempotent(t *testing.T) {
	tr := New(nil)
	r, _ := Allocate(tr, "surface", func() (*fakeResource, error) { return &fakeResource{}, nil })

	tr.ReleaseAll()
	if tr.Len() != 0 {
		t.Fatalf("Len() = %d after ReleaseAll, want 0", tr.Len())
	}

	if n := tr.ReleaseAll(); n != 0 {
		t.Errorf("second ReleaseAll() = %d, want 0", n)
	}
	if r.released != 1 {
		t.Errorf("resource released %d times, want 1", r.released)
	}
}

func TestReleaseAllEmpty(t *testing.T) {
	if n := New(nil).ReleaseAll(); n != 0 {
		t.Errorf("ReleaseAll() on empty tracker = %d, want 0", n)
	}
}

func TestReleaseAllContinuesAfterFailure(t *testing.T) {
	var buf bytes.Buffer
	tr := New(log.New(&buf))

	first, _ := Allocate(tr, "container", func() (*fakeResource, error) { return &fakeResource{}, nil })
	_, _ = Allocate(tr, "surface", func() (*fakeResource, error) {
		return &fakeResource{err: errors.New("already detached")}, nil
	})
	_, _ = Allocate(tr, "panicky", func() (ReleaseFunc, error) {
		return ReleaseFunc(func() error { panic("bad resource") }), nil
	})

	if n := tr.ReleaseAll(); n != 1 {
		t.Errorf("ReleaseAll() = %d, want 1", n)
	}
	if first.released != 1 {
		t.Error("container should be released despite other failures")
	}
	if tr.Len() != 0 {
		t.Errorf("Len() = %d, want 0", tr.Len())
	}
	if !strings.Contains(buf.String(), "already detached") {
		t.Errorf("release failure should be logged, got %q", buf.String())
	}
}

func TestTrackersAreIsolated(t *testing.T) {
	a, b := New(nil), New(nil)
	if a.ID() == b.ID() {
		t.Fatal("trackers share an id")
	}
	if a.ElementID("surface") == b.ElementID("surface") {
		t.Error("element ids collide across trackers")
	}
	if !strings.HasPrefix(a.ElementID("surface"), ElementPrefix+"-surface-") {
		t.Errorf("ElementID() = %q, want prefix %q", a.ElementID("surface"), ElementPrefix+"-surface-")
	}

	ra, _ := Allocate(a, "surface", func() (*fakeResource, error) { return &fakeResource{}, nil })
	rb, _ := Allocate(b, "surface", func() (*fakeResource, error) { return &fakeResource{}, nil })

	a.ReleaseAll()
	if ra.released != 1 {
		t.Error("a's resource should be released")
	}
	if rb.released != 0 || !b.Has("surface") {
		t.Error("releasing a must not touch b's resources")
	}
}
