package resource

import (
	"errors"
	"sync"
	"testing"

	"github.com/wippyai/hostinterop/managed"
)

// fakeObject is a comparable managed.Object without a type
type fakeObject struct {
	name    string
	dropped int
}

func (*fakeObject) Type() managed.Type { return nil }

func (o *fakeObject) Drop() { o.dropped++ }

func obj(name string) *fakeObject { return &fakeObject{name: name} }

func TestLocalBackend_Basic(t *testing.T) {
	b := NewLocalBackend()
	o := obj("a")

	handle, err := b.Create(KindPinned, o)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if handle == 0 {
		t.Fatal("Expected non-zero handle")
	}

	got, ok := b.Get(handle)
	if !ok || got != managed.Object(o) {
		t.Fatalf("Get = %v, %v", got, ok)
	}
	if k, ok := b.Kind(handle); !ok || k != KindPinned {
		t.Fatalf("Kind = %v, %v", k, ok)
	}

	got, ok = b.Drop(handle)
	if !ok || got != managed.Object(o) {
		t.Fatalf("Drop = %v, %v", got, ok)
	}
	if _, ok := b.Get(handle); ok {
		t.Fatal("Expected Get to fail after Drop")
	}
	if o.dropped != 0 {
		t.Fatal("backend Drop must not run the object's destructor")
	}
}

func TestLocalBackend_HandleReuse(t *testing.T) {
	b := NewLocalBackend()

	h1, _ := b.Create(KindIdentity, obj("1"))
	h2, _ := b.Create(KindIdentity, obj("2"))
	h3, _ := b.Create(KindIdentity, obj("3"))

	b.Drop(h2)
	b.Drop(h1)

	h4, _ := b.Create(KindIdentity, obj("4"))
	h5, _ := b.Create(KindIdentity, obj("5"))
	if h4 != h1 || h5 != h2 {
		t.Fatalf("freed slots not reused LIFO: h4=%d h5=%d", h4, h5)
	}
	for _, h := range []Handle{h3, h4, h5} {
		if _, ok := b.Get(h); !ok {
			t.Fatalf("handle %d should be valid", h)
		}
	}
}

func TestLocalBackend_Close(t *testing.T) {
	b := NewLocalBackend()
	o := obj("a")
	b.Create(KindPinned, o)

	if err := b.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if o.dropped != 1 {
		t.Fatalf("Close dropped %d times", o.dropped)
	}
	_, err := b.Create(KindPinned, obj("b"))
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("Expected ErrClosed after Close, got %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatal("second Close must be a no-op")
	}
}

func TestLocalBackend_Concurrent(t *testing.T) {
	b := NewLocalBackend()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, _ := b.Create(KindIdentity, obj("x"))
			b.Get(h)
			b.Drop(h)
		}()
	}

	wg.Wait()
	if b.Len() != 0 {
		t.Fatalf("Len = %d after all drops", b.Len())
	}
}

func TestLocalBackend_LenAndEach(t *testing.T) {
	b := NewLocalBackend()

	h1, _ := b.Create(KindIdentity, obj("a"))
	b.Create(KindPinned, obj("b"))
	b.Create(KindIdentity, obj("c"))
	if b.Len() != 3 {
		t.Fatalf("Len = %d", b.Len())
	}
	b.Drop(h1)
	if b.Len() != 2 {
		t.Fatalf("Len = %d after drop", b.Len())
	}

	var names []string
	b.Each(func(_ Handle, _ Kind, o managed.Object) bool {
		names = append(names, o.(*fakeObject).name)
		return true
	})
	if len(names) != 2 || names[0] != "b" || names[1] != "c" {
		t.Fatalf("Each = %v", names)
	}

	count := 0
	b.Each(func(Handle, Kind, managed.Object) bool {
		count++
		return false
	})
	if count != 1 {
		t.Fatalf("early termination visited %d", count)
	}
}

func TestLocalBackend_InvalidHandle(t *testing.T) {
	b := NewLocalBackend()

	if _, ok := b.Get(0); ok {
		t.Fatal("Handle 0 should be invalid")
	}
	if _, ok := b.Kind(0); ok {
		t.Fatal("Handle 0 has no kind")
	}
	if _, ok := b.Drop(0); ok {
		t.Fatal("Handle 0 should fail Drop")
	}
	if _, ok := b.Get(999); ok {
		t.Fatal("Non-existent handle should be invalid")
	}
}
