package runtime

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/hostinterop/adapter"
	"github.com/wippyai/hostinterop/dispatch"
	"github.com/wippyai/hostinterop/errors"
)

func newEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	eng, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = eng.Close() })
	return eng
}

func TestEngine_Context(t *testing.T) {
	eng := newEngine(t, DefaultOptions())
	ctx, err := eng.NewContext()
	if err != nil {
		t.Fatal(err)
	}
	if ctx.ID() == "" || ctx.Machine().ID() != ctx.ID() {
		t.Fatalf("context id %q, machine id %q", ctx.ID(), ctx.Machine().ID())
	}
	if got, ok := eng.Context(ctx.ID()); !ok || got != ctx {
		t.Fatal("engine does not track the context")
	}

	m := ctx.Machine()
	list := m.NewArrayList(m.Str("a"), m.Str("b"))
	n, err := ctx.Library().GetArraySize(list)
	if err != nil || n != 2 {
		t.Fatalf("size = %d, %v", n, err)
	}
	v, err := ctx.Send(list, dispatch.HasArrayElements)
	if err != nil || v != true {
		t.Fatalf("HasArrayElements = %v, %v", v, err)
	}
	if lang, _ := ctx.Library().GetLanguage(list); lang != "java" {
		t.Fatalf("language = %q", lang)
	}

	if err := ctx.Close(); err != nil {
		t.Fatal(err)
	}
	if err := ctx.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if !ctx.Closed() || eng.Contexts() != 0 {
		t.Fatal("context still open")
	}
	_, err = ctx.Library().GetArraySize(list)
	if !errors.IsKind(err, errors.KindClosed) {
		t.Fatalf("after close err = %v", err)
	}
}

func TestEngine_SharesAcrossContexts(t *testing.T) {
	eng := newEngine(t, DefaultOptions())
	a, err := eng.NewContext()
	if err != nil {
		t.Fatal(err)
	}
	b, err := eng.NewContext()
	if err != nil {
		t.Fatal(err)
	}
	lib := eng.Library()
	for _, c := range []*Context{a, b} {
		if _, err := lib.AsLong(c.Machine().MustBox(int32(3))); err != nil {
			t.Fatal(err)
		}
	}
	st := eng.Stats()
	if st.SharedEntries != 1 || st.Instances != 2 {
		t.Fatalf("stats = %+v", st)
	}
	if st.PICHits == 0 {
		t.Fatal("second context missed the shared cache")
	}
}

func TestEngine_DisableSharing(t *testing.T) {
	opts := DefaultOptions()
	opts.DisableSharing = true
	eng := newEngine(t, opts)
	c, err := eng.NewContext()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := eng.Library().AsLong(c.Machine().MustBox(int32(3))); err != nil {
		t.Fatal(err)
	}
	if st := eng.Stats(); st.SharedEntries != 0 {
		t.Fatalf("shared entries = %d with sharing disabled", st.SharedEntries)
	}
}

func TestEngine_DisplaySideEffects(t *testing.T) {
	opts := DefaultOptions()
	opts.DisplaySideEffects = true
	eng := newEngine(t, opts)
	c, err := eng.NewContext()
	if err != nil {
		t.Fatal(err)
	}
	if s := eng.Library().ToDisplayString(c.Machine().MustBox(int32(7))); s != "7" {
		t.Fatalf("display = %q", s)
	}
}

func TestEngine_Close(t *testing.T) {
	eng, err := New(DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	c, err := eng.NewContext()
	if err != nil {
		t.Fatal(err)
	}
	if err := eng.Close(); err != nil {
		t.Fatal(err)
	}
	if !c.Closed() {
		t.Fatal("engine close left a context open")
	}
	_, err = eng.NewContext()
	if !errors.IsKind(err, errors.KindClosed) {
		t.Fatalf("NewContext after close err = %v", err)
	}
}

func TestEngine_Logger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	opts := DefaultOptions()
	opts.Logger = zap.New(core)
	eng, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		SetLogger(zap.NewNop())
		_ = eng.Close()
	}()
	if logs.FilterMessage("engine created").Len() != 1 {
		t.Fatalf("logged %v", logs.All())
	}
}

func TestContext_DirectBuffer(t *testing.T) {
	opts := DefaultOptions()
	opts.MemoryPages = 1
	eng := newEngine(t, opts)
	c, err := eng.NewContext()
	if err != nil {
		t.Fatal(err)
	}
	buf, err := c.DirectBuffer(context.Background(), 64, 16)
	if err != nil {
		t.Fatal(err)
	}
	lib := eng.Library()
	if err := lib.WriteBufferInt(buf, adapter.BigEndian, 0, 258); err != nil {
		t.Fatal(err)
	}
	if b, _ := lib.ReadBufferByte(buf, 3); b != 2 {
		t.Fatalf("low byte = %d", b)
	}

	plain := newEngine(t, DefaultOptions())
	pc, err := plain.NewContext()
	if err != nil {
		t.Fatal(err)
	}
	_, err = pc.DirectBuffer(context.Background(), 0, 4)
	if !errors.IsKind(err, errors.KindUnsupported) {
		t.Fatalf("no memory err = %v", err)
	}
}

func TestEngine_ConcurrentContexts(t *testing.T) {
	eng := newEngine(t, DefaultOptions())
	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			c, err := eng.NewContext()
			if err != nil {
				return err
			}
			m := c.Machine()
			hm := m.NewHashMap()
			if err := c.Library().WriteHashEntry(hm, "k", int64(1)); err != nil {
				return err
			}
			if _, err := c.Library().ReadHashValue(hm, "k"); err != nil {
				return err
			}
			return c.Close()
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if n := eng.Contexts(); n != 0 {
		t.Fatalf("%d contexts left open", n)
	}
}

func TestParseConfig(t *testing.T) {
	t.Setenv(EnvLogLevel, "")

	tests := []struct {
		name string
		text string
		want func(Options) bool
		kind errors.Kind
	}{
		{"empty keeps defaults", "", func(o Options) bool {
			return o.SharedCacheLimit == dispatch.DefaultSharedCacheLimit && o.Language == "java"
		}, ""},
		{"all keys", `
shared_cache_limit = 3
disable_sharing = true
display_side_effects = true
language = "kotlin"
log_level = "debug"
memory_pages = 2
`, func(o Options) bool {
			return o.SharedCacheLimit == 3 && o.DisableSharing && o.DisplaySideEffects &&
				o.Language == "kotlin" && o.LogLevel == "debug" && o.MemoryPages == 2
		}, ""},
		{"explicit zero limit", "shared_cache_limit = 0", func(o Options) bool {
			return o.SharedCacheLimit == 0
		}, ""},
		{"unknown key", "cache = 1", nil, errors.KindInvalidInput},
		{"bad level", `log_level = "loud"`, nil, errors.KindInvalidInput},
		{"bad syntax", "language = ", nil, errors.KindInvalidInput},
		{"too many pages", "memory_pages = 70000", nil, errors.KindInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := ParseConfig(tt.text)
			if tt.kind != "" {
				if !errors.IsKind(err, tt.kind) {
					t.Fatalf("err = %v, want %s", err, tt.kind)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !tt.want(opts) {
				t.Fatalf("options = %+v", opts)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "interop.toml")
	if err := os.WriteFile(path, []byte(`log_level = "warn"`), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvLogLevel, "error")
	opts, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if opts.LogLevel != "error" {
		t.Fatalf("env override ignored: %q", opts.LogLevel)
	}
	if _, err := opts.NewLogger(); err != nil {
		t.Fatal(err)
	}

	_, err = LoadConfig(filepath.Join(dir, "missing.toml"))
	if !errors.IsKind(err, errors.KindNotFound) {
		t.Fatalf("missing file err = %v", err)
	}
}

func TestNew_InvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.LogLevel = "chatty"
	if _, err := New(opts); !errors.IsKind(err, errors.KindInvalidInput) {
		t.Fatalf("err = %v", err)
	}
}
