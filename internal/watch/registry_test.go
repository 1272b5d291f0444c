package watch

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/TFMV/fsview/internal/fserr"
	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHandle struct {
	mu       sync.Mutex
	closed   int
	closeErr error
	fn       func(NativeEvent)
}

func (h *fakeHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed++
	return h.closeErr
}

func (h *fakeHandle) closes() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

type fakeBackend struct {
	mu      sync.Mutex
	handles []*fakeHandle
	openErr error
}

func (b *fakeBackend) Open(_ string, fn func(NativeEvent)) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.openErr != nil {
		return nil, b.openErr
	}
	h := &fakeHandle{fn: fn}
	b.handles = append(b.handles, h)
	return h, nil
}

func (b *fakeBackend) opened() []*fakeHandle {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*fakeHandle(nil), b.handles...)
}

type recordingSink struct {
	mu     sync.Mutex
	topics []string
	events []ChangeEvent
}

func (s *recordingSink) Emit(topic string, event ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topics = append(s.topics, topic)
	s.events = append(s.events, event)
}

type countingRecorder struct {
	mu     sync.Mutex
	active int
	kinds  map[string]int
}

func (r *countingRecorder) SetActiveWatches(n int) {
	r.mu.Lock()
	r.active = n
	r.mu.Unlock()
}

func (r *countingRecorder) CountEvent(kind string) {
	r.mu.Lock()
	if r.kinds == nil {
		r.kinds = make(map[string]int)
	}
	r.kinds[kind]++
	r.mu.Unlock()
}

func TestRegistryStartStop(t *testing.T) {
	dir := t.TempDir()
	backend := &fakeBackend{}
	rec := &countingRecorder{}
	reg := NewRegistry(backend, &recordingSink{}, WithRecorder(rec))

	require.NoError(t, reg.Start(dir))
	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, []string{dir}, reg.Paths())
	assert.Equal(t, 1, rec.active)

	require.NoError(t, reg.Stop(dir))
	assert.Equal(t, 0, reg.Len())
	assert.Equal(t, 0, rec.active)
	assert.Equal(t, 1, backend.opened()[0].closes())

	// Stopping again is a no-op.
	require.NoError(t, reg.Stop(dir))
	require.NoError(t, reg.Stop(filepath.Join(dir, "never-watched")))
	assert.Equal(t, 1, backend.opened()[0].closes())
}

func TestRegistryReplace(t *testing.T) {
	dir := t.TempDir()
	backend := &fakeBackend{}
	reg := NewRegistry(backend, &recordingSink{})

	require.NoError(t, reg.Start(dir))
	require.NoError(t, reg.Start(dir))

	handles := backend.opened()
	require.Len(t, handles, 2)
	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, 1, handles[0].closes(), "replaced handle should be released")
	assert.Equal(t, 0, handles[1].closes())

	require.NoError(t, reg.Stop(dir))
	assert.Equal(t, 1, handles[1].closes())
}

func TestRegistryStopAll(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	backend := &fakeBackend{}
	rec := &countingRecorder{}
	reg := NewRegistry(backend, &recordingSink{}, WithRecorder(rec))

	require.NoError(t, reg.Start(a))
	require.NoError(t, reg.Start(b))
	assert.Equal(t, 2, rec.active)

	require.NoError(t, reg.StopAll())
	assert.Equal(t, 0, reg.Len())
	assert.Equal(t, 0, rec.active)
	for _, h := range backend.opened() {
		assert.Equal(t, 1, h.closes())
	}

	// Empty registry.
	require.NoError(t, reg.StopAll())

	// Still usable after Close.
	require.NoError(t, reg.Close())
	require.NoError(t, reg.Start(a))
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryStopAllJoinsErrors(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	backend := &fakeBackend{}
	reg := NewRegistry(backend, &recordingSink{})

	require.NoError(t, reg.Start(a))
	require.NoError(t, reg.Start(b))
	backend.opened()[0].closeErr = errors.New("boom")

	err := reg.StopAll()
	require.Error(t, err)
	assert.ErrorIs(t, err, fserr.ErrWatch)
	assert.Equal(t, 0, reg.Len())
	assert.Equal(t, 1, backend.opened()[1].closes())
}

func TestRegistryStartMissingPath(t *testing.T) {
	backend := &fakeBackend{}
	reg := NewRegistry(backend, &recordingSink{})

	err := reg.Start(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, fserr.ErrNotFound)
	assert.Equal(t, 0, reg.Len())
	assert.Empty(t, backend.opened())
}

func TestRegistryStartBackendFailure(t *testing.T) {
	backend := &fakeBackend{openErr: errors.New("too many watches")}
	reg := NewRegistry(backend, &recordingSink{})

	err := reg.Start(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, fserr.ErrWatch)
	assert.Contains(t, err.Error(), "too many watches")
	assert.Equal(t, 0, reg.Len())
}

func TestRegistryStopCloseError(t *testing.T) {
	dir := t.TempDir()
	backend := &fakeBackend{}
	reg := NewRegistry(backend, &recordingSink{})

	require.NoError(t, reg.Start(dir))
	backend.opened()[0].closeErr = errors.New("close failed")

	err := reg.Stop(dir)
	assert.ErrorIs(t, err, fserr.ErrWatch)
	assert.Equal(t, 0, reg.Len())
}

func TestRegistryForwardsEvents(t *testing.T) {
	dir := t.TempDir()
	backend := &fakeBackend{}
	sink := &recordingSink{}
	rec := &countingRecorder{}
	reg := NewRegistry(backend, sink, WithRecorder(rec))

	require.NoError(t, reg.Start(dir))
	fn := backend.opened()[0].fn
	fn(NativeEvent{Path: filepath.Join(dir, "a.md"), Op: fsnotify.Create})
	fn(NativeEvent{Path: filepath.Join(dir, "a.md"), Op: fsnotify.Write})
	fn(NativeEvent{Path: filepath.Join(dir, "a.md"), Op: fsnotify.Remove})

	assert.Equal(t, []string{TopicFileChanged, TopicFileChanged, TopicFileChanged}, sink.topics)
	assert.Equal(t, []ChangeEvent{
		{Path: filepath.Join(dir, "a.md"), Kind: KindCreate},
		{Path: filepath.Join(dir, "a.md"), Kind: KindModify},
		{Path: filepath.Join(dir, "a.md"), Kind: KindRemove},
	}, sink.events)
	assert.Equal(t, map[string]int{"create": 1, "modify": 1, "remove": 1}, rec.kinds)
}

func TestRegistryConcurrentStartStop(t *testing.T) {
	dirs := make([]string, 4)
	for i := range dirs {
		dirs[i] = t.TempDir()
	}
	backend := &fakeBackend{}
	reg := NewRegistry(backend, &recordingSink{})

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			dir := dirs[i%len(dirs)]
			assert.NoError(t, reg.Start(dir))
			if i%3 == 0 {
				assert.NoError(t, reg.Stop(dir))
			}
		}(i)
	}
	wg.Wait()
	require.NoError(t, reg.StopAll())

	// Every opened handle is released exactly once.
	for _, h := range backend.opened() {
		assert.Equal(t, 1, h.closes())
	}
}

func TestRegistryWithFSNotify(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "note.md")
	require.NoError(t, os.WriteFile(file, []byte("a"), 0644))

	bus := NewBus(BusOptions{})
	defer bus.Close()
	ch, cancel := bus.Subscribe()
	defer cancel()

	reg := NewRegistry(NewFSNotifyBackend(nil), bus)
	defer reg.Close()
	require.NoError(t, reg.Start(dir))

	require.NoError(t, os.WriteFile(file, []byte("ab"), 0644))

	got := waitForEvent(t, ch, func(ev ChangeEvent) bool {
		return ev.Path == file && ev.Kind == KindModify
	})
	assert.Equal(t, file, got.Path)
}
