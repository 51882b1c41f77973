// Package testing provides test utilities for replica.
package testing

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/replica"
)

type entry struct {
	data  []byte
	mtime time.Time
}

// MemoryAdapter is an in-memory implementation of replica.StorageAdapter for testing.
// Keys are treated as slash-separated paths for directory operations.
type MemoryAdapter struct {
	data map[string]entry
	now  func() time.Time
	mu   sync.RWMutex
}

// NewMemoryAdapter creates a new in-memory adapter.
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		data: make(map[string]entry),
		now:  time.Now,
	}
}

// Read retrieves the content stored at key.
func (m *MemoryAdapter) Read(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.data[key]
	if !ok {
		return nil, replica.ErrNotFound
	}

	// Return a copy to prevent mutation
	result := make([]byte, len(e.data))
	copy(result, e.data)
	return result, nil
}

// Write stores content at key and returns its length.
func (m *MemoryAdapter) Write(_ context.Context, key string, content []byte, _ replica.Metadata) (int, error) {
	if key == "" {
		return 0, replica.ErrInvalidKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	// Store a copy to prevent mutation
	stored := make([]byte, len(content))
	copy(stored, content)
	m.data[key] = entry{data: stored, mtime: m.now()}
	return len(stored), nil
}

// Delete removes key.
func (m *MemoryAdapter) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.data[key]; !ok {
		return replica.ErrNotFound
	}
	delete(m.data, key)
	return nil
}

// Rename moves key to newKey, replacing anything already at newKey.
func (m *MemoryAdapter) Rename(_ context.Context, key, newKey string) error {
	if newKey == "" {
		return replica.ErrInvalidKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.data[key]
	if !ok {
		return replica.ErrNotFound
	}
	delete(m.data, key)
	e.mtime = m.now()
	m.data[newKey] = e
	return nil
}

// Exists checks whether a key exists.
func (m *MemoryAdapter) Exists(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.data[key]
	return ok, nil
}

// Keys returns every stored key in sorted order.
func (m *MemoryAdapter) Keys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Mtime returns the time key was last written or renamed.
func (m *MemoryAdapter) Mtime(_ context.Context, key string) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.data[key]
	if !ok {
		return time.Time{}, replica.ErrNotFound
	}
	return e.mtime, nil
}

// ListDirectory returns the keys and subdirectories directly below directory.
func (m *MemoryAdapter) ListDirectory(_ context.Context, directory string) (*replica.Listing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	prefix := strings.Trim(directory, "/")
	if prefix != "" {
		prefix += "/"
	}

	listing := &replica.Listing{}
	seen := make(map[string]struct{})
	for k := range m.data {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		rest := k[len(prefix):]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			dir := prefix + rest[:i]
			if _, ok := seen[dir]; !ok {
				seen[dir] = struct{}{}
				listing.Dirs = append(listing.Dirs, dir)
			}
			continue
		}
		listing.Keys = append(listing.Keys, k)
	}
	sort.Strings(listing.Keys)
	sort.Strings(listing.Dirs)
	return listing, nil
}

// IsDirectory reports whether any key lives below key.
func (m *MemoryAdapter) IsDirectory(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	prefix := strings.Trim(key, "/") + "/"
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			return true, nil
		}
	}
	return false, nil
}

// CreateFile returns a handle describing key.
func (m *MemoryAdapter) CreateFile(_ context.Context, key string) (*replica.File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f := &replica.File{Key: key, Name: path.Base(key)}
	if e, ok := m.data[key]; ok {
		f.Size = int64(len(e.data))
		f.ModTime = e.mtime
	}
	return f, nil
}

// CreateFileStream opens a stream over key. Reads see the content at open
// time; writes are buffered and stored when the stream is closed.
func (m *MemoryAdapter) CreateFileStream(ctx context.Context, key string) (replica.Stream, error) {
	m.mu.RLock()
	var initial []byte
	if e, ok := m.data[key]; ok {
		initial = append(initial, e.data...)
	}
	m.mu.RUnlock()

	return &memoryStream{
		ctx:    ctx,
		owner:  m,
		key:    key,
		reader: bytes.NewReader(initial),
	}, nil
}

// Reset clears all data in the adapter.
func (m *MemoryAdapter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = make(map[string]entry)
}

type memoryStream struct {
	ctx     context.Context //nolint:containedctx // stream flushes on Close
	owner   *MemoryAdapter
	key     string
	reader  *bytes.Reader
	written bytes.Buffer
	dirty   bool
}

func (s *memoryStream) Read(p []byte) (int, error) {
	return s.reader.Read(p)
}

func (s *memoryStream) Write(p []byte) (int, error) {
	s.dirty = true
	return s.written.Write(p)
}

func (s *memoryStream) Close() error {
	if !s.dirty {
		return nil
	}
	_, err := s.owner.Write(s.ctx, s.key, s.written.Bytes(), nil)
	return err
}

// MetadataMemoryAdapter is a MemoryAdapter that also implements replica.MetadataCapable.
type MetadataMemoryAdapter struct {
	*MemoryAdapter

	// SetErr, when non-nil, is returned by SetMetadata.
	SetErr error

	meta map[string]replica.Metadata
	mmu  sync.RWMutex
}

// NewMetadataMemoryAdapter creates a new in-memory adapter with metadata support.
func NewMetadataMemoryAdapter() *MetadataMemoryAdapter {
	return &MetadataMemoryAdapter{
		MemoryAdapter: NewMemoryAdapter(),
		meta:          make(map[string]replica.Metadata),
	}
}

// Write stores content and, when metadata is non-nil, its metadata.
func (m *MetadataMemoryAdapter) Write(ctx context.Context, key string, content []byte, metadata replica.Metadata) (int, error) {
	n, err := m.MemoryAdapter.Write(ctx, key, content, metadata)
	if err != nil {
		return n, err
	}
	if metadata != nil {
		m.store(key, metadata)
	}
	return n, nil
}

// SetMetadata associates metadata with key.
func (m *MetadataMemoryAdapter) SetMetadata(_ context.Context, key string, metadata replica.Metadata) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	m.store(key, metadata)
	return nil
}

// GetMetadata returns a copy of the metadata for key, or an empty Metadata.
func (m *MetadataMemoryAdapter) GetMetadata(_ context.Context, key string) (replica.Metadata, error) {
	m.mmu.RLock()
	defer m.mmu.RUnlock()

	result := make(replica.Metadata, len(m.meta[key]))
	for k, v := range m.meta[key] {
		result[k] = v
	}
	return result, nil
}

func (m *MetadataMemoryAdapter) store(key string, metadata replica.Metadata) {
	m.mmu.Lock()
	defer m.mmu.Unlock()

	stored := make(replica.Metadata, len(metadata))
	for k, v := range metadata {
		stored[k] = v
	}
	m.meta[key] = stored
}

// CallLog records backend calls in the order they happened.
// Share one CallLog between several FaultyAdapters to observe cross-backend ordering.
type CallLog struct {
	calls []string
	mu    sync.Mutex
}

// NewCallLog creates an empty call log.
func NewCallLog() *CallLog {
	return &CallLog{}
}

// Record appends a call.
func (l *CallLog) Record(call string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls = append(l.calls, call)
}

// Calls returns a copy of the recorded calls.
func (l *CallLog) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	result := make([]string, len(l.calls))
	copy(result, l.calls)
	return result
}

// Count returns how many times call was recorded.
func (l *CallLog) Count(call string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for _, c := range l.calls {
		if c == call {
			n++
		}
	}
	return n
}

// FaultyAdapter wraps a replica.StorageAdapter, records every call as
// "<name>.<op>" in a CallLog, and returns the configured error for an op
// instead of delegating.
type FaultyAdapter struct {
	name  string
	inner replica.StorageAdapter
	log   *CallLog
	errs  map[string]error
	mu    sync.RWMutex
}

// NewFaultyAdapter wraps inner. A nil log creates a private one.
func NewFaultyAdapter(name string, inner replica.StorageAdapter, log *CallLog) *FaultyAdapter {
	if log == nil {
		log = NewCallLog()
	}
	return &FaultyAdapter{
		name:  name,
		inner: inner,
		log:   log,
		errs:  make(map[string]error),
	}
}

// FailOn makes op return err. Pass a nil err to clear the fault.
// Op names match the method names in lower case: "write", "delete", "rename", "read", ...
func (f *FaultyAdapter) FailOn(op string, err error) *FaultyAdapter {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err == nil {
		delete(f.errs, op)
	} else {
		f.errs[op] = err
	}
	return f
}

// Log returns the call log.
func (f *FaultyAdapter) Log() *CallLog {
	return f.log
}

func (f *FaultyAdapter) enter(op string) error {
	f.log.Record(f.name + "." + op)
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.errs[op]
}

// Read delegates unless a "read" fault is set.
func (f *FaultyAdapter) Read(ctx context.Context, key string) ([]byte, error) {
	if err := f.enter("read"); err != nil {
		return nil, err
	}
	return f.inner.Read(ctx, key)
}

// Write delegates unless a "write" fault is set.
func (f *FaultyAdapter) Write(ctx context.Context, key string, content []byte, metadata replica.Metadata) (int, error) {
	if err := f.enter("write"); err != nil {
		return 0, err
	}
	return f.inner.Write(ctx, key, content, metadata)
}

// Delete delegates unless a "delete" fault is set.
func (f *FaultyAdapter) Delete(ctx context.Context, key string) error {
	if err := f.enter("delete"); err != nil {
		return err
	}
	return f.inner.Delete(ctx, key)
}

// Rename delegates unless a "rename" fault is set.
func (f *FaultyAdapter) Rename(ctx context.Context, key, newKey string) error {
	if err := f.enter("rename"); err != nil {
		return err
	}
	return f.inner.Rename(ctx, key, newKey)
}

// Exists delegates unless an "exists" fault is set.
func (f *FaultyAdapter) Exists(ctx context.Context, key string) (bool, error) {
	if err := f.enter("exists"); err != nil {
		return false, err
	}
	return f.inner.Exists(ctx, key)
}

// Keys delegates unless a "keys" fault is set.
func (f *FaultyAdapter) Keys(ctx context.Context) ([]string, error) {
	if err := f.enter("keys"); err != nil {
		return nil, err
	}
	return f.inner.Keys(ctx)
}

// Mtime delegates unless an "mtime" fault is set.
func (f *FaultyAdapter) Mtime(ctx context.Context, key string) (time.Time, error) {
	if err := f.enter("mtime"); err != nil {
		return time.Time{}, err
	}
	return f.inner.Mtime(ctx, key)
}

// ListDirectory delegates unless a "listdirectory" fault is set.
func (f *FaultyAdapter) ListDirectory(ctx context.Context, directory string) (*replica.Listing, error) {
	if err := f.enter("listdirectory"); err != nil {
		return nil, err
	}
	return f.inner.ListDirectory(ctx, directory)
}

// IsDirectory delegates unless an "isdirectory" fault is set.
func (f *FaultyAdapter) IsDirectory(ctx context.Context, key string) (bool, error) {
	if err := f.enter("isdirectory"); err != nil {
		return false, err
	}
	return f.inner.IsDirectory(ctx, key)
}

// CreateFile delegates unless a "createfile" fault is set.
func (f *FaultyAdapter) CreateFile(ctx context.Context, key string) (*replica.File, error) {
	if err := f.enter("createfile"); err != nil {
		return nil, err
	}
	return f.inner.CreateFile(ctx, key)
}

// CreateFileStream delegates unless a "createfilestream" fault is set.
func (f *FaultyAdapter) CreateFileStream(ctx context.Context, key string) (replica.Stream, error) {
	if err := f.enter("createfilestream"); err != nil {
		return nil, err
	}
	return f.inner.CreateFileStream(ctx, key)
}

// RecordingSink captures failure reports for verification in tests.
type RecordingSink struct {
	failures []replica.Failure
	mu       sync.Mutex
}

// NewRecordingSink creates an empty recording sink.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

// ReportCritical records failure.
func (s *RecordingSink) ReportCritical(_ context.Context, failure replica.Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures = append(s.failures, failure)
}

// Failures returns a copy of the recorded failures.
func (s *RecordingSink) Failures() []replica.Failure {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]replica.Failure, len(s.failures))
	copy(result, s.failures)
	return result
}

// Messages returns the rendered message of each recorded failure.
func (s *RecordingSink) Messages() []string {
	failures := s.Failures()
	result := make([]string, len(failures))
	for i, f := range failures {
		result[i] = f.Message()
	}
	return result
}

// Count returns the number of recorded failures.
func (s *RecordingSink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.failures)
}

// Ensure test doubles implement their interfaces.
var (
	_ replica.StorageAdapter  = (*MemoryAdapter)(nil)
	_ replica.StorageAdapter  = (*MetadataMemoryAdapter)(nil)
	_ replica.MetadataCapable = (*MetadataMemoryAdapter)(nil)
	_ replica.StorageAdapter  = (*FaultyAdapter)(nil)
	_ replica.FailureSink     = (*RecordingSink)(nil)
)

// CapturedEvent represents an event captured during testing.
type CapturedEvent struct {
	Signal    capitan.Signal
	Fields    []capitan.Field
	Timestamp time.Time
}

// EventCapture captures replica events for verification in tests.
type EventCapture struct {
	events []CapturedEvent
	mu     sync.Mutex
}

// NewEventCapture creates a new event capture utility.
func NewEventCapture() *EventCapture {
	return &EventCapture{
		events: make([]CapturedEvent, 0),
	}
}

// Handler returns a capitan.EventCallback that captures events.
func (c *EventCapture) Handler() capitan.EventCallback {
	return func(_ context.Context, e *capitan.Event) {
		c.mu.Lock()
		defer c.mu.Unlock()

		c.events = append(c.events, CapturedEvent{
			Signal:    e.Signal(),
			Fields:    e.Fields(),
			Timestamp: time.Now(),
		})
	}
}

// Events returns a copy of all captured events.
func (c *EventCapture) Events() []CapturedEvent {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]CapturedEvent, len(c.events))
	copy(result, c.events)
	return result
}

// Count returns the number of captured events.
func (c *EventCapture) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.events)
}

// EventsBySignal returns events filtered by signal.
func (c *EventCapture) EventsBySignal(sig capitan.Signal) []CapturedEvent {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]CapturedEvent, 0)
	for _, e := range c.events {
		if e.Signal == sig {
			result = append(result, e)
		}
	}
	return result
}

// String renders the capture for test failure output.
func (c *EventCapture) String() string {
	events := c.Events()
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = fmt.Sprint(e.Signal)
	}
	return strings.Join(names, ",")
}
