package engine

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

var (
	ErrLoaderExists   = errors.New("loader already running")
	ErrLoaderNotFound = errors.New("loader not found")
)

// LoaderStatus summarises one running loader.
type LoaderStatus struct {
	Name     string
	State    State
	Interval string
	Fetches  int
}

// Manager keeps one Loader per funnel so switching between funnels keeps
// their data and history.
type Manager struct {
	mu          sync.RWMutex
	loaders     map[string]*Loader
	historySize int
	timeout     time.Duration
}

// NewManager creates an empty Manager whose loaders keep historySize samples
// and bound each request by timeout.
func NewManager(historySize int, timeout time.Duration) *Manager {
	return &Manager{
		loaders:     make(map[string]*Loader),
		historySize: historySize,
		timeout:     timeout,
	}
}

// Start creates a Loader for the named funnel.
func (m *Manager) Start(name string, source Source) (*Loader, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.loaders[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrLoaderExists, name)
	}
	return m.add(name, source), nil
}

// Acquire returns the named funnel's Loader, starting one on a source from
// open when none runs yet.
func (m *Manager) Acquire(name string, open func() (Source, error)) (*Loader, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if l, ok := m.loaders[name]; ok {
		return l, nil
	}
	src, err := open()
	if err != nil {
		return nil, err
	}
	return m.add(name, src), nil
}

func (m *Manager) add(name string, source Source) *Loader {
	l := NewLoader(source, m.historySize, m.timeout)
	m.loaders[name] = l
	return l
}

// Get returns the Loader for the named funnel.
func (m *Manager) Get(name string) (*Loader, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l, ok := m.loaders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrLoaderNotFound, name)
	}
	return l, nil
}

// Stop cancels the named Loader's request and forgets it.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.loaders[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrLoaderNotFound, name)
	}
	l.Close()
	delete(m.loaders, name)
	return nil
}

// Names returns the names of all running loaders in sorted order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.loaders))
	for name := range m.loaders {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Status reports every running loader, sorted by name.
func (m *Manager) Status() []LoaderStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]LoaderStatus, 0, len(m.loaders))
	for name, l := range m.loaders {
		snap := l.Snapshot()
		out = append(out, LoaderStatus{
			Name:     name,
			State:    snap.State,
			Interval: snap.Interval,
			Fetches:  l.history.Len(),
		})
	}
	slices.SortFunc(out, func(a, b LoaderStatus) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

// StopAll cancels and forgets every loader.
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, l := range m.loaders {
		l.Close()
		delete(m.loaders, name)
	}
}
