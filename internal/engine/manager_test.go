package engine

import (
	"context"
	"errors"
	"testing"
)

func TestManagerLifecycle(t *testing.T) {
	m := NewManager(5, 0)
	if _, err := m.Start("checkout", NewSampleSource()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if _, err := m.Start("checkout", NewSampleSource()); !errors.Is(err, ErrLoaderExists) {
		t.Errorf("expected ErrLoaderExists, got %v", err)
	}
	m.Start("signup", NewSampleSource())

	names := m.Names()
	if len(names) != 2 || names[0] != "checkout" || names[1] != "signup" {
		t.Errorf("unexpected names %v", names)
	}

	l, err := m.Get("checkout")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	req := l.Begin(context.Background(), "7d")

	if err := m.Stop("checkout"); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	if req.ctx.Err() == nil {
		t.Error("Stop should cancel the loader's request")
	}
	if _, err := m.Get("checkout"); !errors.Is(err, ErrLoaderNotFound) {
		t.Errorf("expected ErrLoaderNotFound after Stop, got %v", err)
	}
	if err := m.Stop("checkout"); !errors.Is(err, ErrLoaderNotFound) {
		t.Errorf("expected ErrLoaderNotFound stopping twice, got %v", err)
	}

	m.StopAll()
	if len(m.Names()) != 0 {
		t.Error("expected no loaders after StopAll")
	}
}

func TestManagerAcquire(t *testing.T) {
	m := NewManager(5, 0)
	opened := 0
	open := func() (Source, error) {
		opened++
		return NewSampleSource(), nil
	}

	first, err := m.Acquire("checkout", open)
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	second, err := m.Acquire("checkout", open)
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	if first != second || opened != 1 {
		t.Errorf("expected the running loader to be reused, opened %d sources", opened)
	}

	boom := errors.New("no endpoint")
	if _, err := m.Acquire("broken", func() (Source, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Errorf("expected source error, got %v", err)
	}
	if _, err := m.Get("broken"); err == nil {
		t.Error("a failed Acquire must not register a loader")
	}
}

func TestManagerStatus(t *testing.T) {
	m := NewManager(5, 0)
	beta, _ := m.Start("beta", NewSampleSource())
	m.Start("alpha", NewSampleSource())
	if _, err := beta.Load(context.Background(), "30d"); err != nil {
		t.Fatal(err)
	}

	status := m.Status()
	if len(status) != 2 || status[0].Name != "alpha" || status[1].Name != "beta" {
		t.Fatalf("unexpected status %+v", status)
	}
	if status[0].State != StateLoading || status[0].Fetches != 0 {
		t.Errorf("alpha = %+v, want loading with no fetches", status[0])
	}
	if status[1].State != StateSuccess || status[1].Interval != "30d" || status[1].Fetches != 1 {
		t.Errorf("beta = %+v", status[1])
	}
}
