package datadog

import (
	"reflect"
	"testing"

	"bomstrip/internal/metrics"
)

type recordedCall struct {
	kind  string
	name  string
	value float64
	tags  []string
}

type fakeClient struct {
	calls  []recordedCall
	closed int
}

func (f *fakeClient) Count(name string, value int64, tags []string, rate float64) error {
	f.calls = append(f.calls, recordedCall{"count", name, float64(value), tags})
	return nil
}

func (f *fakeClient) Histogram(name string, value float64, tags []string, rate float64) error {
	f.calls = append(f.calls, recordedCall{"histogram", name, value, tags})
	return nil
}

func (f *fakeClient) Close() error {
	f.closed++
	return nil
}

func TestNewBackend_RequiresAddr(t *testing.T) {
	t.Parallel()

	b, err := NewBackend(Config{})
	if err == nil {
		t.Fatalf("NewBackend(empty) error = nil, want non-nil")
	}
	if b != nil {
		t.Fatalf("NewBackend(empty) backend = %v, want nil", b)
	}
}

func TestBackend_ForwardsToClient(t *testing.T) {
	t.Parallel()

	fc := &fakeClient{}
	b := &Backend{client: fc}

	b.IncCounter(metrics.FilesTotal, 1, metrics.Labels{"outcome": "removed", "job": "bomstrip"})
	b.ObserveHistogram(metrics.RunDurationSeconds, 0.25, metrics.Labels{"status": "success"})

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	want := []recordedCall{
		{"count", metrics.FilesTotal, 1, []string{"job:bomstrip", "outcome:removed"}},
		{"histogram", metrics.RunDurationSeconds, 0.25, []string{"status:success"}},
	}
	if !reflect.DeepEqual(fc.calls, want) {
		t.Fatalf("calls = %#v, want %#v", fc.calls, want)
	}
	if fc.closed != 1 {
		t.Fatalf("closed = %d, want 1", fc.closed)
	}
}

func TestBackend_NilClientIsNoop(t *testing.T) {
	t.Parallel()

	b := &Backend{}
	b.IncCounter(metrics.FilesTotal, 1, nil)
	b.ObserveHistogram(metrics.RunDurationSeconds, 1, nil)
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush() error = %v, want nil", err)
	}
}

func TestLabelsToTags(t *testing.T) {
	t.Parallel()

	if got := labelsToTags(nil); got != nil {
		t.Fatalf("labelsToTags(nil) = %v, want nil", got)
	}
	got := labelsToTags(metrics.Labels{"b": "2", "a": "1"})
	want := []string{"a:1", "b:2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("labelsToTags = %v, want %v", got, want)
	}
}
