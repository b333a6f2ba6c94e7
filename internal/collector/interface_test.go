package collector

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// Mock publisher for testing
type mockPublisher struct {
	name    string
	enabled bool
	err     error
	calls   int
	order   *[]string
}

func (m *mockPublisher) Publish(ctx context.Context, reading *Reading) error {
	m.calls++
	if m.order != nil {
		*m.order = append(*m.order, m.name)
	}
	return m.err
}

func (m *mockPublisher) Name() string {
	return m.name
}

func (m *mockPublisher) Enabled() bool {
	return m.enabled
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry returned nil")
	}
	if r.publishers == nil {
		t.Error("publishers slice is nil")
	}
	if len(r.publishers) != 0 {
		t.Errorf("new registry should have 0 publishers, got %d", len(r.publishers))
	}
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()

	r.Register(&mockPublisher{name: "test1", enabled: true})
	if r.Count() != 1 {
		t.Errorf("Count() = %d, want 1", r.Count())
	}

	r.Register(&mockPublisher{name: "test2", enabled: true})
	if r.Count() != 2 {
		t.Errorf("Count() = %d, want 2", r.Count())
	}
}

func TestRegistryEnabledCount(t *testing.T) {
	r := NewRegistry()

	if r.EnabledCount() != 0 {
		t.Errorf("Empty registry EnabledCount() = %d, want 0", r.EnabledCount())
	}

	r.Register(&mockPublisher{name: "test1", enabled: true})
	r.Register(&mockPublisher{name: "test2", enabled: false})
	r.Register(&mockPublisher{name: "test3", enabled: true})
	r.Register(&mockPublisher{name: "test4", enabled: false})

	expected := 2
	if r.EnabledCount() != expected {
		t.Errorf("EnabledCount() = %d, want %d", r.EnabledCount(), expected)
	}
}

func TestRegistryList(t *testing.T) {
	r := NewRegistry()

	r.Register(&mockPublisher{name: "test1", enabled: true})
	r.Register(&mockPublisher{name: "test2", enabled: false})

	list := r.List()
	if len(list) != 2 {
		t.Fatalf("List() length = %d, want 2", len(list))
	}
	if list[0].Name() != "test1" {
		t.Errorf("First publisher name = %s, want test1", list[0].Name())
	}
	if list[1].Name() != "test2" {
		t.Errorf("Second publisher name = %s, want test2", list[1].Name())
	}
}

func TestRegistryPublishAll(t *testing.T) {
	tests := []struct {
		name         string
		publishers   []*mockPublisher
		expectError  bool
		errorMessage string
	}{
		{
			name:        "empty registry",
			publishers:  []*mockPublisher{},
			expectError: false,
		},
		{
			name: "all publishers succeed",
			publishers: []*mockPublisher{
				{name: "test1", enabled: true},
				{name: "test2", enabled: true},
			},
			expectError: false,
		},
		{
			name: "one publisher fails",
			publishers: []*mockPublisher{
				{name: "test1", enabled: true},
				{name: "test2", enabled: true, err: errors.New("test error")},
			},
			expectError:  true,
			errorMessage: "test2: test error",
		},
		{
			name: "disabled publisher not executed",
			publishers: []*mockPublisher{
				{name: "test1", enabled: true},
				{name: "test2", enabled: false, err: errors.New("should not run")},
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			for _, p := range tt.publishers {
				r.Register(p)
			}

			err := r.PublishAll(context.Background(), &Reading{})

			if tt.expectError && err == nil {
				t.Error("Expected error but got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if tt.expectError && err != nil && tt.errorMessage != "" {
				if !strings.Contains(err.Error(), tt.errorMessage) {
					t.Errorf("Error message %q does not contain %q", err.Error(), tt.errorMessage)
				}
			}
			for _, p := range tt.publishers {
				if !p.enabled && p.calls != 0 {
					t.Errorf("disabled publisher %s was called", p.name)
				}
			}
		})
	}
}

func TestRegistryPublishAll_FailureDoesNotStopOthers(t *testing.T) {
	var order []string
	errFirst := errors.New("first failed")
	errThird := errors.New("third failed")

	r := NewRegistry()
	r.Register(&mockPublisher{name: "first", enabled: true, err: errFirst, order: &order})
	r.Register(&mockPublisher{name: "second", enabled: true, order: &order})
	r.Register(&mockPublisher{name: "third", enabled: true, err: errThird, order: &order})

	err := r.PublishAll(context.Background(), &Reading{})

	if got := strings.Join(order, ","); got != "first,second,third" {
		t.Errorf("publish order = %s, want first,second,third", got)
	}
	if !errors.Is(err, errFirst) || !errors.Is(err, errThird) {
		t.Errorf("joined error %v should wrap both failures", err)
	}
}

func BenchmarkRegistryPublishAll(b *testing.B) {
	r := NewRegistry()

	for i := 0; i < 10; i++ {
		r.Register(&mockPublisher{name: "test", enabled: true})
	}

	ctx := context.Background()
	reading := &Reading{}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.PublishAll(ctx, reading)
	}
}
