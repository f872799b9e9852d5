package copier

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/kaiiiiiiiii/bridle/internal/canonical"
)

// mockAdapter implements harness.Adapter for testing.
type mockAdapter struct {
	mock.Mock
}

func (m *mockAdapter) ID() string {
	return m.Called().String(0)
}

func (m *mockAdapter) Extract(ctx context.Context, dir string) (*canonical.Profile, error) {
	args := m.Called(ctx, dir)
	p, _ := args.Get(0).(*canonical.Profile)
	return p, args.Error(1)
}

func (m *mockAdapter) Write(ctx context.Context, dir string, p *canonical.Profile) error {
	return m.Called(ctx, dir, p).Error(0)
}
