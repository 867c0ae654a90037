package param

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Fetch(ctx context.Context, path string) (string, error) {
	args := m.Called(ctx, path)
	return args.String(0), args.Error(1)
}

func (m *mockFetcher) FetchAll(ctx context.Context, path string) ([]string, error) {
	args := m.Called(ctx, path)
	values, _ := args.Get(0).([]string)
	return values, args.Error(1)
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	f := &mockFetcher{}
	lazy := func() Fetcher { return f }

	v, err := Resolve(ctx, lazy, "direct", "/imageination/key")
	require.NoError(t, err)
	assert.Equal(t, "direct", v)

	v, err = Resolve(ctx, lazy, "", "")
	require.NoError(t, err)
	assert.Empty(t, v)
	f.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)

	f.On("Fetch", ctx, "/imageination/key").Return("from-ssm", nil).Once()
	v, err = Resolve(ctx, lazy, "", "/imageination/key")
	require.NoError(t, err)
	assert.Equal(t, "from-ssm", v)

	f.On("Fetch", ctx, "/imageination/missing").Return("", errors.New("ParameterNotFound")).Once()
	_, err = Resolve(ctx, lazy, "", "/imageination/missing")
	assert.EqualError(t, err, "ParameterNotFound")
	f.AssertExpectations(t)
}

func TestResolveAll(t *testing.T) {
	ctx := context.Background()
	f := &mockFetcher{}
	lazy := func() Fetcher { return f }

	v, err := ResolveAll(ctx, lazy, []string{"a red cube"}, "/imageination/prompts")
	require.NoError(t, err)
	assert.Equal(t, []string{"a red cube"}, v)

	f.On("FetchAll", ctx, "/imageination/prompts").Return([]string{"a", "b"}, nil).Once()
	v, err = ResolveAll(ctx, lazy, nil, "/imageination/prompts")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, v)
	f.AssertExpectations(t)
}
