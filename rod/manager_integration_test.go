//go:build integration

package rod_test

import (
	"testing"

	"github.com/fwojciec/unfold/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowserManager_RecyclesBrowserAfterMaxPages(t *testing.T) {
	t.Parallel()

	manager, err := rod.NewBrowserManager(rod.WithMaxPages(3))
	require.NoError(t, err)
	defer manager.Close()

	first := manager.Acquire()
	require.NotNil(t, first)
	manager.Release()
	manager.Acquire()
	manager.Release()
	manager.Acquire()
	manager.Release()

	second := manager.Acquire()
	defer manager.Release()

	require.NotNil(t, second)
	assert.NotSame(t, first, second)
}

func TestBrowserManager_DoesNotRecycleWhilePagesAreOpen(t *testing.T) {
	t.Parallel()

	manager, err := rod.NewBrowserManager(rod.WithMaxPages(1))
	require.NoError(t, err)
	defer manager.Close()

	first := manager.Acquire()
	manager.Acquire()
	manager.Release()

	same := manager.Acquire()

	assert.Same(t, first, same)
	manager.Release()
	manager.Release()
}

func TestBrowserManager_DoesNotRecycleBeforeMaxPages(t *testing.T) {
	t.Parallel()

	manager, err := rod.NewBrowserManager(rod.WithMaxPages(5))
	require.NoError(t, err)
	defer manager.Close()

	first := manager.Acquire()
	manager.Release()
	manager.Acquire()
	manager.Release()

	same := manager.Acquire()
	defer manager.Release()

	assert.Same(t, first, same)
}
