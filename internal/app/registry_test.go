package app

import (
	"fmt"
	"sync"
	"testing"

	"github.com/dkeye/CamRelay/internal/core"
	"github.com/dkeye/CamRelay/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RolesAreSeparateNamespaces(t *testing.T) {
	r := NewRegistry()
	cam := core.NewCamera("dev1", nil)
	viewer := core.NewViewer("dev1", true, nil, nil)

	assert.Nil(t, r.Register(cam))
	assert.Nil(t, r.Register(viewer))

	got, ok := r.Lookup("dev1", domain.RoleCamera)
	require.True(t, ok)
	assert.Same(t, cam, got)
	got, ok = r.Lookup("dev1", domain.RoleViewer)
	require.True(t, ok)
	assert.Same(t, viewer, got)
	assert.Equal(t, Counts{Viewers: 1, Cameras: 1}, r.Counts())
}

func TestRegistry_RegisterReplacesAndReturnsOrphan(t *testing.T) {
	r := NewRegistry()
	first := core.NewCamera("cam1", nil)
	second := core.NewCamera("cam1", nil)

	require.Nil(t, r.Register(first))
	assert.Same(t, first, r.Register(second))
	assert.Nil(t, r.Register(second), "re-registering the same connection displaces nothing")

	got, _ := r.Lookup("cam1", domain.RoleCamera)
	assert.Same(t, second, got)
	assert.Equal(t, 1, r.Counts().Cameras)
}

func TestRegistry_UnregisterConnIgnoresOrphans(t *testing.T) {
	r := NewRegistry()
	first := core.NewCamera("cam1", nil)
	second := core.NewCamera("cam1", nil)
	r.Register(first)
	r.Register(second)

	assert.False(t, r.UnregisterConn(first))
	assert.True(t, r.IsCameraConnected("cam1"))

	assert.True(t, r.UnregisterConn(second))
	assert.False(t, r.IsCameraConnected("cam1"))
	assert.False(t, r.UnregisterConn(second))
}

func TestRegistry_UnregisterMissingIsNoop(t *testing.T) {
	r := NewRegistry()
	r.Unregister("ghost", domain.RoleViewer)

	r.Register(core.NewCamera("cam1", nil))
	r.Unregister("cam1", domain.RoleViewer)
	assert.True(t, r.IsCameraConnected("cam1"))
	r.Unregister("cam1", domain.RoleCamera)
	assert.False(t, r.IsCameraConnected("cam1"))
}

func TestRegistry_ConcurrentUse(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := domain.ClientID(fmt.Sprintf("cam%d", i%5))
			c := core.NewCamera(id, nil)
			r.Register(c)
			r.IsCameraConnected(id)
			r.Counts()
			r.UnregisterConn(c)
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, r.Counts().Cameras, 5)
}
