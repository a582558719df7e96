package loader

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFeature struct {
	name    string
	enabled bool
	err     error
	loaded  bool
}

func (s *stubFeature) Name() string { return s.name }
func (s *stubFeature) IsEnabled() bool { return s.enabled }

func (s *stubFeature) Load(fiber.Router) error {
	s.loaded = true
	return s.err
}

func TestManager_LoadAll(t *testing.T) {
	on := &stubFeature{name: "on", enabled: true}
	off := &stubFeature{name: "off"}
	mgr := NewManager(nil)
	mgr.Register(on)
	mgr.Register(off)

	require.NoError(t, mgr.LoadAll(fiber.New()))
	assert.True(t, on.loaded)
	assert.False(t, off.loaded)
	assert.Len(t, mgr.Features(), 2)
}

func TestManager_LoadAllStopsAtFailure(t *testing.T) {
	bad := &stubFeature{name: "bad", enabled: true, err: errors.New("boom")}
	next := &stubFeature{name: "next", enabled: true}
	mgr := NewManager(nil)
	mgr.Register(bad)
	mgr.Register(next)

	err := mgr.LoadAll(fiber.New())
	assert.ErrorContains(t, err, "bad")
	assert.False(t, next.loaded)
}
