package signal

import (
	"testing"

	"github.com/dkeye/CamRelay/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWsSignalConn_TrySend(t *testing.T) {
	c := &WsSignalConn{send: make(chan core.Frame, 1)}

	require.NoError(t, c.TrySend(core.Frame("a")))
	assert.ErrorIs(t, c.TrySend(core.Frame("b")), ErrBackpressure)
	assert.Equal(t, core.Frame("a"), <-c.send)

	c.closed = true
	assert.ErrorIs(t, c.TrySend(core.Frame("c")), ErrClosed)
}

func TestNewSignalWSController_Defaults(t *testing.T) {
	ctl := NewSignalWSController(nil, Options{})
	assert.Equal(t, 32, ctl.opts.SendBuffer)
	assert.Positive(t, ctl.opts.WriteWait)
	assert.Zero(t, ctl.opts.PingPeriod)
}
