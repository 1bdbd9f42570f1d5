package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePolicy(t *testing.T) {
	cases := map[string]BackpressureAction{
		"":     DropMessage,
		"drop": DropMessage,
		"kick": KickConnection,
	}
	for in, want := range cases {
		p, err := ParsePolicy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, p.OnBackPressure(nil), in)
	}

	_, err := ParsePolicy("block")
	assert.Error(t, err)
}
