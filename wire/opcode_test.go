package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpcodeString(t *testing.T) {
	require.Equal(t, "GEOSEARCHSTORE", OpGeoSearchStore.String())
	require.Equal(t, "SINTERCARD", OpSInterCard.String())

	// Both scan variants print as the same wire command.
	require.Equal(t, "SCAN", OpScan.String())
	require.Equal(t, "SCAN", OpClusterScan.String())
}
