package flags

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeclare_BindsToViper(t *testing.T) {
	t.Cleanup(viper.Reset)

	set := pflag.NewFlagSet("test", pflag.ContinueOnError)
	require.NoError(t, Declare(set, []Def[string]{
		{"rpc-url", "network.rpc-url", "http://localhost:8545", "RPC URL"},
	}))
	require.NoError(t, Declare(set, []Def[int]{
		{"quantity", "smoke.quantity", 1, "claim quantity"},
	}))
	require.NoError(t, Declare(set, []Def[bool]{
		{"pull", "devnet.pull", false, "always pull"},
	}))

	require.NoError(t, set.Parse([]string{"--rpc-url", "http://node:8545", "--quantity=3", "--pull"}))

	assert.Equal(t, "http://node:8545", viper.GetString("network.rpc-url"))
	assert.Equal(t, 3, viper.GetInt("smoke.quantity"))
	assert.True(t, viper.GetBool("devnet.pull"))
}

func TestDeclare_DefaultWhenUnset(t *testing.T) {
	t.Cleanup(viper.Reset)

	set := pflag.NewFlagSet("test", pflag.ContinueOnError)
	require.NoError(t, Declare(set, []Def[string]{
		{"output-dir", "output.dir", "./.pengolin", "output directory"},
	}))
	require.NoError(t, set.Parse(nil))

	assert.Equal(t, "./.pengolin", viper.GetString("output.dir"))
}
