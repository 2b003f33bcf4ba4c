package cli

import (
	"flag"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestRegistryExecute(t *testing.T) {
	reg := NewRegistry()

	var ran string
	serveFlags := quietFlags("serve")
	reg.Register("serve", "run the server", serveFlags, func() error {
		ran = "serve"
		return nil
	})

	parseFlags := quietFlags("parse")
	command := parseFlags.String("c", "", "command")
	reg.Register("parse", "parse a command", parseFlags, func() error {
		ran = "parse:" + *command
		return nil
	})

	t.Run("named subcommand with flags", func(t *testing.T) {
		require.NoError(t, reg.Execute([]string{"parse", "-c", "add a chair"}))
		assert.Equal(t, "parse:add a chair", ran)
	})

	t.Run("no default set", func(t *testing.T) {
		err := reg.Execute(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing subcommand")
	})

	t.Run("default subcommand", func(t *testing.T) {
		reg.SetDefault("serve")
		require.NoError(t, reg.Execute(nil))
		assert.Equal(t, "serve", ran)
	})

	t.Run("unknown subcommand", func(t *testing.T) {
		err := reg.Execute([]string{"bogus"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bogus")
	})

	t.Run("bad flag", func(t *testing.T) {
		assert.Error(t, reg.Execute([]string{"serve", "-nope"}))
	})
}

func TestRegistryUsage(t *testing.T) {
	reg := NewRegistry()
	reg.Register("b", "second", quietFlags("b"), nil)
	reg.Register("a", "first", quietFlags("a"), nil)

	usage := reg.Usage()
	assert.Contains(t, usage, "first")
	assert.Contains(t, usage, "second")
	assert.Less(t, strings.Index(usage, "first"), strings.Index(usage, "second"))
}
