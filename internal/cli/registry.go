// Package cli is a small flag-based subcommand registry for the assistant
// binary (serve, parse, suggest).
package cli

import (
	"flag"
	"fmt"
	"sort"
	"strings"
)

// Command is one subcommand: its flags and a Run function called after Parse.
type Command struct {
	Name    string
	Usage   string
	FlagSet *flag.FlagSet
	Run     func() error
}

// Registry holds subcommands by name. Register commands, then Execute with
// os.Args[1:].
type Registry struct {
	cmds        map[string]*Command
	defaultName string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{cmds: make(map[string]*Command)}
}

// Register adds a subcommand. usage is a one-line description shown by Usage.
func (r *Registry) Register(name, usage string, fs *flag.FlagSet, run func() error) {
	r.cmds[name] = &Command{Name: name, Usage: usage, FlagSet: fs, Run: run}
}

// SetDefault names the subcommand run when Execute gets no arguments.
func (r *Registry) SetDefault(name string) {
	r.defaultName = name
}

// Execute runs the subcommand in args[0] with the rest as its flags. With no
// args it runs the default subcommand, if set.
func (r *Registry) Execute(args []string) error {
	name := r.defaultName
	rest := args
	if len(args) > 0 {
		name = args[0]
		rest = args[1:]
	}
	if name == "" {
		return fmt.Errorf("missing subcommand\n%s", r.Usage())
	}
	cmd, ok := r.cmds[name]
	if !ok {
		return fmt.Errorf("unknown subcommand %q\n%s", name, r.Usage())
	}
	if err := cmd.FlagSet.Parse(rest); err != nil {
		return err
	}
	return cmd.Run()
}

// Usage returns a one-line-per-subcommand summary.
func (r *Registry) Usage() string {
	names := make([]string, 0, len(r.cmds))
	for name := range r.cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	b.WriteString("subcommands:")
	for _, name := range names {
		fmt.Fprintf(&b, "\n  %-8s %s", name, r.cmds[name].Usage)
	}
	return b.String()
}
