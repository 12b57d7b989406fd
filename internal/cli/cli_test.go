package cli

import (
	"io"
	"strings"
	"testing"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	want := []string{"scan", "graph", "status", "tag", "star", "unstar", "link", "unlink", "serve", "completion"}
	have := make(map[string]bool)
	for _, cmd := range root.Commands() {
		have[cmd.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestRootCommandVersionTemplate(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	var buf strings.Builder
	root.SetOut(&buf)
	root.SetArgs([]string{"--version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(buf.String(), "taskweave") {
		t.Errorf("version output = %q", buf.String())
	}
}
