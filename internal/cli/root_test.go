package cli

import (
	"bytes"
	"testing"

	"github.com/matzehuels/pngexport/pkg/buildinfo"
)

func TestRootCommandSubcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()

	for _, name := range []string{"export", "list", "pick", "serve", "cache", "config", "completion"} {
		t.Run(name, func(t *testing.T) {
			cmd, _, err := root.Find([]string{name})
			if err != nil || cmd == root {
				t.Errorf("subcommand %q not registered", name)
			}
		})
	}
}

func TestRootCommandVersion(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	if root.Version != buildinfo.Version {
		t.Errorf("Version = %q, want %q", root.Version, buildinfo.Version)
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("root command should have a --config flag")
	}
}

func TestExportFlags(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	cmd, _, err := root.Find([]string{"export"})
	if err != nil {
		t.Fatal(err)
	}

	for _, flag := range []string{"selector", "output", "width", "height", "dir", "overwrite", "strict", "no-cache", "refresh", "all"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("export command missing --%s", flag)
		}
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			root := New(&bytes.Buffer{}, LogInfo).RootCommand()
			var out bytes.Buffer
			root.SetOut(&out)
			root.SetArgs([]string{"completion", shell})

			if err := root.Execute(); err != nil {
				t.Fatalf("completion %s: %v", shell, err)
			}
			if !bytes.Contains(out.Bytes(), []byte(appName)) {
				t.Errorf("completion %s output does not mention %s", shell, appName)
			}
		})
	}
}
