package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/stigoleg/wakefull/internal/cli"
	"github.com/stigoleg/wakefull/internal/platform"
)

// This small tool generates shell completions and a roff man page from the
// wakefull command definition.

const homepage = "https://github.com/stigoleg/wakefull"

func main() {
	root := cli.NewApp("").NewRootCommand()

	if err := writeCompletions(root, filepath.Join("docs", "completions")); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := writeMan(root, "man"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func writeCompletions(root *cobra.Command, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	name := platform.AppName
	if err := root.GenBashCompletionFileV2(filepath.Join(dir, name+".bash"), true); err != nil {
		return err
	}
	if err := root.GenZshCompletionFile(filepath.Join(dir, "_"+name)); err != nil {
		return err
	}
	return root.GenFishCompletionFile(filepath.Join(dir, name+".fish"), true)
}

func writeMan(root *cobra.Command, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	name := platform.AppName
	return os.WriteFile(filepath.Join(dir, name+".1"), []byte(manPage(root)), 0o644)
}

func manPage(root *cobra.Command) string {
	name := platform.AppName
	var b strings.Builder
	b.WriteString(".TH \"" + strings.ToUpper(name) + "\" \"1\" \"\" \"" + name + "\" \"User Commands\"\n")
	b.WriteString(".SH NAME\n" + name + " \\- " + roffEscape(root.Short) + "\n")
	b.WriteString(".SH SYNOPSIS\n.B " + name + "\n")
	b.WriteString("[\\-s|\\-t|\\-\\-status|\\-\\-diagnose|\\-f|\\-\\-debug] [\\-\\-config <file>] [\\-\\-interval <duration>]\n")
	b.WriteString(".SH DESCRIPTION\n" + roffEscape(root.Long) + "\n")
	b.WriteString(".SH OPTIONS\n")
	root.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		b.WriteString(".TP\n\\fB" + flagNames(f) + "\\fR\n" + roffEscape(f.Usage) + "\n")
	})
	b.WriteString(".TP\n\\fB\\-h, \\-\\-help\\fR\nShow help message\n")
	b.WriteString(".SH FILES\n")
	b.WriteString(".TP\n\\fI$XDG_CONFIG_HOME/wakefull/config.yaml\\fR\nOptional configuration (keys may also be set as WAKEFULL_* environment variables).\n")
	b.WriteString(".TP\n\\fI$XDG_RUNTIME_DIR/wakefull/\\fR\nDaemon record, lock file and settings backup.\n")
	b.WriteString(".SH EXIT STATUS\n0 on success, 1 on usage errors or when the daemon is already or not running, 2 on operational failures.\n")
	b.WriteString(".SH EXAMPLES\n")
	for _, line := range strings.Split(root.Example, "\n") {
		fields := strings.SplitN(strings.TrimSpace(line), "  ", 2)
		if len(fields) != 2 {
			continue
		}
		b.WriteString(".TP\n\\fB" + roffEscape(fields[0]) + "\\fR\n" + roffEscape(strings.TrimSpace(fields[1])) + "\n")
	}
	b.WriteString(".SH SEE ALSO\nsystemd-inhibit(1), xdg-screensaver(1), xset(1)\n.PP\nProject homepage: " + homepage + "\n")
	return b.String()
}

func flagNames(f *pflag.Flag) string {
	names := "\\-\\-" + f.Name
	if f.Shorthand != "" {
		names = "\\-" + f.Shorthand + ", " + names
	}
	if f.Value.Type() != "bool" {
		names += " <" + f.Value.Type() + ">"
	}
	return names
}

func roffEscape(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	return strings.ReplaceAll(s, "-", "\\-")
}
