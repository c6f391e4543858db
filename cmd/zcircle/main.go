package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zapp"
	"github.com/zarlcorp/zcircle/internal/cli"
	"github.com/zarlcorp/zcircle/internal/contact"
	"github.com/zarlcorp/zcircle/internal/tui"
)

// version is set at build time via ldflags.
var version = "dev"

const usage = `usage: zcircle [command]

commands:
  render [--name N] [--address A] [--size S] [--thumbnail T] [--contact ID]
  add --name N [--address A] [--thumbnail FILE]
  list [--json]
  forget <id>
  sample [--save]
  import <file.yaml>
  serve [--addr :8080]
  version

with no command, zcircle opens the contact book.`

func main() {
	app := zapp.New(zapp.WithName("zcircle"))

	ctx, cancel := zapp.SignalContext(context.Background())
	defer cancel()

	if len(os.Args) > 1 {
		runCLI(ctx, os.Args[1], os.Args[2:])
		_ = app.Close()
		return
	}

	if err := runTUI(); err != nil {
		slog.Error("tui", "err", err)
		_ = app.Close()
		os.Exit(1)
	}

	if err := app.Close(); err != nil {
		slog.Error("shutdown", "err", err)
		os.Exit(1)
	}
}

func runCLI(ctx context.Context, cmd string, args []string) {
	switch cmd {
	case "version":
		fmt.Printf("zcircle %s\n", version)
	case "render":
		cli.CmdRender(args)
	case "add":
		cli.CmdAdd(args)
	case "list":
		cli.CmdList(args)
	case "forget":
		if len(args) < 1 {
			fmt.Fprintln(os.Stderr, "usage: zcircle forget <id>")
			os.Exit(1)
		}
		cli.CmdForget(args[0])
	case "sample":
		cli.CmdSample(args)
	case "import":
		cli.CmdImport(args)
	case "serve":
		cli.CmdServe(ctx, args)
	case "help", "-h", "--help":
		fmt.Println(usage)
	default:
		fmt.Fprintf(os.Stderr, "zcircle: unknown command %q\n\n%s\n", cmd, usage)
		os.Exit(1)
	}
}

func runTUI() error {
	dataDir := cli.DataDir()
	firstRun := cli.IsFirstRun(dataDir)

	m := tui.New(version, dataDir, contact.NewGenerator(), firstRun)
	p := tea.NewProgram(m)
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	if fm, ok := finalModel.(tui.Model); ok {
		fm.Close()
	}

	return nil
}
