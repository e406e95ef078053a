// Command pagedb is a small CLI and optional diagnostics server over
// the paged storage core in internal/storage, internal/record, and
// internal/rowstore.
package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/mitchellh/cli"

	"github.com/cabewaldrop/pagedb/cmd/pagedb/command"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		args = []string{"--help"}
	}

	commands := map[string]cli.CommandFactory{
		"init":   func() (cli.Command, error) { return &command.InitCommand{}, nil },
		"insert": func() (cli.Command, error) { return &command.InsertCommand{}, nil },
		"get":    func() (cli.Command, error) { return &command.GetCommand{}, nil },
		"delete": func() (cli.Command, error) { return &command.DeleteCommand{}, nil },
		"scan":   func() (cli.Command, error) { return &command.ScanCommand{}, nil },
		"stats":  func() (cli.Command, error) { return &command.StatsCommand{}, nil },
		"serve":  func() (cli.Command, error) { return &command.ServeCommand{ShutDownCh: makeShutdownCh()}, nil },
	}

	pagedbCLI := &cli.CLI{
		Name:     "pagedb",
		Args:     args,
		Commands: commands,
		HelpFunc: cli.BasicHelpFunc("pagedb"),
	}

	exitCode, err := pagedbCLI.Run()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		os.Exit(1)
	}
	os.Exit(exitCode)
}

func makeShutdownCh() <-chan struct{} {
	resultCh := make(chan struct{})
	signalCh := make(chan os.Signal, 4)
	signal.Notify(signalCh, os.Interrupt)
	go func() {
		<-signalCh
		resultCh <- struct{}{}
	}()
	return resultCh
}
