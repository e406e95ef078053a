package command

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/cabewaldrop/pagedb/internal/diagnostics"
)

// ServeCommand runs the optional diagnostics HTTP server until a
// shutdown signal arrives.
type ServeCommand struct {
	ShutDownCh <-chan struct{}
}

func (c *ServeCommand) Help() string {
	return strings.TrimSpace(`
Usage: pagedb serve [options]

Options:

  -db=""      Backing file path
  -config=""  YAML config file
`)
}

func (c *ServeCommand) Synopsis() string {
	return "Run the diagnostics HTTP server"
}

func (c *ServeCommand) Run(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return 1
	}

	pager, _, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "serve: %s\n", err)
		return 1
	}
	defer pager.Close()

	addr := cfg.Diagnostics.Addr
	if addr == "" {
		addr = ":8080"
	}
	server := diagnostics.NewServer(addr, pager)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Run() }()

	select {
	case <-c.ShutDownCh:
		return 0
	case err := <-errCh:
		if err != nil {
			fmt.Fprintf(os.Stderr, "serve: %s\n", err)
			return 1
		}
		return 0
	}
}
