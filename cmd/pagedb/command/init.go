package command

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// InitCommand creates (or simply opens, if it already exists) the
// backing file for a pagedb instance.
type InitCommand struct{}

func (c *InitCommand) Help() string {
	return strings.TrimSpace(`
Usage: pagedb init [options]

Options:

  -db=""      Backing file path
  -config=""  YAML config file
`)
}

func (c *InitCommand) Synopsis() string {
	return "Create (or verify) the backing file for a database"
}

func (c *InitCommand) Run(args []string) int {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return 1
	}

	pager, _, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init: %s\n", err)
		return 1
	}
	defer pager.Close()

	fmt.Printf("initialized %s (%d pages)\n", cfg.DBPath, pager.PageCount())
	return 0
}
