package command

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// DeleteCommand tombstones a single row.
type DeleteCommand struct{}

func (c *DeleteCommand) Help() string {
	return strings.TrimSpace(`
Usage: pagedb delete [options] <pageID:rowID>

Options:

  -db=""      Backing file path
  -config=""  YAML config file
`)
}

func (c *DeleteCommand) Synopsis() string {
	return "Delete a row by address"
}

func (c *DeleteCommand) Run(args []string) int {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "delete: expected exactly one address argument")
		return 1
	}
	pageID, rowID, err := parseAddress(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "delete: %s\n", err)
		return 1
	}

	pager, store, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "delete: %s\n", err)
		return 1
	}
	defer pager.Close()

	if err := store.Delete(pageID, rowID); err != nil {
		fmt.Fprintf(os.Stderr, "delete: %s\n", err)
		return 1
	}
	return 0
}
