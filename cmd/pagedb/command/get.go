package command

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// GetCommand reads back a single row.
type GetCommand struct{}

func (c *GetCommand) Help() string {
	return strings.TrimSpace(`
Usage: pagedb get [options] <pageID:rowID>

Options:

  -db=""      Backing file path
  -config=""  YAML config file
`)
}

func (c *GetCommand) Synopsis() string {
	return "Read a row by address"
}

func (c *GetCommand) Run(args []string) int {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "get: expected exactly one address argument")
		return 1
	}
	pageID, rowID, err := parseAddress(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "get: %s\n", err)
		return 1
	}

	pager, store, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "get: %s\n", err)
		return 1
	}
	defer pager.Close()

	fields, err := store.Get(pageID, rowID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "get: %s\n", err)
		return 1
	}

	fmt.Println(fields[0].Text)
	return 0
}
