package command

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/cabewaldrop/pagedb/internal/record"
)

// InsertCommand writes one row holding a single text value.
type InsertCommand struct{}

func (c *InsertCommand) Help() string {
	return strings.TrimSpace(`
Usage: pagedb insert [options] <value>

Options:

  -db=""      Backing file path
  -config=""  YAML config file
`)
}

func (c *InsertCommand) Synopsis() string {
	return "Insert a row"
}

func (c *InsertCommand) Run(args []string) int {
	fs := flag.NewFlagSet("insert", flag.ContinueOnError)
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "insert: expected exactly one value argument")
		return 1
	}

	pager, store, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "insert: %s\n", err)
		return 1
	}
	defer pager.Close()

	pageID, rowID, err := store.Insert([]record.Field{record.TextField("value", fs.Arg(0))})
	if err != nil {
		fmt.Fprintf(os.Stderr, "insert: %s\n", err)
		return 1
	}

	fmt.Printf("%d:%d\n", pageID, rowID)
	return 0
}
