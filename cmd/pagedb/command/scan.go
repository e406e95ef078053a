package command

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/cabewaldrop/pagedb/internal/record"
)

// ScanCommand walks every live row in the database.
type ScanCommand struct{}

func (c *ScanCommand) Help() string {
	return strings.TrimSpace(`
Usage: pagedb scan [options]

Options:

  -db=""      Backing file path
  -config=""  YAML config file
`)
}

func (c *ScanCommand) Synopsis() string {
	return "List every live row"
}

func (c *ScanCommand) Run(args []string) int {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return 1
	}

	pager, store, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scan: %s\n", err)
		return 1
	}
	defer pager.Close()

	scanErr := store.Scan(func(pageID uint32, rowID int, fields []record.Field) bool {
		fmt.Printf("%d:%d\t%s\n", pageID, rowID, fields[0].Text)
		return true
	})
	if scanErr != nil {
		fmt.Fprintf(os.Stderr, "scan: %s\n", scanErr)
		return 1
	}
	return 0
}
