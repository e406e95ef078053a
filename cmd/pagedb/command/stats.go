package command

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// StatsCommand prints pager cache/dirty state.
type StatsCommand struct{}

func (c *StatsCommand) Help() string {
	return strings.TrimSpace(`
Usage: pagedb stats [options]

Options:

  -db=""      Backing file path
  -config=""  YAML config file
`)
}

func (c *StatsCommand) Synopsis() string {
	return "Print page count and cache stats"
}

func (c *StatsCommand) Run(args []string) int {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return 1
	}

	pager, _, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stats: %s\n", err)
		return 1
	}
	defer pager.Close()

	fmt.Printf("pages=%d cache=%d/%d dirty=%d\n",
		pager.PageCount(), pager.CacheSize(), pager.MaxCacheSize(), pager.DirtyCount())
	return 0
}
