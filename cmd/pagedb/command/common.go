// Package command holds the individual pagedb CLI subcommands.
package command

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cabewaldrop/pagedb/internal/config"
	"github.com/cabewaldrop/pagedb/internal/rowstore"
	"github.com/cabewaldrop/pagedb/internal/storage"
)

// storeColumns is the fixed single-column schema every CLI subcommand
// reads and writes rows against. pagedb has no schema catalog (out of
// scope); a single text "value" column is enough to exercise the
// pager/page/codec stack end to end from the command line.
var storeColumns = []string{"value"}

// loadConfig registers the --db and --config flags shared by every
// subcommand, parses args, and returns the resolved config.
func loadConfig(fs *flag.FlagSet, args []string) (*config.Config, error) {
	var configPath, dbPath string
	fs.StringVar(&configPath, "config", "", "path to a YAML config file")
	fs.StringVar(&dbPath, "db", "", "backing file path (overrides config)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.Load(configPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.Default()
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg, nil
}

// parseAddress parses a "pageID:rowID" row address as produced by
// InsertCommand's output.
func parseAddress(s string) (uint32, int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected address in pageID:rowID form, got %q", s)
	}
	pageID, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid page id %q: %w", parts[0], err)
	}
	rowID, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid row id %q: %w", parts[1], err)
	}
	return uint32(pageID), rowID, nil
}

func openStore(cfg *config.Config) (*storage.Pager, *rowstore.Store, error) {
	logrus.SetLevel(cfg.ParseLogLevel())
	pager, err := storage.Open(cfg.DBPath, storage.WithMaxCacheSize(cfg.MaxCacheSize))
	if err != nil {
		return nil, nil, err
	}
	return pager, rowstore.Open(pager, storeColumns), nil
}
