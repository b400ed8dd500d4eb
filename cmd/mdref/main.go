package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"mdref/internal/lsp"
)

const version = "0.1.0"

func main() {
	var (
		verbosity   int
		logPath     string
		indexPath   string
		showVersion bool
	)
	pflag.IntVarP(&verbosity, "verbose", "v", 1, "log verbosity (0-2)")
	pflag.StringVar(&logPath, "log-file", "", "write logs to this file instead of stderr")
	pflag.StringVar(&indexPath, "index-db", defaultIndexPath(), "path of the workspace index database (empty disables persistence)")
	pflag.BoolVar(&showVersion, "version", false, "print version and exit")
	pflag.Parse()

	if showVersion {
		fmt.Println(version)
		return
	}

	if logPath != "" {
		commonlog.Configure(verbosity, &logPath)
	} else {
		commonlog.Configure(verbosity, nil)
	}

	server, err := lsp.NewServer(indexPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create server: %v\n", err)
		os.Exit(1)
	}

	if err := server.RunStdio(); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// defaultIndexPath places the workspace index under the user cache
// directory. An empty return disables persistence.
func defaultIndexPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	dir = filepath.Join(dir, "mdref")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return ""
	}
	return filepath.Join(dir, "index.db")
}
