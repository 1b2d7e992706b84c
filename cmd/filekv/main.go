package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"filekv/internal/config"
	"filekv/internal/logging"
	"filekv/internal/store"
	boltstore "filekv/internal/store/bolt"
	filestore "filekv/internal/store/file"
	pebblestore "filekv/internal/store/pebble"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("filekv", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to config file")
	dataDir := fs.String("data-dir", "", "data directory (overrides config)")
	backend := fs.String("backend", "", "storage backend: file, bolt or pebble (overrides config)")
	bucket := fs.String("bucket", "", "bucket name (overrides config)")
	logLevel := fs.String("log-level", "", "log level (overrides config)")
	logFormat := fs.String("log-format", "", "log format: text or json (overrides config)")
	genKey := fs.Bool("gen-key", false, "put: store under a new random key and print it")
	force := fs.Bool("force", false, "get: write binary values to a terminal")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: filekv [flags] <command> [args]")
		fmt.Fprintln(stderr)
		fmt.Fprint(stderr, helpText())
		fmt.Fprintln(stderr)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "filekv: config: %v\n", err)
		return 1
	}

	// CLI flags override config file values
	if *dataDir != "" {
		cfg.Store.DataDir = *dataDir
	}
	if *backend != "" {
		cfg.Store.Backend = *backend
	}
	if *bucket != "" {
		cfg.Store.Bucket = *bucket
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Logging.Format = *logFormat
	}
	cfg.Store.DataDir = config.ExpandHome(cfg.Store.DataDir)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "filekv: config: %v\n", err)
		return 1
	}
	logging.Setup(stderr, cfg.Logging.Level, cfg.Logging.Format)

	cmd, ok := commands[fs.Arg(0)]
	if !ok {
		fmt.Fprintf(stderr, "filekv: unknown command %q\n", fs.Arg(0))
		return 2
	}

	st, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "filekv: store: %v\n", err)
		return 1
	}
	defer func() {
		if err := st.Close(); err != nil {
			fmt.Fprintf(stderr, "filekv: closing store: %v\n", err)
		}
	}()

	e := &env{
		store:  st,
		bucket: cfg.Store.Bucket,
		stdin:  stdin,
		stdout: stdout,
		genKey: *genKey,
		force:  *force,
	}
	if err := cmd.run(e, fs.Args()[1:]); err != nil {
		var usage usageError
		switch {
		case errors.As(err, &usage):
			fmt.Fprintf(stderr, "usage: filekv %s\n", cmd.usage)
			return 2
		case errors.Is(err, store.ErrNotFound):
			fmt.Fprintf(stderr, "%s: not found\n", fs.Arg(1))
		default:
			fmt.Fprintf(stderr, "filekv: %s: %v\n", fs.Arg(0), err)
		}
		return 1
	}
	return 0
}

func openStore(cfg *config.Config) (store.Store, error) {
	if err := os.MkdirAll(cfg.Store.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	switch cfg.Store.Backend {
	case config.BackendFile:
		return filestore.Open(cfg.Store.DataDir)
	case config.BackendBolt:
		return boltstore.Open(filepath.Join(cfg.Store.DataDir, "data.db"))
	case config.BackendPebble:
		return pebblestore.Open(filepath.Join(cfg.Store.DataDir, "pebble"))
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Store.Backend)
	}
}
