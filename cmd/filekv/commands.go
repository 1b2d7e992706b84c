package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/term"

	"filekv/internal/store"
	filestore "filekv/internal/store/file"
)

type env struct {
	store  store.Store
	bucket string
	stdin  io.Reader
	stdout io.Writer
	genKey bool
	force  bool
}

type usageError struct{}

func (usageError) Error() string { return "bad usage" }

type command struct {
	usage string
	help  string
	run   func(e *env, args []string) error
}

var commands = map[string]command{
	"put": {
		usage: "put <key> [value]",
		help:  "store a value (read from stdin when omitted)",
		run:   runPut,
	},
	"get": {
		usage: "get <key>",
		help:  "write a value to stdout",
		run:   runGet,
	},
	"del": {
		usage: "del <key>",
		help:  "delete a value",
		run:   runDel,
	},
	"stat": {
		usage: "stat <key>",
		help:  "show on-disk size and encoding (file backend)",
		run:   runStat,
	},
}

func helpText() string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("commands:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "  %-20s %s\n", commands[name].usage, commands[name].help)
	}
	return b.String()
}

func runPut(e *env, args []string) error {
	if e.genKey {
		if len(args) > 1 {
			return usageError{}
		}
		args = append([]string{uuid.NewString()}, args...)
	} else if len(args) < 1 || len(args) > 2 {
		return usageError{}
	}
	key := args[0]

	var value []byte
	if len(args) == 2 {
		value = []byte(args[1])
	} else {
		var err error
		if value, err = io.ReadAll(e.stdin); err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
	}

	if err := e.store.Set(e.bucket, key, value); err != nil {
		return err
	}
	if e.genKey {
		fmt.Fprintln(e.stdout, key)
	}
	return nil
}

func runGet(e *env, args []string) error {
	if len(args) != 1 {
		return usageError{}
	}
	val, err := e.store.Get(e.bucket, args[0])
	if err != nil {
		return err
	}
	if !e.force && isTerminal(e.stdout) && !utf8.Valid(val) {
		return errors.New("refusing to write binary value to a terminal (use -force)")
	}
	_, err = e.stdout.Write(val)
	return err
}

func runDel(e *env, args []string) error {
	if len(args) != 1 {
		return usageError{}
	}
	return e.store.Delete(e.bucket, args[0])
}

func runStat(e *env, args []string) error {
	if len(args) != 1 {
		return usageError{}
	}
	fst, ok := e.store.(*filestore.Store)
	if !ok {
		return errors.New("stat is only supported by the file backend")
	}
	info, err := fst.Stat(e.bucket, args[0])
	if err != nil {
		return err
	}
	encoding := "raw"
	if info.Compressed {
		encoding = "compressed"
	}
	_, err = fmt.Fprintf(e.stdout, "%s\t%d bytes\t%s\n", args[0], info.Size, encoding)
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
