package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/k0kubun/pp/v3"
	"golang.org/x/term"

	"github.com/rijuyuezhu/helidb"
	"github.com/rijuyuezhu/helidb/logging"
	"github.com/rijuyuezhu/helidb/parser"
)

// Return parsed options and the optional SQL file path (spec.md §6
// CLI surface), following the same go-flags shape as the teacher's
// cmd/mysqldef/mysqldef.go.
func parseOptions(args []string) (helidb.Config, string) {
	var opts struct {
		StoragePath string `long:"storage-path" description:"File-backed catalog path" value-name:"path"`
		Reinit      bool   `long:"reinit" description:"Ignore any existing storage file and start empty"`
		NoWriteBack bool   `long:"no-write-back" description:"Don't persist the catalog after each batch"`
		Parallel    bool   `long:"parallel" description:"Use the parallel table manager"`
		ConfigFile  string `long:"config" description:"YAML config file merged under these flags" value-name:"path"`
		Debug       bool   `long:"debug" description:"Dump the parsed statements before executing them"`
		Version     bool   `long:"version" description:"Show this version"`
	}

	p := flags.NewParser(&opts, flags.Default)
	p.Usage = "[options] [sql_file]"
	rest, err := p.ParseArgs(args)
	if err != nil {
		os.Exit(1)
	}

	if opts.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	cfg := helidb.Config{}
	if opts.ConfigFile != "" {
		fileCfg, err := helidb.LoadConfigFile(opts.ConfigFile)
		if err != nil {
			log.Fatal(err)
		}
		cfg = fileCfg
	}

	if opts.StoragePath != "" {
		cfg.StoragePath = &opts.StoragePath
	}
	if opts.Reinit {
		cfg.Reinit = true
	}
	cfg.WriteBack = cfg.StoragePath != nil && !opts.NoWriteBack
	if opts.Parallel {
		cfg.Parallel = true
	}

	logger, err := logging.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	cfg.Logger = logger

	sqlFile := ""
	if len(rest) > 1 {
		fmt.Printf("Multiple SQL files are given: %v\n\n", rest)
		p.WriteHelp(os.Stdout)
		os.Exit(1)
	} else if len(rest) == 1 {
		sqlFile = rest[0]
	}

	debugMode = opts.Debug
	return cfg, sqlFile
}

// version is set by the release build; empty means a dev build.
var version string

// debugMode gates the --debug AST dump, set once during argument
// parsing so runBatch/runRepl don't need to thread it through.
var debugMode bool

func main() {
	cfg, sqlFile := parseOptions(os.Args[1:])

	handle, err := cfg.Connect()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if sqlFile != "" {
		runBatchFile(handle, sqlFile)
		return
	}
	runRepl(handle)
}

func runBatchFile(handle *helidb.Handle, path string) {
	sql, err := readFile(path)
	if err != nil {
		log.Fatalf("Failed to read '%s': %s", path, err)
	}
	ok, output := execute(handle, sql)
	fmt.Print(output)
	if !strings.HasSuffix(output, "\n") {
		fmt.Println()
	}
	if !ok {
		os.Exit(1)
	}
}

// runRepl reproduces the original Rust implementation's REPL
// convenience: read multi-line input until a terminating `;`, execute
// it as one batch, echo the rendered output, and keep the handle
// alive across inputs so write-back accumulates across the session.
func runRepl(handle *helidb.Handle) {
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	scanner := bufio.NewScanner(os.Stdin)
	var pending strings.Builder

	if interactive {
		fmt.Print("helidb> ")
	}
	for scanner.Scan() {
		line := scanner.Text()
		pending.WriteString(line)
		pending.WriteByte('\n')

		if !strings.Contains(line, ";") {
			if interactive {
				fmt.Print("    -> ")
			}
			continue
		}

		batch := pending.String()
		pending.Reset()
		ok, output := execute(handle, batch)
		fmt.Print(output)
		if !strings.HasSuffix(output, "\n") {
			fmt.Println()
		}
		_ = ok

		if interactive {
			fmt.Print("helidb> ")
		}
	}
	if interactive {
		fmt.Println()
	}
}

func execute(handle *helidb.Handle, batch string) (bool, string) {
	if debugMode {
		dumpAST(batch)
	}
	return handle.Execute(batch)
}

func dumpAST(batch string) {
	stmts, err := parser.ParseBatch(batch)
	if err != nil {
		pp.Println(err)
		return
	}
	for _, s := range stmts {
		pp.Println(s)
	}
}

// readFile mirrors the teacher's stdin convention: "-" reads the
// whole of stdin, anything else is a path.
func readFile(path string) (string, error) {
	if path == "-" {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) != 0 {
			return "", fmt.Errorf("stdin is not piped")
		}
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, os.Stdin); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
