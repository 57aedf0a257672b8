// unitex - unit expression tool
//
// Usage:
//
//	unitex parse [options] [file]     Parse expressions and print their trees
//	unitex canon [options] [file]     Reduce expressions to canonical form
//	unitex fmt [options] [file]       Reformat expressions
//	unitex eq [options] EXPR EXPR     Test two expressions for equivalence
//	unitex check [options] FILE...    Verify corpus suite files
//	unitex repl [options]             Start an interactive session
//	unitex version                    Print version info
//
// parse, canon and fmt read one expression per line. If no file is
// given, they read from stdin.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	"github.com/rs/zerolog"

	"github.com/mensura/unitex/corpus"
	"github.com/mensura/unitex/unitex"
)

const (
	version     = "0.5.0"
	historyFile = ".unitex_history"
)

var helpText = `
REPL commands:
  :tree    Toggle printing the parse tree before the canonical form
  :help    Show this help
  :quit    Exit
`

func red(s string) string { return "\x1b[31m" + s + "\x1b[0m" }

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "version", "-v", "--version":
		fmt.Printf("unitex %s\n", version)
		return
	case "help", "-h", "--help":
		printUsage()
		return
	}

	// Flags come after the subcommand and apply to every command that
	// understands them.
	var (
		defsPath  string
		latin1    bool
		logLevel  = "info"
		parseOpts unitex.ParseOptions
		genOpts   unitex.GenerateOptions
		args      []string
	)
	for _, arg := range os.Args[2:] {
		switch {
		case arg == "--latin1":
			latin1 = true
		case arg == "--legacy-exponents":
			parseOpts.LegacyExponents = true
		case arg == "--no-caret":
			genOpts.LegacyExponents = true
		case arg == "--minimal":
			genOpts.Spacing = unitex.SpacingMinimal
		case arg == "--plain":
			genOpts.NumberFormat = unitex.NumberPlain
		case arg == "--scientific":
			genOpts.NumberFormat = unitex.NumberScientific
		case strings.HasPrefix(arg, "--defs="):
			defsPath = strings.TrimPrefix(arg, "--defs=")
		case strings.HasPrefix(arg, "--log-level="):
			logLevel = strings.TrimPrefix(arg, "--log-level=")
		default:
			if strings.HasPrefix(arg, "--") {
				fatal("unknown flag: %s", arg)
			}
			if arg != "-" {
				args = append(args, arg)
			}
		}
	}

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().
		Level(level)

	table := loadTable(defsPath, logger)

	switch cmd {
	case "parse", "canon", "fmt":
		var input io.Reader = os.Stdin
		if len(args) > 0 {
			f, err := os.Open(args[0])
			if err != nil {
				fatal("open file: %v", err)
			}
			defer f.Close()
			input = f
		}

		var transform func(string) (string, error)
		switch cmd {
		case "parse":
			transform = func(line string) (string, error) {
				expr, err := unitex.ParseWithOptions(table, line, parseOpts)
				if err != nil {
					return "", err
				}
				return unitex.Polish(expr), nil
			}
		case "canon":
			transform = func(line string) (string, error) {
				expr, err := unitex.ParseWithOptions(table, line, parseOpts)
				if err != nil {
					return "", err
				}
				cf, err := unitex.Canonicalize(expr)
				if err != nil {
					return "", err
				}
				return unitex.GenerateWithOptions(cf.Expression(), genOpts), nil
			}
		case "fmt":
			transform = func(line string) (string, error) {
				expr, err := unitex.ParseWithOptions(table, line, parseOpts)
				if err != nil {
					return "", err
				}
				return unitex.GenerateWithOptions(expr, genOpts), nil
			}
		}

		if code := runFilter(input, latin1, transform); code != 0 {
			os.Exit(code)
		}

	case "eq":
		if len(args) != 2 {
			fatal("usage: unitex eq EXPR EXPR")
		}
		eq, err := unitex.Equivalent(table, args[0], args[1])
		if err != nil {
			fatal("%v", err)
		}
		if !eq {
			fmt.Println("not equivalent")
			os.Exit(1)
		}
		fmt.Println("equivalent")

	case "check":
		if len(args) == 0 {
			fatal("usage: unitex check FILE...")
		}
		// Dimension oracles describe the built-in table; a custom table
		// gets no mapping and its suites skip dimension checks.
		mapping := corpus.SIDimensions()
		if defsPath != "" {
			mapping = nil
		}
		failed := 0
		for _, path := range args {
			failed += checkSuite(path, table, mapping, logger)
		}
		if failed > 0 {
			os.Exit(1)
		}

	case "repl":
		os.Exit(runRepl(table, parseOpts, genOpts))

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `unitex - unit expression tool

Usage:
  unitex parse [options] [file]     Parse expressions and print their trees
  unitex canon [options] [file]     Reduce expressions to canonical form
  unitex fmt [options] [file]       Reformat expressions
  unitex eq [options] EXPR EXPR     Test two expressions for equivalence
  unitex check [options] FILE...    Verify corpus suite files (.json, .yaml)
  unitex repl [options]             Start an interactive session
  unitex version                    Print version info

Options:
  --defs=FILE          Load the definitions table from a JSON file
  --latin1             Decode input and encode output as Latin-1
  --log-level=LEVEL    Log level for check output (debug, info, warn, error)
  --legacy-exponents   Accept glued exponents ("m2", "s-1") on input
  --no-caret           Emit glued exponents instead of carets (fmt, canon, repl)
  --minimal            Drop every space the tokenizer can do without
  --plain              Spell numbers as plain decimals
  --scientific         Spell numbers in scientific notation

parse, canon and fmt read one expression per line from the file or, when
no file is given, from stdin. Lines that fail are reported on stderr and
the exit status is 1.

check verifies every record in a suite and reports per record; dimension
fields are checked against the built-in table only.

Examples:
  echo '9.81 m/s^2' | unitex canon
  # Output: 9.81 m s^-2

  echo 'kW h/(m (s K))' | unitex parse
  # Output: (/ (* (pfx k W) h) (* m (* s K)))

  echo '2e3 m/s^2' | unitex fmt --plain --minimal
  # Output: 2000m/s^2

  unitex eq 'W/(m K)' 'W m^-1 K^-1'
  unitex check corpus/testdata/core.json
`)
}

// loadTable opens the definitions file when one is named and falls back
// to the compiled-in table.
func loadTable(path string, log zerolog.Logger) *unitex.DefinitionsTable {
	if path == "" {
		return unitex.DefaultTable()
	}
	f, err := os.Open(path)
	if err != nil {
		fatal("open definitions: %v", err)
	}
	defer f.Close()
	table, err := unitex.LoadDefinitions(f)
	if err != nil {
		fatal("%v", err)
	}
	log.Debug().Str("file", path).
		Int("prefixes", len(table.Prefixes())).
		Int("units", len(table.Units())).
		Msg("definitions loaded")
	return table
}

// runFilter applies transform to every non-blank input line and prints
// the result. Failing lines are reported on stderr with their line
// number; the return value is 1 when any line failed.
func runFilter(r io.Reader, latin1 bool, transform func(string) (string, error)) int {
	data, err := io.ReadAll(r)
	if err != nil {
		fatal("read input: %v", err)
	}
	text := string(data)
	if latin1 {
		text = unitex.DecodeLatin1(data)
	}

	code := 0
	for i, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out, err := transform(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "unitex: line %d: %v\n", i+1, err)
			code = 1
			continue
		}
		writeLine(out, latin1)
	}
	return code
}

func writeLine(s string, latin1 bool) {
	if !latin1 {
		fmt.Println(s)
		return
	}
	b, err := unitex.EncodeLatin1(s)
	if err != nil {
		fatal("%v", err)
	}
	os.Stdout.Write(append(b, '\n'))
}

// checkSuite verifies one suite file and returns the number of failing
// records.
func checkSuite(path string, table *unitex.DefinitionsTable, mapping map[string]corpus.DimVector, log zerolog.Logger) int {
	suite, err := corpus.Load(path)
	if err != nil {
		fatal("%v", err)
	}
	name := suite.Name
	if name == "" {
		name = filepath.Base(path)
	}

	failed := 0
	for i := range suite.Records {
		rec := &suite.Records[i]
		label := rec.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		}
		if err := corpus.Verify(table, rec, mapping); err != nil {
			log.Error().Str("suite", name).Str("record", label).Err(err).Msg("record failed")
			failed++
			continue
		}
		log.Info().Str("suite", name).Str("record", label).Msg("ok")
	}

	if failed > 0 {
		log.Error().Str("suite", name).Int("failed", failed).Int("records", len(suite.Records)).Msg("suite failed")
	} else {
		log.Info().Str("suite", name).Int("records", len(suite.Records)).Msg("suite passed")
	}
	return failed
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func runRepl(table *unitex.DefinitionsTable, parseOpts unitex.ParseOptions, genOpts unitex.GenerateOptions) int {
	fmt.Printf("unitex %s\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit.\n", version)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	showTree := false
	for {
		line, err := ln.Prompt("unit> ")
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return 0
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			return 1
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, ":") {
			switch strings.ToLower(input) {
			case ":quit":
				return 0
			case ":tree":
				showTree = !showTree
				if showTree {
					fmt.Println("tree output on")
				} else {
					fmt.Println("tree output off")
				}
			case ":help":
				fmt.Print(helpText)
			default:
				fmt.Println("unknown command. Type :help for commands, :quit to exit.")
			}
			continue
		}

		expr, err := unitex.ParseWithOptions(table, input, parseOpts)
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			continue
		}
		ln.AppendHistory(input)

		if showTree {
			fmt.Println(unitex.Polish(expr))
		}
		cf, err := unitex.Canonicalize(expr)
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			continue
		}
		fmt.Println(unitex.GenerateWithOptions(cf.Expression(), genOpts))
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "unitex: "+format+"\n", args...)
	os.Exit(1)
}
