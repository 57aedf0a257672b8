// bench - unitex throughput runner
//
// Measures parse, canonicalize and generate over a built-in expression
// corpus:
//   - ns/op, B/op, allocs/op per case and stage
//
// Output: CSV and stdout summary
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/mensura/unitex/unitex"
)

type benchCase struct {
	Name string
	Expr string
}

var cases = []benchCase{
	{"simple", "m"},
	{"accel", "9.81 m/s^2"},
	{"prefixed", "daMeV"},
	{"coefficient", "2e3 kW h"},
	{"powers", "2^12 m/s"},
	{"marks", "50 {currency: USD}/(MW h)"},
	{"chemical", "{chem: CO2}/kg"},
	{"nested", "kW h/(km (s K^2))"},
	{"fraction", "m^-1.5 kg^0.5"},
	{"long", strings.Repeat("m K s A mol ", 8) + "cd"},
}

type stageResult struct {
	Case   string
	Stage  string
	NsOp   int64
	BOp    int64
	Allocs int64
}

func main() {
	table := unitex.DefaultTable()

	fmt.Fprintf(os.Stderr, "unitex Benchmark Runner\n")
	fmt.Fprintf(os.Stderr, "=======================\n")
	fmt.Fprintf(os.Stderr, "Corpus: %d expressions\n\n", len(cases))

	var results []stageResult
	for _, c := range cases {
		expr, err := unitex.Parse(table, c.Expr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skip %s: %v\n", c.Name, err)
			continue
		}

		results = append(results,
			measure(c.Name, "parse", func() {
				_, _ = unitex.Parse(table, c.Expr)
			}),
			measure(c.Name, "canonicalize", func() {
				_, _ = unitex.Canonicalize(expr)
			}),
			measure(c.Name, "generate", func() {
				_ = unitex.Generate(expr)
			}),
		)
		fmt.Fprintf(os.Stderr, "Done %s\n", c.Name)
	}

	// Output CSV
	csvPath := "bench_results.csv"
	csvFile, err := os.Create(csvPath)
	if err == nil {
		writeCSV(csvFile, results)
		csvFile.Close()
		fmt.Fprintf(os.Stderr, "\nCSV written to: %s\n", csvPath)
	}

	// Summary to stdout
	fmt.Printf("\n=== RESULTS ===\n")
	fmt.Printf("%-14s %-13s %10s %10s %10s\n", "case", "stage", "ns/op", "B/op", "allocs/op")
	for _, r := range results {
		fmt.Printf("%-14s %-13s %10d %10d %10d\n", r.Case, r.Stage, r.NsOp, r.BOp, r.Allocs)
	}

	fmt.Printf("\n=== SUMMARY ===\n")
	fmt.Printf("Cases: %d\n", len(results)/3)
	for _, stage := range []string{"parse", "canonicalize", "generate"} {
		var ns, allocs, n int64
		for _, r := range results {
			if r.Stage != stage {
				continue
			}
			ns += r.NsOp
			allocs += r.Allocs
			n++
		}
		if n == 0 {
			continue
		}
		fmt.Printf("%-13s mean %d ns/op, %d allocs/op\n", stage+":", ns/n, allocs/n)
	}
}

// measure runs fn under the testing harness so iteration counts
// self-calibrate.
func measure(name, stage string, fn func()) stageResult {
	r := testing.Benchmark(func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			fn()
		}
	})
	return stageResult{
		Case:   name,
		Stage:  stage,
		NsOp:   r.NsPerOp(),
		BOp:    r.AllocedBytesPerOp(),
		Allocs: r.AllocsPerOp(),
	}
}

func writeCSV(w io.Writer, results []stageResult) {
	fmt.Fprintln(w, "name,stage,ns_op,b_op,allocs_op")
	for _, r := range results {
		fmt.Fprintf(w, "%s,%s,%d,%d,%d\n", r.Case, r.Stage, r.NsOp, r.BOp, r.Allocs)
	}
}
