// Command dfmidc is a small driver binary over internal/driver,
// internal/report and internal/refbackend, in the idiom of
// golang-tools' own cmd/* tools: flag-based, one verb per invocation.
//
//	dfmidc lower -fixture prog.json
//	dfmidc dump  -fixture prog.json [-html]
//	dfmidc run   -fixture prog.json -fn add -args '[2,3]'
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dfcompiler/dfmid/internal/checkpoint"
	"github.com/dfcompiler/dfmid/internal/ctx"
	"github.com/dfcompiler/dfmid/internal/driver"
	"github.com/dfcompiler/dfmid/internal/ir"
	"github.com/dfcompiler/dfmid/internal/refbackend"
	"github.com/dfcompiler/dfmid/internal/report"
	"github.com/dfcompiler/dfmid/internal/settings"
)

var (
	fixturePath    = flag.String("fixture", "", "path to a JSON function fixture (required)")
	disableAsserts = flag.Bool("disable-asserts", false, "lower assert()/assert_eq() calls to no-ops")
	algebra        = flag.Bool("algebra", false, "enable algebraic identity folding")
	langVersion    = flag.String("lang-version", "v1.0", "surface language version the fixture was checked under")
	concurrency    = flag.Int64("j", 0, "max functions lowered concurrently (0 = unbounded)")
	validateFlag   = flag.Bool("validate", true, "run the internal-invariant validator after lowering")
	htmlFlag       = flag.Bool("html", false, "render the dump as a standalone HTML page instead of Markdown")
	fnFlag         = flag.String("fn", "", "function to execute (run verb only)")
	argsFlag       = flag.String("args", "[]", "JSON array of input values (run verb only)")
)

func usage() {
	io.WriteString(flag.CommandLine.Output(), `dfmidc lowers a JSON function fixture to IR.

Usage:

	dfmidc <verb> -fixture FILE [flags]

Verbs:

	lower	lower every function in the fixture, reporting only errors
	dump	lower and print a Markdown (or, with -html, HTML) IR dump
	run	lower and execute one function against -args via the reference interpreter

Flags:

`)
	flag.PrintDefaults()
}

func main() {
	log.SetPrefix("dfmidc: ")
	log.SetFlags(0)

	flag.Usage = usage
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	verb := os.Args[1]
	flag.CommandLine.Parse(os.Args[2:])
	if flag.NArg() != 0 || *fixturePath == "" {
		usage()
		os.Exit(2)
	}

	if err := run(verb); err != nil {
		log.Fatal(err)
	}
}

func run(verb string) error {
	data, err := os.ReadFile(*fixturePath)
	if err != nil {
		return fmt.Errorf("reading fixture: %w", err)
	}
	fx, err := parseFixture(data)
	if err != nil {
		return err
	}

	st, err := settings.New(*disableAsserts, *algebra, *langVersion)
	if err != nil {
		return fmt.Errorf("building settings: %w", err)
	}

	reg := ctx.NewRegistry()
	for _, ff := range fx.Functions {
		sig, err := funcSig(ff)
		if err != nil {
			return err
		}
		reg.Define(sig)
	}
	global := ctx.NewGlobal(reg)

	specs := make([]driver.FuncSpec, len(fx.Functions))
	for i, ff := range fx.Functions {
		spec, err := funcSpec(ff)
		if err != nil {
			return err
		}
		specs[i] = spec
	}

	d := driver.New(global, st, *concurrency)
	d.Validate = *validateFlag

	fns, err := d.Compile(context.Background(), specs)
	if err != nil {
		return fmt.Errorf("compiling: %w", err)
	}

	switch verb {
	case "lower":
		fmt.Printf("lowered %d function(s) cleanly\n", len(fns))
		return nil
	case "dump":
		return dumpAll(fns, specs)
	case "run":
		return runOne(fns, *fnFlag, *argsFlag)
	default:
		usage()
		os.Exit(2)
		return nil
	}
}

func dumpAll(fns map[string]*ir.Function, specs []driver.FuncSpec) error {
	for _, spec := range specs {
		fn := fns[spec.Name]
		md := report.DumpMarkdown(fn)
		if !*htmlFlag {
			fmt.Println(md)
			continue
		}
		html, err := report.RenderHTML(fn.Name, md)
		if err != nil {
			return fmt.Errorf("rendering %q: %w", fn.Name, err)
		}
		fmt.Println(html)
	}
	return nil
}

func runOne(fns map[string]*ir.Function, name, argsJSON string) error {
	if name == "" {
		return fmt.Errorf("run: -fn is required")
	}
	fn, ok := fns[name]
	if !ok {
		return fmt.Errorf("run: no such function %q", name)
	}

	var raw []any
	if err := decodeJSONArgs(argsJSON, &raw); err != nil {
		return fmt.Errorf("run: parsing -args: %w", err)
	}
	if len(raw) != len(fn.Inputs) {
		return fmt.Errorf("run: %d args given, %q takes %d", len(raw), name, len(fn.Inputs))
	}
	inputs := make([]any, len(raw))
	for i, v := range fn.Inputs {
		val, err := coerceArg(v.Type.PrimKind(), raw[i])
		if err != nil {
			return fmt.Errorf("run: arg %d: %w", i, err)
		}
		inputs[i] = val
	}

	ip := refbackend.NewInterp(fns, checkpoint.NewInMemoryStore())
	out, err := ip.Run(context.Background(), fn, inputs)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	enc, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("run: encoding results: %w", err)
	}
	fmt.Println(string(enc))
	return nil
}
