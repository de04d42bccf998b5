// Package report renders a lowered Function's instruction stream for
// human inspection: a Markdown table (one row per instruction) and,
// on request, a static HTML page rendered from that Markdown with
// goldmark -- the same library golang.org/x/tools/godoc uses to turn
// doc comments into HTML, repurposed here to turn an IR dump into one.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/dfcompiler/dfmid/internal/arg"
	"github.com/dfcompiler/dfmid/internal/dftype"
	"github.com/dfcompiler/dfmid/internal/ir"
)

// DumpMarkdown renders fn's instruction stream as a Markdown table:
// one row per instruction, in program order, with its opcode, inputs,
// outputs, blocking inputs and task mode.
func DumpMarkdown(fn *ir.Function) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", fn.Name)
	fmt.Fprintf(&b, "inputs: %s\n\n", varList(fn.Inputs))
	fmt.Fprintf(&b, "outputs: %s\n\n", varList(fn.Outputs))
	b.WriteString("| line | opcode | inputs | outputs | blocking | mode |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	fn.Walk(func(_ *ir.Block, in ir.Instruction) {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s |\n",
			in.Line(), in.Op(), argList(in.GetInputs()), varList(in.GetOutputs()),
			varList(in.GetBlockingInputs()), in.GetMode())
	})
	return b.String()
}

// RenderHTML converts a DumpMarkdown table (or any Markdown source) to
// a standalone HTML page for local debugging of lowering output.
func RenderHTML(title, markdown string) (string, error) {
	var body bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &body); err != nil {
		return "", fmt.Errorf("report: rendering markdown: %w", err)
	}
	var page strings.Builder
	fmt.Fprintf(&page, "<!DOCTYPE html>\n<html><head><title>%s</title></head><body>\n", title)
	page.Write(body.Bytes())
	page.WriteString("\n</body></html>\n")
	return page.String(), nil
}

func varList(vs []*dftype.Var) string {
	if len(vs) == 0 {
		return "-"
	}
	names := make([]string, len(vs))
	for i, v := range vs {
		names[i] = v.String()
	}
	return strings.Join(names, ", ")
}

func argList(args []arg.Arg) string {
	if len(args) == 0 {
		return "-"
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}
