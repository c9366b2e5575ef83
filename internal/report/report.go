// Package report renders the operator-facing summary of a bomstrip run.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"bomstrip/internal/stripper"
)

const (
	title     = "REMOCAO FINAL DE BOM UTF-8"
	pathWidth = 50
)

var banner = strings.Repeat("=", 80)

// Follow-up commands suggested once at least one file changed. They are
// printed for the operator and never run.
var followUp = []string{
	"composer dump-autoload",
	`php -r "require 'vendor/autoload.php'; var_dump(class_exists('GlpiPlugin\\Newbase\\Config'));"`,
}

// Tag returns the status tag printed in front of a result line.
func Tag(o stripper.Outcome) string {
	switch o {
	case stripper.Removed:
		return "[OK]"
	case stripper.NotFound:
		return "[??]"
	default:
		return "[--]"
	}
}

// Line formats one result line, the path padded to a fixed column.
func Line(r stripper.Result) string {
	return fmt.Sprintf("%s %-*s -> %s", Tag(r.Outcome), pathWidth, r.Path, r.Message)
}

// Write renders rep to w: header, one line per result in order, the summary
// and, when files were changed, the follow-up block.
func Write(w io.Writer, rep stripper.Report) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, banner)
	fmt.Fprintln(bw, title)
	fmt.Fprintln(bw, "Diretorio:", rep.BaseDir)
	fmt.Fprintln(bw, banner)
	fmt.Fprintln(bw)

	for _, r := range rep.Results {
		fmt.Fprintln(bw, Line(r))
	}

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, banner)
	fmt.Fprintf(bw, "Arquivos processados: %d\n", rep.Summary.Processed)
	fmt.Fprintf(bw, "BOM removidos:        %d\n", rep.Summary.Removed)
	fmt.Fprintln(bw, banner)

	if rep.Summary.Removed > 0 {
		fmt.Fprintln(bw)
		fmt.Fprintln(bw, "SUCESSO! Execute agora:")
		fmt.Fprintln(bw)
		for _, cmd := range followUp {
			fmt.Fprintln(bw, "    "+cmd)
		}
		fmt.Fprintln(bw)
	}

	return bw.Flush()
}
