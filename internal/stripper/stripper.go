// Package stripper removes the UTF-8 byte-order mark from a fixed list of
// files and records what happened to each one.
//
// Every file is handled independently: a failure on one file is recorded in
// its Result and the run moves on to the next entry. Files are processed
// sequentially in the order given, exactly once, and a rewrite is never
// undone.
package stripper

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"bomstrip/internal/bom"
	"bomstrip/internal/metrics"

	"github.com/rs/zerolog"
	"github.com/zeebo/xxh3"
)

// Report messages, as printed next to each file.
const (
	MsgRemoved   = "BOM REMOVIDO"
	MsgNoBOM     = "Sem BOM"
	MsgNotFound  = "NAO ENCONTRADO"
	msgErrPrefix = "ERRO: "
)

// ErrVerify is returned when the file read back after a rewrite does not
// match what was written.
var ErrVerify = errors.New("content differs after rewrite")

// Outcome classifies what happened to a single file.
type Outcome int

const (
	Removed Outcome = iota + 1
	NoBOM
	NotFound
	ReadError
	WriteError
)

// String returns the outcome as a metrics/log label.
func (o Outcome) String() string {
	switch o {
	case Removed:
		return "removed"
	case NoBOM:
		return "no_bom"
	case NotFound:
		return "not_found"
	case ReadError:
		return "read_error"
	case WriteError:
		return "write_error"
	default:
		return "unknown"
	}
}

// Failed reports whether o is an I/O failure.
func (o Outcome) Failed() bool {
	return o == ReadError || o == WriteError
}

// Result is the outcome for one file.
type Result struct {
	Path    string  // path as listed (relative) or as passed to RemoveBOM
	Outcome Outcome // classification of what happened
	Message string  // human-readable text for the report
	Err     error   // cause, for ReadError and WriteError

	// BOM is the mark found at the start of the file, if any. A foreign
	// (UTF-16/UTF-32) mark is reported but the file is left as is.
	BOM bom.Kind

	// Checksum is the xxh3 digest of the content written by a rewrite.
	Checksum uint64

	// Rewritten is set when the BOM-less content was written but the
	// read-back check failed; the file changed even though the outcome is
	// WriteError.
	Rewritten bool
}

// Changed reports whether the file was rewritten.
func (r Result) Changed() bool { return r.Outcome == Removed || r.Rewritten }

func failed(path string, o Outcome, err error) Result {
	return Result{
		Path:    path,
		Outcome: o,
		Message: msgErrPrefix + err.Error(),
		Err:     err,
	}
}

// Summary aggregates a run. Processed counts files that exist; Removed counts
// files that were rewritten. Removed <= Processed <= number of entries.
type Summary struct {
	Processed int
	Removed   int
}

// Report is everything a run produced, in file-list order.
type Report struct {
	BaseDir string
	Results []Result
	Summary Summary
}

// Failures counts the results that ended in an I/O failure.
func (r Report) Failures() int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome.Failed() {
			n++
		}
	}
	return n
}

// Hooks replaced by tests to simulate I/O failures.
var (
	openForWrite = func(path string) (*os.File, error) {
		// No O_CREATE: a file that vanished since it was read is an error, not a new file.
		return os.OpenFile(path, os.O_WRONLY, 0)
	}
	readBack = readFile
)

// RemoveBOM strips a leading UTF-8 BOM from the file at path, rewriting it in
// place. It never returns an error: failures are reported as ReadError or
// WriteError results whose Message starts with "ERRO: ".
func RemoveBOM(path string) Result {
	content, err := readFile(path)
	if err != nil {
		return failed(path, ReadError, err)
	}

	payload, ok := bom.Strip(content)
	if !ok {
		return Result{
			Path:    path,
			Outcome: NoBOM,
			Message: MsgNoBOM,
			BOM:     bom.Detect(content),
		}
	}

	if err := rewrite(path, payload); err != nil {
		return failed(path, WriteError, err)
	}
	sum, err := verify(path, payload)
	if err != nil {
		res := failed(path, WriteError, err)
		res.Rewritten = true
		return res
	}

	return Result{
		Path:     path,
		Outcome:  Removed,
		Message:  MsgRemoved,
		BOM:      bom.KindUTF8,
		Checksum: sum,
	}
}

// readFile reads the whole file through a handle that is closed on return.
func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

// rewrite replaces the content of an existing file with payload, keeping the
// file's identity and mode. The exclusive lock is released when f is closed.
func rewrite(path string, payload []byte) error {
	f, err := openForWrite(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := lockFile(f); err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	if err := f.Truncate(0); err != nil {
		return err
	}
	if _, err := f.Write(payload); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	return f.Close()
}

// verify reads path back and checks it against payload.
func verify(path string, payload []byte) (uint64, error) {
	got, err := readBack(path)
	if err != nil {
		return 0, fmt.Errorf("verify %s: %w", path, err)
	}
	want := xxh3.Hash(payload)
	if len(got) != len(payload) || xxh3.Hash(got) != want {
		return 0, fmt.Errorf("verify %s: %w", path, ErrVerify)
	}
	return want, nil
}

// Stripper runs RemoveBOM over a file list, logging and counting each result.
type Stripper struct {
	log zerolog.Logger
	job string
}

// New returns a Stripper that logs to log and labels metrics with job.
func New(log zerolog.Logger, job string) *Stripper {
	return &Stripper{log: log, job: job}
}

// Run processes files in order, each resolved against baseDir. An entry that
// does not exist, including one whose parent is not a directory, is reported
// as NotFound and is not counted as processed; nothing is created for it.
func Run(baseDir string, files []string) Report {
	return New(zerolog.Nop(), "").Run(baseDir, files)
}

// Run is the method form of the package-level Run.
func (s *Stripper) Run(baseDir string, files []string) Report {
	start := time.Now()
	rep := Report{
		BaseDir: baseDir,
		Results: make([]Result, 0, len(files)),
	}

	for _, rel := range files {
		path := filepath.Join(baseDir, filepath.FromSlash(rel))

		var res Result
		switch _, err := os.Stat(path); {
		case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENOTDIR):
			res = Result{Path: rel, Outcome: NotFound, Message: MsgNotFound}
		case err != nil:
			// It may exist but cannot be inspected.
			rep.Summary.Processed++
			res = failed(rel, ReadError, err)
		default:
			rep.Summary.Processed++
			res = RemoveBOM(path)
			res.Path = rel
			if res.Changed() {
				rep.Summary.Removed++
			}
		}

		s.observe(path, res)
		rep.Results = append(rep.Results, res)
	}

	elapsed := time.Since(start)
	metrics.RecordRun(s.job, rep.Failures(), elapsed)
	s.log.Info().
		Str("dir", baseDir).
		Int("entries", len(files)).
		Int("processed", rep.Summary.Processed).
		Int("removed", rep.Summary.Removed).
		Int("failed", rep.Failures()).
		Dur("elapsed", elapsed).
		Msg("bom cleanup finished")

	return rep
}

func (s *Stripper) observe(path string, res Result) {
	metrics.RecordFile(s.job, res.Outcome.String())

	switch {
	case res.Outcome.Failed():
		s.log.Error().
			Err(res.Err).
			Str("path", res.Path).
			Str("outcome", res.Outcome.String()).
			Bool("rewritten", res.Rewritten).
			Msg("file not cleaned")
	case res.BOM.Foreign():
		s.log.Warn().
			Str("path", res.Path).
			Str("bom", res.BOM.String()).
			Str("encoding", fmt.Sprint(res.BOM.Encoding())).
			Msg("file starts with a non UTF-8 byte-order mark; left untouched")
	default:
		ev := s.log.Debug().Str("path", res.Path).Str("abs", path).Str("outcome", res.Outcome.String())
		if res.Changed() {
			ev = ev.Str("xxh3", fmt.Sprintf("%016x", res.Checksum))
		}
		ev.Msg("file processed")
	}
}
