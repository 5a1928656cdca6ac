package main

import (
	"fmt"
	"io"

	"github.com/fieldstream/dsv/engine"
	"github.com/fieldstream/dsv/scan"
)

// rowSink accumulates the field values of the record currently being
// scanned into a map keyed by column name, flushing a completed row into
// rows on each RecordEnd.
type rowSink struct {
	names *[]string
	cur   map[string]string
	rows  []map[string]string
}

func (s *rowSink) setField(col int, v string) {
	if col < len(*s.names) {
		s.cur[(*s.names)[col]] = v
	}
}

// RecordEnd implements scan.RecordEndScanner.
func (s *rowSink) RecordEnd() bool {
	s.rows = append(s.rows, s.cur)
	s.cur = map[string]string{}
	return true
}

// errTracker is satisfied by every *scan.Translator this command
// constructs, so a failed conversion (which aborts the parse with no
// error of its own, per the engine's abort protocol) can be traced back
// to its underlying dsv error afterward.
type errTracker interface {
	Err() error
}

// headerInstaller builds one column scanner per header field, named and
// typed from cfg (falling back to the header text itself when cfg has no
// entry for that column), and installs it on ts.
type headerInstaller struct {
	ts       *scan.TableScanner[byte]
	cfg      fileConfig
	names    []string
	sink     *rowSink
	trackers []errTracker
}

// FieldValue implements scan.HeaderScanner.
func (h *headerInstaller) FieldValue(col int, value []byte) bool {
	name := h.cfg.nameFor(col)
	if name == "" {
		name = string(value)
	}
	for len(h.names) <= col {
		h.names = append(h.names, "")
	}
	h.names[col] = name

	tr := h.newColumnScanner(col, h.cfg.typeFor(col))
	h.ts.AddFieldScanner(col, tr)
	return true
}

func (h *headerInstaller) newColumnScanner(col int, typ string) scan.FieldScanner[byte] {
	switch typ {
	case "int":
		tr := scan.NewArithmeticTranslator[byte, int64](func(v int64) {
			h.sink.setField(col, fmt.Sprintf("%d", v))
		})
		tr.Skip = scan.IgnoreIfSkipped[int64]()
		h.trackers = append(h.trackers, tr)
		return tr
	case "float":
		tr := scan.NewArithmeticTranslator[byte, float64](func(v float64) {
			h.sink.setField(col, fmt.Sprintf("%g", v))
		})
		tr.Skip = scan.IgnoreIfSkipped[float64]()
		h.trackers = append(h.trackers, tr)
		return tr
	default:
		tr := scan.NewOwnStringTranslator[byte](func(v string) {
			h.sink.setField(col, v)
		})
		tr.Skip = scan.IgnoreIfSkipped[string]()
		h.trackers = append(h.trackers, tr)
		return tr
	}
}

// firstErr returns the first non-nil error any installed column scanner
// recorded, if any.
func (h *headerInstaller) firstErr() error {
	for _, tr := range h.trackers {
		if err := tr.Err(); err != nil {
			return err
		}
	}
	return nil
}

// scanRows reads r fully, parses it as CSV or TSV per tsv, and returns one
// map per body row keyed by column name.
func scanRows(r io.Reader, tsv bool, cfg fileConfig) ([]map[string]string, error) {
	src, err := readAllSource(r)
	if err != nil {
		return nil, err
	}

	ts := scan.NewTableScanner[byte]()
	sink := &rowSink{cur: map[string]string{}}
	hi := &headerInstaller{ts: ts, cfg: cfg, sink: sink}
	sink.names = &hi.names
	ts.SetHeaderScanner(hi, 1)
	ts.SetRecordEndScanner(sink)

	var status engine.Status
	if tsv {
		eng := engine.NewTSVEngine[byte](ts, src, 0)
		status, err = eng.Run()
	} else {
		eng := engine.NewCSVEngine[byte](ts, src, 0)
		status, err = eng.Run()
	}
	if err != nil {
		return nil, err
	}
	if status != engine.StatusCompleted {
		if convErr := hi.firstErr(); convErr != nil {
			return nil, convErr
		}
		return nil, fmt.Errorf("parse stopped before reaching the end of input")
	}
	return sink.rows, nil
}
