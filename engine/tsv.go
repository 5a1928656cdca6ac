package engine

import "github.com/fieldstream/dsv"

// tsvState enumerates the five states of the TSV transition table,
// grounded on original_source/include/commata/parse_tsv.hpp's
// detail::tsv::state and its parse_step<state> specializations. TSV has
// no quoting, so there is no analogue of CSV's three quote-related
// states, but it does distinguish a run of bare CRs (afterCrs) from a
// single CR (afterCr) to track empty physical lines correctly.
type tsvState int

const (
	tsvAfterTab tsvState = iota
	tsvInValue
	tsvAfterCr
	tsvAfterCrs
	tsvAfterLf
)

// TSVEngine drives the tab-separated transition table over core's
// buffer-refill loop.
type TSVEngine[C dsv.Ch] struct {
	core[C]
	state tsvState
}

// NewTSVEngine returns an engine that reads from src and delivers events
// to h. See NewCSVEngine for the meaning of arenaSize.
func NewTSVEngine[C dsv.Ch](h Handler[C], src dsv.Source[C], arenaSize int) *TSVEngine[C] {
	return &TSVEngine[C]{core: newCore(h, src, arenaSize), state: tsvAfterLf}
}

// Run parses until end of stream, an abort, or a yield point.
func (e *TSVEngine[C]) Run() (Status, error) {
	return e.core.run(e)
}

func (e *TSVEngine[C]) stepNormal(c C) error {
	k := e.keys
	switch e.state {
	case tsvAfterTab:
		switch c {
		case k.Tab:
			e.setFirstLast()
			return e.finalize()
		case k.CR:
			e.setFirstLast()
			if err := e.finalize(); err != nil {
				return err
			}
			if err := e.endRecord(); err != nil {
				return err
			}
			e.state = tsvAfterCr
		case k.LF:
			e.setFirstLast()
			if err := e.finalize(); err != nil {
				return err
			}
			if err := e.endRecord(); err != nil {
				return err
			}
			e.state = tsvAfterLf
		default:
			e.setFirstLast()
			e.updateLast()
			e.state = tsvInValue
		}

	case tsvInValue:
		switch c {
		case k.Tab:
			if err := e.finalize(); err != nil {
				return err
			}
			e.state = tsvAfterTab
		case k.CR:
			if err := e.finalize(); err != nil {
				return err
			}
			if err := e.endRecord(); err != nil {
				return err
			}
			e.state = tsvAfterCr
		case k.LF:
			if err := e.finalize(); err != nil {
				return err
			}
			if err := e.endRecord(); err != nil {
				return err
			}
			e.state = tsvAfterLf
		default:
			e.updateLast()
		}

	case tsvAfterCr:
		switch c {
		case k.Tab:
			e.newPhysicalLine()
			e.setFirstLast()
			if err := e.finalize(); err != nil {
				return err
			}
			e.state = tsvAfterTab
		case k.CR:
			e.newPhysicalLine()
			e.state = tsvAfterCrs
		case k.LF:
			e.state = tsvAfterLf
		default:
			e.newPhysicalLine()
			e.setFirstLast()
			e.updateLast()
			e.state = tsvInValue
		}

	case tsvAfterCrs:
		switch c {
		case k.Tab:
			e.newPhysicalLine()
			e.setFirstLast()
			if err := e.finalize(); err != nil {
				return err
			}
			e.state = tsvAfterTab
		case k.CR:
			// stay in afterCrs; each extra bare CR is its own empty line,
			// but original_source only advances physical_line_index on the
			// next non-CR unit, matching its after_crs::normal.
		case k.LF:
			e.state = tsvAfterLf
		default:
			e.newPhysicalLine()
			if err := e.emptyPhysicalLine(); err != nil {
				return err
			}
			e.setFirstLast()
			e.updateLast()
			e.state = tsvInValue
		}

	case tsvAfterLf:
		e.newPhysicalLine()
		switch c {
		case k.Tab:
			e.setFirstLast()
			if err := e.finalize(); err != nil {
				return err
			}
			e.state = tsvAfterTab
		case k.CR:
			if err := e.emptyPhysicalLine(); err != nil {
				return err
			}
			e.state = tsvAfterCr
		case k.LF:
			if err := e.emptyPhysicalLine(); err != nil {
				return err
			}
		default:
			e.setFirstLast()
			e.updateLast()
			e.state = tsvInValue
		}
	}
	return nil
}

func (e *TSVEngine[C]) stepUnderflow() error {
	if e.state == tsvInValue {
		return e.update()
	}
	return nil
}

func (e *TSVEngine[C]) stepEOF() error {
	switch e.state {
	case tsvAfterTab, tsvInValue:
		return e.finalize()
	default:
		return nil
	}
}
