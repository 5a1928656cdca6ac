package engine

import "github.com/fieldstream/dsv"

// csvState enumerates the seven states of the CSV transition table,
// grounded on original_source/include/commata/parse_csv.hpp's
// detail::csv::state and its parse_step<state> specializations.
type csvState int

const (
	csvAfterComma csvState = iota
	csvInValue
	csvRightOfOpenQuote
	csvInQuotedValue
	csvInQuotedValueAfterQuote
	csvAfterCr
	csvAfterLf
)

// CSVEngine drives the comma-separated transition table over core's
// buffer-refill loop. The zero value is not usable; construct with
// NewCSVEngine.
type CSVEngine[C dsv.Ch] struct {
	core[C]
	state csvState
}

// NewCSVEngine returns an engine that reads from src and delivers events
// to h, using an arena buffer of arenaSize units unless h implements
// BufferProvider (in which case arenaSize is ignored). arenaSize of 0
// selects DefaultBufferSize.
func NewCSVEngine[C dsv.Ch](h Handler[C], src dsv.Source[C], arenaSize int) *CSVEngine[C] {
	return &CSVEngine[C]{core: newCore(h, src, arenaSize), state: csvAfterLf}
}

// Run parses until end of stream, an abort, or a yield point. See
// Status for what each outcome means and Yielder for resuming a
// suspended parse.
func (e *CSVEngine[C]) Run() (Status, error) {
	return e.core.run(e)
}

func (e *CSVEngine[C]) stepNormal(c C) error {
	k := e.keys
	switch e.state {
	case csvAfterComma:
		switch c {
		case k.Comma:
			e.setFirstLast()
			return e.finalize()
		case k.DQuote:
			e.state = csvRightOfOpenQuote
		case k.CR:
			e.setFirstLast()
			if err := e.finalize(); err != nil {
				return err
			}
			if err := e.endRecord(); err != nil {
				return err
			}
			e.state = csvAfterCr
		case k.LF:
			e.setFirstLast()
			if err := e.finalize(); err != nil {
				return err
			}
			if err := e.endRecord(); err != nil {
				return err
			}
			e.state = csvAfterLf
		default:
			e.setFirstLast()
			e.updateLast()
			e.state = csvInValue
		}

	case csvInValue:
		switch c {
		case k.Comma:
			if err := e.finalize(); err != nil {
				return err
			}
			e.state = csvAfterComma
		case k.DQuote:
			return dsv.NewInvalidFormatError("a quotation mark found in a non-escaped value")
		case k.CR:
			if err := e.finalize(); err != nil {
				return err
			}
			if err := e.endRecord(); err != nil {
				return err
			}
			e.state = csvAfterCr
		case k.LF:
			if err := e.finalize(); err != nil {
				return err
			}
			if err := e.endRecord(); err != nil {
				return err
			}
			e.state = csvAfterLf
		default:
			e.updateLast()
		}

	case csvRightOfOpenQuote:
		e.setFirstLast()
		if c == k.DQuote {
			e.state = csvInQuotedValueAfterQuote
		} else {
			e.updateLast()
			e.state = csvInQuotedValue
		}

	case csvInQuotedValue:
		if c == k.DQuote {
			if err := e.update(); err != nil {
				return err
			}
			e.setFirstLast()
			e.state = csvInQuotedValueAfterQuote
		} else {
			e.updateLast()
		}

	case csvInQuotedValueAfterQuote:
		switch c {
		case k.Comma:
			if err := e.finalize(); err != nil {
				return err
			}
			e.state = csvAfterComma
		case k.DQuote:
			e.setFirstLast()
			e.updateLast()
			e.state = csvInQuotedValue
		case k.CR:
			if err := e.finalize(); err != nil {
				return err
			}
			if err := e.endRecord(); err != nil {
				return err
			}
			e.state = csvAfterCr
		case k.LF:
			if err := e.finalize(); err != nil {
				return err
			}
			if err := e.endRecord(); err != nil {
				return err
			}
			e.state = csvAfterLf
		default:
			return dsv.NewInvalidFormatError("an invalid character found after a closed escaped value")
		}

	case csvAfterCr:
		switch c {
		case k.Comma:
			e.newPhysicalLine()
			e.setFirstLast()
			if err := e.finalize(); err != nil {
				return err
			}
			e.state = csvAfterComma
		case k.DQuote:
			e.newPhysicalLine()
			if err := e.forceStartRecord(); err != nil {
				return err
			}
			e.state = csvRightOfOpenQuote
		case k.CR:
			e.newPhysicalLine()
			if err := e.emptyPhysicalLine(); err != nil {
				return err
			}
		case k.LF:
			e.state = csvAfterLf
		default:
			e.newPhysicalLine()
			e.setFirstLast()
			e.updateLast()
			e.state = csvInValue
		}

	case csvAfterLf:
		switch c {
		case k.Comma:
			e.newPhysicalLine()
			e.setFirstLast()
			if err := e.finalize(); err != nil {
				return err
			}
			e.state = csvAfterComma
		case k.DQuote:
			e.newPhysicalLine()
			if err := e.forceStartRecord(); err != nil {
				return err
			}
			e.state = csvRightOfOpenQuote
		case k.CR:
			e.newPhysicalLine()
			if err := e.emptyPhysicalLine(); err != nil {
				return err
			}
			e.state = csvAfterCr
		case k.LF:
			e.newPhysicalLine()
			if err := e.emptyPhysicalLine(); err != nil {
				return err
			}
		default:
			e.newPhysicalLine()
			e.setFirstLast()
			e.updateLast()
			e.state = csvInValue
		}
	}
	return nil
}

func (e *CSVEngine[C]) stepUnderflow() error {
	switch e.state {
	case csvInValue, csvInQuotedValue:
		return e.update()
	default:
		return nil
	}
}

func (e *CSVEngine[C]) stepEOF() error {
	switch e.state {
	case csvAfterComma, csvInValue, csvInQuotedValueAfterQuote:
		return e.finalize()
	case csvRightOfOpenQuote, csvInQuotedValue:
		return dsv.NewInvalidFormatError("EOF reached with an open escaped value")
	default: // csvAfterCr, csvAfterLf
		return nil
	}
}
