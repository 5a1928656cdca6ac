// Command dsv reads a CSV or TSV file, applies an optional YAML column-type
// config, and dumps the parsed rows.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/k0kubun/pp/v3"
	"github.com/klauspost/compress/gzip"
	"golang.org/x/term"

	"github.com/fieldstream/dsv"
)

type options struct {
	File   string `short:"f" long:"file" description:"Read from the file, rather than stdin" value-name:"filename"`
	TSV    bool   `long:"tsv" description:"Parse as tab-separated instead of comma-separated"`
	Gzip   bool   `long:"gzip" description:"Decompress the input with gzip before parsing"`
	Config string `long:"config" description:"YAML file declaring column names and types" value-name:"filename"`
	Pretty bool   `long:"pretty" description:"Force colorized struct-style output even when stdout isn't a terminal"`
	Help   bool   `long:"help" description:"Show this help"`
}

func parseOptions(args []string) (*options, []string) {
	var opts options
	parser := flags.NewParser(&opts, flags.None)
	parser.Usage = "[option...] [file]"
	rest, err := parser.ParseArgs(args)
	if err != nil {
		log.Fatal(err)
	}
	if opts.Help {
		parser.WriteHelp(os.Stdout)
		os.Exit(0)
	}
	return &opts, rest
}

func main() {
	opts, rest := parseOptions(os.Args[1:])

	file := opts.File
	if file == "" && len(rest) > 0 {
		file = rest[0]
	}

	r, err := openInput(file, opts.Gzip)
	if err != nil {
		log.Fatal(err)
	}
	defer r.Close()

	cfg, err := loadColumnConfig(opts.Config)
	if err != nil {
		log.Fatal(err)
	}

	rows, err := scanRows(r, opts.TSV, cfg)
	if err != nil {
		log.Fatal(err)
	}

	dump(rows, opts.Pretty)
}

// openInput opens file (or stdin, when file is empty), optionally wrapping
// it in a gzip reader.
func openInput(file string, gz bool) (io.ReadCloser, error) {
	var r io.ReadCloser
	if file == "" {
		r = io.NopCloser(os.Stdin)
	} else {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", file, err)
		}
		r = f
	}
	if !gz {
		return r, nil
	}
	zr, err := gzip.NewReader(r)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("gzip: %w", err)
	}
	return struct {
		io.Reader
		io.Closer
	}{zr, r}, nil
}

// readAllSource reads r fully into memory; this module's dsv.Source
// contract is a pull interface over an already-available buffer, so the
// CLI glue does the one read-to-completion io.Reader adapters are for.
func readAllSource(r io.Reader) (dsv.Source[byte], error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return dsv.NewSliceSource(data), nil
}

func dump(rows []map[string]string, pretty bool) {
	usePretty := pretty || term.IsTerminal(int(os.Stdout.Fd()))
	if usePretty {
		for _, row := range rows {
			pp.Println(row)
		}
		return
	}
	for _, row := range rows {
		fmt.Println(row)
	}
}
