// bdfconvert converts documents between the binary and text forms of bdf,
// and to msgpack or JSON.
//
// Usage:
//
//	bdfconvert [-in file] [-o file] [-m binary|human|msgpack|json] [-p] [-z]
//	bdfconvert -db store.db -put name [-in file]
//	bdfconvert -db store.db -get name [-m format]
//
// The input format (gzip, binary or text) is detected automatically. Without
// -m, binary input is written as text and text input as binary.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/andreyvit/bdf"
	"github.com/andreyvit/bdf/mmap"
	"github.com/andreyvit/bdf/store"
	"go.uber.org/zap"
	"golang.org/x/term"
)

type options struct {
	in, out       string
	format        string
	pretty        bool
	gzip          bool
	strict        bool
	legacyEscapes bool
	db            string
	get, put      string
	verbose       bool
}

func main() {
	var opt options
	flag.StringVar(&opt.in, "in", "", "input file (default stdin)")
	flag.StringVar(&opt.out, "o", "", "output file (default stdout)")
	flag.StringVar(&opt.format, "m", "", "output format: binary, human, msgpack, json")
	flag.BoolVar(&opt.pretty, "p", false, "indent text output")
	flag.BoolVar(&opt.gzip, "z", false, "gzip the output")
	flag.BoolVar(&opt.strict, "strict", false, "reject binary input with inconsistent sizes")
	flag.BoolVar(&opt.legacyEscapes, "legacy-escapes", false, "keep unknown backslash escapes in text input")
	flag.StringVar(&opt.db, "db", "", "document store file")
	flag.StringVar(&opt.get, "get", "", "read the named document from the store instead of the input")
	flag.StringVar(&opt.put, "put", "", "write the document to the store under this name")
	flag.BoolVar(&opt.verbose, "v", false, "verbose logging")
	flag.Parse()

	if flag.NArg() > 0 || ((opt.get != "" || opt.put != "") && opt.db == "") {
		flag.Usage()
		os.Exit(2)
	}

	logger := zap.NewNop()
	if opt.verbose {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	defer logger.Sync()

	if err := run(&opt, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", describe(err))
		os.Exit(1)
	}
}

// describe prints parse errors with their source excerpt on a terminal and
// on a single line otherwise.
func describe(err error) string {
	var fe *bdf.FormatError
	if errors.As(err, &fe) && !term.IsTerminal(int(os.Stderr.Fd())) {
		return fe.Short()
	}
	return err.Error()
}

func run(opt *options, logger *zap.Logger) error {
	dopt := bdf.DecodeOptions{StrictSize: opt.strict}
	if opt.verbose {
		dopt.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	var st *store.Store
	if opt.db != "" {
		var err error
		st, err = store.Open(opt.db, store.Options{
			Compress:   true,
			StrictSize: opt.strict,
			Logger:     dopt.Logger,
		})
		if err != nil {
			return err
		}
		defer st.Close()
		logger.Debug("opened store", zap.String("path", opt.db))
	}

	var doc *bdf.Document
	var inFormat bdf.Format
	if opt.get != "" {
		var err error
		doc, err = st.Get(opt.get)
		if err != nil {
			return err
		}
		inFormat = bdf.FormatBinary
		logger.Debug("loaded document", zap.String("name", opt.get))
	} else {
		var err error
		doc, inFormat, err = readInput(opt, dopt, logger)
		if err != nil {
			return err
		}
	}

	if opt.put != "" {
		if err := st.Put(opt.put, doc); err != nil {
			return err
		}
		logger.Info("stored document", zap.String("name", opt.put))
		return nil
	}

	outFormat := bdf.FormatBinary
	if inFormat != bdf.FormatText {
		outFormat = bdf.FormatText
	}
	if opt.format != "" {
		var err error
		outFormat, err = bdf.ParseFormat(opt.format)
		if err != nil {
			return err
		}
	}
	ind := bdf.Compact
	if opt.pretty {
		ind = bdf.Pretty
	}
	out, err := bdf.Encode(doc, outFormat, ind)
	if err != nil {
		return err
	}
	if outFormat == bdf.FormatText && opt.pretty {
		out = append(out, '\n')
	}
	if opt.gzip && outFormat != bdf.FormatGzip {
		out, err = bdf.Gzip(out, 0)
		if err != nil {
			return err
		}
	}
	logger.Debug("encoded", zap.Stringer("format", outFormat), zap.Int("bytes", len(out)), zap.Bool("gzip", opt.gzip))

	if opt.out == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	return mmap.WriteFile(opt.out, out, 0666)
}

func readInput(opt *options, dopt bdf.DecodeOptions, logger *zap.Logger) (*bdf.Document, bdf.Format, error) {
	var data []byte
	if opt.in == "" {
		var err error
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, 0, err
		}
	} else {
		f, err := mmap.Open(opt.in, mmap.SequentialAccess)
		if err != nil {
			return nil, 0, err
		}
		defer f.Close()
		data = f.Bytes()
	}

	format := bdf.DetectFormat(data)
	if format == bdf.FormatGzip {
		var err error
		data, err = bdf.Gunzip(data)
		if err != nil {
			return nil, 0, err
		}
		format = bdf.DetectFormat(data)
	}
	logger.Debug("read input", zap.String("path", opt.in), zap.Stringer("format", format), zap.Int("bytes", len(data)))

	if format == bdf.FormatText {
		doc, err := bdf.ParseTextWithOptions(string(data), bdf.ParseOptions{LegacyEscapes: opt.legacyEscapes})
		return doc, format, err
	}
	doc, err := bdf.DecodeFormat(data, format, dopt)
	return doc, format, err
}
