// Command ptconv converts a draft or a portable text JSON file and prints the
// rendered HTML, the block JSON, the heading outline or the CTA split.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/dgallion1/caseblog/internal/cta"
	"github.com/dgallion1/caseblog/internal/importer"
	"github.com/dgallion1/caseblog/internal/portabletext"
	"github.com/dgallion1/caseblog/internal/questionnaire"
	"github.com/dgallion1/caseblog/internal/richtext"
	"github.com/dgallion1/caseblog/internal/toc"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var errUsage = errors.New("usage: ptconv [flags] FILE")

type options struct {
	format     string
	siteDomain string
	categories string
	highlight  bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, file, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	doc, err := load(file)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}
	if err := convert(stdout, doc, opts); err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}
	return exitOK
}

func parseFlags(args []string, stderr io.Writer) (options, string, error) {
	var o options
	fs := flag.NewFlagSet("ptconv", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&o.format, "format", "f", "html", "output: html, json, toc, split")
	fs.StringVar(&o.siteDomain, "site-domain", "casevalue.law", "domain whose links are treated as internal")
	fs.StringVar(&o.categories, "categories", "", "comma-separated post categories for the CTA")
	fs.BoolVar(&o.highlight, "highlight", false, "syntax highlight code blocks")
	fs.Usage = func() {
		fmt.Fprintln(stderr, errUsage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return o, "", err
	}
	switch o.format {
	case "html", "json", "toc", "split":
	default:
		return o, "", fmt.Errorf("unknown format %q", o.format)
	}
	if fs.NArg() != 1 {
		return o, "", errUsage
	}
	return o, fs.Arg(0), nil
}

func load(path string) (portabletext.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		doc, err := portabletext.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
		}
		return doc, nil
	}
	return importer.ImportFile(f, filepath.Base(path))
}

func convert(w io.Writer, doc portabletext.Document, o options) error {
	switch o.format {
	case "json":
		return portabletext.Encode(w, doc)
	case "toc":
		for _, h := range toc.ExtractHeadings(doc) {
			indent := ""
			if h.Level == portabletext.StyleH3 {
				indent = "  "
			}
			fmt.Fprintf(w, "%s- %s (#%s)\n", indent, h.Text, h.ID)
		}
		return nil
	case "split":
		return printSplit(w, doc, questionnaire.ParseCategories(o.categories))
	}

	out, err := richtext.New(richtext.Options{
		SiteDomain: o.siteDomain,
		Highlight:  o.highlight,
	}).RenderHTML(doc)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

func printSplit(w io.Writer, doc portabletext.Document, categories []string) error {
	before, after := cta.Split(doc)
	name, _ := questionnaire.DisplayName(categories)
	inline := cta.Inline{URL: questionnaire.ResolveURL(categories), CategoryName: name}

	_, err := fmt.Fprintf(w, "split_index: %d\nbefore: %d blocks\nafter: %d blocks\ncta_title: %s\ncta_url: %s\n",
		cta.SplitIndex(doc), len(before), len(after), inline.Title(), inline.URL)
	return err
}
