// Command dsrdump prints the content tree of DICOM SR documents as indented
// text, XML or HTML. It can also check and add MAC based signatures.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/caio-sobreiro/dicomsr/config"
	"github.com/caio-sobreiro/dicomsr/dicom"
	"github.com/caio-sobreiro/dicomsr/signature"
	"github.com/caio-sobreiro/dicomsr/sr"
	"github.com/caio-sobreiro/dicomsr/types"
)

type options struct {
	format    string
	readFlags string
	color     string
	verbose   bool

	codes     bool
	templates bool
	expand    bool
	shorten   bool
	nodeIDs   bool

	xmlNamespace  bool
	xmlAttributes bool
	htmlAnnex     bool

	verifyKey string
	signKey   string
	signAlg   string
	output    string
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "dsrdump:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cfg := config.Load()

	var opts options
	fs := flag.NewFlagSet("dsrdump", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.format, "format", "text", "Output format: text, xml or html")
	fs.StringVar(&opts.readFlags, "read", cfg.ReadFlagNames, "Comma separated read flags")
	fs.StringVar(&opts.color, "color", cfg.Color, "Colour text output: auto, always or never")
	fs.BoolVar(&opts.verbose, "v", false, "Log diagnostics down to debug level")
	fs.BoolVar(&opts.codes, "codes", false, "Print concept name codes")
	fs.BoolVar(&opts.templates, "templates", false, "Print template identification")
	fs.BoolVar(&opts.expand, "expand", false, "Print the content of included templates")
	fs.BoolVar(&opts.shorten, "shorten", false, "Shorten long item values")
	fs.BoolVar(&opts.nodeIDs, "ids", false, "Print node identifiers")
	fs.BoolVar(&opts.xmlNamespace, "xml-namespace", false, "Declare the XML namespace")
	fs.BoolVar(&opts.xmlAttributes, "xml-attributes", false, "Write codes and types as XML attributes")
	fs.BoolVar(&opts.htmlAnnex, "html-annex", false, "Never render child items inline")
	fs.StringVar(&opts.verifyKey, "verify-key", "", "Verify the MAC signatures of the document with this key")
	fs.StringVar(&opts.signKey, "sign-key", "", "Sign the root content item with this key (needs -o)")
	fs.StringVar(&opts.signAlg, "sign-alg", signature.SHA256.DefinedTerm(), "MAC algorithm used by -sign-key")
	fs.StringVar(&opts.output, "o", "", "Write the (signed) document to this Part 10 file")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: dsrdump [flags] file...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("no input files")
	}

	flags, err := config.ParseReadFlags(opts.readFlags)
	if err != nil {
		return err
	}
	if opts.verifyKey != "" {
		flags |= sr.ReadDigitalSignatures
	}
	if opts.signKey != "" && opts.output == "" {
		return errors.New("-sign-key needs -o")
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	for _, path := range fs.Args() {
		if err := dump(path, flags, opts, stdout, logger); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func dump(path string, flags sr.ReadFlags, opts options, w io.Writer, logger *slog.Logger) error {
	doc, ds, meta, err := load(path, flags, logger)
	if err != nil {
		return err
	}

	if opts.verifyKey != "" {
		n, err := verify(doc, []byte(opts.verifyKey))
		if err != nil {
			return err
		}
		logger.Info("signatures verified", "file", path, "count", n)
	}
	if opts.signKey != "" {
		if err := sign(doc, ds, meta, opts); err != nil {
			return err
		}
	}

	switch opts.format {
	case "text":
		return doc.Print(w, printFlags(opts, w))
	case "xml":
		var xf sr.XMLFlags
		if opts.xmlNamespace {
			xf |= sr.XMLUseNamespace
		}
		if opts.xmlAttributes {
			xf |= sr.XMLCodeComponentsAsAttribute | sr.XMLRelationshipTypeAsAttribute | sr.XMLValueTypeAsAttribute
		}
		if opts.templates {
			xf |= sr.XMLWriteTemplateIdentification
		}
		return doc.WriteXML(w, xf)
	case "html":
		var hf sr.HTMLFlags
		if opts.codes {
			hf |= sr.HTMLRenderConceptNameCodes
		}
		if opts.htmlAnnex {
			hf |= sr.HTMLNeverExpandChildrenInline
		}
		return doc.RenderHTML(w, hf)
	}
	return fmt.Errorf("unknown format %q", opts.format)
}

// load reads a DICOM SR object, or an XML document written by -format xml
// when path ends in .xml.
func load(path string, flags sr.ReadFlags, logger *slog.Logger) (*sr.DocumentTree, *dicom.Dataset, *dicom.FileMeta, error) {
	if strings.EqualFold(filepath.Ext(path), ".xml") {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, nil, err
		}
		defer f.Close()
		doc := sr.NewDocumentTree(types.DocumentTypeComprehensive, sr.WithLogger(logger))
		if _, err := doc.ReadXMLFrom(f, xmlReadFlags(flags)); err != nil {
			return nil, nil, nil, err
		}
		return doc, nil, nil, nil
	}

	ds, meta, err := dicom.LoadFile(path)
	if err != nil {
		return nil, nil, nil, err
	}
	doc, _, err := sr.ReadDocument(ds, flags, sr.WithLogger(logger))
	if err != nil {
		return nil, nil, nil, err
	}
	return doc, ds, meta, nil
}

func xmlReadFlags(flags sr.ReadFlags) sr.XMLFlags {
	var xf sr.XMLFlags
	if flags&sr.SkipInvalidContentItems != 0 {
		xf |= sr.XMLSkipInvalidContentItems
	}
	if flags&sr.IgnoreContentItemErrors != 0 {
		xf |= sr.XMLIgnoreContentItemErrors
	}
	return xf
}

func printFlags(opts options, w io.Writer) sr.PrintFlags {
	flags := sr.PrintItemPosition
	if opts.codes {
		flags |= sr.PrintConceptNameCodes
	}
	if opts.templates {
		flags |= sr.PrintTemplateIdentification
	}
	if opts.expand {
		flags |= sr.PrintExpandIncludedTemplates
	}
	if opts.shorten {
		flags |= sr.PrintShortenLongItemValues
	}
	if opts.nodeIDs {
		flags |= sr.PrintNodeID
	}
	if useColor(opts.color, w) {
		flags |= sr.PrintUseANSIEscapeCodes
	}
	return flags
}

func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// verify checks the signatures of every content item that carries one.
func verify(doc *sr.DocumentTree, key []byte) (int, error) {
	signed := sr.FilterFunc(func(n *sr.Node) bool { return len(n.DigitalSignatures()) > 0 })
	doc.UnmarkAllContentItems()
	doc.GotoRoot()
	for id := doc.GotoMatchingNode(signed, true); id != 0; id = doc.GotoNextMatchingNode(signed, true) {
		doc.CurrentContentItem().SetMark(true)
	}
	result, err := doc.Write(dicom.NewDataset())
	if err != nil {
		return 0, err
	}
	return signature.VerifyMarked(result, key)
}

// sign adds a signature over the root content item and writes the
// document to opts.output.
func sign(doc *sr.DocumentTree, ds *dicom.Dataset, meta *dicom.FileMeta, opts options) error {
	if ds == nil {
		return errors.New("only DICOM input can be signed")
	}
	alg, err := signature.ParseAlgorithm(opts.signAlg)
	if err != nil {
		return err
	}
	doc.UnmarkAllContentItems()
	doc.GotoRoot()
	doc.CurrentContentItem().SetMark(true)

	// The signature covers the content tree only, as verify rebuilds it
	// without the other attributes of the object.
	result, err := doc.Write(dicom.NewDataset())
	if err != nil {
		return err
	}
	if _, err := signature.SignMarked(result, alg, []byte(opts.signKey)); err != nil {
		return err
	}
	out := ds.Clone()
	if _, err := doc.Write(out); err != nil {
		return err
	}

	fm := *meta
	fm.TransferSyntaxUID = dicom.TransferSyntaxExplicitVRLittleEndian
	data, err := dicom.EncodePart10(out, &fm)
	if err != nil {
		return err
	}
	return os.WriteFile(opts.output, data, 0o644)
}
