// Command dsrnav opens a DICOM SR document and walks its content tree
// interactively.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/chzyer/readline"
	"golang.org/x/term"

	"github.com/caio-sobreiro/dicomsr/config"
	"github.com/caio-sobreiro/dicomsr/dicom"
	"github.com/caio-sobreiro/dicomsr/sr"
)

func main() {
	cfg := config.Load()
	readFlags := flag.String("read", cfg.ReadFlagNames, "Comma separated read flags")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: dsrnav [flags] file")
		os.Exit(2)
	}
	flags, err := config.ParseReadFlags(*readFlags)
	if err != nil {
		logger.Error("Invalid read flags", "error", err)
		os.Exit(2)
	}

	ds, _, err := dicom.LoadFile(flag.Arg(0))
	if err != nil {
		logger.Error("Failed to load DICOM file", "error", err, "file", flag.Arg(0))
		os.Exit(1)
	}
	doc, diags, err := sr.ReadDocument(ds, flags, sr.WithLogger(logger))
	if err != nil {
		logger.Error("Failed to read SR document", "error", err, "file", flag.Arg(0))
		os.Exit(1)
	}

	printFlags := sr.PrintItemPosition | sr.PrintShortenLongItemValues
	if cfg.Color == "always" || (cfg.Color == "auto" && term.IsTerminal(int(os.Stdout.Fd()))) {
		printFlags |= sr.PrintUseANSIEscapeCodes
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "dsr> ",
		HistoryFile:     cfg.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		logger.Error("Failed to initialize readline", "error", err)
		os.Exit(1)
	}
	defer rl.Close()

	nav := newNavigator(doc, rl.Stdout(), printFlags)
	fmt.Fprintf(rl.Stdout(), "%s: %d content items, %d warnings. Type help for commands.\n",
		doc.DocumentType(), doc.CountNodes(), diags.Count(sr.SeverityWarning))
	nav.show()

	if err := repl(rl, nav); err != nil {
		logger.Error("Session ended", "error", err)
		os.Exit(1)
	}
}

func repl(rl *readline.Instance, nav *navigator) error {
	for {
		rl.SetPrompt(nav.prompt())
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			fmt.Fprintln(rl.Stdout(), "Use 'quit' to leave.")
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := nav.execute(line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintln(rl.Stdout(), "Error:", err)
		}
	}
}
