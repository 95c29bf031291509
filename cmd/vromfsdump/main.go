// Command vromfsdump is the CLI collaborator described by spec §6: it
// reads a .vromfs.bin container, optionally extracts its entries to
// disk, and optionally emits a JSON metadata record. It is a thin
// consumer of package vromfs, never imported by it.
package main

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/jareelskaj/vromfstools/vromfs"
)

type metadataRecord struct {
	Version  int             `json:"version"`
	Filelist []metadataEntry `json:"filelist"`
}

type metadataEntry struct {
	Filename string `json:"filename"`
	Hash     string `json:"hash"`
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fset := flag.NewFlagSet("vromfsdump", flag.ContinueOnError)
	output := fset.String("output", "", "directory to extract entries into (default: <input>_u)")
	metadata := fset.String("metadata", "", "path to write a JSON metadata record to")
	filelist := fset.String("input-filelist", "", "doublestar glob; only matching entries are extracted/listed")
	dryRun := fset.Bool("dry-run", false, "decode entries but extract nothing to disk (--metadata is still written)")
	silent := fset.Bool("silent", false, "suppress progress logging")
	fset.Bool("no-memory-check", false, "accepted for compatibility, has no effect")
	fset.Usage = func() {
		fmt.Fprintln(fset.Output(), "usage: vromfsdump [flags] <path.vromfs.bin>")
		fset.PrintDefaults()
	}
	if err := fset.Parse(args); err != nil {
		return 1
	}
	if fset.NArg() != 1 {
		fset.Usage()
		return 1
	}
	inputPath := fset.Arg(0)

	level := slog.LevelInfo
	if *silent {
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	outDir := *output
	if outDir == "" {
		outDir = inputPath + "_u"
	}

	if err := dump(inputPath, outDir, *metadata, *filelist, *dryRun, logger); err != nil {
		logger.Error("vromfsdump failed", "err", err)
		return 1
	}
	return 0
}

func dump(inputPath, outDir, metadataPath, glob string, dryRun bool, logger *slog.Logger) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputPath, err)
	}

	fsys, err := vromfs.Open(data, vromfs.DefaultOptions(), 1024)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", inputPath, err)
	}

	var filelist []metadataEntry
	err = fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if glob != "" {
			match, err := doublestar.Match(glob, name)
			if err != nil {
				return fmt.Errorf("invalid --input-filelist glob %q: %w", glob, err)
			}
			if !match {
				return nil
			}
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("decoding %s: %w", name, err)
		}

		if metadataPath != "" {
			sum := md5.Sum(content)
			filelist = append(filelist, metadataEntry{
				Filename: strings.ToLower(name),
				Hash:     hex.EncodeToString(sum[:]),
			})
		}

		if dryRun {
			logger.Info("decoded", "entry", name, "bytes", len(content))
			return nil
		}

		dest := filepath.Join(outDir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", dest, err)
		}
		if err := os.WriteFile(dest, content, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", dest, err)
		}
		logger.Info("extracted", "entry", name, "bytes", len(content))
		return nil
	})
	if err != nil {
		return err
	}

	if metadataPath != "" {
		rec := metadataRecord{Version: 1, Filelist: filelist}
		buf, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling metadata: %w", err)
		}
		if err := os.WriteFile(metadataPath, buf, 0o644); err != nil {
			return fmt.Errorf("writing metadata to %s: %w", metadataPath, err)
		}
	}

	return nil
}
