package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"yieldScope/internal/model"
)

// output buffers writes to a file or to stdout.
type output struct {
	file   *os.File
	writer *bufio.Writer
}

func openOutput(path string, stdout io.Writer) (*output, error) {
	if path == "" || path == "-" {
		return &output{writer: bufio.NewWriter(stdout)}, nil
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dir: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return &output{file: file, writer: bufio.NewWriter(file)}, nil
}

func (o *output) Write(p []byte) (int, error) {
	return o.writer.Write(p)
}

func (o *output) Close() error {
	if err := o.writer.Flush(); err != nil {
		if o.file != nil {
			o.file.Close()
		}
		return err
	}
	if o.file != nil {
		return o.file.Close()
	}
	return nil
}

func writeStrategies(w io.Writer, format string, strategies []model.Strategy) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(strategies)
	case "jsonl":
		enc := json.NewEncoder(w)
		for _, s := range strategies {
			if err := enc.Encode(s); err != nil {
				return fmt.Errorf("write strategy %s: %w", s.ID, err)
			}
		}
		return nil
	default:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "RANK\tID\tNAME\tAPY\tRISK\tTVL")
		for i, s := range strategies {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", i+1, s.ID, s.Name, s.APYDisplay, s.Risk.Tier, s.TVLDisplay)
		}
		return tw.Flush()
	}
}
