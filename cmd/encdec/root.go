package main

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oy3o/encdec"
	"github.com/oy3o/encdec/internal/frames"
)

var errNoInput = errors.New("no YAML documents in input")

// app is the state shared by the subcommands once flags are parsed.
type app struct {
	cfg      Config
	log      *slog.Logger
	registry *frames.Registry
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: DefaultConfig(), registry: frames.Default}

	var (
		configPath string
		output     string
		logLevel   string
	)
	root := &cobra.Command{
		Use:   "encdec",
		Short: "Encode and decode device telemetry frames",
		Long: `Convert telemetry records between YAML and their little-endian wire form.

Examples:
  encdec list
  echo 'channel: 2
value: -40' | encdec encode reading
  encdec decode reading 02d8ffffff`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				cfg, err := loadConfig(configPath, a.cfg)
				if err != nil {
					return err
				}
				a.cfg = cfg
			}
			if cmd.Flags().Changed("output") {
				a.cfg.Output = output
			}
			if cmd.Flags().Changed("log-level") {
				level, err := parseLevel(logLevel)
				if err != nil {
					return err
				}
				a.cfg.LogLevel = level
			}
			if err := a.cfg.validate(); err != nil {
				return err
			}

			a.log = newLogger(a.cfg, cmd.ErrOrStderr())
			encdec.SetLogger(a.log)
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")
	root.PersistentFlags().StringVarP(&output, "output", "o", "hex", "form of the binary side (hex or raw)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(a.listCmd(), a.encodeCmd(), a.decodeCmd())
	return root
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the known records and their field strategies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, name := range a.registry.Names() {
				e, _ := a.registry.Lookup(name)
				fields := make([]string, len(e.Fields))
				for i, f := range e.Fields {
					fields[i] = f.Name + ":" + f.Strategy.String()
				}
				fmt.Fprintf(w, "%-20s %s\n", name, strings.Join(fields, " "))
			}
			return nil
		},
	}
}

func (a *app) encodeCmd() *cobra.Command {
	var (
		file   string
		framed bool
	)
	cmd := &cobra.Command{
		Use:   "encode <record>",
		Short: "Encode YAML records read from a file or stdin",
		Long: `Encode YAML records read from a file or stdin.

With --frames, every YAML document (separated by ---) is written as one frame
prefixed by its u16 length.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.lookup(args[0])
			if err != nil {
				return err
			}
			in, err := readInput(cmd, file)
			if err != nil {
				return err
			}

			docs := [][]byte{in}
			if framed {
				if docs = splitDocuments(in); len(docs) == 0 {
					return errNoInput
				}
			}
			var out bytes.Buffer
			fw, err := encdec.NewFrameWriterSize[uint16, []byte](&out, a.cfg.BufferSize, encdec.Uint16, encdec.Bytes)
			if err != nil {
				return err
			}
			for i, doc := range docs {
				data, err := e.Encode(doc)
				if err != nil {
					return fmt.Errorf("document %d: %w", i, err)
				}
				a.log.Debug("record encoded", "record", e.Name, "bytes", len(data))
				if !framed {
					out.Write(data)
					break
				}
				if err := fw.Write(data); err != nil {
					return fmt.Errorf("document %d: %w", i, err)
				}
			}
			if err := fw.Flush(); err != nil {
				return err
			}
			return a.writeBinary(cmd.OutOrStdout(), out.Bytes())
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "input file, - for stdin")
	cmd.Flags().BoolVar(&framed, "frames", false, "encode a stream of length-prefixed frames")
	return cmd
}

func (a *app) decodeCmd() *cobra.Command {
	var (
		file   string
		framed bool
	)
	cmd := &cobra.Command{
		Use:   "decode <record> [data]",
		Short: "Decode a record and print it as YAML",
		Long: `Decode a record and print it as YAML.

The encoded data is taken from the argument, a file or stdin, as hex text
unless the output form is raw. With --frames, the data is a stream of
frames prefixed by their u16 length and every frame is printed as a separate
YAML document.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.lookup(args[0])
			if err != nil {
				return err
			}
			var in []byte
			if len(args) == 2 {
				in = []byte(args[1])
			} else if in, err = readInput(cmd, file); err != nil {
				return err
			}
			data, err := a.readBinary(in)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if !framed {
				doc, err := e.Decode(data)
				if err != nil {
					return err
				}
				_, err = w.Write(doc)
				return err
			}

			fr, err := encdec.NewFrameReaderSize[uint16, []byte](bytes.NewReader(data), a.cfg.BufferSize, encdec.Uint16, encdec.Bytes)
			if err != nil {
				return err
			}
			fr.WithMaxFrame(a.cfg.MaxFrame)
			i := 0
			for body, err := range fr.All() {
				if err != nil {
					return fmt.Errorf("frame %d: %w", i, err)
				}
				doc, err := e.Decode(body)
				if err != nil {
					return fmt.Errorf("frame %d: %w", i, err)
				}
				if i > 0 {
					fmt.Fprintln(w, "---")
				}
				if _, err := w.Write(doc); err != nil {
					return err
				}
				i++
			}
			a.log.Debug("frames decoded", "record", e.Name, "frames", i, "bytes", fr.Count())
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "input file, - for stdin")
	cmd.Flags().BoolVar(&framed, "frames", false, "decode a stream of length-prefixed frames")
	return cmd
}

func (a *app) lookup(name string) (*frames.Entry, error) {
	e, ok := a.registry.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown record %q (see encdec list)", name)
	}
	return e, nil
}

func (a *app) writeBinary(w io.Writer, data []byte) error {
	if a.cfg.Output == "raw" {
		_, err := w.Write(data)
		return err
	}
	_, err := fmt.Fprintln(w, hex.EncodeToString(data))
	return err
}

func (a *app) readBinary(in []byte) ([]byte, error) {
	if a.cfg.Output == "raw" {
		return in, nil
	}
	text := strings.Join(strings.Fields(string(in)), "")
	data, err := hex.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("parse hex input: %w", err)
	}
	return data, nil
}

func readInput(cmd *cobra.Command, file string) ([]byte, error) {
	if file == "" || file == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

// splitDocuments splits a YAML stream on document separators.
func splitDocuments(in []byte) [][]byte {
	var docs [][]byte
	for _, part := range bytes.Split(in, []byte("\n---")) {
		part = bytes.TrimPrefix(bytes.TrimSpace(part), []byte("---"))
		if len(bytes.TrimSpace(part)) > 0 {
			docs = append(docs, part)
		}
	}
	return docs
}
