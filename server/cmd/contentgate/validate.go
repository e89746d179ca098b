package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"contentgate/server/internal/domain"
	"contentgate/server/internal/model"
)

// fileReport 是 CLI 输出的一行。
type fileReport struct {
	File   string                 `json:"file"`
	Report model.ValidationReport `json:"report"`
}

func newValidateCmd(a *app) *cobra.Command {
	var pretty bool
	cmd := &cobra.Command{
		Use:   "validate [file|dir|-]...",
		Short: "Validate content documents and print one JSON report per file",
		Long: `Validates each file (or every .json file in a directory) and prints
one JSON line {"file": ..., "report": ...} per document. Use "-" to read stdin.

Exits with status 1 when any document is invalid.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandInputs(args)
			if err != nil {
				return err
			}
			docs := make([][]byte, len(files))
			for i, f := range files {
				if docs[i], err = a.readInput(cmd.InOrStdin(), f); err != nil {
					return err
				}
			}

			v := a.newValidator()
			reports, err := v.ValidateBatch(cmd.Context(), docs, a.cfg.Validation.BatchConcurrency)
			if err != nil {
				return err
			}

			invalid := 0
			for i, r := range reports {
				if !r.IsValid {
					invalid++
				}
				if err := writeJSON(cmd.OutOrStdout(), fileReport{File: files[i], Report: r}, pretty); err != nil {
					return err
				}
			}
			a.log.Debug("validate finished", "files", len(files), "invalid", invalid)
			if invalid > 0 {
				return errInvalidContent
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent JSON output")
	return cmd
}

// expandInputs 把目录展开为其中的内容文件，"-" 与普通文件原样保留。
func expandInputs(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		if arg == "-" {
			out = append(out, arg)
			continue
		}
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			out = append(out, arg)
			continue
		}
		files, err := domain.ListContentFiles(arg)
		if err != nil {
			return nil, err
		}
		out = append(out, files...)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no content files found")
	}
	return out, nil
}

func (a *app) readInput(stdin io.Reader, path string) ([]byte, error) {
	limit := a.cfg.Intake.MaxBodyBytes
	if path == "-" {
		r := stdin
		if limit > 0 {
			r = io.LimitReader(stdin, limit+1)
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		if limit > 0 && int64(len(data)) > limit {
			return nil, fmt.Errorf("stdin exceeds %d bytes", limit)
		}
		return data, nil
	}
	return domain.LoadContentFile(path, limit)
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
