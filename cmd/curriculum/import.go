package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yungbote/curriculum-backend/internal/app"
	"github.com/yungbote/curriculum-backend/internal/domain/curriculum"
	"github.com/yungbote/curriculum-backend/internal/services"
)

type importOptions struct {
	mode      string
	chunkSize int
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a csv, xlsx or xls file into the outcome store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cmd.Context(), app.WithoutHTTP(), app.WithConfig(func(cfg *app.Config) {
				if opts.chunkSize > 0 {
					cfg.ImportChunkSize = opts.chunkSize
				}
			}))
			if err != nil {
				return err
			}
			defer a.Close()
			return runImport(cmd, a.Services.Import, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.mode, "mode", "", "Acceptance mode: lenient or strict (default depends on file type)")
	cmd.Flags().IntVar(&opts.chunkSize, "chunk-size", 0, "Rows per bulk insert (default IMPORT_CHUNK_SIZE)")
	return cmd
}

type importOutput struct {
	Success       bool   `json:"success"`
	ImportedCount int    `json:"imported_count"`
	FileName      string `json:"file_name"`
	FileType      string `json:"file_type,omitempty"`
	ImportID      string `json:"import_id,omitempty"`
	RejectedCount int    `json:"rejected_count"`
	Error         string `json:"error,omitempty"`
	ImportedSoFar *int   `json:"imported_so_far,omitempty"`
	BatchNumber   *int   `json:"batch_number,omitempty"`
}

// runImport prints the import result as JSON. The error is returned after
// printing so the exit status reflects a failed import.
func runImport(cmd *cobra.Command, svc services.ImportService, path string, opts importOptions) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	name := filepath.Base(path)
	res, err := svc.Import(cmd.Context(), services.ImportInput{
		FileName: name,
		Data:     data,
		Mode:     opts.mode,
	})

	out := importOutput{FileName: name}
	if res != nil {
		out.ImportedCount = res.ImportedCount
		out.FileType = string(res.FileType)
		out.ImportID = res.ImportID.String()
		out.RejectedCount = res.Rejected
	}
	if err != nil {
		out.Error = err.Error()
		var pe *curriculum.PersistenceError
		if errors.As(err, &pe) {
			out.ImportedSoFar, out.BatchNumber = &pe.Committed, &pe.Chunk
		}
	} else {
		out.Success = true
	}
	if werr := writeJSON(cmd.OutOrStdout(), out); werr != nil {
		return werr
	}
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
