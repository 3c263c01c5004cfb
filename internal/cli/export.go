package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	sharedQuery "github.com/davicafu/hexaspec/internal/shared/infra/platform/query"
	showDomain "github.com/davicafu/hexaspec/internal/show/domain"
	"github.com/davicafu/hexaspec/internal/show/infra/outbound/filesystem"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	queryFlags
}

// NewExportCommand crea el comando export.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <file.xlsx|file.json>",
		Short: "Write the matching shows to a workbook or JSON snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts, args[0])
		},
	}
	opts.register(cmd, false)
	return cmd
}

func runExport(cmd *cobra.Command, opts *ExportOptions, path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".xlsx" && ext != ".json" {
		return fmt.Errorf("unsupported export file %q: use .xlsx or .json", path)
	}
	queries, err := opts.queries(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	app, err := NewApp(ctx, opts.cfg, opts.log, false)
	if err != nil {
		return err
	}
	defer app.Close()

	shows, err := app.Service.SearchShows(ctx, queries, sharedQuery.OffsetPagination{}, opts.sorts())
	if err != nil {
		return err
	}

	if ext == ".json" {
		err = filesystem.NewJSONShowStorage(path).SaveAll(ctx, shows)
	} else {
		err = writeWorkbookFile(path, shows)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %d shows to %s\n", len(shows), path)
	return nil
}

func writeWorkbookFile(path string, shows []*showDomain.TvShow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := filesystem.WriteWorkbook(f, shows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
