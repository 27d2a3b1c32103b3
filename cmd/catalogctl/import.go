package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	models "chaincatalog/internal/domain/models/catalog"
	catalogSvc "chaincatalog/internal/domain/services/catalog"
	"chaincatalog/internal/httputil"
)

func newImportCmd(root *rootOptions) *cobra.Command {
	var (
		ids    []string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "import <archive>",
		Short: "Import templates from an archive",
		Long: `Import every template of the archive, one transaction per template.
With --dry-run the archive is imported into an empty in-memory catalog, which
validates it without touching the real storage.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			s, err := root.openSession(cmd.Context(), cmd.ErrOrStderr(), dryRun)
			if err != nil {
				return err
			}
			defer s.close()

			results, err := s.service.ImportTemplates(withOperator(cmd.Context()), catalogSvc.UploadedFile{
				Filename: filepath.Base(args[0]),
				Content:  f,
			}, httputil.ParseIDList(ids))
			if err != nil {
				return err
			}

			if err := printResults(cmd.OutOrStdout(), results); err != nil {
				return err
			}
			for _, r := range results {
				if r.Status == models.ImportStatusError {
					return fmt.Errorf("%s: some templates failed to import", args[0])
				}
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&ids, "ids", nil, "only import these template ids")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate against an empty in-memory catalog")
	return cmd
}

func printResults(w io.Writer, results []models.ImportResult) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "no templates found in archive")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tMESSAGE")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Name, r.Status, r.Message)
	}
	return tw.Flush()
}
