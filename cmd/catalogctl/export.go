package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"chaincatalog/internal/config"
	"chaincatalog/internal/httputil"
)

func newExportCmd(root *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export [template-id...]",
		Short: "Export templates into an archive",
		Long: `Export the given templates, or every template when no id is given.
Ids may also be passed comma separated. Unknown ids are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := root.openSession(cmd.Context(), cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer s.close()

			archive, err := s.service.ExportTemplates(withOperator(cmd.Context()), httputil.ParseIDList(args))
			if err != nil {
				return err
			}
			if archive == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to export")
				return nil
			}

			if output == "" {
				output = fmt.Sprintf("export_%s.%s", time.Now().Format("20060102-150405"), config.ArchiveExtension)
			}
			if err := os.WriteFile(output, archive, 0o644); err != nil {
				return fmt.Errorf("write archive: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", output, len(archive))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "archive path (default export_<timestamp>.zip)")
	return cmd
}
