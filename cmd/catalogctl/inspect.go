package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"chaincatalog/internal/service/exportimport"
)

func newInspectCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <archive>",
		Short: "List the templates stored in an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			layout := exportimport.TemplateLayout(root.config())
			serializer := exportimport.NewSerializer(layout)
			entries, err := serializer.Unpack(data)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tENTRY")
			for _, entry := range entries {
				_, name, _ := serializer.ReadIdentity(entry.Node)
				fmt.Fprintf(tw, "%s\t%s\t%s\n", entry.ID, name, layout.EntryPath(entry.ID))
			}
			return tw.Flush()
		},
	}
}
