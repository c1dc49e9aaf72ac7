package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sngm3741/diagnostic-services/api/internal/catalog"
	"github.com/sngm3741/diagnostic-services/api/internal/diagnostic/domain"
)

func addCatalogDirFlag(cmd *cobra.Command, dir *string) {
	cmd.Flags().StringVar(dir, "catalog-dir", os.Getenv("CATALOG_DIR"), "Directory of *.yaml catalogs overriding the built-ins")
}

func newCatalogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalogs",
		Short: "Inspect questionnaire catalogs",
	}
	cmd.AddCommand(newCatalogsListCmd(), newCatalogsShowCmd())
	return cmd
}

func newCatalogsListCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available catalogs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := catalog.Load(dir)
			if err != nil {
				return err
			}
			return writeCatalogTable(cmd.OutOrStdout(), store.All())
		},
	}
	addCatalogDirFlag(cmd, &dir)
	return cmd
}

func newCatalogsShowCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "show <key>",
		Short: "Print a catalog as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := catalog.Load(dir)
			if err != nil {
				return err
			}
			c, err := store.FindByKey(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(catalog.FromDomain(*c)); err != nil {
				return fmt.Errorf("encode catalog: %w", err)
			}
			return enc.Close()
		},
	}
	addCatalogDirFlag(cmd, &dir)
	return cmd
}

func writeCatalogTable(w io.Writer, catalogs []domain.Catalog) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tMODE\tQUESTIONS\tMAX\tTITLE")
	for _, c := range catalogs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", c.Key, c.AnswerMode, len(c.Questions), c.MaxScore(), c.Title)
	}
	return tw.Flush()
}
