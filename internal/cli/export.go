package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"usercontext/internal/codec"
	"usercontext/internal/domain"
	"usercontext/internal/service"
)

func (a *app) exportCmd() *cobra.Command {
	var (
		format  string
		include []string
		file    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a user's context",
		Long: `Export every stored entity of a user. json and yaml exports can be
imported again; csv and markdown are for reading.`,
		Example: `  usercontext export --format markdown
  usercontext export --include decisions,preferences --file prefs.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.userID()
			if err != nil {
				return err
			}
			if format == "" {
				format = formatFromExt(file, "json")
			}
			exporter, err := codec.ForFormat(format)
			if err != nil {
				return err
			}
			kinds := make([]domain.ContextKind, 0, len(include))
			for _, name := range include {
				kind, err := domain.ParseContextKind(name)
				if err != nil {
					return err
				}
				kinds = append(kinds, kind)
			}

			snap, err := a.svc.Export(cmd.Context(), user, kinds)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if file != "" {
				f, err := os.Create(file)
				if err != nil {
					return fmt.Errorf("create %s: %w", file, err)
				}
				defer f.Close()
				w = f
			}
			if err := exporter.Export(snap, w); err != nil {
				return err
			}
			if file != "" {
				a.log.Info("context exported", "user", user, "format", exporter.Format(), "file", file, "entities", snap.Count())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "format: "+enumHelp(codec.Formats())+" (default: from --file extension, else json)")
	cmd.Flags().StringSliceVar(&include, "include", nil, "kinds to export (default all)")
	cmd.Flags().StringVar(&file, "file", "", "write to this file instead of stdout")
	return cmd
}

func (a *app) importCmd() *cobra.Command {
	var (
		format   string
		strategy string
		asUser   string
	)
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a json or yaml export",
		Long: `Import a snapshot written by export. With --strategy merge (the default)
entities whose id already exists are overwritten; with skip they are left
alone. --as-user moves every imported entity to another user.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if format == "" {
				format = formatFromExt(path, "json")
			}
			importer, err := codec.ImporterFor(format)
			if err != nil {
				return err
			}

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open %s: %w", path, err)
			}
			defer f.Close()

			snap, err := importer.Parse(f)
			if err != nil {
				return fmt.Errorf("parse %s: %w", path, err)
			}
			res, err := a.svc.Import(cmd.Context(), snap, strategy, asUser)
			if err != nil {
				return err
			}

			if a.output == OutputJSON {
				return a.render.JSON(res)
			}
			cmd.Printf("Imported %s: %d created, %d updated, %d skipped (%s)\n",
				filepath.Base(path), res.Created, res.Updated, res.Skipped, res.Strategy)
			if res.Conflicts > 0 {
				cmd.Printf("%d owned by another user and left unchanged\n", res.Conflicts)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "json or yaml (default: from the file extension)")
	cmd.Flags().StringVar(&strategy, "strategy", service.ImportMerge, "merge or skip existing entities")
	cmd.Flags().StringVar(&asUser, "as-user", "", "assign imported entities to this user")
	return cmd
}

// formatFromExt guesses a codec name from a file extension
func formatFromExt(path, fallback string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".csv":
		return "csv"
	case ".md", ".markdown":
		return "markdown"
	case ".json":
		return "json"
	default:
		return fallback
	}
}
