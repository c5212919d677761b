package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/pickleballplayers/court-harvester/internal/export"
	"github.com/pickleballplayers/court-harvester/internal/harvest"
	"github.com/pickleballplayers/court-harvester/internal/model"
	"github.com/pickleballplayers/court-harvester/internal/store"
)

var courtsCmd = &cobra.Command{
	Use:   "courts",
	Short: "Inspect the court directory",
}

// -- courts list --

var courtsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List courts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx, "courts")
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		courts, err := st.QueryCourts(ctx, courtsFilter(cmd))
		if err != nil {
			return eris.Wrap(err, "courts list")
		}

		if len(courts) == 0 {
			fmt.Fprintln(os.Stderr, "No courts found.")
			return nil
		}

		formatCourtsList(os.Stdout, courts)
		return nil
	},
}

// -- courts export --

var courtsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export courts to an XLSX spreadsheet",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			return eris.New("--out is required")
		}

		st, err := openStore(ctx, "courts")
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		courts, err := st.QueryCourts(ctx, courtsFilter(cmd))
		if err != nil {
			return eris.Wrap(err, "courts export")
		}

		if err := export.WriteXLSXFile(out, courts, export.XLSXOptions{}); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Exported %d courts to %s\n", len(courts), out)
		return nil
	},
}

func courtsFilter(cmd *cobra.Command) store.CourtFilter {
	generic, _ := cmd.Flags().GetBool("generic")
	active, _ := cmd.Flags().GetBool("active")
	limit, _ := cmd.Flags().GetInt("limit")

	filter := store.CourtFilter{
		ActiveOnly: active,
		OrderBy:    store.OrderByName,
		Limit:      limit,
	}
	if generic {
		filter.NamePatterns = harvest.GenericNamePatterns
	}
	return filter
}

// formatCourtsList writes a table of courts to out.
func formatCourtsList(out io.Writer, courts []model.Court) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tCITY\tLAT\tLNG\tTYPE\tCONF\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t----\t----\t---\t---\t----\t----\t-------")

	for _, c := range courts {
		name := c.Name
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%.5f\t%.5f\t%s\t%d\t%s\n",
			truncateID(c.ID),
			name,
			c.City,
			c.Latitude,
			c.Longitude,
			c.IndoorOutdoor,
			c.ConfidenceScore,
			c.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	for _, c := range []*cobra.Command{courtsListCmd, courtsExportCmd} {
		c.Flags().Bool("generic", false, "only courts with generic names awaiting refinement")
		c.Flags().Bool("active", false, "only active courts")
	}
	courtsListCmd.Flags().Int("limit", 50, "max number of courts to display")
	courtsExportCmd.Flags().Int("limit", 0, "max number of courts to export (0 = all)")
	courtsExportCmd.Flags().String("out", "courts.xlsx", "output XLSX path")

	courtsCmd.AddCommand(courtsListCmd)
	courtsCmd.AddCommand(courtsExportCmd)
	rootCmd.AddCommand(courtsCmd)
}
