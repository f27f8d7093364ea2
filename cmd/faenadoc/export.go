package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"faenadoc/internal/faena"
)

// export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Build and persist document archives",
}

var exportSiteCmd = &cobra.Command{
	Use:   "site SITE_ID",
	Short: "Export one site's documents as a ZIP",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		siteID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid site id %q", args[0])
		}

		opts := faena.AllArchiveOptions()
		if v, _ := cmd.Flags().GetBool("no-contract"); v {
			opts.IncludeContract = false
		}
		if v, _ := cmd.Flags().GetBool("no-annexes"); v {
			opts.IncludeAnnexes = false
		}
		if v, _ := cmd.Flags().GetBool("no-site-company"); v {
			opts.IncludeSiteCompanyDocs = false
		}
		if v, _ := cmd.Flags().GetBool("no-global-company"); v {
			opts.IncludeGlobalCompanyDocs = false
		}
		if v, _ := cmd.Flags().GetBool("no-worker-docs"); v {
			opts.IncludeWorkerDocs = false
		}
		if types, _ := cmd.Flags().GetStringSlice("worker-types"); len(types) > 0 {
			opts.WorkerTypes = types
		}
		if types, _ := cmd.Flags().GetStringSlice("site-company-types"); len(types) > 0 {
			opts.SiteCompanyTypes = types
		}
		if types, _ := cmd.Flags().GetStringSlice("global-company-types"); len(types) > 0 {
			opts.GlobalCompanyTypes = types
		}
		out, _ := cmd.Flags().GetString("out")

		a, err := newApp("ExportSite")
		if err != nil {
			return err
		}
		defer a.Close()

		zipBytes, siteName, err := a.Service().BuildSiteArchive(siteID, opts)
		if err != nil {
			return fmt.Errorf("building archive: %w", err)
		}

		rec, err := a.Service().PersistExport(siteID, zipBytes, siteName)
		if err != nil {
			return fmt.Errorf("persisting export: %w", err)
		}

		if out != "" {
			if err := os.WriteFile(out, zipBytes, 0644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			fmt.Printf("Wrote %s (%d bytes)\n", out, len(zipBytes))
		}
		fmt.Printf("Export #%d: %s sha256=%s\n", rec.ID, rec.Path, rec.SHA256[:12])
		return nil
	},
}

var exportMonthCmd = &cobra.Command{
	Use:   "month YYYY-MM",
	Short: "Export every site starting in a month as one ZIP",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := time.Parse("2006-01", args[0])
		if err != nil {
			return fmt.Errorf("invalid month %q, expected YYYY-MM", args[0])
		}
		noGlobal, _ := cmd.Flags().GetBool("no-global")
		out, _ := cmd.Flags().GetString("out")

		a, err := newApp("ExportMonth")
		if err != nil {
			return err
		}
		defer a.Close()

		zipBytes, ym, err := a.Service().BuildMonthlyArchive(t.Year(), int(t.Month()), !noGlobal)
		if err != nil {
			return fmt.Errorf("building monthly archive: %w", err)
		}

		rec, err := a.Service().PersistMonthlyExport(ym, zipBytes)
		if err != nil {
			return fmt.Errorf("persisting monthly export: %w", err)
		}

		if out != "" {
			if err := os.WriteFile(out, zipBytes, 0644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			fmt.Printf("Wrote %s (%d bytes)\n", out, len(zipBytes))
		}
		fmt.Printf("Monthly export #%d: %s sha256=%s\n", rec.ID, rec.Path, rec.SHA256[:12])
		return nil
	},
}

func init() {
	exportCmd.AddCommand(exportSiteCmd)
	exportCmd.AddCommand(exportMonthCmd)

	exportSiteCmd.Flags().Bool("no-contract", false, "Exclude the site contract")
	exportSiteCmd.Flags().Bool("no-annexes", false, "Exclude site annexes")
	exportSiteCmd.Flags().Bool("no-site-company", false, "Exclude per-site company documents")
	exportSiteCmd.Flags().Bool("no-global-company", false, "Exclude global company documents")
	exportSiteCmd.Flags().Bool("no-worker-docs", false, "Exclude worker documents")
	exportSiteCmd.Flags().StringSlice("worker-types", nil, "Restrict worker documents to these types")
	exportSiteCmd.Flags().StringSlice("site-company-types", nil, "Restrict per-site company documents to these types")
	exportSiteCmd.Flags().StringSlice("global-company-types", nil, "Restrict global company documents to these types")
	exportSiteCmd.Flags().StringP("out", "o", "", "Also write the ZIP to this path")

	exportMonthCmd.Flags().Bool("no-global", false, "Exclude global company documents")
	exportMonthCmd.Flags().StringP("out", "o", "", "Also write the ZIP to this path")
}
