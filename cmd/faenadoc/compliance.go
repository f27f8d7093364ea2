package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"faenadoc/internal/faena"
)

// pending command
var pendingCmd = &cobra.Command{
	Use:   "pending SITE_ID",
	Short: "Show missing required documents for a site",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		siteID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid site id %q", args[0])
		}

		a, err := newApp("Pending")
		if err != nil {
			return err
		}
		defer a.Close()

		detail, err := a.Service().Store().GetSiteDetail(siteID)
		if err != nil {
			return err
		}
		if detail == nil {
			return fmt.Errorf("site %d not found", siteID)
		}

		workers, err := a.Service().MissingWorkerDocuments(siteID)
		if err != nil {
			return err
		}
		company, err := a.Service().MissingCompanyDocuments(siteID)
		if err != nil {
			return err
		}

		fmt.Printf("Site #%d: %s / %s\n\n", siteID, detail.ClientName, detail.Name)
		fmt.Println("Worker documents:")
		if len(workers) == 0 {
			fmt.Println("  (no workers assigned)")
		}
		for _, w := range workers {
			if len(w.Missing) == 0 {
				fmt.Printf("  %s: OK\n", w.Label)
			} else {
				fmt.Printf("  %s: missing %s\n", w.Label, strings.Join(w.Missing, ", "))
			}
		}

		fmt.Println("\nCompany documents (per site):")
		if len(company) == 0 {
			fmt.Println("  OK")
		} else {
			fmt.Printf("  missing %s\n", strings.Join(company, ", "))
		}
		return nil
	},
}

// progress command
var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show per-site compliance coverage and semaphore",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Progress")
		if err != nil {
			return err
		}
		defer a.Close()

		rows, err := a.Service().SiteProgress()
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			fmt.Println("No sites registered.")
			return nil
		}

		fmt.Printf("%-4s %-30s %-9s %-9s %7s %7s %8s %8s\n",
			"ID", "SITE", "STATUS", "LEVEL", "WORKERS", "OK", "COVER%", "MISSING")
		for _, r := range rows {
			fmt.Printf("%-4d %-30s %-9s %-9s %7d %7d %8.1f %8d\n",
				r.SiteID, r.SiteName, r.Status, faena.Semaphore(r),
				r.Workers, r.WorkersOK, r.CoveragePct, r.MissingTotal)
		}
		return nil
	},
}
