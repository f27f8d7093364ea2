package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"faenadoc/internal/faena"
	"faenadoc/internal/model"
)

// doc command
var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Upload compliance documents",
}

var docWorkerCmd = &cobra.Command{
	Use:   "worker RUT",
	Short: "Upload a worker document",
	Long: "Upload a worker document. Required types for coverage:\n  " +
		strings.Join(model.RequiredWorkerDocTypes, ", "),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		docType, _ := cmd.Flags().GetString("type")
		file, _ := cmd.Flags().GetString("file")
		if docType == "" || file == "" {
			return fmt.Errorf("--type and --file are required")
		}

		a, err := newApp("DocWorker")
		if err != nil {
			return err
		}
		defer a.Close()

		w, err := a.Service().Store().FindWorkerByRUT(args[0])
		if err != nil {
			return err
		}
		if w == nil {
			return fmt.Errorf("no worker with RUT %s", args[0])
		}

		dest, err := a.StoreUpload(file, fmt.Sprintf("docs/trabajadores/%s", faena.SanitizeSegment(w.RUT)))
		if err != nil {
			return fmt.Errorf("storing document: %w", err)
		}
		data, err := os.ReadFile(dest)
		if err != nil {
			return fmt.Errorf("reading document: %w", err)
		}

		d, err := a.Service().Store().AddWorkerDocument(&model.WorkerDocument{
			WorkerID:  w.ID,
			DocType:   docType,
			FileName:  filepath.Base(dest),
			Path:      dest,
			SHA256:    faena.HashBytes(data),
			CreatedAt: nowISO(),
		})
		if err != nil {
			return fmt.Errorf("recording document: %w", err)
		}
		if err := a.Snapshot("documento"); err != nil {
			fmt.Fprintf(os.Stderr, "warning: auto backup failed: %v\n", err)
		}

		fmt.Printf("Document #%d: %s for %s %s\n", d.ID, d.DocType, w.FamilyNames, w.GivenNames)
		return nil
	},
}

var docCompanyCmd = &cobra.Command{
	Use:   "company",
	Short: "Upload a global company document",
	Long: "Upload a company document that applies to every site. Suggested types:\n  " +
		strings.Join(model.SuggestedCompanyDocTypes, ", "),
	RunE: func(cmd *cobra.Command, args []string) error {
		return addCompanyDoc(cmd, 0, "docs/empresa", "DocCompany")
	},
}

var docSiteCompanyCmd = &cobra.Command{
	Use:   "site-company SITE_ID",
	Short: "Upload a per-site company document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		siteID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid site id %q", args[0])
		}
		return addCompanyDoc(cmd, siteID, fmt.Sprintf("docs/empresa_faena/faena_%d", siteID), "DocSiteCompany")
	},
}

// addCompanyDoc stores the upload and records a company document; siteID 0
// means global.
func addCompanyDoc(cmd *cobra.Command, siteID int64, relDir, operation string) error {
	docType, _ := cmd.Flags().GetString("type")
	file, _ := cmd.Flags().GetString("file")
	if docType == "" || file == "" {
		return fmt.Errorf("--type and --file are required")
	}

	a, err := newApp(operation)
	if err != nil {
		return err
	}
	defer a.Close()

	if siteID != 0 {
		detail, err := a.Service().Store().GetSiteDetail(siteID)
		if err != nil {
			return err
		}
		if detail == nil {
			return fmt.Errorf("site %d not found", siteID)
		}
	}

	dest, err := a.StoreUpload(file, relDir)
	if err != nil {
		return fmt.Errorf("storing document: %w", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		return fmt.Errorf("reading document: %w", err)
	}

	d, err := a.Service().Store().AddCompanyDocument(&model.CompanyDocument{
		SiteID:    siteID,
		DocType:   docType,
		FileName:  filepath.Base(dest),
		Path:      dest,
		SHA256:    faena.HashBytes(data),
		CreatedAt: nowISO(),
	})
	if err != nil {
		return fmt.Errorf("recording document: %w", err)
	}
	if err := a.Snapshot("documento"); err != nil {
		fmt.Fprintf(os.Stderr, "warning: auto backup failed: %v\n", err)
	}

	scope := "global"
	if siteID != 0 {
		scope = fmt.Sprintf("site #%d", siteID)
	}
	fmt.Printf("Company document #%d: %s (%s)\n", d.ID, d.DocType, scope)
	return nil
}

func init() {
	docCmd.AddCommand(docWorkerCmd)
	docCmd.AddCommand(docCompanyCmd)
	docCmd.AddCommand(docSiteCompanyCmd)
	for _, c := range []*cobra.Command{docWorkerCmd, docCompanyCmd, docSiteCompanyCmd} {
		c.Flags().String("type", "", "Document type")
		c.Flags().String("file", "", "File to upload")
	}
}
