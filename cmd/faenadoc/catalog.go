package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"faenadoc/internal/faena"
	"faenadoc/internal/model"
)

// client command
var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Manage clients (mandantes)",
}

var clientAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Register a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ClientAdd")
		if err != nil {
			return err
		}
		defer a.Close()

		c, err := a.Service().Store().CreateClient(args[0])
		if err != nil {
			return fmt.Errorf("creating client: %w", err)
		}
		if err := a.Snapshot("cliente"); err != nil {
			fmt.Fprintf(os.Stderr, "warning: auto backup failed: %v\n", err)
		}

		fmt.Printf("Client #%d: %s\n", c.ID, c.Name)
		return nil
	},
}

var clientListCmd = &cobra.Command{
	Use:   "list",
	Short: "List clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ClientList")
		if err != nil {
			return err
		}
		defer a.Close()

		clients, err := a.Service().Store().ListClients()
		if err != nil {
			return err
		}
		if len(clients) == 0 {
			fmt.Println("No clients registered.")
			return nil
		}
		for _, c := range clients {
			fmt.Printf("#%d  %s\n", c.ID, c.Name)
		}
		return nil
	},
}

// contract command
var contractCmd = &cobra.Command{
	Use:   "contract",
	Short: "Manage site contracts",
}

var contractAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a contract for a client",
	RunE: func(cmd *cobra.Command, args []string) error {
		clientID, _ := cmd.Flags().GetInt64("client")
		name, _ := cmd.Flags().GetString("name")
		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")
		file, _ := cmd.Flags().GetString("file")

		if clientID == 0 || name == "" {
			return fmt.Errorf("--client and --name are required")
		}

		a, err := newApp("ContractAdd")
		if err != nil {
			return err
		}
		defer a.Close()

		c, err := a.Service().Store().CreateContract(&model.SiteContract{
			ClientID:  clientID,
			Name:      name,
			StartDate: start,
			EndDate:   end,
			CreatedAt: nowISO(),
		})
		if err != nil {
			return fmt.Errorf("creating contract: %w", err)
		}

		if file != "" {
			dest, err := a.StoreUpload(file, fmt.Sprintf("contratos/contrato_%d", c.ID))
			if err != nil {
				return fmt.Errorf("storing contract file: %w", err)
			}
			data, err := os.ReadFile(dest)
			if err != nil {
				return fmt.Errorf("reading contract file: %w", err)
			}
			if err := a.Service().Store().AttachContractFile(c.ID, dest, faena.HashBytes(data), nowISO()); err != nil {
				return fmt.Errorf("attaching contract file: %w", err)
			}
		}

		if err := a.Snapshot("contrato"); err != nil {
			fmt.Fprintf(os.Stderr, "warning: auto backup failed: %v\n", err)
		}

		fmt.Printf("Contract #%d: %s\n", c.ID, c.Name)
		return nil
	},
}

// site command
var siteCmd = &cobra.Command{
	Use:   "site",
	Short: "Manage sites (faenas)",
}

var siteAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a site",
	RunE: func(cmd *cobra.Command, args []string) error {
		clientID, _ := cmd.Flags().GetInt64("client")
		contractID, _ := cmd.Flags().GetInt64("contract")
		name, _ := cmd.Flags().GetString("name")
		location, _ := cmd.Flags().GetString("location")
		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")
		finished, _ := cmd.Flags().GetBool("finished")

		if clientID == 0 || name == "" || start == "" {
			return fmt.Errorf("--client, --name and --start are required")
		}
		if !validDate(start) {
			return fmt.Errorf("invalid start date %q, expected YYYY-MM-DD", start)
		}
		if end != "" {
			if !validDate(end) {
				return fmt.Errorf("invalid end date %q, expected YYYY-MM-DD", end)
			}
			if end < start {
				return fmt.Errorf("end date %s precedes start date %s", end, start)
			}
		}
		status := model.SiteActive
		if finished {
			if end == "" {
				return fmt.Errorf("a finished site requires --end")
			}
			status = model.SiteFinished
		}

		a, err := newApp("SiteAdd")
		if err != nil {
			return err
		}
		defer a.Close()

		site, err := a.Service().Store().CreateSite(&model.Site{
			ClientID:   clientID,
			ContractID: contractID,
			Name:       name,
			Location:   location,
			StartDate:  start,
			EndDate:    end,
			Status:     status,
		})
		if err != nil {
			return fmt.Errorf("creating site: %w", err)
		}
		if err := a.Snapshot("faena"); err != nil {
			fmt.Fprintf(os.Stderr, "warning: auto backup failed: %v\n", err)
		}

		fmt.Printf("Site #%d: %s (%s)\n", site.ID, site.Name, site.Status)
		return nil
	},
}

var siteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sites, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SiteList")
		if err != nil {
			return err
		}
		defer a.Close()

		sites, err := a.Service().Store().ListSites()
		if err != nil {
			return err
		}
		if len(sites) == 0 {
			fmt.Println("No sites registered.")
			return nil
		}
		for _, s := range sites {
			end := s.EndDate
			if end == "" {
				end = "-"
			}
			fmt.Printf("#%d  %-30s  %-9s  %s .. %s\n", s.ID, s.Name, s.Status, s.StartDate, end)
		}
		return nil
	},
}

var siteCloseCmd = &cobra.Command{
	Use:   "close SITE_ID",
	Short: "Mark a site finished",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		siteID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid site id %q", args[0])
		}
		end, _ := cmd.Flags().GetString("end")
		if end == "" || !validDate(end) {
			return fmt.Errorf("--end with a YYYY-MM-DD date is required")
		}

		a, err := newApp("SiteClose")
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
		if end < detail.StartDate {
			return fmt.Errorf("end date %s precedes start date %s", end, detail.StartDate)
		}

		if err := a.Service().Store().CloseSite(siteID, end); err != nil {
			return fmt.Errorf("closing site: %w", err)
		}
		if err := a.Snapshot("faena"); err != nil {
			fmt.Fprintf(os.Stderr, "warning: auto backup failed: %v\n", err)
		}

		fmt.Printf("Site #%d closed on %s\n", siteID, end)
		return nil
	},
}

var siteAnnexCmd = &cobra.Command{
	Use:   "annex SITE_ID",
	Short: "Attach an annex file to a site",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		siteID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid site id %q", args[0])
		}
		name, _ := cmd.Flags().GetString("name")
		file, _ := cmd.Flags().GetString("file")
		if file == "" {
			return fmt.Errorf("--file is required")
		}
		if name == "" {
			name = filepath.Base(file)
		}

		a, err := newApp("SiteAnnex")
		if err != nil {
			return err
		}
		defer a.Close()

		dest, err := a.StoreUpload(file, fmt.Sprintf("anexos/faena_%d", siteID))
		if err != nil {
			return fmt.Errorf("storing annex: %w", err)
		}
		data, err := os.ReadFile(dest)
		if err != nil {
			return fmt.Errorf("reading annex: %w", err)
		}

		annex, err := a.Service().Store().AddAnnex(&model.Annex{
			SiteID:    siteID,
			Name:      name,
			Path:      dest,
			SHA256:    faena.HashBytes(data),
			CreatedAt: nowISO(),
		})
		if err != nil {
			return fmt.Errorf("recording annex: %w", err)
		}
		if err := a.Snapshot("anexo"); err != nil {
			fmt.Fprintf(os.Stderr, "warning: auto backup failed: %v\n", err)
		}

		fmt.Printf("Annex #%d: %s\n", annex.ID, annex.Name)
		return nil
	},
}

func init() {
	clientCmd.AddCommand(clientAddCmd)
	clientCmd.AddCommand(clientListCmd)

	contractCmd.AddCommand(contractAddCmd)
	contractAddCmd.Flags().Int64("client", 0, "Client ID")
	contractAddCmd.Flags().String("name", "", "Contract name")
	contractAddCmd.Flags().String("start", "", "Start date (YYYY-MM-DD)")
	contractAddCmd.Flags().String("end", "", "End date (YYYY-MM-DD)")
	contractAddCmd.Flags().String("file", "", "Contract document to attach")

	siteCmd.AddCommand(siteAddCmd)
	siteCmd.AddCommand(siteListCmd)
	siteCmd.AddCommand(siteCloseCmd)
	siteCmd.AddCommand(siteAnnexCmd)
	siteAddCmd.Flags().Int64("client", 0, "Client ID")
	siteAddCmd.Flags().Int64("contract", 0, "Contract ID (optional)")
	siteAddCmd.Flags().String("name", "", "Site name")
	siteAddCmd.Flags().String("location", "", "Site location")
	siteAddCmd.Flags().String("start", "", "Start date (YYYY-MM-DD)")
	siteAddCmd.Flags().String("end", "", "End date (YYYY-MM-DD)")
	siteAddCmd.Flags().Bool("finished", false, "Register the site as already finished")
	siteCloseCmd.Flags().String("end", "", "End date (YYYY-MM-DD)")
	siteAnnexCmd.Flags().String("name", "", "Annex display name (defaults to file name)")
	siteAnnexCmd.Flags().String("file", "", "File to attach")
}
