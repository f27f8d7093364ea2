package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"faenadoc/internal/model"
)

// worker command
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Manage workers",
}

var workerAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		rut, _ := cmd.Flags().GetString("rut")
		given, _ := cmd.Flags().GetString("given")
		family, _ := cmd.Flags().GetString("family")
		job, _ := cmd.Flags().GetString("job")
		costCenter, _ := cmd.Flags().GetString("cost-center")
		email, _ := cmd.Flags().GetString("email")
		hireDate, _ := cmd.Flags().GetString("hire-date")
		medicalDue, _ := cmd.Flags().GetString("medical-due")

		if rut == "" || given == "" || family == "" {
			return fmt.Errorf("--rut, --given and --family are required")
		}
		for _, d := range []string{hireDate, medicalDue} {
			if d != "" && !validDate(d) {
				return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", d)
			}
		}

		a, err := newApp("WorkerAdd")
		if err != nil {
			return err
		}
		defer a.Close()

		existing, err := a.Service().Store().FindWorkerByRUT(rut)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("worker with RUT %s already exists (#%d)", rut, existing.ID)
		}

		w, err := a.Service().Store().CreateWorker(&model.Worker{
			RUT:            rut,
			GivenNames:     given,
			FamilyNames:    family,
			JobTitle:       job,
			CostCenter:     costCenter,
			Email:          email,
			HireDate:       hireDate,
			MedicalExamDue: medicalDue,
		})
		if err != nil {
			return fmt.Errorf("creating worker: %w", err)
		}
		if err := a.Snapshot("trabajador"); err != nil {
			fmt.Fprintf(os.Stderr, "warning: auto backup failed: %v\n", err)
		}

		fmt.Printf("Worker #%d: %s %s (%s)\n", w.ID, w.FamilyNames, w.GivenNames, w.RUT)
		return nil
	},
}

var workerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("WorkerList")
		if err != nil {
			return err
		}
		defer a.Close()

		workers, err := a.Service().Store().ListWorkers()
		if err != nil {
			return err
		}
		if len(workers) == 0 {
			fmt.Println("No workers registered.")
			return nil
		}
		for _, w := range workers {
			fmt.Printf("#%d  %-12s  %s %s\n", w.ID, w.RUT, w.FamilyNames, w.GivenNames)
		}
		return nil
	},
}

var workerExpiringCmd = &cobra.Command{
	Use:   "expiring",
	Short: "List workers whose medical exam expires soon",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")

		a, err := newApp("WorkerExpiring")
		if err != nil {
			return err
		}
		defer a.Close()

		workers, err := a.Service().ExpiringMedicalExams(days)
		if err != nil {
			return err
		}
		if len(workers) == 0 {
			fmt.Printf("No medical exams expiring within %d days.\n", days)
			return nil
		}
		for _, w := range workers {
			fmt.Printf("#%d  %-12s  %s %s  due %s\n", w.ID, w.RUT, w.FamilyNames, w.GivenNames, w.MedicalExamDue)
		}
		return nil
	},
}

// assign command
var assignCmd = &cobra.Command{
	Use:   "assign SITE_ID RUT",
	Short: "Assign a worker to a site",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		siteID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid site id %q", args[0])
		}
		job, _ := cmd.Flags().GetString("job")
		entry, _ := cmd.Flags().GetString("entry")
		if entry != "" && !validDate(entry) {
			return fmt.Errorf("invalid entry date %q, expected YYYY-MM-DD", entry)
		}

		a, err := newApp("Assign")
		if err != nil {
			return err
		}
		defer a.Close()

		w, err := a.Service().Store().FindWorkerByRUT(args[1])
		if err != nil {
			return err
		}
		if w == nil {
			return fmt.Errorf("no worker with RUT %s", args[1])
		}

		_, err = a.Service().Store().CreateAssignment(&model.Assignment{
			SiteID:    siteID,
			WorkerID:  w.ID,
			JobTitle:  job,
			EntryDate: entry,
			Status:    model.AssignmentActive,
		})
		if err != nil {
			return fmt.Errorf("creating assignment: %w", err)
		}
		if err := a.Snapshot("asignacion"); err != nil {
			fmt.Fprintf(os.Stderr, "warning: auto backup failed: %v\n", err)
		}

		fmt.Printf("Assigned %s %s to site #%d\n", w.FamilyNames, w.GivenNames, siteID)
		return nil
	},
}

func init() {
	workerCmd.AddCommand(workerAddCmd)
	workerCmd.AddCommand(workerListCmd)
	workerCmd.AddCommand(workerExpiringCmd)
	workerAddCmd.Flags().String("rut", "", "Worker RUT")
	workerAddCmd.Flags().String("given", "", "Given names")
	workerAddCmd.Flags().String("family", "", "Family names")
	workerAddCmd.Flags().String("job", "", "Job title")
	workerAddCmd.Flags().String("cost-center", "", "Cost center")
	workerAddCmd.Flags().String("email", "", "Email")
	workerAddCmd.Flags().String("hire-date", "", "Hire date (YYYY-MM-DD)")
	workerAddCmd.Flags().String("medical-due", "", "Medical exam expiry (YYYY-MM-DD)")
	workerExpiringCmd.Flags().IntP("days", "d", 30, "Expiry window in days")

	assignCmd.Flags().String("job", "", "Site-specific job title")
	assignCmd.Flags().String("entry", "", "Entry date (YYYY-MM-DD)")
}
