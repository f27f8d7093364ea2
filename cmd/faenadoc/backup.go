package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"faenadoc/internal/faena"
)

// backup command
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Take database and full-system backups",
}

var backupFullCmd = &cobra.Command{
	Use:   "full OUTPUT.zip",
	Short: "Write a full snapshot (database plus uploads) to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		encrypted, _ := cmd.Flags().GetBool("encrypt")

		a, err := newApp("BackupFull")
		if err != nil {
			return err
		}
		defer a.Close()

		var data []byte
		if encrypted {
			data, err = a.Service().FullSnapshotEncrypted()
		} else {
			data, err = a.Service().FullSnapshot()
		}
		if err != nil {
			return fmt.Errorf("building snapshot: %w", err)
		}

		if err := os.WriteFile(args[0], data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", args[0], err)
		}
		fmt.Printf("Wrote %s (%d bytes, encrypted=%v)\n", args[0], len(data), encrypted)
		return nil
	},
}

var backupAutoCmd = &cobra.Command{
	Use:   "auto",
	Short: "Take a database auto-backup now",
	RunE: func(cmd *cobra.Command, args []string) error {
		tag, _ := cmd.Flags().GetString("tag")

		a, err := newApp("BackupAuto")
		if err != nil {
			return err
		}
		defer a.Close()

		rec, err := a.Service().AutoSnapshot(tag)
		if err != nil {
			return fmt.Errorf("auto backup: %w", err)
		}
		if rec == nil {
			fmt.Println("Auto backups are disabled in the config.")
			return nil
		}
		fmt.Printf("Auto backup #%d: %s (%d bytes)\n", rec.ID, rec.Path, rec.SizeBytes)
		return nil
	},
}

// restore command
var restoreCmd = &cobra.Command{
	Use:   "restore BACKUP_FILE",
	Short: "Replace all persisted state from a backup archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading backup: %w", err)
		}

		a, err := newApp("Restore")
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Service().Restore(data)
		if err != nil {
			if errors.Is(err, faena.ErrCodeBackup) {
				return fmt.Errorf("this archive holds application source code, not a data backup")
			}
			if res != nil {
				return fmt.Errorf("restore failed in state %s: %w", res.State, err)
			}
			return err
		}

		fmt.Printf("Restore complete. Database payload: %s", res.DatabaseEntry)
		if res.LegacyLocation {
			fmt.Print(" (legacy layout)")
		}
		fmt.Println()
		if res.FilesReplaced {
			fmt.Println("Upload files were replaced from the archive.")
		} else {
			fmt.Println("The archive carried no upload files; existing files kept.")
		}
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View export and backup history",
}

var historyExportsCmd = &cobra.Command{
	Use:   "exports [SITE_ID]",
	Short: "View export history (monthly when no site is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var siteID int64
		if len(args) == 1 {
			var err error
			siteID, err = strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid site id %q", args[0])
			}
		}

		a, err := newApp("HistoryExports")
		if err != nil {
			return err
		}
		defer a.Close()

		recs, err := a.Service().ExportHistory(siteID)
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Println("No exports recorded.")
			return nil
		}
		for _, r := range recs {
			key := r.YearMonth
			if r.SiteID != 0 {
				key = fmt.Sprintf("site %d", r.SiteID)
			}
			fmt.Printf("#%d  %-10s  %s  %s  %d bytes  sha256=%s\n",
				r.ID, key, r.CreatedAt, r.Path, r.SizeBytes, r.SHA256[:12])
		}
		return nil
	},
}

var historyBackupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "View auto-backup history, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("HistoryBackups")
		if err != nil {
			return err
		}
		defer a.Close()

		recs, err := a.Service().AutoBackupHistory()
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Println("No auto backups recorded.")
			return nil
		}
		for _, r := range recs {
			fmt.Printf("#%d  %-12s  %s  %s  %d bytes\n",
				r.ID, r.Tag, r.CreatedAt, r.Path, r.SizeBytes)
		}
		return nil
	},
}

func init() {
	backupCmd.AddCommand(backupFullCmd)
	backupCmd.AddCommand(backupAutoCmd)
	backupFullCmd.Flags().Bool("encrypt", false, "Encrypt the snapshot with the configured encryptor")
	backupAutoCmd.Flags().String("tag", "manual", "Tag recorded with the backup")

	historyCmd.AddCommand(historyExportsCmd)
	historyCmd.AddCommand(historyBackupsCmd)
}
