package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sweeney/breath-pacer/internal/config"
	"github.com/sweeney/breath-pacer/internal/gpio"
	"github.com/sweeney/breath-pacer/internal/sessionlog"
)

func newButtonCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "button",
		Short: "Print the current button state and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := gpio.NewRealReader(opts.chip, opts.pinButton)
			if err != nil {
				return fmt.Errorf("init gpio: %w", err)
			}
			defer reader.Close()
			return printButton(cmd.OutOrStdout(), reader)
		},
	}
}

func printButton(w io.Writer, r gpio.Reader) error {
	pressed, err := r.Read()
	if err != nil {
		return fmt.Errorf("read gpio: %w", err)
	}
	state := "RELEASED"
	if pressed {
		state = "PRESSED"
	}
	fmt.Fprintf(w, "BUTTON: %s\n", state)
	return nil
}

// logStore is the part of the SQLite store the logs commands use.
type logStore interface {
	List(ctx context.Context, limit int) ([]sessionlog.Log, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
}

func newLogsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "List or delete stored session logs",
	}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List session logs, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLogStore(opts, func(s logStore) error {
				return listLogs(cmd.Context(), cmd.OutOrStdout(), s, limit)
			})
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show only the newest N logs (0 for all)")

	deleteCmd := &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete session logs by ID",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLogStore(opts, func(s logStore) error {
				return deleteLogs(cmd.Context(), cmd.OutOrStdout(), s, args)
			})
		},
	}

	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every session log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to delete all logs without --yes")
			}
			return withLogStore(opts, func(s logStore) error {
				n, err := s.DeleteAll(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d logs\n", n)
				return nil
			})
		},
	}
	clearCmd.Flags().BoolVar(&yes, "yes", false, "Confirm deleting all logs")

	cmd.AddCommand(listCmd, deleteCmd, clearCmd)
	return cmd
}

func withLogStore(opts *options, fn func(logStore) error) error {
	db, err := sessionlog.OpenSQLite(opts.dbPath)
	if err != nil {
		return fmt.Errorf("open session log: %w", err)
	}
	defer db.Close()
	return fn(db)
}

func listLogs(ctx context.Context, w io.Writer, s logStore, limit int) error {
	logs, err := s.List(ctx, limit)
	if err != nil {
		return err
	}
	if len(logs) == 0 {
		fmt.Fprintln(w, "no session logs")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTIME\tPATTERN\tTOTAL\tSILENT\tROUNDS\tNOTE")
	for _, l := range logs {
		note := ""
		if l.Aborted {
			note = "aborted"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%ds\t%ds\t%s\t%s\n",
			l.ID, l.Date, l.StartTime, l.PatternName, l.TotalSeconds, l.SilentSeconds, formatRounds(l.Rounds), note)
	}
	return tw.Flush()
}

// formatRounds renders Wim Hof rounds as deep/hold/recover triples.
func formatRounds(rounds []sessionlog.Round) string {
	if len(rounds) == 0 {
		return "-"
	}
	parts := make([]string, len(rounds))
	for i, r := range rounds {
		parts[i] = fmt.Sprintf("%d/%d/%d", r.DeepSeconds, r.HoldSeconds, r.RecoverSeconds)
	}
	return strings.Join(parts, " ")
}

func deleteLogs(ctx context.Context, w io.Writer, s logStore, ids []string) error {
	var errs []error
	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", id, err))
			continue
		}
		fmt.Fprintf(w, "deleted %s\n", id)
	}
	return errors.Join(errs...)
}

func newConfigCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the device config",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective (normalized) config as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := config.NewFileStore(opts.configPath)
			if err != nil {
				return err
			}
			return showConfig(cmd.OutOrStdout(), store)
		},
	})
	return cmd
}

func showConfig(w io.Writer, store config.Store) error {
	cfg, err := store.Load()
	if err != nil {
		return err
	}
	data, err := config.Marshal(config.Normalize(cfg))
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
