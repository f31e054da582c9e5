package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/atinylittleshell/clinicdesk/internal/catalog"
	"github.com/atinylittleshell/clinicdesk/internal/intake"
	"github.com/atinylittleshell/clinicdesk/internal/registry"
	"github.com/atotto/clipboard"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

const defaultListLimit = 20

func newIntakeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "intake",
		Short: "Register patients with the interactive intake form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runIntake(cmd)
		},
	}
}

func (a *app) runIntake(cmd *cobra.Command) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return ErrNotATerminal
	}

	cat, err := catalog.Load(a.cfg.CatalogFile)
	if err != nil {
		a.logger.Warn("falling back to built-in catalog", zap.Error(err))
		cat = catalog.Default()
	}

	options := intake.NewOptions()
	options.MaxItems = a.cfg.MaxItems
	options.MaxHeight = a.cfg.MaxHeight
	options.RecentLimit = a.cfg.RecentLimit

	saved, err := intake.Run(cmd.Context(), a.registry, cat, a.logger, options)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s registered this session.\n", pluralize(saved, "patient"))
	return nil
}

func newPatientsCommand(a *app) *cobra.Command {
	patients := &cobra.Command{
		Use:   "patients",
		Short: "Inspect and manage patient records",
	}

	var listLimit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List the most recently registered patients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			found, err := a.registry.GetRecentPatients(listLimit)
			if err != nil {
				return err
			}
			printPatients(cmd.OutOrStdout(), found, time.Now())
			return nil
		},
	}
	list.Flags().IntVarP(&listLimit, "limit", "n", defaultListLimit, "maximum number of patients to show")

	var findLimit int
	var copyID bool
	find := &cobra.Command{
		Use:   "find QUERY",
		Short: "Fuzzy search patients by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := a.registry.FindPatients(args[0], findLimit)
			if err != nil {
				return err
			}
			printPatients(cmd.OutOrStdout(), found, time.Now())

			if copyID && len(found) > 0 {
				if err := clipboard.WriteAll(found[0].PublicID); err != nil {
					return fmt.Errorf("copy patient id: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Copied %s to the clipboard.\n", found[0].PublicID)
			}
			return nil
		},
	}
	find.Flags().IntVarP(&findLimit, "limit", "n", defaultListLimit, "maximum number of matches to show")
	find.Flags().BoolVar(&copyID, "copy", false, "copy the best match's ID to the clipboard")

	remove := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a patient record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.registry.DeletePatient(args[0]); err != nil {
				return err
			}
			a.logger.Info("patient deleted", zap.String("publicId", args[0]))
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.\n", args[0])
			return nil
		},
	}

	var visitAt string
	visit := &cobra.Command{
		Use:   "visit ID",
		Short: "Record a visit for a patient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			at := time.Now()
			if visitAt != "" {
				parsed, err := time.Parse(time.RFC3339, visitAt)
				if err != nil {
					return fmt.Errorf("invalid --at time %q: %w", visitAt, err)
				}
				at = parsed
			}

			patient, err := a.registry.RecordVisit(args[0], at)
			if err != nil {
				return err
			}
			a.logger.Info("visit recorded", zap.String("publicId", patient.PublicID), zap.Time("at", patient.LastVisit))
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded visit for %s.\n", patient.FullName)
			return nil
		},
	}
	visit.Flags().StringVar(&visitAt, "at", "", "visit time in RFC 3339 format (default now)")

	patients.AddCommand(list, find, visit, remove)
	return patients
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), BUILD_VERSION)
		},
	}
}

var patientColumns = []struct {
	title string
	width int
}{
	{"ID", 36},
	{"NAME", 24},
	{"PRACTITIONER", 20},
	{"DIAGNOSIS", 24},
	{"LAST VISIT", 0},
}

func printPatients(w io.Writer, patients []registry.Patient, now time.Time) {
	if len(patients) == 0 {
		fmt.Fprintln(w, "No patients found.")
		return
	}

	header := make([]string, len(patientColumns))
	for i, c := range patientColumns {
		header[i] = c.title
	}
	printRow(w, header)

	for _, p := range patients {
		printRow(w, []string{
			p.PublicID,
			p.FullName,
			p.Practitioner,
			p.Diagnosis,
			humanize.RelTime(p.LastVisit, now, "ago", "from now"),
		})
	}
}

func printRow(w io.Writer, cells []string) {
	for i, cell := range cells {
		width := patientColumns[i].width
		if width == 0 {
			fmt.Fprintln(w, cell)
			continue
		}
		cell = runewidth.Truncate(cell, width, "…")
		fmt.Fprint(w, runewidth.FillRight(cell, width), "  ")
	}
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%s %ss", humanize.Comma(int64(n)), noun)
}
