package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/placementcell/portal/internal/models"
)

const maxResumeSize = 5 << 20

// NewNoticesCmd creates the notices command
func NewNoticesCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notices",
		Short: "Read the notice board",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List notices",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := connect(ctx, cmd, opts)
			if err != nil {
				return err
			}
			if err := authorize(cmd, e); err != nil {
				return err
			}

			notices, err := e.api.ListNotices(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(notices) == 0 {
				fmt.Fprintln(out, "The notice board is empty.")
				return nil
			}
			for _, n := range notices {
				fmt.Fprintf(out, "■ %s (%s)\n", n.Title, n.CreatedAt.Local().Format("2006-01-02"))
				fmt.Fprintf(out, "  %s\n", strings.TrimSpace(n.Body))
				if n.AttachedURL != "" {
					fmt.Fprintf(out, "  Attachment: %s\n", n.AttachedURL)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	})

	return cmd
}

// NewCyclesCmd creates the cycles command
func NewCyclesCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cycles",
		Short: "Browse placement cycles",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List placement cycles",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := connect(ctx, cmd, opts)
			if err != nil {
				return err
			}
			if err := authorize(cmd, e); err != nil {
				return err
			}

			cycles, err := e.api.ListPlacementCycles(ctx)
			if err != nil {
				return err
			}
			return printCycles(cmd, cycles)
		},
	})

	return cmd
}

func printCycles(cmd *cobra.Command, cycles []models.PlacementCycle) error {
	out := cmd.OutOrStdout()
	if len(cycles) == 0 {
		fmt.Fprintln(out, "No placement cycles found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tBATCH\tSTATUS\tSTART\tEND")
	fmt.Fprintln(w, "──\t────\t─────\t──────\t─────\t───")

	for _, c := range cycles {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID,
			c.Name,
			c.Batch,
			c.Status,
			formatDate(c.StartDate),
			formatDate(c.EndDate),
		)
	}

	return w.Flush()
}

// NewResumeCmd creates the resume command
func NewResumeCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Manage your resume",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "upload <file.pdf>",
		Short: "Upload your resume (PDF, up to 5 MB)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUploadResume(cmd, opts, args[0])
		},
	})

	return cmd
}

func runUploadResume(cmd *cobra.Command, opts *Options, path string) error {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return fmt.Errorf("resume must be a PDF")
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}
	if info.Size() > maxResumeSize {
		return fmt.Errorf("resume must be 5 MB or smaller")
	}

	ctx := cmd.Context()
	e, err := connect(ctx, cmd, opts)
	if err != nil {
		return err
	}
	if err := authorize(cmd, e, models.RoleStudent); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}
	defer f.Close()

	url, err := e.api.UploadResume(ctx, filepath.Base(path), f)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✓ Resume uploaded")
	fmt.Fprintf(cmd.OutOrStdout(), "  URL: %s\n", url)
	return nil
}
