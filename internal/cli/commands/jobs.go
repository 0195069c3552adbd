package commands

import (
	"fmt"
	"reflect"
	"strings"
	"text/tabwriter"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/placementcell/portal/internal/models"
)

var validate = newValidator()

// newValidator reports struct fields by their flag name
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("flag")
	})
	return v
}

// NewJobsCmd creates the jobs command
func NewJobsCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Browse job postings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List all job postings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListJobs(cmd, opts)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <job-id>",
		Short: "Show a job posting and its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShowJob(cmd, opts, args[0])
		},
	})

	return cmd
}

func runListJobs(cmd *cobra.Command, opts *Options) error {
	ctx := cmd.Context()
	e, err := connect(ctx, cmd, opts)
	if err != nil {
		return err
	}
	if err := authorize(cmd, e); err != nil {
		return err
	}

	jobs, err := e.api.ListJobs(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(jobs) == 0 {
		fmt.Fprintln(out, "No job postings found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCOMPANY\tTYPE\tCTC\tDEADLINE")
	fmt.Fprintln(w, "──\t─────\t───────\t────\t───\t────────")

	for _, job := range jobs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			job.ID,
			job.Title,
			job.Company,
			orDash(job.Type),
			orDash(job.CTC),
			formatDate(job.Deadline),
		)
	}

	return w.Flush()
}

func runShowJob(cmd *cobra.Command, opts *Options, jobID string) error {
	ctx := cmd.Context()
	e, err := connect(ctx, cmd, opts)
	if err != nil {
		return err
	}
	if err := authorize(cmd, e); err != nil {
		return err
	}

	job, err := e.api.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job == nil {
		return fmt.Errorf("job %s not found", jobID)
	}
	comments, err := e.api.ListComments(ctx, jobID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s at %s\n", job.Title, job.Company)
	fmt.Fprintf(out, "  Type:     %s\n", orDash(job.Type))
	fmt.Fprintf(out, "  Location: %s\n", orDash(job.Location))
	fmt.Fprintf(out, "  CTC:      %s\n", orDash(job.CTC))
	fmt.Fprintf(out, "  Deadline: %s\n", formatDate(job.Deadline))
	fmt.Fprintf(out, "\n%s\n", strings.TrimSpace(job.Description))

	printComments(cmd, comments)
	return nil
}

func printComments(cmd *cobra.Command, comments []models.Comment) {
	out := cmd.OutOrStdout()
	if len(comments) == 0 {
		fmt.Fprintln(out, "\nNo comments yet.")
		return
	}

	fmt.Fprintf(out, "\nComments (%d):\n", len(comments))
	for _, c := range comments {
		fmt.Fprintf(out, "  [%s] %s: %s\n", c.CreatedAt.Local().Format("2006-01-02 15:04"), c.Author, c.Text)
	}
}

// NewCommentsCmd creates the comments command
func NewCommentsCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments",
		Short: "Discuss job postings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <job-id> <text>...",
		Short: "Comment on a job posting",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAddComment(cmd, opts, args[0], strings.TrimSpace(strings.Join(args[1:], " ")))
		},
	})

	return cmd
}

func runAddComment(cmd *cobra.Command, opts *Options, jobID, text string) error {
	if err := validate.Var(text, "required,max=2000"); err != nil {
		return fmt.Errorf("comment must be between 1 and 2000 characters")
	}

	ctx := cmd.Context()
	e, err := connect(ctx, cmd, opts)
	if err != nil {
		return err
	}
	if err := authorize(cmd, e, models.RoleStudent); err != nil {
		return err
	}

	comment, err := e.api.AddComment(ctx, jobID, text)
	if err != nil {
		return err
	}
	if comment == nil {
		return fmt.Errorf("backend returned no comment")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Comment %s added to job %s\n", comment.ID, jobID)
	return nil
}
