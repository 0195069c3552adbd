package commands

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/placementcell/portal/internal/apiclient"
	"github.com/placementcell/portal/internal/models"
)

// jobFlags are the flags of 'admin jobs create'
type jobFlags struct {
	Title       string `flag:"title" validate:"required,max=200"`
	Company     string `flag:"company" validate:"required,max=200"`
	Description string `flag:"description" validate:"required"`
	Location    string `flag:"location"`
	CTC         string `flag:"ctc"`
	Type        string `flag:"type" validate:"omitempty,oneof=fulltime internship"`
	CycleID     string `flag:"cycle"`
	Deadline    string `flag:"deadline" validate:"omitempty,datetime=2006-01-02"`
}

// noticeFlags are the flags of 'admin notices post'
type noticeFlags struct {
	Title       string `flag:"title" validate:"required,max=200"`
	Body        string `flag:"body" validate:"required"`
	Audience    string `flag:"audience"`
	AttachedURL string `flag:"attachment" validate:"omitempty,url"`
}

// validationError turns validator output into a flag-oriented message
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		flag := fe.Field()
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("--%s is required", flag))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("--%s must be one of: %s", flag, fe.Param()))
		case "datetime":
			msgs = append(msgs, fmt.Sprintf("--%s must be a date (YYYY-MM-DD)", flag))
		default:
			msgs = append(msgs, fmt.Sprintf("--%s is invalid (%s)", flag, fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// NewAdminCmd creates the admin command tree. Everything under it
// requires the admin role.
func NewAdminCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Placement cell administration",
	}

	cmd.AddCommand(newAdminJobsCmd(opts))
	cmd.AddCommand(newAdminNoticesCmd(opts))
	cmd.AddCommand(newAdminCyclesCmd(opts))

	return cmd
}

func newAdminJobsCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Manage job postings",
	}

	var flags jobFlags
	create := &cobra.Command{
		Use:   "create",
		Short: "Post a new job",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreateJob(cmd, opts, flags)
		},
	}
	create.Flags().StringVar(&flags.Title, "title", "", "Job title")
	create.Flags().StringVar(&flags.Company, "company", "", "Company name")
	create.Flags().StringVar(&flags.Description, "description", "", "Job description")
	create.Flags().StringVar(&flags.Location, "location", "", "Location")
	create.Flags().StringVar(&flags.CTC, "ctc", "", "Compensation")
	create.Flags().StringVar(&flags.Type, "type", "", "fulltime or internship")
	create.Flags().StringVar(&flags.CycleID, "cycle", "", "Placement cycle ID")
	create.Flags().StringVar(&flags.Deadline, "deadline", "", "Application deadline (YYYY-MM-DD)")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:     "rm <job-id>",
		Aliases: []string{"delete"},
		Short:   "Delete a job posting",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := connect(ctx, cmd, opts)
			if err != nil {
				return err
			}
			if err := authorize(cmd, e, models.RoleAdmin); err != nil {
				return err
			}

			if err := e.api.DeleteJob(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Job %s deleted\n", args[0])
			return nil
		},
	})

	return cmd
}

func runCreateJob(cmd *cobra.Command, opts *Options, flags jobFlags) error {
	if err := validate.Struct(flags); err != nil {
		return validationError(err)
	}

	req := apiclient.CreateJobRequest{
		Title:       flags.Title,
		Company:     flags.Company,
		Description: flags.Description,
		Location:    flags.Location,
		CTC:         flags.CTC,
		Type:        flags.Type,
		CycleID:     flags.CycleID,
	}
	if flags.Deadline != "" {
		deadline, err := time.ParseInLocation("2006-01-02", flags.Deadline, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --deadline: %w", err)
		}
		req.Deadline = &deadline
	}

	ctx := cmd.Context()
	e, err := connect(ctx, cmd, opts)
	if err != nil {
		return err
	}
	if err := authorize(cmd, e, models.RoleAdmin); err != nil {
		return err
	}

	job, err := e.api.CreateJob(ctx, req)
	if err != nil {
		return err
	}
	if job == nil {
		return fmt.Errorf("backend returned no job")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Job posted: %s (%s at %s)\n", job.ID, job.Title, job.Company)
	return nil
}

func newAdminNoticesCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notices",
		Short: "Manage the notice board",
	}

	var flags noticeFlags
	post := &cobra.Command{
		Use:   "post",
		Short: "Post a notice",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validate.Struct(flags); err != nil {
				return validationError(err)
			}

			ctx := cmd.Context()
			e, err := connect(ctx, cmd, opts)
			if err != nil {
				return err
			}
			if err := authorize(cmd, e, models.RoleAdmin); err != nil {
				return err
			}

			notice, err := e.api.CreateNotice(ctx, apiclient.CreateNoticeRequest{
				Title:       flags.Title,
				Body:        flags.Body,
				Audience:    flags.Audience,
				AttachedURL: flags.AttachedURL,
			})
			if err != nil {
				return err
			}
			if notice == nil {
				return fmt.Errorf("backend returned no notice")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Notice posted: %s\n", notice.ID)
			return nil
		},
	}
	post.Flags().StringVar(&flags.Title, "title", "", "Notice title")
	post.Flags().StringVar(&flags.Body, "body", "", "Notice text")
	post.Flags().StringVar(&flags.Audience, "audience", "", "Audience (empty means everyone)")
	post.Flags().StringVar(&flags.AttachedURL, "attachment", "", "Link to an attached document")
	cmd.AddCommand(post)

	return cmd
}

func newAdminCyclesCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cycles",
		Short: "Inspect placement cycles",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "students <cycle-id>",
		Short: "List the students registered in a placement cycle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCycleStudents(cmd, opts, args[0])
		},
	})

	return cmd
}

func runCycleStudents(cmd *cobra.Command, opts *Options, cycleID string) error {
	ctx := cmd.Context()
	e, err := connect(ctx, cmd, opts)
	if err != nil {
		return err
	}
	if err := authorize(cmd, e, models.RoleAdmin); err != nil {
		return err
	}

	cycle, err := e.api.GetPlacementCycle(ctx, cycleID)
	if err != nil {
		return err
	}
	if cycle == nil {
		return fmt.Errorf("placement cycle %s not found", cycleID)
	}
	students, err := e.api.ListCycleStudents(ctx, cycleID)
	if err != nil {
		return err
	}

	placed := 0
	for _, st := range students {
		if st.Placed {
			placed++
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s) - %d students, %d placed\n\n", cycle.Name, cycle.Batch, len(students), placed)
	if len(students) == 0 {
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ROLL NO\tNAME\tDEPARTMENT\tCGPA\tPLACED")
	fmt.Fprintln(w, "───────\t────\t──────────\t────\t──────")

	for _, st := range students {
		placedMark := "no"
		if st.Placed {
			placedMark = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\n", st.RollNumber, st.Name, orDash(st.Department), st.CGPA, placedMark)
	}

	return w.Flush()
}
