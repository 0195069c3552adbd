package commands

import "github.com/spf13/cobra"

// Register adds every portal subcommand to root
func Register(root *cobra.Command, opts *Options) {
	root.AddCommand(NewLoginCmd(opts))
	root.AddCommand(NewLogoutCmd(opts))
	root.AddCommand(NewWhoamiCmd(opts))
	root.AddCommand(NewJobsCmd(opts))
	root.AddCommand(NewCommentsCmd(opts))
	root.AddCommand(NewNotificationsCmd(opts))
	root.AddCommand(NewNoticesCmd(opts))
	root.AddCommand(NewCyclesCmd(opts))
	root.AddCommand(NewResumeCmd(opts))
	root.AddCommand(NewAdminCmd(opts))
}
