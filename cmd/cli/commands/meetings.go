package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bookclub/roster-admin/pkg/core/model"
	"github.com/bookclub/roster-admin/pkg/core/services"
)

// meetingNames maps meeting ids to names for display
func meetingNames(app *AppContext) (map[string]string, error) {
	options, err := services.ListMeetingOptions(app.Ctx, app.Database)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(options))
	for _, o := range options {
		names[o.ID] = o.Name
	}
	return names, nil
}

// ListMeetingsCmd creates the listMeetings command
func ListMeetingsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listMeetings",
		Short: "List meetings by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := services.ListMeetingOptions(app.Ctx, app.Database)
			if err != nil {
				return err
			}

			fmt.Printf("\nFound %d meetings:\n\n", len(options))
			rows := make([][]string, 0, len(options))
			for _, o := range options {
				rows = append(rows, []string{o.Name, o.ID})
			}
			printTable([]string{"모임", "ID"}, rows)
			fmt.Println()
			return nil
		},
	}
}

// CreateMeetingCmd creates the createMeeting command
func CreateMeetingCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "createMeeting <name>",
		Short: "Create a meeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := model.MeetingInput{Name: args[0]}
			if cmd.Flags().Changed("description") {
				desc, _ := cmd.Flags().GetString("description")
				in.Description = &desc
			}

			m, err := services.CreateMeeting(app.Ctx, app.Database, app.Logger, in)
			if err != nil {
				return err
			}

			fmt.Printf("\n%s✓ Meeting created%s\n\n", colorGreen, colorReset)
			fmt.Printf("ID:   %s\n", m.ID)
			fmt.Printf("Name: %s\n\n", m.Name)
			return nil
		},
	}

	cmd.Flags().String("description", "", "Meeting description")
	return cmd
}

// RenameMeetingCmd creates the renameMeeting command
func RenameMeetingCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "renameMeeting <meeting_id> <name>",
		Short: "Rename a meeting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[1]
			m, err := services.UpdateMeeting(app.Ctx, app.Database, app.Logger, args[0], model.MeetingUpdate{Name: &name})
			if err != nil {
				return err
			}

			fmt.Printf("\n%s✓ Meeting %s renamed to %s%s\n\n", colorGreen, m.ID, m.Name, colorReset)
			return nil
		},
	}
}

// DeleteMeetingCmd creates the deleteMeeting command
func DeleteMeetingCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deleteMeeting <meeting_id>",
		Short: "Delete a meeting; participants and leaders in it are left unassigned",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := services.DeleteMeeting(app.Ctx, app.Database, app.Logger, args[0]); err != nil {
				return err
			}
			fmt.Printf("\n%s✓ Meeting deleted%s\n\n", colorGreen, colorReset)
			return nil
		},
	}
}
