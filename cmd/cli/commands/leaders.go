package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bookclub/roster-admin/pkg/core/model"
	"github.com/bookclub/roster-admin/pkg/core/services"
)

// ListLeadersCmd creates the listLeaders command
func ListLeadersCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listLeaders",
		Short: "List meeting leaders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			leaders, err := services.ListLeaders(app.Ctx, app.Database)
			if err != nil {
				return err
			}

			fmt.Printf("\nFound %d leaders:\n\n", len(leaders))
			rows := make([][]string, 0, len(leaders))
			for _, l := range leaders {
				rows = append(rows, []string{l.Name, l.GoogleEmail, l.Phone, orDash(l.MeetingName), l.ID})
			}
			printTable([]string{"이름", "Google 계정", "전화번호", "모임", "ID"}, rows)
			fmt.Println()
			return nil
		},
	}
}

// AddLeaderCmd creates the addLeader command
func AddLeaderCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addLeader <name> <google_email> <phone>",
		Short: "Add a meeting leader and allow their Google account to sign in",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			gender, _ := cmd.Flags().GetString("gender")
			in := model.LeaderInput{
				Gender:      model.Gender(gender),
				Name:        args[0],
				GoogleEmail: args[1],
				Phone:       args[2],
			}
			if cmd.Flags().Changed("meeting") {
				meeting, _ := cmd.Flags().GetString("meeting")
				in.AssignedMeetingID = &meeting
			}

			leader, err := services.CreateLeader(app.Ctx, app.Database, app.Logger, in)
			if err != nil {
				return err
			}

			fmt.Printf("\n%s✓ Leader added%s\n\n", colorGreen, colorReset)
			fmt.Printf("ID:      %s\n", leader.ID)
			fmt.Printf("Email:   %s\n", leader.GoogleEmail)
			fmt.Printf("Meeting: %s\n\n", orDash(leader.AssignedMeetingID))
			return nil
		},
	}

	cmd.Flags().String("gender", string(model.GenderFemale), "male or female")
	cmd.Flags().String("meeting", "", "Assigned meeting id")
	return cmd
}

// AssignLeaderCmd creates the assignLeader command
func AssignLeaderCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "assignLeader <leader_id> [meeting_id]",
		Short: "Assign a leader to a meeting, or unassign when no meeting is given",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			meeting := ""
			if len(args) > 1 {
				meeting = args[1]
			}

			leader, err := services.UpdateLeader(app.Ctx, app.Database, app.Logger, args[0], model.LeaderUpdate{AssignedMeetingID: &meeting})
			if err != nil {
				return err
			}

			fmt.Printf("\n%s✓ %s now leads %s%s\n\n", colorGreen, leader.Name, orDash(leader.AssignedMeetingID), colorReset)
			return nil
		},
	}
}

// RemoveLeaderCmd creates the removeLeader command
func RemoveLeaderCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "removeLeader <leader_id>",
		Short: "Remove a meeting leader",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := services.DeleteLeader(app.Ctx, app.Database, app.Logger, args[0]); err != nil {
				return err
			}
			fmt.Printf("\n%s✓ Leader removed%s\n\n", colorGreen, colorReset)
			return nil
		},
	}
}
