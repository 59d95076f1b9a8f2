package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bookclub/roster-admin/pkg/core/services"
)

// ResolveRoleCmd creates the resolveRole command
func ResolveRoleCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resolveRole <email>",
		Short: "Show which role an email signs in with",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := services.ResolveRole(app.Ctx, app.Database, app.Logger, args[0])
			if errors.Is(err, services.ErrUnregistered) {
				fmt.Printf("\n%s✗ %s is not registered%s\n\n", colorRed, args[0], colorReset)
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Printf("\nRole:       %s\n", res.Role)
			fmt.Printf("Profile ID: %s\n", res.ProfileID)
			if res.AssignedMeetingID != nil {
				fmt.Printf("Meeting:    %s\n", *res.AssignedMeetingID)
			}
			fmt.Println()
			return nil
		},
	}
}
