package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/bookclub/roster-admin/pkg/core/model"
	"github.com/bookclub/roster-admin/pkg/core/query"
	"github.com/bookclub/roster-admin/pkg/core/services"
	"github.com/bookclub/roster-admin/pkg/spreadsheet"
)

// ImportRosterCmd creates the importRoster command
func ImportRosterCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "importRoster <file.xlsx>",
		Short: "Import participants from a roster workbook",
		Long: `Import participants from the first worksheet of a roster workbook.
The participation month is taken from the 4 digits before the extension
(roster_2512.xlsx is December 2025). Meetings named in the roster are
created when they do not exist yet.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			path := args[0]

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open roster: %w", err)
			}
			defer f.Close()

			result, err := services.ImportRosterFile(app.Ctx, app.Database, app.Logger, f, filepath.Base(path), dryRun)
			if err != nil {
				return err
			}

			printImportResult(result)
			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "Validate the roster without saving anything")
	return cmd
}

// ImportSheetCmd creates the importSheet command
func ImportSheetCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "importSheet",
		Short: "Import participants from a Google Sheets roster tab",
		Long: `Import participants from a roster tab in Google Sheets. The spreadsheet
and tab default to rosterSheetID and rosterSheetTab from the config file, and
the first tab is used when neither names one. The participation month comes
from --month (YYMM, e.g. 2512) or else from a 4-digit run in the tab title.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			sheetID, _ := cmd.Flags().GetString("sheet-id")
			tab, _ := cmd.Flags().GetString("tab")
			month, _ := cmd.Flags().GetString("month")

			if sheetID == "" {
				sheetID = app.Cfg.RosterSheetID
			}
			if sheetID == "" {
				return fmt.Errorf("spreadsheet id is required (--sheet-id or rosterSheetID in config)")
			}
			if tab == "" {
				tab = app.Cfg.RosterSheetTab
			}

			client, err := app.SheetsClient()
			if err != nil {
				return err
			}

			app.Logger.Info("Reading roster sheet", zap.String("spreadsheet_id", sheetID), zap.String("tab", tab))
			rows, err := client.ReadRoster(sheetID, tab)
			if err != nil {
				return err
			}

			source := tab
			if month != "" {
				source = month
			}
			result, err := services.ImportRoster(app.Ctx, app.Database, app.Logger, rows, source, dryRun)
			if err != nil {
				return err
			}

			printImportResult(result)
			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "Validate the roster without saving anything")
	cmd.Flags().String("sheet-id", "", "Spreadsheet id (defaults to rosterSheetID)")
	cmd.Flags().String("tab", "", "Tab title (defaults to rosterSheetTab, then the first tab)")
	cmd.Flags().String("month", "", "Participation month as YYMM (defaults to the digits in the tab title)")
	return cmd
}

func printImportResult(result *services.ImportResult) {
	if result.DryRun {
		fmt.Printf("\n%sDRY RUN - nothing was saved%s\n", colorYellow, colorReset)
	}

	fmt.Printf("\n%s✓ %d participants imported%s\n", colorGreen, result.Imported, colorReset)
	if result.ParticipationMonth != "" {
		fmt.Printf("Participation month: %s\n", result.ParticipationMonth)
	} else {
		fmt.Printf("%sNo participation month in the source name; registration months were left blank%s\n", colorDim, colorReset)
	}

	if len(result.Meetings) > 0 {
		fmt.Printf("\nMeetings:\n")
		for _, m := range result.Meetings {
			id := m.ID
			if id == "" {
				id = "(new)"
			}
			fmt.Printf("  - %s %s%s%s\n", m.Name, colorDim, id, colorReset)
		}
	}

	if len(result.Failures) > 0 {
		fmt.Printf("\n%s✗ %d rows skipped:%s\n", colorRed, len(result.Failures), colorReset)
		for _, f := range result.Failures {
			fmt.Printf("  row %d %s: %s\n", f.Row, f.Name, f.Reason)
		}
	}
	fmt.Println()
}

// addSearchFlags registers the filter, paging and sort flags
func addSearchFlags(flags *pflag.FlagSet) {
	flags.String("gender", "", "male or female")
	flags.Int("age-min", 0, "Minimum age value")
	flags.Int("age-max", 0, "Maximum age value")
	flags.String("name", "", "Name contains (case-insensitive)")
	flags.Int("months-min", 0, "Minimum months")
	flags.Int("months-max", 0, "Maximum months")
	flags.String("first-registration", "", "First registration month (YYYY-MM)")
	flags.String("phone", "", "Phone contains")
	flags.Int("fee-min", 0, "Minimum fee")
	flags.Int("fee-max", 0, "Maximum fee")
	flags.Bool("re-registration", false, "Re-registration flag")
	flags.String("latest-registration", "", "Latest registration month (YYYY-MM)")
	flags.String("meeting", "", "Current meeting id")
	flags.Int("page", query.DefaultPage, "Page number")
	flags.Int("limit", query.DefaultLimit, "Page size")
	flags.String("sort", "", "Sort column: created_at, name, age, months, fee")
	flags.String("order", "", "asc or desc (default desc)")
	flags.String("as", "", "Search as this signed-in email instead of as an administrator")
}

// filtersFromFlags turns the flags the user set into filters. Unset flags
// stay inactive.
func filtersFromFlags(flags *pflag.FlagSet) (query.Filters, error) {
	var f query.Filters

	if flags.Changed("gender") {
		g, _ := flags.GetString("gender")
		gender := model.Gender(g)
		if !gender.IsValid() {
			return f, fmt.Errorf("gender must be male or female, got %q", g)
		}
		f.Gender = &gender
	}

	ints := []struct {
		name string
		dst  **int
	}{
		{"age-min", &f.AgeMin},
		{"age-max", &f.AgeMax},
		{"months-min", &f.MonthsMin},
		{"months-max", &f.MonthsMax},
		{"fee-min", &f.FeeMin},
		{"fee-max", &f.FeeMax},
	}
	for _, i := range ints {
		if flags.Changed(i.name) {
			v, _ := flags.GetInt(i.name)
			*i.dst = &v
		}
	}

	strs := []struct {
		name string
		dst  **string
	}{
		{"name", &f.Name},
		{"first-registration", &f.FirstRegistrationMonth},
		{"phone", &f.Phone},
		{"latest-registration", &f.LatestRegistration},
		{"meeting", &f.CurrentMeetingID},
	}
	for _, s := range strs {
		if flags.Changed(s.name) {
			v, _ := flags.GetString(s.name)
			*s.dst = &v
		}
	}

	if flags.Changed("re-registration") {
		v, _ := flags.GetBool("re-registration")
		f.ReRegistration = &v
	}

	return f, nil
}

func searchFromFlags(flags *pflag.FlagSet) (query.Filters, query.Pagination, query.Sort, error) {
	filters, err := filtersFromFlags(flags)
	if err != nil {
		return filters, query.Pagination{}, query.Sort{}, err
	}

	page, _ := flags.GetInt("page")
	limit, _ := flags.GetInt("limit")
	column, _ := flags.GetString("sort")
	order, _ := flags.GetString("order")

	return filters,
		query.Pagination{Page: page, Limit: limit},
		query.Sort{Column: column, Direction: query.Direction(order)},
		nil
}

// viewerFromFlags resolves --as to a role, defaulting to an administrator
func viewerFromFlags(app *AppContext, flags *pflag.FlagSet) (model.RoleResolution, error) {
	as, _ := flags.GetString("as")
	if as == "" {
		return model.RoleResolution{Role: model.RoleAdmin}, nil
	}

	viewer, err := services.ResolveRole(app.Ctx, app.Database, app.Logger, as)
	if err != nil {
		return model.RoleResolution{}, err
	}
	return *viewer, nil
}

// SearchParticipantsCmd creates the searchParticipants command
func SearchParticipantsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "searchParticipants",
		Short: "Search participants with filters, sorting and paging",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, pagination, sort, err := searchFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			viewer, err := viewerFromFlags(app, cmd.Flags())
			if err != nil {
				return err
			}

			page, err := services.SearchParticipants(app.Ctx, app.Database, app.Logger, viewer, filters, pagination, sort)
			if err != nil {
				return err
			}

			meetings, err := meetingNames(app)
			if err != nil {
				return err
			}

			fmt.Printf("\nPage %d of %d (%d participants)\n\n", page.Page, page.TotalPages, page.Total)
			rows := make([][]string, 0, len(page.Data))
			for _, p := range page.Data {
				rows = append(rows, participantRow(p, meetings))
			}
			printTable([]string{"이름", "성별", "나이", "전화번호", "개월수", "회비", "최근 등록", "현재 모임", "ID"}, rows)
			fmt.Println()
			return nil
		},
	}

	addSearchFlags(cmd.Flags())
	return cmd
}

func participantRow(p model.Participant, meetings map[string]string) []string {
	meeting := "-"
	if p.CurrentMeetingID != nil {
		meeting = *p.CurrentMeetingID
		if name, ok := meetings[meeting]; ok {
			meeting = name
		}
	}
	return []string{
		p.Name,
		string(p.Gender),
		strconv.Itoa(p.Age),
		p.Phone,
		strconv.Itoa(p.Months),
		strconv.Itoa(p.Fee),
		p.LatestRegistration,
		meeting,
		p.ID,
	}
}

// ExportParticipantsCmd creates the exportParticipants command
func ExportParticipantsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exportParticipants",
		Short: "Export a page or every matching participant to an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, pagination, sort, err := searchFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			viewer, err := viewerFromFlags(app, cmd.Flags())
			if err != nil {
				return err
			}
			all, _ := cmd.Flags().GetBool("all")
			outDir, _ := cmd.Flags().GetString("out")

			scope := services.ExportPage
			if all {
				scope = services.ExportAll
			}

			export, err := services.ExportParticipants(app.Ctx, app.Database, app.Logger, viewer,
				scope, filters, pagination, sort, time.Now())
			if err != nil {
				return err
			}

			path := filepath.Join(outDir, export.Filename)
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("failed to create export file: %w", err)
			}
			defer f.Close()

			if err := spreadsheet.Write(f, export.Table); err != nil {
				return err
			}

			fmt.Printf("\n%s✓ Exported %d participants to %s%s\n\n", colorGreen, len(export.Table.Rows), path, colorReset)
			return nil
		},
	}

	addSearchFlags(cmd.Flags())
	cmd.Flags().Bool("all", false, "Export every matching participant instead of one page")
	cmd.Flags().String("out", ".", "Directory to write the workbook to")
	return cmd
}
