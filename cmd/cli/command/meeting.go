package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"issuehub/internal/httpapi/dto"
)

var meetingCmd = &cobra.Command{
	Use:   "meeting",
	Short: "Meeting scheduling commands",
}

var meetingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List meetings",
	RunE: func(cmd *cobra.Command, args []string) error {
		meetings, err := apiClient().ListMeetings(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list meetings: %w", err)
		}

		if len(meetings) == 0 {
			fmt.Println("No meetings.")
			return nil
		}
		for _, m := range meetings {
			fmt.Printf("#%-4d %s  %s\n", m.ID, m.StartsAt.Format("2006-01-02 15:04"), m.Title)
		}
		return nil
	},
}

var meetingCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Schedule a meeting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		startsAt, _ := cmd.Flags().GetString("at")
		start, err := time.Parse("2006-01-02 15:04", startsAt)
		if err != nil {
			return fmt.Errorf("invalid --at value %q, want \"YYYY-MM-DD HH:MM\"", startsAt)
		}

		req := dto.CreateMeetingRequest{Title: args[0], StartsAt: start}
		if agenda, _ := cmd.Flags().GetString("agenda"); agenda != "" {
			req.Agenda = &agenda
		}
		if attendees, _ := cmd.Flags().GetString("attendees"); attendees != "" {
			req.AttendeeIDs = strings.Split(attendees, ",")
		}

		meeting, err := apiClient().CreateMeeting(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("failed to create meeting: %w", err)
		}
		fmt.Printf("✓ Scheduled meeting #%d\n", meeting.ID)
		return nil
	},
}

func init() {
	meetingCreateCmd.Flags().String("at", "", "start time, \"YYYY-MM-DD HH:MM\"")
	meetingCreateCmd.Flags().String("agenda", "", "meeting agenda")
	meetingCreateCmd.Flags().String("attendees", "", "comma separated attendee user ids")
	meetingCreateCmd.MarkFlagRequired("at")

	meetingCmd.AddCommand(meetingListCmd)
	meetingCmd.AddCommand(meetingCreateCmd)
	rootCmd.AddCommand(meetingCmd)
}
