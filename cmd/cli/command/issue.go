package command

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"issuehub/internal/httpapi/dto"
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue tracking commands",
}

var issueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List issues",
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetInt("page")
		size, _ := cmd.Flags().GetInt("size")

		resp, err := apiClient().ListIssues(cmd.Context(), page, size)
		if err != nil {
			return fmt.Errorf("failed to list issues: %w", err)
		}

		if len(resp.Data) == 0 {
			fmt.Println("No issues.")
			return nil
		}
		for _, issue := range resp.Data {
			fmt.Printf("#%-4d [%-11s] %s\n", issue.ID, issue.Status, issue.Title)
		}
		fmt.Printf("page %d of %d (%d total)\n", resp.Page+1, resp.TotalPages, resp.Total)
		return nil
	},
}

var issueCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create an issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := dto.CreateIssueRequest{Title: args[0]}
		if desc, _ := cmd.Flags().GetString("description"); desc != "" {
			req.Description = &desc
		}
		if priority, _ := cmd.Flags().GetString("priority"); priority != "" {
			req.Priority = &priority
		}
		if assignee, _ := cmd.Flags().GetString("assignee"); assignee != "" {
			req.AssigneeID = &assignee
		}

		issue, err := apiClient().CreateIssue(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("failed to create issue: %w", err)
		}
		fmt.Printf("✓ Created issue #%d\n", issue.ID)
		return nil
	},
}

var issueAssignCmd = &cobra.Command{
	Use:   "assign <id> <user-id>",
	Short: "Assign an issue to a member",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid issue id %q", args[0])
		}

		assignee := args[1]
		if _, err := apiClient().UpdateIssue(cmd.Context(), id, dto.UpdateIssueRequest{AssigneeID: &assignee}); err != nil {
			return fmt.Errorf("failed to assign issue: %w", err)
		}
		fmt.Printf("✓ Assigned issue #%d\n", id)
		return nil
	},
}

var issueCommentCmd = &cobra.Command{
	Use:   "comment <id> <body>",
	Short: "Comment on an issue",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid issue id %q", args[0])
		}

		if _, err := apiClient().CreateComment(cmd.Context(), id, dto.CreateCommentRequest{Body: args[1]}); err != nil {
			return fmt.Errorf("failed to add comment: %w", err)
		}
		fmt.Println("✓ Comment added.")
		return nil
	},
}

func init() {
	issueListCmd.Flags().Int("page", 0, "page number, zero-indexed")
	issueListCmd.Flags().Int("size", 20, "page size")

	issueCreateCmd.Flags().StringP("description", "d", "", "issue description")
	issueCreateCmd.Flags().StringP("priority", "P", "", "issue priority")
	issueCreateCmd.Flags().StringP("assignee", "a", "", "assignee user id")

	issueCmd.AddCommand(issueListCmd)
	issueCmd.AddCommand(issueCreateCmd)
	issueCmd.AddCommand(issueAssignCmd)
	issueCmd.AddCommand(issueCommentCmd)
	rootCmd.AddCommand(issueCmd)
}
