package command

import (
	"fmt"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"issuehub/internal/agent"
	"issuehub/internal/broadcast"
	"issuehub/internal/client"
)

// notifications.go renders the notification center and follows live pushes.

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notif"},
	Short:   "Notification commands",
}

var notifListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		pages, _ := cmd.Flags().GetInt("pages")
		size, _ := cmd.Flags().GetInt("size")

		center := client.NewNotificationCenter(apiClient(), size)
		if err := center.Refresh(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load notifications: %w", err)
		}
		for page := 1; page < pages && center.HasNext(); page++ {
			if err := center.LoadMore(cmd.Context()); err != nil {
				return fmt.Errorf("failed to load more notifications: %w", err)
			}
		}

		items := center.Items()
		if len(items) == 0 {
			fmt.Println("No notifications.")
			return nil
		}
		for _, n := range items {
			marker := " "
			if !n.IsRead {
				marker = "*"
			}
			title, _, _ := strings.Cut(n.Message, "\n")
			fmt.Printf("%s %4d  %-20s %s\n", marker, n.ID, n.SenderName, title)
		}
		if center.HasNext() {
			fmt.Println("... more available, use --pages to fetch further")
		}
		return nil
	},
}

var notifReadCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Mark a notification as read and print its link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid notification id %q", args[0])
		}

		center := client.NewNotificationCenter(apiClient(), client.DefaultPageSize)
		if err := center.Refresh(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load notifications: %w", err)
		}

		forwardURL, err := center.Open(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to mark notification read: %w", err)
		}
		if forwardURL != "" {
			fmt.Println("→", apiURL+forwardURL)
		}
		return nil
	},
}

var notifUnreadCmd = &cobra.Command{
	Use:   "unread",
	Short: "Show the unread notification count",
	RunE: func(cmd *cobra.Command, args []string) error {
		count, err := apiClient().UnreadCount(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to fetch unread count: %w", err)
		}
		fmt.Println(count)
		return nil
	},
}

var notifWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream notifications live until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		rdb := redisClient()
		defer rdb.Close()

		// Register as a foreground session so notification clicks can focus
		// this watcher instead of opening a new window.
		sessionID := uuid.New().String()
		if err := agent.RegisterSession(ctx, rdb, sessionID, "/notifications"); err != nil {
			return fmt.Errorf("failed to register session: %w", err)
		}
		go agent.KeepSessionAlive(ctx, rdb, sessionID, "/notifications")

		messages, err := broadcast.NewListener(rdb, cliLogger()).Listen(ctx)
		if err != nil {
			return err
		}

		fmt.Println("Watching for notifications, Ctrl-C to stop...")
		for {
			select {
			case <-ctx.Done():
				return nil
			case msg, ok := <-messages:
				if !ok {
					return nil
				}
				switch msg.Type {
				case broadcast.TypePushReceived:
					fmt.Printf("• %s — %s (%s)\n", msg.Notification.Title, msg.Notification.Body, msg.Notification.Data.URL)
				case broadcast.TypeNotificationClicked:
					fmt.Printf("clicked: %s\n", msg.Notification.Data.URL)
				}
			}
		}
	},
}

func init() {
	notifListCmd.Flags().Int("pages", 1, "number of pages to fetch")
	notifListCmd.Flags().Int("size", client.DefaultPageSize, "page size")

	notificationsCmd.AddCommand(notifListCmd)
	notificationsCmd.AddCommand(notifReadCmd)
	notificationsCmd.AddCommand(notifUnreadCmd)
	notificationsCmd.AddCommand(notifWatchCmd)
	rootCmd.AddCommand(notificationsCmd)
}
