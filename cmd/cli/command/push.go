package command

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"issuehub/internal/client"
	"issuehub/internal/push"
)

// push.go manages the device push subscription through the background agent.

const agentWaitTimeout = 10 * time.Second

// terminalPrompter asks for notification permission on stdin.
type terminalPrompter struct{}

func (terminalPrompter) RequestPermission(ctx context.Context) (push.PermissionState, error) {
	fmt.Print("Allow IssueHub to show notifications on this device? [y/N]: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return push.PermissionDefault, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return push.PermissionGranted, nil
	default:
		return push.PermissionDenied, nil
	}
}

func subscriptionController() (*client.SubscriptionController, error) {
	store, err := stateStore()
	if err != nil {
		return nil, err
	}

	logger := cliLogger()
	registration := client.NewRegistrationController(apiClient(), store, logger)
	return client.NewSubscriptionController(
		push.NewManager(store, pushEndpointBase()),
		client.NewRedisAgentProbe(redisClient()),
		terminalPrompter{},
		store,
		registration,
		serverKey,
		logger,
	), nil
}

// pushEndpointBase is where the agent accepts deliveries.
func pushEndpointBase() string {
	if addr := os.Getenv("PUSH_ENDPOINT_URL"); addr != "" {
		return addr
	}
	return "http://127.0.0.1:8090"
}

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Manage push notifications for this device",
}

var pushEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Subscribe this device to push notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID := currentUserID()
		if userID == "" {
			return fmt.Errorf("not logged in, run `issuehub auth login` first")
		}

		ctrl, err := subscriptionController()
		if err != nil {
			return err
		}

		if reset, _ := cmd.Flags().GetBool("reset-permission"); reset {
			if err := ctrl.ResetPermission(); err != nil {
				return fmt.Errorf("failed to reset permission: %w", err)
			}
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), agentWaitTimeout)
		defer cancel()

		if err := ctrl.Init(ctx, userID); err != nil {
			return err
		}

		switch ctrl.State() {
		case client.StateSubscribed:
			fmt.Println("✓ Push notifications enabled.")
		default:
			fmt.Println("!", ctrl.Message())
		}
		return nil
	},
}

var pushDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Unsubscribe this device from push notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := subscriptionController()
		if err != nil {
			return err
		}
		had, err := ctrl.Unsubscribe(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to unsubscribe: %w", err)
		}
		if !had {
			fmt.Println("No push subscription on this device.")
			return nil
		}
		fmt.Println("✓ Push notifications disabled.")
		return nil
	},
}

var pushStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the push subscription state on this device",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := stateStore()
		if err != nil {
			return err
		}

		permission, err := store.Permission()
		if err != nil {
			return err
		}
		sub, err := store.Subscription()
		if err != nil {
			return err
		}

		fmt.Println("Permission:  ", permission)
		if sub == nil {
			fmt.Println("Subscription: none")
			return nil
		}
		fmt.Println("Subscription:", sub.Endpoint)

		probe := client.NewRedisAgentProbe(redisClient())
		if probe.Available(cmd.Context()) {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Second)
			defer cancel()
			if err := probe.Ready(ctx); err == nil {
				fmt.Println("Agent:        running")
				return nil
			}
		}
		fmt.Println("Agent:        not running")
		return nil
	},
}

func init() {
	pushEnableCmd.Flags().Bool("reset-permission", false, "forget a previous denial and prompt again")

	pushCmd.AddCommand(pushEnableCmd)
	pushCmd.AddCommand(pushDisableCmd)
	pushCmd.AddCommand(pushStatusCmd)
	rootCmd.AddCommand(pushCmd)
}
