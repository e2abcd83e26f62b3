package command

// root.go defines the root command for the issuehub CLI.
// Global flags and shared client plumbing live here.

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"issuehub/cmd/cli/authentication"
	"issuehub/internal/client"
	"issuehub/internal/push"
)

var (
	apiURL    string // API server URL
	redisAddr string // broker shared with the background agent
	serverKey string // application server (VAPID) public key
)

var rootCmd = &cobra.Command{
	Use:   "issuehub",
	Short: "issuehub - team issue and meeting tracker",
	Long: `issuehub is the command line interface for the IssueHub API server.
Use it to:
- Track and comment on issues
- Schedule meetings
- Read notifications and receive them in real time via the background agent

Use "issuehub <command> -h" to see all available commands.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis", "localhost:6379", "Redis address shared with the agent")
	rootCmd.PersistentFlags().StringVar(&serverKey, "server-key", os.Getenv("VAPID_PUBLIC_KEY"), "application server public key for push")
}

func cliLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// apiClient builds an authenticated API client; the token comes from the
// keyring on every request so a re-login mid-session takes effect.
func apiClient() *client.APIClient {
	return client.NewAPIClient(apiURL, func() string {
		creds, err := authentication.GetTokens()
		if err != nil {
			return ""
		}
		return creds.AccessToken
	})
}

func redisClient() *redis.Client {
	return redis.NewClient(&redis.Options{Addr: redisAddr})
}

func stateStore() (*push.StateStore, error) {
	path, err := push.DefaultStatePath()
	if err != nil {
		return nil, fmt.Errorf("cannot resolve device state path: %w", err)
	}
	return push.NewStateStore(path), nil
}

// currentUserID returns the stored user, or empty when logged out.
func currentUserID() string {
	creds, err := authentication.GetTokens()
	if err != nil {
		return ""
	}
	return creds.UserID
}
