package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:   "sift [query]",
	Short: "Personalized web search assistant",
	Long: `sift answers questions using live web search results, personalized to a
stored user profile.

Examples:
  sift "what is quantum computing?"
  sift --user-id alice "best practices for Go error handling"
  sift users show alice
  sift users set alice city Boston
  sift history list`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		userID, _ := cmd.Flags().GetString("user-id")
		return runAsk(cmd.Context(), userID, strings.Join(args, " "))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.Flags().String("user-id", "", "user id for personalization (empty answers without a profile)")

	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the sift version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sift version %s\n", version)
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}
