package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/keremar/sift/internal/config"
	"github.com/keremar/sift/internal/history"
	"github.com/keremar/sift/internal/profile"
)

// openProfiles opens the profile store without requiring API keys.
func openProfiles() (*profile.Store, error) {
	cfg, err := config.LoadLocal()
	if err != nil {
		return nil, err
	}
	return profile.NewStore(cfg.Storage.DataDir)
}

// openHistory opens the interaction log without requiring API keys.
func openHistory() (*history.Store, error) {
	cfg, err := config.LoadLocal()
	if err != nil {
		return nil, err
	}
	return history.Open(cfg.Storage.DataDir)
}

// --- users ---

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage stored user profiles",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored user ids",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openProfiles()
		if err != nil {
			return err
		}

		ids, err := store.List()
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Println("No profiles stored.")
			return nil
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

var usersShowCmd = &cobra.Command{
	Use:   "show <user-id>",
	Short: "Show a user profile as JSON, creating it with defaults if absent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openProfiles()
		if err != nil {
			return err
		}

		p, err := store.GetOrCreate(args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	},
}

var usersSetCmd = &cobra.Command{
	Use:   "set <user-id> <field> <value>",
	Short: "Set a profile field",
	Long: `Set a profile field. List fields accept comma-separated values.

Fields: name, city, profession, expertise_level, interests, preferred_topics

Examples:
  sift users set alice city Boston
  sift users set alice interests "quantum computing, sailing"`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, field, value := args[0], args[1], args[2]

		store, err := openProfiles()
		if err != nil {
			return err
		}

		if err := store.Update(userID, field, value); err != nil {
			if errors.Is(err, profile.ErrNotFound) {
				return fmt.Errorf("no profile for %q (run 'sift users show %s' to create one)", userID, userID)
			}
			return err
		}

		printSuccess("Set %s = %s for %s", field, value, userID)
		return nil
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <user-id>",
	Short: "Delete a stored profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openProfiles()
		if err != nil {
			return err
		}

		if err := store.Delete(args[0]); err != nil {
			if errors.Is(err, profile.ErrNotFound) {
				return fmt.Errorf("no profile for %q", args[0])
			}
			return err
		}

		printSuccess("Deleted profile %s", args[0])
		return nil
	},
}

func init() {
	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersShowCmd)
	usersCmd.AddCommand(usersSetCmd)
	usersCmd.AddCommand(usersDeleteCmd)
}

// --- history ---

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse the interaction log",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent interactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		interactions, err := store.ListInteractions(limit, 0)
		if err != nil {
			return err
		}
		if len(interactions) == 0 {
			fmt.Println("No interactions found.")
			return nil
		}

		for _, ix := range interactions {
			user := ix.UserID
			if user == "" {
				user = "-"
			}
			fmt.Printf("%s  %s  %-12s  %s\n",
				colorize(colorCyan, ix.ID[:8]),
				ix.CreatedAt.Format("2006-01-02 15:04"),
				user,
				truncate(ix.Query, 80),
			)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single interaction as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		ix, err := store.GetInteraction(args[0])
		if errors.Is(err, history.ErrNotFound) {
			return fmt.Errorf("no interaction %q", args[0])
		}
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ix)
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an interaction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.DeleteInteraction(args[0]); err != nil {
			if errors.Is(err, history.ErrNotFound) {
				return fmt.Errorf("no interaction %q", args[0])
			}
			return err
		}

		printSuccess("Deleted interaction %s", args[0])
		return nil
	},
}

func init() {
	historyListCmd.Flags().Int("limit", 20, "maximum number of interactions to list")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadLocal()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
