package cmd

import (
	"fmt"

	"github.com/jarvislab/jarvis/internal/config"
	"github.com/jarvislab/jarvis/internal/registry"
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users [query]",
	Short: "List registered users",
	Long: `List the registered users in enrollment order. An optional query
filters by name, ignoring case and diacritics.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUsers,
}

func init() {
	rootCmd.AddCommand(usersCmd)
}

func runUsers(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	reg, err := registry.Open(cfg.Data.Dir)
	if err != nil {
		return fmt.Errorf("failed to open user registry: %w", err)
	}

	var users []registry.UserRecord
	if len(args) == 1 {
		users, err = reg.FindByName(args[0])
	} else {
		users, err = reg.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}

	if len(users) == 0 {
		fmt.Println("No users found")
		return nil
	}

	for _, u := range users {
		status := "confirmed"
		if !u.Confirmed {
			status = "pending"
		}
		fmt.Printf("%s  %-20s %-9s %s\n",
			u.UserID, u.Name, status, u.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Printf("\n%d user(s)\n", len(users))
	return nil
}
