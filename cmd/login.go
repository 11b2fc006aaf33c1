package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/jarvislab/jarvis/internal/config"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login <image>",
	Short: "Match a face against the registered users",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	svc, _, err := buildFaceService(cfg)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	creds, err := svc.Login(context.Background(), data)
	if err != nil {
		return err
	}

	fmt.Printf("Welcome back, %s\n", creds.Name)
	fmt.Printf("  User ID: %s\n", creds.UserID)
	fmt.Printf("  Token:   %s\n", creds.Token)
	return nil
}
