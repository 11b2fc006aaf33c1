package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/jarvislab/jarvis/internal/config"
	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register <image>",
	Short: "Enroll a face from an image file",
	Long: `Enroll a face in one shot: detect, check for duplicates and store
the face with an optional display name. Prints the issued credentials.`,
	Args: cobra.ExactArgs(1),
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)
	registerCmd.Flags().String("name", "", "Display name for the new user")
}

func runRegister(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	svc, _, err := buildFaceService(cfg)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	creds, err := svc.Register(context.Background(), data, mustGetString(cmd, "name"))
	if err != nil {
		return err
	}

	fmt.Printf("Registered %s\n", creds.Name)
	fmt.Printf("  User ID: %s\n", creds.UserID)
	fmt.Printf("  Token:   %s\n", creds.Token)
	return nil
}
