package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/jarvislab/jarvis/internal/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <image>",
	Short: "Check whether an image is suitable for enrollment",
	Long: `Run the enrollment validation on an image file: exactly one face,
reasonable angle and size, optionally sharp enough. Nothing is stored.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	svc, _, err := buildFaceService(cfg)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	result, err := svc.Validate(context.Background(), data)
	if err != nil {
		return err
	}

	if result.Valid {
		fmt.Printf("OK: %s\n", result.Message)
		if result.FaceInfo != nil {
			fmt.Printf("  Face: %dx%d at (%d, %d)\n",
				result.FaceInfo.Width, result.FaceInfo.Height, result.FaceInfo.X, result.FaceInfo.Y)
		}
		if result.AlreadyRegistered {
			fmt.Printf("  Note: face already registered as '%s'\n", result.ExistingName)
		}
	} else {
		fmt.Printf("REJECTED: %s\n", result.Message)
	}
	return nil
}
