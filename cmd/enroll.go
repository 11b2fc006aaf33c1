package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jarvislab/jarvis/internal/config"
	"github.com/jarvislab/jarvis/internal/faceauth"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <folder-path>",
	Short: "Batch-enroll faces from a directory of images",
	Long: `Enroll every image in a directory. The display name is derived from
the file name, so "tony_stark.jpg" enrolls as "tony stark".

By default, only files directly in the directory are enrolled.
Use -r to search recursively in subdirectories.
Supported formats: jpg, jpeg, png, gif, webp, bmp

Example:
  jarvis enroll /path/to/team-photos
  jarvis enroll -r /path/to/team-photos  # recursive search`,
	Args: cobra.ExactArgs(1),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)
	enrollCmd.Flags().BoolP("recursive", "r", false, "Search for images recursively in subdirectories")
}

// isImageFile checks if a file has a supported image extension
func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp":
		return true
	}
	return false
}

// nameFromFile derives a display name from an image file name.
func nameFromFile(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ReplaceAll(base, "_", " ")
	base = strings.ReplaceAll(base, "-", " ")
	return strings.TrimSpace(base)
}

// collectImages lists the image files under dir, optionally recursing.
func collectImages(dir string, recursive bool) ([]string, error) {
	var paths []string
	if recursive {
		err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isImageFile(d.Name()) {
				paths = append(paths, path)
			}
			return nil
		})
		return paths, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if !entry.IsDir() && isImageFile(entry.Name()) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	return paths, nil
}

func runEnroll(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	svc, _, err := buildFaceService(cfg)
	if err != nil {
		return err
	}

	paths, err := collectImages(args[0], mustGetBool(cmd, "recursive"))
	if err != nil {
		return fmt.Errorf("failed to list images: %w", err)
	}
	if len(paths) == 0 {
		fmt.Println("No images found")
		return nil
	}

	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetDescription("Enrolling"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("faces"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)

	ctx := context.Background()
	enrolled := 0
	var failures []string

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", path, err))
			bar.Add(1)
			continue
		}

		_, err = svc.Register(ctx, data, nameFromFile(path))
		if err != nil {
			if faceauth.IsValidationError(err) {
				failures = append(failures, fmt.Sprintf("%s: %v", path, err))
				bar.Add(1)
				continue
			}
			// Backend faults (detector down, disk full) abort the batch.
			fmt.Println()
			return fmt.Errorf("enrolling %s: %w", path, err)
		}
		enrolled++
		bar.Add(1)
	}
	fmt.Println()

	fmt.Printf("Enrolled %d of %d image(s)\n", enrolled, len(paths))
	if len(failures) > 0 {
		fmt.Printf("Failures:\n")
		for _, f := range failures {
			fmt.Printf("  %s\n", f)
		}
	}
	return nil
}
