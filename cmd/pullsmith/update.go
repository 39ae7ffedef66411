package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pullsmith/pullsmith/pkg/pr"
)

var (
	titleFlag     string
	draftFlag     bool
	baseFlag      string
	labelsFlag    []string
	reviewersFlag []string
	filePairsFlag []string
)

// addPRFlags registers the per-PR flags shared by the update commands.
func addPRFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&titleFlag, "title", "", "PR title")
	cmd.Flags().BoolVar(&draftFlag, "draft", false, "Create as draft PR")
	cmd.Flags().StringVar(&baseFlag, "base", "", "Base branch to target")
	cmd.Flags().StringArrayVar(&labelsFlag, "label", nil, "Label to add (repeatable)")
	cmd.Flags().StringArrayVar(&reviewersFlag, "reviewer", nil, "Reviewer to request (repeatable)")
}

// overridesFromFlags builds the per-call overrides from whichever PR flags
// were actually set.
func overridesFromFlags(cmd *cobra.Command) pr.Overrides {
	ov := pr.Overrides{}
	if cmd.Flags().Changed("title") {
		ov["title"] = titleFlag
	}
	if cmd.Flags().Changed("draft") {
		ov["draft"] = draftFlag
	}
	if cmd.Flags().Changed("base") {
		ov["base_branch"] = baseFlag
	}
	if cmd.Flags().Changed("label") {
		ov["labels"] = labelsFlag
	}
	if cmd.Flags().Changed("reviewer") {
		ov["reviewers"] = reviewersFlag
	}
	return ov
}

// splitFilePair parses a --file value of the form "local=upstream".
func splitFilePair(pair string) (local, upstream string, err error) {
	parts := strings.SplitN(pair, "=", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid --file value %q: expected local=upstream", pair)
	}
	return parts[0], parts[1], nil
}

var updateCmd = &cobra.Command{
	Use:   "update REPO FILE [UPSTREAM_PATH]",
	Short: "Create a PR that updates one file from a local file",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, file := args[0], args[1]
		upstreamPath := filepath.Base(file)
		if len(args) == 3 {
			upstreamPath = args[2]
		}

		client, err := newPRClient()
		if err != nil {
			return err
		}

		result, err := client.CreatePRFromFile(cmd.Context(), repo, file, upstreamPath, &pr.CreateOptions{
			Overrides: overridesFromFlags(cmd),
		})
		if err != nil {
			return err
		}

		printResult(result)
		return nil
	},
}

var updateContentCmd = &cobra.Command{
	Use:   "update-content REPO CONTENT PATH",
	Short: "Create a PR that writes the given content to a path",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, content, path := args[0], args[1], args[2]

		client, err := newPRClient()
		if err != nil {
			return err
		}

		result, err := client.CreatePRFromContent(cmd.Context(), repo, content, path, &pr.CreateOptions{
			Overrides: overridesFromFlags(cmd),
		})
		if err != nil {
			return err
		}

		printResult(result)
		return nil
	},
}

var updateFilesCmd = &cobra.Command{
	Use:   "update-files REPO --file local=upstream [--file local=upstream ...]",
	Short: "Create a PR that updates multiple files from local files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo := args[0]
		if len(filePairsFlag) == 0 {
			return fmt.Errorf("at least one --file local=upstream pair is required")
		}

		files := make(map[string]string, len(filePairsFlag))
		for _, pair := range filePairsFlag {
			local, upstream, err := splitFilePair(pair)
			if err != nil {
				return err
			}
			files[local] = upstream
		}

		client, err := newPRClient()
		if err != nil {
			return err
		}

		result, err := client.CreatePRFromFiles(cmd.Context(), repo, files, &pr.CreateOptions{
			Overrides: overridesFromFlags(cmd),
		})
		if err != nil {
			return err
		}

		printResult(result)
		return nil
	},
}

func init() {
	addPRFlags(updateCmd)
	addPRFlags(updateContentCmd)
	addPRFlags(updateFilesCmd)
	updateFilesCmd.Flags().StringArrayVar(&filePairsFlag, "file", nil, "Local file and upstream path as local=upstream (repeatable)")

	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(updateContentCmd)
	rootCmd.AddCommand(updateFilesCmd)
}
