// Command pullsmith creates GitHub pull requests from file changes:
// point it at a repository and a set of files and it handles the branch,
// commits, and PR for you.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pullsmith/pullsmith/pkg/config"
	"github.com/pullsmith/pullsmith/pkg/log"
	"github.com/pullsmith/pullsmith/pkg/pr"
)

var (
	tokenFlag    string
	baseURLFlag  string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:           "pullsmith",
	Short:         "pullsmith automates GitHub pull request creation",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logLevelFlag != "" {
			log.SetLevel(logLevelFlag)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", os.Getenv("GITHUB_TOKEN"), "GitHub token (defaults to GITHUB_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&baseURLFlag, "base-url", "", "GitHub API base URL (enterprise deployments)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")
}

// newPRClient builds the PR client from flags and project config.
func newPRClient() (*pr.Client, error) {
	if tokenFlag == "" {
		return nil, fmt.Errorf("a GitHub token is required: pass --token or set GITHUB_TOKEN")
	}

	projectCfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return nil, err
	}
	if logLevelFlag == "" && projectCfg.LogLevel != "" {
		log.SetLevel(projectCfg.LogLevel)
	}

	baseURL := baseURLFlag
	if baseURL == "" {
		baseURL = projectCfg.BaseURL
	}

	return pr.New(pr.Settings{
		Token:             tokenFlag,
		BaseURL:           baseURL,
		AppName:           projectCfg.AppName,
		CommitAuthorName:  projectCfg.Git.AuthorName,
		CommitAuthorEmail: projectCfg.Git.AuthorEmail,
		Defaults:          defaultsFromConfig(projectCfg.Defaults),
	})
}

// defaultsFromConfig maps project-config defaults onto the PR config type.
func defaultsFromConfig(d config.PRDefaults) pr.Config {
	return pr.Config{
		BaseBranch:          d.BaseBranch,
		Draft:               d.Draft,
		Labels:              d.Labels,
		Reviewers:           d.Reviewers,
		TeamReviewers:       d.TeamReviewers,
		MergeStrategy:       pr.MergeStrategy(d.MergeStrategy),
		AutoMerge:           d.AutoMerge,
		DeleteBranchOnMerge: d.DeleteBranchOnMerge,
	}
}

// printResult reports the created PR and any metadata warnings.
func printResult(result *pr.Result) {
	for _, warning := range result.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
	}
	fmt.Printf("Created PR: %s\n", result.URL)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
