// Command ctx is a thin demonstration front end over internal/app. It
// exercises pack, artifact, render, and snapshot operations from a
// shell; a full CLI surface (flags for every render policy field,
// shell completion, JSON output modes) is not this command's job.
package main

import (
	"context"
	"fmt"
	"os"

	"ctx-go/internal/app"
	"ctx-go/internal/config"
	"ctx-go/internal/ctxmodel"
	"ctx-go/internal/sources"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newApp() (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "ctx",
	Short: "Build reproducible, redacted context payloads from packs of source artifacts",
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("getting defaults: %w", err)
		}

		hostID := uuid.New().String()
		cfg := config.NewConfig(hostID, defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("initializing config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Host ID: %s\n", hostID)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var packCmd = &cobra.Command{
	Use:   "pack",
	Short: "Manage packs",
}

var packCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a pack",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		pack, err := a.CreatePack(context.Background(), args[0], nil)
		if err != nil {
			return err
		}

		fmt.Printf("Created pack %s (id %s)\n", pack.Name, pack.ID)
		return nil
	},
}

var packListCmd = &cobra.Command{
	Use:   "list",
	Short: "List packs",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		packs, err := a.ListPacks(context.Background())
		if err != nil {
			return err
		}

		if len(packs) == 0 {
			fmt.Println("No packs.")
			return nil
		}
		for _, p := range packs {
			fmt.Printf("%s  %-20s  budget=%d\n", p.ID, p.Name, p.Policy.BudgetTokens)
		}
		return nil
	},
}

var packDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a pack",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeletePack(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted pack %s\n", args[0])
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add PACK_ID URI",
	Short: "Add an artifact to a pack",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		priority, _ := cmd.Flags().GetInt("priority")
		exclude, _ := cmd.Flags().GetStringSlice("exclude")
		recursive, _ := cmd.Flags().GetBool("recursive")
		maxFiles, _ := cmd.Flags().GetInt("max-files")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		opts := sources.Options{
			MaxFiles:  maxFiles,
			Exclude:   exclude,
			Recursive: recursive,
		}

		artifact, err := a.AddArtifact(context.Background(), args[0], args[1], opts, priority)
		if err != nil {
			return err
		}

		fmt.Printf("Added artifact %s (%s)\n", artifact.ID, artifact.SourceURI)
		return nil
	},
}

var renderCmd = &cobra.Command{
	Use:   "render PACK_ID",
	Short: "Render a pack to a payload",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		budget, _ := cmd.Flags().GetInt("budget")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		var override *ctxmodel.RenderPolicy
		if budget > 0 {
			pack, err := a.GetPack(context.Background(), args[0])
			if err != nil {
				return err
			}
			policy := pack.Policy
			policy.BudgetTokens = budget
			override = &policy
		}

		result, err := a.Render(context.Background(), args[0], override)
		if err != nil {
			return err
		}

		fmt.Print(result.Payload)
		fmt.Fprintf(os.Stderr, "\n--- %d/%d tokens, %d included, %d excluded, %d redactions ---\n",
			result.TotalTokens, result.BudgetTokens, len(result.Included), len(result.Excluded), len(result.Redactions))
		return nil
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage snapshots",
}

var snapshotCreateCmd = &cobra.Command{
	Use:   "create PACK_ID",
	Short: "Render a pack and pin the result as an immutable snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		snap, err := a.CreateSnapshot(context.Background(), args[0], nil)
		if err != nil {
			return err
		}

		fmt.Printf("Created snapshot %s\n", snap.ID)
		fmt.Printf("  render fingerprint:  %s\n", snap.RenderFingerprint)
		fmt.Printf("  payload fingerprint: %s\n", snap.PayloadFingerprint)
		fmt.Printf("  tokens: %d, artifacts: %d\n", snap.TokenEstimate, len(snap.Items))
		return nil
	},
}

var snapshotListCmd = &cobra.Command{
	Use:   "list PACK_ID",
	Short: "List a pack's snapshots",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		snaps, err := a.ListSnapshotsByPack(context.Background(), args[0])
		if err != nil {
			return err
		}

		if len(snaps) == 0 {
			fmt.Println("No snapshots.")
			return nil
		}
		for _, s := range snaps {
			fmt.Printf("%s  %s  tokens=%d\n", s.ID, s.CreatedAt.Format("2006-01-02 15:04:05"), s.TokenEstimate)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)

	packCmd.AddCommand(packCreateCmd)
	packCmd.AddCommand(packListCmd)
	packCmd.AddCommand(packDeleteCmd)

	addCmd.Flags().IntP("priority", "p", 0, "Artifact priority (higher renders first)")
	addCmd.Flags().StringSlice("exclude", nil, "Substrings to exclude when adding a collection")
	addCmd.Flags().Bool("recursive", false, "Recurse into subdirectories for md_dir: sources")
	addCmd.Flags().Int("max-files", 0, "Maximum files for a collection source (0 = unlimited)")

	renderCmd.Flags().Int("budget", 0, "Override the pack's token budget for this render (0 = use pack default)")

	snapshotCmd.AddCommand(snapshotCreateCmd)
	snapshotCmd.AddCommand(snapshotListCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(packCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(snapshotCmd)
}
