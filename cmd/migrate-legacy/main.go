// Command migrate-legacy rewrites prompt.toml files still in the single [prompt] table
// layout into the versioned [metadata] + [[prompts]] layout.
package main

import (
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/dpshade/prompt-vault/internal/config"
	"github.com/dpshade/prompt-vault/internal/models"
	"github.com/dpshade/prompt-vault/internal/storage"
)

func main() {
	if err := newCommand().Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var vault string
	var yes bool

	cmd := &cobra.Command{
		Use:          "migrate-legacy",
		Short:        "Convert legacy prompt.toml files to the versioned layout",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if vault == "" {
				v, err := config.New("")
				if err != nil {
					return err
				}
				cfg, err := config.Load(v)
				if err != nil {
					return err
				}
				vault = cfg.Vault
			}
			return migrate(vault, yes)
		},
	}
	cmd.Flags().StringVar(&vault, "vault", "", "Vault directory path [default: from config]")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Migrate without asking")
	return cmd
}

func migrate(vault string, yes bool) error {
	templates, err := storage.ScanVaultDirectory(vault)
	if err != nil {
		return err
	}

	var needMigration []string
	for _, t := range templates {
		if !t.HasToml {
			continue
		}
		legacy, err := storage.IsLegacyDefinition(t.Path)
		if err != nil {
			pterm.Warning.Printfln("Skipping %s: %v", t.Name, err)
			continue
		}
		if legacy {
			needMigration = append(needMigration, t.Path)
		}
	}

	if len(needMigration) == 0 {
		pterm.Info.Println("No legacy templates found - migration not needed")
		return nil
	}

	pterm.Info.Printfln("Found %d legacy templates:", len(needMigration))
	for _, dir := range needMigration {
		pterm.Println("  - " + filepath.Base(dir))
	}

	if !yes {
		ok, err := pterm.DefaultInteractiveConfirm.Show("Proceed with migration?")
		if err != nil {
			return err
		}
		if !ok {
			pterm.Info.Println("Migration cancelled")
			return nil
		}
	}

	migrated := 0
	for _, dir := range needMigration {
		changed, err := storage.MigrateLegacy(dir)
		if err != nil {
			pterm.Error.Printfln("Failed to migrate %s: %v", filepath.Base(dir), err)
			continue
		}
		if changed {
			pterm.Success.Printfln("Migrated %s (backup kept as %s%s)", filepath.Base(dir), models.DefinitionFile, storage.LegacyBackupSuffix)
			migrated++
		}
	}

	pterm.Info.Printfln("Migration complete: %d of %d templates migrated", migrated, len(needMigration))
	return nil
}
