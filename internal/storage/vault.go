package storage

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/dpshade/prompt-vault/internal/errors"
	"github.com/dpshade/prompt-vault/internal/models"
)

// ScanVaultDirectory lists the immediate subdirectories of vaultPath sorted by name.
// Files at the vault root are ignored. A subdirectory without prompt.toml is still
// listed, with HasToml false.
func ScanVaultDirectory(vaultPath string) ([]models.TemplateInfo, error) {
	entries, err := os.ReadDir(vaultPath)
	if err != nil {
		return nil, vaultError(vaultPath, err)
	}

	templates := make([]models.TemplateInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(vaultPath, entry.Name())
		templates = append(templates, models.TemplateInfo{
			Name:    entry.Name(),
			Path:    dir,
			HasToml: isRegularFile(definitionPath(dir)),
		})
	}

	sort.Slice(templates, func(i, j int) bool {
		return templates[i].Name < templates[j].Name
	})
	return templates, nil
}

// ValidateVaultStructure checks that vaultPath is a readable directory. An empty vault
// is reported as a warning, not an error.
func ValidateVaultStructure(vaultPath string) ([]errors.Warning, error) {
	info, err := os.Stat(vaultPath)
	if err != nil {
		return nil, vaultError(vaultPath, err)
	}
	if !info.IsDir() {
		return nil, errors.VaultNotDirectory(vaultPath)
	}

	entries, err := os.ReadDir(vaultPath)
	if err != nil {
		return nil, errors.VaultAccessDenied(vaultPath, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			return nil, nil
		}
	}
	return []errors.Warning{errors.VaultEmpty(vaultPath)}, nil
}

func vaultError(vaultPath string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return errors.VaultNotFound(vaultPath)
	case errors.Is(err, syscall.ENOTDIR):
		return errors.VaultNotDirectory(vaultPath)
	default:
		return errors.VaultAccessDenied(vaultPath, err)
	}
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
