package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"sync"

	"github.com/dpshade/prompt-vault/internal/models"
)

// cachedDefinition is a resolved template plus the hash of the prompt.toml it came from
type cachedDefinition struct {
	template *models.ResolvedTemplate
	fileHash string
}

// DefinitionCache keeps resolved templates in memory so repeated lookups skip TOML
// decoding and schema validation. An entry is reused only while the file hash matches.
type DefinitionCache struct {
	mu      sync.RWMutex
	entries map[string]*cachedDefinition
}

// NewDefinitionCache creates an empty cache
func NewDefinitionCache() *DefinitionCache {
	return &DefinitionCache{entries: make(map[string]*cachedDefinition)}
}

// Get resolves the template in templateDir, from the cache when prompt.toml is unchanged.
// Errors are never cached.
func (c *DefinitionCache) Get(templateDir string) (*models.ResolvedTemplate, error) {
	data, err := os.ReadFile(definitionPath(templateDir))
	if err != nil {
		c.Invalidate(templateDir)
		return ReadDefinition(templateDir)
	}
	hash := hashBytes(data)

	c.mu.RLock()
	cached, ok := c.entries[templateDir]
	c.mu.RUnlock()
	if ok && cached.fileHash == hash {
		return cached.template, nil
	}

	tpl, err := ReadDefinition(templateDir)
	if err != nil {
		c.Invalidate(templateDir)
		return nil, err
	}

	c.mu.Lock()
	c.entries[templateDir] = &cachedDefinition{template: tpl, fileHash: hash}
	c.mu.Unlock()
	return tpl, nil
}

// Invalidate drops the entry for templateDir
func (c *DefinitionCache) Invalidate(templateDir string) {
	c.mu.Lock()
	delete(c.entries, templateDir)
	c.mu.Unlock()
}

// Cleanup removes entries for templates that are no longer in the vault
func (c *DefinitionCache) Cleanup(existing []models.TemplateInfo) {
	keep := make(map[string]bool, len(existing))
	for _, t := range existing {
		keep[t.Path] = true
	}
	c.mu.Lock()
	for dir := range c.entries {
		if !keep[dir] {
			delete(c.entries, dir)
		}
	}
	c.mu.Unlock()
}

// Len reports the number of cached templates
func (c *DefinitionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
