package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

const deployersKey = "blacklisted_deployers"

// BlacklistFile persists deployer blacklist additions into a config file.
// Each append is a read-modify-write of the whole file, replaced atomically.
type BlacklistFile struct {
	path string
	mu   sync.Mutex
}

func NewBlacklistFile(path string) *BlacklistFile {
	return &BlacklistFile{path: path}
}

// Path returns the config file being updated.
func (b *BlacklistFile) Path() string {
	return b.path
}

// AppendDeployer adds addr to blacklisted_deployers unless an entry that
// matches case-insensitively is already present. A missing file is created.
func (b *BlacklistFile) AppendDeployer(addr string) error {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return fmt.Errorf("empty deployer address")
	}
	if b.path == "" {
		return fmt.Errorf("no config file for blacklist updates")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	v := viper.New()
	v.SetConfigFile(b.path)
	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	existing := getStringSlice(v, deployersKey)
	for _, entry := range existing {
		if strings.EqualFold(entry, addr) {
			return nil
		}
	}
	v.Set(deployersKey, append(existing, addr))

	dir := filepath.Dir(b.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}

	ext := filepath.Ext(b.path)
	tmpPath := strings.TrimSuffix(b.path, ext) + ".tmp" + ext
	if err := v.WriteConfigAs(tmpPath); err != nil {
		return fmt.Errorf("write config tmp: %w", err)
	}
	if err := os.Rename(tmpPath, b.path); err != nil {
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}
