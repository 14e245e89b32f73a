package wallet

import (
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// PrefsData is the small persisted local state: a wallet-type marker and the
// last-connected address. Cache only, never authoritative; an unreadable or
// unparsable file is treated as absent.
type PrefsData struct {
	WalletType  string `json:"wallet_type"`
	LastAddress string `json:"last_address"`
}

// Prefs reads and writes the prefs file.
type Prefs struct {
	path   string
	logger *zap.Logger
}

// NewPrefs creates a prefs store at the given path. An empty path resolves
// under the user config dir.
func NewPrefs(path string, logger *zap.Logger) *Prefs {
	if path == "" {
		if configDir, err := os.UserConfigDir(); err == nil {
			path = filepath.Join(configDir, "hathor-dice", "prefs.json")
		}
	}

	return &Prefs{path: path, logger: logger}
}

// Load reads the persisted prefs. Returns zero data on any failure.
func (p *Prefs) Load() *PrefsData {
	data := &PrefsData{}

	if p.path == "" {
		return data
	}

	raw, err := os.ReadFile(p.path)
	if err != nil {
		return data
	}

	err = json.Unmarshal(raw, data)
	if err != nil {
		p.logger.Debug("prefs-unparsable", zap.Error(err))
		return &PrefsData{}
	}

	return data
}

// Save persists the prefs, replacing the previous file wholesale. Failures
// are logged and swallowed: prefs are an optimization, not state.
func (p *Prefs) Save(data *PrefsData) {
	if p.path == "" {
		return
	}

	raw, err := json.Marshal(data)
	if err != nil {
		p.logger.Warn("prefs-marshal-failed", zap.Error(err))
		return
	}

	err = os.MkdirAll(filepath.Dir(p.path), 0o755)
	if err != nil {
		p.logger.Warn("prefs-mkdir-failed", zap.Error(err))
		return
	}

	err = os.WriteFile(p.path, raw, 0o600)
	if err != nil {
		p.logger.Warn("prefs-write-failed", zap.Error(err))
	}
}
