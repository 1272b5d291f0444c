// Package settings persists the editor's settings document as JSON.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/TFMV/fsview/internal/fserr"
	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// FileName is the settings document name inside the store directory.
const FileName = "settings.json"

// AppName names the per-user config subdirectory.
const AppName = "fsview"

// Settings is the user settings document.
type Settings struct {
	// Theme
	ThemeMode       string `json:"themeMode"`
	SelectedThemeID string `json:"selectedThemeId"`

	// Editor
	FontSize         uint32  `json:"fontSize"`
	FontFamily       string  `json:"fontFamily"`
	LineHeight       float64 `json:"lineHeight"`
	AutoSave         bool    `json:"autoSave"`
	AutoSaveInterval uint32  `json:"autoSaveInterval"`
	SpellCheck       bool    `json:"spellCheck"`
	ShowLineNumbers  bool    `json:"showLineNumbers"`

	// UI
	SidebarVisible        bool    `json:"sidebarVisible"`
	SidebarWidth          uint32  `json:"sidebarWidth"`
	OutlineVisible        bool    `json:"outlineVisible"`
	OutlineWidth          uint32  `json:"outlineWidth"`
	FocusMode             bool    `json:"focusMode"`
	TypewriterMode        bool    `json:"typewriterMode"`
	ParagraphFocus        bool    `json:"paragraphFocus"`
	ParagraphFocusOpacity float64 `json:"paragraphFocusOpacity"`

	// Images
	ImageStorageLocation string `json:"imageStorageLocation"`
	ImageNamingRule      string `json:"imageNamingRule"`
	ImageAssetsFolder    string `json:"imageAssetsFolder"`
}

// Default returns the settings used when no document has been saved.
func Default() Settings {
	return Settings{
		ThemeMode:             "system",
		FontSize:              16,
		FontFamily:            "system-ui, -apple-system, sans-serif",
		LineHeight:            1.6,
		AutoSave:              true,
		AutoSaveInterval:      30000,
		SidebarVisible:        true,
		SidebarWidth:          250,
		OutlineVisible:        true,
		OutlineWidth:          200,
		ParagraphFocusOpacity: 0.3,
		ImageStorageLocation:  "relative",
		ImageNamingRule:       "timestamp",
		ImageAssetsFolder:     "assets",
	}
}

// DefaultDir returns the per-user settings directory.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("error locating user config dir: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// Store reads and writes the settings document in one directory.
// Saves are serialized.
type Store struct {
	dir    string
	logger *zap.Logger
	mu     sync.Mutex
}

// NewStore returns a Store rooted at dir. An empty dir selects DefaultDir.
func NewStore(dir string, logger *zap.Logger) (*Store, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Path returns the settings file path, creating the directory if needed.
func (s *Store) Path() (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fserr.FromOS("settings", s.dir, err)
	}
	return filepath.Join(s.dir, FileName), nil
}

// Load returns the saved settings, or Default when none were saved.
// Fields missing from the document keep their default values.
func (s *Store) Load() (Settings, error) {
	path, err := s.Path()
	if err != nil {
		return Settings{}, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Settings{}, fserr.FromOS("load settings", path, err)
	}

	settings := Default()
	if err := sonic.ConfigStd.Unmarshal(data, &settings); err != nil {
		return Settings{}, fserr.InvalidInput("load settings", path, fmt.Sprintf("failed to parse settings: %v", err))
	}
	return settings, nil
}

// Save writes settings as indented JSON. The file is replaced atomically.
func (s *Store) Save(settings Settings) error {
	path, err := s.Path()
	if err != nil {
		return err
	}
	data, err := sonic.ConfigStd.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, FileName+".*")
	if err != nil {
		return fserr.FromOS("save settings", path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fserr.IO("save settings", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fserr.IO("save settings", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fserr.IO("save settings", path, err)
	}
	s.logger.Debug("settings saved", zap.String("path", path))
	return nil
}
