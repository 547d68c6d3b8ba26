package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	configDirName = "keyhub"
	profilesDir   = "profiles"
	stateFile     = "state.json"
)

// Profile represents a saved API connection: where the keyhub API lives
// and the dashboard session token used to call it.
type Profile struct {
	Name    string `json:"name"`
	BaseURL string `json:"base_url"`
	Token   string `json:"token"`
}

// State holds the active profile selection.
type State struct {
	ActiveProfile string `json:"active_profile"`
}

// configDir returns the base config directory (~/.config/keyhub/).
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}

	return filepath.Join(xdgConfig, configDirName), nil
}

// ensureConfigDir creates the config directory structure if needed.
func ensureConfigDir() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Join(dir, profilesDir), 0700); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return dir, nil
}

// SaveProfile stores a profile under ~/.config/keyhub/profiles/<name>.json.
func SaveProfile(name, baseURL, token string) (*Profile, error) {
	dir, err := ensureConfigDir()
	if err != nil {
		return nil, err
	}

	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	name = sanitizeName(name)
	if name == "" {
		return nil, fmt.Errorf("profile name is required")
	}

	profile := &Profile{
		Name:    name,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
	}

	metaPath := filepath.Join(dir, profilesDir, name+".json")
	metaData, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}
	if err := os.WriteFile(metaPath, metaData, 0600); err != nil {
		return nil, fmt.Errorf("write profile: %w", err)
	}

	return profile, nil
}

// ListProfiles returns all saved profiles.
func ListProfiles() ([]Profile, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}

	pDir := filepath.Join(dir, profilesDir)
	entries, err := os.ReadDir(pDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read profiles directory: %w", err)
	}

	var profiles []Profile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(pDir, entry.Name()))
		if err != nil {
			continue
		}
		var p Profile
		if err := json.Unmarshal(data, &p); err != nil {
			continue
		}
		profiles = append(profiles, p)
	}

	return profiles, nil
}

// LoadProfile reads a single profile by name.
func LoadProfile(name string) (*Profile, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, profilesDir, sanitizeName(name)+".json"))
	if err != nil {
		return nil, fmt.Errorf("profile %q not found", name)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %q: %w", name, err)
	}

	return &p, nil
}

// DeleteProfile removes a saved profile.
func DeleteProfile(name string) error {
	dir, err := configDir()
	if err != nil {
		return err
	}

	metaPath := filepath.Join(dir, profilesDir, sanitizeName(name)+".json")
	if err := os.Remove(metaPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("profile %q not found", name)
		}
		return fmt.Errorf("delete profile: %w", err)
	}

	// Clear the active selection if it pointed at this profile.
	if active, _ := GetActive(); active == name {
		_ = SetActive("")
	}

	return nil
}

// SetActive records the active profile in state.json.
func SetActive(name string) error {
	dir, err := ensureConfigDir()
	if err != nil {
		return err
	}

	if name != "" {
		if _, err := LoadProfile(name); err != nil {
			return err
		}
	}

	state := State{ActiveProfile: name}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	return os.WriteFile(filepath.Join(dir, stateFile), data, 0600)
}

// GetActive returns the name of the active profile, or "" if none is set.
func GetActive() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(filepath.Join(dir, stateFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return "", fmt.Errorf("parse state: %w", err)
	}

	return state.ActiveProfile, nil
}

// ActiveProfile loads the currently selected profile.
func ActiveProfile() (*Profile, error) {
	name, err := GetActive()
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("no active profile; run: keyctl login --url <api-url> --token <token>")
	}
	return LoadProfile(name)
}

// sanitizeName keeps profile names filesystem-safe.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
