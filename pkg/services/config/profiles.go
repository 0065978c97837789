package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

const profilesFile = ".reportscfg"

// Profile is one named document store connection
type Profile struct {
	Name        string
	URI         string
	Database    string
	LogDatabase string
}

type Registry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetProfile(ctx context.Context, profile string) (*Profile, error)
}

type cfgRegistry struct {
	cfg *ini.File
}

func DefaultProfilesPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return profilesFile
	}
	return filepath.Join(home, profilesFile)
}

func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return &cfgRegistry{cfg: cfg}, nil
}

func (cr *cfgRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

func (cr *cfgRegistry) GetProfile(_ context.Context, profile string) (*Profile, error) {
	section, err := cr.cfg.GetSection(profile)
	if err != nil {
		return nil, fmt.Errorf("profile %s not found", profile)
	}

	uri := section.Key("uri").String()
	if uri == "" {
		return nil, fmt.Errorf("profile %s: uri is required", profile)
	}
	database := section.Key("database").String()
	if database == "" {
		return nil, fmt.Errorf("profile %s: database is required", profile)
	}

	return &Profile{
		Name:        profile,
		URI:         uri,
		Database:    database,
		LogDatabase: section.Key("log_database").MustString(database),
	}, nil
}
