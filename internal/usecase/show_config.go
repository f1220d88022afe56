package usecase

import (
	"context"
	"fmt"

	"github.com/upfyn/upfyn-agents/internal/domain"
)

// ShowConfigOutput contains the effective settings and the files they came from.
type ShowConfigOutput struct {
	Settings      *domain.Settings
	GlobalConfig  domain.ConfigInfo
	ProjectConfig domain.ConfigInfo
}

// ShowConfig displays configuration file information and the merged settings.
type ShowConfig struct {
	loader  domain.ConfigLoader
	manager domain.ConfigManager
}

// NewShowConfig creates a new ShowConfig use case.
func NewShowConfig(loader domain.ConfigLoader, manager domain.ConfigManager) *ShowConfig {
	return &ShowConfig{loader: loader, manager: manager}
}

// Execute loads the settings. Malformed config files are reported as errors.
func (uc *ShowConfig) Execute(_ context.Context) (*ShowConfigOutput, error) {
	settings, err := uc.loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &ShowConfigOutput{
		Settings:      settings,
		GlobalConfig:  uc.manager.GlobalConfigInfo(),
		ProjectConfig: uc.manager.ProjectConfigInfo(),
	}, nil
}
