package usecase

import (
	"context"

	"github.com/upfyn/upfyn-agents/internal/domain"
)

// InitConfigInput contains the input for the InitConfig use case.
type InitConfigInput struct {
	Global bool // If true, initialize global config; otherwise project config
}

// InitConfigOutput contains the output of the InitConfig use case.
type InitConfigOutput struct {
	Path string // Path to the created config file
}

// InitConfig writes a configuration file. Existing files are never overwritten.
type InitConfig struct {
	manager domain.ConfigManager
}

// NewInitConfig creates a new InitConfig use case.
func NewInitConfig(manager domain.ConfigManager) *InitConfig {
	return &InitConfig{manager: manager}
}

// Execute creates the file, failing with domain.ErrConfigExists if it is present.
func (uc *InitConfig) Execute(_ context.Context, in InitConfigInput) (*InitConfigOutput, error) {
	create := uc.manager.InitProjectConfig
	if in.Global {
		create = uc.manager.InitGlobalConfig
	}
	path, err := create()
	if err != nil {
		return nil, err
	}
	return &InitConfigOutput{Path: path}, nil
}
