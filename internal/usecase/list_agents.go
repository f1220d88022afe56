package usecase

import (
	"context"

	"github.com/upfyn/upfyn-agents/internal/domain"
)

// ListAgentsOutput contains the agent catalogue.
type ListAgentsOutput struct {
	Default string
	Agents  []domain.AgentStatus
}

// ListAgents reports which catalogue agents are installed.
type ListAgents struct {
	locator domain.AgentLocator
	config  domain.ConfigLoader
}

// NewListAgents creates a new ListAgents use case.
func NewListAgents(locator domain.AgentLocator, config domain.ConfigLoader) *ListAgents {
	return &ListAgents{locator: locator, config: config}
}

// Execute lists the agents in catalogue order.
func (uc *ListAgents) Execute(_ context.Context) (*ListAgentsOutput, error) {
	out := &ListAgentsOutput{Default: domain.DefaultAgentName}
	if settings, err := uc.config.Load(); err == nil {
		out.Default = settings.DefaultAgent
	}
	for _, a := range domain.KnownAgents() {
		out.Agents = append(out.Agents, domain.AgentStatus{
			Agent:     a,
			Available: uc.locator.IsAvailable(a.Command),
		})
	}
	return out, nil
}
