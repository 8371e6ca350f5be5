package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	a2atype "github.com/a2aproject/a2a-go/a2a"
)

// LoadAgentCard loads the agent card from path. A missing file yields a nil
// card and no error.
func LoadAgentCard(path string) (*a2atype.AgentCard, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read agent card file %s: %w", path, err)
	}

	var card a2atype.AgentCard
	if err := json.Unmarshal(data, &card); err != nil {
		return nil, fmt.Errorf("failed to parse agent card file: %w", err)
	}
	return &card, nil
}

// DefaultAgentCard describes the translator when no card file is provided.
func DefaultAgentCard(url string) *a2atype.AgentCard {
	return &a2atype.AgentCard{
		Name:               "code-translator",
		Description:        "Translates source code between programming languages and returns it as JSON.",
		URL:                url,
		Version:            "1.0.0",
		DefaultInputModes:  []string{"text/plain", "application/json"},
		DefaultOutputModes: []string{"application/json"},
		Skills: []a2atype.AgentSkill{
			{
				ID:          "code_translation",
				Name:        "Code translation",
				Description: `Send {"code_to_translate", "source_language", "target_language"} or plain code; receive {"translated_code": "..."}.`,
				Tags:        []string{"code", "translation"},
				Examples: []string{
					`{"code_to_translate": "print('hello')", "source_language": "Python", "target_language": "Go"}`,
				},
			},
		},
	}
}

// LoadAgentConfigs loads the config and the agent card from configDir.
func LoadAgentConfigs(configDir string) (*Config, *a2atype.AgentCard, error) {
	cfg, err := Load(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	card, err := LoadAgentCard(AgentCardPath(configDir))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load agent card: %w", err)
	}
	return cfg, card, nil
}
