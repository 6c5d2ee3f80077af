package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-forumview/pkg/forum"
	"github.com/goliatone/go-forumview/pkg/screens"
)

// fixture is the screen data file: whatever the rendered screens read from
// their data bag.
type fixture struct {
	Category *forum.Category `yaml:"category"`
	Topic    *forum.Topic    `yaml:"topic"`
	Topics   []forum.Topic   `yaml:"topics"`
	Messages []forum.Message `yaml:"messages"`
	Query    string          `yaml:"query"`
	Results  []forum.Message `yaml:"results"`
}

func loadFixture(path string) (map[string]any, error) {
	data := map[string]any{}
	if path == "" {
		return data, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	var f fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}

	if f.Category != nil {
		data[screens.KeyCategory] = *f.Category
	}
	if f.Topic != nil {
		data[screens.KeyTopic] = *f.Topic
	}
	if f.Topics != nil {
		data[screens.KeyTopics] = f.Topics
	}
	if f.Messages != nil {
		data[screens.KeyMessages] = f.Messages
	}
	if f.Query != "" {
		data[screens.KeyQuery] = f.Query
	}
	if f.Results != nil {
		data[screens.KeyResults] = f.Results
	}
	return data, nil
}
