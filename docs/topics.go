// Package docs holds the documentation topics of idx, shown by "idx topic" and given to the
// assistant.
package docs

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed *.md
var docs embed.FS

// All is the topic that expands to every topic.
const All = "*"

// GetTopic returns the content of a documentation topic.
func GetTopic(topic string) (string, error) {
	if topic == All {
		return GetTopics(All)
	}
	content, err := docs.ReadFile(topic + ".md")
	if err != nil {
		return "", fmt.Errorf("topic %q not found: %w", topic, err)
	}
	return string(content), nil
}

// GetTopics returns the content of topics, one after the other.
func GetTopics(topics ...string) (string, error) {
	var b bytes.Buffer
	for _, topic := range topics {
		names := []string{topic}
		if topic == All {
			var err error
			if names, err = GetAllTopics(); err != nil {
				return "", err
			}
		}
		for _, name := range names {
			content, err := GetTopic(name)
			if err != nil {
				return "", err
			}
			b.WriteString(content)
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

// GetAllTopics returns the names of all topics but the readme, sorted.
func GetAllTopics() ([]string, error) {
	entries, err := fs.ReadDir(docs, ".")
	if err != nil {
		return nil, err
	}
	var topics []string
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), path.Ext(e.Name()))
		if e.IsDir() || name == "readme" {
			continue
		}
		topics = append(topics, name)
	}
	sort.Strings(topics)
	return topics, nil
}
