package domain

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// TaskDraft represents a task to be created from file input.
type TaskDraft struct {
	Title       string `yaml:"title"`
	Agent       string `yaml:"agent"`
	Description string `yaml:"-"`
}

// frontmatterKey matches the first line of a frontmatter block ("title: ...").
var frontmatterKey = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*:`)

// ParseTaskDrafts parses a markdown file containing one or more task definitions.
//
// Format:
//
//	---
//	title: Fix login bug
//	agent: aider
//	---
//	Description in markdown.
//
//	---
//	title: Second task
//	---
//	Another description.
//
// A "---" line inside a description only starts a new task when the next
// line looks like a frontmatter key.
func ParseTaskDrafts(content string) ([]TaskDraft, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyFile
	}

	blocks := splitTaskBlocks(strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n"))
	if len(blocks) == 0 {
		return nil, ErrNoTasksInFile
	}

	drafts := make([]TaskDraft, 0, len(blocks))
	for i, b := range blocks {
		var d TaskDraft
		if err := yaml.Unmarshal([]byte(b.front), &d); err != nil {
			return nil, fmt.Errorf("task %d: parse frontmatter: %w", i+1, err)
		}
		d.Title = strings.TrimSpace(d.Title)
		if d.Title == "" {
			return nil, fmt.Errorf("task %d: %w", i+1, ErrEmptyTitle)
		}
		d.Agent = strings.TrimSpace(d.Agent)
		d.Description = strings.TrimSpace(b.body)
		drafts = append(drafts, d)
	}
	return drafts, nil
}

type taskBlock struct {
	front string
	body  string
}

func splitTaskBlocks(lines []string) []taskBlock {
	var (
		blocks  []taskBlock
		front   []string
		body    []string
		inFront bool
		started bool
	)
	flush := func() {
		if started {
			blocks = append(blocks, taskBlock{
				front: strings.Join(front, "\n"),
				body:  strings.Join(body, "\n"),
			})
		}
		front, body = nil, nil
	}

	for i, line := range lines {
		if strings.TrimSpace(line) == "---" {
			switch {
			case inFront:
				inFront = false
				continue
			case i+1 < len(lines) && frontmatterKey.MatchString(lines[i+1]):
				flush()
				started = true
				inFront = true
				continue
			}
		}
		switch {
		case inFront:
			front = append(front, line)
		case started:
			body = append(body, line)
		}
	}
	flush()
	return blocks
}
