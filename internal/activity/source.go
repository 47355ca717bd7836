package activity

import (
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Source lists the most recent activities for a user, newest first.
type Source interface {
	List(ctx context.Context, userID string, limit int) ([]Activity, error)
}

//go:embed fixtures/feed.yaml
var defaultFeed []byte

type feedFile struct {
	Activities []Activity `yaml:"activities"`
}

// StaticSource serves a fixed feed, the same for every user.
type StaticSource struct {
	activities []Activity
}

// NewStaticSource parses a YAML feed document. Nil data loads the built-in demo feed.
func NewStaticSource(data []byte) (*StaticSource, error) {
	if data == nil {
		data = defaultFeed
	}
	var f feedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse activity feed: %w", err)
	}
	for i, a := range f.Activities {
		if a.ID == "" {
			return nil, fmt.Errorf("parse activity feed: entry %d has no id", i)
		}
	}
	return &StaticSource{activities: f.Activities}, nil
}

func (s *StaticSource) List(_ context.Context, _ string, limit int) ([]Activity, error) {
	n := len(s.activities)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Activity, n)
	copy(out, s.activities[:n])
	return out, nil
}
