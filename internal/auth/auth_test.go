package auth

import (
	"testing"

	"github.com/verisight-ai/verisight/internal/config"
)

func TestNewFromConfig_LookupAndOpen(t *testing.T) {
	cfg := &config.Config{
		Projects: []config.ProjectConfig{
			{ID: "newsroom", APIKeys: []string{"vk-aaa", "vk-bbb"}},
			{ID: "forensics", APIKeys: []string{"vk-ccc"}},
		},
	}

	a, err := NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if a.Open() {
		t.Fatalf("auth should not be open with configured projects")
	}

	p, ok := a.Lookup("vk-bbb")
	if !ok || p.ID != "newsroom" {
		t.Fatalf("expected newsroom for vk-bbb, got %+v ok=%v", p, ok)
	}
	if _, ok := a.Lookup("vk-unknown"); ok {
		t.Fatalf("unknown key should not resolve")
	}
}

func TestNewFromConfig_RejectsDuplicateKey(t *testing.T) {
	cfg := &config.Config{
		Projects: []config.ProjectConfig{
			{ID: "a", APIKeys: []string{"vk-shared"}},
			{ID: "b", APIKeys: []string{"vk-shared"}},
		},
	}
	if _, err := NewFromConfig(cfg); err == nil {
		t.Fatalf("expected error for key assigned to two projects")
	}
}

func TestNewFromConfig_NoProjectsIsOpen(t *testing.T) {
	a, err := NewFromConfig(&config.Config{})
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if !a.Open() {
		t.Fatalf("empty project list should leave the service open")
	}
}
