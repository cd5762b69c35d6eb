// Package prompts renders the evaluator and generator prompts from the
// embedded catalog.
package prompts

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"
)

type PromptName string

const (
	PromptEvaluateStandard  PromptName = "evaluate_standard"
	PromptEvaluateLanguage  PromptName = "evaluate_language"
	PromptGenerateQuestions PromptName = "generate_questions"
	PromptQuizTitle         PromptName = "quiz_title"
)

// Input carries every field a prompt may reference. Missing fields render
// empty.
type Input struct {
	Question        string
	ReferenceAnswer string
	Answer          string
	Language        string
	PageNumber      int
	OCRText         string
	QuestionsList   string
}

type Prompt struct {
	Name    string
	Version int
	System  string
	User    string
}

//go:embed prompts.yaml
var catalogYAML []byte

type catalogFile struct {
	Prompts map[string]struct {
		Version int    `yaml:"version"`
		System  string `yaml:"system"`
		User    string `yaml:"user"`
	} `yaml:"prompts"`
}

type compiled struct {
	version int
	system  *template.Template
	user    *template.Template
}

var (
	loadOnce sync.Once
	registry map[PromptName]compiled
	loadErr  error
)

func parseCatalog(raw []byte) (map[PromptName]compiled, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse prompt catalog: %w", err)
	}
	out := make(map[PromptName]compiled, len(file.Prompts))
	for name, p := range file.Prompts {
		if p.Version <= 0 {
			return nil, fmt.Errorf("invalid version for %s", name)
		}
		sys, err := template.New(name + ".system").Option("missingkey=zero").Parse(p.System)
		if err != nil {
			return nil, fmt.Errorf("%s system template parse: %w", name, err)
		}
		usr, err := template.New(name + ".user").Option("missingkey=zero").Parse(p.User)
		if err != nil {
			return nil, fmt.Errorf("%s user template parse: %w", name, err)
		}
		out[PromptName(name)] = compiled{version: p.Version, system: sys, user: usr}
	}
	return out, nil
}

func load() (map[PromptName]compiled, error) {
	loadOnce.Do(func() {
		registry, loadErr = parseCatalog(catalogYAML)
	})
	return registry, loadErr
}

// Build renders the named prompt.
func Build(name PromptName, in Input) (Prompt, error) {
	reg, err := load()
	if err != nil {
		return Prompt{}, err
	}
	t, ok := reg[name]
	if !ok {
		return Prompt{}, fmt.Errorf("unknown prompt: %s", name)
	}
	system, err := render(t.system, in)
	if err != nil {
		return Prompt{}, fmt.Errorf("%s: %w", name, err)
	}
	user, err := render(t.user, in)
	if err != nil {
		return Prompt{}, fmt.Errorf("%s: %w", name, err)
	}
	return Prompt{Name: string(name), Version: t.version, System: system, User: user}, nil
}

func render(t *template.Template, in Input) (string, error) {
	var b bytes.Buffer
	if err := t.Execute(&b, in); err != nil {
		return "", err
	}
	return strings.TrimSpace(b.String()), nil
}
