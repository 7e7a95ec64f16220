package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"path/filepath"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed templates/*.yaml
var templateFS embed.FS

type TemplateName string

const (
	TemplateLibraryName TemplateName = "library_name.yaml"
)

// promptFile is the on-disk layout of a prompt template.
type promptFile struct {
	Name            string  `yaml:"name"`
	Description     string  `yaml:"description"`
	Temperature     float32 `yaml:"temperature"`
	MaxOutputTokens int     `yaml:"max_output_tokens"`
	Template        string  `yaml:"template"`
}

type compiledPrompt struct {
	settings Settings
	tmpl     *template.Template
}

// Settings are the sampling parameters declared next to a template.
type Settings struct {
	Temperature     float32
	MaxOutputTokens int
}

// Rendered is a prompt ready to send, with its declared settings.
type Rendered struct {
	Text     string
	Settings Settings
}

type PromptBuilder struct {
	mu        sync.RWMutex
	fs        embed.FS
	templates map[TemplateName]*compiledPrompt
}

var (
	defaultBuilderOnce sync.Once
	defaultBuilder     *PromptBuilder
)

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{
		fs:        templateFS,
		templates: make(map[TemplateName]*compiledPrompt),
	}
}

func DefaultPromptBuilder() *PromptBuilder {
	defaultBuilderOnce.Do(func() {
		defaultBuilder = NewPromptBuilder()
	})
	return defaultBuilder
}

func (pb *PromptBuilder) Render(name TemplateName, data any) (Rendered, error) {
	compiled, err := pb.getTemplate(name)
	if err != nil {
		return Rendered{}, err
	}

	var buf bytes.Buffer
	if err := compiled.tmpl.Execute(&buf, data); err != nil {
		return Rendered{}, fmt.Errorf("render prompt %s: %w", name, err)
	}

	return Rendered{Text: buf.String(), Settings: compiled.settings}, nil
}

func (pb *PromptBuilder) getTemplate(name TemplateName) (*compiledPrompt, error) {
	pb.mu.RLock()
	if compiled, ok := pb.templates[name]; ok {
		pb.mu.RUnlock()
		return compiled, nil
	}
	pb.mu.RUnlock()

	filename := filepath.ToSlash(filepath.Join("templates", string(name)))
	content, err := pb.fs.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("load prompt template %s: %w", name, err)
	}

	var file promptFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("decode prompt template %s: %w", name, err)
	}
	if file.Template == "" {
		return nil, fmt.Errorf("prompt template %s has no body", name)
	}

	tmpl, err := template.New(string(name)).Option("missingkey=error").Parse(file.Template)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template %s: %w", name, err)
	}

	compiled := &compiledPrompt{
		settings: Settings{
			Temperature:     file.Temperature,
			MaxOutputTokens: file.MaxOutputTokens,
		},
		tmpl: tmpl,
	}

	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.templates[name] = compiled

	return compiled, nil
}
