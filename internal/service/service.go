package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"
	"go.uber.org/zap"

	"github.com/dpshade/prompt-vault/internal/clipboard"
	"github.com/dpshade/prompt-vault/internal/errors"
	"github.com/dpshade/prompt-vault/internal/models"
	"github.com/dpshade/prompt-vault/internal/renderer"
	"github.com/dpshade/prompt-vault/internal/storage"
	"github.com/dpshade/prompt-vault/internal/validation"
)

// Service runs the vault flows shared by the interactive shell and the headless commands.
// Output files are re-read on every call; parsed definitions are cached by file hash.
type Service struct {
	vaultPath string
	model     string
	clip      clipboard.Clipboard
	defs      *storage.DefinitionCache
	log       *zap.SugaredLogger
}

// Options configures a Service.
type Options struct {
	VaultPath string
	Model     string
	Clipboard clipboard.Clipboard
	Logger    *zap.SugaredLogger
}

// Result is what a flow reports back to the caller for presentation.
type Result struct {
	Message  string
	Path     string
	Prompt   string
	Warnings []errors.Warning
}

// NewService creates a new service instance. The model name is normalized once here so
// every capture uses the same spelling. Unsupported names are only rejected by Capture.
func NewService(opts Options) (*Service, error) {
	model := opts.Model
	if trimmed := strings.TrimSpace(model); trimmed != "" {
		model = validation.NormalizeModelName(trimmed)
	}
	if opts.VaultPath == "" {
		return nil, errors.ValidationError("Vault path", "a non-empty string")
	}
	clip := opts.Clipboard
	if clip == nil {
		clip = clipboard.NewSystem()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	return &Service{
		vaultPath: opts.VaultPath,
		model:     model,
		clip:      clip,
		defs:      storage.NewDefinitionCache(),
		log:       log,
	}, nil
}

// VaultPath returns the vault root.
func (s *Service) VaultPath() string {
	return s.vaultPath
}

// Model returns the normalized model name used for captures.
func (s *Service) Model() string {
	return s.model
}

// TemplateDir returns the directory of the named template.
func (s *Service) TemplateDir(name string) string {
	return filepath.Join(s.vaultPath, name)
}

// LoadVault validates the vault and lists its templates.
func (s *Service) LoadVault() ([]models.TemplateInfo, []errors.Warning, error) {
	warnings, err := storage.ValidateVaultStructure(s.vaultPath)
	if err != nil {
		s.logError("vault validation failed", err)
		return nil, nil, err
	}
	for _, w := range warnings {
		s.log.Warnw("vault warning", "code", w.Code, "message", w.Message)
	}

	templates, err := storage.ScanVaultDirectory(s.vaultPath)
	if err != nil {
		s.logError("vault scan failed", err)
		return nil, warnings, err
	}
	s.defs.Cleanup(templates)
	s.log.Infow("vault loaded", "vault", s.vaultPath, "templates", len(templates))
	return templates, warnings, nil
}

// CheckClipboard warns when the clipboard depends on a utility that is not installed.
func (s *Service) CheckClipboard() []errors.Warning {
	p, ok := s.clip.(clipboard.Prober)
	if !ok || p.Available() {
		return nil
	}
	w := errors.NoClipboard(p.InstallInstructions())
	s.log.Warnw("clipboard unavailable", "code", w.Code)
	return []errors.Warning{w}
}

// FindTemplate resolves a template by exact name, falling back to the best fuzzy match.
func (s *Service) FindTemplate(query string) (models.TemplateInfo, error) {
	return s.findTemplate(query, true)
}

// ExactTemplate resolves a template by its directory name only. Destructive flows use it so
// a loose query never picks a neighbouring template.
func (s *Service) ExactTemplate(name string) (models.TemplateInfo, error) {
	return s.findTemplate(name, false)
}

func (s *Service) findTemplate(query string, allowFuzzy bool) (models.TemplateInfo, error) {
	templates, _, err := s.LoadVault()
	if err != nil {
		return models.TemplateInfo{}, err
	}
	for _, t := range templates {
		if t.Name == query {
			return t, nil
		}
	}

	var matches fuzzy.Matches
	if allowFuzzy {
		names := make([]string, len(templates))
		for i, t := range templates {
			names[i] = t.Name
		}
		matches = fuzzy.Find(query, names)
	}
	if len(matches) == 0 {
		return models.TemplateInfo{}, errors.NewAppError(errors.ErrCodeValidation,
			fmt.Sprintf("No template matches %q", query)).
			WithHint("Run 'prompts list' to see available templates").
			WithPath(s.vaultPath)
	}
	match := templates[matches[0].Index]
	s.log.Debugw("fuzzy template match", "query", query, "template", match.Name)
	return match, nil
}

// Template resolves the active version of a template.
func (s *Service) Template(templateDir string) (*models.ResolvedTemplate, error) {
	tpl, err := s.defs.Get(templateDir)
	if err != nil {
		s.logError("template definition rejected", err)
		return nil, err
	}
	return tpl, nil
}

// FilesForAction lists the output files an action can be applied to: unfilled topic files
// for fill and select, files with content for reset, every file for delete.
func (s *Service) FilesForAction(templateDir string, action models.Action) ([]models.OutputFile, error) {
	switch action {
	case models.ActionFill, models.ActionSelect:
		unfilled, err := storage.DetectUnfilledFiles(templateDir)
		if err != nil {
			return nil, err
		}
		files := make([]models.OutputFile, len(unfilled))
		for i, f := range unfilled {
			files[i] = models.FromTopicFile(f, false)
		}
		return files, nil

	case models.ActionReset:
		all, err := storage.DetectAllOutputFiles(templateDir)
		if err != nil {
			return nil, err
		}
		files := make([]models.OutputFile, 0, len(all))
		for _, f := range all {
			if f.HasContent {
				files = append(files, f)
			}
		}
		return files, nil

	case models.ActionDelete:
		return storage.DetectAllOutputFiles(templateDir)

	default:
		return nil, errors.ValidationError("Action", "one of fill, select, reset, delete")
	}
}

// File states accepted by OutputFiles
const (
	StateUnfilled = "unfilled"
	StateFilled   = "filled"
	StateAll      = "all"
)

// OutputFiles lists a template's output files by fill state.
func (s *Service) OutputFiles(templateDir, state string) ([]models.OutputFile, error) {
	switch state {
	case StateUnfilled, StateFilled:
		detect := storage.DetectUnfilledFiles
		if state == StateFilled {
			detect = storage.DetectFilledFiles
		}
		topics, err := detect(templateDir)
		if err != nil {
			return nil, err
		}
		files := make([]models.OutputFile, len(topics))
		for i, f := range topics {
			files[i] = models.FromTopicFile(f, state == StateFilled)
		}
		return files, nil
	case StateAll, "":
		return storage.DetectAllOutputFiles(templateDir)
	default:
		return nil, errors.ValidationError("State", "one of unfilled, filled, all")
	}
}

// FindFile picks the output file named name from the files available to action.
func (s *Service) FindFile(templateDir string, action models.Action, name string) (models.OutputFile, error) {
	files, err := s.FilesForAction(templateDir, action)
	if err != nil {
		return models.OutputFile{}, err
	}
	base := filepath.Base(name)
	if !strings.HasSuffix(base, ".md") {
		base += ".md"
	}
	for _, f := range files {
		if f.FileName == base {
			return f, nil
		}
	}
	path := filepath.Join(models.OutputsPath(templateDir), base)
	return models.OutputFile{}, errors.NewAppError(errors.ErrCodeFileNotFound,
		fmt.Sprintf("No %s candidate named %s", action, base)).
		WithHint(fmt.Sprintf("Run 'prompts files %s' to see output files", filepath.Base(templateDir))).
		WithPath(path)
}

// CreateTopic renders the current prompt for topic, copies it to the clipboard and creates
// an empty topic file. Nothing is written when the clipboard is unavailable.
func (s *Service) CreateTopic(ctx context.Context, templateDir, topic string) (*Result, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, errors.ValidationError("Topic", "a non-empty string")
	}
	if !utf8.ValidString(topic) {
		return nil, errors.ValidationError("Topic", "valid UTF-8 text")
	}
	tpl, err := s.Template(templateDir)
	if err != nil {
		return nil, err
	}
	rendered, err := renderer.ProcessTopicTemplate(tpl.Content, topic)
	if err != nil {
		return nil, err
	}
	if err := s.clip.Write(ctx, rendered.Content); err != nil {
		s.logError("clipboard write failed", err)
		return nil, err
	}

	path, err := storage.CreateTopicFile(templateDir, topic, tpl.Version)
	if err != nil {
		s.logError("topic file create failed", err)
		return nil, err
	}
	s.log.Infow("topic created", "template", filepath.Base(templateDir), "topic", topic,
		"version", tpl.Version, "path", path)
	return &Result{
		Message: fmt.Sprintf("Prompt v%s for %q copied to clipboard", tpl.Version, topic),
		Path:    path,
		Prompt:  rendered.Content,
	}, nil
}

// Fill appends the clipboard text to an output file.
func (s *Service) Fill(ctx context.Context, filePath string) (*Result, error) {
	content, err := s.clip.Read(ctx)
	if err != nil {
		s.logError("clipboard read failed", err)
		return nil, err
	}
	s.logWarnings(content.Warnings)

	path, err := storage.UpdateFileContent(filePath, content.Text)
	if err != nil {
		s.logError("fill failed", err)
		return nil, err
	}
	s.log.Infow("file filled", "path", path, "bytes", len(content.Text))
	return &Result{
		Message:  fmt.Sprintf("Filled %s from clipboard", filepath.Base(path)),
		Path:     path,
		Warnings: content.Warnings,
	}, nil
}

// CopyPrompt re-renders the prompt a topic file was created with and copies it.
func (s *Service) CopyPrompt(ctx context.Context, templateDir string, file models.OutputFile) (*Result, error) {
	if file.Metadata == nil {
		return nil, errors.FileFormatError(file.Path, "missing topic frontmatter")
	}
	tpl, err := s.Template(templateDir)
	if err != nil {
		return nil, err
	}

	version := file.Metadata.PromptVersion
	if version == "" {
		version = tpl.Version
	}
	rev, ok := tpl.Revision(version)
	if !ok {
		err := errors.VersionNotFound(version).WithPath(file.Path)
		s.logError("prompt version missing", err)
		return nil, err
	}
	rendered, err := renderer.ProcessTopicTemplate(rev.Content, file.Metadata.Topic)
	if err != nil {
		return nil, err
	}
	if err := s.clip.Write(ctx, rendered.Content); err != nil {
		s.logError("clipboard write failed", err)
		return nil, err
	}
	s.log.Infow("prompt copied", "path", file.Path, "version", version)
	return &Result{
		Message: fmt.Sprintf("Prompt v%s for %q copied to clipboard", version, file.Metadata.Topic),
		Path:    file.Path,
		Prompt:  rendered.Content,
	}, nil
}

// Reset clears the body of an output file and keeps its frontmatter.
func (s *Service) Reset(filePath string) (*Result, error) {
	path, err := storage.ClearFileContent(filePath)
	if err != nil {
		s.logError("reset failed", err)
		return nil, err
	}
	s.log.Infow("file reset", "path", path)
	return &Result{Message: fmt.Sprintf("Cleared %s", filepath.Base(path)), Path: path}, nil
}

// Delete removes an output file.
func (s *Service) Delete(filePath string) (*Result, error) {
	path, err := storage.RemoveFile(filePath)
	if err != nil {
		s.logError("delete failed", err)
		return nil, err
	}
	s.log.Infow("file deleted", "path", path)
	return &Result{Message: fmt.Sprintf("Deleted %s", filepath.Base(path)), Path: path}, nil
}

// Capture saves the clipboard as a dated output tagged with the current prompt version
// and the configured model.
func (s *Service) Capture(ctx context.Context, templateDir string) (*Result, error) {
	tpl, err := s.Template(templateDir)
	if err != nil {
		return nil, err
	}
	content, err := s.clip.Read(ctx)
	if err != nil {
		s.logError("clipboard read failed", err)
		return nil, err
	}
	s.logWarnings(content.Warnings)

	path, err := storage.SaveOutput(templateDir, content.Text, storage.SaveOptions{
		Version: tpl.Version,
		Model:   s.model,
	})
	if err != nil {
		s.logError("capture failed", err)
		return nil, err
	}
	s.log.Infow("output captured", "path", path, "version", tpl.Version, "model", s.model)
	return &Result{
		Message:  fmt.Sprintf("Saved clipboard to %s", filepath.Base(path)),
		Path:     path,
		Warnings: content.Warnings,
	}, nil
}

// NewTemplate creates a template directory holding content as version 1.0.0.
func (s *Service) NewTemplate(name, content string) (*Result, error) {
	dir, err := storage.InitTemplate(s.vaultPath, name, content)
	if err != nil {
		s.logError("template create failed", err)
		return nil, err
	}
	s.log.Infow("template created", "path", dir)
	return &Result{Message: fmt.Sprintf("Created template %s at v1.0.0", filepath.Base(dir)), Path: dir}, nil
}

// Bump adds content as a new revision of the template.
func (s *Service) Bump(templateDir, content, level string) (*Result, error) {
	tpl, err := storage.AddRevision(templateDir, content, level)
	if err != nil {
		s.logError("revision add failed", err)
		return nil, err
	}
	s.log.Infow("revision added", "template", filepath.Base(templateDir), "version", tpl.Version)
	return &Result{
		Message: fmt.Sprintf("%s is now at v%s", filepath.Base(templateDir), tpl.Version),
		Path:    filepath.Join(templateDir, models.DefinitionFile),
	}, nil
}

func (s *Service) logError(msg string, err error) {
	appErr := errors.GetAppError(err)
	s.log.Errorw(msg, "code", appErr.Code, "path", appErr.Path, "error", err)
}

func (s *Service) logWarnings(warnings []errors.Warning) {
	for _, w := range warnings {
		s.log.Warnw("clipboard warning", "code", w.Code, "message", w.Message)
	}
}
