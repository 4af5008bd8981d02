package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/viper"

	"github.com/brad-luo/web-tools/internal/models"
)

// Catalog document names under the catalog directory.
const (
	catalogHome      = "home"
	catalogTools     = "tools"
	catalogCalendars = "calendar-dashboard"
)

var toolIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// CatalogService serves the JSON documents that describe the site.
type CatalogService interface {
	Home(ctx context.Context) (*models.HomeConfig, error)
	Tools(ctx context.Context) (*models.ToolsConfig, error)
	// Tool returns ErrNotFound when the id is not listed in tools.json.
	Tool(ctx context.Context, id string) (*models.ToolDetail, error)
	Calendars(ctx context.Context) (*models.CalendarConfig, error)
}

type catalogService struct {
	dir    string
	logger *slog.Logger
}

// NewCatalogService creates a catalog reading from dir. Missing documents
// fall back to built-in defaults.
func NewCatalogService(dir string, logger *slog.Logger) CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &catalogService{dir: dir, logger: logger}
}

func defaultHome() *models.HomeConfig {
	var h models.HomeConfig
	h.Hero.Title = "Web Tools"
	h.Hero.Subtitle = "Useful online tools"
	h.Hero.Description = "A collection of useful online tools to help with common web development tasks. " +
		"Simple, fast, and reliable tools you can use right in your browser."
	h.Footer.Tagline = "Built for the browser"
	h.Footer.SocialLinks = []models.SocialLink{}
	h.SEO.Title = "Web Tools - Useful Online Tools"
	h.SEO.Description = "A collection of useful online tools for web developers."
	h.SEO.Keywords = []string{"web tools", "online tools", "developer tools"}
	return &h
}

func defaultTools() *models.ToolsConfig {
	return &models.ToolsConfig{Tools: []models.Tool{}, Categories: map[string]string{}}
}

func defaultCalendars() *models.CalendarConfig {
	return &models.CalendarConfig{
		DefaultCalendars: []models.CalendarSource{},
		ColorPalette: []string{
			"#3B82F6", "#10B981", "#F59E0B", "#EF4444",
			"#8B5CF6", "#F97316", "#06B6D4", "#84CC16",
		},
	}
}

// load decodes <dir>/<name>.json into out. It reports false when the file
// does not exist.
func (s *catalogService) load(name string, out any) (bool, error) {
	v := viper.New()
	v.SetConfigFile(filepath.Join(s.dir, name+".json"))
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound) {
			s.logger.Debug("catalog document missing, using defaults", slog.String("name", name))
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", name, err)
	}
	if err := v.Unmarshal(out); err != nil {
		return false, fmt.Errorf("decode %s: %w", name, err)
	}
	return true, nil
}

func (s *catalogService) Home(ctx context.Context) (*models.HomeConfig, error) {
	h := defaultHome()
	if _, err := s.load(catalogHome, h); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *catalogService) Tools(ctx context.Context) (*models.ToolsConfig, error) {
	var t models.ToolsConfig
	found, err := s.load(catalogTools, &t)
	if err != nil {
		return nil, err
	}
	if !found {
		return defaultTools(), nil
	}
	if t.Tools == nil {
		t.Tools = []models.Tool{}
	}
	if t.Categories == nil {
		t.Categories = map[string]string{}
	}
	return &t, nil
}

func (s *catalogService) Tool(ctx context.Context, id string) (*models.ToolDetail, error) {
	tools, err := s.Tools(ctx)
	if err != nil {
		return nil, err
	}

	var tool *models.Tool
	for i := range tools.Tools {
		if tools.Tools[i].ID == id {
			tool = &tools.Tools[i]
			break
		}
	}
	if tool == nil {
		return nil, ErrNotFound
	}

	detail := &models.ToolDetail{Tool: *tool, Config: map[string]any{}}
	if !toolIDPattern.MatchString(id) {
		return detail, nil
	}

	// Tool documents are free-form; decode them verbatim so key case survives.
	raw, err := os.ReadFile(filepath.Join(s.dir, id+".json"))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("tool config unreadable", slog.String("tool", id), slog.String("error", err.Error()))
		}
		return detail, nil
	}
	if err := json.Unmarshal(raw, &detail.Config); err != nil {
		s.logger.Warn("tool config invalid", slog.String("tool", id), slog.String("error", err.Error()))
		detail.Config = map[string]any{}
	}
	return detail, nil
}

func (s *catalogService) Calendars(ctx context.Context) (*models.CalendarConfig, error) {
	var c models.CalendarConfig
	found, err := s.load(catalogCalendars, &c)
	if err != nil {
		return nil, err
	}
	if !found {
		return defaultCalendars(), nil
	}
	if c.DefaultCalendars == nil {
		c.DefaultCalendars = []models.CalendarSource{}
	}
	if len(c.ColorPalette) == 0 {
		c.ColorPalette = defaultCalendars().ColorPalette
	}
	return &c, nil
}

// Compile-time check to ensure catalogService implements CatalogService.
var _ CatalogService = (*catalogService)(nil)
