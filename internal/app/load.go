package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/specialistvlad/smartnodego/internal/config"
	"github.com/specialistvlad/smartnodego/internal/ctxlog"
	"github.com/specialistvlad/smartnodego/internal/fsutil"
	"github.com/specialistvlad/smartnodego/internal/hclconfig"
	"github.com/specialistvlad/smartnodego/internal/yamlconfig"
)

// loaderFor picks the configuration loader for path. Files are matched by
// extension; a directory is read as HCL when it holds any .hcl file.
func loaderFor(path string) (config.Loader, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing path %s: %w", path, err)
	}

	if !info.IsDir() {
		switch {
		case fsutil.HasExtension(path, hclconfig.Extension):
			return hclconfig.NewLoader(), nil
		case fsutil.HasExtension(path, yamlconfig.Extensions...):
			return yamlconfig.NewLoader(), nil
		default:
			return nil, fmt.Errorf("unsupported configuration file %s", path)
		}
	}

	hclFiles, err := fsutil.FindFiles([]string{path}, hclconfig.Extension)
	if err != nil {
		return nil, err
	}
	if len(hclFiles) > 0 {
		return hclconfig.NewLoader(), nil
	}
	return yamlconfig.NewLoader(), nil
}

// Load reads the component configuration. The model is kept for Boot and
// Validate.
func (a *App) Load(ctx context.Context) (*config.Model, error) {
	ctx = a.withLogger(ctx)
	logger := ctxlog.FromContext(ctx)

	if a.config.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}
	logger.Debug("Loading component configuration...", "path", a.config.ConfigPath)

	loader, err := loaderFor(a.config.ConfigPath)
	if err != nil {
		return nil, err
	}
	model, err := loader.Load(ctx, a.config.ConfigPath)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.model = model
	a.mu.Unlock()

	logger.Info("Component configuration loaded.", "components", len(model.Components), "order", len(model.Order))
	return model, nil
}
