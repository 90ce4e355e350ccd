package template

import (
	"path/filepath"

	"github.com/schematic-dev/schematic/pkg/errors"
	"github.com/schematic-dev/schematic/pkg/types"
)

// DirLoader loads module templates from a directory tree laid out as
// <root>/<module>/templates/<relPath>.
type DirLoader struct {
	root string
	fs   types.FS
}

// NewDirLoader creates a template loader rooted at dir
func NewDirLoader(dir string, fs types.FS) *DirLoader {
	return &DirLoader{root: dir, fs: fs}
}

// LoadTemplate implements types.TemplateLoader
func (l *DirLoader) LoadTemplate(module, relPath string) (string, error) {
	if module == "" || relPath == "" {
		return "", errors.New(errors.ErrInvalidInput, "template loader requires module and template path")
	}

	path := filepath.Join(l.root, module, "templates", relPath)
	data, err := l.fs.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrTemplateLoad,
			"failed to load template '%s' from module '%s'", relPath, module)
	}
	return string(data), nil
}

var _ types.TemplateLoader = (*DirLoader)(nil)
