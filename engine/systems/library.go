package systems

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/passgraph/engine/assets/loaders"
	"github.com/spaghettifunk/passgraph/engine/core"
	"github.com/spaghettifunk/passgraph/engine/renderer/metadata"
	"github.com/spaghettifunk/passgraph/engine/renderer/pass"
)

// AddPassTemplate stores a copy of the template.
func (ps *PassSystem) AddPassTemplate(template *metadata.PassTemplate) error {
	if template == nil {
		return fmt.Errorf("AddPassTemplate: template is nil")
	}
	if err := template.Validate(); err != nil {
		return err
	}
	if ps.HasTemplate(template.Name) {
		return fmt.Errorf("%w: '%s'", core.ErrTemplateExists, template.Name)
	}
	ps.templates[template.Name] = template.Clone()
	return nil
}

// UpdatePassTemplate replaces a template in place. Every pass built from it
// sees the new content and its hierarchy is rebuilt.
func (ps *PassSystem) UpdatePassTemplate(template *metadata.PassTemplate) error {
	if template == nil {
		return fmt.Errorf("UpdatePassTemplate: template is nil")
	}
	if err := template.Validate(); err != nil {
		return err
	}
	existing, ok := ps.templates[template.Name]
	if !ok {
		return fmt.Errorf("%w: '%s'", core.ErrTemplateNotFound, template.Name)
	}
	*existing = *template.Clone()

	var users []*pass.Pass
	ps.passes.Each(func(_ uint32, p *pass.Pass) {
		if p.Template() == existing {
			users = append(users, p)
		}
	})
	for _, p := range users {
		if pp := p.AsParent(); pp != nil {
			pp.RecreateChildren()
		}
		rootOf(p).QueueForBuildAttachments()
	}
	core.LogDebug("pass template '%s' updated, %d passes queued for rebuild", template.Name, len(users))
	return nil
}

func rootOf(p *pass.Pass) *pass.Pass {
	for parent := p.Parent(); parent != nil; parent = p.Parent() {
		p = parent.Pass
	}
	return p
}

func (ps *PassSystem) GetPassTemplate(name string) (*metadata.PassTemplate, error) {
	t, ok := ps.templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", core.ErrTemplateNotFound, name)
	}
	return t, nil
}

func (ps *PassSystem) HasTemplate(name string) bool {
	_, ok := ps.templates[name]
	return ok
}

// TemplateNames returns the sorted names of the library templates.
func (ps *PassSystem) TemplateNames() []string {
	names := make([]string, 0, len(ps.templates))
	for name := range ps.templates {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LoadLibraryFile adds the templates of one library file, replacing the ones
// already known.
func (ps *PassSystem) LoadLibraryFile(path string) error {
	library, err := loaders.LoadLibrary(path)
	if err != nil {
		return err
	}
	return ps.applyLibrary(path, library)
}

func (ps *PassSystem) applyLibrary(path string, library *metadata.PassLibrary) error {
	for i := range library.Templates {
		t := &library.Templates[i]
		var err error
		if ps.HasTemplate(t.Name) {
			err = ps.UpdatePassTemplate(t)
		} else {
			err = ps.AddPassTemplate(t)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	core.LogDebug("loaded %d pass templates from %s", len(library.Templates), path)
	return nil
}

// LoadLibrary loads every library file under dir. Files are parsed on the
// job system and applied in path order, so a later file overrides the
// templates of an earlier one.
func (ps *PassSystem) LoadLibrary(dir string) error {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && loaders.IsLibraryFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	slices.Sort(files)

	libraries := make([]*metadata.PassLibrary, len(files))
	errs := make([]error, len(files))
	js, err := NewJobSystem(min(ps.loaderWorkers, max(len(files), 1)), len(files))
	if err != nil {
		return err
	}
	for i, f := range files {
		i, f := i, f
		js.Submit(JobTask{
			OnStart: func() error {
				library, err := loaders.LoadLibrary(f)
				libraries[i] = library
				return err
			},
			OnFailure: func(err error) {
				errs[i] = err
			},
		})
	}
	if err := js.Shutdown(); err != nil {
		return err
	}

	for i, f := range files {
		if errs[i] != nil {
			return errs[i]
		}
		if err := ps.applyLibrary(f, libraries[i]); err != nil {
			return err
		}
	}
	core.LogInfo("pass library loaded from %s: %d templates", dir, len(ps.templates))
	return nil
}
