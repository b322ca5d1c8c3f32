package systems

import (
	"fmt"

	"github.com/spaghettifunk/passgraph/engine/core"
	"github.com/spaghettifunk/passgraph/engine/renderer/metadata"
	"github.com/spaghettifunk/passgraph/engine/renderer/pass"
)

// Built-in pass classes a template can name.
const (
	PassClassPass        = "Pass"
	PassClassParentPass  = "ParentPass"
	PassClassRasterPass  = "RasterPass"
	PassClassComputePass = "ComputePass"
	PassClassCopyPass    = "CopyPass"
)

/** @brief Instantiates a pass variant and returns its base pass. */
type PassCreator func(system pass.System, desc metadata.PassDescriptor) (*pass.Pass, error)

func (ps *PassSystem) registerBuiltinClasses() {
	ps.classes[PassClassPass] = pass.NewPass
	ps.classes[PassClassParentPass] = func(s pass.System, d metadata.PassDescriptor) (*pass.Pass, error) {
		p, err := pass.NewParentPass(s, d)
		if err != nil {
			return nil, err
		}
		return p.Pass, nil
	}
	ps.classes[PassClassRasterPass] = func(s pass.System, d metadata.PassDescriptor) (*pass.Pass, error) {
		p, err := pass.NewRasterPass(s, d)
		if err != nil {
			return nil, err
		}
		return p.Pass, nil
	}
	ps.classes[PassClassComputePass] = func(s pass.System, d metadata.PassDescriptor) (*pass.Pass, error) {
		p, err := pass.NewComputePass(s, d)
		if err != nil {
			return nil, err
		}
		return p.Pass, nil
	}
	ps.classes[PassClassCopyPass] = func(s pass.System, d metadata.PassDescriptor) (*pass.Pass, error) {
		p, err := pass.NewCopyPass(s, d)
		if err != nil {
			return nil, err
		}
		return p.Pass, nil
	}
}

// RegisterPassClass adds or replaces the creator of a pass class.
func (ps *PassSystem) RegisterPassClass(name string, creator PassCreator) error {
	if name == "" || creator == nil {
		return fmt.Errorf("RegisterPassClass: a name and a creator are required")
	}
	if _, ok := ps.classes[name]; ok {
		core.LogWarn("pass class '%s' is already registered, replacing it", name)
	}
	ps.classes[name] = creator
	return nil
}

func (ps *PassSystem) HasPassClass(name string) bool {
	_, ok := ps.classes[name]
	return ok
}

func (ps *PassSystem) createPass(desc metadata.PassDescriptor) (*pass.Pass, error) {
	class := desc.PassTemplate.PassClass
	if class == "" {
		class = PassClassPass
	}
	creator, ok := ps.classes[class]
	if !ok {
		return nil, fmt.Errorf("%w: '%s' (template '%s')", core.ErrUnknownPassClass, class, desc.PassTemplate.Name)
	}
	return creator(ps, desc)
}

// CreatePassFromTemplate instantiates the template's pass class.
func (ps *PassSystem) CreatePassFromTemplate(name, templateName string) (*pass.Pass, error) {
	template, err := ps.GetPassTemplate(templateName)
	if err != nil {
		return nil, err
	}
	return ps.createPass(metadata.PassDescriptor{
		PassName:     name,
		PassTemplate: template,
	})
}

// CreatePassFromRequest instantiates the class of the request's template. The
// pass keeps a copy of the request.
func (ps *PassSystem) CreatePassFromRequest(request *metadata.PassRequest) (*pass.Pass, error) {
	if request == nil {
		return nil, fmt.Errorf("CreatePassFromRequest: request is nil")
	}
	template, err := ps.GetPassTemplate(request.TemplateName)
	if err != nil {
		return nil, fmt.Errorf("pass request '%s': %w", request.PassName, err)
	}
	return ps.createPass(metadata.PassDescriptor{
		PassName:     request.PassName,
		PassTemplate: template,
		PassRequest:  request,
	})
}
