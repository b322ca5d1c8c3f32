package assets

import (
	"fmt"

	"github.com/spaghettifunk/passgraph/engine/core"
	"github.com/spaghettifunk/passgraph/engine/resources"
)

// loadAssetByID finds the asset and returns its resource instance, creating
// it the first time. Every later load of the same asset gets the same
// instance until the asset is registered again.
func loadAssetByID[T resources.Resource](c *Catalog, assetID string, resourceType resources.ResourceType, create func(e *assetEntry) T) (T, error) {
	var zero T
	if assetID == "" {
		return zero, fmt.Errorf("%w: empty asset id", core.ErrAssetNotFound)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	e, ok := c.entry(assetID)
	if !ok {
		return zero, fmt.Errorf("%w: '%s'", core.ErrAssetNotFound, assetID)
	}
	if e.resourceType != resourceType {
		return zero, fmt.Errorf("asset '%s' is a %s, not a %s: %w", assetID, e.resourceType, resourceType, core.ErrUnsupportedAttachmentType)
	}
	if e.instance != nil {
		if instance, ok := e.instance.(T); ok {
			return instance, nil
		}
	}
	instance := create(e)
	e.instance = instance
	return instance, nil
}
