package assets

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/spaghettifunk/passgraph/engine/core"
	"github.com/spaghettifunk/passgraph/engine/renderer/metadata"
	"github.com/spaghettifunk/passgraph/engine/resources"
)

type assetEntry struct {
	id           uuid.UUID
	name         string
	resourceType resources.ResourceType
	image        metadata.ImageDescriptor
	buffer       metadata.BufferDescriptor
	// created on first load, shared by every later load
	instance resources.Resource
}

/**
 * @brief In-memory registry of the assets imported attachments are created
 * from. Safe for concurrent use.
 */
type Catalog struct {
	mutex  sync.RWMutex
	assets map[uuid.UUID]*assetEntry
	names  map[string]uuid.UUID
}

func NewCatalog() *Catalog {
	return &Catalog{
		assets: make(map[uuid.UUID]*assetEntry),
		names:  make(map[string]uuid.UUID),
	}
}

// RegisterImage adds an image asset. Registering a known name replaces its
// descriptor and keeps its id.
func (c *Catalog) RegisterImage(name string, desc metadata.ImageDescriptor) uuid.UUID {
	return c.register(name, func(e *assetEntry) {
		e.resourceType = resources.ResourceTypeImage
		e.image = desc.Normalized()
	})
}

func (c *Catalog) RegisterBuffer(name string, desc metadata.BufferDescriptor) uuid.UUID {
	return c.register(name, func(e *assetEntry) {
		e.resourceType = resources.ResourceTypeBuffer
		e.buffer = desc
	})
}

func (c *Catalog) register(name string, fill func(e *assetEntry)) uuid.UUID {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if id, ok := c.names[name]; ok {
		e := c.assets[id]
		fill(e)
		e.instance = nil
		core.LogDebug("asset '%s' (%s) updated", name, id)
		return id
	}
	e := &assetEntry{id: uuid.New(), name: name}
	fill(e)
	c.assets[e.id] = e
	c.names[name] = e.id
	core.LogDebug("asset '%s' registered as %s", name, e.id)
	return e.id
}

func (c *Catalog) Unregister(id uuid.UUID) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	e, ok := c.assets[id]
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrAssetNotFound, id)
	}
	delete(c.names, e.name)
	delete(c.assets, id)
	return nil
}

// Lookup returns the id of the asset registered under name.
func (c *Catalog) Lookup(name string) (uuid.UUID, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	id, ok := c.names[name]
	return id, ok
}

func (c *Catalog) Count() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.assets)
}

// LoadImage returns the image instance of an asset, creating it on first use.
// The asset id is either the uuid or the name the asset was registered with.
func (c *Catalog) LoadImage(assetID string) (*resources.AttachmentImage, error) {
	return loadAssetByID(c, assetID, resources.ResourceTypeImage, func(e *assetEntry) *resources.AttachmentImage {
		return &resources.AttachmentImage{AssetID: e.id, Name: e.name, Descriptor: e.image}
	})
}

func (c *Catalog) LoadBuffer(assetID string) (*resources.Buffer, error) {
	return loadAssetByID(c, assetID, resources.ResourceTypeBuffer, func(e *assetEntry) *resources.Buffer {
		return &resources.Buffer{AssetID: e.id, Name: e.name, Descriptor: e.buffer}
	})
}

// entry resolves an asset id given as uuid or as registered name.
func (c *Catalog) entry(assetID string) (*assetEntry, bool) {
	if id, err := uuid.Parse(assetID); err == nil {
		e, ok := c.assets[id]
		return e, ok
	}
	id, ok := c.names[assetID]
	if !ok {
		return nil, false
	}
	return c.assets[id], true
}
