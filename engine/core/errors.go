package core

import (
	"errors"
)

var (
	ErrTemplateNotFound          = errors.New("pass template not found")
	ErrTemplateExists            = errors.New("pass template already exists")
	ErrPassNotFound              = errors.New("pass not found")
	ErrAssetNotFound             = errors.New("asset not found")
	ErrUnsupportedAttachmentType = errors.New("unsupported attachment type")
	ErrAttachmentExists          = errors.New("attachment already exists in the frame graph")
	ErrRegistryFull              = errors.New("pass registry is full")
	ErrUnknownPassClass          = errors.New("unknown pass class")
	ErrUnknownFormat             = errors.New("unknown format")
	ErrUnknown                   = errors.New("unknown")
)
