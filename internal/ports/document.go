package ports

import "quartz-skins/internal/types"

// DocumentPort reads skin and module XML documents into node trees.
type DocumentPort interface {
	ReadDocument(path string) (*types.Node, error)
}

// WatchSet tracks source files for hot reload.
type WatchSet interface {
	Watch(path string) error
	// HasChanges reports whether any watched file changed since the last
	// call and clears the pending set.
	HasChanges() bool
	Close() error
}

// WatchSetFactory creates a fresh WatchSet for one load pass.
type WatchSetFactory func() (WatchSet, error)

// SkinDiscoveryPort finds the skin.xml of every installed skin below the
// given mod directories.
type SkinDiscoveryPort interface {
	FindSkinDocuments(modDirs []string) ([]string, error)
}
