package adapters

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"quartz-skins/internal/ports"
)

const (
	QuartzSkinDir   = "_QuartzSkin"
	SapphireSkinDir = "_SapphireSkin"
	SkinDocument    = "skin.xml"
)

// SkinDiscoveryAdapter looks for skins inside mod directories. A mod may
// ship a _QuartzSkin directory or, for older skins, _SapphireSkin; the
// former wins when both exist.
type SkinDiscoveryAdapter struct{}

func NewSkinDiscoveryAdapter() SkinDiscoveryAdapter {
	return SkinDiscoveryAdapter{}
}

// FindSkinDocuments checks every mod root and each of its direct
// subdirectories.
func (a SkinDiscoveryAdapter) FindSkinDocuments(modDirs []string) ([]string, error) {
	seen := map[string]struct{}{}
	var paths []string
	for _, root := range modDirs {
		if strings.TrimSpace(root) == "" {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("mod directory is empty")
		}
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("failed to scan mod directory " + root).
				WithCause(err)
		}
		candidates := []string{root}
		for _, entry := range entries {
			if !entry.IsDir() || shouldSkipModDir(entry.Name()) {
				continue
			}
			candidates = append(candidates, filepath.Join(root, entry.Name()))
		}
		for _, modPath := range candidates {
			path, ok := skinDocumentIn(modPath)
			if !ok {
				continue
			}
			if _, dup := seen[path]; dup {
				continue
			}
			seen[path] = struct{}{}
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func skinDocumentIn(modPath string) (string, bool) {
	for _, dir := range []string{QuartzSkinDir, SapphireSkinDir} {
		skinDir := filepath.Join(modPath, dir)
		info, err := os.Stat(skinDir)
		if err != nil || !info.IsDir() {
			continue
		}
		document := filepath.Join(skinDir, SkinDocument)
		if _, err := os.Stat(document); err != nil {
			log.Warn().Str("dir", skinDir).Msg("skin.xml not found, skipping")
			return "", false
		}
		return document, true
	}
	return "", false
}

func shouldSkipModDir(name string) bool {
	switch name {
	case QuartzSkinDir, SapphireSkinDir, ".git":
		return true
	default:
		return false
	}
}

var _ ports.SkinDiscoveryPort = SkinDiscoveryAdapter{}
