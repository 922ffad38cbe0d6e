package app

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"

	"quartz-skins/internal/core"
	"quartz-skins/internal/types"
)

// Validate loads a skin without selecting it. With a scene attached and
// no active skin, every requested context is applied and rolled back.
func (s *Service) Validate(ctx context.Context, req ValidateRequest) (ValidateResult, error) {
	logger := log.Ctx(ctx)
	documentPath, err := skinDocumentPath(req.SkinPath)
	if err != nil {
		return ValidateResult{}, err
	}
	env := s.engine()
	env.Watchers = nil
	env.Notifier = nil
	skin, err := core.LoadSkin(ctx, documentPath, env, false)
	defer skin.Dispose(ctx)
	if err != nil {
		return ValidateResult{}, err
	}

	result := ValidateResult{
		Name:    skin.Name(),
		Author:  skin.Author(),
		Legacy:  skin.Legacy(),
		Colors:  skin.Colors().Len(),
		Atlases: skin.AtlasNames(),
		Modules: map[types.ContextClass]int{},
	}
	for _, class := range types.ContextClasses {
		if count := len(skin.Modules(class)); count > 0 {
			result.Modules[class] = count
		}
	}

	if s.resolver == nil {
		return result, nil
	}
	if s.active != nil {
		logger.Warn().Str("active", s.active.Path()).Msg("skipping dry run while a skin is active")
		return result, nil
	}
	for _, class := range validateContexts(req.Contexts, result.Modules) {
		result.Contexts = append(result.Contexts, dryRun(ctx, skin, class))
	}
	return result, nil
}

func dryRun(ctx context.Context, skin *core.Skin, class types.ContextClass) ContextCheck {
	check := ContextCheck{Context: class}
	if !skin.Valid() {
		// A previous context failed and invalidated the skin.
		if err := skin.Load(ctx, false); err != nil {
			check.Err = err
			return check
		}
	}
	report, err := skin.Apply(ctx, class)
	if err != nil {
		check.Err = err
		return check
	}
	check.Writes = report.Writes()
	check.Restored = skin.Applicator().Pending()
	if err := skin.Rollback(ctx); err != nil {
		check.Err = err
	}
	return check
}

func validateContexts(requested []types.ContextClass, modules map[types.ContextClass]int) []types.ContextClass {
	if len(requested) > 0 {
		return requested
	}
	classes := make([]types.ContextClass, 0, len(modules))
	for class := range modules {
		classes = append(classes, class)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })
	return classes
}
