package skinerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindSurvivesWrapping(t *testing.T) {
	err := New(ColorNotFound, "UIView/Component[name=Panel]/color", "no color \"accent\"")
	wrapped := fmt.Errorf("apply module: %w", err)

	kind, ok := KindOf(wrapped)
	require.True(t, ok)
	assert.Equal(t, ColorNotFound, kind)
	assert.True(t, Is(wrapped, ColorNotFound))
	assert.False(t, Is(wrapped, SpriteNotFound))
	assert.Equal(t, "UIView/Component[name=Panel]/color", NodeOf(wrapped))
}

func TestErrbuilderCodeMapping(t *testing.T) {
	tests := []struct {
		kind Kind
		want error
	}{
		{kind: MalformedDocument, want: errbuilder.New().WithCode(errbuilder.CodeInvalidArgument)},
		{kind: DuplicateDefinition, want: errbuilder.New().WithCode(errbuilder.CodeAlreadyExists)},
		{kind: MissingWidget, want: errbuilder.New().WithCode(errbuilder.CodeNotFound)},
		{kind: ReadOnlyProperty, want: errbuilder.New().WithCode(errbuilder.CodePermissionDenied)},
		{kind: TooManySpritesInAtlas, want: errbuilder.New().WithCode(errbuilder.CodeFailedPrecondition)},
		{kind: UnsupportedType, want: errbuilder.New().WithCode(errbuilder.CodeInternal)},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			var builder *errbuilder.ErrBuilder
			require.True(t, errors.As(New(tt.kind, "", "boom"), &builder))
			assert.Equal(t, errbuilder.CodeOf(tt.want), errbuilder.CodeOf(builder))
			assert.Equal(t, "boom", builder.Msg)
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("disk on fire")
	err := Wrap(MalformedDocument, "skin.xml", "failed to read", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "MalformedDocument")
	assert.Contains(t, err.Error(), "skin.xml")
}

func TestUnclassifiedError(t *testing.T) {
	_, ok := KindOf(errors.New("plain"))
	assert.False(t, ok)
	assert.Empty(t, NodeOf(errors.New("plain")))
}
