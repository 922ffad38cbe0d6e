package adapters

import (
	"bytes"
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"quartz-skins/internal/ports"
	"quartz-skins/internal/skinerr"
	"quartz-skins/internal/types"
)

// XMLDocumentAdapter reads skin and module documents. Every call parses
// the file from disk, so a reload always sees the current content.
type XMLDocumentAdapter struct{}

func NewXMLDocumentAdapter() *XMLDocumentAdapter {
	return &XMLDocumentAdapter{}
}

func (a *XMLDocumentAdapter) ReadDocument(path string) (*types.Node, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read document " + path).
			WithCause(err)
	}
	root, err := types.DecodeNode(bytes.NewReader(content))
	if err != nil {
		return nil, skinerr.Wrap(skinerr.MalformedDocument, path, "failed to parse xml", err)
	}
	return root, nil
}

var _ ports.DocumentPort = (*XMLDocumentAdapter)(nil)
