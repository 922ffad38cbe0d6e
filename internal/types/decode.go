package types

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DecodeNode reads one XML document into a Node tree. Text content is
// trimmed; comments and processing instructions are dropped.
func DecodeNode(r io.Reader) (*Node, error) {
	decoder := xml.NewDecoder(r)
	var (
		root  *Node
		stack []*Node
	)
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch tok := token.(type) {
		case xml.StartElement:
			node := &Node{Tag: tok.Name.Local, Attrs: make(map[string]string, len(tok.Attr))}
			for _, attr := range tok.Attr {
				node.Attrs[attr.Name.Local] = attr.Value
			}
			segment := pathSegment(node)
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("multiple root elements: %q and %q", root.Tag, node.Tag)
				}
				root = node
				node.Path = segment
			} else {
				parent := stack[len(stack)-1]
				node.Path = parent.Path + "/" + segment
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, node)
		case xml.EndElement:
			top := stack[len(stack)-1]
			top.Text = strings.TrimSpace(top.Text)
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(tok)
			}
		}
	}
	if root == nil {
		return nil, errors.New("document has no root element")
	}
	return root, nil
}

func pathSegment(node *Node) string {
	if name, ok := node.Attrs["name"]; ok {
		return fmt.Sprintf("%s[name=%s]", node.Tag, strings.TrimSpace(name))
	}
	return node.Tag
}
