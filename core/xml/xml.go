// Package xml extracts document text from XML sources using XPath.
//
// Security Notes:
//   - XXE (External Entity) attacks are mitigated by checking well-formedness
//     with an xml.Decoder whose entity table is empty before the document is
//     handed to xmlquery.
//   - The xmlquery library uses Go's encoding/xml internally and inherits its
//     security properties.
package xml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/FocuswithJustin/nespan/core/errors"
	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// Document represents a parsed XML document.
type Document struct {
	root *xmlquery.Node
}

// Node represents a single XML node matched by a query.
type Node struct {
	node *xmlquery.Node
}

// Parse checks that data is well-formed and parses it into a Document.
func Parse(data []byte) (*Document, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errors.NewParse("xml", "", err.Error())
	}
	return &Document{root: root}, nil
}

// Validate reports whether data is well-formed XML.
//
// Entity expansion is disabled (CWE-611), so a document that relies on
// custom entities is rejected rather than expanded.
func Validate(data []byte) error {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Entity = map[string]string{}

	sawElement := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			line, _ := decoder.InputPos()
			return errors.NewParse("xml", "", fmt.Sprintf("line %d: %v", line, err))
		}
		if _, ok := tok.(xml.StartElement); ok {
			sawElement = true
		}
	}
	if !sawElement {
		return errors.NewParse("xml", "", "no root element")
	}
	return nil
}

// CompileXPath checks that expr is a valid XPath expression.
func CompileXPath(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return errors.NewParse("xpath", expr, "empty expression")
	}
	if _, err := xpath.Compile(expr); err != nil {
		return errors.NewParse("xpath", expr, err.Error())
	}
	return nil
}

// Root returns the root element of the document.
func (d *Document) Root() *Node {
	if d.root == nil {
		return nil
	}
	for child := d.root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return &Node{node: child}
		}
	}
	return nil
}

// XPath executes an XPath query and returns matching nodes in document order.
func (d *Document) XPath(expr string) ([]*Node, error) {
	if err := CompileXPath(expr); err != nil {
		return nil, err
	}

	nodes, err := xmlquery.QueryAll(d.root, expr)
	if err != nil {
		return nil, errors.NewParse("xpath", expr, err.Error())
	}

	result := make([]*Node, len(nodes))
	for i, n := range nodes {
		result[i] = &Node{node: n}
	}
	return result, nil
}

// Text joins the inner text of every node matched by expr with newlines.
// A query that matches nothing is an error.
func (d *Document) Text(expr string) (string, error) {
	nodes, err := d.XPath(expr)
	if err != nil {
		return "", err
	}
	if len(nodes) == 0 {
		return "", errors.NewParse("xpath", expr, "no nodes matched")
	}
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.InnerText()
	}
	return strings.Join(parts, "\n"), nil
}

// ExtractText parses data and returns the text selected by expr.
func ExtractText(data []byte, expr string) (string, error) {
	if err := CompileXPath(expr); err != nil {
		return "", err
	}
	doc, err := Parse(data)
	if err != nil {
		return "", err
	}
	return doc.Text(expr)
}

// Name returns the element name.
func (n *Node) Name() string {
	if n.node == nil {
		return ""
	}
	return n.node.Data
}

// InnerText returns all text content of the node and its descendants.
func (n *Node) InnerText() string {
	if n.node == nil {
		return ""
	}
	return n.node.InnerText()
}

// Attr returns the value of a specific attribute.
func (n *Node) Attr(name string) string {
	if n.node == nil {
		return ""
	}
	return n.node.SelectAttr(name)
}
