// Package hierarchy parses Android UI hierarchy dumps and resolves
// symbolic element references to tap coordinates.
package hierarchy

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// Bounds is an element's position as two corner points in device pixels.
type Bounds struct {
	X1, Y1, X2, Y2 int
}

// Center returns the tap point for the bounds.
func (b Bounds) Center() (int, int) {
	return (b.X1 + b.X2) / 2, (b.Y1 + b.Y2) / 2
}

// String renders the bounds in Android dump format.
func (b Bounds) String() string {
	return fmt.Sprintf("[%d,%d][%d,%d]", b.X1, b.Y1, b.X2, b.Y2)
}

// BoundsError reports a malformed bounds attribute. It is a distinct type
// so callers can tell a parse failure apart from an element simply not
// being present.
type BoundsError struct {
	Raw string
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("malformed bounds string: %q", e.Raw)
}

// Element is one node of the UI snapshot, flattened into document order.
type Element struct {
	Text        string
	ResourceID  string
	Hint        string
	ContentDesc string
	ClassName   string
	Bounds      Bounds
	Clickable   bool
	Enabled     bool
	Depth       int
}

// node is the recursive XML shape of a uiautomator dump.
type node struct {
	XMLName     xml.Name
	Text        string `xml:"text,attr"`
	ResourceID  string `xml:"resource-id,attr"`
	Hint        string `xml:"hint,attr"`
	ContentDesc string `xml:"content-desc,attr"`
	Class       string `xml:"class,attr"`
	Bounds      string `xml:"bounds,attr"`
	Clickable   string `xml:"clickable,attr"`
	Enabled     string `xml:"enabled,attr"`
	Children    []node `xml:",any"`
}

// Parse decodes a uiautomator XML dump into a flat element list in
// document (depth-first) order. Elements carrying a malformed bounds
// attribute fail the whole parse with a *BoundsError rather than being
// silently placed at the origin.
func Parse(xmlData string) ([]Element, error) {
	var root struct {
		XMLName  xml.Name `xml:"hierarchy"`
		Children []node   `xml:",any"`
	}

	if err := xml.Unmarshal([]byte(xmlData), &root); err != nil {
		return nil, fmt.Errorf("parse ui hierarchy: %w", err)
	}

	var elements []Element
	var walk func(n node, depth int) error
	walk = func(n node, depth int) error {
		elem := Element{
			Text:        n.Text,
			ResourceID:  n.ResourceID,
			Hint:        n.Hint,
			ContentDesc: n.ContentDesc,
			ClassName:   n.Class,
			Clickable:   n.Clickable == "true",
			Enabled:     n.Enabled != "false",
			Depth:       depth,
		}
		if n.Class == "" {
			elem.ClassName = n.XMLName.Local
		}

		if n.Bounds != "" {
			b, err := ParseBounds(n.Bounds)
			if err != nil {
				return err
			}
			elem.Bounds = b
		}

		elements = append(elements, elem)
		for _, child := range n.Children {
			if err := walk(child, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	for _, child := range root.Children {
		if err := walk(child, 0); err != nil {
			return nil, err
		}
	}

	return elements, nil
}

// ParseBounds parses an Android bounds string "[x1,y1][x2,y2]".
func ParseBounds(s string) (Bounds, error) {
	trimmed := strings.ReplaceAll(s, "][", ",")
	trimmed = strings.TrimPrefix(trimmed, "[")
	trimmed = strings.TrimSuffix(trimmed, "]")
	parts := strings.Split(trimmed, ",")
	if len(parts) != 4 || !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return Bounds{}, &BoundsError{Raw: s}
	}

	vals := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Bounds{}, &BoundsError{Raw: s}
		}
		vals[i] = v
	}

	return Bounds{X1: vals[0], Y1: vals[1], X2: vals[2], Y2: vals[3]}, nil
}
