package ics

import (
	"errors"

	"github.com/emersion/go-ical"
)

// ErrFilterRoot is returned when a filter predicate rejects the root
// component; the root is never removable.
var ErrFilterRoot = errors.New("ics: cannot filter the root component")

// Walk visits every component starting at root, breadth-first.
// Siblings are visited in document order. The tree is not mutated.
func Walk(root *ical.Component, visit func(*ical.Component)) {
	queue := []*ical.Component{root}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		visit(c)
		queue = append(queue, c.Children...)
	}
}

// FilterTree prunes the tree breadth-first: children for which keep
// returns false are detached from their parent immediately; children
// passing are enqueued and filtered recursively. Descendants of a
// removed child are not independently tested. The removed subtrees are
// returned in discovery order.
func FilterTree(root *ical.Component, keep func(*ical.Component) bool) ([]*ical.Component, error) {
	if !keep(root) {
		return nil, ErrFilterRoot
	}
	var removed []*ical.Component
	queue := []*ical.Component{root}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]

		var kept []*ical.Component
		for _, child := range c.Children {
			if keep(child) {
				kept = append(kept, child)
				queue = append(queue, child)
			} else {
				removed = append(removed, child)
			}
		}
		c.Children = kept
	}
	return removed, nil
}
