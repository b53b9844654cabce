// ABOUTME: Builds the contact reporting tree from weak manager references
// ABOUTME: Detects manager cycles with a visited-set walk and reports unknown managers
package hierarchy

import (
	"github.com/harperreed/bannerbook/models"
)

// Node is one contact and its direct reports.
type Node struct {
	Contact *models.Contact
	Reports []*Node
}

// Tree is a reporting forest. Contacts without a usable manager are roots.
type Tree struct {
	Roots []*Node
	// Cycles lists each manager cycle once, rotated to start at its smallest id.
	Cycles [][]string
	// MissingManagers maps contact id to the manager id that does not exist.
	MissingManagers map[string]string

	nodes   map[string]*Node
	manager map[string]string
}

const (
	unvisited = iota
	onPath
	done
)

// Build assembles the tree. Members of a cycle lose their manager link and
// become roots; nothing in the input is modified.
func Build(contacts []models.Contact) *Tree {
	t := &Tree{
		MissingManagers: map[string]string{},
		nodes:           make(map[string]*Node, len(contacts)),
		manager:         make(map[string]string, len(contacts)),
	}

	for i := range contacts {
		c := &contacts[i]
		if _, dup := t.nodes[c.ID]; dup {
			continue
		}
		t.nodes[c.ID] = &Node{Contact: c}
	}
	for i := range contacts {
		c := &contacts[i]
		if c.ManagerID == "" {
			continue
		}
		if _, ok := t.nodes[c.ManagerID]; !ok {
			t.MissingManagers[c.ID] = c.ManagerID
			continue
		}
		t.manager[c.ID] = c.ManagerID
	}

	inCycle := t.findCycles(contacts)
	for id := range inCycle {
		delete(t.manager, id)
	}

	attached := make(map[string]bool, len(t.nodes))
	for i := range contacts {
		id := contacts[i].ID
		if attached[id] {
			continue
		}
		attached[id] = true
		node := t.nodes[id]
		mgr, ok := t.manager[id]
		if !ok {
			t.Roots = append(t.Roots, node)
			continue
		}
		parent := t.nodes[mgr]
		parent.Reports = append(parent.Reports, node)
	}
	return t
}

func (t *Tree) findCycles(contacts []models.Contact) map[string]bool {
	state := make(map[string]int, len(t.nodes))
	inCycle := map[string]bool{}

	for i := range contacts {
		start := contacts[i].ID
		if state[start] != unvisited {
			continue
		}
		var path []string
		id := start
		for {
			if state[id] == onPath {
				cycle := cycleFrom(path, id)
				for _, member := range cycle {
					inCycle[member] = true
				}
				t.Cycles = append(t.Cycles, cycle)
				break
			}
			if state[id] == done {
				break
			}
			state[id] = onPath
			path = append(path, id)
			next, ok := t.manager[id]
			if !ok {
				break
			}
			id = next
		}
		for _, p := range path {
			state[p] = done
		}
	}
	return inCycle
}

// cycleFrom extracts the loop that re-enters path at id and rotates it so the
// smallest id comes first.
func cycleFrom(path []string, id string) []string {
	start := 0
	for i, p := range path {
		if p == id {
			start = i
			break
		}
	}
	loop := append([]string(nil), path[start:]...)
	lo := 0
	for i := range loop {
		if loop[i] < loop[lo] {
			lo = i
		}
	}
	out := make([]string, 0, len(loop))
	out = append(out, loop[lo:]...)
	return append(out, loop[:lo]...)
}

// Node returns the node for a contact id, or nil.
func (t *Tree) Node(id string) *Node {
	return t.nodes[id]
}

// Chain returns the management chain above id, nearest manager first. It
// stops at a root and never loops.
func (t *Tree) Chain(id string) []string {
	var chain []string
	seen := map[string]bool{id: true}
	for {
		mgr, ok := t.manager[id]
		if !ok || seen[mgr] {
			return chain
		}
		seen[mgr] = true
		chain = append(chain, mgr)
		id = mgr
	}
}

// Walk visits every node depth-first with its depth below the root.
func (t *Tree) Walk(fn func(n *Node, depth int)) {
	var visit func(n *Node, depth int)
	visit = func(n *Node, depth int) {
		fn(n, depth)
		for _, r := range n.Reports {
			visit(r, depth+1)
		}
	}
	for _, root := range t.Roots {
		visit(root, 0)
	}
}
