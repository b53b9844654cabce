// ABOUTME: Org chart generation for one account with go-graphviz
// ABOUTME: Draws banners, contacts, and reporting lines, marking manager cycles in red
package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/harperreed/bannerbook/hierarchy"
	"github.com/harperreed/bannerbook/models"
	"github.com/harperreed/bannerbook/resolve"
)

// GenerateOrgChart renders the account's reporting structure as DOT source.
// Contacts of other accounts are ignored. Contacts without a manager hang off
// their banner, or the account when they have none.
func GenerateOrgChart(account *models.Account, contacts []models.Contact) (string, error) {
	if account == nil {
		return "", fmt.Errorf("account is required")
	}

	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz: %w", err)
	}
	defer func() { _ = gv.Close() }()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer func() { _ = graph.Close() }()

	graph.SetLabel(account.Name + " org chart")
	graph.SetRankDir(cgraph.TBRank)

	root, err := graph.CreateNodeByName("account_" + account.ID)
	if err != nil {
		return "", fmt.Errorf("failed to create account node: %w", err)
	}
	root.SetLabel(account.Name)
	root.SetShape("box")
	root.SetStyle("filled")
	root.SetFillColor("lightblue")

	bannerNodes := make(map[string]*cgraph.Node)
	for _, b := range account.BannerBuyingOffices {
		node, err := graph.CreateNodeByName("banner_" + b.ID)
		if err != nil {
			return "", fmt.Errorf("failed to create banner node: %w", err)
		}
		label := b.Name
		if ch := resolve.Resolve("channel", &b, account); ch.Text != "" {
			label += "\n" + ch.Text
		}
		node.SetLabel(label)
		node.SetShape("box")
		node.SetStyle("rounded")
		bannerNodes[b.ID] = node
		if _, err := graph.CreateEdgeByName("", root, node); err != nil {
			return "", fmt.Errorf("failed to create banner edge: %w", err)
		}
	}

	var members []models.Contact
	for _, c := range contacts {
		if c.AccountID == account.ID {
			members = append(members, c)
		}
	}
	tree := hierarchy.Build(members)

	inCycle := map[string]bool{}
	for _, cycle := range tree.Cycles {
		for _, id := range cycle {
			inCycle[id] = true
		}
	}

	contactNodes := make(map[string]*cgraph.Node)
	for _, c := range members {
		if _, dup := contactNodes[c.ID]; dup {
			continue
		}
		node, err := graph.CreateNodeByName("contact_" + c.ID)
		if err != nil {
			return "", fmt.Errorf("failed to create contact node: %w", err)
		}
		label := c.Name()
		if c.Title != "" {
			label += "\n" + c.Title
		}
		node.SetLabel(label)
		node.SetShape("ellipse")
		node.SetStyle("filled")
		if c.IsPrimaryContact {
			node.SetFillColor("gold")
		} else {
			node.SetFillColor("lightgreen")
		}
		if inCycle[c.ID] {
			node.SetColor("red")
		}
		contactNodes[c.ID] = node
	}

	var edgeErr error
	tree.Walk(func(n *hierarchy.Node, depth int) {
		if edgeErr != nil {
			return
		}
		child := contactNodes[n.Contact.ID]
		for _, r := range n.Reports {
			if _, err := graph.CreateEdgeByName("", child, contactNodes[r.Contact.ID]); err != nil {
				edgeErr = err
				return
			}
		}
		if depth > 0 {
			return
		}
		parent := root
		if b := resolve.BannerFor(n.Contact, account); b != nil {
			parent = bannerNodes[b.ID]
		}
		if _, err := graph.CreateEdgeByName("", parent, child); err != nil {
			edgeErr = err
		}
	})
	if edgeErr != nil {
		return "", fmt.Errorf("failed to create reporting edge: %w", edgeErr)
	}

	for _, cycle := range tree.Cycles {
		for i, id := range cycle {
			next := cycle[(i+1)%len(cycle)]
			// Cycle links are cut from the tree; draw them back as manager edges.
			edge, err := graph.CreateEdgeByName("", contactNodes[next], contactNodes[id])
			if err != nil {
				return "", fmt.Errorf("failed to create cycle edge: %w", err)
			}
			edge.SetColor("red")
			edge.SetStyle("dashed")
			edge.SetLabel("cycle")
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}
	return buf.String(), nil
}
