// Package catalog resolves category hierarchies for product scoping.
package catalog

import (
	"sort"

	"github.com/kendall-kelly/storefront-api/models"
	"github.com/kendall-kelly/storefront-api/query"
	"github.com/samber/lo"
)

const noParent = -1

// Tree is an arena of a tenant's categories. Nodes are addressed by slice
// index; parent and children hold indexes, not pointers.
type Tree struct {
	nodes    []models.Category
	index    map[uint]int
	parent   []int
	children [][]int
}

// NewTree builds a tree from a flat category list. Parent references to
// categories not in the list are treated as roots.
func NewTree(categories []models.Category) *Tree {
	t := &Tree{
		nodes:    make([]models.Category, len(categories)),
		index:    make(map[uint]int, len(categories)),
		parent:   make([]int, len(categories)),
		children: make([][]int, len(categories)),
	}
	copy(t.nodes, categories)
	sort.SliceStable(t.nodes, func(i, j int) bool {
		if t.nodes[i].SortOrder != t.nodes[j].SortOrder {
			return t.nodes[i].SortOrder < t.nodes[j].SortOrder
		}
		return t.nodes[i].Name < t.nodes[j].Name
	})

	for i, c := range t.nodes {
		t.index[c.ID] = i
	}
	for i, c := range t.nodes {
		t.parent[i] = noParent
		if c.ParentID == nil {
			continue
		}
		if p, ok := t.index[*c.ParentID]; ok {
			t.parent[i] = p
			t.children[p] = append(t.children[p], i)
		}
	}
	return t
}

// Len returns the number of categories in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Get returns the category with the given id.
func (t *Tree) Get(id uint) (models.Category, bool) {
	i, ok := t.index[id]
	if !ok {
		return models.Category{}, false
	}
	return t.nodes[i], true
}

// Children returns the direct children of id.
func (t *Tree) Children(id uint) []models.Category {
	i, ok := t.index[id]
	if !ok {
		return nil
	}
	out := make([]models.Category, 0, len(t.children[i]))
	for _, c := range t.children[i] {
		out = append(out, t.nodes[c])
	}
	return out
}

// Descendants returns the ids of every category below id in breadth-first
// order, excluding id itself. Each node is visited at most once, so corrupt
// parent cycles terminate.
func (t *Tree) Descendants(id uint) []uint {
	start, ok := t.index[id]
	if !ok {
		return nil
	}

	visited := make([]bool, len(t.nodes))
	visited[start] = true
	queue := []int{start}
	var out []uint

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, c := range t.children[cur] {
			if visited[c] {
				continue
			}
			visited[c] = true
			out = append(out, t.nodes[c].ID)
			queue = append(queue, c)
		}
	}
	return out
}

// Path returns the ids from the root down to id, inclusive.
func (t *Tree) Path(id uint) []uint {
	i, ok := t.index[id]
	if !ok {
		return nil
	}
	visited := make(map[int]bool)
	var path []uint
	for i != noParent && !visited[i] {
		visited[i] = true
		path = append(path, t.nodes[i].ID)
		i = t.parent[i]
	}
	return lo.Reverse(path)
}

// PartitionByLevel groups ids by their category level. Unknown ids are dropped.
func (t *Tree) PartitionByLevel(ids []uint) map[int][]uint {
	known := lo.Filter(ids, func(id uint, _ int) bool {
		_, ok := t.index[id]
		return ok
	})
	return lo.GroupBy(known, func(id uint) int {
		return t.nodes[t.index[id]].Level
	})
}

// levelColumns maps a category level to the product column storing it.
var levelColumns = map[int]string{
	models.LevelTop:  "category_id",
	models.LevelSub:  "sub_category_id",
	models.LevelLeaf: "sub_sub_category_id",
}

// ProductScope returns a predicate matching products filed under id or any
// of its descendants. ok is false when id is not in the tree.
func (t *Tree) ProductScope(id uint) (query.Predicate, bool) {
	if _, ok := t.index[id]; !ok {
		return nil, false
	}

	ids := append([]uint{id}, t.Descendants(id)...)
	byLevel := t.PartitionByLevel(ids)

	var scope query.AnyOf
	for _, level := range []int{models.LevelTop, models.LevelSub, models.LevelLeaf} {
		if group := byLevel[level]; len(group) > 0 {
			scope = append(scope, query.In(levelColumns[level], group))
		}
	}
	return scope, true
}

// Node is a category with its children, for rendering nested trees.
type Node struct {
	models.Category
	Children []*Node `json:"children"`
}

// Nested returns the forest of root categories with their subtrees. When
// activeOnly is set, inactive categories and everything below them are left out.
func (t *Tree) Nested(activeOnly bool) []*Node {
	visited := make([]bool, len(t.nodes))

	var build func(i int) *Node
	build = func(i int) *Node {
		visited[i] = true
		n := &Node{Category: t.nodes[i], Children: []*Node{}}
		for _, c := range t.children[i] {
			if visited[c] || (activeOnly && !t.nodes[c].IsActive) {
				continue
			}
			n.Children = append(n.Children, build(c))
		}
		return n
	}

	roots := []*Node{}
	for i := range t.nodes {
		if t.parent[i] != noParent || (activeOnly && !t.nodes[i].IsActive) {
			continue
		}
		roots = append(roots, build(i))
	}
	return roots
}
