package domain

// FindNode returns the node with the given id, or nil.
func FindNode(root *ConditionNode, id string) *ConditionNode {
	if root == nil {
		return nil
	}
	if root.ID == id {
		return root
	}
	for _, child := range root.Children {
		if found := FindNode(child, id); found != nil {
			return found
		}
	}
	return nil
}

// FindParent returns the group that directly contains the node with the
// given id, or nil when id is the root or absent.
func FindParent(root *ConditionNode, id string) *ConditionNode {
	if root == nil {
		return nil
	}
	for _, child := range root.Children {
		if child != nil && child.ID == id {
			return root
		}
		if found := FindParent(child, id); found != nil {
			return found
		}
	}
	return nil
}

// CollectIndicatorNodes returns every indicator leaf in depth-first order.
func CollectIndicatorNodes(root *ConditionNode) []*ConditionNode {
	var out []*ConditionNode
	walk(root, func(n *ConditionNode) {
		if n.Kind == NodeIndicator && n.Indicator != nil {
			out = append(out, n)
		}
	})
	return out
}

// CollectGroupNodes returns every group node in depth-first order,
// including the root.
func CollectGroupNodes(root *ConditionNode) []*ConditionNode {
	var out []*ConditionNode
	walk(root, func(n *ConditionNode) {
		if n.Kind == NodeGroup {
			out = append(out, n)
		}
	})
	return out
}

func walk(n *ConditionNode, fn func(*ConditionNode)) {
	if n == nil {
		return
	}
	fn(n)
	for _, child := range n.Children {
		walk(child, fn)
	}
}

// InsertChild appends a node to the group with the given id. It reports
// whether the group was found.
func InsertChild(root *ConditionNode, groupID string, node *ConditionNode) bool {
	group := FindNode(root, groupID)
	if group == nil || group.Kind != NodeGroup || node == nil {
		return false
	}
	group.Children = append(group.Children, node)
	return true
}

// RemoveNode detaches the node with the given id from its parent group.
// The root itself cannot be removed.
func RemoveNode(root *ConditionNode, id string) bool {
	parent := FindParent(root, id)
	if parent == nil {
		return false
	}
	for i, child := range parent.Children {
		if child != nil && child.ID == id {
			parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
			return true
		}
	}
	return false
}

// ReplaceGroupOperator switches a group between and/or.
func ReplaceGroupOperator(root *ConditionNode, groupID string, op AggregatorOperator) bool {
	if op != AggregatorAnd && op != AggregatorOr {
		return false
	}
	group := FindNode(root, groupID)
	if group == nil || group.Kind != NodeGroup {
		return false
	}
	group.Operator = op
	return true
}

// MoveNode shifts a node one position among its siblings. delta must be
// -1 (up) or +1 (down); moves past either end are no-ops.
func MoveNode(root *ConditionNode, id string, delta int) bool {
	if delta != -1 && delta != 1 {
		return false
	}
	parent := FindParent(root, id)
	if parent == nil {
		return false
	}
	for i, child := range parent.Children {
		if child == nil || child.ID != id {
			continue
		}
		j := i + delta
		if j < 0 || j >= len(parent.Children) {
			return false
		}
		parent.Children[i], parent.Children[j] = parent.Children[j], parent.Children[i]
		return true
	}
	return false
}

// DuplicateNode deep-copies the node with the given id and inserts the
// copy right after the original among its siblings. The copy and its
// descendants get fresh ids. Returns the copy, or nil when id is the
// root or absent.
func DuplicateNode(root *ConditionNode, id string) *ConditionNode {
	parent := FindParent(root, id)
	if parent == nil {
		return nil
	}
	for i, child := range parent.Children {
		if child == nil || child.ID != id {
			continue
		}
		dup := cloneNode(child)
		parent.Children = append(parent.Children, nil)
		copy(parent.Children[i+2:], parent.Children[i+1:])
		parent.Children[i+1] = dup
		return dup
	}
	return nil
}

func cloneNode(n *ConditionNode) *ConditionNode {
	c := *n
	c.ID = newNodeID()
	if n.Indicator != nil {
		entry := *n.Indicator
		entry.ID = newEntryID()
		entry.Config.Actions = append([]string(nil), entry.Config.Actions...)
		c.Indicator = &entry
	}
	if n.Comparison != nil {
		cmp := *n.Comparison
		c.Comparison = &cmp
	}
	if n.Candle != nil {
		cc := *n.Candle
		c.Candle = &cc
	}
	if n.Action != nil {
		a := *n.Action
		c.Action = &a
	}
	if len(n.Children) > 0 {
		c.Children = make([]*ConditionNode, 0, len(n.Children))
		for _, child := range n.Children {
			if child != nil {
				c.Children = append(c.Children, cloneNode(child))
			}
		}
	}
	return &c
}

// EnsureGroup wraps the node with the given id in a new group carrying
// the requested operator, keeping the node's position. The root cannot
// be wrapped; EnsureGroup returns nil in that case.
func EnsureGroup(root *ConditionNode, id string, op AggregatorOperator) *ConditionNode {
	parent := FindParent(root, id)
	if parent == nil {
		return nil
	}
	for i, child := range parent.Children {
		if child != nil && child.ID == id {
			group := NewConditionGroup(op, child)
			parent.Children[i] = group
			return group
		}
	}
	return nil
}
