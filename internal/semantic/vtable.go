package semantic

import "github.com/flaxengine/bindgen/internal/model"

// computeVTables lays out the script vtables: offset is the
// accumulated vtable size of the base class plus (for each public
// interface) the interface's own vtable size; size is offset plus the
// count of virtual functions declared directly on the class. Sealed
// classes collapse to (0,0).
func (s *state) computeVTables(module *model.Module) {
	// Interfaces have no base of their own, so their own vtable size
	// is simply their function count; compute these first so classes that
	// implement them can sum them below.
	walkTypes(module, func(n model.Node) {
		if i, ok := n.(*model.Interface); ok {
			i.ScriptVTableSize = len(i.Functions)
		}
	})

	memo := map[*model.Class][2]int{}
	walkTypes(module, func(n model.Node) {
		if c, ok := n.(*model.Class); ok {
			offset, size := s.vtableOf(c, memo)
			c.ScriptVTableOffset = offset
			c.ScriptVTableSize = size
		}
	})
}

func (s *state) vtableOf(c *model.Class, memo map[*model.Class][2]int) (offset, size int) {
	if v, ok := memo[c]; ok {
		return v[0], v[1]
	}
	if c.IsSealed {
		memo[c] = [2]int{0, 0}
		return 0, 0
	}

	baseSize := 0
	if base, ok := c.ResolvedBase.(*model.Class); ok {
		_, baseSize = s.vtableOf(base, memo)
	}

	// Only publicly implemented interfaces expose override slots; a
	// private or protected interface stays invisible to managed
	// subclasses and contributes nothing to the offset.
	interfaceSize := 0
	for i, ifaceRef := range c.Interfaces {
		if i < len(c.InterfaceAccesses) && c.InterfaceAccesses[i] != model.AccessPublic {
			continue
		}
		node, ok := s.build.Resolve(ifaceRef, c.Info().Parent)
		if !ok {
			continue
		}
		if iface, ok := node.(*model.Interface); ok {
			interfaceSize += iface.ScriptVTableSize
		}
	}

	offset = baseSize + interfaceSize
	size = offset + len(c.VirtualFunctions())
	memo[c] = [2]int{offset, size}
	return offset, size
}
