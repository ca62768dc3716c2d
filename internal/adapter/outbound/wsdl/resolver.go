package wsdl

import (
	"fmt"

	"github.com/soapsift/soapsift/internal/domain"
)

// maxResolveDepth bounds flattening independently of cycle detection, so a
// deeply-layered but acyclic graph cannot exhaust memory either. Realistic
// schemas stay well under this.
const maxResolveDepth = 20

const (
	typeUnresolved = "unresolved"
	typeObject     = "object"
)

// resolveElement flattens the type behind a global element into a bounded
// attribute tree. The second return is false when the element itself is
// unknown to the registry.
//
// Cycle handling uses a path-local in-progress set, not a global visited
// set: the same type reached via two independent paths is expanded once per
// occurrence, since each occurrence may carry different downstream context.
// Only a type already being expanded on the current path terminates as a
// circular sentinel.
func (r *typeRegistry) resolveElement(root domain.QName, warn func(string)) ([]domain.ResolvedAttribute, bool) {
	ref, ok := r.elements[root]
	if !ok {
		return nil, false
	}
	inProgress := make(map[domain.QName]bool)

	if ref.inline != nil {
		return r.expandAttrs(ref.inline, root.Namespace, 0, inProgress, warn), true
	}
	if ref.qname == (domain.QName{}) {
		// Element with neither type nor inline content.
		return nil, true
	}
	if ref.qname.Namespace == xsdNamespace {
		// Primitive-typed root element: a single-attribute payload.
		return []domain.ResolvedAttribute{{
			Name:      root.Local,
			Type:      ref.qname.Local,
			Namespace: root.Namespace,
		}}, true
	}
	target, ok := r.types[ref.qname]
	if !ok {
		// The declared type name may itself be a global element carrying the
		// real type; the root path gets the same fallback nested attributes do.
		if elRef, found := r.elements[ref.qname]; found && !elRef.isZero() {
			attr := r.followElementRef(root.Local, ref.qname, elRef, 0, inProgress, warn)
			return []domain.ResolvedAttribute{attr}, true
		}
		warn(fmt.Sprintf("element %s references unknown type %s", root, ref.qname))
		return []domain.ResolvedAttribute{{
			Name:      root.Local,
			Type:      typeUnresolved,
			Namespace: ref.qname.Namespace,
		}}, true
	}
	inProgress[ref.qname] = true
	attrs := r.expandAttrs(target, ref.qname.Namespace, 0, inProgress, warn)
	delete(inProgress, ref.qname)
	return attrs, true
}

// expandAttrs produces one ResolvedAttribute per declared attribute of ct,
// recursing into complex types. declNS is the namespace the attributes are
// declared in; it tags primitives, while complex attributes carry the
// namespace their type is actually defined in, even when that type arrived
// through a chain of imports.
func (r *typeRegistry) expandAttrs(ct *complexType, declNS string, depth int, inProgress map[domain.QName]bool, warn func(string)) []domain.ResolvedAttribute {
	attrs := make([]domain.ResolvedAttribute, 0, len(ct.attrs))
	for _, decl := range ct.attrs {
		attrs = append(attrs, r.expandAttr(decl, declNS, depth, inProgress, warn))
	}
	return attrs
}

func (r *typeRegistry) expandAttr(decl attrDecl, declNS string, depth int, inProgress map[domain.QName]bool, warn func(string)) domain.ResolvedAttribute {
	ref := decl.ref

	// Anonymous inline type: no identity, so it can never cycle by name.
	// The depth bound still applies.
	if ref.inline != nil {
		attr := domain.ResolvedAttribute{Name: decl.name, Type: typeObject, Namespace: declNS}
		if depth+1 < maxResolveDepth {
			attr.Children = r.expandAttrs(ref.inline, declNS, depth+1, inProgress, warn)
		}
		return attr
	}

	qn := ref.qname
	if qn == (domain.QName{}) {
		// An element reference whose target element carries the type.
		elQN := domain.QName{Namespace: declNS, Local: decl.name}
		if elRef, ok := r.elements[elQN]; ok && !elRef.isZero() {
			return r.followElementRef(decl.name, elQN, elRef, depth, inProgress, warn)
		}
		warn(fmt.Sprintf("attribute %q has no resolvable type declaration", decl.name))
		return domain.ResolvedAttribute{Name: decl.name, Type: typeUnresolved, Namespace: declNS}
	}

	if qn.Namespace == xsdNamespace {
		return domain.ResolvedAttribute{Name: decl.name, Type: qn.Local, Namespace: declNS}
	}

	target, ok := r.types[qn]
	if !ok {
		// Could be an element ref to a globally declared element.
		if elRef, ok := r.elements[qn]; ok && !elRef.isZero() {
			return r.followElementRef(decl.name, qn, elRef, depth, inProgress, warn)
		}
		warn(fmt.Sprintf("attribute %q references unknown type %s", decl.name, qn))
		return domain.ResolvedAttribute{Name: decl.name, Type: typeUnresolved, Namespace: qn.Namespace}
	}

	// Re-entering a type already on the current path: emit the sentinel
	// instead of recursing. Cycles are expected and handled, never errors.
	if inProgress[qn] {
		return domain.ResolvedAttribute{
			Name:      decl.name,
			Type:      qn.Local,
			Namespace: qn.Namespace,
			Circular:  true,
		}
	}

	attr := domain.ResolvedAttribute{Name: decl.name, Type: qn.Local, Namespace: qn.Namespace}
	if depth+1 >= maxResolveDepth {
		warn(fmt.Sprintf("attribute %q exceeds maximum resolution depth %d, truncating", decl.name, maxResolveDepth))
		return attr
	}
	inProgress[qn] = true
	attr.Children = r.expandAttrs(target, qn.Namespace, depth+1, inProgress, warn)
	delete(inProgress, qn)
	return attr
}

// followElementRef resolves an attribute whose reference lands on a global
// element instead of a named type. Element hops join the same path-local
// in-progress set and depth bound as type expansion, so a self-referential
// element or a chain of elements naming each other terminates with a
// sentinel just like a type cycle does.
func (r *typeRegistry) followElementRef(name string, elQN domain.QName, elRef typeRef, depth int, inProgress map[domain.QName]bool, warn func(string)) domain.ResolvedAttribute {
	if inProgress[elQN] {
		return domain.ResolvedAttribute{
			Name:      name,
			Type:      elQN.Local,
			Namespace: elQN.Namespace,
			Circular:  true,
		}
	}
	if depth+1 >= maxResolveDepth {
		warn(fmt.Sprintf("attribute %q exceeds maximum resolution depth %d, truncating", name, maxResolveDepth))
		return domain.ResolvedAttribute{Name: name, Type: elQN.Local, Namespace: elQN.Namespace}
	}
	inProgress[elQN] = true
	attr := r.expandAttr(attrDecl{name: name, ref: elRef}, elQN.Namespace, depth+1, inProgress, warn)
	delete(inProgress, elQN)
	return attr
}
