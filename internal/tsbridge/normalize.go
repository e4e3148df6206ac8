package tsbridge

import (
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"
)

// tagOverrides maps raw tree-sitter node types to canonical type tags,
// per language, where the generic suffix rules get it wrong.
var tagOverrides = map[string]map[string]string{
	"go": {
		"source_file":           "file",
		"expression_statement":  "statement",
		"short_var_declaration": "statement",
		"func_literal":          "function",
	},
	"python": {
		"module":               "file",
		"expression_statement": "statement",
		"elif_clause":          "if",
		"else_clause":          "else",
		"decorated_definition": "statement",
	},
	"java": {
		"program":                      "file",
		"expression_statement":         "statement",
		"enhanced_for_statement":       "foreach",
		"try_with_resources_statement": "try",
	},
	"javascript": {
		"program":              "file",
		"expression_statement": "statement",
		"method_definition":    "method",
		"arrow_function":       "function",
		"lexical_declaration":  "statement",
		"variable_declaration": "statement",
	},
}

// normalizeTag converts a raw tree-sitter node type into the canonical
// type tag used in path expressions: language overrides first, then the
// generic _statement/_declaration/_definition suffix rules.
func normalizeTag(language, raw string) string {
	if o, ok := tagOverrides[language][raw]; ok {
		return o
	}
	for _, suffix := range []string{"_statement", "_declaration", "_definition", "_expression"} {
		if strings.HasSuffix(raw, suffix) {
			return strings.TrimSuffix(raw, suffix)
		}
	}
	return raw
}

// modifierTokens are raw child tokens collected into a node's modifier
// set.
var modifierTokens = map[string]bool{
	"async":        true,
	"static":       true,
	"abstract":     true,
	"final":        true,
	"public":       true,
	"private":      true,
	"protected":    true,
	"default":      true,
	"synchronized": true,
	"native":       true,
	"override":     true,
	"readonly":     true,
	"const":        true,
}

// extractModifiers collects modifier flags for a raw node: direct keyword
// tokens, java-style "modifiers" child groups, and for Go the exported /
// unexported convention mapped onto public.
func extractModifiers(language string, n *sitter.Node, name string) []string {
	var mods []string
	add := func(m string) {
		for _, have := range mods {
			if have == m {
				return
			}
		}
		mods = append(mods, m)
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		t := c.Type()
		if t == "modifiers" {
			for j := 0; j < int(c.ChildCount()); j++ {
				if tok := c.Child(j).Type(); modifierTokens[tok] {
					add(tok)
				}
			}
			continue
		}
		if modifierTokens[t] {
			add(t)
		}
	}

	if language == "go" && name != "" {
		r := []rune(name)[0]
		if unicode.IsUpper(r) {
			add("public")
		}
	}
	return mods
}

// declaredName extracts a node's declared name via tree-sitter field
// lookup, or "" for anonymous nodes.
func declaredName(n *sitter.Node, src []byte) string {
	name := n.ChildByFieldName("name")
	if name == nil {
		return ""
	}
	return name.Content(src)
}

// goTypeSpecTag refines Go's type_spec into struct/interface/type based on
// the declared underlying type.
func goTypeSpecTag(n *sitter.Node) string {
	typ := n.ChildByFieldName("type")
	if typ == nil {
		return "type"
	}
	switch typ.Type() {
	case "struct_type":
		return "struct"
	case "interface_type":
		return "interface"
	}
	return "type"
}
