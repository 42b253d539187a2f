// Package classnames merges CSS utility class lists: it flattens nested
// inputs, drops falsy values, and resolves same-family utility conflicts by
// keeping the last occurrence.
package classnames

import "strings"

// Merge flattens the given values into a class string. Accepted inputs:
// strings (possibly space-separated), []string, []any (nested arbitrarily),
// map[string]bool (class kept when true), and nil/false which are dropped.
//
// Two tokens conflict when they share a utility family, the prefix up to
// the last '-' (so "px-2" and "px-4" conflict, "foo" and "bar" do not).
// The later token wins and keeps its position.
func Merge(values ...any) string {
	var tokens []string
	for _, v := range values {
		tokens = flatten(tokens, v)
	}

	type slot struct {
		index int
		token string
	}
	order := make([]string, 0, len(tokens))    // family order of first appearance
	chosen := make(map[string]slot, len(tokens)) // family -> winning token
	for _, tok := range tokens {
		fam := family(tok)
		if prev, ok := chosen[fam]; ok {
			chosen[fam] = slot{index: prev.index, token: tok}
			continue
		}
		chosen[fam] = slot{index: len(order), token: tok}
		order = append(order, fam)
	}

	out := make([]string, 0, len(order))
	for _, fam := range order {
		out = append(out, chosen[fam].token)
	}
	return strings.Join(out, " ")
}

func flatten(acc []string, v any) []string {
	switch x := v.(type) {
	case nil:
		return acc
	case bool:
		return acc
	case string:
		for _, tok := range strings.Fields(x) {
			acc = append(acc, tok)
		}
		return acc
	case []string:
		for _, s := range x {
			acc = flatten(acc, s)
		}
		return acc
	case []any:
		for _, e := range x {
			acc = flatten(acc, e)
		}
		return acc
	case map[string]bool:
		for name, on := range x {
			if on {
				acc = flatten(acc, name)
			}
		}
		return acc
	default:
		return acc
	}
}

// family returns the conflict group for a token: everything before the last
// '-'. Tokens without a '-' are their own family, so plain names never
// collide with each other.
func family(tok string) string {
	if i := strings.LastIndex(tok, "-"); i > 0 {
		return tok[:i]
	}
	return tok
}
