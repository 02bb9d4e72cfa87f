package diamond

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/trebuchet-org/cutter/internal/domain"
)

var (
	identifierPattern  = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)
	elementaryPattern  = regexp.MustCompile(`^[a-z]+[0-9]*(x[0-9]+)?(\[[0-9]*\])*$`)
	arraySuffixPattern = regexp.MustCompile(`^(\[[0-9]*\])*$`)
)

// Codec derives selectors from canonical signatures and memoizes them.
type Codec struct {
	cache sync.Map // signature -> domain.Selector
}

// NewCodec creates an empty codec
func NewCodec() *Codec {
	return &Codec{}
}

var defaultCodec = NewCodec()

// SelectorOf returns bytes4(keccak256(signature)) for a canonical signature.
func SelectorOf(signature string) (domain.Selector, error) {
	return defaultCodec.SelectorOf(signature)
}

// MustSelectorOf is SelectorOf for signatures known to be canonical.
func MustSelectorOf(signature string) domain.Selector {
	sel, err := SelectorOf(signature)
	if err != nil {
		panic(err)
	}
	return sel
}

// SelectorOf computes (or returns the cached) selector for signature.
func (c *Codec) SelectorOf(signature string) (domain.Selector, error) {
	if cached, ok := c.cache.Load(signature); ok {
		return cached.(domain.Selector), nil
	}

	method, err := methodFromSignature(signature)
	if err != nil {
		return domain.Selector{}, &domain.ConfigurationError{
			Subject: fmt.Sprintf("signature %q", signature),
			Reason:  "malformed",
			Err:     err,
		}
	}
	if method.Sig != signature {
		return domain.Selector{}, domain.NewConfigurationError(
			fmt.Sprintf("signature %q", signature), "not canonical, expected %q", method.Sig)
	}

	var sel domain.Selector
	copy(sel[:], method.ID)
	c.cache.Store(signature, sel)
	return sel, nil
}

// SelectorsOf maps every signature to its selector, failing on the first bad one.
func (c *Codec) SelectorsOf(signatures []string) ([]domain.Selector, error) {
	out := make([]domain.Selector, 0, len(signatures))
	for _, sig := range signatures {
		sel, err := c.SelectorOf(sig)
		if err != nil {
			return nil, err
		}
		out = append(out, sel)
	}
	return out, nil
}

// SignaturesFromABI lists the canonical signatures of every method in the
// ABI, sorted, without the excluded ones.
func SignaturesFromABI(contractABI abi.ABI, exclude ...string) []string {
	skip := make(map[string]bool, len(exclude))
	for _, sig := range exclude {
		skip[sig] = true
	}

	sigs := make([]string, 0, len(contractABI.Methods))
	for _, method := range contractABI.Methods {
		if skip[method.Sig] {
			continue
		}
		sigs = append(sigs, method.Sig)
	}
	sort.Strings(sigs)
	return sigs
}

// methodFromSignature rebuilds an abi.Method from name(type,...). The
// resulting Method.Sig is the canonical spelling and Method.ID its selector.
func methodFromSignature(signature string) (abi.Method, error) {
	if strings.IndexFunc(signature, unicode.IsSpace) >= 0 {
		return abi.Method{}, fmt.Errorf("whitespace is not allowed")
	}

	open := strings.IndexByte(signature, '(')
	if open <= 0 || !strings.HasSuffix(signature, ")") {
		return abi.Method{}, fmt.Errorf("expected name(type,...)")
	}

	name := signature[:open]
	if !identifierPattern.MatchString(name) {
		return abi.Method{}, fmt.Errorf("invalid function name %q", name)
	}

	params, err := splitTopLevel(signature[open+1 : len(signature)-1])
	if err != nil {
		return abi.Method{}, err
	}

	inputs := make(abi.Arguments, 0, len(params))
	for i, param := range params {
		marshaling, err := toArgumentMarshaling(param, i)
		if err != nil {
			return abi.Method{}, err
		}
		typ, err := abi.NewType(marshaling.Type, "", marshaling.Components)
		if err != nil {
			return abi.Method{}, fmt.Errorf("parameter %d: %w", i, err)
		}
		inputs = append(inputs, abi.Argument{Name: marshaling.Name, Type: typ})
	}

	return abi.NewMethod(name, name, abi.Function, "nonpayable", false, false, inputs, nil), nil
}

// toArgumentMarshaling converts a type expression into the form abi.NewType
// expects, expanding tuples into named components.
func toArgumentMarshaling(typ string, index int) (abi.ArgumentMarshaling, error) {
	name := fmt.Sprintf("f%d", index)

	if !strings.HasPrefix(typ, "(") {
		if !elementaryPattern.MatchString(typ) {
			return abi.ArgumentMarshaling{}, fmt.Errorf("invalid type %q", typ)
		}
		return abi.ArgumentMarshaling{Name: name, Type: typ}, nil
	}

	end := matchingParen(typ)
	if end < 0 {
		return abi.ArgumentMarshaling{}, fmt.Errorf("unbalanced parentheses in %q", typ)
	}
	suffix := typ[end+1:]
	if !arraySuffixPattern.MatchString(suffix) {
		return abi.ArgumentMarshaling{}, fmt.Errorf("invalid tuple suffix %q", suffix)
	}

	elems, err := splitTopLevel(typ[1:end])
	if err != nil {
		return abi.ArgumentMarshaling{}, err
	}
	if len(elems) == 0 {
		return abi.ArgumentMarshaling{}, fmt.Errorf("empty tuple in %q", typ)
	}

	components := make([]abi.ArgumentMarshaling, 0, len(elems))
	for i, elem := range elems {
		component, err := toArgumentMarshaling(elem, i)
		if err != nil {
			return abi.ArgumentMarshaling{}, err
		}
		components = append(components, component)
	}

	return abi.ArgumentMarshaling{Name: name, Type: "tuple" + suffix, Components: components}, nil
}

// splitTopLevel splits a comma separated type list, ignoring commas inside tuples.
func splitTopLevel(list string) ([]string, error) {
	if list == "" {
		return nil, nil
	}

	var (
		parts []string
		depth int
		start int
	)
	for i, r := range list {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced parentheses in %q", list)
			}
		case ',':
			if depth == 0 {
				parts = append(parts, list[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced parentheses in %q", list)
	}
	parts = append(parts, list[start:])

	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("empty type in %q", list)
		}
	}
	return parts, nil
}

// matchingParen returns the index of the parenthesis closing s[0].
func matchingParen(s string) int {
	depth := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
