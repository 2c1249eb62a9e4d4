package figure

import "fmt"

// Kind is the closed classification assigned to a figure node.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindEquation
	KindGraphSimple
	KindGraphComplex
	KindTableMarkup
	KindTableImage
	KindEquationImage
	KindMixedInline
	kindCount
)

var kindNames = [kindCount]string{
	KindUnknown:       "unknown",
	KindEquation:      "equation",
	KindGraphSimple:   "graph-simple",
	KindGraphComplex:  "graph-complex",
	KindTableMarkup:   "table-markup",
	KindTableImage:    "table-image",
	KindEquationImage: "equation-image",
	KindMixedInline:   "mixed-inline",
}

// Kinds lists every kind, unknown first.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := KindUnknown; k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

func (k Kind) String() string {
	if k >= kindCount {
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// ParseKind maps a kind name back to its Kind.
func ParseKind(s string) (Kind, error) {
	for k := KindUnknown; k < kindCount; k++ {
		if kindNames[k] == s {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown figure kind %q", s)
}

// FileSuffix is the kind's segment in persisted image names.
func (k Kind) FileSuffix() string {
	switch k {
	case KindEquation:
		return "equation"
	case KindGraphSimple, KindGraphComplex:
		return "graph"
	case KindTableMarkup, KindTableImage:
		return "table"
	case KindEquationImage:
		return "equation_img"
	case KindMixedInline:
		return "mixed"
	default:
		return "figure"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
