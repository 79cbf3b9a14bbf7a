// Package translator defines the contract shared by the components turning a
// specification graph into a target representation.
package translator

import (
	"context"
	"fmt"
	"strings"

	"github.com/architeacher/queryspec/pkg/spec"
)

type (
	Translator[R any] interface {
		Translate(ctx context.Context, root *spec.Node) (R, error)
	}

	// Named is implemented by translators reporting a stable name for logs,
	// metrics and spans.
	Named interface {
		Name() string
	}

	// Func adapts a function to the Translator interface.
	Func[R any] func(ctx context.Context, root *spec.Node) (R, error)
)

func (f Func[R]) Translate(ctx context.Context, root *spec.Node) (R, error) {
	return f(ctx, root)
}

// NameOf returns the translator name, derived from its type when it does
// not report one.
func NameOf(t any) string {
	if n, ok := t.(Named); ok {
		return n.Name()
	}

	name := fmt.Sprintf("%T", t)
	if i := strings.Index(name, "["); i >= 0 {
		name = name[:i]
	}

	return strings.ToLower(name[strings.LastIndex(name, ".")+1:])
}
