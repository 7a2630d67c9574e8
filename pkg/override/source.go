package override

import (
	"fmt"

	"github.com/fulmenhq/cargo-override/pkg/tomledit"
)

// BuildSource renders the inline table describing where mode points, e.g.
// { path = "../serde" } or { git = "https://...", tag = "v1.0.0" }.
//
// Values are interpolated as they are. A path or URL containing characters
// that need escaping in a TOML string yields ErrUnparseableGeneratedValue.
func BuildSource(workingDir, manifestDir string, mode Mode) (string, error) {
	var source string

	switch m := mode.(type) {
	case PathMode:
		path, err := ResolvePath(workingDir, manifestDir, m.Path)
		if err != nil {
			return "", err
		}
		source = fmt.Sprintf(`{ path = "%s" }`, path)
	case GitMode:
		source = fmt.Sprintf(`{ git = "%s"%s }`, m.URL, referenceField(m.Reference))
	default:
		return "", fmt.Errorf("unsupported mode %T", mode)
	}

	kind, err := tomledit.ParseValue(source)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUnparseableGeneratedValue, source, err)
	}
	if kind != tomledit.KindInlineTable {
		return "", fmt.Errorf("%w: %s", ErrUnparseableGeneratedValue, source)
	}
	return source, nil
}

func referenceField(ref GitReference) string {
	switch r := ref.(type) {
	case Tag:
		return fmt.Sprintf(`, tag = "%s"`, string(r))
	case Rev:
		return fmt.Sprintf(`, rev = "%s"`, string(r))
	case Branch:
		return fmt.Sprintf(`, branch = "%s"`, string(r))
	default:
		// nil and DefaultBranch
		return ""
	}
}
