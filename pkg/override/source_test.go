package override

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSource(t *testing.T) {
	const url = "https://github.com/test/test.git"

	tests := []struct {
		name string
		mode Mode
		want string
	}{
		{"path", PathMode{Path: "../local/crate"}, `{ path = "../local/crate" }`},
		{"git default branch", GitMode{URL: url, Reference: DefaultBranch{}}, `{ git = "https://github.com/test/test.git" }`},
		{"git nil reference", GitMode{URL: url}, `{ git = "https://github.com/test/test.git" }`},
		{"git tag", GitMode{URL: url, Reference: Tag("v1.0.0")}, `{ git = "https://github.com/test/test.git", tag = "v1.0.0" }`},
		{"git rev", GitMode{URL: url, Reference: Rev("9f8e7d6")}, `{ git = "https://github.com/test/test.git", rev = "9f8e7d6" }`},
		{"git branch", GitMode{URL: url, Reference: Branch("feature/x")}, `{ git = "https://github.com/test/test.git", branch = "feature/x" }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildSource(workDir, workDir, tt.mode)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildSource_UnescapedInput(t *testing.T) {
	modes := []Mode{
		PathMode{Path: `C:\crates\"dep"`},
		GitMode{URL: `https://example.com/"r"`},
		GitMode{URL: "https://example.com/r.git", Reference: Branch("a\"b")},
	}

	for _, mode := range modes {
		_, err := BuildSource(workDir, workDir, mode)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnparseableGeneratedValue), "got %v", err)
	}
}

type unknownMode struct{ Mode }

func TestBuildSource_UnsupportedMode(t *testing.T) {
	_, err := BuildSource(workDir, workDir, unknownMode{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnparseableGeneratedValue))
}
