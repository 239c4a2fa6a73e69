package pathsafe

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "plain", raw: "svc1/app.log", want: "svc1/app.log"},
		{name: "leading slashes", raw: "///svc1/app.log", want: "svc1/app.log"},
		{name: "redundant segments", raw: "svc1/./logs//app.log", want: "svc1/logs/app.log"},
		{name: "backslashes", raw: `svc1\logs\app.log`, want: "svc1/logs/app.log"},
		{name: "parent escape", raw: "../../etc/passwd", wantErr: true},
		{name: "parent in middle", raw: "svc/../../etc/passwd", wantErr: true},
		{name: "parent that cleans away", raw: "svc/a/../app.log", wantErr: true},
		{name: "windows parent", raw: `..\..\boot.ini`, wantErr: true},
		{name: "home shorthand", raw: "~/secrets.log", wantErr: true},
		{name: "tilde inside", raw: "svc/~root/app.log", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
		{name: "only separators", raw: "///", wantErr: true},
		{name: "dot", raw: ".", wantErr: true},
		{name: "dotted name allowed", raw: "svc/..hidden.log", want: "svc/..hidden.log"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sanitize(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrRejectedPath)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeRejectsEveryTraversalMarker(t *testing.T) {
	inputs := []string{"..", "a/..", "../a", "a/../b", "~", "a~b", "/~/x", "x/y/../../../z"}
	for _, in := range inputs {
		_, err := Sanitize(in)
		assert.ErrorIs(t, err, ErrRejectedPath, in)
	}
}

func TestValidateFolderName(t *testing.T) {
	got, err := ValidateFolderName(" svc1 ")
	require.NoError(t, err)
	assert.Equal(t, "svc1", got)

	for _, bad := range []string{"", ".", "..", "svc/sub", `svc\sub`, "~", "/etc"} {
		_, err := ValidateFolderName(bad)
		assert.ErrorIs(t, err, ErrRejectedPath, bad)
	}
}

func TestWithin(t *testing.T) {
	root := t.TempDir()

	got, err := Within(root, "svc1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "svc1"), got)

	_, err = Within(root, "../outside")
	assert.ErrorIs(t, err, ErrRejectedPath)
}
