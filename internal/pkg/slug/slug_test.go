package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMake(t *testing.T) {
	cases := map[string]string{
		"Hello World":          "hello-world",
		"  Spaced   Out  ":     "spaced-out",
		"Widget 2.0 (Pro!)":    "widget-2-0-pro",
		"already-slugged":      "already-slugged",
		"UPPER_case_MIX":       "upper-case-mix",
		"---":                  "",
		"":                     "",
		"Café au lait":         "caf-au-lait",
		"100% Organic Cotton!": "100-organic-cotton",
	}
	for input, want := range cases {
		assert.Equal(t, want, Make(input), "input %q", input)
	}
}

func TestUniqueNoCollision(t *testing.T) {
	got, err := Unique("My First Post", func(string) (bool, error) { return false, nil })
	require.NoError(t, err)
	assert.Equal(t, "my-first-post", got)
}

func TestUniqueSuffixesDeterministically(t *testing.T) {
	taken := map[string]bool{"widget": true, "widget-2": true}
	got, err := Unique("Widget", func(c string) (bool, error) { return taken[c], nil })
	require.NoError(t, err)
	assert.Equal(t, "widget-3", got)
}

func TestUniqueEmptyInputFallsBack(t *testing.T) {
	got, err := Unique("!!!", func(string) (bool, error) { return false, nil })
	require.NoError(t, err)
	assert.Equal(t, "item", got)
}

func TestUniquePropagatesLookupError(t *testing.T) {
	wantErr := assert.AnError
	_, err := Unique("x", func(string) (bool, error) { return false, wantErr })
	assert.ErrorIs(t, err, wantErr)
}
