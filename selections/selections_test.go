package selections

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeroinstall-go/zeroinstall/version"
)

func v(s string) version.Version {
	ver, err := version.Parse(s)
	if err != nil {
		panic(err)
	}
	return ver
}

func TestSelectionsEqualIsStructural(t *testing.T) {
	a := Selections{
		InterfaceID: "app",
		CommandName: "run",
		Commands:    []string{"app"},
		Order:       []string{"app", "lib"},
		Implementations: map[string]ImplementationSelection{
			"app": {InterfaceID: "app", ID: "id-app", Version: v("1.0")},
			"lib": {InterfaceID: "lib", ID: "id-lib", Version: v("2.0")},
		},
	}
	b := Selections{
		InterfaceID: "app",
		CommandName: "run",
		Commands:    []string{"app"},
		Order:       []string{"app", "lib"},
		Implementations: map[string]ImplementationSelection{
			"lib": {InterfaceID: "lib", ID: "id-lib", Version: v("2.0")},
			"app": {InterfaceID: "app", ID: "id-app", Version: v("1.0")},
		},
	}
	assert.True(t, a.Equal(b), "map key insertion order must not affect equality")

	c := b
	c.Order = []string{"lib", "app"}
	assert.False(t, a.Equal(c), "differing selection order must break equality")
}

func TestSelectionsMarshalXML(t *testing.T) {
	s := Selections{
		InterfaceID: "app",
		CommandName: "run",
		Order:       []string{"app"},
		Implementations: map[string]ImplementationSelection{
			"app": {InterfaceID: "app", ID: "sha256new=abc", Version: v("1.0")},
		},
	}
	data, err := s.MarshalXML()
	require.NoError(t, err)
	out := string(data)
	assert.True(t, strings.Contains(out, `interface="app"`))
	assert.True(t, strings.Contains(out, `id="sha256new=abc"`))
	assert.True(t, strings.Contains(out, `version="1.0"`))
}

func TestSelectionsGet(t *testing.T) {
	s := Selections{Implementations: map[string]ImplementationSelection{
		"app": {InterfaceID: "app", ID: "x"},
	}}
	impl, ok := s.Get("app")
	require.True(t, ok)
	assert.Equal(t, "x", impl.ID)

	_, ok = s.Get("missing")
	assert.False(t, ok)
}
