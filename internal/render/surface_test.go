package render

import (
	"errors"
	"html/template"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimsight/claimsight/internal/dataset"
)

func countingDrawer(calls *int) Drawer {
	return DrawerFunc(func(spec Spec, size Size) (template.HTML, error) {
		*calls++
		return template.HTML("<svg>" + spec.Options.Title + "</svg>"), nil
	})
}

func TestRenderMissingMountIsNoop(t *testing.T) {
	calls := 0
	s := NewSurface(countingDrawer(&calls), nil)

	err := s.Render("nowhere", Spec{Kind: KindLine})
	assert.ErrorIs(t, err, ErrNoMount)
	assert.Zero(t, calls)
	assert.Zero(t, s.Live())
}

func TestRenderDestroysBeforeCreate(t *testing.T) {
	calls := 0
	s := NewSurface(countingDrawer(&calls), nil)
	s.Mount("chart", Size{})

	require.NoError(t, s.Render("chart", Spec{Options: Options{Title: "a"}}))
	first, ok := s.Instance("chart")
	require.True(t, ok)
	require.NoError(t, s.Render("chart", Spec{Options: Options{Title: "b"}}))
	second, ok := s.Instance("chart")
	require.True(t, ok)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, template.HTML("<svg>b</svg>"), second.Output)
	assert.Equal(t, 1, s.Live())
	assert.Equal(t, DefaultSize, second.Size)
}

func TestRenderDrawFailureLeavesMountEmpty(t *testing.T) {
	s := NewSurface(DrawerFunc(func(Spec, Size) (template.HTML, error) {
		return "", errors.New("boom")
	}), nil)
	s.Mount("chart", Size{Width: 10, Height: 10})

	err := s.Render("chart", Spec{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoMount)
	_, ok := s.Instance("chart")
	assert.False(t, ok)
}

func TestResizeRedrawsLiveInstance(t *testing.T) {
	calls := 0
	s := NewSurface(countingDrawer(&calls), nil)
	s.Mount("chart", Size{Width: 100, Height: 50})
	require.NoError(t, s.Resize("chart", Size{Width: 200, Height: 80}))
	assert.Zero(t, calls)

	require.NoError(t, s.Render("chart", Spec{}))
	require.NoError(t, s.Resize("chart", Size{Width: 300, Height: 90}))
	inst, ok := s.Instance("chart")
	require.True(t, ok)
	assert.Equal(t, Size{Width: 300, Height: 90}, inst.Size)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, s.Live())

	assert.ErrorIs(t, s.Resize("other", Size{}), ErrNoMount)
}

func TestDestroyAndUnmount(t *testing.T) {
	calls := 0
	s := NewSurface(countingDrawer(&calls), nil)
	s.Mount("a", Size{})
	s.Mount("b", Size{})
	require.NoError(t, s.Render("a", Spec{}))
	require.NoError(t, s.Render("b", Spec{}))

	s.Destroy("a")
	s.Unmount("b")
	assert.Equal(t, []string{"a"}, s.Mounts())
	assert.Zero(t, s.Live())
}

func TestThemeAndFormatting(t *testing.T) {
	assert.Equal(t, ThemeDark, ThemeLight.Toggle())
	assert.Equal(t, ThemeLight, ThemeDark.Toggle())
	assert.Equal(t, "#e8eaed", PaletteFor(ThemeDark).Title)
	assert.Equal(t, AteneoBlue, PaletteFor("bogus").Title)
	assert.Equal(t, Bronze, SourceColor(dataset.SourceKomodo))

	assert.Equal(t, "966,185", FormatNumber(966185))
	assert.Equal(t, "40.23", FormatNumber(40.23))
	assert.Equal(t, "n/a", FormatValue(dataset.Missing()))
	assert.Equal(t, "77.4k", Compact(77361))
	assert.Equal(t, "989", Compact(989))
}
