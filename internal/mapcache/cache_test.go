package mapcache

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KYDronePilot/hdfm/internal/geo"
	"github.com/KYDronePilot/hdfm/internal/imaging"
)

// testBBox projects inside the synthetic master map written by
// writeMasterMap.
var testBBox = geo.NewBoundingBox(52.4, -130.0, 52.0, -129.0)

// writeMasterMap writes a small solid-color master map asset covering
// the top-left of the calibrated pixel space.
func writeMasterMap(t *testing.T, dir string, c color.RGBA) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 400, 400))
	for y := 0; y < 400; y++ {
		for x := 0; x < 400; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	path := filepath.Join(dir, "us_map.png")
	require.NoError(t, imaging.WritePNG(path, img))
	return path
}

func TestGetMap_GeneratesAndCaches(t *testing.T) {
	dir := t.TempDir()
	master := writeMasterMap(t, dir, color.RGBA{R: 90, G: 120, B: 50, A: 255})
	cacheDir := filepath.Join(dir, "cache")

	cache := New(master, cacheDir)
	got, err := cache.GetMap("ABC123", testBBox)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, MapSize, MapSize), got.Bounds())

	// Cache file was persisted under the sanitized area name.
	_, err = os.Stat(filepath.Join(cacheDir, "map_ABC123.png"))
	assert.NoError(t, err)
}

func TestGetMap_MemoizedCallSkipsMasterMap(t *testing.T) {
	dir := t.TempDir()
	master := writeMasterMap(t, dir, color.RGBA{R: 10, A: 255})

	cache := New(master, filepath.Join(dir, "cache"))
	first, err := cache.GetMap("AREA", testBBox)
	require.NoError(t, err)

	// With the master map gone, only the memoized image can satisfy
	// the second call.
	require.NoError(t, os.Remove(master))
	second, err := cache.GetMap("AREA", testBBox)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestGetMap_RoundTripFromCacheFile(t *testing.T) {
	dir := t.TempDir()
	master := writeMasterMap(t, dir, color.RGBA{R: 55, G: 66, B: 77, A: 255})
	cacheDir := filepath.Join(dir, "cache")

	first, err := New(master, cacheDir).GetMap("AREA", testBBox)
	require.NoError(t, err)

	// A fresh instance with no master map must load from the cache
	// file and produce identical pixels.
	require.NoError(t, os.Remove(master))
	second, err := New(master, cacheDir).GetMap("AREA", testBBox)
	require.NoError(t, err)
	assert.Equal(t, first.Pix, second.Pix)
}

func TestGetMap_AreaChangeRegenerates(t *testing.T) {
	dir := t.TempDir()
	master := writeMasterMap(t, dir, color.RGBA{B: 200, A: 255})

	cache := New(master, filepath.Join(dir, "cache"))
	_, err := cache.GetMap("ONE", testBBox)
	require.NoError(t, err)

	// A new area cannot be served from the memo; with the master map
	// gone, generation fails loudly.
	require.NoError(t, os.Remove(master))
	_, err = cache.GetMap("TWO", testBBox)
	assert.ErrorIs(t, err, ErrMasterMapUnavailable)
}

func TestGetMap_MissingMasterMap(t *testing.T) {
	dir := t.TempDir()
	cache := New(filepath.Join(dir, "missing.png"), filepath.Join(dir, "cache"))

	_, err := cache.GetMap("AREA", testBBox)
	assert.ErrorIs(t, err, ErrMasterMapUnavailable)
}

func TestGetMap_UnwritableCacheDir(t *testing.T) {
	dir := t.TempDir()
	master := writeMasterMap(t, dir, color.RGBA{A: 255})

	// A file where the cache directory should be makes MkdirAll fail.
	blocked := filepath.Join(dir, "blocked")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0644))

	_, err := New(master, blocked).GetMap("AREA", testBBox)
	assert.ErrorIs(t, err, ErrCacheWrite)
}

func TestSanitizeAreaID(t *testing.T) {
	tests := []struct {
		given    string
		expected string
	}{
		{"ABC123", "ABC123"},
		{"DFW-north_2", "DFW-north_2"},
		{"../../etc/passwd", "______etc_passwd"},
		{"a/b\\c", "a_b_c"},
		{"dot.dot", "dot_dot"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, SanitizeAreaID(test.given))
	}
}
