package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFuelPageURL_FuelCenterHref(t *testing.T) {
	html := `<a href="/club/4816/fuel-center">Fuel Center</a>`
	got := FuelPageURL(doc(t, html), "https://www.samsclub.com/club/4816")
	assert.Equal(t, "https://www.samsclub.com/club/4816/fuel-center", got)
}

func TestFuelPageURL_AbsoluteHrefKept(t *testing.T) {
	html := `<a href="https://www.samsclub.com/club/4816/fuel-center">Gas</a>`
	got := FuelPageURL(doc(t, html), "")
	assert.Equal(t, "https://www.samsclub.com/club/4816/fuel-center", got)
}

func TestFuelPageURL_AnchorText(t *testing.T) {
	// No fuel-ish href, but an anchor labeled Fuel Center.
	html := `<a href="/club/4816/services">Fuel Center hours</a>`
	got := FuelPageURL(doc(t, html), "https://www.samsclub.com/club/4816")
	assert.Equal(t, "https://www.samsclub.com/club/4816/services", got)
}

func TestFuelPageURL_Synthesized(t *testing.T) {
	got := FuelPageURL(doc(t, `<p>no links here</p>`), "https://www.samsclub.com/club/4816")
	assert.Equal(t, "https://www.samsclub.com/club/4816/fuel-center", got)
}

func TestFuelPageURL_NoFuelPage(t *testing.T) {
	assert.Empty(t, FuelPageURL(doc(t, `<p>no links here</p>`), "https://example.com/store"))
	assert.Empty(t, FuelPageURL(nil, "https://example.com/store"))
}
