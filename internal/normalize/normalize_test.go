package normalize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGender(t *testing.T) {
	tables := Default()

	for _, in := range []string{"Male", "male", "M", "m", " MALE ", "mAlE"} {
		require.Equal(t, "Male", tables.Gender.Normalize(in), "input %q", in)
	}
	for _, in := range []string{"Female", "female", "F", "f", "  fEmale"} {
		require.Equal(t, "Female", tables.Gender.Normalize(in), "input %q", in)
	}
	for _, in := range []string{"", "  ", "x", "non-binary", "unknown"} {
		require.Equal(t, "Other", tables.Gender.Normalize(in), "input %q", in)
	}
}

func TestVehicle(t *testing.T) {
	tables := Default()

	tests := map[string]string{
		"motorbike":     "Motorcycle",
		"BIKE":          "Bicycle",
		"  trike  ":     "Tricycle",
		"car":           "Car",
		"Motorcycle":    "Motorcycle",
		"scooter":       "Scooter",
		"ELECTRIC  VAN": "Electric van",
		"":              "Unknown",
	}
	for in, want := range tests {
		require.Equal(t, want, tables.Vehicle.Normalize(in), "input %q", in)
	}
}

func TestCategory(t *testing.T) {
	tables := Default()

	tests := map[string]string{
		"GADGETS":       "Electronics",
		" electronics ": "Electronics",
		"toy":           "Toys",
		"BAG":           "Bags",
		"bag":           "Bags",
		"Make Up":       "Makeup",
		"men's apparel": "Men's Apparel",
		"MEN'S APPAREL": "Men's Apparel",
		"clothes":       "Clothing",
		"furniture":     "Uncategorized",
		"":              "Uncategorized",
	}
	for in, want := range tests {
		require.Equal(t, want, tables.Category.Normalize(in), "input %q", in)
	}
}

func TestCourierCorrections(t *testing.T) {
	tables := Default()

	require.Equal(t, "FEDEX", tables.Courier.Apply("FEDEZ"))
	require.Equal(t, "FEDEX", tables.Courier.Apply("  fedez "))
	require.Equal(t, "FEDEX Express", tables.Courier.Apply("Fedez Express"))
	require.Equal(t, "DHL", tables.Courier.Apply("DHL"))
	require.Equal(t, "Unknown", tables.Courier.Apply(""))
}

func TestContinent(t *testing.T) {
	tables := Default()

	require.Equal(t, "Asia", tables.ContinentOf("Philippines"))
	require.Equal(t, "Asia", tables.ContinentOf("JAPAN"))
	require.Equal(t, "Europe", tables.ContinentOf("Bosnia And Herzegovina"))
	require.Equal(t, "North America", tables.ContinentOf("united states"))
	require.Equal(t, "Other", tables.ContinentOf("Atlantis"))
	require.Equal(t, "Other", tables.ContinentOf("Unknown"))
}

func TestFreeText(t *testing.T) {
	require.Equal(t, "New York", FreeText("  new   YORK "))
	require.Equal(t, "Manila", FreeText("manila"))
	require.Equal(t, "Unknown", FreeText("   "))
	require.Equal(t, "Men's Apparel", Title("men's apparel"))
	require.Equal(t, "Motorcycle", Capitalize("MOTORCYCLE"))
}

func TestNormalizersArePure(t *testing.T) {
	tables := Default()
	for i := 0; i < 3; i++ {
		require.Equal(t, "Male", tables.Gender.Normalize("m"))
		require.Equal(t, "Bicycle", tables.Vehicle.Normalize("bike"))
	}
}

func TestMergeDoesNotMutate(t *testing.T) {
	base := Default()
	merged := base.With(Overrides{
		Gender:   map[string]string{"w": "Female"},
		Category: map[string]string{"Furniture": "Home"},
		Courier:  map[string]string{"DHLL": "DHL"},
	})

	require.Equal(t, "Female", merged.Gender.Normalize("W"))
	require.Equal(t, "Other", base.Gender.Normalize("W"))
	require.Equal(t, "Home", merged.Category.Normalize("furniture"))
	require.Equal(t, "Uncategorized", base.Category.Normalize("furniture"))
	require.Equal(t, "DHL", merged.Courier.Apply("dhll"))
	require.Equal(t, "FEDEX", merged.Courier.Apply("fedez"))
	require.Equal(t, "dhll", base.Courier.Apply("dhll"))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocabulary.yaml")
	content := `
vehicle:
  scooter: Motorcycle
continent:
  atlantis: Oceania
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	tables, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Motorcycle", tables.Vehicle.Normalize("Scooter"))
	require.Equal(t, "Oceania", tables.ContinentOf("Atlantis"))

	tables, err = Load("")
	require.NoError(t, err)
	require.Equal(t, "Scooter", tables.Vehicle.Normalize("scooter"))

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
