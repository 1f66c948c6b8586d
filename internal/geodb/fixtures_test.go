package geodb

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/maxmind/mmdbwriter"
	"github.com/maxmind/mmdbwriter/mmdbtype"
	"github.com/stretchr/testify/require"
)

// writeDB builds a MaxMind DB at dir/name from CIDR keyed records. The file
// is written aside and renamed into place so readers mapping an older copy
// are unaffected.
func writeDB(t *testing.T, dir, name, dbType string, records map[string]mmdbtype.Map) string {
	t.Helper()

	w, err := mmdbwriter.New(mmdbwriter.Options{
		DatabaseType: dbType,
		RecordSize:   24,
	})
	require.NoError(t, err)

	for cidr, record := range records {
		_, network, err := net.ParseCIDR(cidr)
		require.NoError(t, err)
		require.NoError(t, w.Insert(network, record))
	}

	path := filepath.Join(dir, name)
	f, err := os.CreateTemp(dir, name+".*")
	require.NoError(t, err)

	_, err = w.WriteTo(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.NoError(t, os.Rename(f.Name(), path))
	return path
}

func cityFixture(t *testing.T, dir string) string {
	return writeDB(t, dir, "GeoIP2-City.mmdb", "GeoIP2-City", map[string]mmdbtype.Map{
		"8.8.8.0/24": {
			"continent": mmdbtype.Map{"code": mmdbtype.String("NA")},
			"country":   mmdbtype.Map{"iso_code": mmdbtype.String("US")},
			"postal":    mmdbtype.Map{"code": mmdbtype.String("94035")},
			"city": mmdbtype.Map{"names": mmdbtype.Map{
				"de": mmdbtype.String("Mountain View (Kalifornien)"),
				"en": mmdbtype.String("Mountain View"),
			}},
			"location": mmdbtype.Map{
				"latitude":  mmdbtype.Float64(37.386),
				"longitude": mmdbtype.Float64(-122.0838),
			},
		},
		"81.2.69.0/24": {
			"country": mmdbtype.Map{"iso_code": mmdbtype.String("GB")},
		},
	})
}

func ispFixture(t *testing.T, dir string) string {
	return writeDB(t, dir, "GeoIP2-ISP.mmdb", "GeoIP2-ISP", map[string]mmdbtype.Map{
		"1.0.0.0/24": {
			"isp":                            mmdbtype.String("Example ISP"),
			"organization":                   mmdbtype.String("Example Org"),
			"autonomous_system_organization": mmdbtype.String("EXAMPLE-AS"),
		},
		"2.0.0.0/24": {
			"organization":                   mmdbtype.String("Example Org"),
			"autonomous_system_organization": mmdbtype.String("EXAMPLE-AS"),
		},
		"3.0.0.0/24": {
			"autonomous_system_organization": mmdbtype.String("EXAMPLE-AS"),
		},
	})
}
