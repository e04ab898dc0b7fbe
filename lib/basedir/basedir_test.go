package basedir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fakeEnv(env map[string]string) LookupEnvFunc {
	return func(name string) (string, bool) {
		value, found := env[name]
		return value, found
	}
}

func TestSearchPath(t *testing.T) {
	type testRow struct {
		name   string
		env    map[string]string
		expect []string
	}

	testData := []testRow{
		{
			name:   "defaults",
			env:    map[string]string{"HOME": "/home/alice"},
			expect: []string{"/home/alice/.local/share", "/usr/local/share", "/usr/share"},
		},
		{
			name: "data-home",
			env: map[string]string{
				"HOME":          "/home/alice",
				"XDG_DATA_HOME": "/srv/data",
			},
			expect: []string{"/srv/data", "/usr/local/share", "/usr/share"},
		},
		{
			name: "data-dirs",
			env: map[string]string{
				"HOME":          "/home/alice",
				"XDG_DATA_DIRS": "/opt/share::/usr/share/",
			},
			expect: []string{"/home/alice/.local/share", "/opt/share", "/usr/share"},
		},
		{
			name: "empty-means-unset",
			env: map[string]string{
				"HOME":          "/home/alice",
				"XDG_DATA_HOME": "",
				"XDG_DATA_DIRS": "",
			},
			expect: []string{"/home/alice/.local/share", "/usr/local/share", "/usr/share"},
		},
		{
			name: "duplicates",
			env: map[string]string{
				"XDG_DATA_HOME": "/usr/share/",
				"XDG_DATA_DIRS": "/usr/local/share:/usr/share:/usr/local/share/",
			},
			expect: []string{"/usr/share", "/usr/local/share"},
		},
	}

	for _, row := range testData {
		t.Run(row.name, func(t *testing.T) {
			assert.Equal(t, row.expect, SearchPath(fakeEnv(row.env)))
		})
	}
}

func TestDataHome(t *testing.T) {
	assert.Equal(t, "/x", DataHome(fakeEnv(map[string]string{"XDG_DATA_HOME": "/x", "HOME": "/h"})))
	assert.Equal(t, "/h/.local/share", DataHome(fakeEnv(map[string]string{"HOME": "/h"})))
}
