package mainutil

import (
	_ "embed"
	"strings"
)

//go:embed version.txt
var projectVersion string

var appVersion string = "unset"

// ProjectVersion returns the version of the xdgmime module itself.
func ProjectVersion() string {
	return strings.Trim(projectVersion, " \t\r\n")
}

// SetAppVersion changes the application version.
func SetAppVersion(version string) {
	appVersion = strings.Trim(version, " \t\r\n")
}

// AppVersion returns the application version, defaulting to ProjectVersion.
func AppVersion() string {
	if appVersion == "unset" {
		return ProjectVersion()
	}
	return appVersion
}
