package version

// will be replaced with the release version when using goreleaser
var version = "development"

// NetbirdVersion returns the calculator version
func NetbirdVersion() string {
	return version
}
