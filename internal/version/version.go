package version

// Version is the current version of argo-trading-env. Journals record it and the CLI
// prints it. Set at build time with:
// -ldflags "-X github.com/rxtech-lab/argo-trading-env/internal/version.Version=0.2.0"
// "main" marks a development build.
var Version = "v0.1.0"

// GetVersion returns the current version of the module.
func GetVersion() string {
	return Version
}
