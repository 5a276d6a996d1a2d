package version

// Version is the tool version, overridable at build time via
// -ldflags "-X github.com/gdmirror/gdmirror/pkg/version.Version=..."
var Version = "0.1.0"
