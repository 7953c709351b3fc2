package version

// Set at build time with -ldflags "-X github.com/AetherQuanta/aethernet-cli/internal/version.Version=..."
var (
	Version = "Development"
	Commit  = "unknown"
)

func GetVersion() string {
	return Version
}

func GetCommit() string {
	return Commit
}
