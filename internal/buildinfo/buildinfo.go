// Package buildinfo holds the version stamped at link time:
//
//	go build -ldflags "-X semaphore/internal/buildinfo.Version=v2.0.1 -X semaphore/internal/buildinfo.Commit=$(git rev-parse HEAD)"
package buildinfo

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

const shortCommit = 7

// Short returns a compact build identifier for the banner and UI: the
// version when tagged, else the abbreviated commit, else "dev".
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		if len(Commit) > shortCommit {
			return Commit[:shortCommit]
		}
		return Commit
	}
	return "dev"
}
