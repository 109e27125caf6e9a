// 包 version：构建信息，通过 -ldflags "-X haoshiji/internal/version.Commit=..." 注入
package version

var (
	Version = "dev"
	Commit  = "unknown"
)

// String：形如 "dev (unknown)"
func String() string { return Version + " (" + Commit + ")" }
