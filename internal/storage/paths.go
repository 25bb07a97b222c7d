package storage

import "clipforge/config"

// Paths to the external media engine binaries, resolved once at startup from
// config (or left to PATH lookup).
var (
	FfmpegPath  = "ffmpeg"
	FfprobePath = "ffprobe"
)

// ResolveEnginePaths applies the configured binary locations. Called once at
// startup after the config is loaded.
func ResolveEnginePaths() {
	if config.Conf.App.FfmpegPath != "" {
		FfmpegPath = config.Conf.App.FfmpegPath
	}
	if config.Conf.App.FfprobePath != "" {
		FfprobePath = config.Conf.App.FfprobePath
	}
}
