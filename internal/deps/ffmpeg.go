package deps

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ResolveFFprobePath returns the ffprobe that belongs to the configured
// ffmpeg. A static ffmpeg build usually ships ffprobe in the same directory,
// and that one is preferred over whatever PATH resolves first.
func ResolveFFprobePath(ffmpegBinary, ffprobeBinary string) string {
	ffprobeBinary = strings.TrimSpace(ffprobeBinary)
	if ffprobeBinary == "" {
		ffprobeBinary = "ffprobe"
	}
	if strings.ContainsRune(ffprobeBinary, os.PathSeparator) {
		return ffprobeBinary
	}
	if resolved, err := exec.LookPath(strings.TrimSpace(ffmpegBinary)); err == nil {
		candidate := filepath.Join(filepath.Dir(resolved), executableName(ffprobeBinary))
		if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info) {
			return candidate
		}
	}
	if path, err := exec.LookPath(ffprobeBinary); err == nil {
		return path
	}
	return ffprobeBinary
}

// FFmpegRequirements lists the binaries acquisition shells out to.
func FFmpegRequirements(ffmpegBinary, ffprobeBinary string) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     strings.TrimSpace(ffmpegBinary),
			Description: "Required to remux DASH streams and extract audio",
		},
		{
			Name:        "FFprobe",
			Command:     ResolveFFprobePath(ffmpegBinary, ffprobeBinary),
			Description: "Required to validate acquired media",
		},
	}
}

func executableName(base string) string {
	if runtime.GOOS == "windows" && !strings.HasSuffix(base, ".exe") {
		return base + ".exe"
	}
	return base
}

func isExecutable(info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
