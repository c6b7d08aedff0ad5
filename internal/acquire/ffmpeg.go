package acquire

import "bget/internal/config"

var commonArgs = []string{"-hide_banner", "-nostdin", "-loglevel", "error", "-y"}

// remuxArgs joins the DASH video and audio tracks into an mp4 without
// re-encoding. audio may be empty for silent items.
func remuxArgs(videoPath, audioPath, out string) []string {
	args := append([]string(nil), commonArgs...)
	args = append(args, "-i", videoPath)
	if audioPath != "" {
		args = append(args, "-i", audioPath, "-map", "0:v:0", "-map", "1:a:0")
	}
	return append(args, "-c", "copy", "-movflags", "+faststart", out)
}

// audioExtension picks the output extension for format. A lossless source
// never lands in an m4a container.
func audioExtension(format string, lossless bool) string {
	switch format {
	case config.AudioFormatFLAC:
		return "flac"
	case config.AudioFormatAIFF:
		return "aiff"
	default:
		if lossless {
			return "flac"
		}
		return "m4a"
	}
}

// extractArgs converts the DASH audio track into format.
func extractArgs(audioPath, out, format string, lossless bool) []string {
	args := append([]string(nil), commonArgs...)
	args = append(args, "-i", audioPath, "-vn")
	switch audioExtension(format, lossless) {
	case "flac":
		if lossless {
			args = append(args, "-c:a", "copy")
		} else {
			args = append(args, "-c:a", "flac")
		}
	case "aiff":
		codec := "pcm_s16be"
		if lossless {
			codec = "pcm_s24be"
		}
		args = append(args, "-c:a", codec, "-write_id3v2", "1")
	default:
		args = append(args, "-c:a", "copy", "-movflags", "+faststart")
	}
	return append(args, out)
}
