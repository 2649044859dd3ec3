package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe <file.mp3>",
	Short: "Inspect the frames of an MP3 file",
	Long:  "Walk the frame headers of an MP3 file and report stream parameters, frame count and duration.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(args[0])
		if err != nil {
			logger.Fatalf("Error reading file: %v", err)
		}
		info, err := probeStream(data)
		if err != nil {
			logger.Fatalf("Error probing %s: %v", args[0], err)
		}

		fmt.Println(titleStyle.Render(args[0]))
		fmt.Printf("%s %s\n", labelStyle.Render("format:"), info.versionName)
		fmt.Printf("%s %d Hz\n", labelStyle.Render("samplerate:"), info.sampleRate)
		fmt.Printf("%s %d kbit/s\n", labelStyle.Render("bitrate:"), info.bitrate)
		fmt.Printf("%s %s\n", labelStyle.Render("mode:"), info.modeName)
		fmt.Printf("%s %d\n", labelStyle.Render("frames:"), info.frames)
		fmt.Printf("%s %s\n", labelStyle.Render("duration:"), formatDuration(info.duration))
		fmt.Printf("%s %s\n", labelStyle.Render("size:"), formatSize(len(data)))
		if info.junkBytes > 0 {
			logger.Warnf("%d bytes between frames did not parse as frame data", info.junkBytes)
		}
	},
	DisableFlagsInUseLine: true,
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

type streamInfo struct {
	versionName string
	modeName    string
	sampleRate  int
	bitrate     int
	frames      int
	junkBytes   int
	duration    time.Duration
}

var probeSampleRates = [4][4]int{
	{11025, 12000, 8000, 0},  // MPEG-2.5
	{0, 0, 0, 0},             // reserved
	{22050, 24000, 16000, 0}, // MPEG-2
	{44100, 48000, 32000, 0}, // MPEG-1
}

// Layer III bitrate columns for MPEG-1 and MPEG-2/2.5.
var probeBitrates = [2][16]int{
	{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0},
	{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0},
}

var versionNames = map[int]string{0: "MPEG-2.5 Layer III", 2: "MPEG-2 Layer III", 3: "MPEG-1 Layer III"}
var modeNames = [4]string{"stereo", "joint stereo", "dual channel", "mono"}

// probeStream walks the frame headers of an MP3 stream. It tolerates junk
// between frames (ID3 tags, broken rips) by scanning forward to the next
// sync word.
func probeStream(data []byte) (*streamInfo, error) {
	info := &streamInfo{}
	var samples int64

	pos := 0
	for pos+4 <= len(data) {
		size, hdr := parseFrameHeader(data[pos:])
		if size == 0 {
			pos++
			info.junkBytes++
			continue
		}
		if info.frames == 0 {
			info.versionName = versionNames[hdr.version]
			info.modeName = modeNames[hdr.mode]
			info.sampleRate = hdr.sampleRate
			info.bitrate = hdr.bitrate
		}
		info.frames++
		samples += int64(hdr.samplesPerFrame)
		pos += size
	}
	if info.frames == 0 {
		return nil, fmt.Errorf("no MP3 frames found")
	}
	info.duration = time.Duration(samples * int64(time.Second) / int64(info.sampleRate))
	return info, nil
}

type frameHeader struct {
	version         int
	mode            int
	sampleRate      int
	bitrate         int
	samplesPerFrame int
}

// parseFrameHeader decodes a 4-byte Layer III frame header and returns the
// frame size in bytes, or 0 when the bytes are not a valid header.
func parseFrameHeader(data []byte) (int, frameHeader) {
	if len(data) < 4 {
		return 0, frameHeader{}
	}
	if data[0] != 0xFF || data[1]&0xE0 != 0xE0 {
		return 0, frameHeader{}
	}

	var h frameHeader
	h.version = int(data[1]>>3) & 3
	layer := int(data[1]>>1) & 3
	if h.version == 1 || layer != 1 {
		// Reserved version, or not Layer III.
		return 0, frameHeader{}
	}

	bitrateIndex := int(data[2] >> 4)
	sampleRateIndex := int(data[2]>>2) & 3
	padding := int(data[2]>>1) & 1
	h.mode = int(data[3] >> 6)

	h.sampleRate = probeSampleRates[h.version][sampleRateIndex]
	if h.version == 3 {
		h.bitrate = probeBitrates[0][bitrateIndex]
		h.samplesPerFrame = 1152
	} else {
		h.bitrate = probeBitrates[1][bitrateIndex]
		h.samplesPerFrame = 576
	}
	if h.sampleRate == 0 || h.bitrate == 0 {
		return 0, frameHeader{}
	}

	size := h.samplesPerFrame/8*h.bitrate*1000/h.sampleRate + padding
	return size, h
}

// formatDuration renders a duration as m:ss.
func formatDuration(d time.Duration) string {
	total := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
