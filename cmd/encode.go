package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/braheezy/qoa"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
	"github.com/spf13/cobra"

	"github.com/braheezy/gomp3/pkg/mp3"
)

var encodeCmd = &cobra.Command{
	Use:   "encode <input-file> <output.mp3>",
	Short: "Encode an audio file to MP3",
	Long:  fmt.Sprintf("Encode an audio file to MP3. The supported input formats are:\n%v", strings.Join(supportedInputFormats, "\n")),
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		inputFile := args[0]
		outputFile := args[1]

		if filepath.Ext(outputFile) != ".mp3" {
			logger.Fatal("Output file must have a .mp3 extension")
		}
		if !contains(supportedInputFormats, filepath.Ext(inputFile)) {
			logger.Fatal("Unsupported input format")
		}
		encodeAudio(inputFile, outputFile)
	},
	DisableFlagsInUseLine: true,
}

var supportedInputFormats = []string{".wav", ".flac", ".ogg", ".qoa"}

var bitrate int

func init() {
	encodeCmd.Flags().IntVarP(&bitrate, "bitrate", "b", 128, "Output bitrate in kbps")
	rootCmd.AddCommand(encodeCmd)
}

func contains(arr []string, target string) bool {
	for _, item := range arr {
		if item == target {
			return true
		}
	}
	return false
}

func encodeAudio(inputFile, outputFile string) {
	pcm, sampleRate, channels := decodeInput(inputFile)

	cfg := mp3.DefaultConfig(sampleRate, channels)
	cfg.Bitrate = bitrate
	enc, err := mp3.NewEncoder(cfg)
	if err != nil {
		logger.Fatalf("Error configuring MP3 encoder: %v", err)
	}

	out, err := os.Create(outputFile)
	if err != nil {
		logger.Fatalf("Error creating MP3 file: %v", err)
	}
	defer out.Close()

	written := 0
	// Feed the encoder a frame's worth at a time so memory stays flat on
	// big inputs.
	chunk := enc.SamplesPerFrame() * channels
	for off := 0; off < len(pcm); off += chunk {
		end := off + chunk
		if end > len(pcm) {
			end = len(pcm)
		}
		data, err := enc.Encode(pcm[off:end])
		if err != nil {
			logger.Fatalf("Error encoding MP3 frame: %v", err)
		}
		if _, err := out.Write(data); err != nil {
			logger.Fatalf("Error writing MP3 data: %v", err)
		}
		written += len(data)
	}
	tail, err := enc.Flush()
	if err != nil {
		logger.Fatalf("Error flushing MP3 encoder: %v", err)
	}
	if _, err := out.Write(tail); err != nil {
		logger.Fatalf("Error writing MP3 data: %v", err)
	}
	written += len(tail)

	numSamples := len(pcm) / channels
	logger.Debug(
		outputFile,
		"size", formatSize(written),
		"bitrate", fmt.Sprintf("%d kbit/s", bitrate),
		"duration", fmt.Sprintf("%v sec", numSamples/sampleRate),
	)
	logger.Infof("Encoding completed: %s -> %s", inputFile, outputFile)
}

// decodeInput loads an input file and returns interleaved 16-bit PCM with
// its samplerate and channel count.
func decodeInput(inputFile string) ([]int16, int, int) {
	inputData, err := os.ReadFile(inputFile)
	if err != nil {
		logger.Fatalf("Error loading audio file: %v", err)
	}

	switch filepath.Ext(inputFile) {
	case ".wav":
		logger.Info("Input format is WAV")
		return decodeWav(inputData, inputFile)
	case ".flac":
		logger.Info("Input format is FLAC")
		return decodeFlac(inputFile, len(inputData))
	case ".ogg":
		logger.Info("Input format is OGG")
		return decodeOgg(inputData, inputFile)
	case ".qoa":
		logger.Info("Input format is QOA")
		q, decodedData, err := qoa.Decode(inputData)
		if err != nil {
			logger.Fatalf("Error decoding QOA data: %v", err)
		}
		logger.Debug(inputFile,
			"channels", q.Channels,
			"samplerate(hz)", q.SampleRate,
			"samples/channel", q.Samples,
			"size", formatSize(len(inputData)),
		)
		return decodedData, int(q.SampleRate), int(q.Channels)
	}
	logger.Fatal("Unsupported input format")
	return nil, 0, 0
}

func decodeWav(inputData []byte, inputFile string) ([]int16, int, int) {
	wavReader := bytes.NewReader(inputData)
	wavDecoder := wav.NewDecoder(wavReader)

	// Read the WAV header to get format information
	if err := wavDecoder.FwdToPCM(); err != nil {
		logger.Fatalf("Error reading WAV file header: %v", err)
	}
	if wavDecoder.BitDepth < 16 {
		logger.Fatalf("Bit depth too low (%v < 16), cannot encode to MP3!", wavDecoder.BitDepth)
	}

	bytesPerSample := int(wavDecoder.BitDepth / 8)
	numSamples := wavDecoder.PCMSize / (int(wavDecoder.NumChans) * bytesPerSample)

	decodedData := make([]int16, numSamples*int(wavDecoder.NumChans))
	pcmBuffer := &audio.IntBuffer{Data: make([]int, 4096), Format: wavDecoder.Format()}
	sampleIndex := 0
	for {
		n, err := wavDecoder.PCMBuffer(pcmBuffer)
		if err != nil {
			logger.Fatalf("Error decoding WAV file: %v", err)
		}
		if n == 0 {
			break
		}
		for i := 0; i < n; i++ {
			decodedData[sampleIndex] = int16(pcmBuffer.Data[i])
			sampleIndex++
		}
	}
	decodedData = decodedData[:sampleIndex]

	logger.Debug(
		inputFile,
		"channels", pcmBuffer.Format.NumChannels,
		"samplerate(hz)", pcmBuffer.Format.SampleRate,
		"samples/channel", numSamples,
		"bit depth", wavDecoder.SampleBitDepth(),
		"size", formatSize(len(inputData)),
		"duration", fmt.Sprintf("%v sec", numSamples/pcmBuffer.Format.SampleRate),
	)
	if wavDecoder.SampleBitDepth() > 16 {
		logger.Warn("Bit depth is greater than 16, this may result in loss of precision and sound quality!")
	}
	return decodedData, pcmBuffer.Format.SampleRate, pcmBuffer.Format.NumChannels
}

func decodeFlac(inputFile string, inputSize int) ([]int16, int, int) {
	flacStream, err := flac.Open(inputFile)
	if err != nil {
		logger.Fatalf("Error opening FLAC file: %v", err)
	}
	defer flacStream.Close()

	var decodedData []int16
	for {
		flacFrame, err := flacStream.ParseNext()
		if err != nil {
			if err == io.EOF {
				break
			}
			logger.Fatalf("Error parsing FLAC frame: %v", err)
		}
		for i := 0; i < flacFrame.Subframes[0].NSamples; i++ {
			for _, subframe := range flacFrame.Subframes {
				decodedData = append(decodedData, int16(subframe.Samples[i]))
			}
		}
	}

	flacMetadata := flacStream.Info
	numSamples := len(decodedData) / int(flacMetadata.NChannels)
	logger.Debug(
		inputFile,
		"channels", flacMetadata.NChannels,
		"samplerate(hz)", flacMetadata.SampleRate,
		"samples/channel", numSamples,
		"bit depth", flacMetadata.BitsPerSample,
		"size", formatSize(inputSize),
	)
	if flacMetadata.BitsPerSample > 16 {
		logger.Warn("Bit depth is greater than 16, this may result in loss of precision and sound quality!")
	}
	return decodedData, int(flacMetadata.SampleRate), int(flacMetadata.NChannels)
}

func decodeOgg(inputData []byte, inputFile string) ([]int16, int, int) {
	oggReader := bytes.NewReader(inputData)
	oggData, format, err := oggvorbis.ReadAll(oggReader)
	if err != nil {
		logger.Fatalf("Error decoding OGG data: %v", err)
	}

	decodedData := make([]int16, len(oggData))
	for i, val := range oggData {
		// Scale to int16 range
		decodedData[i] = int16(val * 32767.0)
	}

	numSamples := len(decodedData) / format.Channels
	logger.Debug(inputFile,
		"channels", format.Channels,
		"samplerate(hz)", format.SampleRate,
		"samples/channel", numSamples,
		"size", formatSize(len(inputData)),
	)
	return decodedData, format.SampleRate, format.Channels
}

// formatSize converts the inputSize to a human readable format
func formatSize(inputSize int) string {
	const unit = 1024
	if inputSize < unit {
		return fmt.Sprintf("%d B", inputSize)
	}
	div, exp := int64(unit), 0
	for n := inputSize / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(inputSize)/float64(div), "KMGTPE"[exp])
}
