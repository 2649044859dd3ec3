package mp3

import "io"

// Encoder turns interleaved 16-bit PCM into MPEG audio Layer III frames.
// It is not safe for concurrent use; one Encoder encodes one stream.
type Encoder struct {
	cfg  Config
	mpeg mpegParams

	bs          bitWriter
	side        sideInfo
	sideInfoLen int
	meanBits    int

	scalefac scaleFactors
	ratio    psyRatio

	// chanPCM holds the per-channel read cursors into the frame being
	// encoded; the filterbank advances them as it consumes samples.
	chanPCM [MaxChannels][]int16

	// perceptualEnergy feeds the reservoir allowance per channel and
	// granule. The minimal perceptual model leaves it at zero.
	perceptualEnergy [MaxChannels][MaxGranules]float64

	quantized [MaxChannels][MaxGranules][GranuleSize]int
	mdctFreq  [MaxChannels][MaxGranules][GranuleSize]int32

	// sbSamples keeps one extra granule of subband samples: slot 0 is the
	// previous frame's tail, feeding the MDCT overlap.
	sbSamples [MaxChannels][MaxGranules + 1][18][subbandLimit]int32

	resvSize int
	resvMax  int

	quant   quantState
	mdctTab [18][36]int32
	subband subbandState

	pending    []int16
	frameCount int
	closed     bool

	observer Observer
}

// NewEncoder returns an encoder for the given configuration, or an error
// when the configuration names an unsupported samplerate, bitrate or
// channel layout.
func NewEncoder(cfg Config) (*Encoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	enc := &Encoder{cfg: cfg}
	enc.initSubband()
	enc.initMDCT()
	enc.initLoop()

	m := &enc.mpeg
	m.layer = layerIII
	m.mode = cfg.Mode
	m.bitrate = cfg.Bitrate
	m.emphasis = cfg.Emphasis
	if cfg.Copyright {
		m.copyright = 1
	}
	if cfg.Original {
		m.original = 1
	}
	m.bitsPerSlot = 8

	m.sampleRateIndex, _ = findSampleRateIndex(cfg.SampleRate)
	m.version = versionForSampleRateIndex(m.sampleRateIndex)
	m.bitrateIndex, _ = findBitrateIndex(cfg.Bitrate, m.version)
	m.granulesPerFrame = granulesPerFrame[m.version]

	avgSlotsPerFrame := float64(m.granulesPerFrame) * GranuleSize /
		float64(cfg.SampleRate) * (float64(cfg.Bitrate) * 1000 / float64(m.bitsPerSlot))
	m.wholeSlotsPerFrame = int(avgSlotsPerFrame)
	m.fracSlotsPerFrame = avgSlotsPerFrame - float64(m.wholeSlotsPerFrame)
	m.slotLag = -m.fracSlotsPerFrame
	if m.fracSlotsPerFrame == 0 {
		m.padding = 0
	}

	if m.granulesPerFrame == 2 {
		// MPEG-1
		if cfg.Channels == 1 {
			enc.sideInfoLen = 8 * (4 + 17)
		} else {
			enc.sideInfoLen = 8 * (4 + 32)
		}
	} else {
		// MPEG-2 and 2.5
		if cfg.Channels == 1 {
			enc.sideInfoLen = 8 * (4 + 9)
		} else {
			enc.sideInfoLen = 8 * (4 + 17)
		}
	}

	enc.bs.open(bufferSize)
	return enc, nil
}

// SamplesPerFrame reports the number of PCM samples per channel that one
// frame consumes: 1152 for MPEG-1, 576 for MPEG-2 and 2.5.
func (enc *Encoder) SamplesPerFrame() int {
	return enc.mpeg.granulesPerFrame * GranuleSize
}

// encodeFrameInternal encodes one frame from the chanPCM cursors and
// returns its bytes. The returned slice is a copy; it stays valid across
// further calls.
func (enc *Encoder) encodeFrameInternal(stride int) []byte {
	m := &enc.mpeg
	if m.fracSlotsPerFrame != 0 {
		if m.slotLag <= m.fracSlotsPerFrame-1.0 {
			m.padding = 1
		} else {
			m.padding = 0
		}
		m.slotLag += float64(m.padding) - m.fracSlotsPerFrame
	}
	m.bitsPerFrame = (m.wholeSlotsPerFrame + m.padding) * 8
	enc.meanBits = (m.bitsPerFrame - enc.sideInfoLen) / m.granulesPerFrame

	enc.mdctGranules(stride)
	enc.iterationLoop()
	enc.formatBitstream()

	enc.bs.drain()
	frame := make([]byte, enc.bs.dataPos)
	copy(frame, enc.bs.data[:enc.bs.dataPos])
	enc.bs.dataPos = 0

	if enc.observer != nil {
		enc.observer.FrameEncoded(enc.frameCount, len(frame))
	}
	enc.frameCount++
	return frame
}

// encodeInterleaved encodes exactly one frame's worth of interleaved PCM.
func (enc *Encoder) encodeInterleaved(pcm []int16) []byte {
	enc.chanPCM[0] = pcm
	if enc.cfg.Channels == 2 {
		enc.chanPCM[1] = pcm[1:]
	}
	return enc.encodeFrameInternal(enc.cfg.Channels)
}

// EncodeFrame encodes exactly one frame of interleaved PCM. The input must
// hold SamplesPerFrame() samples per channel; any other length returns
// ErrBadFrameSize.
func (enc *Encoder) EncodeFrame(pcm []int16) ([]byte, error) {
	if enc.closed {
		return nil, ErrEncoderClosed
	}
	if len(pcm) != enc.SamplesPerFrame()*enc.cfg.Channels {
		return nil, ErrBadFrameSize
	}
	return enc.encodeInterleaved(pcm), nil
}

// Encode consumes interleaved PCM of any length and returns the bytes of
// every frame completed by it. Samples short of a frame boundary are
// buffered for the next call; Flush pads and emits them.
func (enc *Encoder) Encode(pcm []int16) ([]byte, error) {
	if enc.closed {
		return nil, ErrEncoderClosed
	}

	frameSamples := enc.SamplesPerFrame() * enc.cfg.Channels
	var out []byte

	if len(enc.pending) > 0 {
		need := frameSamples - len(enc.pending)
		if len(pcm) < need {
			enc.pending = append(enc.pending, pcm...)
			return nil, nil
		}
		enc.pending = append(enc.pending, pcm[:need]...)
		pcm = pcm[need:]
		out = append(out, enc.encodeInterleaved(enc.pending)...)
		enc.pending = enc.pending[:0]
	}

	for len(pcm) >= frameSamples {
		out = append(out, enc.encodeInterleaved(pcm[:frameSamples])...)
		pcm = pcm[frameSamples:]
	}
	if len(pcm) > 0 {
		enc.pending = append(enc.pending, pcm...)
	}
	return out, nil
}

// Flush pads any buffered samples with silence, encodes the final frame and
// closes the encoder. Calling Flush with nothing buffered just closes; any
// call after that returns ErrEncoderClosed.
func (enc *Encoder) Flush() ([]byte, error) {
	if enc.closed {
		return nil, ErrEncoderClosed
	}
	enc.closed = true

	if len(enc.pending) == 0 {
		return nil, nil
	}
	frameSamples := enc.SamplesPerFrame() * enc.cfg.Channels
	for len(enc.pending) < frameSamples {
		enc.pending = append(enc.pending, 0)
	}
	frame := enc.encodeInterleaved(enc.pending)
	enc.pending = enc.pending[:0]
	return frame, nil
}

// Write encodes pcm and writes every completed frame to w. Trailing samples
// short of a frame stay buffered, exactly as with Encode.
func (enc *Encoder) Write(w io.Writer, pcm []int16) error {
	out, err := enc.Encode(pcm)
	if err != nil {
		return err
	}
	if len(out) == 0 {
		return nil
	}
	_, err = w.Write(out)
	return err
}

// Reset returns the encoder to its initial state with the same
// configuration: filter histories, MDCT overlap, reservoir and buffered
// samples are cleared, and the encoder is reopened if it was closed.
func (enc *Encoder) Reset() {
	enc.subband.off = [MaxChannels]int{}
	enc.subband.x = [MaxChannels][hanSize]int32{}
	enc.sbSamples = [MaxChannels][MaxGranules + 1][18][subbandLimit]int32{}
	enc.mdctFreq = [MaxChannels][MaxGranules][GranuleSize]int32{}
	enc.quantized = [MaxChannels][MaxGranules][GranuleSize]int{}
	enc.side = sideInfo{}
	enc.scalefac = scaleFactors{}
	enc.quant.enTot = [MaxGranules]int32{}
	enc.quant.en = [MaxGranules][21]int32{}
	enc.quant.xm = [MaxGranules][21]int32{}
	enc.quant.xrmaxl = [MaxGranules]int32{}
	enc.resvSize = 0
	enc.mpeg.slotLag = -enc.mpeg.fracSlotsPerFrame
	enc.mpeg.padding = 0
	enc.bs.dataPos = 0
	enc.bs.cache = 0
	enc.bs.cacheBits = 32
	enc.pending = enc.pending[:0]
	enc.frameCount = 0
	enc.closed = false
}
