package mp3

const (
	// GranuleSize is the number of spectral coefficients per granule.
	GranuleSize = 576
	// MaxChannels is the largest channel count the encoder supports.
	MaxChannels = 2
	// MaxGranules is the number of granules per frame (2 for MPEG-I).
	MaxGranules = 2
	// MaxSamplesPerFrame is the PCM sample count per channel of an MPEG-I
	// frame, the largest frame the encoder produces.
	MaxSamplesPerFrame = MaxGranules * GranuleSize

	// subbandLimit is the number of polyphase subbands.
	subbandLimit = 32
	// hanSize is the length of the per-channel PCM analysis history.
	hanSize = 512

	// maxBigValues is the largest legal big_values count: 288 coefficient
	// pairs cover the whole 576-coefficient granule.
	maxBigValues = GranuleSize / 2
	// maxPart23Length is the width limit of the part2_3_length side-info
	// field (12 bits).
	maxPart23Length = 4095

	pi   = 3.14159265358979
	pi36 = 0.087266462599717
	pi64 = 0.049087385212
	ln2  = 0.69314718
)

// StereoMode selects the channel mode written into the frame header.
type StereoMode int

const (
	Stereo StereoMode = iota
	JointStereo
	DualChannel
	Mono
)

// Emphasis selects the de-emphasis flag written into the frame header. The
// values are the literal 2-bit field contents.
type Emphasis int

const (
	EmphasisNone  Emphasis = 0
	Emphasis5015  Emphasis = 1
	EmphasisCCITT Emphasis = 3
)

type mpegVersion int

const (
	mpeg25 mpegVersion = 0
	mpeg2  mpegVersion = 2
	mpeg1  mpegVersion = 3
)

// layerIII is the 2-bit layer field value for Layer III.
const layerIII = 1

// granuleInfo is the per-channel, per-granule side information. Every field
// is width-limited by the side-info bit layout; values outside those widths
// are encoder defects, not runtime options.
type granuleInfo struct {
	part23Length      int // Huffman + scale-factor bits, 12-bit field
	bigValues         int // coefficient pairs, 9-bit field, <= 288
	count1            int // quadruples in the count1 region
	globalGain        int // quantizer step index, 8-bit field
	scalefacCompress  int
	tableSelect       [3]int
	region0Count      int
	region1Count      int
	preflag           int
	scalefacScale     int
	count1TableSelect int

	// part2Length is the scale-factor share of part23Length.
	part2Length int
	// sfbMax is the number of scale-factor bands in use (long blocks only).
	sfbMax int
	// address1..3 are the coefficient offsets of the three big-values
	// region boundaries.
	address1, address2, address3 int
	// quantStepSize is the signed step size the gain search settled on;
	// globalGain is quantStepSize + 210.
	quantStepSize int
}

// sideInfo is the per-frame side information block.
type sideInfo struct {
	privateBits int
	resvDrain   int
	scfsi       [MaxChannels][4]int
	granules    [MaxGranules][MaxChannels]granuleInfo
}

// mpegParams carries the frame-header fields and the CBR slot bookkeeping
// derived from the configuration.
type mpegParams struct {
	version            mpegVersion
	layer              int
	granulesPerFrame   int
	mode               StereoMode
	bitrate            int
	emphasis           Emphasis
	padding            int
	bitsPerFrame       int
	bitsPerSlot        int
	fracSlotsPerFrame  float64
	slotLag            float64
	wholeSlotsPerFrame int
	bitrateIndex       int
	sampleRateIndex    int
	crc                int
	ext                int
	modeExt            int
	copyright          int
	original           int
}

// subbandState is the analysis filterbank state: the filter matrix plus, per
// channel, a circular 512-sample history and its write offset.
type subbandState struct {
	off [MaxChannels]int
	fl  [subbandLimit][64]int32
	x   [MaxChannels][hanSize]int32
}

// quantState holds the quantization-loop lookup tables and the per-granule
// scratch shared by the gain search.
type quantState struct {
	xr    []int32            // current granule's spectrum
	xrsq  [GranuleSize]int32 // xr squared
	xrabs [GranuleSize]int32 // |xr|
	xrmax int32              // peak of xrabs

	// SCFSI memory, indexed by granule.
	enTot  [MaxGranules]int32
	en     [MaxGranules][21]int32
	xm     [MaxGranules][21]int32
	xrmaxl [MaxGranules]int32

	stepTable  [128]float64 // 2^((127-i)/4)
	stepTableI [128]int32   // doubled fixed-point inverse of stepTable
	int2idx    [10000]int   // round(x^(3/4)) for x = 0..9999
}

// scaleFactors holds the long-block scale factors per granule and channel.
type scaleFactors struct {
	l [MaxGranules][MaxChannels][22]int32
}

// psyRatio is the masking ratio per scale-factor band supplied by the
// minimal perceptual model.
type psyRatio struct {
	l [MaxGranules][MaxChannels][21]float64
}

// psyXMin is the allowed distortion per scale-factor band.
type psyXMin struct {
	l [MaxGranules][MaxChannels][21]float64
}
