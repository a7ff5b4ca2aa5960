// Package program defines the immutable, already-resolved input handed
// to the Generator: a time-ordered event list plus the operator/voice
// table sizes and global flags needed to size the Generator's runtime
// state before the first event fires. Building a Program from a script
// is explicitly out of scope here; see Builder for a minimal
// constructor API used by tests and embedders that don't go through a
// text-format parser.
package program

import (
	"math"

	"github.com/cbegin/opsynth-go/internal/line"
	"github.com/cbegin/opsynth-go/internal/noiseg"
	"github.com/cbegin/opsynth-go/internal/param"
	"github.com/cbegin/opsynth-go/internal/rasg"
	"github.com/cbegin/opsynth-go/internal/wavelut"
)

// NoID marks the absence of a voice reference in a ProgramEvent.
const NoID uint32 = math.MaxUint32

// Mode is a bitmask of program-wide flags.
type Mode uint32

const (
	// AmpDivVoices divides each voice's mixed amplitude by the active
	// voice count, keeping multi-voice unison from clipping by default.
	AmpDivVoices Mode = 1 << iota
)

// OpType tags which of the four operator variants an OperatorData
// configures.
type OpType uint8

const (
	OpAmp OpType = iota
	OpNoise
	OpWaveOsc
	OpRandomSeg
)

// TimeFlags describe how an operator-data update's Time field should be
// interpreted.
type TimeFlags uint8

const (
	TimeSet TimeFlags = 1 << iota
	TimeDefault
	TimeImplicit // duration is inherited from the carrier, not set explicitly
)

// Time is an operator duration update.
type Time struct {
	Ms    float64
	Flags TimeFlags
}

// Params is a bitmask of which OperatorData fields this update sets.
type Params uint32

const (
	PType Params = 1 << iota
	PTime
	PPhase
	PWaveOrMode
	PSeed
	PAmp
	PAmp2
	PFreq
	PFreq2
	PPan
	PPMAmp
	PAMods
	PRAMods
	PFMods
	PRFMods
	PPMods
	PFPMods
	PCAMods
	PAPMods
)

// ModulatorList is re-exported from param so Program definitions don't
// need to import both packages just to build operator-data updates.
type ModulatorList = param.ModulatorList

// OperatorData is one operator's update within an event: an id, a mask
// of which fields are set, and the new values.
type OperatorData struct {
	ID     uint32
	Params Params
	Type   OpType
	Time   Time
	Phase  uint32

	Wave      wavelut.Wave  // valid when Type == OpWaveOsc
	RasGOpts  rasg.Options  // valid when Type == OpRandomSeg
	RasGShape line.Shape    // valid when Type == OpRandomSeg
	NoiseKind noiseg.Kind   // valid when Type == OpNoise
	Seed      uint32

	Amp, Amp2, Freq, Freq2, Pan, PMAmp line.Line

	AMods, RAMods   ModulatorList
	FMods, RFMods   ModulatorList
	PMods, FPMods   ModulatorList
	CAMods, APMods  ModulatorList
}

// VoiceData assigns a voice's carrier operator within an event.
type VoiceData struct {
	CarrierOpID uint32
}

// ProgramEvent is one entry in the program's time-ordered event list.
type ProgramEvent struct {
	WaitMs  float64
	VoiceID uint32 // NoID when this event carries no voice reference
	Voice   *VoiceData
	OpData  []OperatorData
}

// Program is the immutable input handed to a Generator at construction.
type Program struct {
	Events      []ProgramEvent
	VoiceCount  int
	OpCount     int
	OpNestDepth int
	Mode        Mode
	AmpMult     float64
}
