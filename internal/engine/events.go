package engine

import (
	"github.com/cbegin/opsynth-go/internal/noiseg"
	"github.com/cbegin/opsynth-go/internal/operator"
	"github.com/cbegin/opsynth-go/internal/program"
	"github.com/cbegin/opsynth-go/internal/rasg"
	"github.com/cbegin/opsynth-go/internal/wavelut"
)

// containsID reports whether ids includes id, used to detect an
// operator declaring itself as its own PM/FPM modulator.
func containsID(ids []uint32, id uint32) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// applyEvent performs the work of spec.md §4.11 for one fired event:
// prepare_op/update_op for each operator-data entry, then the voice-data
// assignment (run last, so it observes post-update operator state), then
// implicit-time propagation (last of all, so it observes the carrier's
// final, post-assignment time).
func (g *Generator) applyEvent(ev *program.ProgramEvent) {
	var implicitIDs []uint32
	for i := range ev.OpData {
		od := &ev.OpData[i]
		op := g.ops[od.ID]
		if op == nil || !op.Init {
			op = operator.Reset(od.ID, g.srate)
			g.ops[od.ID] = op
		}
		g.updateOp(op, od)
		if od.Params&program.PTime != 0 && od.Time.Flags&program.TimeImplicit != 0 {
			implicitIDs = append(implicitIDs, od.ID)
		}
	}

	var carr *operator.Op
	if ev.VoiceID != program.NoID && ev.Voice != nil {
		vn := g.voices[ev.VoiceID]
		vn.CarrOpID = ev.Voice.CarrierOpID
		vn.Init = true
		if int(ev.VoiceID) < g.startVoice {
			// an earlier, already-passed voice is being reactivated; rewind
			// the cursor so renderVoices visits it again.
			g.startVoice = int(ev.VoiceID)
		}
		carr = g.ops[vn.CarrOpID]
		if carr != nil {
			if carr.TimeInf {
				vn.Duration = 1<<62 - 1
			} else {
				vn.Duration = carr.Time
			}
		}
	}

	// Implicit time (spec.md GLOSSARY: "a modulator's duration is
	// inherited from its carrier") resolves against this event's voice
	// carrier, the only carrier the event names. An event that declares
	// an implicit-time operator without also assigning a voice has no
	// carrier to inherit from; such an operator is left TimeInf rather
	// than silently clipped to zero length, so it stays audible until a
	// later event gives it a real duration.
	for _, id := range implicitIDs {
		op := g.ops[id]
		if op == nil {
			continue
		}
		if carr != nil {
			op.TimeInf = carr.TimeInf
			op.Time = carr.Time
		} else {
			op.TimeInf = true
		}
	}
}

func (g *Generator) updateOp(op *operator.Op, od *program.OperatorData) {
	p := od.Params

	if p&program.PType != 0 {
		op.Type = od.Type
	}
	if p&program.PWaveOrMode != 0 {
		switch op.Type {
		case operator.WaveOsc:
			op.Wave = wavelut.Get(od.Wave)
			op.Osc.SetWave(op.Wave)
		case operator.RandomSeg:
			op.RasGState = rasg.New(od.RasGOpts, od.RasGShape)
		case operator.Noise:
			op.Noise = noiseg.New(od.NoiseKind)
		}
	}
	if p&program.PPhase != 0 {
		op.Ph.Phase = od.Phase
		op.Cyc.Acc = uint64(od.Phase)
	}
	if p&program.PTime != 0 {
		switch {
		case od.Time.Flags&program.TimeImplicit != 0:
			// placeholder only: applyEvent overwrites both fields once
			// the event's voice carrier (if any) is known, per
			// spec.md's implicit-time propagation.
			op.TimeInf = false
			op.Time = 0
		case od.Time.Flags&program.TimeSet != 0:
			op.Time = msToSamples(od.Time.Ms, g.srate)
			op.TimeInf = false
		default:
			op.TimeInf = true
		}
	}
	if p&program.PAmp != 0 {
		op.Amp.Par = od.Amp
	}
	if p&program.PAmp2 != 0 {
		op.Amp.RPar = od.Amp2
	}
	if p&program.PFreq != 0 {
		op.Freq.Par = od.Freq
	}
	if p&program.PFreq2 != 0 {
		op.Freq.RPar = od.Freq2
	}
	if p&program.PPan != 0 {
		op.Pan = od.Pan
	}
	if p&program.PPMAmp != 0 {
		op.PMAmp = od.PMAmp
	}
	if p&program.PAMods != 0 {
		op.Amp.Mods = od.AMods
	}
	if p&program.PRAMods != 0 {
		op.Amp.RMods = od.RAMods
	}
	if p&program.PFMods != 0 {
		op.Freq.Mods = od.FMods
	}
	if p&program.PRFMods != 0 {
		op.Freq.RMods = od.RFMods
	}
	if p&program.PPMods != 0 {
		op.PMods = od.PMods
		op.SelfMod = containsID(op.PMods.IDs, op.ID)
	}
	if p&program.PFPMods != 0 {
		op.FPMods = od.FPMods
		if containsID(op.FPMods.IDs, op.ID) {
			op.SelfMod = true
		}
	}
	if p&program.PCAMods != 0 {
		op.CAMods = od.CAMods
	}
	if p&program.PAPMods != 0 {
		op.APMods = od.APMods
	}
}
