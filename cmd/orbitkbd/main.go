// Command orbitkbd is a minimal live keyboard for the synthesizer.
// It is a stand-in for the full orbital topology editor: the UI thread
// only ever talks to the engine through the control channel and the
// player's note queue, exactly as the editor would.
//
// Keys: A S D F G H J K play a C major scale, Z/X shift the octave,
// 1 toggles the gain curve, 2 the modulation base, 3 phase reset,
// 4 adds a modulator on the first carrier, 5 removes it.
package main

import (
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	orbitfm "github.com/cbegin/orbitfm-go"
)

const (
	windowW    = 640
	windowH    = 240
	sampleRate = 48000
)

// scaleKeys maps keyboard keys to scale degrees (semitones above C).
var scaleKeys = []struct {
	key      ebiten.Key
	semitone int
	label    string
}{
	{ebiten.KeyA, 0, "C"},
	{ebiten.KeyS, 2, "D"},
	{ebiten.KeyD, 4, "E"},
	{ebiten.KeyF, 5, "F"},
	{ebiten.KeyG, 7, "G"},
	{ebiten.KeyH, 9, "A"},
	{ebiten.KeyJ, 11, "B"},
	{ebiten.KeyK, 12, "C"},
}

type game struct {
	player *orbitfm.Player

	octave     int
	gainTy     orbitfm.GainType
	modTy      orbitfm.ModulationType
	resetPhase bool
	modOn      bool
	held       map[ebiten.Key]uint8
}

func newGame(player *orbitfm.Player) *game {
	return &game{
		player:     player,
		octave:     4,
		gainTy:     orbitfm.GainLinear,
		modTy:      orbitfm.ModAbsolute,
		resetPhase: true,
		held:       map[ebiten.Key]uint8{},
	}
}

func (g *game) Update() error {
	for _, sk := range scaleKeys {
		note := uint8(12*(g.octave+1) + sk.semitone)
		if inpututil.IsKeyJustPressed(sk.key) {
			g.player.NoteOn(note)
			g.held[sk.key] = note
		}
		if inpututil.IsKeyJustReleased(sk.key) {
			if held, ok := g.held[sk.key]; ok {
				g.player.NoteOff(held)
				delete(g.held, sk.key)
			}
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyZ) && g.octave > 0 {
		g.octave--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyX) && g.octave < 8 {
		g.octave++
	}

	if inpututil.IsKeyJustPressed(ebiten.Key1) {
		if g.gainTy == orbitfm.GainLinear {
			g.gainTy = orbitfm.GainSigmoid
		} else {
			g.gainTy = orbitfm.GainLinear
		}
		g.player.Controls().Send(orbitfm.Msg{Kind: orbitfm.MsgGainType, GainTy: g.gainTy})
	}
	if inpututil.IsKeyJustPressed(ebiten.Key2) {
		if g.modTy == orbitfm.ModAbsolute {
			g.modTy = orbitfm.ModRelative
		} else {
			g.modTy = orbitfm.ModAbsolute
		}
		g.player.Controls().Send(orbitfm.Msg{Kind: orbitfm.MsgModType, ModTy: g.modTy})
	}
	if inpututil.IsKeyJustPressed(ebiten.Key3) {
		g.resetPhase = !g.resetPhase
		g.player.Controls().Send(orbitfm.Msg{Kind: orbitfm.MsgResetPhase, ResetPhase: g.resetPhase})
	}
	if inpututil.IsKeyJustPressed(ebiten.Key4) && !g.modOn {
		g.modOn = true
		g.player.Controls().Send(orbitfm.Msg{Kind: orbitfm.MsgTopology, Topology: g.topology()})
	}
	if inpututil.IsKeyJustPressed(ebiten.Key5) && g.modOn {
		g.modOn = false
		g.player.Controls().Send(orbitfm.Msg{Kind: orbitfm.MsgTopology, Topology: g.topology()})
	}
	return nil
}

// topology rebuilds the complete graph snapshot, the way the editor
// resolves its orbit tree into flat slot assignments on every edit.
func (g *game) topology() orbitfm.Topology {
	top := orbitfm.DefaultTopology()
	if g.modOn {
		top.Modulators = []orbitfm.ModulatorState{
			{
				Slot: 0,
				Osc: orbitfm.ModulatorOsc{
					Parent:     orbitfm.ParentIndex{Kind: orbitfm.ParentPrimary, Slot: 0},
					IsOn:       true,
					Range:      0.5,
					SpeedIndex: -2,
				},
			},
		}
	}
	return top
}

func (g *game) Draw(screen *ebiten.Image) {
	names := map[orbitfm.GainType]string{orbitfm.GainLinear: "linear", orbitfm.GainSigmoid: "sigmoid"}
	mods := map[orbitfm.ModulationType]string{orbitfm.ModAbsolute: "absolute", orbitfm.ModRelative: "relative"}
	ebitenutil.DebugPrintAt(screen, "orbitfm keyboard  (A..K play, Z/X octave)", 8, 8)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("octave %d  voices %d", g.octave, g.player.ActiveVoiceCount()), 8, 28)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("[1] gain %s  [2] mod %s  [3] reset-phase %v  [4/5] modulator %v",
		names[g.gainTy], mods[g.modTy], g.resetPhase, g.modOn), 8, 48)
}

func (g *game) Layout(int, int) (int, int) {
	return windowW, windowH
}

func main() {
	player, err := orbitfm.NewPlayer(sampleRate)
	if err != nil {
		log.Fatal(err)
	}
	player.Play()

	ebiten.SetWindowSize(windowW, windowH)
	ebiten.SetWindowTitle("orbitfm keyboard")
	if err := ebiten.RunGame(newGame(player)); err != nil {
		log.Fatal(err)
	}
	if _, err := player.Stop(); err != nil {
		log.Printf("stop: %v", err)
	}
}
