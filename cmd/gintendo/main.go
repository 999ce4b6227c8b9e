// Command gintendo is the ebiten-backed presentation shell around the
// emulator core: it owns the window, feeds keyboard state into the
// controller ports, and plays back the APU's sample stream through
// ebiten/audio. The emulator itself runs on its own goroutine, exactly
// as the teacher's console.Bus.Run did, so ebiten's Update is free to
// return immediately every frame.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"sync"

	"github.com/bdwalton/nesgo/apu"
	"github.com/bdwalton/nesgo/controller"
	"github.com/bdwalton/nesgo/nes"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
)

var (
	romPath    = flag.String("rom", "", "Path to the NES ROM to run.")
	sampleRate = flag.Int("samplerate", apu.SampleRate, "Audio context sample rate, in Hz.")
	mute       = flag.Bool("mute", false, "Disable audio playback.")
)

// keymap binds ebiten keys to controller buttons, first port only.
var keymap = map[ebiten.Key]controller.Button{
	ebiten.KeyZ:          controller.A,
	ebiten.KeyX:          controller.B,
	ebiten.KeyShiftRight: controller.Select,
	ebiten.KeyEnter:      controller.Start,
	ebiten.KeyArrowUp:    controller.Up,
	ebiten.KeyArrowDown:  controller.Down,
	ebiten.KeyArrowLeft:  controller.Left,
	ebiten.KeyArrowRight: controller.Right,
}

// game implements ebiten.Game over the emulator core.
type game struct {
	nes    *nes.NES
	stream *sampleStream
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return 256, 240
}

// Draw blits the PPU's last completed frame straight into the window;
// the emulator itself runs on its own goroutine (run), so this only
// ever reads a framebuffer someone else finished writing.
func (g *game) Draw(screen *ebiten.Image) {
	fb := g.nes.Framebuffer()
	pix := make([]byte, len(fb)*4)
	for i, c := range fb {
		pix[i*4+0] = byte(c >> 16) // R
		pix[i*4+1] = byte(c >> 8)  // G
		pix[i*4+2] = byte(c)       // B
		pix[i*4+3] = 0xFF          // A
	}
	screen.WritePixels(pix)
}

// Update polls keyboard state into the controller ports; the actual
// emulation clock is driven by run, not by ebiten's frame pump.
func (g *game) Update() error {
	for key, btn := range keymap {
		g.nes.SetButtonState(nes.First, btn, ebiten.IsKeyPressed(key))
	}
	return nil
}

// run drives the emulator continuously on its own goroutine,
// one displayed frame at a time, until ctx is canceled.
func run(ctx context.Context, n *nes.NES) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if err := n.StepFrame(); err != nil {
			if _, nonFatal := err.(*nes.NonFatalStatus); nonFatal {
				continue
			}
			log.Printf("emulation halted: %v", err)
			return
		}
	}
}

func main() {
	flag.Parse()
	if *romPath == "" {
		log.Fatal("-rom is required")
	}

	data, err := os.ReadFile(*romPath)
	if err != nil {
		log.Fatalf("reading ROM: %v", err)
	}

	n := nes.New()
	if err := n.LoadRom(data); err != nil {
		log.Fatalf("loading ROM: %v", err)
	}

	g := &game{nes: n}

	if !*mute {
		g.stream = newSampleStream()
		n.SetAudioSampleCallback(g.stream.push)

		audioCtx := audio.NewContext(*sampleRate)
		player, err := audioCtx.NewPlayer(g.stream)
		if err != nil {
			log.Fatalf("creating audio player: %v", err)
		}
		player.Play()
	}

	ebiten.SetWindowSize(256*2, 240*2)
	ebiten.SetWindowTitle("gintendo")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	ctx, cancel := context.WithCancel(context.Background())
	go run(ctx, n)

	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
	cancel()
}

// sampleStream adapts the APU's per-sample float32 callback to the
// io.Reader ebiten/audio's Player pulls 16-bit stereo PCM from. It
// never returns EOF: once the ring buffer underruns it pads with
// silence rather than blocking the audio goroutine on emulation.
type sampleStream struct {
	mu  sync.Mutex
	buf []byte
}

func newSampleStream() *sampleStream {
	return &sampleStream{}
}

// push converts one mixed, filtered sample to signed 16-bit stereo PCM
// and appends it to the ring buffer; called from the emulation
// goroutine once per audio_sample_callback firing.
func (s *sampleStream) push(sample float32) {
	v := int16(sample * 32767)
	lo, hi := byte(v), byte(v>>8)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = append(s.buf, lo, hi, lo, hi)
	// Bound growth if the audio goroutine stalls; drop the oldest
	// samples rather than growing without limit.
	const maxBuffered = 1 << 16
	if len(s.buf) > maxBuffered {
		s.buf = s.buf[len(s.buf)-maxBuffered:]
	}
}

func (s *sampleStream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	for i := n; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}
