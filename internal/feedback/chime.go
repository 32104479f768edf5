package feedback

import (
	"log"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/relabs-tech/tiltdrop/internal/game"
)

const chimeSampleRate = beep.SampleRate(44100)

// Chime plays short generated sine tones for game events: a high ding
// when the ball reaches the screen edge, lower blips for catches, and
// a two-note riff for bonus catches. Playback goes through the beep
// speaker mixer, so every call returns immediately.
type Chime struct {
	sr beep.SampleRate
}

// NewChime initializes the audio device. On machines without audio
// output this fails; callers should fall back to the log dispatcher.
func NewChime() (*Chime, error) {
	sr := chimeSampleRate
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		return nil, err
	}
	return &Chime{sr: sr}, nil
}

func (c *Chime) BoundaryHit() {
	c.play(880, 100*time.Millisecond)
}

func (c *Chime) Collision(kind game.Kind) {
	if kind == game.Bonus {
		c.playSeq([2]int{659, 988}, 80*time.Millisecond)
		return
	}
	c.play(523, 80*time.Millisecond)
}

func (c *Chime) play(freq int, d time.Duration) {
	tone, err := generators.SinTone(c.sr, freq)
	if err != nil {
		log.Printf("feedback: tone %d Hz: %v", freq, err)
		return
	}
	speaker.Play(beep.Take(c.sr.N(d), tone))
}

func (c *Chime) playSeq(freqs [2]int, d time.Duration) {
	first, err := generators.SinTone(c.sr, freqs[0])
	if err != nil {
		log.Printf("feedback: tone %d Hz: %v", freqs[0], err)
		return
	}
	second, err := generators.SinTone(c.sr, freqs[1])
	if err != nil {
		log.Printf("feedback: tone %d Hz: %v", freqs[1], err)
		return
	}
	speaker.Play(beep.Seq(
		beep.Take(c.sr.N(d), first),
		beep.Take(c.sr.N(d), second),
	))
}
