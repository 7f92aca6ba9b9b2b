// Package audio feeds the APU's mixed sample stream to an audio device.
package audio

import (
	"bytes"
	"encoding/binary"
	"sync"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

const sampleRate = 44100

// Player drains float32 mono samples produced by the APU mixer each frame
// and plays them back through Ebitengine's audio context. Samples that
// arrive with no backend attached (headless/terminal runs) are simply
// dropped by Submit never being called.
type Player struct {
	mu      sync.Mutex
	context *audio.Context
	player  *audio.Player
	queue   bytes.Buffer
}

// NewPlayer creates a Player backed by a fresh Ebitengine audio context at
// the NES's standard 44.1kHz output rate.
func NewPlayer() (*Player, error) {
	ctx := audio.NewContext(sampleRate)
	p := &Player{context: ctx}

	player, err := ctx.NewPlayer(p)
	if err != nil {
		return nil, err
	}
	player.SetBufferSize(0)
	p.player = player
	player.Play()
	return p, nil
}

// Submit appends APU samples (mono, [-1, 1]) to the playback queue, encoded
// as 16-bit signed stereo PCM (both channels duplicated from the mono mix).
func (p *Player) Submit(samples []float32) {
	if len(samples) == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		v := int16(s * 32767)
		var buf [4]byte
		binary.LittleEndian.PutUint16(buf[0:2], uint16(v))
		binary.LittleEndian.PutUint16(buf[2:4], uint16(v))
		p.queue.Write(buf[:])
	}
}

// Read implements io.Reader for the Ebitengine audio player, draining the
// queued PCM bytes; silence pads the rest of b when the queue runs dry,
// i.e. when the emulator falls behind the audio device.
func (p *Player) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n, _ := p.queue.Read(b)
	for i := n; i < len(b); i++ {
		b[i] = 0
	}
	return len(b), nil
}

// Close stops playback.
func (p *Player) Close() error {
	if p.player != nil {
		return p.player.Close()
	}
	return nil
}
