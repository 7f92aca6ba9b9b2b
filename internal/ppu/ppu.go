// Package ppu implements the Picture Processing Unit (Ricoh 2C02): a
// dot-by-dot scanline renderer driven by the Loopy v/t/x/w scroll
// registers.
package ppu

import "nesgo/internal/memory"

// PPU represents the NES Picture Processing Unit.
type PPU struct {
	// CPU-visible registers ($2000-$2007)
	ppuCtrl   uint8
	ppuMask   uint8
	ppuStatus uint8
	oamAddr   uint8
	readBuffer uint8

	// Loopy scroll/address state
	v uint16 // current VRAM address (15 bits)
	t uint16 // temporary VRAM address, address latch
	x uint8  // fine X scroll (3 bits)
	w bool   // write toggle

	memory *memory.PPUMemory

	scanline   int // -1 (pre-render) .. 260
	cycle      int // 0..340
	frameCount uint64
	oddFrame   bool

	oam          [256]uint8
	secondaryOAM [32]uint8
	spriteIndex  [8]uint8 // original OAM index of each secondary-OAM entry
	spriteCount  int

	frameBuffer [256 * 240]uint32

	nmiCallback           func()
	frameCompleteCallback func()

	backgroundEnabled bool
	spritesEnabled    bool
	renderingEnabled  bool
}

func New() *PPU {
	return &PPU{scanline: -1}
}

// Reset returns the PPU to its post-power-on state.
func (p *PPU) Reset() {
	*p = PPU{
		memory:                p.memory,
		nmiCallback:           p.nmiCallback,
		frameCompleteCallback: p.frameCompleteCallback,
		scanline:              -1,
		ppuStatus:              0xA0,
	}
}

func (p *PPU) SetMemory(m *memory.PPUMemory)            { p.memory = m }
func (p *PPU) SetNMICallback(fn func())                 { p.nmiCallback = fn }
func (p *PPU) SetFrameCompleteCallback(fn func())       { p.frameCompleteCallback = fn }
func (p *PPU) GetFrameBuffer() [256 * 240]uint32        { return p.frameBuffer }
func (p *PPU) GetFrameCount() uint64                    { return p.frameCount }
func (p *PPU) GetScanline() int                         { return p.scanline }
func (p *PPU) GetCycle() int                            { return p.cycle }
func (p *PPU) IsRenderingEnabled() bool                 { return p.renderingEnabled }
func (p *PPU) IsVBlank() bool                           { return p.ppuStatus&0x80 != 0 }

// NMILine reports the combinational NMI output: VBlank flag AND NMI
// enable. The CPU edge-detects this level, so the bus can simply poll it
// once per Step, between instructions, rather than reacting to individual
// register writes.
func (p *PPU) NMILine() bool { return p.ppuStatus&0x80 != 0 && p.ppuCtrl&0x80 != 0 }

// ReadRegister reads a CPU-visible PPU register ($2000-$2007). Write-only
// registers return the low 5 bits of PPUSTATUS, matching open-bus leakage
// on real hardware.
func (p *PPU) ReadRegister(address uint16) uint8 {
	switch address {
	case 0x2002:
		status := p.ppuStatus
		p.ppuStatus &= 0x7F
		p.w = false
		return status
	case 0x2004:
		return p.oam[p.oamAddr]
	case 0x2007:
		return p.readPPUData()
	default:
		return p.ppuStatus & 0x1F
	}
}

// WriteRegister writes a CPU-visible PPU register.
func (p *PPU) WriteRegister(address uint16, value uint8) {
	switch address {
	case 0x2000:
		p.ppuCtrl = value
		p.t = (p.t & 0xF3FF) | ((uint16(value) & 0x03) << 10)
		p.checkNMI()
	case 0x2001:
		p.ppuMask = value
		p.backgroundEnabled = value&0x08 != 0
		p.spritesEnabled = value&0x10 != 0
		p.renderingEnabled = p.backgroundEnabled || p.spritesEnabled
	case 0x2003:
		p.oamAddr = value
	case 0x2004:
		p.oam[p.oamAddr] = value
		p.oamAddr++
	case 0x2005:
		p.writePPUScroll(value)
	case 0x2006:
		p.writePPUAddr(value)
	case 0x2007:
		p.writePPUData(value)
	}
}

// WriteOAM writes directly into OAM at a fixed address, used by OAMDMA.
func (p *PPU) WriteOAM(address uint8, value uint8) { p.oam[address] = value }

func (p *PPU) checkNMI() {
	if p.ppuCtrl&0x80 != 0 && p.ppuStatus&0x80 != 0 && p.nmiCallback != nil {
		p.nmiCallback()
	}
}

func (p *PPU) writePPUScroll(value uint8) {
	if !p.w {
		p.t = (p.t & 0xFFE0) | uint16(value>>3)
		p.x = value & 0x07
		p.w = true
		return
	}
	p.t = (p.t & 0x8C1F) | (uint16(value&0x07) << 12) | (uint16(value&0xF8) << 2)
	p.w = false
}

func (p *PPU) writePPUAddr(value uint8) {
	if !p.w {
		p.t = (p.t & 0x80FF) | ((uint16(value) & 0x3F) << 8)
		p.w = true
		return
	}
	p.t = (p.t & 0xFF00) | uint16(value)
	p.v = p.t
	p.w = false
}

func (p *PPU) readPPUData() uint8 {
	if p.memory == nil {
		p.advanceVRAMAddr()
		return 0
	}
	var data uint8
	if p.v >= 0x3F00 {
		data = p.memory.Read(p.v)
		p.readBuffer = p.memory.Read(p.v & 0x2FFF)
	} else {
		data = p.readBuffer
		p.readBuffer = p.memory.Read(p.v)
	}
	p.advanceVRAMAddr()
	return data
}

func (p *PPU) writePPUData(value uint8) {
	if p.memory != nil {
		p.memory.Write(p.v, value)
	}
	p.advanceVRAMAddr()
}

func (p *PPU) advanceVRAMAddr() {
	if p.ppuCtrl&0x04 != 0 {
		p.v += 32
	} else {
		p.v++
	}
	p.v &= 0x3FFF
}

// Step advances the PPU by one dot.
func (p *PPU) Step() {
	p.cycle++
	// The pre-render line is one dot shorter on odd frames when rendering
	// is on: dot 340 is skipped, landing straight on scanline 0 dot 0.
	if p.scanline == -1 && p.cycle == 340 && p.oddFrame && p.renderingEnabled {
		p.cycle = 341
	}
	if p.cycle > 340 {
		p.cycle = 0
		p.scanline++
		if p.scanline > 260 {
			p.scanline = -1
			p.frameCount++
			p.oddFrame = !p.oddFrame
			if p.frameCompleteCallback != nil {
				p.frameCompleteCallback()
			}
		}
	}

	if p.scanline == 241 && p.cycle == 1 {
		p.ppuStatus |= 0x80
		p.ppuStatus &= 0xBF // sprite-0 hit clears at VBlank start too
		p.checkNMI()
	}
	if p.scanline == -1 && p.cycle == 1 {
		p.ppuStatus &= 0x1F // clear VBlank, sprite-0 hit, sprite overflow
	}

	if p.scanline >= -1 && p.scanline < 240 {
		p.renderDot()
	}
}

func (p *PPU) renderDot() {
	if p.renderingEnabled {
		if p.scanline >= 0 && p.scanline < 240 && p.cycle == 1 {
			p.evaluateSprites()
		}
		if p.cycle == 256 {
			p.incrementY()
		}
		if p.cycle == 257 {
			p.copyX()
		}
		if p.scanline == -1 && p.cycle >= 280 && p.cycle <= 304 {
			p.copyY()
		}
	}

	if p.scanline < 0 || p.cycle < 2 || p.cycle > 257 {
		return
	}
	pixelX := p.cycle - 2
	pixelY := p.scanline
	if p.memory == nil {
		return
	}

	var bg, sp pixel
	if p.backgroundEnabled {
		bg = p.renderBackgroundPixel(pixelX)
	} else {
		bg.transparent = true
	}
	if p.spritesEnabled {
		sp = p.renderSpritePixel(pixelX, pixelY)
	} else {
		sp.transparent = true
	}

	if sp.fromSpriteZero && !sp.transparent && !bg.transparent &&
		p.backgroundEnabled && p.spritesEnabled && pixelX != 255 &&
		!(pixelX < 8 && (p.ppuMask&0x02 == 0 || p.ppuMask&0x04 == 0)) {
		p.ppuStatus |= 0x40
	}

	p.frameBuffer[pixelY*256+pixelX] = p.composite(bg, sp)
}

// pixel is one candidate background or sprite pixel before compositing.
type pixel struct {
	colorIndex     uint8
	rgb            uint32
	transparent    bool
	behindBG       bool // sprite priority bit: true = drawn behind opaque background
	fromSpriteZero bool
}

func (p *PPU) composite(bg, sp pixel) uint32 {
	if sp.transparent {
		if bg.transparent {
			return nesColorRGB(p.memory.Read(0x3F00))
		}
		return bg.rgb
	}
	if bg.transparent {
		return sp.rgb
	}
	if sp.behindBG {
		return bg.rgb
	}
	return sp.rgb
}

func (p *PPU) getCoarseX() int { return int(p.v & 0x001F) }
func (p *PPU) getCoarseY() int { return int((p.v >> 5) & 0x001F) }
func (p *PPU) getFineY() int   { return int((p.v >> 12) & 0x0007) }
func (p *PPU) getNametable() int { return int((p.v >> 10) & 0x0003) }

func (p *PPU) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}
	p.v &= ^uint16(0x7000)
	y := (p.v & 0x03E0) >> 5
	switch y {
	case 29:
		y = 0
		p.v ^= 0x0800
	case 31:
		y = 0
	default:
		y++
	}
	p.v = (p.v &^ uint16(0x03E0)) | (y << 5)
}

func (p *PPU) copyX() { p.v = (p.v & 0xFBE0) | (p.t & 0x041F) }
func (p *PPU) copyY() { p.v = (p.v & 0x841F) | (p.t & 0x7BE0) }

// renderBackgroundPixel resolves a single background pixel at the given
// x position of the scanline currently in v, following the coarse/fine
// decomposition of the VRAM address instead of an ad-hoc world coordinate.
func (p *PPU) renderBackgroundPixel(pixelX int) pixel {
	baseCoarseX := p.getCoarseX()
	baseFineX := int(p.x)
	coarseY := p.getCoarseY()
	fineY := p.getFineY()
	baseNametable := p.getNametable()

	absCol := baseCoarseX + (baseFineX+pixelX)/8
	pixelInTileX := (baseFineX + pixelX) % 8
	tileX := absCol % 32
	nametable := baseNametable
	if (absCol/32)%2 == 1 {
		nametable ^= 1
	}

	nametableAddr := 0x2000 | uint16(nametable&3)<<10 | uint16(coarseY*32+tileX)
	tileID := p.memory.Read(nametableAddr)

	attrAddr := 0x23C0 | uint16(nametable&3)<<10 | uint16((coarseY>>2)*8+(tileX>>2))
	attrByte := p.memory.Read(attrAddr)
	quadrant := ((tileX & 2) >> 1) + ((coarseY & 2) >> 1 * 2)
	paletteIndex := (attrByte >> (quadrant * 2)) & 0x03

	var patternBase uint16
	if p.ppuCtrl&0x10 != 0 {
		patternBase = 0x1000
	}
	patternAddr := patternBase + uint16(tileID)*16 + uint16(fineY)
	lo := p.memory.Read(patternAddr)
	hi := p.memory.Read(patternAddr + 8)
	shift := 7 - pixelInTileX
	colorIndex := ((hi >> shift) & 1 << 1) | ((lo >> shift) & 1)

	if colorIndex == 0 {
		return pixel{transparent: true, colorIndex: 0, rgb: nesColorRGB(p.memory.Read(0x3F00))}
	}
	paletteAddr := 0x3F00 + uint16(paletteIndex)*4 + uint16(colorIndex)
	return pixel{colorIndex: colorIndex, rgb: nesColorRGB(p.memory.Read(paletteAddr))}
}

// evaluateSprites fills secondaryOAM with up to 8 sprites visible on the
// scanline about to be drawn, reproducing the hardware's 9th-sprite
// overflow-detection bug: once 8 sprites are found, the scan continues but
// increments the within-sprite byte offset (m) alongside the sprite index
// (n) instead of resetting it.
func (p *PPU) evaluateSprites() {
	p.spriteCount = 0
	for i := range p.secondaryOAM {
		p.secondaryOAM[i] = 0xFF
	}
	height := 8
	if p.ppuCtrl&0x20 != 0 {
		height = 16
	}
	inRange := func(y uint8) bool {
		d := p.scanline - int(y)
		return d >= 0 && d < height
	}

	n := 0
	for n < 64 && p.spriteCount < 8 {
		y := p.oam[n*4]
		if inRange(y) {
			base := p.spriteCount * 4
			copy(p.secondaryOAM[base:base+4], p.oam[n*4:n*4+4])
			p.spriteIndex[p.spriteCount] = uint8(n)
			p.spriteCount++
		}
		n++
	}

	m := 0
	for n < 64 {
		y := p.oam[n*4+m]
		if inRange(y) {
			p.ppuStatus |= 0x20
			m++
			if m == 4 {
				m = 0
				n++
			}
		} else {
			n++
			m++
			if m == 4 {
				m = 0
			}
		}
	}
}

func (p *PPU) renderSpritePixel(pixelX, pixelY int) pixel {
	height := 8
	if p.ppuCtrl&0x20 != 0 {
		height = 16
	}
	for i := 0; i < p.spriteCount; i++ {
		base := i * 4
		sY := int(p.secondaryOAM[base])
		tile := p.secondaryOAM[base+1]
		attr := p.secondaryOAM[base+2]
		sX := int(p.secondaryOAM[base+3])

		if pixelX < sX || pixelX >= sX+8 {
			continue
		}
		py := pixelY - sY
		if py < 0 || py >= height {
			continue
		}
		px := pixelX - sX
		if attr&0x40 != 0 {
			px = 7 - px
		}
		if attr&0x80 != 0 {
			py = height - 1 - py
		}

		colorIndex := p.spritePatternColor(tile, px, py)
		if colorIndex == 0 {
			continue
		}
		paletteIndex := attr & 0x03
		paletteAddr := 0x3F10 + uint16(paletteIndex)*4 + uint16(colorIndex)
		return pixel{
			colorIndex:     colorIndex,
			rgb:            nesColorRGB(p.memory.Read(paletteAddr)),
			behindBG:       attr&0x20 != 0,
			fromSpriteZero: p.spriteIndex[i] == 0,
		}
	}
	return pixel{transparent: true}
}

func (p *PPU) spritePatternColor(tile uint8, px, py int) uint8 {
	var patternBase uint16
	if p.ppuCtrl&0x20 == 0 {
		if p.ppuCtrl&0x08 != 0 {
			patternBase = 0x1000
		}
	} else {
		if tile&0x01 != 0 {
			patternBase = 0x1000
		}
		tile &= 0xFE
		if py >= 8 {
			tile++
			py -= 8
		}
	}
	addr := patternBase + uint16(tile)*16 + uint16(py)
	lo := p.memory.Read(addr)
	hi := p.memory.Read(addr + 8)
	shift := 7 - px
	return ((hi >> shift) & 1 << 1) | ((lo >> shift) & 1)
}

// nesPalette is the 64-entry NTSC master palette produced by the 2C02's
// internal RGB decoder.
var nesPalette = [64]uint32{
	0x666666, 0x002A88, 0x1412A7, 0x3B00A4, 0x5C007E, 0x6E0040, 0x6C0600, 0x561D00,
	0x333500, 0x0B4800, 0x005200, 0x004F08, 0x00404D, 0x000000, 0x000000, 0x000000,
	0xADADAD, 0x155FD9, 0x4240FF, 0x7527FE, 0xA01ACC, 0xB71E7B, 0xB53120, 0x994E00,
	0x6B6D00, 0x388700, 0x0C9300, 0x008F32, 0x007C8D, 0x000000, 0x000000, 0x000000,
	0xFFFEFF, 0x64B0FF, 0x9290FF, 0xC676FF, 0xF36AFF, 0xFE6ECC, 0xFE8170, 0xEA9E22,
	0xBCBE00, 0x88D800, 0x5CE430, 0x45E082, 0x48CDDE, 0x4F4F4F, 0x000000, 0x000000,
	0xFFFEFF, 0xC0DFFF, 0xD3D2FF, 0xE8C8FF, 0xFBC2FF, 0xFEC4EA, 0xFECCC5, 0xF7D8A5,
	0xE4E594, 0xCFF29B, 0xBEFBB3, 0xB8F8D8, 0xB8F8F8, 0x000000, 0x000000, 0x000000,
}

func nesColorRGB(index uint8) uint32 { return nesPalette[index&0x3F] }

// NESColorToRGB exposes the master palette lookup for callers outside the
// package (PPM dumping, graphics backends).
func NESColorToRGB(index uint8) uint32 { return nesColorRGB(index) }

// Palette returns a copy of the 64-entry master RGB palette, used by
// diagnostic tooling that needs to recognize a valid NES color.
func Palette() [64]uint32 { return nesPalette }
