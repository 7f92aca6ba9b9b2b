package input

import "testing"

func TestStrobeHighAlwaysReturnsButtonA(t *testing.T) {
	c := New()
	c.SetButton(ButtonA, true)
	c.SetButton(ButtonB, true)
	c.Write(1) // strobe high
	if got := c.Read(); got != 1 {
		t.Fatalf("Read() while strobed = %d, want 1 (A pressed)", got)
	}
	if got := c.Read(); got != 1 {
		t.Fatalf("repeated reads while strobed should keep returning A, got %d", got)
	}
}

func TestShiftsAllEightButtonsInOrder(t *testing.T) {
	c := New()
	c.SetButtons([8]bool{true, false, true, false, false, false, false, true}) // A,Sel,Right
	c.Write(1)
	c.Write(0) // latch

	want := []uint8{1, 0, 1, 0, 0, 0, 0, 1}
	for i, w := range want {
		if got := c.Read(); got != w {
			t.Fatalf("bit %d = %d, want %d", i, got, w)
		}
	}
}

func TestReadsPastEighthBitReturnOne(t *testing.T) {
	c := New()
	c.Write(1)
	c.Write(0)
	for i := 0; i < 8; i++ {
		c.Read()
	}
	if got := c.Read(); got != 1 {
		t.Fatalf("9th read = %d, want 1 (open-bus fill)", got)
	}
}

func TestController2ReadHasBit6Set(t *testing.T) {
	is := NewInputState()
	if got := is.Read(0x4017); got&0x40 == 0 {
		t.Fatalf("$4017 read = %#x, want bit 6 set", got)
	}
}

func TestWriteTo4016StrobesBothControllers(t *testing.T) {
	is := NewInputState()
	is.Controller1.SetButton(ButtonA, true)
	is.Controller2.SetButton(ButtonB, true)
	is.Write(0x4016, 1)
	is.Write(0x4016, 0)

	if got := is.Read(0x4016) & 1; got != 1 {
		t.Fatalf("controller 1 first bit = %d, want 1 (A)", got)
	}
	is.Read(0x4017) // A, not pressed on controller 2
	if got := is.Read(0x4017) & 1; got != 1 {
		t.Fatalf("controller 2 second bit = %d, want 1 (B)", got)
	}
}
