package encoding

import "testing"

func TestZigzag(t *testing.T) {
	tests := []struct {
		v int64
		u uint64
	}{
		{0, 0},
		{-1, 1},
		{1, 2},
		{-2, 3},
		{2, 4},
		{2147483647, 4294967294},
		{-2147483648, 4294967295},
	}
	for i, test := range tests {
		if got := zigzagEncode(test.v); got != test.u {
			t.Errorf(`test #%v: exp zigzagEncode(%v) = %v; got %v`, i, test.v, test.u, got)
		}
		if got := zigzagDecode(test.u); got != test.v {
			t.Errorf(`test #%v: exp zigzagDecode(%v) = %v; got %v`, i, test.u, test.v, got)
		}
	}
}

func TestUvarintFromBytes(t *testing.T) {
	tests := []struct {
		exp  uint64
		from []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xac, 0x02}},
	}
	for i, test := range tests {
		v, n := uvarintFromBytes(test.from, 0)
		if n != len(test.from) {
			t.Fatalf(`test #%v: exp %v bytes consumed; got %v`, i, len(test.from), n)
		}
		if v != test.exp {
			t.Fatalf(`test #%v: exp %v; got %v`, i, test.exp, v)
		}
	}

	t.Run(`Truncated`, func(t *testing.T) {
		_, n := uvarintFromBytes([]byte{0x80, 0x80, 0x80}, 0)
		if n != -1 {
			t.Fatalf(`exp n == -1 for truncated varint; got %v`, n)
		}
	})

	t.Run(`Offset`, func(t *testing.T) {
		data := []byte{0xff, 0xff, 0xac, 0x02}
		v, n := uvarintFromBytes(data, 2)
		if n != 2 {
			t.Fatalf(`exp 2 bytes consumed; got %v`, n)
		}
		if v != 300 {
			t.Fatalf(`exp 300; got %v`, v)
		}
	})
}

func TestShiftedVarintFromBytes(t *testing.T) {
	data := []byte{0xac, 0x02} // 300 unshifted -> 150 shifted
	v, n := shiftedVarintFromBytes(data, 0)
	if n != 2 {
		t.Fatalf(`exp 2 bytes consumed; got %v`, n)
	}
	if v != 150 {
		t.Fatalf(`exp 150; got %v`, v)
	}
}
