package encoding

import "testing"

func TestSymtabAppendResolve(t *testing.T) {
	s := newSymtab()
	if err := s.append(tableHost, `web01`); err != nil {
		t.Fatalf(`exp nil err; got %v`, err)
	}
	if err := s.append(tableHost, `web02`); err != nil {
		t.Fatalf(`exp nil err; got %v`, err)
	}

	got, err := s.resolve(tableHost, 1)
	if err != nil || got != `web01` {
		t.Fatalf(`exp ("web01", nil); got (%q, %v)`, got, err)
	}
	got, err = s.resolve(tableHost, 2)
	if err != nil || got != `web02` {
		t.Fatalf(`exp ("web02", nil); got (%q, %v)`, got, err)
	}

	t.Run(`ZeroIndexIsUnset`, func(t *testing.T) {
		got, err := s.resolve(tableHost, 0)
		if err != nil || got != `` {
			t.Fatalf(`exp ("", nil); got (%q, %v)`, got, err)
		}
	})

	t.Run(`OutOfRange`, func(t *testing.T) {
		_, err := s.resolve(tableHost, 3)
		if !asKind(err, KindIndexOutOfRange) {
			t.Fatalf(`exp KindIndexOutOfRange; got %v`, err)
		}
	})
}

func TestSymtabActiveAccessors(t *testing.T) {
	s := newSymtab()
	if err := s.append(tableSource, `/var/log/a.log`); err != nil {
		t.Fatalf(`exp nil err; got %v`, err)
	}
	s.activeSource = 1

	got, err := s.source()
	if err != nil || got != `/var/log/a.log` {
		t.Fatalf(`exp ("/var/log/a.log", nil); got (%q, %v)`, got, err)
	}

	s.activeSource = 2
	if _, err := s.source(); !asKind(err, KindIndexOutOfRange) {
		t.Fatalf(`exp KindIndexOutOfRange for stale active index; got %v`, err)
	}
}

func TestSymtabOverflow(t *testing.T) {
	s := newSymtab()
	s.maxSymbols = 1
	if err := s.append(tableString, `a`); err != nil {
		t.Fatalf(`exp nil err; got %v`, err)
	}
	if err := s.append(tableString, `b`); !asKind(err, KindSymbolTableOverflow) {
		t.Fatalf(`exp KindSymbolTableOverflow; got %v`, err)
	}
}

func TestSymtabLookupString(t *testing.T) {
	s := newSymtab()
	if err := s.append(tableString, `field`); err != nil {
		t.Fatalf(`exp nil err; got %v`, err)
	}

	if got, ok := s.lookupString(1); !ok || got != `field` {
		t.Fatalf(`exp ("field", true); got (%q, %v)`, got, ok)
	}
	if _, ok := s.lookupString(0); ok {
		t.Fatal(`exp index 0 to miss`)
	}
	if _, ok := s.lookupString(2); ok {
		t.Fatal(`exp out-of-range index to miss, not error`)
	}
}
