package lexer

import "testing"

// FuzzNextNeverHangs feeds arbitrary byte sequences through the token
// stream and asserts the scanner always reaches EOF in bounded steps
// (no byte is ever re-scanned without the position advancing).
func FuzzNextNeverHangs(f *testing.F) {
	f.Add([]byte("int x = a + 42; // c\nif (x==43) x = x-1;"))
	f.Add([]byte(""))
	f.Add([]byte("/* unterminated"))
	f.Add([]byte(`"unterminated`))
	f.Add([]byte("@#$%^"))
	f.Add([]byte("int x[10];"))

	f.Fuzz(func(t *testing.T, src []byte) {
		l := New(src, nil)
		steps := 0
		limit := len(src)*4 + 16
		for {
			before := l.pos
			tok := l.Next()
			if tok.Kind == EOF {
				return
			}
			steps++
			if steps > limit {
				t.Fatalf("Next() did not terminate within %d steps for input %q", limit, src)
			}
			if l.pos <= before && tok.Kind != EOF {
				t.Fatalf("Next() did not advance the cursor: before=%d after=%d token=%+v", before, l.pos, tok)
			}
		}
	})
}
