package token

import "testing"

func TestLexer_Keywords(t *testing.T) {
	l := NewLexer("test.c", "if else for while break continue int char struct return")
	expected := []string{"if", "else", "for", "while", "break", "continue", "int", "char", "struct", "return"}
	for i, want := range expected {
		tok, err := l.Current()
		if err != nil {
			t.Fatalf("token %d: unexpected error: %v", i, err)
		}
		if tok.Kind != Keyword || tok.Lexeme != want {
			t.Errorf("token %d: got %v %q, want Keyword %q", i, tok.Kind, tok.Lexeme, want)
		}
		l.Advance()
	}
	tok, err := l.Current()
	if err != nil || tok.Kind != Eof {
		t.Errorf("expected Eof, got %v (err %v)", tok, err)
	}
}

func TestLexer_TwoCharOps(t *testing.T) {
	l := NewLexer("test.c", "== != <= >= += -= *= /= ++ --")
	for _, want := range TwoCharOps() {
		tok, err := l.Current()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tok.Kind != Punct || tok.Lexeme != want {
			t.Errorf("got %v %q, want Punct %q", tok.Kind, tok.Lexeme, want)
		}
		l.Advance()
	}
}

func TestLexer_SkipsComments(t *testing.T) {
	l := NewLexer("test.c", "1 /* block\ncomment */ // line\n2")
	tok, _ := l.Current()
	if tok.Kind != Num || tok.Num != 1 {
		t.Fatalf("expected first token 1, got %v", tok)
	}
	l.Advance()
	tok, _ = l.Current()
	if tok.Kind != Num || tok.Num != 2 {
		t.Fatalf("expected second token 2, got %v", tok)
	}
}

func TestLexer_StringEscapes(t *testing.T) {
	l := NewLexer("test.c", `"a\nb\tc\\\""`)
	tok, err := l.Current()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "a\nb\tc\\\""
	if tok.Kind != Str || tok.Lexeme != want {
		t.Errorf("got %q, want %q", tok.Lexeme, want)
	}
}

func TestLexer_UnterminatedStringErrors(t *testing.T) {
	l := NewLexer("test.c", `"abc`)
	_, err := l.Current()
	if err == nil {
		t.Fatal("expected an error for an unterminated string")
	}
}

func TestLexer_AdvanceIdempotentAfterError(t *testing.T) {
	l := NewLexer("test.c", "`")
	_, err := l.Current()
	if err == nil {
		t.Fatal("expected an error for an unexpected character")
	}
	l.Advance()
	_, err2 := l.Current()
	if err2 == nil || err2.Error() != err.Error() {
		t.Errorf("Advance after error should be a no-op, got %v then %v", err, err2)
	}
}

func TestLexer_CloneIsIndependent(t *testing.T) {
	l := NewLexer("test.c", "1 2 3")
	clone := l.Clone()
	clone.Advance()
	clone.Advance()

	tok, _ := l.Current()
	if tok.Num != 1 {
		t.Errorf("original cursor moved: got %v", tok)
	}
	cloneTok, _ := clone.Current()
	if cloneTok.Num != 3 {
		t.Errorf("clone did not advance: got %v", cloneTok)
	}
}
