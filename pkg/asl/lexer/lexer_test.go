package lexer

import (
	"testing"

	"aslc/pkg/asl/token"
)

func typesOf(t *testing.T, toks []token.Token) []token.Type {
	t.Helper()
	out := make([]token.Type, len(toks))
	for i, tok := range toks {
		out[i] = tok.Type
	}
	return out
}

func TestLex(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []token.Type
	}{
		{
			name:  "Empty",
			input: "",
			want:  []token.Type{token.EOF},
		},
		{
			name:  "Keywords",
			input: "func endfunc var array of if then else endif while do endwhile return read write",
			want: []token.Type{
				token.FUNC, token.ENDFUNC, token.VAR, token.ARRAY, token.OF,
				token.IF, token.THEN, token.ELSE, token.ENDIF,
				token.WHILE, token.DO, token.ENDWHILE,
				token.RETURN, token.READ, token.WRITE, token.EOF,
			},
		},
		{
			name:  "TwoCharOperators",
			input: "== != <= >= && ||",
			want: []token.Type{
				token.EQ, token.NEQ, token.LTE, token.GTE, token.AND, token.OR, token.EOF,
			},
		},
		{
			name:  "IntAndFloat",
			input: "42 3.14",
			want:  []token.Type{token.INTVAL, token.FLOATVAL, token.EOF},
		},
		{
			name:  "CommentIsSkipped",
			input: "x # this is a comment\ny",
			want:  []token.Type{token.IDENTIFIER, token.IDENTIFIER, token.EOF},
		},
		{
			name:  "BooleanLiterals",
			input: "true false",
			want:  []token.Type{token.BOOLVAL, token.BOOLVAL, token.EOF},
		},
		{
			name:  "StringLiteral",
			input: `"hello\nworld"`,
			want:  []token.Type{token.STRING, token.EOF},
		},
		{
			name:  "CharLiteral",
			input: `'a' '\n'`,
			want:  []token.Type{token.CHARVAL, token.CHARVAL, token.EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := Lex(tt.input)
			if err != nil {
				t.Fatalf("Lex(%q) error: %v", tt.input, err)
			}
			got := typesOf(t, toks)
			if len(got) != len(tt.want) {
				t.Fatalf("Lex(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Lex(%q)[%d] = %v, want %v", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLexLineTracking(t *testing.T) {
	toks, err := Lex("x\ny")
	if err != nil {
		t.Fatalf("Lex error: %v", err)
	}
	if toks[0].Pos.Line != 1 {
		t.Errorf("first token line = %d, want 1", toks[0].Pos.Line)
	}
	if toks[1].Pos.Line != 2 {
		t.Errorf("second token line = %d, want 2", toks[1].Pos.Line)
	}
}

func TestLexUnterminatedString(t *testing.T) {
	if _, err := Lex(`"unterminated`); err == nil {
		t.Errorf("Lex of unterminated string literal: expected error, got nil")
	}
}

func TestLexUnexpectedCharacter(t *testing.T) {
	if _, err := Lex("@"); err == nil {
		t.Errorf("Lex of unexpected character: expected error, got nil")
	}
}
