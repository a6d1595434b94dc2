package css

import (
	"testing"
)

// typesOf strips values, keeping the token type sequence.
func typesOf(tokens []Token) []TokenType {
	types := make([]TokenType, len(tokens))
	for i, t := range tokens {
		types[i] = t.Type
	}
	return types
}

func TestTokenizeBasic(t *testing.T) {
	tests := []struct {
		name  string
		input string
		types []TokenType
	}{
		{
			name:  "simple rule",
			input: "div{color:red}",
			types: []TokenType{IdentToken, LeftBraceToken, IdentToken, ColonToken, IdentToken, RightBraceToken, EOFToken},
		},
		{
			name:  "whitespace runs collapse to one token",
			input: "a   \t\n  b",
			types: []TokenType{IdentToken, WhitespaceToken, IdentToken, EOFToken},
		},
		{
			name:  "at keyword",
			input: "@media screen",
			types: []TokenType{AtKeywordToken, WhitespaceToken, IdentToken, EOFToken},
		},
		{
			name:  "hash and delim",
			input: "#id #",
			types: []TokenType{HashToken, WhitespaceToken, DelimToken, EOFToken},
		},
		{
			name:  "cdo cdc",
			input: "<!-- -->",
			types: []TokenType{CDOToken, WhitespaceToken, CDCToken, EOFToken},
		},
		{
			name:  "function",
			input: "rgb(1,2,3)",
			types: []TokenType{FunctionToken, NumberToken, CommaToken, NumberToken, CommaToken, NumberToken, RightParenToken, EOFToken},
		},
		{
			name:  "comment consumed between tokens",
			input: "a/* comment */b",
			types: []TokenType{IdentToken, IdentToken, EOFToken},
		},
		{
			name:  "brackets",
			input: "[a]{b}(c)",
			types: []TokenType{LeftBracketToken, IdentToken, RightBracketToken, LeftBraceToken, IdentToken, RightBraceToken, LeftParenToken, IdentToken, RightParenToken, EOFToken},
		},
		{
			name:  "dimension splits into number and ident",
			input: "12px",
			types: []TokenType{NumberToken, IdentToken, EOFToken},
		},
		{
			name:  "percent is number plus delim",
			input: "50%",
			types: []TokenType{NumberToken, DelimToken, EOFToken},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := typesOf(Tokenize(tt.input))
			if len(got) != len(tt.types) {
				t.Fatalf("got %v tokens %v, want %v", len(got), got, tt.types)
			}
			for i := range got {
				if got[i] != tt.types[i] {
					t.Errorf("token %d: got %v, want %v", i, got[i], tt.types[i])
				}
			}
		})
	}
}

func TestTokenizeNumbers(t *testing.T) {
	tests := []struct {
		input   string
		value   float64
		integer bool
	}{
		{"42", 42, true},
		{"4.5", 4.5, false},
		{"-3", -3, true},
		{"+7", 7, true},
		{".5", 0.5, false},
		{"-0.25", -0.25, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := Tokenize(tt.input)
			if tokens[0].Type != NumberToken {
				t.Fatalf("got %v, want number", tokens[0].Type)
			}
			if tokens[0].Numeric != tt.value {
				t.Errorf("value: got %v, want %v", tokens[0].Numeric, tt.value)
			}
			if tokens[0].Integer != tt.integer {
				t.Errorf("integer flag: got %v, want %v", tokens[0].Integer, tt.integer)
			}
		})
	}
}

// The exponent form is not recognized: "1e3" is the number 1 followed
// by the identifier "e3".
func TestTokenizeNoExponent(t *testing.T) {
	tokens := Tokenize("1e3")
	if tokens[0].Type != NumberToken || tokens[0].Numeric != 1 {
		t.Fatalf("got %v %v, want number 1", tokens[0].Type, tokens[0].Numeric)
	}
	if tokens[1].Type != IdentToken || tokens[1].Value != "e3" {
		t.Fatalf("got %v %q, want ident e3", tokens[1].Type, tokens[1].Value)
	}
}

func TestTokenizeStrings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		typ   TokenType
		value string
	}{
		{"double quoted", `"hello"`, StringToken, "hello"},
		{"single quoted", `'world'`, StringToken, "world"},
		{"unterminated at EOF", `"open`, StringToken, "open"},
		{"escaped quote", `"a\"b"`, StringToken, `a"b`},
		{"newline makes bad-string", "\"bad\nrest\"", BadStringToken, ""},
		{"escaped newline continues", "\"a\\\nb\"", StringToken, "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := Tokenize(tt.input)
			if tokens[0].Type != tt.typ {
				t.Fatalf("got %v, want %v", tokens[0].Type, tt.typ)
			}
			if tt.typ == StringToken && tokens[0].Value != tt.value {
				t.Errorf("value: got %q, want %q", tokens[0].Value, tt.value)
			}
		})
	}
}

func TestTokenizeURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		typ   TokenType
		value string
	}{
		{"raw url", "url(img.png)", URLToken, "img.png"},
		{"url with spaces around", "url(  img.png  )", URLToken, "img.png"},
		{"quoted url becomes function", `url("img.png")`, FunctionToken, "url"},
		{"bad url on inner paren", "url(a(b)", BadURLToken, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := Tokenize(tt.input)
			if tokens[0].Type != tt.typ {
				t.Fatalf("got %v, want %v", tokens[0].Type, tt.typ)
			}
			if tt.value != "" && tokens[0].Value != tt.value {
				t.Errorf("value: got %q, want %q", tokens[0].Value, tt.value)
			}
		})
	}
}

// Re-tokenizing a token's canonical form reproduces a token of the
// same type and value.
func TestTokenRoundTrip(t *testing.T) {
	input := `div .cls #id 12px 50% "str" url(x.png) @media , : ; <!-- -->`
	for _, tok := range Tokenize(input) {
		if tok.Type == EOFToken || tok.Type == WhitespaceToken {
			continue
		}
		again := Tokenize(tok.Repr())
		if again[0].Type != tok.Type {
			t.Errorf("%q: got %v, want %v", tok.Repr(), again[0].Type, tok.Type)
		}
		if again[0].Value != tok.Value {
			t.Errorf("%q: value got %q, want %q", tok.Repr(), again[0].Value, tok.Value)
		}
	}
}

// The tokenizer terminates with an EOF token on arbitrary input.
func TestTokenizeTerminates(t *testing.T) {
	inputs := []string{
		"", "}", "{", "\\", "\\\n", "url(", "/*", "/* unterminated",
		"\"", "'", "@", "#", "...", "a{b:c", "<!-", "-->",
		string([]byte{0xff, 0xfe, 0x00, 0x41}),
	}
	for _, input := range inputs {
		tokens := Tokenize(input)
		if tokens[len(tokens)-1].Type != EOFToken {
			t.Errorf("%q: missing EOF terminator", input)
		}
	}
}
