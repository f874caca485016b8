package token

// Kind enumerates the token categories the tokenizer's contract promises:
// Eof | Keyword | Ident | Num | Str | Punct. Keywords and punctuators
// carry their literal text in Lexeme rather than getting one enum value
// per spelling, which keeps this list closed even as the grammar grows.
type Kind int

const (
	Eof Kind = iota
	Keyword
	Ident
	Num
	Str
	Punct
)

func (k Kind) String() string {
	switch k {
	case Eof:
		return "EOF"
	case Keyword:
		return "KEYWORD"
	case Ident:
		return "IDENT"
	case Num:
		return "NUM"
	case Str:
		return "STR"
	case Punct:
		return "PUNCT"
	default:
		return "UNKNOWN"
	}
}

// Token is a single lexical token. It is a value type: cheap to copy and
// cheap to clone along with the cursor that produced it.
type Token struct {
	Kind     Kind
	Lexeme   string // keyword/punct spelling, identifier name, or raw string body
	Num      uint64 // valid iff Kind == Num
	Position Position
}

// Is reports whether the token is a Keyword or Punct with the given
// spelling. It is the one primitive the parser needs for lookahead.
func (t Token) Is(kind Kind, lexeme string) bool {
	return t.Kind == kind && t.Lexeme == lexeme
}

// Keywords recognized by the tokenizer (§6 EXTERNAL INTERFACES).
var Keywords = map[string]bool{
	"return":   true,
	"if":       true,
	"else":     true,
	"for":      true,
	"while":    true,
	"break":    true,
	"continue": true,
	"int":      true,
	"char":     true,
	"struct":   true,
}

// twoCharOps lists the multi-character operators the tokenizer must
// prefer over their single-character prefixes.
var twoCharOps = []string{
	"==", "!=", "<=", ">=", "+=", "-=", "*=", "/=", "++", "--",
}

// TwoCharOps exposes twoCharOps for the lexer's maximal-munch scan.
func TwoCharOps() []string { return twoCharOps }
