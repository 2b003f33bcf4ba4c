package nlp

// Token is one token of a command with the annotations the parser consumes.
// Dep and Head carry dependency information ("pobj" of "of") when the
// tokenizer supports it; the rule-based fallback leaves them empty.
type Token struct {
	Text         string
	PartOfSpeech string
	Lemma        string
	Dep          string
	Head         string
	Start        int // byte offset of the token in the input
}

// Tokenizer splits a lowercased command into annotated tokens. Implementations
// are selected once at startup; the fallback below is always available and its
// behavior is fully reproducible without any external model.
type Tokenizer interface {
	Tokenize(text string) []Token
}

// verbWords are the tokens the fallback tokenizer tags as VERB.
var verbWords = map[string]bool{
	"add":    true,
	"create": true,
	"make":   true,
	"move":   true,
	"rotate": true,
	"scale":  true,
	"remove": true,
	"delete": true,
}

// FallbackTokenizer splits on whitespace and tags a fixed verb list. It never
// fills Dep or Head, so "relative_to" extraction is unavailable on this path.
type FallbackTokenizer struct{}

// Tokenize splits text on spaces and tabs, recording each token's byte offset.
func (FallbackTokenizer) Tokenize(text string) []Token {
	var tokens []Token
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		word := text[start:end]
		tokens = append(tokens, Token{
			Text:         word,
			PartOfSpeech: pos(word),
			Lemma:        word,
			Start:        start,
		})
		start = -1
	}
	for i, r := range text {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			flush(i)
		} else if start < 0 {
			start = i
		}
	}
	flush(len(text))
	return tokens
}

func pos(word string) string {
	if verbWords[word] {
		return "VERB"
	}
	return ""
}
