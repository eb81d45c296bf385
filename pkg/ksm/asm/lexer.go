// Package asm drives the word stream, symbol tables, and instruction
// model in reverse of pkg/ksm/disasm: textual parsing, on-demand
// identifier allocation, label back-patching, and section layout.
package asm

import (
	"strings"

	"github.com/Manu343726/ksmtool/pkg/ksm/instructions"
)

// TokenKind classifies one lexical token.
type TokenKind int

const (
	TokIdent TokenKind = iota
	TokNumber
	TokString
	TokOperator
	TokDelimiter
	TokEOF
)

// Token is one lexical unit of a CKSM body line.
type Token struct {
	Kind  TokenKind
	Text  string
	Value float64 // not set by the lexer; a TokNumber's value is parsed from Text
	IsHex bool
}

// Lexer tokenizes CKSM body text line by line, stripping "//" comments
// and attaching a physical line that starts with ';' to the previous
// statement as a continuation, matching the original's
// allowGetNextLine behavior.
type Lexer struct {
	lines []string
	pos   int
	toks  []Token
	idx   int
}

// NewLexer prepares a lexer over CKSM body source text.
func NewLexer(source string) *Lexer {
	rawLines := strings.Split(source, "\n")
	var lines []string
	for _, l := range rawLines {
		if idx := strings.Index(l, "//"); idx >= 0 {
			l = l[:idx]
		}
		trimmed := strings.TrimSpace(l)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ";") && len(lines) > 0 {
			lines[len(lines)-1] += " " + strings.TrimPrefix(trimmed, ";")
			continue
		}
		lines = append(lines, trimmed)
	}
	lx := &Lexer{lines: lines}
	lx.tokenizeAll()
	return lx
}

func (lx *Lexer) tokenizeAll() {
	for _, line := range lx.lines {
		lx.toks = append(lx.toks, tokenizeLine(line)...)
	}
	lx.toks = append(lx.toks, Token{Kind: TokEOF})
}

func tokenizeLine(line string) []Token {
	var toks []Token
	runes := []rune(line)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case r == ' ' || r == '\t':
			i++
		case r == '"':
			j := i + 1
			var sb strings.Builder
			for j < len(runes) && runes[j] != '"' {
				if runes[j] == '\\' && j+1 < len(runes) {
					sb.WriteRune(unescape(runes[j+1]))
					j += 2
					continue
				}
				sb.WriteRune(runes[j])
				j++
			}
			toks = append(toks, Token{Kind: TokString, Text: sb.String()})
			i = j + 1
		case isDigit(r):
			j := i
			hex := false
			if r == '0' && j+1 < len(runes) && (runes[j+1] == 'x' || runes[j+1] == 'X') {
				hex = true
				j += 2
				for j < len(runes) && isHexDigit(runes[j]) {
					j++
				}
			} else {
				for j < len(runes) && (isDigit(runes[j]) || runes[j] == '.') {
					j++
				}
			}
			text := string(runes[i:j])
			toks = append(toks, Token{Kind: TokNumber, Text: text, IsHex: hex})
			i = j
		case instructions.IsBracketOrDelimiter(r), r == '(' || r == ')':
			toks = append(toks, Token{Kind: TokDelimiter, Text: string(r)})
			i++
		case instructions.IsOperatorChar(r):
			j := i + 1
			// greedily match the longest known 2-char operator
			if j < len(runes) {
				two := string(runes[i : j+1])
				if _, ok := instructions.OperatorFromGlyph(two); ok {
					toks = append(toks, Token{Kind: TokOperator, Text: two})
					i = j + 1
					continue
				}
			}
			toks = append(toks, Token{Kind: TokOperator, Text: string(r)})
			i = j
		case r == '*':
			toks = append(toks, Token{Kind: TokDelimiter, Text: "*"})
			i++
		default:
			j := i
			for j < len(runes) && isIdentChar(runes[j]) {
				j++
			}
			if j == i {
				i++
				continue
			}
			toks = append(toks, Token{Kind: TokIdent, Text: string(runes[i:j])})
			i = j
		}
	}
	toks = append(toks, Token{Kind: TokDelimiter, Text: "\n"})
	return toks
}

func unescape(r rune) rune {
	switch r {
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	default:
		return r
	}
}

func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
func isIdentChar(r rune) bool {
	return r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || isDigit(r)
}

// Peek returns the token at the given lookahead offset without
// advancing.
func (lx *Lexer) Peek(offset int) Token {
	idx := lx.idx + offset
	if idx >= len(lx.toks) {
		return Token{Kind: TokEOF}
	}
	return lx.toks[idx]
}

// Next consumes and returns the next token.
func (lx *Lexer) Next() Token {
	t := lx.Peek(0)
	if lx.idx < len(lx.toks) {
		lx.idx++
	}
	return t
}

// SkipNewlines consumes any pending line-break delimiter tokens.
func (lx *Lexer) SkipNewlines() {
	for lx.Peek(0).Kind == TokDelimiter && lx.Peek(0).Text == "\n" {
		lx.idx++
	}
}

// AtEOF reports whether the lexer has no more non-EOF tokens.
func (lx *Lexer) AtEOF() bool {
	lx.SkipNewlines()
	return lx.Peek(0).Kind == TokEOF
}
