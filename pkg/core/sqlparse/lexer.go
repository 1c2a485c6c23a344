package sqlparse

import (
	"fmt"
	"strings"
	"unicode"
)

// TokenType тип токена
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIdent         // имя или ключевое слово
	TokenQuoted        // "имя", `имя`, [имя]
	TokenString        // 'строка'
	TokenNumber        // 123, 1.5
	TokenDot           // .
	TokenComma         // ,
	TokenLParen        // (
	TokenRParen        // )
	TokenOther         // операторы и прочее
)

// Token представляет токен
type Token struct {
	Type    TokenType
	Literal string // для TokenQuoted - имя без кавычек
	Pos     int
}

// String возвращает строковое представление токена
func (t Token) String() string {
	return fmt.Sprintf("Token{Type:%v, Literal:%q, Pos:%d}", t.Type, t.Literal, t.Pos)
}

// IsKeyword проверяет что токен - некавыченное слово kw (без учета регистра)
func (t Token) IsKeyword(kw string) bool {
	return t.Type == TokenIdent && strings.EqualFold(t.Literal, kw)
}

// Lexer лексический анализатор
type Lexer struct {
	input   string
	pos     int
	readPos int
	ch      byte
}

// NewLexer создает новый лексер
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// NextToken возвращает следующий токен (комментарии пропускаются)
func (l *Lexer) NextToken() Token {
	l.skipWhitespaceAndComments()

	tok := Token{Pos: l.pos}

	switch l.ch {
	case 0:
		tok.Type = TokenEOF
		return tok
	case '.':
		tok.Type, tok.Literal = TokenDot, "."
	case ',':
		tok.Type, tok.Literal = TokenComma, ","
	case '(':
		tok.Type, tok.Literal = TokenLParen, "("
	case ')':
		tok.Type, tok.Literal = TokenRParen, ")"
	case '\'':
		tok.Type = TokenString
		tok.Literal = l.readQuoted('\'', '\'')
		return tok
	case '"':
		tok.Type = TokenQuoted
		tok.Literal = l.readQuoted('"', '"')
		return tok
	case '`':
		tok.Type = TokenQuoted
		tok.Literal = l.readQuoted('`', '`')
		return tok
	case '[':
		tok.Type = TokenQuoted
		tok.Literal = l.readQuoted('[', ']')
		return tok
	default:
		switch {
		case isLetter(l.ch):
			tok.Type = TokenIdent
			tok.Literal = l.readIdentifier()
			return tok
		case isDigit(l.ch):
			tok.Type = TokenNumber
			tok.Literal = l.readNumber()
			return tok
		default:
			tok.Type, tok.Literal = TokenOther, string(l.ch)
		}
	}

	l.readChar()
	return tok
}

// Tokens возвращает все токены до EOF (не включая его)
func (l *Lexer) Tokens() []Token {
	tokens := []Token{}
	for {
		tok := l.NextToken()
		if tok.Type == TokenEOF {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
}

func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) readIdentifier() string {
	position := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' || l.ch == '$' {
		l.readChar()
	}
	return l.input[position:l.pos]
}

func (l *Lexer) readNumber() string {
	position := l.pos
	for isDigit(l.ch) || l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
	}
	return l.input[position:l.pos]
}

// readQuoted читает значение в кавычках; удвоенная закрывающая кавычка - экранирование
func (l *Lexer) readQuoted(open, close byte) string {
	l.readChar()
	var sb strings.Builder
	for l.ch != 0 {
		if l.ch == close {
			if l.peekChar() == close && open == close {
				sb.WriteByte(close)
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar()
			break
		}
		sb.WriteByte(l.ch)
		l.readChar()
	}
	return sb.String()
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.readChar()
		case l.ch == '-' && l.peekChar() == '-':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			l.readChar()
			l.readChar()
			for l.ch != 0 && !(l.ch == '*' && l.peekChar() == '/') {
				l.readChar()
			}
			if l.ch != 0 {
				l.readChar()
				l.readChar()
			}
		default:
			return
		}
	}
}

func isLetter(ch byte) bool {
	return ch == '_' || ch >= 0x80 || unicode.IsLetter(rune(ch))
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
