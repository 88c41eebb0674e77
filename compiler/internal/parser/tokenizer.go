package parser

import (
	"bufio"
	"io"

	"github.com/xiaobogaga/decaf/util"
)

// A simple Tokenizer for decaf.

// Decaf has those elements:
// * KeyWord: void, int, double, bool, string, class, interface, null, this, extends, implements,
// 			for, while, if, else, return, break, New, NewArray, Print, ReadInteger, ReadLine, true, false.
// * Symbol: {, }, (, ), [, ], ., ,, ;, +, -, *, /, %, <, <=, >, >=, =, ==, !=, &&, ||, !.
// * Constant: integer (decimal or 0x hex), double (1.5, 1.E3), string ("xxx").
// * Identifier: letters, digits, underscore, starting with a letter.
// * Comment: /**/, //.

type TokenType int

const (
	VoidTP TokenType = iota
	IntTP
	DoubleTP
	BoolTP
	StringTP
	ClassTP
	InterfaceTP
	NullTP
	ThisTP
	ExtendsTP
	ImplementsTP
	ForTP
	WhileTP
	IfTP
	ElseTP
	ReturnTP
	BreakTP
	NewTP
	NewArrayTP
	PrintTP
	ReadIntegerTP
	ReadLineTP
	TrueTP
	FalseTP
	LeftBraceTP          // {
	RightBraceTP         // }
	LeftParentThesesTP   // (
	RightParentThesesTP  // )
	LeftSquareBracketTP  // [
	RightSquareBracketTP // ]
	DotTP                // .
	CommaTP              // ,
	SemiColonTP          // ;
	AddTP                // +
	MinusTP              // -
	MultiplyTP           // *
	DivideTP             // /
	ModTP                // %
	LessTP               // <
	LessEqualTP          // <=
	GreaterTP            // >
	GreaterEqualTP       // >=
	AssignTP             // =
	EqualTP              // ==
	NotEqualTP           // !=
	AndTP                // &&
	OrTP                 // ||
	NotTP                // !
	IntConstantTP        // 1010, 0x1F
	DoubleConstantTP     // 1.5
	StringConstantTP     // "xxx"
	IdentifierTP         // varA
)

// keyWordTokenTPMap is the mapping from identifier to the corresponding TokenTP.
var keyWordTokenTPMap = map[string]TokenType{
	"void":        VoidTP,
	"int":         IntTP,
	"double":      DoubleTP,
	"bool":        BoolTP,
	"string":      StringTP,
	"class":       ClassTP,
	"interface":   InterfaceTP,
	"null":        NullTP,
	"this":        ThisTP,
	"extends":     ExtendsTP,
	"implements":  ImplementsTP,
	"for":         ForTP,
	"while":       WhileTP,
	"if":          IfTP,
	"else":        ElseTP,
	"return":      ReturnTP,
	"break":       BreakTP,
	"New":         NewTP,
	"NewArray":    NewArrayTP,
	"Print":       PrintTP,
	"ReadInteger": ReadIntegerTP,
	"ReadLine":    ReadLineTP,
	"true":        TrueTP,
	"false":       FalseTP,
}

// simpleSymbolTokenTPMap holds the single character symbols.
var simpleSymbolTokenTPMap = map[string]TokenType{
	"{": LeftBraceTP,
	"}": RightBraceTP,
	"(": LeftParentThesesTP,
	")": RightParentThesesTP,
	"[": LeftSquareBracketTP,
	"]": RightSquareBracketTP,
	".": DotTP,
	",": CommaTP,
	";": SemiColonTP,
	"+": AddTP,
	"-": MinusTP,
	"*": MultiplyTP,
	"/": DivideTP,
	"%": ModTP,
	"<": LessTP,
	">": GreaterTP,
	"=": AssignTP,
	"!": NotTP,
}

// doubleSymbolTokenTPMap holds symbols of two characters. They win over simple ones.
var doubleSymbolTokenTPMap = map[string]TokenType{
	"<=": LessEqualTP,
	">=": GreaterEqualTP,
	"==": EqualTP,
	"!=": NotEqualTP,
	"&&": AndTP,
	"||": OrTP,
}

type Token struct {
	content  string
	line     int
	startPos int
	endPos   int
	tp       TokenType
}

type Tokenizer struct {
	currentPos  int
	currentFile string
	currentLine int
	tokens      []*Token
}

// getNextToken returns the next token from line, nil at the end of line.
func (tokenizer *Tokenizer) getNextToken(line []byte) (*Token, error) {
	tokenizer.trimSpace(line)
	if !tokenizer.hasRemainCharacters(line) {
		return nil, nil
	}

	switch c := line[tokenizer.currentPos]; {
	case c == '/':
		return tokenizer.tokenCommentOrDivide(line)
	case c == '"':
		return tokenizer.tokenString(line)
	case util.IsNumber(c):
		return tokenizer.tokenNumber(line)
	case util.IsLetter(c):
		return tokenizer.toKeywordOrIdentifier(line)
	default:
		return tokenizer.tokenSymbol(line)
	}
}

// trimSpace steps forward through line and skips all continuous space.
func (tokenizer *Tokenizer) trimSpace(line []byte) {
	for tokenizer.currentPos < len(line) && util.IsSpace(line[tokenizer.currentPos]) {
		tokenizer.currentPos++
	}
}

func (tokenizer *Tokenizer) hasRemainCharacters(line []byte) bool {
	return tokenizer.currentPos < len(line)
}

func (tokenizer *Tokenizer) makeToken(line []byte, start int, tp TokenType) *Token {
	return &Token{
		content:  string(line[start:tokenizer.currentPos]),
		line:     tokenizer.currentLine,
		startPos: start,
		endPos:   tokenizer.currentPos,
		tp:       tp,
	}
}

func (tokenizer *Tokenizer) tokenSymbol(line []byte) (*Token, error) {
	start := tokenizer.currentPos
	if start+1 < len(line) {
		if tp, ok := doubleSymbolTokenTPMap[string(line[start:start+2])]; ok {
			tokenizer.currentPos += 2

			return tokenizer.makeToken(line, start, tp), nil
		}
	}

	tp, ok := simpleSymbolTokenTPMap[string(line[start])]
	if !ok {
		return nil, tokenizer.makeError(string(line[start]), start, "unrecognized char")
	}

	tokenizer.currentPos++

	return tokenizer.makeToken(line, start, tp), nil
}

func (tokenizer *Tokenizer) tokenCommentOrDivide(line []byte) (*Token, error) {
	// If / is not followed by * or /, then it's not a comment.
	if len(line[tokenizer.currentPos:]) == 1 || (line[tokenizer.currentPos+1] != '/' && line[tokenizer.currentPos+1] != '*') {
		return tokenizer.tokenSymbol(line)
	}

	start := tokenizer.currentPos
	if line[tokenizer.currentPos+1] == '/' {
		tokenizer.currentPos = len(line)

		return tokenizer.makeToken(line, start, singleLineCommentTP), nil
	}

	tokenizer.currentPos += 2

	return tokenizer.makeToken(line, start, multipleLineOpenCommentTP), nil
}

// Comment tokens never leave the tokenizer.
const (
	singleLineCommentTP TokenType = -1 - iota
	multipleLineOpenCommentTP
)

func (tokenizer *Tokenizer) tokenString(line []byte) (*Token, error) {
	// Looking forward through line to find a closing quote.
	startPos := tokenizer.currentPos
	tokenizer.currentPos++
	for tokenizer.currentPos < len(line) && line[tokenizer.currentPos] != '"' && line[tokenizer.currentPos] != '\n' {
		tokenizer.currentPos++
	}

	// If cannot find an closing quote, then string format is not correct.
	if tokenizer.currentPos >= len(line) || line[tokenizer.currentPos] != '"' {
		return nil, tokenizer.makeError(string(line[startPos:tokenizer.currentPos]), startPos, "unterminated string constant")
	}

	tokenizer.currentPos++
	token := tokenizer.makeToken(line, startPos, StringConstantTP)
	token.content = token.content[1 : len(token.content)-1]

	return token, nil
}

func (tokenizer *Tokenizer) tokenNumber(line []byte) (*Token, error) {
	startPos := tokenizer.currentPos
	if line[startPos] == '0' && startPos+2 < len(line) && (line[startPos+1] == 'x' || line[startPos+1] == 'X') &&
		util.IsHexNumber(line[startPos+2]) {
		tokenizer.currentPos += 2
		tokenizer.skip(line, util.IsHexNumber)

		return tokenizer.makeToken(line, startPos, IntConstantTP), nil
	}

	tokenizer.skip(line, util.IsNumber)
	if tokenizer.currentPos >= len(line) || line[tokenizer.currentPos] != '.' {
		return tokenizer.makeToken(line, startPos, IntConstantTP), nil
	}

	// A double: digits . digits* [E [+-] digits]
	tokenizer.currentPos++
	tokenizer.skip(line, util.IsNumber)
	if tokenizer.currentPos < len(line) && (line[tokenizer.currentPos] == 'e' || line[tokenizer.currentPos] == 'E') {
		exp := tokenizer.currentPos + 1
		if exp < len(line) && (line[exp] == '+' || line[exp] == '-') {
			exp++
		}

		if exp < len(line) && util.IsNumber(line[exp]) {
			tokenizer.currentPos = exp
			tokenizer.skip(line, util.IsNumber)
		}
	}

	return tokenizer.makeToken(line, startPos, DoubleConstantTP), nil
}

func (tokenizer *Tokenizer) skip(line []byte, f func(byte) bool) {
	for tokenizer.currentPos < len(line) && f(line[tokenizer.currentPos]) {
		tokenizer.currentPos++
	}
}

func (tokenizer *Tokenizer) toKeywordOrIdentifier(line []byte) (*Token, error) {
	startPos := tokenizer.currentPos
	tokenizer.skip(line, util.IsLetterOrUnderscoreOrNumber)
	token := tokenizer.makeToken(line, startPos, IdentifierTP)
	if keyWordTP, isKeyWord := keyWordTokenTPMap[token.content]; isKeyWord {
		token.tp = keyWordTP
	}

	return token, nil
}

func (tokenizer *Tokenizer) makeError(near string, pos int, msg string) error {
	return newSyntaxError(tokenizer.currentFile, tokenizer.currentLine, pos+1, near, msg)
}

// Tokenize accepts a source `rd` and tokenizes its content according to decaf rules.
func (tokenizer *Tokenizer) Tokenize(rd io.Reader) (tokens []*Token, err error) {
	bfReader := bufio.NewReader(rd)
	tokenizer.currentLine = 0
	for {
		tokenizer.currentLine++
		tokenizer.currentPos = 0
		line, err := bfReader.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}

		for tokenizer.currentPos < len(line) {
			match, perr := tokenizer.parseLine(line)
			if perr != nil {
				return nil, perr
			}

			line, perr = tokenizer.lookForwardForMatchingMultipleLineComment(bfReader, line, !match)
			if perr != nil {
				return nil, perr
			}
		}

		if err == io.EOF {
			return tokenizer.tokens, nil
		}
	}
}

func (tokenizer *Tokenizer) parseLine(line []byte) (bool, error) {
	for {
		token, err := tokenizer.getNextToken(line)
		if err != nil {
			return true, err
		}

		if token == nil {
			return true, nil
		}

		switch token.tp {
		case multipleLineOpenCommentTP:
			if !tokenizer.lookForwardForMatchingMultipleLineCommentAtCurrentLine(line) {
				return false, nil
			}
		case singleLineCommentTP:
			return true, nil
		default:
			tokenizer.tokens = append(tokenizer.tokens, token)
		}
	}
}

func (tokenizer *Tokenizer) lookForwardForMatchingMultipleLineComment(bfReader *bufio.Reader, line []byte, needFindMatch bool) ([]byte, error) {
	if !needFindMatch {
		return line, nil
	}

	var err error
	startLine := tokenizer.currentLine
	for {
		if tokenizer.lookForwardForMatchingMultipleLineCommentAtCurrentLine(line) {
			return line, nil
		}

		// The comment goes on, continue on the next line.
		line, err = bfReader.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}

		if err == io.EOF && len(line) == 0 {
			tokenizer.currentLine = startLine

			return nil, tokenizer.makeError("/*", 0, "unterminated comment")
		}

		tokenizer.currentLine++
		tokenizer.currentPos = 0
	}
}

func (tokenizer *Tokenizer) lookForwardForMatchingMultipleLineCommentAtCurrentLine(line []byte) bool {
	for tokenizer.currentPos < len(line) {
		if tokenizer.currentPos < len(line)-1 && line[tokenizer.currentPos] == '*' &&
			line[tokenizer.currentPos+1] == '/' {
			tokenizer.currentPos += 2

			return true
		}

		tokenizer.currentPos++
	}

	return false
}

func (tokenizer *Tokenizer) Reset() {
	tokenizer.currentPos, tokenizer.currentLine, tokenizer.currentFile = 0, 0, ""
	tokenizer.tokens = nil
}
