package parser

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xiaobogaga/decaf/compiler/internal/ast"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

type (
	Parser struct {
		fileName        string
		currentTokenPos int
		currentTokens   []*Token
	}

	SyntaxError struct {
		File string
		Pos  ast.Pos
		Near string
		Msg  string
	}
)

func newSyntaxError(file string, line, col int, near, msg string) *SyntaxError {
	return &SyntaxError{File: file, Pos: ast.Pos{Line: line, Col: col}, Near: near, Msg: msg}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%v: syntax error near %q: %s", e.File, e.Pos, e.Near, e.Msg)
}

// Parse reads a whole decaf program.
func Parse(ctx context.Context, fileName string, rd io.Reader) (p *ast.Program, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "parse", "file", fileName)
	defer tr.Finish("err", &err)

	tokenizer := &Tokenizer{currentFile: fileName}
	tokens, err := tokenizer.Tokenize(rd)
	if err != nil {
		return nil, errors.Wrap(err, "tokenize")
	}

	tr.Printw("tokenized", "tokens", len(tokens))

	parser := &Parser{fileName: fileName, currentTokens: tokens}

	return parser.ParseProgram()
}

func ParseString(ctx context.Context, fileName, src string) (*ast.Program, error) {
	return Parse(ctx, fileName, strings.NewReader(src))
}

// Program ::= Decl+
func (parser *Parser) ParseProgram() (*ast.Program, error) {
	var decls []ast.Decl
	for parser.hasRemainTokens() {
		decl, err := parser.parseDecl()
		if err != nil {
			return nil, err
		}

		decls = append(decls, decl)
	}

	if len(decls) == 0 {
		return nil, parser.makeError(false, "empty program")
	}

	return ast.NewProgram(decls), nil
}

func (parser *Parser) parseDecl() (ast.Decl, error) {
	token, err := parser.getCurrentToken()
	if err != nil {
		return nil, err
	}

	switch token.tp {
	case ClassTP:
		return parser.parseClassDecl()
	case InterfaceTP:
		return parser.parseInterfaceDecl()
	}

	retType, err := parser.parseReturnType()
	if err != nil {
		return nil, err
	}

	name, err := parser.parseIdentifier()
	if err != nil {
		return nil, err
	}

	if _, match := parser.expectToken(LeftParentThesesTP, false); match {
		return parser.parseFunctionRest(retType, name, true)
	}

	if ast.Is(retType, ast.Void) {
		return nil, parser.makeError(true, "variable of type void")
	}

	if _, match := parser.expectToken(SemiColonTP, true); !match {
		return nil, parser.makeError(true, "expected ;")
	}

	return ast.NewVarDecl(name, retType), nil
}

// class ident <extends ident> <implements ident+,> { Field* }
func (parser *Parser) parseClassDecl() (*ast.ClassDecl, error) {
	parser.stepForward()
	name, err := parser.parseIdentifier()
	if err != nil {
		return nil, err
	}

	var ext *ast.NamedType
	if _, match := parser.expectToken(ExtendsTP, true); match {
		base, err := parser.parseIdentifier()
		if err != nil {
			return nil, err
		}

		ext = ast.NewNamedType(base)
	}

	var impl []*ast.NamedType
	if _, match := parser.expectToken(ImplementsTP, true); match {
		for {
			id, err := parser.parseIdentifier()
			if err != nil {
				return nil, err
			}

			impl = append(impl, ast.NewNamedType(id))
			if _, match := parser.expectToken(CommaTP, true); !match {
				break
			}
		}
	}

	if _, match := parser.expectToken(LeftBraceTP, true); !match {
		return nil, parser.makeError(true, "expected {")
	}

	var members []ast.Decl
	for {
		if _, match := parser.expectToken(RightBraceTP, true); match {
			break
		}

		member, err := parser.parseField()
		if err != nil {
			return nil, err
		}

		members = append(members, member)
	}

	return ast.NewClassDecl(name, ext, impl, members), nil
}

// Field ::= VariableDecl | FunctionDecl
func (parser *Parser) parseField() (ast.Decl, error) {
	retType, err := parser.parseReturnType()
	if err != nil {
		return nil, err
	}

	name, err := parser.parseIdentifier()
	if err != nil {
		return nil, err
	}

	if _, match := parser.expectToken(LeftParentThesesTP, false); match {
		return parser.parseFunctionRest(retType, name, true)
	}

	if ast.Is(retType, ast.Void) {
		return nil, parser.makeError(true, "variable of type void")
	}

	if _, match := parser.expectToken(SemiColonTP, true); !match {
		return nil, parser.makeError(true, "expected ;")
	}

	return ast.NewVarDecl(name, retType), nil
}

// interface ident { Prototype* }
func (parser *Parser) parseInterfaceDecl() (*ast.InterfaceDecl, error) {
	parser.stepForward()
	name, err := parser.parseIdentifier()
	if err != nil {
		return nil, err
	}

	if _, match := parser.expectToken(LeftBraceTP, true); !match {
		return nil, parser.makeError(true, "expected {")
	}

	var members []*ast.FnDecl
	for {
		if _, match := parser.expectToken(RightBraceTP, true); match {
			break
		}

		retType, err := parser.parseReturnType()
		if err != nil {
			return nil, err
		}

		fnName, err := parser.parseIdentifier()
		if err != nil {
			return nil, err
		}

		fn, err := parser.parseFunctionRest(retType, fnName, false)
		if err != nil {
			return nil, err
		}

		members = append(members, fn)
	}

	return ast.NewInterfaceDecl(name, members), nil
}

// ( Formals ) StmtBlock, or ( Formals ) ; for prototypes.
func (parser *Parser) parseFunctionRest(retType ast.Type, name *ast.Identifier, withBody bool) (*ast.FnDecl, error) {
	if _, match := parser.expectToken(LeftParentThesesTP, true); !match {
		return nil, parser.makeError(true, "expected (")
	}

	var formals []*ast.VarDecl
	if _, match := parser.expectToken(RightParentThesesTP, true); !match {
		for {
			formal, err := parser.parseVariable()
			if err != nil {
				return nil, err
			}

			formals = append(formals, formal)
			if _, match := parser.expectToken(CommaTP, true); !match {
				break
			}
		}

		if _, match := parser.expectToken(RightParentThesesTP, true); !match {
			return nil, parser.makeError(true, "expected )")
		}
	}

	if !withBody {
		if _, match := parser.expectToken(SemiColonTP, true); !match {
			return nil, parser.makeError(true, "expected ;")
		}

		return ast.NewFnDecl(name, retType, formals, nil), nil
	}

	body, err := parser.parseStmtBlock()
	if err != nil {
		return nil, err
	}

	return ast.NewFnDecl(name, retType, formals, body), nil
}

// Variable ::= Type ident
func (parser *Parser) parseVariable() (*ast.VarDecl, error) {
	tp, err := parser.parseType()
	if err != nil {
		return nil, err
	}

	name, err := parser.parseIdentifier()
	if err != nil {
		return nil, err
	}

	return ast.NewVarDecl(name, tp), nil
}

func (parser *Parser) parseReturnType() (ast.Type, error) {
	if token, match := parser.expectToken(VoidTP, true); match {
		return ast.NewPrimitiveType(token.pos(), ast.Void), nil
	}

	return parser.parseType()
}

// Type ::= int | double | bool | string | ident | Type []
func (parser *Parser) parseType() (ast.Type, error) {
	token, err := parser.getCurrentToken()
	if err != nil {
		return nil, err
	}

	var tp ast.Type
	switch token.tp {
	case IntTP:
		tp = ast.NewPrimitiveType(token.pos(), ast.Int)
	case DoubleTP:
		tp = ast.NewPrimitiveType(token.pos(), ast.Double)
	case BoolTP:
		tp = ast.NewPrimitiveType(token.pos(), ast.Bool)
	case StringTP:
		tp = ast.NewPrimitiveType(token.pos(), ast.String)
	case IdentifierTP:
		tp = ast.NewNamedType(ast.NewIdentifier(token.pos(), token.content))
	default:
		return nil, parser.makeError(true, "expected type")
	}

	parser.stepForward()
	for parser.isToken(0, LeftSquareBracketTP) && parser.isToken(1, RightSquareBracketTP) {
		parser.stepForward()
		parser.stepForward()
		tp = ast.NewArrayType(token.pos(), tp)
	}

	return tp, nil
}

func (parser *Parser) parseIdentifier() (*ast.Identifier, error) {
	token, match := parser.expectToken(IdentifierTP, true)
	if !match {
		return nil, parser.makeError(true, "expected identifier")
	}

	return ast.NewIdentifier(token.pos(), token.content), nil
}

// { VariableDecl* Stmt* }
func (parser *Parser) parseStmtBlock() (*ast.StmtBlock, error) {
	token, match := parser.expectToken(LeftBraceTP, true)
	if !match {
		return nil, parser.makeError(true, "expected {")
	}

	var decls []*ast.VarDecl
	for parser.isVarDeclStart() {
		v, err := parser.parseVariable()
		if err != nil {
			return nil, err
		}

		if _, match := parser.expectToken(SemiColonTP, true); !match {
			return nil, parser.makeError(true, "expected ;")
		}

		decls = append(decls, v)
	}

	var stmts []ast.Stmt
	for {
		if _, match := parser.expectToken(RightBraceTP, true); match {
			break
		}

		stmt, err := parser.parseStmt()
		if err != nil {
			return nil, err
		}

		stmts = append(stmts, stmt)
	}

	return ast.NewStmtBlock(token.pos(), decls, stmts), nil
}

// A variable declaration starts with a primitive type, ident ident, or ident [ ].
func (parser *Parser) isVarDeclStart() bool {
	switch {
	case parser.isToken(0, IntTP), parser.isToken(0, DoubleTP), parser.isToken(0, BoolTP), parser.isToken(0, StringTP):
		return true
	case parser.isToken(0, IdentifierTP):
		return parser.isToken(1, IdentifierTP) ||
			parser.isToken(1, LeftSquareBracketTP) && parser.isToken(2, RightSquareBracketTP)
	default:
		return false
	}
}

func (parser *Parser) getCurrentToken() (*Token, error) {
	if !parser.hasRemainTokens() {
		return nil, parser.makeError(false, "unexpected end of file")
	}

	return parser.currentTokens[parser.currentTokenPos], nil
}

// expectToken checks the current token type, stepping over it on match if step is set.
func (parser *Parser) expectToken(tp TokenType, step bool) (*Token, bool) {
	if !parser.hasRemainTokens() {
		return nil, false
	}

	token := parser.currentTokens[parser.currentTokenPos]
	if token.tp != tp {
		return token, false
	}

	if step {
		parser.stepForward()
	}

	return token, true
}

// isToken looks ahead without consuming.
func (parser *Parser) isToken(ahead int, tp TokenType) bool {
	pos := parser.currentTokenPos + ahead

	return pos < len(parser.currentTokens) && parser.currentTokens[pos].tp == tp
}

func (parser *Parser) stepForward() {
	parser.currentTokenPos++
}

func (parser *Parser) hasRemainTokens() bool {
	return parser.currentTokenPos < len(parser.currentTokens)
}

// makeError reports at the current token, or at the last one when withCurrentToken is false.
func (parser *Parser) makeError(withCurrentToken bool, msg string) error {
	pos := parser.currentTokenPos
	if !withCurrentToken || pos >= len(parser.currentTokens) {
		pos--
	}

	if pos < 0 || pos >= len(parser.currentTokens) {
		return newSyntaxError(parser.fileName, 0, 0, "", msg)
	}

	token := parser.currentTokens[pos]

	return newSyntaxError(parser.fileName, token.line, token.startPos+1, token.content, msg)
}

func (token *Token) pos() ast.Pos {
	return ast.Pos{Line: token.line, Col: token.startPos + 1}
}

func (token *Token) String() string {
	return token.content
}

func parseIntConstant(s string) (int, error) {
	if len(s) > 2 && (s[1] == 'x' || s[1] == 'X') {
		v, err := strconv.ParseInt(s[2:], 16, 64)

		return int(v), err
	}

	v, err := strconv.ParseInt(s, 10, 64)

	return int(v), err
}
