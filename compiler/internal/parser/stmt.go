package parser

import (
	"github.com/xiaobogaga/decaf/compiler/internal/ast"
)

func (parser *Parser) parseStmt() (ast.Stmt, error) {
	token, err := parser.getCurrentToken()
	if err != nil {
		return nil, err
	}

	switch token.tp {
	case LeftBraceTP:
		return parser.parseStmtBlock()
	case IfTP:
		return parser.parseIfStmt()
	case WhileTP:
		return parser.parseWhileStmt()
	case ForTP:
		return parser.parseForStmt()
	case BreakTP:
		parser.stepForward()
		if _, match := parser.expectToken(SemiColonTP, true); !match {
			return nil, parser.makeError(true, "expected ;")
		}

		return &ast.BreakStmt{Pos: token.pos()}, nil
	case ReturnTP:
		return parser.parseReturnStmt()
	case PrintTP:
		return parser.parsePrintStmt()
	case SemiColonTP:
		parser.stepForward()

		return &ast.ExprStmt{X: ast.NewEmptyExpr(token.pos())}, nil
	default:
		expr, err := parser.parseExpression()
		if err != nil {
			return nil, err
		}

		if _, match := parser.expectToken(SemiColonTP, true); !match {
			return nil, parser.makeError(true, "expected ;")
		}

		return &ast.ExprStmt{X: expr}, nil
	}
}

// ( Expr )
func (parser *Parser) parseTest() (ast.Expr, error) {
	if _, match := parser.expectToken(LeftParentThesesTP, true); !match {
		return nil, parser.makeError(true, "expected (")
	}

	test, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}

	if _, match := parser.expectToken(RightParentThesesTP, true); !match {
		return nil, parser.makeError(true, "expected )")
	}

	return test, nil
}

// if ( Expr ) Stmt <else Stmt>
func (parser *Parser) parseIfStmt() (ast.Stmt, error) {
	token, _ := parser.getCurrentToken()
	parser.stepForward()
	test, err := parser.parseTest()
	if err != nil {
		return nil, err
	}

	body, err := parser.parseStmt()
	if err != nil {
		return nil, err
	}

	stmt := &ast.IfStmt{Pos: token.pos(), Test: test, Body: body}
	if _, match := parser.expectToken(ElseTP, true); match {
		stmt.Else, err = parser.parseStmt()
		if err != nil {
			return nil, err
		}
	}

	return stmt, nil
}

// while ( Expr ) Stmt
func (parser *Parser) parseWhileStmt() (ast.Stmt, error) {
	token, _ := parser.getCurrentToken()
	parser.stepForward()
	test, err := parser.parseTest()
	if err != nil {
		return nil, err
	}

	body, err := parser.parseStmt()
	if err != nil {
		return nil, err
	}

	return &ast.WhileStmt{Pos: token.pos(), Test: test, Body: body}, nil
}

// for ( <Expr> ; Expr ; <Expr> ) Stmt
func (parser *Parser) parseForStmt() (ast.Stmt, error) {
	token, _ := parser.getCurrentToken()
	parser.stepForward()
	if _, match := parser.expectToken(LeftParentThesesTP, true); !match {
		return nil, parser.makeError(true, "expected (")
	}

	init, err := parser.parseOptionalExpression(SemiColonTP)
	if err != nil {
		return nil, err
	}

	parser.stepForward()
	test, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}

	if _, match := parser.expectToken(SemiColonTP, true); !match {
		return nil, parser.makeError(true, "expected ;")
	}

	step, err := parser.parseOptionalExpression(RightParentThesesTP)
	if err != nil {
		return nil, err
	}

	parser.stepForward()
	body, err := parser.parseStmt()
	if err != nil {
		return nil, err
	}

	return &ast.ForStmt{Pos: token.pos(), Init: init, Test: test, Step: step, Body: body}, nil
}

// parseOptionalExpression parses an expression unless the terminator comes first.
// The terminator is left for the caller.
func (parser *Parser) parseOptionalExpression(terminator TokenType) (ast.Expr, error) {
	token, match := parser.expectToken(terminator, false)
	if match {
		return ast.NewEmptyExpr(token.pos()), nil
	}

	expr, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}

	if _, match := parser.expectToken(terminator, false); !match {
		return nil, parser.makeError(true, "unexpected token")
	}

	return expr, nil
}

// return <Expr> ;
func (parser *Parser) parseReturnStmt() (ast.Stmt, error) {
	token, _ := parser.getCurrentToken()
	parser.stepForward()
	stmt := &ast.ReturnStmt{Pos: token.pos()}
	if _, match := parser.expectToken(SemiColonTP, true); match {
		return stmt, nil
	}

	expr, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}

	if _, match := parser.expectToken(SemiColonTP, true); !match {
		return nil, parser.makeError(true, "expected ;")
	}

	stmt.Expr = expr

	return stmt, nil
}

// Print ( Expr+, ) ;
func (parser *Parser) parsePrintStmt() (ast.Stmt, error) {
	token, _ := parser.getCurrentToken()
	parser.stepForward()
	if _, match := parser.expectToken(LeftParentThesesTP, true); !match {
		return nil, parser.makeError(true, "expected (")
	}

	args, err := parser.parseExpressions()
	if err != nil {
		return nil, err
	}

	if len(args) == 0 {
		return nil, parser.makeError(true, "Print needs an argument")
	}

	if _, match := parser.expectToken(RightParentThesesTP, true); !match {
		return nil, parser.makeError(true, "expected )")
	}

	if _, match := parser.expectToken(SemiColonTP, true); !match {
		return nil, parser.makeError(true, "expected ;")
	}

	return &ast.PrintStmt{Pos: token.pos(), Args: args}, nil
}
