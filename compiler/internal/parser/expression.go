package parser

import (
	"strconv"

	"github.com/xiaobogaga/decaf/compiler/internal/ast"
)

type operator struct {
	op         ast.Op
	pos        ast.Pos
	priority   int
	rightAssoc bool
}

var binaryOperators = map[TokenType]struct {
	op       ast.Op
	priority int
}{
	AssignTP:       {ast.OpAssign, 1},
	OrTP:           {ast.OpOr, 2},
	AndTP:          {ast.OpAnd, 3},
	EqualTP:        {ast.OpEq, 4},
	NotEqualTP:     {ast.OpNotEq, 4},
	LessTP:         {ast.OpLess, 5},
	LessEqualTP:    {ast.OpLessEq, 5},
	GreaterTP:      {ast.OpGreater, 5},
	GreaterEqualTP: {ast.OpGreaterEq, 5},
	AddTP:          {ast.OpAdd, 6},
	MinusTP:        {ast.OpSub, 6},
	MultiplyTP:     {ast.OpMul, 7},
	DivideTP:       {ast.OpDiv, 7},
	ModTP:          {ast.OpMod, 7},
}

func buildExpressionsTree(ops []*operator, exprTerms []ast.Expr) ast.Expr {
	if len(ops) == 0 {
		return exprTerms[0]
	}

	ret, _ := buildExpressionsTree0(ops, exprTerms, 0, 0)

	return ret
}

// buildExpressionsTree0 is precedence climbing over exprTerms[loc:] joined by ops[loc:].
// exprTerms[j] is overwritten with the tree built so far, so a caller resuming at j sees it.
func buildExpressionsTree0(ops []*operator, exprTerms []ast.Expr, loc int, minPriority int) (ast.Expr, int) {
	lhs := exprTerms[loc]
	i := loc
	for i < len(ops) && ops[i].priority >= minPriority {
		op := ops[i]
		rhs := exprTerms[i+1]
		j := i + 1
		for j < len(ops) && (ops[j].priority > op.priority || ops[j].rightAssoc && ops[j].priority == op.priority) {
			rhs, j = buildExpressionsTree0(ops, exprTerms, j, ops[j].priority)
		}

		lhs = ast.NewBinary(op.pos, op.op, lhs, rhs)
		exprTerms[j] = lhs
		i = j
	}

	return lhs, i
}

func (parser *Parser) parseExpressions() (exprs []ast.Expr, err error) {
	if _, match := parser.expectToken(RightParentThesesTP, false); match {
		return nil, nil
	}

	for parser.hasRemainTokens() {
		expression, err := parser.parseExpression()
		if err != nil {
			return nil, err
		}

		exprs = append(exprs, expression)
		if _, match := parser.expectToken(CommaTP, true); !match {
			break
		}
	}

	return
}

func (parser *Parser) parseExpression() (ast.Expr, error) {
	leftExprTerm, err := parser.parseExpressionTerm()
	if err != nil {
		return nil, err
	}

	var ops []*operator
	exprTerms := []ast.Expr{leftExprTerm}
	for {
		op := parser.matchOp()
		if op == nil {
			break
		}

		parser.stepForward()
		exprTerm, err := parser.parseExpressionTerm()
		if err != nil {
			return nil, err
		}

		ops = append(ops, op)
		exprTerms = append(exprTerms, exprTerm)
	}

	return buildExpressionsTree(ops, exprTerms), nil
}

func (parser *Parser) matchOp() *operator {
	if !parser.hasRemainTokens() {
		return nil
	}

	token, _ := parser.getCurrentToken()
	b, ok := binaryOperators[token.tp]
	if !ok {
		return nil
	}

	return &operator{op: b.op, pos: token.pos(), priority: b.priority, rightAssoc: b.op == ast.OpAssign}
}

// parseExpressionTerm parses a unary expression with its postfix chain.
// Note: 5 + -2 is accepted like in c.
func (parser *Parser) parseExpressionTerm() (ast.Expr, error) {
	token, err := parser.getCurrentToken()
	if err != nil {
		return nil, err
	}

	switch token.tp {
	case MinusTP, NotTP:
		parser.stepForward()
		operand, err := parser.parseExpressionTerm()
		if err != nil {
			return nil, err
		}

		op := ast.OpSub
		if token.tp == NotTP {
			op = ast.OpNot
		}

		return ast.NewBinary(token.pos(), op, nil, operand), nil
	}

	expr, err := parser.parsePrimary()
	if err != nil {
		return nil, err
	}

	return parser.parsePostfix(expr)
}

// Postfix: Expr . ident, Expr . ident ( Actuals ), Expr [ Expr ]
func (parser *Parser) parsePostfix(expr ast.Expr) (ast.Expr, error) {
	for {
		token, match := parser.expectToken(DotTP, true)
		if match {
			field, err := parser.parseIdentifier()
			if err != nil {
				return nil, err
			}

			if _, match := parser.expectToken(LeftParentThesesTP, false); match {
				actuals, err := parser.parseActuals()
				if err != nil {
					return nil, err
				}

				expr = ast.NewCall(token.pos(), expr, field, actuals)
				continue
			}

			expr = ast.NewFieldAccess(expr, field)
			continue
		}

		token, match = parser.expectToken(LeftSquareBracketTP, true)
		if match {
			sub, err := parser.parseExpression()
			if err != nil {
				return nil, err
			}

			if _, match := parser.expectToken(RightSquareBracketTP, true); !match {
				return nil, parser.makeError(true, "expected ]")
			}

			expr = ast.NewArrayAccess(token.pos(), expr, sub)
			continue
		}

		return expr, nil
	}
}

// ( Actuals )
func (parser *Parser) parseActuals() ([]ast.Expr, error) {
	if _, match := parser.expectToken(LeftParentThesesTP, true); !match {
		return nil, parser.makeError(true, "expected (")
	}

	actuals, err := parser.parseExpressions()
	if err != nil {
		return nil, err
	}

	if _, match := parser.expectToken(RightParentThesesTP, true); !match {
		return nil, parser.makeError(true, "expected )")
	}

	return actuals, nil
}

func (parser *Parser) parsePrimary() (ast.Expr, error) {
	token, err := parser.getCurrentToken()
	if err != nil {
		return nil, err
	}

	pos := token.pos()
	switch token.tp {
	case IntConstantTP:
		v, err := parseIntConstant(token.content)
		if err != nil {
			return nil, parser.makeError(true, "bad integer constant")
		}

		parser.stepForward()

		return ast.NewIntConstant(pos, v), nil
	case DoubleConstantTP:
		v, err := strconv.ParseFloat(token.content, 64)
		if err != nil {
			return nil, parser.makeError(true, "bad double constant")
		}

		parser.stepForward()

		return ast.NewDoubleConstant(pos, v), nil
	case StringConstantTP:
		parser.stepForward()

		return ast.NewStringConstant(pos, token.content), nil
	case TrueTP, FalseTP:
		parser.stepForward()

		return ast.NewBoolConstant(pos, token.tp == TrueTP), nil
	case NullTP:
		parser.stepForward()

		return ast.NewNullConstant(pos), nil
	case ThisTP:
		parser.stepForward()

		return ast.NewThis(pos), nil
	case LeftParentThesesTP:
		parser.stepForward()
		expr, err := parser.parseExpression()
		if err != nil {
			return nil, err
		}

		if _, match := parser.expectToken(RightParentThesesTP, true); !match {
			return nil, parser.makeError(true, "expected )")
		}

		return expr, nil
	case ReadIntegerTP, ReadLineTP:
		parser.stepForward()
		if err := parser.parseEmptyActuals(); err != nil {
			return nil, err
		}

		if token.tp == ReadIntegerTP {
			return ast.NewReadIntegerExpr(pos), nil
		}

		return ast.NewReadLineExpr(pos), nil
	case NewTP:
		return parser.parseNew()
	case NewArrayTP:
		return parser.parseNewArray()
	case IdentifierTP:
		id, _ := parser.parseIdentifier()
		if _, match := parser.expectToken(LeftParentThesesTP, false); match {
			actuals, err := parser.parseActuals()
			if err != nil {
				return nil, err
			}

			return ast.NewCall(pos, nil, id, actuals), nil
		}

		return ast.NewFieldAccess(nil, id), nil
	default:
		return nil, parser.makeError(true, "unexpected token")
	}
}

func (parser *Parser) parseEmptyActuals() error {
	actuals, err := parser.parseActuals()
	if err != nil {
		return err
	}

	if len(actuals) != 0 {
		return parser.makeError(false, "no arguments expected")
	}

	return nil
}

// New ( ident )
func (parser *Parser) parseNew() (ast.Expr, error) {
	token, _ := parser.getCurrentToken()
	parser.stepForward()
	if _, match := parser.expectToken(LeftParentThesesTP, true); !match {
		return nil, parser.makeError(true, "expected (")
	}

	id, err := parser.parseIdentifier()
	if err != nil {
		return nil, err
	}

	if _, match := parser.expectToken(RightParentThesesTP, true); !match {
		return nil, parser.makeError(true, "expected )")
	}

	return ast.NewNewExpr(token.pos(), ast.NewNamedType(id)), nil
}

// NewArray ( Expr , Type )
func (parser *Parser) parseNewArray() (ast.Expr, error) {
	token, _ := parser.getCurrentToken()
	parser.stepForward()
	if _, match := parser.expectToken(LeftParentThesesTP, true); !match {
		return nil, parser.makeError(true, "expected (")
	}

	size, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}

	if _, match := parser.expectToken(CommaTP, true); !match {
		return nil, parser.makeError(true, "expected ,")
	}

	elem, err := parser.parseType()
	if err != nil {
		return nil, err
	}

	if _, match := parser.expectToken(RightParentThesesTP, true); !match {
		return nil, parser.makeError(true, "expected )")
	}

	return ast.NewNewArrayExpr(token.pos(), size, elem), nil
}
