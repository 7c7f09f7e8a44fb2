// Package parser implements a small recursive-descent parser that turns
// an ASL token stream into the syntax tree pkg/asl/ast defines.
//
// Grammar (see SPEC_FULL.md Expansion A.4):
//
//	program      := function*
//	function     := "func" IDENT "(" params? ")" (":" basic_type)? declarations statements "endfunc"
//	params       := param ("," param)*
//	param        := IDENT ":" type
//	declarations := ("var" IDENT ("," IDENT)* ":" type)*
//	type         := basic_type | "array" "[" INTVAL "]" "of" basic_type
//	basic_type   := "int" | "float" | "bool" | "char"
//	statement    := assign | if | while | call_stmt | return | read | write_expr | write_string
//	left_expr    := IDENT ("[" expr "]")?
//	expr         := logical ...
package parser

import (
	"fmt"
	"strings"

	"aslc/pkg/asl/ast"
	"aslc/pkg/asl/lexer"
	"aslc/pkg/asl/token"
)

// Parser consumes a fixed token slice and builds an *ast.Program.
type Parser struct {
	toks []token.Token
	pos  int
	src  string
}

// New creates a Parser over an already-lexed token stream. src is the
// original source text, kept only to print line-anchored error context.
func New(toks []token.Token, src string) *Parser {
	return &Parser{toks: toks, src: src}
}

// Parse lexes and parses a complete ASL source unit.
func Parse(src string) (*ast.Program, error) {
	toks, err := lexer.Lex(src)
	if err != nil {
		return nil, err
	}
	return New(toks, src).ParseProgram()
}

func (p *Parser) cur() token.Token  { return p.toks[p.pos] }
func (p *Parser) peekType() token.Type { return p.toks[p.pos].Type }

func (p *Parser) advance() token.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(tt token.Type) (token.Token, error) {
	if p.peekType() != tt {
		return token.Token{}, p.errorf(p.cur(), "expected %s, found %s", tt, p.cur().Type)
	}
	return p.advance(), nil
}

func (p *Parser) errorf(tok token.Token, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	lines := strings.Split(p.src, "\n")
	snippet := ""
	if tok.Pos.Line-1 >= 0 && tok.Pos.Line-1 < len(lines) {
		snippet = strings.TrimSpace(lines[tok.Pos.Line-1])
	}
	return fmt.Errorf("%s: %s\n  |> %s", tok.Pos, msg, snippet)
}

// ParseProgram parses the whole token stream as a Program.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for p.peekType() != token.EOF {
		fn, err := p.parseFunction()
		if err != nil {
			return nil, err
		}
		prog.Functions = append(prog.Functions, fn)
	}
	return prog, nil
}

func (p *Parser) parseFunction() (*ast.Function, error) {
	if _, err := p.expect(token.FUNC); err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var params []*ast.Param
	if p.peekType() != token.RPAREN {
		for {
			pname, err := p.expect(token.IDENTIFIER)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.COLON); err != nil {
				return nil, err
			}
			ptype, err := p.parseType()
			if err != nil {
				return nil, err
			}
			params = append(params, &ast.Param{Name: pname, Type: ptype})
			if p.peekType() == token.COMMA {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	var ret *ast.BasicType
	if p.peekType() == token.COLON {
		p.advance()
		bt, err := p.parseBasicType()
		if err != nil {
			return nil, err
		}
		ret = bt
	}

	decls, err := p.parseDeclarations()
	if err != nil {
		return nil, err
	}
	body, err := p.parseStatements()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ENDFUNC); err != nil {
		return nil, err
	}

	return &ast.Function{Name: name, Params: params, RetType: ret, Decls: decls, Body: body}, nil
}

func (p *Parser) parseDeclarations() (*ast.Declarations, error) {
	decls := &ast.Declarations{TokPos: p.cur().Pos}
	for p.peekType() == token.VAR {
		p.advance()
		var names []token.Token
		for {
			n, err := p.expect(token.IDENTIFIER)
			if err != nil {
				return nil, err
			}
			names = append(names, n)
			if p.peekType() == token.COMMA {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		decls.Vars = append(decls.Vars, &ast.VariableDecl{Names: names, Type: typ})
	}
	return decls, nil
}

func (p *Parser) parseType() (*ast.Type, error) {
	if p.peekType() == token.ARRAY {
		p.advance()
		if _, err := p.expect(token.LBRACKET); err != nil {
			return nil, err
		}
		size, err := p.expect(token.INTVAL)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.OF); err != nil {
			return nil, err
		}
		elem, err := p.parseBasicType()
		if err != nil {
			return nil, err
		}
		return &ast.Type{Array: &ast.ArrayDecl{SizeTok: size, Elem: elem}}, nil
	}
	bt, err := p.parseBasicType()
	if err != nil {
		return nil, err
	}
	return &ast.Type{Basic: bt}, nil
}

func (p *Parser) parseBasicType() (*ast.BasicType, error) {
	switch p.peekType() {
	case token.INT, token.FLOAT, token.BOOL, token.CHAR:
		return &ast.BasicType{Tok: p.advance()}, nil
	default:
		return nil, p.errorf(p.cur(), "expected a basic type, found %s", p.cur().Type)
	}
}

func isStatementStart(tt token.Type) bool {
	switch tt {
	case token.IDENTIFIER, token.IF, token.WHILE, token.RETURN, token.READ, token.WRITE:
		return true
	}
	return false
}

func (p *Parser) parseStatements() (*ast.Statements, error) {
	stmts := &ast.Statements{TokPos: p.cur().Pos}
	for isStatementStart(p.peekType()) {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts.List = append(stmts.List, s)
	}
	return stmts, nil
}

func (p *Parser) parseStatement() (ast.Stmt, error) {
	switch p.peekType() {
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.RETURN:
		return p.parseReturn()
	case token.READ:
		return p.parseRead()
	case token.WRITE:
		return p.parseWrite()
	case token.IDENTIFIER:
		return p.parseAssignOrCall()
	default:
		return nil, p.errorf(p.cur(), "unexpected token %s at start of statement", p.cur().Type)
	}
}

func (p *Parser) parseIf() (*ast.If, error) {
	tok := p.advance()
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.THEN); err != nil {
		return nil, err
	}
	then, err := p.parseStatements()
	if err != nil {
		return nil, err
	}
	var els *ast.Statements
	if p.peekType() == token.ELSE {
		p.advance()
		els, err = p.parseStatements()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.ENDIF); err != nil {
		return nil, err
	}
	return &ast.If{Tok: tok, Cond: cond, Then: then, Else: els}, nil
}

func (p *Parser) parseWhile() (*ast.While, error) {
	tok := p.advance()
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DO); err != nil {
		return nil, err
	}
	body, err := p.parseStatements()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ENDWHILE); err != nil {
		return nil, err
	}
	return &ast.While{Tok: tok, Cond: cond, Body: body}, nil
}

func (p *Parser) parseReturn() (*ast.Return, error) {
	tok := p.advance()
	if !startsExpr(p.peekType()) {
		return &ast.Return{Tok: tok}, nil
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Return{Tok: tok, Expr: e}, nil
}

func (p *Parser) parseRead() (*ast.Read, error) {
	tok := p.advance()
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	target, err := p.parseLeftExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return &ast.Read{Tok: tok, Target: target}, nil
}

func (p *Parser) parseWrite() (ast.Stmt, error) {
	tok := p.advance()
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	if p.peekType() == token.STRING {
		str := p.advance()
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return &ast.WriteString{Tok: str}, nil
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return &ast.WriteExpr{Tok: tok, Expr: e}, nil
}

func (p *Parser) parseAssignOrCall() (ast.Stmt, error) {
	name := p.advance()
	if p.peekType() == token.LPAREN {
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		return &ast.ProcCall{Name: name, Args: args}, nil
	}
	var index ast.Expr
	if p.peekType() == token.LBRACKET {
		p.advance()
		idx, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return nil, err
		}
		index = idx
	}
	left := &ast.LeftExpr{Ident: name, Index: index}
	assignTok, err := p.expect(token.ASSIGN)
	if err != nil {
		return nil, err
	}
	right, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Assign{Left: left, AssignTok: assignTok, Right: right}, nil
}

func (p *Parser) parseLeftExpr() (*ast.LeftExpr, error) {
	name, err := p.expect(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	var index ast.Expr
	if p.peekType() == token.LBRACKET {
		p.advance()
		idx, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return nil, err
		}
		index = idx
	}
	return &ast.LeftExpr{Ident: name, Index: index}, nil
}

func (p *Parser) parseArgs() ([]ast.Expr, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var args []ast.Expr
	if p.peekType() != token.RPAREN {
		for {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, e)
			if p.peekType() == token.COMMA {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}

func startsExpr(tt token.Type) bool {
	switch tt {
	case token.INTVAL, token.FLOATVAL, token.BOOLVAL, token.CHARVAL, token.STRING,
		token.IDENTIFIER, token.LPAREN, token.NOT, token.MINUS:
		return true
	}
	return false
}

// expr := logical
func (p *Parser) parseExpr() (ast.Expr, error) { return p.parseLogical() }

func (p *Parser) parseLogical() (ast.Expr, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.peekType() == token.AND || p.peekType() == token.OR {
		op := p.advance()
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		left = &ast.Logical{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseRelational() (ast.Expr, error) {
	left, err := p.parseArithmetic()
	if err != nil {
		return nil, err
	}
	switch p.peekType() {
	case token.EQ, token.NEQ, token.LT, token.LTE, token.GT, token.GTE:
		op := p.advance()
		right, err := p.parseArithmetic()
		if err != nil {
			return nil, err
		}
		return &ast.Relational{Op: op, Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *Parser) parseArithmetic() (ast.Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.peekType() == token.PLUS || p.peekType() == token.MINUS {
		op := p.advance()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &ast.Arithmetic{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseTerm() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peekType() == token.STAR || p.peekType() == token.SLASH || p.peekType() == token.PERCENT {
		op := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.Arithmetic{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.peekType() == token.NOT || p.peekType() == token.MINUS {
		op := p.advance()
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: op, Expr: e}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	switch p.peekType() {
	case token.INTVAL, token.FLOATVAL, token.BOOLVAL, token.CHARVAL:
		return &ast.Value{Tok: p.advance()}, nil
	case token.LPAREN:
		tok := p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return &ast.Parenthesis{Tok: tok, Expr: e}, nil
	case token.IDENTIFIER:
		name := p.advance()
		switch p.peekType() {
		case token.LPAREN:
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			return &ast.FuncCall{Name: name, Args: args}, nil
		case token.LBRACKET:
			p.advance()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACKET); err != nil {
				return nil, err
			}
			return &ast.ArrayIndex{Ident: name, Index: idx}, nil
		default:
			return &ast.ExprIdent{Ident: &ast.Ident{Tok: name}}, nil
		}
	default:
		return nil, p.errorf(p.cur(), "unexpected token %s in expression", p.cur().Type)
	}
}
