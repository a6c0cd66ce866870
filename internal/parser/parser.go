// Package parser implements compi's recursive-descent parser with a
// Pratt-style expression core, turning a token stream into compi's
// AST while recording declarations into the symbol tables and
// reporting PARSER diagnostics with panic-mode recovery.
package parser

import (
	"strings"

	"github.com/kpumuk/compi/internal/ast"
	"github.com/kpumuk/compi/internal/diag"
	"github.com/kpumuk/compi/internal/lexer"
	"github.com/kpumuk/compi/internal/symbols"
)

// precedence assigns a binding strength to every binary operator, high
// to low exactly as spec's table orders them. Operators absent from
// the map (e.g. assignment operators, which never appear inside
// Pratt-parsed expressions) are not binary operators for Precedence's
// purposes.
var precedence = map[string]int{
	"*": 10, "/": 10, "%": 10,
	"+": 9, "-": 9,
	"<<": 8, ">>": 8,
	"<": 7, "<=": 7, ">": 7, ">=": 7,
	"==": 6, "!=": 6,
	"&":  5,
	"^":  4,
	"|":  3,
	"&&": 2,
	"||": 1,
}

// Precedence returns op's binding strength, or 0 if op is not a
// recognized binary operator.
func Precedence(op string) int {
	return precedence[op]
}

var typeKeywords = map[string]bool{
	"int": true, "float": true, "double": true, "char": true, "void": true,
	"short": true, "long": true, "signed": true, "unsigned": true,
}

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true,
}

// Parser consumes tokens from a lexer.Lexer one at a time, building an
// AST while consulting (and populating) the symbol tables and
// reporting diagnostics.
type Parser struct {
	lex     *lexer.Lexer
	current lexer.Token
	diags   *diag.Reporter
	arrays  *symbols.Arrays
	structs *symbols.Structs
}

// New creates a Parser. No token has been read yet; call Parse to run it.
func New(lex *lexer.Lexer, diags *diag.Reporter, arrays *symbols.Arrays, structs *symbols.Structs) *Parser {
	return &Parser{lex: lex, diags: diags, arrays: arrays, structs: structs}
}

// Parse builds a PROGRAM node whose children are top-level
// declarations. It returns nil only when the token stream is empty.
func (p *Parser) Parse() *ast.Node {
	p.advance()
	if p.current.Kind == lexer.EOF {
		return nil
	}

	root := ast.New(ast.PROGRAM)
	for p.current.Kind != lexer.EOF {
		before := p.current
		decl := p.parseDecl()
		if decl != nil {
			ast.AddChild(root, decl)
		}
		if p.current == before {
			// parseDecl made no progress (e.g. consume() panic-mode
			// landed back on the same unexpected token); force advance
			// so the loop always terminates.
			p.advance()
		}
	}
	return root
}

func (p *Parser) advance() {
	p.current = p.lex.Next()
}

func (p *Parser) line() int {
	return p.current.Line
}

func (p *Parser) consume(kind lexer.Kind) lexer.Token {
	return p.consumeLexeme(kind, "")
}

func (p *Parser) consumeLexeme(kind lexer.Kind, lexeme string) lexer.Token {
	if p.current.Kind == kind && (lexeme == "" || p.current.Lexeme == lexeme) {
		tok := p.current
		p.advance()
		return tok
	}
	p.reportExpected(kind, lexeme)
	p.panicMode()
	return p.current
}

func (p *Parser) reportExpected(kind lexer.Kind, lexeme string) {
	want := kind.String()
	if lexeme != "" {
		want = "'" + lexeme + "'"
	}
	got := p.current.Lexeme
	if got == "" {
		got = p.current.Kind.String()
	}
	p.diags.ErrorCode(diag.Parser, diag.CodeExpectedToken, p.line(), "expected %s, got %q", want, got)
}

// panicMode skips tokens until the next SEMICOLON or closing brace at
// the current nesting. A SEMICOLON is consumed (the parser resumes at
// the following statement); a closing brace at depth 0 is left
// unconsumed so the enclosing block parser sees it and ends the block.
func (p *Parser) panicMode() {
	depth := 0
	for {
		switch p.current.Kind {
		case lexer.EOF:
			return
		case lexer.LBRACE:
			depth++
			p.advance()
		case lexer.RBRACE:
			if depth == 0 {
				return
			}
			depth--
			p.advance()
		case lexer.SEMICOLON:
			p.advance()
			if depth == 0 {
				return
			}
		default:
			p.advance()
		}
	}
}

// emptySlot returns the sentinel STATEMENT node used for an absent
// for-loop init/condition/step clause, so FOR.Children always has
// exactly four entries and codegen never special-cases a missing
// child slice index.
func emptySlot() *ast.Node {
	return ast.New(ast.STATEMENT)
}

func isEmptySlot(n *ast.Node) bool {
	return n.Kind == ast.STATEMENT && n.Value == "" && len(n.Children) == 0
}

// IsEmptySlot reports whether n is the sentinel used for an absent
// for-loop clause, for codegen to check before lowering a FOR child.
func IsEmptySlot(n *ast.Node) bool {
	return isEmptySlot(n)
}

func (p *Parser) parseDecl() *ast.Node {
	switch {
	case p.current.Kind == lexer.KEYWORD && p.current.Lexeme == "struct":
		line := p.line()
		p.consumeLexeme(lexer.KEYWORD, "struct")
		name := p.current.Lexeme
		p.consume(lexer.IDENTIFIER)
		if p.current.Kind == lexer.LBRACE {
			return p.parseStructDeclBody(name, line)
		}
		return p.parseDeclAfterType("struct "+name, line)
	case p.current.Kind == lexer.KEYWORD && typeKeywords[p.current.Lexeme]:
		line := p.line()
		typ := p.parseSimpleType()
		return p.parseDeclAfterType(typ, line)
	default:
		p.diags.ErrorCode(diag.Parser, diag.CodeExpectedDeclaration, p.line(), "expected a declaration, got %q", p.current.Lexeme)
		p.panicMode()
		return nil
	}
}

func (p *Parser) parseSimpleType() string {
	var parts []string
	for p.current.Kind == lexer.KEYWORD && typeKeywords[p.current.Lexeme] {
		parts = append(parts, p.current.Lexeme)
		p.advance()
	}
	return strings.Join(parts, " ")
}

func (p *Parser) parseDeclAfterType(typ string, line int) *ast.Node {
	name := p.current.Lexeme
	p.consume(lexer.IDENTIFIER)

	switch p.current.Kind {
	case lexer.LPAREN:
		return p.parseFunctionDef(typ, name, line)
	case lexer.LBRACKET:
		return p.parseArrayDeclRest(typ, name, line)
	default:
		return p.parseVarDeclRest(typ, name, line)
	}
}

func (p *Parser) parseVarDeclRest(typ, name string, line int) *ast.Node {
	node := ast.NewWithValue(ast.VAR_DECL, typ)
	node.Line = line
	ident := ast.NewWithValue(ast.IDENTIFIER, name)
	ast.AddChild(node, ident)

	if p.current.Kind == lexer.OPERATOR && p.current.Lexeme == "=" {
		p.advance()
		init := p.parseExpr(1)
		ast.AddChild(node, init)
	}
	p.consume(lexer.SEMICOLON)
	return node
}

func (p *Parser) parseArrayDeclRest(typ, name string, line int) *ast.Node {
	node := ast.NewWithValue(ast.ARRAY_DECL, typ)
	node.Line = line
	ident := ast.NewWithValue(ast.IDENTIFIER, name)
	ast.AddChild(node, ident)

	p.consume(lexer.LBRACKET)
	sizeLexeme := p.current.Lexeme
	p.consume(lexer.NUMBER)
	size := atoi(sizeLexeme)
	p.consume(lexer.RBRACKET)
	p.consume(lexer.SEMICOLON)

	sizeNode := ast.NewWithValue(ast.LITERAL, sizeLexeme)
	ast.AddChild(node, sizeNode)

	p.arrays.Register(name, size)
	return node
}

func (p *Parser) parseStructDeclBody(name string, line int) *ast.Node {
	node := ast.NewWithValue(ast.STRUCT_DECL, name)
	node.Line = line
	p.consume(lexer.LBRACE)

	var fields []symbols.Field
	for p.current.Kind != lexer.RBRACE && p.current.Kind != lexer.EOF {
		fieldLine := p.line()
		fieldType := p.parseSimpleType()
		fieldName := p.current.Lexeme
		p.consume(lexer.IDENTIFIER)
		p.consume(lexer.SEMICOLON)

		field := ast.NewWithValue(ast.VAR_DECL, fieldType)
		field.Line = fieldLine
		ast.AddChild(field, ast.NewWithValue(ast.IDENTIFIER, fieldName))
		ast.AddChild(node, field)

		fields = append(fields, symbols.Field{Name: fieldName, Type: fieldType})
	}
	p.consume(lexer.RBRACE)
	p.consume(lexer.SEMICOLON)

	p.structs.Register(name, fields)
	return node
}

func (p *Parser) parseFunctionDef(returnType, name string, line int) *ast.Node {
	node := ast.NewWithValue(ast.FUNCTION, name)
	node.Line = line

	// Convention: the return type rides as the first child, using the
	// same VAR_DECL representation any other typed declaration uses
	// (FUNCTION.Value is reserved for the function name).
	ast.AddChild(node, ast.NewWithValue(ast.VAR_DECL, returnType))

	p.consume(lexer.LPAREN)
	if p.current.Kind != lexer.RPAREN {
		ast.AddChild(node, p.parseParam())
		for p.current.Kind == lexer.COMMA {
			p.advance()
			ast.AddChild(node, p.parseParam())
		}
	}
	p.consume(lexer.RPAREN)

	body := p.parseBlock()
	ast.AddChild(node, body)
	return node
}

func (p *Parser) parseParam() *ast.Node {
	line := p.line()
	var typ string
	if p.current.Kind == lexer.KEYWORD && p.current.Lexeme == "struct" {
		p.advance()
		typ = "struct " + p.current.Lexeme
		p.consume(lexer.IDENTIFIER)
	} else {
		typ = p.parseSimpleType()
	}
	name := p.current.Lexeme
	p.consume(lexer.IDENTIFIER)

	node := ast.NewWithValue(ast.PARAM, typ)
	node.Line = line
	ast.AddChild(node, ast.NewWithValue(ast.IDENTIFIER, name))
	return node
}

func (p *Parser) parseBlock() *ast.Node {
	line := p.line()
	node := ast.New(ast.BLOCK)
	node.Line = line
	p.consume(lexer.LBRACE)
	for p.current.Kind != lexer.RBRACE && p.current.Kind != lexer.EOF {
		before := p.current
		stmt := p.parseStmt()
		if stmt != nil {
			ast.AddChild(node, stmt)
		}
		if p.current == before {
			p.advance()
		}
	}
	p.consume(lexer.RBRACE)
	return node
}

func (p *Parser) parseStmt() *ast.Node {
	switch {
	case p.current.Kind == lexer.LBRACE:
		return p.parseBlock()
	case p.current.Kind == lexer.SEMICOLON:
		p.advance()
		return nil
	case p.current.Kind == lexer.KEYWORD:
		switch p.current.Lexeme {
		case "if":
			return p.parseIf()
		case "while":
			return p.parseWhile()
		case "for":
			return p.parseFor()
		case "return":
			return p.parseReturn()
		case "break":
			line := p.line()
			p.advance()
			p.consume(lexer.SEMICOLON)
			n := ast.New(ast.BREAK)
			n.Line = line
			return n
		case "continue":
			line := p.line()
			p.advance()
			p.consume(lexer.SEMICOLON)
			n := ast.New(ast.CONTINUE)
			n.Line = line
			return n
		case "struct":
			line := p.line()
			p.consumeLexeme(lexer.KEYWORD, "struct")
			name := p.current.Lexeme
			p.consume(lexer.IDENTIFIER)
			return p.parseDeclAfterType("struct "+name, line)
		default:
			line := p.line()
			typ := p.parseSimpleType()
			return p.parseDeclAfterType(typ, line)
		}
	default:
		return p.parseAssignmentOrExprStmt(true)
	}
}

func (p *Parser) parseIf() *ast.Node {
	line := p.line()
	p.consumeLexeme(lexer.KEYWORD, "if")
	p.consume(lexer.LPAREN)
	cond := p.parseExpr(1)
	p.consume(lexer.RPAREN)
	then := p.parseStmt()

	node := ast.New(ast.IF)
	node.Line = line
	ast.AddChild(node, cond)
	ast.AddChild(node, then)

	if p.current.Kind == lexer.KEYWORD && p.current.Lexeme == "else" {
		elseLine := p.line()
		p.advance()
		elseBody := p.parseStmt()
		elseNode := ast.New(ast.ELSE)
		elseNode.Line = elseLine
		ast.AddChild(elseNode, elseBody)
		ast.AddChild(node, elseNode)
	}
	return node
}

func (p *Parser) parseWhile() *ast.Node {
	line := p.line()
	p.consumeLexeme(lexer.KEYWORD, "while")
	p.consume(lexer.LPAREN)
	cond := p.parseExpr(1)
	p.consume(lexer.RPAREN)
	body := p.parseStmt()

	node := ast.New(ast.WHILE)
	node.Line = line
	ast.AddChild(node, cond)
	ast.AddChild(node, body)
	return node
}

func (p *Parser) parseFor() *ast.Node {
	line := p.line()
	p.consumeLexeme(lexer.KEYWORD, "for")
	p.consume(lexer.LPAREN)

	var initNode *ast.Node
	switch {
	case p.current.Kind == lexer.SEMICOLON:
		p.advance()
		initNode = emptySlot()
	case p.current.Kind == lexer.KEYWORD && typeKeywords[p.current.Lexeme]:
		typLine := p.line()
		typ := p.parseSimpleType()
		initNode = p.parseDeclAfterType(typ, typLine)
	default:
		initNode = p.parseAssignmentOrExprStmt(true)
	}

	var condNode *ast.Node
	if p.current.Kind == lexer.SEMICOLON {
		condNode = emptySlot()
	} else {
		condNode = p.parseExpr(1)
	}
	p.consume(lexer.SEMICOLON)

	var stepNode *ast.Node
	if p.current.Kind == lexer.RPAREN {
		stepNode = emptySlot()
	} else {
		stepNode = p.parseAssignmentOrExprStmt(false)
	}
	p.consume(lexer.RPAREN)

	body := p.parseStmt()

	node := ast.New(ast.FOR)
	node.Line = line
	ast.AddChild(node, initNode)
	ast.AddChild(node, condNode)
	ast.AddChild(node, stepNode)
	ast.AddChild(node, body)
	return node
}

func (p *Parser) parseReturn() *ast.Node {
	line := p.line()
	p.consumeLexeme(lexer.KEYWORD, "return")
	node := ast.New(ast.RETURN)
	node.Line = line
	if p.current.Kind != lexer.SEMICOLON {
		ast.AddChild(node, p.parseExpr(1))
	}
	p.consume(lexer.SEMICOLON)
	return node
}

// parseAssignmentOrExprStmt parses an Lvalue followed by an assignment
// operator, or a bare expression, sharing the same Pratt prefix logic
// for both. consumeSemicolon controls whether a trailing ';' is
// expected (true for full statements, false for a for-loop's step
// clause, which is terminated by ')' instead).
func (p *Parser) parseAssignmentOrExprStmt(consumeSemicolon bool) *ast.Node {
	expr := p.parseExpr(1)

	if p.current.Kind == lexer.OPERATOR && assignOps[p.current.Lexeme] {
		op := p.current.Lexeme
		line := p.line()
		p.advance()
		rhs := p.parseExpr(1)
		if consumeSemicolon {
			p.consume(lexer.SEMICOLON)
		}
		node := ast.NewWithValue(ast.ASSIGNMENT, op)
		node.Line = line
		ast.AddChild(node, expr)
		ast.AddChild(node, rhs)
		return node
	}

	if consumeSemicolon {
		p.consume(lexer.SEMICOLON)
	}
	wrapper := ast.New(ast.EXPRESSION)
	wrapper.Line = expr.Line
	ast.AddChild(wrapper, expr)
	return wrapper
}

// parseExpr implements Pratt-style precedence climbing: it parses a
// prefix operand, then repeatedly consumes binary operators whose
// precedence is >= minPrec, recursing with that operator's precedence
// plus one so every operator associates left.
func (p *Parser) parseExpr(minPrec int) *ast.Node {
	left := p.parsePrefix()

	for p.current.Kind == lexer.OPERATOR {
		prec, ok := precedence[p.current.Lexeme]
		if !ok || prec < minPrec {
			break
		}
		op := p.current.Lexeme
		line := p.line()
		p.advance()
		right := p.parseExpr(prec + 1)

		node := ast.NewWithValue(ast.BINARY_OP, op)
		node.Line = line
		ast.AddChild(node, left)
		ast.AddChild(node, right)
		left = node
	}
	return left
}

func (p *Parser) parsePrefix() *ast.Node {
	line := p.line()

	switch {
	case p.current.Kind == lexer.NUMBER:
		tok := p.current
		p.advance()
		return ast.NewWithValue(ast.LITERAL, tok.Lexeme)
	case p.current.Kind == lexer.STRING:
		tok := p.current
		p.advance()
		return ast.NewWithValue(ast.LITERAL, tok.Lexeme)
	case p.current.Kind == lexer.LPAREN:
		p.advance()
		inner := p.parseExpr(1)
		p.consume(lexer.RPAREN)
		return inner
	case p.current.Kind == lexer.OPERATOR && p.current.Lexeme == "-":
		p.advance()
		// Fold a leading '-' directly into an immediately following
		// numeric literal's text rather than wrapping it in a
		// UNARY_OP, so a negative literal round-trips as a single
		// LITERAL node. This only ever inspects p.current after
		// consuming '-', never two tokens ahead at once.
		if p.current.Kind == lexer.NUMBER {
			tok := p.current
			p.advance()
			return ast.NewWithValue(ast.LITERAL, "-"+tok.Lexeme)
		}
		operand := p.parsePrefix()
		node := ast.NewWithValue(ast.UNARY_OP, "-")
		node.Line = line
		ast.AddChild(node, operand)
		return node
	case p.current.Kind == lexer.OPERATOR && (p.current.Lexeme == "!" || p.current.Lexeme == "~"):
		op := p.current.Lexeme
		p.advance()
		operand := p.parsePrefix()
		node := ast.NewWithValue(ast.UNARY_OP, op)
		node.Line = line
		ast.AddChild(node, operand)
		return node
	case p.current.Kind == lexer.IDENTIFIER:
		return p.parseIdentifierExpr()
	default:
		p.diags.ErrorCode(diag.Parser, diag.CodeUnexpectedInExpr, line, "unexpected token %q in expression", p.current.Lexeme)
		tok := p.current
		if tok.Kind != lexer.EOF && tok.Kind != lexer.SEMICOLON {
			p.advance()
		}
		return ast.NewWithValue(ast.LITERAL, "0")
	}
}

func (p *Parser) parseIdentifierExpr() *ast.Node {
	line := p.line()
	name := p.current.Lexeme
	p.advance()

	switch {
	case p.current.Kind == lexer.LPAREN:
		p.advance()
		node := ast.NewWithValue(ast.FUNC_CALL, name)
		node.Line = line
		if p.current.Kind != lexer.RPAREN {
			ast.AddChild(node, p.parseExpr(1))
			for p.current.Kind == lexer.COMMA {
				p.advance()
				ast.AddChild(node, p.parseExpr(1))
			}
		}
		p.consume(lexer.RPAREN)
		return node
	case p.current.Kind == lexer.LBRACKET:
		p.advance()
		index := p.parseExpr(1)
		p.consume(lexer.RBRACKET)
		node := ast.NewWithValue(ast.ARRAY_ACCESS, name)
		node.Line = line
		ast.AddChild(node, index)
		return node
	case p.current.Kind == lexer.OPERATOR && p.current.Lexeme == ".":
		p.advance()
		field := p.current.Lexeme
		p.consume(lexer.IDENTIFIER)
		node := ast.NewWithValue(ast.STRUCT_ACCESS, name+"."+field)
		node.Line = line
		return node
	default:
		node := ast.NewWithValue(ast.IDENTIFIER, name)
		node.Line = line
		return node
	}
}

func atoi(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return n
		}
		n = n*10 + int(s[i]-'0')
	}
	return n
}
