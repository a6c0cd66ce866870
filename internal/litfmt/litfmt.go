// Package litfmt classifies literal text for the codegen expression
// printer (to decide whether a LITERAL's text, including a leading
// '-', is printed as to_signed(n, 32) or as-is). The parser does not
// use it: it folds a '-' into a directly following NUMBER token by
// token kind. It is a leaf package with no dependency on lexer, ast,
// or parser, the same way internal/diag and internal/symbols are leaves.
package litfmt

// IsNumber reports whether s matches [+-]?[0-9]+.
func IsNumber(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '+' || s[0] == '-' {
		i = 1
	}
	if i >= len(s) {
		return false
	}
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// IsNegativeLiteral reports whether s begins with '-', has length >= 2,
// and its second character could start an identifier or digit — i.e.
// the '-' reads as a literal sign prefix rather than a standalone
// unary-minus operator token.
func IsNegativeLiteral(s string) bool {
	if len(s) < 2 || s[0] != '-' {
		return false
	}
	c := s[1]
	isDigit := c >= '0' && c <= '9'
	isIdentStart := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
	return isDigit || isIdentStart
}
