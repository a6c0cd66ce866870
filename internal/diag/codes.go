package diag

// Diagnostic codes, grouped by pipeline stage in thousands blocks. New
// codes append to the end of their block rather than reusing a retired
// number, so a code printed in an old log stays meaningful.
const (
	// Lexer (E0xxx)
	CodeUnexpectedChar      = "E0001"
	CodeUnterminatedComment = "E0002"
	CodeUnterminatedString  = "E0003"

	// Parser (E1xxx)
	CodeExpectedToken       = "E1001"
	CodeExpectedDeclaration = "E1002"
	CodeUnexpectedInExpr    = "E1003"

	// Semantic (E2xxx)
	CodeArrayUndeclared = "E2001"

	// Codegen (E3xxx)
	CodeUnsupportedStatement  = "E3001"
	CodeUnsupportedAssignOp   = "E3002"
	CodeUnsupportedBinaryOp   = "E3003"
	CodeUnsupportedUnaryOp    = "E3004"
	CodeUnsupportedExpression = "E3005"
	CodeBreakUnsupported      = "E3006"
	CodeContinueUnsupported   = "E3007"
)
