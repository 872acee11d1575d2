// Package textutils holds small string and byte constants shared across
// the other first-party packages (currently l3) to avoid repeating string
// literals for common separators and punctuation.
package textutils

const (
	EmptyStr      = ""
	WhiteSpaceStr = " "
	ForwardSlashStr = "/"
	PeriodStr     = "."
	ColonStr      = ":"
	EqualStr      = "="

	DollarChar    = '$'
	BackSlashChar = '\\'
	OpenBraceChar = '{'
	CloseBraceChar = '}'
	HashChar      = '#'
	EqualChar     = '='
)
