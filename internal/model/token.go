// Package model defines the core domain models used throughout the resolver.
package model

// TokenKind identifies what a scanned token represents.
type TokenKind string

// Token kind constants.
const (
	TokenSecurityID TokenKind = "SECURITY_ID"
	TokenNumber     TokenKind = "NUMBER"
	TokenCurrency   TokenKind = "CURRENCY"
	TokenPercentage TokenKind = "PERCENTAGE"
	TokenDate       TokenKind = "DATE"
	TokenKeyword    TokenKind = "KEYWORD"
)

// Token is a single unit recognized in the document text.
type Token struct {
	Kind  TokenKind
	Raw   string  // original substring as it appeared in the document
	Code  string  // canonical code for SecurityID/Currency/Keyword tokens
	Value float64 // normalized numeric for Number/Percentage tokens
	// Position is the byte offset of the token start in the source text.
	Position int
	// Line is the zero-based line index the token starts on.
	Line int
}

// SecurityIdentifier is a recognized security code, unique per document.
// Later occurrences of the same code are reconciled onto the first.
type SecurityIdentifier struct {
	Code            string
	FirstOccurrence int // byte offset of the first occurrence
	FirstLine       int
	Occurrences     int
}
