// Package textutils provides text normalization helpers: character-encoding
// normalization for platform exports and tokenization for pattern learning.
package textutils

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// NormalizeEncoding returns data as UTF-8 text. Input that is already valid
// UTF-8 is returned unchanged; otherwise it is decoded as GB18030 (the
// encoding Alipay exports use). A decode failure is surfaced to the caller.
func NormalizeEncoding(data []byte) ([]byte, error) {
	if utf8.Valid(data) {
		return data, nil
	}
	decoded, _, err := transform.Bytes(simplifiedchinese.GB18030.NewDecoder(), data)
	if err != nil {
		return nil, err
	}
	return decoded, nil
}

// stopwords are tokens too generic to distinguish categories.
var stopwords = map[string]struct{}{
	"公司":   {},
	"有限":   {},
	"有限公司": {},
	"服务":   {},
	"商户":   {},
	"消费":   {},
	"支付":   {},
	"订单":   {},
	"the":  {},
	"and":  {},
	"for":  {},
}

func isTokenRune(r rune) bool {
	return unicode.Is(unicode.Han, r) || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Tokenize splits text into runs of CJK or alphanumeric characters,
// lowercases them, and drops single-character runs and stopwords.
func Tokenize(text string) []string {
	var tokens []string
	var run []rune
	flush := func() {
		if len(run) < 2 {
			run = run[:0]
			return
		}
		token := string(run)
		run = run[:0]
		if _, skip := stopwords[token]; skip {
			return
		}
		tokens = append(tokens, token)
	}
	for _, r := range text {
		if isTokenRune(r) {
			run = append(run, unicode.ToLower(r))
			continue
		}
		flush()
	}
	flush()
	return tokens
}
