// Package tokenizer provides the single text tokenisation contract shared by
// document indexing and query parsing. It lower-cases input, blanks a fixed
// punctuation set, splits on whitespace, and strips periods from tokens that
// are not decimal numbers.
package tokenizer

import (
	"strconv"
	"strings"
)

var punctuation = strings.NewReplacer(
	",", " ", ";", " ", ":", " ", "'", " ", `"`, " ", "?", " ",
	"[", " ", "]", " ", "{", " ", "}", " ", "(", " ", ")", " ",
)

// Token represents a single normalised term and its 1-based position in the
// text it was produced from.
type Token struct {
	Term     string
	Position int
}

// Terms normalises one line of text into its terms, in order. Tokens that
// normalise to nothing (for example "...") are dropped.
func Terms(line string) []string {
	words := strings.Fields(punctuation.Replace(strings.ToLower(line)))
	terms := words[:0]
	for _, word := range words {
		if term := normalize(word); term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}

// Tokenize breaks text into positioned Tokens. Positions run from 1 across
// the whole text, not per line.
func Tokenize(text string) []Token {
	terms := Terms(text)
	tokens := make([]Token, len(terms))
	for i, term := range terms {
		tokens[i] = Token{Term: term, Position: i + 1}
	}
	return tokens
}

// Count returns how many times term occurs in text after tokenisation.
func Count(term, text string) int {
	n := 0
	for _, t := range Terms(text) {
		if t == term {
			n++
		}
	}
	return n
}

// normalize keeps numerals such as "3.14" intact and removes periods from
// everything else, so "U.S." and "u.s" both become "us".
func normalize(word string) string {
	if !strings.Contains(word, ".") {
		return word
	}
	if _, err := strconv.ParseFloat(word, 64); err == nil {
		return word
	}
	return strings.ReplaceAll(word, ".", "")
}
