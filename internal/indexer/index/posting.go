package index

import (
	"strconv"
	"strings"
)

// Posting records every 1-based position of one term in one document.
// Frequency always equals len(Positions).
type Posting struct {
	DocID     string `json:"doc_id"`
	Frequency int    `json:"frequency"`
	Positions []int  `json:"positions"`
}

func (p *Posting) add(position int) {
	p.Positions = append(p.Positions, position)
	p.Frequency++
}

type PostingList []Posting

// String renders the list as "[<doc: 1, 3>, <doc2: 2>]".
func (pl PostingList) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, p := range pl {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('<')
		sb.WriteString(p.DocID)
		sb.WriteString(": ")
		for j, pos := range p.Positions {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strconv.Itoa(pos))
		}
		sb.WriteByte('>')
	}
	sb.WriteByte(']')
	return sb.String()
}

// DocStats is computed once per document at build time.
type DocStats struct {
	DocID  string   `json:"doc_id"`
	Length int      `json:"length"`
	Terms  []string `json:"terms"`
	L2Norm float64  `json:"l2_norm"`
}

// Document is an in-memory input to Build.
type Document struct {
	ID   string
	Text string
}
