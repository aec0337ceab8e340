package pack

// An AbsoluteMatch is a Match expressed as positions in the stream.
// Its length is End-Start and its distance Start-Match.
type AbsoluteMatch struct {
	Start int
	End   int
	Match int
}

// A Searcher reports the matches available at a single position.
// RadixMatchFinder is one, and hands itself to its Parser.
type Searcher interface {
	// Search appends the matches starting at pos to dst. Each has
	// min <= Start < End <= max and Match < Start.
	Search(dst []AbsoluteMatch, pos, min, max int) []AbsoluteMatch
}

// A Parser turns the matches a Searcher offers into the sequence of matches
// covering [start, end).
type Parser interface {
	Parse(dst []Match, src Searcher, start, end int) []Match
}

// A GreedyParser takes the longest match at each position it reaches and
// skips past it.
type GreedyParser struct {
	// MinLength is the shortest match that will be used.
	// The default is 4.
	MinLength int

	found []AbsoluteMatch
}

func (p *GreedyParser) Parse(dst []Match, src Searcher, start, end int) []Match {
	if p.MinLength == 0 {
		p.MinLength = 4
	}
	literalStart := start
	// The last byte can only be a literal.
	for pos := start; pos+1 < end; {
		p.found = src.Search(p.found[:0], pos, literalStart, end)
		m := longestMatch(p.found)
		if m.End-m.Start < p.MinLength {
			pos++
			continue
		}
		dst = append(dst, Match{
			Unmatched: m.Start - literalStart,
			Length:    m.End - m.Start,
			Distance:  m.Start - m.Match,
		})
		pos = m.End
		literalStart = pos
	}
	if literalStart < end {
		dst = append(dst, Match{Unmatched: end - literalStart})
	}
	return dst
}

func longestMatch(matches []AbsoluteMatch) (longest AbsoluteMatch) {
	for _, m := range matches {
		if m.End-m.Start > longest.End-longest.Start {
			longest = m
		}
	}
	return longest
}
