package main

import (
	"bufio"
	"encoding/xml"
	"io"
)

// WriteTokensXML writes the analyzer view of a token stream:
//
//	<tokens>
//	<keyword> class </keyword>
//	...
//	</tokens>
//
// String constants are written without their quotes.
func WriteTokensXML(w io.Writer, tokens []Token) error {
	out := bufio.NewWriter(w)
	out.WriteString("<tokens>\n")
	for _, token := range tokens {
		tag := string(token.tokenType)
		out.WriteString("<" + tag + "> ")
		if err := xml.EscapeText(out, []byte(token.terminal)); err != nil {
			return err
		}
		out.WriteString(" </" + tag + ">\n")
	}
	out.WriteString("</tokens>\n")
	return out.Flush()
}
