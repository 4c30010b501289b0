package blocks

import (
	"bytes"

	"golang.org/x/net/html"
)

// extractSources returns the asset references inside a block body.
// JS blocks read script[src], CSS blocks read link[href], custom types read both.
// Tags inside HTML comments are ignored.
func extractSources(blockType string, body []byte) []string {
	if blockType == TypeRemove {
		return nil
	}

	wantScript := blockType != TypeCSS
	wantLink := blockType != TypeJS

	var sources []string
	tokenizer := html.NewTokenizer(bytes.NewReader(body))

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return sources
		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()
			switch {
			case token.Data == "script" && wantScript:
				if src := attr(token, "src"); src != "" {
					sources = append(sources, src)
				}
			case token.Data == "link" && wantLink:
				if href := attr(token, "href"); href != "" {
					sources = append(sources, href)
				}
			}
		default:
		}
	}
}

func attr(token html.Token, key string) string {
	for _, a := range token.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
