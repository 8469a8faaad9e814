package rag

import (
	"encoding/json"
	"strings"

	"studysphere/internal/domain"
)

type askLine struct {
	Item      *askItem          `json:"item"`
	Citations []domain.Citation `json:"citations"`
}

type askItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ParseAskStream decodes the newline-delimited streaming body of the
// generative endpoint. Each line is an independent JSON object; lines that
// fail to parse are skipped, since the stream interleaves heartbeat and
// control lines with content. Answer fragments are concatenated in order to
// reconstruct the token-streamed answer, and citation lists are concatenated
// across lines preserving first-seen order (duplicates allowed). An empty
// accumulation means "no answer", not a parse error.
func ParseAskStream(body []byte) (string, []domain.Citation) {
	var answer strings.Builder
	var citations []domain.Citation

	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var parsed askLine
		if err := json.Unmarshal([]byte(line), &parsed); err != nil {
			continue
		}
		if parsed.Item != nil && parsed.Item.Text != "" {
			if parsed.Item.Type == "" || parsed.Item.Type == "answer" {
				answer.WriteString(parsed.Item.Text)
			}
		}
		citations = append(citations, parsed.Citations...)
	}

	return answer.String(), citations
}
