package assembler

import (
	"strings"
	"unicode/utf8"

	"github.com/akolanti/GoRAG/internal/domain/commonModels"
	"github.com/akolanti/GoRAG/internal/rag/retriever"
)

const (
	contextHeader  = "Context:"
	historyHeader  = "Conversation so far:"
	questionHeader = "User question:"
)

// Assemble renders the final prompt from an instruction template, retrieved
// chunks, conversation history and the current query, keeping the estimated
// token count within tokenBudget.
//
// Budget priority, highest first: the query (never dropped, even when it
// alone exceeds the budget), the template, then chunks greedily in relevance
// order, then history. History is selected most-recent-first but rendered in
// chronological order. Chunks are all-or-nothing: a chunk that does not fit
// is dropped whole, never truncated. The function is deterministic and never
// fails.
func Assemble(template string, retrieved []retriever.Retrieved, history []commonModels.Turn, query string, tokenBudget int) string {
	remaining := tokenBudget

	questionSection := questionHeader + "\n" + query
	remaining -= estimateTokens(questionSection)

	includeTemplate := false
	if template != "" && estimateTokens(template) <= remaining {
		includeTemplate = true
		remaining -= estimateTokens(template)
	}

	// Relevance order is the retriever's rank order. Stop at the first
	// chunk that does not fit so a weaker match can never displace a
	// stronger one.
	var chunkLines []string
	headerCharged := false
	for _, item := range retrieved {
		line := renderChunk(item.Chunk)
		cost := estimateTokens(line)
		if !headerCharged {
			cost += estimateTokens(contextHeader)
		}
		if cost > remaining {
			break
		}
		remaining -= cost
		headerCharged = true
		chunkLines = append(chunkLines, line)
	}

	var turnLines []string
	headerCharged = false
	for i := len(history) - 1; i >= 0; i-- {
		line := renderTurn(history[i])
		cost := estimateTokens(line)
		if !headerCharged {
			cost += estimateTokens(historyHeader)
		}
		if cost > remaining {
			break
		}
		remaining -= cost
		headerCharged = true
		turnLines = append(turnLines, line)
	}
	reverse(turnLines)

	var sections []string
	if includeTemplate {
		sections = append(sections, template)
	}
	if len(chunkLines) > 0 {
		sections = append(sections, contextHeader+"\n"+strings.Join(chunkLines, "\n"))
	}
	if len(turnLines) > 0 {
		sections = append(sections, historyHeader+"\n"+strings.Join(turnLines, "\n"))
	}
	sections = append(sections, questionSection)

	return strings.Join(sections, "\n\n")
}

func renderChunk(chunk commonModels.Chunk) string {
	source := chunk.DocName
	if source == "" {
		source = chunk.DocId
	}
	return "[" + source + "] " + chunk.Text
}

func renderTurn(turn commonModels.Turn) string {
	return string(turn.Role) + ": " + turn.Content
}

// English text runs roughly two characters per BPE token. Cheap, close
// enough for budgeting, and avoids shipping a tokenizer.
func estimateTokens(s string) int {
	return utf8.RuneCountInString(s) / 2
}

func reverse(lines []string) {
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
}
