package service

import (
	"context"
	"fmt"
	"strings"

	"studysphere/internal/domain"
	"studysphere/internal/logger"

	"go.uber.org/zap"
)

// filterVariants are the filter-string syntaxes tried in sequence when
// scoping a search to one document. The upstream filter syntax differs
// between API revisions, so each observed variant is tried until one yields
// content. Compatibility shim: confirm against current upstream docs before
// extending.
var filterVariants = []string{
	"/uuid:%s",
	"/uuid/%s",
	"uuid:%s",
	"/resource/uuid:%s",
}

// authFailureSignatures are substrings that mark an upstream error as an
// authentication failure. Any of them short-circuits the cascade: an
// unauthenticated upstream is treated as unreachable, not retryable.
var authFailureSignatures = []string{
	"401",
	"403",
	"invalid_token",
	"Jwt verification fails",
	"kid:sa token",
	"AnonymousUser",
}

const (
	// maxProxyParagraphs and maxProxyChars bound the content proxy built
	// from search paragraphs when the resource itself exposes no text.
	maxProxyParagraphs = 10
	maxProxyChars      = 4000
)

// cascadeResult is the outcome of a single strategy: generated or extracted
// text plus the tag identifying which strategy produced it.
type cascadeResult struct {
	Text      string
	Citations []domain.Citation
	Source    string
}

// strategy is one step of the retrieval cascade.
type strategy struct {
	name string
	run  func(ctx context.Context) (*cascadeResult, error)
}

// isAuthFailure reports whether an upstream error carries one of the known
// authentication-failure signatures.
func isAuthFailure(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, sig := range authFailureSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}

// runCascade executes the strategies in order and returns the first result
// the accept function approves. Strategy errors are soft: they are logged
// and the next strategy runs. Auth failures are the exception and abort the
// whole cascade immediately. offline=true means the upstream is unusable,
// either unauthenticated or so unreachable that no strategy completed; a
// (nil, false) return means strategies ran but found no acceptable content.
func runCascade(ctx context.Context, strategies []strategy, accept func(*cascadeResult) bool) (*cascadeResult, bool) {
	log := logger.Get()
	completed := false
	for _, st := range strategies {
		result, err := st.run(ctx)
		if err != nil {
			if isAuthFailure(err) {
				log.Warn("Upstream authentication failed, degrading to offline mode",
					zap.String("strategy", st.name),
					zap.Error(err),
				)
				return nil, true
			}
			log.Warn("Cascade strategy failed",
				zap.String("strategy", st.name),
				zap.Error(err),
			)
			continue
		}
		completed = true
		if result != nil && accept(result) {
			log.Info("Cascade strategy succeeded",
				zap.String("strategy", st.name),
				zap.String("source", result.Source),
				zap.Int("length", len(result.Text)),
			)
			return result, false
		}
	}
	if !completed {
		log.Warn("Every cascade strategy failed, degrading to offline mode")
	}
	return nil, !completed
}

// buildContentProxy concatenates search paragraphs into a bounded stand-in
// for the document text.
func buildContentProxy(paragraphs []string) string {
	var b strings.Builder
	for i, p := range paragraphs {
		if i >= maxProxyParagraphs {
			break
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		remaining := maxProxyChars - b.Len()
		if remaining <= 0 {
			break
		}
		if len(p) > remaining {
			p = p[:remaining]
		}
		b.WriteString(p)
	}
	return b.String()
}

// documentFilters expands the filter variants for one document id.
func documentFilters(documentID string) []string {
	filters := make([]string, 0, len(filterVariants))
	for _, variant := range filterVariants {
		filters = append(filters, fmt.Sprintf(variant, documentID))
	}
	return filters
}
