package service

import (
	"context"
	"time"

	"studysphere/internal/adapter/offline"
	"studysphere/internal/config"
	"studysphere/internal/domain"
	"studysphere/internal/dto"
	"studysphere/internal/logger"
	"studysphere/internal/port"

	"go.uber.org/zap"
)

const (
	// broadSearchQuery probes whether anything at all is indexed when the
	// resource itself exposes no text.
	broadSearchQuery = "document content text"

	// summaryQuery is sent to the generative endpoints when building a
	// summary.
	summaryQuery = "Summarize the main topics and key points from the uploaded document"

	defaultQuestionCount = 5

	// llmPromptBudget caps how much extracted text is handed to the local
	// LLM strategy.
	llmPromptBudget = 2000
)

// Result source tags. The caller uses them to distinguish live answers from
// degraded ones.
const (
	sourceAsk              = "rag_ask"
	sourceSearchGenerative = "rag_search_generative"
	sourceFilteredSearch   = "rag_filtered_search"
	sourceContentProxy     = "search_content_proxy"
	sourceFilteredProxy    = "filtered_search_proxy"
	sourceDirectExtraction = "direct_content_extraction"
	sourceLocalLLM         = "local_llm"
	sourceSimulated        = "simulated"
	sourceIndexing         = "indexing_in_progress"
)

// StudyService generates summaries, quizzes and answers for an uploaded
// document by cascading through upstream retrieval strategies and degrading
// to offline content when none yields anything usable.
type StudyService interface {
	Summarize(ctx context.Context, documentID string) (*dto.SummarizeResponse, error)
	GenerateQuiz(ctx context.Context, documentID string, questionCount int) (*dto.QuizResponse, error)
	AnswerQuestion(ctx context.Context, documentID, question string) (*dto.QuestionResponse, error)
}

type studyService struct {
	upstream  port.UpstreamClient
	generator *offline.Generator
	llm       domain.AnswerGenerator
	respCache StudyCacheService
	cfg       *config.Config
}

// NewStudyService wires the cascade dependencies. llm may be nil (no local
// model configured); respCache must be non-nil but may wrap a nil cache.
func NewStudyService(
	upstream port.UpstreamClient,
	generator *offline.Generator,
	llm domain.AnswerGenerator,
	respCache StudyCacheService,
	cfg *config.Config,
) StudyService {
	return &studyService{
		upstream:  upstream,
		generator: generator,
		llm:       llm,
		respCache: respCache,
		cfg:       cfg,
	}
}

// Summarize walks the cascade: direct resource text, broad search, filtered
// search, then offline fallback. It returns an error only for the missing
// configuration precondition; every runtime contingency degrades to a
// simulated or status summary.
func (s *studyService) Summarize(ctx context.Context, documentID string) (*dto.SummarizeResponse, error) {
	if s.upstream == nil || !s.cfg.Upstream.Configured() {
		return nil, domain.NewConfigMissingError("RAG_KEY or KB_ID not configured")
	}
	log := logger.Get()

	if cached, err := s.respCache.GetSummary(ctx, documentID); err != nil {
		log.Warn("Summary cache lookup failed", zap.Error(err), zap.String("document_id", documentID))
	} else if cached != nil {
		log.Info("Returning cached summary", zap.String("document_id", documentID))
		return cached, nil
	}

	strategies := []strategy{
		{name: "direct_resource", run: func(ctx context.Context) (*cascadeResult, error) {
			return s.summaryFromResource(ctx, documentID)
		}},
		{name: "broad_search", run: func(ctx context.Context) (*cascadeResult, error) {
			return s.summaryFromSearch(ctx, broadSearchQuery, nil, sourceSearchGenerative, sourceContentProxy)
		}},
		{name: "filtered_search", run: func(ctx context.Context) (*cascadeResult, error) {
			return s.summaryFromFilteredSearch(ctx, documentID)
		}},
	}

	result, offlineMode := runCascade(ctx, strategies, func(r *cascadeResult) bool {
		return len(r.Text) >= domain.MinContentLength
	})

	if offlineMode {
		return &dto.SummarizeResponse{
			Summary:          offline.SimulatedSummary,
			DocumentID:       documentID,
			Source:           sourceSimulated,
			ProcessingStatus: "offline",
			Mode:             "offline",
		}, nil
	}
	if result == nil {
		return &dto.SummarizeResponse{
			Summary:          offline.IndexingSummary,
			DocumentID:       documentID,
			KnowledgeBoxID:   s.cfg.Upstream.KnowledgeBox,
			Source:           sourceIndexing,
			ProcessingStatus: "indexing",
		}, nil
	}

	resp := &dto.SummarizeResponse{
		Summary:          result.Text,
		DocumentID:       documentID,
		KnowledgeBoxID:   s.cfg.Upstream.KnowledgeBox,
		Source:           result.Source,
		ProcessingStatus: "completed",
		ContentLength:    len(result.Text),
		Citations:        mapSources(result.Citations, 0),
	}
	if err := s.respCache.PutSummary(ctx, documentID, resp); err != nil {
		log.Warn("Failed to cache summary", zap.Error(err), zap.String("document_id", documentID))
	}
	return resp, nil
}

// summaryFromResource fetches the resource text and tries the generation
// ladder over it: upstream ask, upstream generative search, local LLM, and
// finally the offline template. Auth failures propagate so the cascade can
// short-circuit; other generation errors fall through to the next rung.
func (s *studyService) summaryFromResource(ctx context.Context, documentID string) (*cascadeResult, error) {
	log := logger.Get()

	text, err := s.upstream.FetchExtractedText(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if len(text) < domain.MinContentLength {
		return nil, nil
	}

	answer, err := s.upstream.Ask(ctx, summaryQuery)
	if err != nil {
		if isAuthFailure(err) {
			return nil, err
		}
		log.Warn("Generative ask failed, trying search", zap.Error(err))
	} else if len(answer.Text) >= domain.MinContentLength {
		return &cascadeResult{Text: answer.Text, Citations: answer.Citations, Source: sourceAsk}, nil
	}

	outcome, err := s.upstream.Search(ctx, summaryQuery, nil)
	if err != nil {
		if isAuthFailure(err) {
			return nil, err
		}
		log.Warn("Generative search failed", zap.Error(err))
	} else if len(outcome.AnswerText) >= domain.MinContentLength {
		return &cascadeResult{Text: outcome.AnswerText, Source: sourceSearchGenerative}, nil
	}

	if s.llm != nil {
		prompt := "Provide a comprehensive summary of this study material:\n\n" + truncate(text, llmPromptBudget)
		generated, err := s.llm.Generate(ctx, prompt)
		if err != nil {
			log.Warn("Local LLM summary failed", zap.Error(err))
		} else if len(generated) >= domain.MinContentLength {
			return &cascadeResult{Text: generated, Source: sourceLocalLLM}, nil
		}
	}

	return &cascadeResult{Text: s.generator.GenerateSummary(text), Source: sourceDirectExtraction}, nil
}

// summaryFromSearch maps one search call to a cascade result: a generative
// answer wins, otherwise a bounded paragraph proxy is summarized offline.
func (s *studyService) summaryFromSearch(ctx context.Context, query string, filters []string, answerSource, proxySource string) (*cascadeResult, error) {
	outcome, err := s.upstream.Search(ctx, query, filters)
	if err != nil {
		return nil, err
	}
	if len(outcome.AnswerText) >= domain.MinContentLength {
		return &cascadeResult{Text: outcome.AnswerText, Source: answerSource}, nil
	}
	if len(outcome.Paragraphs) > 0 {
		proxy := buildContentProxy(outcome.Paragraphs)
		if len(proxy) >= domain.MinContentLength {
			return &cascadeResult{Text: s.generator.GenerateSummary(proxy), Source: proxySource}, nil
		}
	}
	return nil, nil
}

// summaryFromFilteredSearch tries each filter variant. A filter error is
// soft while any other filter still completes; when every filter errors the
// last error surfaces so the cascade can tell "unreachable" from "empty".
func (s *studyService) summaryFromFilteredSearch(ctx context.Context, documentID string) (*cascadeResult, error) {
	if documentID == "" {
		return nil, nil
	}
	var lastErr error
	completed := false
	for _, filter := range documentFilters(documentID) {
		result, err := s.summaryFromSearch(ctx, summaryQuery, []string{filter}, sourceFilteredSearch, sourceFilteredProxy)
		if err != nil {
			if isAuthFailure(err) {
				return nil, err
			}
			logger.Get().Warn("Filtered search failed",
				zap.String("filter", filter), zap.Error(err))
			lastErr = err
			continue
		}
		completed = true
		if result != nil {
			return result, nil
		}
	}
	if !completed {
		return nil, lastErr
	}
	return nil, nil
}

// GenerateQuiz retrieves document text through the cascade and builds a quiz
// from it. When every retrieval strategy is exhausted without content (and
// the upstream was reachable), the failure surfaces as a hard error; an
// unauthenticated or unreachable upstream instead degrades to an offline
// quiz.
func (s *studyService) GenerateQuiz(ctx context.Context, documentID string, questionCount int) (*dto.QuizResponse, error) {
	if s.upstream == nil || !s.cfg.Upstream.Configured() {
		return nil, domain.NewConfigMissingError("RAG_KEY or KB_ID not configured")
	}
	if questionCount <= 0 {
		questionCount = defaultQuestionCount
	}
	log := logger.Get()

	if cached, err := s.respCache.GetQuiz(ctx, documentID, questionCount); err != nil {
		log.Warn("Quiz cache lookup failed", zap.Error(err), zap.String("document_id", documentID))
	} else if cached != nil {
		log.Info("Returning cached quiz", zap.String("document_id", documentID))
		return cached, nil
	}

	result, offlineMode := runCascade(ctx, s.contentStrategies(documentID), func(r *cascadeResult) bool {
		return len(r.Text) >= domain.MinContentLength
	})

	if offlineMode {
		questions, info := s.generator.GenerateQuiz("", questionCount)
		return &dto.QuizResponse{
			Quiz:           questions,
			TotalQuestions: len(questions),
			Source:         sourceSimulated,
			DocumentID:     documentID,
			DocumentInfo:   &info,
			Mode:           "offline",
		}, nil
	}
	if result == nil {
		return nil, domain.NewNoContentError(documentID)
	}

	questions, info := s.generator.GenerateQuiz(result.Text, questionCount)
	resp := &dto.QuizResponse{
		Quiz:             questions,
		TotalQuestions:   len(questions),
		Source:           result.Source,
		DocumentID:       documentID,
		KnowledgeBoxID:   s.cfg.Upstream.KnowledgeBox,
		DocumentInfo:     &info,
		ExtractionMethod: extractionMethod(result.Source),
	}
	if err := s.respCache.PutQuiz(ctx, documentID, questionCount, resp); err != nil {
		log.Warn("Failed to cache quiz", zap.Error(err), zap.String("document_id", documentID))
	}
	return resp, nil
}

// contentStrategies is the text-retrieval cascade shared by quiz generation:
// direct resource text, then paragraph proxies from broad and filtered
// searches.
func (s *studyService) contentStrategies(documentID string) []strategy {
	return []strategy{
		{name: "direct_resource", run: func(ctx context.Context) (*cascadeResult, error) {
			text, err := s.upstream.FetchExtractedText(ctx, documentID)
			if err != nil {
				return nil, err
			}
			if len(text) < domain.MinContentLength {
				return nil, nil
			}
			return &cascadeResult{Text: text, Source: sourceDirectExtraction}, nil
		}},
		{name: "broad_search", run: func(ctx context.Context) (*cascadeResult, error) {
			outcome, err := s.upstream.Search(ctx, broadSearchQuery, nil)
			if err != nil {
				return nil, err
			}
			proxy := buildContentProxy(outcome.Paragraphs)
			if len(proxy) < domain.MinContentLength {
				return nil, nil
			}
			return &cascadeResult{Text: proxy, Source: sourceContentProxy}, nil
		}},
		{name: "filtered_search", run: func(ctx context.Context) (*cascadeResult, error) {
			if documentID == "" {
				return nil, nil
			}
			var lastErr error
			completed := false
			for _, filter := range documentFilters(documentID) {
				outcome, err := s.upstream.Search(ctx, broadSearchQuery, []string{filter})
				if err != nil {
					if isAuthFailure(err) {
						return nil, err
					}
					logger.Get().Warn("Filtered search failed",
						zap.String("filter", filter), zap.Error(err))
					lastErr = err
					continue
				}
				completed = true
				proxy := buildContentProxy(outcome.Paragraphs)
				if len(proxy) >= domain.MinContentLength {
					return &cascadeResult{Text: proxy, Source: sourceFilteredProxy}, nil
				}
			}
			if !completed {
				return nil, lastErr
			}
			return nil, nil
		}},
	}
}

// AnswerQuestion asks the generative endpoint, falling back through search
// and the local LLM to a deterministic simulated answer. It never fails at
// runtime; only the configuration precondition is an error.
func (s *studyService) AnswerQuestion(ctx context.Context, documentID, question string) (*dto.QuestionResponse, error) {
	if s.upstream == nil || !s.cfg.Upstream.Configured() {
		return nil, domain.NewConfigMissingError("RAG_KEY or KB_ID not configured")
	}

	strategies := []strategy{
		{name: "ask", run: func(ctx context.Context) (*cascadeResult, error) {
			answer, err := s.upstream.Ask(ctx, question)
			if err != nil {
				return nil, err
			}
			return &cascadeResult{Text: answer.Text, Citations: answer.Citations, Source: sourceAsk}, nil
		}},
		{name: "search", run: func(ctx context.Context) (*cascadeResult, error) {
			outcome, err := s.upstream.Search(ctx, question, nil)
			if err != nil {
				return nil, err
			}
			return &cascadeResult{Text: outcome.AnswerText, Source: sourceSearchGenerative}, nil
		}},
		{name: "filtered_search", run: func(ctx context.Context) (*cascadeResult, error) {
			return s.answerFromFilteredSearch(ctx, documentID, question)
		}},
	}

	result, offlineMode := runCascade(ctx, strategies, func(r *cascadeResult) bool {
		return len(r.Text) >= domain.MinContentLength
	})

	resp := &dto.QuestionResponse{
		Question:       question,
		DocumentID:     documentID,
		KnowledgeBoxID: s.cfg.Upstream.KnowledgeBox,
		AnsweredAt:     time.Now().UTC(),
	}

	switch {
	case result != nil:
		resp.Answer = result.Text
		resp.Sources = mapSources(result.Citations, 3)
		resp.Source = result.Source
		resp.Confidence = confidenceFor(result.Source)
	case offlineMode:
		resp.Answer = s.generator.GenerateAnswer(question)
		resp.Sources = []dto.Source{}
		resp.Source = sourceSimulated
		resp.Confidence = 0.7
		resp.Mode = "offline"
		resp.KnowledgeBoxID = ""
	default:
		resp.Answer = s.generator.GenerateAnswer(question)
		resp.Sources = []dto.Source{}
		resp.Source = sourceSimulated
		resp.Confidence = 0.7
	}
	return resp, nil
}

func (s *studyService) answerFromFilteredSearch(ctx context.Context, documentID, question string) (*cascadeResult, error) {
	if documentID == "" {
		return nil, nil
	}
	var lastErr error
	completed := false
	for _, filter := range documentFilters(documentID) {
		outcome, err := s.upstream.Search(ctx, question, []string{filter})
		if err != nil {
			if isAuthFailure(err) {
				return nil, err
			}
			logger.Get().Warn("Filtered search failed",
				zap.String("filter", filter), zap.Error(err))
			lastErr = err
			continue
		}
		completed = true
		if len(outcome.AnswerText) >= domain.MinContentLength {
			return &cascadeResult{Text: outcome.AnswerText, Source: sourceFilteredSearch}, nil
		}
		if s.llm != nil && len(outcome.Paragraphs) > 0 {
			proxy := buildContentProxy(outcome.Paragraphs)
			if len(proxy) < domain.MinContentLength {
				continue
			}
			prompt := "Answer the question using only this document excerpt.\n\nQuestion: " +
				question + "\n\nExcerpt:\n" + truncate(proxy, llmPromptBudget)
			generated, err := s.llm.Generate(ctx, prompt)
			if err != nil {
				logger.Get().Warn("Local LLM answer failed", zap.Error(err))
				continue
			}
			if len(generated) >= domain.MinContentLength {
				return &cascadeResult{Text: generated, Source: sourceLocalLLM}, nil
			}
		}
	}
	if !completed {
		return nil, lastErr
	}
	return nil, nil
}

func confidenceFor(source string) float64 {
	switch source {
	case sourceAsk:
		return 0.9
	case sourceSearchGenerative, sourceFilteredSearch:
		return 0.85
	case sourceLocalLLM:
		return 0.75
	default:
		return 0.7
	}
}

func extractionMethod(source string) string {
	if source == sourceDirectExtraction {
		return "resource_api"
	}
	return "search_paragraphs"
}

// mapSources converts upstream citations into response sources, defaulting
// absent fields. limit of 0 means no cap.
func mapSources(citations []domain.Citation, limit int) []dto.Source {
	if len(citations) == 0 {
		return nil
	}
	if limit > 0 && len(citations) > limit {
		citations = citations[:limit]
	}
	sources := make([]dto.Source, 0, len(citations))
	for _, c := range citations {
		text := c.Text
		if text == "" {
			text = c.Content
		}
		score := c.Score
		if score == 0 {
			score = 0.8
		}
		sources = append(sources, dto.Source{
			Text:     text,
			Score:    score,
			Page:     c.Page,
			Position: c.Position,
		})
	}
	return sources
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit]
}
