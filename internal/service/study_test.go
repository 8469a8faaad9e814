package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"studysphere/internal/adapter/offline"
	"studysphere/internal/domain"
	"studysphere/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const studyText = "Study notes on algorithms and data structures: stacks, queues, trees and their complexity analysis."

func noCache() StudyCacheService {
	return NewStudyCacheService(nil, 0)
}

func newStudy(upstream *MockUpstreamClient, llm domain.AnswerGenerator, respCache StudyCacheService) StudyService {
	return NewStudyService(upstream, offline.NewGenerator(), llm, respCache, configuredConfig())
}

func TestSummarizeConfigMissing(t *testing.T) {
	svc := NewStudyService(new(MockUpstreamClient), offline.NewGenerator(), nil, noCache(), unconfiguredConfig())

	resp, err := svc.Summarize(context.Background(), "doc-1")

	require.Error(t, err)
	assert.Nil(t, resp)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeConfigMissing, domainErr.Code)
}

func TestSummarizeFromAsk(t *testing.T) {
	upstream := new(MockUpstreamClient)
	upstream.On("FetchExtractedText", mock.Anything, "doc-1").Return(studyText, nil)
	upstream.On("Ask", mock.Anything, mock.Anything).Return(&domain.Answer{
		Text: "The document explains core data structures and their complexity.",
		Citations: []domain.Citation{
			{Content: "stacks and queues"},
			{Text: "complexity analysis", Score: 0.92},
		},
	}, nil)

	svc := newStudy(upstream, nil, noCache())
	resp, err := svc.Summarize(context.Background(), "doc-1")

	require.NoError(t, err)
	assert.Equal(t, "rag_ask", resp.Source)
	assert.Equal(t, "completed", resp.ProcessingStatus)
	assert.Equal(t, "kb1", resp.KnowledgeBoxID)
	assert.Equal(t, len(resp.Summary), resp.ContentLength)
	assert.Empty(t, resp.Mode)

	require.Len(t, resp.Citations, 2)
	assert.Equal(t, "stacks and queues", resp.Citations[0].Text)
	assert.Equal(t, 0.8, resp.Citations[0].Score)
	assert.Equal(t, 0.92, resp.Citations[1].Score)
}

func TestSummarizeFallsBackToOfflineTemplate(t *testing.T) {
	upstream := new(MockUpstreamClient)
	upstream.On("FetchExtractedText", mock.Anything, "doc-1").Return(studyText, nil)
	upstream.On("Ask", mock.Anything, mock.Anything).
		Return(nil, errors.New("dial tcp: connection refused"))
	upstream.On("Search", mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.SearchOutcome{}, nil)

	svc := newStudy(upstream, nil, noCache())
	resp, err := svc.Summarize(context.Background(), "doc-1")

	require.NoError(t, err)
	assert.Equal(t, "direct_content_extraction", resp.Source)
	assert.True(t, strings.HasPrefix(resp.Summary, offline.StudySummaryHeader))
	assert.Equal(t, "completed", resp.ProcessingStatus)
}

func TestSummarizeOfflineOnAuthFailure(t *testing.T) {
	upstream := new(MockUpstreamClient)
	upstream.On("FetchExtractedText", mock.Anything, "doc-1").
		Return("", errors.New("status 403 - AnonymousUser"))

	svc := newStudy(upstream, nil, noCache())
	resp, err := svc.Summarize(context.Background(), "doc-1")

	require.NoError(t, err)
	assert.Equal(t, offline.SimulatedSummary, resp.Summary)
	assert.Equal(t, "simulated", resp.Source)
	assert.Equal(t, "offline", resp.Mode)
	assert.Equal(t, "offline", resp.ProcessingStatus)
	upstream.AssertNotCalled(t, "Ask", mock.Anything, mock.Anything)
	upstream.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestSummarizeOfflineWhenUpstreamUnreachable(t *testing.T) {
	netErr := errors.New("dial tcp 192.0.2.10:443: connect: connection refused")
	upstream := new(MockUpstreamClient)
	upstream.On("FetchExtractedText", mock.Anything, "doc-1").Return("", netErr)
	upstream.On("Search", mock.Anything, mock.Anything, mock.Anything).Return(nil, netErr)

	svc := newStudy(upstream, nil, noCache())
	resp, err := svc.Summarize(context.Background(), "doc-1")

	require.NoError(t, err)
	assert.Equal(t, offline.SimulatedSummary, resp.Summary)
	assert.Equal(t, "simulated", resp.Source)
	assert.Equal(t, "offline", resp.Mode)
	assert.Equal(t, "offline", resp.ProcessingStatus)
}

func TestSummarizeIndexingWhenNothingRetrievable(t *testing.T) {
	upstream := new(MockUpstreamClient)
	upstream.On("FetchExtractedText", mock.Anything, "doc-1").Return("", nil)
	upstream.On("Search", mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.SearchOutcome{}, nil)

	svc := newStudy(upstream, nil, noCache())
	resp, err := svc.Summarize(context.Background(), "doc-1")

	require.NoError(t, err)
	assert.Equal(t, offline.IndexingSummary, resp.Summary)
	assert.Equal(t, "indexing_in_progress", resp.Source)
	assert.Equal(t, "indexing", resp.ProcessingStatus)
}

func TestSummarizeFromSearchParagraphProxy(t *testing.T) {
	upstream := new(MockUpstreamClient)
	upstream.On("FetchExtractedText", mock.Anything, "doc-1").Return("", nil)
	upstream.On("Search", mock.Anything, broadSearchQuery, mock.Anything).
		Return(&domain.SearchOutcome{
			Paragraphs: []string{"The tenant shall pay rent to the landlord monthly.", "The lease term is one year."},
		}, nil).Once()

	svc := newStudy(upstream, nil, noCache())
	resp, err := svc.Summarize(context.Background(), "doc-1")

	require.NoError(t, err)
	assert.Equal(t, "search_content_proxy", resp.Source)
	assert.True(t, strings.HasPrefix(resp.Summary, offline.LegalSummaryHeader))
}

func TestSummarizeReturnsCachedResponse(t *testing.T) {
	cached := &dto.SummarizeResponse{
		Summary:          "cached summary text",
		DocumentID:       "doc-1",
		Source:           "rag_ask",
		ProcessingStatus: "completed",
	}
	raw, err := json.Marshal(cached)
	require.NoError(t, err)

	cacheMock := new(MockCache)
	cacheMock.On("Get", mock.Anything, mock.Anything).Return(string(raw), nil)

	upstream := new(MockUpstreamClient)
	svc := newStudy(upstream, nil, NewStudyCacheService(cacheMock, time.Hour))

	resp, err := svc.Summarize(context.Background(), "doc-1")

	require.NoError(t, err)
	assert.Equal(t, "cached summary text", resp.Summary)
	upstream.AssertNotCalled(t, "FetchExtractedText", mock.Anything, mock.Anything)
}

func TestSummarizeCachesCompletedResponse(t *testing.T) {
	cacheMock := new(MockCache)
	cacheMock.On("Get", mock.Anything, mock.Anything).Return("", domain.ErrCacheMiss)
	cacheMock.On("Set", mock.Anything, mock.Anything, mock.Anything, time.Hour).Return(nil)

	upstream := new(MockUpstreamClient)
	upstream.On("FetchExtractedText", mock.Anything, "doc-1").Return(studyText, nil)
	upstream.On("Ask", mock.Anything, mock.Anything).Return(&domain.Answer{
		Text: "A summary long enough to be accepted.",
	}, nil)

	svc := newStudy(upstream, nil, NewStudyCacheService(cacheMock, time.Hour))
	_, err := svc.Summarize(context.Background(), "doc-1")

	require.NoError(t, err)
	cacheMock.AssertCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, time.Hour)
}

func TestGenerateQuizConfigMissing(t *testing.T) {
	svc := NewStudyService(new(MockUpstreamClient), offline.NewGenerator(), nil, noCache(), unconfiguredConfig())

	_, err := svc.GenerateQuiz(context.Background(), "doc-1", 5)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeConfigMissing, domainErr.Code)
}

func TestGenerateQuizFromDirectText(t *testing.T) {
	upstream := new(MockUpstreamClient)
	upstream.On("FetchExtractedText", mock.Anything, "doc-1").Return(studyText, nil)

	svc := newStudy(upstream, nil, noCache())
	resp, err := svc.GenerateQuiz(context.Background(), "doc-1", 0)

	require.NoError(t, err)
	assert.Len(t, resp.Quiz, 5)
	assert.Equal(t, 5, resp.TotalQuestions)
	assert.Equal(t, "direct_content_extraction", resp.Source)
	assert.Equal(t, "resource_api", resp.ExtractionMethod)
	assert.Equal(t, "kb1", resp.KnowledgeBoxID)
	require.NotNil(t, resp.DocumentInfo)
	assert.Equal(t, "Study Notes", resp.DocumentInfo.Type)

	for _, q := range resp.Quiz {
		assert.Len(t, q.Options, 4)
		assert.Contains(t, q.Options, q.CorrectAnswer)
	}
}

func TestGenerateQuizFromSearchProxy(t *testing.T) {
	upstream := new(MockUpstreamClient)
	upstream.On("FetchExtractedText", mock.Anything, "doc-1").Return("", nil)
	upstream.On("Search", mock.Anything, broadSearchQuery, mock.Anything).
		Return(&domain.SearchOutcome{Paragraphs: []string{studyText}}, nil).Once()

	svc := newStudy(upstream, nil, noCache())
	resp, err := svc.GenerateQuiz(context.Background(), "doc-1", 3)

	require.NoError(t, err)
	assert.Equal(t, "search_content_proxy", resp.Source)
	assert.Equal(t, "search_paragraphs", resp.ExtractionMethod)
	assert.Len(t, resp.Quiz, 3)
}

func TestGenerateQuizNoContentIsHardError(t *testing.T) {
	upstream := new(MockUpstreamClient)
	upstream.On("FetchExtractedText", mock.Anything, "doc-1").Return("", nil)
	upstream.On("Search", mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.SearchOutcome{}, nil)

	svc := newStudy(upstream, nil, noCache())
	resp, err := svc.GenerateQuiz(context.Background(), "doc-1", 5)

	require.Error(t, err)
	assert.Nil(t, resp)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeNoContent, domainErr.Code)
}

func TestGenerateQuizOfflineOnAuthFailure(t *testing.T) {
	upstream := new(MockUpstreamClient)
	upstream.On("FetchExtractedText", mock.Anything, "doc-1").
		Return("", errors.New("status 401 - invalid_token"))

	svc := newStudy(upstream, nil, noCache())
	resp, err := svc.GenerateQuiz(context.Background(), "doc-1", 5)

	require.NoError(t, err)
	assert.Equal(t, "simulated", resp.Source)
	assert.Equal(t, "offline", resp.Mode)
	assert.NotEmpty(t, resp.Quiz)
	assert.Equal(t, len(resp.Quiz), resp.TotalQuestions)
}

func TestGenerateQuizOfflineWhenUpstreamUnreachable(t *testing.T) {
	netErr := errors.New("dial tcp 192.0.2.10:443: connect: connection refused")
	upstream := new(MockUpstreamClient)
	upstream.On("FetchExtractedText", mock.Anything, "doc-1").Return("", netErr)
	upstream.On("Search", mock.Anything, mock.Anything, mock.Anything).Return(nil, netErr)

	svc := newStudy(upstream, nil, noCache())
	resp, err := svc.GenerateQuiz(context.Background(), "doc-1", 5)

	require.NoError(t, err)
	assert.Equal(t, "simulated", resp.Source)
	assert.Equal(t, "offline", resp.Mode)
	assert.NotEmpty(t, resp.Quiz)
}

func TestAnswerQuestionConfigMissing(t *testing.T) {
	svc := NewStudyService(new(MockUpstreamClient), offline.NewGenerator(), nil, noCache(), unconfiguredConfig())

	_, err := svc.AnswerQuestion(context.Background(), "doc-1", "What is a stack?")

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeConfigMissing, domainErr.Code)
}

func TestAnswerQuestionFromAsk(t *testing.T) {
	citations := []domain.Citation{
		{Text: "c1", Score: 0.9},
		{Text: "c2", Score: 0.7},
		{Text: "c3"},
		{Text: "c4", Score: 0.6},
		{Text: "c5", Score: 0.5},
	}
	upstream := new(MockUpstreamClient)
	upstream.On("Ask", mock.Anything, "What is a stack?").Return(&domain.Answer{
		Text:      "A stack is a LIFO data structure.",
		Citations: citations,
	}, nil)

	svc := newStudy(upstream, nil, noCache())
	resp, err := svc.AnswerQuestion(context.Background(), "doc-1", "What is a stack?")

	require.NoError(t, err)
	assert.Equal(t, "A stack is a LIFO data structure.", resp.Answer)
	assert.Equal(t, "What is a stack?", resp.Question)
	assert.Equal(t, "rag_ask", resp.Source)
	assert.Equal(t, 0.9, resp.Confidence)
	assert.False(t, resp.AnsweredAt.IsZero())

	// Sources are capped at three, absent scores defaulted.
	require.Len(t, resp.Sources, 3)
	assert.Equal(t, 0.8, resp.Sources[2].Score)
}

func TestAnswerQuestionFallsBackToSearch(t *testing.T) {
	upstream := new(MockUpstreamClient)
	upstream.On("Ask", mock.Anything, mock.Anything).Return(&domain.Answer{Text: ""}, nil)
	upstream.On("Search", mock.Anything, "What is a queue?", mock.Anything).
		Return(&domain.SearchOutcome{AnswerText: "A queue is a FIFO data structure."}, nil).Once()

	svc := newStudy(upstream, nil, noCache())
	resp, err := svc.AnswerQuestion(context.Background(), "doc-1", "What is a queue?")

	require.NoError(t, err)
	assert.Equal(t, "A queue is a FIFO data structure.", resp.Answer)
	assert.Equal(t, "rag_search_generative", resp.Source)
	assert.Equal(t, 0.85, resp.Confidence)
}

func TestAnswerQuestionOfflineOnAuthFailure(t *testing.T) {
	upstream := new(MockUpstreamClient)
	upstream.On("Ask", mock.Anything, mock.Anything).
		Return(nil, errors.New("status 401 - Jwt verification fails"))

	svc := newStudy(upstream, nil, noCache())
	resp, err := svc.AnswerQuestion(context.Background(), "doc-1", "What is a heap?")

	require.NoError(t, err)
	assert.Equal(t, "simulated", resp.Source)
	assert.Equal(t, "offline", resp.Mode)
	assert.Equal(t, 0.7, resp.Confidence)
	assert.Contains(t, resp.Answer, "What is a heap?")
	assert.Empty(t, resp.KnowledgeBoxID)
	assert.Empty(t, resp.Sources)
}

func TestAnswerQuestionOfflineWhenUpstreamUnreachable(t *testing.T) {
	netErr := errors.New("dial tcp 192.0.2.10:443: connect: connection refused")
	upstream := new(MockUpstreamClient)
	upstream.On("Ask", mock.Anything, mock.Anything).Return(nil, netErr)
	upstream.On("Search", mock.Anything, mock.Anything, mock.Anything).Return(nil, netErr)

	svc := newStudy(upstream, nil, noCache())
	resp, err := svc.AnswerQuestion(context.Background(), "doc-1", "Is anyone there?")

	require.NoError(t, err)
	assert.Equal(t, "simulated", resp.Source)
	assert.Equal(t, "offline", resp.Mode)
	assert.NotEmpty(t, resp.Answer)
}

func TestAnswerQuestionSimulatedWhenExhausted(t *testing.T) {
	upstream := new(MockUpstreamClient)
	upstream.On("Ask", mock.Anything, mock.Anything).Return(&domain.Answer{Text: ""}, nil)
	upstream.On("Search", mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.SearchOutcome{}, nil)

	svc := newStudy(upstream, nil, noCache())
	resp, err := svc.AnswerQuestion(context.Background(), "doc-1", "Anything in here?")

	require.NoError(t, err)
	assert.Equal(t, "simulated", resp.Source)
	assert.Empty(t, resp.Mode)
	assert.Equal(t, 0.7, resp.Confidence)
	assert.NotEmpty(t, resp.Answer)
}

func TestAnswerQuestionUsesLocalLLMOverFilteredParagraphs(t *testing.T) {
	upstream := new(MockUpstreamClient)
	upstream.On("Ask", mock.Anything, mock.Anything).Return(&domain.Answer{Text: ""}, nil)
	upstream.On("Search", mock.Anything, mock.Anything, []string(nil)).
		Return(&domain.SearchOutcome{}, nil).Once()
	upstream.On("Search", mock.Anything, mock.Anything, []string{"/uuid:doc-1"}).
		Return(&domain.SearchOutcome{Paragraphs: []string{studyText}}, nil).Once()

	llm := new(MockAnswerGenerator)
	llm.On("Generate", mock.Anything, mock.Anything).
		Return("Stacks support push and pop in constant time.", nil)

	svc := newStudy(upstream, llm, noCache())
	resp, err := svc.AnswerQuestion(context.Background(), "doc-1", "How do stacks work?")

	require.NoError(t, err)
	assert.Equal(t, "local_llm", resp.Source)
	assert.Equal(t, 0.75, resp.Confidence)
	llm.AssertExpectations(t)
}
