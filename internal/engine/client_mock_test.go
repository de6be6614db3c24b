package engine

import (
	"context"
	"io"
	"sync"

	"github.com/heartmarshall/lexilens/internal/domain"
)

var _ Client = &clientMock{}

type clientMock struct {
	OpenStreamFunc      func(ctx context.Context, req domain.AnalysisRequest) (io.ReadCloser, error)
	FetchMistakesFunc   func(ctx context.Context, req domain.AnalysisRequest) ([]domain.CommonMistake, error)
	FetchLexicalMapFunc func(ctx context.Context, req domain.AnalysisRequest) (*domain.LexicalMap, error)

	calls struct {
		OpenStream []struct {
			Req domain.AnalysisRequest
		}
		FetchMistakes []struct {
			Req domain.AnalysisRequest
		}
		FetchLexicalMap []struct {
			Req domain.AnalysisRequest
		}
	}
	lockOpenStream      sync.RWMutex
	lockFetchMistakes   sync.RWMutex
	lockFetchLexicalMap sync.RWMutex
}

func (mock *clientMock) OpenStream(ctx context.Context, req domain.AnalysisRequest) (io.ReadCloser, error) {
	if mock.OpenStreamFunc == nil {
		panic("clientMock.OpenStreamFunc: method is nil but Client.OpenStream was just called")
	}
	callInfo := struct {
		Req domain.AnalysisRequest
	}{Req: req}
	mock.lockOpenStream.Lock()
	mock.calls.OpenStream = append(mock.calls.OpenStream, callInfo)
	mock.lockOpenStream.Unlock()
	return mock.OpenStreamFunc(ctx, req)
}

func (mock *clientMock) OpenStreamCalls() []struct {
	Req domain.AnalysisRequest
} {
	mock.lockOpenStream.RLock()
	calls := mock.calls.OpenStream
	mock.lockOpenStream.RUnlock()
	return calls
}

func (mock *clientMock) FetchMistakes(ctx context.Context, req domain.AnalysisRequest) ([]domain.CommonMistake, error) {
	if mock.FetchMistakesFunc == nil {
		panic("clientMock.FetchMistakesFunc: method is nil but Client.FetchMistakes was just called")
	}
	callInfo := struct {
		Req domain.AnalysisRequest
	}{Req: req}
	mock.lockFetchMistakes.Lock()
	mock.calls.FetchMistakes = append(mock.calls.FetchMistakes, callInfo)
	mock.lockFetchMistakes.Unlock()
	return mock.FetchMistakesFunc(ctx, req)
}

func (mock *clientMock) FetchMistakesCalls() []struct {
	Req domain.AnalysisRequest
} {
	mock.lockFetchMistakes.RLock()
	calls := mock.calls.FetchMistakes
	mock.lockFetchMistakes.RUnlock()
	return calls
}

func (mock *clientMock) FetchLexicalMap(ctx context.Context, req domain.AnalysisRequest) (*domain.LexicalMap, error) {
	if mock.FetchLexicalMapFunc == nil {
		panic("clientMock.FetchLexicalMapFunc: method is nil but Client.FetchLexicalMap was just called")
	}
	callInfo := struct {
		Req domain.AnalysisRequest
	}{Req: req}
	mock.lockFetchLexicalMap.Lock()
	mock.calls.FetchLexicalMap = append(mock.calls.FetchLexicalMap, callInfo)
	mock.lockFetchLexicalMap.Unlock()
	return mock.FetchLexicalMapFunc(ctx, req)
}

func (mock *clientMock) FetchLexicalMapCalls() []struct {
	Req domain.AnalysisRequest
} {
	mock.lockFetchLexicalMap.RLock()
	calls := mock.calls.FetchLexicalMap
	mock.lockFetchLexicalMap.RUnlock()
	return calls
}

var _ Pronouncer = &pronouncerMock{}

type pronouncerMock struct {
	FetchPronunciationFunc func(ctx context.Context, word string) (*domain.Pronunciation, error)

	calls struct {
		FetchPronunciation []struct {
			Word string
		}
	}
	lockFetchPronunciation sync.RWMutex
}

func (mock *pronouncerMock) FetchPronunciation(ctx context.Context, word string) (*domain.Pronunciation, error) {
	if mock.FetchPronunciationFunc == nil {
		panic("pronouncerMock.FetchPronunciationFunc: method is nil but Pronouncer.FetchPronunciation was just called")
	}
	callInfo := struct {
		Word string
	}{Word: word}
	mock.lockFetchPronunciation.Lock()
	mock.calls.FetchPronunciation = append(mock.calls.FetchPronunciation, callInfo)
	mock.lockFetchPronunciation.Unlock()
	return mock.FetchPronunciationFunc(ctx, word)
}

func (mock *pronouncerMock) FetchPronunciationCalls() []struct {
	Word string
} {
	mock.lockFetchPronunciation.RLock()
	calls := mock.calls.FetchPronunciation
	mock.lockFetchPronunciation.RUnlock()
	return calls
}
