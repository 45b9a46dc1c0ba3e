package service

import (
	"context"

	"firstaidguide-backend/models"
	"firstaidguide-backend/provider"
)

// Counting fakes for the provider capabilities. Call counts let tests assert
// which stages ran.

type fakeCategorizer struct {
	calls  int
	result *provider.Categorization
	err    error
}

func (f *fakeCategorizer) Categorize(ctx context.Context, text string) (*provider.Categorization, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeEmbedder struct {
	calls     int
	embedding []float64
	err       error
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.embedding, nil
}

func (f *fakeEmbedder) EmbedDocument(ctx context.Context, text string) ([]float64, error) {
	return f.EmbedQuery(ctx, text)
}

type fakeSearcher struct {
	calls  int
	chunks []models.GuideChunk
	err    error
}

func (f *fakeSearcher) Search(ctx context.Context, embedding []float64, limit int) ([]models.GuideChunk, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.chunks, nil
}

type fakeCompleter struct {
	calls    int
	response string
	err      error
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakeDirectory struct {
	number    string
	hint      string
	numberErr error
	hintErr   error
}

func (f *fakeDirectory) EmergencyNumber(ctx context.Context, category models.Category, locale string) (string, error) {
	if f.numberErr != nil {
		return "", f.numberErr
	}
	return f.number, nil
}

func (f *fakeDirectory) NearbyHelp(ctx context.Context, locale string) (string, error) {
	if f.hintErr != nil {
		return "", f.hintErr
	}
	return f.hint, nil
}
