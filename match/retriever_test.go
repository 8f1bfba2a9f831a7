package match

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicgraph/schemematch/ai/mock"
	"github.com/civicgraph/schemematch/core"
	"github.com/civicgraph/schemematch/storage"
	"github.com/civicgraph/schemematch/storage/badger"
)

// axisEmbedder maps every query to the same unit vector so seeded documents
// with the same vector score 1.0 in similarity search.
func axisEmbedder(axis int, dim int) *mock.MockEmbedder {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(_ context.Context, _ string) ([]float32, error) {
		return axisVector(axis, dim), nil
	}
	return embedder
}

func axisVector(axis, dim int) []float32 {
	v := make([]float32, dim)
	v[axis] = 1
	return v
}

func seedRetrieverRepo(t *testing.T) (storage.SchemeRepository, *badger.Backend) {
	t.Helper()
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)

	docs := []*core.SchemeDocument{
		{
			SchemeName: "Crop Insurance Scheme",
			Text:       "Insurance coverage for crop failure across all states",
			SourceFile: "agri.json",
			Vector:     axisVector(0, 4),
		},
		{
			SchemeName: "", // retrieval substitutes the fallback name
			Text:       "Subsidy for drip irrigation equipment",
			SourceFile: "agri.json",
			Vector:     axisVector(0, 4),
		},
		{
			SchemeName: "Unrelated Pension Scheme",
			Text:       "Monthly pension for senior citizens",
			SourceFile: "pension.json",
			Vector:     axisVector(1, 4),
		},
	}
	_, err = repo.AddSchemeDocuments(context.Background(), docs...)
	require.NoError(t, err)

	return repo, backend
}

func TestRetrieve(t *testing.T) {
	repo, backend := seedRetrieverRepo(t)
	defer backend.Close()

	retriever := NewRetriever(repo, axisEmbedder(0, 4), nil)
	candidates, err := retriever.Retrieve(context.Background(), []string{"crop support"}, 20, 0.7)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	names := []string{candidates[0].SchemeName, candidates[1].SchemeName}
	assert.Contains(t, names, "Crop Insurance Scheme")
	assert.Contains(t, names, "Unknown Scheme")

	for _, c := range candidates {
		assert.Equal(t, "crop support", c.Query)
		assert.NotEmpty(t, c.Text)
		assert.NotEmpty(t, c.Vector)
		assert.InDelta(t, 1.0, c.Score, 1e-6)
	}
}

func TestRetrieveConcatenatesVariations(t *testing.T) {
	repo, backend := seedRetrieverRepo(t)
	defer backend.Close()

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(_ context.Context, text string) ([]float32, error) {
		if text == "pension" {
			return axisVector(1, 4), nil
		}
		return axisVector(0, 4), nil
	}

	retriever := NewRetriever(repo, embedder, nil)
	candidates, err := retriever.Retrieve(context.Background(), []string{"crop support", "pension"}, 20, 0.7)
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	// Variation order is preserved in the concatenated result.
	assert.Equal(t, "crop support", candidates[0].Query)
	assert.Equal(t, "crop support", candidates[1].Query)
	assert.Equal(t, "pension", candidates[2].Query)
	assert.Equal(t, "Unrelated Pension Scheme", candidates[2].SchemeName)
}

func TestRetrieveSkipsFailingVariation(t *testing.T) {
	repo, backend := seedRetrieverRepo(t)
	defer backend.Close()

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(_ context.Context, text string) ([]float32, error) {
		if text == "broken" {
			return nil, errors.New("embedding service down")
		}
		return axisVector(0, 4), nil
	}

	retriever := NewRetriever(repo, embedder, nil)
	candidates, err := retriever.Retrieve(context.Background(), []string{"broken", "crop support"}, 20, 0.7)
	require.NoError(t, err)
	assert.Len(t, candidates, 2)
}

func TestRetrieveAllVariationsFail(t *testing.T) {
	repo, backend := seedRetrieverRepo(t)
	defer backend.Close()

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(_ context.Context, _ string) ([]float32, error) {
		return nil, errors.New("embedding service down")
	}

	retriever := NewRetriever(repo, embedder, nil)
	candidates, err := retriever.Retrieve(context.Background(), []string{"a", "b"}, 20, 0.7)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestRetrieveMinScoreFilters(t *testing.T) {
	repo, backend := seedRetrieverRepo(t)
	defer backend.Close()

	// Orthogonal query vector: every stored document scores 0.
	retriever := NewRetriever(repo, axisEmbedder(2, 4), nil)
	candidates, err := retriever.Retrieve(context.Background(), []string{"anything"}, 20, 0.7)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestRetrieveCancelledContext(t *testing.T) {
	repo, backend := seedRetrieverRepo(t)
	defer backend.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	retriever := NewRetriever(repo, axisEmbedder(0, 4), nil)
	_, err := retriever.Retrieve(ctx, []string{"crop support"}, 20, 0.7)
	assert.ErrorIs(t, err, context.Canceled)
}
