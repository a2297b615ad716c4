package processor

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tieubaoca/rag-be/types"
)

func newTestDocument() types.Document {
	return types.Document{
		ID:           "d1",
		Title:        "Test Page",
		Content:      "Sentence one. Sentence two. Sentence three.",
		URL:          "https://wiki.example.com/spaces/ENG/pages/1",
		Author:       "Jane Doe",
		Source:       "confluence",
		CreatedDate:  "2024-01-01T00:00:00Z",
		ModifiedDate: "2024-02-01T00:00:00Z",
		Tags:         []string{"howto"},
		Metadata: types.Metadata{
			"space_key": types.StringValue("ENG"),
			"page_id":   types.StringValue("1"),
			"version":   types.NumberValue(3),
		},
	}
}

func TestNewParser_RejectsInvalidChunkParams(t *testing.T) {
	_, err := NewParser(4, 4)
	assert.Error(t, err)

	_, err = NewParser(4, 1)
	assert.NoError(t, err)
}

func TestProcessDocument_WorkedExample(t *testing.T) {
	parser, err := NewParser(4, 1)
	require.NoError(t, err)

	doc := newTestDocument()
	chunks := parser.ProcessDocument(doc)
	require.Len(t, chunks, 2)

	assert.Equal(t, "d1_chunk_0", chunks[0].ID)
	assert.Equal(t, "Sentence one. Sentence two.", chunks[0].Content)
	assert.Equal(t, "d1_chunk_1", chunks[1].ID)
	assert.Equal(t, "two. Sentence three.", chunks[1].Content)

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.ChunkIndex)
		assert.Equal(t, 2, chunk.TotalChunks)
		assert.Equal(t, doc.Title, chunk.Title)
		assert.Equal(t, doc.URL, chunk.URL)
		assert.Equal(t, doc.Author, chunk.Author)
		assert.Equal(t, doc.Source, chunk.Source)
		assert.Equal(t, doc.CreatedDate, chunk.CreatedDate)
		assert.Equal(t, doc.ModifiedDate, chunk.ModifiedDate)
		assert.Equal(t, doc.Tags, chunk.Tags)
		assert.Equal(t, "ENG", chunk.SpaceKey)
		assert.Equal(t, "d1", chunk.Metadata.GetString("original_doc_id"))
	}
}

func TestProcessDocument_IndexIdentity(t *testing.T) {
	parser, err := NewParser(5, 1)
	require.NoError(t, err)

	doc := newTestDocument()
	doc.Content = ""
	for i := 0; i < 20; i++ {
		doc.Content += fmt.Sprintf("This is sentence number %d. ", i)
	}

	chunks := parser.ProcessDocument(doc)
	require.NotEmpty(t, chunks)

	total := len(chunks)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.ChunkIndex)
		assert.Equal(t, total, chunk.TotalChunks)
		assert.Equal(t, fmt.Sprintf("d1_chunk_%d", i), chunk.ID)
	}
}

func TestProcessDocument_EmptyAfterCleaning(t *testing.T) {
	parser, err := NewParser(4, 1)
	require.NoError(t, err)

	doc := newTestDocument()
	doc.Content = " \t\n "
	assert.Empty(t, parser.ProcessDocument(doc))
}

func TestProcessDocument_MissingSpaceKey(t *testing.T) {
	parser, err := NewParser(4, 1)
	require.NoError(t, err)

	doc := newTestDocument()
	doc.Metadata = types.Metadata{"page_id": types.StringValue("1")}

	chunks := parser.ProcessDocument(doc)
	require.NotEmpty(t, chunks)
	assert.Equal(t, "", chunks[0].SpaceKey)
}

func TestProcessDocument_DoesNotMutateSourceMetadata(t *testing.T) {
	parser, err := NewParser(4, 1)
	require.NoError(t, err)

	doc := newTestDocument()
	chunks := parser.ProcessDocument(doc)
	require.NotEmpty(t, chunks)

	_, ok := doc.Metadata["original_doc_id"]
	assert.False(t, ok, "parser must clone metadata, not mutate the document")
}

func TestProcessDocuments_IsolatesEmptyDocuments(t *testing.T) {
	parser, err := NewParser(4, 1)
	require.NoError(t, err)

	good := newTestDocument()
	empty := newTestDocument()
	empty.ID = "d2"
	empty.Content = ""
	alsoGood := newTestDocument()
	alsoGood.ID = "d3"

	chunks := parser.ProcessDocuments([]types.Document{good, empty, alsoGood})
	require.Len(t, chunks, 4)
	assert.Equal(t, "d1_chunk_0", chunks[0].ID)
	assert.Equal(t, "d3_chunk_0", chunks[2].ID)
}
