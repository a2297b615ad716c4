package processor

import (
	"fmt"
	"log"

	"github.com/tieubaoca/rag-be/types"
)

// Parser turns source documents into processed chunks carrying identity,
// ordinal, and provenance metadata.
type Parser struct {
	chunker *Chunker
}

func NewParser(chunkSize, chunkOverlap int) (*Parser, error) {
	chunker, err := NewChunker(chunkSize, chunkOverlap)
	if err != nil {
		return nil, err
	}
	return &Parser{chunker: chunker}, nil
}

// ProcessDocument cleans and chunks one document. A document that is empty
// after cleaning, or that yields no chunks, produces an empty result and a
// warning; it never fails the batch it belongs to.
func (p *Parser) ProcessDocument(document types.Document) []types.ProcessedChunk {
	cleaned := CleanText(document.Content)
	if cleaned == "" {
		log.Printf("Document %s has no content after cleaning", document.ID)
		return nil
	}

	chunks := p.chunker.ChunkBySentences(cleaned)
	if len(chunks) == 0 {
		log.Printf("Document %s produced no chunks", document.ID)
		return nil
	}

	processed := make([]types.ProcessedChunk, 0, len(chunks))
	totalChunks := len(chunks)

	for idx, content := range chunks {
		metadata := document.Metadata.Clone()
		if metadata == nil {
			metadata = types.Metadata{}
		}
		metadata["original_doc_id"] = types.StringValue(document.ID)

		processed = append(processed, types.ProcessedChunk{
			ID:           fmt.Sprintf("%s_chunk_%d", document.ID, idx),
			Content:      content,
			Title:        document.Title,
			URL:          document.URL,
			Author:       document.Author,
			Source:       document.Source,
			CreatedDate:  document.CreatedDate,
			ModifiedDate: document.ModifiedDate,
			Tags:         document.Tags,
			SpaceKey:     document.Metadata.GetString("space_key"),
			Metadata:     metadata,
			ChunkIndex:   idx,
			TotalChunks:  totalChunks,
		})
	}

	return processed
}

// ProcessDocuments processes every document, accumulating all chunks.
// Documents are isolated from each other: one empty or unparseable document
// does not stop the rest.
func (p *Parser) ProcessDocuments(documents []types.Document) []types.ProcessedChunk {
	var allChunks []types.ProcessedChunk
	for _, document := range documents {
		allChunks = append(allChunks, p.ProcessDocument(document)...)
	}

	log.Printf("Processed %d documents into %d chunks", len(documents), len(allChunks))
	return allChunks
}
