package store

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/Aryan4717/media-mind-ai/internal/domain"
)

var (
	bucketDocuments   = []byte("documents")
	bucketChunks      = []byte("chunks")
	bucketDocChunks   = []byte("doc_chunks")
	bucketEmbeddings  = []byte("embeddings")
	bucketTranscripts = []byte("transcripts")
)

// BoltStore persists documents, chunks, embeddings and transcripts in
// a single bbolt database. Chunk replacement for a document happens in
// one write transaction, so a concurrent reader never sees old and new
// chunks mixed.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		buckets := [][]byte{bucketDocuments, bucketChunks, bucketDocChunks, bucketEmbeddings, bucketTranscripts}
		for _, b := range buckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

type documentRecord struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	CreatedAt int64  `json:"created_at"`
}

type chunkRecord struct {
	DocumentID string            `json:"document_id"`
	Index      int               `json:"index"`
	Text       string            `json:"text"`
	CharCount  int               `json:"char_count"`
	TokenCount int               `json:"token_count,omitempty"`
	PageNumber int               `json:"page_number,omitempty"`
	StartChar  int               `json:"start_char"`
	EndChar    int               `json:"end_char"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type embeddingRecord struct {
	Model     string    `json:"model"`
	Vector    []float32 `json:"vector"`
	Dimension int       `json:"dimension"`
}

func (s *BoltStore) PutDocument(doc domain.Document) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		rec := documentRecord{
			Name:      doc.Name,
			Kind:      string(doc.Kind),
			CreatedAt: doc.CreatedAt.Unix(),
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketDocuments).Put([]byte(doc.ID), data)
	})
}

func (s *BoltStore) GetDocument(id string) (domain.Document, error) {
	var doc domain.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDocuments).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		var rec documentRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return err
		}
		doc = domain.Document{
			ID:        id,
			Name:      rec.Name,
			Kind:      domain.DocumentKind(rec.Kind),
			CreatedAt: time.Unix(rec.CreatedAt, 0),
		}
		return nil
	})
	return doc, err
}

func (s *BoltStore) ListDocuments() ([]domain.Document, error) {
	var docs []domain.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocuments).ForEach(func(k, v []byte) error {
			var rec documentRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			docs = append(docs, domain.Document{
				ID:        string(k),
				Name:      rec.Name,
				Kind:      domain.DocumentKind(rec.Kind),
				CreatedAt: time.Unix(rec.CreatedAt, 0),
			})
			return nil
		})
	})
	return docs, err
}

// DeleteDocument removes the document together with its chunks,
// embeddings and transcript in one transaction.
func (s *BoltStore) DeleteDocument(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := deleteChunksTx(tx, id); err != nil {
			return err
		}
		if err := tx.Bucket(bucketTranscripts).Delete([]byte(id)); err != nil {
			return err
		}
		return tx.Bucket(bucketDocuments).Delete([]byte(id))
	})
}

// ReplaceChunks drops all prior chunks (and their embeddings) for the
// document and stores the new sequence atomically.
func (s *BoltStore) ReplaceChunks(documentID string, chunks []domain.Chunk) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := deleteChunksTx(tx, documentID); err != nil {
			return err
		}

		chunkBucket := tx.Bucket(bucketChunks)
		ids := make([]string, 0, len(chunks))
		for _, chunk := range chunks {
			rec := chunkRecord{
				DocumentID: chunk.DocumentID,
				Index:      chunk.Index,
				Text:       chunk.Text,
				CharCount:  chunk.CharCount,
				TokenCount: chunk.TokenCount,
				PageNumber: chunk.PageNumber,
				StartChar:  chunk.StartChar,
				EndChar:    chunk.EndChar,
				Metadata:   chunk.Metadata,
			}
			data, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			if err := chunkBucket.Put([]byte(chunk.ID), data); err != nil {
				return err
			}
			ids = append(ids, chunk.ID)
		}

		idsData, err := json.Marshal(ids)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketDocChunks).Put([]byte(documentID), idsData)
	})
}

func deleteChunksTx(tx *bbolt.Tx, documentID string) error {
	docChunks := tx.Bucket(bucketDocChunks)
	data := docChunks.Get([]byte(documentID))
	if data == nil {
		return nil
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}

	chunkBucket := tx.Bucket(bucketChunks)
	embBucket := tx.Bucket(bucketEmbeddings)
	for _, id := range ids {
		if err := chunkBucket.Delete([]byte(id)); err != nil {
			return err
		}
		if err := embBucket.Delete([]byte(id)); err != nil {
			return err
		}
	}
	return docChunks.Delete([]byte(documentID))
}

func (s *BoltStore) GetChunk(id string) (domain.Chunk, error) {
	var chunk domain.Chunk
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketChunks).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("chunk %s: %w", id, domain.ErrNotFound)
		}
		c, err := decodeChunk(id, data)
		if err != nil {
			return err
		}
		chunk = c
		return nil
	})
	return chunk, err
}

// GetChunksByDocument returns the document's chunks in index order.
// A limit of 0 means no limit.
func (s *BoltStore) GetChunksByDocument(documentID string, limit, offset int) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDocChunks).Get([]byte(documentID))
		if data == nil {
			return nil
		}
		var ids []string
		if err := json.Unmarshal(data, &ids); err != nil {
			return err
		}

		if offset >= len(ids) {
			return nil
		}
		ids = ids[offset:]
		if limit > 0 && limit < len(ids) {
			ids = ids[:limit]
		}

		chunkBucket := tx.Bucket(bucketChunks)
		for _, id := range ids {
			raw := chunkBucket.Get([]byte(id))
			if raw == nil {
				continue
			}
			c, err := decodeChunk(id, raw)
			if err != nil {
				return err
			}
			chunks = append(chunks, c)
		}
		return nil
	})
	return chunks, err
}

func decodeChunk(id string, data []byte) (domain.Chunk, error) {
	var rec chunkRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.Chunk{}, err
	}
	return domain.Chunk{
		ID:         id,
		DocumentID: rec.DocumentID,
		Index:      rec.Index,
		Text:       rec.Text,
		CharCount:  rec.CharCount,
		TokenCount: rec.TokenCount,
		PageNumber: rec.PageNumber,
		StartChar:  rec.StartChar,
		EndChar:    rec.EndChar,
		Metadata:   rec.Metadata,
	}, nil
}

// PutEmbedding stores or overwrites the embedding for a chunk.
func (s *BoltStore) PutEmbedding(emb domain.Embedding) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		rec := embeddingRecord{
			Model:     emb.Model,
			Vector:    emb.Vector,
			Dimension: len(emb.Vector),
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketEmbeddings).Put([]byte(emb.ChunkID), data)
	})
}

func (s *BoltStore) GetEmbedding(chunkID string) (domain.Embedding, error) {
	var emb domain.Embedding
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketEmbeddings).Get([]byte(chunkID))
		if data == nil {
			return fmt.Errorf("embedding for chunk %s: %w", chunkID, domain.ErrNotFound)
		}
		var rec embeddingRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return err
		}
		emb = domain.Embedding{
			ChunkID:   chunkID,
			Model:     rec.Model,
			Vector:    rec.Vector,
			Dimension: rec.Dimension,
		}
		return nil
	})
	return emb, err
}

// AllEmbeddings iterates the embeddings bucket in key order, giving a
// stable rebuild order for the vector index.
func (s *BoltStore) AllEmbeddings() ([]domain.Embedding, error) {
	var out []domain.Embedding
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketEmbeddings).ForEach(func(k, v []byte) error {
			var rec embeddingRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			out = append(out, domain.Embedding{
				ChunkID:   string(k),
				Model:     rec.Model,
				Vector:    rec.Vector,
				Dimension: rec.Dimension,
			})
			return nil
		})
	})
	return out, err
}

func (s *BoltStore) PutTranscript(tr domain.Transcript) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(tr)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketTranscripts).Put([]byte(tr.DocumentID), data)
	})
}

func (s *BoltStore) GetTranscript(documentID string) (domain.Transcript, error) {
	var tr domain.Transcript
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketTranscripts).Get([]byte(documentID))
		if data == nil {
			return fmt.Errorf("transcript for document %s: %w", documentID, domain.ErrNotFound)
		}
		return json.Unmarshal(data, &tr)
	})
	return tr, err
}
